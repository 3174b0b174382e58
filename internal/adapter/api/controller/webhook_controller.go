package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/atendente-pedidos/internal/adapter/api/dto"
	"github.com/hugohenrick/atendente-pedidos/internal/adapter/whatsapp"
	"github.com/hugohenrick/atendente-pedidos/internal/dialogue"
	"github.com/hugohenrick/atendente-pedidos/pkg/logger"
)

// Enqueuer recebe as mensagens para processamento em ordem por remetente
type Enqueuer interface {
	Enqueue(key string, msg dialogue.InboundMessage) error
}

// WebhookController recebe os webhooks da WhatsApp Cloud API
type WebhookController struct {
	verifyToken string
	appSecret   string
	queue       Enqueuer
	logger      logger.Logger
}

// NewWebhookController cria um novo controller de webhook
func NewWebhookController(verifyToken, appSecret string, queue Enqueuer, logger logger.Logger) *WebhookController {
	return &WebhookController{
		verifyToken: verifyToken,
		appSecret:   appSecret,
		queue:       queue,
		logger:      logger,
	}
}

// Verify godoc
// @Summary Verificação do webhook
// @Description Responde ao desafio de verificação enviado pela Meta ao cadastrar o webhook
// @Tags Webhook
// @Produce plain
// @Param hub.mode query string true "Modo (subscribe)"
// @Param hub.verify_token query string true "Token de verificação"
// @Param hub.challenge query string true "Desafio"
// @Success 200 {string} string "Desafio"
// @Failure 403 {object} dto.ErrorResponse
// @Router /webhook [get]
func (c *WebhookController) Verify(ctx *gin.Context) {
	mode := ctx.Query("hub.mode")
	token := ctx.Query("hub.verify_token")
	challenge := ctx.Query("hub.challenge")

	if mode != "subscribe" || c.verifyToken == "" || token != c.verifyToken {
		c.logger.Warn("Falha na verificação do webhook", "mode", mode)
		ctx.JSON(http.StatusForbidden, dto.NewErrorResponse(http.StatusForbidden, "Verificação recusada", ""))
		return
	}

	ctx.String(http.StatusOK, challenge)
}

// Receive godoc
// @Summary Recebe mensagens
// @Description Valida a assinatura, extrai as mensagens e as enfileira por remetente
// @Tags Webhook
// @Accept json
// @Produce json
// @Param X-Hub-Signature-256 header string false "Assinatura HMAC do corpo"
// @Success 200 {object} dto.WebhookAck
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /webhook [post]
func (c *WebhookController) Receive(ctx *gin.Context) {
	body, err := ctx.GetRawData()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "Erro ao ler corpo", err.Error()))
		return
	}

	if err := whatsapp.VerifySignature(c.appSecret, body, ctx.GetHeader("X-Hub-Signature-256")); err != nil {
		c.logger.Warn("Assinatura do webhook inválida", "ip", ctx.ClientIP())
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(http.StatusUnauthorized, "Assinatura inválida", ""))
		return
	}

	messages, err := whatsapp.ParseWebhook(body)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "Webhook inválido", err.Error()))
		return
	}

	ack := dto.WebhookAck{}
	for _, msg := range messages {
		// A Meta reenvia o webhook quando não recebe 200, então a fila cheia só é registrada
		if err := c.queue.Enqueue(msg.SenderKey, msg); err != nil {
			c.logger.Error("Mensagem descartada", "error", err, "customer_key", msg.SenderKey, "message_id", msg.MessageID)
			ack.Dropped++
			continue
		}
		ack.Received++
	}

	ctx.JSON(http.StatusOK, ack)
}
