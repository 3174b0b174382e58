package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/atendente-pedidos/internal/adapter/api/dto"
	"github.com/hugohenrick/atendente-pedidos/pkg/chat"
	"github.com/hugohenrick/atendente-pedidos/pkg/logger"
	"github.com/hugohenrick/atendente-pedidos/pkg/session"
)

// WorkerCounter informa quantos workers de fila estão ativos
type WorkerCounter interface {
	Workers() int
}

// SessionController expõe as sessões em memória e o histórico das conversas
type SessionController struct {
	store      *session.Store
	workers    WorkerCounter
	transcript chat.Repository
	logger     logger.Logger
}

// NewSessionController cria um novo controller de sessões
func NewSessionController(store *session.Store, workers WorkerCounter, transcript chat.Repository, logger logger.Logger) *SessionController {
	if transcript == nil {
		transcript = chat.NopRepository{}
	}
	return &SessionController{
		store:      store,
		workers:    workers,
		transcript: transcript,
		logger:     logger,
	}
}

// Stats godoc
// @Summary Resumo das sessões
// @Tags Sessions
// @Produce json
// @Success 200 {object} dto.SessionStatsResponse
// @Router /sessions [get]
func (c *SessionController) Stats(ctx *gin.Context) {
	resp := dto.SessionStatsResponse{Active: c.store.Len()}
	if c.workers != nil {
		resp.Workers = c.workers.Workers()
	}
	ctx.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Consulta uma sessão
// @Description Retorna o estado e o contexto da conversa sem criar sessão nova
// @Tags Sessions
// @Produce json
// @Param phone path string true "Telefone do cliente"
// @Success 200 {object} session.View
// @Failure 404 {object} dto.ErrorResponse
// @Router /sessions/{phone} [get]
func (c *SessionController) Get(ctx *gin.Context) {
	phone := ctx.Param("phone")

	view, ok, err := c.store.Snapshot(ctx.Request.Context(), phone)
	if err != nil {
		ctx.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(http.StatusServiceUnavailable, "Sessão ocupada", err.Error()))
		return
	}
	if !ok {
		ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "Sessão não encontrada", ""))
		return
	}

	ctx.JSON(http.StatusOK, view)
}

// Reset godoc
// @Summary Reinicia uma sessão
// @Tags Sessions
// @Param phone path string true "Telefone do cliente"
// @Success 204
// @Router /sessions/{phone} [delete]
func (c *SessionController) Reset(ctx *gin.Context) {
	phone := ctx.Param("phone")
	c.store.Reset(phone)
	c.logger.Info("Sessão reiniciada pela API", "customer_key", phone)
	ctx.Status(http.StatusNoContent)
}

// History godoc
// @Summary Histórico da conversa
// @Tags Sessions
// @Produce json
// @Param phone path string true "Telefone do cliente"
// @Param page query int false "Página" default(1)
// @Param page_size query int false "Itens por página" default(20)
// @Success 200 {object} dto.HistoryResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /sessions/{phone}/history [get]
func (c *SessionController) History(ctx *gin.Context) {
	phone := ctx.Param("phone")
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "20"))
	p := dto.GetPagination(page, pageSize)

	messages, err := c.transcript.GetHistory(ctx.Request.Context(), phone, p.PageSize, p.Offset())
	if err != nil {
		c.logger.Error("Erro ao buscar histórico", "error", err, "customer_key", phone)
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "Erro ao buscar histórico", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.HistoryResponse{
		CustomerKey: phone,
		Page:        p.Page,
		PageSize:    p.PageSize,
		Messages:    messages,
	})
}

// DeleteHistory godoc
// @Summary Apaga o histórico da conversa
// @Tags Sessions
// @Param phone path string true "Telefone do cliente"
// @Success 204
// @Failure 500 {object} dto.ErrorResponse
// @Router /sessions/{phone}/history [delete]
func (c *SessionController) DeleteHistory(ctx *gin.Context) {
	phone := ctx.Param("phone")
	if err := c.transcript.DeleteHistory(ctx.Request.Context(), phone); err != nil {
		c.logger.Error("Erro ao apagar histórico", "error", err, "customer_key", phone)
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "Erro ao apagar histórico", err.Error()))
		return
	}
	ctx.Status(http.StatusNoContent)
}
