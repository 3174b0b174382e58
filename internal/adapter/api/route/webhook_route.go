package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/atendente-pedidos/internal/adapter/api/controller"
)

// ConfigureWebhookRoutes configura as rotas do webhook da WhatsApp Cloud API
func ConfigureWebhookRoutes(router *gin.RouterGroup, webhookController *controller.WebhookController) {
	webhookGroup := router.Group("/webhook")
	{
		webhookGroup.GET("", webhookController.Verify)
		webhookGroup.POST("", webhookController.Receive)
	}
}
