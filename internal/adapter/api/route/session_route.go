package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/atendente-pedidos/internal/adapter/api/controller"
)

// ConfigureSessionRoutes configura as rotas de consulta às sessões
func ConfigureSessionRoutes(router *gin.RouterGroup, sessionController *controller.SessionController) {
	sessionGroup := router.Group("/sessions")
	{
		sessionGroup.GET("", sessionController.Stats)
		sessionGroup.GET("/:phone", sessionController.Get)
		sessionGroup.DELETE("/:phone", sessionController.Reset)
		sessionGroup.GET("/:phone/history", sessionController.History)
		sessionGroup.DELETE("/:phone/history", sessionController.DeleteHistory)
	}
}
