package route

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/atendente-pedidos/internal/adapter/api/controller"
	"github.com/hugohenrick/atendente-pedidos/internal/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Controllers reúne os controllers expostos pela API
type Controllers struct {
	Webhook *controller.WebhookController
	Session *controller.SessionController
}

// NewRouter cria o engine do gin com CORS, documentação e as rotas da aplicação
func NewRouter(basePath string, corsOrigins []string, controllers Controllers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(corsOrigins) == 0 || (len(corsOrigins) == 1 && corsOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = corsOrigins
	}
	router.Use(cors.New(corsCfg))

	docs.SwaggerInfo.BasePath = basePath
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group(basePath)

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": docs.SwaggerInfo.Version,
		})
	})

	if controllers.Webhook != nil {
		ConfigureWebhookRoutes(api, controllers.Webhook)
	}
	if controllers.Session != nil {
		ConfigureSessionRoutes(api, controllers.Session)
	}

	return router
}
