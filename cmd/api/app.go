package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/atendente-pedidos/internal/adapter/api/controller"
	"github.com/hugohenrick/atendente-pedidos/internal/adapter/api/route"
	"github.com/hugohenrick/atendente-pedidos/internal/adapter/backend"
	"github.com/hugohenrick/atendente-pedidos/internal/adapter/repository"
	"github.com/hugohenrick/atendente-pedidos/internal/adapter/speech"
	"github.com/hugohenrick/atendente-pedidos/internal/adapter/whatsapp"
	"github.com/hugohenrick/atendente-pedidos/internal/config"
	"github.com/hugohenrick/atendente-pedidos/internal/dialogue"
	"github.com/hugohenrick/atendente-pedidos/internal/dispatch"
	"github.com/hugohenrick/atendente-pedidos/internal/infrastructure/database"
	"github.com/hugohenrick/atendente-pedidos/pkg/chat"
	"github.com/hugohenrick/atendente-pedidos/pkg/conversation"
	"github.com/hugohenrick/atendente-pedidos/pkg/logger"
	"github.com/hugohenrick/atendente-pedidos/pkg/mcp"
	"github.com/hugohenrick/atendente-pedidos/pkg/session"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// App representa a aplicação e suas dependências
type App struct {
	cfg       *config.Config
	logger    logger.Logger
	router    *gin.Engine
	db        *pgxpool.Pool
	sessions  *session.Store
	scheduler *dispatch.Scheduler[dialogue.InboundMessage]
}

// NewApp cria uma nova instância do aplicativo
func NewApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	app := &App{cfg: cfg, logger: log}

	// Histórico das conversas
	var transcript chat.Repository = chat.NopRepository{}
	var machineOpts []conversation.Option
	if cfg.Database.URL != "" {
		if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath, log); err != nil {
			return nil, err
		}
		pool, err := database.NewPostgresDB(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		app.db = pool

		chatRepo := repository.NewChatRepository(pool)
		transcript = chatRepo
		machineOpts = append(machineOpts, conversation.WithSink(repository.NewTransitionSink(chatRepo, log)))
	} else {
		log.Warn("DATABASE_URL não configurada, histórico das conversas desativado")
	}

	// API de pedidos
	api := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Token:   cfg.Backend.Token,
		Timeout: cfg.Backend.Timeout,
	}, log)
	customers := api.Customers()
	orders := api.Orders()

	app.sessions = session.NewStore(func(key string) *conversation.Machine {
		return conversation.NewMachine(key, customers, orders, machineOpts...)
	}, session.WithIdleTimeout(cfg.Session.IdleTimeout), session.WithLogger(log))

	nlu := mcp.NewClient(mcp.Config{
		APIKey:    cfg.NLU.APIKey,
		Model:     cfg.NLU.Model,
		Endpoint:  cfg.NLU.Endpoint,
		MaxTokens: cfg.NLU.MaxTokens,
	}, log)
	if !nlu.Enabled() {
		log.Warn("ANTHROPIC_API_KEY não configurada, usando detecção de intenção local")
	}

	if cfg.WhatsApp.Token == "" || cfg.WhatsApp.PhoneNumberID == "" {
		log.Warn("WhatsApp não configurado, as respostas não serão entregues")
	}
	messenger := whatsapp.NewClient(whatsapp.Config{
		APIBase:       cfg.WhatsApp.APIBase,
		Token:         cfg.WhatsApp.Token,
		PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
	}, log)

	deps := dialogue.Deps{
		Sessions:   app.sessions,
		Catalog:    api.Catalog(),
		Customers:  customers,
		Orders:     orders,
		Messenger:  messenger,
		NLU:        nlu,
		Transcript: transcript,
		Logger:     log,
		Voice:      cfg.Speech.Voice,
	}

	// Só atribui quando configurado para não guardar um ponteiro nil na interface
	speechClient := speech.NewClient(speech.Config{
		APIKey:   cfg.Speech.APIKey,
		APIBase:  cfg.Speech.APIBase,
		Voice:    cfg.Speech.Voice,
		AudioDir: cfg.Speech.AudioDir,
	}, log)
	if speechClient.Enabled() {
		deps.Transcriber = speechClient
		deps.Synthesizer = speechClient
	} else {
		log.Warn("SPEECH_API_KEY não configurada, mensagens de voz desativadas")
	}

	dialogueRouter := dialogue.NewRouter(deps)
	app.scheduler = dispatch.NewScheduler[dialogue.InboundMessage](log, cfg.Session.QueueSize, cfg.Session.WorkerIdle, dialogueRouter.Handle)

	// Configurar router com modo correto
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	app.router = route.NewRouter(cfg.BasePath, cfg.CORSOrigins, route.Controllers{
		Webhook: controller.NewWebhookController(cfg.WhatsApp.VerifyToken, cfg.WhatsApp.AppSecret, app.scheduler, log),
		Session: controller.NewSessionController(app.sessions, app.scheduler, transcript, log),
	})

	return app, nil
}

// Run inicia o servidor HTTP e a limpeza de sessões até o contexto ser cancelado
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("Servidor HTTP iniciado", "addr", a.cfg.HTTPAddr, "base_path", a.cfg.BasePath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "erro no servidor HTTP")
		}
		return nil
	})

	g.Go(func() error {
		return a.sessions.Run(gctx, a.cfg.Session.SweepInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Encerrando aplicação")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		// Mensagens já enfileiradas ainda são respondidas
		if cerr := a.scheduler.Close(shutdownCtx); cerr != nil {
			a.logger.Warn("Fila não foi esvaziada a tempo", "error", cerr)
		}
		return err
	})

	return g.Wait()
}

// GetRouter retorna o router da aplicação
func (a *App) GetRouter() *gin.Engine {
	return a.router
}

// Close libera os recursos da aplicação
func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
