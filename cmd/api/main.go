package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hugohenrick/atendente-pedidos/internal/config"
	"github.com/hugohenrick/atendente-pedidos/pkg/logger"
)

func main() {
	// Carregar configuração (.env é opcional)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Erro ao carregar configuração: %v", err)
	}

	appLogger := logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Criar aplicação
	app, err := NewApp(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Erro ao iniciar aplicação", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	// Iniciar o servidor
	if err := app.Run(ctx); err != nil {
		appLogger.Error("Aplicação encerrada com erro", "error", err)
		os.Exit(1)
	}

	appLogger.Info("Aplicação encerrada")
}
