package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/atendente-pedidos/pkg/chat"
	"github.com/hugohenrick/atendente-pedidos/pkg/conversation"
	"github.com/hugohenrick/atendente-pedidos/pkg/logger"
)

// NewTransitionSink registra no repositório cada transição da máquina.
// Falhas de gravação só são logadas.
func NewTransitionSink(repo chat.Repository, log logger.Logger) conversation.TransitionSink {
	if log == nil {
		log = logger.Nop{}
	}
	return conversation.SinkFunc(func(ctx context.Context, t conversation.Transition) {
		row := &chat.Transition{
			ID:          uuid.New().String(),
			CustomerKey: t.CustomerKey,
			Event:       string(t.Event),
			FromState:   string(t.From),
			ToState:     string(t.To),
			LastError:   t.LastError,
			Timestamp:   time.Now().UTC(),
		}
		if err := repo.SaveTransition(ctx, row); err != nil {
			log.Warn("Erro ao salvar transição", "error", err, "customer_key", t.CustomerKey, "event", t.Event)
		}
	})
}
