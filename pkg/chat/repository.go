package chat

import (
	"context"
)

// Repository define a interface para operações de repositório do histórico de conversa
type Repository interface {
	// SaveMessage salva uma nova mensagem no histórico
	SaveMessage(ctx context.Context, message *Message) error

	// GetHistory retorna o histórico de mensagens de um cliente, mais recentes primeiro
	GetHistory(ctx context.Context, customerKey string, limit, offset int) ([]Message, error)

	// DeleteHistory deleta todo o histórico de um cliente
	DeleteHistory(ctx context.Context, customerKey string) error

	// SaveTransition registra uma transição da máquina de estados
	SaveTransition(ctx context.Context, transition *Transition) error
}

// NopRepository descarta tudo; usado quando não há banco configurado
type NopRepository struct{}

func (NopRepository) SaveMessage(context.Context, *Message) error { return nil }

func (NopRepository) GetHistory(context.Context, string, int, int) ([]Message, error) {
	return []Message{}, nil
}

func (NopRepository) DeleteHistory(context.Context, string) error { return nil }

func (NopRepository) SaveTransition(context.Context, *Transition) error { return nil }
