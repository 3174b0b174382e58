package order

import (
	"context"
)

// Repository define as operações de pedidos na API de pedidos
type Repository interface {
	// Create cria um novo pedido
	Create(ctx context.Context, in CreateInput) (*Order, error)

	// Get busca um pedido pelo ID
	Get(ctx context.Context, id string) (*Order, error)

	// UpdateStatus altera o status de um pedido
	UpdateStatus(ctx context.Context, id string, status Status) (*Order, error)

	// Cancel cancela um pedido
	Cancel(ctx context.Context, id string) (*Order, error)
}
