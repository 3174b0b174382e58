package customer

import (
	"context"
)

// Repository define a interface para operações de clientes na API de pedidos
type Repository interface {
	// FindByPhone busca um cliente pelo telefone.
	// Retorna ErrCustomerNotFound quando não existe.
	FindByPhone(ctx context.Context, phone string) (*Customer, error)

	// Create cria um novo cliente
	Create(ctx context.Context, in NewCustomerInput) (*Customer, error)
}
