package backend

import (
	"context"
	"net/http"

	"github.com/hugohenrick/atendente-pedidos/internal/domain/customer"
)

// CustomerRepository implementa customer.Repository
type CustomerRepository struct {
	c *Client
}

// FindByPhone busca um cliente pelo telefone
func (r *CustomerRepository) FindByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	if phone == "" {
		return nil, customer.ErrCustomerNotFound
	}
	var out customer.Customer
	if err := r.c.do(ctx, http.MethodGet, "/customers/phone/"+escape(phone), nil, nil, &out, customer.ErrCustomerNotFound); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, customer.ErrCustomerNotFound
	}
	return &out, nil
}

// Create cria um novo cliente
func (r *CustomerRepository) Create(ctx context.Context, in customer.NewCustomerInput) (*customer.Customer, error) {
	var out customer.Customer
	if err := r.c.do(ctx, http.MethodPost, "/customers", nil, in, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}
