package backend

import (
	"context"
	"net/http"

	"github.com/hugohenrick/atendente-pedidos/internal/domain/order"
)

// OrderRepository implementa order.Repository
type OrderRepository struct {
	c *Client
}

// Create cria um novo pedido
func (r *OrderRepository) Create(ctx context.Context, in order.CreateInput) (*order.Order, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var out order.Order
	if err := r.c.do(ctx, http.MethodPost, "/orders", nil, in, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get busca um pedido pelo ID
func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	var out order.Order
	if err := r.c.do(ctx, http.MethodGet, "/orders/"+escape(id), nil, nil, &out, order.ErrOrderNotFound); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStatus altera o status de um pedido
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) (*order.Order, error) {
	body := struct {
		Status order.Status `json:"status"`
	}{status}
	var out order.Order
	if err := r.c.do(ctx, http.MethodPatch, "/orders/"+escape(id)+"/status", nil, body, &out, order.ErrOrderNotFound); err != nil {
		return nil, err
	}
	return &out, nil
}

// Cancel cancela um pedido
func (r *OrderRepository) Cancel(ctx context.Context, id string) (*order.Order, error) {
	var out order.Order
	if err := r.c.do(ctx, http.MethodPost, "/orders/"+escape(id)+"/cancel", nil, nil, &out, order.ErrOrderNotFound); err != nil {
		return nil, err
	}
	return &out, nil
}
