package order

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound   = errors.New("pedido não encontrado")
	ErrEmptyOrder      = errors.New("pedido sem itens")
	ErrMissingCustomer = errors.New("pedido sem cliente")
)

// Status representa o estado do pedido na API de pedidos
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Label retorna a descrição do status para o cliente
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "aguardando confirmação"
	case StatusConfirmed:
		return "confirmado"
	case StatusPreparing:
		return "em preparação"
	case StatusReady:
		return "pronto"
	case StatusDelivered:
		return "entregue"
	case StatusCancelled:
		return "cancelado"
	default:
		return string(s)
	}
}

// Line representa um item do pedido
type Line struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Order representa um pedido criado na API de pedidos
type Order struct {
	ID          string          `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	CustomerID  string          `json:"customerId"`
	Status      Status          `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Lines       []Line          `json:"lines"`
	CreatedAt   time.Time       `json:"createdAt,omitempty"`
}

// CreateInput contém os dados para criação de um pedido
type CreateInput struct {
	CustomerID string `json:"customerId"`
	Lines      []Line `json:"lines"`
}

// Validate verifica se o pedido pode ser enviado
func (in CreateInput) Validate() error {
	if in.CustomerID == "" {
		return ErrMissingCustomer
	}
	if len(in.Lines) == 0 {
		return ErrEmptyOrder
	}
	return nil
}
