package product

import (
	"context"
)

// Catalog define as operações de leitura do catálogo na API de pedidos
type Catalog interface {
	// ListCategories lista as categorias ativas
	ListCategories(ctx context.Context) ([]Category, error)

	// ListProducts lista os produtos, opcionalmente filtrados por categoria
	ListProducts(ctx context.Context, categoryID string) ([]Product, error)

	// SearchProducts busca produtos pelo texto informado
	SearchProducts(ctx context.Context, query string) ([]Product, error)

	// GetPromotedProducts lista os produtos em promoção
	GetPromotedProducts(ctx context.Context) ([]Product, error)

	// GetProduct busca um produto pelo ID
	GetProduct(ctx context.Context, id string) (*Product, error)
}
