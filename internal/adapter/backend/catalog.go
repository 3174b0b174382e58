package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/hugohenrick/atendente-pedidos/internal/domain/product"
)

// Catalog implementa product.Catalog
type Catalog struct {
	c *Client
}

// ListCategories lista as categorias ativas
func (r *Catalog) ListCategories(ctx context.Context) ([]product.Category, error) {
	var out []product.Category
	if err := r.c.do(ctx, http.MethodGet, "/categories", nil, nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// ListProducts lista os produtos, opcionalmente filtrados por categoria.
// Retorna product.ErrCategoryNotFound quando a categoria não existe.
func (r *Catalog) ListProducts(ctx context.Context, categoryID string) ([]product.Product, error) {
	var query url.Values
	var notFound error
	if categoryID != "" {
		query = url.Values{"categoryId": {categoryID}}
		notFound = product.ErrCategoryNotFound
	}
	var out []product.Product
	if err := r.c.do(ctx, http.MethodGet, "/products", query, nil, &out, notFound); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchProducts busca produtos pelo texto informado
func (r *Catalog) SearchProducts(ctx context.Context, q string) ([]product.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []product.Product{}, nil
	}
	var out []product.Product
	if err := r.c.do(ctx, http.MethodGet, "/products/search", url.Values{"q": {q}}, nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPromotedProducts lista os produtos em promoção
func (r *Catalog) GetPromotedProducts(ctx context.Context) ([]product.Product, error) {
	var out []product.Product
	if err := r.c.do(ctx, http.MethodGet, "/products/promoted", nil, nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProduct busca um produto pelo ID
func (r *Catalog) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, product.ErrProductNotFound
	}
	var out product.Product
	if err := r.c.do(ctx, http.MethodGet, "/products/"+escape(id), nil, nil, &out, product.ErrProductNotFound); err != nil {
		return nil, err
	}
	return &out, nil
}
