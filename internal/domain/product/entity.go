package product

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound  = errors.New("produto não encontrado")
	ErrCategoryNotFound = errors.New("categoria não encontrada")
)

// Category representa uma categoria do cardápio
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Product representa um produto do catálogo
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  string          `json:"categoryId,omitempty"`
	Promoted    bool            `json:"promoted,omitempty"`
	Active      bool            `json:"active"`
}

// PriceList mapeia o ID do produto para o preço unitário vigente
type PriceList map[string]decimal.Decimal

// UnitPrice implementa cart.PriceLookup
func (p PriceList) UnitPrice(productID string) (decimal.Decimal, bool) {
	price, ok := p[productID]
	return price, ok
}

// NewPriceList monta a tabela de preços a partir do catálogo atual
func NewPriceList(products []Product) PriceList {
	prices := make(PriceList, len(products))
	for _, p := range products {
		prices[p.ID] = p.Price
	}
	return prices
}

// FindByName busca um produto cujo nome seja exatamente igual ao informado,
// ignorando caixa e espaços nas pontas
func FindByName(products []Product, name string) (Product, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Product{}, false
	}
	for _, p := range products {
		if strings.EqualFold(strings.TrimSpace(p.Name), name) {
			return p, true
		}
	}
	return Product{}, false
}
