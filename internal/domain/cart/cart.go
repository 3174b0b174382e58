package cart

import (
	"github.com/hugohenrick/atendente-pedidos/internal/domain/product"
	"github.com/shopspring/decimal"
)

// PriceLookup fornece o preço unitário vigente de um produto
type PriceLookup interface {
	UnitPrice(productID string) (decimal.Decimal, bool)
}

// Line representa um item do carrinho.
// Product guarda o produto como foi visto ao adicionar; o preço usado no total
// vem do PriceLookup no momento do cálculo.
type Line struct {
	Product  product.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Subtotal calcula o subtotal da linha com o preço informado
func (l Line) Subtotal(unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart é o carrinho da conversa. Não há duas linhas com o mesmo produto.
type Cart struct {
	Lines []Line `json:"lines"`
}

// New cria um carrinho vazio
func New() *Cart {
	return &Cart{Lines: make([]Line, 0)}
}

// Add soma a quantidade à linha do mesmo produto ou cria uma nova linha
func (c *Cart) Add(p product.Product, quantity int) {
	if quantity <= 0 {
		return
	}

	for i := range c.Lines {
		if c.Lines[i].Product.ID == p.ID {
			c.Lines[i].Quantity += quantity
			return
		}
	}

	c.Lines = append(c.Lines, Line{Product: p, Quantity: quantity})
}

// Remove exclui a linha do produto, se existir
func (c *Cart) Remove(productID string) {
	for i := range c.Lines {
		if c.Lines[i].Product.ID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// Clear esvazia o carrinho
func (c *Cart) Clear() {
	c.Lines = make([]Line, 0)
}

// IsEmpty indica se o carrinho está vazio
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Len retorna o número de linhas
func (c *Cart) Len() int {
	return len(c.Lines)
}

// Quantity retorna a quantidade do produto no carrinho
func (c *Cart) Quantity(productID string) int {
	for _, l := range c.Lines {
		if l.Product.ID == productID {
			return l.Quantity
		}
	}
	return 0
}

// UnitPrice retorna o preço vigente da linha, ou o preço visto ao adicionar
// quando o produto não está na tabela
func (c *Cart) UnitPrice(l Line, prices PriceLookup) decimal.Decimal {
	if prices != nil {
		if price, ok := prices.UnitPrice(l.Product.ID); ok {
			return price
		}
	}
	return l.Product.Price
}

// Total soma os subtotais das linhas usando os preços vigentes
func (c *Cart) Total(prices PriceLookup) decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal(c.UnitPrice(l, prices)))
	}
	return total
}

// Clone retorna uma cópia independente do carrinho
func (c *Cart) Clone() *Cart {
	lines := make([]Line, len(c.Lines))
	copy(lines, c.Lines)
	return &Cart{Lines: lines}
}
