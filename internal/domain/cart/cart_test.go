package cart

import (
	"testing"

	"github.com/hugohenrick/atendente-pedidos/internal/domain/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coffee() product.Product {
	return product.Product{ID: "42", Name: "Café", Price: decimal.RequireFromString("4.50"), Active: true}
}

func bread() product.Product {
	return product.Product{ID: "7", Name: "Pão de queijo", Price: decimal.RequireFromString("3.00"), Active: true}
}

func TestAddMergesSameProduct(t *testing.T) {
	c := New()
	c.Add(coffee(), 2)
	c.Add(bread(), 1)
	c.Add(coffee(), 3)

	require.Equal(t, 2, c.Len())
	assert.Equal(t, 5, c.Quantity("42"))
	assert.Equal(t, 1, c.Quantity("7"))
}

func TestAddIgnoresNonPositiveQuantity(t *testing.T) {
	c := New()
	c.Add(coffee(), 0)
	c.Add(coffee(), -2)

	assert.True(t, c.IsEmpty())
}

func TestTotalUsesCurrentPrices(t *testing.T) {
	c := New()
	c.Add(coffee(), 2)
	c.Add(coffee(), 3)

	assert.True(t, decimal.RequireFromString("22.50").Equal(c.Total(nil)))

	prices := product.PriceList{"42": decimal.RequireFromString("5.00")}
	assert.True(t, decimal.RequireFromString("25.00").Equal(c.Total(prices)))
}

func TestTotalFallsBackToSnapshotPrice(t *testing.T) {
	c := New()
	c.Add(coffee(), 1)
	c.Add(bread(), 2)

	prices := product.PriceList{"42": decimal.RequireFromString("4.00")}
	assert.True(t, decimal.RequireFromString("10.00").Equal(c.Total(prices)))
}

func TestRemoveAndClear(t *testing.T) {
	c := New()
	c.Add(coffee(), 1)
	c.Add(bread(), 1)

	c.Remove("999")
	assert.Equal(t, 2, c.Len())

	c.Remove("42")
	assert.Equal(t, 1, c.Len())
	assert.Zero(t, c.Quantity("42"))

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.True(t, decimal.Zero.Equal(c.Total(nil)))
}

func TestCloneIsIndependent(t *testing.T) {
	c := New()
	c.Add(coffee(), 1)

	clone := c.Clone()
	c.Add(coffee(), 4)

	assert.Equal(t, 1, clone.Quantity("42"))
	assert.Equal(t, 5, c.Quantity("42"))
}
