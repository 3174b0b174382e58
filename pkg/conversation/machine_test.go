package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/hugohenrick/atendente-pedidos/internal/domain/customer"
	"github.com/hugohenrick/atendente-pedidos/internal/domain/order"
	"github.com/hugohenrick/atendente-pedidos/internal/domain/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCustomers struct {
	err     error
	calls   int
	lastIn  customer.NewCustomerInput
	created *customer.Customer
}

func (f *fakeCustomers) Create(_ context.Context, in customer.NewCustomerInput) (*customer.Customer, error) {
	f.calls++
	f.lastIn = in
	if f.err != nil {
		return nil, f.err
	}
	f.created = &customer.Customer{ID: "c-1", FirstName: in.FirstName, LastName: in.LastName, Email: in.Email, Phone: in.Phone}
	return f.created, nil
}

type fakeOrders struct {
	err    error
	calls  int
	lastIn order.CreateInput
	placed *order.Order
}

func (f *fakeOrders) Create(_ context.Context, in order.CreateInput) (*order.Order, error) {
	f.calls++
	f.lastIn = in
	if f.err != nil {
		return nil, f.err
	}
	f.placed = &order.Order{ID: "o-1", OrderNumber: "1001", CustomerID: in.CustomerID, Status: order.StatusPending, Lines: in.Lines}
	return f.placed, nil
}

func coffee() product.Product {
	return product.Product{ID: "42", Name: "Café", Price: decimal.RequireFromString("4.50"), Active: true}
}

func newTestMachine() (*Machine, *fakeCustomers, *fakeOrders) {
	customers := &fakeCustomers{}
	orders := &fakeOrders{}
	return NewMachine("5511999990000", customers, orders), customers, orders
}

// toCollectingName leva a máquina até CollectingName com um item no carrinho
func toCollectingName(t *testing.T, m *Machine) {
	t.Helper()
	ctx := context.Background()
	m.Send(ctx, Simple(EventStart))
	m.Send(ctx, AddToCart(coffee(), 2))
	res := m.Send(ctx, Simple(EventCheckout))
	require.True(t, res.Handled)
	require.Equal(t, StateCollectingName, m.State())
}

func TestInitialState(t *testing.T) {
	m, _, _ := newTestMachine()
	assert.Equal(t, StateIdle, m.State())
	assert.True(t, m.Context().Cart.IsEmpty())
}

func TestNavigation(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestMachine()

	assert.Equal(t, StateGreeting, m.Send(ctx, Simple(EventStart)).To)
	assert.Equal(t, StateViewingMenu, m.Send(ctx, Simple(EventViewMenu)).To)
	assert.Equal(t, StateGreeting, m.Send(ctx, Simple(EventBack)).To)
	assert.Equal(t, StateViewingMenu, m.Send(ctx, Simple(EventViewMenu)).To)

	res := m.Send(ctx, SelectCategory("bebidas"))
	assert.Equal(t, StateSelectingProducts, res.To)
	assert.Equal(t, "bebidas", m.Context().SelectedCategory)

	assert.Equal(t, StateReviewingCart, m.Send(ctx, Simple(EventViewCart)).To)
	assert.Equal(t, StateViewingMenu, m.Send(ctx, Simple(EventViewMenu)).To)
	assert.Equal(t, StateReviewingCart, m.Send(ctx, Simple(EventViewCart)).To)
}

func TestUnhandledEventLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestMachine()

	res := m.Send(ctx, Simple(EventCheckout))
	assert.False(t, res.Handled)
	assert.Equal(t, StateIdle, m.State())

	res = m.Send(ctx, ProvideEmail("ana@x.com"))
	assert.False(t, res.Handled)
	assert.Empty(t, m.Context().CollectedInfo.Email)
}

func TestAddToCartMergesRepeatedProducts(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestMachine()
	m.Send(ctx, Simple(EventStart))

	m.Send(ctx, AddToCart(coffee(), 2))
	m.Send(ctx, AddToCart(coffee(), 3))
	res := m.Send(ctx, AddToCart(coffee(), 1))

	assert.Equal(t, StateSelectingProducts, res.To)
	require.Equal(t, 1, m.Context().Cart.Len())
	assert.Equal(t, 6, m.Context().Cart.Quantity("42"))
}

func TestCartTotalAfterTwoAdds(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestMachine()
	m.Send(ctx, Simple(EventStart))
	m.Send(ctx, AddToCart(coffee(), 2))
	m.Send(ctx, AddToCart(coffee(), 3))

	c := m.Context().Cart
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 5, c.Quantity("42"))
	assert.True(t, decimal.RequireFromString("22.50").Equal(c.Total(product.PriceList{"42": decimal.RequireFromString("4.50")})))
}

func TestCheckoutRefusedWhenCartEmpty(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestMachine()
	m.Send(ctx, Simple(EventViewMenu))
	m.Send(ctx, Simple(EventViewCart))
	require.Equal(t, StateReviewingCart, m.State())

	res := m.Send(ctx, Simple(EventCheckout))
	assert.False(t, res.Handled)
	assert.Equal(t, StateReviewingCart, m.State())

	m.Send(ctx, AddToCart(coffee(), 1))
	m.Send(ctx, Simple(EventViewCart))
	res = m.Send(ctx, Simple(EventCheckout))
	assert.True(t, res.Handled)
	assert.Equal(t, StateCollectingName, res.To)
}

func TestClearCartReturnsToMenu(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestMachine()
	m.Send(ctx, Simple(EventStart))
	m.Send(ctx, AddToCart(coffee(), 1))
	m.Send(ctx, Simple(EventViewCart))

	res := m.Send(ctx, Simple(EventClearCart))
	assert.Equal(t, StateViewingMenu, res.To)
	assert.True(t, m.Context().Cart.IsEmpty())
}

func TestRemoveFromCartInReview(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestMachine()
	m.Send(ctx, Simple(EventStart))
	m.Send(ctx, AddToCart(coffee(), 1))
	m.Send(ctx, Simple(EventViewCart))

	res := m.Send(ctx, RemoveFromCart("42"))
	assert.True(t, res.Handled)
	assert.Equal(t, StateReviewingCart, res.To)
	assert.True(t, m.Context().Cart.IsEmpty())
}

func TestFullCheckoutWithNewCustomer(t *testing.T) {
	ctx := context.Background()
	m, customers, orders := newTestMachine()
	toCollectingName(t, m)

	res := m.Send(ctx, ProvideName("Ana", "Lopez"))
	assert.Equal(t, StateCollectingEmail, res.To)

	res = m.Send(ctx, ProvideEmail("ana@x.com"))
	require.NoError(t, res.Err)
	assert.Equal(t, StateConfirmingOrder, res.To)
	assert.Equal(t, 1, customers.calls)
	assert.Equal(t, "5511999990000", customers.lastIn.Phone)
	assert.Equal(t, "Lopez", customers.lastIn.LastName)
	assert.Equal(t, customers.created, m.Context().Customer)

	res = m.Send(ctx, ConfirmOrder(product.PriceList{"42": decimal.RequireFromString("5.00")}))
	require.NoError(t, res.Err)
	assert.Equal(t, StateOrderCompleted, res.To)
	assert.Equal(t, 1, orders.calls)
	assert.True(t, m.Context().Cart.IsEmpty())
	assert.Same(t, orders.placed, m.Context().PendingOrder)

	require.Len(t, orders.lastIn.Lines, 1)
	assert.Equal(t, "c-1", orders.lastIn.CustomerID)
	assert.Equal(t, 2, orders.lastIn.Lines[0].Quantity)
	assert.True(t, decimal.RequireFromString("5.00").Equal(orders.lastIn.Lines[0].UnitPrice))
}

func TestKnownCustomerSkipsCollection(t *testing.T) {
	ctx := context.Background()
	m, customers, _ := newTestMachine()

	var visited []State
	m.sink = SinkFunc(func(_ context.Context, tr Transition) {
		visited = append(visited, tr.To)
	})

	m.Send(ctx, IdentifyCustomer(&customer.Customer{ID: "c-9", FirstName: "Ana"}))
	m.Send(ctx, Simple(EventStart))
	m.Send(ctx, AddToCart(coffee(), 1))
	res := m.Send(ctx, Simple(EventCheckout))

	assert.Equal(t, StateConfirmingOrder, res.To)
	assert.Zero(t, customers.calls)
	assert.NotContains(t, visited, StateCollectingName)
	assert.NotContains(t, visited, StateCollectingEmail)
	assert.Contains(t, visited, StateCheckingCustomer)
}

func TestCreateCustomerFailureReturnsToEmail(t *testing.T) {
	ctx := context.Background()
	m, customers, _ := newTestMachine()
	customers.err = errors.New("api fora do ar")
	toCollectingName(t, m)
	m.Send(ctx, ProvideName("Ana", "Lopez"))

	res := m.Send(ctx, ProvideEmail("ana@x.com"))
	assert.Error(t, res.Err)
	assert.Equal(t, StateCollectingEmail, res.To)
	assert.Contains(t, m.Context().LastError, "api fora do ar")
	assert.Nil(t, m.Context().Customer)

	customers.err = nil
	res = m.Send(ctx, ProvideEmail("ana@x.com"))
	require.NoError(t, res.Err)
	assert.Equal(t, StateConfirmingOrder, res.To)
	assert.Empty(t, m.Context().LastError)
}

func TestPlaceOrderFailurePreservesCart(t *testing.T) {
	ctx := context.Background()
	m, _, orders := newTestMachine()
	orders.err = errors.New("timeout")
	toCollectingName(t, m)
	m.Send(ctx, ProvideName("Ana", "Lopez"))
	m.Send(ctx, ProvideEmail("ana@x.com"))

	before := m.Context().Cart.Clone()
	res := m.Send(ctx, ConfirmOrder(nil))

	assert.Error(t, res.Err)
	assert.Equal(t, StateConfirmingOrder, res.To)
	assert.Equal(t, before, m.Context().Cart)
	assert.Nil(t, m.Context().PendingOrder)
	assert.Contains(t, m.Context().LastError, "timeout")

	orders.err = nil
	res = m.Send(ctx, ConfirmOrder(nil))
	require.NoError(t, res.Err)
	assert.Equal(t, StateOrderCompleted, res.To)
	assert.Equal(t, 2, orders.calls)
}

func TestCancelFromCheckoutReturnsToCart(t *testing.T) {
	ctx := context.Background()

	m, _, _ := newTestMachine()
	toCollectingName(t, m)
	assert.Equal(t, StateReviewingCart, m.Send(ctx, Simple(EventCancelOrder)).To)

	m, _, _ = newTestMachine()
	toCollectingName(t, m)
	m.Send(ctx, ProvideName("Ana", "Lopez"))
	assert.Equal(t, StateReviewingCart, m.Send(ctx, Simple(EventCancelOrder)).To)

	m, _, _ = newTestMachine()
	toCollectingName(t, m)
	m.Send(ctx, ProvideName("Ana", "Lopez"))
	m.Send(ctx, ProvideEmail("ana@x.com"))
	res := m.Send(ctx, Simple(EventCancelOrder))
	assert.Equal(t, StateReviewingCart, res.To)
	assert.Equal(t, 2, m.Context().Cart.Quantity("42"))
}

func TestOrderCompletedTransitions(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestMachine()
	toCollectingName(t, m)
	m.Send(ctx, ProvideName("Ana", "Lopez"))
	m.Send(ctx, ProvideEmail("ana@x.com"))
	m.Send(ctx, ConfirmOrder(nil))
	require.Equal(t, StateOrderCompleted, m.State())

	res := m.Send(ctx, Simple(EventViewMenu))
	assert.Equal(t, StateGreeting, res.To)
	assert.NotNil(t, m.Context().PendingOrder)
}

func TestOrderUpdatedReplacesPendingOrder(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestMachine()

	res := m.Send(ctx, OrderUpdated(&order.Order{ID: "o-1", Status: order.StatusCancelled}))
	assert.False(t, res.Handled)
	assert.Nil(t, m.Context().PendingOrder)

	toCollectingName(t, m)
	m.Send(ctx, ProvideName("Ana", "Lopez"))
	m.Send(ctx, ProvideEmail("ana@x.com"))
	m.Send(ctx, ConfirmOrder(nil))
	require.Equal(t, StateOrderCompleted, m.State())
	placed := m.Context().PendingOrder
	require.NotNil(t, placed)

	res = m.Send(ctx, OrderUpdated(&order.Order{ID: "outro", Status: order.StatusCancelled}))
	assert.False(t, res.Handled)
	assert.Same(t, placed, m.Context().PendingOrder)

	updated := *placed
	updated.Status = order.StatusCancelled
	res = m.Send(ctx, OrderUpdated(&updated))
	assert.True(t, res.Handled)
	assert.Equal(t, StateOrderCompleted, m.State())
	assert.Equal(t, order.StatusCancelled, m.Context().PendingOrder.Status)
}

func TestResetFromAnyState(t *testing.T) {
	ctx := context.Background()

	reach := map[State][]Event{
		StateIdle:              {},
		StateGreeting:          {Simple(EventStart)},
		StateViewingMenu:       {Simple(EventViewMenu)},
		StateSelectingProducts: {Simple(EventViewMenu), SelectCategory("x"), AddToCart(coffee(), 1)},
		StateReviewingCart:     {Simple(EventStart), AddToCart(coffee(), 1), Simple(EventViewCart)},
		StateCollectingName:    {Simple(EventStart), AddToCart(coffee(), 1), Simple(EventCheckout)},
		StateCollectingEmail:   {Simple(EventStart), AddToCart(coffee(), 1), Simple(EventCheckout), ProvideName("Ana", "Lopez")},
		StateConfirmingOrder:   {Simple(EventStart), AddToCart(coffee(), 1), Simple(EventCheckout), ProvideName("Ana", "Lopez"), ProvideEmail("ana@x.com")},
		StateOrderCompleted:    {Simple(EventStart), AddToCart(coffee(), 1), Simple(EventCheckout), ProvideName("Ana", "Lopez"), ProvideEmail("ana@x.com"), ConfirmOrder(nil)},
	}

	for want, events := range reach {
		t.Run(string(want), func(t *testing.T) {
			m, _, _ := newTestMachine()
			for _, ev := range events {
				m.Send(ctx, ev)
			}
			require.Equal(t, want, m.State())
			m.Send(ctx, Error("algo falhou"))

			res := m.Send(ctx, Simple(EventReset))
			assert.True(t, res.Handled)
			assert.Equal(t, StateIdle, m.State())

			c := m.Context()
			assert.True(t, c.Cart.IsEmpty())
			assert.Nil(t, c.Customer)
			assert.Nil(t, c.PendingOrder)
			assert.Empty(t, c.SelectedCategory)
			assert.Equal(t, CollectedInfo{}, c.CollectedInfo)
			assert.Empty(t, c.LastError)
		})
	}
}

func TestErrorEventKeepsState(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestMachine()
	m.Send(ctx, Simple(EventViewMenu))

	res := m.Send(ctx, Error("catálogo indisponível"))
	assert.True(t, res.Handled)
	assert.False(t, res.Changed())
	assert.Equal(t, StateViewingMenu, m.State())
	assert.Equal(t, "catálogo indisponível", m.Context().LastError)
}

func TestSinkSeesEveryStep(t *testing.T) {
	ctx := context.Background()
	var got []Transition
	m := NewMachine("55", &fakeCustomers{}, &fakeOrders{}, WithSink(SinkFunc(func(_ context.Context, tr Transition) {
		got = append(got, tr)
	})))

	m.Send(ctx, Simple(EventStart))
	m.Send(ctx, AddToCart(coffee(), 1))
	m.Send(ctx, Simple(EventCheckout))

	require.Len(t, got, 4)
	assert.Equal(t, Transition{CustomerKey: "55", Event: EventStart, From: StateIdle, To: StateGreeting}, got[0])
	assert.Equal(t, StateCheckingCustomer, got[2].To)
	assert.Equal(t, StateCheckingCustomer, got[3].From)
	assert.Equal(t, StateCollectingName, got[3].To)
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestMachine()
	m.Send(ctx, Simple(EventStart))
	m.Send(ctx, AddToCart(coffee(), 1))

	state, snap := m.Snapshot()
	m.Send(ctx, AddToCart(coffee(), 1))

	assert.Equal(t, StateSelectingProducts, state)
	assert.Equal(t, 1, snap.Cart.Quantity("42"))
	assert.Equal(t, 2, m.Context().Cart.Quantity("42"))
}

func TestStateHelpers(t *testing.T) {
	assert.True(t, StateCollectingEmail.InCheckout())
	assert.Equal(t, "checkout", StateCollectingEmail.Parent())
	assert.Equal(t, "greeting", StateGreeting.Parent())
	assert.True(t, StatePlacingOrder.Transient())
	assert.False(t, StateConfirmingOrder.Transient())
}
