package conversation

import (
	"context"
	"fmt"

	"github.com/hugohenrick/atendente-pedidos/internal/domain/cart"
	"github.com/hugohenrick/atendente-pedidos/internal/domain/customer"
	"github.com/hugohenrick/atendente-pedidos/internal/domain/order"
)

// CollectedInfo guarda os dados digitados durante o checkout
type CollectedInfo struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Context é o estado estendido da máquina
type Context struct {
	Cart             *cart.Cart         `json:"cart"`
	Customer         *customer.Customer `json:"customer,omitempty"`
	PendingOrder     *order.Order       `json:"pendingOrder,omitempty"`
	SelectedCategory string             `json:"selectedCategory,omitempty"`
	CollectedInfo    CollectedInfo      `json:"collectedInfo"`
	LastError        string             `json:"lastError,omitempty"`
}

func newContext() Context {
	return Context{Cart: cart.New()}
}

// CustomerCreator cria clientes na API de pedidos
type CustomerCreator interface {
	Create(ctx context.Context, in customer.NewCustomerInput) (*customer.Customer, error)
}

// OrderPlacer cria pedidos na API de pedidos
type OrderPlacer interface {
	Create(ctx context.Context, in order.CreateInput) (*order.Order, error)
}

// Transition descreve um passo executado pela máquina
type Transition struct {
	CustomerKey string
	Event       EventType
	From        State
	To          State
	LastError   string
}

// TransitionSink observa todas as transições. Não participa da correção da máquina.
type TransitionSink interface {
	OnTransition(ctx context.Context, t Transition)
}

// SinkFunc adapta uma função a TransitionSink
type SinkFunc func(ctx context.Context, t Transition)

func (f SinkFunc) OnTransition(ctx context.Context, t Transition) { f(ctx, t) }

// Result é o resultado de Send
type Result struct {
	From    State
	To      State
	Handled bool
	// Err é o erro da invocação à API de pedidos disparada pelo evento, se houver
	Err error
}

// Changed indica se o estado folha mudou
func (r Result) Changed() bool {
	return r.From != r.To
}

// Machine é a máquina de estados de uma conversa.
// Não é segura para uso concorrente; o acesso é serializado pela sessão.
type Machine struct {
	customerKey string
	state       State
	ctx         Context
	customers   CustomerCreator
	orders      OrderPlacer
	sink        TransitionSink
}

// Option configura a máquina
type Option func(*Machine)

// WithSink registra um observador de transições
func WithSink(sink TransitionSink) Option {
	return func(m *Machine) {
		m.sink = sink
	}
}

// NewMachine cria uma máquina em Idle para a chave do cliente (telefone)
func NewMachine(customerKey string, customers CustomerCreator, orders OrderPlacer, opts ...Option) *Machine {
	m := &Machine{
		customerKey: customerKey,
		state:       StateIdle,
		ctx:         newContext(),
		customers:   customers,
		orders:      orders,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// State retorna o estado folha atual
func (m *Machine) State() State {
	return m.state
}

// Context retorna o contexto atual. O ponteiro do carrinho é compartilhado.
func (m *Machine) Context() *Context {
	return &m.ctx
}

// Snapshot retorna uma cópia do estado e do contexto para leitura
func (m *Machine) Snapshot() (State, Context) {
	c := m.ctx
	c.Cart = m.ctx.Cart.Clone()
	return m.state, c
}

// Send entrega um evento à máquina. Eventos sem transição no estado atual são
// ignorados sem alterar estado nem contexto.
func (m *Machine) Send(ctx context.Context, ev Event) Result {
	from := m.state
	res := Result{From: from, To: from}

	switch ev.Type {
	case EventReset:
		m.state = StateIdle
		m.ctx = newContext()
		m.notify(ctx, ev.Type, from)
		res.To = m.state
		res.Handled = true
		return res
	case EventError:
		m.ctx.LastError = ev.Message
		m.notify(ctx, ev.Type, from)
		res.Handled = true
		return res
	case EventIdentifyCustomer:
		if ev.Customer != nil {
			m.ctx.Customer = ev.Customer
		}
		m.notify(ctx, ev.Type, from)
		res.Handled = true
		return res
	case EventOrderUpdated:
		// Só substitui o pedido pendente de mesmo ID
		pending := m.ctx.PendingOrder
		if ev.Order == nil || pending == nil || pending.ID != ev.Order.ID {
			return res
		}
		m.ctx.PendingOrder = ev.Order
		m.notify(ctx, ev.Type, from)
		res.Handled = true
		return res
	}

	t, ok := m.lookup(ev)
	if !ok {
		return res
	}

	if t.action != nil {
		t.action(&m.ctx, ev)
	}
	m.state = t.target
	m.notify(ctx, ev.Type, from)

	res.Handled = true
	res.Err = m.settle(ctx, ev)
	res.To = m.state
	return res
}

func (m *Machine) lookup(ev Event) (transition, bool) {
	for _, t := range transitions[m.state][ev.Type] {
		if t.guard == nil || t.guard(&m.ctx, ev) {
			return t, true
		}
	}
	return transition{}, false
}

// settle resolve os estados transitórios (pseudoestado e invocações)
// até parar em um estado que espera o cliente
func (m *Machine) settle(ctx context.Context, ev Event) error {
	var invokeErr error
	for m.state.Transient() {
		from := m.state
		switch m.state {
		case StateCheckingCustomer:
			if m.ctx.Customer != nil {
				m.state = StateConfirmingOrder
			} else {
				m.state = StateCollectingName
			}
		default:
			inv := invocations[m.state]
			m.ctx.LastError = ""
			if err := inv.run(ctx, m, ev); err != nil {
				invokeErr = err
				m.ctx.LastError = err.Error()
				m.state = inv.onError
			} else {
				m.state = inv.onDone
			}
		}
		m.notify(ctx, ev.Type, from)
	}
	return invokeErr
}

func (m *Machine) notify(ctx context.Context, ev EventType, from State) {
	if m.sink == nil {
		return
	}
	m.sink.OnTransition(ctx, Transition{
		CustomerKey: m.customerKey,
		Event:       ev,
		From:        from,
		To:          m.state,
		LastError:   m.ctx.LastError,
	})
}

type transition struct {
	target State
	guard  func(*Context, Event) bool
	action func(*Context, Event)
}

type invocation struct {
	run     func(ctx context.Context, m *Machine, ev Event) error
	onDone  State
	onError State
}

func cartNotEmpty(c *Context, _ Event) bool {
	return !c.Cart.IsEmpty()
}

func addToCart(c *Context, ev Event) {
	qty := ev.Quantity
	if qty <= 0 {
		qty = 1
	}
	c.Cart.Add(ev.Product, qty)
}

func removeFromCart(c *Context, ev Event) {
	c.Cart.Remove(ev.Product.ID)
}

func clearCart(c *Context, _ Event) {
	c.Cart.Clear()
}

func selectCategory(c *Context, ev Event) {
	c.SelectedCategory = ev.CategoryID
}

func recordName(c *Context, ev Event) {
	c.CollectedInfo.FirstName = ev.FirstName
	c.CollectedInfo.LastName = ev.LastName
}

func recordEmail(c *Context, ev Event) {
	c.CollectedInfo.Email = ev.Email
}

func to(target State) transition {
	return transition{target: target}
}

var transitions = map[State]map[EventType][]transition{
	StateIdle: {
		EventStart:    {to(StateGreeting)},
		EventViewMenu: {to(StateViewingMenu)},
	},
	StateGreeting: {
		EventViewMenu:  {to(StateViewingMenu)},
		EventAddToCart: {{target: StateSelectingProducts, action: addToCart}},
	},
	StateViewingMenu: {
		EventSelectCategory: {{target: StateSelectingProducts, action: selectCategory}},
		EventViewCart:       {to(StateReviewingCart)},
		EventBack:           {to(StateGreeting)},
	},
	StateSelectingProducts: {
		EventAddToCart: {{target: StateSelectingProducts, action: addToCart}},
		EventViewCart:  {to(StateReviewingCart)},
		EventViewMenu:  {to(StateViewingMenu)},
		EventCheckout:  {to(StateCheckingCustomer)},
	},
	StateReviewingCart: {
		EventCheckout:       {{target: StateCheckingCustomer, guard: cartNotEmpty}},
		EventViewMenu:       {to(StateViewingMenu)},
		EventClearCart:      {{target: StateViewingMenu, action: clearCart}},
		EventAddToCart:      {{target: StateSelectingProducts, action: addToCart}},
		EventRemoveFromCart: {{target: StateReviewingCart, action: removeFromCart}},
	},
	StateCollectingName: {
		EventProvideName: {{target: StateCollectingEmail, action: recordName}},
		EventCancelOrder: {to(StateReviewingCart)},
	},
	StateCollectingEmail: {
		EventProvideEmail: {{target: StateCreatingCustomer, action: recordEmail}},
		EventCancelOrder:  {to(StateReviewingCart)},
	},
	StateConfirmingOrder: {
		EventConfirmOrder: {to(StatePlacingOrder)},
		EventCancelOrder:  {to(StateReviewingCart)},
	},
	StateOrderCompleted: {
		EventStart:    {to(StateGreeting)},
		EventViewMenu: {to(StateGreeting)},
	},
}

var invocations = map[State]invocation{
	StateCreatingCustomer: {
		run:     createCustomer,
		onDone:  StateConfirmingOrder,
		onError: StateCollectingEmail,
	},
	StatePlacingOrder: {
		run:     placeOrder,
		onDone:  StateOrderCompleted,
		onError: StateConfirmingOrder,
	},
}

func createCustomer(ctx context.Context, m *Machine, _ Event) error {
	info := m.ctx.CollectedInfo
	in, err := customer.NewCustomer(info.FirstName, info.LastName, info.Email, m.customerKey)
	if err != nil {
		return err
	}

	c, err := m.customers.Create(ctx, in)
	if err != nil {
		return fmt.Errorf("erro ao cadastrar cliente: %w", err)
	}

	m.ctx.Customer = c
	return nil
}

func placeOrder(ctx context.Context, m *Machine, ev Event) error {
	if m.ctx.Customer == nil {
		return order.ErrMissingCustomer
	}

	lines := make([]order.Line, 0, m.ctx.Cart.Len())
	for _, l := range m.ctx.Cart.Lines {
		lines = append(lines, order.Line{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Quantity:  l.Quantity,
			UnitPrice: m.ctx.Cart.UnitPrice(l, ev.Prices),
		})
	}

	in := order.CreateInput{CustomerID: m.ctx.Customer.ID, Lines: lines}
	if err := in.Validate(); err != nil {
		return err
	}

	o, err := m.orders.Create(ctx, in)
	if err != nil {
		return fmt.Errorf("erro ao criar pedido: %w", err)
	}

	m.ctx.PendingOrder = o
	m.ctx.Cart.Clear()
	return nil
}
