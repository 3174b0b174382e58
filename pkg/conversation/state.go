package conversation

import (
	"strings"

	"github.com/hugohenrick/atendente-pedidos/internal/domain/cart"
	"github.com/hugohenrick/atendente-pedidos/internal/domain/customer"
	"github.com/hugohenrick/atendente-pedidos/internal/domain/order"
	"github.com/hugohenrick/atendente-pedidos/internal/domain/product"
)

// State é o estado folha da conversa
type State string

const (
	StateIdle              State = "idle"
	StateGreeting          State = "greeting"
	StateViewingMenu       State = "viewing_menu"
	StateSelectingProducts State = "selecting_products"
	StateReviewingCart     State = "reviewing_cart"
	StateOrderCompleted    State = "order_completed"

	// Subestados do checkout
	StateCheckingCustomer State = "checkout.checking_customer"
	StateCollectingName   State = "checkout.collecting_name"
	StateCollectingEmail  State = "checkout.collecting_email"
	StateCreatingCustomer State = "checkout.creating_customer"
	StateConfirmingOrder  State = "checkout.confirming_order"
	StatePlacingOrder     State = "checkout.placing_order"
)

const checkoutPrefix = "checkout."

// InCheckout indica se o estado pertence ao submáquina de checkout
func (s State) InCheckout() bool {
	return strings.HasPrefix(string(s), checkoutPrefix)
}

// Parent retorna o estado composto ("checkout") ou o próprio estado
func (s State) Parent() string {
	if s.InCheckout() {
		return strings.TrimSuffix(checkoutPrefix, ".")
	}
	return string(s)
}

// Transient indica estados que se resolvem sem esperar o cliente
func (s State) Transient() bool {
	switch s {
	case StateCheckingCustomer, StateCreatingCustomer, StatePlacingOrder:
		return true
	}
	return false
}

// EventType identifica um evento da máquina
type EventType string

const (
	EventStart            EventType = "START"
	EventViewMenu         EventType = "VIEW_MENU"
	EventSelectCategory   EventType = "SELECT_CATEGORY"
	EventAddToCart        EventType = "ADD_TO_CART"
	EventRemoveFromCart   EventType = "REMOVE_FROM_CART"
	EventViewCart         EventType = "VIEW_CART"
	EventClearCart        EventType = "CLEAR_CART"
	EventBack             EventType = "BACK"
	EventCheckout         EventType = "CHECKOUT"
	EventProvideName      EventType = "PROVIDE_NAME"
	EventProvideEmail     EventType = "PROVIDE_EMAIL"
	EventConfirmOrder     EventType = "CONFIRM_ORDER"
	EventCancelOrder      EventType = "CANCEL_ORDER"
	EventIdentifyCustomer EventType = "IDENTIFY_CUSTOMER"
	EventOrderUpdated     EventType = "ORDER_UPDATED"
	EventReset            EventType = "RESET"
	EventError            EventType = "ERROR"
)

// Event é a entrada da máquina. Só os campos do tipo do evento são lidos.
type Event struct {
	Type       EventType
	Product    product.Product
	Quantity   int
	CategoryID string
	FirstName  string
	LastName   string
	Email      string
	Customer   *customer.Customer
	Order      *order.Order
	Prices     cart.PriceLookup
	Message    string
}

// Simple cria um evento sem dados
func Simple(t EventType) Event {
	return Event{Type: t}
}

// AddToCart cria o evento de adicionar produto ao carrinho
func AddToCart(p product.Product, quantity int) Event {
	return Event{Type: EventAddToCart, Product: p, Quantity: quantity}
}

// RemoveFromCart cria o evento de remover um produto do carrinho
func RemoveFromCart(productID string) Event {
	return Event{Type: EventRemoveFromCart, Product: product.Product{ID: productID}}
}

// SelectCategory cria o evento de seleção de categoria
func SelectCategory(categoryID string) Event {
	return Event{Type: EventSelectCategory, CategoryID: categoryID}
}

// ProvideName cria o evento com nome e sobrenome coletados
func ProvideName(first, last string) Event {
	return Event{Type: EventProvideName, FirstName: first, LastName: last}
}

// ProvideEmail cria o evento com o email coletado
func ProvideEmail(email string) Event {
	return Event{Type: EventProvideEmail, Email: email}
}

// ConfirmOrder cria o evento de confirmação com os preços vigentes
func ConfirmOrder(prices cart.PriceLookup) Event {
	return Event{Type: EventConfirmOrder, Prices: prices}
}

// IdentifyCustomer cria o evento que registra um cliente já cadastrado
func IdentifyCustomer(c *customer.Customer) Event {
	return Event{Type: EventIdentifyCustomer, Customer: c}
}

// OrderUpdated cria o evento que atualiza o pedido pendente com a versão da API
func OrderUpdated(o *order.Order) Event {
	return Event{Type: EventOrderUpdated, Order: o}
}

// Error cria o evento que registra uma mensagem de erro no contexto
func Error(message string) Event {
	return Event{Type: EventError, Message: message}
}
