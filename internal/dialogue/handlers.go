package dialogue

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hugohenrick/atendente-pedidos/internal/domain/customer"
	"github.com/hugohenrick/atendente-pedidos/internal/domain/product"
	"github.com/hugohenrick/atendente-pedidos/pkg/conversation"
	"github.com/hugohenrick/atendente-pedidos/pkg/mcp/intent"
)

// IDs das opções interativas
const (
	PayloadStart            = "start"
	PayloadViewMenu         = "view_menu"
	PayloadBack             = "back"
	PayloadPromotions       = "promotions"
	PayloadViewCart         = "view_cart"
	PayloadContinueShopping = "continue_shopping"
	PayloadClearCart        = "clear_cart"
	PayloadCheckout         = "checkout"
	PayloadConfirmOrder     = "confirm_order"
	PayloadCancelOrder      = "cancel_order"
	PayloadOrderStatus      = "order_status"
	PayloadHelp             = "help"

	PrefixCategory = "category_"
	PrefixProduct  = "product_"
	PrefixRemove   = "remove_"
)

func (r *Router) handlePayload(t *turn, id string) {
	switch {
	case id == PayloadStart:
		r.greet(t)
	case id == PayloadViewMenu, id == PayloadContinueShopping:
		r.showMenu(t)
	case id == PayloadBack:
		if t.send(conversation.Simple(conversation.EventBack)).Handled {
			r.welcome(t)
			return
		}
		r.showMenu(t)
	case id == PayloadPromotions:
		r.showPromotions(t)
	case strings.HasPrefix(id, PrefixCategory):
		r.selectCategory(t, strings.TrimPrefix(id, PrefixCategory))
	case strings.HasPrefix(id, PrefixProduct):
		r.addProductByID(t, strings.TrimPrefix(id, PrefixProduct))
	case strings.HasPrefix(id, PrefixRemove):
		r.removeProduct(t, strings.TrimPrefix(id, PrefixRemove))
	case id == PayloadViewCart:
		r.showCart(t)
	case id == PayloadClearCart:
		r.clearCart(t)
	case id == PayloadCheckout:
		r.checkout(t)
	case id == PayloadConfirmOrder:
		r.confirmOrder(t)
	case id == PayloadCancelOrder:
		r.cancelOrder(t)
	case id == PayloadOrderStatus:
		r.orderStatus(t)
	case id == PayloadHelp:
		r.help(t)
	default:
		t.log.Warn("Opção interativa desconhecida", "payload", id)
		r.fallback(t)
	}
}

func (r *Router) handleText(t *turn, text string) {
	switch t.m.State() {
	case conversation.StateCollectingName:
		r.collectName(t, text)
		return
	case conversation.StateCollectingEmail:
		r.collectEmail(t, text)
		return
	case conversation.StateConfirmingOrder:
		r.answerConfirmation(t, text)
		return
	}

	in, err := r.NLU.DetectIntent(t.ctx, text, string(t.m.State()))
	if err != nil || in == nil {
		t.log.Warn("Erro ao detectar intenção", "error", err)
		in = intent.Unknown(text)
	}
	t.log.Debug("Intenção detectada", "type", in.Type, "confidence", in.Confidence)

	switch in.Type {
	case intent.TypeGreeting:
		r.greet(t)
	case intent.TypeMenu:
		r.showMenu(t)
	case intent.TypeOrder:
		r.naturalOrder(t, text)
	case intent.TypeProductInfo:
		r.productInfo(t, in)
	case intent.TypeHelp:
		r.help(t)
	case intent.TypeCancelOrder:
		r.cancelOrder(t)
	case intent.TypeOrderStatus:
		r.orderStatus(t)
	default:
		if t.m.State() == conversation.StateIdle {
			r.greet(t)
			return
		}
		r.fallback(t)
	}
}

// greet inicia a conversa quando possível e mostra o menu principal
func (r *Router) greet(t *turn) {
	switch t.m.State() {
	case conversation.StateIdle, conversation.StateOrderCompleted:
		t.send(conversation.Simple(conversation.EventStart))
	}
	r.welcome(t)
}

func (r *Router) welcome(t *turn) {
	name := ""
	if c := t.m.Context().Customer; c != nil {
		name = ", " + c.FirstName
	}
	t.buttons(fmt.Sprintf(msgWelcome, name), mainMenuButtons()...)
}

func (r *Router) fallback(t *turn) {
	if t.m.State().InCheckout() {
		t.text(msgNotUnderstood)
		r.promptCheckoutStep(t)
		return
	}
	if !t.m.Context().Cart.IsEmpty() {
		t.text(msgNotUnderstood)
		r.renderCart(t)
		return
	}
	t.buttons(msgNotUnderstood+"\n\n"+msgMainMenu, mainMenuButtons()...)
}

func (r *Router) help(t *turn) {
	t.buttons(msgHelp, mainMenuButtons()...)
}

// toMenu leva a máquina até ViewingMenu. Retorna false durante o checkout.
func (r *Router) toMenu(t *turn) bool {
	for i := 0; i < 2 && t.m.State() != conversation.StateViewingMenu; i++ {
		if !t.send(conversation.Simple(conversation.EventViewMenu)).Handled {
			break
		}
	}
	return t.m.State() == conversation.StateViewingMenu
}

func (r *Router) showMenu(t *turn) {
	if !r.toMenu(t) {
		r.blockedByCheckout(t)
		return
	}

	categories, err := r.Catalog.ListCategories(t.ctx)
	if err != nil {
		t.log.Error("Erro ao listar categorias", "error", err)
		t.buttons(msgCatalogUnavailable, retryMenuButtons()...)
		return
	}
	if len(categories) == 0 {
		t.buttons(msgEmptyCatalog, mainMenuButtons()...)
		return
	}

	t.list("Cardápio", msgChooseCategory, "Ver categorias", categorySections(categories)...)
}

func (r *Router) selectCategory(t *turn, categoryID string) {
	if !r.toMenu(t) {
		r.blockedByCheckout(t)
		return
	}
	t.send(conversation.SelectCategory(categoryID))

	products, err := r.Catalog.ListProducts(t.ctx, categoryID)
	if errors.Is(err, product.ErrCategoryNotFound) {
		t.buttons(msgCategoryNotFound, Button{ID: PayloadViewMenu, Title: "Ver categorias"}, Button{ID: PayloadViewCart, Title: "Ver carrinho"})
		return
	}
	if err != nil {
		t.log.Error("Erro ao listar produtos", "error", err, "category_id", categoryID)
		t.buttons(msgCatalogUnavailable, retryMenuButtons()...)
		return
	}
	products = activeOnly(products)
	if len(products) == 0 {
		t.buttons(msgEmptyCategory, Button{ID: PayloadViewMenu, Title: "Ver categorias"}, Button{ID: PayloadViewCart, Title: "Ver carrinho"})
		return
	}

	t.list("Produtos", msgChooseProduct, "Ver produtos", productSections("Produtos", products)...)
}

func (r *Router) showPromotions(t *turn) {
	products, err := r.Catalog.GetPromotedProducts(t.ctx)
	if err != nil {
		t.log.Error("Erro ao listar promoções", "error", err)
		t.buttons(msgCatalogUnavailable, retryMenuButtons()...)
		return
	}
	products = activeOnly(products)
	if len(products) == 0 {
		t.buttons(msgNoPromotions, mainMenuButtons()...)
		return
	}
	t.list("Promoções", msgPromotions, "Ver promoções", productSections("Promoções", products)...)
}

func (r *Router) addProductByID(t *turn, productID string) {
	p, err := r.Catalog.GetProduct(t.ctx, productID)
	if errors.Is(err, product.ErrProductNotFound) || (err == nil && p != nil && !p.Active) {
		t.buttons(msgProductUnavailable, Button{ID: PayloadViewMenu, Title: "Ver cardápio"}, Button{ID: PayloadViewCart, Title: "Ver carrinho"})
		return
	}
	if err != nil || p == nil {
		t.log.Error("Erro ao buscar produto", "error", err, "product_id", productID)
		t.buttons(msgCatalogUnavailable, retryMenuButtons()...)
		return
	}

	if !r.addToCart(t, *p, 1) {
		return
	}
	t.buttons(fmt.Sprintf(msgAdded, 1, p.Name, formatMoney(p.Price)), afterAddButtons()...)
}

// addToCart leva a máquina a um estado que aceita ADD_TO_CART e envia o evento
func (r *Router) addToCart(t *turn, p product.Product, qty int) bool {
	switch t.m.State() {
	case conversation.StateIdle:
		t.send(conversation.Simple(conversation.EventStart))
	case conversation.StateViewingMenu:
		t.send(conversation.SelectCategory(p.CategoryID))
	case conversation.StateOrderCompleted:
		t.send(conversation.Simple(conversation.EventStart))
	}

	if !t.send(conversation.AddToCart(p, qty)).Handled {
		r.blockedByCheckout(t)
		return false
	}
	return true
}

// naturalOrder adiciona ao carrinho os itens do texto cujo nome bate exatamente com o catálogo
func (r *Router) naturalOrder(t *turn, text string) {
	if t.m.State().InCheckout() {
		r.blockedByCheckout(t)
		return
	}

	catalog, err := r.Catalog.ListProducts(t.ctx, "")
	if err != nil {
		t.log.Error("Erro ao carregar catálogo", "error", err)
		t.buttons(msgCatalogUnavailable, retryMenuButtons()...)
		return
	}
	catalog = activeOnly(catalog)

	items, err := r.NLU.ParseOrder(t.ctx, text, catalog)
	if err != nil {
		t.log.Warn("Erro ao interpretar pedido", "error", err)
		items = nil
	}

	var added []string
	for _, item := range items {
		p, ok := product.FindByName(catalog, item.ProductName)
		if !ok {
			t.log.Debug("Produto do pedido não encontrado no catálogo", "product_name", item.ProductName)
			continue
		}
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		if !r.addToCart(t, p, qty) {
			return
		}
		added = append(added, fmt.Sprintf("%dx %s", qty, p.Name))
	}

	if len(added) == 0 {
		t.text(msgOrderNotMatched)
		r.showMenu(t)
		return
	}
	t.buttons(fmt.Sprintf(msgAddedMany, strings.Join(added, "\n")), afterAddButtons()...)
}

func (r *Router) productInfo(t *turn, in *intent.Intent) {
	reply, err := r.NLU.GenerateResponse(t.ctx, in, r.domainContext(t))
	if err != nil {
		t.log.Warn("Erro ao gerar resposta", "error", err)
		r.showMenu(t)
		return
	}
	t.text(reply)
}

func (r *Router) removeProduct(t *turn, productID string) {
	if t.m.State() != conversation.StateReviewingCart {
		if !r.toCart(t) {
			r.blockedByCheckout(t)
			return
		}
	}
	t.send(conversation.RemoveFromCart(productID))
	r.renderCart(t)
}

// toCart leva a máquina até ReviewingCart
func (r *Router) toCart(t *turn) bool {
	if t.m.State() == conversation.StateReviewingCart {
		return true
	}
	if t.send(conversation.Simple(conversation.EventViewCart)).Handled {
		return true
	}
	if !r.toMenu(t) {
		return false
	}
	return t.send(conversation.Simple(conversation.EventViewCart)).Handled
}

func (r *Router) showCart(t *turn) {
	if !r.toCart(t) {
		r.blockedByCheckout(t)
		return
	}
	r.renderCart(t)
}

func (r *Router) renderCart(t *turn) {
	c := t.m.Context().Cart
	if c.IsEmpty() {
		t.buttons(msgEmptyCart, Button{ID: PayloadViewMenu, Title: "Ver cardápio"}, Button{ID: PayloadPromotions, Title: "Promoções"})
		return
	}

	prices := r.currentPrices(t)
	t.list("Seu carrinho", cartSummary(c, prices), "Opções", cartSections(c)...)
}

func (r *Router) clearCart(t *turn) {
	if !r.toCart(t) {
		r.blockedByCheckout(t)
		return
	}
	t.send(conversation.Simple(conversation.EventClearCart))
	t.text(msgCartCleared)
	r.showMenu(t)
}

// checkout passa sempre por ReviewingCart, onde vale a guarda de carrinho vazio
func (r *Router) checkout(t *turn) {
	if t.m.State().InCheckout() {
		r.promptCheckoutStep(t)
		return
	}
	if !r.toCart(t) {
		r.blockedByCheckout(t)
		return
	}
	if t.m.Context().Cart.IsEmpty() {
		r.renderCart(t)
		return
	}

	r.identifyCustomer(t)

	if !t.send(conversation.Simple(conversation.EventCheckout)).Handled {
		r.renderCart(t)
		return
	}
	r.promptCheckoutStep(t)
}

// identifyCustomer procura o remetente na API de pedidos para pular a coleta de dados
func (r *Router) identifyCustomer(t *turn) {
	if t.m.Context().Customer != nil {
		return
	}
	c, err := r.Customers.FindByPhone(t.ctx, t.to)
	switch {
	case err == nil && c != nil:
		t.send(conversation.IdentifyCustomer(c))
	case errors.Is(err, customer.ErrCustomerNotFound):
	case err != nil:
		t.log.Warn("Erro ao buscar cliente pelo telefone", "error", err)
	}
}

func (r *Router) promptCheckoutStep(t *turn) {
	switch t.m.State() {
	case conversation.StateCollectingName:
		t.buttons(msgAskName, cancelCheckoutButton())
	case conversation.StateCollectingEmail:
		t.buttons(msgAskEmail, cancelCheckoutButton())
	case conversation.StateConfirmingOrder:
		t.buttons(r.orderSummary(t), confirmButtons()...)
	default:
		r.welcome(t)
	}
}

func (r *Router) collectName(t *turn, text string) {
	if intent.IsCancelCommand(text) {
		r.cancelOrder(t)
		return
	}
	first, last := customer.SplitName(text)
	if first == "" || last == "" {
		t.buttons(msgInvalidName, cancelCheckoutButton())
		return
	}
	t.send(conversation.ProvideName(first, last))
	t.buttons(fmt.Sprintf(msgAskEmailNamed, first), cancelCheckoutButton())
}

func (r *Router) collectEmail(t *turn, text string) {
	email := strings.TrimSpace(text)
	if intent.IsCancelCommand(email) {
		r.cancelOrder(t)
		return
	}
	if !customer.ValidEmail(email) {
		t.buttons(msgInvalidEmail, cancelCheckoutButton())
		return
	}

	res := t.send(conversation.ProvideEmail(email))
	if res.Err != nil {
		t.buttons(msgRegisterFailed, cancelCheckoutButton())
		return
	}
	r.promptCheckoutStep(t)
}

func (r *Router) answerConfirmation(t *turn, text string) {
	switch {
	case intent.IsConfirmation(text):
		r.confirmOrder(t)
	case intent.IsCancellation(text):
		r.cancelOrder(t)
	default:
		t.buttons(msgConfirmPrompt, confirmButtons()...)
	}
}

func (r *Router) confirmOrder(t *turn) {
	if t.m.State() != conversation.StateConfirmingOrder {
		if t.m.State().InCheckout() {
			r.promptCheckoutStep(t)
			return
		}
		t.buttons(msgNothingToConfirm, mainMenuButtons()...)
		return
	}

	res := t.send(conversation.ConfirmOrder(r.currentPrices(t)))
	if res.Err != nil || t.m.State() != conversation.StateOrderCompleted {
		t.buttons(msgOrderFailed, confirmButtons()...)
		return
	}

	o := t.m.Context().PendingOrder
	t.buttons(fmt.Sprintf(msgOrderPlaced, orderNumber(o), formatMoney(o.TotalAmount)),
		Button{ID: PayloadOrderStatus, Title: "Status do pedido"},
		Button{ID: PayloadViewMenu, Title: "Novo pedido"},
	)
}

func (r *Router) cancelOrder(t *turn) {
	state := t.m.State()
	switch {
	case state.InCheckout():
		t.send(conversation.Simple(conversation.EventCancelOrder))
		t.text(msgCheckoutCancelled)
		r.renderCart(t)
	case state == conversation.StateOrderCompleted && t.m.Context().PendingOrder != nil:
		pending := t.m.Context().PendingOrder
		o, err := r.Orders.Cancel(t.ctx, pending.ID)
		if err != nil {
			t.log.Error("Erro ao cancelar pedido", "error", err, "order_id", pending.ID)
			t.buttons(msgCancelFailed, Button{ID: PayloadOrderStatus, Title: "Status do pedido"}, Button{ID: PayloadHelp, Title: "Ajuda"})
			return
		}
		t.send(conversation.OrderUpdated(o))
		t.buttons(fmt.Sprintf(msgOrderCancelled, orderNumber(o)), mainMenuButtons()...)
	default:
		t.buttons(msgNoOrderToCancel, mainMenuButtons()...)
	}
}

func (r *Router) orderStatus(t *turn) {
	pending := t.m.Context().PendingOrder
	if pending == nil {
		t.buttons(msgNoOrder, mainMenuButtons()...)
		return
	}

	o, err := r.Orders.Get(t.ctx, pending.ID)
	if err != nil {
		t.log.Warn("Erro ao consultar pedido", "error", err, "order_id", pending.ID)
		o = pending
	} else {
		t.send(conversation.OrderUpdated(o))
	}
	t.buttons(fmt.Sprintf(msgOrderStatus, orderNumber(o), o.Status.Label(), formatMoney(o.TotalAmount)),
		Button{ID: PayloadViewMenu, Title: "Novo pedido"},
		Button{ID: PayloadHelp, Title: "Ajuda"},
	)
}

func (r *Router) blockedByCheckout(t *turn) {
	if t.m.State().InCheckout() {
		t.text(msgFinishCheckoutFirst)
		r.promptCheckoutStep(t)
		return
	}
	r.fallback(t)
}

// currentPrices consulta os preços vigentes; sem catálogo usa os preços do carrinho
func (r *Router) currentPrices(t *turn) product.PriceList {
	products, err := r.Catalog.ListProducts(t.ctx, "")
	if err != nil {
		t.log.Warn("Erro ao consultar preços, usando preços do carrinho", "error", err)
		return nil
	}
	return product.NewPriceList(products)
}

// domainContext descreve a conversa e o catálogo para o modelo de linguagem
func (r *Router) domainContext(t *turn) string {
	var b strings.Builder
	state, c := t.m.Snapshot()
	fmt.Fprintf(&b, "Etapa da conversa: %s\n", state)

	if !c.Cart.IsEmpty() {
		b.WriteString("Carrinho:\n")
		for _, l := range c.Cart.Lines {
			fmt.Fprintf(&b, "- %dx %s\n", l.Quantity, l.Product.Name)
		}
	}

	if products, err := r.Catalog.ListProducts(t.ctx, ""); err == nil {
		b.WriteString("Produtos disponíveis:\n")
		for _, p := range activeOnly(products) {
			fmt.Fprintf(&b, "- %s: %s\n", p.Name, formatMoney(p.Price))
		}
	}
	return b.String()
}

func activeOnly(products []product.Product) []product.Product {
	out := products[:0:0]
	for _, p := range products {
		if p.Active {
			out = append(out, p)
		}
	}
	return out
}
