package dialogue

import (
	"fmt"
	"strings"

	"github.com/hugohenrick/atendente-pedidos/internal/domain/cart"
	"github.com/hugohenrick/atendente-pedidos/internal/domain/order"
	"github.com/hugohenrick/atendente-pedidos/internal/domain/product"
	"github.com/shopspring/decimal"
)

const (
	msgWelcome             = "Olá%s! 👋 Sou a atendente virtual da loja. Posso mostrar o cardápio, as promoções ou anotar o seu pedido. O que deseja?"
	msgMainMenu            = "Escolha uma opção:"
	msgHelp                = "Você pode tocar nos botões ou escrever o que deseja, por exemplo \"quero 2 cafés\".\nPara recomeçar a qualquer momento, envie \"recomeçar\". Para ouvir a resposta, envie \"responda em áudio\"."
	msgNotUnderstood       = "Desculpe, não entendi. 🤔"
	msgGenericError        = "Desculpe, algo deu errado do nosso lado. Pode tentar novamente em instantes?"
	msgCatalogUnavailable  = "Não consegui consultar o cardápio agora. Tente novamente em instantes."
	msgEmptyCatalog        = "Nosso cardápio está vazio no momento."
	msgEmptyCategory       = "Não há produtos disponíveis nesta categoria."
	msgCategoryNotFound    = "Essa categoria não existe mais. Escolha outra no cardápio."
	msgChooseCategory      = "Escolha uma categoria para ver os produtos:"
	msgChooseProduct       = "Toque em um produto para adicioná-lo ao carrinho:"
	msgPromotions          = "Confira as promoções de hoje:"
	msgNoPromotions        = "Não temos promoções no momento."
	msgProductUnavailable  = "Esse produto não está mais disponível."
	msgAdded               = "✅ %dx %s adicionado ao carrinho (%s cada)."
	msgAddedMany           = "✅ Adicionei ao carrinho:\n%s"
	msgOrderNotMatched     = "Não encontrei esses produtos no cardápio. Dê uma olhada nas opções:"
	msgEmptyCart           = "Seu carrinho está vazio."
	msgCartCleared         = "🗑️ Carrinho esvaziado."
	msgFinishCheckoutFirst = "Você está finalizando um pedido. Conclua ou cancele antes de continuar."
	msgAskName             = "Para finalizar, qual é o seu nome completo?"
	msgInvalidName         = "Por favor, informe seu nome e sobrenome."
	msgAskEmail            = "Qual é o seu email?"
	msgAskEmailNamed       = "Obrigado, %s! Agora, qual é o seu email?"
	msgInvalidEmail        = "Esse email não parece válido. Pode conferir e enviar novamente?"
	msgRegisterFailed      = "Não consegui concluir seu cadastro agora. Pode enviar o email novamente?"
	msgConfirmPrompt       = "Responda \"sim\" para confirmar o pedido ou \"cancelar\" para voltar ao carrinho."
	msgNothingToConfirm    = "Não há pedido aguardando confirmação."
	msgOrderFailed         = "Não consegui registrar seu pedido agora. Seu carrinho foi mantido. Quer tentar novamente?"
	msgOrderPlaced         = "🎉 Pedido #%s confirmado!\nTotal: %s\nAvisaremos quando estiver pronto."
	msgCheckoutCancelled   = "Finalização cancelada. Seu carrinho continua salvo."
	msgOrderCancelled      = "Pedido #%s cancelado."
	msgCancelFailed        = "Não consegui cancelar o pedido agora. Tente novamente em instantes."
	msgNoOrderToCancel     = "Não há pedido em andamento para cancelar."
	msgNoOrder             = "Você ainda não fez um pedido nesta conversa."
	msgOrderStatus         = "Pedido #%s\nStatus: %s\nTotal: %s"
	msgAudioUnsupported    = "Ainda não consigo ouvir áudios. Pode escrever sua mensagem?"
	msgAudioFailed         = "Não consegui entender o áudio. Pode repetir ou escrever sua mensagem?"
	msgSpeakFailed         = "Não consegui preparar a resposta em áudio agora. Posso ajudar por texto?"
)

// maxListItems deixa espaço para as opções fixas dentro do limite de 10 linhas
const maxListItems = 8

func mainMenuButtons() []Button {
	return []Button{
		{ID: PayloadViewMenu, Title: "Ver cardápio"},
		{ID: PayloadPromotions, Title: "Promoções"},
		{ID: PayloadHelp, Title: "Ajuda"},
	}
}

func retryMenuButtons() []Button {
	return []Button{
		{ID: PayloadViewMenu, Title: "Tentar novamente"},
		{ID: PayloadViewCart, Title: "Ver carrinho"},
	}
}

func afterAddButtons() []Button {
	return []Button{
		{ID: PayloadContinueShopping, Title: "Continuar comprando"},
		{ID: PayloadViewCart, Title: "Ver carrinho"},
		{ID: PayloadCheckout, Title: "Finalizar pedido"},
	}
}

func confirmButtons() []Button {
	return []Button{
		{ID: PayloadConfirmOrder, Title: "Confirmar"},
		{ID: PayloadCancelOrder, Title: "Cancelar"},
	}
}

func cancelCheckoutButton() Button {
	return Button{ID: PayloadCancelOrder, Title: "Cancelar"}
}

func categorySections(categories []product.Category) []Section {
	rows := make([]Row, 0, len(categories))
	for i, c := range categories {
		if i == maxListItems {
			break
		}
		rows = append(rows, Row{ID: PrefixCategory + c.ID, Title: c.Name, Description: c.Description})
	}
	return []Section{
		{Title: "Categorias", Rows: rows},
		{Title: "Outras opções", Rows: []Row{
			{ID: PayloadPromotions, Title: "Promoções"},
			{ID: PayloadViewCart, Title: "Ver carrinho"},
		}},
	}
}

func productSections(title string, products []product.Product) []Section {
	rows := make([]Row, 0, len(products))
	for i, p := range products {
		if i == maxListItems {
			break
		}
		rows = append(rows, Row{ID: PrefixProduct + p.ID, Title: p.Name, Description: formatMoney(p.Price)})
	}
	return []Section{
		{Title: title, Rows: rows},
		{Title: "Outras opções", Rows: []Row{
			{ID: PayloadViewMenu, Title: "Voltar ao cardápio"},
			{ID: PayloadViewCart, Title: "Ver carrinho"},
		}},
	}
}

func cartSections(c *cart.Cart) []Section {
	remove := make([]Row, 0, c.Len())
	for i, l := range c.Lines {
		if i == maxListItems-1 {
			break
		}
		remove = append(remove, Row{ID: PrefixRemove + l.Product.ID, Title: "Remover " + l.Product.Name})
	}
	return []Section{
		{Title: "Pedido", Rows: []Row{
			{ID: PayloadCheckout, Title: "Finalizar pedido"},
			{ID: PayloadContinueShopping, Title: "Continuar comprando"},
			{ID: PayloadClearCart, Title: "Esvaziar carrinho"},
		}},
		{Title: "Remover itens", Rows: remove},
	}
}

func cartLines(c *cart.Cart, prices cart.PriceLookup) string {
	var b strings.Builder
	for _, l := range c.Lines {
		price := c.UnitPrice(l, prices)
		fmt.Fprintf(&b, "• %dx %s: %s\n", l.Quantity, l.Product.Name, formatMoney(l.Subtotal(price)))
	}
	fmt.Fprintf(&b, "\nTotal: %s", formatMoney(c.Total(prices)))
	return b.String()
}

func cartSummary(c *cart.Cart, prices cart.PriceLookup) string {
	return "🛒 Seu carrinho:\n\n" + cartLines(c, prices)
}

func (r *Router) orderSummary(t *turn) string {
	ctx := t.m.Context()
	var b strings.Builder
	b.WriteString("📋 Resumo do pedido\n\n")
	if ctx.Customer != nil {
		fmt.Fprintf(&b, "Cliente: %s\n\n", ctx.Customer.FullName())
	}
	b.WriteString(cartLines(ctx.Cart, r.currentPrices(t)))
	b.WriteString("\n\nConfirma o pedido?")
	return b.String()
}

func orderNumber(o *order.Order) string {
	if o == nil {
		return ""
	}
	if o.OrderNumber != "" {
		return o.OrderNumber
	}
	return o.ID
}

// formatMoney formata no padrão brasileiro, ex.: R$ 1.234,50
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(ch)
	}

	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "R$ " + b.String() + "," + frac
}
