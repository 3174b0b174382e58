package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// KeywordHandler reconhece uma intenção por expressões regulares sobre o texto normalizado
type KeywordHandler struct {
	Type     Type
	Patterns []*regexp.Regexp
}

// CanHandle verifica se algum padrão casa com a mensagem
func (h *KeywordHandler) CanHandle(message string) bool {
	n := Normalize(message)
	for _, p := range h.Patterns {
		if p.MatchString(n) {
			return true
		}
	}
	return false
}

// Extract retorna a intenção do handler
func (h *KeywordHandler) Extract(string) *Intent {
	return &Intent{Type: h.Type, Confidence: 0.6}
}

// OrderHandler reconhece pedidos como "quero 2 cafe e 1 pao de queijo"
type OrderHandler struct{}

var (
	orderVerb = regexp.MustCompile(`^(quero|queria|gostaria de|me (ve|da|manda)|pedir|pe[cç]o|adiciona[r]?|coloca[r]?|manda)\b`)
	orderItem = regexp.MustCompile(`(\d+)\s*(?:x\s*)?(?:unidades? de\s+)?([^,\d]+?)\s*(?:,|\be\b|$)`)
)

// CanHandle verifica se a mensagem começa com um verbo de pedido e traz quantidades
func (OrderHandler) CanHandle(message string) bool {
	n := Normalize(message)
	if !orderVerb.MatchString(n) {
		return false
	}
	return orderItem.MatchString(orderVerb.ReplaceAllString(n, ""))
}

// Extract extrai itens com quantidade explícita. Sem itens, a confiança é baixa.
func (OrderHandler) Extract(message string) *Intent {
	n := orderVerb.ReplaceAllString(Normalize(message), "")
	in := &Intent{Type: TypeOrder, Confidence: 0.4}

	for _, m := range orderItem.FindAllStringSubmatch(n, -1) {
		qty, err := strconv.Atoi(m[1])
		if err != nil || qty <= 0 {
			continue
		}
		name := strings.TrimSpace(m[2])
		if name == "" {
			continue
		}
		in.Entities.Products = append(in.Entities.Products, OrderItem{ProductName: name, Quantity: qty})
	}
	if len(in.Entities.Products) > 0 {
		in.Confidence = 0.7
	}
	return in
}

func keywords(t Type, patterns ...string) *KeywordHandler {
	h := &KeywordHandler{Type: t}
	for _, p := range patterns {
		h.Patterns = append(h.Patterns, regexp.MustCompile(p))
	}
	return h
}

// DefaultHandlers retorna os handlers locais em ordem de prioridade
func DefaultHandlers() []Handler {
	return []Handler{
		keywords(TypeOrderStatus, `\bstatus\b`, `\b(meu|o) pedido\b.*\b(chega|saiu|esta|pronto)`, `^onde esta`),
		keywords(TypeCancelOrder, `\bcancela[r]? (o |meu )?pedido\b`),
		OrderHandler{},
		keywords(TypeMenu, `\b(cardapio|menu|catalogo|produtos|categorias)\b`),
		keywords(TypeHelp, `\b(ajuda|help|como funciona|atendente)\b`),
		keywords(TypeProductInfo, `\b(quanto custa|preco|valor de|tem)\b`),
		keywords(TypeGreeting, `^(oi|ola|bom dia|boa tarde|boa noite|e ai|hello|hi|start|comecar)\b`),
	}
}
