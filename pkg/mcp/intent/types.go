package intent

// Type é a classificação de uma mensagem do cliente
type Type string

const (
	TypeGreeting    Type = "greeting"
	TypeMenu        Type = "menu"
	TypeOrder       Type = "order"
	TypeProductInfo Type = "product_info"
	TypeHelp        Type = "help"
	TypeCancelOrder Type = "cancel_order"
	TypeOrderStatus Type = "order_status"
	TypeUnknown     Type = "unknown"
)

// Valid indica se o tipo é conhecido
func (t Type) Valid() bool {
	switch t {
	case TypeGreeting, TypeMenu, TypeOrder, TypeProductInfo, TypeHelp, TypeCancelOrder, TypeOrderStatus, TypeUnknown:
		return true
	}
	return false
}

// OrderItem é um item de pedido extraído do texto
type OrderItem struct {
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
}

// Entities são os dados extraídos da mensagem
type Entities struct {
	Products    []OrderItem `json:"products,omitempty"`
	ProductName string      `json:"productName,omitempty"`
	Category    string      `json:"category,omitempty"`
}

// Intent representa uma intenção detectada em uma mensagem do cliente
type Intent struct {
	// Tipo da intenção
	Type Type `json:"type"`

	// Confiança na identificação (0-1)
	Confidence float64 `json:"confidence"`

	// Entidades extraídas do texto
	Entities Entities `json:"entities"`

	// Mensagem original
	OriginalMessage string `json:"-"`
}

// Unknown retorna a intenção desconhecida para a mensagem
func Unknown(message string) *Intent {
	return &Intent{Type: TypeUnknown, OriginalMessage: message}
}

// Handler reconhece um tipo de intenção por palavras-chave
type Handler interface {
	// Identifica se este handler se aplica à mensagem
	CanHandle(message string) bool

	// Extrai a intenção e entidades da mensagem
	Extract(message string) *Intent
}
