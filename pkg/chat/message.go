package chat

import "time"

// Role identifica quem enviou a mensagem
type Role string

const (
	RoleCustomer  Role = "customer"
	RoleAssistant Role = "assistant"
)

// Message representa uma mensagem no histórico da conversa
type Message struct {
	ID          string    `json:"id"`
	CustomerKey string    `json:"customer_key"`
	Role        Role      `json:"role"`
	Kind        string    `json:"kind"`
	Content     string    `json:"content"`
	State       string    `json:"state"`
	Timestamp   time.Time `json:"timestamp"`
}

// Transition representa uma transição registrada da máquina de estados
type Transition struct {
	ID          string    `json:"id"`
	CustomerKey string    `json:"customer_key"`
	Event       string    `json:"event"`
	FromState   string    `json:"from_state"`
	ToState     string    `json:"to_state"`
	LastError   string    `json:"last_error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
