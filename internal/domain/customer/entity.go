package customer

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	ErrEmptyName        = errors.New("nome não pode ser vazio")
	ErrEmptyPhone       = errors.New("telefone não pode ser vazio")
	ErrInvalidEmail     = errors.New("email inválido")
	ErrCustomerNotFound = errors.New("cliente não encontrado")
)

// Customer representa um cliente cadastrado na API de pedidos
type Customer struct {
	ID        string    `json:"id"`        // ID do Cliente
	FirstName string    `json:"firstName"` // Nome
	LastName  string    `json:"lastName"`  // Sobrenome
	Email     string    `json:"email"`     // Email
	Phone     string    `json:"phone"`     // Telefone (chave da conversa)
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// FullName retorna nome e sobrenome
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// NewCustomerInput contém os dados coletados na conversa para cadastro
type NewCustomerInput struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required"`
}

var validate = validator.New()

// NewCustomer valida os dados de cadastro
func NewCustomer(firstName, lastName, email, phone string) (NewCustomerInput, error) {
	in := NewCustomerInput{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     strings.TrimSpace(email),
		Phone:     strings.TrimSpace(phone),
	}

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return NewCustomerInput{}, err
		}
		switch verrs[0].Field() {
		case "FirstName":
			return NewCustomerInput{}, ErrEmptyName
		case "Phone":
			return NewCustomerInput{}, ErrEmptyPhone
		default:
			return NewCustomerInput{}, ErrInvalidEmail
		}
	}

	return in, nil
}

// ValidEmail verifica a sintaxe de um endereço de email simples (sem nome de exibição)
func ValidEmail(email string) bool {
	return validate.Var(strings.TrimSpace(email), "required,email") == nil
}

// SplitName separa o texto digitado em nome e sobrenome
func SplitName(text string) (first, last string) {
	parts := strings.Fields(text)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
