package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "nao", Normalize("  Não! "))
	assert.Equal(t, "comecar de novo", Normalize("Começar de novo."))
	assert.Equal(t, "pao de queijo", Normalize("Pão de Queijo"))
}

func TestConfirmationKeywords(t *testing.T) {
	for _, msg := range []string{"sim", "Sim!", "OK", "confirmar", "Confirmo", "s"} {
		assert.True(t, IsConfirmation(msg), msg)
	}
	for _, msg := range []string{"não", "cancelar", "N", "desisto"} {
		assert.True(t, IsCancellation(msg), msg)
		assert.False(t, IsConfirmation(msg), msg)
	}
	assert.False(t, IsConfirmation("talvez amanhã"))
	assert.False(t, IsCancellation("talvez amanhã"))
}

func TestCancelCommandMatchesWholeMessage(t *testing.T) {
	for _, msg := range []string{"Cancelar", "cancelar pedido", "desisto."} {
		assert.True(t, IsCancelCommand(msg), msg)
	}
	for _, msg := range []string{"Cancio Silva", "cancun@mail.com", "Desidério Souza"} {
		assert.False(t, IsCancelCommand(msg), msg)
	}
	assert.True(t, IsCancellation("Cancio Silva"))
}

func TestResetAndAudioKeywords(t *testing.T) {
	assert.True(t, IsReset("Recomeçar"))
	assert.True(t, IsReset("começar de novo"))
	assert.False(t, IsReset("quero começar um pedido"))

	assert.True(t, WantsAudio("Responda em áudio"))
	assert.True(t, WantsAudio("fale"))
	assert.False(t, WantsAudio("falei com a loja"))
}

func TestDetectDefaultHandlers(t *testing.T) {
	m := NewDefaultManager(nil)

	cases := map[string]Type{
		"Olá, bom dia":             TypeGreeting,
		"quero ver o cardápio":     TypeMenu,
		"qual o status do pedido?": TypeOrderStatus,
		"cancelar meu pedido":      TypeCancelOrder,
		"preciso de ajuda":         TypeHelp,
		"quanto custa o café?":     TypeProductInfo,
		"asdfgh":                   TypeUnknown,
		"quero 2 cafe e 1 pão":     TypeOrder,
	}
	for msg, want := range cases {
		got := m.Detect(msg)
		require.NotNil(t, got, msg)
		assert.Equal(t, want, got.Type, msg)
		assert.Equal(t, msg, got.OriginalMessage)
	}
}

func TestOrderHandlerExtractsItems(t *testing.T) {
	in := OrderHandler{}.Extract("Quero 2 café, 1 pão de queijo e 3 suco de laranja")

	assert.Equal(t, TypeOrder, in.Type)
	assert.Equal(t, []OrderItem{
		{ProductName: "cafe", Quantity: 2},
		{ProductName: "pao de queijo", Quantity: 1},
		{ProductName: "suco de laranja", Quantity: 3},
	}, in.Entities.Products)
}

func TestOrderHandlerWithoutQuantities(t *testing.T) {
	in := OrderHandler{}.Extract("quero um café")
	assert.Equal(t, TypeOrder, in.Type)
	assert.Empty(t, in.Entities.Products)
	assert.Less(t, in.Confidence, 0.5)
}

func TestTypeValid(t *testing.T) {
	assert.True(t, TypeOrder.Valid())
	assert.False(t, Type("refund").Valid())
}
