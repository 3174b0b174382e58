package customer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidEmail(t *testing.T) {
	valid := []string{"ana@x.com", "joao.silva@empresa.com.br", "a+b@dominio.io"}
	for _, email := range valid {
		assert.True(t, ValidEmail(email), email)
	}

	invalid := []string{"", "ana", "ana@", "ana@x", "ana@x.", "Ana <ana@x.com>", "ana @x.com"}
	for _, email := range invalid {
		assert.False(t, ValidEmail(email), email)
	}
}

func TestNewCustomer(t *testing.T) {
	in, err := NewCustomer(" Ana ", "Lopez", "ana@x.com", "5511999990000")
	require.NoError(t, err)
	assert.Equal(t, "Ana", in.FirstName)
	assert.Equal(t, "5511999990000", in.Phone)

	_, err = NewCustomer("", "Lopez", "ana@x.com", "55")
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = NewCustomer("Ana", "Lopez", "ana@x.com", "")
	assert.ErrorIs(t, err, ErrEmptyPhone)

	_, err = NewCustomer("Ana", "Lopez", "ana", "55")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = NewCustomer("Ana", "Lopez", "", "55")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestSplitName(t *testing.T) {
	first, last := SplitName("  Ana   Maria Lopez ")
	assert.Equal(t, "Ana", first)
	assert.Equal(t, "Maria Lopez", last)

	first, last = SplitName("Ana")
	assert.Equal(t, "Ana", first)
	assert.Empty(t, last)
}
