package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesFieldsAsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions(Options{Level: "debug", Format: "json", Output: &buf})

	log.Info("mensagem processada", "customer_key", "5511999", "erro", errors.New("falhou"), "sobra")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "mensagem processada", entry["msg"])
	assert.Equal(t, "5511999", entry["customer_key"])
	assert.Equal(t, "falhou", entry["erro"])
	assert.Equal(t, "!MISSING", entry["sobra"])
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions(Options{Level: "warn", Format: "json", Output: &buf})

	log.Debug("ignorada")
	log.Info("ignorada")
	assert.Zero(t, buf.Len())

	log.Warn("registrada")
	assert.Contains(t, buf.String(), "registrada")
}
