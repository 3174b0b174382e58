package intent

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hugohenrick/atendente-pedidos/pkg/logger"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Manager detecta intenções localmente com os handlers registrados.
// É usado quando o modelo de linguagem não está configurado ou falha.
type Manager struct {
	handlers []Handler
	logger   logger.Logger
}

// NewManager cria um gerenciador sem handlers
func NewManager(log logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop{}
	}
	return &Manager{
		handlers: make([]Handler, 0),
		logger:   log,
	}
}

// NewDefaultManager cria um gerenciador com os handlers de palavras-chave padrão
func NewDefaultManager(log logger.Logger) *Manager {
	m := NewManager(log)
	for _, h := range DefaultHandlers() {
		m.RegisterHandler(h)
	}
	return m
}

// RegisterHandler registra um novo handler; a ordem de registro é a prioridade
func (m *Manager) RegisterHandler(handler Handler) {
	m.handlers = append(m.handlers, handler)
	m.logger.Debug("Handler de intenção registrado", "handler", fmt.Sprintf("%T", handler))
}

// Detect retorna a intenção do primeiro handler aplicável, ou unknown
func (m *Manager) Detect(message string) *Intent {
	for _, h := range m.handlers {
		if !h.CanHandle(message) {
			continue
		}
		if in := h.Extract(message); in != nil {
			in.OriginalMessage = message
			return in
		}
	}
	return Unknown(message)
}

var accents = runes.Remove(runes.In(unicode.Mn))

// Normalize deixa o texto em minúsculas, sem acentos e sem pontuação nas pontas
func Normalize(message string) string {
	t := transform.Chain(norm.NFD, accents, norm.NFC)
	out, _, err := transform.String(t, message)
	if err != nil {
		out = message
	}
	out = strings.ToLower(strings.TrimSpace(out))
	return strings.TrimFunc(out, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
}

var confirmWords = map[string]bool{
	"confirmar": true, "confirmo": true, "confirmado": true, "confirme": true, "confirma": true,
	"sim": true, "s": true, "yes": true, "y": true, "ok": true, "pode confirmar": true,
	"isso": true, "certo": true, "correto": true, "pode fechar": true,
}

var cancelWords = map[string]bool{
	"cancelar": true, "cancela": true, "cancel": true, "nao": true, "n": true, "no": true,
	"desistir": true, "desisto": true, "cancelar pedido": true, "cancelar compra": true,
}

var resetWords = map[string]bool{
	"reiniciar": true, "recomecar": true, "comecar de novo": true, "menu inicial": true,
	"reset": true, "voltar ao inicio": true, "inicio": true,
}

// IsConfirmation indica uma resposta afirmativa
func IsConfirmation(message string) bool {
	n := Normalize(message)
	return confirmWords[n] || strings.HasPrefix(n, "confirm")
}

// IsCancellation indica uma resposta negativa
func IsCancellation(message string) bool {
	n := Normalize(message)
	return cancelWords[n] || strings.HasPrefix(n, "canc") || strings.HasPrefix(n, "desist")
}

// IsCancelCommand reconhece só a mensagem inteira de cancelamento, sem prefixos.
// Usado enquanto o cliente digita dados livres como nome e email.
func IsCancelCommand(message string) bool {
	return cancelWords[Normalize(message)]
}

// IsReset indica o pedido de recomeçar a conversa
func IsReset(message string) bool {
	return resetWords[Normalize(message)]
}

// WantsAudio indica o pedido de resposta em áudio
func WantsAudio(message string) bool {
	n := Normalize(message)
	for _, k := range []string{"responda em audio", "resposta em audio", "fala comigo", "mande um audio", "manda audio", "fale"} {
		if n == k || strings.HasPrefix(n, k+" ") {
			return true
		}
	}
	return false
}
