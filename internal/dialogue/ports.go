package dialogue

import (
	"context"
	"time"

	"github.com/hugohenrick/atendente-pedidos/internal/domain/product"
	"github.com/hugohenrick/atendente-pedidos/pkg/mcp/intent"
)

// Kind é o tipo da mensagem recebida
type Kind string

const (
	KindText        Kind = "text"
	KindAudio       Kind = "audio"
	KindInteractive Kind = "interactive"
)

// InboundMessage é uma mensagem recebida do canal de mensagens.
// Para mensagens interativas, Body é o ID do botão ou da linha escolhida.
type InboundMessage struct {
	SenderKey string
	MessageID string
	Timestamp time.Time
	Kind      Kind
	Body      string
	MediaID   string
	MimeType  string
}

// Button é um botão de resposta rápida
type Button struct {
	ID    string
	Title string
}

// Row é uma linha de uma lista interativa
type Row struct {
	ID          string
	Title       string
	Description string
}

// Section agrupa linhas de uma lista interativa
type Section struct {
	Title string
	Rows  []Row
}

// Messenger envia mensagens ao cliente
type Messenger interface {
	SendText(ctx context.Context, to, text string) error
	SendButtons(ctx context.Context, to, body string, buttons []Button, header, footer string) error
	SendList(ctx context.Context, to, body, buttonLabel string, sections []Section, header, footer string) error
	SendAudio(ctx context.Context, to, audioPath string) error
	DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, error)
}

// Transcriber converte áudio em texto
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// Synthesizer converte texto em um arquivo de áudio e retorna o caminho
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) (string, error)
}

// NLU entende mensagens em linguagem natural
type NLU interface {
	DetectIntent(ctx context.Context, text, hint string) (*intent.Intent, error)
	GenerateResponse(ctx context.Context, in *intent.Intent, domainContext string) (string, error)
	ParseOrder(ctx context.Context, text string, catalog []product.Product) ([]intent.OrderItem, error)
}
