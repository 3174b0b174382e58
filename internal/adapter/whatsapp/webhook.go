package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/hugohenrick/atendente-pedidos/internal/dialogue"
	"github.com/pkg/errors"
)

// ErrInvalidSignature indica que a assinatura do webhook não confere
var ErrInvalidSignature = errors.New("assinatura do webhook inválida")

// Webhook é o corpo das notificações enviadas pela Cloud API
type Webhook struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry agrupa alterações de uma conta
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change é uma alteração notificada
type Change struct {
	Field string `json:"field"`
	Value Value  `json:"value"`
}

// Value contém as mensagens e os status de entrega
type Value struct {
	MessagingProduct string    `json:"messaging_product"`
	Contacts         []Contact `json:"contacts"`
	Messages         []Message `json:"messages"`
	Statuses         []Status  `json:"statuses"`
}

// Contact identifica o remetente
type Contact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

// Status é uma notificação de entrega de mensagem enviada
type Status struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	RecipientID string `json:"recipient_id"`
}

// Message é uma mensagem recebida
type Message struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text,omitempty"`
	Audio *struct {
		ID       string `json:"id"`
		MimeType string `json:"mime_type"`
	} `json:"audio,omitempty"`
	Interactive *struct {
		Type        string     `json:"type"`
		ButtonReply *replyInfo `json:"button_reply,omitempty"`
		ListReply   *replyInfo `json:"list_reply,omitempty"`
	} `json:"interactive,omitempty"`
	Button *struct {
		Payload string `json:"payload"`
		Text    string `json:"text"`
	} `json:"button,omitempty"`
}

type replyInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ParseWebhook converte o corpo do webhook nas mensagens recebidas.
// Notificações de status são ignoradas. Tipos não suportados viram texto vazio.
func ParseWebhook(body []byte) ([]dialogue.InboundMessage, error) {
	var wh Webhook
	if err := json.Unmarshal(body, &wh); err != nil {
		return nil, errors.Wrap(err, "webhook inválido")
	}

	var out []dialogue.InboundMessage
	for _, entry := range wh.Entry {
		for _, change := range entry.Changes {
			if change.Field != "" && change.Field != "messages" {
				continue
			}
			for _, m := range change.Value.Messages {
				if m.From == "" {
					continue
				}
				out = append(out, toInbound(m))
			}
		}
	}
	return out, nil
}

func toInbound(m Message) dialogue.InboundMessage {
	in := dialogue.InboundMessage{
		SenderKey: m.From,
		MessageID: m.ID,
		Timestamp: parseTimestamp(m.Timestamp),
		Kind:      dialogue.KindText,
	}

	switch m.Type {
	case "text":
		if m.Text != nil {
			in.Body = m.Text.Body
		}
	case "audio":
		in.Kind = dialogue.KindAudio
		if m.Audio != nil {
			in.MediaID = m.Audio.ID
			in.MimeType = m.Audio.MimeType
		}
	case "interactive":
		in.Kind = dialogue.KindInteractive
		if m.Interactive != nil {
			switch {
			case m.Interactive.ButtonReply != nil:
				in.Body = m.Interactive.ButtonReply.ID
			case m.Interactive.ListReply != nil:
				in.Body = m.Interactive.ListReply.ID
			}
		}
	case "button":
		// botões de templates trazem o payload configurado
		in.Kind = dialogue.KindInteractive
		if m.Button != nil {
			in.Body = m.Button.Payload
		}
	}
	return in
}

func parseTimestamp(s string) time.Time {
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Now().UTC()
	}
	return time.Unix(sec, 0).UTC()
}

// VerifySignature confere o cabeçalho X-Hub-Signature-256 com o segredo do app.
// Sem segredo configurado a verificação é desativada.
func VerifySignature(appSecret string, body []byte, header string) error {
	if appSecret == "" {
		return nil
	}
	sig, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return ErrInvalidSignature
	}
	got, err := hex.DecodeString(sig)
	if err != nil {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign calcula o valor do cabeçalho X-Hub-Signature-256 para o corpo
func Sign(appSecret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
