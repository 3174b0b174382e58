package dialogue

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/atendente-pedidos/internal/domain/customer"
	"github.com/hugohenrick/atendente-pedidos/internal/domain/order"
	"github.com/hugohenrick/atendente-pedidos/internal/domain/product"
	"github.com/hugohenrick/atendente-pedidos/pkg/chat"
	"github.com/hugohenrick/atendente-pedidos/pkg/conversation"
	"github.com/hugohenrick/atendente-pedidos/pkg/logger"
	"github.com/hugohenrick/atendente-pedidos/pkg/mcp/intent"
	"github.com/hugohenrick/atendente-pedidos/pkg/session"
)

// Deps são os colaboradores do Router. Transcriber, Synthesizer e Transcript são opcionais.
type Deps struct {
	Sessions    *session.Store
	Catalog     product.Catalog
	Customers   customer.Repository
	Orders      order.Repository
	Messenger   Messenger
	NLU         NLU
	Transcriber Transcriber
	Synthesizer Synthesizer
	Transcript  chat.Repository
	Logger      logger.Logger
	Voice       string
}

// Router decide a resposta para cada mensagem recebida. É a fronteira de erros
// do processamento: falhas de colaboradores viram respostas ao cliente.
type Router struct {
	Deps
}

// NewRouter cria um novo Router
func NewRouter(deps Deps) *Router {
	if deps.Logger == nil {
		deps.Logger = logger.Nop{}
	}
	if deps.Transcript == nil {
		deps.Transcript = chat.NopRepository{}
	}
	return &Router{Deps: deps}
}

// turn reúne o que uma mensagem precisa enquanto o lock da sessão está obtido
type turn struct {
	ctx context.Context
	r   *Router
	to  string
	m   *conversation.Machine
	log logger.Logger
}

// Handle processa uma mensagem até o fim. Mensagens do mesmo remetente são
// serializadas pelo lock da sessão.
func (r *Router) Handle(ctx context.Context, msg InboundMessage) {
	log := r.Logger
	if l, ok := log.(interface {
		With(...interface{}) logger.Logger
	}); ok {
		log = l.With("customer_key", msg.SenderKey, "message_id", msg.MessageID)
	}

	sess, release, err := r.Sessions.Acquire(ctx, msg.SenderKey)
	if err != nil {
		log.Error("Erro ao obter sessão", "error", err)
		return
	}
	defer release()

	t := &turn{ctx: ctx, r: r, to: msg.SenderKey, m: sess.Machine, log: log}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("Pânico ao processar mensagem", "panic", rec, "state", t.m.State())
			t.text(msgGenericError)
		}
	}()

	r.route(t, msg)
}

func (r *Router) route(t *turn, msg InboundMessage) {
	text := strings.TrimSpace(msg.Body)

	if msg.Kind == KindAudio {
		transcript, ok := r.transcribe(t, msg)
		if !ok {
			return
		}
		text = transcript
	}

	t.record(chat.RoleCustomer, msg.Kind, text)
	t.log.Info("Mensagem recebida", "kind", msg.Kind, "state", t.m.State())

	if msg.Kind == KindInteractive {
		r.handlePayload(t, text)
		return
	}

	if text == "" {
		r.fallback(t)
		return
	}

	if intent.IsReset(text) {
		t.send(conversation.Simple(conversation.EventReset))
		r.greet(t)
		return
	}

	if intent.WantsAudio(text) {
		r.speak(t, text)
		return
	}

	r.handleText(t, text)
}

func (r *Router) transcribe(t *turn, msg InboundMessage) (string, bool) {
	if r.Transcriber == nil {
		t.text(msgAudioUnsupported)
		return "", false
	}

	audio, mime, err := r.Messenger.DownloadMedia(t.ctx, msg.MediaID)
	if err != nil {
		t.log.Error("Erro ao baixar áudio", "error", err, "media_id", msg.MediaID)
		t.text(msgAudioFailed)
		return "", false
	}
	if msg.MimeType != "" {
		mime = msg.MimeType
	}

	text, err := r.Transcriber.Transcribe(t.ctx, audio, mime)
	if err != nil {
		t.log.Error("Erro ao transcrever áudio", "error", err)
		t.text(msgAudioFailed)
		return "", false
	}

	text = strings.TrimSpace(text)
	if text == "" {
		t.text(msgAudioFailed)
		return "", false
	}
	t.log.Debug("Áudio transcrito", "text", text)
	return text, true
}

// speak responde em áudio com o texto gerado pelo modelo de linguagem
func (r *Router) speak(t *turn, text string) {
	in, err := r.NLU.DetectIntent(t.ctx, text, string(t.m.State()))
	if err != nil || in == nil {
		in = intent.Unknown(text)
	}

	reply, err := r.NLU.GenerateResponse(t.ctx, in, r.domainContext(t))
	if err != nil {
		t.log.Warn("Erro ao gerar resposta para áudio", "error", err)
		t.text(msgSpeakFailed)
		return
	}

	if r.Synthesizer == nil {
		t.text(reply)
		return
	}

	path, err := r.Synthesizer.Synthesize(t.ctx, reply, r.Voice)
	if err != nil {
		t.log.Error("Erro ao sintetizar áudio", "error", err)
		t.text(reply)
		return
	}

	defer r.discardAudio(t, path)

	if err := r.Messenger.SendAudio(t.ctx, t.to, path); err != nil {
		t.log.Error("Erro ao enviar áudio", "error", err)
		t.text(reply)
		return
	}
	t.record(chat.RoleAssistant, KindAudio, reply)
}

// discardAudio apaga o arquivo sintetizado depois do envio
func (r *Router) discardAudio(t *turn, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		t.log.Warn("Erro ao apagar áudio sintetizado", "error", err, "path", path)
	}
}

func (t *turn) send(ev conversation.Event) conversation.Result {
	res := t.m.Send(t.ctx, ev)
	if res.Err != nil {
		t.log.Warn("Falha na API de pedidos durante transição", "event", ev.Type, "from", res.From, "to", res.To, "error", res.Err)
	} else if res.Handled {
		t.log.Debug("Transição", "event", ev.Type, "from", res.From, "to", res.To)
	}
	return res
}

func (t *turn) text(body string) {
	if err := t.r.Messenger.SendText(t.ctx, t.to, body); err != nil {
		t.log.Error("Erro ao enviar mensagem", "error", err)
		return
	}
	t.record(chat.RoleAssistant, KindText, body)
}

func (t *turn) buttons(body string, buttons ...Button) {
	if err := t.r.Messenger.SendButtons(t.ctx, t.to, body, buttons, "", ""); err != nil {
		t.log.Error("Erro ao enviar botões", "error", err)
		return
	}
	t.record(chat.RoleAssistant, KindInteractive, body)
}

func (t *turn) list(header, body, label string, sections ...Section) {
	if err := t.r.Messenger.SendList(t.ctx, t.to, body, label, sections, header, ""); err != nil {
		t.log.Error("Erro ao enviar lista", "error", err)
		return
	}
	t.record(chat.RoleAssistant, KindInteractive, body)
}

// record grava a mensagem no histórico; falhas não chegam ao cliente
func (t *turn) record(role chat.Role, kind Kind, content string) {
	msg := &chat.Message{
		ID:          uuid.New().String(),
		CustomerKey: t.to,
		Role:        role,
		Kind:        string(kind),
		Content:     content,
		State:       string(t.m.State()),
		Timestamp:   time.Now().UTC(),
	}
	if err := t.r.Transcript.SaveMessage(t.ctx, msg); err != nil {
		t.log.Warn("Erro ao salvar histórico", "error", err)
	}
}
