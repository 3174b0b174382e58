package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hugohenrick/atendente-pedidos/internal/dialogue"
	"github.com/hugohenrick/atendente-pedidos/pkg/logger"
	"github.com/pkg/errors"
)

// Limites da API para mensagens interativas
const (
	MaxButtons      = 3
	MaxButtonTitle  = 20
	MaxListRows     = 10
	MaxRowTitle     = 24
	MaxRowDesc      = 72
	MaxSectionTitle = 24
	MaxBodyText     = 1024
	MaxHeaderText   = 60

	maxResponseSize = 16 << 20
)

// Config contém as configurações do cliente da WhatsApp Cloud API
type Config struct {
	APIBase       string
	Token         string
	PhoneNumberID string
	Timeout       time.Duration
}

// APIError é o erro retornado pela Graph API
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp: status %d: %s (código %d)", e.Status, e.Message, e.Code)
}

// Client envia mensagens pela WhatsApp Cloud API. Implementa dialogue.Messenger.
type Client struct {
	cfg    Config
	http   *http.Client
	logger logger.Logger
}

// Option altera o cliente na criação
type Option func(*Client)

// WithHTTPClient substitui o http.Client usado nas chamadas
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient cria um novo cliente
func NewClient(cfg Config, log logger.Logger, opts ...Option) *Client {
	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if log == nil {
		log = logger.Nop{}
	}
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: log,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

type textBody struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

type mediaRef struct {
	ID string `json:"id"`
}

type outgoing struct {
	MessagingProduct string       `json:"messaging_product"`
	RecipientType    string       `json:"recipient_type"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             *textBody    `json:"text,omitempty"`
	Interactive      *interactive `json:"interactive,omitempty"`
	Audio            *mediaRef    `json:"audio,omitempty"`
}

type interactiveText struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text"`
}

type interactive struct {
	Type   string           `json:"type"`
	Header *interactiveText `json:"header,omitempty"`
	Body   interactiveText  `json:"body"`
	Footer *interactiveText `json:"footer,omitempty"`
	Action action           `json:"action"`
}

type replyButton struct {
	Type  string `json:"type"`
	Reply struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"reply"`
}

type listRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type listSection struct {
	Title string    `json:"title,omitempty"`
	Rows  []listRow `json:"rows"`
}

type action struct {
	Button   string        `json:"button,omitempty"`
	Buttons  []replyButton `json:"buttons,omitempty"`
	Sections []listSection `json:"sections,omitempty"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

func newOutgoing(to, kind string) outgoing {
	return outgoing{MessagingProduct: "whatsapp", RecipientType: "individual", To: to, Type: kind}
}

// SendText envia uma mensagem de texto simples
func (c *Client) SendText(ctx context.Context, to, text string) error {
	msg := newOutgoing(to, "text")
	msg.Text = &textBody{Body: text}
	return c.send(ctx, msg)
}

// SendButtons envia até três botões de resposta rápida. Botões excedentes são descartados.
func (c *Client) SendButtons(ctx context.Context, to, body string, buttons []dialogue.Button, header, footer string) error {
	if len(buttons) == 0 {
		return c.SendText(ctx, to, body)
	}
	if len(buttons) > MaxButtons {
		c.logger.Warn("Botões excedentes descartados", "total", len(buttons), "max", MaxButtons)
		buttons = buttons[:MaxButtons]
	}

	in := &interactive{Type: "button", Body: interactiveText{Text: truncate(body, MaxBodyText)}}
	setHeaderFooter(in, header, footer)
	for _, b := range buttons {
		var rb replyButton
		rb.Type = "reply"
		rb.Reply.ID = b.ID
		rb.Reply.Title = truncate(b.Title, MaxButtonTitle)
		in.Action.Buttons = append(in.Action.Buttons, rb)
	}

	msg := newOutgoing(to, "interactive")
	msg.Interactive = in
	return c.send(ctx, msg)
}

// SendList envia uma lista interativa com no máximo dez linhas no total
func (c *Client) SendList(ctx context.Context, to, body, buttonLabel string, sections []dialogue.Section, header, footer string) error {
	in := &interactive{Type: "list", Body: interactiveText{Text: truncate(body, MaxBodyText)}}
	setHeaderFooter(in, header, footer)
	in.Action.Button = truncate(buttonLabel, MaxButtonTitle)
	in.Action.Sections = buildSections(sections)

	if len(in.Action.Sections) == 0 {
		return c.SendText(ctx, to, body)
	}

	msg := newOutgoing(to, "interactive")
	msg.Interactive = in
	return c.send(ctx, msg)
}

func buildSections(sections []dialogue.Section) []listSection {
	out := make([]listSection, 0, len(sections))
	remaining := MaxListRows
	for _, s := range sections {
		if remaining == 0 {
			break
		}
		ls := listSection{Title: truncate(s.Title, MaxSectionTitle)}
		for _, r := range s.Rows {
			if remaining == 0 {
				break
			}
			ls.Rows = append(ls.Rows, listRow{
				ID:          r.ID,
				Title:       truncate(r.Title, MaxRowTitle),
				Description: truncate(r.Description, MaxRowDesc),
			})
			remaining--
		}
		// seções vazias são rejeitadas pela API
		if len(ls.Rows) > 0 {
			out = append(out, ls)
		}
	}
	return out
}

func setHeaderFooter(in *interactive, header, footer string) {
	if header != "" {
		in.Header = &interactiveText{Type: "text", Text: truncate(header, MaxHeaderText)}
	}
	if footer != "" {
		in.Footer = &interactiveText{Text: truncate(footer, MaxHeaderText)}
	}
}

// SendAudio envia o arquivo de áudio: primeiro o upload, depois a mensagem com o ID da mídia
func (c *Client) SendAudio(ctx context.Context, to, audioPath string) error {
	mediaID, err := c.upload(ctx, audioPath)
	if err != nil {
		return err
	}
	msg := newOutgoing(to, "audio")
	msg.Audio = &mediaRef{ID: mediaID}
	return c.send(ctx, msg)
}

func (c *Client) upload(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "erro ao ler áudio %s", path)
	}

	mimeType := "audio/mpeg"
	if strings.EqualFold(filepath.Ext(path), ".ogg") {
		mimeType = "audio/ogg"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("messaging_product", "whatsapp"); err != nil {
		return "", errors.Wrap(err, "erro ao montar upload")
	}
	if err := w.WriteField("type", mimeType); err != nil {
		return "", errors.Wrap(err, "erro ao montar upload")
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(path)))
	h.Set("Content-Type", mimeType)
	part, err := w.CreatePart(h)
	if err != nil {
		return "", errors.Wrap(err, "erro ao montar upload")
	}
	if _, err := part.Write(data); err != nil {
		return "", errors.Wrap(err, "erro ao montar upload")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "erro ao montar upload")
	}

	url := fmt.Sprintf("%s/%s/media", c.cfg.APIBase, c.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", errors.Wrap(err, "erro ao criar requisição de upload")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out mediaRef
	if err := c.do(req, &out); err != nil {
		return "", errors.Wrap(err, "erro ao enviar mídia")
	}
	if out.ID == "" {
		return "", errors.New("upload de mídia sem ID na resposta")
	}
	return out.ID, nil
}

type mediaInfo struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}

// DownloadMedia baixa uma mídia recebida e retorna o conteúdo e o tipo MIME
func (c *Client) DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", c.cfg.APIBase, mediaID), nil)
	if err != nil {
		return nil, "", errors.Wrap(err, "erro ao criar requisição de mídia")
	}
	var info mediaInfo
	if err := c.do(req, &info); err != nil {
		return nil, "", errors.Wrapf(err, "erro ao consultar mídia %s", mediaID)
	}
	if info.URL == "" {
		return nil, "", errors.Errorf("mídia %s sem URL", mediaID)
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, info.URL, nil)
	if err != nil {
		return nil, "", errors.Wrap(err, "erro ao criar requisição de download")
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", errors.Wrap(err, "erro ao baixar mídia")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", errors.Errorf("erro ao baixar mídia: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, "", errors.Wrap(err, "erro ao ler mídia")
	}

	mimeType := info.MimeType
	if mimeType == "" {
		mimeType = resp.Header.Get("Content-Type")
	}
	return data, mimeType, nil
}

func (c *Client) send(ctx context.Context, msg outgoing) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "erro ao serializar mensagem")
	}

	url := fmt.Sprintf("%s/%s/messages", c.cfg.APIBase, c.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "erro ao criar requisição")
	}
	req.Header.Set("Content-Type", "application/json")

	var out sendResponse
	if err := c.do(req, &out); err != nil {
		return errors.Wrapf(err, "erro ao enviar mensagem %s", msg.Type)
	}
	if len(out.Messages) > 0 {
		c.logger.Debug("Mensagem enviada", "to", msg.To, "type", msg.Type, "message_id", out.Messages[0].ID)
	}
	return nil
}

// do executa a requisição autenticada e decodifica a resposta em out
func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Wrap(err, "erro ao ler resposta")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope struct {
			Error *APIError `json:"error"`
		}
		if json.Unmarshal(data, &envelope) == nil && envelope.Error != nil {
			envelope.Error.Status = resp.StatusCode
			return envelope.Error
		}
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "erro ao decodificar resposta")
	}
	return nil
}

// truncate corta o texto em n runas
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
