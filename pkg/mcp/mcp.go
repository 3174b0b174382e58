package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hugohenrick/atendente-pedidos/internal/domain/product"
	"github.com/hugohenrick/atendente-pedidos/pkg/logger"
	"github.com/hugohenrick/atendente-pedidos/pkg/mcp/intent"
	"github.com/pkg/errors"
)

const (
	anthropicAPIEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"
	defaultModel         = "claude-3-sonnet-20240229"
	defaultMaxTokens     = 1000
)

var (
	// ErrNotConfigured indica que não há chave da API configurada
	ErrNotConfigured = errors.New("assistente de linguagem não configurado")

	// ErrNoJSON indica que a resposta do modelo não contém um objeto JSON
	ErrNoJSON = errors.New("resposta sem objeto JSON")
)

// Config contém as configurações do cliente
type Config struct {
	APIKey    string
	Model     string
	Endpoint  string
	MaxTokens int
	Timeout   time.Duration
}

// Client é o cliente da API de mensagens da Anthropic usado para entender o
// cliente e redigir respostas. Sem chave configurada, usa a detecção local.
type Client struct {
	cfg    Config
	client *http.Client
	logger logger.Logger
	local  *intent.Manager
}

// NewClient cria um novo cliente
func NewClient(cfg Config, log logger.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = anthropicAPIEndpoint
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: log,
		local:  intent.NewDefaultManager(log),
	}
}

// Enabled indica se a API está configurada
func (c *Client) Enabled() bool {
	return c.cfg.APIKey != ""
}

// Message representa uma mensagem para a API da Anthropic
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []Message `json:"messages"`
	System    string    `json:"system,omitempty"`
}

type messageResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

const detectPrompt = `Você classifica mensagens de clientes de uma loja que faz pedidos pelo WhatsApp.
Responda SOMENTE com um objeto JSON no formato:
{"type": "<greeting|menu|order|product_info|help|cancel_order|order_status|unknown>", "confidence": <0 a 1>,
 "entities": {"products": [{"productName": "<nome>", "quantity": <inteiro>}], "productName": "<nome>", "category": "<categoria>"}}
Inclua em entities apenas o que estiver na mensagem.`

// DetectIntent classifica a mensagem. hint descreve a etapa atual da conversa.
// Se a API falhar ou não estiver configurada, usa a detecção local.
func (c *Client) DetectIntent(ctx context.Context, text, hint string) (*intent.Intent, error) {
	if !c.Enabled() {
		return c.local.Detect(text), nil
	}

	system := detectPrompt
	if hint != "" {
		system += "\nEtapa atual da conversa: " + hint
	}

	var in intent.Intent
	if err := c.completeJSON(ctx, system, text, &in); err != nil {
		c.logger.Warn("Falha ao detectar intenção pela API, usando detecção local", "error", err)
		return c.local.Detect(text), nil
	}

	if !in.Type.Valid() {
		in.Type = intent.TypeUnknown
	}
	in.OriginalMessage = text
	return &in, nil
}

// GenerateResponse redige uma resposta curta para a intenção usando os dados da loja
func (c *Client) GenerateResponse(ctx context.Context, in *intent.Intent, domainContext string) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}

	system := `Você é a atendente virtual de uma loja e conversa com clientes pelo WhatsApp.
Responda em português, de forma curta e simpática, em no máximo três frases.
Use somente as informações da loja fornecidas; não invente produtos nem preços.`
	if domainContext != "" {
		system += "\n\nInformações da loja:\n" + domainContext
	}

	msg := in.OriginalMessage
	if msg == "" {
		msg = string(in.Type)
	}
	prompt := fmt.Sprintf("Intenção detectada: %s\nMensagem do cliente: %s", in.Type, msg)

	reply, err := c.complete(ctx, system, []Message{{Role: "user", Content: prompt}})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

type parsedOrder struct {
	Items []intent.OrderItem `json:"items"`
}

// ParseOrder extrai pares (produto, quantidade) da mensagem usando os nomes do catálogo
func (c *Client) ParseOrder(ctx context.Context, text string, catalog []product.Product) ([]intent.OrderItem, error) {
	if !c.Enabled() {
		return intent.OrderHandler{}.Extract(text).Entities.Products, nil
	}

	var names strings.Builder
	for _, p := range catalog {
		names.WriteString("- ")
		names.WriteString(p.Name)
		names.WriteString("\n")
	}

	system := `Você extrai itens de pedido de mensagens de clientes.
Use exatamente os nomes de produtos do catálogo abaixo. Ignore itens que não existam no catálogo.
Quando a quantidade não for informada, use 1.
Responda SOMENTE com um objeto JSON no formato {"items": [{"productName": "<nome do catálogo>", "quantity": <inteiro>}]}.

Catálogo:
` + names.String()

	var parsed parsedOrder
	if err := c.completeJSON(ctx, system, text, &parsed); err != nil {
		return nil, err
	}

	items := make([]intent.OrderItem, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if strings.TrimSpace(it.ProductName) == "" {
			continue
		}
		if it.Quantity <= 0 {
			it.Quantity = 1
		}
		items = append(items, it)
	}
	return items, nil
}

func (c *Client) completeJSON(ctx context.Context, system, text string, out interface{}) error {
	reply, err := c.complete(ctx, system, []Message{{Role: "user", Content: text}})
	if err != nil {
		return err
	}

	raw, err := ExtractJSON(reply)
	if err != nil {
		return errors.Wrapf(err, "resposta do modelo: %q", reply)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return errors.Wrap(err, "erro ao interpretar JSON do modelo")
	}
	return nil
}

// complete envia as mensagens e retorna o texto concatenado da resposta
func (c *Client) complete(ctx context.Context, system string, messages []Message) (string, error) {
	reqBody := messageRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages:  messages,
		System:    system,
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.Wrap(err, "erro ao serializar requisição")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(reqJSON))
	if err != nil {
		return "", errors.Wrap(err, "erro ao criar requisição HTTP")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "erro na comunicação com a API de linguagem")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "erro ao ler resposta")
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("API de linguagem retornou erro", "status", resp.StatusCode, "body", string(respBody))
		return "", errors.Errorf("erro na API de linguagem (código %d)", resp.StatusCode)
	}

	var apiResp messageResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", errors.Wrap(err, "erro ao decodificar resposta")
	}

	var text strings.Builder
	for _, content := range apiResp.Content {
		if content.Type == "text" {
			text.WriteString(content.Text)
		}
	}
	if text.Len() == 0 {
		return "", errors.New("resposta vazia da API de linguagem")
	}

	c.logger.Debug("Resposta da API de linguagem",
		"model", apiResp.Model,
		"input_tokens", apiResp.Usage.InputTokens,
		"output_tokens", apiResp.Usage.OutputTokens,
		"stop_reason", apiResp.StopReason)

	return text.String(), nil
}

// ExtractJSON retorna o primeiro objeto JSON balanceado do texto,
// ignorando chaves dentro de strings
func ExtractJSON(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	for start >= 0 {
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(text); i++ {
			ch := text[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case ch == '\\':
					escaped = true
				case ch == '"':
					inString = false
				}
				continue
			}
			switch ch {
			case '"':
				inString = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					candidate := text[start : i+1]
					if json.Valid([]byte(candidate)) {
						return candidate, nil
					}
					i = len(text)
				}
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", ErrNoJSON
}
