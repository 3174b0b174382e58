package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hugohenrick/atendente-pedidos/pkg/logger"
	"github.com/pkg/errors"
)

const maxResponseSize = 4 << 20

// Config contém as configurações do cliente da API de pedidos
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// StatusError é uma resposta de erro da API de pedidos
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// Client é o cliente REST da API de pedidos
type Client struct {
	cfg    Config
	http   *http.Client
	logger logger.Logger
}

// NewClient cria um novo cliente
func NewClient(cfg Config, log logger.Logger) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}, logger: log}
}

// Catalog retorna o catálogo servido por este cliente
func (c *Client) Catalog() *Catalog { return &Catalog{c: c} }

// Customers retorna o repositório de clientes servido por este cliente
func (c *Client) Customers() *CustomerRepository { return &CustomerRepository{c: c} }

// Orders retorna o repositório de pedidos servido por este cliente
func (c *Client) Orders() *OrderRepository { return &OrderRepository{c: c} }

// do executa a requisição. Respostas 404 retornam notFound quando informado.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}, notFound error) error {
	u := c.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "erro ao serializar requisição")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return errors.Wrap(err, "erro ao criar requisição")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "erro ao chamar %s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return errors.Wrap(err, "erro ao ler resposta")
	}
	c.logger.Debug("Chamada à API de pedidos", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start).String())

	if resp.StatusCode == http.StatusNotFound && notFound != nil {
		return notFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := decode(data, out); err != nil {
		return errors.Wrapf(err, "erro ao decodificar resposta de %s %s", method, path)
	}
	return nil
}

// decode aceita tanto o corpo direto quanto o envelope {"data": ...}
func decode(data []byte, out interface{}) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &envelope); err == nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
			return json.Unmarshal(envelope.Data, out)
		}
	}
	return json.Unmarshal(trimmed, out)
}

func escape(s string) string {
	return url.PathEscape(s)
}
