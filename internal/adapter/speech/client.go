package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/atendente-pedidos/pkg/logger"
	"github.com/pkg/errors"
)

const (
	defaultAPIBase    = "https://api.openai.com/v1"
	defaultSTTModel   = "whisper-1"
	defaultTTSModel   = "tts-1"
	defaultVoice      = "nova"
	defaultLanguage   = "pt"
	defaultAudioDir   = "tmp/audio"
	maxAudioResponse  = 25 << 20
	maxErrorBodyBytes = 4 << 10
)

// ErrNotConfigured indica que não há chave da API de voz
var ErrNotConfigured = errors.New("serviço de voz não configurado")

// Config contém as configurações do cliente de voz
type Config struct {
	APIKey   string
	APIBase  string
	STTModel string
	TTSModel string
	Voice    string
	Language string
	AudioDir string
	Timeout  time.Duration
}

// Client transcreve e sintetiza áudio com uma API compatível com a da OpenAI.
// Implementa dialogue.Transcriber e dialogue.Synthesizer.
type Client struct {
	cfg    Config
	http   *http.Client
	logger logger.Logger
}

// NewClient cria um novo cliente
func NewClient(cfg Config, log logger.Logger) *Client {
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}
	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")
	if cfg.STTModel == "" {
		cfg.STTModel = defaultSTTModel
	}
	if cfg.TTSModel == "" {
		cfg.TTSModel = defaultTTSModel
	}
	if cfg.Voice == "" {
		cfg.Voice = defaultVoice
	}
	if cfg.Language == "" {
		cfg.Language = defaultLanguage
	}
	if cfg.AudioDir == "" {
		cfg.AudioDir = defaultAudioDir
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}, logger: log}
}

// Enabled indica se a API está configurada
func (c *Client) Enabled() bool {
	return c.cfg.APIKey != ""
}

// Transcribe converte o áudio em texto
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}
	if len(audio) == 0 {
		return "", errors.New("áudio vazio")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="audio%s"`, extension(mimeType)))
	if mimeType != "" {
		h.Set("Content-Type", mimeType)
	}
	part, err := w.CreatePart(h)
	if err != nil {
		return "", errors.Wrap(err, "erro ao montar requisição de transcrição")
	}
	if _, err := part.Write(audio); err != nil {
		return "", errors.Wrap(err, "erro ao montar requisição de transcrição")
	}
	for k, v := range map[string]string{"model": c.cfg.STTModel, "language": c.cfg.Language, "response_format": "json"} {
		if err := w.WriteField(k, v); err != nil {
			return "", errors.Wrap(err, "erro ao montar requisição de transcrição")
		}
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "erro ao montar requisição de transcrição")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIBase+"/audio/transcriptions", &buf)
	if err != nil {
		return "", errors.Wrap(err, "erro ao criar requisição de transcrição")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	data, err := c.do(req)
	if err != nil {
		return "", errors.Wrap(err, "erro na transcrição")
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", errors.Wrap(err, "erro ao decodificar transcrição")
	}
	c.logger.Debug("Áudio transcrito", "bytes", len(audio), "chars", len(out.Text))
	return strings.TrimSpace(out.Text), nil
}

// Synthesize gera um mp3 com o texto e retorna o caminho do arquivo
func (c *Client) Synthesize(ctx context.Context, text, voice string) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("texto vazio")
	}
	if voice == "" {
		voice = c.cfg.Voice
	}

	body, err := json.Marshal(map[string]string{
		"model":           c.cfg.TTSModel,
		"input":           text,
		"voice":           voice,
		"response_format": "mp3",
	})
	if err != nil {
		return "", errors.Wrap(err, "erro ao serializar requisição de síntese")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIBase+"/audio/speech", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "erro ao criar requisição de síntese")
	}
	req.Header.Set("Content-Type", "application/json")

	audio, err := c.do(req)
	if err != nil {
		return "", errors.Wrap(err, "erro na síntese de voz")
	}

	if err := os.MkdirAll(c.cfg.AudioDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "erro ao criar diretório %s", c.cfg.AudioDir)
	}
	path := filepath.Join(c.cfg.AudioDir, uuid.New().String()+".mp3")
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", errors.Wrapf(err, "erro ao gravar áudio %s", path)
	}
	return path, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, errors.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioResponse))
	if err != nil {
		return nil, errors.Wrap(err, "erro ao ler resposta")
	}
	return data, nil
}

// extension escolhe a extensão do arquivo enviado a partir do tipo MIME
func extension(mimeType string) string {
	base, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return ".ogg"
	}
	switch base {
	case "audio/ogg", "audio/opus":
		return ".ogg"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/mp4", "audio/m4a", "audio/aac":
		return ".m4a"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/webm":
		return ".webm"
	default:
		return ".ogg"
	}
}
