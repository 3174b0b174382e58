package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config contém a configuração da aplicação lida das variáveis de ambiente
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	BasePath        string        `envconfig:"BASE_PATH" default:"/api/v1"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"*"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	WhatsApp WhatsAppConfig
	NLU      NLUConfig
	Speech   SpeechConfig
	Backend  BackendConfig
	Database DatabaseConfig
	Session  SessionConfig
}

// WhatsAppConfig configura o cliente da WhatsApp Cloud API e o webhook
type WhatsAppConfig struct {
	APIBase       string `envconfig:"WHATSAPP_API_BASE" default:"https://graph.facebook.com/v19.0"`
	Token         string `envconfig:"WHATSAPP_TOKEN"`
	PhoneNumberID string `envconfig:"WHATSAPP_PHONE_NUMBER_ID"`
	VerifyToken   string `envconfig:"WHATSAPP_VERIFY_TOKEN"`
	AppSecret     string `envconfig:"WHATSAPP_APP_SECRET"`
}

// NLUConfig configura o cliente de linguagem natural
type NLUConfig struct {
	APIKey    string `envconfig:"ANTHROPIC_API_KEY"`
	Model     string `envconfig:"ANTHROPIC_MODEL" default:"claude-3-sonnet-20240229"`
	Endpoint  string `envconfig:"ANTHROPIC_API_ENDPOINT" default:"https://api.anthropic.com/v1/messages"`
	MaxTokens int    `envconfig:"ANTHROPIC_MAX_TOKENS" default:"1000"`
}

// SpeechConfig configura transcrição e síntese de voz
type SpeechConfig struct {
	APIKey   string `envconfig:"SPEECH_API_KEY"`
	APIBase  string `envconfig:"SPEECH_API_BASE" default:"https://api.openai.com/v1"`
	Voice    string `envconfig:"SPEECH_VOICE" default:"nova"`
	AudioDir string `envconfig:"SPEECH_AUDIO_DIR" default:"tmp/audio"`
}

// BackendConfig configura a API de pedidos
type BackendConfig struct {
	BaseURL string        `envconfig:"BACKEND_BASE_URL" default:"http://localhost:3000/api"`
	Token   string        `envconfig:"BACKEND_TOKEN"`
	Timeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"15s"`
}

// DatabaseConfig configura o PostgreSQL usado para o histórico das conversas.
// Com URL vazia o histórico é desativado.
type DatabaseConfig struct {
	URL            string `envconfig:"DATABASE_URL"`
	MigrationsPath string `envconfig:"MIGRATIONS_PATH" default:"migrations"`
	MaxConnections int32  `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	MinConnections int32  `envconfig:"DB_MIN_CONNECTIONS" default:"1"`
}

// SessionConfig configura o ciclo de vida das sessões de conversa
type SessionConfig struct {
	IdleTimeout   time.Duration `envconfig:"SESSION_IDLE_TIMEOUT" default:"30m"`
	SweepInterval time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"5m"`
	QueueSize     int           `envconfig:"SESSION_QUEUE_SIZE" default:"32"`
	WorkerIdle    time.Duration `envconfig:"SESSION_WORKER_IDLE" default:"2m"`
}

// Load carrega o arquivo .env (se existir) e processa as variáveis de ambiente
func Load(files ...string) (*Config, error) {
	// .env é opcional
	_ = godotenv.Load(files...)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("erro ao ler configuração: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate verifica combinações inválidas de configuração
func (c *Config) Validate() error {
	if c.Session.IdleTimeout <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT deve ser positivo")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL deve ser positivo")
	}
	if c.Session.QueueSize <= 0 {
		return fmt.Errorf("SESSION_QUEUE_SIZE deve ser positivo")
	}
	return nil
}
