package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar aponta para um YAML opcional com os mesmos campos.
const ConfigPathEnvVar = "CONFIG_PATH"

// Config é montada uma vez no main e passada por referência.
type Config struct {
	Port            string        `koanf:"port"`
	DatabaseURL     string        `koanf:"database_url"`
	RabbitMQURL     string        `koanf:"rabbitmq_url"`
	LogLevel        string        `koanf:"log_level"`
	LogFormat       string        `koanf:"log_format"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	DispatchWorkers int           `koanf:"dispatch_workers"`
	AdapterTimeout  time.Duration `koanf:"adapter_timeout"`

	SMTPHost string `koanf:"smtp_host"`
	SMTPPort int    `koanf:"smtp_port"`
	SMTPUser string `koanf:"smtp_user"`
	SMTPPass string `koanf:"smtp_pass"`
	MailFrom string `koanf:"mail_from"`

	AdminNotifyEmails    []string `koanf:"admin_notify_emails"`
	AdminWhatsAppNumbers []string `koanf:"admin_whatsapp_numbers"`
	AdminBaseURL         string   `koanf:"admin_base_url"`

	WhatsAppProvider      string `koanf:"whatsapp_provider"`
	WhatsAppAccessToken   string `koanf:"whatsapp_access_token"`
	WhatsAppPhoneNumberID string `koanf:"whatsapp_phone_number_id"`
	WhatsAppAPIURL        string `koanf:"whatsapp_api_url"`

	LeadRateLimit  int           `koanf:"lead_rate_limit"`
	LeadRateWindow time.Duration `koanf:"lead_rate_window"`
	// TrustProxy liga o IP real (X-Forwarded-For) no rate limit da captura.
	// Só deve ser ligado atrás de um proxy que sobrescreve esses headers.
	TrustProxy bool `koanf:"trust_proxy"`

	JWTSecret         string        `koanf:"jwt_secret"`
	JWTTTL            time.Duration `koanf:"jwt_ttl"`
	AdminEmail        string        `koanf:"admin_email"`
	AdminPasswordHash string        `koanf:"admin_password_hash"`
}

func defaultConfig() *Config {
	return &Config{
		Port:                 "8080",
		LogLevel:             "info",
		LogFormat:            "json",
		CORSOrigins:          []string{"*"},
		DispatchWorkers:      4,
		AdapterTimeout:       10 * time.Second,
		SMTPPort:             587,
		MailFrom:             "nao-responda@localhost",
		AdminNotifyEmails:    []string{},
		AdminWhatsAppNumbers: []string{},
		AdminBaseURL:         "http://localhost:5173/admin",
		WhatsAppProvider:     "manual",
		WhatsAppAPIURL:       "https://graph.facebook.com/v18.0",
		LeadRateLimit:        30,
		LeadRateWindow:       time.Hour,
		JWTTTL:               24 * time.Hour,
	}
}

// Load lê defaults -> arquivo YAML (opcional) -> variáveis de ambiente.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("erro ao carregar defaults: %w", err)
	}

	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("erro ao ler arquivo de config %s: %w", path, err)
		}
	}

	// SMTP_HOST -> smtp_host; listas vêm separadas por vírgula
	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("erro ao ler variáveis de ambiente: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("erro ao montar config: %w", err)
	}

	cfg.AdminNotifyEmails = cleanList(cfg.AdminNotifyEmails)
	cfg.AdminWhatsAppNumbers = cleanList(cfg.AdminWhatsAppNumbers)
	cfg.CORSOrigins = cleanList(cfg.CORSOrigins)
	cfg.AdminBaseURL = strings.TrimRight(cfg.AdminBaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate só barra o que impede o processo de subir. Configuração de
// notificação incompleta não é erro de startup.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL é obrigatório")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET é obrigatório")
	}
	if c.LeadRateLimit <= 0 {
		return fmt.Errorf("LEAD_RATE_LIMIT deve ser positivo")
	}
	if c.DispatchWorkers <= 0 {
		c.DispatchWorkers = 1
	}
	return nil
}

var listKeys = map[string]bool{
	"cors_origins":           true,
	"admin_notify_emails":    true,
	"admin_whatsapp_numbers": true,
}

func envValue(key, value string) (string, interface{}) {
	key = strings.ToLower(key)
	if listKeys[key] {
		return key, strings.Split(value, ",")
	}
	return key, value
}

func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != ""
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
