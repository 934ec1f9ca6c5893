package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Edneylin/factory-efficiency-analysis/internal/pipeline"
)

// Default values for the service configuration.
const (
	DefaultHTTPPort    = 8080
	DefaultAnalysisTTL = 24 * time.Hour
)

// Config is the whole YAML configuration file.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Mail     MailConfig     `yaml:"mail"`
	Alerts   AlertsConfig   `yaml:"alerts"`
}

// ServerConfig holds the HTTP listener and retention settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API and WebSocket hub listen on (default 8080).
	HTTPPort int `yaml:"http_port"`

	// Auth configures API-key authentication for the REST API.
	Auth AuthConfig `yaml:"auth"`

	// Store controls in-memory analysis retention.
	Store StoreConfig `yaml:"store"`
}

// AuthConfig controls client authentication.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the expected
	// API key. Used when Mode == "apikey".
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header name to read the key from.
	// Defaults to "x-api-key" if empty.
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "x-api-key"
}

// StoreConfig controls in-memory analysis retention.
type StoreConfig struct {
	// TTL is how long an analysis remains in the store after upload.
	// When TTL elapses the entry is evicted. Default: 24h.
	TTL time.Duration `yaml:"ttl"`
}

// PipelineConfig holds the caller-visible pipeline knobs.
type PipelineConfig struct {
	// ZeroFill is one of: off | before_derive | after_derive.
	// Controls whether unparseable numeric cells are zero-filled, and
	// whether that happens before or after the cycle-time derivations.
	ZeroFill string `yaml:"zero_fill"`
}

// ZeroFillMode returns the parsed mode. Call only after Load has validated
// the configuration.
func (p PipelineConfig) ZeroFillMode() pipeline.ZeroFillMode {
	m, _ := pipeline.ParseZeroFillMode(p.ZeroFill)
	return m
}

// MailConfig configures the optional emailed report.
type MailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`

	// PasswordEnv is the name of the environment variable that holds the
	// SMTP password. The password itself never appears in the file.
	PasswordEnv string `yaml:"password_env"`

	From string   `yaml:"from"`
	To   []string `yaml:"to"`
}

// Password returns the SMTP password resolved from the environment.
func (m MailConfig) Password() string {
	if m.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(m.PasswordEnv)
}

// AlertsConfig holds alerting rules and webhook delivery targets.
type AlertsConfig struct {
	Rules    []AlertRule     `yaml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// AlertRule defines one threshold-based alert condition.
type AlertRule struct {
	// Name is the human-readable alert identifier, used as the deduplication key.
	Name string `yaml:"name"`

	// Condition is a simple expression against the analysis summary:
	// "avg_efficiency < 80", "low_count > 0", "ct_abnormal_count > 5".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`

	// Cooldown suppresses re-fires for this duration after an alert fires.
	// Defaults to 15 minutes if zero.
	Cooldown time.Duration `yaml:"cooldown"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: teams | slack | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable that holds the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Load reads and parses the config file at path. Missing fields are filled
// with sensible defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
			Store: StoreConfig{
				TTL: DefaultAnalysisTTL,
			},
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	switch cfg.Server.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none", cfg.Server.Auth.Mode)
	}
	if cfg.Server.Store.TTL < 0 {
		return fmt.Errorf("server.store.ttl must not be negative")
	}
	if _, err := pipeline.ParseZeroFillMode(cfg.Pipeline.ZeroFill); err != nil {
		return fmt.Errorf("pipeline.zero_fill: %w", err)
	}
	if cfg.Mail.Enabled {
		if cfg.Mail.Host == "" {
			return fmt.Errorf("mail.host is required when mail is enabled")
		}
		if cfg.Mail.Port <= 0 || cfg.Mail.Port > 65535 {
			return fmt.Errorf("mail.port %d is out of range [1, 65535]", cfg.Mail.Port)
		}
		if cfg.Mail.From == "" || len(cfg.Mail.To) == 0 {
			return fmt.Errorf("mail.from and mail.to are required when mail is enabled")
		}
	}
	for _, r := range cfg.Alerts.Rules {
		if r.Name == "" || r.Condition == "" {
			return fmt.Errorf("alert rule needs both name and condition (got name %q)", r.Name)
		}
		if r.Cooldown < 0 {
			return fmt.Errorf("alert rule %q: cooldown must not be negative", r.Name)
		}
	}
	return nil
}
