package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override, e.g. MSGAGENT_SERVER_PORT.
const EnvPrefix = "MSGAGENT"

type ServerConfig struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	AllowedOrigins string `toml:"allowed_origins" split_words:"true"` // comma separated
}

type SSLConfig struct {
	Enabled    bool   `toml:"enabled"`
	CertFile   string `toml:"cert_file" split_words:"true"` // Path to fullchain.pem
	KeyFile    string `toml:"key_file" split_words:"true"`  // Path to privkey.pem
	Domain     string `toml:"domain"`                       // Domain name for HSTS
	HSTSMaxAge int    `toml:"hsts_max_age" envconfig:"HSTS_MAX_AGE"`
}

type StorageConfig struct {
	Driver      string `toml:"driver"` // sqlite or postgres
	DataDir     string `toml:"data_dir" split_words:"true"`
	SQLitePath  string `toml:"sqlite_path" envconfig:"SQLITE_PATH"`
	PostgresDSN string `toml:"postgres_dsn" envconfig:"POSTGRES_DSN"`
}

type AuthConfig struct {
	JWTSecret string        `toml:"jwt_secret" envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `toml:"token_ttl" split_words:"true"`
}

type LimitsConfig struct {
	MaxMessageLength   int `toml:"max_message_length" split_words:"true"`
	MaxPromptLength    int `toml:"max_prompt_length" split_words:"true"`
	MinPromptLength    int `toml:"min_prompt_length" split_words:"true"`
	MaxPromptsPerUser  int `toml:"max_prompts_per_user" split_words:"true"`
	RateLimitPerMinute int `toml:"rate_limit_per_minute" split_words:"true"`
}

type PerformanceConfig struct {
	ToolWarn  time.Duration `toml:"tool_warn" split_words:"true"`
	TotalWarn time.Duration `toml:"total_warn" split_words:"true"`
}

type IMAPConfig struct {
	Server   string `toml:"server"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Mailbox  string `toml:"mailbox"`
	Limit    int    `toml:"limit"`
}

type LogConfig struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

type DemoConfig struct {
	OwnerID string `toml:"owner_id" split_words:"true"`
}

type Config struct {
	Server      ServerConfig      `toml:"server"`
	SSL         SSLConfig         `toml:"ssl"`
	Storage     StorageConfig     `toml:"storage"`
	Auth        AuthConfig        `toml:"auth"`
	Limits      LimitsConfig      `toml:"limits"`
	Performance PerformanceConfig `toml:"performance"`
	IMAP        IMAPConfig        `toml:"imap"`
	Log         LogConfig         `toml:"log"`
	Demo        DemoConfig        `toml:"demo"`
}

// aliases are unprefixed variables honoured for compatibility with common
// hosting setups.
type aliases struct {
	DatabaseURL string `split_words:"true"`
}

// Default returns the built-in configuration.
func Default() *Config {
	var config Config

	config.Server.Host = "0.0.0.0"
	config.Server.Port = 8000
	config.Server.AllowedOrigins = "*"

	config.SSL.HSTSMaxAge = 31536000 // 1 year

	config.Storage.Driver = "sqlite"
	config.Storage.DataDir = "data"

	config.Auth.TokenTTL = 24 * time.Hour

	config.Limits.MaxMessageLength = 5000
	config.Limits.MaxPromptLength = 10000
	config.Limits.MinPromptLength = 10
	config.Limits.MaxPromptsPerUser = 10
	config.Limits.RateLimitPerMinute = 100

	config.Performance.ToolWarn = 5 * time.Second
	config.Performance.TotalWarn = 15 * time.Second

	config.IMAP.Port = 993
	config.IMAP.Mailbox = "INBOX"
	config.IMAP.Limit = 20

	config.Log.Level = "info"
	config.Demo.OwnerID = "demo_user"

	return &config
}

// LoadConfig layers defaults, the TOML file at path (optional), a .env file
// (optional) and MSGAGENT_* environment variables, in that order.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, config); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() error {
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return fmt.Errorf("failed to process environment variables: %w", err)
	}

	var alias aliases
	if err := envconfig.Process("", &alias); err != nil {
		return fmt.Errorf("failed to process environment variables: %w", err)
	}
	if alias.DatabaseURL != "" && c.Storage.PostgresDSN == "" {
		c.Storage.PostgresDSN = alias.DatabaseURL
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported storage driver: %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && c.Storage.PostgresDSN == "" {
		return fmt.Errorf("storage driver postgres requires postgres_dsn or DATABASE_URL")
	}
	if c.Limits.MinPromptLength > c.Limits.MaxPromptLength {
		return fmt.Errorf("min_prompt_length %d exceeds max_prompt_length %d",
			c.Limits.MinPromptLength, c.Limits.MaxPromptLength)
	}

	if c.SSL.Enabled {
		if err := c.ValidateSSL(); err != nil {
			return fmt.Errorf("SSL configuration error: %w", err)
		}
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Origins splits AllowedOrigins into a list.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.Server.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// SQLitePath resolves the sqlite file, defaulting into the data dir.
func (c *Config) SQLitePath() string {
	if c.Storage.SQLitePath != "" {
		return c.Storage.SQLitePath
	}
	return strings.TrimRight(c.Storage.DataDir, "/") + "/msgagent.db"
}

// ValidateSSL checks if the SSL configuration is valid
func (c *Config) ValidateSSL() error {
	if !c.SSL.Enabled {
		return nil
	}

	if c.SSL.CertFile == "" {
		return fmt.Errorf("SSL certificate file path is required")
	}

	if c.SSL.KeyFile == "" {
		return fmt.Errorf("SSL key file path is required")
	}

	// Try loading the certificates to verify they're valid
	_, err := tls.LoadX509KeyPair(c.SSL.CertFile, c.SSL.KeyFile)
	if err != nil {
		return fmt.Errorf("failed to load SSL certificates: %w", err)
	}

	return nil
}

// GetSecurityHeaders returns the extra headers to send when SSL is on
func (c *Config) GetSecurityHeaders() map[string]string {
	headers := make(map[string]string)

	if c.SSL.Enabled && c.SSL.Domain != "" {
		headers["Strict-Transport-Security"] = fmt.Sprintf("max-age=%d; includeSubDomains", c.SSL.HSTSMaxAge)
	}

	return headers
}
