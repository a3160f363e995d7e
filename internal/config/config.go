package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Gemini GeminiConfig `mapstructure:"gemini"`
	Local  LocalConfig  `mapstructure:"local"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout bounds how long in-flight requests may drain on shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// GeminiConfig configures the remote generation model.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// LocalConfig configures the OpenAI-compatible model used for prompt enhancement.
type LocalConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int64   `mapstructure:"max_tokens"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

var defaults = map[string]any{
	"server.host":             "0.0.0.0",
	"server.port":             "5001",
	"server.read_timeout":     "30s",
	"server.write_timeout":    "120s",
	"server.shutdown_timeout": "30s",
	"server.allowed_origins":  []string{"*"},

	"gemini.api_key": "",
	"gemini.model":   "gemini-2.5-flash",

	"local.endpoint":    "http://127.0.0.1:1234/v1/",
	"local.api_key":     "lm-studio",
	"local.model":       "google/gemma-3-4b",
	"local.temperature": 0.4,
	"local.max_tokens":  0,

	"log.level":  "info",
	"log.format": "json",
	"log.file":   "",
}

// LoadConfig reads config.yaml (if present) and the environment. Environment
// variables win over the file, e.g. SERVER_PORT overrides server.port.
func LoadConfig() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/prompt-relay/")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The Google SDKs document GOOGLE_API_KEY, so accept it as a fallback.
	if err := v.BindEnv("gemini.api_key", "GEMINI_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		slog.Info("using config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Local.Endpoint = withTrailingSlash(cfg.Local.Endpoint)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("configuration loaded successfully")
	return &cfg, nil
}

// Validate checks the values that would otherwise only fail at request time.
// A missing Gemini API key is not an error here: the server still starts and
// reports the remote model as unavailable.
func (c *Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %q is not a valid port", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout %s must be positive", c.Server.ShutdownTimeout))
	}
	if c.Gemini.Model == "" {
		errs = append(errs, errors.New("gemini.model cannot be empty"))
	}
	if u, err := url.Parse(c.Local.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("local.endpoint %q is not an absolute URL", c.Local.Endpoint))
	}
	if c.Local.Model == "" {
		errs = append(errs, errors.New("local.model cannot be empty"))
	}
	if c.Local.Temperature < 0 || c.Local.Temperature > 2 {
		errs = append(errs, fmt.Errorf("local.temperature %v must be between 0 and 2", c.Local.Temperature))
	}
	if c.Local.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("local.max_tokens %d cannot be negative", c.Local.MaxTokens))
	}

	return errors.Join(errs...)
}

func withTrailingSlash(s string) string {
	if s == "" || strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
