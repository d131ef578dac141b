package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListenAddress   = ":5000"
	DefaultLogLevel        = "info"
	DefaultEventBufferSize = 100
	DefaultMetricsPath     = "/metrics"
)

type ctxKey string

const configContextKey ctxKey = "config"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, _ := ctx.Value(configContextKey).(*Config)
	return cfg
}

type Config struct {
	ListenAddress   string        `yaml:"listenAddress"   envconfig:"LISTEN_ADDRESS"`
	DatabaseURL     string        `yaml:"databaseUrl"     envconfig:"DATABASE_URL"`
	LogLevel        string        `yaml:"logLevel"        envconfig:"LOG_LEVEL"`
	LogFormat       string        `yaml:"logFormat"       envconfig:"LOG_FORMAT"`
	VotingTTL       time.Duration `yaml:"votingTtl"       envconfig:"VOTING_TTL"`
	InviteTTL       time.Duration `yaml:"inviteTtl"       envconfig:"INVITE_TTL"`
	LoanTerm        time.Duration `yaml:"loanTerm"        envconfig:"LOAN_TERM"`
	EventBufferSize int           `yaml:"eventBufferSize" envconfig:"EVENT_BUFFER_SIZE"`
	AllowedOrigins  []string      `yaml:"allowedOrigins"  envconfig:"ALLOWED_ORIGINS"`
	MetricsPath     string        `yaml:"metricsPath"     envconfig:"METRICS_PATH"`
}

func defaults() *Config {
	return &Config{
		ListenAddress:   DefaultListenAddress,
		LogLevel:        DefaultLogLevel,
		LogFormat:       "text",
		VotingTTL:       24 * time.Hour,
		InviteTTL:       7 * 24 * time.Hour,
		LoanTerm:        30 * 24 * time.Hour,
		EventBufferSize: DefaultEventBufferSize,
		AllowedOrigins:  []string{"*"},
		MetricsPath:     DefaultMetricsPath,
	}
}

// LoadConfig layers the YAML file at configFile (optional) and CHAMA_*
// environment variables over the defaults.
func LoadConfig(configFile string) (*Config, error) {
	cfg := defaults()

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := envconfig.Process("chama", cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.ListenAddress == "" {
		errs = append(errs, errors.New("listenAddress must not be empty"))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid logLevel: %q (must be 'debug', 'info', 'warn' or 'error')", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid logFormat: %q (must be 'text' or 'json')", c.LogFormat))
	}
	if c.VotingTTL <= 0 {
		errs = append(errs, errors.New("votingTtl must be positive"))
	}
	if c.InviteTTL <= 0 {
		errs = append(errs, errors.New("inviteTtl must be positive"))
	}
	if c.LoanTerm < 0 {
		errs = append(errs, errors.New("loanTerm must not be negative"))
	}
	if c.EventBufferSize <= 0 {
		errs = append(errs, errors.New("eventBufferSize must be positive"))
	}
	if !strings.HasPrefix(c.MetricsPath, "/") {
		errs = append(errs, fmt.Errorf("invalid metricsPath: %q", c.MetricsPath))
	}
	return errors.Join(errs...)
}
