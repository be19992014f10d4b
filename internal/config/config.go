// Package config loads the settings of the mailverify binaries from
// command line flags, a .env file and environment variables.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/optimode/mailverify"
)

// Config holds the application configuration.
type Config struct {
	ServerAddress string        `env:"SERVER_ADDRESS"` // HTTP listen address
	HeloDomain    string        `env:"HELO_DOMAIN"`    // identity sent in EHLO/HELO
	MailFrom      string        `env:"MAIL_FROM"`      // envelope sender of probes
	DNSTimeout    time.Duration `env:"DNS_TIMEOUT"`
	SMTPTimeout   time.Duration `env:"SMTP_TIMEOUT"`
	SMTPPort      string        `env:"SMTP_PORT"`
	Workers       int           `env:"BULK_WORKERS"`
	MaxRetries    int           `env:"MAX_RETRIES"`
	AttemptDelay  time.Duration `env:"ATTEMPT_DELAY"`
	ChunkPause    time.Duration `env:"CHUNK_PAUSE"`
	LogLevel      string        `env:"LOG_LEVEL"`

	// Args holds the positional command line arguments.
	Args []string
}

// Default returns the built-in configuration.
func Default() *Config {
	bulk := mailverify.DefaultBulkOptions()
	return &Config{
		ServerAddress: ":5000",
		HeloDomain:    "test.com",
		MailFrom:      "test@test.com",
		DNSTimeout:    5 * time.Second,
		SMTPTimeout:   10 * time.Second,
		SMTPPort:      "25",
		Workers:       bulk.Workers,
		MaxRetries:    3,
		AttemptDelay:  bulk.AttemptDelay,
		ChunkPause:    bulk.ChunkPause,
		LogLevel:      "info",
	}
}

// Load builds the configuration. Precedence, lowest first: defaults,
// command line flags, .env file, process environment. A missing .env file
// is not an error. extra registers binary specific flags on the same set.
func Load(name string, args []string, extra ...func(*flag.FlagSet)) (*Config, error) {
	cfg := Default()

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.StringVar(&cfg.ServerAddress, "a", cfg.ServerAddress, "HTTP listen address (env: SERVER_ADDRESS)")
	flags.StringVar(&cfg.HeloDomain, "helo", cfg.HeloDomain, "EHLO/HELO identity (env: HELO_DOMAIN)")
	flags.StringVar(&cfg.MailFrom, "from", cfg.MailFrom, "MAIL FROM address (env: MAIL_FROM)")
	flags.IntVar(&cfg.MaxRetries, "retries", cfg.MaxRetries, "attempts per address in bulk runs (env: MAX_RETRIES)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (env: LOG_LEVEL)")
	for _, register := range extra {
		register(flags)
	}
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	cfg.Args = flags.Args()

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load .env: %w", err)
}

func (c *Config) validate() error {
	if c.HeloDomain == "" || c.MailFrom == "" {
		return mailverify.ErrInvalidSMTPOptions
	}
	if c.Workers <= 0 {
		return fmt.Errorf("BULK_WORKERS must be positive, got %d", c.Workers)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

// NewLogger builds a production zap logger at the configured level.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// BulkOptions returns the bulk pacing settings with a zap observer on
// logger.
func (c *Config) BulkOptions(logger *zap.Logger) mailverify.BulkOptions {
	return mailverify.BulkOptions{
		Workers:      c.Workers,
		AttemptDelay: c.AttemptDelay,
		ChunkPause:   c.ChunkPause,
		Observer:     mailverify.NewZapObserver(logger),
	}
}

// NewValidator builds a Validator wired with this configuration.
func (c *Config) NewValidator(logger *zap.Logger) *mailverify.Validator {
	return mailverify.New().
		WithLogger(logger).
		WithDNS(mailverify.DNSOptions{Timeout: c.DNSTimeout}).
		WithSMTP(mailverify.SMTPOptions{
			HeloDomain:     c.HeloDomain,
			MailFrom:       c.MailFrom,
			ConnectTimeout: c.SMTPTimeout,
			CommandTimeout: c.SMTPTimeout,
			Port:           c.SMTPPort,
		}).
		WithBulk(c.BulkOptions(logger))
}
