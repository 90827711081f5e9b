package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Authentication modes.
const (
	AuthJWT    = "jwt"
	AuthRemote = "remote"
	AuthNone   = "none"
)

// Config holds the application configuration.
type Config struct {
	Port              string `mapstructure:"PORT"`
	AllowedOrigins    string `mapstructure:"ALLOWED_ORIGINS"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	Env               string `mapstructure:"ENV"`
	AuthMode          string `mapstructure:"AUTH_MODE"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	IdentityURL       string `mapstructure:"IDENTITY_URL"`
	IdentityAPIKey    string `mapstructure:"IDENTITY_API_KEY"`
	NATSURL           string `mapstructure:"NATS_URL"`
	NATSSubjectPrefix string `mapstructure:"NATS_SUBJECT_PREFIX"`
	CountdownSeconds  int    `mapstructure:"COUNTDOWN_SECONDS"`
	SendBuffer        int    `mapstructure:"SEND_BUFFER"`
	PasswordCost      int    `mapstructure:"PASSWORD_COST"`
}

var defaults = map[string]any{
	"PORT":                "2567",
	"ALLOWED_ORIGINS":     "http://localhost:3000",
	"LOG_LEVEL":           "info",
	"ENV":                 "development",
	"AUTH_MODE":           AuthJWT,
	"JWT_SECRET":          "",
	"IDENTITY_URL":        "",
	"IDENTITY_API_KEY":    "",
	"NATS_URL":            "",
	"NATS_SUBJECT_PREFIX": "dream",
	"COUNTDOWN_SECONDS":   10,
	"SEND_BUFFER":         256,
	"PASSWORD_COST":       bcrypt.MinCost,
}

// Load loads the configuration from a .env file and environment variables.
// path names the .env file; empty means ./.env. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(".env")
	}
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	c.AuthMode = strings.ToLower(strings.TrimSpace(c.AuthMode))
	switch c.AuthMode {
	case AuthJWT:
		if c.JWTSecret == "" {
			return errors.New("AUTH_MODE=jwt requires JWT_SECRET")
		}
	case AuthRemote:
		if c.IdentityURL == "" {
			return errors.New("AUTH_MODE=remote requires IDENTITY_URL")
		}
	case AuthNone:
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode)
	}

	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if c.CountdownSeconds < 1 {
		return fmt.Errorf("COUNTDOWN_SECONDS must be positive, got %d", c.CountdownSeconds)
	}
	if c.SendBuffer < 1 {
		return fmt.Errorf("SEND_BUFFER must be positive, got %d", c.SendBuffer)
	}
	if c.PasswordCost < bcrypt.MinCost || c.PasswordCost > bcrypt.MaxCost {
		return fmt.Errorf("PASSWORD_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
