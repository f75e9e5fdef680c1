package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix = "SCAMSHIELD_"

	// Placeholder credential shipped in early deployments; never accepted.
	placeholderAPIKey = "your api here"
)

var ErrPlaceholderAPIKey = errors.New("generator.api_key is a placeholder, supply a real key")

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Generator GeneratorConfig `koanf:"generator"`
	Log       LogConfig       `koanf:"log"`
}

type ServerConfig struct {
	Port      string `koanf:"port" validate:"required"`
	BodyLimit string `koanf:"body_limit" validate:"required"`
}

type GeneratorConfig struct {
	Provider string        `koanf:"provider" validate:"oneof=gemini openrouter"`
	APIKey   string        `koanf:"api_key" validate:"required"`
	Model    string        `koanf:"model" validate:"required"`
	BaseURL  string        `koanf:"base_url" validate:"omitempty,url"`
	Timeout  time.Duration `koanf:"timeout" validate:"gt=0"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      ":8000",
			BodyLimit: "10M",
		},
		Generator: GeneratorConfig{
			Provider: "gemini",
			Model:    "gemini-1.5-flash",
			Timeout:  60 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load layers defaults, the optional yaml file at path and SCAMSHIELD_*
// environment variables, in that order. Nested keys use a double
// underscore: SCAMSHIELD_GENERATOR__API_KEY.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.Generator.APIKey == "" {
		cfg.Generator.APIKey = firstEnv("API_KEY", "GOOGLE_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if strings.EqualFold(strings.TrimSpace(c.Generator.APIKey), placeholderAPIKey) {
		return ErrPlaceholderAPIKey
	}
	return nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
