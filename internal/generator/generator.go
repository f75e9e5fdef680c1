package generator

import (
	"context"
	"fmt"
	"net/http"

	"scamshield/internal/config"
)

//go:generate mockgen -source=generator.go -destination=../mocks/mock_generator.go -package=mocks

// Generator turns a prompt into the model's raw text reply. An empty reply
// with a nil error means the service answered with no usable text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

func New(cfg config.GeneratorConfig) (Generator, error) {
	client := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Provider {
	case ProviderGemini:
		return NewGemini(cfg.APIKey, cfg.Model, cfg.BaseURL, client), nil
	case ProviderOpenRouter:
		return NewOpenRouter(cfg.APIKey, cfg.Model, cfg.BaseURL, client), nil
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Provider)
	}
}
