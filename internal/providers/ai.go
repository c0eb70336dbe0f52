package providers

import (
	"context"

	"github.com/thomas-vilte/matetriage/internal/ai"
	"github.com/thomas-vilte/matetriage/internal/ai/gemini"
	"github.com/thomas-vilte/matetriage/internal/ai/openrouter"
	"github.com/thomas-vilte/matetriage/internal/config"
	domainErrors "github.com/thomas-vilte/matetriage/internal/errors"
)

// NewAnalyzer creates an Analyzer based on the configured provider
func NewAnalyzer(ctx context.Context, cfg *config.Config) (ai.Analyzer, error) {
	switch cfg.Provider {
	case config.ProviderOpenRouter:
		return openrouter.NewClient(cfg.OpenRouterAPIKey, cfg.Model,
			openrouter.WithBaseURL(cfg.OpenRouterBaseURL),
			openrouter.WithAttribution(repositoryURL(cfg), "matetriage"),
		), nil
	case config.ProviderGemini:
		analyzer, err := gemini.NewGeminiAnalyzer(ctx, cfg.GeminiAPIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		return analyzer, nil
	default:
		return nil, domainErrors.ErrUnknownProvider.WithContext("provider", cfg.Provider)
	}
}

func repositoryURL(cfg *config.Config) string {
	if cfg.GitHub.Repository == "" {
		return ""
	}
	server := cfg.GitHub.ServerURL
	if server == "" {
		server = "https://github.com"
	}
	return server + "/" + cfg.GitHub.Repository
}
