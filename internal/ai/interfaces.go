package ai

import (
	"context"

	"github.com/thomas-vilte/matetriage/internal/models"
)

// Analyzer sends one rendered prompt to a completion backend.
type Analyzer interface {
	// Complete returns the backend's text, or a BACKEND AppError when the request
	// fails or the response has no extractable content.
	Complete(ctx context.Context, prompt string) (models.Analysis, error)

	// GetProviderName returns the name of the provider (e.g.: "openrouter", "gemini")
	GetProviderName() string

	// GetModelName returns the model identifier sent to the provider.
	GetModelName() string
}
