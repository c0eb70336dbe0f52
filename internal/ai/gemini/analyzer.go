package gemini

import (
	"context"
	"strings"
	"time"

	"github.com/thomas-vilte/matetriage/internal/ai"
	domainErrors "github.com/thomas-vilte/matetriage/internal/errors"
	"github.com/thomas-vilte/matetriage/internal/logger"
	"github.com/thomas-vilte/matetriage/internal/models"
	"google.golang.org/genai"
)

var _ ai.Analyzer = (*GeminiAnalyzer)(nil)

type generateFunc func(ctx context.Context, model string, prompt string) (*genai.GenerateContentResponse, error)

// GeminiAnalyzer completes prompts with the Gemini API.
type GeminiAnalyzer struct {
	client     *genai.Client
	model      string
	generateFn generateFunc
}

func NewGeminiAnalyzer(ctx context.Context, apiKey, model string) (*GeminiAnalyzer, error) {
	if apiKey == "" {
		return nil, domainErrors.ErrMissingInput.WithContext("input", "gemini_api_key")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, domainErrors.NewAppError(domainErrors.TypeConfiguration, "error creating Gemini client", err)
	}

	a := &GeminiAnalyzer{
		client: client,
		model:  model,
	}
	a.generateFn = a.defaultGenerate
	return a, nil
}

func (a *GeminiAnalyzer) defaultGenerate(ctx context.Context, model string, prompt string) (*genai.GenerateContentResponse, error) {
	return a.client.Models.GenerateContent(ctx, model, genai.Text(prompt), getGenerateConfig())
}

// Complete sends prompt as a single user turn and returns the model's answer.
func (a *GeminiAnalyzer) Complete(ctx context.Context, prompt string) (models.Analysis, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	log.Debug("calling gemini API",
		"model", a.model,
		"prompt_length", len(prompt))

	resp, err := a.generateFn(ctx, a.model, prompt)
	if err != nil {
		log.Error("gemini API call failed",
			"error", err,
			"model", a.model)
		return models.Analysis{}, domainErrors.ErrBackend.
			WithError(err).
			WithContext("provider", "gemini").
			WithContext("model", a.model).
			WithSuggestion(suggestionFor(err))
	}

	text := formatResponse(resp)
	if text == "" {
		return models.Analysis{}, domainErrors.ErrEmptyCompletion.
			WithContext("provider", "gemini").
			WithContext("model", a.model)
	}

	usage := extractUsage(resp)
	if usage != nil {
		usage.Model = a.model
		usage.DurationMs = time.Since(start).Milliseconds()
	}

	return models.Analysis{
		Text:     text,
		Provider: a.GetProviderName(),
		Model:    a.model,
		Usage:    usage,
	}, nil
}

func (a *GeminiAnalyzer) GetModelName() string {
	return a.model
}

func (a *GeminiAnalyzer) GetProviderName() string {
	return "gemini"
}

func suggestionFor(err error) string {
	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, "quota"),
		strings.Contains(errMsg, "rate limit"),
		strings.Contains(errMsg, "resource exhausted"):
		return "Gemini quota exceeded; wait for it to reset or upgrade the plan"
	case strings.Contains(errMsg, "api key"),
		strings.Contains(errMsg, "unauthorized"),
		strings.Contains(errMsg, "permission"):
		return "Check the gemini_api_key secret"
	default:
		return ""
	}
}
