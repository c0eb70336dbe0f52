package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/thomas-vilte/matetriage/internal/errors"
	"github.com/thomas-vilte/matetriage/internal/i18n"
	"github.com/thomas-vilte/matetriage/internal/models"
)

func newTrans(t *testing.T) *i18n.Translations {
	t.Helper()
	trans, err := i18n.NewTranslations("en")
	require.NoError(t, err)
	return trans
}

func TestPrintAnalysis(t *testing.T) {
	color.NoColor = true
	trans := newTrans(t)
	result := &models.TriageResult{
		Job:      &models.Job{Name: "build"},
		StepName: "Build",
		Analysis: "The go.sum file is stale.\nRun go mod tidy.",
		Usage:    &models.TokenUsage{InputTokens: 100, OutputTokens: 20, Model: "m", CostUSD: 0.0012},
	}

	t.Run("should wrap the analysis in a log group inside Actions", func(t *testing.T) {
		var buf bytes.Buffer

		PrintAnalysis(&buf, trans, result, true)

		out := buf.String()
		assert.Contains(t, out, "::group::Failure analysis\n")
		assert.Contains(t, out, "The go.sum file is stale.\nRun go mod tidy.\n")
		assert.Contains(t, out, "::endgroup::\n")
		assert.Contains(t, out, "Tokens: 100 in / 20 out (m)")
		assert.Contains(t, out, "$0.0012 USD")
	})

	t.Run("should use a banner outside Actions", func(t *testing.T) {
		var buf bytes.Buffer

		PrintAnalysis(&buf, trans, result, false)

		assert.NotContains(t, buf.String(), "::group::")
		assert.Contains(t, buf.String(), "Failure analysis")
	})

	t.Run("should print nothing for a skipped run", func(t *testing.T) {
		var buf bytes.Buffer

		PrintAnalysis(&buf, trans, &models.TriageResult{Skipped: true}, true)

		assert.Empty(t, buf.String())
	})
}

func TestHandleAppError(t *testing.T) {
	color.NoColor = true

	t.Run("should print type, details and suggestion", func(t *testing.T) {
		var buf bytes.Buffer
		err := domainErrors.ErrMissingInput.
			WithContext("input", "model").
			WithSuggestion("Set the model input")

		HandleAppError(&buf, err, newTrans(t))

		out := buf.String()
		assert.Contains(t, out, "CONFIGURATION: required input is missing")
		assert.Contains(t, out, "input: model")
		assert.Contains(t, out, "Suggestion: Set the model input")
	})

	t.Run("should print plain errors", func(t *testing.T) {
		var buf bytes.Buffer

		HandleAppError(&buf, errors.New("boom"))

		assert.Contains(t, buf.String(), "boom")
	})

	t.Run("should ignore nil", func(t *testing.T) {
		var buf bytes.Buffer
		HandleAppError(&buf, nil)
		assert.Empty(t, buf.String())
	})
}

func TestPrintProgress(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer

	PrintProgress(&buf, models.ProgressEvent{Type: models.ProgressCommentPublished, Message: "published"})
	PrintProgress(&buf, models.ProgressEvent{Type: models.ProgressAnalysisReady, Message: "hidden"})
	PrintProgress(&buf, models.ProgressEvent{Type: models.ProgressGeneric, Message: "waiting"})

	assert.Contains(t, buf.String(), "published")
	assert.Contains(t, buf.String(), "waiting")
	assert.NotContains(t, buf.String(), "hidden")
}
