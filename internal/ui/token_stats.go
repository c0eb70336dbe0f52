package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/thomas-vilte/matetriage/internal/i18n"
	"github.com/thomas-vilte/matetriage/internal/models"
)

func PrintTokenUsage(w io.Writer, usage *models.TokenUsage, t *i18n.Translations) {
	if usage == nil {
		return
	}
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)
	_, _ = cyan.Fprint(w, "📊 ")
	_, _ = fmt.Fprintln(w, t.GetMessage("token_usage", 0, map[string]interface{}{
		"Input":  usage.InputTokens,
		"Output": usage.OutputTokens,
		"Model":  usage.Model,
	}))
	if usage.CostUSD > 0 {
		_, _ = yellow.Fprintf(w, "💰 $%.4f USD\n", usage.CostUSD)
	}
	if usage.DurationMs > 0 {
		_, _ = fmt.Fprintf(w, "⏱️  %dms\n", usage.DurationMs)
	}
}
