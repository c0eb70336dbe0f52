package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	domainErrors "github.com/thomas-vilte/matetriage/internal/errors"
	"github.com/thomas-vilte/matetriage/internal/i18n"
	"github.com/thomas-vilte/matetriage/internal/models"
)

var (
	// Colors for different message types
	Success = color.New(color.FgGreen, color.Bold)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow, color.Bold)
	Info    = color.New(color.FgCyan, color.Bold)
	Accent  = color.New(color.FgMagenta, color.Bold)
	Dim     = color.New(color.FgHiBlack)

	MateEmoji    = "🧉"
	SuccessEmoji = Success.Sprint("✅")
	WarningEmoji = Warning.Sprint("⚠️")
	InfoEmoji    = Info.Sprint("ℹ️")
	SearchEmoji  = Accent.Sprint("🔎")
	StatsEmoji   = Accent.Sprint("📊")
)

func PrintSuccess(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", SuccessEmoji, Success.Sprint(msg))
}

func PrintError(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", Error.Sprint("❌"), Error.Sprint(msg))
}

func PrintWarning(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", WarningEmoji, Warning.Sprint(msg))
}

func PrintInfo(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", InfoEmoji, Info.Sprint(msg))
}

func PrintSectionBanner(w io.Writer, title string) {
	separator := color.New(color.FgCyan).Sprint("━━━━━━━━━━━━━━━━━━━━━━━")
	_, _ = fmt.Fprintf(w, "\n%s\n", separator)
	_, _ = fmt.Fprintf(w, "%s %s\n", MateEmoji, Accent.Sprint(title))
	_, _ = fmt.Fprintf(w, "%s\n\n", separator)
}

func PrintKeyValue(w io.Writer, key, value string) {
	keyColored := Dim.Sprint(key + ":")
	valueColored := color.New(color.FgWhite, color.Bold).Sprint(value)
	_, _ = fmt.Fprintf(w, "   %s %s\n", keyColored, valueColored)
}

// PrintProgress renders a service progress event as a single console line.
func PrintProgress(w io.Writer, e models.ProgressEvent) {
	switch e.Type {
	case models.ProgressCommentPublished:
		PrintSuccess(w, e.Message)
	case models.ProgressJobSelected, models.ProgressLogTrimmed:
		_, _ = fmt.Fprintf(w, "%s %s\n", SearchEmoji, e.Message)
	case models.ProgressAnalysisReady:
		// the analysis itself is printed by PrintAnalysis
	default:
		PrintInfo(w, e.Message)
	}
}

// PrintAnalysis writes the analysis verbatim under a banner. Inside Actions the
// block is wrapped in a collapsible log group.
func PrintAnalysis(w io.Writer, t *i18n.Translations, result *models.TriageResult, grouped bool) {
	if result == nil || result.Job == nil {
		return
	}

	title := t.GetMessage("analysis_banner", 0, nil)
	if grouped {
		_, _ = fmt.Fprintf(w, "::group::%s\n", title)
	} else {
		PrintSectionBanner(w, title)
	}

	PrintKeyValue(w, "Job", result.Job.Name)
	PrintKeyValue(w, "Step", result.StepName)
	_, _ = fmt.Fprintln(w)

	if result.BackendFailed {
		PrintWarning(w, result.Analysis)
	} else {
		_, _ = fmt.Fprintln(w, result.Analysis)
	}

	if grouped {
		_, _ = fmt.Fprintln(w, "::endgroup::")
	}

	PrintTokenUsage(w, result.Usage, t)
}

// HandleAppError handles an application error and displays it in a friendly way.
// If translations is nil, it will use English defaults.
func HandleAppError(w io.Writer, err error, translations ...*i18n.Translations) {
	if err == nil {
		return
	}

	var t *i18n.Translations
	if len(translations) > 0 && translations[0] != nil {
		t = translations[0]
	}

	var appErr *domainErrors.AppError
	if errors.As(err, &appErr) {
		errorColor := color.New(color.FgRed, color.Bold)
		suggestionColor := color.New(color.FgCyan)
		dimColor := color.New(color.FgHiBlack)

		_, _ = fmt.Fprintln(w)
		_, _ = errorColor.Fprintf(w, "❌ %s: %s\n", appErr.Type, appErr.Message)

		if appErr.Err != nil {
			_, _ = dimColor.Fprintf(w, "   Details: %v\n", appErr.Err)
		}
		for _, key := range []string{"input", "endpoint", "status"} {
			if v, ok := appErr.Context[key]; ok {
				_, _ = dimColor.Fprintf(w, "   %s: %v\n", key, v)
			}
		}

		if appErr.Suggestion != "" {
			_, _ = fmt.Fprintln(w)
			tryPrefix := "💡 Suggestion: "
			if t != nil {
				tryPrefix = "💡 " + t.GetMessage("suggestion_label", 0, nil) + ": "
			}
			_, _ = suggestionColor.Fprint(w, tryPrefix)
			lines := strings.Split(appErr.Suggestion, "\n")
			for i, line := range lines {
				if i == 0 {
					_, _ = fmt.Fprintln(w, line)
				} else {
					_, _ = fmt.Fprintf(w, "       %s\n", line)
				}
			}
		}
		_, _ = fmt.Fprintln(w)

		return
	}

	PrintError(w, err.Error())
}
