package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/thomas-vilte/matetriage/internal/config"
	"github.com/thomas-vilte/matetriage/internal/i18n"
	"github.com/thomas-vilte/matetriage/internal/ui"
	"github.com/urfave/cli/v3"
)

type ShowCommand struct {
	out io.Writer
}

func NewShowCommand(out io.Writer) *ShowCommand {
	if out == nil {
		out = os.Stdout
	}
	return &ShowCommand{out: out}
}

func (c *ShowCommand) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: t.GetMessage("config_show_usage", 0, nil),
		Action: func(ctx context.Context, command *cli.Command) error {
			c.print(t, cfg)

			if err := cfg.Validate(); err != nil {
				ui.PrintWarning(c.out, t.GetMessage("config_invalid", 0, nil))
				ui.HandleAppError(c.out, err, t)
				return nil
			}
			ui.PrintSuccess(c.out, t.GetMessage("config_valid", 0, nil))
			return nil
		},
	}
}

func (c *ShowCommand) print(t *i18n.Translations, cfg *config.Config) {
	ui.PrintSectionBanner(c.out, t.GetMessage("current_config", 0, nil))

	ui.PrintKeyValue(c.out, "provider", string(cfg.Provider))
	ui.PrintKeyValue(c.out, "model", orDash(cfg.Model))
	switch cfg.Provider {
	case config.ProviderGemini:
		ui.PrintKeyValue(c.out, "gemini_api_key", secret(t, cfg.GeminiAPIKey))
	default:
		ui.PrintKeyValue(c.out, "openrouter_api_key", secret(t, cfg.OpenRouterAPIKey))
		ui.PrintKeyValue(c.out, "openrouter_base_url", cfg.OpenRouterBaseURL)
	}
	ui.PrintKeyValue(c.out, "max_log_lines", strconv.Itoa(cfg.MaxLogLines))
	ui.PrintKeyValue(c.out, "status_delay", cfg.StatusDelay.String())
	ui.PrintKeyValue(c.out, "language", cfg.Language)
	ui.PrintKeyValue(c.out, "comment", strconv.FormatBool(cfg.Comment))
	ui.PrintKeyValue(c.out, "prompt_template", fmt.Sprintf("%d chars", len(cfg.PromptTemplate)))

	_, _ = fmt.Fprintln(c.out)
	ui.PrintKeyValue(c.out, "repository", orDash(cfg.GitHub.Repository))
	runID := cfg.GitHub.RunID
	if cfg.RunID > 0 {
		runID = cfg.RunID
	}
	ui.PrintKeyValue(c.out, "run_id", strconv.FormatInt(runID, 10))
	ui.PrintKeyValue(c.out, "github_token", secret(t, cfg.GitHubToken()))
	_, _ = fmt.Fprintln(c.out)

	if models := config.SuggestedModels(cfg.Provider); len(models) > 0 && cfg.Model == "" {
		ui.PrintInfo(c.out, t.GetMessage("config_suggested_models", 0, map[string]interface{}{
			"Models": fmt.Sprint(models),
		}))
	}
}

func secret(t *i18n.Translations, v string) string {
	if v == "" {
		return t.GetMessage("config_not_set", 0, nil)
	}
	return t.GetMessage("config_set", 0, nil)
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
