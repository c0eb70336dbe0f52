package analyze

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/thomas-vilte/matetriage/internal/commands/flags"
	cfg "github.com/thomas-vilte/matetriage/internal/config"
	"github.com/thomas-vilte/matetriage/internal/i18n"
	"github.com/thomas-vilte/matetriage/internal/logger"
	"github.com/thomas-vilte/matetriage/internal/models"
	"github.com/thomas-vilte/matetriage/internal/ui"
	"github.com/urfave/cli/v3"
)

// TriageRunner is the slice of the triage service this command drives.
type TriageRunner interface {
	Run(ctx context.Context) (*models.TriageResult, error)
}

// TriageProvider builds a TriageRunner once flags have been applied to the config.
type TriageProvider func(ctx context.Context, cfg *cfg.Config, progress func(models.ProgressEvent)) (TriageRunner, error)

type AnalyzeCommand struct {
	provider TriageProvider
	out      io.Writer
}

type Option func(*AnalyzeCommand)

func WithWriter(w io.Writer) Option {
	return func(c *AnalyzeCommand) {
		c.out = w
	}
}

func NewAnalyzeCommand(provider TriageProvider, opts ...Option) *AnalyzeCommand {
	c := &AnalyzeCommand{
		provider: provider,
		out:      os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *AnalyzeCommand) CreateCommand(t *i18n.Translations, config *cfg.Config) *cli.Command {
	commandFlags := append(flags.Run(t), &cli.BoolFlag{
		Name:  flags.NoComment,
		Usage: t.GetMessage("flag_no_comment", 0, nil),
	})

	return &cli.Command{
		Name:    "analyze",
		Aliases: []string{"a"},
		Usage:   t.GetMessage("analyze_command_description", 0, nil),
		Flags:   commandFlags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			start := time.Now()

			flags.Apply(cmd, config)
			if cmd.Bool(flags.NoComment) {
				config.Comment = false
			}

			if err := config.Validate(); err != nil {
				return err
			}

			log.Info("executing analyze command",
				"provider", config.Provider,
				"model", config.Model,
				"repository", config.GitHub.Repository,
				"comment", config.Comment)

			runner, err := c.provider(ctx, config, func(e models.ProgressEvent) {
				ui.PrintProgress(c.out, e)
			})
			if err != nil {
				log.Error("failed to create triage service",
					"error", err,
					"duration_ms", time.Since(start).Milliseconds())
				return fmt.Errorf("%s: %w", t.GetMessage("error_triage_setup", 0, nil), err)
			}

			result, err := runner.Run(ctx)
			if err != nil {
				log.Error("triage failed",
					"error", err,
					"duration_ms", time.Since(start).Milliseconds())
				return err
			}

			if result.Skipped {
				log.Info("run skipped",
					"reason", result.SkipReason,
					"duration_ms", time.Since(start).Milliseconds())
				return nil
			}

			ui.PrintAnalysis(c.out, t, result, config.GitHub.Actions)

			log.Info("analyze completed",
				"job", result.Job.Name,
				"step", result.StepName,
				"backend_failed", result.BackendFailed,
				"pr_number", result.PRNumber,
				"duration_ms", time.Since(start).Milliseconds())

			return nil
		},
	}
}
