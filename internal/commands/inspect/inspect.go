package inspect

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/thomas-vilte/matetriage/internal/commands/flags"
	cfg "github.com/thomas-vilte/matetriage/internal/config"
	"github.com/thomas-vilte/matetriage/internal/i18n"
	"github.com/thomas-vilte/matetriage/internal/logger"
	"github.com/thomas-vilte/matetriage/internal/models"
	"github.com/thomas-vilte/matetriage/internal/ui"
	"github.com/urfave/cli/v3"
)

type Inspector interface {
	Inspect(ctx context.Context) (*models.TriageResult, error)
}

type InspectorProvider func(ctx context.Context, cfg *cfg.Config, progress func(models.ProgressEvent)) (Inspector, error)

type InspectCommand struct {
	provider InspectorProvider
	out      io.Writer
}

func NewInspectCommand(provider InspectorProvider, out io.Writer) *InspectCommand {
	if out == nil {
		out = os.Stdout
	}
	return &InspectCommand{provider: provider, out: out}
}

func (c *InspectCommand) CreateCommand(t *i18n.Translations, config *cfg.Config) *cli.Command {
	commandFlags := append(flags.Run(t), &cli.BoolFlag{
		Name:    "show-prompt",
		Aliases: []string{"p"},
		Usage:   t.GetMessage("flag_show_prompt", 0, nil),
	})

	return &cli.Command{
		Name:    "inspect",
		Aliases: []string{"i"},
		Usage:   t.GetMessage("inspect_command_description", 0, nil),
		Flags:   commandFlags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			flags.Apply(cmd, config)

			if err := config.ValidateInspect(); err != nil {
				return err
			}

			logger.Debug(ctx, "executing inspect command", "repository", config.GitHub.Repository)

			inspector, err := c.provider(ctx, config, func(e models.ProgressEvent) {
				ui.PrintProgress(c.out, e)
			})
			if err != nil {
				return fmt.Errorf("%s: %w", t.GetMessage("error_triage_setup", 0, nil), err)
			}

			result, err := inspector.Inspect(ctx)
			if err != nil {
				return err
			}
			if result.Skipped {
				return nil
			}

			ui.PrintSectionBanner(c.out, t.GetMessage("inspect_title", 0, nil))
			ui.PrintKeyValue(c.out, "Run", strconv.FormatInt(result.Run.ID, 10))
			ui.PrintKeyValue(c.out, "Job", result.Job.Name)
			ui.PrintKeyValue(c.out, "Step", result.StepName)
			ui.PrintKeyValue(c.out, "Log lines", strconv.Itoa(result.TotalLogLines))
			_, _ = fmt.Fprintln(c.out)
			ui.PrintInfo(c.out, t.GetMessage("inspect_prompt_length", 0, map[string]interface{}{
				"Length": len(result.Prompt),
			}))

			if cmd.Bool("show-prompt") {
				_, _ = fmt.Fprintln(c.out)
				_, _ = fmt.Fprintln(c.out, result.Prompt)
			}

			return nil
		},
	}
}
