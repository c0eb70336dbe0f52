// Package flags holds the command-line flags shared by the triage commands.
package flags

import (
	cfg "github.com/thomas-vilte/matetriage/internal/config"
	"github.com/thomas-vilte/matetriage/internal/i18n"
	"github.com/urfave/cli/v3"
)

const (
	RunID     = "run-id"
	NoDelay   = "no-delay"
	NoComment = "no-comment"
)

// Run returns the flags that pick and time the run to look at.
func Run(t *i18n.Translations) []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:    RunID,
			Aliases: []string{"r"},
			Usage:   t.GetMessage("flag_run_id", 0, nil),
		},
		&cli.BoolFlag{
			Name:  NoDelay,
			Usage: t.GetMessage("flag_no_delay", 0, nil),
		},
	}
}

// Apply overrides config values with the ones given on the command line.
func Apply(cmd *cli.Command, config *cfg.Config) {
	if cmd.IsSet(RunID) {
		config.RunID = cmd.Int64(RunID)
	}
	if cmd.Bool(NoDelay) {
		config.StatusDelay = 0
	}
}
