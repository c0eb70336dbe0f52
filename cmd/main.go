package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/thomas-vilte/matetriage/internal/commands/analyze"
	configcmd "github.com/thomas-vilte/matetriage/internal/commands/config"
	"github.com/thomas-vilte/matetriage/internal/commands/inspect"
	"github.com/thomas-vilte/matetriage/internal/commands/registry"
	cfg "github.com/thomas-vilte/matetriage/internal/config"
	"github.com/thomas-vilte/matetriage/internal/i18n"
	"github.com/thomas-vilte/matetriage/internal/logger"
	"github.com/thomas-vilte/matetriage/internal/models"
	"github.com/thomas-vilte/matetriage/internal/providers"
	"github.com/thomas-vilte/matetriage/internal/ui"
	"github.com/thomas-vilte/matetriage/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	environ := environMap(os.Environ())

	cfgApp, err := cfg.Load(cfg.LoadOptions{Environ: environ})
	if err != nil {
		ui.HandleAppError(os.Stderr, err)
		os.Exit(1)
	}

	translations, err := i18n.NewTranslations(cfgApp.Language)
	if err != nil {
		log.Fatalf("Error loading translations: %v", err)
	}

	app, err := initializeApp(cfgApp, translations, environ)
	if err != nil {
		log.Fatalf("Error starting the cli: %v", err)
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		ui.HandleAppError(os.Stderr, err, translations)
		os.Exit(1)
	}
}

func initializeApp(cfgApp *cfg.Config, translations *i18n.Translations, environ map[string]string) (*cli.Command, error) {
	triageProvider := func(ctx context.Context, c *cfg.Config, progress func(models.ProgressEvent)) (analyze.TriageRunner, error) {
		svc, err := providers.NewTriageService(ctx, c, translations, true, progress)
		if err != nil {
			return nil, err
		}
		return svc, nil
	}
	inspectProvider := func(ctx context.Context, c *cfg.Config, progress func(models.ProgressEvent)) (inspect.Inspector, error) {
		svc, err := providers.NewTriageService(ctx, c, translations, false, progress)
		if err != nil {
			return nil, err
		}
		return svc, nil
	}

	analyzeCommand := analyze.NewAnalyzeCommand(triageProvider)

	registerCommand := registry.NewRegistry(cfgApp, translations)
	if err := registerCommand.Register("analyze", analyzeCommand); err != nil {
		return nil, err
	}
	if err := registerCommand.Register("inspect", inspect.NewInspectCommand(inspectProvider, os.Stdout)); err != nil {
		return nil, err
	}

	if err := registerCommand.Register("config", configcmd.NewShowCommand(os.Stdout)); err != nil {
		return nil, err
	}

	commands := registerCommand.CreateCommands()

	// The bare binary is what the action entrypoint runs, so it behaves like analyze.
	defaultCommand := analyzeCommand.CreateCommand(translations, cfgApp)
	for _, f := range defaultCommand.Flags {
		switch fl := f.(type) {
		case *cli.BoolFlag:
			fl.Local = true
		case *cli.Int64Flag:
			fl.Local = true
		}
	}

	globalFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   translations.GetMessage("flag_config", 0, nil),
			Sources: cli.EnvVars("INPUT_CONFIG_FILE"),
		},
		&cli.StringFlag{
			Name:    "env-file",
			Usage:   translations.GetMessage("flag_env_file", 0, nil),
			Sources: cli.EnvVars("INPUT_ENV_FILE"),
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: translations.GetMessage("flag_debug", 0, nil),
		},
	}

	return &cli.Command{
		Name:        "matetriage",
		Usage:       translations.GetMessage("app_usage", 0, nil),
		Version:     version.FullVersion(),
		Description: translations.GetMessage("app_description", 0, nil),
		Flags:       append(globalFlags, defaultCommand.Flags...),
		Commands:    commands,
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.IsSet("config") || cmd.IsSet("env-file") {
				loaded, err := cfg.Load(cfg.LoadOptions{
					Environ:    environ,
					ConfigFile: cmd.String("config"),
					DotEnvFile: cmd.String("env-file"),
				})
				if err != nil {
					return ctx, err
				}
				*cfgApp = *loaded
				if err := translations.SetLanguage(cfgApp.Language); err != nil {
					return ctx, err
				}
			}

			l := logger.Initialize(logger.Options{
				Debug:       cmd.Bool("debug") || cfgApp.GitHub.Debug,
				Annotations: cfgApp.GitHub.Actions,
			})
			l.Debug("configuration loaded",
				"version", version.FullVersion(),
				"provider", cfgApp.Provider,
				"language", cfgApp.Language,
				"actions", cfgApp.GitHub.Actions)

			return logger.WithLogger(ctx, l), nil
		},
		Action: defaultCommand.Action,
	}, nil
}

// environMap turns KEY=VALUE pairs into a map. Later duplicates win.
func environMap(pairs []string) map[string]string {
	vars := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return vars
}
