package providers

import (
	"context"

	"github.com/thomas-vilte/matetriage/internal/config"
	"github.com/thomas-vilte/matetriage/internal/event"
	"github.com/thomas-vilte/matetriage/internal/i18n"
	"github.com/thomas-vilte/matetriage/internal/models"
	"github.com/thomas-vilte/matetriage/internal/services"
)

// NewTriageService wires the GitHub client, the event payload and, when
// withAnalyzer is set, the configured analysis backend.
func NewTriageService(ctx context.Context, cfg *config.Config, t *i18n.Translations, withAnalyzer bool, progress func(models.ProgressEvent)) (*services.TriageService, error) {
	vcsClient, err := NewVCSClient(cfg)
	if err != nil {
		return nil, err
	}

	payload, err := event.Load(cfg.GitHub.EventPath)
	if err != nil {
		return nil, err
	}

	opts := []services.TriageOption{
		services.WithTriageVCSClient(vcsClient),
		services.WithTriageConfig(cfg),
		services.WithTriageTranslations(t),
		services.WithTriageEvent(payload),
		services.WithTriageProgress(progress),
	}

	if withAnalyzer {
		analyzer, err := NewAnalyzer(ctx, cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, services.WithTriageAnalyzer(analyzer))
	}

	return services.NewTriageService(opts...), nil
}
