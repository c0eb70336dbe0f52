package providers

import (
	"github.com/thomas-vilte/matetriage/internal/config"
	domainErrors "github.com/thomas-vilte/matetriage/internal/errors"
	"github.com/thomas-vilte/matetriage/internal/vcs"
	"github.com/thomas-vilte/matetriage/internal/vcs/github"
)

// NewVCSClient creates the GitHub client for the repository in cfg.
func NewVCSClient(cfg *config.Config) (vcs.Client, error) {
	token := cfg.GitHubToken()
	if token == "" {
		return nil, domainErrors.ErrMissingInput.
			WithContext("input", "github_token").
			WithSuggestion("Pass github_token to the step or expose GITHUB_TOKEN")
	}
	client, err := github.NewGitHubClient(token, cfg.GitHub.APIURL)
	if err != nil {
		return nil, err
	}
	return client, nil
}
