package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/thomas-vilte/matetriage/internal/ai"
	domainErrors "github.com/thomas-vilte/matetriage/internal/errors"
)

type (
	// Config is built once at startup; nothing below the commands reads the
	// process environment directly.
	Config struct {
		OpenRouterAPIKey  string        `env:"INPUT_OPENROUTER_API_KEY" toml:"openrouter_api_key"`
		OpenRouterBaseURL string        `env:"INPUT_OPENROUTER_BASE_URL" toml:"openrouter_base_url"`
		GeminiAPIKey      string        `env:"INPUT_GEMINI_API_KEY" toml:"gemini_api_key"`
		Provider          Provider      `env:"INPUT_PROVIDER" toml:"provider"`
		Model             string        `env:"INPUT_MODEL" toml:"model"`
		PromptTemplate    string        `env:"INPUT_PROMPT_TEMPLATE" toml:"prompt_template"`
		MaxLogLines       int           `env:"INPUT_MAX_LOG_LINES" toml:"max_log_lines"`
		Language          string        `env:"INPUT_LANGUAGE" toml:"language"`
		StatusDelay       time.Duration `env:"INPUT_STATUS_DELAY" toml:"status_delay"`
		RunID             int64         `env:"INPUT_RUN_ID" toml:"run_id"`
		Comment           bool          `env:"INPUT_COMMENT" toml:"comment"`

		GitHub GitHubContext `toml:"-"`
	}

	// GitHubContext is the ambient context the Actions runner provides.
	GitHubContext struct {
		Token           string `env:"INPUT_GITHUB_TOKEN"`
		FallbackToken   string `env:"GITHUB_TOKEN"`
		Repository      string `env:"GITHUB_REPOSITORY"`
		RunID           int64  `env:"GITHUB_RUN_ID"`
		Workflow        string `env:"GITHUB_WORKFLOW"`
		EventPath       string `env:"GITHUB_EVENT_PATH"`
		Ref             string `env:"GITHUB_REF"`
		APIURL          string `env:"GITHUB_API_URL"`
		ServerURL       string `env:"GITHUB_SERVER_URL"`
		OutputPath      string `env:"GITHUB_OUTPUT"`
		StepSummaryPath string `env:"GITHUB_STEP_SUMMARY"`
		Actions         bool   `env:"GITHUB_ACTIONS"`
		Debug           bool   `env:"RUNNER_DEBUG"`

		Owner string
		Repo  string
	}

	LoadOptions struct {
		// Environ is the variable set to decode, usually the process environment.
		Environ map[string]string
		// ConfigFile is an optional TOML file applied under the environment.
		ConfigFile string
		// DotEnvFile is an optional .env file; Environ wins on conflicts.
		DotEnvFile string
	}
)

const (
	defaultMaxLogLines = 500
	defaultStatusDelay = 10 * time.Second
	defaultLang        = LangEN
	defaultProvider    = ProviderOpenRouter
)

func Defaults() *Config {
	return &Config{
		Provider:          defaultProvider,
		MaxLogLines:       defaultMaxLogLines,
		Language:          defaultLang,
		StatusDelay:       defaultStatusDelay,
		OpenRouterBaseURL: "https://openrouter.ai/api/v1",
		Comment:           true,
	}
}

// Load layers defaults, the TOML file and the environment, in that order.
// It does not validate; call Validate once the command knows what it needs.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Defaults()

	if opts.ConfigFile != "" {
		if _, err := toml.DecodeFile(opts.ConfigFile, cfg); err != nil {
			return nil, domainErrors.ErrConfigFile.
				WithError(err).
				WithContext("path", opts.ConfigFile)
		}
	}

	vars := make(map[string]string, len(opts.Environ))
	if opts.DotEnvFile != "" {
		fileVars, err := godotenv.Read(opts.DotEnvFile)
		if err != nil {
			return nil, domainErrors.ErrConfigFile.
				WithError(err).
				WithContext("path", opts.DotEnvFile)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}
	for k, v := range opts.Environ {
		vars[k] = v
	}

	if err := env.ParseWithOptions(cfg, env.Options{
		Environment: vars,
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(time.Duration(0)): parseDelay,
		},
	}); err != nil {
		return nil, domainErrors.ErrInvalidInput.WithError(err)
	}

	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.Provider = Provider(strings.ToLower(strings.TrimSpace(string(c.Provider))))
	if c.Provider == "" {
		c.Provider = defaultProvider
	}
	c.Model = strings.TrimSpace(c.Model)
	c.Language = GetLocaleConfig(strings.ToLower(strings.TrimSpace(c.Language)))

	if owner, repo, ok := strings.Cut(c.GitHub.Repository, "/"); ok {
		c.GitHub.Owner = owner
		c.GitHub.Repo = repo
	}
}

// Validate checks the inputs required before any network call is made.
func (c *Config) Validate() error {
	if !IsSupportedProvider(c.Provider) {
		return domainErrors.ErrUnknownProvider.WithContext("provider", c.Provider)
	}

	switch c.Provider {
	case ProviderOpenRouter:
		if c.OpenRouterAPIKey == "" {
			return missing("openrouter_api_key")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return missing("gemini_api_key")
		}
	}

	if c.Model == "" {
		return missing("model")
	}

	return c.ValidateInspect()
}

// ValidateInspect checks what a read-only preview needs: no backend key or
// model, only the prompt shape and the run coordinates.
func (c *Config) ValidateInspect() error {
	if c.PromptTemplate == "" {
		return missing("prompt_template")
	}
	if err := ai.ValidateTemplate(c.PromptTemplate); err != nil {
		return err
	}
	if c.MaxLogLines <= 0 {
		return domainErrors.ErrInvalidInput.
			WithContext("input", "max_log_lines").
			WithContext("value", c.MaxLogLines).
			WithSuggestion("max_log_lines must be a positive integer")
	}
	if c.StatusDelay < 0 {
		return domainErrors.ErrInvalidInput.
			WithContext("input", "status_delay").
			WithContext("value", c.StatusDelay.String())
	}

	return c.ValidateRepository()
}

func (c *Config) ValidateRepository() error {
	if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
		return domainErrors.ErrMissingRepository.WithContext("GITHUB_REPOSITORY", c.GitHub.Repository)
	}
	return nil
}

// GitHubToken prefers the explicit action input over the runner's token.
func (c *Config) GitHubToken() string {
	if c.GitHub.Token != "" {
		return c.GitHub.Token
	}
	return c.GitHub.FallbackToken
}

func missing(input string) error {
	return domainErrors.ErrMissingInput.
		WithContext("input", input).
		WithContext("env", "INPUT_"+strings.ToUpper(input))
}

// parseDelay accepts Go durations ("1m30s") and bare seconds ("10").
func parseDelay(v string) (interface{}, error) {
	v = strings.TrimSpace(v)
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return nil, fmt.Errorf("invalid duration %q: %w", v, err)
	}
	return d, nil
}
