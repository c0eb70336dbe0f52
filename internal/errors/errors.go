package errors

import (
	"errors"
	"fmt"
)

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeTransport     ErrorType = "TRANSPORT"
	TypeBackend       ErrorType = "BACKEND"
	TypePublish       ErrorType = "PUBLISH"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if e.Context != nil {
		if status, ok := e.Context["status"].(int); ok && status != 0 {
			msg += fmt.Sprintf(" [status %d]", status)
		}
		if endpoint, ok := e.Context["endpoint"].(string); ok && endpoint != "" {
			msg += fmt.Sprintf(" [%s]", endpoint)
		}
		if body, ok := e.Context["body"].(string); ok && body != "" {
			msg += fmt.Sprintf(" - %s", body)
		}
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// Is reports whether target is an AppError of the same type and message, so the
// package-level sentinels keep working with errors.Is after WithContext/WithError.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// IsType reports whether err, or any error it wraps, is an AppError of type t.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// NewTransportError builds the error returned when the source-control API answers
// with a non-success status.
func NewTransportError(endpoint string, status int, body string, err error) *AppError {
	return ErrTransport.
		WithError(err).
		WithContext("endpoint", endpoint).
		WithContext("status", status).
		WithContext("body", body)
}

// NewBackendError builds the error returned when the completion backend fails.
func NewBackendError(status int, body string, err error) *AppError {
	return ErrBackend.
		WithError(err).
		WithContext("status", status).
		WithContext("body", body)
}

// Configuration errors
var (
	ErrMissingInput = NewAppError(TypeConfiguration, "required input is missing", nil).
			WithSuggestion("Set it in the workflow step `with:` block")

	ErrInvalidInput = NewAppError(TypeConfiguration, "input value is invalid", nil)

	ErrTemplateMissingLog = NewAppError(TypeConfiguration, "prompt_template must contain {{LOG}}", nil).
				WithSuggestion("Add the {{LOG}} placeholder where the job log should be inserted")

	ErrMissingRepository = NewAppError(TypeConfiguration, "repository identity is missing", nil).
				WithSuggestion("GITHUB_REPOSITORY must be set to owner/repo")

	ErrMissingRunID = NewAppError(TypeConfiguration, "workflow run id is missing", nil).
			WithSuggestion("GITHUB_RUN_ID must be set, or pass the run_id input")

	ErrConfigFile = NewAppError(TypeConfiguration, "failed to read configuration file", nil)

	ErrEventPayload = NewAppError(TypeConfiguration, "failed to read event payload", nil)
)

// Source-control API errors
var (
	ErrTransport = NewAppError(TypeTransport, "GitHub API request failed", nil)

	ErrGitHubTokenInvalid = NewAppError(TypeTransport, "GitHub token is invalid or expired", nil).
				WithSuggestion("Pass the workflow token: GITHUB_TOKEN: ${{ secrets.GITHUB_TOKEN }}")

	ErrGitHubInsufficientPerms = NewAppError(TypeTransport, "GitHub token has insufficient permissions", nil).
					WithSuggestion("Grant `actions: read` and `pull-requests: write` in the workflow permissions block")

	ErrGitHubRateLimit = NewAppError(TypeTransport, "GitHub API rate limit exceeded", nil).
				WithSuggestion("Wait a few minutes and re-run the workflow")

	ErrRunNotFound = NewAppError(TypeTransport, "workflow run not found", nil).
			WithSuggestion("Check the run id and that the token can read this repository")
)

// Completion backend errors
var (
	ErrBackend = NewAppError(TypeBackend, "analysis backend request failed", nil)

	ErrEmptyCompletion = NewAppError(TypeBackend, "analysis backend returned no content", nil)

	ErrUnknownProvider = NewAppError(TypeConfiguration, "analysis provider not supported", nil).
				WithSuggestion("Use provider: openrouter or provider: gemini")
)

// Publication errors
var (
	ErrPublishComment = NewAppError(TypePublish, "failed to publish pull request comment", nil).
				WithSuggestion("Grant `pull-requests: write` (or `issues: write`) to the workflow token")

	ErrWriteOutputs = NewAppError(TypePublish, "failed to write step outputs", nil)
)
