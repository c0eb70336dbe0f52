package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/matetriage/internal/config"
	domainErrors "github.com/thomas-vilte/matetriage/internal/errors"
	"github.com/thomas-vilte/matetriage/internal/event"
	"github.com/thomas-vilte/matetriage/internal/i18n"
	"github.com/thomas-vilte/matetriage/internal/logger"
	"github.com/thomas-vilte/matetriage/internal/models"
	"github.com/thomas-vilte/matetriage/internal/triage"
)

const (
	testOwner = "octo"
	testRepo  = "app"
	testRunID = int64(4242)
)

func newTestConfig() *config.Config {
	cfg := config.Defaults()
	cfg.OpenRouterAPIKey = "sk"
	cfg.Model = "m"
	cfg.PromptTemplate = "Workflow {{WORKFLOW_NAME}} job {{JOB_NAME}} step {{STEP_NAME}}\n{{LOG}}"
	cfg.StatusDelay = 0
	cfg.GitHub.Repository = testOwner + "/" + testRepo
	cfg.GitHub.Owner = testOwner
	cfg.GitHub.Repo = testRepo
	cfg.GitHub.RunID = testRunID
	cfg.GitHub.Workflow = "CI"
	return cfg
}

func newTestTranslations(t *testing.T) *i18n.Translations {
	t.Helper()
	trans, err := i18n.NewTranslations("en")
	require.NoError(t, err)
	return trans
}

func prPayload(t *testing.T, number int) *event.Payload {
	t.Helper()
	p, err := event.Parse([]byte(`{"pull_request": {"number": ` + strconv.Itoa(number) + `}}`))
	require.NoError(t, err)
	return p
}

func tenLineLog() string {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "line " + strconv.Itoa(i+1)
	}
	return strings.Join(lines, "\n") + "\n"
}

func failedBuildJob() models.Job {
	done := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return models.Job{
		ID:          55,
		Name:        "build",
		Conclusion:  models.ConclusionFailure,
		CompletedAt: &done,
		Steps: []models.Step{
			{Number: 1, Name: "Checkout", Conclusion: models.ConclusionSuccess},
			{Number: 2, Name: "Build", Conclusion: models.ConclusionFailure},
		},
	}
}

func TestTriageService_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("analyzes the failed job and creates a comment", func(t *testing.T) {
		vcsClient := new(MockVCSClient)
		analyzer := new(MockAnalyzer)
		trans := newTestTranslations(t)

		run := &models.Run{ID: testRunID, Name: "CI", Conclusion: models.ConclusionFailure}
		vcsClient.On("GetRun", mock.Anything, testOwner, testRepo, testRunID).Return(run, nil)
		vcsClient.On("ListJobs", mock.Anything, testOwner, testRepo, testRunID).Return([]models.Job{failedBuildJob()}, nil)
		vcsClient.On("GetJobLog", mock.Anything, testOwner, testRepo, int64(55)).Return(tenLineLog(), nil)
		vcsClient.On("FindMarkerComment", mock.Anything, testOwner, testRepo, 7, CommentMarker).Return(nil, nil)
		vcsClient.On("UpsertComment", mock.Anything, testOwner, testRepo, 7, mock.MatchedBy(func(body string) bool {
			return strings.HasPrefix(body, CommentMarker+"\n") && strings.Contains(body, "Missing dependency")
		}), int64(0)).Return(&models.Comment{ID: 900, HTMLURL: "https://github.com/octo/app/pull/7#issuecomment-900"}, nil).Once()

		analyzer.On("Complete", mock.Anything, mock.MatchedBy(func(prompt string) bool {
			return strings.HasPrefix(prompt, "Workflow CI job build step Build\nline 1\n") &&
				strings.HasSuffix(prompt, "line 10")
		})).Return(models.Analysis{
			Text:     "Missing dependency",
			Provider: "openrouter",
			Usage:    &models.TokenUsage{InputTokens: 10, OutputTokens: 5, Model: "m"},
		}, nil)
		analyzer.On("GetProviderName").Return("openrouter").Maybe()

		var events []models.ProgressEvent
		svc := NewTriageService(
			WithTriageVCSClient(vcsClient),
			WithTriageAnalyzer(analyzer),
			WithTriageConfig(newTestConfig()),
			WithTriageTranslations(trans),
			WithTriageEvent(prPayload(t, 7)),
			WithTriageProgress(func(e models.ProgressEvent) { events = append(events, e) }),
		)

		result, err := svc.Run(ctx)

		require.NoError(t, err)
		assert.False(t, result.Skipped)
		assert.Equal(t, int64(55), result.Job.ID)
		assert.Equal(t, "Build", result.StepName)
		assert.Equal(t, 10, result.TotalLogLines)
		assert.Equal(t, "Missing dependency", result.Analysis)
		assert.False(t, result.BackendFailed)
		assert.Equal(t, 7, result.PRNumber)
		require.NotNil(t, result.Comment)
		assert.Equal(t, int64(900), result.Comment.ID)
		assert.NotEmpty(t, events)
		vcsClient.AssertExpectations(t)
		analyzer.AssertExpectations(t)
	})

	t.Run("exits after the status check when the run did not fail", func(t *testing.T) {
		vcsClient := new(MockVCSClient)
		analyzer := new(MockAnalyzer)

		vcsClient.On("GetRun", mock.Anything, testOwner, testRepo, testRunID).
			Return(&models.Run{ID: testRunID, Conclusion: models.ConclusionSuccess}, nil)

		svc := NewTriageService(
			WithTriageVCSClient(vcsClient),
			WithTriageAnalyzer(analyzer),
			WithTriageConfig(newTestConfig()),
			WithTriageTranslations(newTestTranslations(t)),
		)

		result, err := svc.Run(ctx)

		require.NoError(t, err)
		assert.True(t, result.Skipped)
		assert.Contains(t, result.SkipReason, "success")
		vcsClient.AssertNotCalled(t, "ListJobs", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		analyzer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("treats an unknown run conclusion as not failed", func(t *testing.T) {
		vcsClient := new(MockVCSClient)

		vcsClient.On("GetRun", mock.Anything, testOwner, testRepo, testRunID).
			Return(&models.Run{ID: testRunID, Status: "in_progress"}, nil)

		svc := NewTriageService(
			WithTriageVCSClient(vcsClient),
			WithTriageAnalyzer(new(MockAnalyzer)),
			WithTriageConfig(newTestConfig()),
			WithTriageTranslations(newTestTranslations(t)),
		)

		result, err := svc.Run(ctx)

		require.NoError(t, err)
		assert.True(t, result.Skipped)
		vcsClient.AssertNotCalled(t, "ListJobs", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("does nothing further when no job is a failure candidate", func(t *testing.T) {
		vcsClient := new(MockVCSClient)
		analyzer := new(MockAnalyzer)

		vcsClient.On("GetRun", mock.Anything, testOwner, testRepo, testRunID).
			Return(&models.Run{ID: testRunID, Conclusion: models.ConclusionCancelled}, nil)
		vcsClient.On("ListJobs", mock.Anything, testOwner, testRepo, testRunID).
			Return([]models.Job{
				{ID: 1, Conclusion: models.ConclusionSuccess},
				{ID: 2, Status: "in_progress"},
			}, nil)

		svc := NewTriageService(
			WithTriageVCSClient(vcsClient),
			WithTriageAnalyzer(analyzer),
			WithTriageConfig(newTestConfig()),
			WithTriageTranslations(newTestTranslations(t)),
			WithTriageEvent(prPayload(t, 7)),
		)

		result, err := svc.Run(ctx)

		require.NoError(t, err)
		assert.True(t, result.Skipped)
		assert.Nil(t, result.Job)
		vcsClient.AssertNotCalled(t, "GetJobLog", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		vcsClient.AssertNotCalled(t, "FindMarkerComment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		vcsClient.AssertNotCalled(t, "UpsertComment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		analyzer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("publishes a diagnostic when the backend fails", func(t *testing.T) {
		vcsClient := new(MockVCSClient)
		analyzer := new(MockAnalyzer)
		fault := domainErrors.ErrBackend.WithError(errors.New("dial tcp: connection refused"))

		vcsClient.On("GetRun", mock.Anything, testOwner, testRepo, testRunID).
			Return(&models.Run{ID: testRunID, Name: "CI", Conclusion: models.ConclusionFailure}, nil)
		vcsClient.On("ListJobs", mock.Anything, testOwner, testRepo, testRunID).Return([]models.Job{failedBuildJob()}, nil)
		vcsClient.On("GetJobLog", mock.Anything, testOwner, testRepo, int64(55)).Return("boom\n", nil)
		vcsClient.On("FindMarkerComment", mock.Anything, testOwner, testRepo, 7, CommentMarker).Return(nil, nil)
		vcsClient.On("UpsertComment", mock.Anything, testOwner, testRepo, 7, mock.MatchedBy(func(body string) bool {
			return strings.Contains(body, "connection refused")
		}), int64(0)).Return(&models.Comment{ID: 1}, nil).Once()

		analyzer.On("Complete", mock.Anything, mock.Anything).Return(models.Analysis{}, fault)
		analyzer.On("GetProviderName").Return("openrouter")

		svc := NewTriageService(
			WithTriageVCSClient(vcsClient),
			WithTriageAnalyzer(analyzer),
			WithTriageConfig(newTestConfig()),
			WithTriageTranslations(newTestTranslations(t)),
			WithTriageEvent(prPayload(t, 7)),
		)

		result, err := svc.Run(ctx)

		require.NoError(t, err)
		assert.True(t, result.BackendFailed)
		assert.Contains(t, result.Analysis, "connection refused")
		assert.Contains(t, result.Analysis, "The analysis could not be generated")
		require.NotNil(t, result.Comment)
		vcsClient.AssertExpectations(t)
	})

	t.Run("updates the existing marker comment instead of creating one", func(t *testing.T) {
		vcsClient := new(MockVCSClient)
		analyzer := new(MockAnalyzer)

		vcsClient.On("GetRun", mock.Anything, testOwner, testRepo, testRunID).
			Return(&models.Run{ID: testRunID, Conclusion: models.ConclusionFailure}, nil)
		vcsClient.On("ListJobs", mock.Anything, testOwner, testRepo, testRunID).Return([]models.Job{failedBuildJob()}, nil)
		vcsClient.On("GetJobLog", mock.Anything, testOwner, testRepo, int64(55)).Return("x", nil)
		vcsClient.On("FindMarkerComment", mock.Anything, testOwner, testRepo, 7, CommentMarker).
			Return(&models.Comment{ID: 321, Body: CommentMarker + "\nold"}, nil)
		vcsClient.On("UpsertComment", mock.Anything, testOwner, testRepo, 7, mock.Anything, int64(321)).
			Return(&models.Comment{ID: 321}, nil).Once()

		analyzer.On("Complete", mock.Anything, mock.Anything).Return(models.Analysis{Text: "new"}, nil)

		svc := NewTriageService(
			WithTriageVCSClient(vcsClient),
			WithTriageAnalyzer(analyzer),
			WithTriageConfig(newTestConfig()),
			WithTriageTranslations(newTestTranslations(t)),
			WithTriageEvent(prPayload(t, 7)),
		)

		result, err := svc.Run(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(321), result.Comment.ID)
		vcsClient.AssertNumberOfCalls(t, "UpsertComment", 1)
		vcsClient.AssertExpectations(t)
	})

	t.Run("skips the comment without a pull request", func(t *testing.T) {
		vcsClient := new(MockVCSClient)
		analyzer := new(MockAnalyzer)

		vcsClient.On("GetRun", mock.Anything, testOwner, testRepo, testRunID).
			Return(&models.Run{ID: testRunID, Conclusion: models.ConclusionFailure}, nil)
		vcsClient.On("ListJobs", mock.Anything, testOwner, testRepo, testRunID).Return([]models.Job{failedBuildJob()}, nil)
		vcsClient.On("GetJobLog", mock.Anything, testOwner, testRepo, int64(55)).Return("x", nil)
		analyzer.On("Complete", mock.Anything, mock.Anything).Return(models.Analysis{Text: "fix it"}, nil)

		svc := NewTriageService(
			WithTriageVCSClient(vcsClient),
			WithTriageAnalyzer(analyzer),
			WithTriageConfig(newTestConfig()),
			WithTriageTranslations(newTestTranslations(t)),
		)

		result, err := svc.Run(ctx)

		require.NoError(t, err)
		assert.Equal(t, "fix it", result.Analysis)
		assert.Zero(t, result.PRNumber)
		assert.Nil(t, result.Comment)
		vcsClient.AssertNotCalled(t, "FindMarkerComment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("falls back to the pull requests reported on the run", func(t *testing.T) {
		vcsClient := new(MockVCSClient)
		analyzer := new(MockAnalyzer)

		vcsClient.On("GetRun", mock.Anything, testOwner, testRepo, testRunID).
			Return(&models.Run{ID: testRunID, Conclusion: models.ConclusionFailure, PullRequests: []int{31}}, nil)
		vcsClient.On("ListJobs", mock.Anything, testOwner, testRepo, testRunID).Return([]models.Job{failedBuildJob()}, nil)
		vcsClient.On("GetJobLog", mock.Anything, testOwner, testRepo, int64(55)).Return("x", nil)
		vcsClient.On("FindMarkerComment", mock.Anything, testOwner, testRepo, 31, CommentMarker).Return(nil, nil)
		vcsClient.On("UpsertComment", mock.Anything, testOwner, testRepo, 31, mock.Anything, int64(0)).
			Return(&models.Comment{ID: 2}, nil)
		analyzer.On("Complete", mock.Anything, mock.Anything).Return(models.Analysis{Text: "a"}, nil)

		svc := NewTriageService(
			WithTriageVCSClient(vcsClient),
			WithTriageAnalyzer(analyzer),
			WithTriageConfig(newTestConfig()),
			WithTriageTranslations(newTestTranslations(t)),
		)

		result, err := svc.Run(ctx)

		require.NoError(t, err)
		assert.Equal(t, 31, result.PRNumber)
	})

	t.Run("does not fail when publishing fails", func(t *testing.T) {
		vcsClient := new(MockVCSClient)
		analyzer := new(MockAnalyzer)

		vcsClient.On("GetRun", mock.Anything, testOwner, testRepo, testRunID).
			Return(&models.Run{ID: testRunID, Conclusion: models.ConclusionFailure}, nil)
		vcsClient.On("ListJobs", mock.Anything, testOwner, testRepo, testRunID).Return([]models.Job{failedBuildJob()}, nil)
		vcsClient.On("GetJobLog", mock.Anything, testOwner, testRepo, int64(55)).Return("x", nil)
		vcsClient.On("FindMarkerComment", mock.Anything, testOwner, testRepo, 7, CommentMarker).Return(nil, nil)
		vcsClient.On("UpsertComment", mock.Anything, testOwner, testRepo, 7, mock.Anything, int64(0)).
			Return(nil, domainErrors.ErrPublishComment.WithContext("status", 403))
		analyzer.On("Complete", mock.Anything, mock.Anything).Return(models.Analysis{Text: "a"}, nil)

		svc := NewTriageService(
			WithTriageVCSClient(vcsClient),
			WithTriageAnalyzer(analyzer),
			WithTriageConfig(newTestConfig()),
			WithTriageTranslations(newTestTranslations(t)),
			WithTriageEvent(prPayload(t, 7)),
		)

		result, err := svc.Run(ctx)

		require.NoError(t, err)
		assert.Equal(t, "a", result.Analysis)
		assert.Nil(t, result.Comment)
	})

	t.Run("respects the comment toggle", func(t *testing.T) {
		vcsClient := new(MockVCSClient)
		analyzer := new(MockAnalyzer)
		cfg := newTestConfig()
		cfg.Comment = false

		vcsClient.On("GetRun", mock.Anything, testOwner, testRepo, testRunID).
			Return(&models.Run{ID: testRunID, Conclusion: models.ConclusionFailure}, nil)
		vcsClient.On("ListJobs", mock.Anything, testOwner, testRepo, testRunID).Return([]models.Job{failedBuildJob()}, nil)
		vcsClient.On("GetJobLog", mock.Anything, testOwner, testRepo, int64(55)).Return("x", nil)
		analyzer.On("Complete", mock.Anything, mock.Anything).Return(models.Analysis{Text: "a"}, nil)

		svc := NewTriageService(
			WithTriageVCSClient(vcsClient),
			WithTriageAnalyzer(analyzer),
			WithTriageConfig(cfg),
			WithTriageTranslations(newTestTranslations(t)),
			WithTriageEvent(prPayload(t, 7)),
		)

		_, err := svc.Run(ctx)

		require.NoError(t, err)
		vcsClient.AssertNotCalled(t, "FindMarkerComment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("propagates job listing failures", func(t *testing.T) {
		vcsClient := new(MockVCSClient)
		analyzer := new(MockAnalyzer)

		vcsClient.On("GetRun", mock.Anything, testOwner, testRepo, testRunID).
			Return(&models.Run{ID: testRunID, Conclusion: models.ConclusionFailure}, nil)
		vcsClient.On("ListJobs", mock.Anything, testOwner, testRepo, testRunID).
			Return(nil, domainErrors.NewTransportError("GET jobs", 500, "oops", nil))

		svc := NewTriageService(
			WithTriageVCSClient(vcsClient),
			WithTriageAnalyzer(analyzer),
			WithTriageConfig(newTestConfig()),
			WithTriageTranslations(newTestTranslations(t)),
		)

		result, err := svc.Run(ctx)

		assert.Nil(t, result)
		assert.True(t, domainErrors.IsType(err, domainErrors.TypeTransport))
		analyzer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("waits once before reading the run status", func(t *testing.T) {
		vcsClient := new(MockVCSClient)
		cfg := newTestConfig()
		cfg.StatusDelay = 7 * time.Second

		vcsClient.On("GetRun", mock.Anything, testOwner, testRepo, testRunID).
			Return(&models.Run{ID: testRunID, Conclusion: models.ConclusionSuccess}, nil)

		var waited []time.Duration
		svc := NewTriageService(
			WithTriageVCSClient(vcsClient),
			WithTriageAnalyzer(new(MockAnalyzer)),
			WithTriageConfig(cfg),
			WithTriageTranslations(newTestTranslations(t)),
			WithTriageSleeper(func(_ context.Context, d time.Duration) error {
				waited = append(waited, d)
				return nil
			}),
		)

		_, err := svc.Run(ctx)

		require.NoError(t, err)
		assert.Equal(t, []time.Duration{7 * time.Second}, waited)
	})

	t.Run("writes step outputs and summary", func(t *testing.T) {
		dir := t.TempDir()
		cfg := newTestConfig()
		cfg.Comment = false
		cfg.GitHub.OutputPath = filepath.Join(dir, "output")
		cfg.GitHub.StepSummaryPath = filepath.Join(dir, "summary")

		vcsClient := new(MockVCSClient)
		analyzer := new(MockAnalyzer)
		vcsClient.On("GetRun", mock.Anything, testOwner, testRepo, testRunID).
			Return(&models.Run{ID: testRunID, Name: "CI", Conclusion: models.ConclusionFailure}, nil)
		vcsClient.On("ListJobs", mock.Anything, testOwner, testRepo, testRunID).Return([]models.Job{failedBuildJob()}, nil)
		vcsClient.On("GetJobLog", mock.Anything, testOwner, testRepo, int64(55)).Return(tenLineLog(), nil)
		analyzer.On("Complete", mock.Anything, mock.Anything).Return(models.Analysis{Text: "first\nsecond"}, nil)

		svc := NewTriageService(
			WithTriageVCSClient(vcsClient),
			WithTriageAnalyzer(analyzer),
			WithTriageConfig(cfg),
			WithTriageTranslations(newTestTranslations(t)),
		)

		_, err := svc.Run(ctx)
		require.NoError(t, err)

		out, err := os.ReadFile(cfg.GitHub.OutputPath)
		require.NoError(t, err)
		assert.Contains(t, string(out), "job_name=build\n")
		assert.Contains(t, string(out), "step_name=Build\n")
		assert.Contains(t, string(out), "total_log_lines=10\n")
		assert.Contains(t, string(out), "first\nsecond\n")

		summary, err := os.ReadFile(cfg.GitHub.StepSummaryPath)
		require.NoError(t, err)
		assert.Contains(t, string(summary), "## Failure analysis for build")
		assert.Contains(t, string(summary), "first\nsecond")
	})
}

func TestTriageService_RunIDResolution(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		input   int64
		payload string
		env     int64
		want    int64
	}{
		{"explicit input wins", 11, `{"workflow_run": {"id": 22}}`, 33, 11},
		{"workflow_run payload next", 0, `{"workflow_run": {"id": 22}}`, 33, 22},
		{"current run last", 0, `{}`, 33, 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig()
			cfg.RunID = tt.input
			cfg.GitHub.RunID = tt.env
			payload, err := event.Parse([]byte(tt.payload))
			require.NoError(t, err)

			vcsClient := new(MockVCSClient)
			vcsClient.On("GetRun", mock.Anything, testOwner, testRepo, tt.want).
				Return(&models.Run{ID: tt.want, Conclusion: models.ConclusionSuccess}, nil).Once()

			svc := NewTriageService(
				WithTriageVCSClient(vcsClient),
				WithTriageConfig(cfg),
				WithTriageTranslations(newTestTranslations(t)),
				WithTriageEvent(payload),
			)

			_, err = svc.Inspect(ctx)

			require.NoError(t, err)
			vcsClient.AssertExpectations(t)
		})
	}

	t.Run("missing run id is a configuration error", func(t *testing.T) {
		cfg := newTestConfig()
		cfg.GitHub.RunID = 0

		svc := NewTriageService(
			WithTriageVCSClient(new(MockVCSClient)),
			WithTriageConfig(cfg),
			WithTriageTranslations(newTestTranslations(t)),
		)

		_, err := svc.Inspect(ctx)

		assert.True(t, errors.Is(err, domainErrors.ErrMissingRunID))
	})
}

func TestTriageService_Inspect(t *testing.T) {
	vcsClient := new(MockVCSClient)
	cfg := newTestConfig()
	cfg.MaxLogLines = 3

	vcsClient.On("GetRun", mock.Anything, testOwner, testRepo, testRunID).
		Return(&models.Run{ID: testRunID, Name: "CI", Conclusion: models.ConclusionFailure}, nil)
	job := failedBuildJob()
	job.Steps = nil
	vcsClient.On("ListJobs", mock.Anything, testOwner, testRepo, testRunID).Return([]models.Job{job}, nil)
	vcsClient.On("GetJobLog", mock.Anything, testOwner, testRepo, int64(55)).Return("", nil)

	svc := NewTriageService(
		WithTriageVCSClient(vcsClient),
		WithTriageConfig(cfg),
		WithTriageTranslations(newTestTranslations(t)),
		WithTriageEvent(prPayload(t, 7)),
	)

	result, err := svc.Inspect(context.Background())

	require.NoError(t, err)
	assert.Equal(t, triage.UnknownStep, result.StepName)
	assert.Equal(t, 0, result.TotalLogLines)
	assert.True(t, strings.HasSuffix(result.Prompt, "Log is empty."))
	vcsClient.AssertNotCalled(t, "FindMarkerComment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBuildCommentBody(t *testing.T) {
	trans := newTestTranslations(t)

	body := BuildCommentBody(trans, "CI", "build", "Build", "Run `go mod tidy`.")

	lines := strings.Split(body, "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, CommentMarker, lines[0])
	assert.Contains(t, lines[1], "`CI`")
	assert.Contains(t, lines[1], "`build`")
	assert.Contains(t, lines[1], "`Build`")
	assert.Equal(t, "Run `go mod tidy`.", lines[3])
	assert.Equal(t, trans.GetMessage("comment_trailer", 0, nil), lines[5])
}

func TestTriageService_InspectWhitespaceLog(t *testing.T) {
	vcsClient := new(MockVCSClient)
	cfg := newTestConfig()

	vcsClient.On("GetRun", mock.Anything, testOwner, testRepo, testRunID).
		Return(&models.Run{ID: testRunID, Name: "CI", Conclusion: models.ConclusionFailure}, nil)
	vcsClient.On("ListJobs", mock.Anything, testOwner, testRepo, testRunID).Return([]models.Job{failedBuildJob()}, nil)
	vcsClient.On("GetJobLog", mock.Anything, testOwner, testRepo, int64(55)).Return("   \n\t\n  ", nil)

	svc := NewTriageService(
		WithTriageVCSClient(vcsClient),
		WithTriageConfig(cfg),
		WithTriageTranslations(newTestTranslations(t)),
		WithTriageEvent(prPayload(t, 7)),
	)

	result, err := svc.Inspect(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalLogLines)
	assert.True(t, strings.HasSuffix(result.Prompt, "Log is empty."))
}

func TestTriageService_RunLogsRunIDOnce(t *testing.T) {
	var buf bytes.Buffer
	ctx := logger.WithLogger(context.Background(),
		slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	vcsClient := new(MockVCSClient)
	analyzer := new(MockAnalyzer)

	vcsClient.On("GetRun", mock.Anything, testOwner, testRepo, testRunID).
		Return(&models.Run{ID: testRunID, Name: "CI", Conclusion: models.ConclusionFailure}, nil)
	vcsClient.On("ListJobs", mock.Anything, testOwner, testRepo, testRunID).Return([]models.Job{failedBuildJob()}, nil)
	vcsClient.On("GetJobLog", mock.Anything, testOwner, testRepo, int64(55)).Return(tenLineLog(), nil)
	analyzer.On("Complete", mock.Anything, mock.Anything).Return(models.Analysis{
		Text:     "Missing dependency",
		Provider: "openrouter",
		Usage:    &models.TokenUsage{InputTokens: 10, OutputTokens: 5, Model: "m"},
	}, nil)
	analyzer.On("GetProviderName").Return("openrouter").Maybe()

	cfg := newTestConfig()
	cfg.Comment = false

	svc := NewTriageService(
		WithTriageVCSClient(vcsClient),
		WithTriageAnalyzer(analyzer),
		WithTriageConfig(cfg),
		WithTriageTranslations(newTestTranslations(t)),
	)

	_, err := svc.Run(ctx)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	var sawAnalysisLine bool
	for _, line := range lines {
		assert.LessOrEqual(t, strings.Count(line, "run_id="), 1, line)
		if strings.Contains(line, "analysis completed") {
			sawAnalysisLine = true
			assert.Contains(t, line, "run_id=4242")
		}
	}
	assert.True(t, sawAnalysisLine)
}
