package vcs

import (
	"context"

	"github.com/thomas-vilte/matetriage/internal/models"
)

// RunReader reads workflow run metadata and its jobs.
type RunReader interface {
	GetRun(ctx context.Context, owner, repo string, runID int64) (*models.Run, error)
	// ListJobs returns every job of the run, concatenated in the order the API pages them.
	ListJobs(ctx context.Context, owner, repo string, runID int64) ([]models.Job, error)
}

type LogReader interface {
	GetJobLog(ctx context.Context, owner, repo string, jobID int64) (string, error)
}

// CommentWriter manages the single marker-tagged comment on a pull request thread.
type CommentWriter interface {
	FindMarkerComment(ctx context.Context, owner, repo string, number int, marker string) (*models.Comment, error)
	// UpsertComment edits existingID when it is non-zero and creates a new comment otherwise.
	UpsertComment(ctx context.Context, owner, repo string, number int, body string, existingID int64) (*models.Comment, error)
}

type Client interface {
	RunReader
	LogReader
	CommentWriter
}
