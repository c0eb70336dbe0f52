package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/matetriage/internal/models"
)

type (
	MockVCSClient struct {
		mock.Mock
	}

	MockAnalyzer struct {
		mock.Mock
	}
)

func (m *MockVCSClient) GetRun(ctx context.Context, owner, repo string, runID int64) (*models.Run, error) {
	args := m.Called(ctx, owner, repo, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Run), args.Error(1)
}

func (m *MockVCSClient) ListJobs(ctx context.Context, owner, repo string, runID int64) ([]models.Job, error) {
	args := m.Called(ctx, owner, repo, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Job), args.Error(1)
}

func (m *MockVCSClient) GetJobLog(ctx context.Context, owner, repo string, jobID int64) (string, error) {
	args := m.Called(ctx, owner, repo, jobID)
	return args.String(0), args.Error(1)
}

func (m *MockVCSClient) FindMarkerComment(ctx context.Context, owner, repo string, number int, marker string) (*models.Comment, error) {
	args := m.Called(ctx, owner, repo, number, marker)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockVCSClient) UpsertComment(ctx context.Context, owner, repo string, number int, body string, existingID int64) (*models.Comment, error) {
	args := m.Called(ctx, owner, repo, number, body, existingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockAnalyzer) Complete(ctx context.Context, prompt string) (models.Analysis, error) {
	args := m.Called(ctx, prompt)
	return args.Get(0).(models.Analysis), args.Error(1)
}

func (m *MockAnalyzer) GetProviderName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockAnalyzer) GetModelName() string {
	args := m.Called()
	return args.String(0)
}
