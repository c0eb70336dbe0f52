package github

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/mock"
)

type MockActionsService struct {
	mock.Mock
}

func (m *MockActionsService) GetWorkflowRunByID(ctx context.Context, owner, repo string, runID int64) (*github.WorkflowRun, *github.Response, error) {
	args := m.Called(ctx, owner, repo, runID)
	var run *github.WorkflowRun
	if args.Get(0) != nil {
		run = args.Get(0).(*github.WorkflowRun)
	}
	var resp *github.Response
	if args.Get(1) != nil {
		resp = args.Get(1).(*github.Response)
	}
	return run, resp, args.Error(2)
}

func (m *MockActionsService) ListWorkflowJobs(ctx context.Context, owner, repo string, runID int64, opts *github.ListWorkflowJobsOptions) (*github.Jobs, *github.Response, error) {
	args := m.Called(ctx, owner, repo, runID, opts)
	var jobs *github.Jobs
	if args.Get(0) != nil {
		jobs = args.Get(0).(*github.Jobs)
	}
	var resp *github.Response
	if args.Get(1) != nil {
		resp = args.Get(1).(*github.Response)
	}
	return jobs, resp, args.Error(2)
}

func (m *MockActionsService) GetWorkflowJobLogs(ctx context.Context, owner, repo string, jobID int64, maxRedirects int) (*url.URL, *github.Response, error) {
	args := m.Called(ctx, owner, repo, jobID, maxRedirects)
	var u *url.URL
	if args.Get(0) != nil {
		u = args.Get(0).(*url.URL)
	}
	var resp *github.Response
	if args.Get(1) != nil {
		resp = args.Get(1).(*github.Response)
	}
	return u, resp, args.Error(2)
}

type MockIssuesService struct {
	mock.Mock
}

func (m *MockIssuesService) ListComments(ctx context.Context, owner, repo string, number int, opts *github.IssueListCommentsOptions) ([]*github.IssueComment, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number, opts)
	var comments []*github.IssueComment
	if args.Get(0) != nil {
		comments = args.Get(0).([]*github.IssueComment)
	}
	var resp *github.Response
	if args.Get(1) != nil {
		resp = args.Get(1).(*github.Response)
	}
	return comments, resp, args.Error(2)
}

func (m *MockIssuesService) CreateComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number, comment)
	var c *github.IssueComment
	if args.Get(0) != nil {
		c = args.Get(0).(*github.IssueComment)
	}
	var resp *github.Response
	if args.Get(1) != nil {
		resp = args.Get(1).(*github.Response)
	}
	return c, resp, args.Error(2)
}

func (m *MockIssuesService) EditComment(ctx context.Context, owner, repo string, commentID int64, comment *github.IssueComment) (*github.IssueComment, *github.Response, error) {
	args := m.Called(ctx, owner, repo, commentID, comment)
	var c *github.IssueComment
	if args.Get(0) != nil {
		c = args.Get(0).(*github.IssueComment)
	}
	var resp *github.Response
	if args.Get(1) != nil {
		resp = args.Get(1).(*github.Response)
	}
	return c, resp, args.Error(2)
}

type MockHTTPDoer struct {
	mock.Mock
}

func (m *MockHTTPDoer) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	var resp *http.Response
	if args.Get(0) != nil {
		resp = args.Get(0).(*http.Response)
	}
	return resp, args.Error(1)
}
