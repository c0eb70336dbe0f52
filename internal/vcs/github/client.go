package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v80/github"
	domainErrors "github.com/thomas-vilte/matetriage/internal/errors"
	"github.com/thomas-vilte/matetriage/internal/logger"
	"github.com/thomas-vilte/matetriage/internal/models"
	"github.com/thomas-vilte/matetriage/internal/vcs"
	"golang.org/x/oauth2"
)

var _ vcs.Client = (*GitHubClient)(nil)

const (
	pageSize = 100
	// maxLogRedirects matches what the Actions log endpoint needs to hand off to blob storage.
	maxLogRedirects = 3
	maxErrorBody    = 2048
)

type ActionsService interface {
	GetWorkflowRunByID(ctx context.Context, owner, repo string, runID int64) (*github.WorkflowRun, *github.Response, error)
	ListWorkflowJobs(ctx context.Context, owner, repo string, runID int64, opts *github.ListWorkflowJobsOptions) (*github.Jobs, *github.Response, error)
	GetWorkflowJobLogs(ctx context.Context, owner, repo string, jobID int64, maxRedirects int) (*url.URL, *github.Response, error)
}

type IssuesService interface {
	ListComments(ctx context.Context, owner, repo string, number int, opts *github.IssueListCommentsOptions) ([]*github.IssueComment, *github.Response, error)
	CreateComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error)
	EditComment(ctx context.Context, owner, repo string, commentID int64, comment *github.IssueComment) (*github.IssueComment, *github.Response, error)
}

// HTTPDoer downloads the raw log from the redirect URL the API hands out.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type GitHubClient struct {
	actionsService ActionsService
	issuesService  IssuesService
	httpClient     HTTPDoer
}

// NewGitHubClient builds a client authenticated with token. A non-empty apiURL
// points it at a GitHub Enterprise Server instance.
func NewGitHubClient(token, apiURL string) (*GitHubClient, error) {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	client := github.NewClient(httpClient)
	if apiURL != "" && strings.TrimRight(apiURL, "/") != "https://api.github.com" {
		var err error
		client, err = client.WithEnterpriseURLs(apiURL, apiURL)
		if err != nil {
			return nil, domainErrors.ErrInvalidInput.
				WithError(err).
				WithContext("input", "GITHUB_API_URL")
		}
	}

	return &GitHubClient{
		actionsService: client.Actions,
		issuesService:  client.Issues,
		// Log URLs are pre-signed; the token must not be forwarded to blob storage.
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}, nil
}

func NewGitHubClientWithServices(actions ActionsService, issues IssuesService, httpClient HTTPDoer) *GitHubClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &GitHubClient{
		actionsService: actions,
		issuesService:  issues,
		httpClient:     httpClient,
	}
}

func (ghc *GitHubClient) GetRun(ctx context.Context, owner, repo string, runID int64) (*models.Run, error) {
	log := logger.FromContext(ctx)
	endpoint := fmt.Sprintf("GET /repos/%s/%s/actions/runs/%d", owner, repo, runID)

	log.Debug("fetching workflow run", "endpoint", endpoint)

	run, resp, err := ghc.actionsService.GetWorkflowRunByID(ctx, owner, repo, runID)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, domainErrors.ErrRunNotFound.
				WithError(err).
				WithContext("endpoint", endpoint).
				WithContext("status", resp.StatusCode)
		}
		return nil, transportError(endpoint, resp, err)
	}

	out := &models.Run{
		ID:         run.GetID(),
		Name:       run.GetName(),
		Owner:      owner,
		Repo:       repo,
		Status:     run.GetStatus(),
		Conclusion: run.GetConclusion(),
		HTMLURL:    run.GetHTMLURL(),
	}
	for _, pr := range run.PullRequests {
		if n := pr.GetNumber(); n > 0 {
			out.PullRequests = append(out.PullRequests, n)
		}
	}

	log.Debug("workflow run fetched",
		"status", out.Status,
		"conclusion", out.Conclusion)

	return out, nil
}

func (ghc *GitHubClient) ListJobs(ctx context.Context, owner, repo string, runID int64) ([]models.Job, error) {
	log := logger.FromContext(ctx)
	endpoint := fmt.Sprintf("GET /repos/%s/%s/actions/runs/%d/jobs", owner, repo, runID)

	var jobs []models.Job
	page := 1
	for {
		opts := &github.ListWorkflowJobsOptions{
			Filter:      "latest",
			ListOptions: github.ListOptions{Page: page, PerPage: pageSize},
		}
		batch, resp, err := ghc.actionsService.ListWorkflowJobs(ctx, owner, repo, runID, opts)
		if err != nil {
			return nil, transportError(endpoint, resp, err).WithContext("page", page)
		}

		var received int
		if batch != nil {
			received = len(batch.Jobs)
			for _, j := range batch.Jobs {
				jobs = append(jobs, toJob(j))
			}
		}

		log.Debug("fetched jobs page",
			"endpoint", endpoint,
			"page", page,
			"count", received)

		if received < pageSize {
			break
		}
		page++
	}

	return jobs, nil
}

func (ghc *GitHubClient) GetJobLog(ctx context.Context, owner, repo string, jobID int64) (string, error) {
	log := logger.FromContext(ctx)
	endpoint := fmt.Sprintf("GET /repos/%s/%s/actions/jobs/%d/logs", owner, repo, jobID)

	logURL, resp, err := ghc.actionsService.GetWorkflowJobLogs(ctx, owner, repo, jobID, maxLogRedirects)
	if err != nil {
		return "", transportError(endpoint, resp, err)
	}
	if logURL == nil {
		return "", domainErrors.NewTransportError(endpoint, 0, "", errors.New("no log location returned"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, logURL.String(), nil)
	if err != nil {
		return "", domainErrors.NewTransportError(endpoint, 0, "", err)
	}

	dl, err := ghc.httpClient.Do(req)
	if err != nil {
		return "", domainErrors.NewTransportError(endpoint, 0, "", err)
	}
	defer dl.Body.Close()

	body, err := io.ReadAll(dl.Body)
	if err != nil {
		return "", domainErrors.NewTransportError(endpoint, dl.StatusCode, "", err)
	}
	if dl.StatusCode < 200 || dl.StatusCode >= 300 {
		return "", domainErrors.NewTransportError(endpoint, dl.StatusCode, truncate(string(body)), nil)
	}

	log.Debug("job log downloaded",
		"job_id", jobID,
		"size", len(body))

	return string(body), nil
}

// FindMarkerComment returns the first comment containing marker, in the order
// the API lists them, and stops paging as soon as one is found.
func (ghc *GitHubClient) FindMarkerComment(ctx context.Context, owner, repo string, number int, marker string) (*models.Comment, error) {
	endpoint := fmt.Sprintf("GET /repos/%s/%s/issues/%d/comments", owner, repo, number)

	page := 1
	for {
		opts := &github.IssueListCommentsOptions{
			ListOptions: github.ListOptions{Page: page, PerPage: pageSize},
		}
		comments, resp, err := ghc.issuesService.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, publishError(endpoint, resp, err)
		}

		for _, c := range comments {
			if strings.Contains(c.GetBody(), marker) {
				return toComment(c), nil
			}
		}

		if len(comments) < pageSize {
			return nil, nil
		}
		page++
	}
}

func (ghc *GitHubClient) UpsertComment(ctx context.Context, owner, repo string, number int, body string, existingID int64) (*models.Comment, error) {
	log := logger.FromContext(ctx)
	payload := &github.IssueComment{Body: github.Ptr(body)}

	if existingID != 0 {
		endpoint := fmt.Sprintf("PATCH /repos/%s/%s/issues/comments/%d", owner, repo, existingID)
		updated, resp, err := ghc.issuesService.EditComment(ctx, owner, repo, existingID, payload)
		if err != nil {
			return nil, publishError(endpoint, resp, err)
		}
		log.Debug("updated existing comment", "comment_id", updated.GetID(), "pr_number", number)
		return toComment(updated), nil
	}

	endpoint := fmt.Sprintf("POST /repos/%s/%s/issues/%d/comments", owner, repo, number)
	created, resp, err := ghc.issuesService.CreateComment(ctx, owner, repo, number, payload)
	if err != nil {
		return nil, publishError(endpoint, resp, err)
	}
	log.Debug("created comment", "comment_id", created.GetID(), "pr_number", number)
	return toComment(created), nil
}

func toJob(j *github.WorkflowJob) models.Job {
	job := models.Job{
		ID:         j.GetID(),
		Name:       j.GetName(),
		Status:     j.GetStatus(),
		Conclusion: j.GetConclusion(),
		HTMLURL:    j.GetHTMLURL(),
	}
	if j.StartedAt != nil {
		t := j.StartedAt.Time
		job.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := j.CompletedAt.Time
		job.CompletedAt = &t
	}
	for _, s := range j.Steps {
		job.Steps = append(job.Steps, models.Step{
			Number:     s.GetNumber(),
			Name:       s.GetName(),
			Status:     s.GetStatus(),
			Conclusion: s.GetConclusion(),
		})
	}
	return job
}

func toComment(c *github.IssueComment) *models.Comment {
	if c == nil {
		return nil
	}
	return &models.Comment{
		ID:      c.GetID(),
		Body:    c.GetBody(),
		HTMLURL: c.GetHTMLURL(),
	}
}

func transportError(endpoint string, resp *github.Response, err error) *domainErrors.AppError {
	status, body := responseDetails(resp, err)

	switch status {
	case http.StatusUnauthorized:
		return domainErrors.ErrGitHubTokenInvalid.
			WithError(err).
			WithContext("endpoint", endpoint).
			WithContext("status", status)
	case http.StatusForbidden, http.StatusTooManyRequests:
		var rateErr *github.RateLimitError
		if status == http.StatusTooManyRequests || errors.As(err, &rateErr) {
			return domainErrors.ErrGitHubRateLimit.
				WithError(err).
				WithContext("endpoint", endpoint).
				WithContext("status", status).
				WithContext("retry_after", retryAfter(resp))
		}
		return domainErrors.ErrGitHubInsufficientPerms.
			WithError(err).
			WithContext("endpoint", endpoint).
			WithContext("status", status)
	}

	return domainErrors.NewTransportError(endpoint, status, body, err)
}

func publishError(endpoint string, resp *github.Response, err error) *domainErrors.AppError {
	status, body := responseDetails(resp, err)
	appErr := domainErrors.ErrPublishComment.
		WithError(err).
		WithContext("endpoint", endpoint)
	if status != 0 {
		appErr = appErr.WithContext("status", status)
	}
	if body != "" {
		appErr = appErr.WithContext("body", body)
	}
	return appErr
}

func responseDetails(resp *github.Response, err error) (int, string) {
	var status int
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	}

	var body string
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		body = ghErr.Message
		if status == 0 && ghErr.Response != nil {
			status = ghErr.Response.StatusCode
		}
	}
	return status, truncate(body)
}

func retryAfter(resp *github.Response) string {
	if resp == nil || resp.Response == nil {
		return ""
	}
	return resp.Header.Get("Retry-After")
}

func truncate(s string) string {
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
