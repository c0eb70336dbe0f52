// Package event reads the webhook payload GitHub Actions writes to
// GITHUB_EVENT_PATH. Only the fields needed to locate a pull request and a
// run are decoded.
package event

import (
	"encoding/json"
	"os"
	"regexp"
	"strconv"

	domainErrors "github.com/thomas-vilte/matetriage/internal/errors"
)

var pullRefPattern = regexp.MustCompile(`^refs/pull/(\d+)/`)

type (
	Payload struct {
		PullRequest *pullRequest `json:"pull_request"`
		WorkflowRun *workflowRun `json:"workflow_run"`
	}

	pullRequest struct {
		Number int `json:"number"`
	}

	workflowRun struct {
		ID           int64          `json:"id"`
		Name         string         `json:"name"`
		PullRequests []*pullRequest `json:"pull_requests"`
	}
)

// Load decodes the payload at path. An empty path yields an empty payload.
func Load(path string) (*Payload, error) {
	if path == "" {
		return &Payload{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domainErrors.ErrEventPayload.
			WithError(err).
			WithContext("path", path)
	}
	return Parse(data)
}

func Parse(data []byte) (*Payload, error) {
	var p Payload
	if len(data) == 0 {
		return &p, nil
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, domainErrors.ErrEventPayload.WithError(err)
	}
	return &p, nil
}

// PullRequestNumber resolves the pull request the run belongs to. The explicit
// pull_request object wins, then the first pull request of workflow_run, then a
// refs/pull/<n>/ ref.
func (p *Payload) PullRequestNumber(ref string) (int, bool) {
	if p != nil {
		if p.PullRequest != nil && p.PullRequest.Number > 0 {
			return p.PullRequest.Number, true
		}
		if p.WorkflowRun != nil && len(p.WorkflowRun.PullRequests) > 0 {
			if first := p.WorkflowRun.PullRequests[0]; first != nil && first.Number > 0 {
				return first.Number, true
			}
		}
	}
	return pullNumberFromRef(ref)
}

// WorkflowRunID is the id of the triggering run for workflow_run events.
func (p *Payload) WorkflowRunID() (int64, bool) {
	if p == nil || p.WorkflowRun == nil || p.WorkflowRun.ID == 0 {
		return 0, false
	}
	return p.WorkflowRun.ID, true
}

func (p *Payload) WorkflowRunName() string {
	if p == nil || p.WorkflowRun == nil {
		return ""
	}
	return p.WorkflowRun.Name
}

func pullNumberFromRef(ref string) (int, bool) {
	m := pullRefPattern.FindStringSubmatch(ref)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
