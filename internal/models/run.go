package models

import "time"

// Conclusion values reported by GitHub Actions for runs, jobs and steps.
const (
	ConclusionSuccess        = "success"
	ConclusionFailure        = "failure"
	ConclusionTimedOut       = "timed_out"
	ConclusionCancelled      = "cancelled"
	ConclusionActionRequired = "action_required"
	ConclusionSkipped        = "skipped"
	ConclusionNeutral        = "neutral"
)

type (
	// Run is a read-only snapshot of a workflow run.
	Run struct {
		ID           int64
		Name         string
		Owner        string
		Repo         string
		Status       string
		Conclusion   string
		HTMLURL      string
		PullRequests []int
	}

	// Job is one job of a run. Conclusion is empty while the job is pending or running.
	Job struct {
		ID          int64
		Name        string
		Status      string
		Conclusion  string
		HTMLURL     string
		Steps       []Step
		StartedAt   *time.Time
		CompletedAt *time.Time
	}

	// Step is identified by its ordinal position within the job.
	Step struct {
		Number     int64
		Name       string
		Status     string
		Conclusion string
	}
)

// SortTime is the timestamp used to order failure candidates: completion time,
// falling back to start time. The zero time is returned when neither is known.
func (j Job) SortTime() time.Time {
	if j.CompletedAt != nil {
		return *j.CompletedAt
	}
	if j.StartedAt != nil {
		return *j.StartedAt
	}
	return time.Time{}
}
