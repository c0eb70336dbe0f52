// Package triage decides which job and step of a finished workflow run get analysed.
//
// The policy is strict: a run is only analysed when its own conclusion is in the
// failure set, and among its jobs the most recently concluded failure wins. There is
// no fallback to "the current job" because GitHub reports the job running this tool
// as in progress, and picking it would analyse a job that has not failed.
package triage

import (
	"sort"

	"github.com/thomas-vilte/matetriage/internal/models"
)

// UnknownStep is shown when the selected job has no step with a failing conclusion.
const UnknownStep = "Unknown step"

var failureSet = map[string]struct{}{
	models.ConclusionFailure:        {},
	models.ConclusionTimedOut:       {},
	models.ConclusionCancelled:      {},
	models.ConclusionActionRequired: {},
}

// failureConclusions lists the failure set in a stable order.
func failureConclusions() []string {
	return []string{
		models.ConclusionFailure,
		models.ConclusionTimedOut,
		models.ConclusionCancelled,
		models.ConclusionActionRequired,
	}
}

// IsFailure reports whether a conclusion is in the failure set. Empty and unknown
// conclusions are not failures.
func IsFailure(conclusion string) bool {
	_, ok := failureSet[conclusion]
	return ok
}

// IsCandidate reports whether a job failed, either by its own conclusion or through
// one of its steps. The step check covers jobs the API still reports as running
// after a step has already failed.
func IsCandidate(job models.Job) bool {
	if IsFailure(job.Conclusion) {
		return true
	}
	for _, s := range job.Steps {
		if IsFailure(s.Conclusion) {
			return true
		}
	}
	return false
}

// SelectFailedJob returns the failure candidate with the latest completion time
// (start time when completion is unknown). Ties keep input order. It returns nil
// when the run did not fail or no job is a candidate.
func SelectFailedJob(run *models.Run, jobs []models.Job) *models.Job {
	if run == nil || !IsFailure(run.Conclusion) {
		return nil
	}

	candidates := make([]models.Job, 0, len(jobs))
	for _, j := range jobs {
		if IsCandidate(j) {
			candidates = append(candidates, j)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].SortTime().After(candidates[b].SortTime())
	})

	selected := candidates[0]
	return &selected
}

// SelectFailedStep returns the last step, in step order, whose conclusion is in the
// failure set, or nil when there is none.
func SelectFailedStep(job *models.Job) *models.Step {
	if job == nil {
		return nil
	}

	idx := -1
	for i, s := range job.Steps {
		if IsFailure(s.Conclusion) {
			idx = i
		}
	}
	if idx < 0 {
		return nil
	}

	step := job.Steps[idx]
	return &step
}

// StepName returns the display name of the selected step or UnknownStep.
func StepName(step *models.Step) string {
	if step == nil || step.Name == "" {
		return UnknownStep
	}
	return step.Name
}
