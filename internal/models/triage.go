package models

type (
	// TriageResult describes what one invocation found and published.
	TriageResult struct {
		Run           *Run
		Job           *Job
		Step          *Step
		StepName      string
		TotalLogLines int
		Prompt        string
		Analysis      string
		BackendFailed bool
		Usage         *TokenUsage
		PRNumber      int
		Comment       *Comment
		// Skipped is set when the run did not fail and nothing was analysed.
		Skipped    bool
		SkipReason string
	}
)
