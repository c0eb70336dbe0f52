package models

type ProgressEventType string

const (
	ProgressRunChecked       ProgressEventType = "run_checked"
	ProgressJobSelected      ProgressEventType = "job_selected"
	ProgressLogTrimmed       ProgressEventType = "log_trimmed"
	ProgressAnalysisReady    ProgressEventType = "analysis_ready"
	ProgressCommentPublished ProgressEventType = "comment_published"
	ProgressGeneric          ProgressEventType = "generic_info"
)

type ProgressEvent struct {
	Type    ProgressEventType
	Message string
	Data    map[string]interface{}
}
