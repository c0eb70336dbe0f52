package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/thomas-vilte/matetriage/internal/actions"
	"github.com/thomas-vilte/matetriage/internal/ai"
	"github.com/thomas-vilte/matetriage/internal/config"
	domainErrors "github.com/thomas-vilte/matetriage/internal/errors"
	"github.com/thomas-vilte/matetriage/internal/event"
	"github.com/thomas-vilte/matetriage/internal/i18n"
	"github.com/thomas-vilte/matetriage/internal/logger"
	"github.com/thomas-vilte/matetriage/internal/logs"
	"github.com/thomas-vilte/matetriage/internal/models"
	"github.com/thomas-vilte/matetriage/internal/services/cost"
	"github.com/thomas-vilte/matetriage/internal/triage"
)

// CommentMarker is the first line of every comment this tool writes. Comments
// are found again by this substring, so it must never change.
const CommentMarker = "<!-- matetriage:failure-analysis -->"

// triageVCSClient defines the methods needed by TriageService from a VCS provider.
type triageVCSClient interface {
	GetRun(ctx context.Context, owner, repo string, runID int64) (*models.Run, error)
	ListJobs(ctx context.Context, owner, repo string, runID int64) ([]models.Job, error)
	GetJobLog(ctx context.Context, owner, repo string, jobID int64) (string, error)
	FindMarkerComment(ctx context.Context, owner, repo string, number int, marker string) (*models.Comment, error)
	UpsertComment(ctx context.Context, owner, repo string, number int, body string, existingID int64) (*models.Comment, error)
}

// triageAnalyzer defines the methods needed by TriageService from an AI provider.
type triageAnalyzer interface {
	Complete(ctx context.Context, prompt string) (models.Analysis, error)
	GetProviderName() string
	GetModelName() string
}

type sleeper func(ctx context.Context, d time.Duration) error

type TriageService struct {
	vcsClient triageVCSClient
	analyzer  triageAnalyzer
	config    *config.Config
	trans     *i18n.Translations
	payload   *event.Payload
	costCalc  *cost.Calculator
	sleep     sleeper
	progress  func(models.ProgressEvent)
}

type TriageOption func(*TriageService)

func WithTriageVCSClient(vcs triageVCSClient) TriageOption {
	return func(s *TriageService) {
		s.vcsClient = vcs
	}
}

func WithTriageAnalyzer(a triageAnalyzer) TriageOption {
	return func(s *TriageService) {
		s.analyzer = a
	}
}

func WithTriageConfig(cfg *config.Config) TriageOption {
	return func(s *TriageService) {
		s.config = cfg
	}
}

func WithTriageTranslations(t *i18n.Translations) TriageOption {
	return func(s *TriageService) {
		s.trans = t
	}
}

func WithTriageEvent(p *event.Payload) TriageOption {
	return func(s *TriageService) {
		s.payload = p
	}
}

func WithTriageSleeper(fn sleeper) TriageOption {
	return func(s *TriageService) {
		s.sleep = fn
	}
}

func WithTriageProgress(fn func(models.ProgressEvent)) TriageOption {
	return func(s *TriageService) {
		s.progress = fn
	}
}

func NewTriageService(opts ...TriageOption) *TriageService {
	s := &TriageService{
		payload:  &event.Payload{},
		costCalc: cost.NewCalculator(),
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run locates the failed job, asks the analyzer to explain it and publishes the
// answer. Analyzer and publish failures are absorbed; configuration and
// run/job/log fetch failures are returned.
func (s *TriageService) Run(ctx context.Context) (*models.TriageResult, error) {
	if s.analyzer == nil {
		return nil, domainErrors.NewAppError(domainErrors.TypeInternal, "analyzer not configured", nil)
	}

	ctx, result, err := s.locate(ctx)
	if err != nil {
		return nil, err
	}

	if result.Skipped {
		s.writeOutputs(ctx, result)
		return result, nil
	}

	s.analyze(ctx, result)
	s.publish(ctx, result)
	s.writeOutputs(ctx, result)
	s.writeSummary(ctx, result)

	return result, nil
}

// Inspect performs the read-only half of Run: it reports which job, step and
// log tail would be analyzed and the rendered prompt, without calling the
// analyzer or touching the pull request.
func (s *TriageService) Inspect(ctx context.Context) (*models.TriageResult, error) {
	_, result, err := s.locate(ctx)
	return result, err
}

// locate returns ctx with the run id attached to its logger, so later stages log
// under the same run.
func (s *TriageService) locate(ctx context.Context) (context.Context, *models.TriageResult, error) {
	log := logger.FromContext(ctx)

	if s.vcsClient == nil || s.config == nil || s.trans == nil {
		return ctx, nil, domainErrors.NewAppError(domainErrors.TypeInternal, "triage service not fully configured", nil)
	}

	owner, repo := s.config.GitHub.Owner, s.config.GitHub.Repo
	if owner == "" || repo == "" {
		return ctx, nil, domainErrors.ErrMissingRepository
	}

	runID, err := s.resolveRunID()
	if err != nil {
		return ctx, nil, err
	}
	ctx = logger.With(ctx, "run_id", runID)
	log = logger.FromContext(ctx)

	if d := s.config.StatusDelay; d > 0 {
		s.notify(models.ProgressGeneric, s.trans.GetMessage("waiting_for_status", 0, map[string]interface{}{
			"Delay": d.String(),
		}), nil)
		if err := s.sleep(ctx, d); err != nil {
			return ctx, nil, err
		}
	}

	run, err := s.vcsClient.GetRun(ctx, owner, repo, runID)
	if err != nil {
		return ctx, nil, err
	}
	result := &models.TriageResult{Run: run}

	log.Info("run status checked",
		"status", run.Status,
		"conclusion", run.Conclusion)

	if !triage.IsFailure(run.Conclusion) {
		result.Skipped = true
		result.SkipReason = s.trans.GetMessage("run_not_failed", 0, map[string]interface{}{
			"RunID":      run.ID,
			"Conclusion": run.Conclusion,
		})
		s.notify(models.ProgressRunChecked, result.SkipReason, nil)
		return ctx, result, nil
	}

	jobs, err := s.vcsClient.ListJobs(ctx, owner, repo, run.ID)
	if err != nil {
		return ctx, nil, err
	}

	job := triage.SelectFailedJob(run, jobs)
	if job == nil {
		result.Skipped = true
		result.SkipReason = s.trans.GetMessage("no_failed_job", 0, map[string]interface{}{
			"RunID": run.ID,
		})
		log.Info("no failure candidate", "jobs", len(jobs))
		s.notify(models.ProgressJobSelected, result.SkipReason, nil)
		return ctx, result, nil
	}

	result.Job = job
	result.Step = triage.SelectFailedStep(job)
	result.StepName = triage.StepName(result.Step)

	s.notify(models.ProgressJobSelected, s.trans.GetMessage("job_selected", 0, map[string]interface{}{
		"Job":  job.Name,
		"Step": result.StepName,
	}), map[string]interface{}{"job_id": job.ID})

	raw, err := s.vcsClient.GetJobLog(ctx, owner, repo, job.ID)
	if err != nil {
		return ctx, nil, err
	}

	trimmed, total := logs.Trim(raw, s.config.MaxLogLines)
	result.TotalLogLines = total
	sent := total
	if sent > s.config.MaxLogLines {
		sent = s.config.MaxLogLines
	}

	log.Debug("log trimmed",
		"job_id", job.ID,
		"total_lines", total,
		"sent_lines", sent)
	s.notify(models.ProgressLogTrimmed, s.trans.GetMessage("log_trimmed", sent, map[string]interface{}{
		"Count": sent,
		"Total": total,
	}), nil)

	result.Prompt = ai.RenderPrompt(s.config.PromptTemplate, ai.NewPromptContext(
		logs.ForPrompt(trimmed),
		s.workflowName(run),
		job.Name,
		result.StepName,
	))

	return ctx, result, nil
}

func (s *TriageService) analyze(ctx context.Context, result *models.TriageResult) {
	log := logger.FromContext(ctx)
	start := time.Now()

	analysis, err := s.analyzer.Complete(ctx, result.Prompt)
	if err != nil {
		log.Warn("analysis backend failed, publishing diagnostic instead",
			"provider", s.analyzer.GetProviderName(),
			"error", err)
		result.BackendFailed = true
		result.Analysis = s.trans.GetMessage("backend_failure", 0, map[string]interface{}{
			"Error": err.Error(),
		})
		s.notify(models.ProgressAnalysisReady, result.Analysis, nil)
		return
	}

	result.Analysis = analysis.Text
	result.Usage = analysis.Usage

	if u := analysis.Usage; u != nil {
		if u.CostUSD == 0 {
			u.CostUSD = s.costCalc.EstimateCost(analysis.Provider, u.Model, u.InputTokens, u.OutputTokens)
		}
		log.Info("analysis completed",
			"provider", analysis.Provider,
			"model", u.Model,
			"input_tokens", u.InputTokens,
			"output_tokens", u.OutputTokens,
			"cost_usd", u.CostUSD,
			"duration_ms", time.Since(start).Milliseconds())
	}

	s.notify(models.ProgressAnalysisReady, result.Analysis, nil)
}

func (s *TriageService) publish(ctx context.Context, result *models.TriageResult) {
	log := logger.FromContext(ctx)

	if !s.config.Comment {
		s.notify(models.ProgressGeneric, s.trans.GetMessage("comment_disabled", 0, nil), nil)
		return
	}

	number, ok := s.pullRequestNumber(result.Run)
	if !ok {
		s.notify(models.ProgressGeneric, s.trans.GetMessage("comment_no_pr", 0, nil), nil)
		return
	}
	result.PRNumber = number

	owner, repo := s.config.GitHub.Owner, s.config.GitHub.Repo
	body := BuildCommentBody(s.trans, s.workflowName(result.Run), result.Job.Name, result.StepName, result.Analysis)

	existing, err := s.vcsClient.FindMarkerComment(ctx, owner, repo, number, CommentMarker)
	if err != nil {
		log.Error(s.trans.GetMessage("comment_failed", 0, nil), "error", err, "pr_number", number)
		return
	}

	var existingID int64
	if existing != nil {
		existingID = existing.ID
	}

	comment, err := s.vcsClient.UpsertComment(ctx, owner, repo, number, body, existingID)
	if err != nil {
		log.Error(s.trans.GetMessage("comment_failed", 0, nil), "error", err, "pr_number", number)
		return
	}
	result.Comment = comment

	msgID := "comment_published"
	if existingID != 0 {
		msgID = "comment_updated"
	}
	s.notify(models.ProgressCommentPublished, s.trans.GetMessage(msgID, 0, map[string]interface{}{
		"Number": number,
	}), map[string]interface{}{"comment_id": comment.ID})
}

func (s *TriageService) writeOutputs(ctx context.Context, result *models.TriageResult) {
	values := map[string]string{
		"skipped": strconv.FormatBool(result.Skipped),
	}
	if result.Job != nil {
		values["job_name"] = result.Job.Name
		values["step_name"] = result.StepName
		values["total_log_lines"] = strconv.Itoa(result.TotalLogLines)
		values["analysis"] = result.Analysis
		values["backend_failed"] = strconv.FormatBool(result.BackendFailed)
	}
	if result.Comment != nil {
		values["comment_id"] = strconv.FormatInt(result.Comment.ID, 10)
		values["comment_url"] = result.Comment.HTMLURL
	}

	if err := actions.WriteOutputs(s.config.GitHub.OutputPath, values); err != nil {
		logger.FromContext(ctx).Warn("could not write step outputs", "error", err)
	}
}

func (s *TriageService) writeSummary(ctx context.Context, result *models.TriageResult) {
	if result.Job == nil {
		return
	}

	var b strings.Builder
	b.WriteString("## ")
	b.WriteString(s.trans.GetMessage("summary_title", 0, map[string]interface{}{"Job": result.Job.Name}))
	b.WriteString("\n\n")
	b.WriteString(s.trans.GetMessage("comment_header", 0, map[string]interface{}{
		"Workflow": s.workflowName(result.Run),
		"Job":      result.Job.Name,
		"Step":     result.StepName,
	}))
	b.WriteString("\n\n")
	b.WriteString(result.Analysis)
	b.WriteString("\n")

	if err := actions.AppendSummary(s.config.GitHub.StepSummaryPath, b.String()); err != nil {
		logger.FromContext(ctx).Warn("could not write step summary", "error", err)
	}
}

// resolveRunID prefers the explicit input, then the run that triggered a
// workflow_run event, then the current run.
func (s *TriageService) resolveRunID() (int64, error) {
	if s.config.RunID > 0 {
		return s.config.RunID, nil
	}
	if id, ok := s.payload.WorkflowRunID(); ok {
		return id, nil
	}
	if s.config.GitHub.RunID > 0 {
		return s.config.GitHub.RunID, nil
	}
	return 0, domainErrors.ErrMissingRunID
}

func (s *TriageService) pullRequestNumber(run *models.Run) (int, bool) {
	if n, ok := s.payload.PullRequestNumber(s.config.GitHub.Ref); ok {
		return n, true
	}
	if run != nil && len(run.PullRequests) > 0 {
		return run.PullRequests[0], true
	}
	return 0, false
}

func (s *TriageService) workflowName(run *models.Run) string {
	if run != nil && run.Name != "" {
		return run.Name
	}
	if name := s.payload.WorkflowRunName(); name != "" {
		return name
	}
	return s.config.GitHub.Workflow
}

func (s *TriageService) notify(t models.ProgressEventType, msg string, data map[string]interface{}) {
	if s.progress == nil {
		return
	}
	s.progress(models.ProgressEvent{Type: t, Message: msg, Data: data})
}

// BuildCommentBody assembles the pull request comment. The marker is always
// the first line.
func BuildCommentBody(trans *i18n.Translations, workflow, job, step, analysis string) string {
	header := trans.GetMessage("comment_header", 0, map[string]interface{}{
		"Workflow": workflow,
		"Job":      job,
		"Step":     step,
	})
	trailer := trans.GetMessage("comment_trailer", 0, nil)

	return strings.Join([]string{
		CommentMarker,
		header,
		"",
		analysis,
		"",
		trailer,
	}, "\n")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
