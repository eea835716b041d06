package analysis

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/biolens/BioLensAPI/internal/analysis/cascade"
	"github.com/biolens/BioLensAPI/internal/analysis/prompt"
	"github.com/biolens/BioLensAPI/internal/analysis/validate"
	"github.com/biolens/BioLensAPI/internal/domain/jobModel"
	"github.com/biolens/BioLensAPI/internal/domain/reportModel"
	"github.com/biolens/BioLensAPI/internal/metrics"
	"github.com/biolens/BioLensAPI/pkg/logger_i"
)

func returnInsight(job jobModel.Job, insight reportModel.Insight, result cascade.Result, truncated bool) jobModel.Job {
	job.JobPayload.Insight = &insight
	job.JobPayload.ModelUsed = result.Candidate
	job.JobPayload.Attempts = result.Attempts
	job.JobPayload.Truncated = truncated
	job.CurrentStep = jobModel.Complete
	return job
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("ProcessAnalysis", "Current Status", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string, canRetry bool) jobModel.Job {
	s.logger.Error(message, "error", err)

	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: "Internal Server Error",
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	return job
}

// rejectJob ends the job with the rejection's own message. These are the
// caller's problem to fix, so Retry is always false.
func (s *service) rejectJob(job jobModel.Job, rejection *reportModel.Rejection) jobModel.Job {
	s.logger.Warn("Report rejected", "reason", rejection.Reason, "JobId", job.Id)

	job.Error = jobModel.JobError{
		Code:    http.StatusUnprocessableEntity,
		Message: rejection.Message,
		Retry:   false,
	}
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	return job
}

// cascadeError maps the two ways the cascade can fail. An abandoned run keeps
// no attempt trail; an exhausted one surfaces the full trail for /status.
func (s *service) cascadeError(ctx context.Context, job jobModel.Job, err error) jobModel.Job {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		s.logger.Warn("Analysis abandoned", "JobId", job.Id, "error", err)
		job.Error = jobModel.JobError{
			Code:    http.StatusServiceUnavailable,
			Message: "Analysis was interrupted, try again later",
			Retry:   true,
		}
		job.Status = jobModel.JobStatusError
		return job
	}

	var exhausted *cascade.ExhaustedError
	if errors.As(err, &exhausted) {
		s.logger.Error("All model backends failed", "JobId", job.Id, "attempts", len(exhausted.Attempts))
		job.JobPayload.Attempts = exhausted.Attempts
		job.Error = jobModel.JobError{
			Code:    http.StatusServiceUnavailable,
			Message: "No model is available right now, try again later",
			Retry:   true,
		}
		job.Status = jobModel.JobStatusError
		return job
	}

	return s.jobError(job, err, "CASCADE_FAILURE", true)
}

func (s *service) executeValidateStep(log *logger_i.Logger, job *jobModel.Job) (*reportModel.Rejection, error) {
	*job = logOutput(*job, jobModel.ValidateStep, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("validate", time.Since(start)) }()

	content, err := os.ReadFile(job.JobPayload.ReportPath)
	if err != nil {
		return nil, err
	}

	return validate.Document(reportModel.UploadedDocument{
		Name:      job.JobPayload.ReportFileName,
		MediaType: job.JobPayload.DeclaredMediaType,
		Size:      job.JobPayload.DeclaredSize,
		Content:   content,
	}), nil
}

func (s *service) executeExtractStep(log *logger_i.Logger, job *jobModel.Job) (reportModel.ExtractedText, error) {
	*job = logOutput(*job, jobModel.ExtractStep, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("extract", time.Since(start)) }()

	return s.extractor.Extract(job.JobPayload.ReportPath)
}

func (s *service) executeRecallStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, reportText string) []string {
	if s.recaller == nil {
		return nil
	}
	*job = logOutput(*job, jobModel.RecallStep, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("knowledge_recall", time.Since(start)) }()

	snippets, err := s.recaller.Recall(ctx, reportText, job.JobPayload.Patient)
	if err != nil {
		// recall never blocks an analysis
		log.Warn("Recall unavailable", "error", err)
		return nil
	}
	return snippets
}

func (s *service) executePromptStep(log *logger_i.Logger, job *jobModel.Job, reportText string, priorContext []string) prompt.Prompt {
	*job = logOutput(*job, jobModel.PromptStep, log)
	return prompt.Build(job.JobPayload.Patient, reportText, priorContext)
}

func (s *service) executeCascadeStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, built prompt.Prompt) (cascade.Result, error) {
	*job = logOutput(*job, jobModel.CascadeStep, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cascade", time.Since(start)) }()

	return s.invoker.Invoke(ctx, built.System, built.User)
}

func (s *service) executeNormalizeStep(log *logger_i.Logger, job *jobModel.Job, result cascade.Result) reportModel.Insight {
	*job = logOutput(*job, jobModel.NormalizeStep, log)
	return parseInsight(result.Content)
}
