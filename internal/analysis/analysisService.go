package analysis

import (
	"context"
	"errors"
	"os"

	"github.com/biolens/BioLensAPI/internal/analysis/cascade"
	"github.com/biolens/BioLensAPI/internal/analysis/prompt"
	"github.com/biolens/BioLensAPI/internal/analysis/validate"
	"github.com/biolens/BioLensAPI/internal/config"
	"github.com/biolens/BioLensAPI/internal/domain/jobModel"
	"github.com/biolens/BioLensAPI/internal/domain/reportModel"
	"github.com/biolens/BioLensAPI/pkg/logger_i"
)

// Service is all the worker sees. It does not know about PDFs, prompts or
// model backends, only that a job goes in and a finished job comes out.
type Service interface {
	ProcessAnalysis(ctx context.Context, job jobModel.Job, messageHistory []string) jobModel.Job
	ProcessChat(ctx context.Context, job jobModel.Job, messageHistory []string) jobModel.Job
}

// Extractor pulls the text out of a saved report file.
type Extractor interface {
	Extract(path string) (reportModel.ExtractedText, error)
}

// Invoker runs the prompt through the model cascade.
type Invoker interface {
	Invoke(ctx context.Context, system string, user string) (cascade.Result, error)
}

// Recaller surfaces snippets of prior insights and files new ones. May be nil
// when the knowledge index is not configured; analyses then run without it.
type Recaller interface {
	Recall(ctx context.Context, reportText string, patient reportModel.PatientInfo) ([]string, error)
	Save(ctx context.Context, reportText string, patient reportModel.PatientInfo, insight reportModel.Insight) error
}

type service struct {
	extractor Extractor
	invoker   Invoker
	recaller  Recaller
	logger    *logger_i.Logger
}

// NewService constructor. recaller may be nil.
func NewService(extractor Extractor, invoker Invoker, recaller Recaller) Service {
	return &service{
		extractor: extractor,
		invoker:   invoker,
		recaller:  recaller,
		logger:    logger_i.NewLogger("Analysis Service :"),
	}
}

// ProcessAnalysis runs the full report pipeline: validate the upload, extract
// its text, check it reads like a lab report, recall prior insights, build the
// prompt and walk the cascade. The same job with the same report always takes
// the same path through these steps.
func (s *service) ProcessAnalysis(ctx context.Context, jobt jobModel.Job, messageHistory []string) jobModel.Job {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY).(string), "JobId", jobt.Id)
	defer s.removeUpload(jobt.JobPayload.ReportPath, inMethodLogger)

	// Validation
	rejection, err := s.executeValidateStep(inMethodLogger, &jobt)
	if err != nil {
		return s.jobError(jobt, err, "UPLOAD_READ_FAILURE", false)
	}
	if rejection != nil {
		return s.rejectJob(jobt, rejection)
	}

	// Text extraction
	extracted, err := s.executeExtractStep(inMethodLogger, &jobt)
	if err != nil {
		var rej *reportModel.Rejection
		if errors.As(err, &rej) {
			return s.rejectJob(jobt, rej)
		}
		// unparseable or textless documents are the caller's to fix, not a fault
		inMethodLogger.Warn("Extraction failed", "error", err)
		return s.rejectJob(jobt, &reportModel.Rejection{
			Reason:  reportModel.Unreadable,
			Message: "Could not extract text from PDF. Please ensure it's not a scanned document.",
		})
	}
	if rejection = validate.ReportContent(extracted.Text); rejection != nil {
		return s.rejectJob(jobt, rejection)
	}

	// Prior insight recall, best effort
	recalled := s.executeRecallStep(ctx, inMethodLogger, &jobt, extracted.Text)

	// Prompt assembly
	priorContext := append(recalled, prompt.FormatHistory(messageHistory)...)
	built := s.executePromptStep(inMethodLogger, &jobt, extracted.Text, priorContext)

	// Model cascade
	result, err := s.executeCascadeStep(ctx, inMethodLogger, &jobt, built)
	if err != nil {
		return s.cascadeError(ctx, jobt, err)
	}

	insight := s.executeNormalizeStep(inMethodLogger, &jobt, result)

	// Background insight indexing
	if s.recaller != nil {
		go func() {
			saveCtx := context.WithValue(context.Background(), config.TRACE_ID_KEY, jobt.TraceId)
			if err := s.recaller.Save(saveCtx, extracted.Text, jobt.JobPayload.Patient, insight); err != nil {
				s.logger.Warn("Insight not saved to index", "error", err)
			}
		}()
	}

	return returnInsight(jobt, insight, result, built.Truncated)
}

// ProcessChat answers a follow-up question over the session history. No
// document is involved, so the pipeline is just prompt plus cascade.
func (s *service) ProcessChat(ctx context.Context, jobt jobModel.Job, messageHistory []string) jobModel.Job {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY).(string), "JobId", jobt.Id)

	jobt.CurrentStep = jobModel.PromptStep
	built := prompt.BuildFollowUp(jobt.JobPayload.Question, prompt.FormatHistory(messageHistory))

	result, err := s.executeCascadeStep(ctx, inMethodLogger, &jobt, built)
	if err != nil {
		return s.cascadeError(ctx, jobt, err)
	}

	insight := s.executeNormalizeStep(inMethodLogger, &jobt, result)
	return returnInsight(jobt, insight, result, built.Truncated)
}

func (s *service) removeUpload(path string, log *logger_i.Logger) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("Could not remove uploaded report", "path", path, "error", err)
	}
}
