package adapter

import (
	"fmt"
	"time"

	"github.com/biolens/BioLensAPI/internal/api"
	"github.com/biolens/BioLensAPI/internal/domain/jobModel"
	"github.com/biolens/BioLensAPI/internal/domain/reportModel"
)

func ToInitJobResponse(id string, remaining int) api.InitJobResponse {
	return api.InitJobResponse{
		Id:                id,
		StatusURL:         fmt.Sprintf("status/%s", id),
		AnalysesRemaining: remaining,
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:           string(job.Status),
		AnalysisResponse: ToAnalysisResponse(job.JobPayload),
	}

	return api.JobResponse{
		Id:        job.Id,
		ChatId:    job.ChatId,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToAnalysisResponse(payload jobModel.JobPayload) *api.AnalysisResponse {
	if payload.Insight == nil && len(payload.Attempts) == 0 {
		return nil
	}

	return &api.AnalysisResponse{
		Question:  payload.Question,
		Insight:   toInsightResponse(payload.Insight),
		ModelUsed: payload.ModelUsed,
		Attempts:  toAttemptResponses(payload.Attempts),
		Truncated: payload.Truncated,
	}
}

func toInsightResponse(insight *reportModel.Insight) *api.InsightResponse {
	if insight == nil {
		return nil
	}
	return &api.InsightResponse{
		Summary:         insight.Summary,
		KeyFindings:     insight.KeyFindings,
		PotentialRisks:  insight.PotentialRisks,
		Recommendations: insight.Recommendations,
		FreeText:        insight.FreeText,
	}
}

func toAttemptResponses(attempts []reportModel.CascadeAttempt) []api.AttemptResponse {
	if len(attempts) == 0 {
		return nil
	}
	out := make([]api.AttemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		out = append(out, api.AttemptResponse{
			Candidate: attempt.Candidate,
			Tier:      attempt.Tier,
			Outcome:   string(attempt.Outcome),
			Reason:    attempt.Reason,
			LatencyMs: attempt.Latency.Milliseconds(),
		})
	}
	return out
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		ChatId:    "",
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status:           string(api.JobStatusError),
			AnalysisResponse: ToAnalysisResponse(jobModel.JobPayload{}),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
