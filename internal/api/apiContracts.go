package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	ChatId    string            `json:"chat_id" example:"chat_550"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

// InsightResponse is the normalized analysis a completed job carries. The
// sections mirror the markdown headings the models are instructed to emit.
type InsightResponse struct {
	Summary         string `json:"summary,omitempty"`
	KeyFindings     string `json:"key_findings,omitempty"`
	PotentialRisks  string `json:"potential_risks,omitempty"`
	Recommendations string `json:"recommendations,omitempty"`
	FreeText        string `json:"free_text,omitempty"`
}

type AttemptResponse struct {
	Candidate string `json:"candidate" example:"groq/llama-3.3-70b-versatile"`
	Tier      string `json:"tier" example:"primary"`
	Outcome   string `json:"outcome" example:"transient_failure"`
	Reason    string `json:"reason,omitempty" example:"rate limited"`
	LatencyMs int64  `json:"latency_ms" example:"412"`
}

type AnalysisResponse struct {
	Question  string            `json:"question,omitempty"`
	Insight   *InsightResponse  `json:"insight,omitempty"`
	ModelUsed string            `json:"model_used,omitempty"`
	Attempts  []AttemptResponse `json:"attempts,omitempty"`
	Truncated bool              `json:"truncated,omitempty"`
}

type Result struct {
	Status           string            `json:"status"`
	AnalysisResponse *AnalysisResponse `json:"analysis,omitempty"`
}

type HistoryResponse struct {
	ChatId string             `json:"chat_id"`
	Turns  []AnalysisResponse `json:"turns"`
}

type InitJobResponse struct {
	Id                string `json:"id"`
	StatusURL         string `json:"status_url"`
	AnalysesRemaining int    `json:"analyses_remaining,omitempty"`
}

// requests---------------------

type ChatRequest struct {
	Message string `json:"message" validate:"required" `
	ChatID  string `json:"chatID" validate:"required" `
}

type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}
