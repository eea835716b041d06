package jobModel

import (
	"context"
	"time"

	"github.com/biolens/BioLensAPI/internal/domain/reportModel"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	AnalysisInit  InternalStatus = "Init"
	ValidateStep  InternalStatus = "Validate"
	ExtractStep   InternalStatus = "Extract"
	RecallStep    InternalStatus = "KnowledgeRecall"
	PromptStep    InternalStatus = "Prompt"
	CascadeStep   InternalStatus = "Cascade"
	NormalizeStep InternalStatus = "Normalize"
	RedisCall     InternalStatus = "Redis"
	Error         InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeAnalysis JobType = "Analysis"
	JobTypeChat     JobType = "Chat"
)

type Job struct {
	Id          string         `json:"id"`
	ChatId      string         `json:"chat_id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	Patient reportModel.PatientInfo `json:"patient,omitempty"`

	ReportFileName    string `json:"report_file_name,omitempty"`
	ReportPath        string `json:"report_path,omitempty"`
	DeclaredMediaType string `json:"declared_media_type,omitempty"`
	DeclaredSize      int64  `json:"declared_size,omitempty"`

	//follow-up chat turn, no document attached
	Question string `json:"question,omitempty"`

	Insight   *reportModel.Insight          `json:"insight,omitempty"`
	ModelUsed string                        `json:"model_used,omitempty"`
	Attempts  []reportModel.CascadeAttempt  `json:"attempts,omitempty"`
	Truncated bool                          `json:"truncated,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}

type MessageStore interface {
	ValidateChatId(ctx context.Context, id string) bool
	TrySaveChat(ctx context.Context, id string, JobPayload JobPayload) error
	InitNewChat(ctx context.Context, id string) error
	GetMessageHistory(ctx context.Context, chatId string) (error, []string)
}

// QuotaStore meters analyses per caller per rolling day.
type QuotaStore interface {
	Allow(ctx context.Context, callerKey string) (remaining int, allowed bool, err error)
}
