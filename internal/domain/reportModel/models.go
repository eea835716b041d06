package reportModel

import "time"

// UploadedDocument is the raw upload plus what the client declared about it.
// It lives for one request and is discarded after extraction.
type UploadedDocument struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Size      int64  `json:"size"`
	Content   []byte `json:"-"`
}

type RejectionReason string

const (
	UnsupportedType  RejectionReason = "UnsupportedType"
	TooLarge         RejectionReason = "TooLarge"
	Empty            RejectionReason = "Empty"
	TooManyPages     RejectionReason = "TooManyPages"
	Unreadable       RejectionReason = "Unreadable"
	NotMedicalReport RejectionReason = "NotMedicalReport"
)

// Rejection is a classified refusal of an upload. The message is safe to show
// to the user as-is.
type Rejection struct {
	Reason  RejectionReason `json:"reason"`
	Message string          `json:"message"`
}

func (r *Rejection) Error() string {
	return r.Message
}

// ExtractedText is the page-ordered text recovered from a document.
type ExtractedText struct {
	Pages     []string `json:"pages"`
	Text      string   `json:"text"`
	PageCount int      `json:"page_count"`
}

type PatientInfo struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

type AttemptOutcome string

const (
	OutcomeSuccess   AttemptOutcome = "success"
	OutcomeTransient AttemptOutcome = "transient_failure"
	OutcomeFatal     AttemptOutcome = "fatal_failure"
)

// CascadeAttempt records one candidate invocation during a single analysis.
// The trail exists only for the lifetime of the request it diagnoses.
type CascadeAttempt struct {
	Candidate string         `json:"candidate"`
	Tier      string         `json:"tier"`
	Outcome   AttemptOutcome `json:"outcome"`
	Reason    string         `json:"reason,omitempty"`
	Latency   time.Duration  `json:"latency_ns"`
}

// Insight is the normalized model output. When the model honored the sectioned
// template the four fields are populated; otherwise FreeText carries the whole
// answer. Raw always keeps the untouched response for auditing.
type Insight struct {
	Summary         string `json:"summary,omitempty"`
	KeyFindings     string `json:"key_findings,omitempty"`
	PotentialRisks  string `json:"potential_risks,omitempty"`
	Recommendations string `json:"recommendations,omitempty"`
	FreeText        string `json:"free_text,omitempty"`
	Raw             string `json:"raw"`
}
