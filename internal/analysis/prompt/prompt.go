package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/biolens/BioLensAPI/internal/config"
	"github.com/biolens/BioLensAPI/internal/domain/jobModel"
	"github.com/biolens/BioLensAPI/internal/domain/reportModel"
)

// instructionTemplate is the fixed analysis instruction. It is never truncated:
// the length budget is spent on prior context first, then on the report tail.
const instructionTemplate = `You are BioLens, an AI assistant that reviews blood test reports and explains them in plain language.

Analyze the blood report you are given for the described patient. Compare every value against its reference range and call out anything outside it.

Structure your answer in markdown with exactly these sections:
## Summary
## Key Findings
## Potential Risks
## Recommendations

Keep a professional tone, do not invent values that are not present in the report, and remind the reader that this analysis is not a substitute for advice from a doctor.`

const followUpTemplate = `You are BioLens, an AI assistant discussing a blood test report you analyzed earlier in this session.

Answer the user's follow-up question using the prior discussion as context. Keep a professional tone, do not invent values, and remind the reader that this is not a substitute for advice from a doctor.`

const maxHistoryItemLength = 200

type Prompt struct {
	System    string
	User      string
	Truncated bool
}

// Build assembles the analysis prompt. Same inputs always produce the same
// prompt. When the rune budget is exceeded, least-recent prior context is
// dropped first, then the tail of the report text.
func Build(patient reportModel.PatientInfo, reportText string, priorContext []string) Prompt {
	return assemble(instructionTemplate, patientBlock(patient), priorContext, "Blood report:\n", reportText)
}

// BuildFollowUp assembles a chat-turn prompt over the session history. The
// question plays the role of the report: prior context is dropped first, then
// the question tail.
func BuildFollowUp(question string, priorContext []string) Prompt {
	return assemble(followUpTemplate, "", priorContext, "Question:\n", question)
}

func assemble(template string, header string, priorContext []string, bodyHeading string, body string) Prompt {
	budget := config.MaxPromptLength - utf8.RuneCountInString(template)
	truncated := false

	prior := make([]string, len(priorContext))
	copy(prior, priorContext)

	for len(prior) > 0 && utf8.RuneCountInString(render(header, prior, bodyHeading, body)) > budget {
		prior = prior[1:]
		truncated = true
	}

	if overflow := utf8.RuneCountInString(render(header, prior, bodyHeading, body)) - budget; overflow > 0 {
		bodyRunes := []rune(body)
		if overflow < len(bodyRunes) {
			body = string(bodyRunes[:len(bodyRunes)-overflow])
		} else {
			body = ""
		}
		truncated = true
	}

	return Prompt{
		System:    template,
		User:      render(header, prior, bodyHeading, body),
		Truncated: truncated,
	}
}

func render(header string, prior []string, bodyHeading string, body string) string {
	var b strings.Builder
	if header != "" {
		b.WriteString(header)
		b.WriteString("\n")
	}
	if len(prior) > 0 {
		b.WriteString("Previous discussion:\n")
		b.WriteString(strings.Join(prior, "\n"))
		b.WriteString("\n\n")
	}
	b.WriteString(bodyHeading)
	b.WriteString(body)
	return b.String()
}

func patientBlock(patient reportModel.PatientInfo) string {
	return fmt.Sprintf("Patient: %s\nAge: %d\nGender: %s", patient.Name, patient.Age, patient.Gender)
}

// FormatHistory turns stored session payloads into compact prompt context,
// oldest first. Each side of a turn is capped so old analyses cannot blow the
// token budget on their own.
func FormatHistory(rawHistory []string) []string {
	start := 0
	if len(rawHistory) > config.MaxPriorContextTurn {
		start = len(rawHistory) - config.MaxPriorContextTurn
	}

	var turns []string
	for _, raw := range rawHistory[start:] {
		var payload jobModel.JobPayload
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			continue
		}

		userSide := payload.Question
		if userSide == "" && payload.Patient.Name != "" {
			userSide = fmt.Sprintf("Analyzing report for patient: %s", payload.Patient.Name)
		}
		assistantSide := insightText(payload.Insight)
		if userSide == "" && assistantSide == "" {
			continue
		}

		turns = append(turns, fmt.Sprintf("User: %s\nAssistant: %s", clip(userSide), clip(assistantSide)))
	}
	return turns
}

func insightText(insight *reportModel.Insight) string {
	if insight == nil {
		return ""
	}
	if insight.Summary != "" {
		return insight.Summary
	}
	if insight.FreeText != "" {
		return insight.FreeText
	}
	return insight.Raw
}

func clip(s string) string {
	runes := []rune(s)
	if len(runes) <= maxHistoryItemLength {
		return s
	}
	return string(runes[:maxHistoryItemLength-3]) + "..."
}
