package validate

import (
	"fmt"
	"strings"

	"github.com/biolens/BioLensAPI/internal/config"
	"github.com/biolens/BioLensAPI/internal/domain/reportModel"
)

// medicalTerms is the vocabulary an extracted report is screened against
// before any model call is spent on it.
var medicalTerms = []string{
	"blood", "test", "report", "laboratory", "lab", "patient", "specimen",
	"reference range", "analysis", "results", "medical", "diagnostic",
	"hemoglobin", "wbc", "rbc", "platelet", "glucose", "creatinine",
}

// Document checks an upload against the intake constraints, in order: media
// type, size, emptiness. It fails fast on the first violation and has no side
// effects; nothing downstream runs on a rejected document.
func Document(doc reportModel.UploadedDocument) *reportModel.Rejection {
	if doc.MediaType != config.AllowedMediaType {
		return &reportModel.Rejection{
			Reason:  reportModel.UnsupportedType,
			Message: "Invalid file type. Please upload a PDF file",
		}
	}

	if doc.Size > config.MaxUploadSizeBytes {
		return &reportModel.Rejection{
			Reason:  reportModel.TooLarge,
			Message: fmt.Sprintf("File size (%.1fMB) exceeds the %dMB limit", float64(doc.Size)/(1<<20), config.MaxUploadSizeBytes>>20),
		}
	}

	if len(doc.Content) == 0 {
		return &reportModel.Rejection{
			Reason:  reportModel.Empty,
			Message: "No file uploaded",
		}
	}

	return nil
}

// ReportContent checks whether extracted text plausibly is a medical report.
func ReportContent(text string) *reportModel.Rejection {
	if len(strings.TrimSpace(text)) < config.MinReportTextLength {
		return &reportModel.Rejection{
			Reason:  reportModel.NotMedicalReport,
			Message: "Extracted text is too short. Please ensure the PDF contains valid text.",
		}
	}

	lower := strings.ToLower(text)
	matches := 0
	for _, term := range medicalTerms {
		if strings.Contains(lower, term) {
			matches++
		}
	}
	if matches < config.MinMedicalTermMatches {
		return &reportModel.Rejection{
			Reason:  reportModel.NotMedicalReport,
			Message: "The uploaded file doesn't appear to be a medical report. Please upload a valid medical report.",
		}
	}

	return nil
}
