package validate

import (
	"strings"
	"testing"

	"github.com/biolens/BioLensAPI/internal/config"
	"github.com/biolens/BioLensAPI/internal/domain/reportModel"
)

func TestDocument(t *testing.T) {
	tests := []struct {
		name       string
		doc        reportModel.UploadedDocument
		wantReason reportModel.RejectionReason
	}{
		{
			name: "valid pdf",
			doc: reportModel.UploadedDocument{
				Name:      "report.pdf",
				MediaType: "application/pdf",
				Size:      1024,
				Content:   []byte("%PDF-1.4"),
			},
		},
		{
			name: "wrong media type",
			doc: reportModel.UploadedDocument{
				Name:      "report.docx",
				MediaType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
				Size:      1024,
				Content:   []byte("x"),
			},
			wantReason: reportModel.UnsupportedType,
		},
		{
			name: "too large",
			doc: reportModel.UploadedDocument{
				Name:      "report.pdf",
				MediaType: "application/pdf",
				Size:      config.MaxUploadSizeBytes + 1,
				Content:   []byte("x"),
			},
			wantReason: reportModel.TooLarge,
		},
		{
			name: "empty upload",
			doc: reportModel.UploadedDocument{
				Name:      "report.pdf",
				MediaType: "application/pdf",
				Size:      0,
			},
			wantReason: reportModel.Empty,
		},
		{
			// type is checked before size, the rejection must say so
			name: "wrong type and too large",
			doc: reportModel.UploadedDocument{
				Name:      "report.txt",
				MediaType: "text/plain",
				Size:      config.MaxUploadSizeBytes + 1,
				Content:   []byte("x"),
			},
			wantReason: reportModel.UnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rejection := Document(tt.doc)
			if tt.wantReason == "" {
				if rejection != nil {
					t.Fatalf("want acceptance, got rejection %+v", rejection)
				}
				return
			}
			if rejection == nil {
				t.Fatal("want rejection, got acceptance")
			}
			if rejection.Reason != tt.wantReason {
				t.Errorf("Reason got %s, want %s", rejection.Reason, tt.wantReason)
			}
			if rejection.Message == "" {
				t.Error("rejection carries no message")
			}
		})
	}
}

func TestReportContent(t *testing.T) {
	medical := "Laboratory blood test report for patient. Hemoglobin 13.2 g/dL, reference range 12-16. Glucose 90 mg/dL."

	tests := []struct {
		name       string
		text       string
		wantReject bool
	}{
		{"valid report text", medical, false},
		{"too short", "blood test", true},
		{"long but not medical", strings.Repeat("the quick brown fox jumps over the lazy dog ", 5), true},
		{"whitespace only", "   \n\t  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rejection := ReportContent(tt.text)
			if tt.wantReject && rejection == nil {
				t.Error("want rejection, got acceptance")
			}
			if !tt.wantReject && rejection != nil {
				t.Errorf("want acceptance, got rejection %+v", rejection)
			}
			if rejection != nil && rejection.Reason != reportModel.NotMedicalReport {
				t.Errorf("Reason got %s, want %s", rejection.Reason, reportModel.NotMedicalReport)
			}
		})
	}
}
