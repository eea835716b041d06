package knowledge

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/biolens/BioLensAPI/internal/analysis/vectorDB"
	"github.com/biolens/BioLensAPI/internal/config"
	"github.com/biolens/BioLensAPI/internal/domain/reportModel"
)

type mockEmbedder struct {
	OnGetEmbedding func(ctx context.Context, text string) ([]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, text)
	}
	return []float32{0.1, 0.2}, nil
}

type mockIndex struct {
	saved    []vectorDB.InsightRecord
	OnSearch func(ctx context.Context, vector []float32, limit int) ([]vectorDB.InsightRecord, error)
}

func (m *mockIndex) SaveInsight(ctx context.Context, record vectorDB.InsightRecord, vector []float32) error {
	m.saved = append(m.saved, record)
	return nil
}

func (m *mockIndex) SearchInsights(ctx context.Context, vector []float32, limit int) ([]vectorDB.InsightRecord, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, vector, limit)
	}
	return nil, nil
}

func testCtx() context.Context {
	return context.WithValue(context.Background(), config.TRACE_ID_KEY, "knowledge-trace")
}

var testPatient = reportModel.PatientInfo{Name: "Jane Roe", Age: 42, Gender: "Female"}

func TestExtractIndicators(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "several indicators, fixed order",
			text: "Glucose 90 mg/dL. HEMOGLOBIN 13.2. LDL cholesterol 110.",
			want: []string{"hemoglobin", "glucose", "cholesterol", "ldl"},
		},
		{
			name: "no indicators",
			text: "a perfectly ordinary paragraph",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractIndicators(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("extractIndicators got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecall(t *testing.T) {
	index := &mockIndex{OnSearch: func(ctx context.Context, vector []float32, limit int) ([]vectorDB.InsightRecord, error) {
		if limit != config.MaxRecalledInsights {
			t.Errorf("limit got %d, want %d", limit, config.MaxRecalledInsights)
		}
		return []vectorDB.InsightRecord{
			{Profile: "42-female", Indicator: "glucose", Snippet: "glucose was slightly elevated"},
		}, nil
	}}

	s := NewService(&mockEmbedder{}, index)
	snippets, err := s.Recall(testCtx(), "Glucose 90 mg/dL", testPatient)
	if err != nil {
		t.Fatalf("Recall failed: %v", err)
	}
	if len(snippets) != 1 {
		t.Fatalf("got %d snippets, want 1", len(snippets))
	}
	if snippets[0] != "Prior insight (42-female, glucose): glucose was slightly elevated" {
		t.Errorf("snippet got %q", snippets[0])
	}
}

func TestRecall_NoIndicatorsSkipsIndex(t *testing.T) {
	embedderCalled := false
	embedder := &mockEmbedder{OnGetEmbedding: func(ctx context.Context, text string) ([]float32, error) {
		embedderCalled = true
		return nil, errors.New("should not be called")
	}}

	s := NewService(embedder, &mockIndex{})
	snippets, err := s.Recall(testCtx(), "nothing medical here", testPatient)
	if err != nil {
		t.Fatalf("Recall failed: %v", err)
	}
	if snippets != nil {
		t.Errorf("got snippets %v, want none", snippets)
	}
	if embedderCalled {
		t.Error("embedding was computed for a report without indicators")
	}
}

func TestSave_FilesUnderEachIndicator(t *testing.T) {
	index := &mockIndex{}
	s := NewService(&mockEmbedder{}, index)

	insight := reportModel.Insight{Summary: "Hemoglobin and glucose look fine."}
	err := s.Save(testCtx(), "Hemoglobin 13.2, glucose 90", testPatient, insight)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if len(index.saved) != 2 {
		t.Fatalf("got %d records, want 2", len(index.saved))
	}
	for _, record := range index.saved {
		if record.Profile != "42-female" {
			t.Errorf("Profile got %q, want 42-female", record.Profile)
		}
		if record.Snippet != insight.Summary {
			t.Errorf("Snippet got %q", record.Snippet)
		}
		if record.Id == "" {
			t.Error("record has no id")
		}
	}
}

func TestSave_NothingToIndex(t *testing.T) {
	index := &mockIndex{}
	s := NewService(&mockEmbedder{}, index)

	if err := s.Save(testCtx(), "no indicators here", testPatient, reportModel.Insight{Summary: "x"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Save(testCtx(), "glucose 90", testPatient, reportModel.Insight{}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if len(index.saved) != 0 {
		t.Errorf("indexed %d records, want 0", len(index.saved))
	}
}
