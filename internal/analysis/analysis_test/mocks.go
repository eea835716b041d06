package analysis_test

import (
	"context"
	"sync/atomic"

	"github.com/biolens/BioLensAPI/internal/analysis/cascade"
	"github.com/biolens/BioLensAPI/internal/domain/reportModel"
)

// MockExtractor implements analysis.Extractor
type MockExtractor struct {
	OnExtract func(path string) (reportModel.ExtractedText, error)
}

func (m *MockExtractor) Extract(path string) (reportModel.ExtractedText, error) {
	if m.OnExtract != nil {
		return m.OnExtract(path)
	}
	return reportModel.ExtractedText{}, nil
}

// MockInvoker implements analysis.Invoker
type MockInvoker struct {
	OnInvoke func(ctx context.Context, system string, user string) (cascade.Result, error)
	Calls    int32
}

func (m *MockInvoker) Invoke(ctx context.Context, system string, user string) (cascade.Result, error) {
	atomic.AddInt32(&m.Calls, 1)
	if m.OnInvoke != nil {
		return m.OnInvoke(ctx, system, user)
	}
	return cascade.Result{Content: "mocked insight", Candidate: "mock/model"}, nil
}

// MockRecaller implements analysis.Recaller
type MockRecaller struct {
	OnRecall func(ctx context.Context, reportText string, patient reportModel.PatientInfo) ([]string, error)
	OnSave   func(ctx context.Context, reportText string, patient reportModel.PatientInfo, insight reportModel.Insight) error
}

func (m *MockRecaller) Recall(ctx context.Context, reportText string, patient reportModel.PatientInfo) ([]string, error) {
	if m.OnRecall != nil {
		return m.OnRecall(ctx, reportText, patient)
	}
	return nil, nil
}

func (m *MockRecaller) Save(ctx context.Context, reportText string, patient reportModel.PatientInfo, insight reportModel.Insight) error {
	if m.OnSave != nil {
		return m.OnSave(ctx, reportText, patient, insight)
	}
	return nil
}
