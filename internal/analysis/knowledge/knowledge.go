package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/biolens/BioLensAPI/internal/analysis/embedding"
	"github.com/biolens/BioLensAPI/internal/analysis/vectorDB"
	"github.com/biolens/BioLensAPI/internal/config"
	"github.com/biolens/BioLensAPI/internal/domain/reportModel"
	"github.com/biolens/BioLensAPI/pkg/logger_i"
	"github.com/google/uuid"
)

// indicators we index past insights under; a report mentioning none of these
// still analyzes fine, it just gets no recalled context.
var keyIndicators = []string{
	"hemoglobin",
	"glucose",
	"cholesterol",
	"triglycerides",
	"hdl",
	"ldl",
	"wbc",
	"rbc",
	"platelet",
	"creatinine",
}

const maxSnippetLength = 500

// Service recalls snippets of previously generated insights that match the
// current report, and files new insights back into the index. Both directions
// are best effort: a recall miss or index outage never fails an analysis.
type Service struct {
	embedder embedding.Embedder
	index    vectorDB.InsightIndex
	logger   *logger_i.Logger
}

func NewService(embedder embedding.Embedder, index vectorDB.InsightIndex) *Service {
	return &Service{
		embedder: embedder,
		index:    index,
		logger:   logger_i.NewLogger("Knowledge"),
	}
}

// Recall returns snippets from prior insights whose indicator profile matches
// the report. The caller folds these into the prompt as prior context.
func (s *Service) Recall(ctx context.Context, reportText string, patient reportModel.PatientInfo) ([]string, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	indicators := extractIndicators(reportText)
	if len(indicators) == 0 {
		log.Debug("No key indicators in report, skipping recall")
		return nil, nil
	}

	query := recallQuery(patient, indicators)
	vector, err := s.embedder.GetEmbedding(ctx, query)
	if err != nil {
		log.Warn("Embedding failed, continuing without recall", "error", err)
		return nil, err
	}

	records, err := s.index.SearchInsights(ctx, vector, config.MaxRecalledInsights)
	if err != nil {
		log.Warn("Insight search failed, continuing without recall", "error", err)
		return nil, err
	}

	var snippets []string
	for _, rec := range records {
		snippets = append(snippets, fmt.Sprintf("Prior insight (%s, %s): %s", rec.Profile, rec.Indicator, rec.Snippet))
	}
	log.Debug("Recall complete", "indicators", len(indicators), "snippets", len(snippets))
	return snippets, nil
}

// Save files the freshly generated insight under each indicator the report
// mentioned, so later analyses of similar reports can recall it.
func (s *Service) Save(ctx context.Context, reportText string, patient reportModel.PatientInfo, insight reportModel.Insight) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	indicators := extractIndicators(reportText)
	if len(indicators) == 0 {
		return nil
	}

	snippet := insightSnippet(insight)
	if snippet == "" {
		return nil
	}

	vector, err := s.embedder.GetEmbedding(ctx, recallQuery(patient, indicators))
	if err != nil {
		log.Warn("Embedding failed, insight not indexed", "error", err)
		return err
	}

	profile := profileOf(patient)
	for _, indicator := range indicators {
		err = s.index.SaveInsight(ctx, vectorDB.InsightRecord{
			Id:        uuid.NewString(),
			Profile:   profile,
			Indicator: indicator,
			Snippet:   snippet,
		}, vector)
		if err != nil {
			log.Warn("Insight not indexed", "indicator", indicator, "error", err)
			return err
		}
	}
	return nil
}

// extractIndicators returns the key indicators the report text mentions, in
// the fixed keyIndicators order so output is deterministic.
func extractIndicators(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, indicator := range keyIndicators {
		if strings.Contains(lower, indicator) {
			found = append(found, indicator)
		}
	}
	return found
}

func profileOf(patient reportModel.PatientInfo) string {
	return fmt.Sprintf("%d-%s", patient.Age, strings.ToLower(patient.Gender))
}

func recallQuery(patient reportModel.PatientInfo, indicators []string) string {
	return fmt.Sprintf("blood report %s %s", profileOf(patient), strings.Join(indicators, " "))
}

func insightSnippet(insight reportModel.Insight) string {
	text := insight.Summary
	if text == "" {
		text = insight.FreeText
	}
	if text == "" {
		text = insight.Raw
	}
	runes := []rune(strings.TrimSpace(text))
	if len(runes) > maxSnippetLength {
		return string(runes[:maxSnippetLength]) + "..."
	}
	return string(runes)
}
