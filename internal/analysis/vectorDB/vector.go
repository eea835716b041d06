package vectorDB

import "context"

// InsightRecord is one remembered snippet of a past analysis, keyed by the
// health indicator it talks about and the patient profile it was written for.
type InsightRecord struct {
	Id        string
	Profile   string
	Indicator string
	Snippet   string
}

type InsightIndex interface {
	SaveInsight(ctx context.Context, record InsightRecord, vector []float32) error
	SearchInsights(ctx context.Context, vector []float32, limit int) ([]InsightRecord, error)
}
