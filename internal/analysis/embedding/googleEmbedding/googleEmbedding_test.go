package googleEmbedding

import (
	"errors"
	"testing"

	"google.golang.org/genai"
)

func TestFirstVector(t *testing.T) {
	tests := []struct {
		name    string
		result  *genai.EmbedContentResponse
		want    []float32
		wantErr bool
	}{
		{
			name:    "nil response",
			result:  nil,
			wantErr: true,
		},
		{
			name:    "no embeddings",
			result:  &genai.EmbedContentResponse{},
			wantErr: true,
		},
		{
			name:    "nil first embedding",
			result:  &genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{nil}},
			wantErr: true,
		},
		{
			name:    "empty vector",
			result:  &genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{{}}},
			wantErr: true,
		},
		{
			name:   "vector present",
			result: &genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{{Values: []float32{0.1, 0.2}}}},
			want:   []float32{0.1, 0.2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := firstVector(tt.result)
			if tt.wantErr {
				if !errors.Is(err, errEmptyEmbedding) {
					t.Errorf("error got %v, want errEmptyEmbedding", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("firstVector failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("vector length got %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("vector[%d] got %f, want %f", i, got[i], tt.want[i])
				}
			}
		})
	}
}
