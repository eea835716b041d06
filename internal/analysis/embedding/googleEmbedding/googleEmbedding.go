package googleEmbedding

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/biolens/BioLensAPI/internal/analysis/embedding"
	"github.com/biolens/BioLensAPI/internal/config"
	"github.com/biolens/BioLensAPI/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client
var dimension int32 = config.EmbeddingOutputDimensionality

var errEmptyEmbedding = errors.New("embedding response carried no vectors")

type client struct {
	genAi *genai.Client
	model string
}

func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, modelName, apikey)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return &client{genAi: embeddingClient.genAi, model: embeddingClient.model}
}

func newGoogleEmbedder(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Google Embedding client:", "error", err)
	}
	if c != nil {
		embeddingClient = &client{
			genAi: c,
			model: modelName,
		}
		logger.Info("Google Embedding client created")
	}
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	result, err := c.doCall(ctx, query)
	if err != nil {
		if doRetry(err, log) {
			time.Sleep(5 * time.Second)
			log.Debug("Retrying embedding call")
			result, err = c.doCall(ctx, query)
		}
		if err != nil {
			log.Error("Error getting Embedding from Google", "error", err.Error())
			return nil, err
		}
	}

	vector, err := firstVector(result)
	if err != nil {
		log.Error("Embedding response unusable", "error", err)
		return nil, err
	}
	return vector, nil
}

func firstVector(result *genai.EmbedContentResponse) ([]float32, error) {
	if result == nil || len(result.Embeddings) == 0 || result.Embeddings[0] == nil {
		return nil, errEmptyEmbedding
	}
	if len(result.Embeddings[0].Values) == 0 {
		return nil, errEmptyEmbedding
	}
	return result.Embeddings[0].Values, nil
}

func (c *client) doCall(ctx context.Context, query string) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, genai.Text(query),
		&genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: "RETRIEVAL_DOCUMENT"})
}

func doRetry(err error, log *logger_i.Logger) bool {
	if s, ok := status.FromError(err); ok {
		if s.Code() == codes.ResourceExhausted {
			log.Error("Rate limit hit! ", "error", err)
			return true
		}
	}
	return false
}
