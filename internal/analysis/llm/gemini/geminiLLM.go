package gemini

import (
	"context"
	"errors"
	"sync"

	"github.com/biolens/BioLensAPI/internal/analysis/llm"
	"github.com/biolens/BioLensAPI/internal/config"
	"github.com/biolens/BioLensAPI/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client *genai.Client
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, apikey)
	})

	if geminiClient == nil {
		return nil
	}
	return geminiClient
}

func newGeminiClient(ctx context.Context, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
	}
	if c != nil {
		geminiClient = &llmClient{client: c}
		logger.Info("Gemini client created")
		go closeClient(ctx, geminiClient)
	}
}

func (c *llmClient) Generate(ctx context.Context, model string, system string, user string, params llm.GenerationParams) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "model", model)
	log.Debug("Gemini generation call")

	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: system},
			},
		},
		Temperature:     genai.Ptr(params.Temperature),
		MaxOutputTokens: int32(params.MaxTokens),
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		model,
		genai.Text(user),
		contentConfig,
	)
	if err != nil {
		var apierr genai.APIError
		if errors.As(err, &apierr) {
			return "", &llm.BackendError{Status: apierr.Code, Err: err}
		}
		return "", err
	}

	return result.Text(), nil
}

func closeClient(ctx context.Context, llm *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	llm.client = nil
}
