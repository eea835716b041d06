package groq

import (
	"context"
	"errors"
	"sync"

	"github.com/biolens/BioLensAPI/internal/analysis/llm"
	"github.com/biolens/BioLensAPI/internal/config"
	"github.com/biolens/BioLensAPI/internal/customHttpClient"
	"github.com/biolens/BioLensAPI/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Groq exposes an OpenAI-compatible endpoint, so the openai client with a
// base-URL override serves all three Groq-hosted candidates.
type llmClient struct {
	client openai.Client
}

var logger *logger_i.Logger
var groqClient *llmClient
var once sync.Once

func GetGroqClient(apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_groq")
		newGroqClient(apikey)
	})

	if groqClient == nil {
		return nil
	}
	return groqClient
}

func newGroqClient(apikey string) {
	if apikey == "" {
		logger.Error("Groq API key is not set")
		return
	}

	c := openai.NewClient(
		option.WithAPIKey(apikey),
		option.WithBaseURL(config.GroqBaseURL),
		option.WithHTTPClient(customHttpClient.Pooled()),
	)
	groqClient = &llmClient{client: c}
	logger.Info("Groq client created")
}

func (c *llmClient) Generate(ctx context.Context, model string, system string, user string, params llm.GenerationParams) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "model", model)
	log.Debug("Groq generation call")

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(float64(params.Temperature)),
		MaxTokens:   openai.Int(params.MaxTokens),
	})
	if err != nil {
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			return "", &llm.BackendError{Status: apierr.StatusCode, Err: err}
		}
		return "", err
	}

	if len(completion.Choices) == 0 {
		return "", nil
	}
	return completion.Choices[0].Message.Content, nil
}
