package config

import (
	"log/slog"
	"os"
	"time"
)

const (
	IS_PROD                         = false
	LOG_LEVEL_PROD                  = slog.LevelInfo
	FALLBACK_REDIS_TO_INTERNALSTORE = true //if redis init fails, it falls back to an in-memory store
	TRACE_ID_KEY                    = "traceId"
	RATE_LIMIT_PER_SECOND           = 2
	BURST_RATE_LIMIT_PER_SECOND     = 5

	//upload constraints for blood reports
	MaxUploadSizeBytes int64 = 20 << 20 //20MB
	AllowedMediaType         = "application/pdf"
	MaxReportPageCount       = 50

	//extracted content must look like a lab report before we spend a model call on it
	MinReportTextLength   = 50
	MinMedicalTermMatches = 3
	DailyAnalysisLimit    = 15
	QuotaWindow           = 24 * time.Hour

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//job-level deadline; per-candidate timeouts live in the cascade table below
	JobExecutionTimeout = 120 * time.Second

	//prompt budget in runes; the instruction template is never cut to fit it
	MaxPromptLength     = 24000
	MaxPriorContextTurn = 5

	//llm endpoints
	GroqBaseURL = "https://api.groq.com/openai/v1"

	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"

	DefaultModelTemperature float32 = 0.7
	DefaultModelMaxTokens   int64   = 2000
	DefaultModelTimeout             = 30 * time.Second

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//knowledge recall (qdrant)
	EmbeddingOutputDimensionality int32 = 1536
	InsightCollectionName               = "prior-insights"
	InsightSimilarityCutoff             = 0.80
	MaxRecalledInsights                 = 5

	QdrantHost             = "localhost"
	QdrantGrpcPort         = 6334
	QdrantUseTLS           = false
	QdrantPoolSize         = 1
	QdrantKeepAliveTimeout = 30 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisPassword = ""

	//redis has 16 DB we can use
	RedisJobStore     = 0
	RedisMessageStore = 1
	RedisQuotaStore   = 2

	//redis timeouts
	RedisJobStoreTTL     = 24 * time.Hour
	RedisMessageStoreTTL = 24 * time.Hour

	//auth
	NoAuthBypass = true //dev only; flip for deployments and set BIOLENS_AUTH_TOKEN
)

// ModelCandidate is one entry of the analysis cascade. The table is read once at
// startup and never reordered afterwards; priority is the slice position.
type ModelCandidate struct {
	ID          string
	Tier        string
	Provider    string
	Model       string
	Temperature float32
	MaxTokens   int64
	Timeout     time.Duration
}

// CascadeCandidates returns the ordered backend table, best model first:
// three Groq-hosted models, then Gemini as the last resort.
func CascadeCandidates() []ModelCandidate {
	return []ModelCandidate{
		{
			ID:          "groq/llama-3.3-70b-versatile",
			Tier:        "primary",
			Provider:    "groq",
			Model:       "llama-3.3-70b-versatile",
			Temperature: DefaultModelTemperature,
			MaxTokens:   DefaultModelMaxTokens,
			Timeout:     DefaultModelTimeout,
		},
		{
			ID:          "groq/llama-3-8b-8192",
			Tier:        "secondary",
			Provider:    "groq",
			Model:       "llama-3-8b-8192",
			Temperature: DefaultModelTemperature,
			MaxTokens:   DefaultModelMaxTokens,
			Timeout:     DefaultModelTimeout,
		},
		{
			ID:          "groq/mixtral-8x7b-32768",
			Tier:        "tertiary",
			Provider:    "groq",
			Model:       "mixtral-8x7b-32768",
			Temperature: DefaultModelTemperature,
			MaxTokens:   DefaultModelMaxTokens,
			Timeout:     DefaultModelTimeout,
		},
		{
			ID:          "gemini/" + GeminiModelName,
			Tier:        "fallback",
			Provider:    "gemini",
			Model:       GeminiModelName,
			Temperature: DefaultModelTemperature,
			MaxTokens:   DefaultModelMaxTokens,
			Timeout:     DefaultModelTimeout,
		},
	}
}

func GroqAPIKey() string {
	return os.Getenv("GROQ_API_KEY")
}

func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

func AuthToken() string {
	return os.Getenv("BIOLENS_AUTH_TOKEN")
}
