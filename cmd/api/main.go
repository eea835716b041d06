// @title           BioLens Blood Report API
// @version         1.0
// @description     This API handles asynchronous blood report analysis
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/biolens/BioLensAPI/internal/analysis"
	"github.com/biolens/BioLensAPI/internal/analysis/cascade"
	"github.com/biolens/BioLensAPI/internal/analysis/embedding/googleEmbedding"
	"github.com/biolens/BioLensAPI/internal/analysis/extract"
	"github.com/biolens/BioLensAPI/internal/analysis/knowledge"
	"github.com/biolens/BioLensAPI/internal/analysis/llm"
	"github.com/biolens/BioLensAPI/internal/analysis/llm/gemini"
	"github.com/biolens/BioLensAPI/internal/analysis/llm/groq"
	"github.com/biolens/BioLensAPI/internal/analysis/vectorDB/qdrantDB"
	"github.com/biolens/BioLensAPI/internal/config"
	"github.com/biolens/BioLensAPI/internal/data/store"
	jobmodel "github.com/biolens/BioLensAPI/internal/domain/jobModel"
	"github.com/biolens/BioLensAPI/internal/handlers"
	"github.com/biolens/BioLensAPI/internal/job"
	"github.com/biolens/BioLensAPI/internal/server"
	"github.com/biolens/BioLensAPI/internal/worker"
	"github.com/biolens/BioLensAPI/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and stores
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}

	jobStore := store.GetRedisJobStore(serviceContext)
	messageStore := store.GetRedisMessageStore(serviceContext)
	quotaStore := store.GetRedisQuotaStore(serviceContext)
	if jobStore == nil || messageStore == nil || quotaStore == nil {
		logger.Error("Redis stores are offline")
		if !config.FALLBACK_REDIS_TO_INTERNALSTORE {
			return
		}
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		serviceConfig.MessageStore = store.InitMessageStore()
		serviceConfig.QuotaStore = store.InitInMemoryQuotaStore()
	} else {
		serviceConfig.JobStore = jobStore
		serviceConfig.MessageStore = messageStore
		serviceConfig.QuotaStore = quotaStore
	}
	logger.Info("Starting job service")
	service := job.InitJobService(serviceConfig)

	//model backends; a missing key leaves that backend nil and the cascade
	//records a fatal attempt for its candidates
	providers := map[string]llm.Provider{
		"groq":   groq.GetGroqClient(config.GroqAPIKey()),
		"gemini": gemini.GetGeminiClient(serviceContext, config.GeminiAPIKey()),
	}
	if providers["groq"] == nil && providers["gemini"] == nil {
		logger.Error("No model backend could be initialized. Shutting down.")
		return
	}
	cascadeManager := cascade.NewManager(cascade.FromConfig(config.CascadeCandidates(), providers))

	//knowledge recall is optional; analyses run without it
	var recaller analysis.Recaller
	embeddingService := googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, config.GeminiAPIKey())
	insightIndex := qdrantDB.GetQdrantClient(serviceContext)
	if embeddingService != nil && insightIndex != nil {
		recaller = knowledge.NewService(embeddingService, insightIndex)
	} else {
		logger.Warn("Knowledge recall disabled", "EmbeddingService", embeddingService != nil, "InsightIndex", insightIndex != nil)
	}

	analysisService := analysis.NewService(extract.NewPDF(), cascadeManager, recaller)

	handlers.InitJobHandler(service)

	//init worker pool
	worker.InitServices(service, analysisService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
