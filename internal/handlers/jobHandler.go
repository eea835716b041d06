package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/biolens/BioLensAPI/internal/api"
	"github.com/biolens/BioLensAPI/internal/config"
	"github.com/biolens/BioLensAPI/internal/domain/jobModel"
	"github.com/biolens/BioLensAPI/internal/domain/reportModel"
	"github.com/biolens/BioLensAPI/internal/job"
	"github.com/biolens/BioLensAPI/internal/metrics"
	"github.com/biolens/BioLensAPI/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service *job.Service
}

func InitJobHandler(jobService *job.Service) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})

}

func CreateNewJob(newJob newJobData) {
	logJH.With("traceId", newJob.traceId, "job id", newJob.id)
	logJH.Info("To create new job")
	handlerInstance.pushToJobChannel(newJob)
	if newJob.isNewChat {
		logJH.Info("Create new chat")
		handlerInstance.initNewChat(newJob.chatId, newJob.traceId)
	}
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

// CheckQuota spends one unit of the caller's daily analysis allowance. A
// broken quota backend fails open so analyses keep flowing.
func CheckQuota(callerKey string, traceId string) (remaining int, allowed bool) {
	if handlerInstance == nil || handlerInstance.service.QuotaStore == nil {
		return config.DailyAnalysisLimit, true
	}
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	remaining, allowed, err := handlerInstance.service.QuotaStore.Allow(ctxC, callerKey)
	if err != nil {
		logJH.Error("Quota backend unavailable, allowing request", "err", err)
		return config.DailyAnalysisLimit, true
	}
	return remaining, allowed
}

func ValidateChatRequest(chatReq api.ChatRequest) bool {
	if handlerInstance == nil {
		return false
	}
	logJH.Debug(" Validating chat id ", "chatId :", chatReq.ChatID)
	if chatReq.Message == "" || chatReq.ChatID == "" {
		return false
	}
	return handlerInstance.service.MessageStore.ValidateChatId(context.Background(), chatReq.ChatID)
}

func ValidateChatId(chatId string) bool {
	if handlerInstance == nil || chatId == "" {
		return false
	}
	return handlerInstance.service.MessageStore.ValidateChatId(context.Background(), chatId)
}

func GetChatHistory(chatId string, traceId string) ([]string, error) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	err, history := handlerInstance.service.MessageStore.GetMessageHistory(ctxC, chatId)
	return history, err
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob newJobData) {

	_job := jobModel.Job{}
	_job.Id = newJob.id
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.ChatId = newJob.chatId
	_job.Status = jobModel.JobStatusQueued

	if newJob.jobType == jobModel.JobTypeAnalysis {
		_job.JobType = jobModel.JobTypeAnalysis
		_job.CurrentStep = jobModel.AnalysisInit
		_job.JobPayload.Patient = newJob.patient
		_job.JobPayload.ReportFileName = newJob.reportFileName
		_job.JobPayload.ReportPath = newJob.reportPath
		_job.JobPayload.DeclaredMediaType = newJob.declaredMediaType
		_job.JobPayload.DeclaredSize = newJob.declaredSize

	} else {
		_job.JobType = jobModel.JobTypeChat
		_job.JobPayload.Question = newJob.message
		_job.CurrentStep = jobModel.AnalysisInit
	}

	//metrics
	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //this is a blocking send to prevent the system from being overwhelmed
	logJH.Info("Created new job")

	//a new worker is added every few requests, or right away for an analysis:
	//report processing spends time in external model calls, so give it headroom.
	//idle workers retire on their own, so the pool shrinks back afterwards

	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1) //after sending a request increment counter
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || _job.JobType == jobModel.JobTypeAnalysis {
		metrics.StartDispatcherSignalCount() //metrics
		logJH.Debug("Worker count ", accurateCount)
		h.service.DispatcherChannel <- true
	}
}

func (h *JobHandler) initNewChat(chatId string, traceId string) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	err := h.service.MessageStore.InitNewChat(ctxC, chatId)
	if err != nil {
		logJH.Error("Error initiating new chat", chatId, err)
		return
	}
}

type newJobData struct {
	id                string
	chatId            string
	message           string
	isNewChat         bool
	traceId           string
	jobType           jobModel.JobType
	patient           reportModel.PatientInfo
	reportFileName    string
	reportPath        string
	declaredMediaType string
	declaredSize      int64
}
