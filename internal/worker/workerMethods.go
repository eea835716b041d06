package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/biolens/BioLensAPI/internal/config"
	jobmodel "github.com/biolens/BioLensAPI/internal/domain/jobModel"
	"github.com/biolens/BioLensAPI/internal/metrics"
	"github.com/biolens/BioLensAPI/pkg/logger_i"
)

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.JobExecutionTimeout)
	defer cancel()
	logger.With("trace Id ", job.TraceId)
	logger.Debug("Processing job:", "job Id:", job.Id)

	saveJobState(ctx, job, jobmodel.JobStatusRunning)

	if job.JobType == jobmodel.JobTypeChat {
		job = processChat(job, ctx, logger)
	} else {
		job = processAnalysis(job, ctx, logger)
	}

	if job.Status != jobmodel.JobStatusError {
		if err := _jobService.MessageStore.TrySaveChat(ctx, job.ChatId, job.JobPayload); err != nil {
			logger.Error("Failed to save chat history", "err", err)
		}
	}

	job.EndTime = time.Now()
	if job.Status == jobmodel.JobStatusError {
		saveJobState(ctx, job, jobmodel.JobStatusError)
		return
	}
	saveJobState(ctx, job, jobmodel.JobStatusComplete)
}

func removeWorker(reason string) {

	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()

}

func processAnalysis(job jobmodel.Job, ctx context.Context, logger *logger_i.Logger) jobmodel.Job {
	messageHistory := loadHistory(ctx, job.ChatId, logger)
	return _analysisService.ProcessAnalysis(ctx, job, messageHistory)
}

func processChat(job jobmodel.Job, ctx context.Context, logger *logger_i.Logger) jobmodel.Job {
	messageHistory := loadHistory(ctx, job.ChatId, logger)
	return _analysisService.ProcessChat(ctx, job, messageHistory)
}

func loadHistory(ctx context.Context, chatId string, logger *logger_i.Logger) []string {
	err, messageHistory := _jobService.MessageStore.GetMessageHistory(ctx, chatId)
	if err != nil {
		logger.Error("Failed to get message history", "err", err)
	}
	return messageHistory
}

func saveJobState(ctx context.Context, job jobmodel.Job, jobStatus jobmodel.JobStatus) {
	job.Status = jobStatus
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to update status in Redis", "err", err)
	}
}
