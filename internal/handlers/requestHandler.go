package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/biolens/BioLensAPI/internal/adapter"
	"github.com/biolens/BioLensAPI/internal/adapter/utils"
	"github.com/biolens/BioLensAPI/internal/analysis/validate"
	"github.com/biolens/BioLensAPI/internal/api"
	"github.com/biolens/BioLensAPI/internal/config"
	"github.com/biolens/BioLensAPI/internal/domain/jobModel"
	"github.com/biolens/BioLensAPI/internal/domain/reportModel"
	"github.com/biolens/BioLensAPI/internal/metrics"
	"github.com/biolens/BioLensAPI/pkg/logger_i"
)

var logRH *logger_i.Logger

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

// AnalyzeHandler godoc
// @Summary      Upload a blood report for analysis
// @Description  Receives a PDF via multipart/form-data, validates it, and queues an analysis job. Returns a job ID to track status.
// @Tags         Analysis
// @Accept       multipart/form-data
// @Produce      json
// @Param        patient_name    formData  string  true   "Patient name"
// @Param        patient_age     formData  int     true   "Patient age"
// @Param        patient_gender  formData  string  true   "Patient gender"
// @Param        chat_id         formData  string  false  "Existing session to append this analysis to"
// @Param        report          formData  file    true   "The blood report PDF"
// @Success      202  {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400  {object}  api.JobResponse      "Missing fields or bad request"
// @Failure      422  {object}  api.JobResponse      "Upload rejected (wrong type, too large, empty)"
// @Failure      429  {object}  api.JobResponse      "Daily analysis limit reached"
// @Router       /analyze [post]
func AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}
	traceId := r.Context().Value(config.TRACE_ID_KEY).(string)

	remaining, allowed := CheckQuota(callerKey(r), traceId)
	if !allowed {
		metrics.CaptureQuotaRejection()
		WriteErrorResponse(w, http.StatusTooManyRequests, "",
			fmt.Sprintf("Daily limit of %d analyses reached. Try again tomorrow.", config.DailyAnalysisLimit))
		return
	}

	if err := r.ParseMultipartForm(config.MaxUploadSizeBytes + (1 << 20)); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	patient, errString := parsePatient(r)
	if errString != "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", errString)
		return
	}

	chatId := r.FormValue("chat_id")
	if chatId != "" && !ValidateChatId(chatId) {
		WriteErrorResponse(w, http.StatusBadRequest, chatId, "Unknown chat_id")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("report")
	if err != nil {
		WriteErrorResponse(w, http.StatusUnprocessableEntity, "", "No file uploaded")
		return
	}
	defer fileReader.Close()

	content, err := io.ReadAll(fileReader)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Read error")
		return
	}

	document := reportModel.UploadedDocument{
		Name:      fileMetadata.Filename,
		MediaType: fileMetadata.Header.Get("Content-Type"),
		Size:      fileMetadata.Size,
		Content:   content,
	}
	if rejection := validate.Document(document); rejection != nil {
		logRH.Warn("Upload rejected", "reason", rejection.Reason)
		WriteErrorResponse(w, http.StatusUnprocessableEntity, "", rejection.Message)
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logRH.Error("Couldn't get target directory :", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileMetadata.Filename)
	tempFilePath := filepath.Join(targetDir, filename)
	if err := os.WriteFile(tempFilePath, content, 0640); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Storage error")
		return
	}

	isNewChat := chatId == ""
	if isNewChat {
		chatId = utils.GetNewUUID()
		logRH.Debug(" New analysis session : ", "chatID:", chatId)
	}

	newJob := newJobData{
		id:                utils.GetNewUUID(),
		chatId:            chatId,
		isNewChat:         isNewChat,
		traceId:           traceId,
		jobType:           jobModel.JobTypeAnalysis,
		patient:           patient,
		reportFileName:    fileMetadata.Filename,
		reportPath:        tempFilePath,
		declaredMediaType: document.MediaType,
		declaredSize:      document.Size,
	}
	CreateNewJob(newJob)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id, remaining))
}

// ChatHandler godoc
// @Summary      Ask a follow-up question
// @Description  Accepts a question about a previously analyzed report and queues a background job. The chat ID must belong to an existing session.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest      true  "Question and the session's chat ID"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request data or chat ID"
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, request *http.Request) {

	if validateContext(request.Context()) {

		var requestData api.ChatRequest
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logRH.Error("Couldn't close the Chat handler reader :", err)
			}
		}(request.Body)
		if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || !ValidateChatRequest(requestData) {

			logRH.Warn("Bad Chat Request: ", "error:", err, "request data:", requestData)
			WriteErrorResponse(w, http.StatusBadRequest, requestData.ChatID, "Bad Request")
			return
		}

		newJob := newJobData{
			id:      utils.GetNewUUID(),
			chatId:  requestData.ChatID,
			message: requestData.Message,
			traceId: request.Context().Value(config.TRACE_ID_KEY).(string),
			jobType: jobModel.JobTypeChat,
		}
		CreateNewJob(newJob)
		writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id, 0))
		return
	}
	logRH.Warn("Invalid Context by request ", request.RemoteAddr)
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a specific job using its ID.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID "
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
	}
}

// GetHistoryHandler godoc
// @Summary      Get session history
// @Description  Returns the analyses and follow-up answers recorded in a session, oldest first.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Chat ID"
// @Success      200  {object}  api.HistoryResponse  "Session history"
// @Failure      404  {object}  api.JobResponse      "Unknown chat ID"
// @Router       /history/{id} [get]
func GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		chatId := utils.GetChiURLParam(r, "id")
		traceId := r.Context().Value(config.TRACE_ID_KEY).(string)

		if !ValidateChatId(chatId) {
			WriteErrorResponse(w, http.StatusNotFound, chatId, "Unknown chat_id")
			return
		}

		rawHistory, err := GetChatHistory(chatId, traceId)
		if err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, chatId, "Could not load history")
			return
		}

		writeJsonResponse(w, http.StatusOK, toHistoryResponse(chatId, rawHistory))
	}
}

func parsePatient(r *http.Request) (reportModel.PatientInfo, string) {
	name := r.FormValue("patient_name")
	if name == "" {
		return reportModel.PatientInfo{}, "patient_name is required"
	}

	age, err := strconv.Atoi(r.FormValue("patient_age"))
	if err != nil || age < 0 {
		return reportModel.PatientInfo{}, "patient_age must be a non-negative number"
	}

	gender := r.FormValue("patient_gender")
	if gender == "" {
		return reportModel.PatientInfo{}, "patient_gender is required"
	}

	return reportModel.PatientInfo{Name: name, Age: age, Gender: gender}, ""
}
