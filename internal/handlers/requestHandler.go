package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ramate-ai/ramate/internal/api"
	"github.com/ramate-ai/ramate/internal/domain"
	"github.com/ramate-ai/ramate/internal/rag/ragerr"
)

func GetHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.Success(map[string]string{
		"service": "RAMate API",
		"message": "See /swagger/index.html for the API reference",
	}))
}

// ChatHandler godoc
// @Summary      Answer a question from the document corpus
// @Description  Runs retrieval over the indexed corpus and generates a cited answer with a confidence score.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest  true  "Question and optional session ID"
// @Success      200      {object}  api.SuccessResponse{data=api.ChatData}  "Answer with sources and confidence"
// @Failure      400      {object}  api.ErrorResponse  "Missing or oversized query"
// @Router       /api/chat [post]
func ChatHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request ", request.RemoteAddr)
		return
	}

	var requestData api.ChatRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the Chat handler reader :", err)
		}
	}(request.Body)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil {
		logRH.Warn("Bad Chat Request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := validateQuery(requestData.Query); msg != "" {
		logRH.Warn("Rejected chat query: ", "reason:", msg)
		WriteErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	record := handlerInstance.service.Chat(request.Context(), requestData.Query, requestData.SessionId)

	if err := handlerInstance.logs.AppendInteraction(record); err != nil {
		// The answer is still good; losing one log line is not a 500.
		logRH.Error("Couldn't append interaction log :", err)
	}

	writeJsonResponse(w, http.StatusOK, api.Success(api.ToChatData(record)))
}

// GetStatusHandler godoc
// @Summary      Service and index health
// @Description  Reports vector store health, indexed document count, and whether AI generation is configured.
// @Tags         Status
// @Produce      json
// @Success      200  {object}  api.SuccessResponse{data=api.StatusData}  "Current service status"
// @Router       /api/status [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	report := handlerInstance.service.Status(r.Context())
	writeJsonResponse(w, http.StatusOK, api.Success(api.StatusData{
		Status:            "ok",
		VectorStoreStatus: report.VectorStoreStatus,
		TotalDocuments:    report.TotalDocuments,
		EmbeddingMethod:   report.EmbeddingMethod,
		AIConfigured:      report.AIConfigured,
	}))
}

// PostFeedbackHandler godoc
// @Summary      Record feedback on an answer
// @Description  Appends a thumbs-up or thumbs-down rating for a previous answer to the feedback log.
// @Tags         Feedback
// @Accept       json
// @Produce      json
// @Param        request  body      api.FeedbackRequest  true  "Rating for a prior query"
// @Success      200      {object}  api.SuccessResponse{data=api.FeedbackData}  "Feedback recorded"
// @Failure      400      {object}  api.ErrorResponse  "Missing query_id or unknown rating"
// @Router       /api/feedback [post]
func PostFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	var requestData api.FeedbackRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the Feedback handler reader :", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if requestData.QueryId == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "query_id is required")
		return
	}
	rating := domain.Rating(requestData.Rating)
	if !rating.Valid() {
		WriteErrorResponse(w, http.StatusBadRequest, "rating must be thumbs_up or thumbs_down")
		return
	}

	record := domain.FeedbackRecord{
		FeedbackId: uuid.New().String(),
		QueryId:    requestData.QueryId,
		SessionId:  requestData.SessionId,
		Rating:     rating,
		Comment:    requestData.Comment,
		Timestamp:  time.Now(),
	}
	if err := handlerInstance.logs.AppendFeedback(record); err != nil {
		logRH.Error("Couldn't append feedback log :", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "could not record feedback")
		return
	}

	writeJsonResponse(w, http.StatusOK, api.Success(api.FeedbackData{FeedbackId: record.FeedbackId}))
}

// PostRebuildHandler godoc
// @Summary      Rebuild the document index
// @Description  Reprocesses the document corpus into a fresh collection and atomically promotes it. Requires the admin bearer token.
// @Tags         Admin
// @Produce      json
// @Security     AdminToken
// @Success      200  {object}  api.SuccessResponse{data=api.RebuildData}  "Rebuild summary"
// @Failure      409  {object}  api.ErrorResponse  "A rebuild is already running"
// @Failure      500  {object}  api.ErrorResponse  "Rebuild failed; previous index still serving"
// @Router       /api/rebuild [post]
func PostRebuildHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	report, err := handlerInstance.service.Rebuild(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, ragerr.ErrRebuildInProgress):
			WriteErrorResponse(w, http.StatusConflict, "a rebuild is already in progress")
		case errors.Is(err, ragerr.ErrValidation):
			WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		default:
			logRH.Error("Rebuild failed :", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "rebuild failed; previous index remains active")
		}
		return
	}

	writeJsonResponse(w, http.StatusOK, api.Success(api.RebuildData{
		DocumentsProcessed: report.DocumentsProcessed,
		ChunksIndexed:      report.ChunksIndexed,
		Failures:           report.Failures,
		ElapsedSeconds:     report.ElapsedSeconds,
	}))
}
