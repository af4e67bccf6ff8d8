package api

import (
	"time"

	"github.com/ramate-ai/ramate/internal/domain"
)

// Every response body carries a status field so clients can branch on
// "success" vs "error" without inspecting HTTP codes.
type SuccessResponse struct {
	Status string `json:"status" example:"success"`
	Data   any    `json:"data"`
}

type ErrorResponse struct {
	Status  string `json:"status" example:"error"`
	Message string `json:"message" example:"query is required"`
}

type ChatData struct {
	Answer     string          `json:"answer"`
	Sources    []domain.Source `json:"sources"`
	Confidence float64         `json:"confidence" example:"0.87"`
	Query      string          `json:"query"`
	QueryId    string          `json:"query_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Timestamp  time.Time       `json:"timestamp"`
}

type StatusData struct {
	Status            string `json:"status" example:"ok"`
	VectorStoreStatus string `json:"vector_store_status" example:"healthy"`
	TotalDocuments    uint64 `json:"total_documents" example:"412"`
	EmbeddingMethod   string `json:"embedding_method" example:"gemini-embedding-001"`
	AIConfigured      bool   `json:"ai_configured" example:"true"`
}

type FeedbackData struct {
	FeedbackId string `json:"feedback_id"`
}

type RebuildData struct {
	DocumentsProcessed int                 `json:"documents_processed"`
	ChunksIndexed      int                 `json:"chunks_indexed"`
	Failures           []domain.DocFailure `json:"failures,omitempty"`
	ElapsedSeconds     float64             `json:"elapsed_seconds"`
}

// requests---------------------

type ChatRequest struct {
	Query     string `json:"query" validate:"required"`
	SessionId string `json:"session_id,omitempty"`
}

type FeedbackRequest struct {
	QueryId   string `json:"query_id" validate:"required"`
	SessionId string `json:"session_id,omitempty"`
	Rating    string `json:"rating" validate:"required" example:"thumbs_up"`
	Comment   string `json:"comment,omitempty"`
}

func Success(data any) SuccessResponse {
	return SuccessResponse{Status: "success", Data: data}
}

func Error(message string) ErrorResponse {
	return ErrorResponse{Status: "error", Message: message}
}

func ToChatData(record domain.QueryRecord) ChatData {
	return ChatData{
		Answer:     record.Answer,
		Sources:    record.Sources,
		Confidence: record.Confidence,
		Query:      record.Query,
		QueryId:    record.QueryId,
		Timestamp:  record.Timestamp,
	}
}
