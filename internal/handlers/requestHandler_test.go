package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ramate-ai/ramate/internal/config"
	"github.com/ramate-ai/ramate/internal/data/logstore"
	"github.com/ramate-ai/ramate/internal/domain"
	"github.com/ramate-ai/ramate/internal/rag"
)

type mockRAGService struct {
	chatFunc    func(ctx context.Context, query string, sessionId string) domain.QueryRecord
	rebuildFunc func(ctx context.Context) (rag.RebuildReport, error)
	statusFunc  func(ctx context.Context) rag.StatusReport
	chatCalls   int
}

func (m *mockRAGService) Chat(ctx context.Context, query string, sessionId string) domain.QueryRecord {
	m.chatCalls++
	if m.chatFunc != nil {
		return m.chatFunc(ctx, query, sessionId)
	}
	return domain.QueryRecord{
		QueryId:    "q-1",
		Query:      query,
		Answer:     "mock answer",
		Sources:    []domain.Source{},
		Confidence: 0.5,
		Timestamp:  time.Now(),
	}
}

func (m *mockRAGService) Rebuild(ctx context.Context) (rag.RebuildReport, error) {
	if m.rebuildFunc != nil {
		return m.rebuildFunc(ctx)
	}
	return rag.RebuildReport{}, nil
}

func (m *mockRAGService) Status(ctx context.Context) rag.StatusReport {
	if m.statusFunc != nil {
		return m.statusFunc(ctx)
	}
	return rag.StatusReport{VectorStoreStatus: "healthy", TotalDocuments: 3, EmbeddingMethod: "mock", AIConfigured: true}
}

// The handler package keeps one process-wide instance, so all tests
// share this mock.
var sharedMock = &mockRAGService{}

func initHandlers(t *testing.T) *mockRAGService {
	t.Helper()
	logs, err := logstore.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	InitRAGHandler(sharedMock, logs)
	return sharedMock
}

func tracedRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), config.TRACE_ID_KEY, "test-trace")
	return req.WithContext(ctx)
}

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		reject bool
	}{
		{"Valid", "how do duty rounds work", false},
		{"Empty", "", true},
		{"Whitespace_Only", "   \t ", true},
		{"At_Limit", strings.Repeat("a", config.MaxQueryLength), false},
		{"Over_Limit", strings.Repeat("a", config.MaxQueryLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := validateQuery(tt.query)
			if tt.reject && msg == "" {
				t.Error("expected a rejection message")
			}
			if !tt.reject && msg != "" {
				t.Errorf("unexpected rejection: %q", msg)
			}
		})
	}
}

func TestChatHandler_RejectsBadRequests(t *testing.T) {
	mock := initHandlers(t)

	tests := []struct {
		name string
		body string
	}{
		{"Invalid_JSON", "{not json"},
		{"Empty_Query", `{"query": ""}`},
		{"Oversized_Query", `{"query": "` + strings.Repeat("a", config.MaxQueryLength+1) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := mock.chatCalls

			w := httptest.NewRecorder()
			ChatHandler(w, tracedRequest(http.MethodPost, "/api/chat", []byte(tt.body)))

			if w.Code != http.StatusBadRequest {
				t.Errorf("status got %d, want 400", w.Code)
			}
			if mock.chatCalls != before {
				t.Error("rejected requests must not reach the RAG service")
			}

			var resp struct {
				Status  string `json:"status"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("error body is not JSON: %v", err)
			}
			if resp.Status != "error" || resp.Message == "" {
				t.Errorf("error envelope malformed: %+v", resp)
			}
		})
	}
}

func TestChatHandler_Success(t *testing.T) {
	initHandlers(t)

	body := []byte(`{"query": "how do duty rounds work", "session_id": "s-1"}`)
	w := httptest.NewRecorder()
	ChatHandler(w, tracedRequest(http.MethodPost, "/api/chat", body))

	if w.Code != http.StatusOK {
		t.Fatalf("status got %d, want 200", w.Code)
	}

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Answer     string  `json:"answer"`
			QueryId    string  `json:"query_id"`
			Confidence float64 `json:"confidence"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.Status != "success" || resp.Data.Answer != "mock answer" || resp.Data.QueryId != "q-1" {
		t.Errorf("response envelope malformed: %+v", resp)
	}
}

func TestFeedbackHandler_Validation(t *testing.T) {
	initHandlers(t)

	tests := []struct {
		name     string
		body     string
		expected int
	}{
		{"Valid_ThumbsUp", `{"query_id": "q-1", "rating": "thumbs_up"}`, http.StatusOK},
		{"Valid_ThumbsDown", `{"query_id": "q-1", "rating": "thumbs_down", "comment": "missed the point"}`, http.StatusOK},
		{"Missing_QueryId", `{"rating": "thumbs_up"}`, http.StatusBadRequest},
		{"Unknown_Rating", `{"query_id": "q-1", "rating": "meh"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			PostFeedbackHandler(w, tracedRequest(http.MethodPost, "/api/feedback", []byte(tt.body)))

			if w.Code != tt.expected {
				t.Errorf("status got %d, want %d", w.Code, tt.expected)
			}
		})
	}
}

func TestGetStatusHandler(t *testing.T) {
	initHandlers(t)

	w := httptest.NewRecorder()
	GetStatusHandler(w, tracedRequest(http.MethodGet, "/api/status", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status got %d, want 200", w.Code)
	}

	var resp struct {
		Data struct {
			Status            string `json:"status"`
			VectorStoreStatus string `json:"vector_store_status"`
			TotalDocuments    uint64 `json:"total_documents"`
			AIConfigured      bool   `json:"ai_configured"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.Data.Status != "ok" || resp.Data.VectorStoreStatus != "healthy" || resp.Data.TotalDocuments != 3 {
		t.Errorf("status payload malformed: %+v", resp.Data)
	}
}
