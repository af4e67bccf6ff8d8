package handlers

import (
	"strings"
	"sync"

	"github.com/ramate-ai/ramate/internal/config"
	"github.com/ramate-ai/ramate/internal/data/logstore"
	"github.com/ramate-ai/ramate/internal/rag"
	"github.com/ramate-ai/ramate/pkg/logger_i"
)

var (
	handlerInstance *RAGHandler //private singleton
	once            sync.Once
	logRG           *logger_i.Logger
	logRH           *logger_i.Logger
)

type RAGHandler struct {
	service rag.Service
	logs    *logstore.Store
}

func InitRAGHandler(service rag.Service, logs *logstore.Store) {
	once.Do(func() {
		handlerInstance = &RAGHandler{service: service, logs: logs}

		logRG = logger_i.NewLogger("RAGHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logRG.Info("Starting RAG handler")
	})
}

// validateQuery returns a client-facing message when the query is
// unusable. The completion service is never called for these.
func validateQuery(query string) string {
	if strings.TrimSpace(query) == "" {
		return "query is required"
	}
	if len(query) > config.MaxQueryLength {
		return "query exceeds maximum length of 1000 characters"
	}
	return ""
}
