package middleware

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/ramate-ai/ramate/internal/handlers"
	"github.com/ramate-ai/ramate/internal/metrics"
	"github.com/ramate-ai/ramate/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

var (
	adminToken     string
	allowedOrigins []string
	initOnce       sync.Once
)

// Init wires the admin token and origin allow-list. Must run before any
// wrapped handler serves.
func Init(token string, origins []string) {
	initOnce.Do(func() {
		adminToken = token
		allowedOrigins = origins
	})
}

var GetHandler = Wrap(handlers.GetHandler)
var GetStatusHandler = Wrap(handlers.GetStatusHandler)
var PostFeedbackHandler = Wrap(handlers.PostFeedbackHandler)

// Chat is the only endpoint that reaches paid external APIs, so it is
// the only rate-limited one.
var ChatHandler = WrapLimited(handlers.ChatHandler)

var PostRebuildHandler = WrapAdmin(handlers.PostRebuildHandler)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return wrapWith(next, processRequest)
}

func WrapLimited(next http.HandlerFunc) http.HandlerFunc {
	return wrapWith(next, func(re requestResponseStruct) requestResponseStruct {
		re = processRequest(re)
		if re.badRequest.isBadRequest {
			return re
		}
		return rateLimiter(re)
	})
}

func WrapAdmin(next http.HandlerFunc) http.HandlerFunc {
	return wrapWith(next, func(re requestResponseStruct) requestResponseStruct {
		re = processRequest(re)
		if re.badRequest.isBadRequest {
			return re
		}
		return authenticate(re)
	})
}

func wrapWith(next http.HandlerFunc, process func(requestResponseStruct) requestResponseStruct) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := process(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		if re.req.Method == http.MethodOptions {
			rec.WriteHeader(http.StatusNoContent)
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re.logger.Debug("New request received")
	re = injectTrace(re)
	re = applyCors(re)
	return re
}

func handleBadRequest(re requestResponseStruct) {
	re.logger.Warn("Bad request", "httpCode", re.badRequest.httpCode, "errorMessage", re.badRequest.errorMessage, "IP", re.req.RemoteAddr)
	handlers.WriteErrorResponse(re.writer, re.badRequest.httpCode, re.badRequest.errorMessage)
}
