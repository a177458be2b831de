package http

import (
	"net/http"
	"time"

	"github.com/kubemcp/kubectl-mcp-server/pkg/logging"
)

// loggingResponseWriter captures the status code for request logging.
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	if lrw.wroteHeader {
		return
	}
	lrw.statusCode = code
	lrw.wroteHeader = true
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if !lrw.wroteHeader {
		lrw.WriteHeader(http.StatusOK)
	}
	return lrw.ResponseWriter.Write(b)
}

// RequestMiddleware logs each request with its status and duration.
// Health checks are logged at debug level to keep probe noise out of
// normal logs.
func RequestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(lrw, r)

		duration := time.Since(start)
		if r.URL.Path == healthEndpoint {
			logging.Debug("%s %s %d %s", r.Method, r.URL.Path, lrw.statusCode, duration)
			return
		}
		logging.Info("%s %s %d %s", r.Method, r.URL.Path, lrw.statusCode, duration)
	})
}
