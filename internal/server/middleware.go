package server

import (
	"net/http"
	"time"

	"github.com/STTM-NSU/crypto-dashboard/internal/logger"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestMiddleware tags every request with an id, logs it once it is served
// and turns handler panics into a 500.
func requestMiddleware(l logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			reqLogger := l.With("request_id", id)
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()

			defer func() {
				if rec := recover(); rec != nil {
					reqLogger.Errorf("panic in %s %s: %v", r.Method, r.URL.Path, rec)
					WriteError(rw, http.StatusInternalServerError, "Internal server error")
				}
				reqLogger.Debugf("%s %s -> %d in %s", r.Method, r.URL.Path, rw.statusCode, time.Since(start))
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
