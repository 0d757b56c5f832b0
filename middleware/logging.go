package middleware

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// RequestID adds a unique request ID to each request
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Logging logs one line per request and recovers panics into a 500.
func Logging(next http.Handler) http.Handler {
	return middleware.RequestLogger(&StructuredLogger{})(middleware.Recoverer(next))
}

type StructuredLogger struct{}

func (l *StructuredLogger) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &StructuredLogEntry{request: r}
}

type StructuredLogEntry struct {
	request *http.Request
}

func (l *StructuredLogEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra interface{}) {
	log.Printf("[%s] %s %s -> %d (%d bytes, %dms)",
		GetRequestID(l.request.Context()),
		l.request.Method,
		l.request.URL.Path,
		status,
		bytes,
		elapsed.Milliseconds(),
	)
}

func (l *StructuredLogEntry) Panic(v interface{}, stack []byte) {
	log.Printf("[%s] panic serving %s %s: %v\n%s",
		GetRequestID(l.request.Context()),
		l.request.Method,
		l.request.URL.Path,
		v,
		stack,
	)
}
