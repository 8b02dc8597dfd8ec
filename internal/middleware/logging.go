package middleware

import (
	"context"
	"log"
	"net/http"
	"time"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

const requestInfoKey contextKey = "request_info"

// requestInfo is filled by inner middleware and read back by the logger,
// since context values set further in never reach the outer request.
type requestInfo struct {
	tenant string
}

func requestInfoFrom(ctx context.Context) *requestInfo {
	info, _ := ctx.Value(requestInfoKey).(*requestInfo)
	return info
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		info := &requestInfo{tenant: GetTenantFromContext(r.Context())}
		r = r.WithContext(context.WithValue(r.Context(), requestInfoKey, info))

		next.ServeHTTP(wrapped, r)

		tenant := info.tenant
		if tenant == "" {
			tenant = "-"
		}
		log.Printf(
			"method=%s path=%s status=%d duration=%s bytes=%d tenant=%s ip=%s user_agent=%q",
			r.Method,
			r.URL.Path,
			wrapped.statusCode,
			time.Since(start),
			wrapped.written,
			tenant,
			r.RemoteAddr,
			r.UserAgent(),
		)
	})
}
