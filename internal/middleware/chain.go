package middleware

import "net/http"

// Stack is the server middleware chain, outermost first: logging,
// metrics, API-key auth, rate limit.
func Stack(apiKeys map[string]string, limiter *RateLimiter) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		LoggingMiddleware,
		MetricsMiddleware,
		APIKeyAuth(apiKeys),
		RateLimitMiddleware(limiter),
	}
}
