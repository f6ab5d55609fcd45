// Package shield provides the HTTP middleware in front of the editor API:
// security headers, body limits, request tracing, rate limiting and HEAD
// handling.
//
// Usage:
//
//	r := chi.NewRouter()
//	for _, mw := range shield.APIStack(shield.StackConfig{}) {
//	    r.Use(mw)
//	}
package shield

import "net/http"

// DefaultMaxBody caps JSON request bodies.
const DefaultMaxBody = 64 * 1024

// StackConfig configures APIStack.
type StackConfig struct {
	MaxBody int64 // 0 = DefaultMaxBody

	// Limits are per-IP rate limits keyed by "METHOD /path". Nil disables
	// rate limiting.
	Limits map[string]Limit
}

// APIStack returns the middleware stack for a JSON API.
// Order: HeadToGet → SecurityHeaders → MaxBody → TraceID → RateLimiter.
// The returned limiter is nil when no limits are configured.
func APIStack(cfg StackConfig) ([]func(http.Handler) http.Handler, *RateLimiter) {
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = DefaultMaxBody
	}
	stack := []func(http.Handler) http.Handler{
		HeadToGet,
		SecurityHeaders(APIHeaders()),
		MaxBody(cfg.MaxBody),
		TraceID,
	}
	var rl *RateLimiter
	if len(cfg.Limits) > 0 {
		rl = NewRateLimiter(cfg.Limits)
		stack = append(stack, rl.Middleware)
	}
	return stack, rl
}
