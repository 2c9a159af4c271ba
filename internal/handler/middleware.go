package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/prn-tf/inkwell/internal/metrics"
	"github.com/prn-tf/inkwell/internal/token"
	"github.com/prn-tf/inkwell/internal/transport"
)

type contextKey struct{ name string }

var userContextKey = contextKey{name: "user"}

// UserFromContext returns the authenticated identity set by RequireAuth.
func UserFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(userContextKey).(*token.Claims)
	return claims, ok
}

// RequireAuth verifies the bearer token and stores its claims in the
// request context. Requests without a valid token get 401.
func RequireAuth(tokens *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := transport.ParseBearer(r.Header.Get("Authorization"))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
				return
			}
			claims, err := tokens.Verify(raw)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid token"})
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey, claims)))
		})
	}
}

// RequestLogger logs one line per finished request.
func RequestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", chimiddleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}

// RecordMetrics observes request counts and latency per route pattern.
func RecordMetrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveHTTP(r.Method, route, ww.Status(), time.Since(start))
		})
	}
}
