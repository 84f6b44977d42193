package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rigforge/rigforge/pkg/infrastructure/auth"
	"go.uber.org/zap"
)

type contextKey string

const identityKey contextKey = "identity"

// identityFrom returns the verified identity of the request
func identityFrom(r *http.Request) *auth.Identity {
	identity, _ := r.Context().Value(identityKey).(*auth.Identity)
	return identity
}

// authMiddleware resolves the bearer token and stores the identity in
// the request context. Requests without a valid token get a 401.
func authMiddleware(verifier auth.TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Missing bearer token"})
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.Debug("token rejected", zap.Error(err))
				writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid token"})
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// adminOnly rejects non-admin identities with a 403
func adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := identityFrom(r)
		if identity == nil || !identity.Admin {
			writeJSON(w, http.StatusForbidden, map[string]any{"error": "Admin access required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging and metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// accessLog logs one line per request
func accessLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", recorder.status),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
