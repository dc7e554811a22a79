package server

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Middleware provides the handler wrappers every route goes through.
type Middleware struct {
	log  *zap.Logger
	auth *JWTAuth
}

// NewMiddleware creates a middleware set. auth may be nil; admin routes then
// reject every request.
func NewMiddleware(log *zap.Logger, auth *JWTAuth) *Middleware {
	return &Middleware{log: log, auth: auth}
}

// Recovery turns a handler panic into a 500 instead of killing the
// connection. The coordination lock is released by defer on every path, so a
// recovered panic leaves the server serviceable.
func (m *Middleware) Recovery(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				m.log.Error("handler panic",
					zap.String("path", r.URL.Path),
					zap.Any("panic", err),
				)
				m.writeError(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next(w, r)
	}
}

// Logging records one structured line per request.
func (m *Middleware) Logging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		m.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// AdminRequired gates a handler behind a valid admin JWT.
func (m *Middleware) AdminRequired(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.auth == nil {
			m.writeError(w, "admin endpoints are disabled: no admin secret configured", http.StatusForbidden)
			return
		}
		token := r.Header.Get("Authorization")
		if token == "" {
			m.writeError(w, "authorization header required", http.StatusUnauthorized)
			return
		}
		claims, err := m.auth.ValidateToken(token)
		if err != nil {
			m.writeError(w, "invalid token: "+err.Error(), http.StatusUnauthorized)
			return
		}
		if !claims.IsAdmin {
			m.writeError(w, "admin privileges required", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

func (m *Middleware) writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
	})
}
