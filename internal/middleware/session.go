package middleware

import (
	"context"
	"log"
	"net/http"
	"time"

	"concerthub-api/internal/service"
	"concerthub-api/pkg/apierror"
)

// SessionIDKey is the key for storing the session id in request context.
const SessionIDKey contextKey = "session_id"

// SessionHeader carries the session id for API clients without cookies.
const SessionHeader = "X-Session-ID"

// SessionConfig holds configuration for the session middleware.
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// NewSessionMiddleware attaches a checkout session id to every request.
// The id comes from the X-Session-ID header or the session cookie; a new
// one is issued (and set as a cookie) when neither is present.
func NewSessionMiddleware(cfg SessionConfig) func(http.Handler) http.Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = "concerthub_session"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = service.DefaultSessionTTL
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if id != "" && !service.ValidSessionID(id) {
				writeError(w, apierror.BadRequest("Invalid "+SessionHeader+" header"))
				return
			}

			if id == "" {
				if c, err := r.Cookie(cfg.CookieName); err == nil && service.ValidSessionID(c.Value) {
					id = c.Value
				}
			}

			if id == "" {
				var err error
				id, err = service.NewSessionID()
				if err != nil {
					log.Printf("[Session] %v", err)
					writeError(w, apierror.InternalError(""))
					return
				}
			}

			// Refresh the cookie so it outlives the stored session.
			http.SetCookie(w, &http.Cookie{
				Name:     cfg.CookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(cfg.TTL.Seconds()),
				HttpOnly: true,
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})
			w.Header().Set(SessionHeader, id)

			ctx := context.WithValue(r.Context(), SessionIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeError writes an API error response.
func writeError(w http.ResponseWriter, err *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	w.Write(err.ToJSON())
}

// GetSessionID retrieves the session id from request context.
func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(SessionIDKey).(string); ok {
		return id
	}
	return ""
}
