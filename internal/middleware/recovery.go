package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"concerthub-api/pkg/apierror"
)

// Recovery turns a panic into a 500 response. The log line carries the
// request and session ids that inner middleware set on the response.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[Recovery] panic on %s %s request_id=%s session=%s: %v\n%s",
					r.Method, r.URL.Path,
					w.Header().Get(RequestIDHeader), w.Header().Get(SessionHeader),
					err, debug.Stack())

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write(apierror.InternalError("internal server error").ToJSON())
			}
		}()

		next.ServeHTTP(w, r)
	})
}
