package middleware

import (
	"log/slog"
	"net/http"
)

// ResponseObserver records finished responses.
type ResponseObserver interface {
	ObserveResponse(method string, status int)
}

// CountResponses reports the method and final status of every request.
func CountResponses(observer ResponseObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if observer == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w}
			defer func() {
				observer.ObserveResponse(r.Method, wrapped.Status())
			}()
			next.ServeHTTP(wrapped, r)
		})
	}
}

// Instrument wraps next with request logging and response counting. The
// counter sits outside the logger so recovered panics are counted as 500s.
func Instrument(base *slog.Logger, observer ResponseObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return CountResponses(observer)(RequestLogger(base)(next))
	}
}
