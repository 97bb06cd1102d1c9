package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vidtube/backend/internal/engagement"
	"github.com/vidtube/backend/internal/logging"
)

// ViewerHeader carries the authenticated user id set by the upstream gateway.
const ViewerHeader = "X-User-ID"

// statusClientClosedRequest marks requests abandoned by the caller before the
// engine finished. Nobody reads the response.
const statusClientClosedRequest = 499

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status == statusClientClosedRequest:
		logger.Info("client closed request", "status", status)
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

// respondError maps engine errors onto HTTP statuses. Server-side details stay
// in the logs.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	switch status {
	case http.StatusServiceUnavailable:
		message = "service temporarily unavailable"
	case http.StatusInternalServerError:
		message = "internal server error"
	case statusClientClosedRequest:
		message = "client closed request"
	}
	if status >= http.StatusInternalServerError {
		logging.FromContext(ctx).Error("engine operation failed", "error", err)
	}
	respondJSON(ctx, w, status, map[string]string{"error": message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, engagement.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, engagement.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engagement.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, engagement.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, engagement.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// viewerID returns the caller identity, or "" for anonymous callers.
func viewerID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(ViewerHeader))
}

// requireViewer writes 401 and reports false when the caller is anonymous.
func requireViewer(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := viewerID(r)
	if id == "" {
		respondJSON(r.Context(), w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return "", false
	}
	return id, true
}

func pageRequest(w http.ResponseWriter, r *http.Request, paging engagement.Paging) (engagement.PageRequest, bool) {
	q := r.URL.Query()
	req, err := paging.Parse(q.Get("page"), q.Get("limit"))
	if err != nil {
		respondError(r.Context(), w, err)
		return engagement.PageRequest{}, false
	}
	return req, true
}

// orderFromQuery prefers an order_by expression and falls back to the
// sortBy/sortType pair.
func orderFromQuery(r *http.Request) (engagement.Order, error) {
	q := r.URL.Query()
	if orderBy := q.Get("order_by"); orderBy != "" {
		return engagement.ParseOrder(orderBy)
	}
	return engagement.OrderFromParams(q.Get("sortBy"), q.Get("sortType"))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logging.FromContext(r.Context()).Warn("invalid request payload", "error", err)
		respondJSON(r.Context(), w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func rateLimited(w http.ResponseWriter, r *http.Request, limiter RateLimiter, scope string) bool {
	if allowRequest(limiter, r, scope) {
		return false
	}
	logging.FromContext(r.Context()).Warn("rate limit exceeded", "scope", scope, "client", clientIP(r))
	respondJSON(r.Context(), w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
	return true
}
