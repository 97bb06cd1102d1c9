package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/engagement"
)

// SubscriptionHandler exposes subscription toggles and lists.
type SubscriptionHandler struct {
	Subscriptions SubscriptionService
	Paging        engagement.Paging
	Limiter       RateLimiter
}

// Toggle handles POST /api/v1/subscriptions/c/{channelId}.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subscriber, ok := requireViewer(w, r)
	if !ok {
		return
	}
	if rateLimited(w, r, h.Limiter, "subscriptions") {
		return
	}

	res, err := h.Subscriptions.ToggleSubscription(ctx, r.PathValue("channelId"), subscriber)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, res)
}

// Subscribers handles GET /api/v1/subscriptions/c/{channelId}.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := pageRequest(w, r, h.Paging)
	if !ok {
		return
	}

	page, err := h.Subscriptions.GetChannelSubscribers(ctx, r.PathValue("channelId"), req)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, page)
}

// Channels handles GET /api/v1/subscriptions/u/{subscriberId}.
func (h SubscriptionHandler) Channels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := pageRequest(w, r, h.Paging)
	if !ok {
		return
	}

	page, err := h.Subscriptions.GetSubscribedChannels(ctx, r.PathValue("subscriberId"), req)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, page)
}
