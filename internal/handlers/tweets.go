package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/engagement"
)

// TweetHandler exposes tweets.
type TweetHandler struct {
	Tweets TweetService
	Paging engagement.Paging
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := requireViewer(w, r)
	if !ok {
		return
	}
	var body contentRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	view, err := h.Tweets.CreateTweet(ctx, actor, body.Content)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, view)
}

// List handles GET /api/v1/tweets/user/{userId}.
func (h TweetHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := pageRequest(w, r, h.Paging)
	if !ok {
		return
	}

	page, err := h.Tweets.ListUserTweets(ctx, r.PathValue("userId"), req, viewerID(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, page)
}

// Update handles PATCH /api/v1/tweets/{tweetId}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := requireViewer(w, r)
	if !ok {
		return
	}
	var body contentRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	view, err := h.Tweets.UpdateTweet(ctx, r.PathValue("tweetId"), actor, body.Content)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, view)
}

// Delete handles DELETE /api/v1/tweets/{tweetId}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := requireViewer(w, r)
	if !ok {
		return
	}

	if err := h.Tweets.DeleteTweet(ctx, r.PathValue("tweetId"), actor); err != nil {
		respondError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
