package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/engagement"
	"github.com/vidtube/backend/internal/models"
)

// LikeHandler exposes like toggles and the liked-videos list.
type LikeHandler struct {
	Likes   LikeService
	Paging  engagement.Paging
	Limiter RateLimiter
}

// Toggle returns a handler for POST /api/v1/likes/toggle/{v|c|t}/{id}.
func (h LikeHandler) Toggle(kind models.EntityKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor, ok := requireViewer(w, r)
		if !ok {
			return
		}
		if rateLimited(w, r, h.Limiter, "likes") {
			return
		}

		res, err := h.Likes.ToggleLike(ctx, kind, r.PathValue("id"), actor)
		if err != nil {
			respondError(ctx, w, err)
			return
		}
		respondJSON(ctx, w, http.StatusOK, res)
	}
}

// LikedVideos handles GET /api/v1/likes/videos.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	req, ok := pageRequest(w, r, h.Paging)
	if !ok {
		return
	}

	page, err := h.Likes.ListLikedVideos(ctx, viewer, req)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, page)
}
