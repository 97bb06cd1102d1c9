package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/engagement"
)

// VideoHandler exposes the video feed and owner video edits.
type VideoHandler struct {
	Videos  VideoService
	Paging  engagement.Paging
	Limiter RateLimiter
}

type updateVideoRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Thumbnail   *string `json:"thumbnail"`
}

// List handles GET /api/v1/videos?page=&limit=&query=&userId=&order_by=.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := pageRequest(w, r, h.Paging)
	if !ok {
		return
	}
	order, err := orderFromQuery(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	q := r.URL.Query()
	filter := engagement.VideoFilter{Query: q.Get("query"), OwnerID: q.Get("userId")}

	page, err := h.Videos.ListFeed(ctx, filter, order, req, viewerID(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, page)
}

// Watch handles GET /api/v1/videos/{videoId}. Each call counts as a view.
func (h VideoHandler) Watch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.Videos.WatchVideo(ctx, r.PathValue("videoId"), viewerID(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, view)
}

// Update handles PATCH /api/v1/videos/{videoId}.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := requireViewer(w, r)
	if !ok {
		return
	}

	var body updateVideoRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	view, err := h.Videos.UpdateVideo(ctx, r.PathValue("videoId"), actor, engagement.VideoPatch{
		Title:       body.Title,
		Description: body.Description,
		Thumbnail:   body.Thumbnail,
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, view)
}

// TogglePublish handles PATCH /api/v1/videos/toggle/publish/{videoId}.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := requireViewer(w, r)
	if !ok {
		return
	}
	if rateLimited(w, r, h.Limiter, "publish") {
		return
	}

	view, err := h.Videos.TogglePublish(ctx, r.PathValue("videoId"), actor)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, view)
}

// Delete handles DELETE /api/v1/videos/{videoId}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := requireViewer(w, r)
	if !ok {
		return
	}

	if err := h.Videos.DeleteVideo(ctx, r.PathValue("videoId"), actor); err != nil {
		respondError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
