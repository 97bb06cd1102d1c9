package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/engagement"
)

// CommentHandler exposes video comments.
type CommentHandler struct {
	Comments CommentService
	Paging   engagement.Paging
}

type contentRequest struct {
	Content string `json:"content"`
}

// List handles GET /api/v1/comments/{videoId}.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := pageRequest(w, r, h.Paging)
	if !ok {
		return
	}

	page, err := h.Comments.ListVideoComments(ctx, r.PathValue("videoId"), req, viewerID(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, page)
}

// Create handles POST /api/v1/comments/{videoId}.
func (h CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := requireViewer(w, r)
	if !ok {
		return
	}
	var body contentRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	view, err := h.Comments.AddComment(ctx, r.PathValue("videoId"), actor, body.Content)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, view)
}

// Update handles PATCH /api/v1/comments/c/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := requireViewer(w, r)
	if !ok {
		return
	}
	var body contentRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	view, err := h.Comments.UpdateComment(ctx, r.PathValue("commentId"), actor, body.Content)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, view)
}

// Delete handles DELETE /api/v1/comments/c/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := requireViewer(w, r)
	if !ok {
		return
	}

	if err := h.Comments.DeleteComment(ctx, r.PathValue("commentId"), actor); err != nil {
		respondError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
