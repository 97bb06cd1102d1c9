package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/engagement"
	"github.com/vidtube/backend/internal/models"
)

// DashboardHandler exposes the signed-in owner's channel data.
type DashboardHandler struct {
	Dashboard DashboardService
	Paging    engagement.Paging
}

// Stats handles GET /api/v1/dashboard/stats.
func (h DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := requireViewer(w, r)
	if !ok {
		return
	}

	stats, err := h.Dashboard.GetChannelStats(ctx, owner)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, stats)
}

// Videos handles GET /api/v1/dashboard/videos.
func (h DashboardHandler) Videos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := requireViewer(w, r)
	if !ok {
		return
	}
	req, ok := pageRequest(w, r, h.Paging)
	if !ok {
		return
	}
	order, err := orderFromQuery(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	page, err := h.Dashboard.ListChannelVideos(ctx, owner, order, req)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, page)
}

// ChannelHandler exposes channel profiles and single-entity views.
type ChannelHandler struct {
	Channels ChannelService
}

// Profile handles GET /api/v1/channels/{channelId}.
func (h ChannelHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.Channels.GetChannelProfile(ctx, r.PathValue("channelId"), viewerID(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, view)
}

// Entity handles GET /api/v1/views/{kind}/{id}. Unlike watching a video,
// reading its view does not count as a view.
func (h ChannelHandler) Entity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.Channels.GetEntityView(ctx, models.EntityKind(r.PathValue("kind")), r.PathValue("id"), viewerID(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, view)
}
