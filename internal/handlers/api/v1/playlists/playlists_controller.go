package playlists

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/contextutils"
	"github.com/quetrea/youtube-clone/internal/handlers/api/v1/params"
	"github.com/quetrea/youtube-clone/internal/response"
	"github.com/quetrea/youtube-clone/internal/services"
)

// Controller handles playlist endpoints. Every route requires an
// authenticated viewer; playlists are private to their owner.
type Controller struct {
	services *services.Collection
	logger   *zap.Logger
	response *response.Builder
}

// NewController creates the playlists controller.
func NewController(svc *services.Collection, logger *zap.Logger, rb *response.Builder) *Controller {
	return &Controller{services: svc, logger: logger, response: rb}
}

// List handles GET /api/v1/playlists
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutils.GetUserID(r.Context())
	if !ok {
		c.response.WriteError(w, r, services.NewUnauthorizedError("authentication required"))
		return
	}
	limit, err := params.Limit(r)
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}

	page, err := c.services.Playlist.List(r.Context(), userID, &services.ListPlaylistsRequest{
		Cursor: params.Cursor(r),
		Limit:  limit,
	})
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteSuccess(w, r, page)
}

// Create handles POST /api/v1/playlists
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutils.GetUserID(r.Context())
	if !ok {
		c.response.WriteError(w, r, services.NewUnauthorizedError("authentication required"))
		return
	}

	var req services.CreatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.response.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	playlist, err := c.services.Playlist.Create(r.Context(), userID, &req)
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteCreated(w, r, playlist)
}

// Update handles PATCH /api/v1/playlists/{id}
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutils.GetUserID(r.Context())
	if !ok {
		c.response.WriteError(w, r, services.NewUnauthorizedError("authentication required"))
		return
	}
	id, err := params.UUID(r, "id")
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}

	var req services.UpdatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.response.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	playlist, err := c.services.Playlist.Update(r.Context(), userID, id, &req)
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteSuccess(w, r, playlist)
}

// Delete handles DELETE /api/v1/playlists/{id}
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutils.GetUserID(r.Context())
	if !ok {
		c.response.WriteError(w, r, services.NewUnauthorizedError("authentication required"))
		return
	}
	id, err := params.UUID(r, "id")
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}

	if err := c.services.Playlist.Delete(r.Context(), userID, id); err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteNoContent(w, r)
}

// AddVideo handles POST /api/v1/playlists/{id}/videos
func (c *Controller) AddVideo(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutils.GetUserID(r.Context())
	if !ok {
		c.response.WriteError(w, r, services.NewUnauthorizedError("authentication required"))
		return
	}
	id, err := params.UUID(r, "id")
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}

	var req services.AddPlaylistVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.response.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	if err := c.services.Playlist.AddVideo(r.Context(), userID, id, &req); err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteNoContent(w, r)
}

// RemoveVideo handles DELETE /api/v1/playlists/{id}/videos/{videoID}
func (c *Controller) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutils.GetUserID(r.Context())
	if !ok {
		c.response.WriteError(w, r, services.NewUnauthorizedError("authentication required"))
		return
	}
	id, err := params.UUID(r, "id")
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	videoID, err := params.UUID(r, "videoID")
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}

	if err := c.services.Playlist.RemoveVideo(r.Context(), userID, id, videoID); err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteNoContent(w, r)
}

// ListVideos handles GET /api/v1/playlists/{id}/videos
func (c *Controller) ListVideos(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutils.GetUserID(r.Context())
	if !ok {
		c.response.WriteError(w, r, services.NewUnauthorizedError("authentication required"))
		return
	}
	id, err := params.UUID(r, "id")
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	limit, err := params.Limit(r)
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}

	page, err := c.services.Playlist.ListVideos(r.Context(), userID, &services.ListPlaylistVideosRequest{
		PlaylistID: id,
		Cursor:     params.Cursor(r),
		Limit:      limit,
	})
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteSuccess(w, r, page)
}

// Liked handles GET /api/v1/playlists/liked
func (c *Controller) Liked(w http.ResponseWriter, r *http.Request) {
	c.viewerFeed(w, r, c.services.Playlist.Liked)
}

// History handles GET /api/v1/playlists/history
func (c *Controller) History(w http.ResponseWriter, r *http.Request) {
	c.viewerFeed(w, r, c.services.Playlist.History)
}

func (c *Controller) viewerFeed(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, userID uuid.UUID, req *services.ViewerFeedRequest) (*services.VideoPage, error)) {
	userID, ok := contextutils.GetUserID(r.Context())
	if !ok {
		c.response.WriteError(w, r, services.NewUnauthorizedError("authentication required"))
		return
	}
	limit, err := params.Limit(r)
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}

	page, err := list(r.Context(), userID, &services.ViewerFeedRequest{
		Cursor: params.Cursor(r),
		Limit:  limit,
	})
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteSuccess(w, r, page)
}
