package videos

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/contextutils"
	"github.com/quetrea/youtube-clone/internal/handlers/api/v1/params"
	"github.com/quetrea/youtube-clone/internal/response"
	"github.com/quetrea/youtube-clone/internal/services"
)

// maxUploadBytes caps the in-request multipart buffer before streaming to
// the hosting provider.
const maxUploadBytes = 2 << 30

// Controller handles the video endpoints: feeds, lifecycle and engagement.
type Controller struct {
	services *services.Collection
	logger   *zap.Logger
	response *response.Builder
}

// NewController creates the videos controller.
func NewController(svc *services.Collection, logger *zap.Logger, rb *response.Builder) *Controller {
	return &Controller{services: svc, logger: logger, response: rb}
}

// List handles GET /api/v1/videos
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	categoryID, err := params.QueryUUID(r, "category_id")
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	limit, err := params.Limit(r)
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}

	page, err := c.services.Feed.Home(r.Context(), &services.ListVideosRequest{
		CategoryID: categoryID,
		Cursor:     params.Cursor(r),
		Limit:      limit,
	})
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteSuccess(w, r, page)
}

// Get handles GET /api/v1/videos/{id}
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, err := params.UUID(r, "id")
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}

	video, err := c.services.Video.Get(r.Context(), id, viewer(r))
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteSuccess(w, r, video)
}

// Suggestions handles GET /api/v1/videos/{id}/suggestions
func (c *Controller) Suggestions(w http.ResponseWriter, r *http.Request) {
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

	page, err := c.services.Feed.Suggestions(r.Context(), &services.SuggestionsRequest{
		VideoID: id,
		Cursor:  params.Cursor(r),
		Limit:   limit,
	}, viewer(r))
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteSuccess(w, r, page)
}

// Create handles POST /api/v1/videos
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutils.GetUserID(r.Context())
	if !ok {
		c.response.WriteError(w, r, services.NewUnauthorizedError("authentication required"))
		return
	}

	var req services.CreateVideoRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			c.response.WriteError(w, r, services.NewValidationError("invalid request body", err))
			return
		}
	}

	session, err := c.services.Video.CreateUploadSession(r.Context(), userID, &req)
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteCreated(w, r, session)
}

// Upload handles POST /api/v1/videos/{id}/upload
func (c *Controller) Upload(w http.ResponseWriter, r *http.Request) {
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

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		c.response.WriteError(w, r, services.NewValidationError("invalid multipart body", err))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		c.response.WriteError(w, r, services.NewValidationError("missing file field", err))
		return
	}
	defer file.Close()

	video, err := c.services.Video.Upload(r.Context(), userID, id, file)
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteSuccess(w, r, video)
}

// Update handles PATCH /api/v1/videos/{id}
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

	var req services.UpdateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.response.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	video, err := c.services.Video.Update(r.Context(), userID, id, &req)
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteSuccess(w, r, video)
}

// RestoreThumbnail handles POST /api/v1/videos/{id}/thumbnail/restore
func (c *Controller) RestoreThumbnail(w http.ResponseWriter, r *http.Request) {
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

	video, err := c.services.Video.RestoreThumbnail(r.Context(), userID, id)
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteSuccess(w, r, video)
}

// Delete handles DELETE /api/v1/videos/{id}
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

	if err := c.services.Video.Delete(r.Context(), userID, id); err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteNoContent(w, r)
}

// RecordView handles POST /api/v1/videos/{id}/views
func (c *Controller) RecordView(w http.ResponseWriter, r *http.Request) {
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

	if err := c.services.Video.RecordView(r.Context(), userID, id); err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteNoContent(w, r)
}

// React handles PUT /api/v1/videos/{id}/reactions
func (c *Controller) React(w http.ResponseWriter, r *http.Request) {
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

	var req services.ReactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.response.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	current, err := c.services.Video.React(r.Context(), userID, id, &req)
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteSuccess(w, r, map[string]interface{}{"reaction": current})
}

// viewer returns the resolved viewer id, nil for anonymous requests.
func viewer(r *http.Request) *uuid.UUID {
	if id, ok := contextutils.GetUserID(r.Context()); ok {
		return &id
	}
	return nil
}
