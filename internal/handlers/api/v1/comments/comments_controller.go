package comments

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

// Controller handles comment endpoints.
type Controller struct {
	services *services.Collection
	logger   *zap.Logger
	response *response.Builder
}

// NewController creates the comments controller.
func NewController(svc *services.Collection, logger *zap.Logger, rb *response.Builder) *Controller {
	return &Controller{services: svc, logger: logger, response: rb}
}

// List handles GET /api/v1/videos/{id}/comments
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	videoID, err := params.UUID(r, "id")
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	parentID, err := params.QueryUUID(r, "parent_id")
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	limit, err := params.Limit(r)
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}

	page, err := c.services.Comment.List(r.Context(), &services.ListCommentsRequest{
		VideoID:  videoID,
		ParentID: parentID,
		Cursor:   params.Cursor(r),
		Limit:    limit,
	}, viewer(r))
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteSuccess(w, r, page)
}

// Create handles POST /api/v1/videos/{id}/comments
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutils.GetUserID(r.Context())
	if !ok {
		c.response.WriteError(w, r, services.NewUnauthorizedError("authentication required"))
		return
	}
	videoID, err := params.UUID(r, "id")
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}

	var req services.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.response.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	comment, err := c.services.Comment.Create(r.Context(), userID, videoID, &req)
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteCreated(w, r, comment)
}

// Delete handles DELETE /api/v1/comments/{id}
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

	if err := c.services.Comment.Delete(r.Context(), userID, id); err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteNoContent(w, r)
}

// React handles PUT /api/v1/comments/{id}/reactions
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

	current, err := c.services.Comment.React(r.Context(), userID, id, &req)
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteSuccess(w, r, map[string]interface{}{"reaction": current})
}

func viewer(r *http.Request) *uuid.UUID {
	if id, ok := contextutils.GetUserID(r.Context()); ok {
		return &id
	}
	return nil
}
