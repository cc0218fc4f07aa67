package users

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

// Controller handles user and channel endpoints.
type Controller struct {
	services *services.Collection
	logger   *zap.Logger
	response *response.Builder
}

// NewController creates the users controller.
func NewController(svc *services.Collection, logger *zap.Logger, rb *response.Builder) *Controller {
	return &Controller{services: svc, logger: logger, response: rb}
}

// Sync handles POST /api/v1/users/sync. It upserts the caller's profile;
// the external id comes from the verified token, never the body.
func (c *Controller) Sync(w http.ResponseWriter, r *http.Request) {
	externalID, ok := contextutils.GetExternalID(r.Context())
	if !ok {
		c.response.WriteError(w, r, services.NewUnauthorizedError("authentication required"))
		return
	}

	var req services.SyncUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.response.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.ExternalID = externalID

	user, err := c.services.User.Sync(r.Context(), &req)
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteSuccess(w, r, user)
}

// Me handles GET /api/v1/users/me
func (c *Controller) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutils.GetUserID(r.Context())
	if !ok {
		c.response.WriteError(w, r, services.NewUnauthorizedError("authentication required"))
		return
	}

	user, err := c.services.User.GetByID(r.Context(), userID)
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteSuccess(w, r, user)
}

// Profile handles GET /api/v1/users/{id}. The profile carries the
// channel's subscriber and public video counts, plus the authenticated
// viewer's subscription state when someone else's channel is requested.
func (c *Controller) Profile(w http.ResponseWriter, r *http.Request) {
	id, err := params.UUID(r, "id")
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}

	user, err := c.services.User.GetProfile(r.Context(), id)
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}

	if v := viewer(r); v != nil && *v != id {
		subscribed, err := c.services.Subscription.IsSubscribed(r.Context(), *v, id)
		if err != nil {
			c.response.WriteError(w, r, err)
			return
		}
		user.Subscribed = &subscribed
	}
	c.response.WriteSuccess(w, r, user)
}

// Videos handles GET /api/v1/users/{id}/videos. The channel owner
// sees private videos in their own feed; everyone else sees public
// ready ones only.
func (c *Controller) Videos(w http.ResponseWriter, r *http.Request) {
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

	page, err := c.services.Feed.Channel(r.Context(), &services.ChannelVideosRequest{
		UserID: id,
		Cursor: params.Cursor(r),
		Limit:  limit,
	}, viewer(r))
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteSuccess(w, r, page)
}

func viewer(r *http.Request) *uuid.UUID {
	if id, ok := contextutils.GetUserID(r.Context()); ok {
		return &id
	}
	return nil
}
