package subscriptions

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/contextutils"
	"github.com/quetrea/youtube-clone/internal/handlers/api/v1/params"
	"github.com/quetrea/youtube-clone/internal/response"
	"github.com/quetrea/youtube-clone/internal/services"
)

// Controller handles subscription endpoints.
type Controller struct {
	services *services.Collection
	logger   *zap.Logger
	response *response.Builder
}

// NewController creates the subscriptions controller.
func NewController(svc *services.Collection, logger *zap.Logger, rb *response.Builder) *Controller {
	return &Controller{services: svc, logger: logger, response: rb}
}

// Subscribe handles POST /api/v1/subscriptions
func (c *Controller) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutils.GetUserID(r.Context())
	if !ok {
		c.response.WriteError(w, r, services.NewUnauthorizedError("authentication required"))
		return
	}

	var req services.CreateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.response.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	if err := c.services.Subscription.Subscribe(r.Context(), userID, &req); err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteCreated(w, r, map[string]string{"creator_id": req.CreatorID.String()})
}

// Unsubscribe handles DELETE /api/v1/subscriptions/{creatorID}
func (c *Controller) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := contextutils.GetUserID(r.Context())
	if !ok {
		c.response.WriteError(w, r, services.NewUnauthorizedError("authentication required"))
		return
	}
	creatorID, err := params.UUID(r, "creatorID")
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}

	if err := c.services.Subscription.Unsubscribe(r.Context(), userID, creatorID); err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteNoContent(w, r)
}
