package categories

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/handlers/api/v1/params"
	"github.com/quetrea/youtube-clone/internal/response"
	"github.com/quetrea/youtube-clone/internal/services"
)

// Controller handles category endpoints.
type Controller struct {
	services *services.Collection
	logger   *zap.Logger
	response *response.Builder
}

// NewController creates the categories controller.
func NewController(svc *services.Collection, logger *zap.Logger, rb *response.Builder) *Controller {
	return &Controller{services: svc, logger: logger, response: rb}
}

// List handles GET /api/v1/categories
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	cats, err := c.services.Category.List(r.Context())
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteSuccess(w, r, cats)
}

// Get handles GET /api/v1/categories/{id}
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, err := params.UUID(r, "id")
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}

	cat, err := c.services.Category.Get(r.Context(), id)
	if err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteSuccess(w, r, cat)
}
