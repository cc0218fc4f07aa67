package search

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/handlers/api/v1/params"
	"github.com/quetrea/youtube-clone/internal/response"
	"github.com/quetrea/youtube-clone/internal/services"
)

// Controller handles the search endpoint.
type Controller struct {
	services *services.Collection
	logger   *zap.Logger
	response *response.Builder
}

// NewController creates the search controller.
func NewController(svc *services.Collection, logger *zap.Logger, rb *response.Builder) *Controller {
	return &Controller{services: svc, logger: logger, response: rb}
}

// Search handles GET /api/v1/search
func (c *Controller) Search(w http.ResponseWriter, r *http.Request) {
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

	page, err := c.services.Feed.Search(r.Context(), &services.SearchRequest{
		Query:      r.URL.Query().Get("query"),
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
