// Package params parses the path and query parameters shared by the v1
// controllers. Range validation beyond basic syntax lives in the services.
package params

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quetrea/youtube-clone/internal/services"
)

// DefaultLimit applies when a listing request does not name a page size.
const DefaultLimit = 20

// UUID parses a required UUID path parameter.
func UUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, services.NewValidationError("invalid "+name, err)
	}
	return id, nil
}

// QueryUUID parses an optional UUID query parameter, nil when absent.
func QueryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, services.NewValidationError("invalid "+name, err)
	}
	return &id, nil
}

// Limit parses the page size, defaulting when absent. The services reject
// out-of-range values.
func Limit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return DefaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, services.NewValidationError("invalid limit", err)
	}
	return limit, nil
}

// Cursor returns the opaque cursor token, empty for the first page.
func Cursor(r *http.Request) string {
	return r.URL.Query().Get("cursor")
}
