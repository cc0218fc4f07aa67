package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/config"
	"github.com/quetrea/youtube-clone/internal/database"
	"github.com/quetrea/youtube-clone/internal/handlers/api/v1/categories"
	"github.com/quetrea/youtube-clone/internal/handlers/api/v1/comments"
	"github.com/quetrea/youtube-clone/internal/handlers/api/v1/playlists"
	"github.com/quetrea/youtube-clone/internal/handlers/api/v1/search"
	"github.com/quetrea/youtube-clone/internal/handlers/api/v1/subscriptions"
	"github.com/quetrea/youtube-clone/internal/handlers/api/v1/users"
	"github.com/quetrea/youtube-clone/internal/handlers/api/v1/videos"
	"github.com/quetrea/youtube-clone/internal/handlers/api/v1/webhooks"
	"github.com/quetrea/youtube-clone/internal/middleware"
	"github.com/quetrea/youtube-clone/internal/response"
	"github.com/quetrea/youtube-clone/internal/services"
	"github.com/quetrea/youtube-clone/internal/utils"
)

// Deps carries everything the router needs to assemble the handler tree.
type Deps struct {
	Config   *config.Config
	Services *services.Collection
	Uploader utils.VideoUploader
	DB       *database.Manager
	Response *response.Builder
	Auth     *middleware.Auth
	Limiter  *middleware.RateLimiter
	Logger   *zap.Logger
}

// New builds the HTTP handler with the full middleware chain and all
// API v1 routes mounted.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredLogger(d.Logger))
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(&d.Config.Security))
	r.Use(response.Middleware(d.Response))

	r.Get("/health", healthHandler(d.DB, d.Response))

	videoController := videos.NewController(d.Services, d.Logger, d.Response)
	searchController := search.NewController(d.Services, d.Logger, d.Response)
	commentController := comments.NewController(d.Services, d.Logger, d.Response)
	playlistController := playlists.NewController(d.Services, d.Logger, d.Response)
	subscriptionController := subscriptions.NewController(d.Services, d.Logger, d.Response)
	categoryController := categories.NewController(d.Services, d.Logger, d.Response)
	userController := users.NewController(d.Services, d.Logger, d.Response)
	webhookController := webhooks.NewController(d.Services, d.Uploader, d.Logger, d.Response)

	r.Route("/api/v1", func(r chi.Router) {
		// The limiter mounts after each group's auth middleware so
		// authenticated traffic is counted per user instead of per
		// source address.

		// Public reads with an optional viewer for personalization.
		r.Group(func(r chi.Router) {
			r.Use(d.Auth.Optional)
			r.Use(d.Limiter.Limit)

			r.Get("/videos", videoController.List)
			r.Get("/videos/{id}", videoController.Get)
			r.Get("/videos/{id}/suggestions", videoController.Suggestions)
			r.Get("/videos/{id}/comments", commentController.List)
			r.Get("/search", searchController.Search)
			r.Get("/categories", categoryController.List)
			r.Get("/categories/{id}", categoryController.Get)
			r.Get("/users/{id}", userController.Profile)
			r.Get("/users/{id}/videos", userController.Videos)
		})

		// Sync needs only a verified token; the local profile may not
		// exist yet.
		r.Group(func(r chi.Router) {
			r.Use(d.Auth.Token)
			r.Use(d.Limiter.Limit)
			r.Post("/users/sync", userController.Sync)
		})

		// Everything else that mutates state requires a resolved user.
		r.Group(func(r chi.Router) {
			r.Use(d.Auth.Require)
			r.Use(d.Limiter.Limit)

			r.Get("/users/me", userController.Me)

			r.Post("/videos", videoController.Create)
			r.Post("/videos/{id}/upload", videoController.Upload)
			r.Patch("/videos/{id}", videoController.Update)
			r.Post("/videos/{id}/thumbnail/restore", videoController.RestoreThumbnail)
			r.Delete("/videos/{id}", videoController.Delete)
			r.Post("/videos/{id}/views", videoController.RecordView)
			r.Put("/videos/{id}/reactions", videoController.React)

			r.Post("/videos/{id}/comments", commentController.Create)
			r.Delete("/comments/{id}", commentController.Delete)
			r.Put("/comments/{id}/reactions", commentController.React)

			r.Get("/playlists", playlistController.List)
			r.Post("/playlists", playlistController.Create)
			r.Get("/playlists/liked", playlistController.Liked)
			r.Get("/playlists/history", playlistController.History)
			r.Patch("/playlists/{id}", playlistController.Update)
			r.Delete("/playlists/{id}", playlistController.Delete)
			r.Get("/playlists/{id}/videos", playlistController.ListVideos)
			r.Post("/playlists/{id}/videos", playlistController.AddVideo)
			r.Delete("/playlists/{id}/videos/{videoID}", playlistController.RemoveVideo)

			r.Post("/subscriptions", subscriptionController.Subscribe)
			r.Delete("/subscriptions/{creatorID}", subscriptionController.Unsubscribe)
		})

		// The CDN signs its own requests; no user auth involved.
		r.With(d.Limiter.Limit).Post("/webhooks/cloudinary", webhookController.Cloudinary)
	})

	return r
}

func healthHandler(db *database.Manager, rb *response.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := db.Health(r.Context())
		if status.Status == database.StatusUnhealthy {
			rb.WriteError(w, r, services.NewServiceUnavailableError("database unavailable"))
			return
		}
		rb.WriteSuccess(w, r, status)
	}
}
