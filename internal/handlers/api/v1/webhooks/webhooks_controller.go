package webhooks

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/response"
	"github.com/quetrea/youtube-clone/internal/services"
	"github.com/quetrea/youtube-clone/internal/utils"
)

const maxWebhookBytes = 1 << 20

// Controller receives upload notifications from the media CDN.
type Controller struct {
	services *services.Collection
	uploader utils.VideoUploader
	logger   *zap.Logger
	response *response.Builder
}

// NewController creates the webhooks controller.
func NewController(svc *services.Collection, uploader utils.VideoUploader, logger *zap.Logger, rb *response.Builder) *Controller {
	return &Controller{services: svc, uploader: uploader, logger: logger, response: rb}
}

// Cloudinary handles POST /api/v1/webhooks/cloudinary. The raw body is
// needed twice: once for signature verification and once for decoding,
// so it is read up front.
func (c *Controller) Cloudinary(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		c.response.WriteError(w, r, services.NewValidationError("unreadable request body", err))
		return
	}

	timestamp := r.Header.Get("X-Cld-Timestamp")
	signature := r.Header.Get("X-Cld-Signature")
	if !c.uploader.VerifyWebhookSignature(body, timestamp, signature) {
		c.logger.Warn("rejected webhook with bad signature",
			zap.String("remote_addr", r.RemoteAddr))
		c.response.WriteError(w, r, services.NewUnauthorizedError("invalid webhook signature"))
		return
	}

	var notification services.WebhookNotification
	if err := json.Unmarshal(body, &notification); err != nil {
		c.response.WriteError(w, r, services.NewValidationError("invalid webhook payload", err))
		return
	}

	if err := c.services.Video.HandleWebhook(r.Context(), &notification); err != nil {
		c.response.WriteError(w, r, err)
		return
	}
	c.response.WriteSuccess(w, r, map[string]string{"status": "processed"})
}
