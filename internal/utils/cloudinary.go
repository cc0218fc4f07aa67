package utils

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/config"
)

// VideoUploadResult carries what the hosting provider reports back for a
// processed video.
type VideoUploadResult struct {
	PublicID     string
	PlaybackURL  string
	ThumbnailURL string
	Duration     float64
	Bytes        int64
	Format       string
}

// VideoUploader is the hosting-provider surface the video service depends
// on. Backed by Cloudinary in production, faked in tests.
type VideoUploader interface {
	UploadVideo(ctx context.Context, file multipart.File, publicID string) (*VideoUploadResult, error)
	Destroy(ctx context.Context, publicID, resourceType string) error
	VerifyWebhookSignature(body []byte, timestamp, signature string) bool
}

// CloudinaryService wraps the Cloudinary SDK for video upload, deletion and
// webhook verification.
type CloudinaryService struct {
	client  *cloudinary.Cloudinary
	config  *config.CloudinaryConfig
	logger  *zap.Logger
	timeout time.Duration
	retries uint64
}

// NewCloudinaryService creates the Cloudinary adapter from configuration.
func NewCloudinaryService(cfg *config.CloudinaryConfig, logger *zap.Logger) (*CloudinaryService, error) {
	client, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	client.Config.URL.Secure = true

	return &CloudinaryService{
		client:  client,
		config:  cfg,
		logger:  logger,
		timeout: 5 * time.Minute,
		retries: 3,
	}, nil
}

// UploadVideo pushes a video file to Cloudinary under the given public id,
// retrying transient failures with exponential backoff. The public id is the
// upload session id, which is how the completion webhook and asset cleanup
// find the row; no folder may be set or Cloudinary would prefix the id and
// break that key.
func (s *CloudinaryService) UploadVideo(ctx context.Context, file multipart.File, publicID string) (*VideoUploadResult, error) {
	uploadCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := uploader.UploadParams{
		PublicID:       publicID,
		ResourceType:   "video",
		UseFilename:    boolPtr(false),
		UniqueFilename: boolPtr(false),
		Overwrite:      boolPtr(true),
	}
	if s.config.UploadPreset != "" {
		params.UploadPreset = s.config.UploadPreset
	}

	var result *uploader.UploadResult
	operation := func() error {
		if _, err := file.Seek(0, 0); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to rewind upload file: %w", err))
		}
		res, err := s.client.Upload.Upload(uploadCtx, file, params)
		if err != nil {
			return err
		}
		if res.Error.Message != "" {
			return backoff.Permanent(fmt.Errorf("cloudinary rejected upload: %s", res.Error.Message))
		}
		result = res
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(
		backoff.NewExponentialBackOff(backoff.WithInitialInterval(time.Second)),
		s.retries,
	), uploadCtx)

	if err := backoff.Retry(operation, policy); err != nil {
		s.logger.Error("Failed to upload video to Cloudinary",
			zap.Error(err),
			zap.String("public_id", publicID),
		)
		return nil, fmt.Errorf("failed to upload video: %w", err)
	}

	duration := uploadDuration(result)
	s.logger.Info("Video uploaded to Cloudinary",
		zap.String("public_id", result.PublicID),
		zap.Float64("duration", duration),
		zap.Int("bytes", result.Bytes),
	)

	return &VideoUploadResult{
		PublicID:     result.PublicID,
		PlaybackURL:  result.SecureURL,
		ThumbnailURL: VideoThumbnailURL(result.SecureURL),
		Duration:     duration,
		Bytes:        int64(result.Bytes),
		Format:       result.Format,
	}, nil
}

// uploadDuration pulls the clip duration out of the raw upload response. The
// SDK's typed result struct does not carry the video-specific fields, but it
// preserves the raw JSON payload, boxed as a pointer to whatever the body
// decoded into.
func uploadDuration(result *uploader.UploadResult) float64 {
	var payload map[string]interface{}
	switch resp := result.Response.(type) {
	case *map[string]interface{}:
		if resp != nil {
			payload = *resp
		}
	case map[string]interface{}:
		payload = resp
	default:
		return 0
	}
	duration, ok := payload["duration"].(float64)
	if !ok {
		return 0
	}
	return duration
}

// Destroy removes an asset from Cloudinary. resourceType is "video" or
// "image".
func (s *CloudinaryService) Destroy(ctx context.Context, publicID, resourceType string) error {
	deleteCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := s.client.Upload.Destroy(deleteCtx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		s.logger.Error("Failed to delete Cloudinary asset",
			zap.Error(err),
			zap.String("public_id", publicID),
		)
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	if result.Result != "ok" && result.Result != "not found" {
		s.logger.Warn("Cloudinary asset deletion result was not OK",
			zap.String("public_id", publicID),
			zap.String("result", result.Result),
		)
	}
	return nil
}

// VerifyWebhookSignature checks a notification's X-Cld-Signature header:
// hex SHA-1 over the raw body concatenated with the timestamp and the API
// secret.
func (s *CloudinaryService) VerifyWebhookSignature(body []byte, timestamp, signature string) bool {
	if signature == "" || timestamp == "" {
		return false
	}
	secret := s.config.WebhookSecret
	if secret == "" {
		secret = s.config.APISecret
	}

	h := sha1.New()
	h.Write(body)
	h.Write([]byte(timestamp))
	h.Write([]byte(secret))
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

// VideoThumbnailURL derives the provider-generated poster frame from a video
// delivery URL by swapping the file extension to jpg.
func VideoThumbnailURL(playbackURL string) string {
	if playbackURL == "" {
		return ""
	}
	if idx := strings.LastIndex(playbackURL, "."); idx > strings.LastIndex(playbackURL, "/") {
		return playbackURL[:idx] + ".jpg"
	}
	return playbackURL + ".jpg"
}

func boolPtr(b bool) *bool { return &b }
