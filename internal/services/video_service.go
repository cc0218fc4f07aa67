package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/models"
	"github.com/quetrea/youtube-clone/internal/repositories"
	"github.com/quetrea/youtube-clone/internal/utils"
	"github.com/quetrea/youtube-clone/internal/validation"
)

// DefaultVideoTitle names a fresh upload session before the owner edits it.
const DefaultVideoTitle = "Untitled"

// videoService implements VideoService.
type videoService struct {
	videoRepo repositories.VideoRepository
	uploader  utils.VideoUploader
	logger    *zap.Logger
}

// NewVideoService creates the video lifecycle service.
func NewVideoService(
	videoRepo repositories.VideoRepository,
	uploader utils.VideoUploader,
	logger *zap.Logger,
) VideoService {
	return &videoService{
		videoRepo: videoRepo,
		uploader:  uploader,
		logger:    logger,
	}
}

// CreateUploadSession inserts the placeholder video row in `waiting` state
// and hands the client the URL to push the file to.
func (s *videoService) CreateUploadSession(ctx context.Context, userID uuid.UUID, req *CreateVideoRequest) (*UploadSession, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid create video request", err)
	}

	title := DefaultVideoTitle
	if req.Title != nil && *req.Title != "" {
		title = *req.Title
	}

	uploadID := uuid.New().String()
	video := &models.Video{
		UserID:       userID,
		Title:        title,
		Visibility:   models.VisibilityPrivate,
		UploadStatus: models.UploadStatusWaiting,
		UploadID:     &uploadID,
	}
	if err := s.videoRepo.Create(ctx, video); err != nil {
		return nil, NewInternalError("failed to create video")
	}

	s.logger.Info("Upload session created",
		zap.String("video_id", video.ID.String()),
		zap.String("upload_id", uploadID),
	)

	return &UploadSession{
		Video:     video,
		UploadURL: fmt.Sprintf("/api/v1/videos/%s/upload", video.ID),
	}, nil
}

// Upload receives the owner's file, pushes it to the hosting provider and,
// since the provider answers synchronously, completes the video in place.
// The completion webhook covers async eager processing and is idempotent
// with this path.
func (s *videoService) Upload(ctx context.Context, userID, videoID uuid.UUID, file multipart.File) (*models.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID, nil)
	if err != nil {
		if repositories.IsNoRows(err) {
			return nil, EntityNotFoundError("video", videoID.String())
		}
		return nil, NewInternalError("failed to load video")
	}
	if video.UserID != userID {
		return nil, EntityNotFoundError("video", videoID.String())
	}
	if video.UploadID == nil {
		return nil, NewBusinessError("video has no upload session", "NO_UPLOAD_SESSION")
	}
	if video.UploadStatus == models.UploadStatusReady {
		return nil, NewConflictError("video is already uploaded", "UPLOAD_COMPLETE")
	}

	if err := s.videoRepo.SetUploadStatus(ctx, videoID, models.UploadStatusProcessing, nil); err != nil {
		return nil, NewInternalError("failed to update upload status")
	}

	result, err := s.uploader.UploadVideo(ctx, file, *video.UploadID)
	if err != nil {
		if statusErr := s.videoRepo.SetUploadStatus(ctx, videoID, models.UploadStatusErrored, nil); statusErr != nil {
			s.logger.Error("Failed to mark upload errored",
				zap.Error(statusErr),
				zap.String("video_id", videoID.String()),
			)
		}
		return nil, NewInternalError("failed to upload video")
	}

	updated, err := s.videoRepo.CompleteUpload(ctx, *video.UploadID, repositories.UploadResult{
		PlaybackURL:     result.PlaybackURL,
		ThumbnailURL:    result.ThumbnailURL,
		DurationSeconds: result.Duration,
	})
	if err != nil {
		return nil, NewInternalError("failed to finalize upload")
	}
	return updated, nil
}

// HandleWebhook applies a hosting-provider notification. Unknown upload ids
// are not an error: the provider retries deliveries and rows can be deleted
// meanwhile.
func (s *videoService) HandleWebhook(ctx context.Context, notification *WebhookNotification) error {
	switch notification.NotificationType {
	case "upload":
		video, err := s.videoRepo.CompleteUpload(ctx, notification.PublicID, repositories.UploadResult{
			PlaybackURL:     notification.SecureURL,
			DurationSeconds: notification.Duration,
		})
		if err != nil {
			if repositories.IsNoRows(err) {
				s.logger.Warn("Webhook for unknown upload",
					zap.String("public_id", notification.PublicID),
				)
				return nil
			}
			return NewInternalError("failed to apply upload notification")
		}
		s.logger.Info("Upload notification applied",
			zap.String("video_id", video.ID.String()),
			zap.String("upload_id", notification.PublicID),
		)
		return nil

	case "error":
		video, err := s.videoRepo.GetByUploadID(ctx, notification.PublicID)
		if err != nil {
			if repositories.IsNoRows(err) {
				return nil
			}
			return NewInternalError("failed to load video for notification")
		}
		if err := s.videoRepo.SetUploadStatus(ctx, video.ID, models.UploadStatusErrored, nil); err != nil {
			return NewInternalError("failed to mark upload errored")
		}
		return nil

	default:
		s.logger.Debug("Ignoring webhook notification",
			zap.String("type", notification.NotificationType),
		)
		return nil
	}
}

// Get returns a single video with counts and viewer state. Private videos
// are visible to their owner only.
func (s *videoService) Get(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*models.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, id, viewerID)
	if err != nil {
		if repositories.IsNoRows(err) {
			return nil, EntityNotFoundError("video", id.String())
		}
		return nil, NewInternalError("failed to load video")
	}
	if video.Visibility == models.VisibilityPrivate {
		if viewerID == nil || *viewerID != video.UserID {
			return nil, EntityNotFoundError("video", id.String())
		}
	}
	return video, nil
}

// Update edits owner-editable fields and bumps updated_at, which moves the
// video to the top of recency-ordered feeds.
func (s *videoService) Update(ctx context.Context, userID, videoID uuid.UUID, req *UpdateVideoRequest) (*models.Video, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid update video request", err)
	}

	video := &models.Video{
		ID:          videoID,
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Visibility:  req.Visibility,
	}
	if err := s.videoRepo.Update(ctx, video); err != nil {
		if repositories.IsNoRows(err) {
			return nil, EntityNotFoundError("video", videoID.String())
		}
		return nil, NewInternalError("failed to update video")
	}
	return s.Get(ctx, videoID, &userID)
}

// RestoreThumbnail discards an owner's custom thumbnail and falls back to
// the poster frame the hosting provider derives from the video itself. The
// upload must have finished processing, since the poster frame comes from
// the playback URL.
func (s *videoService) RestoreThumbnail(ctx context.Context, userID, videoID uuid.UUID) (*models.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID, nil)
	if err != nil {
		if repositories.IsNoRows(err) {
			return nil, EntityNotFoundError("video", videoID.String())
		}
		return nil, NewInternalError("failed to load video")
	}
	if video.UserID != userID {
		return nil, EntityNotFoundError("video", videoID.String())
	}
	if video.PlaybackURL == nil {
		return nil, NewBusinessError("video has no processed upload", "UPLOAD_NOT_READY")
	}

	updated, err := s.videoRepo.ResetThumbnail(ctx, videoID, userID, utils.VideoThumbnailURL(*video.PlaybackURL))
	if err != nil {
		if repositories.IsNoRows(err) {
			return nil, EntityNotFoundError("video", videoID.String())
		}
		return nil, NewInternalError("failed to restore thumbnail")
	}

	// The row no longer references the custom asset; losing the remote
	// cleanup must not fail the request.
	if video.ThumbnailPublicID != nil {
		if err := s.uploader.Destroy(ctx, *video.ThumbnailPublicID, "image"); err != nil {
			s.logger.Warn("Failed to delete replaced thumbnail",
				zap.Error(err),
				zap.String("public_id", *video.ThumbnailPublicID),
			)
		}
	}
	return updated, nil
}

// Delete removes an owner's video and best-effort deletes the hosted assets.
func (s *videoService) Delete(ctx context.Context, userID, videoID uuid.UUID) error {
	video, err := s.videoRepo.GetByID(ctx, videoID, nil)
	if err != nil {
		if repositories.IsNoRows(err) {
			return EntityNotFoundError("video", videoID.String())
		}
		return NewInternalError("failed to load video")
	}
	if video.UserID != userID {
		return EntityNotFoundError("video", videoID.String())
	}

	deleted, err := s.videoRepo.Delete(ctx, videoID, userID)
	if err != nil {
		return NewInternalError("failed to delete video")
	}
	if !deleted {
		return EntityNotFoundError("video", videoID.String())
	}

	// Remote cleanup must not fail the request; the row is already gone.
	if video.UploadID != nil {
		if err := s.uploader.Destroy(ctx, *video.UploadID, "video"); err != nil {
			s.logger.Warn("Failed to delete hosted video asset",
				zap.Error(err),
				zap.String("upload_id", *video.UploadID),
			)
		}
	}
	if video.ThumbnailPublicID != nil {
		if err := s.uploader.Destroy(ctx, *video.ThumbnailPublicID, "image"); err != nil {
			s.logger.Warn("Failed to delete hosted thumbnail",
				zap.Error(err),
				zap.String("public_id", *video.ThumbnailPublicID),
			)
		}
	}
	return nil
}

// RecordView registers a watch. Idempotent per (viewer, video): a repeat
// view bumps the history timestamp instead of inserting a second row.
func (s *videoService) RecordView(ctx context.Context, userID, videoID uuid.UUID) error {
	if _, err := s.videoRepo.GetByID(ctx, videoID, nil); err != nil {
		if repositories.IsNoRows(err) {
			return EntityNotFoundError("video", videoID.String())
		}
		return NewInternalError("failed to load video")
	}
	if _, err := s.videoRepo.RecordView(ctx, userID, videoID); err != nil {
		return NewInternalError("failed to record view")
	}
	return nil
}

// React toggles the viewer's like/dislike on a video and returns the
// reaction now in effect, nil when cleared.
func (s *videoService) React(ctx context.Context, userID, videoID uuid.UUID, req *ReactionRequest) (*string, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid reaction request", err)
	}
	if _, err := s.videoRepo.GetByID(ctx, videoID, nil); err != nil {
		if repositories.IsNoRows(err) {
			return nil, EntityNotFoundError("video", videoID.String())
		}
		return nil, NewInternalError("failed to load video")
	}
	current, err := s.videoRepo.ToggleReaction(ctx, userID, videoID, req.Type)
	if err != nil {
		return nil, NewInternalError("failed to toggle reaction")
	}
	return current, nil
}
