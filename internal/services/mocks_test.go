package services

import (
	"context"
	"database/sql"
	"mime/multipart"

	"github.com/google/uuid"

	"github.com/quetrea/youtube-clone/internal/models"
	"github.com/quetrea/youtube-clone/internal/repositories"
	"github.com/quetrea/youtube-clone/internal/utils"
)

// Hand-written repository stubs. Each method delegates to an optional
// function field so individual tests only wire what they exercise;
// unwired lookups report sql.ErrNoRows like an empty database would.

type stubVideoRepo struct {
	createFn          func(ctx context.Context, video *models.Video) error
	getByIDFn         func(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*models.Video, error)
	getByUploadIDFn   func(ctx context.Context, uploadID string) (*models.Video, error)
	updateFn          func(ctx context.Context, video *models.Video) error
	deleteFn          func(ctx context.Context, id, ownerID uuid.UUID) (bool, error)
	setUploadStatusFn func(ctx context.Context, id uuid.UUID, status string, uploadID *string) error
	completeUploadFn  func(ctx context.Context, uploadID string, result repositories.UploadResult) (*models.Video, error)
	resetThumbnailFn  func(ctx context.Context, id, ownerID uuid.UUID, thumbnailURL string) (*models.Video, error)
	listHomeFn        func(ctx context.Context, params repositories.HomeFeedParams) ([]*models.VideoListItem, error)
	listSearchFn      func(ctx context.Context, params repositories.SearchParams) ([]*models.VideoListItem, error)
	listSuggestionsFn func(ctx context.Context, params repositories.SuggestionParams) ([]*models.VideoListItem, error)
	listChannelFn     func(ctx context.Context, params repositories.ChannelFeedParams) ([]*models.VideoListItem, error)
	recordViewFn      func(ctx context.Context, userID, videoID uuid.UUID) (bool, error)
	toggleReactionFn  func(ctx context.Context, userID, videoID uuid.UUID, reactionType string) (*string, error)
}

func (s *stubVideoRepo) Create(ctx context.Context, video *models.Video) error {
	if s.createFn != nil {
		return s.createFn(ctx, video)
	}
	return nil
}

func (s *stubVideoRepo) GetByID(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*models.Video, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id, viewerID)
	}
	return nil, sql.ErrNoRows
}

func (s *stubVideoRepo) GetByUploadID(ctx context.Context, uploadID string) (*models.Video, error) {
	if s.getByUploadIDFn != nil {
		return s.getByUploadIDFn(ctx, uploadID)
	}
	return nil, sql.ErrNoRows
}

func (s *stubVideoRepo) Update(ctx context.Context, video *models.Video) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, video)
	}
	return nil
}

func (s *stubVideoRepo) Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id, ownerID)
	}
	return false, nil
}

func (s *stubVideoRepo) SetUploadStatus(ctx context.Context, id uuid.UUID, status string, uploadID *string) error {
	if s.setUploadStatusFn != nil {
		return s.setUploadStatusFn(ctx, id, status, uploadID)
	}
	return nil
}

func (s *stubVideoRepo) CompleteUpload(ctx context.Context, uploadID string, result repositories.UploadResult) (*models.Video, error) {
	if s.completeUploadFn != nil {
		return s.completeUploadFn(ctx, uploadID, result)
	}
	return nil, sql.ErrNoRows
}

func (s *stubVideoRepo) ResetThumbnail(ctx context.Context, id, ownerID uuid.UUID, thumbnailURL string) (*models.Video, error) {
	if s.resetThumbnailFn != nil {
		return s.resetThumbnailFn(ctx, id, ownerID, thumbnailURL)
	}
	return nil, sql.ErrNoRows
}

func (s *stubVideoRepo) ListHome(ctx context.Context, params repositories.HomeFeedParams) ([]*models.VideoListItem, error) {
	if s.listHomeFn != nil {
		return s.listHomeFn(ctx, params)
	}
	return nil, nil
}

func (s *stubVideoRepo) ListSearch(ctx context.Context, params repositories.SearchParams) ([]*models.VideoListItem, error) {
	if s.listSearchFn != nil {
		return s.listSearchFn(ctx, params)
	}
	return nil, nil
}

func (s *stubVideoRepo) ListSuggestions(ctx context.Context, params repositories.SuggestionParams) ([]*models.VideoListItem, error) {
	if s.listSuggestionsFn != nil {
		return s.listSuggestionsFn(ctx, params)
	}
	return nil, nil
}

func (s *stubVideoRepo) ListChannel(ctx context.Context, params repositories.ChannelFeedParams) ([]*models.VideoListItem, error) {
	if s.listChannelFn != nil {
		return s.listChannelFn(ctx, params)
	}
	return nil, nil
}

func (s *stubVideoRepo) RecordView(ctx context.Context, userID, videoID uuid.UUID) (bool, error) {
	if s.recordViewFn != nil {
		return s.recordViewFn(ctx, userID, videoID)
	}
	return true, nil
}

func (s *stubVideoRepo) ToggleReaction(ctx context.Context, userID, videoID uuid.UUID, reactionType string) (*string, error) {
	if s.toggleReactionFn != nil {
		return s.toggleReactionFn(ctx, userID, videoID, reactionType)
	}
	return &reactionType, nil
}

type stubCommentRepo struct {
	createFn         func(ctx context.Context, comment *models.Comment) error
	getByIDFn        func(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	deleteFn         func(ctx context.Context, id, ownerID uuid.UUID) (bool, error)
	listForVideoFn   func(ctx context.Context, params repositories.CommentListParams) ([]*models.Comment, error)
	countForVideoFn  func(ctx context.Context, videoID uuid.UUID) (int64, error)
	toggleReactionFn func(ctx context.Context, userID, commentID uuid.UUID, reactionType string) (*string, error)
}

func (s *stubCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	if s.createFn != nil {
		return s.createFn(ctx, comment)
	}
	return nil
}

func (s *stubCommentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (s *stubCommentRepo) Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id, ownerID)
	}
	return false, nil
}

func (s *stubCommentRepo) ListForVideo(ctx context.Context, params repositories.CommentListParams) ([]*models.Comment, error) {
	if s.listForVideoFn != nil {
		return s.listForVideoFn(ctx, params)
	}
	return nil, nil
}

func (s *stubCommentRepo) CountForVideo(ctx context.Context, videoID uuid.UUID) (int64, error) {
	if s.countForVideoFn != nil {
		return s.countForVideoFn(ctx, videoID)
	}
	return 0, nil
}

func (s *stubCommentRepo) ToggleReaction(ctx context.Context, userID, commentID uuid.UUID, reactionType string) (*string, error) {
	if s.toggleReactionFn != nil {
		return s.toggleReactionFn(ctx, userID, commentID, reactionType)
	}
	return &reactionType, nil
}

type stubSubscriptionRepo struct {
	createFn func(ctx context.Context, viewerID, creatorID uuid.UUID) error
	deleteFn func(ctx context.Context, viewerID, creatorID uuid.UUID) (bool, error)
	existsFn func(ctx context.Context, viewerID, creatorID uuid.UUID) (bool, error)
}

func (s *stubSubscriptionRepo) Create(ctx context.Context, viewerID, creatorID uuid.UUID) error {
	if s.createFn != nil {
		return s.createFn(ctx, viewerID, creatorID)
	}
	return nil
}

func (s *stubSubscriptionRepo) Delete(ctx context.Context, viewerID, creatorID uuid.UUID) (bool, error) {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, viewerID, creatorID)
	}
	return false, nil
}

func (s *stubSubscriptionRepo) Exists(ctx context.Context, viewerID, creatorID uuid.UUID) (bool, error) {
	if s.existsFn != nil {
		return s.existsFn(ctx, viewerID, creatorID)
	}
	return false, nil
}

type stubPlaylistRepo struct {
	createFn        func(ctx context.Context, playlist *models.Playlist) error
	getByIDFn       func(ctx context.Context, id uuid.UUID) (*models.Playlist, error)
	updateFn        func(ctx context.Context, playlist *models.Playlist) error
	deleteFn        func(ctx context.Context, id, ownerID uuid.UUID) (bool, error)
	listForOwnerFn  func(ctx context.Context, params repositories.PlaylistListParams) ([]*models.Playlist, error)
	addVideoFn      func(ctx context.Context, playlistID, videoID uuid.UUID) error
	removeVideoFn   func(ctx context.Context, playlistID, videoID uuid.UUID) (bool, error)
	containsVideoFn func(ctx context.Context, playlistID, videoID uuid.UUID) (bool, error)
	listVideosFn    func(ctx context.Context, params repositories.PlaylistVideosParams) ([]*models.VideoListItem, error)
	listLikedFn     func(ctx context.Context, params repositories.ViewerFeedParams) ([]*models.VideoListItem, error)
	listHistoryFn   func(ctx context.Context, params repositories.ViewerFeedParams) ([]*models.VideoListItem, error)
}

func (s *stubPlaylistRepo) Create(ctx context.Context, playlist *models.Playlist) error {
	if s.createFn != nil {
		return s.createFn(ctx, playlist)
	}
	return nil
}

func (s *stubPlaylistRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Playlist, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (s *stubPlaylistRepo) Update(ctx context.Context, playlist *models.Playlist) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, playlist)
	}
	return nil
}

func (s *stubPlaylistRepo) Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id, ownerID)
	}
	return false, nil
}

func (s *stubPlaylistRepo) ListForOwner(ctx context.Context, params repositories.PlaylistListParams) ([]*models.Playlist, error) {
	if s.listForOwnerFn != nil {
		return s.listForOwnerFn(ctx, params)
	}
	return nil, nil
}

func (s *stubPlaylistRepo) AddVideo(ctx context.Context, playlistID, videoID uuid.UUID) error {
	if s.addVideoFn != nil {
		return s.addVideoFn(ctx, playlistID, videoID)
	}
	return nil
}

func (s *stubPlaylistRepo) RemoveVideo(ctx context.Context, playlistID, videoID uuid.UUID) (bool, error) {
	if s.removeVideoFn != nil {
		return s.removeVideoFn(ctx, playlistID, videoID)
	}
	return false, nil
}

func (s *stubPlaylistRepo) ContainsVideo(ctx context.Context, playlistID, videoID uuid.UUID) (bool, error) {
	if s.containsVideoFn != nil {
		return s.containsVideoFn(ctx, playlistID, videoID)
	}
	return false, nil
}

func (s *stubPlaylistRepo) ListVideos(ctx context.Context, params repositories.PlaylistVideosParams) ([]*models.VideoListItem, error) {
	if s.listVideosFn != nil {
		return s.listVideosFn(ctx, params)
	}
	return nil, nil
}

func (s *stubPlaylistRepo) ListLiked(ctx context.Context, params repositories.ViewerFeedParams) ([]*models.VideoListItem, error) {
	if s.listLikedFn != nil {
		return s.listLikedFn(ctx, params)
	}
	return nil, nil
}

func (s *stubPlaylistRepo) ListHistory(ctx context.Context, params repositories.ViewerFeedParams) ([]*models.VideoListItem, error) {
	if s.listHistoryFn != nil {
		return s.listHistoryFn(ctx, params)
	}
	return nil, nil
}

type stubUploader struct {
	uploadFn  func(ctx context.Context, file multipart.File, publicID string) (*utils.VideoUploadResult, error)
	destroyFn func(ctx context.Context, publicID, resourceType string) error
	verifyFn  func(body []byte, timestamp, signature string) bool

	destroyed []string
}

func (s *stubUploader) UploadVideo(ctx context.Context, file multipart.File, publicID string) (*utils.VideoUploadResult, error) {
	if s.uploadFn != nil {
		return s.uploadFn(ctx, file, publicID)
	}
	return &utils.VideoUploadResult{
		PublicID:     publicID,
		PlaybackURL:  "https://cdn.example.com/" + publicID + ".m3u8",
		ThumbnailURL: "https://cdn.example.com/" + publicID + ".jpg",
		Duration:     12.5,
	}, nil
}

func (s *stubUploader) Destroy(ctx context.Context, publicID, resourceType string) error {
	s.destroyed = append(s.destroyed, publicID)
	if s.destroyFn != nil {
		return s.destroyFn(ctx, publicID, resourceType)
	}
	return nil
}

func (s *stubUploader) VerifyWebhookSignature(body []byte, timestamp, signature string) bool {
	if s.verifyFn != nil {
		return s.verifyFn(body, timestamp, signature)
	}
	return true
}
