package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/keyset"
	"github.com/quetrea/youtube-clone/internal/models"
	"github.com/quetrea/youtube-clone/internal/repositories"
	"github.com/quetrea/youtube-clone/internal/validation"
)

// playlistService implements PlaylistService.
type playlistService struct {
	playlistRepo repositories.PlaylistRepository
	videoRepo    repositories.VideoRepository
	logger       *zap.Logger
}

// NewPlaylistService creates the playlist service.
func NewPlaylistService(
	playlistRepo repositories.PlaylistRepository,
	videoRepo repositories.VideoRepository,
	logger *zap.Logger,
) PlaylistService {
	return &playlistService{
		playlistRepo: playlistRepo,
		videoRepo:    videoRepo,
		logger:       logger,
	}
}

// Create creates a playlist for the viewer.
func (s *playlistService) Create(ctx context.Context, userID uuid.UUID, req *CreatePlaylistRequest) (*models.Playlist, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid create playlist request", err)
	}

	playlist := &models.Playlist{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.playlistRepo.Create(ctx, playlist); err != nil {
		return nil, NewInternalError("failed to create playlist")
	}
	return playlist, nil
}

// Update edits a playlist the viewer owns.
func (s *playlistService) Update(ctx context.Context, userID, playlistID uuid.UUID, req *UpdatePlaylistRequest) (*models.Playlist, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid update playlist request", err)
	}

	playlist := &models.Playlist{
		ID:          playlistID,
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.playlistRepo.Update(ctx, playlist); err != nil {
		if repositories.IsNoRows(err) {
			return nil, EntityNotFoundError("playlist", playlistID.String())
		}
		return nil, NewInternalError("failed to update playlist")
	}
	updated, err := s.playlistRepo.GetByID(ctx, playlistID)
	if err != nil {
		return nil, NewInternalError("failed to load playlist")
	}
	return updated, nil
}

// Delete removes a playlist the viewer owns.
func (s *playlistService) Delete(ctx context.Context, userID, playlistID uuid.UUID) error {
	deleted, err := s.playlistRepo.Delete(ctx, playlistID, userID)
	if err != nil {
		return NewInternalError("failed to delete playlist")
	}
	if !deleted {
		return EntityNotFoundError("playlist", playlistID.String())
	}
	return nil
}

// List returns a page of the viewer's playlists, most recently updated
// first.
func (s *playlistService) List(ctx context.Context, userID uuid.UUID, req *ListPlaylistsRequest) (*models.Page[*models.Playlist], error) {
	cursor, err := decodeListing(req.Cursor, req.Limit)
	if err != nil {
		return nil, err
	}

	rows, err := s.playlistRepo.ListForOwner(ctx, repositories.PlaylistListParams{
		OwnerID: userID,
		Cursor:  cursor,
		Limit:   req.Limit,
	})
	if err != nil {
		return nil, NewInternalError("failed to list playlists")
	}

	items, hasMore := keyset.SplitPage(rows, req.Limit)
	page := &models.Page[*models.Playlist]{Items: items}
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		page.NextCursor = keyset.Encode(keyset.Cursor{ID: last.ID, Time: last.UpdatedAt})
	}
	return page, nil
}

// AddVideo links a video into a playlist the viewer owns. Adding the same
// video twice is a conflict.
func (s *playlistService) AddVideo(ctx context.Context, userID, playlistID uuid.UUID, req *AddPlaylistVideoRequest) error {
	if err := validation.ValidateStruct(req); err != nil {
		return NewValidationError("invalid add video request", err)
	}
	if err := s.requireOwned(ctx, userID, playlistID); err != nil {
		return err
	}
	if _, err := s.videoRepo.GetByID(ctx, req.VideoID, nil); err != nil {
		if repositories.IsNoRows(err) {
			return EntityNotFoundError("video", req.VideoID.String())
		}
		return NewInternalError("failed to load video")
	}

	if err := s.playlistRepo.AddVideo(ctx, playlistID, req.VideoID); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return NewConflictError("video is already in the playlist", "PLAYLIST_VIDEO_EXISTS")
		}
		return NewInternalError("failed to add video to playlist")
	}
	return nil
}

// RemoveVideo unlinks a video from a playlist the viewer owns.
func (s *playlistService) RemoveVideo(ctx context.Context, userID, playlistID, videoID uuid.UUID) error {
	if err := s.requireOwned(ctx, userID, playlistID); err != nil {
		return err
	}
	removed, err := s.playlistRepo.RemoveVideo(ctx, playlistID, videoID)
	if err != nil {
		return NewInternalError("failed to remove video from playlist")
	}
	if !removed {
		return EntityNotFoundError("playlist video", videoID.String())
	}
	return nil
}

// ListVideos returns a page of a playlist's videos, most recently added
// first. Playlists are private to their owner.
func (s *playlistService) ListVideos(ctx context.Context, userID uuid.UUID, req *ListPlaylistVideosRequest) (*VideoPage, error) {
	cursor, err := decodeListing(req.Cursor, req.Limit)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwned(ctx, userID, req.PlaylistID); err != nil {
		return nil, err
	}

	rows, err := s.playlistRepo.ListVideos(ctx, repositories.PlaylistVideosParams{
		PlaylistID: req.PlaylistID,
		Cursor:     cursor,
		Limit:      req.Limit,
	})
	if err != nil {
		return nil, NewInternalError("failed to list playlist videos")
	}
	return assemblePage(rows, req.Limit, timeCursor), nil
}

// Liked returns the viewer's liked-videos feed, most recently reacted
// first.
func (s *playlistService) Liked(ctx context.Context, userID uuid.UUID, req *ViewerFeedRequest) (*VideoPage, error) {
	cursor, err := decodeListing(req.Cursor, req.Limit)
	if err != nil {
		return nil, err
	}

	rows, err := s.playlistRepo.ListLiked(ctx, repositories.ViewerFeedParams{
		ViewerID: userID,
		Cursor:   cursor,
		Limit:    req.Limit,
	})
	if err != nil {
		return nil, NewInternalError("failed to list liked videos")
	}
	return assemblePage(rows, req.Limit, timeCursor), nil
}

// History returns the viewer's watch history, most recently viewed first.
func (s *playlistService) History(ctx context.Context, userID uuid.UUID, req *ViewerFeedRequest) (*VideoPage, error) {
	cursor, err := decodeListing(req.Cursor, req.Limit)
	if err != nil {
		return nil, err
	}

	rows, err := s.playlistRepo.ListHistory(ctx, repositories.ViewerFeedParams{
		ViewerID: userID,
		Cursor:   cursor,
		Limit:    req.Limit,
	})
	if err != nil {
		return nil, NewInternalError("failed to list watch history")
	}
	return assemblePage(rows, req.Limit, timeCursor), nil
}

// requireOwned resolves a playlist and hides it from non-owners.
func (s *playlistService) requireOwned(ctx context.Context, userID, playlistID uuid.UUID) error {
	playlist, err := s.playlistRepo.GetByID(ctx, playlistID)
	if err != nil {
		if repositories.IsNoRows(err) {
			return EntityNotFoundError("playlist", playlistID.String())
		}
		return NewInternalError("failed to load playlist")
	}
	if playlist.UserID != userID {
		return EntityNotFoundError("playlist", playlistID.String())
	}
	return nil
}
