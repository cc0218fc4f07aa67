package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/keyset"
	"github.com/quetrea/youtube-clone/internal/models"
	"github.com/quetrea/youtube-clone/internal/repositories"
)

func ownedPlaylist(owner uuid.UUID, playlistID uuid.UUID) *stubPlaylistRepo {
	return &stubPlaylistRepo{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Playlist, error) {
			return &models.Playlist{ID: playlistID, UserID: owner, Name: "watch later"}, nil
		},
	}
}

func TestAddVideoToForeignPlaylist(t *testing.T) {
	owner := uuid.New()
	playlistID := uuid.New()
	repo := ownedPlaylist(owner, playlistID)
	svc := NewPlaylistService(repo, &stubVideoRepo{}, zap.NewNop())

	err := svc.AddVideo(context.Background(), uuid.New(), playlistID, &AddPlaylistVideoRequest{VideoID: uuid.New()})
	assert.True(t, IsNotFoundError(err), "foreign playlists must look absent")
}

func TestAddVideoTwice(t *testing.T) {
	owner := uuid.New()
	playlistID := uuid.New()
	repo := ownedPlaylist(owner, playlistID)
	repo.addVideoFn = func(ctx context.Context, pid, vid uuid.UUID) error {
		return repositories.ErrAlreadyExists
	}
	videos := &stubVideoRepo{
		getByIDFn: func(ctx context.Context, id uuid.UUID, _ *uuid.UUID) (*models.Video, error) {
			return &models.Video{ID: id}, nil
		},
	}
	svc := NewPlaylistService(repo, videos, zap.NewNop())

	err := svc.AddVideo(context.Background(), owner, playlistID, &AddPlaylistVideoRequest{VideoID: uuid.New()})
	assert.True(t, IsConflictError(err))
}

func TestAddUnknownVideo(t *testing.T) {
	owner := uuid.New()
	playlistID := uuid.New()
	svc := NewPlaylistService(ownedPlaylist(owner, playlistID), &stubVideoRepo{}, zap.NewNop())

	err := svc.AddVideo(context.Background(), owner, playlistID, &AddPlaylistVideoRequest{VideoID: uuid.New()})
	assert.True(t, IsNotFoundError(err))
}

func TestRemoveVideoNotInPlaylist(t *testing.T) {
	owner := uuid.New()
	playlistID := uuid.New()
	svc := NewPlaylistService(ownedPlaylist(owner, playlistID), &stubVideoRepo{}, zap.NewNop())

	err := svc.RemoveVideo(context.Background(), owner, playlistID, uuid.New())
	assert.True(t, IsNotFoundError(err))
}

func TestListPlaylistsPaginates(t *testing.T) {
	owner := uuid.New()
	base := time.Date(2026, 5, 20, 16, 0, 0, 0, time.UTC)

	rows := make([]*models.Playlist, 0, 3)
	for i := 0; i < 3; i++ {
		rows = append(rows, &models.Playlist{
			ID:        uuid.New(),
			UserID:    owner,
			Name:      "playlist",
			UpdatedAt: base.Add(-time.Duration(i) * time.Hour),
		})
	}
	repo := &stubPlaylistRepo{
		listForOwnerFn: func(ctx context.Context, params repositories.PlaylistListParams) ([]*models.Playlist, error) {
			assert.Equal(t, owner, params.OwnerID)
			return rows, nil
		},
	}
	svc := NewPlaylistService(repo, &stubVideoRepo{}, zap.NewNop())

	page, err := svc.List(context.Background(), owner, &ListPlaylistsRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)

	cursor, err := keyset.Decode(page.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, rows[1].ID, cursor.ID)
	assert.True(t, cursor.Time.Equal(rows[1].UpdatedAt))
}

func TestListVideosRequiresOwnership(t *testing.T) {
	owner := uuid.New()
	playlistID := uuid.New()
	svc := NewPlaylistService(ownedPlaylist(owner, playlistID), &stubVideoRepo{}, zap.NewNop())

	_, err := svc.ListVideos(context.Background(), uuid.New(), &ListPlaylistVideosRequest{PlaylistID: playlistID, Limit: 10})
	assert.True(t, IsNotFoundError(err))
}

func TestListVideosCursorKeysOnAddedAt(t *testing.T) {
	owner := uuid.New()
	playlistID := uuid.New()
	added := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	repo := ownedPlaylist(owner, playlistID)
	repo.listVideosFn = func(ctx context.Context, params repositories.PlaylistVideosParams) ([]*models.VideoListItem, error) {
		rows := make([]*models.VideoListItem, 0, 2)
		for i := 0; i < 2; i++ {
			at := added.Add(-time.Duration(i) * time.Minute)
			rows = append(rows, &models.VideoListItem{
				Video:   models.Video{ID: uuid.New(), UpdatedAt: added.Add(-time.Hour)},
				AddedAt: &at,
			})
		}
		return rows, nil
	}
	svc := NewPlaylistService(repo, &stubVideoRepo{}, zap.NewNop())

	page, err := svc.ListVideos(context.Background(), owner, &ListPlaylistVideosRequest{PlaylistID: playlistID, Limit: 1})
	require.NoError(t, err)
	require.NotEmpty(t, page.NextCursor)

	cursor, err := keyset.Decode(page.NextCursor)
	require.NoError(t, err)
	assert.True(t, cursor.Time.Equal(added), "playlist rows key on the time they were added")
}

func TestLikedFeedScopesToViewer(t *testing.T) {
	viewer := uuid.New()
	var captured repositories.ViewerFeedParams
	repo := &stubPlaylistRepo{
		listLikedFn: func(ctx context.Context, params repositories.ViewerFeedParams) ([]*models.VideoListItem, error) {
			captured = params
			return nil, nil
		},
	}
	svc := NewPlaylistService(repo, &stubVideoRepo{}, zap.NewNop())

	_, err := svc.Liked(context.Background(), viewer, &ViewerFeedRequest{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, viewer, captured.ViewerID)
}
