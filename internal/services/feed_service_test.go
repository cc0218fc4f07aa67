package services

import (
	"context"
	"database/sql"
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

func listItem(id uuid.UUID, updatedAt time.Time) *models.VideoListItem {
	return &models.VideoListItem{Video: models.Video{ID: id, UpdatedAt: updatedAt}}
}

func TestHomeFirstPageWithMoreRows(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := make([]*models.VideoListItem, 0, 4)
	for i := 0; i < 4; i++ {
		rows = append(rows, listItem(uuid.New(), base.Add(-time.Duration(i)*time.Minute)))
	}

	var captured repositories.HomeFeedParams
	repo := &stubVideoRepo{
		listHomeFn: func(ctx context.Context, params repositories.HomeFeedParams) ([]*models.VideoListItem, error) {
			captured = params
			return rows, nil
		},
	}
	svc := NewFeedService(repo, zap.NewNop())

	page, err := svc.Home(context.Background(), &ListVideosRequest{Limit: 3})
	require.NoError(t, err)

	assert.Nil(t, captured.Cursor, "first page carries no cursor")
	assert.Equal(t, 3, captured.Limit)
	require.Len(t, page.Items, 3, "over-fetched row must be trimmed")
	require.NotEmpty(t, page.NextCursor)

	cursor, err := keyset.Decode(page.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, rows[2].ID, cursor.ID, "cursor keys on the last retained row")
	assert.True(t, cursor.Time.Equal(rows[2].UpdatedAt))
	assert.Nil(t, cursor.Score)
}

func TestHomeLastPageHasNoCursor(t *testing.T) {
	repo := &stubVideoRepo{
		listHomeFn: func(ctx context.Context, params repositories.HomeFeedParams) ([]*models.VideoListItem, error) {
			return []*models.VideoListItem{listItem(uuid.New(), time.Now())}, nil
		},
	}
	svc := NewFeedService(repo, zap.NewNop())

	page, err := svc.Home(context.Background(), &ListVideosRequest{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Empty(t, page.NextCursor)
}

func TestHomeRejectsOutOfRangeLimit(t *testing.T) {
	svc := NewFeedService(&stubVideoRepo{}, zap.NewNop())

	for _, limit := range []int{0, -5, 101} {
		_, err := svc.Home(context.Background(), &ListVideosRequest{Limit: limit})
		assert.True(t, IsValidationError(err), "limit %d must be rejected", limit)
	}
}

func TestHomeRejectsMalformedCursor(t *testing.T) {
	svc := NewFeedService(&stubVideoRepo{}, zap.NewNop())

	_, err := svc.Home(context.Background(), &ListVideosRequest{Cursor: "not-base64!", Limit: 10})
	assert.True(t, IsValidationError(err))
}

func TestHomePassesDecodedCursorToRepository(t *testing.T) {
	wantID := uuid.New()
	wantTime := time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC)
	token := keyset.Encode(keyset.Cursor{ID: wantID, Time: wantTime})

	var captured repositories.HomeFeedParams
	repo := &stubVideoRepo{
		listHomeFn: func(ctx context.Context, params repositories.HomeFeedParams) ([]*models.VideoListItem, error) {
			captured = params
			return nil, nil
		},
	}
	svc := NewFeedService(repo, zap.NewNop())

	_, err := svc.Home(context.Background(), &ListVideosRequest{Cursor: token, Limit: 10})
	require.NoError(t, err)
	require.NotNil(t, captured.Cursor)
	assert.Equal(t, wantID, captured.Cursor.ID)
	assert.True(t, captured.Cursor.Time.Equal(wantTime))
}

func TestSearchCursorCarriesScore(t *testing.T) {
	score := 12.75
	rows := []*models.VideoListItem{
		{Video: models.Video{ID: uuid.New(), UpdatedAt: time.Now()}, RelevanceScore: &score},
		{Video: models.Video{ID: uuid.New(), UpdatedAt: time.Now().Add(-time.Hour)}, RelevanceScore: &score},
	}
	repo := &stubVideoRepo{
		listSearchFn: func(ctx context.Context, params repositories.SearchParams) ([]*models.VideoListItem, error) {
			return rows, nil
		},
	}
	svc := NewFeedService(repo, zap.NewNop())

	page, err := svc.Search(context.Background(), &SearchRequest{Query: "go concurrency", Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.NotEmpty(t, page.NextCursor)

	cursor, err := keyset.Decode(page.NextCursor)
	require.NoError(t, err)
	require.NotNil(t, cursor.Score)
	assert.Equal(t, score, *cursor.Score)
}

// Every page of one search scroll must score rows against the clock captured
// on the first page. A fresh clock per page would shrink every recomputed
// score, so the boundary row would fall below its own encoded score and show
// up again at the top of the next page.
func TestSearchReplaysScoreClockFromCursor(t *testing.T) {
	score := 9.5
	rows := []*models.VideoListItem{
		{Video: models.Video{ID: uuid.New(), UpdatedAt: time.Now()}, RelevanceScore: &score},
		{Video: models.Video{ID: uuid.New(), UpdatedAt: time.Now().Add(-time.Hour)}, RelevanceScore: &score},
	}
	var epochs []int64
	repo := &stubVideoRepo{
		listSearchFn: func(ctx context.Context, params repositories.SearchParams) ([]*models.VideoListItem, error) {
			epochs = append(epochs, params.Epoch)
			return rows, nil
		},
	}
	svc := NewFeedService(repo, zap.NewNop())

	page, err := svc.Search(context.Background(), &SearchRequest{Query: "go concurrency", Limit: 1})
	require.NoError(t, err)
	require.NotEmpty(t, page.NextCursor)

	cursor, err := keyset.Decode(page.NextCursor)
	require.NoError(t, err)
	require.NotNil(t, cursor.Epoch)
	require.Len(t, epochs, 1)
	assert.Equal(t, epochs[0], *cursor.Epoch)
	assert.Greater(t, epochs[0], int64(0))

	// A later page scores against the clock stored in its cursor, not a
	// fresh reading of its own.
	pinned := int64(1700000000)
	token := keyset.Encode(keyset.Cursor{
		ID:    uuid.New(),
		Time:  time.Now().Add(-time.Minute),
		Score: &score,
		Epoch: &pinned,
	})
	_, err = svc.Search(context.Background(), &SearchRequest{
		Query:  "go concurrency",
		Cursor: token,
		Limit:  1,
	})
	require.NoError(t, err)
	require.Len(t, epochs, 2)
	assert.Equal(t, pinned, epochs[1])
}

func TestSuggestionsUnknownSourceVideo(t *testing.T) {
	repo := &stubVideoRepo{} // GetByID reports no rows
	svc := NewFeedService(repo, zap.NewNop())

	_, err := svc.Suggestions(context.Background(), &SuggestionsRequest{VideoID: uuid.New(), Limit: 10}, nil)
	assert.True(t, IsNotFoundError(err))
}

func TestSuggestionsForwardsSourceCategoryAndViewer(t *testing.T) {
	categoryID := uuid.New()
	viewerID := uuid.New()
	source := &models.Video{ID: uuid.New(), CategoryID: &categoryID}

	var captured repositories.SuggestionParams
	repo := &stubVideoRepo{
		getByIDFn: func(ctx context.Context, id uuid.UUID, _ *uuid.UUID) (*models.Video, error) {
			if id == source.ID {
				return source, nil
			}
			return nil, sql.ErrNoRows
		},
		listSuggestionsFn: func(ctx context.Context, params repositories.SuggestionParams) ([]*models.VideoListItem, error) {
			captured = params
			return nil, nil
		},
	}
	svc := NewFeedService(repo, zap.NewNop())

	_, err := svc.Suggestions(context.Background(), &SuggestionsRequest{VideoID: source.ID, Limit: 10}, &viewerID)
	require.NoError(t, err)
	assert.Equal(t, source.ID, captured.VideoID)
	require.NotNil(t, captured.SourceCategoryID)
	assert.Equal(t, categoryID, *captured.SourceCategoryID)
	require.NotNil(t, captured.ViewerID)
	assert.Equal(t, viewerID, *captured.ViewerID)
}

func TestChannelIncludesPrivateForOwnerOnly(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	var captured repositories.ChannelFeedParams
	repo := &stubVideoRepo{
		listChannelFn: func(ctx context.Context, params repositories.ChannelFeedParams) ([]*models.VideoListItem, error) {
			captured = params
			return nil, nil
		},
	}
	svc := NewFeedService(repo, zap.NewNop())

	_, err := svc.Channel(context.Background(), &ChannelVideosRequest{UserID: owner, Limit: 10}, &owner)
	require.NoError(t, err)
	assert.True(t, captured.IncludePrivate)

	_, err = svc.Channel(context.Background(), &ChannelVideosRequest{UserID: owner, Limit: 10}, &other)
	require.NoError(t, err)
	assert.False(t, captured.IncludePrivate)

	_, err = svc.Channel(context.Background(), &ChannelVideosRequest{UserID: owner, Limit: 10}, nil)
	require.NoError(t, err)
	assert.False(t, captured.IncludePrivate)
}

func TestTimeCursorPrefersEngagementTimestamps(t *testing.T) {
	updated := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	reacted := updated.Add(48 * time.Hour)

	item := listItem(uuid.New(), updated)
	assert.True(t, timeCursor(item).Time.Equal(updated))

	item.ReactedAt = &reacted
	assert.True(t, timeCursor(item).Time.Equal(reacted), "liked-feed rows key on the reaction time")
}
