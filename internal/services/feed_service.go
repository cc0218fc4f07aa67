package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/keyset"
	"github.com/quetrea/youtube-clone/internal/models"
	"github.com/quetrea/youtube-clone/internal/repositories"
	"github.com/quetrea/youtube-clone/internal/validation"
)

// feedService implements FeedService over the video repository.
type feedService struct {
	videoRepo repositories.VideoRepository
	logger    *zap.Logger
}

// NewFeedService creates the listing service.
func NewFeedService(videoRepo repositories.VideoRepository, logger *zap.Logger) FeedService {
	return &feedService{videoRepo: videoRepo, logger: logger}
}

// Home returns the public feed page, newest first.
func (s *feedService) Home(ctx context.Context, req *ListVideosRequest) (*VideoPage, error) {
	cursor, err := decodeListing(req.Cursor, req.Limit)
	if err != nil {
		return nil, err
	}

	rows, err := s.videoRepo.ListHome(ctx, repositories.HomeFeedParams{
		CategoryID: req.CategoryID,
		Cursor:     cursor,
		Limit:      req.Limit,
	})
	if err != nil {
		return nil, NewInternalError("failed to load video feed")
	}
	return assemblePage(rows, req.Limit, timeCursor), nil
}

// Search returns a relevance-ranked page. The next-page cursor carries the
// last row's score so the boundary predicate can resume inside a score tier,
// plus the recency clock the score was computed against: every page of one
// scroll reuses the first page's clock, otherwise recomputed scores would
// drift below the encoded boundary and repeat the boundary row.
func (s *feedService) Search(ctx context.Context, req *SearchRequest) (*VideoPage, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid search request", err)
	}
	cursor, err := decodeListing(req.Cursor, req.Limit)
	if err != nil {
		return nil, err
	}

	epoch := time.Now().Unix()
	if cursor != nil && cursor.Epoch != nil {
		epoch = *cursor.Epoch
	}

	rows, err := s.videoRepo.ListSearch(ctx, repositories.SearchParams{
		Query:      req.Query,
		CategoryID: req.CategoryID,
		Cursor:     cursor,
		Epoch:      epoch,
		Limit:      req.Limit,
	})
	if err != nil {
		return nil, NewInternalError("failed to search videos")
	}
	return assemblePage(rows, req.Limit, func(item *models.VideoListItem) keyset.Cursor {
		c := scoreCursor(item)
		c.Epoch = &epoch
		return c
	}), nil
}

// Suggestions returns related videos for a source video, best score first.
// The source video must exist; the viewer, when resolved, feeds the
// subscribed-creator boost.
func (s *feedService) Suggestions(ctx context.Context, req *SuggestionsRequest, viewerID *uuid.UUID) (*VideoPage, error) {
	cursor, err := decodeListing(req.Cursor, req.Limit)
	if err != nil {
		return nil, err
	}

	source, err := s.videoRepo.GetByID(ctx, req.VideoID, nil)
	if err != nil {
		if repositories.IsNoRows(err) {
			return nil, EntityNotFoundError("video", req.VideoID.String())
		}
		return nil, NewInternalError("failed to load source video")
	}

	rows, err := s.videoRepo.ListSuggestions(ctx, repositories.SuggestionParams{
		VideoID:          source.ID,
		SourceCategoryID: source.CategoryID,
		ViewerID:         viewerID,
		Cursor:           cursor,
		Limit:            req.Limit,
	})
	if err != nil {
		return nil, NewInternalError("failed to load suggestions")
	}
	return assemblePage(rows, req.Limit, timeCursor), nil
}

// Channel returns one creator's videos. The owner viewing their own channel
// also sees private and still-processing uploads.
func (s *feedService) Channel(ctx context.Context, req *ChannelVideosRequest, viewerID *uuid.UUID) (*VideoPage, error) {
	cursor, err := decodeListing(req.Cursor, req.Limit)
	if err != nil {
		return nil, err
	}

	rows, err := s.videoRepo.ListChannel(ctx, repositories.ChannelFeedParams{
		UserID:         req.UserID,
		IncludePrivate: viewerID != nil && *viewerID == req.UserID,
		Cursor:         cursor,
		Limit:          req.Limit,
	})
	if err != nil {
		return nil, NewInternalError("failed to load channel videos")
	}
	return assemblePage(rows, req.Limit, timeCursor), nil
}

// ===============================
// PAGE ASSEMBLY
// ===============================

// decodeListing validates the shared listing inputs: limit in [1,100] and a
// well-formed cursor token. Out-of-range limits are rejected, not clamped.
func decodeListing(token string, limit int) (*keyset.Cursor, error) {
	if limit < 1 || limit > 100 {
		return nil, NewValidationError("limit must be between 1 and 100", nil)
	}
	cursor, err := keyset.Decode(token)
	if err != nil {
		return nil, NewValidationError("malformed cursor", err)
	}
	return cursor, nil
}

// assemblePage trims the limit+1 over-fetch and encodes the next cursor from
// the last retained row when more data exists.
func assemblePage(rows []*models.VideoListItem, limit int, cursorFor func(*models.VideoListItem) keyset.Cursor) *VideoPage {
	items, hasMore := keyset.SplitPage(rows, limit)
	page := &VideoPage{Items: items}
	if hasMore && len(items) > 0 {
		page.NextCursor = keyset.Encode(cursorFor(items[len(items)-1]))
	}
	return page
}

// timeCursor keys a page on the row's primary sort timestamp. Liked, history
// and playlist rows carry their own timestamp; everything else sorts on
// updated_at.
func timeCursor(item *models.VideoListItem) keyset.Cursor {
	c := keyset.Cursor{ID: item.ID, Time: item.UpdatedAt}
	switch {
	case item.ReactedAt != nil:
		c.Time = *item.ReactedAt
	case item.ViewedAt != nil:
		c.Time = *item.ViewedAt
	case item.AddedAt != nil:
		c.Time = *item.AddedAt
	}
	return c
}

// scoreCursor additionally carries the row's relevance score for the search
// boundary predicate.
func scoreCursor(item *models.VideoListItem) keyset.Cursor {
	c := timeCursor(item)
	c.Score = item.RelevanceScore
	return c
}
