package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/keyset"
	"github.com/quetrea/youtube-clone/internal/models"
	"github.com/quetrea/youtube-clone/internal/repositories"
	"github.com/quetrea/youtube-clone/internal/validation"
)

// commentService implements CommentService.
type commentService struct {
	commentRepo repositories.CommentRepository
	videoRepo   repositories.VideoRepository
	logger      *zap.Logger
}

// NewCommentService creates the comment service.
func NewCommentService(
	commentRepo repositories.CommentRepository,
	videoRepo repositories.VideoRepository,
	logger *zap.Logger,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		videoRepo:   videoRepo,
		logger:      logger,
	}
}

// Create posts a comment on a video. Replies nest exactly one level: a
// parent that is itself a reply is rejected.
func (s *commentService) Create(ctx context.Context, userID, videoID uuid.UUID, req *CreateCommentRequest) (*models.Comment, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid create comment request", err)
	}

	if _, err := s.videoRepo.GetByID(ctx, videoID, nil); err != nil {
		if repositories.IsNoRows(err) {
			return nil, EntityNotFoundError("video", videoID.String())
		}
		return nil, NewInternalError("failed to load video")
	}

	if req.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			if repositories.IsNoRows(err) {
				return nil, EntityNotFoundError("comment", req.ParentID.String())
			}
			return nil, NewInternalError("failed to load parent comment")
		}
		if parent.VideoID != videoID {
			return nil, NewValidationError("parent comment belongs to a different video", nil)
		}
		if parent.ParentID != nil {
			return nil, NewValidationError("replies cannot be nested", nil)
		}
	}

	comment := &models.Comment{
		UserID:   userID,
		VideoID:  videoID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, NewInternalError("failed to create comment")
	}
	return comment, nil
}

// Delete removes the viewer's own comment; replies cascade.
func (s *commentService) Delete(ctx context.Context, userID, commentID uuid.UUID) error {
	deleted, err := s.commentRepo.Delete(ctx, commentID, userID)
	if err != nil {
		return NewInternalError("failed to delete comment")
	}
	if !deleted {
		return EntityNotFoundError("comment", commentID.String())
	}
	return nil
}

// List returns a comment page with the thread's total count. ParentID set
// pages through one comment's replies instead.
func (s *commentService) List(ctx context.Context, req *ListCommentsRequest, viewerID *uuid.UUID) (*CommentPage, error) {
	cursor, err := decodeListing(req.Cursor, req.Limit)
	if err != nil {
		return nil, err
	}

	rows, err := s.commentRepo.ListForVideo(ctx, repositories.CommentListParams{
		VideoID:  req.VideoID,
		ParentID: req.ParentID,
		ViewerID: viewerID,
		Cursor:   cursor,
		Limit:    req.Limit,
	})
	if err != nil {
		return nil, NewInternalError("failed to list comments")
	}

	total, err := s.commentRepo.CountForVideo(ctx, req.VideoID)
	if err != nil {
		return nil, NewInternalError("failed to count comments")
	}

	items, hasMore := keyset.SplitPage(rows, req.Limit)
	page := &CommentPage{Items: items, TotalCount: total}
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		page.NextCursor = keyset.Encode(keyset.Cursor{ID: last.ID, Time: last.CreatedAt})
	}
	return page, nil
}

// React toggles the viewer's like/dislike on a comment.
func (s *commentService) React(ctx context.Context, userID, commentID uuid.UUID, req *ReactionRequest) (*string, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid reaction request", err)
	}
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		if repositories.IsNoRows(err) {
			return nil, EntityNotFoundError("comment", commentID.String())
		}
		return nil, NewInternalError("failed to load comment")
	}
	current, err := s.commentRepo.ToggleReaction(ctx, userID, commentID, req.Type)
	if err != nil {
		return nil, NewInternalError("failed to toggle reaction")
	}
	return current, nil
}
