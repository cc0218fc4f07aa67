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

func videoExists(video *models.Video) *stubVideoRepo {
	return &stubVideoRepo{
		getByIDFn: func(ctx context.Context, id uuid.UUID, _ *uuid.UUID) (*models.Video, error) {
			return video, nil
		},
	}
}

func TestCreateCommentOnUnknownVideo(t *testing.T) {
	svc := NewCommentService(&stubCommentRepo{}, &stubVideoRepo{}, zap.NewNop())

	_, err := svc.Create(context.Background(), uuid.New(), uuid.New(), &CreateCommentRequest{Content: "hi"})
	assert.True(t, IsNotFoundError(err))
}

func TestCreateCommentRejectsEmptyContent(t *testing.T) {
	svc := NewCommentService(&stubCommentRepo{}, &stubVideoRepo{}, zap.NewNop())

	_, err := svc.Create(context.Background(), uuid.New(), uuid.New(), &CreateCommentRequest{Content: ""})
	assert.True(t, IsValidationError(err))
}

func TestCreateReplyGuards(t *testing.T) {
	video := &models.Video{ID: uuid.New()}
	otherVideoID := uuid.New()
	grandparentID := uuid.New()

	parents := map[uuid.UUID]*models.Comment{
		uuid.New(): {VideoID: video.ID},                               // valid parent
		uuid.New(): {VideoID: otherVideoID},                           // wrong video
		uuid.New(): {VideoID: video.ID, ParentID: &grandparentID},     // already a reply
	}

	commentRepo := &stubCommentRepo{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
			if parent, ok := parents[id]; ok {
				out := *parent
				out.ID = id
				return &out, nil
			}
			return nil, sql.ErrNoRows
		},
	}
	svc := NewCommentService(commentRepo, videoExists(video), zap.NewNop())

	for id, parent := range parents {
		parentID := id
		req := &CreateCommentRequest{Content: "a reply", ParentID: &parentID}
		_, err := svc.Create(context.Background(), uuid.New(), video.ID, req)

		switch {
		case parent.VideoID != video.ID:
			assert.True(t, IsValidationError(err), "cross-video parent must be rejected")
		case parent.ParentID != nil:
			assert.True(t, IsValidationError(err), "nested replies must be rejected")
		default:
			assert.NoError(t, err)
		}
	}

	missing := uuid.New()
	_, err := svc.Create(context.Background(), uuid.New(), video.ID, &CreateCommentRequest{Content: "x", ParentID: &missing})
	assert.True(t, IsNotFoundError(err))
}

func TestListCommentsPaginates(t *testing.T) {
	video := &models.Video{ID: uuid.New()}
	base := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)

	rows := make([]*models.Comment, 0, 3)
	for i := 0; i < 3; i++ {
		rows = append(rows, &models.Comment{
			ID:        uuid.New(),
			VideoID:   video.ID,
			Content:   "comment",
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		})
	}

	commentRepo := &stubCommentRepo{
		listForVideoFn: func(ctx context.Context, params repositories.CommentListParams) ([]*models.Comment, error) {
			return rows, nil
		},
		countForVideoFn: func(ctx context.Context, videoID uuid.UUID) (int64, error) {
			return 42, nil
		},
	}
	svc := NewCommentService(commentRepo, videoExists(video), zap.NewNop())

	page, err := svc.List(context.Background(), &ListCommentsRequest{VideoID: video.ID, Limit: 2}, nil)
	require.NoError(t, err)

	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(42), page.TotalCount, "total counts the whole thread, not the page")
	require.NotEmpty(t, page.NextCursor)

	cursor, err := keyset.Decode(page.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, rows[1].ID, cursor.ID)
	assert.True(t, cursor.Time.Equal(rows[1].CreatedAt), "comment cursors key on created_at")
}

func TestDeleteCommentNotOwned(t *testing.T) {
	// Delete reports false both for missing rows and rows owned by someone
	// else; the caller cannot tell which, on purpose.
	svc := NewCommentService(&stubCommentRepo{}, &stubVideoRepo{}, zap.NewNop())

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	assert.True(t, IsNotFoundError(err))
}

func TestCommentReactUnknownComment(t *testing.T) {
	svc := NewCommentService(&stubCommentRepo{}, &stubVideoRepo{}, zap.NewNop())

	_, err := svc.React(context.Background(), uuid.New(), uuid.New(), &ReactionRequest{Type: models.ReactionDislike})
	assert.True(t, IsNotFoundError(err))
}
