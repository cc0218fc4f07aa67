package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/contextutils"
	"github.com/quetrea/youtube-clone/internal/models"
	"github.com/quetrea/youtube-clone/internal/response"
	"github.com/quetrea/youtube-clone/internal/services"
)

type stubUserService struct {
	getProfileFn func(ctx context.Context, id uuid.UUID) (*models.User, error)
}

func (s *stubUserService) Sync(ctx context.Context, req *services.SyncUserRequest) (*models.User, error) {
	return &models.User{ID: uuid.New(), ExternalID: req.ExternalID, Username: req.Username}, nil
}

func (s *stubUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return &models.User{ID: id, Username: "someone"}, nil
}

func (s *stubUserService) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return &models.User{ID: uuid.New(), ExternalID: externalID, Username: "someone"}, nil
}

func (s *stubUserService) GetProfile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.getProfileFn != nil {
		return s.getProfileFn(ctx, id)
	}
	return &models.User{ID: id, Username: "creator", SubscriberCount: 3}, nil
}

type stubSubscriptionService struct {
	isSubscribedFn func(ctx context.Context, viewerID, creatorID uuid.UUID) (bool, error)
	calls          int
}

func (s *stubSubscriptionService) Subscribe(ctx context.Context, viewerID uuid.UUID, req *services.CreateSubscriptionRequest) error {
	return nil
}

func (s *stubSubscriptionService) Unsubscribe(ctx context.Context, viewerID, creatorID uuid.UUID) error {
	return nil
}

func (s *stubSubscriptionService) IsSubscribed(ctx context.Context, viewerID, creatorID uuid.UUID) (bool, error) {
	s.calls++
	if s.isSubscribedFn != nil {
		return s.isSubscribedFn(ctx, viewerID, creatorID)
	}
	return false, nil
}

func newTestController(user services.UserService, subscription services.SubscriptionService) *Controller {
	logger := zap.NewNop()
	return NewController(
		&services.Collection{User: user, Subscription: subscription},
		logger,
		response.NewBuilder(response.DefaultConfig(), logger),
	)
}

func withURLParam(r *http.Request, name, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(name, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeProfile(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	return envelope.Data
}

func TestProfileIncludesSubscriptionStateForViewer(t *testing.T) {
	creatorID := uuid.New()
	viewerID := uuid.New()
	subs := &stubSubscriptionService{
		isSubscribedFn: func(ctx context.Context, v, c uuid.UUID) (bool, error) {
			assert.Equal(t, viewerID, v)
			assert.Equal(t, creatorID, c)
			return true, nil
		},
	}
	controller := newTestController(&stubUserService{}, subs)

	r := httptest.NewRequest(http.MethodGet, "/users/"+creatorID.String(), nil)
	r = withURLParam(r, "id", creatorID.String())
	r = r.WithContext(contextutils.WithUserID(r.Context(), viewerID))
	w := httptest.NewRecorder()
	controller.Profile(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeProfile(t, w)
	assert.Equal(t, true, data["subscribed"])
	assert.Equal(t, 1, subs.calls)
}

func TestProfileOmitsSubscriptionStateForAnonymous(t *testing.T) {
	creatorID := uuid.New()
	subs := &stubSubscriptionService{}
	controller := newTestController(&stubUserService{}, subs)

	r := httptest.NewRequest(http.MethodGet, "/users/"+creatorID.String(), nil)
	r = withURLParam(r, "id", creatorID.String())
	w := httptest.NewRecorder()
	controller.Profile(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeProfile(t, w)
	_, present := data["subscribed"]
	assert.False(t, present)
	assert.Zero(t, subs.calls)
}

func TestProfileOmitsSubscriptionStateForOwnChannel(t *testing.T) {
	creatorID := uuid.New()
	subs := &stubSubscriptionService{}
	controller := newTestController(&stubUserService{}, subs)

	r := httptest.NewRequest(http.MethodGet, "/users/"+creatorID.String(), nil)
	r = withURLParam(r, "id", creatorID.String())
	r = r.WithContext(contextutils.WithUserID(r.Context(), creatorID))
	w := httptest.NewRecorder()
	controller.Profile(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeProfile(t, w)
	_, present := data["subscribed"]
	assert.False(t, present)
	assert.Zero(t, subs.calls)
}
