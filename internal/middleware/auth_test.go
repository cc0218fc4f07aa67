package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/config"
	"github.com/quetrea/youtube-clone/internal/contextutils"
	"github.com/quetrea/youtube-clone/internal/models"
	"github.com/quetrea/youtube-clone/internal/services"
)

const testSecret = "auth-test-secret"

type stubUserService struct {
	users map[string]*models.User
}

func (s *stubUserService) Sync(ctx context.Context, req *services.SyncUserRequest) (*models.User, error) {
	return nil, nil
}

func (s *stubUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func (s *stubUserService) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	if user, ok := s.users[externalID]; ok {
		return user, nil
	}
	return nil, services.EntityNotFoundError("user", externalID)
}

func (s *stubUserService) GetProfile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func signToken(t *testing.T, subject string, method jwt.SigningMethod, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(method, jwt.MapClaims{
		"sub": subject,
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newTestAuth(users map[string]*models.User) *Auth {
	return NewAuth(&config.AuthConfig{JWTSecret: testSecret}, &stubUserService{users: users}, zap.NewNop())
}

func TestRequireResolvesViewer(t *testing.T) {
	userID := uuid.New()
	auth := newTestAuth(map[string]*models.User{
		"ext-123": {ID: userID, ExternalID: "ext-123"},
	})

	var gotID uuid.UUID
	var resolved bool
	handler := auth.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, resolved = contextutils.GetUserID(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+signToken(t, "ext-123", jwt.SigningMethodHS256, time.Now().Add(time.Hour)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, resolved)
	assert.Equal(t, userID, gotID)
}

func TestRequireRejections(t *testing.T) {
	auth := newTestAuth(map[string]*models.User{
		"ext-123": {ID: uuid.New(), ExternalID: "ext-123"},
	})
	handler := auth.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for rejected requests")
	}))

	cases := map[string]string{
		"no header":      "",
		"not bearer":     "Basic abc",
		"expired token":  "Bearer " + signToken(t, "ext-123", jwt.SigningMethodHS256, time.Now().Add(-time.Hour)),
		"unknown user":   "Bearer " + signToken(t, "ext-999", jwt.SigningMethodHS256, time.Now().Add(time.Hour)),
		"empty subject":  "Bearer " + signToken(t, "", jwt.SigningMethodHS256, time.Now().Add(time.Hour)),
		"garbage token":  "Bearer not.a.jwt",
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				r.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestTokenDoesNotRequireLocalProfile(t *testing.T) {
	// A brand-new user has a valid token but no synced profile yet.
	auth := newTestAuth(nil)

	var gotSubject string
	handler := auth.Token(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject, _ = contextutils.GetExternalID(r.Context())
	}))

	r := httptest.NewRequest(http.MethodPost, "/users/sync", nil)
	r.Header.Set("Authorization", "Bearer "+signToken(t, "ext-new", jwt.SigningMethodHS256, time.Now().Add(time.Hour)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ext-new", gotSubject)
}

func TestTokenRejectsMissingToken(t *testing.T) {
	auth := newTestAuth(nil)
	handler := auth.Token(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a token")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/users/sync", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalPassesAnonymously(t *testing.T) {
	auth := newTestAuth(nil)

	var resolved bool
	handler := auth.Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, resolved = contextutils.GetUserID(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, resolved, "anonymous requests pass through without a viewer")
}

func TestOptionalResolvesWhenTokenValid(t *testing.T) {
	userID := uuid.New()
	auth := newTestAuth(map[string]*models.User{
		"ext-123": {ID: userID, ExternalID: "ext-123"},
	})

	var gotID uuid.UUID
	handler := auth.Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = contextutils.GetUserID(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+signToken(t, "ext-123", jwt.SigningMethodHS256, time.Now().Add(time.Hour)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, userID, gotID)
}
