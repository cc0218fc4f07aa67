package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/config"
	"github.com/quetrea/youtube-clone/internal/contextutils"
	"github.com/quetrea/youtube-clone/internal/response"
	"github.com/quetrea/youtube-clone/internal/services"
)

// Auth verifies identity-provider JWTs and resolves the viewer. The token's
// subject is the provider's user id; the matching local profile must have
// been created by POST /users/sync.
type Auth struct {
	config      *config.AuthConfig
	userService services.UserService
	logger      *zap.Logger
}

// NewAuth creates the auth middleware.
func NewAuth(cfg *config.AuthConfig, userService services.UserService, logger *zap.Logger) *Auth {
	return &Auth{config: cfg, userService: userService, logger: logger}
}

// Require rejects requests without a valid token or resolvable viewer.
func (a *Auth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := a.resolve(r)
		if err != nil {
			response.QuickError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Token verifies the bearer token without requiring a local profile. The
// sync endpoint runs behind it: the profile it upserts is the one Require
// resolves afterwards.
func (a *Auth) Token(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := a.subject(r)
		if err != nil {
			response.QuickError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(contextutils.WithExternalID(r.Context(), subject)))
	})
}

// Optional resolves the viewer when a valid token is present and lets the
// request through anonymously otherwise. Listing endpoints use it for
// viewer-dependent boosts without demanding sign-in.
func (a *Auth) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ctx, err := a.resolve(r); err == nil {
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Auth) resolve(r *http.Request) (context.Context, error) {
	subject, err := a.subject(r)
	if err != nil {
		return nil, err
	}

	user, err := a.userService.GetByExternalID(r.Context(), subject)
	if err != nil {
		if services.IsNotFoundError(err) {
			return nil, services.NewUnauthorizedError("unknown user; sync profile first")
		}
		return nil, err
	}
	return contextutils.WithUserID(r.Context(), user.ID), nil
}

// subject verifies the bearer token and returns its subject claim.
func (a *Auth) subject(r *http.Request) (string, error) {
	token := bearerToken(r)
	if token == "" {
		return "", services.NewUnauthorizedError("missing bearer token")
	}

	claims, err := a.verify(token)
	if err != nil {
		a.logger.Debug("Token verification failed", zap.Error(err))
		return "", services.NewUnauthorizedError("invalid token")
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", services.NewUnauthorizedError("token has no subject")
	}
	return subject, nil
}

func (a *Auth) verify(token string) (jwt.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithLeeway(a.config.JWTLeeway),
	}
	if a.config.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(a.config.JWTIssuer))
	}
	if a.config.JWTAudience != "" {
		opts = append(opts, jwt.WithAudience(a.config.JWTAudience))
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte(a.config.JWTSecret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return parsed.Claims, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
