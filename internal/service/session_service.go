package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-portal/internal/dispatch"
	"github.com/noah-isme/alumni-portal/internal/models"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
)

const (
	sessionKeyPrefix = "session:"
	tokenKeyPrefix   = "session-token:"
)

type sessionRemote interface {
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// SessionService resolves bearer tokens into sessions. Tokens are verified by
// the alumni API; the gateway only caches the answer and reads the exp claim
// to never cache a session beyond the token's lifetime.
type SessionService struct {
	remote sessionRemote
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
	parser *jwt.Parser
}

// NewSessionService constructs a SessionService.
func NewSessionService(remote sessionRemote, cache *CacheService, ttl time.Duration, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SessionService{
		remote: remote,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		parser: jwt.NewParser(),
	}
}

// Resolve returns the session for token.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, appErrors.ErrUnauthorized
	}

	expiresAt := s.expiry(token)
	if !expiresAt.IsZero() && !s.now().Before(expiresAt) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token expired")
	}

	digest := tokenDigest(token)
	var userID string
	if hit, err := s.cache.Get(ctx, tokenKeyPrefix+digest, &userID); err == nil && hit {
		var user models.User
		if hit, err := s.cache.Get(ctx, sessionKey(userID, digest), &user); err == nil && hit {
			return &models.Session{Token: token, User: user, ExpiresAt: expiresAt}, nil
		}
	}

	current, err := s.remote.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if current.Status == models.StatusBlocked {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "account is blocked")
	}

	ttl := s.ttl
	if !expiresAt.IsZero() {
		if remaining := expiresAt.Sub(s.now()); remaining < ttl {
			ttl = remaining
		}
	}
	if ttl > 0 {
		_ = s.cache.Set(ctx, sessionKey(current.ID, digest), current, ttl)
		_ = s.cache.Set(ctx, tokenKeyPrefix+digest, current.ID, ttl)
	}

	return &models.Session{Token: token, User: *current, ExpiresAt: expiresAt}, nil
}

// Invalidate drops the cached session so the next request sees fresh roles
// and profile data.
func (s *SessionService) Invalidate(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.cache.Delete(ctx, tokenKeyPrefix+tokenDigest(token)); err != nil {
		s.logger.Warn("failed to invalidate session", zap.Error(err))
	}
}

// InvalidateUser drops every cached session of userID.
func (s *SessionService) InvalidateUser(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	if err := s.cache.Invalidate(ctx, sessionKey(userID, "*")); err != nil {
		s.logger.Warn("failed to invalidate user sessions", zap.String("user_id", userID), zap.Error(err))
	}
}

// Notify implements dispatch.Notifier. Successful status, role and delete
// mutations on a user end that user's cached sessions.
func (s *SessionService) Notify(ctx context.Context, n dispatch.Notification) {
	if n.Level != dispatch.LevelSuccess || n.Action.Entity != models.EntityUser {
		return
	}
	switch n.Action.Kind {
	case dispatch.KindUpdateStatus, dispatch.KindUpdateRole, dispatch.KindRemoveRole, dispatch.KindDelete:
		s.InvalidateUser(ctx, n.Action.TargetID)
	}
}

// expiry reads exp without verifying the signature. Opaque tokens yield zero.
func (s *SessionService) expiry(token string) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := s.parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func sessionKey(userID, digest string) string {
	return sessionKeyPrefix + userID + ":" + digest
}
