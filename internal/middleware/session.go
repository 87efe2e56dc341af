package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-portal/internal/models"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
	"github.com/noah-isme/alumni-portal/pkg/logger"
	"github.com/noah-isme/alumni-portal/pkg/response"
)

// ContextSessionKey is the gin context key storing the resolved session.
const ContextSessionKey = "session"

// SessionResolver turns a bearer token into a session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.Session, error)
}

// Session protects routes by requiring a token the upstream API accepts.
func Session(resolver SessionResolver) gin.HandlerFunc {
	return authenticate(resolver, false)
}

// QuerySession is Session for websocket upgrades, where browsers cannot set
// headers; the token may also arrive as ?token=.
func QuerySession(resolver SessionResolver) gin.HandlerFunc {
	return authenticate(resolver, true)
}

func authenticate(resolver SessionResolver, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil && allowQuery {
			if q := strings.TrimSpace(c.Query("token")); q != "" {
				token, err = q, nil
			}
		}
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		sess, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, sess)
		c.Set(logger.ActorKey, sess.User.ID)
		c.Next()
	}
}

// SessionFrom returns the session stored by Session.
func SessionFrom(c *gin.Context) (*models.Session, bool) {
	v, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*models.Session)
	return sess, ok && sess != nil
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", appErrors.ErrUnauthorized
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}
