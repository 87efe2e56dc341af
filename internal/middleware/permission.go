package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-portal/internal/permission"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
	"github.com/noah-isme/alumni-portal/pkg/response"
)

// RequirePermission lets the request through only when the session's roles
// grant p. It must run after Session. It panics on a permission missing
// from the table so a mistyped route fails at startup.
func RequirePermission(p permission.Permission) gin.HandlerFunc {
	if !permission.Known(p) {
		panic("middleware: unknown permission " + string(p))
	}
	return func(c *gin.Context) {
		sess, ok := SessionFrom(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !permission.Can(sess.User, p) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
