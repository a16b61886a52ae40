package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/RonaldAllanRivera/ride-info/internal/auth"
	"github.com/RonaldAllanRivera/ride-info/internal/handler"
	"github.com/RonaldAllanRivera/ride-info/internal/service"
)

// PrincipalLoader resolves verified token claims into a principal.
type PrincipalLoader interface {
	Load(ctx context.Context, claims *auth.Claims) (*auth.Principal, error)
}

// Authenticate resolves a bearer token into the request principal. Requests
// without an Authorization header continue anonymously; a malformed,
// invalid or expired token is rejected with 401.
func Authenticate(issuer *auth.TokenIssuer, principals PrincipalLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			handler.RespondError(c, auth.ErrInvalidToken)
			return
		}

		claims, err := issuer.Parse(strings.TrimSpace(token))
		if err != nil {
			handler.RespondError(c, err)
			return
		}

		principal, err := principals.Load(c.Request.Context(), claims)
		if err != nil {
			handler.RespondError(c, err)
			return
		}

		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

// RequireAdmin admits only authenticated admins: anonymous callers get 401,
// everyone else 403.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := auth.PrincipalFrom(c.Request.Context())
		if !ok {
			handler.RespondError(c, service.ErrUnauthorized)
			return
		}
		if !auth.IsAdmin(principal) {
			handler.RespondError(c, service.ErrForbidden)
			return
		}
		c.Next()
	}
}
