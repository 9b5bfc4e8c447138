package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"homznspace/backend/internal/apperr"
	"homznspace/backend/internal/auth"
	"homznspace/backend/internal/logging"
)

const (
	// TokenHeader carries the raw session token. It is not a bearer Authorization header.
	TokenHeader = "x-auth-token"
	// ContextKeyPrincipal holds the authenticated auth.Principal in the Gin context.
	ContextKeyPrincipal = "principal"
)

type TokenVerifier interface {
	Verify(token string) (auth.Principal, error)
}

// AuthMiddleware authenticates the request. It does not authorize; handlers and
// services decide what the principal may do.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(TokenHeader))
		if token == "" {
			RespondError(c, apperr.New(apperr.CodeUnauthenticated, "no token, authorization denied"))
			return
		}

		p, err := verifier.Verify(token)
		if err != nil {
			RespondError(c, apperr.Wrap(apperr.CodeInvalidToken, err, "token is not valid"))
			return
		}

		c.Set(ContextKeyPrincipal, p)
		ctx := auth.WithPrincipal(c.Request.Context(), p)
		ctx = logging.With(ctx, "principal", p.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireKinds rejects principals of any other kind. It assumes AuthMiddleware ran first.
func RequireKinds(kinds ...auth.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			RespondError(c, apperr.New(apperr.CodeUnauthenticated, "no token, authorization denied"))
			return
		}
		for _, k := range kinds {
			if p.Kind == k {
				c.Next()
				return
			}
		}
		RespondError(c, apperr.Forbidden("access denied"))
	}
}

// GetPrincipal returns the principal set by AuthMiddleware.
func GetPrincipal(c *gin.Context) (auth.Principal, bool) {
	v, exists := c.Get(ContextKeyPrincipal)
	if !exists {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}
