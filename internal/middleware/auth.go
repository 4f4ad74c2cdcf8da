package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinic-api/internal/identity"
	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/services"
)

const principalKey = "principal"

// Authenticator is what Authenticate needs from the auth service.
type Authenticator interface {
	VerifyToken(ctx context.Context, token string) (*identity.Identity, error)
	Principal(ctx context.Context, id *identity.Identity) (*models.User, error)
}

// BearerToken extracts the credential from an "Authorization: Bearer <t>"
// header.
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

// Authenticate verifies the bearer token on every request and attaches the
// caller's staff profile. Nothing is cached between requests.
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			fail(c, services.Unauthenticated("Unauthorized", "No valid authorization token provided"))
			return
		}

		id, err := auth.VerifyToken(c.Request.Context(), token)
		if err != nil {
			fail(c, err)
			return
		}

		user, err := auth.Principal(c.Request.Context(), id)
		if err != nil {
			var se *services.Error
			if errors.As(err, &se) && se.Kind == services.KindNotFound {
				err = services.Unauthenticated("Unauthorized", se.Message)
			}
			fail(c, err)
			return
		}

		c.Set(principalKey, user)
		c.Next()
	}
}

// PrincipalFrom returns the profile attached by Authenticate.
func PrincipalFrom(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok && u != nil
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
