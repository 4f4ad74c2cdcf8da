package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinic-api/internal/services"
)

// RequireRole lets the request through only when the attached principal has
// the given role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := PrincipalFrom(c)
		if !ok {
			fail(c, services.Unauthenticated("Unauthorized", "Authentication required"))
			return
		}
		if user.Role != role {
			fail(c, services.Forbidden("Access denied. Required role: "+role))
			return
		}
		c.Next()
	}
}
