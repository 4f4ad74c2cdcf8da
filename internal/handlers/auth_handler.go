package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinic-api/internal/identity"
	"github.com/harentsoaR/clinic-api/internal/middleware"
	"github.com/harentsoaR/clinic-api/internal/services"
)

// bearerIdentity verifies the bearer token of an /auth request, which does not
// run behind the auth middleware.
func (h *Handler) bearerIdentity(c *gin.Context) (*identity.Identity, bool) {
	token, found := middleware.BearerToken(c)
	if !found {
		_ = c.Error(services.Unauthenticated("Unauthorized", "No authorization token provided"))
		return nil, false
	}
	id, err := h.Auth.VerifyToken(c.Request.Context(), token)
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}
	return id, true
}

// VerifyToken answers GET /api/auth/verify with the merged profile.
func (h *Handler) VerifyToken(c *gin.Context) {
	id, found := h.bearerIdentity(c)
	if !found {
		return
	}
	user, err := h.Auth.Principal(c.Request.Context(), id)
	if err != nil {
		if services.KindOf(err) == services.KindNotFound {
			err = services.NotFound("User not found")
		}
		_ = c.Error(err)
		return
	}
	ok(c, gin.H{"user": user})
}

// CreateProfile stores the staff profile for a just-registered identity.
func (h *Handler) CreateProfile(c *gin.Context) {
	id, found := h.bearerIdentity(c)
	if !found {
		return
	}
	var req services.ProfileInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.Auth.CreateProfile(c.Request.Context(), id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, gin.H{"message": "User profile created successfully", "user": user})
}

func (h *Handler) InitDemo(c *gin.Context) {
	results := h.Auth.InitDemo(c.Request.Context())
	ok(c, gin.H{"message": "Demo users initialization completed", "results": results})
}

// Login is only mounted when the local identity provider is in use.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}
	token, user, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, gin.H{"token": token, "user": user})
}
