package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/harentsoaR/clinic-api/internal/middleware"
	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/services"
)

// Handler holds the services the HTTP endpoints delegate to. Endpoints are
// methods on it, one file per resource.
type Handler struct {
	Auth          *services.AuthService
	Patients      *services.PatientService
	Prescriptions *services.PrescriptionService
	Bills         *services.BillingService
	Logger        zerolog.Logger
}

func NewHandler(auth *services.AuthService, patients *services.PatientService, prescriptions *services.PrescriptionService, bills *services.BillingService, logger zerolog.Logger) *Handler {
	return &Handler{
		Auth:          auth,
		Patients:      patients,
		Prescriptions: prescriptions,
		Bills:         bills,
		Logger:        logger,
	}
}

// principal returns the caller attached by the auth middleware. Routes using
// it are always mounted behind Authenticate.
func principal(c *gin.Context) (*models.User, bool) {
	u, ok := middleware.PrincipalFrom(c)
	if !ok {
		_ = c.Error(services.Unauthenticated("Unauthorized", "Authentication required"))
	}
	return u, ok
}

// bindJSON decodes the body into dst and records a 400 when it is not valid
// JSON for that shape.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(&services.Error{
			Kind:    services.KindBadRequest,
			Title:   "Bad Request",
			Message: "Invalid request body",
			Err:     err,
		})
		return false
	}
	return true
}

func ok(c *gin.Context, body gin.H) {
	body["success"] = true
	c.JSON(http.StatusOK, body)
}

func created(c *gin.Context, body gin.H) {
	body["success"] = true
	c.JSON(http.StatusCreated, body)
}
