// Package server assembles the gin engine: middleware stack, routes and the
// role gates in front of them.
package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/harentsoaR/clinic-api/internal/handlers"
	"github.com/harentsoaR/clinic-api/internal/middleware"
	"github.com/harentsoaR/clinic-api/internal/models"
)

type Options struct {
	Dev         bool
	FrontendURL string
	// PasswordLogin mounts POST /api/auth/login.
	PasswordLogin bool
	Registry      *prometheus.Registry
	Logger        zerolog.Logger
}

func New(h *handlers.Handler, opts Options) *gin.Engine {
	if !opts.Dev {
		gin.SetMode(gin.ReleaseMode)
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	metrics := middleware.NewMetrics(opts.Registry)

	r := gin.New()
	r.Use(
		middleware.RequestIDs(),
		middleware.RequestLogger(opts.Logger),
		middleware.Recovery(opts.Logger, opts.Dev),
		middleware.SecurityHeaders(),
		cors.New(cors.Config{
			AllowOrigins:     []string{opts.FrontendURL},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gzip.Gzip(gzip.DefaultCompression),
		metrics.Middleware(),
		middleware.ErrorHandler(opts.Logger, opts.Dev),
	)

	r.GET("/health", handlers.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	authRoutes := r.Group("/api/auth")
	{
		authRoutes.GET("/verify", h.VerifyToken)
		authRoutes.POST("/profile", h.CreateProfile)
		authRoutes.POST("/init-demo", h.InitDemo)
		if opts.PasswordLogin {
			authRoutes.POST("/login", h.Login)
		}
	}

	doctor := middleware.RequireRole(models.RoleDoctor)
	receptionist := middleware.RequireRole(models.RoleReceptionist)

	api := r.Group("/api", middleware.Authenticate(h.Auth))
	{
		patients := api.Group("/patients")
		patients.GET("", h.ListPatients)
		patients.GET("/search/:query", h.SearchPatients)
		patients.GET("/:id", h.GetPatient)
		patients.POST("", receptionist, h.RegisterPatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.POST("/:id/token", receptionist, h.RegeneratePatientToken)

		prescriptions := api.Group("/prescriptions")
		prescriptions.GET("", h.ListPrescriptions)
		prescriptions.GET("/patient/:patientId", h.ListPatientPrescriptions)
		prescriptions.GET("/:id", h.GetPrescription)
		prescriptions.POST("", doctor, h.CreatePrescription)
		prescriptions.PUT("/:id", doctor, h.UpdatePrescription)
		prescriptions.DELETE("/:id", doctor, h.DeletePrescription)

		bills := api.Group("/bills")
		bills.GET("", h.ListBills)
		bills.GET("/stats/summary", h.BillStats)
		bills.GET("/export", receptionist, h.ExportBills)
		bills.GET("/patient/:patientId", h.ListPatientBills)
		bills.GET("/:id", h.GetBill)
		bills.POST("", receptionist, h.CreateBill)
		bills.PUT("/:id/status", receptionist, h.UpdateBillStatus)
		bills.PUT("/:id", receptionist, h.UpdateBill)
		bills.DELETE("/:id", receptionist, h.DeleteBill)
	}

	r.NoRoute(handlers.NotFound)
	return r
}
