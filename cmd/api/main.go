package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/clinic-api/internal/config"
	"github.com/harentsoaR/clinic-api/internal/handlers"
	"github.com/harentsoaR/clinic-api/internal/identity"
	"github.com/harentsoaR/clinic-api/internal/repository"
	"github.com/harentsoaR/clinic-api/internal/repository/memory"
	"github.com/harentsoaR/clinic-api/internal/server"
	"github.com/harentsoaR/clinic-api/internal/services"
	"github.com/harentsoaR/clinic-api/internal/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "clinic-api",
		Short:        "Clinic management REST API",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(serveCmd(), initDemoCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func initDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-demo",
		Short: "Provision the demo doctor and receptionist accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			deps, err := wire(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer deps.close()

			for _, r := range deps.auth.InitDemo(ctx) {
				line := fmt.Sprintf("%-28s %-14s %s", r.Email, r.Role, r.Status)
				if r.Error != "" {
					line += ": " + r.Error
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logger := utils.NewLogger(cfg.Env, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return nil, logger, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, logger, nil
}

type repositories struct {
	users         repository.UserRepository
	credentials   repository.CredentialRepository
	patients      repository.PatientRepository
	prescriptions repository.PrescriptionRepository
	bills         repository.BillRepository
}

type dependencies struct {
	auth          *services.AuthService
	patients      *services.PatientService
	prescriptions *services.PrescriptionService
	bills         *services.BillingService
	provider      identity.Provider
	close         func()
}

func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*repositories, func(), error) {
	if cfg.StoreDriver == config.StoreMemory {
		logger.Warn().Msg("STORE_DRIVER=memory: data is lost when the process exits")
		s := memory.New()
		return &repositories{
			users: s.Users, credentials: s.Credentials, patients: s.Patients,
			prescriptions: s.Prescriptions, bills: s.Bills,
		}, func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	db := client.Database(cfg.MongoDatabase)
	if err := repository.EnsureIndexes(connectCtx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	logger.Info().Str("database", cfg.MongoDatabase).Msg("connected to MongoDB")

	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			logger.Warn().Err(err).Msg("MongoDB disconnect")
		}
	}
	return &repositories{
		users:         repository.NewMongoUserRepository(db),
		credentials:   repository.NewMongoCredentialRepository(db),
		patients:      repository.NewMongoPatientRepository(db),
		prescriptions: repository.NewMongoPrescriptionRepository(db),
		bills:         repository.NewMongoBillRepository(db),
	}, closeFn, nil
}

func wire(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*dependencies, error) {
	repos, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var provider identity.Provider
	switch cfg.AuthMode {
	case config.AuthFirebase:
		provider, err = identity.NewFirebaseProvider(ctx, cfg.FirebaseProjectID, cfg.FirebaseServiceAccountPath, logger)
		if err != nil {
			closeStore()
			return nil, err
		}
	default:
		provider = identity.NewLocalProvider(repos.credentials, utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL))
	}

	var notifier services.PaymentNotifier
	if cfg.TextbeltAPIKey != "" {
		notifier = services.NewNotificationService(cfg.TextbeltAPIKey, logger)
	} else {
		logger.Info().Msg("TEXTBELT_API_KEY not set, payment receipts disabled")
	}

	return &dependencies{
		auth:          services.NewAuthService(provider, repos.users, logger),
		patients:      services.NewPatientService(repos.patients, logger),
		prescriptions: services.NewPrescriptionService(repos.prescriptions, repos.patients, logger),
		bills:         services.NewBillingService(repos.bills, repos.patients, notifier, logger),
		provider:      provider,
		close:         closeStore,
	}, nil
}

func runServer() error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := wire(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	_, passwordLogin := deps.provider.(identity.PasswordAuthenticator)
	h := handlers.NewHandler(deps.auth, deps.patients, deps.prescriptions, deps.bills, logger)
	engine := server.New(h, server.Options{
		Dev:           cfg.IsDev(),
		FrontendURL:   cfg.FrontendURL,
		PasswordLogin: passwordLogin,
		Registry:      registry,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("store", cfg.StoreDriver).
			Str("auth", cfg.AuthMode).
			Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
