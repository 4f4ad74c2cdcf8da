package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	AuthFirebase = "firebase"
	AuthLocal    = "local"
)

type Config struct {
	Port                       string        `mapstructure:"API_PORT"`
	Env                        string        `mapstructure:"ENV"`
	LogLevel                   string        `mapstructure:"LOG_LEVEL"`
	MongoURI                   string        `mapstructure:"MONGO_URI"`
	MongoDatabase              string        `mapstructure:"MONGO_DATABASE"`
	StoreDriver                string        `mapstructure:"STORE_DRIVER"`
	AuthMode                   string        `mapstructure:"AUTH_MODE"`
	JWTSecret                  string        `mapstructure:"JWT_SECRET"`
	JWTTTL                     time.Duration `mapstructure:"JWT_TTL"`
	FirebaseProjectID          string        `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseServiceAccountPath string        `mapstructure:"FIREBASE_SERVICE_ACCOUNT_PATH"`
	FrontendURL                string        `mapstructure:"FRONTEND_URL"`
	TextbeltAPIKey             string        `mapstructure:"TEXTBELT_API_KEY"`
}

var keys = []string{
	"API_PORT", "ENV", "LOG_LEVEL", "MONGO_URI", "MONGO_DATABASE", "STORE_DRIVER",
	"AUTH_MODE", "JWT_SECRET", "JWT_TTL", "FIREBASE_PROJECT_ID",
	"FIREBASE_SERVICE_ACCOUNT_PATH", "FRONTEND_URL", "TEXTBELT_API_KEY",
}

// Load reads .env files (if any) into the environment and decodes the
// environment into a Config. It does not validate.
func Load(envFiles ...string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	v.SetDefault("API_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MONGO_DATABASE", "clinic")
	v.SetDefault("STORE_DRIVER", StoreMongo)
	v.SetDefault("AUTH_MODE", AuthLocal)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.AuthMode = strings.ToLower(strings.TrimSpace(cfg.AuthMode))
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the selected drivers have what they need.
func (c *Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required when STORE_DRIVER is \"mongo\""))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMongo, StoreMemory, c.StoreDriver))
	}

	switch c.AuthMode {
	case AuthLocal:
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required when AUTH_MODE is \"local\""))
		}
	case AuthFirebase:
	default:
		errs = append(errs, fmt.Errorf("AUTH_MODE must be %q or %q, got %q", AuthFirebase, AuthLocal, c.AuthMode))
	}

	if c.JWTTTL <= 0 {
		errs = append(errs, fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL))
	}
	return errors.Join(errs...)
}
