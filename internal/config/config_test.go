package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "clinic", cfg.MongoDatabase)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, AuthLocal, cfg.AuthMode)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "http://localhost:3000", cfg.FrontendURL)
}

func TestLoad_EnvAndDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("MONGO_URI=mongodb://db:27017\nJWT_TTL=2h\n"), 0o600))
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("ENV", "production")

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "mongodb://db:27017", cfg.MongoURI)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.False(t, cfg.IsDev())
}

func TestValidate(t *testing.T) {
	valid := Config{StoreDriver: StoreMongo, MongoURI: "mongodb://x", AuthMode: AuthLocal, JWTSecret: "s", JWTTTL: time.Hour}
	require.NoError(t, valid.Validate())

	noURI := valid
	noURI.MongoURI = ""
	assert.ErrorContains(t, noURI.Validate(), "MONGO_URI")

	memory := noURI
	memory.StoreDriver = StoreMemory
	assert.NoError(t, memory.Validate())

	noSecret := valid
	noSecret.JWTSecret = ""
	assert.ErrorContains(t, noSecret.Validate(), "JWT_SECRET")

	firebase := noSecret
	firebase.AuthMode = AuthFirebase
	assert.NoError(t, firebase.Validate())

	bad := valid
	bad.StoreDriver = "redis"
	bad.AuthMode = "ldap"
	err := bad.Validate()
	assert.ErrorContains(t, err, "STORE_DRIVER")
	assert.ErrorContains(t, err, "AUTH_MODE")
}
