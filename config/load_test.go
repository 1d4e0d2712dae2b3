package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bookborrow/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/books")
	t.Setenv("PORT", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "postgres://localhost/books", cfg.DatabaseURL)
	require.Equal(t, 10*time.Second, cfg.SessionTimeout)
	require.Equal(t, 9, cfg.SweepHour)
	require.EqualValues(t, 10, cfg.DBMaxConns)
	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, config.DevJWTSecret, cfg.JWTSecret)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bookborrow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("SWEEP_HOUR: 6\nCURRENCY: USD\nDATABASE_URL: postgres://file/db\n"), 0o600))

	t.Setenv("DATABASE_URL", "")
	t.Setenv("CURRENCY", "EUR")
	t.Setenv("PORT", "9999")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 6, cfg.SweepHour)
	require.Equal(t, "EUR", cfg.Currency)
	require.Equal(t, "postgres://file/db", cfg.DatabaseURL)
	require.Equal(t, "9999", cfg.Port)
}

func TestValidate(t *testing.T) {
	require.Error(t, (&config.App{}).Validate())
	require.Error(t, (&config.App{DatabaseURL: "x", SweepHour: 24}).Validate())
}

func TestValidate_DevSecretOnlyInDev(t *testing.T) {
	base := config.App{DatabaseURL: "x", SweepHour: 9, JWTSecret: config.DevJWTSecret}

	dev := base
	dev.Env = "dev"
	require.NoError(t, dev.Validate())

	prod := base
	prod.Env = "production"
	require.Error(t, prod.Validate())
	require.Error(t, prod.ValidateJWT())

	prod.JWTSecret = "s3cr3t-from-vault"
	require.NoError(t, prod.Validate())

	prod.JWTSecret = " "
	require.Error(t, prod.ValidateJWT())
}
