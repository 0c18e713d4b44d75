package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSecret = "config-test-secret-key-of-32-chars!!"

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET_KEY", validSecret)
	t.Setenv("ADMIN_PASSWORD", "Farapokht@2024")
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequired(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Provider)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "admin", cfg.Security.AdminUsername)
	assert.False(t, cfg.Security.CountScreenedAttempts)
	assert.Equal(t, 3, cfg.Security.UploadRateLimit)
	assert.Equal(t, time.Minute, cfg.Security.UploadRateWindow)
	assert.Equal(t, int64(5*1024*1024), cfg.Import.MaxFileSize)
	assert.Equal(t, 8*time.Hour, cfg.JWT.AccessTokenTTL)
	assert.False(t, cfg.Cache.Enabled)
	assert.False(t, cfg.Captcha.Enabled)
	assert.Equal(t, "stdout", cfg.Logging.Output)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequired(t)
	t.Setenv("STORE_PROVIDER", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("UPLOAD_RATE_WINDOW", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("COUNT_SCREENED_ATTEMPTS", "true")
	t.Setenv("SERVER_PORT", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Provider)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 30*time.Second, cfg.Security.UploadRateWindow)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Security.CountScreenedAttempts)
	assert.Equal(t, 8080, cfg.Server.Port, "unparsable values fall back to the default")
	assert.Contains(t, cfg.Database.DSN(), "host=db.internal port=6543")
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := "# comment\nJWT_SECRET_KEY=\"" + validSecret + "\"\nADMIN_PASSWORD='Farapokht@2024'\nADMIN_USERNAME=file-admin\nbroken line\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))

	// the real environment wins over the file
	t.Setenv("ADMIN_USERNAME", "env-admin")
	for _, key := range []string{"JWT_SECRET_KEY", "ADMIN_PASSWORD"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, validSecret, cfg.JWT.SecretKey)
	assert.Equal(t, "Farapokht@2024", cfg.Security.AdminPassword)
	assert.Equal(t, "env-admin", cfg.Security.AdminUsername)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(*AppConfig) {}},
		{name: "missing secret", mutate: func(c *AppConfig) { c.JWT.SecretKey = "" }, wantErr: "JWT_SECRET_KEY is required"},
		{name: "short secret", mutate: func(c *AppConfig) { c.JWT.SecretKey = "short" }, wantErr: "at least 32 characters"},
		{name: "missing admin password", mutate: func(c *AppConfig) { c.Security.AdminPassword = "" }, wantErr: "ADMIN_PASSWORD is required"},
		{name: "unknown store", mutate: func(c *AppConfig) { c.Store.Provider = "mongo" }, wantErr: "STORE_PROVIDER"},
		{name: "postgres without host", mutate: func(c *AppConfig) { c.Store.Provider = "postgres"; c.Database.Host = "" }, wantErr: "DB_HOST is required"},
		{name: "body limit below import cap", mutate: func(c *AppConfig) { c.Server.BodyLimit = 1024 }, wantErr: "SERVER_BODY_LIMIT"},
		{name: "bcrypt cost out of range", mutate: func(c *AppConfig) { c.Security.BcryptCost = 20 }, wantErr: "BCRYPT_COST"},
		{name: "file logging without path", mutate: func(c *AppConfig) { c.Logging.Output = "file"; c.Logging.FilePath = "" }, wantErr: "LOG_FILE_PATH"},
		{name: "unknown log output", mutate: func(c *AppConfig) { c.Logging.Output = "syslog" }, wantErr: "LOG_OUTPUT"},
		{name: "cache without addr", mutate: func(c *AppConfig) { c.Cache.Enabled = true; c.Cache.RedisAddr = "" }, wantErr: "CACHE_REDIS_ADDR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			setRequired(t)
			cfg, err := LoadConfig()
			require.NoError(t, err)

			tt.mutate(cfg)
			err = ValidateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
