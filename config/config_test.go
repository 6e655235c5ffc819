package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("PORT", "8080")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("JWT_EXPIRE", "2h")
	t.Setenv(ConfigPathEnvVar, "does-not-exist.yaml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "streamcart", cfg.Mongo.Database)
	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expire)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "local", cfg.Storage.Driver)
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	assert.EqualError(t, cfg.Validate(), "JWT_SECRET is required")

	cfg.JWT.Secret = "s"
	assert.Error(t, cfg.Validate())

	cfg.Mongo.URI = "mongodb://localhost"
	assert.NoError(t, cfg.Validate())

	cfg.Storage.Driver = "s3"
	assert.Error(t, cfg.Validate())
	cfg.Storage.Bucket = "media"
	assert.NoError(t, cfg.Validate())

	cfg.Firebase.Enabled = true
	assert.Error(t, cfg.Validate())
}

func TestEnvTransformIgnoresUnknown(t *testing.T) {
	assert.Equal(t, "mongo.uri", envTransformFunc("MONGODB_URI"))
	assert.Equal(t, "", envTransformFunc("HOME"))
}

func TestMaskMongoURI(t *testing.T) {
	assert.Equal(t, "mongodb://admin:***@db:27017/", maskMongoURI("mongodb://admin:secret@db:27017/"))
	assert.Equal(t, "mongodb://db:27017", maskMongoURI("mongodb://db:27017"))
}
