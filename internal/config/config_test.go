package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MemoryBackendDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load("api")
	require.NoError(t, err)
	assert.Equal(t, "api", cfg.RunMode)
	assert.Equal(t, StoreBackendMemory, cfg.StoreBackend)
	assert.Equal(t, time.Hour, cfg.JwtTTL)
	assert.Equal(t, 3, cfg.StoreMaxRetries)
	assert.Equal(t, 60*time.Second, cfg.PropertyCacheTTL)
}

func TestLoad_MongoBackendRequiresURI(t *testing.T) {
	t.Setenv("STORE_BACKEND", "mongo")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Load("all")
	require.NoError(t, err)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "postgres")
		_, err := Load("api")
		assert.ErrorContains(t, err, "STORE_BACKEND")
	})

	t.Run("bad ttl", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "memory")
		t.Setenv("PROPERTY_CACHE_TTL_SECONDS", "soon")
		_, err := Load("api")
		assert.ErrorContains(t, err, "PROPERTY_CACHE_TTL_SECONDS")
	})
}

func TestLoad_MemorySeedAndEmailLog(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MEMORY_SEED_FILE", "/tmp/seed.json")
	t.Setenv("LOG_EMAILS", "/tmp/emails.log")

	cfg, err := Load("api")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/seed.json", cfg.MemorySeedFile)
	assert.Equal(t, "/tmp/emails.log", cfg.LogEmailsPath)
}
