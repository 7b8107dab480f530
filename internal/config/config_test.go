package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"storage-service/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestLoadStorageConfig_FromEnvFile(t *testing.T) {
	td := t.TempDir()

	envContent := `POSTGRES_HOST=db
POSTGRES_PORT=5433
POSTGRES_USER=storage
POSTGRES_PASSWORD=secret
POSTGRES_DB=storage

REDIS_HOST=cache
REDIS_PORT=6380
REDIS_PASSWORD=
REDIS_DB=1

MINIO_ENDPOINT=blobs:9000
MINIO_BUCKET_NAME=vault
MINIO_ACCESS_KEY=admin
MINIO_SECRET_KEY=adminpass

CASCADE_QUEUE=cascade:test
CASCADE_WORKERS=2
`
	if err := os.WriteFile(filepath.Join(td, ".env"), []byte(envContent), 0o644); err != nil {
		t.Fatal(err)
	}

	origWd, _ := os.Getwd()
	defer os.Chdir(origWd)
	if err := os.Chdir(td); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadStorageConfig()
	assert.NoError(t, err)

	assert.Equal(t, "db", cfg.Postgres.Host)
	assert.Equal(t, uint16(5433), cfg.Postgres.Port)
	assert.Equal(t, "storage", cfg.Postgres.Username)
	assert.Equal(t, "secret", cfg.Postgres.Password)

	assert.Equal(t, "cache", cfg.Redis.Host)
	assert.Equal(t, "6380", cfg.Redis.Port)
	assert.Equal(t, 1, cfg.Redis.Db)

	assert.Equal(t, "blobs:9000", cfg.MinIO.MinioEndpoint)
	assert.Equal(t, "vault", cfg.MinIO.BucketName)
	assert.Equal(t, "adminpass", cfg.MinIO.MinioSecretKey)

	assert.Equal(t, "cascade:test", cfg.CascadeQueue)
	assert.Equal(t, 2, cfg.CascadeWorkers)
}

func TestLoadStorageConfig_Defaults(t *testing.T) {
	td := t.TempDir()
	origWd, _ := os.Getwd()
	defer os.Chdir(origWd)
	if err := os.Chdir(td); err != nil {
		t.Fatal(err)
	}

	// no .env file; values fall back to env-default tags
	cfg, err := config.LoadStorageConfig()
	assert.NoError(t, err)
	assert.Equal(t, "cascade:deletions", cfg.CascadeQueue)
	assert.Equal(t, 1, cfg.CascadeWorkers)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
}
