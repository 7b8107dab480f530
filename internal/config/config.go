package config

import (
	"errors"

	"github.com/ilyakaznacheev/cleanenv"

	"storage-service/internal/MinIO"
	"storage-service/pkg/database/postgres"
	"storage-service/pkg/database/redis"
)

type StorageConfig struct {
	CascadeQueue   string `env:"CASCADE_QUEUE" env-default:"cascade:deletions"`
	CascadeWorkers int    `env:"CASCADE_WORKERS" env-default:"1"`
	Postgres       postgres.Config
	Redis          redis.Config
	MinIO          MinIO.Config
}

func LoadStorageConfig() (*StorageConfig, error) {
	var cfg StorageConfig
	if err := cleanenv.ReadConfig(".env", &cfg); err != nil {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, errors.New("cannot read Storage Config")
		}
	}
	return &cfg, nil
}
