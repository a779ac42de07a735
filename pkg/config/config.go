package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = ""

// Storage backend identifiers accepted by StorageConfig.Backend.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

type Config struct {
	App     AppConfig
	API     APIConfig
	Storage StorageConfig
	Redis   RedisConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GAMESTORE_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"GAMESTORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GAMESTORE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, "dev")
}

type APIConfig struct {
	BaseURL        string        `envconfig:"GAMESTORE_API_BASE_URL" required:"true"`
	RequestTimeout time.Duration `envconfig:"GAMESTORE_API_REQUEST_TIMEOUT" default:"15s"`
	// SyncTimeout bounds the fire-and-forget cart sync calls.
	SyncTimeout time.Duration `envconfig:"GAMESTORE_API_SYNC_TIMEOUT" default:"5s"`
}

type StorageConfig struct {
	// Backend selects where client state (identity, library, carts) lives.
	Backend string `envconfig:"GAMESTORE_STORAGE_BACKEND" default:"file"`
	// Path is the state file (file backend) or database file (sqlite backend).
	Path string `envconfig:"GAMESTORE_STORAGE_PATH" default:"gamestore-state.json"`
}

func (s StorageConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Backend)) {
	case StorageMemory, StorageFile, StorageSQLite, StorageRedis:
		return nil
	}
	return fmt.Errorf("unknown storage backend %q", s.Backend)
}

// Normalized returns the backend name in canonical form.
func (s StorageConfig) Normalized() string {
	return strings.ToLower(strings.TrimSpace(s.Backend))
}

type RedisConfig struct {
	URL          string        `envconfig:"GAMESTORE_REDIS_URL"`
	Address      string        `envconfig:"GAMESTORE_REDIS_ADDR"`
	Password     string        `envconfig:"GAMESTORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"GAMESTORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GAMESTORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GAMESTORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GAMESTORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GAMESTORE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GAMESTORE_REDIS_WRITE_TIMEOUT" default:"5s"`
}
