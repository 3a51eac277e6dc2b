package credential

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrymomot/moviekit/pkg/redis"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config selects and configures the credential backend.
type Config struct {
	Backend string `env:"CREDENTIAL_BACKEND" envDefault:"file"`
	Key     string `env:"CREDENTIAL_KEY" envDefault:"token"`

	// FilePath defaults to DefaultFilePath() when empty.
	FilePath string `env:"CREDENTIAL_FILE"`

	RedisPrefix string        `env:"CREDENTIAL_REDIS_PREFIX" envDefault:"moviekit:credential:"`
	TTL         time.Duration `env:"CREDENTIAL_TTL" envDefault:"0"`
	Redis       redis.Config
}

// New builds the store selected by cfg.Backend. For the redis backend it
// connects to the server; release the connection with Close.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile, "":
		path := cfg.FilePath
		if path == "" {
			path = DefaultFilePath()
		}
		return NewFileStore(path, cfg.Key), nil
	case BackendRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		key := cfg.Key
		if key == "" {
			key = DefaultKey
		}
		store := NewRedisStore(client, cfg.RedisPrefix+key, cfg.TTL)
		store.owned = true
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
