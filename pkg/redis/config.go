package redis

import "time"

// Config describes how to reach the Redis server.
type Config struct {
	// URL uses the redis:// or rediss:// scheme, e.g. redis://:password@host:6379/0.
	URL            string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	Attempts       int           `env:"REDIS_CONNECT_ATTEMPTS" envDefault:"3"`
	RetryDelay     time.Duration `env:"REDIS_RETRY_DELAY" envDefault:"1s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"10s"`
}
