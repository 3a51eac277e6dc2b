package apiclient

import "time"

// DefaultBaseURL is the API root of a locally running backend.
const DefaultBaseURL = "http://127.0.0.1:8000/api/v1"

// Config holds the client settings read from the environment.
type Config struct {
	BaseURL string        `env:"API_BASE_URL" envDefault:"http://127.0.0.1:8000/api/v1"`
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"15s"`

	// RateLimit is the sustained requests per second; zero disables throttling.
	RateLimit float64 `env:"API_RATE_LIMIT" envDefault:"0"`
	RateBurst int     `env:"API_RATE_BURST" envDefault:"5"`

	// CircuitBreaker is the number of consecutive failures that opens the
	// circuit; zero disables it.
	CircuitBreaker        uint32        `env:"API_CIRCUIT_BREAKER" envDefault:"0"`
	CircuitBreakerTimeout time.Duration `env:"API_CIRCUIT_BREAKER_TIMEOUT" envDefault:"30s"`

	UserAgent string `env:"API_USER_AGENT" envDefault:"moviekit"`
}

// Options converts the config into client options.
func (c Config) Options() []Option {
	opts := []Option{WithTimeout(c.Timeout)}
	if c.RateLimit > 0 {
		opts = append(opts, WithRateLimit(c.RateLimit, c.RateBurst))
	}
	if c.CircuitBreaker > 0 {
		opts = append(opts, WithCircuitBreaker(c.CircuitBreaker, c.CircuitBreakerTimeout))
	}
	if c.UserAgent != "" {
		opts = append(opts, WithUserAgent(c.UserAgent))
	}
	return opts
}
