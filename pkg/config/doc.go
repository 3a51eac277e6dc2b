// Package config loads typed configuration structs from the environment.
//
// Structs declare their variables with github.com/caarlos0/env tags. A .env
// file in the working directory, when present, is read once before the first
// load (github.com/joho/godotenv) and never overrides variables that are
// already set.
//
//	type Config struct {
//	    BaseURL string        `env:"API_BASE_URL" envDefault:"http://127.0.0.1:8000/api/v1"`
//	    Timeout time.Duration `env:"API_TIMEOUT" envDefault:"15s"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// Load caches the result per type, so every package asking for the same
// struct sees the same values. Parse skips the cache, which is what tests
// that mutate the environment want.
package config
