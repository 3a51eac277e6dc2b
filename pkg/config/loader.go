package config

import (
	"errors"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type cacheEntry struct {
	once  sync.Once
	value any
	err   error
}

var (
	cache          sync.Map // reflect.Type -> *cacheEntry
	dotenvLoadOnce sync.Once
)

func loadDotenv() {
	dotenvLoadOnce.Do(func() {
		// A missing .env file is the normal case outside local development.
		_ = godotenv.Load()
	})
}

// Load parses the environment into v once per type T and serves later calls
// for the same type from cache.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	loadDotenv()

	key := reflect.TypeFor[T]()
	raw, _ := cache.LoadOrStore(key, &cacheEntry{})
	entry := raw.(*cacheEntry)

	entry.once.Do(func() {
		var fresh T
		if err := env.Parse(&fresh); err != nil {
			entry.err = errors.Join(ErrParsingConfig, err)
			return
		}
		entry.value = fresh
	})

	if entry.err != nil {
		// Allow a later attempt once the environment is fixed.
		cache.CompareAndDelete(key, entry)
		return entry.err
	}
	*v = entry.value.(T)
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic("config: " + err.Error())
	}
}

// Parse reads the environment into a fresh T without touching the cache.
// Variable names are looked up with prefix prepended.
func Parse[T any](prefix string) (T, error) {
	loadDotenv()

	var v T
	if err := env.ParseWithOptions(&v, env.Options{Prefix: prefix}); err != nil {
		return v, errors.Join(ErrParsingConfig, err)
	}
	return v, nil
}
