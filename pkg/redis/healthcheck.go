package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Healthcheck pings the server and reports the round-trip time.
func Healthcheck(ctx context.Context, client redis.UniversalClient) (time.Duration, error) {
	start := time.Now()
	if err := client.Ping(ctx).Err(); err != nil {
		return 0, errors.Join(ErrUnhealthy, err)
	}
	return time.Since(start), nil
}
