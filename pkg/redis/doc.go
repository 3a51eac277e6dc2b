// Package redis connects to the Redis server that backs the shared
// credential store.
//
// Connect parses a redis:// URL, pings the server and retries a bounded
// number of times before giving up. Healthcheck returns a probe that can be
// run on demand, for example by `moviectl doctor`.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
package redis
