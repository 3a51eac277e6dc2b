// Package apiclient is a typed HTTP client for the movie recommendation API.
//
// It covers the auth, favorites, movies, ratings and admin endpoints and
// attaches the bearer token from a credential.Store to every request. The
// token is read per request, so a login or logout takes effect on the next
// call without rebuilding the client.
//
// # Usage
//
//	store := credential.NewMemoryStore()
//	client, err := apiclient.New(apiclient.DefaultBaseURL, store,
//		apiclient.WithTimeout(10*time.Second),
//		apiclient.WithCircuitBreaker(5, 30*time.Second),
//	)
//	if err != nil {
//		return err
//	}
//
//	mgr := session.New(client.SessionService(), client.FavoritesService(),
//		session.WithCredentialStore(store),
//	)
//
// # Errors
//
// Non-2xx responses are returned as *APIError. The server's detail text is
// available through Message, and the error unwraps to a status sentinel such
// as ErrUnauthorized or ErrNotFound:
//
//	if errors.Is(err, apiclient.ErrNotFound) {
//		// ...
//	}
//
// Requests are never retried. An open circuit breaker or an exhausted rate
// limiter wait fails the call like any other transport error.
package apiclient
