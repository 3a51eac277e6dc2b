// Package credential persists the single bearer token that proves the
// client's identity to the remote API.
//
// A Store holds at most one opaque token under a well-known key. The token is
// written on login and removed on logout or when the server stops accepting
// it. Nothing in this package inspects the token.
//
// Three backends are provided:
//
//   - MemoryStore keeps the token for the life of the process.
//   - FileStore keeps it in a small YAML file so it survives restarts, the
//     same way a browser keeps it across page reloads.
//   - RedisStore keeps it in Redis, shared by every process pointed at the
//     same key.
//
// New picks a backend from Config:
//
//	var cfg credential.Config
//	config.MustLoad(&cfg)
//
//	store, err := credential.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer credential.Close(store)
//
// An absent token is a normal state and is reported as ErrNoCredential.
package credential
