package port

import "context"

// PresenceStore mirrors connection state into shared storage so that sibling
// gateway instances and the main backend can answer reachability questions
// without holding the connection themselves. Implementations are optional;
// callers must tolerate a nil store and fall back to the local registry.
type PresenceStore interface {
	Online(ctx context.Context, userID string) error
	Refresh(ctx context.Context, userID string) error
	Offline(ctx context.Context, userID string) error
	// Lookup returns the gateway currently holding the user, if any.
	Lookup(ctx context.Context, userID string) (gatewayID string, online bool, err error)
}
