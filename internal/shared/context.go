package shared

import (
	"context"

	"github.com/edudash/edudash/internal/access"
	"github.com/edudash/edudash/internal/session"
)

type sessionContextKey struct{}

type storeContextKey struct{}

// ContextWithSession stores the browser session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the browser session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// ContextWithStore stores the request's principal store in context.
func ContextWithStore(ctx context.Context, store *session.Store) context.Context {
	return context.WithValue(ctx, storeContextKey{}, store)
}

// StoreFromContext extracts the principal store from context.
func StoreFromContext(ctx context.Context) *session.Store {
	store, _ := ctx.Value(storeContextKey{}).(*session.Store)
	return store
}

// PrincipalFromContext returns the current principal, or the anonymous
// principal when no store is attached.
func PrincipalFromContext(ctx context.Context) access.Principal {
	if store := StoreFromContext(ctx); store != nil {
		return store.Current()
	}
	return access.Anonymous()
}
