// Package authctx propagates the authenticated identity through
// context.Context without the rest of the code touching raw context keys.
package authctx

import (
	"context"
	"errors"

	"github.com/connexa-app/connexa/auth"
)

type contextKey int

const (
	identityKey contextKey = iota
	rawTokenKey
)

// ErrNoIdentity is returned when no identity is present in the context.
var ErrNoIdentity = errors.New("authctx: no identity in context")

// Set stores the authenticated identity in the context.
func Set(ctx context.Context, id *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// Get retrieves the identity from the context.
func Get(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*auth.Identity)
	return id, ok && id != nil
}

// MustGet retrieves the identity or panics. Use in handlers mounted behind
// required authentication, where the middleware guarantees presence.
func MustGet(ctx context.Context) *auth.Identity {
	id, ok := Get(ctx)
	if !ok {
		panic("authctx: identity not found in context")
	}
	return id
}

// GetOrError retrieves the identity, returning ErrNoIdentity when absent.
func GetOrError(ctx context.Context) (*auth.Identity, error) {
	id, ok := Get(ctx)
	if !ok {
		return nil, ErrNoIdentity
	}
	return id, nil
}

// SetRawToken stores the presented token string so downstream consumers
// (logout, refresh) can revoke it.
func SetRawToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, rawTokenKey, token)
}

// RawToken retrieves the presented token string, if any.
func RawToken(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(rawTokenKey).(string)
	return t, ok && t != ""
}
