// Package auth issues and validates the bearer tokens accepted by the
// thermo service and carries the caller identity through request contexts.
package auth

import (
	"context"
)

// AnonymousSubject identifies callers of a service without authentication.
const AnonymousSubject = "anonymous"

type Identity struct {
	Subject string `json:"subject"`
}

type identityKey struct{}

func IdentityFromContext(ctx context.Context) Identity {
	ident, ok := ctx.Value(identityKey{}).(Identity)
	if !ok {
		return Identity{Subject: AnonymousSubject}
	}
	return ident
}

func ContextWithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, ident)
}
