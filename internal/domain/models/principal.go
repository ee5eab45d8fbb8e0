package models

import (
	"context"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/google/uuid"
)

// Principal is the authenticated caller as established from a bearer
// token issued by the external auth subsystem.
type Principal struct {
	UserID    uuid.UUID
	Class     types.ConnClass
	CompanyID uuid.UUID
	DriverID  uuid.UUID
	ClientID  uuid.UUID
}

// AnonymousPrincipal represents an unauthenticated caller, allowed on
// public endpoints only.
func AnonymousPrincipal() *Principal {
	return &Principal{Class: types.ConnAnonymous}
}

func (p *Principal) IsAnonymous() bool {
	return p == nil || p.Class == types.ConnAnonymous
}

type principalCtxKey struct{}

var principalKey = principalCtxKey{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the caller, or the anonymous principal
// when the middleware did not run.
func PrincipalFromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(principalKey).(*Principal); ok && p != nil {
		return p
	}
	return AnonymousPrincipal()
}
