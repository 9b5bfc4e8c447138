package auth

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"homznspace/backend/internal/models"
)

// Kind is the role an authenticated principal acts in.
type Kind string

const (
	KindAdmin Kind = "admin"
	KindAgent Kind = "agent"
	KindUser  Kind = "user"
)

func (k Kind) Valid() bool {
	switch k {
	case KindAdmin, KindAgent, KindUser:
		return true
	}
	return false
}

// Principal is the authenticated actor recovered from a session token.
type Principal struct {
	Kind Kind
	ID   primitive.ObjectID
}

func (p Principal) IsAdmin() bool { return p.Kind == KindAdmin }
func (p Principal) IsAgent() bool { return p.Kind == KindAgent }
func (p Principal) IsUser() bool  { return p.Kind == KindUser }

func (p Principal) String() string {
	return fmt.Sprintf("%s:%s", p.Kind, p.ID.Hex())
}

// CanMutate decides whether p may update or delete prop.
// Admins may touch anything; agents only what is assigned to them.
func CanMutate(p Principal, prop *models.Property) bool {
	if prop == nil {
		return false
	}
	switch p.Kind {
	case KindAdmin:
		return true
	case KindAgent:
		return prop.OwnedBy(p.ID)
	default:
		return false
	}
}

type principalKey struct{}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored in ctx, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
