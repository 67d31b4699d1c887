package context

import (
	"context"

	"github.com/skilledge/skilledge-server/internal/model"
)

type identityKey struct{}

// Manager stores the authenticated identity on request contexts.
type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// SetIdentityToContext returns a child context carrying identity.
func (m *Manager) SetIdentityToContext(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentityFromContext returns the identity set by the authentication
// middleware, if any.
func (m *Manager) GetIdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(model.Identity)
	if !ok || identity.Name == "" {
		return model.Identity{}, false
	}
	return identity, true
}
