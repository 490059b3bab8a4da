package notify

import (
	"context"

	"github.com/spec-kit/it-tracker/internal/domain"
)

// UserDirectory is the slice of the user domain the resolver depends on.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ListByRoles(ctx context.Context, roles ...domain.Role) ([]domain.User, error)
	FirstByRole(ctx context.Context, role domain.Role) (*domain.User, error)
}

// Resolver expands an intent target into concrete recipients. The
// result is a pure function of role membership at resolution time;
// later role changes never update already-dispatched notifications.
type Resolver struct {
	users UserDirectory
}

// NewResolver constructs a resolver over the user directory.
func NewResolver(users UserDirectory) *Resolver {
	return &Resolver{users: users}
}

// Resolve returns the recipients for a target. A role target with no
// current holders resolves to an empty set, not an error. Admins
// supervise the agent queue, so agent-targeted intents include them.
func (r *Resolver) Resolve(ctx context.Context, target Target) ([]domain.User, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	if id, ok := target.UserID(); ok {
		user, err := r.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return []domain.User{*user}, nil
	}

	role, _ := target.Role()
	roles := []domain.Role{role}
	if role == domain.RoleAgent {
		roles = append(roles, domain.RoleAdmin)
	}
	return r.users.ListByRoles(ctx, roles...)
}
