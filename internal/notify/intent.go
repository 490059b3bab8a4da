package notify

import (
	"errors"

	"github.com/spec-kit/it-tracker/internal/domain"
)

// ErrInvalidTarget is returned when an intent carries no usable target.
var ErrInvalidTarget = errors.New("intent target must name exactly one user or one role")

// Target selects recipients for an intent: either a single user or
// every current holder of a role. The zero Target is invalid, and the
// two constructors are the only way to build a valid one, so the
// both-set ambiguity cannot be expressed.
type Target struct {
	userID string
	role   domain.Role
}

// ToUser targets one specific user id. No existence check is made; a
// stale id fails downstream persistence without harm.
func ToUser(id string) Target {
	return Target{userID: id}
}

// ToRole targets every user currently holding the role.
func ToRole(role domain.Role) Target {
	return Target{role: role}
}

// UserID returns the single-user target, if set.
func (t Target) UserID() (string, bool) {
	return t.userID, t.userID != ""
}

// Role returns the role target, if set.
func (t Target) Role() (domain.Role, bool) {
	return t.role, t.role != ""
}

// Validate rejects the zero Target.
func (t Target) Validate() error {
	if t.userID == "" && t.role == "" {
		return ErrInvalidTarget
	}
	return nil
}

// Intent is a request to notify, prior to recipient resolution.
type Intent struct {
	Type     domain.NotificationType
	Title    string
	Message  string
	TicketID *string
	Target   Target
}

// Validate checks the intent is dispatchable.
func (i Intent) Validate() error {
	if i.Type == "" || i.Title == "" || i.Message == "" {
		return errors.New("intent type, title and message are required")
	}
	return i.Target.Validate()
}
