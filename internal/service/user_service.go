package service

import (
	"context"
	"strings"

	"github.com/spec-kit/it-tracker/internal/domain"
	"github.com/spec-kit/it-tracker/internal/repository"
	"github.com/spec-kit/it-tracker/pkg/util"
)

// UserService exposes profile access and admin user management.
type UserService struct {
	users   repository.UserRepository
	tickets repository.TicketRepository
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, tickets repository.TicketRepository) *UserService {
	return &UserService{users: users, tickets: tickets}
}

// List returns one page of users plus the total matching count.
func (s *UserService) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.users.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ListAssignable returns the staff users a ticket may be assigned to.
func (s *UserService) ListAssignable(ctx context.Context) ([]domain.User, error) {
	return s.users.ListByRoles(ctx, domain.RoleAgent, domain.RoleAdmin)
}

// requireSelfOrAdmin guards the profile surface: users reach only their
// own profile, admins reach anyone's.
func requireSelfOrAdmin(actor *domain.User, userID string) error {
	if actor.Role != domain.RoleAdmin && actor.ID != userID {
		return util.NewForbidden("access denied")
	}
	return nil
}

// GetProfile fetches a user's profile.
func (s *UserService) GetProfile(ctx context.Context, actor *domain.User, userID string) (*domain.User, error) {
	if err := requireSelfOrAdmin(actor, userID); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// ProfileUpdateInput describes the mutable profile fields.
type ProfileUpdateInput struct {
	FirstName  string
	LastName   string
	Department *string
}

// UpdateProfile changes a user's name and department. Email, role and
// password stay untouched on this path.
func (s *UserService) UpdateProfile(ctx context.Context, actor *domain.User, userID string, input ProfileUpdateInput) (*domain.User, error) {
	if err := requireSelfOrAdmin(actor, userID); err != nil {
		return nil, err
	}

	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return nil, util.NewValidationError("first name and last name are required", nil)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.FirstName = firstName
	user.LastName = lastName
	user.Department = input.Department
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UserStats aggregates a user's ticket involvement for the profile page.
type UserStats struct {
	CreatedTickets   int
	AssignedTickets  int
	AssignedByStatus []repository.StatusCount
}

// Stats returns ticket counts for one user.
func (s *UserService) Stats(ctx context.Context, actor *domain.User, userID string) (*UserStats, error) {
	if err := requireSelfOrAdmin(actor, userID); err != nil {
		return nil, err
	}

	created, err := s.tickets.CountWithFilter(ctx, repository.TicketFilter{ReporterID: &userID})
	if err != nil {
		return nil, err
	}
	assigned, err := s.tickets.CountWithFilter(ctx, repository.TicketFilter{AssigneeID: &userID})
	if err != nil {
		return nil, err
	}
	byStatus, err := s.tickets.AssignedStatusCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserStats{
		CreatedTickets:   created,
		AssignedTickets:  assigned,
		AssignedByStatus: byStatus,
	}, nil
}

// UpdateRole changes a user's role. Admin-only at the route layer;
// users are never hard-deleted, so role demotion is the only way off
// the staff roster.
func (s *UserService) UpdateRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, util.NewValidationError("invalid role", map[string]any{"role": role})
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
