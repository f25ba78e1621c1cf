package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/citamed/api/internal/domain"
)

var (
	ErrForbidden          = errors.New("forbidden: insufficient permissions")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email address has not been verified")
	ErrEmailTaken         = errors.New("email is already in use")
	ErrUserNotFound       = errors.New("user not found")
	ErrCannotDeleteSelf   = errors.New("cannot delete your own account")
	ErrRoleChangeBlocked  = errors.New("cannot change role while the user has active appointments")
	ErrUserHasActive      = errors.New("cannot delete user with active appointments")
)

// ValidationError carries the first validation failure of a request body.
// Only one message is ever reported per request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Invalid(message string) error {
	return &ValidationError{Message: message}
}

// UserRepository is the persistence surface shared by the auth and admin
// services.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, role *domain.Role, page, limit int) ([]*domain.User, int64, error)
	Update(ctx context.Context, id uuid.UUID, values map[string]any) (*domain.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)
	CountByRole(ctx context.Context) (map[domain.Role]int64, error)
	Count(ctx context.Context) (int64, error)
}

type AuditEntry struct {
	UserID       uuid.UUID
	UserRole     domain.Role
	Action       domain.AuditAction
	ResourceType string
	ResourceID   string
	IPAddress    string
	Changes      string
}
