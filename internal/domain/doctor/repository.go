package doctor

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new doctor. Duplicate email, license number or user
	// link surface as the matching sentinel errors.
	Create(ctx context.Context, d *Doctor) error

	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error)

	List(ctx context.Context) ([]*Doctor, error)
	// ListBySpecialty matches the specialty as a case-insensitive substring.
	ListBySpecialty(ctx context.Context, specialty string) ([]*Doctor, error)

	Update(ctx context.Context, id uuid.UUID, cmd *UpdateCommand) (*Doctor, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)
	ExistsByLicense(ctx context.Context, license string, excludeID *uuid.UUID) (bool, error)
	ExistsByUserID(ctx context.Context, userID uuid.UUID) (bool, error)

	Count(ctx context.Context) (int64, error)
}
