package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new patient. A duplicate user link surfaces as
	// ErrUserAlreadyLinked.
	Create(ctx context.Context, p *Patient) error

	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error)

	List(ctx context.Context) ([]*Patient, error)

	// Search matches name or phone case-insensitively, capped at 10 results
	// for autocomplete use.
	Search(ctx context.Context, query string) ([]*Patient, error)

	Update(ctx context.Context, id uuid.UUID, cmd *UpdateCommand) (*Patient, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ExistsByUserID(ctx context.Context, userID uuid.UUID) (bool, error)

	Count(ctx context.Context) (int64, error)
}
