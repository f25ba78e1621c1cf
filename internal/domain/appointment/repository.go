package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new appointment. Returns ErrSlotUnavailable when the
	// storage-level unique constraint on (doctor_id, date, time) for active
	// statuses rejects the row.
	Create(ctx context.Context, a *Appointment) error

	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// List variants are all ordered by date asc, time asc.
	List(ctx context.Context) ([]*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error)
	ListByStatus(ctx context.Context, status Status) ([]*Appointment, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*Appointment, error)

	// Update applies a partial update and returns the resulting record.
	Update(ctx context.Context, id uuid.UUID, cmd *UpdateCommand) (*Appointment, error)

	// Delete removes the row permanently.
	Delete(ctx context.Context, id uuid.UUID) error

	// HasActiveSlot reports whether an active (PENDING/CONFIRMED) appointment
	// already occupies (doctorID, date, timeStr), excluding excludeID when set.
	HasActiveSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, timeStr string, excludeID *uuid.UUID) (bool, error)

	// ActiveTimes returns the times booked for a doctor on a day by active
	// appointments.
	ActiveTimes(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error)

	HasActiveForDoctor(ctx context.Context, doctorID uuid.UUID) (bool, error)
	HasActiveForPatient(ctx context.Context, patientID uuid.UUID) (bool, error)

	// DeleteByDoctor / DeleteByPatient support the admin cascade delete.
	DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) error
	DeleteByPatient(ctx context.Context, patientID uuid.UUID) error

	CountByStatus(ctx context.Context) (map[Status]int64, error)
	Count(ctx context.Context) (int64, error)
}
