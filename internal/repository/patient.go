package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/citamed/api/internal/domain/patient"
)

const searchLimit = 10

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) Create(ctx context.Context, p *patient.Patient) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err, "user_id") {
			return patient.ErrUserAlreadyLinked
		}
		return fmt.Errorf("creating patient: %w", err)
	}
	return nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	var p patient.Patient
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, patient.ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching patient: %w", err)
	}
	return &p, nil
}

func (r *PatientRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*patient.Patient, error) {
	var p patient.Patient
	err := r.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, patient.ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching patient by user: %w", err)
	}
	return &p, nil
}

func (r *PatientRepository) List(ctx context.Context) ([]*patient.Patient, error) {
	var out []*patient.Patient
	if err := r.db.WithContext(ctx).Order("name asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}
	return out, nil
}

func (r *PatientRepository) Search(ctx context.Context, query string) ([]*patient.Patient, error) {
	var out []*patient.Patient
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("name ILIKE ? OR phone ILIKE ?", pattern, pattern).
		Order("name asc").Limit(searchLimit).Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("searching patients: %w", err)
	}
	return out, nil
}

func (r *PatientRepository) Update(ctx context.Context, id uuid.UUID, cmd *patient.UpdateCommand) (*patient.Patient, error) {
	values := cmd.Values()
	if len(values) > 0 {
		res := r.db.WithContext(ctx).Model(&patient.Patient{}).Where("id = ?", id).Updates(values)
		if res.Error != nil {
			return nil, fmt.Errorf("updating patient: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, patient.ErrPatientNotFound
		}
	}
	return r.GetByID(ctx, id)
}

func (r *PatientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&patient.Patient{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting patient: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return patient.ErrPatientNotFound
	}
	return nil
}

func (r *PatientRepository) ExistsByUserID(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&patient.Patient{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking patient user link: %w", err)
	}
	return count > 0, nil
}

func (r *PatientRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&patient.Patient{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting patients: %w", err)
	}
	return count, nil
}
