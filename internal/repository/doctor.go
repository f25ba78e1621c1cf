package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/citamed/api/internal/domain/doctor"
)

type DoctorRepository struct {
	db *gorm.DB
}

func NewDoctorRepository(db *gorm.DB) *DoctorRepository {
	return &DoctorRepository{db: db}
}

func (r *DoctorRepository) Create(ctx context.Context, d *doctor.Doctor) error {
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		switch {
		case isUniqueViolation(err, "email"):
			return doctor.ErrEmailInUse
		case isUniqueViolation(err, "license_number"):
			return doctor.ErrLicenseInUse
		case isUniqueViolation(err, "user_id"):
			return doctor.ErrUserAlreadyLinked
		}
		return fmt.Errorf("creating doctor: %w", err)
	}
	return nil
}

func (r *DoctorRepository) GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	var d doctor.Doctor
	err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, doctor.ErrDoctorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching doctor: %w", err)
	}
	return &d, nil
}

func (r *DoctorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*doctor.Doctor, error) {
	var d doctor.Doctor
	err := r.db.WithContext(ctx).First(&d, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, doctor.ErrDoctorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching doctor by user: %w", err)
	}
	return &d, nil
}

func (r *DoctorRepository) List(ctx context.Context) ([]*doctor.Doctor, error) {
	var out []*doctor.Doctor
	if err := r.db.WithContext(ctx).Order("name asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing doctors: %w", err)
	}
	return out, nil
}

func (r *DoctorRepository) ListBySpecialty(ctx context.Context, specialty string) ([]*doctor.Doctor, error) {
	var out []*doctor.Doctor
	err := r.db.WithContext(ctx).
		Where("specialty ILIKE ?", "%"+specialty+"%").
		Order("name asc").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing doctors by specialty: %w", err)
	}
	return out, nil
}

func (r *DoctorRepository) Update(ctx context.Context, id uuid.UUID, cmd *doctor.UpdateCommand) (*doctor.Doctor, error) {
	values := cmd.Values()
	if len(values) > 0 {
		res := r.db.WithContext(ctx).Model(&doctor.Doctor{}).Where("id = ?", id).Updates(values)
		if res.Error != nil {
			switch {
			case isUniqueViolation(res.Error, "email"):
				return nil, doctor.ErrEmailInUse
			case isUniqueViolation(res.Error, "license_number"):
				return nil, doctor.ErrLicenseInUse
			}
			return nil, fmt.Errorf("updating doctor: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, doctor.ErrDoctorNotFound
		}
	}
	return r.GetByID(ctx, id)
}

func (r *DoctorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&doctor.Doctor{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting doctor: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return doctor.ErrDoctorNotFound
	}
	return nil
}

func (r *DoctorRepository) ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	return r.exists(ctx, "email = ?", email, excludeID)
}

func (r *DoctorRepository) ExistsByLicense(ctx context.Context, license string, excludeID *uuid.UUID) (bool, error) {
	return r.exists(ctx, "license_number = ?", license, excludeID)
}

func (r *DoctorRepository) ExistsByUserID(ctx context.Context, userID uuid.UUID) (bool, error) {
	return r.exists(ctx, "user_id = ?", userID, nil)
}

func (r *DoctorRepository) exists(ctx context.Context, cond string, value any, excludeID *uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&doctor.Doctor{}).Where(cond, value)
	if excludeID != nil {
		tx = tx.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking doctor uniqueness: %w", err)
	}
	return count > 0, nil
}

func (r *DoctorRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&doctor.Doctor{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting doctors: %w", err)
	}
	return count, nil
}
