package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/citamed/api/internal/domain/appointment"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		// The partial unique index on (doctor_id, date, time) for active
		// statuses is the authoritative double-booking guard; see
		// pkg/database.
		if isUniqueViolation(err, "idx_appointments_active_slot") {
			return appointment.ErrSlotUnavailable
		}
		return fmt.Errorf("creating appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appointment.ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching appointment: %w", err)
	}
	return &a, nil
}

func (r *AppointmentRepository) List(ctx context.Context) ([]*appointment.Appointment, error) {
	return r.list(ctx, r.db.WithContext(ctx))
}

func (r *AppointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("patient_id = ?", patientID))
}

func (r *AppointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*appointment.Appointment, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("doctor_id = ?", doctorID))
}

func (r *AppointmentRepository) ListByStatus(ctx context.Context, status appointment.Status) ([]*appointment.Appointment, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("status = ?", status))
}

func (r *AppointmentRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]*appointment.Appointment, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("date >= ? AND date <= ?", appointment.Day(from), appointment.Day(to)))
}

func (r *AppointmentRepository) list(ctx context.Context, tx *gorm.DB) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	if err := tx.Order("date asc, time asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	return out, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, id uuid.UUID, cmd *appointment.UpdateCommand) (*appointment.Appointment, error) {
	values := cmd.Values()
	if len(values) > 0 {
		res := r.db.WithContext(ctx).Model(&appointment.Appointment{}).Where("id = ?", id).Updates(values)
		if res.Error != nil {
			if isUniqueViolation(res.Error, "idx_appointments_active_slot") {
				return nil, appointment.ErrSlotUnavailable
			}
			return nil, fmt.Errorf("updating appointment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, appointment.ErrAppointmentNotFound
		}
	}
	return r.GetByID(ctx, id)
}

func (r *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&appointment.Appointment{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting appointment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return appointment.ErrAppointmentNotFound
	}
	return nil
}

func (r *AppointmentRepository) HasActiveSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, timeStr string, excludeID *uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where("doctor_id = ? AND date = ? AND time = ? AND status IN ?",
			doctorID, appointment.Day(date), timeStr, appointment.ActiveStatuses)
	if excludeID != nil {
		tx = tx.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking slot: %w", err)
	}
	return count > 0, nil
}

func (r *AppointmentRepository) ActiveTimes(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error) {
	var times []string
	err := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where("doctor_id = ? AND date = ? AND status IN ?", doctorID, appointment.Day(date), appointment.ActiveStatuses).
		Pluck("time", &times).Error
	if err != nil {
		return nil, fmt.Errorf("listing booked times: %w", err)
	}
	return times, nil
}

func (r *AppointmentRepository) HasActiveForDoctor(ctx context.Context, doctorID uuid.UUID) (bool, error) {
	return r.hasActive(ctx, "doctor_id", doctorID)
}

func (r *AppointmentRepository) HasActiveForPatient(ctx context.Context, patientID uuid.UUID) (bool, error) {
	return r.hasActive(ctx, "patient_id", patientID)
}

func (r *AppointmentRepository) hasActive(ctx context.Context, column string, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where(column+" = ? AND status IN ?", id, appointment.ActiveStatuses).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking active appointments: %w", err)
	}
	return count > 0, nil
}

func (r *AppointmentRepository) DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&appointment.Appointment{}, "doctor_id = ?", doctorID).Error
}

func (r *AppointmentRepository) DeleteByPatient(ctx context.Context, patientID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&appointment.Appointment{}, "patient_id = ?", patientID).Error
}

func (r *AppointmentRepository) CountByStatus(ctx context.Context) (map[appointment.Status]int64, error) {
	type row struct {
		Status appointment.Status
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Select("status, count(*) as count").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("counting appointments by status: %w", err)
	}
	out := make(map[appointment.Status]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}

func (r *AppointmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&appointment.Appointment{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting appointments: %w", err)
	}
	return count, nil
}
