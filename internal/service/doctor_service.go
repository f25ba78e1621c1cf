package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/citamed/api/internal/domain"
	"github.com/citamed/api/internal/domain/appointment"
	"github.com/citamed/api/internal/domain/doctor"
)

type DoctorService struct {
	doctors      doctor.Repository
	appointments appointment.Repository
	audit        *AuditService
	log          *zap.Logger
}

func NewDoctorService(
	doctors doctor.Repository,
	appointments appointment.Repository,
	audit *AuditService,
	log *zap.Logger,
) *DoctorService {
	return &DoctorService{
		doctors:      doctors,
		appointments: appointments,
		audit:        audit,
		log:          log,
	}
}

func (s *DoctorService) Create(ctx context.Context, actor *domain.Claims, cmd *doctor.CreateCommand, ip string) (*doctor.Doctor, error) {
	taken, err := s.doctors.ExistsByEmail(ctx, cmd.Email, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, doctor.ErrEmailInUse
	}

	taken, err = s.doctors.ExistsByLicense(ctx, cmd.LicenseNumber, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, doctor.ErrLicenseInUse
	}

	if cmd.UserID != nil {
		linked, err := s.doctors.ExistsByUserID(ctx, *cmd.UserID)
		if err != nil {
			return nil, err
		}
		if linked {
			return nil, doctor.ErrUserAlreadyLinked
		}
	}

	d := &doctor.Doctor{
		Name:            cmd.Name,
		Specialty:       cmd.Specialty,
		Phone:           cmd.Phone,
		Email:           cmd.Email,
		LicenseNumber:   cmd.LicenseNumber,
		UserID:          cmd.UserID,
		ExperienceYears: cmd.ExperienceYears,
		Education:       cmd.Education,
		Bio:             cmd.Bio,
		ConsultationFee: cmd.ConsultationFee,
		AvailableHours:  cmd.AvailableHours,
	}
	if err := s.doctors.Create(ctx, d); err != nil {
		return nil, err
	}

	s.audit.LogAsync(AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionCreate,
		ResourceType: "doctor",
		ResourceID:   d.ID.String(),
		IPAddress:    ip,
	})

	return d, nil
}

func (s *DoctorService) Get(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *DoctorService) GetByUser(ctx context.Context, userID uuid.UUID) (*doctor.Doctor, error) {
	return s.doctors.GetByUserID(ctx, userID)
}

func (s *DoctorService) List(ctx context.Context, specialty string) ([]*doctor.Doctor, error) {
	if specialty != "" {
		return s.doctors.ListBySpecialty(ctx, specialty)
	}
	return s.doctors.List(ctx)
}

func (s *DoctorService) Update(ctx context.Context, actor *domain.Claims, id uuid.UUID, cmd *doctor.UpdateCommand, ip string) (*doctor.Doctor, error) {
	if _, err := s.doctors.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if cmd.Email != nil {
		taken, err := s.doctors.ExistsByEmail(ctx, *cmd.Email, &id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, doctor.ErrEmailInUse
		}
	}
	if cmd.LicenseNumber != nil {
		taken, err := s.doctors.ExistsByLicense(ctx, *cmd.LicenseNumber, &id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, doctor.ErrLicenseInUse
		}
	}

	updated, err := s.doctors.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}

	s.audit.LogAsync(AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionUpdate,
		ResourceType: "doctor",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return updated, nil
}

// Delete refuses while the doctor still has pending or confirmed
// appointments; cancelled history is removed along with the record.
func (s *DoctorService) Delete(ctx context.Context, actor *domain.Claims, id uuid.UUID, ip string) error {
	if _, err := s.doctors.GetByID(ctx, id); err != nil {
		return err
	}

	active, err := s.appointments.HasActiveForDoctor(ctx, id)
	if err != nil {
		return err
	}
	if active {
		return doctor.ErrHasActiveAppointments
	}

	if err := s.appointments.DeleteByDoctor(ctx, id); err != nil {
		return err
	}
	if err := s.doctors.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.LogAsync(AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionDelete,
		ResourceType: "doctor",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return nil
}
