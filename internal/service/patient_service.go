package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/citamed/api/internal/domain"
	"github.com/citamed/api/internal/domain/appointment"
	"github.com/citamed/api/internal/domain/patient"
)

type PatientService struct {
	patients     patient.Repository
	appointments appointment.Repository
	audit        *AuditService
	log          *zap.Logger
}

func NewPatientService(
	patients patient.Repository,
	appointments appointment.Repository,
	audit *AuditService,
	log *zap.Logger,
) *PatientService {
	return &PatientService{
		patients:     patients,
		appointments: appointments,
		audit:        audit,
		log:          log,
	}
}

func (s *PatientService) Create(ctx context.Context, actor *domain.Claims, cmd *patient.CreateCommand, ip string) (*patient.Patient, error) {
	linked, err := s.patients.ExistsByUserID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if linked {
		return nil, patient.ErrUserAlreadyLinked
	}

	p := &patient.Patient{
		Name:             cmd.Name,
		BirthDate:        appointment.Day(cmd.BirthDate),
		Phone:            cmd.Phone,
		Address:          cmd.Address,
		UserID:           cmd.UserID,
		Gender:           cmd.Gender,
		BloodType:        cmd.BloodType,
		EmergencyContact: cmd.EmergencyContact,
		MedicalHistory:   cmd.MedicalHistory,
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}

	s.audit.LogAsync(AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionCreate,
		ResourceType: "patient",
		ResourceID:   p.ID.String(),
		IPAddress:    ip,
	})

	return p, nil
}

// Get scopes patients to their own record; staff may read any.
func (s *PatientService) Get(ctx context.Context, actor *domain.Claims, id uuid.UUID) (*patient.Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RolePatient && p.UserID != actor.UserID {
		return nil, ErrForbidden
	}
	return p, nil
}

// GetByUserID resolves the patient record linked to a user account.
func (s *PatientService) GetByUserID(ctx context.Context, userID uuid.UUID) (*patient.Patient, error) {
	return s.patients.GetByUserID(ctx, userID)
}

func (s *PatientService) List(ctx context.Context) ([]*patient.Patient, error) {
	return s.patients.List(ctx)
}

func (s *PatientService) Search(ctx context.Context, query string) ([]*patient.Patient, error) {
	return s.patients.Search(ctx, query)
}

func (s *PatientService) Update(ctx context.Context, actor *domain.Claims, id uuid.UUID, cmd *patient.UpdateCommand, ip string) (*patient.Patient, error) {
	existing, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RolePatient && existing.UserID != actor.UserID {
		return nil, ErrForbidden
	}

	if cmd.BirthDate != nil {
		day := appointment.Day(*cmd.BirthDate)
		cmd.BirthDate = &day
	}

	updated, err := s.patients.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}

	s.audit.LogAsync(AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionUpdate,
		ResourceType: "patient",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return updated, nil
}

// Delete refuses while the patient still has pending or confirmed
// appointments; cancelled history is removed along with the record.
func (s *PatientService) Delete(ctx context.Context, actor *domain.Claims, id uuid.UUID, ip string) error {
	if _, err := s.patients.GetByID(ctx, id); err != nil {
		return err
	}

	active, err := s.appointments.HasActiveForPatient(ctx, id)
	if err != nil {
		return err
	}
	if active {
		return patient.ErrHasActiveAppointments
	}

	if err := s.appointments.DeleteByPatient(ctx, id); err != nil {
		return err
	}
	if err := s.patients.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.LogAsync(AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionDelete,
		ResourceType: "patient",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return nil
}
