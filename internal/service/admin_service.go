package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/citamed/api/internal/domain"
	"github.com/citamed/api/internal/domain/appointment"
	"github.com/citamed/api/internal/domain/doctor"
	"github.com/citamed/api/internal/domain/patient"
)

// AdminService covers the administration surface: account management, role
// changes, cascading deletes and the system metrics dashboard.
type AdminService struct {
	users        UserRepository
	doctors      doctor.Repository
	patients     patient.Repository
	appointments appointment.Repository
	audit        *AuditService
	log          *zap.Logger
}

func NewAdminService(
	users UserRepository,
	doctors doctor.Repository,
	patients patient.Repository,
	appointments appointment.Repository,
	audit *AuditService,
	log *zap.Logger,
) *AdminService {
	return &AdminService{
		users:        users,
		doctors:      doctors,
		patients:     patients,
		appointments: appointments,
		audit:        audit,
		log:          log,
	}
}

type SystemMetrics struct {
	Users struct {
		Total  int64                 `json:"total"`
		ByRole map[domain.Role]int64 `json:"byRole"`
	} `json:"users"`
	Appointments struct {
		Total    int64                        `json:"total"`
		ByStatus map[appointment.Status]int64 `json:"byStatus"`
	} `json:"appointments"`
	Doctors  int64 `json:"doctors"`
	Patients int64 `json:"patients"`
}

func (s *AdminService) Metrics(ctx context.Context) (*SystemMetrics, error) {
	var m SystemMetrics
	var err error

	if m.Users.Total, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if m.Users.ByRole, err = s.users.CountByRole(ctx); err != nil {
		return nil, err
	}
	if m.Appointments.Total, err = s.appointments.Count(ctx); err != nil {
		return nil, err
	}
	if m.Appointments.ByStatus, err = s.appointments.CountByStatus(ctx); err != nil {
		return nil, err
	}
	if m.Doctors, err = s.doctors.Count(ctx); err != nil {
		return nil, err
	}
	if m.Patients, err = s.patients.Count(ctx); err != nil {
		return nil, err
	}

	return &m, nil
}

func (s *AdminService) ListUsers(ctx context.Context, role *domain.Role, page, limit int) ([]*domain.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.users.List(ctx, role, page, limit)
}

func (s *AdminService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

type UpdateUserCommand struct {
	Name  *string
	Email *string
}

func (s *AdminService) UpdateUser(ctx context.Context, actor *domain.Claims, id uuid.UUID, cmd UpdateUserCommand, ip string) (*domain.User, error) {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if cmd.Email != nil {
		taken, err := s.users.ExistsByEmail(ctx, *cmd.Email, &id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailTaken
		}
	}

	values := map[string]any{}
	if cmd.Name != nil {
		values["name"] = *cmd.Name
	}
	if cmd.Email != nil {
		values["email"] = *cmd.Email
	}

	updated, err := s.users.Update(ctx, id, values)
	if err != nil {
		return nil, err
	}

	s.audit.LogAsync(AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionUpdate,
		ResourceType: "user",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return updated, nil
}

// UpdateUserRole changes an account's role. The change is refused while the
// account's doctor or patient profile still carries active appointments,
// since those would be orphaned from their role's views.
func (s *AdminService) UpdateUserRole(ctx context.Context, actor *domain.Claims, id uuid.UUID, role domain.Role, ip string) (*domain.User, error) {
	if !role.IsValid() {
		return nil, Invalid("El rol no es válido")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}

	blocked, err := s.hasActiveAppointments(ctx, user)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrRoleChangeBlocked
	}

	updated, err := s.users.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}

	s.audit.LogAsync(AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionUpdate,
		ResourceType: "user",
		ResourceID:   id.String(),
		IPAddress:    ip,
		Changes:      `{"role":"` + string(role) + `"}`,
	})

	return updated, nil
}

// DeleteUser removes an account and everything hanging off it: the linked
// doctor or patient profile and all of its appointments. Admins cannot
// delete themselves, and accounts with active appointments are refused.
func (s *AdminService) DeleteUser(ctx context.Context, actor *domain.Claims, id uuid.UUID, ip string) error {
	if actor.UserID == id {
		return ErrCannotDeleteSelf
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	blocked, err := s.hasActiveAppointments(ctx, user)
	if err != nil {
		return err
	}
	if blocked {
		return ErrUserHasActive
	}

	if d, err := s.doctors.GetByUserID(ctx, id); err == nil {
		if err := s.appointments.DeleteByDoctor(ctx, d.ID); err != nil {
			return err
		}
		if err := s.doctors.Delete(ctx, d.ID); err != nil {
			return err
		}
	} else if !errors.Is(err, doctor.ErrDoctorNotFound) {
		return err
	}

	if p, err := s.patients.GetByUserID(ctx, id); err == nil {
		if err := s.appointments.DeleteByPatient(ctx, p.ID); err != nil {
			return err
		}
		if err := s.patients.Delete(ctx, p.ID); err != nil {
			return err
		}
	} else if !errors.Is(err, patient.ErrPatientNotFound) {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.LogAsync(AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionDelete,
		ResourceType: "user",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return nil
}

func (s *AdminService) hasActiveAppointments(ctx context.Context, user *domain.User) (bool, error) {
	if d, err := s.doctors.GetByUserID(ctx, user.ID); err == nil {
		active, err := s.appointments.HasActiveForDoctor(ctx, d.ID)
		if err != nil || active {
			return active, err
		}
	} else if !errors.Is(err, doctor.ErrDoctorNotFound) {
		return false, err
	}

	if p, err := s.patients.GetByUserID(ctx, user.ID); err == nil {
		return s.appointments.HasActiveForPatient(ctx, p.ID)
	} else if !errors.Is(err, patient.ErrPatientNotFound) {
		return false, err
	}

	return false, nil
}
