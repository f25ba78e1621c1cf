package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/citamed/api/internal/domain"
	"github.com/citamed/api/internal/domain/appointment"
	"github.com/citamed/api/internal/domain/doctor"
	"github.com/citamed/api/internal/domain/patient"
	"github.com/citamed/api/internal/notification"
	"github.com/citamed/api/pkg/metrics"
)

// AppointmentService owns the scheduling rules: one active appointment per
// (doctor, date, time), availability from the daily slot template, and the
// lifecycle mail that follows every state change.
type AppointmentService struct {
	appointments appointment.Repository
	doctors      doctor.Repository
	patients     patient.Repository
	users        UserRepository
	mailer       Mailer
	audit        *AuditService
	log          *zap.Logger
	metrics      *metrics.Collector
}

func NewAppointmentService(
	appointments appointment.Repository,
	doctors doctor.Repository,
	patients patient.Repository,
	users UserRepository,
	mailer Mailer,
	audit *AuditService,
	log *zap.Logger,
	collector *metrics.Collector,
) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		doctors:      doctors,
		patients:     patients,
		users:        users,
		mailer:       mailer,
		audit:        audit,
		log:          log,
		metrics:      collector,
	}
}

// Create books a slot. The pre-check keeps the common double-booking case
// friendly; the storage unique index catches the race the pre-check cannot.
func (s *AppointmentService) Create(ctx context.Context, actor *domain.Claims, cmd *appointment.CreateCommand, ip string) (*appointment.Appointment, error) {
	p, err := s.patients.GetByID(ctx, cmd.PatientID)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RolePatient && p.UserID != actor.UserID {
		return nil, ErrForbidden
	}

	if _, err := s.doctors.GetByID(ctx, cmd.DoctorID); err != nil {
		return nil, err
	}

	status := cmd.Status
	if status == "" {
		status = appointment.StatusPending
	}
	if !status.IsValid() {
		return nil, appointment.ErrInvalidStatus
	}

	day := appointment.Day(cmd.Date)
	taken, err := s.appointments.HasActiveSlot(ctx, cmd.DoctorID, day, cmd.Time, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		if s.metrics != nil {
			s.metrics.SlotConflictsTotal.Inc()
		}
		return nil, appointment.ErrSlotUnavailable
	}

	appt := &appointment.Appointment{
		Date:      day,
		Time:      cmd.Time,
		Status:    status,
		PatientID: cmd.PatientID,
		DoctorID:  cmd.DoctorID,
		Reason:    cmd.Reason,
		Notes:     cmd.Notes,
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		if errors.Is(err, appointment.ErrSlotUnavailable) && s.metrics != nil {
			s.metrics.SlotConflictsTotal.Inc()
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AppointmentsCreatedTotal.Inc()
	}

	s.dispatchMail(appt.ID, func(ctx context.Context, m *notification.AppointmentEmail) error {
		return s.mailer.SendAppointmentConfirmation(ctx, m)
	})

	s.audit.LogAsync(AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionCreate,
		ResourceType: "appointment",
		ResourceID:   appt.ID.String(),
		IPAddress:    ip,
	})

	return appt, nil
}

// Update applies a partial update. A new date or time re-runs the conflict
// check against the candidate slot, excluding the appointment itself.
func (s *AppointmentService) Update(ctx context.Context, actor *domain.Claims, id uuid.UUID, cmd *appointment.UpdateCommand, ip string) (*appointment.Appointment, error) {
	existing, err := s.get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if cmd.Status != nil && !cmd.Status.IsValid() {
		return nil, appointment.ErrInvalidStatus
	}

	if cmd.Date != nil {
		day := appointment.Day(*cmd.Date)
		cmd.Date = &day
	}

	if cmd.Date != nil || cmd.Time != nil {
		candidateDate := existing.Date
		candidateTime := existing.Time
		if cmd.Date != nil {
			candidateDate = *cmd.Date
		}
		if cmd.Time != nil {
			candidateTime = *cmd.Time
		}
		taken, err := s.appointments.HasActiveSlot(ctx, existing.DoctorID, candidateDate, candidateTime, &id)
		if err != nil {
			return nil, err
		}
		if taken {
			if s.metrics != nil {
				s.metrics.SlotConflictsTotal.Inc()
			}
			return nil, appointment.ErrSlotUnavailable
		}
	}

	updated, err := s.appointments.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}

	changes := describeChanges(cmd)
	s.dispatchMail(updated.ID, func(ctx context.Context, m *notification.AppointmentEmail) error {
		return s.mailer.SendAppointmentUpdate(ctx, m, changes)
	})

	s.audit.LogAsync(AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionUpdate,
		ResourceType: "appointment",
		ResourceID:   updated.ID.String(),
		IPAddress:    ip,
		Changes:      changes,
	})

	return updated, nil
}

// Delete removes the appointment permanently and notifies the patient.
// The optional reason is included in the cancellation mail.
func (s *AppointmentService) Delete(ctx context.Context, actor *domain.Claims, id uuid.UUID, reason, ip string) error {
	existing, err := s.get(ctx, actor, id)
	if err != nil {
		return err
	}

	// Resolve the mail before the row disappears.
	m, mailErr := s.emailFor(ctx, existing)

	if err := s.appointments.Delete(ctx, id); err != nil {
		return err
	}

	if mailErr != nil {
		s.log.Warn("skipping cancellation email",
			zap.String("appointment_id", id.String()),
			zap.Error(mailErr),
		)
	} else {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
			defer cancel()
			if err := s.mailer.SendAppointmentCancellation(ctx, m, reason); err != nil {
				s.log.Error("failed to send cancellation email",
					zap.String("appointment_id", id.String()),
					zap.Error(err),
				)
			}
		}()
	}

	s.audit.LogAsync(AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionDelete,
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return nil
}

// SendReminder sends a reminder mail synchronously. Only confirmed
// appointments that have not yet passed qualify.
func (s *AppointmentService) SendReminder(ctx context.Context, actor *domain.Claims, id uuid.UUID) error {
	appt, err := s.get(ctx, actor, id)
	if err != nil {
		return err
	}

	if appt.Status != appointment.StatusConfirmed {
		return appointment.ErrReminderNotAllowed
	}
	if appt.Date.Before(appointment.Day(time.Now())) {
		return appointment.ErrReminderInPast
	}

	m, err := s.emailFor(ctx, appt)
	if err != nil {
		return err
	}
	return s.mailer.SendAppointmentReminder(ctx, m)
}

// AvailableSlots returns the daily template minus the doctor's active
// bookings, preserving template order.
func (s *AppointmentService) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error) {
	booked, err := s.appointments.ActiveTimes(ctx, doctorID, appointment.Day(date))
	if err != nil {
		return nil, err
	}

	taken := make(map[string]struct{}, len(booked))
	for _, t := range booked {
		taken[t] = struct{}{}
	}

	free := make([]string, 0, len(appointment.DailySlots))
	for _, slot := range appointment.DailySlots {
		if _, ok := taken[slot]; !ok {
			free = append(free, slot)
		}
	}
	return free, nil
}

func (s *AppointmentService) Get(ctx context.Context, actor *domain.Claims, id uuid.UUID) (*appointment.Appointment, error) {
	return s.get(ctx, actor, id)
}

// List returns every appointment for staff, and only the caller's own for
// patients.
func (s *AppointmentService) List(ctx context.Context, actor *domain.Claims) ([]*appointment.Appointment, error) {
	if actor.Role == domain.RolePatient {
		p, err := s.patients.GetByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, patient.ErrPatientNotFound) {
				return []*appointment.Appointment{}, nil
			}
			return nil, err
		}
		return s.appointments.ListByPatient(ctx, p.ID)
	}
	return s.appointments.List(ctx)
}

func (s *AppointmentService) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*appointment.Appointment, error) {
	return s.appointments.ListByDoctor(ctx, doctorID)
}

func (s *AppointmentService) ListByPatient(ctx context.Context, actor *domain.Claims, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	if actor.Role == domain.RolePatient {
		p, err := s.patients.GetByID(ctx, patientID)
		if err != nil {
			return nil, err
		}
		if p.UserID != actor.UserID {
			return nil, ErrForbidden
		}
	}
	return s.appointments.ListByPatient(ctx, patientID)
}

func (s *AppointmentService) ListByStatus(ctx context.Context, status appointment.Status) ([]*appointment.Appointment, error) {
	if !status.IsValid() {
		return nil, appointment.ErrInvalidStatus
	}
	return s.appointments.ListByStatus(ctx, status)
}

func (s *AppointmentService) ListByDateRange(ctx context.Context, from, to time.Time) ([]*appointment.Appointment, error) {
	return s.appointments.ListByDateRange(ctx, appointment.Day(from), appointment.Day(to))
}

func (s *AppointmentService) get(ctx context.Context, actor *domain.Claims, id uuid.UUID) (*appointment.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RolePatient {
		p, err := s.patients.GetByID(ctx, appt.PatientID)
		if err != nil {
			return nil, err
		}
		if p.UserID != actor.UserID {
			return nil, ErrForbidden
		}
	}
	return appt, nil
}

const mailTimeout = 30 * time.Second

// dispatchMail resolves the addressing data and fires the send off the
// request path. Failures are logged, never returned.
func (s *AppointmentService) dispatchMail(id uuid.UUID, send func(context.Context, *notification.AppointmentEmail) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()

		appt, err := s.appointments.GetByID(ctx, id)
		if err != nil {
			s.log.Warn("skipping appointment email",
				zap.String("appointment_id", id.String()),
				zap.Error(err),
			)
			return
		}
		m, err := s.emailFor(ctx, appt)
		if err != nil {
			s.log.Warn("skipping appointment email",
				zap.String("appointment_id", id.String()),
				zap.Error(err),
			)
			return
		}
		if err := send(ctx, m); err != nil {
			s.log.Error("failed to send appointment email",
				zap.String("appointment_id", id.String()),
				zap.Error(err),
			)
		}
	}()
}

// emailFor assembles the addressing data for an appointment mail. The
// recipient is the patient's login account; unlinked records have no
// reachable address and cause an error.
func (s *AppointmentService) emailFor(ctx context.Context, appt *appointment.Appointment) (*notification.AppointmentEmail, error) {
	p, err := s.patients.GetByID(ctx, appt.PatientID)
	if err != nil {
		return nil, err
	}
	d, err := s.doctors.GetByID(ctx, appt.DoctorID)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	return &notification.AppointmentEmail{
		AppointmentID:   appt.ID,
		PatientName:     p.Name,
		PatientEmail:    u.Email,
		DoctorName:      d.Name,
		DoctorSpecialty: d.Specialty,
		Date:            appt.Date,
		Time:            appt.Time,
		Reason:          appt.Reason,
		ConsultationFee: d.ConsultationFee,
	}, nil
}

func describeChanges(cmd *appointment.UpdateCommand) string {
	var parts []string
	if cmd.Date != nil {
		parts = append(parts, "Nueva fecha: "+notification.FormatSpanishDate(*cmd.Date, ""))
	}
	if cmd.Time != nil {
		parts = append(parts, "Nueva hora: "+*cmd.Time)
	}
	if cmd.Status != nil {
		parts = append(parts, "Nuevo estado: "+statusInSpanish(*cmd.Status))
	}
	if cmd.Reason != nil {
		parts = append(parts, "Nuevo motivo: "+*cmd.Reason)
	}
	if cmd.Notes != nil {
		parts = append(parts, "Notas actualizadas")
	}
	return strings.Join(parts, ". ")
}

func statusInSpanish(s appointment.Status) string {
	switch s {
	case appointment.StatusPending:
		return "Pendiente"
	case appointment.StatusConfirmed:
		return "Confirmada"
	case appointment.StatusCancelled:
		return "Cancelada"
	}
	return fmt.Sprintf("%v", s)
}
