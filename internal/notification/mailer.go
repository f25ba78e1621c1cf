// Package notification sends transactional appointment mail through
// SendGrid. Delivery is best effort: callers dispatch sends off the
// request path and only log failures.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/citamed/api/internal/config"
	"github.com/citamed/api/pkg/metrics"
)

// AppointmentEmail carries everything the mail templates need about an
// appointment lifecycle event.
type AppointmentEmail struct {
	AppointmentID   uuid.UUID
	PatientName     string
	PatientEmail    string
	DoctorName      string
	DoctorSpecialty string
	Date            time.Time
	Time            string
	Reason          string
	ConsultationFee *float64
}

type Service struct {
	client  *sendgrid.Client
	from    *mail.Email
	timeout time.Duration
	log     *zap.Logger
	metrics *metrics.Collector
}

func NewService(cfg config.MailerConfig, log *zap.Logger, collector *metrics.Collector) *Service {
	return &Service{
		client:  sendgrid.NewSendClient(cfg.APIKey),
		from:    mail.NewEmail(cfg.FromName, cfg.FromEmail),
		timeout: cfg.Timeout,
		log:     log,
		metrics: collector,
	}
}

func (s *Service) SendAppointmentConfirmation(ctx context.Context, m *AppointmentEmail) error {
	body, err := renderConfirmation(m)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Confirmación de Cita Médica - Dr. %s", m.DoctorName)
	return s.send(ctx, "confirmation", m.PatientEmail, m.PatientName, subject, body)
}

func (s *Service) SendAppointmentUpdate(ctx context.Context, m *AppointmentEmail, changes string) error {
	body, err := renderUpdate(m, changes)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Actualización de Cita Médica - Dr. %s", m.DoctorName)
	return s.send(ctx, "update", m.PatientEmail, m.PatientName, subject, body)
}

func (s *Service) SendAppointmentCancellation(ctx context.Context, m *AppointmentEmail, reason string) error {
	body, err := renderCancellation(m, reason)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Cancelación de Cita Médica - Dr. %s", m.DoctorName)
	return s.send(ctx, "cancellation", m.PatientEmail, m.PatientName, subject, body)
}

func (s *Service) SendAppointmentReminder(ctx context.Context, m *AppointmentEmail) error {
	body, err := renderReminder(m)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Recordatorio: Cita Médica con Dr. %s", m.DoctorName)
	return s.send(ctx, "reminder", m.PatientEmail, m.PatientName, subject, body)
}

func (s *Service) SendVerificationLink(ctx context.Context, toEmail, toName, link string) error {
	body, err := renderVerification(toName, link)
	if err != nil {
		return err
	}
	return s.send(ctx, "verification", toEmail, toName, "Verifica tu correo electrónico", body)
}

func (s *Service) send(ctx context.Context, kind, toEmail, toName, subject, htmlBody string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	msg := mail.NewSingleEmail(s.from, subject, mail.NewEmail(toName, toEmail), "", htmlBody)
	resp, err := s.client.SendWithContext(ctx, msg)
	if err == nil && resp.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.EmailsFailedTotal.WithLabelValues(kind).Inc()
		}
		s.log.Error("failed to send email",
			zap.String("kind", kind),
			zap.String("to", toEmail),
			zap.Error(err),
		)
		return fmt.Errorf("sending %s email: %w", kind, err)
	}

	if s.metrics != nil {
		s.metrics.EmailsSentTotal.WithLabelValues(kind).Inc()
	}
	s.log.Info("email sent", zap.String("kind", kind), zap.String("to", toEmail))
	return nil
}
