package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/citamed/api/internal/domain"
	"github.com/citamed/api/internal/domain/appointment"
	"github.com/citamed/api/internal/domain/doctor"
	"github.com/google/uuid"
)

func newDoctorService(t *testing.T) (*DoctorService, *mockDoctorRepo, *mockAppointmentRepo) {
	t.Helper()

	doctors := newMockDoctorRepo()
	appointments := newMockAppointmentRepo()
	audit := NewAuditService(&mockAuditRepo{}, zap.NewNop())
	t.Cleanup(audit.Shutdown)

	return NewDoctorService(doctors, appointments, audit, zap.NewNop()), doctors, appointments
}

func adminClaims() *domain.Claims {
	return &domain.Claims{UserID: uuid.New(), Email: "root@clinic.test", Role: domain.RoleAdmin}
}

func TestCreateDoctorUniqueness(t *testing.T) {
	svc, doctors, _ := newDoctorService(t)
	ctx := context.Background()

	doctors.add(&doctor.Doctor{
		Name: "Dra. Casas", Email: "casas@clinic.test", LicenseNumber: "LIC-001",
	})

	tests := []struct {
		name    string
		email   string
		license string
		wantErr error
	}{
		{"duplicate email", "casas@clinic.test", "LIC-999", doctor.ErrEmailInUse},
		{"duplicate license", "otra@clinic.test", "LIC-001", doctor.ErrLicenseInUse},
		{"unique", "otra@clinic.test", "LIC-999", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, adminClaims(), &doctor.CreateCommand{
				Name: "Dr. Nuevo", Specialty: "Pediatría", Phone: "555-0102",
				Email: tt.email, LicenseNumber: tt.license,
			}, "")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDeleteDoctorBlockedByActiveAppointments(t *testing.T) {
	svc, doctors, appointments := newDoctorService(t)
	ctx := context.Background()

	d := doctors.add(&doctor.Doctor{Name: "Dra. Casas", Email: "c@clinic.test", LicenseNumber: "L1"})
	appointments.add(&appointment.Appointment{
		Status: appointment.StatusConfirmed, DoctorID: d.ID, PatientID: uuid.New(),
	})

	err := svc.Delete(ctx, adminClaims(), d.ID, "")
	if !errors.Is(err, doctor.ErrHasActiveAppointments) {
		t.Errorf("err = %v, want ErrHasActiveAppointments", err)
	}
}

func TestDeleteDoctorSweepsCancelledHistory(t *testing.T) {
	svc, doctors, appointments := newDoctorService(t)
	ctx := context.Background()

	d := doctors.add(&doctor.Doctor{Name: "Dra. Casas", Email: "c@clinic.test", LicenseNumber: "L1"})
	appointments.add(&appointment.Appointment{
		Status: appointment.StatusCancelled, DoctorID: d.ID, PatientID: uuid.New(),
	})

	if err := svc.Delete(ctx, adminClaims(), d.ID, ""); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n, _ := appointments.Count(ctx); n != 0 {
		t.Errorf("appointments remaining = %d, want 0", n)
	}
}

func TestUpdateDoctorUniquenessExcludesSelf(t *testing.T) {
	svc, doctors, _ := newDoctorService(t)
	ctx := context.Background()

	d := doctors.add(&doctor.Doctor{Name: "Dra. Casas", Email: "c@clinic.test", LicenseNumber: "L1"})

	// Re-submitting the doctor's own email must not be a conflict.
	ownEmail := "c@clinic.test"
	if _, err := svc.Update(ctx, adminClaims(), d.ID, &doctor.UpdateCommand{Email: &ownEmail}, ""); err != nil {
		t.Errorf("own email rejected: %v", err)
	}

	doctors.add(&doctor.Doctor{Name: "Dr. Otro", Email: "otro@clinic.test", LicenseNumber: "L2"})
	takenEmail := "otro@clinic.test"
	_, err := svc.Update(ctx, adminClaims(), d.ID, &doctor.UpdateCommand{Email: &takenEmail}, "")
	if !errors.Is(err, doctor.ErrEmailInUse) {
		t.Errorf("err = %v, want ErrEmailInUse", err)
	}
}
