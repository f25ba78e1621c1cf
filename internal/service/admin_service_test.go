package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/citamed/api/internal/domain"
	"github.com/citamed/api/internal/domain/appointment"
	"github.com/citamed/api/internal/domain/doctor"
	"github.com/citamed/api/internal/domain/patient"
)

type adminFixture struct {
	svc          *AdminService
	users        *mockUserRepo
	doctors      *mockDoctorRepo
	patients     *mockPatientRepo
	appointments *mockAppointmentRepo
	admin        *domain.Claims
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()

	f := &adminFixture{
		users:        newMockUserRepo(),
		doctors:      newMockDoctorRepo(),
		patients:     newMockPatientRepo(),
		appointments: newMockAppointmentRepo(),
	}

	audit := NewAuditService(&mockAuditRepo{}, zap.NewNop())
	t.Cleanup(audit.Shutdown)

	f.svc = NewAdminService(f.users, f.doctors, f.patients, f.appointments, audit, zap.NewNop())

	adminUser := f.users.add(&domain.User{Name: "Root", Email: "root@clinic.test", Role: domain.RoleAdmin})
	f.admin = &domain.Claims{UserID: adminUser.ID, Email: adminUser.Email, Role: domain.RoleAdmin}

	return f
}

func TestAdminCannotDeleteSelf(t *testing.T) {
	f := newAdminFixture(t)

	err := f.svc.DeleteUser(context.Background(), f.admin, f.admin.UserID, "")
	if !errors.Is(err, ErrCannotDeleteSelf) {
		t.Errorf("err = %v, want ErrCannotDeleteSelf", err)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	user := f.users.add(&domain.User{Name: "Luis", Email: "luis@mail.test", Role: domain.RolePatient})
	p := f.patients.add(&patient.Patient{Name: "Luis", UserID: user.ID})
	d := f.doctors.add(&doctor.Doctor{Name: "Dra. Casas", Email: "casas@clinic.test", LicenseNumber: "L1"})

	// Only cancelled history: deletion must proceed and sweep it away.
	f.appointments.add(&appointment.Appointment{
		Status: appointment.StatusCancelled, PatientID: p.ID, DoctorID: d.ID,
	})

	if err := f.svc.DeleteUser(ctx, f.admin, user.ID, ""); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if _, err := f.users.GetByID(ctx, user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Error("user still exists")
	}
	if _, err := f.patients.GetByID(ctx, p.ID); !errors.Is(err, patient.ErrPatientNotFound) {
		t.Error("patient record still exists")
	}
	if n, _ := f.appointments.Count(ctx); n != 0 {
		t.Errorf("appointments remaining = %d, want 0", n)
	}
}

func TestDeleteUserBlockedByActiveAppointments(t *testing.T) {
	f := newAdminFixture(t)

	user := f.users.add(&domain.User{Name: "Luis", Email: "luis@mail.test", Role: domain.RolePatient})
	p := f.patients.add(&patient.Patient{Name: "Luis", UserID: user.ID})
	f.appointments.add(&appointment.Appointment{
		Status: appointment.StatusConfirmed, PatientID: p.ID, DoctorID: uuid.New(),
	})

	err := f.svc.DeleteUser(context.Background(), f.admin, user.ID, "")
	if !errors.Is(err, ErrUserHasActive) {
		t.Errorf("err = %v, want ErrUserHasActive", err)
	}
}

func TestUpdateUserRole(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	user := f.users.add(&domain.User{Name: "Luis", Email: "luis@mail.test", Role: domain.RolePatient})
	f.patients.add(&patient.Patient{Name: "Luis", UserID: user.ID})

	updated, err := f.svc.UpdateUserRole(ctx, f.admin, user.ID, domain.RoleDoctor, "")
	if err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}
	if updated.Role != domain.RoleDoctor {
		t.Errorf("role = %q, want DOCTOR", updated.Role)
	}
}

func TestUpdateUserRoleBlockedByActiveAppointments(t *testing.T) {
	f := newAdminFixture(t)

	user := f.users.add(&domain.User{Name: "Luis", Email: "luis@mail.test", Role: domain.RolePatient})
	p := f.patients.add(&patient.Patient{Name: "Luis", UserID: user.ID})
	f.appointments.add(&appointment.Appointment{
		Status: appointment.StatusPending, PatientID: p.ID, DoctorID: uuid.New(),
	})

	_, err := f.svc.UpdateUserRole(context.Background(), f.admin, user.ID, domain.RoleDoctor, "")
	if !errors.Is(err, ErrRoleChangeBlocked) {
		t.Errorf("err = %v, want ErrRoleChangeBlocked", err)
	}
}

func TestUpdateUserRoleNoop(t *testing.T) {
	f := newAdminFixture(t)

	user := f.users.add(&domain.User{Name: "Luis", Email: "luis@mail.test", Role: domain.RolePatient})
	p := f.patients.add(&patient.Patient{Name: "Luis", UserID: user.ID})
	// Active appointments do not matter when the role does not change.
	f.appointments.add(&appointment.Appointment{
		Status: appointment.StatusPending, PatientID: p.ID, DoctorID: uuid.New(),
	})

	updated, err := f.svc.UpdateUserRole(context.Background(), f.admin, user.ID, domain.RolePatient, "")
	if err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}
	if updated.Role != domain.RolePatient {
		t.Errorf("role = %q, want PATIENT", updated.Role)
	}
}

func TestUpdateUserEmailTaken(t *testing.T) {
	f := newAdminFixture(t)

	f.users.add(&domain.User{Name: "Ana", Email: "ana@mail.test", Role: domain.RolePatient})
	user := f.users.add(&domain.User{Name: "Luis", Email: "luis@mail.test", Role: domain.RolePatient})

	taken := "ana@mail.test"
	_, err := f.svc.UpdateUser(context.Background(), f.admin, user.ID, UpdateUserCommand{Email: &taken}, "")
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}
}

func TestSystemMetrics(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	user := f.users.add(&domain.User{Name: "Luis", Email: "luis@mail.test", Role: domain.RolePatient})
	p := f.patients.add(&patient.Patient{Name: "Luis", UserID: user.ID})
	d := f.doctors.add(&doctor.Doctor{Name: "Dra. Casas", Email: "c@clinic.test", LicenseNumber: "L1"})

	f.appointments.add(&appointment.Appointment{Status: appointment.StatusPending, PatientID: p.ID, DoctorID: d.ID})
	f.appointments.add(&appointment.Appointment{Status: appointment.StatusConfirmed, PatientID: p.ID, DoctorID: d.ID})
	f.appointments.add(&appointment.Appointment{Status: appointment.StatusCancelled, PatientID: p.ID, DoctorID: d.ID})

	m, err := f.svc.Metrics(ctx)
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}

	if m.Users.Total != 2 {
		t.Errorf("users total = %d, want 2", m.Users.Total)
	}
	if m.Users.ByRole[domain.RoleAdmin] != 1 || m.Users.ByRole[domain.RolePatient] != 1 {
		t.Errorf("users by role = %v", m.Users.ByRole)
	}
	if m.Appointments.Total != 3 {
		t.Errorf("appointments total = %d, want 3", m.Appointments.Total)
	}
	if m.Appointments.ByStatus[appointment.StatusConfirmed] != 1 {
		t.Errorf("confirmed = %d, want 1", m.Appointments.ByStatus[appointment.StatusConfirmed])
	}
	if m.Doctors != 1 || m.Patients != 1 {
		t.Errorf("doctors = %d, patients = %d, want 1 and 1", m.Doctors, m.Patients)
	}
}
