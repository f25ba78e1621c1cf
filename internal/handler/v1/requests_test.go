package v1

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/citamed/api/internal/service"
)

func validationMessage(t *testing.T, err error) string {
	t.Helper()
	var v *service.ValidationError
	if !errors.As(err, &v) {
		t.Fatalf("err = %v, want a validation error", err)
	}
	return v.Message
}

func TestCreateAppointmentRequestValidation(t *testing.T) {
	patientID := uuid.New().String()
	doctorID := uuid.New().String()
	future := time.Now().AddDate(0, 0, 7).Format("2006-01-02")

	valid := createAppointmentRequest{
		Date: future, Time: "10:00", PatientID: patientID, DoctorID: doctorID,
	}

	tests := []struct {
		name    string
		mutate  func(*createAppointmentRequest)
		wantMsg string
	}{
		{"missing date", func(r *createAppointmentRequest) { r.Date = "" }, "La fecha es requerida"},
		{"missing time", func(r *createAppointmentRequest) { r.Time = "" }, "La hora es requerida"},
		{"missing patient", func(r *createAppointmentRequest) { r.PatientID = "" }, "El ID del paciente es requerido"},
		{"missing doctor", func(r *createAppointmentRequest) { r.DoctorID = "" }, "El ID del doctor es requerido"},
		{"bad date", func(r *createAppointmentRequest) { r.Date = "ayer" }, "La fecha no es válida"},
		{"past date", func(r *createAppointmentRequest) { r.Date = "2020-01-01" }, "La fecha no puede ser en el pasado"},
		{"bad time", func(r *createAppointmentRequest) { r.Time = "25:00" }, "El formato de hora debe ser HH:MM"},
		{"bad status", func(r *createAppointmentRequest) { r.Status = "MAYBE" }, "El estado no es válido"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			_, err := req.Validate()
			if got := validationMessage(t, err); got != tt.wantMsg {
				t.Errorf("message = %q, want %q", got, tt.wantMsg)
			}
		})
	}

	t.Run("valid request", func(t *testing.T) {
		cmd, err := valid.Validate()
		if err != nil {
			t.Fatalf("Validate: %v", err)
		}
		if cmd.Time != "10:00" {
			t.Errorf("time = %q", cmd.Time)
		}
	})

	// Required checks come before format checks: a request missing its
	// time but carrying a bad date reports the missing time first.
	t.Run("required before format", func(t *testing.T) {
		req := valid
		req.Date = "ayer"
		req.Time = ""
		_, err := req.Validate()
		if got := validationMessage(t, err); got != "La hora es requerida" {
			t.Errorf("message = %q, want the missing-field error first", got)
		}
	})
}

func TestUpdateAppointmentRequestValidation(t *testing.T) {
	past := "2020-01-01"
	badTime := "9:7"
	badStatus := "MAYBE"

	tests := []struct {
		name    string
		req     updateAppointmentRequest
		wantMsg string
	}{
		{"past date", updateAppointmentRequest{Date: &past}, "La fecha no puede ser en el pasado"},
		{"bad time", updateAppointmentRequest{Time: &badTime}, "El formato de hora debe ser HH:MM"},
		{"bad status", updateAppointmentRequest{Status: &badStatus}, "El estado no es válido"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.Validate()
			if got := validationMessage(t, err); got != tt.wantMsg {
				t.Errorf("message = %q, want %q", got, tt.wantMsg)
			}
		})
	}

	t.Run("empty update is valid", func(t *testing.T) {
		cmd, err := (&updateAppointmentRequest{}).Validate()
		if err != nil {
			t.Fatalf("Validate: %v", err)
		}
		if len(cmd.Values()) != 0 {
			t.Errorf("empty request projected %d values", len(cmd.Values()))
		}
	})
}

func TestRegisterRequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     registerRequest
		wantMsg string
	}{
		{"missing email", registerRequest{Password: "secreto"}, "Missing email"},
		{"missing password", registerRequest{Email: "a@b.co"}, "Missing password"},
		{"bad email", registerRequest{Email: "no-es-email", Password: "secreto"}, "El email no tiene formato válido"},
		{"bad role", registerRequest{Email: "a@b.co", Password: "secreto", Role: "SUPERUSER"}, "Rol no válido. Debe ser: ADMIN, DOCTOR o PATIENT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.Validate()
			if got := validationMessage(t, err); got != tt.wantMsg {
				t.Errorf("message = %q, want %q", got, tt.wantMsg)
			}
		})
	}

	t.Run("defaults", func(t *testing.T) {
		cmd, err := (&registerRequest{Email: "a@b.co", Password: "secreto"}).Validate()
		if err != nil {
			t.Fatalf("Validate: %v", err)
		}
		if cmd.Role != "" {
			t.Errorf("role = %q, want empty (service applies the default)", cmd.Role)
		}
		if cmd.Name != "Paciente" {
			t.Errorf("name = %q, want the placeholder", cmd.Name)
		}
	})
}

func TestCreateDoctorRequestValidation(t *testing.T) {
	negative := -1
	fee := -10.0

	valid := createDoctorRequest{
		Name: "Dra. Casas", Specialty: "Cardiología", Phone: "555-0102",
		Email: "casas@clinic.test", LicenseNumber: "LIC-001",
	}

	tests := []struct {
		name    string
		mutate  func(*createDoctorRequest)
		wantMsg string
	}{
		{"missing name", func(r *createDoctorRequest) { r.Name = "" }, "El nombre es requerido"},
		{"missing specialty", func(r *createDoctorRequest) { r.Specialty = "" }, "La especialidad es requerida"},
		{"missing phone", func(r *createDoctorRequest) { r.Phone = "" }, "El teléfono es requerido"},
		{"missing email", func(r *createDoctorRequest) { r.Email = "" }, "El email es requerido"},
		{"missing license", func(r *createDoctorRequest) { r.LicenseNumber = "" }, "El número de licencia es requerido"},
		{"bad email", func(r *createDoctorRequest) { r.Email = "nope" }, "El email no tiene formato válido"},
		{"negative experience", func(r *createDoctorRequest) { r.Experience = &negative }, "La experiencia no puede ser negativa"},
		{"negative fee", func(r *createDoctorRequest) { r.ConsultationFee = &fee }, "La tarifa de consulta no puede ser negativa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			_, err := req.Validate()
			if got := validationMessage(t, err); got != tt.wantMsg {
				t.Errorf("message = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestCreatePatientRequestValidation(t *testing.T) {
	valid := createPatientRequest{
		Name: "Luis Mora", BirthDate: "1990-05-01", Phone: "555-0101",
		Address: "Calle 1", UserID: uuid.New().String(),
	}

	t.Run("future birth date", func(t *testing.T) {
		req := valid
		req.BirthDate = time.Now().AddDate(1, 0, 0).Format("2006-01-02")
		_, err := req.Validate()
		if got := validationMessage(t, err); got != "La fecha de nacimiento no puede ser futura" {
			t.Errorf("message = %q", got)
		}
	})

	t.Run("unrealistic birth date", func(t *testing.T) {
		req := valid
		req.BirthDate = "1820-01-01"
		_, err := req.Validate()
		if got := validationMessage(t, err); got != "La fecha de nacimiento no es realista" {
			t.Errorf("message = %q", got)
		}
	})

	t.Run("valid", func(t *testing.T) {
		if _, err := valid.Validate(); err != nil {
			t.Errorf("Validate: %v", err)
		}
	})
}
