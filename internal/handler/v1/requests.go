package v1

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/citamed/api/internal/domain"
	"github.com/citamed/api/internal/domain/appointment"
	"github.com/citamed/api/internal/domain/doctor"
	"github.com/citamed/api/internal/domain/patient"
	"github.com/citamed/api/internal/service"
)

// Request validation mirrors the order the fields are declared in: required
// checks first, then format, then semantic rules. Only the first failure is
// reported.

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// parseDate accepts a plain calendar date or a full timestamp.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func today() time.Time {
	return appointment.Day(time.Now())
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r *registerRequest) Validate() (service.RegisterCommand, error) {
	if r.Email == "" {
		return service.RegisterCommand{}, service.Invalid("Missing email")
	}
	if r.Password == "" {
		return service.RegisterCommand{}, service.Invalid("Missing password")
	}
	if !emailPattern.MatchString(r.Email) {
		return service.RegisterCommand{}, service.Invalid("El email no tiene formato válido")
	}

	role := domain.Role("")
	if r.Role != "" {
		parsed, ok := domain.ParseRole(r.Role)
		if !ok {
			return service.RegisterCommand{}, service.Invalid("Rol no válido. Debe ser: ADMIN, DOCTOR o PATIENT")
		}
		role = parsed
	}

	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = "Paciente"
	}

	return service.RegisterCommand{
		Name:     name,
		Email:    r.Email,
		Password: r.Password,
		Role:     role,
	}, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *loginRequest) Validate() error {
	if r.Email == "" {
		return service.Invalid("Missing email")
	}
	if r.Password == "" {
		return service.Invalid("Missing password")
	}
	return nil
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type createAppointmentRequest struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	PatientID string `json:"patientId"`
	DoctorID  string `json:"doctorId"`
	Reason    string `json:"reason"`
	Notes     string `json:"notes"`
	Status    string `json:"status"`
}

func (r *createAppointmentRequest) Validate() (*appointment.CreateCommand, error) {
	if r.Date == "" {
		return nil, service.Invalid("La fecha es requerida")
	}
	if r.Time == "" {
		return nil, service.Invalid("La hora es requerida")
	}
	if r.PatientID == "" {
		return nil, service.Invalid("El ID del paciente es requerido")
	}
	if r.DoctorID == "" {
		return nil, service.Invalid("El ID del doctor es requerido")
	}

	date, ok := parseDate(r.Date)
	if !ok {
		return nil, service.Invalid("La fecha no es válida")
	}
	if appointment.Day(date).Before(today()) {
		return nil, service.Invalid("La fecha no puede ser en el pasado")
	}

	if !appointment.TimePattern.MatchString(r.Time) {
		return nil, service.Invalid("El formato de hora debe ser HH:MM")
	}

	patientID, err := uuid.Parse(r.PatientID)
	if err != nil {
		return nil, service.Invalid("El ID del paciente no es válido")
	}
	doctorID, err := uuid.Parse(r.DoctorID)
	if err != nil {
		return nil, service.Invalid("El ID del doctor no es válido")
	}

	var status appointment.Status
	if r.Status != "" {
		status = appointment.Status(strings.ToUpper(r.Status))
		if !status.IsValid() {
			return nil, service.Invalid("El estado no es válido")
		}
	}

	return &appointment.CreateCommand{
		Date:      date,
		Time:      r.Time,
		PatientID: patientID,
		DoctorID:  doctorID,
		Reason:    r.Reason,
		Notes:     r.Notes,
		Status:    status,
	}, nil
}

type updateAppointmentRequest struct {
	Date   *string `json:"date"`
	Time   *string `json:"time"`
	Reason *string `json:"reason"`
	Notes  *string `json:"notes"`
	Status *string `json:"status"`
}

func (r *updateAppointmentRequest) Validate() (*appointment.UpdateCommand, error) {
	cmd := &appointment.UpdateCommand{
		Reason: r.Reason,
		Notes:  r.Notes,
	}

	if r.Date != nil {
		date, ok := parseDate(*r.Date)
		if !ok {
			return nil, service.Invalid("La fecha no es válida")
		}
		if appointment.Day(date).Before(today()) {
			return nil, service.Invalid("La fecha no puede ser en el pasado")
		}
		cmd.Date = &date
	}

	if r.Time != nil {
		if !appointment.TimePattern.MatchString(*r.Time) {
			return nil, service.Invalid("El formato de hora debe ser HH:MM")
		}
		cmd.Time = r.Time
	}

	if r.Status != nil {
		status := appointment.Status(strings.ToUpper(*r.Status))
		if !status.IsValid() {
			return nil, service.Invalid("El estado no es válido")
		}
		cmd.Status = &status
	}

	return cmd, nil
}

type createDoctorRequest struct {
	Name            string   `json:"name"`
	Specialty       string   `json:"specialty"`
	Phone           string   `json:"phone"`
	Email           string   `json:"email"`
	LicenseNumber   string   `json:"licenseNumber"`
	Experience      *int     `json:"experience"`
	Education       string   `json:"education"`
	Bio             string   `json:"bio"`
	ConsultationFee *float64 `json:"consultationFee"`
	AvailableHours  string   `json:"availableHours"`
	UserID          *string  `json:"userId"`
}

func (r *createDoctorRequest) Validate() (*doctor.CreateCommand, error) {
	if r.Name == "" {
		return nil, service.Invalid("El nombre es requerido")
	}
	if r.Specialty == "" {
		return nil, service.Invalid("La especialidad es requerida")
	}
	if r.Phone == "" {
		return nil, service.Invalid("El teléfono es requerido")
	}
	if r.Email == "" {
		return nil, service.Invalid("El email es requerido")
	}
	if r.LicenseNumber == "" {
		return nil, service.Invalid("El número de licencia es requerido")
	}
	if !emailPattern.MatchString(r.Email) {
		return nil, service.Invalid("El email no tiene formato válido")
	}
	if r.Experience != nil && *r.Experience < 0 {
		return nil, service.Invalid("La experiencia no puede ser negativa")
	}
	if r.ConsultationFee != nil && *r.ConsultationFee < 0 {
		return nil, service.Invalid("La tarifa de consulta no puede ser negativa")
	}

	var userID *uuid.UUID
	if r.UserID != nil && *r.UserID != "" {
		id, err := uuid.Parse(*r.UserID)
		if err != nil {
			return nil, service.Invalid("El ID del usuario no es válido")
		}
		userID = &id
	}

	return &doctor.CreateCommand{
		Name:            r.Name,
		Specialty:       r.Specialty,
		Phone:           r.Phone,
		Email:           r.Email,
		LicenseNumber:   r.LicenseNumber,
		ExperienceYears: r.Experience,
		Education:       r.Education,
		Bio:             r.Bio,
		ConsultationFee: r.ConsultationFee,
		AvailableHours:  r.AvailableHours,
		UserID:          userID,
	}, nil
}

type updateDoctorRequest struct {
	Name            *string  `json:"name"`
	Specialty       *string  `json:"specialty"`
	Phone           *string  `json:"phone"`
	Email           *string  `json:"email"`
	LicenseNumber   *string  `json:"licenseNumber"`
	Experience      *int     `json:"experience"`
	Education       *string  `json:"education"`
	Bio             *string  `json:"bio"`
	ConsultationFee *float64 `json:"consultationFee"`
	AvailableHours  *string  `json:"availableHours"`
}

func (r *updateDoctorRequest) Validate() (*doctor.UpdateCommand, error) {
	if r.Email != nil && !emailPattern.MatchString(*r.Email) {
		return nil, service.Invalid("El email no tiene formato válido")
	}
	if r.Experience != nil && *r.Experience < 0 {
		return nil, service.Invalid("La experiencia no puede ser negativa")
	}
	if r.ConsultationFee != nil && *r.ConsultationFee < 0 {
		return nil, service.Invalid("La tarifa de consulta no puede ser negativa")
	}

	return &doctor.UpdateCommand{
		Name:            r.Name,
		Specialty:       r.Specialty,
		Phone:           r.Phone,
		Email:           r.Email,
		LicenseNumber:   r.LicenseNumber,
		ExperienceYears: r.Experience,
		Education:       r.Education,
		Bio:             r.Bio,
		ConsultationFee: r.ConsultationFee,
		AvailableHours:  r.AvailableHours,
	}, nil
}

type createPatientRequest struct {
	Name             string `json:"name"`
	BirthDate        string `json:"birthDate"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	UserID           string `json:"userId"`
	Gender           string `json:"gender"`
	BloodType        string `json:"bloodType"`
	EmergencyContact string `json:"emergencyContact"`
	MedicalHistory   string `json:"medicalHistory"`
}

func (r *createPatientRequest) Validate() (*patient.CreateCommand, error) {
	if r.Name == "" {
		return nil, service.Invalid("El nombre es requerido")
	}
	if r.BirthDate == "" {
		return nil, service.Invalid("La fecha de nacimiento es requerida")
	}
	if r.Phone == "" {
		return nil, service.Invalid("El teléfono es requerido")
	}
	if r.Address == "" {
		return nil, service.Invalid("La dirección es requerida")
	}
	if r.UserID == "" {
		return nil, service.Invalid("El ID del usuario es requerido")
	}

	birthDate, ok := parseDate(r.BirthDate)
	if !ok {
		return nil, service.Invalid("La fecha de nacimiento no es válida")
	}
	if err := checkBirthDate(birthDate); err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(r.UserID)
	if err != nil {
		return nil, service.Invalid("El ID del usuario no es válido")
	}

	return &patient.CreateCommand{
		Name:             r.Name,
		BirthDate:        birthDate,
		Phone:            r.Phone,
		Address:          r.Address,
		UserID:           userID,
		Gender:           r.Gender,
		BloodType:        r.BloodType,
		EmergencyContact: r.EmergencyContact,
		MedicalHistory:   r.MedicalHistory,
	}, nil
}

type updatePatientRequest struct {
	Name             *string `json:"name"`
	BirthDate        *string `json:"birthDate"`
	Phone            *string `json:"phone"`
	Address          *string `json:"address"`
	Gender           *string `json:"gender"`
	BloodType        *string `json:"bloodType"`
	EmergencyContact *string `json:"emergencyContact"`
	MedicalHistory   *string `json:"medicalHistory"`
}

func (r *updatePatientRequest) Validate() (*patient.UpdateCommand, error) {
	cmd := &patient.UpdateCommand{
		Name:             r.Name,
		Phone:            r.Phone,
		Address:          r.Address,
		Gender:           r.Gender,
		BloodType:        r.BloodType,
		EmergencyContact: r.EmergencyContact,
		MedicalHistory:   r.MedicalHistory,
	}

	if r.BirthDate != nil {
		birthDate, ok := parseDate(*r.BirthDate)
		if !ok {
			return nil, service.Invalid("La fecha de nacimiento no es válida")
		}
		if err := checkBirthDate(birthDate); err != nil {
			return nil, err
		}
		cmd.BirthDate = &birthDate
	}

	return cmd, nil
}

func checkBirthDate(birthDate time.Time) error {
	now := time.Now()
	if birthDate.After(now) {
		return service.Invalid("La fecha de nacimiento no puede ser futura")
	}
	if now.Year()-birthDate.Year() > 150 {
		return service.Invalid("La fecha de nacimiento no es realista")
	}
	return nil
}

type updateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (r *updateUserRequest) Validate() (service.UpdateUserCommand, error) {
	if r.Email != nil && !emailPattern.MatchString(*r.Email) {
		return service.UpdateUserCommand{}, service.Invalid("El email no tiene formato válido")
	}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return service.UpdateUserCommand{}, service.Invalid("El nombre no puede estar vacío")
	}
	return service.UpdateUserCommand{Name: r.Name, Email: r.Email}, nil
}

type updateUserRoleRequest struct {
	Role string `json:"role"`
}

func (r *updateUserRoleRequest) Validate() (domain.Role, error) {
	if r.Role == "" {
		return "", service.Invalid("El rol es requerido")
	}
	role, ok := domain.ParseRole(r.Role)
	if !ok {
		return "", service.Invalid("Rol no válido. Debe ser: ADMIN, DOCTOR o PATIENT")
	}
	return role, nil
}

type deleteAppointmentRequest struct {
	Reason string `json:"reason"`
}
