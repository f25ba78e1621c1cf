package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/citamed/api/internal/domain"
	"github.com/citamed/api/internal/domain/appointment"
	"github.com/citamed/api/internal/domain/doctor"
	"github.com/citamed/api/internal/domain/patient"
	"github.com/citamed/api/internal/notification"
)

type mockUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[uuid.UUID]*domain.User{}}
}

func (r *mockUserRepo) add(u *domain.User) *domain.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return u
}

func (r *mockUserRepo) Create(_ context.Context, u *domain.User) error {
	r.add(u)
	return nil
}

func (r *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (r *mockUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *mockUserRepo) List(_ context.Context, role *domain.Role, page, limit int) ([]*domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.users {
		if role == nil || u.Role == *role {
			out = append(out, u)
		}
	}
	return out, int64(len(out)), nil
}

func (r *mockUserRepo) Update(_ context.Context, id uuid.UUID, values map[string]any) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	if name, ok := values["name"].(string); ok {
		u.Name = name
	}
	if email, ok := values["email"].(string); ok {
		u.Email = email
	}
	return u, nil
}

func (r *mockUserRepo) UpdateRole(_ context.Context, id uuid.UUID, role domain.Role) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u.Role = role
	return u, nil
}

func (r *mockUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *mockUserRepo) ExistsByEmail(_ context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && (excludeID == nil || u.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockUserRepo) CountByRole(_ context.Context) (map[domain.Role]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[domain.Role]int64{}
	for _, u := range r.users {
		out[u.Role]++
	}
	return out, nil
}

func (r *mockUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

type mockDoctorRepo struct {
	mu      sync.Mutex
	doctors map[uuid.UUID]*doctor.Doctor
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{doctors: map[uuid.UUID]*doctor.Doctor{}}
}

func (r *mockDoctorRepo) add(d *doctor.Doctor) *doctor.Doctor {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doctors[d.ID] = d
	return d
}

func (r *mockDoctorRepo) Create(_ context.Context, d *doctor.Doctor) error {
	r.add(d)
	return nil
}

func (r *mockDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.doctors[id]; ok {
		return d, nil
	}
	return nil, doctor.ErrDoctorNotFound
}

func (r *mockDoctorRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*doctor.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.doctors {
		if d.UserID != nil && *d.UserID == userID {
			return d, nil
		}
	}
	return nil, doctor.ErrDoctorNotFound
}

func (r *mockDoctorRepo) List(_ context.Context) ([]*doctor.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*doctor.Doctor
	for _, d := range r.doctors {
		out = append(out, d)
	}
	return out, nil
}

func (r *mockDoctorRepo) ListBySpecialty(_ context.Context, specialty string) ([]*doctor.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*doctor.Doctor
	for _, d := range r.doctors {
		if strings.Contains(strings.ToLower(d.Specialty), strings.ToLower(specialty)) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *mockDoctorRepo) Update(_ context.Context, id uuid.UUID, cmd *doctor.UpdateCommand) (*doctor.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return nil, doctor.ErrDoctorNotFound
	}
	if cmd.Name != nil {
		d.Name = *cmd.Name
	}
	if cmd.Specialty != nil {
		d.Specialty = *cmd.Specialty
	}
	if cmd.Email != nil {
		d.Email = *cmd.Email
	}
	if cmd.LicenseNumber != nil {
		d.LicenseNumber = *cmd.LicenseNumber
	}
	return d, nil
}

func (r *mockDoctorRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.doctors[id]; !ok {
		return doctor.ErrDoctorNotFound
	}
	delete(r.doctors, id)
	return nil
}

func (r *mockDoctorRepo) ExistsByEmail(_ context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.doctors {
		if d.Email == email && (excludeID == nil || d.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockDoctorRepo) ExistsByLicense(_ context.Context, license string, excludeID *uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.doctors {
		if d.LicenseNumber == license && (excludeID == nil || d.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockDoctorRepo) ExistsByUserID(_ context.Context, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.doctors {
		if d.UserID != nil && *d.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockDoctorRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.doctors)), nil
}

type mockPatientRepo struct {
	mu       sync.Mutex
	patients map[uuid.UUID]*patient.Patient
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: map[uuid.UUID]*patient.Patient{}}
}

func (r *mockPatientRepo) add(p *patient.Patient) *patient.Patient {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patients[p.ID] = p
	return p
}

func (r *mockPatientRepo) Create(_ context.Context, p *patient.Patient) error {
	r.add(p)
	return nil
}

func (r *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.patients[id]; ok {
		return p, nil
	}
	return nil, patient.ErrPatientNotFound
}

func (r *mockPatientRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.patients {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, patient.ErrPatientNotFound
}

func (r *mockPatientRepo) List(_ context.Context) ([]*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*patient.Patient
	for _, p := range r.patients {
		out = append(out, p)
	}
	return out, nil
}

func (r *mockPatientRepo) Search(_ context.Context, query string) ([]*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*patient.Patient
	for _, p := range r.patients {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) || strings.Contains(p.Phone, query) {
			out = append(out, p)
			if len(out) == 10 {
				break
			}
		}
	}
	return out, nil
}

func (r *mockPatientRepo) Update(_ context.Context, id uuid.UUID, cmd *patient.UpdateCommand) (*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	if cmd.Name != nil {
		p.Name = *cmd.Name
	}
	if cmd.Phone != nil {
		p.Phone = *cmd.Phone
	}
	if cmd.Address != nil {
		p.Address = *cmd.Address
	}
	return p, nil
}

func (r *mockPatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[id]; !ok {
		return patient.ErrPatientNotFound
	}
	delete(r.patients, id)
	return nil
}

func (r *mockPatientRepo) ExistsByUserID(_ context.Context, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.patients {
		if p.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockPatientRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.patients)), nil
}

type mockAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*appointment.Appointment
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{appointments: map[uuid.UUID]*appointment.Appointment{}}
}

func (r *mockAppointmentRepo) add(a *appointment.Appointment) *appointment.Appointment {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.Date = appointment.Day(a.Date)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appointments[a.ID] = a
	return a
}

func (r *mockAppointmentRepo) Create(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	for _, other := range r.appointments {
		if other.DoctorID == a.DoctorID && other.Date.Equal(appointment.Day(a.Date)) &&
			other.Time == a.Time && other.Status.IsActive() && a.Status.IsActive() {
			r.mu.Unlock()
			return appointment.ErrSlotUnavailable
		}
	}
	r.mu.Unlock()
	r.add(a)
	return nil
}

func (r *mockAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.appointments[id]; ok {
		return a, nil
	}
	return nil, appointment.ErrAppointmentNotFound
}

func (r *mockAppointmentRepo) List(_ context.Context) ([]*appointment.Appointment, error) {
	return r.filter(func(*appointment.Appointment) bool { return true }), nil
}

func (r *mockAppointmentRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	return r.filter(func(a *appointment.Appointment) bool { return a.PatientID == patientID }), nil
}

func (r *mockAppointmentRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*appointment.Appointment, error) {
	return r.filter(func(a *appointment.Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (r *mockAppointmentRepo) ListByStatus(_ context.Context, status appointment.Status) ([]*appointment.Appointment, error) {
	return r.filter(func(a *appointment.Appointment) bool { return a.Status == status }), nil
}

func (r *mockAppointmentRepo) ListByDateRange(_ context.Context, from, to time.Time) ([]*appointment.Appointment, error) {
	return r.filter(func(a *appointment.Appointment) bool {
		return !a.Date.Before(from) && !a.Date.After(to)
	}), nil
}

func (r *mockAppointmentRepo) filter(keep func(*appointment.Appointment) bool) []*appointment.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*appointment.Appointment
	for _, a := range r.appointments {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func (r *mockAppointmentRepo) Update(_ context.Context, id uuid.UUID, cmd *appointment.UpdateCommand) (*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	if cmd.Date != nil {
		a.Date = appointment.Day(*cmd.Date)
	}
	if cmd.Time != nil {
		a.Time = *cmd.Time
	}
	if cmd.Reason != nil {
		a.Reason = *cmd.Reason
	}
	if cmd.Notes != nil {
		a.Notes = *cmd.Notes
	}
	if cmd.Status != nil {
		a.Status = *cmd.Status
	}
	return a, nil
}

func (r *mockAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appointments[id]; !ok {
		return appointment.ErrAppointmentNotFound
	}
	delete(r.appointments, id)
	return nil
}

func (r *mockAppointmentRepo) HasActiveSlot(_ context.Context, doctorID uuid.UUID, date time.Time, timeStr string, excludeID *uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appointments {
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if a.DoctorID == doctorID && a.Date.Equal(appointment.Day(date)) && a.Time == timeStr && a.Status.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockAppointmentRepo) ActiveTimes(_ context.Context, doctorID uuid.UUID, date time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && a.Date.Equal(appointment.Day(date)) && a.Status.IsActive() {
			out = append(out, a.Time)
		}
	}
	return out, nil
}

func (r *mockAppointmentRepo) HasActiveForDoctor(_ context.Context, doctorID uuid.UUID) (bool, error) {
	return len(r.filter(func(a *appointment.Appointment) bool {
		return a.DoctorID == doctorID && a.Status.IsActive()
	})) > 0, nil
}

func (r *mockAppointmentRepo) HasActiveForPatient(_ context.Context, patientID uuid.UUID) (bool, error) {
	return len(r.filter(func(a *appointment.Appointment) bool {
		return a.PatientID == patientID && a.Status.IsActive()
	})) > 0, nil
}

func (r *mockAppointmentRepo) DeleteByDoctor(_ context.Context, doctorID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.appointments {
		if a.DoctorID == doctorID {
			delete(r.appointments, id)
		}
	}
	return nil
}

func (r *mockAppointmentRepo) DeleteByPatient(_ context.Context, patientID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.appointments {
		if a.PatientID == patientID {
			delete(r.appointments, id)
		}
	}
	return nil
}

func (r *mockAppointmentRepo) CountByStatus(_ context.Context) (map[appointment.Status]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[appointment.Status]int64{}
	for _, a := range r.appointments {
		out[a.Status]++
	}
	return out, nil
}

func (r *mockAppointmentRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.appointments)), nil
}

// mockMailer records sends; failWith makes every send fail.
type mockMailer struct {
	mu       sync.Mutex
	sent     map[string]int
	failWith error
}

func newMockMailer() *mockMailer {
	return &mockMailer{sent: map[string]int{}}
}

func (m *mockMailer) record(kind string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.sent[kind]++
	return nil
}

func (m *mockMailer) count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[kind]
}

func (m *mockMailer) SendAppointmentConfirmation(context.Context, *notification.AppointmentEmail) error {
	return m.record("confirmation")
}

func (m *mockMailer) SendAppointmentUpdate(context.Context, *notification.AppointmentEmail, string) error {
	return m.record("update")
}

func (m *mockMailer) SendAppointmentCancellation(context.Context, *notification.AppointmentEmail, string) error {
	return m.record("cancellation")
}

func (m *mockMailer) SendAppointmentReminder(context.Context, *notification.AppointmentEmail) error {
	return m.record("reminder")
}

func (m *mockMailer) SendVerificationLink(context.Context, string, string, string) error {
	return m.record("verification")
}

// mockIdentity answers verification checks from a fixed map; unknown
// addresses are verified.
type mockIdentity struct {
	unverified map[string]bool
}

func newMockIdentity() *mockIdentity {
	return &mockIdentity{unverified: map[string]bool{}}
}

func (p *mockIdentity) EmailVerified(_ context.Context, email string) (bool, error) {
	return !p.unverified[email], nil
}

func (p *mockIdentity) VerificationLink(_ context.Context, email string) (string, error) {
	return "https://example.test/verify?email=" + email, nil
}

type mockTokens struct{}

func (mockTokens) GeneratePair(userID uuid.UUID, email string, role domain.Role) (*domain.TokenPair, error) {
	return &domain.TokenPair{
		AccessToken:  "access-" + userID.String(),
		RefreshToken: "refresh-" + userID.String(),
		ExpiresAt:    time.Now().Add(time.Hour),
		TokenType:    "Bearer",
	}, nil
}

func (mockTokens) VerifyRefresh(token string) (*domain.Claims, error) {
	id, err := uuid.Parse(strings.TrimPrefix(token, "refresh-"))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return &domain.Claims{UserID: id}, nil
}

type mockAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (r *mockAuditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}
