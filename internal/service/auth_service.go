package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/citamed/api/internal/domain"
	"github.com/citamed/api/internal/domain/appointment"
	"github.com/citamed/api/internal/domain/patient"
	"github.com/citamed/api/internal/identity"
	"github.com/citamed/api/internal/notification"
)

// TokenManager issues and verifies the token pair handed out at login.
type TokenManager interface {
	GeneratePair(userID uuid.UUID, email string, role domain.Role) (*domain.TokenPair, error)
	VerifyRefresh(token string) (*domain.Claims, error)
}

// Mailer is the transactional mail surface the services depend on.
type Mailer interface {
	SendAppointmentConfirmation(ctx context.Context, m *notification.AppointmentEmail) error
	SendAppointmentUpdate(ctx context.Context, m *notification.AppointmentEmail, changes string) error
	SendAppointmentCancellation(ctx context.Context, m *notification.AppointmentEmail, reason string) error
	SendAppointmentReminder(ctx context.Context, m *notification.AppointmentEmail) error
	SendVerificationLink(ctx context.Context, toEmail, toName, link string) error
}

type AuthService struct {
	users    UserRepository
	patients patient.Repository
	tokens   TokenManager
	idp      identity.Provider
	mailer   Mailer
	audit    *AuditService
	log      *zap.Logger
}

func NewAuthService(
	users UserRepository,
	patients patient.Repository,
	tokens TokenManager,
	idp identity.Provider,
	mailer Mailer,
	audit *AuditService,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		patients: patients,
		tokens:   tokens,
		idp:      idp,
		mailer:   mailer,
		audit:    audit,
		log:      log,
	}
}

type RegisterCommand struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role // empty means PATIENT
}

// dummyHash keeps Login's bcrypt cost constant for unknown emails.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Register creates a new account and signs it in. Accounts with the
// PATIENT role also get an empty patient record linked to them so they can
// book right away.
func (s *AuthService) Register(ctx context.Context, cmd RegisterCommand) (*domain.User, *domain.TokenPair, error) {
	role := cmd.Role
	if role == "" {
		role = domain.RolePatient
	}
	if !role.IsValid() {
		return nil, nil, Invalid("El rol no es válido")
	}

	taken, err := s.users.ExistsByEmail(ctx, cmd.Email, nil)
	if err != nil {
		return nil, nil, err
	}
	if taken {
		return nil, nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		Name:         cmd.Name,
		Email:        cmd.Email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	if role == domain.RolePatient {
		stub := &patient.Patient{
			Name:      user.Name,
			BirthDate: appointment.Day(time.Now()),
			UserID:    user.ID,
		}
		if err := s.patients.Create(ctx, stub); err != nil {
			s.log.Error("failed to create patient record for new user",
				zap.String("user_id", user.ID.String()),
				zap.Error(err),
			)
		}
	}

	go s.sendVerificationMail(user)

	s.audit.LogAsync(AuditEntry{
		UserID:       user.ID,
		UserRole:     user.Role,
		Action:       domain.ActionCreate,
		ResourceType: "user",
		ResourceID:   user.ID.String(),
	})

	pair, err := s.tokens.GeneratePair(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

func (s *AuthService) sendVerificationMail(user *domain.User) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	link, err := s.idp.VerificationLink(ctx, user.Email)
	if err != nil {
		s.log.Error("failed to generate verification link",
			zap.String("email", user.Email),
			zap.Error(err),
		)
		return
	}
	if err := s.mailer.SendVerificationLink(ctx, user.Email, user.Name, link); err != nil {
		s.log.Error("failed to send verification email",
			zap.String("email", user.Email),
			zap.Error(err),
		)
	}
}

// Login authenticates the credentials and returns the user with a fresh
// token pair. Unverified accounts are rejected after the password check so
// the error never leaks whether the password was right.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*domain.User, *domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	verified, err := s.idp.EmailVerified(ctx, user.Email)
	if err != nil {
		return nil, nil, err
	}
	if !verified {
		return nil, nil, ErrEmailNotVerified
	}

	pair, err := s.tokens.GeneratePair(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, nil, err
	}

	s.audit.LogAsync(AuditEntry{
		UserID:       user.ID,
		UserRole:     user.Role,
		Action:       domain.ActionLogin,
		ResourceType: "user",
		ResourceID:   user.ID.String(),
		IPAddress:    ip,
	})

	return user, pair, nil
}

// Profile returns the account behind a set of verified claims.
func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Refresh exchanges a valid refresh token for a new pair. The account must
// still exist; role changes since issuance are picked up here.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return s.tokens.GeneratePair(user.ID, user.Email, user.Role)
}
