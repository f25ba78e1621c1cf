package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/citamed/api/internal/config"
	"github.com/citamed/api/internal/domain"
)

func testManager() *JWTManager {
	return NewJWTManager(config.JWTConfig{
		Secret:          "test-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "citamed-test",
	})
}

func TestGenerateAndVerifyPair(t *testing.T) {
	m := testManager()
	userID := uuid.New()

	pair, err := m.GeneratePair(userID, "luis@mail.test", domain.RolePatient)
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}
	if pair.TokenType != "Bearer" {
		t.Errorf("token type = %q, want Bearer", pair.TokenType)
	}

	claims, err := m.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user id = %v, want %v", claims.UserID, userID)
	}
	if claims.Email != "luis@mail.test" {
		t.Errorf("email = %q", claims.Email)
	}
	if claims.Role != domain.RolePatient {
		t.Errorf("role = %q, want PATIENT", claims.Role)
	}

	if _, err := m.VerifyRefresh(pair.RefreshToken); err != nil {
		t.Errorf("VerifyRefresh: %v", err)
	}
}

func TestTokenTypeMismatch(t *testing.T) {
	m := testManager()

	pair, err := m.GeneratePair(uuid.New(), "luis@mail.test", domain.RolePatient)
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}

	if _, err := m.VerifyAccess(pair.RefreshToken); !errors.Is(err, ErrTokenTypeMismatch) {
		t.Errorf("refresh as access: err = %v, want ErrTokenTypeMismatch", err)
	}
	if _, err := m.VerifyRefresh(pair.AccessToken); !errors.Is(err, ErrTokenTypeMismatch) {
		t.Errorf("access as refresh: err = %v, want ErrTokenTypeMismatch", err)
	}
}

func TestVerifyRejectsForeignToken(t *testing.T) {
	m := testManager()
	other := NewJWTManager(config.JWTConfig{
		Secret:          "another-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "citamed-test",
	})

	pair, err := other.GeneratePair(uuid.New(), "luis@mail.test", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}

	if _, err := m.VerifyAccess(pair.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := NewJWTManager(config.JWTConfig{
		Secret:          "test-secret",
		AccessTokenTTL:  -time.Hour,
		RefreshTokenTTL: -time.Hour,
		Issuer:          "citamed-test",
	})

	pair, err := m.GeneratePair(uuid.New(), "luis@mail.test", domain.RolePatient)
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}

	if _, err := m.VerifyAccess(pair.AccessToken); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := testManager()

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := m.VerifyAccess(token); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("VerifyAccess(%q): err = %v, want ErrTokenInvalid", token, err)
		}
	}
}
