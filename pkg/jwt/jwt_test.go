package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGenerateAndValidateToken(t *testing.T) {
	gen := NewGenerator("test-secret-key-for-token-signing", "authz-test")
	userID := uuid.NewString()
	tenantID := uuid.NewString()

	token, err := gen.GenerateToken(userID, tenantID, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := gen.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user id = %q, want %q", claims.UserID, userID)
	}
	if claims.TenantID != tenantID {
		t.Errorf("tenant id = %q, want %q", claims.TenantID, tenantID)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	gen := NewGenerator("secret-one", "authz-test")
	other := NewGenerator("secret-two", "authz-test")

	token, err := gen.GenerateToken(uuid.NewString(), uuid.NewString(), time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	gen := NewGenerator("test-secret-key-for-token-signing", "authz-test")

	token, err := gen.GenerateToken(uuid.NewString(), uuid.NewString(), -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := gen.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("error = %v, want ErrExpiredToken", err)
	}
}

func TestGenerateTokenRequiresIdentity(t *testing.T) {
	gen := NewGenerator("test-secret-key-for-token-signing", "authz-test")

	if _, err := gen.GenerateToken("", uuid.NewString(), time.Minute); !errors.Is(err, ErrEmptyUserID) {
		t.Errorf("error = %v, want ErrEmptyUserID", err)
	}
	if _, err := gen.GenerateToken(uuid.NewString(), "", time.Minute); !errors.Is(err, ErrEmptyTenantID) {
		t.Errorf("error = %v, want ErrEmptyTenantID", err)
	}
}
