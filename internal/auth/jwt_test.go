package auth

import (
	"strings"
	"testing"
)

const testSecret = "test-secret"

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(testSecret, "u1", "ana@example.com", "Ana", false)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(testSecret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "u1" {
		t.Errorf("expected user id 'u1', got %q", claims.UserID)
	}
	if claims.Email != "ana@example.com" {
		t.Errorf("expected email 'ana@example.com', got %q", claims.Email)
	}
	if claims.IsAdmin {
		t.Error("expected non-admin claims")
	}
	if claims.ID == "" {
		t.Error("expected non-empty JTI")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, "u1", "ana@example.com", "Ana", false)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ValidateToken("other-secret", token); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	if _, err := ValidateToken(testSecret, "not.a.token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestUniqueJTI(t *testing.T) {
	t1, _ := GenerateToken(testSecret, "u1", "a@example.com", "A", false)
	t2, _ := GenerateToken(testSecret, "u1", "a@example.com", "A", false)
	if strings.Split(t1, ".")[2] == strings.Split(t2, ".")[2] {
		t.Error("expected distinct signatures for distinct JTIs")
	}
}
