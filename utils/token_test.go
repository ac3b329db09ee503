package utils

import (
	"testing"

	"github.com/mkovacevic/boutique-tryon/config"
)

func TestGenerateAndValidateToken(t *testing.T) {
	config.JWTSecret = "test-secret"

	token, err := GenerateToken("64f1a2b3c4d5e6f7a8b9c0d1")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	userID, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if userID != "64f1a2b3c4d5e6f7a8b9c0d1" {
		t.Errorf("user id = %q", userID)
	}
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	config.JWTSecret = "test-secret"

	token, err := GenerateToken("user-1")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := ValidateToken(token + "x"); err == nil {
		t.Error("expected tampered token to fail validation")
	}

	config.JWTSecret = "different-secret"
	if _, err := ValidateToken(token); err == nil {
		t.Error("expected token signed with another secret to fail")
	}
}

func TestGenerateTokenRequiresSecret(t *testing.T) {
	config.JWTSecret = ""
	if _, err := GenerateToken("user-1"); err == nil {
		t.Error("expected error when JWT_SECRET is unset")
	}
}

func TestGenerateOTP(t *testing.T) {
	otp := GenerateOTP()
	if len(otp) != 6 {
		t.Fatalf("otp length = %d, want 6", len(otp))
	}
	for _, c := range otp {
		if c < '0' || c > '9' {
			t.Errorf("otp contains non-digit %q", c)
		}
	}
}
