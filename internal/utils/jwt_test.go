package utils

import (
	"errors"
	"testing"
)

const testSecret = "unit-test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken(testSecret, "ops@example.com", "ADMIN", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	claims, err := ParseToken(testSecret, tok.Value, PurposeAccess)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if sub, _ := claims["sub"].(string); sub != "ops@example.com" {
		t.Errorf("sub = %q", sub)
	}
	if role, _ := claims["role"].(string); role != "ADMIN" {
		t.Errorf("role = %q", role)
	}
}

func TestParseTokenRejectsWrongPurpose(t *testing.T) {
	tok, err := NewVerifyToken(testSecret, "ops@example.com", HashCode("123456"), 10)
	if err != nil {
		t.Fatalf("NewVerifyToken: %v", err)
	}
	if _, err := ParseToken(testSecret, tok.Value, PurposeAccess); !errors.Is(err, ErrWrongPurpose) {
		t.Errorf("err = %v, want ErrWrongPurpose", err)
	}
	// The right purpose still parses and carries the code hash.
	claims, err := ParseToken(testSecret, tok.Value, PurposeVerify)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if got, _ := claims["code"].(string); got != HashCode("123456") {
		t.Errorf("code hash mismatch")
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tok, err := NewAccessToken(testSecret, "ops@example.com", "ADMIN", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if _, err := ParseToken("other-secret", tok.Value, PurposeAccess); err == nil {
		t.Error("token signed with a different secret should not parse")
	}
}

func TestRandomDigits(t *testing.T) {
	code, err := RandomDigits(6)
	if err != nil {
		t.Fatalf("RandomDigits: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("len = %d, want 6", len(code))
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Errorf("non-digit %q in code %q", r, code)
		}
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}
