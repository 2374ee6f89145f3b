package util

import (
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestGenerateParseToken(t *testing.T) {
	token, err := GenerateToken(testSecret, 42, 24*time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, 1, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := ParseToken("other-secret", token); err == nil {
		t.Error("ParseToken() with wrong secret error = nil, want error")
	}
}

func TestParseToken_Tampered(t *testing.T) {
	token, err := GenerateToken(testSecret, 1, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := ParseToken(testSecret, tampered); err == nil {
		t.Error("ParseToken() with tampered token error = nil, want error")
	}
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken(testSecret, 1, time.Millisecond)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := ParseToken(testSecret, token); err == nil {
		t.Error("ParseToken() after expiry error = nil, want error")
	}
}

func TestParseToken_Garbage(t *testing.T) {
	testCases := []string{"", "not-a-jwt", "a.b.c"}

	for _, tc := range testCases {
		if _, err := ParseToken(testSecret, tc); err == nil {
			t.Errorf("ParseToken(%q) error = nil, want error", tc)
		}
	}
}

func TestPurposeToken_RoundTrip(t *testing.T) {
	token, err := GeneratePurposeToken(testSecret, "alice@x.com", PurposeEmailVerify)
	if err != nil {
		t.Fatalf("GeneratePurposeToken() error = %v", err)
	}

	email, err := ParsePurposeToken(testSecret, token, PurposeEmailVerify, 24*time.Hour)
	if err != nil {
		t.Fatalf("ParsePurposeToken() error = %v", err)
	}
	if email != "alice@x.com" {
		t.Errorf("email = %q, want %q", email, "alice@x.com")
	}
}

// A verification token must not be usable to reset a password, and the
// other way round.
func TestPurposeToken_WrongPurpose(t *testing.T) {
	token, err := GeneratePurposeToken(testSecret, "alice@x.com", PurposeEmailVerify)
	if err != nil {
		t.Fatalf("GeneratePurposeToken() error = %v", err)
	}

	if _, err := ParsePurposeToken(testSecret, token, PurposePasswordReset, time.Hour); err == nil {
		t.Error("ParsePurposeToken() with swapped purpose error = nil, want error")
	}
}

func TestPurposeToken_MaxAge(t *testing.T) {
	token, err := GeneratePurposeToken(testSecret, "bob@x.com", PurposePasswordReset)
	if err != nil {
		t.Fatalf("GeneratePurposeToken() error = %v", err)
	}

	// max age is checked at verification time
	if _, err := ParsePurposeToken(testSecret, token, PurposePasswordReset, -time.Second); err == nil {
		t.Error("ParsePurposeToken() past max age error = nil, want error")
	}
}
