// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name    string
		byteLen int
		wantLen int // hex encoded length = byteLen * 2
	}{
		{"8 bytes", 8, 16},
		{"16 bytes", 16, 32},
		{"24 bytes", 24, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			if err != nil {
				t.Fatalf("GenerateID() error = %v", err)
			}
			if len(id) != tt.wantLen {
				t.Errorf("GenerateID() length = %d, want %d", len(id), tt.wantLen)
			}
			// Verify it's valid hex
			for _, c := range id {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("GenerateID() contains invalid hex char: %c", c)
				}
			}
		})
	}

	// Test randomness - two IDs should be different
	id1, _ := GenerateID(16)
	id2, _ := GenerateID(16)
	if id1 == id2 {
		t.Error("GenerateID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := GenerateOTP()
		if err != nil {
			t.Fatalf("GenerateOTP() error = %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("GenerateOTP() length = %d, want 6", len(code))
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("GenerateOTP() contains non-digit: %c", c)
			}
		}
		// Never starts with 0 (range is 100000-999999)
		if code[0] == '0' {
			t.Errorf("GenerateOTP() = %s, want leading digit 1-9", code)
		}
	}
}

func TestHashIP(t *testing.T) {
	h1 := HashIP("192.168.1.1", "salt-a")
	h2 := HashIP("192.168.1.1", "salt-a")
	h3 := HashIP("192.168.1.2", "salt-a")
	h4 := HashIP("192.168.1.1", "salt-b")

	if h1 != h2 {
		t.Error("HashIP() is not deterministic")
	}
	if h1 == h3 {
		t.Error("HashIP() collides across IPs")
	}
	if h1 == h4 {
		t.Error("HashIP() ignores salt")
	}
	if len(h1) != 16 {
		t.Errorf("HashIP() length = %d, want 16", len(h1))
	}
}

func TestOTPStore_ConsumeIsSingleUse(t *testing.T) {
	store := NewOTPStore(5 * time.Minute)

	code, err := store.Issue("STU001", "voter")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	role, err := store.Consume("STU001", code)
	if err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	if role != "voter" {
		t.Errorf("Consume() role = %q, want voter", role)
	}

	// Replay must fail
	if _, err := store.Consume("STU001", code); !errors.Is(err, ErrInvalidOTP) {
		t.Errorf("replayed Consume() error = %v, want ErrInvalidOTP", err)
	}
}

func TestOTPStore_WrongCode(t *testing.T) {
	store := NewOTPStore(5 * time.Minute)

	code, _ := store.Issue("STU001", "voter")

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if _, err := store.Consume("STU001", wrong); !errors.Is(err, ErrInvalidOTP) {
		t.Errorf("Consume(wrong code) error = %v, want ErrInvalidOTP", err)
	}

	// A wrong attempt does not burn the pending code
	if _, err := store.Consume("STU001", code); err != nil {
		t.Errorf("Consume(correct code after wrong attempt) error = %v", err)
	}
}

func TestOTPStore_UnknownStudent(t *testing.T) {
	store := NewOTPStore(5 * time.Minute)

	if _, err := store.Consume("NOPE", "123456"); !errors.Is(err, ErrInvalidOTP) {
		t.Errorf("Consume(unknown student) error = %v, want ErrInvalidOTP", err)
	}
}

func TestOTPStore_Expiry(t *testing.T) {
	store := NewOTPStore(-time.Second) // already expired on issue

	code, _ := store.Issue("STU001", "voter")
	if _, err := store.Consume("STU001", code); !errors.Is(err, ErrOTPExpired) {
		t.Errorf("Consume(expired) error = %v, want ErrOTPExpired", err)
	}

	// Expired entry is gone entirely
	if _, err := store.Consume("STU001", code); !errors.Is(err, ErrInvalidOTP) {
		t.Errorf("Consume(after expiry removal) error = %v, want ErrInvalidOTP", err)
	}
}

func TestOTPStore_ReissueReplaces(t *testing.T) {
	store := NewOTPStore(5 * time.Minute)

	first, _ := store.Issue("STU001", "voter")
	second, err := store.Issue("STU001", "admin")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if first != second {
		if _, err := store.Consume("STU001", first); !errors.Is(err, ErrInvalidOTP) {
			t.Errorf("Consume(superseded code) error = %v, want ErrInvalidOTP", err)
		}
	}

	role, err := store.Consume("STU001", second)
	if err != nil {
		t.Fatalf("Consume(latest code) error = %v", err)
	}
	if role != "admin" {
		t.Errorf("Consume() role = %q, want admin (latest issue wins)", role)
	}
}

func TestOTPStore_Sweep(t *testing.T) {
	store := NewOTPStore(-time.Second)
	store.Issue("STU001", "voter")
	store.Issue("STU002", "voter")

	store.Sweep()

	store.mu.Lock()
	remaining := len(store.pending)
	store.mu.Unlock()
	if remaining != 0 {
		t.Errorf("Sweep() left %d expired entries", remaining)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := IssueToken("secret", "voter-1", "STU001", true, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}

	if claims.VoterID != "voter-1" || claims.StudentID != "STU001" || !claims.IsAdmin {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _ := IssueToken("secret", "voter-1", "STU001", false, time.Hour)

	if _, err := ParseToken("other-secret", token); err == nil {
		t.Error("ParseToken() accepted a token signed with a different secret")
	}
}

func TestParseToken_Expired(t *testing.T) {
	token, _ := IssueToken("secret", "voter-1", "STU001", false, -time.Minute)

	if _, err := ParseToken("secret", token); err == nil {
		t.Error("ParseToken() accepted an expired token")
	}
}

func TestParseToken_Garbage(t *testing.T) {
	if _, err := ParseToken("secret", "not.a.token"); err == nil {
		t.Error("ParseToken() accepted garbage")
	}
}
