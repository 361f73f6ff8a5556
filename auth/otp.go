// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"sync"
	"time"
)

type otpEntry struct {
	code      string
	role      string
	expiresAt time.Time
}

// OTPStore holds pending one-time codes, keyed by student ID. Codes are
// single-use and expire after the configured lifetime. Issuing a new code
// for a student replaces any pending one.
type OTPStore struct {
	mu       sync.Mutex
	lifetime time.Duration
	pending  map[string]otpEntry
}

func NewOTPStore(lifetime time.Duration) *OTPStore {
	return &OTPStore{
		lifetime: lifetime,
		pending:  make(map[string]otpEntry),
	}
}

// Issue creates and stores a fresh code for the student. The role is the
// login role the student requested and is returned on successful Consume.
func (s *OTPStore) Issue(studentID, role string) (string, error) {
	code, err := GenerateOTP()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[studentID] = otpEntry{
		code:      code,
		role:      role,
		expiresAt: time.Now().Add(s.lifetime),
	}

	return code, nil
}

// Consume verifies the code for the student. On success the code is
// removed so it cannot be replayed. An expired entry is removed and
// reported as expired regardless of the code supplied.
func (s *OTPStore) Consume(studentID, code string) (role string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.pending[studentID]
	if !ok {
		return "", ErrInvalidOTP
	}

	if time.Now().After(entry.expiresAt) {
		delete(s.pending, studentID)
		return "", ErrOTPExpired
	}

	if !hmac.Equal([]byte(entry.code), []byte(code)) {
		return "", ErrInvalidOTP
	}

	delete(s.pending, studentID)
	return entry.role, nil
}

// Sweep drops expired entries. The store stays correct without it (Consume
// checks expiry), it only bounds memory on abandoned logins.
func (s *OTPStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, entry := range s.pending {
		if now.After(entry.expiresAt) {
			delete(s.pending, id)
		}
	}
}
