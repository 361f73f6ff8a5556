// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identity utilities: record IDs, one-time codes, and
session tokens.

# One-Time Codes

Login issues a 6-digit code held server-side in an OTPStore:

	store := auth.NewOTPStore(5 * time.Minute)
	code, err := store.Issue(studentID, role)

Codes are bound to the student's pending login, expire after the
configured lifetime, and are consumed on first successful verification:

	role, err := store.Consume(studentID, code)

Consume compares in constant time and returns ErrInvalidOTP or
ErrOTPExpired on failure. There is no retry lockout; the short lifetime
bounds the guessing window.

# Session Tokens

Verified logins get an HS256 JWT carrying the voter's identity and role:

	token, err := auth.IssueToken(secret, voterID, studentID, isAdmin, time.Hour)
	claims, err := auth.ParseToken(secret, token)

The middleware package reads these from the Authorization header.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

For privacy-preserving ballot audit columns:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
