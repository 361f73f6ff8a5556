// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Claims is the session token payload. VoterID is the internal record ID,
// StudentID the external identity used across the vote ledger.
type Claims struct {
	VoterID   string `json:"voter_id"`
	StudentID string `json:"student_id"`
	IsAdmin   bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 session token for a verified voter.
func IssueToken(secret, voterID, studentID string, isAdmin bool, lifetime time.Duration) (string, error) {
	claims := Claims{
		VoterID:   voterID,
		StudentID: studentID,
		IsAdmin:   isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a session token and returns its claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
