// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/campus-ballot/auth"
	"github.com/danielhkuo/campus-ballot/cliparse"
	"github.com/danielhkuo/campus-ballot/middleware"
	"github.com/danielhkuo/campus-ballot/models"
)

type AuthHandler struct {
	db   *sql.DB
	cfg  cliparse.Config
	otps *auth.OTPStore
}

func NewAuthHandler(db *sql.DB, cfg cliparse.Config, otps *auth.OTPStore) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, otps: otps}
}

// Login handles POST /auth/login
// Verifies the student ID / mobile pair against the roll and issues a
// one-time code. The response is identical for unknown IDs and wrong
// mobile numbers so the endpoint cannot be used to probe the roll.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	switch {
	case req.StudentID == "":
		middleware.ErrorResponse(w, http.StatusBadRequest, "student_id is required")
		return
	case req.Mobile == "":
		middleware.ErrorResponse(w, http.StatusBadRequest, "mobile is required")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleVoter
	}
	if req.Role != models.RoleVoter && req.Role != models.RoleAdmin {
		middleware.ErrorResponse(w, http.StatusBadRequest, "role must be voter or admin")
		return
	}

	var isAdmin bool
	err := h.db.QueryRow(`
		SELECT is_admin FROM voter WHERE student_id = $1 AND mobile = $2
	`, req.StudentID, req.Mobile).Scan(&isAdmin)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid student ID or mobile number")
		return
	}
	if err != nil {
		slog.Error("failed to look up voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if req.Role == models.RoleAdmin && !isAdmin {
		middleware.ErrorResponse(w, http.StatusForbidden, "Not an admin account")
		return
	}

	code, err := h.otps.Issue(req.StudentID, req.Role)
	if err != nil {
		slog.Error("failed to issue OTP", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to send OTP")
		return
	}

	// TODO: hand the code to an SMS gateway instead of logging it.
	slog.Info("OTP issued", "student_id", req.StudentID, "role", req.Role, "otp", code)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		Message: "OTP sent to registered mobile number",
		OTPSent: true,
	})
}

// VerifyOTP handles POST /auth/verify-otp
// Consumes the pending code and returns a signed session token. Admin
// capability in the token requires both the admin login role and the
// is_admin flag on the voter record.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyOTPRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	switch {
	case req.StudentID == "":
		middleware.ErrorResponse(w, http.StatusBadRequest, "student_id is required")
		return
	case req.OTP == "":
		middleware.ErrorResponse(w, http.StatusBadRequest, "otp is required")
		return
	}

	role, err := h.otps.Consume(req.StudentID, req.OTP)
	if errors.Is(err, auth.ErrOTPExpired) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "OTP expired, please log in again")
		return
	}
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid OTP")
		return
	}

	var voterID string
	var isAdmin bool
	err = h.db.QueryRow(`
		SELECT id, is_admin FROM voter WHERE student_id = $1
	`, req.StudentID).Scan(&voterID, &isAdmin)
	if err == sql.ErrNoRows {
		// Voter was deleted between login and verification.
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid OTP")
		return
	}
	if err != nil {
		slog.Error("failed to look up voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	adminSession := role == models.RoleAdmin && isAdmin

	token, err := auth.IssueToken(h.cfg.JWTSecret, voterID, req.StudentID, adminSession, h.cfg.JWTLifetime)
	if err != nil {
		slog.Error("failed to sign session token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	slog.Info("session issued", "student_id", req.StudentID, "is_admin", adminSession)

	middleware.JSONResponse(w, http.StatusOK, models.VerifyOTPResponse{
		Token:   token,
		IsAdmin: adminSession,
	})
}
