// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/campus-ballot/auth"
	"github.com/danielhkuo/campus-ballot/cliparse"
	"github.com/danielhkuo/campus-ballot/middleware"
	"github.com/danielhkuo/campus-ballot/models"
)

type VotingHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{db: db, cfg: cfg}
}

// GetBallot handles GET /voting/ballot
// Returns the ballot paper (open positions with their candidates) if the
// caller is eligible to vote right now.
func (h *VotingHandler) GetBallot(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	if err := CheckEligibility(h.db, claims.VoterID); err != nil {
		writeEligibilityError(w, err)
		return
	}

	positions, err := listPositions(h.db)
	if err != nil {
		slog.Error("failed to list positions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	ballot := make([]models.PositionWithCandidates, 0, len(positions))
	for _, pos := range positions {
		candidates, err := listCandidates(h.db, pos.ID)
		if err != nil {
			slog.Error("failed to list candidates", "error", err, "position_id", pos.ID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		ballot = append(ballot, models.PositionWithCandidates{
			Position:   pos,
			Candidates: candidates,
		})
	}

	middleware.JSONResponse(w, http.StatusOK, ballot)
}

// SubmitVote handles POST /voting/votes
// Accepts a full ballot (one candidate per open position), writes one
// ledger entry per choice, and flips the voter's has_voted flag in the
// same transaction. All-or-nothing: any validation failure writes nothing.
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if len(req.Choices) == 0 {
		middleware.JSONResponse(w, http.StatusBadRequest, models.SubmitVoteResponse{
			Accepted: false,
			Reason:   "No votes received.",
		})
		return
	}

	// Eligibility is re-checked here, immediately before commit, against
	// the authoritative store. The conditional update in commitBallot is
	// the real double-vote guard; this produces the friendlier error.
	if err := CheckEligibility(h.db, claims.VoterID); err != nil {
		writeEligibilityError(w, err)
		return
	}

	if err := validateBallot(h.db, req.Choices); err != nil {
		if errors.Is(err, ErrMalformedBallot) {
			middleware.JSONResponse(w, http.StatusBadRequest, models.SubmitVoteResponse{
				Accepted: false,
				Reason:   err.Error(),
			})
			return
		}
		slog.Error("failed to validate ballot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	voter, err := loadVoter(h.db, claims.VoterID)
	if err != nil {
		slog.Error("failed to load voter", "error", err, "voter_id", claims.VoterID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	clientIP := middleware.GetClientIP(r)
	ipHash := auth.HashIP(clientIP, h.cfg.JWTSecret)
	userAgent := r.UserAgent()

	err = commitBallot(h.db, voter, req.Choices, ipHash, userAgent)
	if errors.Is(err, ErrAlreadyVoted) {
		middleware.JSONResponse(w, http.StatusConflict, models.SubmitVoteResponse{
			Accepted: false,
			Reason:   ErrAlreadyVoted.Error(),
		})
		return
	}
	if err != nil {
		slog.Error("failed to commit ballot", "error", err, "student_id", voter.StudentID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit vote")
		return
	}

	slog.Info("ballot committed", "student_id", voter.StudentID, "entries", len(req.Choices))

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitVoteResponse{
		Accepted: true,
	})
}

// validateBallot checks a submitted ballot against the catalog. Rules, in
// order: full coverage of all positions, every position id resolves, every
// candidate id resolves, and each candidate actually stands for the
// position it was submitted under. Read-only.
func validateBallot(db *sql.DB, choices map[string]string) error {
	var positionCount int
	if err := db.QueryRow(`SELECT COUNT(*) FROM position`).Scan(&positionCount); err != nil {
		return fmt.Errorf("failed to count positions: %w", err)
	}

	if len(choices) != positionCount {
		return fmt.Errorf("%w: please vote for all positions, expected %d choices, received %d",
			ErrMalformedBallot, positionCount, len(choices))
	}

	for positionID, candidateID := range choices {
		var exists bool
		err := db.QueryRow(`
			SELECT EXISTS(SELECT 1 FROM position WHERE id = $1)
		`, positionID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to resolve position: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: invalid position id %s", ErrMalformedBallot, positionID)
		}

		var candidatePosition string
		err = db.QueryRow(`
			SELECT position_id FROM candidate WHERE id = $1
		`, candidateID).Scan(&candidatePosition)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: invalid candidate id %s", ErrMalformedBallot, candidateID)
		}
		if err != nil {
			return fmt.Errorf("failed to resolve candidate: %w", err)
		}

		if candidatePosition != positionID {
			return fmt.Errorf("%w: candidate %s does not belong to position %s",
				ErrMalformedBallot, candidateID, positionID)
		}
	}

	return nil
}

// commitBallot appends the validated choices to the ledger and marks the
// voter as having voted, in one transaction. The conditional update on
// has_voted is the atomic false-to-true transition: of any number of
// concurrent submissions for the same voter, exactly one sees a row
// affected and commits; the rest get ErrAlreadyVoted. The unique
// (student_id, position_id) constraint on the vote table is the schema
// backstop behind it.
func commitBallot(db *sql.DB, voter models.Voter, choices map[string]string, ipHash, userAgent string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	res, err := tx.Exec(`
		UPDATE voter
		SET has_voted = TRUE, voted_at = $1
		WHERE id = $2 AND has_voted = FALSE
	`, now, voter.ID)
	if err != nil {
		return fmt.Errorf("failed to mark voter: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrAlreadyVoted
	}

	for positionID, candidateID := range choices {
		_, err := tx.Exec(`
			INSERT INTO vote (id, voter_id, student_id, position_id, candidate_id, branch, section, cast_at, ip_hash, user_agent)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, uuid.NewString(), voter.ID, voter.StudentID, positionID, candidateID,
			voter.Branch, voter.Section, now, ipHash, userAgent)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyVoted
			}
			return fmt.Errorf("failed to insert ledger entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ballot: %w", err)
	}
	return nil
}

// loadVoter reads the full voter record by internal ID.
func loadVoter(db *sql.DB, voterID string) (models.Voter, error) {
	var v models.Voter
	err := db.QueryRow(`
		SELECT id, student_id, name, mobile, branch, section, is_admin, has_voted, voted_at, created_at
		FROM voter
		WHERE id = $1
	`, voterID).Scan(
		&v.ID, &v.StudentID, &v.Name, &v.Mobile, &v.Branch, &v.Section,
		&v.IsAdmin, &v.HasVoted, &v.VotedAt, &v.CreatedAt,
	)
	return v, err
}

// writeEligibilityError maps eligibility denials to HTTP outcomes.
func writeEligibilityError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAdminVoter):
		middleware.JSONResponse(w, http.StatusForbidden, models.SubmitVoteResponse{
			Accepted: false,
			Reason:   ErrAdminVoter.Error(),
		})
	case errors.Is(err, ErrAlreadyVoted):
		middleware.JSONResponse(w, http.StatusConflict, models.SubmitVoteResponse{
			Accepted: false,
			Reason:   ErrAlreadyVoted.Error(),
		})
	case errors.Is(err, ErrVotingClosed):
		middleware.JSONResponse(w, http.StatusForbidden, models.SubmitVoteResponse{
			Accepted: false,
			Reason:   err.Error(),
		})
	default:
		slog.Error("failed to check eligibility", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
}

// isUniqueViolation detects unique constraint errors from both backends.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "duplicate key value violates unique constraint") // postgres
}
