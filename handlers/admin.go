// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/campus-ballot/cliparse"
	"github.com/danielhkuo/campus-ballot/middleware"
	"github.com/danielhkuo/campus-ballot/models"
)

type AdminHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAdminHandler(db *sql.DB, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{db: db, cfg: cfg}
}

// GetDashboard handles GET /admin/dashboard
// Assembles the full election view: roll with voting status, per-position
// candidate tallies, and turnout per branch and section. Everything is
// recomputed from the ledger on every call.
func (h *AdminHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	voters, err := listVoterSummaries(h.db, `WHERE is_admin = FALSE`)
	if err != nil {
		slog.Error("failed to list voters", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Non-voters come from the ledger, not the has_voted flag, so the
	// dashboard stays truthful even if a flag is ever left stale.
	nonVoters, err := listVoterSummaries(h.db, `
		WHERE is_admin = FALSE
		  AND NOT EXISTS (SELECT 1 FROM vote WHERE vote.student_id = voter.student_id)`)
	if err != nil {
		slog.Error("failed to list non-voters", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	positions, totalVotesCast, err := ComputeElectionResults(h.db)
	if err != nil {
		slog.Error("failed to compute election results", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	branchStats, err := ComputeGroupTurnout(h.db, "branch")
	if err != nil {
		slog.Error("failed to compute branch turnout", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	sectionStats, err := ComputeGroupTurnout(h.db, "section")
	if err != nil {
		slog.Error("failed to compute section turnout", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.DashboardResponse{
		TotalRegistered: len(voters),
		TotalVotesCast:  totalVotesCast,
		Positions:       positions,
		BranchStats:     branchStats,
		SectionStats:    sectionStats,
		Voters:          voters,
		NonVoters:       nonVoters,
	})
}

// GetVotingStats handles GET /admin/voting-stats?branch=&section=
// Quick voted / not-voted counts, optionally filtered by group.
func (h *AdminHandler) GetVotingStats(w http.ResponseWriter, r *http.Request) {
	query := `SELECT COUNT(*), COUNT(CASE WHEN has_voted THEN 1 END) FROM voter WHERE is_admin = FALSE`
	args := []interface{}{}

	if branch := r.URL.Query().Get("branch"); branch != "" {
		args = append(args, branch)
		query += ` AND branch = $1`
	}
	if section := r.URL.Query().Get("section"); section != "" {
		args = append(args, section)
		if len(args) == 2 {
			query += ` AND section = $2`
		} else {
			query += ` AND section = $1`
		}
	}

	var total, voted int
	if err := h.db.QueryRow(query, args...).Scan(&total, &voted); err != nil {
		slog.Error("failed to compute voting stats", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VotingStatsResponse{
		Total:    total,
		Voted:    voted,
		NotVoted: total - voted,
	})
}

// DeleteVote handles DELETE /admin/votes/{id}
// Reverses the whole ballot the entry belongs to: every ledger entry for
// that voter is removed and the has_voted flag is reset, keeping the flag
// consistent with the ledger. Admin-owned entries are refused outright
// (admins should hold none).
func (h *AdminHandler) DeleteVote(w http.ResponseWriter, r *http.Request) {
	voteID := r.PathValue("id")
	if voteID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "vote id is required")
		return
	}

	var studentID string
	err := h.db.QueryRow(`SELECT student_id FROM vote WHERE id = $1`, voteID).Scan(&studentID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Vote not found")
		return
	}
	if err != nil {
		slog.Error("failed to query vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var isAdmin bool
	err = h.db.QueryRow(`SELECT is_admin FROM voter WHERE student_id = $1`, studentID).Scan(&isAdmin)
	if err != nil && err != sql.ErrNoRows {
		slog.Error("failed to query voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if isAdmin {
		middleware.ErrorResponse(w, http.StatusForbidden, "Cannot delete admin votes")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM vote WHERE student_id = $1`, studentID)
	if err != nil {
		slog.Error("failed to delete ballot entries", "error", err, "student_id", studentID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete vote")
		return
	}
	entriesRemoved, _ := res.RowsAffected()

	_, err = tx.Exec(`
		UPDATE voter SET has_voted = FALSE, voted_at = NULL WHERE student_id = $1
	`, studentID)
	if err != nil {
		slog.Error("failed to reset has_voted", "error", err, "student_id", studentID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete vote")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit vote deletion", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete vote")
		return
	}

	slog.Info("ballot reversed", "student_id", studentID, "entries_removed", entriesRemoved)

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Message: "Vote deleted successfully",
	})
}

// DeleteAllVotes handles DELETE /admin/votes
// Clears the entire ledger and resets every voter's has_voted flag.
func (h *AdminHandler) DeleteAllVotes(w http.ResponseWriter, r *http.Request) {
	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM vote`)
	if err != nil {
		slog.Error("failed to clear vote ledger", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete votes")
		return
	}
	entriesRemoved, _ := res.RowsAffected()

	_, err = tx.Exec(`UPDATE voter SET has_voted = FALSE, voted_at = NULL`)
	if err != nil {
		slog.Error("failed to reset has_voted flags", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete votes")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit ledger clear", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete votes")
		return
	}

	slog.Info("vote ledger cleared", "entries_removed", entriesRemoved)

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Message: "All votes deleted successfully",
	})
}
