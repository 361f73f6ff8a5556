// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/csv"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/danielhkuo/campus-ballot/cliparse"
	"github.com/danielhkuo/campus-ballot/middleware"
	"github.com/danielhkuo/campus-ballot/models"
)

type VoterHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVoterHandler(db *sql.DB, cfg cliparse.Config) *VoterHandler {
	return &VoterHandler{db: db, cfg: cfg}
}

// AddStudent handles POST /admin/students
func (h *VoterHandler) AddStudent(w http.ResponseWriter, r *http.Request) {
	var req models.AddStudentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	switch {
	case req.StudentID == "":
		middleware.ErrorResponse(w, http.StatusBadRequest, "student_id is required")
		return
	case req.Name == "":
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	case req.Mobile == "":
		middleware.ErrorResponse(w, http.StatusBadRequest, "mobile is required")
		return
	case req.Branch == "":
		middleware.ErrorResponse(w, http.StatusBadRequest, "branch is required")
		return
	case req.Section == "":
		middleware.ErrorResponse(w, http.StatusBadRequest, "section is required")
		return
	}

	voterID := uuid.NewString()
	_, err := h.db.Exec(`
		INSERT INTO voter (id, student_id, name, mobile, branch, section, is_admin, has_voted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, FALSE, $7)
	`, voterID, req.StudentID, req.Name, req.Mobile, req.Branch, req.Section, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Student ID already exists")
			return
		}
		slog.Error("failed to insert voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add student")
		return
	}

	slog.Info("student enrolled", "voter_id", voterID, "student_id", req.StudentID)

	middleware.JSONResponse(w, http.StatusCreated, models.AddStudentResponse{
		VoterID: voterID,
	})
}

// ListStudents handles GET /admin/students
// Returns every non-admin voter with voting status.
func (h *VoterHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	voters, err := listVoterSummaries(h.db, `WHERE is_admin = FALSE`)
	if err != nil {
		slog.Error("failed to list voters", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, voters)
}

// DeleteStudent handles DELETE /admin/students/{studentID}
// Removes the voter and all of their ledger entries. Tallies are computed
// live from the ledger, so nothing else needs adjusting.
func (h *VoterHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("studentID")
	if studentID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "student id is required")
		return
	}

	res, err := h.db.Exec(`DELETE FROM voter WHERE student_id = $1`, studentID)
	if err != nil {
		slog.Error("failed to delete voter", "error", err, "student_id", studentID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete student")
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Student not found")
		return
	}

	res, err = h.db.Exec(`DELETE FROM vote WHERE student_id = $1`, studentID)
	if err != nil {
		slog.Error("failed to delete student votes", "error", err, "student_id", studentID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete student")
		return
	}
	entriesRemoved, _ := res.RowsAffected()

	slog.Info("student deleted", "student_id", studentID, "entries_removed", entriesRemoved)

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Message: "Student and their votes deleted successfully",
	})
}

// ExportVoters handles GET /admin/students/export
// Streams the voter roll as a CSV attachment.
func (h *VoterHandler) ExportVoters(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT student_id, name, branch, section, has_voted, voted_at
		FROM voter
		ORDER BY student_id
	`)
	if err != nil {
		slog.Error("failed to query voters for export", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=voters_list.csv")

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Student ID", "Name", "Branch", "Section", "Voting Status", "Voted At"})

	for rows.Next() {
		var studentID, name, branch, section string
		var hasVoted bool
		var votedAt *time.Time
		if err := rows.Scan(&studentID, &name, &branch, &section, &hasVoted, &votedAt); err != nil {
			slog.Error("failed to scan voter for export", "error", err)
			return
		}

		status := "Not Voted"
		votedAtStr := ""
		if hasVoted {
			status = "Voted"
		}
		if votedAt != nil {
			votedAtStr = votedAt.Format("2006-01-02 15:04:05")
		}

		_ = cw.Write([]string{studentID, name, branch, section, status, votedAtStr})
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.Error("failed to write voter export", "error", err)
	}
}

// listVoterSummaries builds VoterSummary rows for the given WHERE clause.
// For voters with ledger entries it attaches one entry ID (usable with the
// per-ballot reversal endpoint) and a humanized voted-ago string.
func listVoterSummaries(db *sql.DB, where string) ([]models.VoterSummary, error) {
	rows, err := db.Query(`
		SELECT id, student_id, name, branch, section, has_voted, voted_at
		FROM voter ` + where + `
		ORDER BY student_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	voters := []models.VoterSummary{}
	for rows.Next() {
		var v models.VoterSummary
		if err := rows.Scan(&v.ID, &v.StudentID, &v.Name, &v.Branch, &v.Section, &v.HasVoted, &v.VotedAt); err != nil {
			return nil, err
		}
		if v.VotedAt != nil {
			v.VotedAgo = humanize.Time(*v.VotedAt)
		}
		voters = append(voters, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range voters {
		if !voters[i].HasVoted {
			continue
		}
		var voteID string
		err := db.QueryRow(`
			SELECT id FROM vote WHERE student_id = $1 ORDER BY cast_at, id LIMIT 1
		`, voters[i].StudentID).Scan(&voteID)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		voters[i].VoteID = &voteID
	}

	return voters, nil
}
