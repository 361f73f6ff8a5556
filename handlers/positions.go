// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/campus-ballot/cliparse"
	"github.com/danielhkuo/campus-ballot/middleware"
	"github.com/danielhkuo/campus-ballot/models"
)

type PositionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewPositionHandler(db *sql.DB, cfg cliparse.Config) *PositionHandler {
	return &PositionHandler{db: db, cfg: cfg}
}

// AddPosition handles POST /admin/positions
func (h *PositionHandler) AddPosition(w http.ResponseWriter, r *http.Request) {
	var req models.AddPositionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Position title is required")
		return
	}

	positionID := uuid.NewString()
	_, err := h.db.Exec(`
		INSERT INTO position (id, title, description, created_at)
		VALUES ($1, $2, $3, $4)
	`, positionID, req.Title, req.Description, time.Now().UTC())
	if err != nil {
		slog.Error("failed to insert position", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create position")
		return
	}

	slog.Info("position added", "position_id", positionID, "title", req.Title)

	middleware.JSONResponse(w, http.StatusCreated, models.AddPositionResponse{
		PositionID: positionID,
	})
}

// ListPositions handles GET /positions
// Returns every position with its candidates.
func (h *PositionHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := listPositions(h.db)
	if err != nil {
		slog.Error("failed to list positions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	response := make([]models.PositionWithCandidates, 0, len(positions))
	for _, pos := range positions {
		candidates, err := listCandidates(h.db, pos.ID)
		if err != nil {
			slog.Error("failed to list candidates", "error", err, "position_id", pos.ID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		response = append(response, models.PositionWithCandidates{
			Position:   pos,
			Candidates: candidates,
		})
	}

	middleware.JSONResponse(w, http.StatusOK, response)
}

// DeletePosition handles DELETE /admin/positions/{id}
// Cascades to the position's candidates. Ledger entries that reference the
// deleted candidates are left in place; they keep counting toward
// historical tallies, so the orphan count is logged for the operator.
func (h *PositionHandler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	positionID := r.PathValue("id")
	if positionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "position id is required")
		return
	}

	res, err := h.db.Exec(`DELETE FROM position WHERE id = $1`, positionID)
	if err != nil {
		slog.Error("failed to delete position", "error", err, "position_id", positionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete position")
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Position not found")
		return
	}

	res, err = h.db.Exec(`DELETE FROM candidate WHERE position_id = $1`, positionID)
	if err != nil {
		slog.Error("failed to delete candidates of position", "error", err, "position_id", positionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete position")
		return
	}
	candidatesRemoved, _ := res.RowsAffected()

	var orphaned int
	if err := h.db.QueryRow(`SELECT COUNT(*) FROM vote WHERE position_id = $1`, positionID).Scan(&orphaned); err == nil && orphaned > 0 {
		slog.Warn("ledger entries reference deleted position",
			"position_id", positionID, "entries", orphaned)
	}

	slog.Info("position deleted",
		"position_id", positionID, "candidates_removed", candidatesRemoved)

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Message: "Position deleted successfully",
	})
}

// AddCandidate handles POST /admin/candidates
func (h *PositionHandler) AddCandidate(w http.ResponseWriter, r *http.Request) {
	var req models.AddCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	switch {
	case req.PositionID == "":
		middleware.ErrorResponse(w, http.StatusBadRequest, "position_id is required")
		return
	case req.Name == "":
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	case req.Branch == "":
		middleware.ErrorResponse(w, http.StatusBadRequest, "branch is required")
		return
	case req.Section == "":
		middleware.ErrorResponse(w, http.StatusBadRequest, "section is required")
		return
	}

	// Typed reference check: the store has no FK to reject a dangling
	// position id, so the write boundary does.
	var exists bool
	err := h.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM position WHERE id = $1)
	`, req.PositionID).Scan(&exists)
	if err != nil {
		slog.Error("failed to resolve position", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid position")
		return
	}

	var imageURL *string
	if req.ImageURL != "" {
		imageURL = &req.ImageURL
	}

	candidateID := uuid.NewString()
	_, err = h.db.Exec(`
		INSERT INTO candidate (id, position_id, name, branch, section, description, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, candidateID, req.PositionID, req.Name, req.Branch, req.Section, req.Description, imageURL, time.Now().UTC())
	if err != nil {
		slog.Error("failed to insert candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create candidate")
		return
	}

	slog.Info("candidate added",
		"candidate_id", candidateID, "position_id", req.PositionID, "name", req.Name)

	middleware.JSONResponse(w, http.StatusCreated, models.AddCandidateResponse{
		CandidateID: candidateID,
	})
}

// DeleteCandidate handles DELETE /admin/candidates/{id}
// Cascades to the candidate's ledger entries. The affected voters keep
// has_voted=true even though their entries for this candidate are gone;
// that asymmetry is logged so the operator can follow up with the
// per-ballot reversal if needed.
func (h *PositionHandler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	candidateID := r.PathValue("id")
	if candidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate id is required")
		return
	}

	res, err := h.db.Exec(`DELETE FROM candidate WHERE id = $1`, candidateID)
	if err != nil {
		slog.Error("failed to delete candidate", "error", err, "candidate_id", candidateID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete candidate")
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}

	res, err = h.db.Exec(`DELETE FROM vote WHERE candidate_id = $1`, candidateID)
	if err != nil {
		slog.Error("failed to delete candidate votes", "error", err, "candidate_id", candidateID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete candidate")
		return
	}
	if entriesRemoved, _ := res.RowsAffected(); entriesRemoved > 0 {
		slog.Warn("ledger entries removed with candidate, has_voted flags left set",
			"candidate_id", candidateID, "entries", entriesRemoved)
	}

	slog.Info("candidate deleted", "candidate_id", candidateID)

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Message: "Candidate deleted successfully",
	})
}

// listPositions returns all positions ordered by creation time.
func listPositions(db *sql.DB) ([]models.Position, error) {
	rows, err := db.Query(`
		SELECT id, title, description, created_at
		FROM position
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	positions := []models.Position{}
	for rows.Next() {
		var pos models.Position
		var description sql.NullString
		if err := rows.Scan(&pos.ID, &pos.Title, &description, &pos.CreatedAt); err != nil {
			return nil, err
		}
		pos.Description = description.String
		positions = append(positions, pos)
	}

	return positions, rows.Err()
}

// listCandidates returns the candidates standing for a position.
func listCandidates(db *sql.DB, positionID string) ([]models.Candidate, error) {
	rows, err := db.Query(`
		SELECT id, position_id, name, branch, section, description, image_url, created_at
		FROM candidate
		WHERE position_id = $1
		ORDER BY created_at, id
	`, positionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var cand models.Candidate
		var description sql.NullString
		if err := rows.Scan(&cand.ID, &cand.PositionID, &cand.Name, &cand.Branch,
			&cand.Section, &description, &cand.ImageURL, &cand.CreatedAt); err != nil {
			return nil, err
		}
		cand.Description = description.String
		candidates = append(candidates, cand)
	}

	return candidates, rows.Err()
}
