// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/campus-ballot/models"
	"github.com/danielhkuo/campus-ballot/testutil"
)

func TestAddPosition(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewPositionHandler(db, cfg)

	tests := []struct {
		name           string
		body           models.AddPositionRequest
		expectedStatus int
	}{
		{
			name:           "valid position",
			body:           models.AddPositionRequest{Title: "President", Description: "Student body president"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing title",
			body:           models.AddPositionRequest{Description: "No title"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/admin/positions", tt.body, nil)
			w := httptest.NewRecorder()

			handler.AddPosition(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated {
				var resp models.AddPositionResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.PositionID == "" {
					t.Error("expected non-empty position_id")
				}
			}
		})
	}
}

func TestAddCandidate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewPositionHandler(db, cfg)

	positionID := testutil.CreateTestPosition(t, db, "President")

	tests := []struct {
		name           string
		body           models.AddCandidateRequest
		expectedStatus int
	}{
		{
			name: "valid candidate",
			body: models.AddCandidateRequest{
				PositionID: positionID, Name: "Alice", Branch: "CSE", Section: "A",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "dangling position id",
			body: models.AddCandidateRequest{
				PositionID: "nonexistent", Name: "Bob", Branch: "ECE", Section: "B",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing name",
			body: models.AddCandidateRequest{
				PositionID: positionID, Branch: "CSE", Section: "A",
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/admin/candidates", tt.body, nil)
			w := httptest.NewRecorder()

			handler.AddCandidate(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

// Deleting a position removes its candidates but leaves existing ledger
// entries in place.
func TestDeletePosition_Cascade(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewPositionHandler(db, cfg)

	president := testutil.CreateTestPosition(t, db, "President")
	alice := testutil.AddTestCandidate(t, db, president, "Alice", "CSE")
	testutil.AddTestCandidate(t, db, president, "Bob", "ECE")

	voterID := testutil.CreateTestVoter(t, db, "STU001", "CSE", "A")
	testutil.InsertTestVote(t, db, voterID, "STU001", president, alice, "CSE", "A")

	req := testutil.MakeRequest("DELETE", "/admin/positions/"+president, nil, nil)
	req.SetPathValue("id", president)
	w := httptest.NewRecorder()

	handler.DeletePosition(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var candidates int
	if err := db.QueryRow(`SELECT COUNT(*) FROM candidate WHERE position_id = $1`, president).Scan(&candidates); err != nil {
		t.Fatalf("Failed to count candidates: %v", err)
	}
	if candidates != 0 {
		t.Errorf("expected candidates cascaded, %d remain", candidates)
	}

	var entries int
	if err := db.QueryRow(`SELECT COUNT(*) FROM vote WHERE position_id = $1`, president).Scan(&entries); err != nil {
		t.Fatalf("Failed to count ledger entries: %v", err)
	}
	if entries != 1 {
		t.Errorf("expected ledger entries preserved, got %d", entries)
	}
}

func TestDeletePosition_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewPositionHandler(db, cfg)

	req := testutil.MakeRequest("DELETE", "/admin/positions/nonexistent", nil, nil)
	req.SetPathValue("id", "nonexistent")
	w := httptest.NewRecorder()

	handler.DeletePosition(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

// Deleting a candidate removes their ledger entries; the affected voters'
// has_voted flags stay set.
func TestDeleteCandidate_Cascade(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewPositionHandler(db, cfg)

	president := testutil.CreateTestPosition(t, db, "President")
	alice := testutil.AddTestCandidate(t, db, president, "Alice", "CSE")

	voterID := testutil.CreateTestVoter(t, db, "STU001", "CSE", "A")
	testutil.InsertTestVote(t, db, voterID, "STU001", president, alice, "CSE", "A")

	req := testutil.MakeRequest("DELETE", "/admin/candidates/"+alice, nil, nil)
	req.SetPathValue("id", alice)
	w := httptest.NewRecorder()

	handler.DeleteCandidate(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var entries int
	if err := db.QueryRow(`SELECT COUNT(*) FROM vote WHERE candidate_id = $1`, alice).Scan(&entries); err != nil {
		t.Fatalf("Failed to count ledger entries: %v", err)
	}
	if entries != 0 {
		t.Errorf("expected candidate's ledger entries removed, %d remain", entries)
	}

	var hasVoted bool
	if err := db.QueryRow(`SELECT has_voted FROM voter WHERE id = $1`, voterID).Scan(&hasVoted); err != nil {
		t.Fatalf("Failed to read voter: %v", err)
	}
	if !hasVoted {
		t.Error("expected has_voted to stay set after candidate deletion")
	}
}

func TestListPositions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewPositionHandler(db, cfg)

	president := testutil.CreateTestPosition(t, db, "President")
	testutil.AddTestCandidate(t, db, president, "Alice", "CSE")
	testutil.CreateTestPosition(t, db, "Secretary")

	req := testutil.MakeRequest("GET", "/positions", nil, nil)
	w := httptest.NewRecorder()

	handler.ListPositions(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp []models.PositionWithCandidates
	testutil.AssertJSON(t, w, &resp)
	if len(resp) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(resp))
	}
	if resp[0].Position.Title != "President" || len(resp[0].Candidates) != 1 {
		t.Errorf("unexpected first position: %+v", resp[0])
	}
	if len(resp[1].Candidates) != 0 {
		t.Errorf("expected empty candidate list, got %+v", resp[1].Candidates)
	}
}
