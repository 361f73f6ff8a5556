// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/campus-ballot/auth"
	"github.com/danielhkuo/campus-ballot/cliparse"
	"github.com/danielhkuo/campus-ballot/db"
)

var testDBSeq atomic.Int64

// SetupTestDB creates a fresh in-memory database with the full schema.
// Each call gets its own named database; cache=shared keeps it alive for
// every connection in the pool, and the single-connection limit keeps
// sqlite writes serialized under concurrent tests.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBSeq.Add(1))
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         8000,
		DatabaseType: "sqlite",
		JWTSecret:    "test-jwt-secret",
		JWTLifetime:  time.Hour,
		OTPLifetime:  5 * time.Minute,
	}
}

// CreateTestVoter enrolls a non-admin student and returns the voter ID
func CreateTestVoter(t *testing.T, conn *sql.DB, studentID, branch, section string) string {
	t.Helper()

	voterID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO voter (id, student_id, name, mobile, branch, section, is_admin, has_voted, created_at)
		VALUES ($1, $2, 'Test Student', '5550100', $3, $4, FALSE, FALSE, $5)
	`, voterID, studentID, branch, section, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}

	return voterID
}

// CreateTestAdmin enrolls an admin account and returns the voter ID
func CreateTestAdmin(t *testing.T, conn *sql.DB, studentID string) string {
	t.Helper()

	voterID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO voter (id, student_id, name, mobile, branch, section, is_admin, has_voted, created_at)
		VALUES ($1, $2, 'Test Admin', '5550199', 'ADMIN', 'A', TRUE, FALSE, $3)
	`, voterID, studentID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test admin: %v", err)
	}

	return voterID
}

// CreateTestPosition adds a position and returns its ID
func CreateTestPosition(t *testing.T, conn *sql.DB, title string) string {
	t.Helper()

	positionID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO position (id, title, description, created_at)
		VALUES ($1, $2, '', $3)
	`, positionID, title, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test position: %v", err)
	}

	return positionID
}

// AddTestCandidate adds a candidate to a position and returns the candidate ID
func AddTestCandidate(t *testing.T, conn *sql.DB, positionID, name, branch string) string {
	t.Helper()

	candidateID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO candidate (id, position_id, name, branch, section, description, image_url, created_at)
		VALUES ($1, $2, $3, $4, 'A', '', NULL, $5)
	`, candidateID, positionID, name, branch, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	return candidateID
}

// SetTestSchedule writes the singleton voting window
func SetTestSchedule(t *testing.T, conn *sql.DB, startDate, endDate, startTime, endTime string) {
	t.Helper()

	_, err := conn.Exec(`DELETE FROM voting_schedule WHERE id = 'current'`)
	if err != nil {
		t.Fatalf("Failed to clear test schedule: %v", err)
	}
	_, err = conn.Exec(`
		INSERT INTO voting_schedule (id, start_date, end_date, start_time, end_time)
		VALUES ('current', $1, $2, $3, $4)
	`, startDate, endDate, startTime, endTime)
	if err != nil {
		t.Fatalf("Failed to set test schedule: %v", err)
	}
}

// OpenTestSchedule writes a window that is open right now
func OpenTestSchedule(t *testing.T, conn *sql.DB) {
	t.Helper()

	now := time.Now().UTC()
	SetTestSchedule(t, conn,
		now.AddDate(0, 0, -1).Format("2006-01-02"),
		now.AddDate(0, 0, 1).Format("2006-01-02"),
		"00:00", "23:59")
}

// InsertTestVote appends a ledger entry and marks the voter as having voted
func InsertTestVote(t *testing.T, conn *sql.DB, voterID, studentID, positionID, candidateID, branch, section string) string {
	t.Helper()

	now := time.Now().UTC()
	voteID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO vote (id, voter_id, student_id, position_id, candidate_id, branch, section, cast_at, ip_hash, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL, NULL)
	`, voteID, voterID, studentID, positionID, candidateID, branch, section, now)
	if err != nil {
		t.Fatalf("Failed to insert test vote: %v", err)
	}

	_, err = conn.Exec(`
		UPDATE voter SET has_voted = TRUE, voted_at = $1 WHERE id = $2
	`, now, voterID)
	if err != nil {
		t.Fatalf("Failed to mark test voter: %v", err)
	}

	return voteID
}

// TestToken signs a session token with the standard test secret
func TestToken(t *testing.T, cfg cliparse.Config, voterID, studentID string, isAdmin bool) string {
	t.Helper()

	token, err := auth.IssueToken(cfg.JWTSecret, voterID, studentID, isAdmin, cfg.JWTLifetime)
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return token
}

// AuthHeader builds the Authorization header map for MakeRequest
func AuthHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
