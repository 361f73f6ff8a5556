// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/campus-ballot/models"
	"github.com/danielhkuo/campus-ballot/testutil"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04:05", value)
	if err != nil {
		t.Fatalf("bad test time %q: %v", value, err)
	}
	return parsed.UTC()
}

func TestIsVotingOpen_WindowBoundaries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetTestSchedule(t, db, "2026-06-01", "2026-06-03", "09:00", "17:00")

	tests := []struct {
		name string
		now  string
		want bool
	}{
		{"day before start date", "2026-05-31 12:00:00", false},
		{"start date before opening time", "2026-06-01 08:59:59", false},
		{"start date exactly at opening time", "2026-06-01 09:00:00", true},
		{"start date after opening time", "2026-06-01 23:30:00", true},
		{"middle day before opening time still open", "2026-06-02 03:00:00", true},
		{"middle day midday", "2026-06-02 12:00:00", true},
		{"end date before closing time", "2026-06-03 16:59:59", true},
		{"end date exactly at closing time", "2026-06-03 17:00:00", true},
		{"end date seconds past closing time", "2026-06-03 17:00:30", false},
		{"end date after closing time", "2026-06-03 17:01:00", false},
		{"day after end date", "2026-06-04 10:00:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			open, sched, err := IsVotingOpen(db, mustTime(t, tt.now))
			if err != nil {
				t.Fatalf("IsVotingOpen() error = %v", err)
			}
			if sched == nil {
				t.Fatal("IsVotingOpen() returned nil schedule")
			}
			if open != tt.want {
				t.Errorf("IsVotingOpen(%s) = %v, want %v", tt.now, open, tt.want)
			}
		})
	}
}

func TestIsVotingOpen_SingleDayWindow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetTestSchedule(t, db, "2026-06-01", "2026-06-01", "10:00", "14:00")

	tests := []struct {
		now  string
		want bool
	}{
		{"2026-06-01 09:59:59", false},
		{"2026-06-01 10:00:00", true},
		{"2026-06-01 14:00:00", true},
		{"2026-06-01 14:00:01", false},
	}

	for _, tt := range tests {
		open, _, err := IsVotingOpen(db, mustTime(t, tt.now))
		if err != nil {
			t.Fatalf("IsVotingOpen() error = %v", err)
		}
		if open != tt.want {
			t.Errorf("IsVotingOpen(%s) = %v, want %v", tt.now, open, tt.want)
		}
	}
}

func TestIsVotingOpen_NoSchedule(t *testing.T) {
	db := testutil.SetupTestDB(t)

	open, sched, err := IsVotingOpen(db, time.Now().UTC())
	if err != nil {
		t.Fatalf("IsVotingOpen() error = %v", err)
	}
	if open {
		t.Error("expected closed with no schedule")
	}
	if sched != nil {
		t.Error("expected nil schedule when none is set")
	}
}

// Records written by earlier deployments stored full datetimes in the
// date columns and seconds in the time columns. They must still evaluate.
func TestIsVotingOpen_LegacyStoredFormats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetTestSchedule(t, db,
		"2026-06-01 00:00:00", "2026-06-03 00:00:00",
		"09:00:00", "17:00:00")

	open, _, err := IsVotingOpen(db, mustTime(t, "2026-06-02 12:00:00"))
	if err != nil {
		t.Fatalf("IsVotingOpen() error = %v", err)
	}
	if !open {
		t.Error("expected open window with legacy stored formats")
	}
}

func TestIsVotingOpen_UnparseableScheduleFailsClosed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetTestSchedule(t, db, "not-a-date", "2026-06-03", "09:00", "17:00")

	open, sched, err := IsVotingOpen(db, mustTime(t, "2026-06-02 12:00:00"))
	if err != nil {
		t.Fatalf("IsVotingOpen() error = %v", err)
	}
	if open {
		t.Error("unparseable schedule must evaluate as closed")
	}
	if sched == nil {
		t.Error("stored schedule should still be returned for messaging")
	}
}

func TestSetSchedule(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewScheduleHandler(db, cfg)

	tests := []struct {
		name           string
		body           models.SetScheduleRequest
		expectedStatus int
	}{
		{
			name: "valid window",
			body: models.SetScheduleRequest{
				StartDate: "2026-06-01", EndDate: "2026-06-03",
				StartTime: "09:00", EndTime: "17:00",
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "start date after end date",
			body: models.SetScheduleRequest{
				StartDate: "2026-06-05", EndDate: "2026-06-03",
				StartTime: "09:00", EndTime: "17:00",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "garbage date",
			body: models.SetScheduleRequest{
				StartDate: "tomorrow", EndDate: "2026-06-03",
				StartTime: "09:00", EndTime: "17:00",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "garbage time",
			body: models.SetScheduleRequest{
				StartDate: "2026-06-01", EndDate: "2026-06-03",
				StartTime: "9am", EndTime: "17:00",
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/admin/schedule", tt.body, nil)
			w := httptest.NewRecorder()

			handler.SetSchedule(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

// Replacing the schedule must update the singleton row, not add a second one.
func TestSetSchedule_ReplacesSingleton(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewScheduleHandler(db, cfg)

	for _, start := range []string{"2026-06-01", "2026-07-01"} {
		req := testutil.MakeRequest("POST", "/admin/schedule", models.SetScheduleRequest{
			StartDate: start, EndDate: "2026-08-01",
			StartTime: "09:00", EndTime: "17:00",
		}, nil)
		w := httptest.NewRecorder()
		handler.SetSchedule(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM voting_schedule`).Scan(&count); err != nil {
		t.Fatalf("Failed to count schedule rows: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 schedule row, got %d", count)
	}

	var startDate string
	if err := db.QueryRow(`SELECT start_date FROM voting_schedule WHERE id = 'current'`).Scan(&startDate); err != nil {
		t.Fatalf("Failed to read schedule: %v", err)
	}
	if startDate != "2026-07-01" {
		t.Errorf("expected replaced start_date 2026-07-01, got %s", startDate)
	}
}

// Tolerated legacy input formats are normalized before storage.
func TestSetSchedule_NormalizesInput(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewScheduleHandler(db, cfg)

	req := testutil.MakeRequest("POST", "/admin/schedule", models.SetScheduleRequest{
		StartDate: "2026-06-01 00:00:00", EndDate: "2026-06-03",
		StartTime: "09:00:00", EndTime: "17:00",
	}, nil)
	w := httptest.NewRecorder()
	handler.SetSchedule(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var sched models.Schedule
	err := db.QueryRow(`
		SELECT start_date, end_date, start_time, end_time FROM voting_schedule WHERE id = 'current'
	`).Scan(&sched.StartDate, &sched.EndDate, &sched.StartTime, &sched.EndTime)
	if err != nil {
		t.Fatalf("Failed to read schedule: %v", err)
	}

	if sched.StartDate != "2026-06-01" {
		t.Errorf("expected normalized start_date 2026-06-01, got %s", sched.StartDate)
	}
	if sched.StartTime != "09:00" {
		t.Errorf("expected normalized start_time 09:00, got %s", sched.StartTime)
	}
}

func TestGetVotingStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewScheduleHandler(db, cfg)

	// No schedule: closed with a hint
	req := testutil.MakeRequest("GET", "/voting/status", nil, nil)
	w := httptest.NewRecorder()
	handler.GetVotingStatus(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.VotingStatusResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.IsActive {
		t.Error("expected inactive with no schedule")
	}
	if resp.Message == "" {
		t.Error("expected an explanatory message when closed")
	}

	// Open window: active, no message needed
	testutil.OpenTestSchedule(t, db)
	w = httptest.NewRecorder()
	handler.GetVotingStatus(w, testutil.MakeRequest("GET", "/voting/status", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	testutil.AssertJSON(t, w, &resp)
	if !resp.IsActive {
		t.Error("expected active inside the window")
	}
}

func TestGetSchedule(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewScheduleHandler(db, cfg)

	// Unset: null schedule
	w := httptest.NewRecorder()
	handler.GetSchedule(w, testutil.MakeRequest("GET", "/voting/schedule", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ScheduleResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Schedule != nil {
		t.Error("expected null schedule when unset")
	}

	testutil.SetTestSchedule(t, db, "2026-06-01", "2026-06-03", "09:00", "17:00")
	w = httptest.NewRecorder()
	handler.GetSchedule(w, testutil.MakeRequest("GET", "/voting/schedule", nil, nil))
	testutil.AssertJSON(t, w, &resp)
	if resp.Schedule == nil || resp.Schedule.StartDate != "2026-06-01" {
		t.Errorf("unexpected schedule payload: %+v", resp.Schedule)
	}
}
