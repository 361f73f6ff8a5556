// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/campus-ballot/cliparse"
	"github.com/danielhkuo/campus-ballot/middleware"
	"github.com/danielhkuo/campus-ballot/models"
)

type ScheduleHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewScheduleHandler(db *sql.DB, cfg cliparse.Config) *ScheduleHandler {
	return &ScheduleHandler{db: db, cfg: cfg}
}

// SetSchedule handles POST /admin/schedule
// Replaces the singleton voting window.
func (h *ScheduleHandler) SetSchedule(w http.ResponseWriter, r *http.Request) {
	var req models.SetScheduleRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	startDate, err := parseScheduleDate(req.StartDate)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	endDate, err := parseScheduleDate(req.EndDate)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return
	}
	startClock, err := parseScheduleClock(req.StartTime)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "start_time must be HH:MM")
		return
	}
	endClock, err := parseScheduleClock(req.EndTime)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "end_time must be HH:MM")
		return
	}

	if startDate.After(endDate) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Start date cannot be after end date")
		return
	}

	// Normalize before writing so future reads get the canonical encoding
	// even if the caller sent a tolerated legacy format.
	startTime := formatClock(startClock)
	endTime := formatClock(endClock)
	_, err = h.db.Exec(`
		UPDATE voting_schedule
		SET start_date = $1, end_date = $2, start_time = $3, end_time = $4
		WHERE id = $5
	`, startDate.Format(dateLayout), endDate.Format(dateLayout), startTime, endTime, models.ScheduleID)
	if err == nil {
		// Upsert by hand: UPDATE then INSERT keeps the statement portable
		// across sqlite and postgres.
		_, err = h.db.Exec(`
			INSERT INTO voting_schedule (id, start_date, end_date, start_time, end_time)
			SELECT $1, $2, $3, $4, $5
			WHERE NOT EXISTS (SELECT 1 FROM voting_schedule WHERE id = $1)
		`, models.ScheduleID, startDate.Format(dateLayout), endDate.Format(dateLayout), startTime, endTime)
	}
	if err != nil {
		slog.Error("failed to store voting schedule", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store schedule")
		return
	}

	slog.Info("voting schedule set",
		"start_date", req.StartDate, "end_date", req.EndDate,
		"start_time", req.StartTime, "end_time", req.EndTime,
	)

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Message: "Voting schedule updated",
	})
}

// GetSchedule handles GET /admin/schedule and GET /voting/schedule
func (h *ScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	sched, err := loadSchedule(h.db)
	if err != nil {
		slog.Error("failed to load voting schedule", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ScheduleResponse{Schedule: sched})
}

// GetVotingStatus handles GET /voting/status
// Reports whether the window is currently open; when closed, the message
// carries the configured window so voters know when to come back.
func (h *ScheduleHandler) GetVotingStatus(w http.ResponseWriter, r *http.Request) {
	open, sched, err := IsVotingOpen(h.db, time.Now().UTC())
	if err != nil {
		slog.Error("failed to evaluate voting schedule", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if open {
		middleware.JSONResponse(w, http.StatusOK, models.VotingStatusResponse{IsActive: true})
		return
	}

	msg := "Voting schedule has not been set."
	if sched != nil {
		msg = scheduleWindowMessage(sched)
	}
	middleware.JSONResponse(w, http.StatusOK, models.VotingStatusResponse{
		IsActive: false,
		Message:  msg,
	})
}

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// IsVotingOpen reports whether voting is open at the given instant.
// No schedule, or a schedule that fails to parse, means closed.
// The stored schedule (possibly unparseable) is returned for messaging.
func IsVotingOpen(db *sql.DB, now time.Time) (bool, *models.Schedule, error) {
	sched, err := loadSchedule(db)
	if err != nil {
		return false, nil, err
	}
	if sched == nil {
		return false, nil, nil
	}

	startDate, err := parseScheduleDate(sched.StartDate)
	if err != nil {
		return false, sched, nil
	}
	endDate, err := parseScheduleDate(sched.EndDate)
	if err != nil {
		return false, sched, nil
	}
	startClock, err := parseScheduleClock(sched.StartTime)
	if err != nil {
		return false, sched, nil
	}
	endClock, err := parseScheduleClock(sched.EndTime)
	if err != nil {
		return false, sched, nil
	}

	today := dateOnly(now)
	if today.Before(startDate) || today.After(endDate) {
		return false, sched, nil
	}

	clock := clockSeconds(now)
	if today.Equal(startDate) && clock < startClock {
		return false, sched, nil
	}
	if today.Equal(endDate) && clock > endClock {
		return false, sched, nil
	}

	return true, sched, nil
}

// loadSchedule reads the singleton schedule row. Returns nil when unset.
func loadSchedule(db *sql.DB) (*models.Schedule, error) {
	var sched models.Schedule
	err := db.QueryRow(`
		SELECT start_date, end_date, start_time, end_time
		FROM voting_schedule
		WHERE id = $1
	`, models.ScheduleID).Scan(&sched.StartDate, &sched.EndDate, &sched.StartTime, &sched.EndTime)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sched, nil
}

// dateLayouts lists every date encoding older records were stored with.
var dateLayouts = []string{
	dateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// parseScheduleDate normalizes a stored date to midnight UTC.
func parseScheduleDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t.UTC()), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

var clockLayouts = []string{
	clockLayout,
	"15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// parseScheduleClock normalizes a stored time-of-day to seconds past midnight.
func parseScheduleClock(s string) (int, error) {
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return clockSeconds(t), nil
		}
	}
	return 0, fmt.Errorf("unrecognized time %q", s)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func clockSeconds(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

func formatClock(secs int) string {
	return fmt.Sprintf("%02d:%02d", secs/3600, secs%3600/60)
}

func scheduleWindowMessage(sched *models.Schedule) string {
	return fmt.Sprintf("Voting is not active. Voting period: %s to %s, %s to %s",
		sched.StartDate, sched.EndDate, sched.StartTime, sched.EndTime)
}
