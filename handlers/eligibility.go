// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	ErrAdminVoter      = errors.New("admins are not allowed to vote")
	ErrAlreadyVoted    = errors.New("you have already voted")
	ErrVotingClosed    = errors.New("voting is not active")
	ErrMalformedBallot = errors.New("malformed ballot")
)

// CheckEligibility decides whether the voter may cast a ballot right now.
// Denial order: admin role, already voted, schedule closed. The has_voted
// flag is read from the store, never from session claims, so a vote
// committed between page load and submission is caught here.
func CheckEligibility(db *sql.DB, voterID string) error {
	var isAdmin, hasVoted bool
	err := db.QueryRow(`
		SELECT is_admin, has_voted FROM voter WHERE id = $1
	`, voterID).Scan(&isAdmin, &hasVoted)
	if err != nil {
		return fmt.Errorf("failed to load voter %s: %w", voterID, err)
	}

	if isAdmin {
		return ErrAdminVoter
	}
	if hasVoted {
		return ErrAlreadyVoted
	}

	open, sched, err := IsVotingOpen(db, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to evaluate voting schedule: %w", err)
	}
	if !open {
		if sched != nil {
			return fmt.Errorf("%w: %s", ErrVotingClosed, scheduleWindowMessage(sched))
		}
		return fmt.Errorf("%w: voting schedule has not been set", ErrVotingClosed)
	}

	return nil
}
