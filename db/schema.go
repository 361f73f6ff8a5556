// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Voters (students and admins)
CREATE TABLE IF NOT EXISTS voter (
    id TEXT PRIMARY KEY,
    student_id TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    mobile TEXT NOT NULL,
    branch TEXT NOT NULL,
    section TEXT NOT NULL,
    is_admin BOOLEAN NOT NULL DEFAULT FALSE,
    has_voted BOOLEAN NOT NULL DEFAULT FALSE,
    voted_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_voter_student_id ON voter(student_id);
CREATE INDEX IF NOT EXISTS idx_voter_mobile ON voter(mobile);
CREATE INDEX IF NOT EXISTS idx_voter_branch ON voter(branch);
CREATE INDEX IF NOT EXISTS idx_voter_section ON voter(section);

-- Positions
CREATE TABLE IF NOT EXISTS position (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    created_at TIMESTAMP NOT NULL
);

-- Candidates (each belongs to exactly one position)
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    position_id TEXT NOT NULL,
    name TEXT NOT NULL,
    branch TEXT NOT NULL,
    section TEXT NOT NULL,
    description TEXT,
    image_url TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_candidate_position_id ON candidate(position_id);

-- Vote ledger. One entry per (voter, position); the unique constraint is
-- the hard backstop against double voting. position_id and candidate_id
-- are deliberately unconstrained: entries must survive catalog deletions,
-- and referential integrity is enforced at the write boundary instead.
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    voter_id TEXT NOT NULL,
    student_id TEXT NOT NULL,
    position_id TEXT NOT NULL,
    candidate_id TEXT NOT NULL,
    branch TEXT NOT NULL,
    section TEXT NOT NULL,
    cast_at TIMESTAMP NOT NULL,
    ip_hash TEXT,
    user_agent TEXT,
    UNIQUE (student_id, position_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_student_id ON vote(student_id);
CREATE INDEX IF NOT EXISTS idx_vote_candidate_id ON vote(candidate_id);
CREATE INDEX IF NOT EXISTS idx_vote_branch ON vote(branch);
CREATE INDEX IF NOT EXISTS idx_vote_section ON vote(section);

-- Voting schedule (singleton row, id = 'current'). Dates and times are
-- stored as strings; readers also accept full date-time values left over
-- from older records.
CREATE TABLE IF NOT EXISTS voting_schedule (
    id TEXT PRIMARY KEY,
    start_date TEXT NOT NULL,
    end_date TEXT NOT NULL,
    start_time TEXT NOT NULL,
    end_time TEXT NOT NULL
);
`
