// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

The schema includes:

  - voter: Enrolled students and admins, with has_voted flag
  - position: Contestable positions
  - candidate: Nominees, each under exactly one position
  - vote: The append-only ballot ledger
  - voting_schedule: Singleton voting window

# Relationships

	position 1──* candidate
	voter    1──* vote   (by student_id, no FK)
	candidate 1──* vote  (by candidate_id, no FK)

The vote table carries no foreign keys on purpose: ledger entries record
identifiers and cast-time group attributes as plain values, and every
write is validated against the catalog before insert. Cascade deletes are
performed explicitly by the admin handlers.

# Constraints

  - voter.student_id UNIQUE
  - vote (student_id, position_id) UNIQUE - the double-vote backstop
*/
package db
