// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Campus Ballot API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - AuthHandler: OTP login and session token issuance
  - VotingHandler: Ballot retrieval and vote submission
  - ScheduleHandler: Voting window management and status
  - PositionHandler: Position and candidate catalog management
  - VoterHandler: Voter roll management and CSV export
  - AdminHandler: Dashboard, stats, and vote deletion

Handlers are created via constructor functions that accept *sql.DB and Config:

	votingHandler := handlers.NewVotingHandler(db, cfg)

AuthHandler additionally takes the shared *auth.OTPStore.

# Voting Flow

Voters authenticate in two steps, then vote once:

	POST /auth/login      → Login (issues OTP)
	POST /auth/verify-otp → VerifyOTP (returns session token)
	GET  /voting/ballot   → GetBallot (positions with candidates)
	POST /voting/votes    → SubmitVote (full ballot, all-or-nothing)

Authenticated operations require the Authorization bearer token.

# Eligibility

Every ballot read and write passes through CheckEligibility, which denies
admins, voters who already voted, and requests outside the voting window,
in that order. The schedule comparison is wall-clock based and fails
closed: a missing or unparseable schedule means voting is not open.

# Vote Integrity

SubmitVote validates the ballot against the catalog (full position
coverage, every ID resolves, candidate/position cross-reference), then
commits all ledger entries and the has_voted flag flip in one
transaction. A conditional update on has_voted makes the false→true
transition atomic, so concurrent submissions for the same voter produce
exactly one accepted ballot. The unique (student_id, position_id)
constraint on the vote table backstops this at the schema level.

# Tallies

Results, turnout, and dashboard numbers are recomputed from the vote
ledger on every request; nothing derived is persisted. Percentage shares
use distinct ballots cast as the denominator and are 0 when it is 0.

# Admin Mutations

Admin endpoints mutate the catalog and ledger with deliberate cascade
rules: deleting a position removes its candidates but leaves ledger
entries; deleting a candidate removes its entries but leaves has_voted
flags; deleting a single vote reverses the voter's whole ballot and
resets their flag. Asymmetries are logged at WARN for the operator.
*/
package handlers
