// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Campus Ballot API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Authentication (public):

	POST /auth/login      - Verify roll entry, issue OTP
	POST /auth/verify-otp - Consume OTP, issue session token

Voting (requires bearer token):

	GET  /positions       - Positions with candidates
	GET  /voting/ballot   - Ballot paper (eligibility-gated)
	POST /voting/votes    - Submit full ballot
	GET  /voting/status   - Is the window open right now
	GET  /voting/schedule - Configured voting window

Administration (requires admin bearer token):

	POST   /admin/schedule              - Set voting window
	GET    /admin/schedule              - Get voting window
	POST   /admin/students              - Enroll student
	GET    /admin/students              - List voter roll
	GET    /admin/students/export       - CSV export
	DELETE /admin/students/{studentID}  - Remove student and their votes
	POST   /admin/positions             - Add position
	DELETE /admin/positions/{id}        - Delete position (and candidates)
	POST   /admin/candidates            - Add candidate
	DELETE /admin/candidates/{id}       - Delete candidate (and its votes)
	DELETE /admin/votes/{id}            - Reverse one voter's ballot
	DELETE /admin/votes                 - Clear the ledger
	GET    /admin/dashboard             - Full election view
	GET    /admin/voting-stats          - Voted / not-voted counts

# Handler Initialization

The router creates handler instances with dependency injection:

	authHandler := handlers.NewAuthHandler(db, cfg, otps)
	votingHandler := handlers.NewVotingHandler(db, cfg)

All handlers receive the database connection and configuration; the auth
handler additionally shares the in-memory OTP store created here.
*/
package router
