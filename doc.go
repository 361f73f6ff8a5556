// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Campus Ballot API server.

Campus Ballot is a college election service: students authenticate with
an OTP sent to their registered mobile number and cast one full ballot
(one candidate per position) inside an admin-configured voting window.
Results are recomputed live from an append-only vote ledger.

# Starting the Server

The server reads configuration from a .env file, environment variables,
or CLI flags:

	DATABASE_URL=ballot.db JWT_SECRET=... go run main.go

Or with flags:

	go run main.go -p 8000 -d ballot.db -t sqlite -jwt-secret ...

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - JWT_SECRET (-jwt-secret): Secret for session token signing

Optional settings:

  - PORT (-p): Server port (default: 8000)
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"
  - -otp-ttl: OTP lifetime in minutes (default: 5)
  - -jwt-ttl: Session token lifetime in minutes (default: 60)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (auth, voting, schedule, catalog, admin)
  - router: Route definitions using Go 1.22+ routing
  - middleware: Auth guards, CORS, logging, JSON helpers
  - models: Request/response types
  - auth: OTP store and session tokens
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
