// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 8000)
  - DatabaseURL: sqlite path or PostgreSQL connection string (required)
  - DatabaseType: "sqlite" (default) or "postgres"
  - JWTSecret: Secret for session token signing (required)
  - JWTLifetime: Session token lifetime (default: 60m)
  - OTPLifetime: One-time code lifetime (default: 5m)

# CLI Flags

	-p           Server port
	-d           Database URL
	-t           Database type
	-jwt-secret  JWT signing secret
	-jwt-ttl     Session token lifetime in minutes
	-otp-ttl     OTP lifetime in minutes

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	JWT_SECRET    → -jwt-secret

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - JWT_SECRET must be provided
  - DATABASE_TYPE, when set, must be sqlite or postgres
*/
package cliparse
