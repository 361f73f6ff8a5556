// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - LoginRequest: student_id, mobile, role
  - VerifyOTPRequest: student_id, otp
  - SubmitVoteRequest: choices (map[string]string, position -> candidate)
  - AddPositionRequest: title, description
  - AddCandidateRequest: position_id, name, branch, section, description, image_url
  - AddStudentRequest: student_id, name, mobile, branch, section
  - SetScheduleRequest: start_date, end_date, start_time, end_time

# Response Types

Types for JSON responses:

  - LoginResponse: message, otp_sent
  - VerifyOTPResponse: token, is_admin
  - SubmitVoteResponse: accepted, reason
  - VotingStatusResponse: is_active, message
  - DashboardResponse: full election results and turnout
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Voter: enrolled student or admin, with has_voted flag
  - Position: contestable role
  - Candidate: nominee for exactly one position
  - Vote: immutable ledger entry with cast-time branch/section
  - Schedule: the voting open-window

# Constants

Roles:

	RoleVoter = "voter"
	RoleAdmin = "admin"

Schedule singleton key:

	ScheduleID = "current"
*/
package models
