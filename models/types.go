package models

import "time"

// Voter roles
const (
	RoleVoter = "voter"
	RoleAdmin = "admin"
)

// Singleton key for the voting schedule record
const ScheduleID = "current"

// Request types

type LoginRequest struct {
	StudentID string `json:"student_id"`
	Mobile    string `json:"mobile"`
	Role      string `json:"role"` // "voter" or "admin"
}

type VerifyOTPRequest struct {
	StudentID string `json:"student_id"`
	OTP       string `json:"otp"`
}

// position_id -> candidate_id, one choice per open position
type SubmitVoteRequest struct {
	Choices map[string]string `json:"choices"`
}

type AddPositionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type AddCandidateRequest struct {
	PositionID  string `json:"position_id"`
	Name        string `json:"name"`
	Branch      string `json:"branch"`
	Section     string `json:"section"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

type AddStudentRequest struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Mobile    string `json:"mobile"`
	Branch    string `json:"branch"`
	Section   string `json:"section"`
}

type SetScheduleRequest struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
	StartTime string `json:"start_time"` // HH:MM
	EndTime   string `json:"end_time"`   // HH:MM
}

// Response types

type LoginResponse struct {
	Message string `json:"message"`
	OTPSent bool   `json:"otp_sent"`
}

type VerifyOTPResponse struct {
	Token   string `json:"token"`
	IsAdmin bool   `json:"is_admin"`
}

type SubmitVoteResponse struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

type AddPositionResponse struct {
	PositionID string `json:"position_id"`
}

type AddCandidateResponse struct {
	CandidateID string `json:"candidate_id"`
}

type AddStudentResponse struct {
	VoterID string `json:"voter_id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type VotingStatusResponse struct {
	IsActive bool   `json:"is_active"`
	Message  string `json:"message,omitempty"`
}

type ScheduleResponse struct {
	Schedule *Schedule `json:"schedule"` // null when no schedule set
}

// Domain types

type Voter struct {
	ID        string     `json:"id"`
	StudentID string     `json:"student_id"`
	Name      string     `json:"name"`
	Mobile    string     `json:"-"` // Never expose in JSON
	Branch    string     `json:"branch"`
	Section   string     `json:"section"`
	IsAdmin   bool       `json:"is_admin"`
	HasVoted  bool       `json:"has_voted"`
	VotedAt   *time.Time `json:"voted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type Position struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Candidate struct {
	ID          string    `json:"id"`
	PositionID  string    `json:"position_id"`
	Name        string    `json:"name"`
	Branch      string    `json:"branch"`
	Section     string    `json:"section"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type PositionWithCandidates struct {
	Position   Position    `json:"position"`
	Candidates []Candidate `json:"candidates"`
}

// Vote is one immutable ledger entry. Branch and section are captured at
// cast time so later edits to the voter record do not alter historical tallies.
type Vote struct {
	ID          string    `json:"id"`
	VoterID     string    `json:"voter_id"`
	StudentID   string    `json:"student_id"`
	PositionID  string    `json:"position_id"`
	CandidateID string    `json:"candidate_id"`
	Branch      string    `json:"branch"`
	Section     string    `json:"section"`
	CastAt      time.Time `json:"cast_at"`
	IPHash      *string   `json:"-"` // Never expose in JSON
	UserAgent   *string   `json:"-"` // Never expose in JSON
}

// Schedule holds the voting window. Dates are YYYY-MM-DD, times HH:MM.
type Schedule struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Tally types (derived on demand, never persisted)

type CandidateTally struct {
	CandidateID string         `json:"candidate_id"`
	Name        string         `json:"name"`
	Branch      string         `json:"branch"`
	Section     string         `json:"section"`
	Votes       int            `json:"votes"`
	BranchVotes map[string]int `json:"branch_votes"`
	Percentage  float64        `json:"percentage"`
}

type PositionResult struct {
	Position   Position         `json:"position"`
	Candidates []CandidateTally `json:"candidates"`
}

type GroupStats struct {
	TotalVoters int     `json:"total_voters"`
	Voted       int     `json:"voted"`
	Percentage  float64 `json:"percentage"`
}

type VoterSummary struct {
	ID        string     `json:"id"`
	StudentID string     `json:"student_id"`
	Name      string     `json:"name"`
	Branch    string     `json:"branch"`
	Section   string     `json:"section"`
	HasVoted  bool       `json:"has_voted"`
	VotedAt   *time.Time `json:"voted_at,omitempty"`
	VotedAgo  string     `json:"voted_ago,omitempty"`
	VoteID    *string    `json:"vote_id,omitempty"`
}

type DashboardResponse struct {
	TotalRegistered int                   `json:"total_registered"`
	TotalVotesCast  int                   `json:"total_votes_cast"`
	Positions       []PositionResult      `json:"positions"`
	BranchStats     map[string]GroupStats `json:"branch_stats"`
	SectionStats    map[string]GroupStats `json:"section_stats"`
	Voters          []VoterSummary        `json:"voters"`
	NonVoters       []VoterSummary        `json:"non_voters"`
}

type VotingStatsResponse struct {
	Total    int `json:"total"`
	Voted    int `json:"voted"`
	NotVoted int `json:"not_voted"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
