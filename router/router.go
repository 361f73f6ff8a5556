// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/campus-ballot/auth"
	"github.com/danielhkuo/campus-ballot/cliparse"
	"github.com/danielhkuo/campus-ballot/handlers"
	"github.com/danielhkuo/campus-ballot/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Pending OTP codes are in-memory and shared by all auth requests.
	otps := auth.NewOTPStore(cfg.OTPLifetime)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg, otps)
	votingHandler := handlers.NewVotingHandler(db, cfg)
	scheduleHandler := handlers.NewScheduleHandler(db, cfg)
	positionHandler := handlers.NewPositionHandler(db, cfg)
	voterHandler := handlers.NewVoterHandler(db, cfg)
	adminHandler := handlers.NewAdminHandler(db, cfg)

	secret := cfg.JWTSecret

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Authentication (public)
	mux.HandleFunc("POST /auth/login", middleware.WithLogging(authHandler.Login))
	mux.HandleFunc("POST /auth/verify-otp", middleware.WithLogging(authHandler.VerifyOTP))

	// Voting operations (authenticated voters)
	mux.HandleFunc("GET /positions", middleware.WithLogging(middleware.RequireAuth(secret, positionHandler.ListPositions)))
	mux.HandleFunc("GET /voting/ballot", middleware.WithLogging(middleware.RequireAuth(secret, votingHandler.GetBallot)))
	mux.HandleFunc("POST /voting/votes", middleware.WithLogging(middleware.RequireAuth(secret, votingHandler.SubmitVote)))
	mux.HandleFunc("GET /voting/status", middleware.WithLogging(middleware.RequireAuth(secret, scheduleHandler.GetVotingStatus)))
	mux.HandleFunc("GET /voting/schedule", middleware.WithLogging(middleware.RequireAuth(secret, scheduleHandler.GetSchedule)))

	// Schedule management (admin)
	mux.HandleFunc("POST /admin/schedule", middleware.WithLogging(middleware.RequireAdmin(secret, scheduleHandler.SetSchedule)))
	mux.HandleFunc("GET /admin/schedule", middleware.WithLogging(middleware.RequireAdmin(secret, scheduleHandler.GetSchedule)))

	// Voter roll management (admin)
	mux.HandleFunc("POST /admin/students", middleware.WithLogging(middleware.RequireAdmin(secret, voterHandler.AddStudent)))
	mux.HandleFunc("GET /admin/students", middleware.WithLogging(middleware.RequireAdmin(secret, voterHandler.ListStudents)))
	mux.HandleFunc("GET /admin/students/export", middleware.WithLogging(middleware.RequireAdmin(secret, voterHandler.ExportVoters)))
	mux.HandleFunc("DELETE /admin/students/{studentID}", middleware.WithLogging(middleware.RequireAdmin(secret, voterHandler.DeleteStudent)))

	// Catalog management (admin)
	mux.HandleFunc("POST /admin/positions", middleware.WithLogging(middleware.RequireAdmin(secret, positionHandler.AddPosition)))
	mux.HandleFunc("DELETE /admin/positions/{id}", middleware.WithLogging(middleware.RequireAdmin(secret, positionHandler.DeletePosition)))
	mux.HandleFunc("POST /admin/candidates", middleware.WithLogging(middleware.RequireAdmin(secret, positionHandler.AddCandidate)))
	mux.HandleFunc("DELETE /admin/candidates/{id}", middleware.WithLogging(middleware.RequireAdmin(secret, positionHandler.DeleteCandidate)))

	// Ledger administration (admin)
	mux.HandleFunc("DELETE /admin/votes/{id}", middleware.WithLogging(middleware.RequireAdmin(secret, adminHandler.DeleteVote)))
	mux.HandleFunc("DELETE /admin/votes", middleware.WithLogging(middleware.RequireAdmin(secret, adminHandler.DeleteAllVotes)))
	mux.HandleFunc("GET /admin/dashboard", middleware.WithLogging(middleware.RequireAdmin(secret, adminHandler.GetDashboard)))
	mux.HandleFunc("GET /admin/voting-stats", middleware.WithLogging(middleware.RequireAdmin(secret, adminHandler.GetVotingStats)))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("campus-ballot API v1"))
	})

	return mux
}
