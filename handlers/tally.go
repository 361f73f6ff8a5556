// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"math"

	"github.com/danielhkuo/campus-ballot/models"
)

// Tallies are a pure read-side projection over the vote ledger, recomputed
// on every request. Nothing here writes, so tally correctness reduces to
// ledger correctness.

// ComputeElectionResults builds per-candidate tallies for every position.
// A candidate's percentage is their share of all ballots cast (distinct
// voters with at least one ledger entry), 0 when nobody has voted yet.
func ComputeElectionResults(db *sql.DB) ([]models.PositionResult, int, error) {
	totalVotesCast, err := countBallotsCast(db)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count ballots cast: %w", err)
	}

	branches, err := distinctVoterGroups(db, "branch")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list branches: %w", err)
	}

	positions, err := listPositions(db)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list positions: %w", err)
	}

	results := make([]models.PositionResult, 0, len(positions))
	for _, pos := range positions {
		candidates, err := listCandidates(db, pos.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to list candidates for %s: %w", pos.ID, err)
		}

		tallies := make([]models.CandidateTally, 0, len(candidates))
		for _, cand := range candidates {
			votes, branchVotes, err := countCandidateVotes(db, cand.ID, branches)
			if err != nil {
				return nil, 0, fmt.Errorf("failed to tally candidate %s: %w", cand.ID, err)
			}

			tallies = append(tallies, models.CandidateTally{
				CandidateID: cand.ID,
				Name:        cand.Name,
				Branch:      cand.Branch,
				Section:     cand.Section,
				Votes:       votes,
				BranchVotes: branchVotes,
				Percentage:  roundPercent(votes, totalVotesCast),
			})
		}

		results = append(results, models.PositionResult{
			Position:   pos,
			Candidates: tallies,
		})
	}

	return results, totalVotesCast, nil
}

// ComputeGroupTurnout returns turnout stats keyed by branch or section:
// distinct ledger voters in the group over non-admin voters in the group.
// Group membership of a ballot is the value captured at cast time.
func ComputeGroupTurnout(db *sql.DB, column string) (map[string]models.GroupStats, error) {
	if column != "branch" && column != "section" {
		return nil, fmt.Errorf("unsupported group column %q", column)
	}

	groups, err := distinctVoterGroups(db, column)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]models.GroupStats, len(groups))
	for _, group := range groups {
		var voted int
		err := db.QueryRow(
			`SELECT COUNT(DISTINCT student_id) FROM vote WHERE `+column+` = $1`,
			group,
		).Scan(&voted)
		if err != nil {
			return nil, err
		}

		var total int
		err = db.QueryRow(
			`SELECT COUNT(*) FROM voter WHERE `+column+` = $1 AND is_admin = FALSE`,
			group,
		).Scan(&total)
		if err != nil {
			return nil, err
		}

		stats[group] = models.GroupStats{
			TotalVoters: total,
			Voted:       voted,
			Percentage:  roundPercent(voted, total),
		}
	}

	return stats, nil
}

// countBallotsCast counts distinct voters with at least one ledger entry.
func countBallotsCast(db *sql.DB) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(DISTINCT student_id) FROM vote`).Scan(&n)
	return n, err
}

func countCandidateVotes(db *sql.DB, candidateID string, branches []string) (int, map[string]int, error) {
	var total int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM vote WHERE candidate_id = $1
	`, candidateID).Scan(&total)
	if err != nil {
		return 0, nil, err
	}

	branchVotes := make(map[string]int, len(branches))
	for _, branch := range branches {
		var n int
		err := db.QueryRow(`
			SELECT COUNT(*) FROM vote WHERE candidate_id = $1 AND branch = $2
		`, candidateID, branch).Scan(&n)
		if err != nil {
			return 0, nil, err
		}
		branchVotes[branch] = n
	}

	return total, branchVotes, nil
}

// distinctVoterGroups lists the distinct non-admin values of a group column.
func distinctVoterGroups(db *sql.DB, column string) ([]string, error) {
	if column != "branch" && column != "section" {
		return nil, fmt.Errorf("unsupported group column %q", column)
	}

	rows, err := db.Query(`SELECT DISTINCT ` + column + ` FROM voter WHERE is_admin = FALSE ORDER BY ` + column)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}

	return groups, rows.Err()
}

// roundPercent computes n/d as a percentage rounded to 2 decimal places.
// Defined as 0 when the denominator is 0.
func roundPercent(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(d)*10000) / 100
}
