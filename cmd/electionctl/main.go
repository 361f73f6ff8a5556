// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command electionctl is the operator console for a Campus Ballot
// deployment. It talks to the same database as the server and covers the
// chores that predate the voting window: enrolling the roll, promoting
// admins, and sanity-checking the schedule and tallies from a terminal.
package main

import (
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/olekukonko/tablewriter"
	_ "modernc.org/sqlite"

	dbschema "github.com/danielhkuo/campus-ballot/db"
	"github.com/danielhkuo/campus-ballot/handlers"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	conn, err := openDB()
	if err != nil {
		color.Red("database connection failed: %v", err)
		os.Exit(1)
	}
	defer conn.Close()

	switch os.Args[1] {
	case "add-student":
		err = addStudent(conn, os.Args[2:])
	case "import":
		err = importStudents(conn, os.Args[2:])
	case "promote":
		err = setAdmin(conn, os.Args[2:], true)
	case "demote":
		err = setAdmin(conn, os.Args[2:], false)
	case "roll":
		err = showRoll(conn)
	case "results":
		err = showResults(conn)
	case "check":
		err = checkSchedule(conn)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: electionctl <command> [flags]

commands:
  add-student  -id <studentID> -name <name> -mobile <mobile> -branch <branch> -section <section>
  import      -file <roll.csv>     (columns: student_id,name,mobile,branch,section)
  promote     -id <studentID>
  demote      -id <studentID>
  roll        print the voter roll
  results     print current tallies
  check       report whether the voting window is open

Database comes from DATABASE_URL / DATABASE_TYPE (or a .env file).`)
}

func openDB() (*sql.DB, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, fmt.Errorf("DATABASE_URL required")
	}
	driver := "sqlite"
	if os.Getenv("DATABASE_TYPE") == "postgres" {
		driver = "postgres"
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		return nil, err
	}
	if err := dbschema.CreateSchema(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

func addStudent(conn *sql.DB, args []string) error {
	fs := flag.NewFlagSet("add-student", flag.ExitOnError)
	id := fs.String("id", "", "student ID")
	name := fs.String("name", "", "full name")
	mobile := fs.String("mobile", "", "registered mobile number")
	branch := fs.String("branch", "", "branch")
	section := fs.String("section", "", "section")
	fs.Parse(args)

	if *id == "" || *name == "" || *mobile == "" || *branch == "" || *section == "" {
		return fmt.Errorf("add-student: all of -id -name -mobile -branch -section are required")
	}

	if err := insertStudent(conn, *id, *name, *mobile, *branch, *section); err != nil {
		return err
	}
	color.Green("enrolled %s (%s)", *name, *id)
	return nil
}

// importStudents bulk-enrolls from a CSV roll. Rows whose student ID is
// already enrolled are skipped, so re-running an import is safe.
func importStudents(conn *sql.DB, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "CSV file: student_id,name,mobile,branch,section")
	fs.Parse(args)

	if *file == "" {
		return fmt.Errorf("import: -file is required")
	}

	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", *file, err)
	}

	enrolled, skipped := 0, 0
	for i, rec := range records {
		if i == 0 && rec[0] == "student_id" {
			continue // header row
		}
		if len(rec) != 5 {
			return fmt.Errorf("row %d: expected 5 columns, got %d", i+1, len(rec))
		}

		var exists bool
		if err := conn.QueryRow(`SELECT EXISTS(SELECT 1 FROM voter WHERE student_id = $1)`, rec[0]).Scan(&exists); err != nil {
			return err
		}
		if exists {
			skipped++
			continue
		}

		if err := insertStudent(conn, rec[0], rec[1], rec[2], rec[3], rec[4]); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		enrolled++
	}

	color.Green("enrolled %d students (%d already present)", enrolled, skipped)
	return nil
}

func insertStudent(conn *sql.DB, studentID, name, mobile, branch, section string) error {
	_, err := conn.Exec(`
		INSERT INTO voter (id, student_id, name, mobile, branch, section, is_admin, has_voted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, FALSE, $7)
	`, uuid.NewString(), studentID, name, mobile, branch, section, time.Now().UTC())
	return err
}

func setAdmin(conn *sql.DB, args []string, isAdmin bool) error {
	verb := "promote"
	if !isAdmin {
		verb = "demote"
	}

	fs := flag.NewFlagSet(verb, flag.ExitOnError)
	id := fs.String("id", "", "student ID")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("%s: -id is required", verb)
	}

	res, err := conn.Exec(`UPDATE voter SET is_admin = $1 WHERE student_id = $2`, isAdmin, *id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("no student with ID %s", *id)
	}

	color.Green("%sd %s", verb, *id)
	return nil
}

func showRoll(conn *sql.DB) error {
	rows, err := conn.Query(`
		SELECT student_id, name, branch, section, is_admin, has_voted
		FROM voter
		ORDER BY student_id
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	color.Yellow("\nVoter Roll")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Student ID", "Name", "Branch", "Section", "Role", "Status"})

	for rows.Next() {
		var studentID, name, branch, section string
		var isAdmin, hasVoted bool
		if err := rows.Scan(&studentID, &name, &branch, &section, &isAdmin, &hasVoted); err != nil {
			return err
		}

		role := "voter"
		if isAdmin {
			role = "admin"
		}
		status := "not voted"
		if hasVoted {
			status = "voted"
		}
		table.Append([]string{studentID, name, branch, section, role, status})
	}

	table.Render()
	return rows.Err()
}

func showResults(conn *sql.DB) error {
	results, totalVotesCast, err := handlers.ComputeElectionResults(conn)
	if err != nil {
		return err
	}

	color.Yellow("\nElection Results (%d ballots cast)", totalVotesCast)
	for _, pos := range results {
		color.Cyan("\n%s", pos.Position.Title)
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Candidate", "Branch", "Votes", "Share"})

		for _, cand := range pos.Candidates {
			table.Append([]string{
				cand.Name,
				cand.Branch,
				fmt.Sprintf("%d", cand.Votes),
				fmt.Sprintf("%.2f%%", cand.Percentage),
			})
		}
		table.Render()
	}

	return nil
}

func checkSchedule(conn *sql.DB) error {
	open, sched, err := handlers.IsVotingOpen(conn, time.Now().UTC())
	if err != nil {
		return err
	}

	switch {
	case open:
		color.Green("voting is OPEN")
	case sched == nil:
		color.Red("voting is CLOSED: no schedule set")
	default:
		color.Red("voting is CLOSED")
	}

	if sched != nil {
		fmt.Printf("window: %s to %s, %s to %s\n",
			sched.StartDate, sched.EndDate, sched.StartTime, sched.EndTime)
	}
	return nil
}
