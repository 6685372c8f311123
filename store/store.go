// Package store keeps audit runs in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/maastricht-university/call-auditor/orchestrator"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	folder TEXT NOT NULL,
	generatedAt REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS calls (
	runId TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	callId TEXT NOT NULL,
	utterances INTEGER NOT NULL,
	callDuration REAL NOT NULL,
	speakingSeconds REAL NOT NULL,
	overtalkSeconds REAL NOT NULL,
	silenceSeconds REAL NOT NULL,
	overtalkPct REAL NOT NULL,
	silencePct REAL NOT NULL,
	PRIMARY KEY (runId, callId)
);
CREATE TABLE IF NOT EXISTS flags (
	runId TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	callId TEXT NOT NULL,
	utteranceId INTEGER NOT NULL,
	speaker TEXT NOT NULL,
	role TEXT NOT NULL,
	text TEXT NOT NULL,
	issue TEXT NOT NULL,
	stime REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS flags_call ON flags(runId, callId);
`

type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
// Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveReport writes the run, its calls and flags in one transaction.
func (s *Store) SaveReport(ctx context.Context, rep *orchestrator.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO runs (id, folder, generatedAt) VALUES (?, ?, ?)`,
		rep.RunID, rep.Folder, unixFromTime(rep.GeneratedAt)); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for _, c := range rep.Calls {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO calls (runId, callId, utterances, callDuration, speakingSeconds,
				overtalkSeconds, silenceSeconds, overtalkPct, silencePct)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rep.RunID, c.CallID, c.Utterances, c.CallDuration, c.SpeakingSeconds,
			c.OvertalkSeconds, c.SilenceSeconds, c.OvertalkPct, c.SilencePct); err != nil {
			return fmt.Errorf("insert call %s: %w", c.CallID, err)
		}
	}
	for _, f := range rep.Flags {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO flags (runId, callId, utteranceId, speaker, role, text, issue, stime)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rep.RunID, f.CallID, f.UtteranceID, f.Speaker, f.Role, f.Text, string(f.Issue), f.Start); err != nil {
			return fmt.Errorf("insert flag: %w", err)
		}
	}
	return tx.Commit()
}

// Run is a stored run summary.
type Run struct {
	ID          string
	Folder      string
	GeneratedAt time.Time
	Calls       int
	Flags       int
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.folder, r.generatedAt,
			(SELECT COUNT(*) FROM calls c WHERE c.runId = r.id),
			(SELECT COUNT(*) FROM flags f WHERE f.runId = r.id)
		FROM runs r
		ORDER BY r.generatedAt DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var at float64
		if err := rows.Scan(&r.ID, &r.Folder, &at, &r.Calls, &r.Flags); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.GeneratedAt = timeFromUnix(at)
		out = append(out, r)
	}
	return out, rows.Err()
}

// FlagsForCall returns the flags of one call in a run, ordered by start time.
func (s *Store) FlagsForCall(ctx context.Context, runID, callID string) ([]orchestrator.Flag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT callId, utteranceId, speaker, role, text, issue, stime
		FROM flags
		WHERE runId = ? AND callId = ?
		ORDER BY stime ASC, rowid ASC
	`, runID, callID)
	if err != nil {
		return nil, fmt.Errorf("query flags: %w", err)
	}
	defer rows.Close()

	var out []orchestrator.Flag
	for rows.Next() {
		var f orchestrator.Flag
		var issue string
		if err := rows.Scan(&f.CallID, &f.UtteranceID, &f.Speaker, &f.Role, &f.Text, &issue, &f.Start); err != nil {
			return nil, fmt.Errorf("scan flag: %w", err)
		}
		f.Issue = orchestrator.Issue(issue)
		out = append(out, f)
	}
	return out, rows.Err()
}

func unixFromTime(t time.Time) float64 { return float64(t.UnixNano()) / 1e9 }

func timeFromUnix(f float64) time.Time {
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}
