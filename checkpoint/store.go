// Package checkpoint persists tournament progress to a SQLite database
// so a killed or interrupted run can resume without re-playing finished
// games, per SPEC_FULL.md's RESUMABLE TOURNAMENTS section. Grounded on
// go-kgp's db.go: a single *sql.DB opened in WAL mode, with prepared
// statements for the hot-path writes.
package checkpoint

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nkg114mc/c-gomoku-cli"
)

const schema = `
CREATE TABLE IF NOT EXISTS config (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS agent_name (
	agent_id INTEGER PRIMARY KEY,
	name     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS completed_game (
	pair_index INTEGER NOT NULL,
	game_index INTEGER NOT NULL,
	outcome    INTEGER NOT NULL,
	PRIMARY KEY (pair_index, game_index)
);
`

// Store is a resumable tournament's checkpoint database.
type Store struct {
	db *sql.DB

	insertResult *sql.Stmt
	insertName   *sql.Stmt
}

// Open opens (or creates) the checkpoint database at path. fingerprint
// identifies the tournament configuration (roster, rule, board size,
// pairing mode); a mismatch against a previously stored fingerprint is
// refused, since resuming with a different configuration would silently
// corrupt the tallies.
func Open(path string, fingerprint string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?mode=rwc&_journal=wal")
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("checkpoint: create schema: %w", err)
	}

	s := &Store{db: db}
	if err := s.checkFingerprint(fingerprint); err != nil {
		db.Close()
		return nil, err
	}

	if s.insertResult, err = db.Prepare(`
		INSERT OR REPLACE INTO completed_game(pair_index, game_index, outcome)
		VALUES (?, ?, ?)`); err != nil {
		db.Close()
		return nil, err
	}
	if s.insertName, err = db.Prepare(`
		INSERT OR REPLACE INTO agent_name(agent_id, name)
		VALUES (?, ?)`); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) checkFingerprint(fp string) error {
	var stored string
	err := s.db.QueryRow(`SELECT value FROM config WHERE key = 'fingerprint'`).Scan(&stored)
	if err == sql.ErrNoRows {
		_, err := s.db.Exec(`INSERT INTO config(key, value) VALUES ('fingerprint', ?)`, fp)
		return err
	}
	if err != nil {
		return err
	}
	if stored != fp {
		return fmt.Errorf("checkpoint: database was started with a different configuration (fingerprint %q, this run is %q); refusing to resume", stored, fp)
	}
	return nil
}

// RecordResult persists one completed game's outcome, keyed by its pair
// and game index so FastForward can recognize it on the next run.
func (s *Store) RecordResult(job gomoku.Job, outcome gomoku.Outcome) error {
	_, err := s.insertResult.Exec(job.PairIndex, job.GameIndex, int(outcome))
	return err
}

// RecordName persists the discovered display name for an agent index.
func (s *Store) RecordName(agentID int, name string) error {
	_, err := s.insertName.Exec(agentID, name)
	return err
}

// CompletedGames returns every previously recorded (pairIndex, gameIndex)
// outcome, for tourney.Queue.FastForward.
func (s *Store) CompletedGames() (map[[2]int]gomoku.Outcome, error) {
	rows, err := s.db.Query(`SELECT pair_index, game_index, outcome FROM completed_game`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[[2]int]gomoku.Outcome)
	for rows.Next() {
		var pairIndex, gameIndex, outcome int
		if err := rows.Scan(&pairIndex, &gameIndex, &outcome); err != nil {
			return nil, err
		}
		out[[2]int{pairIndex, gameIndex}] = gomoku.Outcome(outcome)
	}
	return out, rows.Err()
}

// Names returns every previously recorded agent display name, keyed by
// agent index.
func (s *Store) Names() (map[int]string, error) {
	rows, err := s.db.Query(`SELECT agent_id, name FROM agent_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int]string)
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
