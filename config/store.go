package config

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// Session is the persisted progress of one installation run: where the
// operator's cursor is, how long the compensated clock had run, and how
// many attempts each wire has taken so far.
type Session struct {
	Name string

	Cursor int

	// ClockOffset is the compensated elapsed time of the timing logger
	// at the moment the session was last saved, so a resumed run can
	// continue its duration columns without a gap.
	ClockOffset time.Duration

	// Attempts maps wire index to the number of failed insertions seen.
	Attempts map[int]int
}

// Store persists installation sessions so a guide process can be killed
// and restarted mid-installation without losing progress.
type Store struct {
	db *sql.DB
}

// Schema statements are executed one at a time: the MySQL driver rejects
// multi-statement Exec calls unless explicitly enabled in the DSN.
var storeSchema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
	name          VARCHAR(255) PRIMARY KEY,
	cursor        INTEGER NOT NULL,
	clock_offset  REAL NOT NULL,
	updated_at    VARCHAR(64) NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS wire_attempts (
	session    VARCHAR(255) NOT NULL,
	wire       INTEGER NOT NULL,
	attempts   INTEGER NOT NULL,
	PRIMARY KEY (session, wire)
)`,
}

// OpenSQLiteStore opens (creating if needed) a session store in a local
// SQLite file. This is the default for single-operator installations.
func OpenSQLiteStore(path string) (*Store, error) {
	return openStore("sqlite3", path)
}

// OpenMySQLStore opens a session store in a networked MySQL database,
// for installations where several operators share progress.
func OpenMySQLStore(dsn string) (*Store, error) {
	return openStore("mysql", dsn)
}

func openStore(driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("config: opening session store: %w", err)
	}
	for _, stmt := range storeSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("config: creating session store schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts a session and its per-wire attempt counts.
func (s *Store) Save(sess Session) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`REPLACE INTO sessions (name, cursor, clock_offset, updated_at) VALUES (?, ?, ?, ?)`,
		sess.Name, sess.Cursor, sess.ClockOffset.Seconds(), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}

	for wire, n := range sess.Attempts {
		_, err = tx.Exec(
			`REPLACE INTO wire_attempts (session, wire, attempts) VALUES (?, ?, ?)`,
			sess.Name, wire, n,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Load retrieves a session by name; ok is false when no session with
// that name has been saved.
func (s *Store) Load(name string) (sess Session, ok bool, err error) {
	var offsetSeconds float64
	row := s.db.QueryRow(`SELECT cursor, clock_offset FROM sessions WHERE name = ?`, name)
	if err := row.Scan(&sess.Cursor, &offsetSeconds); err != nil {
		if err == sql.ErrNoRows {
			return Session{}, false, nil
		}
		return Session{}, false, err
	}

	sess.Name = name
	sess.ClockOffset = time.Duration(offsetSeconds * float64(time.Second))
	sess.Attempts = map[int]int{}

	rows, err := s.db.Query(`SELECT wire, attempts FROM wire_attempts WHERE session = ?`, name)
	if err != nil {
		return Session{}, false, err
	}
	defer rows.Close()

	for rows.Next() {
		var wire, n int
		if err := rows.Scan(&wire, &n); err != nil {
			return Session{}, false, err
		}
		sess.Attempts[wire] = n
	}

	return sess, true, rows.Err()
}

// Delete removes a session and its attempt counts, e.g. once an
// installation has been completed and verified.
func (s *Store) Delete(name string) error {
	if _, err := s.db.Exec(`DELETE FROM wire_attempts WHERE session = ?`, name); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM sessions WHERE name = ?`, name)
	return err
}
