// Package session keeps the notices a caller pastes one at a time so they can
// be exported together. Parsing itself stays stateless.
package session

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned for an unknown session id.
var ErrNotFound = errors.New("session not found")

// Session is one accumulation of pasted notices.
type Session struct {
	ID        string `json:"id"`
	Label     string `json:"label,omitempty"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
	Notices   int    `json:"notices"`
}

// Store manages the sessions and session_notices SQLite tables.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the SQLite database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id          TEXT PRIMARY KEY,
			label       TEXT NOT NULL DEFAULT '',
			created_at  INTEGER NOT NULL,
			updated_at  INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS session_notices (
			session_id  TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			position    INTEGER NOT NULL,
			body        TEXT NOT NULL,
			added_at    INTEGER NOT NULL,
			PRIMARY KEY (session_id, position)
		)`,
	}
	for _, q := range ddl {
		if _, err := db.Exec(q); err != nil {
			db.Close()
			return nil, fmt.Errorf("create session tables: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create starts an empty session.
func (s *Store) Create(label string) (Session, error) {
	now := time.Now().Unix()
	sess := Session{ID: uuid.NewString(), Label: label, CreatedAt: now, UpdatedAt: now}
	_, err := s.db.Exec(`INSERT INTO sessions (id, label, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.Label, sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Get returns one session with its notice count.
func (s *Store) Get(id string) (Session, error) {
	var sess Session
	err := s.db.QueryRow(`SELECT s.id, s.label, s.created_at, s.updated_at,
		(SELECT COUNT(*) FROM session_notices n WHERE n.session_id = s.id)
		FROM sessions s WHERE s.id = ?`, id).
		Scan(&sess.ID, &sess.Label, &sess.CreatedAt, &sess.UpdatedAt, &sess.Notices)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session %s: %w", id, err)
	}
	return sess, nil
}

// Add appends a pasted notice text and returns the new notice count.
func (s *Store) Add(id, text string) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("add to %s: %w", id, err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	res, err := tx.Exec(`UPDATE sessions SET updated_at = ? WHERE id = ?`, now, id)
	if err != nil {
		return 0, fmt.Errorf("add to %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM session_notices WHERE session_id = ?`, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("add to %s: %w", id, err)
	}
	if _, err := tx.Exec(`INSERT INTO session_notices (session_id, position, body, added_at) VALUES (?, ?, ?, ?)`,
		id, count, text, now); err != nil {
		return 0, fmt.Errorf("add to %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("add to %s: %w", id, err)
	}
	return count + 1, nil
}

// Texts returns the notices of a session in the order they were added.
func (s *Store) Texts(id string) ([]string, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT body FROM session_notices WHERE session_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("texts of %s: %w", id, err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan notice: %w", err)
		}
		texts = append(texts, body)
	}
	return texts, rows.Err()
}

// List returns every session, most recently updated first.
func (s *Store) List() ([]Session, error) {
	rows, err := s.db.Query(`SELECT s.id, s.label, s.created_at, s.updated_at,
		(SELECT COUNT(*) FROM session_notices n WHERE n.session_id = s.id)
		FROM sessions s ORDER BY s.updated_at DESC, s.created_at DESC, s.id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Label, &sess.CreatedAt, &sess.UpdatedAt, &sess.Notices); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// Clear drops the notices of a session and keeps the session.
func (s *Store) Clear(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM session_notices WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("clear %s: %w", id, err)
	}
	_, err := s.db.Exec(`UPDATE sessions SET updated_at = ? WHERE id = ?`, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("clear %s: %w", id, err)
	}
	return nil
}

// Delete removes a session and its notices.
func (s *Store) Delete(id string) error {
	if _, err := s.db.Exec(`DELETE FROM session_notices WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	res, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
