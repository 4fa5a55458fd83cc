package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Session is one recorded live run.
type Session struct {
	ID         string
	Language   string
	StartedAt  time.Time
	EndedAt    time.Time
	EndReason  string
	Transcript string
	FinalCount int
}

// Running reports whether the session has no recorded end.
func (s Session) Running() bool {
	return s.EndedAt.IsZero()
}

// Final is one corrected final result.
type Final struct {
	Seq        int
	Text       string
	RecordedAt time.Time
}

// Store persists sessions backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open initializes or connects to the journal database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("journal: path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection serializes writes from the live worker and readers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SessionStarted records a new session.
func (s *Store) SessionStarted(ctx context.Context, id, language string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, language, started_at) VALUES (?, ?, ?)`,
		id, language, s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// FinalRecorded appends a final result and stores the running transcript.
func (s *Store) FinalRecorded(ctx context.Context, id, final, transcript string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin final tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var seq int
	if err := tx.QueryRowContext(ctx,
		`UPDATE sessions SET final_count = final_count + 1, transcript = ? WHERE id = ? RETURNING final_count`,
		transcript, id,
	).Scan(&seq); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("record final: unknown session %s", id)
		}
		return fmt.Errorf("update session: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO finals (session_id, seq, text, recorded_at) VALUES (?, ?, ?, ?)`,
		id, seq, final, s.timestamp(),
	); err != nil {
		return fmt.Errorf("insert final: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit final: %w", err)
	}
	return nil
}

// SessionEnded marks a session finished.
func (s *Store) SessionEnded(ctx context.Context, id, reason, transcript string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET ended_at = ?, end_reason = ?, transcript = ? WHERE id = ?`,
		s.timestamp(), reason, transcript, id,
	)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("end session: unknown session %s", id)
	}
	return nil
}

// ListSessions returns the most recent sessions first. limit <= 0 returns all.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]Session, error) {
	query := `SELECT id, language, started_at, ended_at, end_reason, transcript, final_count
        FROM sessions ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			sess      Session
			startedAt string
			endedAt   sql.NullString
			reason    sql.NullString
		)
		if err := rows.Scan(&sess.ID, &sess.Language, &startedAt, &endedAt, &reason, &sess.Transcript, &sess.FinalCount); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.StartedAt = parseTime(startedAt)
		if endedAt.Valid {
			sess.EndedAt = parseTime(endedAt.String)
		}
		sess.EndReason = reason.String
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Finals returns the recorded finals of a session in order.
func (s *Store) Finals(ctx context.Context, id string) ([]Final, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, text, recorded_at FROM finals WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("list finals: %w", err)
	}
	defer rows.Close()

	var finals []Final
	for rows.Next() {
		var (
			f  Final
			at string
		)
		if err := rows.Scan(&f.Seq, &f.Text, &at); err != nil {
			return nil, fmt.Errorf("scan final: %w", err)
		}
		f.RecordedAt = parseTime(at)
		finals = append(finals, f)
	}
	return finals, rows.Err()
}

// timestampLayout keeps every stored value the same width so that text
// ordering in SQL matches chronological ordering.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timestampLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
