// Package sqlite keeps the session log in a local SQLite file, for single-host deployments
// that do not run Postgres.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"ordinal-quest-service/internal/domain"
)

// SessionRepository stores finished sessions in a game_sessions table.
type SessionRepository struct {
	db *sql.DB
}

// Open creates the database file (and its directory) if missing and ensures the schema.
func Open(path string) (*SessionRepository, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SessionRepository{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS game_sessions (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			mode          TEXT    NOT NULL,
			difficulty    TEXT    NOT NULL,
			player1_score INTEGER NOT NULL,
			player2_score INTEGER,
			completed_at  INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS game_sessions_completed_at_idx ON game_sessions (completed_at DESC, id DESC);
	`)
	if err != nil {
		return fmt.Errorf("create game_sessions: %w", err)
	}
	return nil
}

func (r *SessionRepository) Close() error {
	return r.db.Close()
}

func (r *SessionRepository) Create(ctx context.Context, rec domain.NewGameSession, completedAt time.Time) (domain.GameSession, error) {
	var p2 sql.NullInt64
	if rec.Player2Score != nil {
		p2 = sql.NullInt64{Int64: int64(*rec.Player2Score), Valid: true}
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO game_sessions (mode, difficulty, player1_score, player2_score, completed_at)
		VALUES (?, ?, ?, ?, ?)`,
		string(rec.Mode), string(rec.Difficulty), rec.Player1Score, p2, completedAt.UnixNano(),
	)
	if err != nil {
		return domain.GameSession{}, fmt.Errorf("insert game session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.GameSession{}, fmt.Errorf("insert game session id: %w", err)
	}

	stored := domain.GameSession{
		ID:           id,
		Mode:         rec.Mode,
		Difficulty:   rec.Difficulty,
		Player1Score: rec.Player1Score,
		CompletedAt:  time.Unix(0, completedAt.UnixNano()).UTC(),
	}
	if p2.Valid {
		stored.Player2Score = domain.IntPtr(int(p2.Int64))
	}
	return stored, nil
}

func (r *SessionRepository) Recent(ctx context.Context, limit int) ([]domain.GameSession, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, mode, difficulty, player1_score, player2_score, completed_at
		FROM game_sessions
		ORDER BY completed_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query game sessions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.GameSession, 0, limit)
	for rows.Next() {
		var (
			s           domain.GameSession
			mode, diff  string
			p2          sql.NullInt64
			completedAt int64
		)
		if err := rows.Scan(&s.ID, &mode, &diff, &s.Player1Score, &p2, &completedAt); err != nil {
			return nil, fmt.Errorf("scan game session: %w", err)
		}
		s.Mode = domain.Mode(mode)
		s.Difficulty = domain.Difficulty(diff)
		if p2.Valid {
			s.Player2Score = domain.IntPtr(int(p2.Int64))
		}
		s.CompletedAt = time.Unix(0, completedAt).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}
