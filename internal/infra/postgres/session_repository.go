package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"ordinal-quest-service/internal/domain"
)

// SessionRepository stores finished sessions in the game_sessions table.
type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, rec domain.NewGameSession, completedAt time.Time) (domain.GameSession, error) {
	var p2 sql.NullInt64
	if rec.Player2Score != nil {
		p2 = sql.NullInt64{Int64: int64(*rec.Player2Score), Valid: true}
	}

	stored := domain.GameSession{
		Mode:         rec.Mode,
		Difficulty:   rec.Difficulty,
		Player1Score: rec.Player1Score,
	}
	if rec.Player2Score != nil {
		stored.Player2Score = domain.IntPtr(*rec.Player2Score)
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO game_sessions (mode, difficulty, player1_score, player2_score, completed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, completed_at`,
		string(rec.Mode), string(rec.Difficulty), rec.Player1Score, p2, completedAt,
	).Scan(&stored.ID, &stored.CompletedAt)
	if err != nil {
		return domain.GameSession{}, fmt.Errorf("insert game session: %w", err)
	}
	stored.CompletedAt = stored.CompletedAt.UTC()
	return stored, nil
}

func (r *SessionRepository) Recent(ctx context.Context, limit int) ([]domain.GameSession, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, mode, difficulty, player1_score, player2_score, completed_at
		FROM game_sessions
		ORDER BY completed_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query game sessions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.GameSession, 0, limit)
	for rows.Next() {
		var (
			s          domain.GameSession
			mode, diff string
			p2         sql.NullInt64
		)
		if err := rows.Scan(&s.ID, &mode, &diff, &s.Player1Score, &p2, &s.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan game session: %w", err)
		}
		s.Mode = domain.Mode(mode)
		s.Difficulty = domain.Difficulty(diff)
		if p2.Valid {
			s.Player2Score = domain.IntPtr(int(p2.Int64))
		}
		s.CompletedAt = s.CompletedAt.UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read game sessions: %w", err)
	}
	return out, nil
}
