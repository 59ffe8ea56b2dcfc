package memory

import (
	"context"
	"sync"
	"time"

	"ordinal-quest-service/internal/domain"
)

// SessionRepository is an in-memory, append-only implementation of app.SessionRepository.
type SessionRepository struct {
	mu      sync.RWMutex
	nextID  int64
	records []domain.GameSession
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{nextID: 1}
}

func (r *SessionRepository) Create(_ context.Context, rec domain.NewGameSession, completedAt time.Time) (domain.GameSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := domain.GameSession{
		ID:           r.nextID,
		Mode:         rec.Mode,
		Difficulty:   rec.Difficulty,
		Player1Score: rec.Player1Score,
		CompletedAt:  completedAt,
	}
	if rec.Player2Score != nil {
		stored.Player2Score = domain.IntPtr(*rec.Player2Score)
	}
	r.nextID++
	r.records = append(r.records, stored)
	return stored, nil
}

// Recent walks the log backwards. Records are appended in completion order, so the tail is
// the most recent; equal timestamps keep insertion order.
func (r *SessionRepository) Recent(_ context.Context, limit int) ([]domain.GameSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.records) {
		limit = len(r.records)
	}
	out := make([]domain.GameSession, 0, limit)
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.records[i])
	}
	return out, nil
}
