package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ordinal-quest-service/internal/domain"
)

// SessionRepository is the append-only log of finished sessions (memory, sqlite, postgres, ...).
type SessionRepository interface {
	Create(ctx context.Context, rec domain.NewGameSession, completedAt time.Time) (domain.GameSession, error)
	Recent(ctx context.Context, limit int) ([]domain.GameSession, error)
}

// GameRegistry tracks sessions currently being played.
type GameRegistry interface {
	Register(gameID string)
	Unregister(gameID string)
	Count() int
}

// ServiceConfig tunes a GameService. Zero values fall back to defaults.
type ServiceConfig struct {
	Game                GameConfig
	DefaultHistoryLimit int
	MaxHistoryLimit     int
}

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// GameService contains the session use cases: starting games, recording results and
// reading history.
type GameService struct {
	sessions  SessionRepository
	live      GameRegistry
	generator *QuestionGenerator
	cfg       ServiceConfig
	now       func() time.Time
}

func NewGameService(sessions SessionRepository, live GameRegistry, cfg ServiceConfig) *GameService {
	return NewGameServiceWithClock(sessions, live, cfg, NewQuestionGenerator(), time.Now)
}

// NewGameServiceWithClock is test-only for deterministic questions and timestamps.
func NewGameServiceWithClock(sessions SessionRepository, live GameRegistry, cfg ServiceConfig, generator *QuestionGenerator, now func() time.Time) *GameService {
	cfg.Game = cfg.Game.withDefaults()
	if cfg.DefaultHistoryLimit <= 0 {
		cfg.DefaultHistoryLimit = defaultHistoryLimit
	}
	if cfg.MaxHistoryLimit <= 0 {
		cfg.MaxHistoryLimit = maxHistoryLimit
	}
	if cfg.DefaultHistoryLimit > cfg.MaxHistoryLimit {
		cfg.DefaultHistoryLimit = cfg.MaxHistoryLimit
	}
	return &GameService{
		sessions:  sessions,
		live:      live,
		generator: generator,
		cfg:       cfg,
		now:       now,
	}
}

// Start generates the questions of a new session and returns its runner. The caller must
// invoke Release with the runner's game ID when the session ends.
func (s *GameService) Start(mode domain.Mode, difficulty domain.Difficulty) (*Runner, error) {
	if !mode.Valid() {
		return nil, &domain.ValidationError{Field: "mode", Message: `expected "single" or "dual"`, Err: domain.ErrInvalidMode}
	}
	if !difficulty.Valid() {
		return nil, &domain.ValidationError{Field: "difficulty", Message: `expected "warmup" or "advanced"`, Err: domain.ErrInvalidDifficulty}
	}
	questions := s.generator.Generate(s.cfg.Game.Rounds, difficulty)
	game := NewGame(uuid.NewString(), mode, difficulty, questions, s.cfg.Game, nil)
	if s.live != nil {
		s.live.Register(game.ID())
	}
	return NewRunner(game, s), nil
}

// Release drops a session from the live registry.
func (s *GameService) Release(gameID string) {
	if s.live != nil {
		s.live.Unregister(gameID)
	}
}

// LiveGames reports how many sessions are in progress.
func (s *GameService) LiveGames() int {
	if s.live == nil {
		return 0
	}
	return s.live.Count()
}

// Record validates and stores a finished session.
func (s *GameService) Record(ctx context.Context, rec domain.NewGameSession) (domain.GameSession, error) {
	if err := rec.Validate(); err != nil {
		return domain.GameSession{}, err
	}
	stored, err := s.sessions.Create(ctx, rec, s.now().UTC())
	if err != nil {
		return domain.GameSession{}, fmt.Errorf("%w: %w", domain.ErrRecordNotSaved, err)
	}
	return stored, nil
}

// Recent returns up to limit records, most recent first. A non-positive limit selects the
// default bound and larger limits are capped.
func (s *GameService) Recent(ctx context.Context, limit int) ([]domain.GameSession, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultHistoryLimit
	}
	if limit > s.cfg.MaxHistoryLimit {
		limit = s.cfg.MaxHistoryLimit
	}
	records, err := s.sessions.Recent(ctx, limit)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrHistoryUnavailable, err)
	}
	if records == nil {
		records = []domain.GameSession{}
	}
	return records, nil
}
