package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ordinal-quest-service/internal/domain"
)

type fakeRecorder struct {
	mu    sync.Mutex
	calls []domain.NewGameSession
	err   error
}

func (r *fakeRecorder) Record(_ context.Context, rec domain.NewGameSession) (domain.GameSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, rec)
	if r.err != nil {
		return domain.GameSession{}, r.err
	}
	return domain.GameSession{ID: int64(len(r.calls)), Mode: rec.Mode, Difficulty: rec.Difficulty, Player1Score: rec.Player1Score, Player2Score: rec.Player2Score}, nil
}

func (r *fakeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func manualTicker(ch chan time.Time) TickerFunc {
	return func(time.Duration) (<-chan time.Time, func()) {
		return ch, func() {}
	}
}

// drive plays a runner to completion: it ticks whenever the runner is idle and answers each
// round through answer, which returns the index to submit per player.
func drive(t *testing.T, r *Runner, ticks chan time.Time, answer func(round int, q domain.Question) map[domain.Player]int) *FinalResult {
	t.Helper()
	ctx := context.Background()
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()

	answered := map[int]bool{}
	var result *FinalResult
	deadline := time.After(5 * time.Second)
	for result == nil {
		select {
		case u, ok := <-r.Updates():
			if !ok {
				t.Fatalf("updates closed without a result")
			}
			if u.Result != nil {
				result = u.Result
				continue
			}
			if u.Snapshot != nil && u.Snapshot.State == domain.StatePlaying && !answered[u.Snapshot.Round] {
				answered[u.Snapshot.Round] = true
				for player, index := range answer(u.Snapshot.Round, *u.Snapshot.Question) {
					if err := r.SubmitForRound(ctx, u.Snapshot.Round, player, index); err != nil {
						t.Fatalf("submit: %v", err)
					}
				}
			}
		case ticks <- time.Now():
		case <-deadline:
			t.Fatalf("game did not finish in time")
		}
	}
	for range r.Updates() {
	}
	if err := <-errCh; err != nil {
		t.Fatalf("run: %v", err)
	}
	return result
}

func TestRunnerSinglePlayerScenario(t *testing.T) {
	recorder := &fakeRecorder{}
	game := NewGame("g-single", domain.ModeSingle, domain.DifficultyWarmup, fixedQuestions(0, 1, 2, 3, 4), DefaultGameConfig(), nil)
	ticks := make(chan time.Time)
	runner := NewRunnerWithTicker(game, recorder, manualTicker(ticks))

	result := drive(t, runner, ticks, func(round int, q domain.Question) map[domain.Player]int {
		if round < 3 {
			return map[domain.Player]int{domain.Player1: q.TargetIndex}
		}
		if round == 3 {
			return map[domain.Player]int{domain.Player1: q.TargetIndex + 1}
		}
		return nil // round 5 times out
	})

	if recorder.count() != 1 {
		t.Fatalf("expected exactly one record, got %d", recorder.count())
	}
	if !result.Saved || result.Record == nil {
		t.Fatalf("expected saved result, got %+v", result)
	}
	if result.Session.Player1Score != 3 || result.Session.Player2Score != nil {
		t.Fatalf("expected player1Score 3 and no player2Score, got %+v", result.Session)
	}
	if result.Outcome.Message != "Great Job!" || !result.Outcome.Celebrate {
		t.Fatalf("unexpected outcome %+v", result.Outcome)
	}
}

func TestRunnerDualPlayerScenario(t *testing.T) {
	recorder := &fakeRecorder{}
	game := NewGame("g-dual", domain.ModeDual, domain.DifficultyAdvanced, fixedQuestions(6, 5, 4, 3, 2), DefaultGameConfig(), nil)
	ticks := make(chan time.Time)
	runner := NewRunnerWithTicker(game, recorder, manualTicker(ticks))

	result := drive(t, runner, ticks, func(round int, q domain.Question) map[domain.Player]int {
		p2 := q.TargetIndex
		if round >= 2 {
			p2 = -1
		}
		return map[domain.Player]int{domain.Player1: q.TargetIndex, domain.Player2: p2}
	})

	if result.Session.Player1Score != 5 || result.Session.Player2Score == nil || *result.Session.Player2Score != 2 {
		t.Fatalf("expected 5 to 2, got %+v", result.Session)
	}
	if result.Outcome.Message != "Player 1 Wins!" {
		t.Fatalf("expected player 1 to win, got %q", result.Outcome.Message)
	}
	if recorder.count() != 1 {
		t.Fatalf("expected exactly one record, got %d", recorder.count())
	}
}

func TestRunnerSurfacesSaveFailure(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("db down")}
	game := NewGame("g-fail", domain.ModeSingle, domain.DifficultyWarmup, fixedQuestions(0), DefaultGameConfig(), nil)
	ticks := make(chan time.Time)
	runner := NewRunnerWithTicker(game, recorder, manualTicker(ticks))

	result := drive(t, runner, ticks, func(int, domain.Question) map[domain.Player]int {
		return map[domain.Player]int{domain.Player1: 0}
	})
	if result.Saved || result.SaveError == "" {
		t.Fatalf("expected save failure to be surfaced, got %+v", result)
	}
	if result.Session.Player1Score != 1 {
		t.Fatalf("expected game to complete with score 1, got %d", result.Session.Player1Score)
	}
}

func TestRunnerCancelDiscardsSession(t *testing.T) {
	recorder := &fakeRecorder{}
	game := NewGame("g-cancel", domain.ModeSingle, domain.DifficultyWarmup, fixedQuestions(0, 0), DefaultGameConfig(), nil)
	ticks := make(chan time.Time)
	runner := NewRunnerWithTicker(game, recorder, manualTicker(ticks))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- runner.Run(ctx) }()

	<-runner.Updates()
	cancel()
	for range runner.Updates() {
	}
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if recorder.count() != 0 {
		t.Fatalf("abandoned session must not be recorded, got %d records", recorder.count())
	}
	if err := runner.Submit(context.Background(), domain.Player1, 0); !errors.Is(err, ErrRunnerStopped) {
		t.Fatalf("expected stopped runner, got %v", err)
	}
}
