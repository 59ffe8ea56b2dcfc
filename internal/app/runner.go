package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"ordinal-quest-service/internal/domain"
)

// Recorder persists a finished session.
type Recorder interface {
	Record(ctx context.Context, rec domain.NewGameSession) (domain.GameSession, error)
}

// FinalResult is published once when the session reaches finished.
type FinalResult struct {
	Session   domain.NewGameSession `json:"session"`
	Outcome   Outcome               `json:"outcome"`
	Record    *domain.GameSession   `json:"record,omitempty"`
	Saved     bool                  `json:"saved"`
	SaveError string                `json:"saveError,omitempty"`
}

// Update is one outbound message of a running session. Exactly one field is set.
type Update struct {
	Snapshot *Snapshot    `json:"snapshot,omitempty"`
	Cue      *domain.Cue  `json:"cue,omitempty"`
	Result   *FinalResult `json:"result,omitempty"`
}

type answerMsg struct {
	round  int
	player domain.Player
	index  int
	inPlay bool
}

// TickerFunc starts a ticker and returns its channel and stop function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// ErrRunnerStopped is returned by Submit once the session loop has exited.
var ErrRunnerStopped = errors.New("game runner stopped")

// Runner is the event loop of one live session: ticks and answers are delivered to the
// Game from a single goroutine, and the result is recorded exactly once.
type Runner struct {
	game          *Game
	recorder      Recorder
	ticker        TickerFunc
	recordTimeout time.Duration

	answers chan answerMsg
	updates chan Update
	done    chan struct{}
	pending []domain.Cue
}

func NewRunner(game *Game, recorder Recorder) *Runner {
	return NewRunnerWithTicker(game, recorder, realTicker)
}

// NewRunnerWithTicker lets tests drive time by hand.
func NewRunnerWithTicker(game *Game, recorder Recorder, ticker TickerFunc) *Runner {
	r := &Runner{
		game:          game,
		recorder:      recorder,
		ticker:        ticker,
		recordTimeout: 5 * time.Second,
		answers:       make(chan answerMsg, 8),
		updates:       make(chan Update, 32),
		done:          make(chan struct{}),
	}
	game.cues = CueFunc(func(c domain.Cue) { r.pending = append(r.pending, c) })
	return r
}

func (r *Runner) GameID() string { return r.game.ID() }

// Updates is closed when Run returns.
func (r *Runner) Updates() <-chan Update { return r.updates }

// Submit queues an answer for the round in play.
func (r *Runner) Submit(ctx context.Context, player domain.Player, index int) error {
	return r.send(ctx, answerMsg{player: player, index: index, inPlay: true})
}

// SubmitForRound queues an answer that only counts if round is still the one in play.
func (r *Runner) SubmitForRound(ctx context.Context, round int, player domain.Player, index int) error {
	return r.send(ctx, answerMsg{round: round, player: player, index: index})
}

func (r *Runner) send(ctx context.Context, msg answerMsg) error {
	select {
	case <-r.done:
		return ErrRunnerStopped
	default:
	}
	select {
	case r.answers <- msg:
		return nil
	case <-r.done:
		return ErrRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drives the session until it finishes or ctx is cancelled. A cancelled session is
// discarded without recording.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.updates)
	defer close(r.done)

	ticks, stop := r.ticker(r.game.Config().Tick)
	defer stop()

	if err := r.flush(ctx, true); err != nil {
		return err
	}
	for !r.game.Finished() {
		select {
		case <-ctx.Done():
			log.Debug().Str("game", r.game.ID()).Int("round", r.game.Round()).Msg("session abandoned")
			return ctx.Err()
		case <-ticks:
			changed := r.game.Tick()
			if err := r.flush(ctx, changed || r.game.State() == domain.StatePlaying); err != nil {
				return err
			}
		case msg := <-r.answers:
			var res AnswerResult
			if msg.inPlay {
				res = r.game.Answer(msg.player, msg.index)
			} else {
				res = r.game.AnswerInRound(msg.round, msg.player, msg.index)
			}
			if err := r.flush(ctx, res.Accepted); err != nil {
				return err
			}
		}
	}

	return r.finish(ctx)
}

func (r *Runner) finish(ctx context.Context) error {
	rec, outcome, _ := r.game.Result()
	result := &FinalResult{Session: rec, Outcome: outcome}

	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.recordTimeout)
	defer cancel()
	if r.recorder != nil {
		stored, err := r.recorder.Record(recordCtx, rec)
		if err != nil {
			log.Warn().Err(err).Str("game", r.game.ID()).Msg("record finished game")
			result.SaveError = err.Error()
		} else {
			result.Record = &stored
			result.Saved = true
		}
	}
	return r.emit(ctx, Update{Result: result})
}

// flush publishes queued cues, then the snapshot when withSnapshot is set.
func (r *Runner) flush(ctx context.Context, withSnapshot bool) error {
	cues := r.pending
	r.pending = nil
	for i := range cues {
		if err := r.emit(ctx, Update{Cue: &cues[i]}); err != nil {
			return err
		}
	}
	if !withSnapshot {
		return nil
	}
	snap := r.game.Snapshot()
	return r.emit(ctx, Update{Snapshot: &snap})
}

func (r *Runner) emit(ctx context.Context, u Update) error {
	select {
	case r.updates <- u:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
