package app

import (
	"time"

	"ordinal-quest-service/internal/domain"
)

// GameConfig holds the timing of a session. All delays are consumed in Tick steps.
type GameConfig struct {
	Rounds      int
	RoundTime   time.Duration
	Tick        time.Duration
	ReadyDelay  time.Duration
	SettleDelay time.Duration
}

// DefaultGameConfig mirrors the classroom defaults: five rounds of ten seconds.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		Rounds:      5,
		RoundTime:   10 * time.Second,
		Tick:        100 * time.Millisecond,
		ReadyDelay:  time.Second,
		SettleDelay: 1500 * time.Millisecond,
	}
}

func (c GameConfig) withDefaults() GameConfig {
	def := DefaultGameConfig()
	if c.Rounds <= 0 {
		c.Rounds = def.Rounds
	}
	if c.RoundTime <= 0 {
		c.RoundTime = def.RoundTime
	}
	if c.Tick <= 0 {
		c.Tick = def.Tick
	}
	if c.ReadyDelay < 0 {
		c.ReadyDelay = 0
	}
	if c.SettleDelay < 0 {
		c.SettleDelay = 0
	}
	return c
}

// CueSink receives audio cues in the order the state machine emits them.
type CueSink interface {
	Cue(domain.Cue)
}

// CueFunc adapts a function to CueSink.
type CueFunc func(domain.Cue)

func (f CueFunc) Cue(c domain.Cue) { f(c) }

type discardCues struct{}

func (discardCues) Cue(domain.Cue) {}

// AnswerResult reports what happened to a submitted answer.
type AnswerResult struct {
	Accepted bool `json:"accepted"`
	Correct  bool `json:"correct"`
	Round    int  `json:"round"`
}

// Snapshot is a read-only view of the session for the presentation layer.
type Snapshot struct {
	GameID       string               `json:"gameId"`
	Mode         domain.Mode          `json:"mode"`
	Difficulty   domain.Difficulty    `json:"difficulty"`
	State        domain.GameState     `json:"state"`
	Round        int                  `json:"round"`
	TotalRounds  int                  `json:"totalRounds"`
	TimeLeft     float64              `json:"timeLeft"`
	RoundTime    float64              `json:"roundTime"`
	Question     *domain.Question     `json:"question,omitempty"`
	QuestionText string               `json:"questionText,omitempty"`
	Players      []domain.PlayerState `json:"players"`
}

// Game is the round state machine of one session. It is not safe for concurrent use:
// ticks and answers must be delivered from a single goroutine (see Runner).
type Game struct {
	id         string
	mode       domain.Mode
	difficulty domain.Difficulty
	cfg        GameConfig
	questions  []domain.Question
	cues       CueSink

	state    domain.GameState
	round    int
	timeLeft time.Duration
	waited   time.Duration
	players  [2]domain.PlayerState
}

// NewGame builds a session in the ready state of its first round. A nil sink discards cues.
func NewGame(id string, mode domain.Mode, difficulty domain.Difficulty, questions []domain.Question, cfg GameConfig, cues CueSink) *Game {
	if cues == nil {
		cues = discardCues{}
	}
	cfg = cfg.withDefaults()
	g := &Game{
		id:         id,
		mode:       mode,
		difficulty: difficulty,
		cfg:        cfg,
		questions:  questions,
		cues:       cues,
		state:      domain.StateReady,
		timeLeft:   cfg.RoundTime,
	}
	if len(questions) == 0 {
		g.state = domain.StateFinished
		return g
	}
	g.enterReady()
	return g
}

func (g *Game) ID() string { return g.id }
func (g *Game) Mode() domain.Mode { return g.mode }
func (g *Game) State() domain.GameState { return g.state }
func (g *Game) Round() int { return g.round }
func (g *Game) TimeLeft() time.Duration { return g.timeLeft }
func (g *Game) Finished() bool { return g.state == domain.StateFinished }
func (g *Game) Config() GameConfig { return g.cfg }
func (g *Game) Questions() []domain.Question { return g.questions }

// Player returns a copy of the seat state.
func (g *Game) Player(p domain.Player) domain.PlayerState {
	if p != domain.Player1 && p != domain.Player2 {
		return domain.PlayerState{}
	}
	return g.players[p-1]
}

// Tick advances logical time by one step and reports whether the state changed.
func (g *Game) Tick() bool {
	switch g.state {
	case domain.StateReady:
		g.waited += g.cfg.Tick
		if g.waited >= g.cfg.ReadyDelay {
			g.startRound()
			return true
		}
	case domain.StatePlaying:
		g.timeLeft -= g.cfg.Tick
		if g.timeLeft <= 0 {
			g.timeLeft = 0
			g.endRound()
			return true
		}
	case domain.StateRoundEnd:
		g.waited += g.cfg.Tick
		if g.waited >= g.cfg.SettleDelay {
			g.nextRound()
			return true
		}
	}
	return false
}

// Answer submits player's choice for the round currently being played.
func (g *Game) Answer(p domain.Player, index int) AnswerResult {
	return g.AnswerInRound(g.round, p, index)
}

// AnswerInRound ignores answers for any round other than the one in play, answers from seats
// not in the session, and repeat answers from a seat that already answered.
func (g *Game) AnswerInRound(round int, p domain.Player, index int) AnswerResult {
	if g.state != domain.StatePlaying || round != g.round {
		return AnswerResult{Round: g.round}
	}
	if p != domain.Player1 && p != domain.Player2 {
		return AnswerResult{Round: g.round}
	}
	if int(p) > g.mode.Players() {
		return AnswerResult{Round: g.round}
	}
	seat := &g.players[p-1]
	if seat.HasAnswered {
		return AnswerResult{Round: g.round}
	}

	correct := index == g.questions[g.round].TargetIndex
	seat.HasAnswered = true
	seat.IsCorrect = &correct
	if correct {
		seat.Score++
	}
	kind := domain.CueWrong
	if correct {
		kind = domain.CueCorrect
	}
	g.cues.Cue(domain.Cue{Kind: kind, Player: p, Round: g.round})

	res := AnswerResult{Accepted: true, Correct: correct, Round: g.round}
	if g.allAnswered() {
		g.endRound()
	}
	return res
}

// Result returns the record to persist and the outcome once the session is finished.
func (g *Game) Result() (domain.NewGameSession, Outcome, bool) {
	if g.state != domain.StateFinished {
		return domain.NewGameSession{}, Outcome{}, false
	}
	rec := domain.NewGameSession{
		Mode:         g.mode,
		Difficulty:   g.difficulty,
		Player1Score: g.players[0].Score,
	}
	if g.mode == domain.ModeDual {
		rec.Player2Score = domain.IntPtr(g.players[1].Score)
	}
	return rec, Evaluate(g.mode, rec.Player1Score, rec.Player2Score, len(g.questions)), true
}

func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		GameID:      g.id,
		Mode:        g.mode,
		Difficulty:  g.difficulty,
		State:       g.state,
		Round:       g.round,
		TotalRounds: len(g.questions),
		TimeLeft:    g.timeLeft.Seconds(),
		RoundTime:   g.cfg.RoundTime.Seconds(),
		Players:     make([]domain.PlayerState, 0, g.mode.Players()),
	}
	for i := 0; i < g.mode.Players(); i++ {
		snap.Players = append(snap.Players, g.players[i])
	}
	if g.round < len(g.questions) {
		q := g.questions[g.round]
		snap.Question = &q
		snap.QuestionText = QuestionText(q)
	}
	return snap
}

func (g *Game) enterReady() {
	g.state = domain.StateReady
	g.waited = 0
	if g.cfg.ReadyDelay == 0 {
		g.startRound()
	}
}

func (g *Game) startRound() {
	g.state = domain.StatePlaying
	g.waited = 0
	g.timeLeft = g.cfg.RoundTime
	for i := range g.players {
		g.players[i].HasAnswered = false
		g.players[i].IsCorrect = nil
	}
	g.cues.Cue(domain.Cue{Kind: domain.CueSpeak, Text: SpokenText(g.questions[g.round]), Round: g.round})
}

func (g *Game) endRound() {
	g.state = domain.StateRoundEnd
	g.waited = 0
	g.cues.Cue(domain.Cue{Kind: domain.CueCancel, Round: g.round})
	if g.cfg.SettleDelay == 0 {
		g.nextRound()
	}
}

func (g *Game) nextRound() {
	if g.round+1 >= len(g.questions) {
		g.state = domain.StateFinished
		return
	}
	g.round++
	g.enterReady()
}

func (g *Game) allAnswered() bool {
	for i := 0; i < g.mode.Players(); i++ {
		if !g.players[i].HasAnswered {
			return false
		}
	}
	return true
}
