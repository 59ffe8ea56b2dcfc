package domain

import "time"

// Mode selects how many players share a session.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeDual   Mode = "dual"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeSingle || m == ModeDual
}

// Players is the number of answers required to close a round early.
func (m Mode) Players() int {
	if m == ModeDual {
		return 2
	}
	return 1
}

// Difficulty selects the question shape.
type Difficulty string

const (
	DifficultyWarmup   Difficulty = "warmup"
	DifficultyAdvanced Difficulty = "advanced"
)

func (d Difficulty) Valid() bool {
	return d == DifficultyWarmup || d == DifficultyAdvanced
}

type QuestionType string

const (
	QuestionLinear QuestionType = "linear"
	QuestionGrid   QuestionType = "grid"
)

// Direction is the counting origin shown to the player. It never affects TargetIndex.
type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
	DirectionTop   Direction = "top"
)

// Player identifies a seat in the session.
type Player int

const (
	Player1 Player = 1
	Player2 Player = 2
)

// GameState is the round state machine position.
type GameState string

const (
	StateReady    GameState = "ready"
	StatePlaying  GameState = "playing"
	StateRoundEnd GameState = "round-end"
	StateFinished GameState = "finished"
)

// CueKind is an audio cue emitted by the state machine.
type CueKind string

const (
	CueSpeak   CueKind = "speak"
	CueCorrect CueKind = "correct"
	CueWrong   CueKind = "wrong"
	CueCancel  CueKind = "cancel"
)

// Cue is delivered to the presentation layer; Text is set for CueSpeak only.
type Cue struct {
	Kind   CueKind `json:"kind"`
	Text   string  `json:"text,omitempty"`
	Player Player  `json:"player,omitempty"`
	Round  int     `json:"round"`
}

// Question is one generated ordinal prompt. Rows, Cols, TargetRow and TargetCol are only
// meaningful for grid questions.
type Question struct {
	ID          string       `json:"id"`
	Type        QuestionType `json:"type"`
	TargetIndex int          `json:"targetIndex"`
	TotalItems  int          `json:"totalItems"`
	Direction   Direction    `json:"direction"`
	Rows        int          `json:"rows,omitempty"`
	Cols        int          `json:"cols,omitempty"`
	TargetRow   int          `json:"targetRow"`
	TargetCol   int          `json:"targetCol"`
	Description string       `json:"description"`
}

// Valid checks the index invariants of q.
func (q Question) Valid() bool {
	if q.TargetIndex < 0 || q.TargetIndex >= q.TotalItems {
		return false
	}
	if q.Type == QuestionGrid {
		return q.Rows*q.Cols == q.TotalItems &&
			q.TargetRow >= 0 && q.TargetRow < q.Rows &&
			q.TargetCol >= 0 && q.TargetCol < q.Cols &&
			q.TargetIndex == q.TargetRow*q.Cols+q.TargetCol
	}
	return q.Type == QuestionLinear
}

// PlayerState tracks one seat during a session. IsCorrect is nil until the player answers.
type PlayerState struct {
	Score       int   `json:"score"`
	HasAnswered bool  `json:"hasAnswered"`
	IsCorrect   *bool `json:"isCorrect"`
}

// NewGameSession is the shape submitted when a session finishes.
type NewGameSession struct {
	Mode         Mode       `json:"mode"`
	Difficulty   Difficulty `json:"difficulty"`
	Player1Score int        `json:"player1Score"`
	Player2Score *int       `json:"player2Score"`
}

// Validate returns a *ValidationError naming the first offending field.
func (s NewGameSession) Validate() error {
	if !s.Mode.Valid() {
		return invalid("mode", `expected "single" or "dual"`, ErrInvalidMode)
	}
	if !s.Difficulty.Valid() {
		return invalid("difficulty", `expected "warmup" or "advanced"`, ErrInvalidDifficulty)
	}
	if s.Player1Score < 0 {
		return invalid("player1Score", "must not be negative", ErrInvalidScore)
	}
	if s.Player2Score == nil && s.Mode == ModeDual {
		return invalid("player2Score", "required in dual mode", ErrInvalidScore)
	}
	if s.Player2Score != nil {
		if s.Mode == ModeSingle {
			return invalid("player2Score", "must be absent in single mode", ErrInvalidScore)
		}
		if *s.Player2Score < 0 {
			return invalid("player2Score", "must not be negative", ErrInvalidScore)
		}
	}
	return nil
}

// GameSession is a stored, immutable record of a finished session.
type GameSession struct {
	ID           int64      `json:"id"`
	Mode         Mode       `json:"mode"`
	Difficulty   Difficulty `json:"difficulty"`
	Player1Score int        `json:"player1Score"`
	Player2Score *int       `json:"player2Score"`
	CompletedAt  time.Time  `json:"completedAt"`
}

// IntPtr is a convenience for optional scores.
func IntPtr(v int) *int {
	return &v
}
