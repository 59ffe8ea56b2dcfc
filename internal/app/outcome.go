package app

import "ordinal-quest-service/internal/domain"

const (
	singleCelebrateAt = 3
	dualCelebrateAt   = 5
)

// Outcome is the end-of-session verdict. Celebrate depends only on the combined score,
// so a dual session can celebrate a draw and not celebrate a win.
type Outcome struct {
	Message   string        `json:"message"`
	Winner    domain.Player `json:"winner,omitempty"`
	Celebrate bool          `json:"celebrate"`
	MaxScore  int           `json:"maxScore"`
}

// Evaluate picks the verdict for the final scores of a session with maxScore rounds.
func Evaluate(mode domain.Mode, p1 int, p2 *int, maxScore int) Outcome {
	out := Outcome{MaxScore: maxScore}
	second := 0
	if p2 != nil {
		second = *p2
	}

	if mode == domain.ModeSingle {
		switch {
		case maxScore > 0 && p1 == maxScore:
			out.Message = "Amazing! Perfect Score!"
		case p1 >= singleCelebrateAt:
			out.Message = "Great Job!"
		default:
			out.Message = "Keep Practicing!"
		}
		out.Celebrate = p1 >= singleCelebrateAt
		return out
	}

	switch {
	case p1 > second:
		out.Message = "Player 1 Wins!"
		out.Winner = domain.Player1
	case second > p1:
		out.Message = "Player 2 Wins!"
		out.Winner = domain.Player2
	default:
		out.Message = "It's a Draw!"
	}
	out.Celebrate = p1+second >= dualCelebrateAt
	return out
}
