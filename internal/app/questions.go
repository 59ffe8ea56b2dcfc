package app

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"ordinal-quest-service/internal/domain"
)

const (
	minLinearItems = 5
	maxLinearItems = 7
	gridSize       = 3
)

// QuestionGenerator produces ordinal questions from its own random source.
type QuestionGenerator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionGenerator() *QuestionGenerator {
	return NewQuestionGeneratorWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewQuestionGeneratorWithSource allows reproducible sequences in tests.
func NewQuestionGeneratorWithSource(src rand.Source) *QuestionGenerator {
	return &QuestionGenerator{rnd: rand.New(src)}
}

// Generate returns exactly count questions for the difficulty tier. Unknown tiers fall back to warmup.
func (g *QuestionGenerator) Generate(count int, difficulty domain.Difficulty) []domain.Question {
	if count <= 0 {
		return []domain.Question{}
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	questions := make([]domain.Question, 0, count)
	for i := 0; i < count; i++ {
		if difficulty == domain.DifficultyAdvanced {
			questions = append(questions, g.grid())
		} else {
			questions = append(questions, g.linear())
		}
	}
	return questions
}

func (g *QuestionGenerator) linear() domain.Question {
	total := minLinearItems + g.rnd.Intn(maxLinearItems-minLinearItems+1)
	target := g.rnd.Intn(total)
	direction := domain.DirectionLeft
	if g.rnd.Intn(2) == 1 {
		direction = domain.DirectionRight
	}
	return domain.Question{
		ID:          uuid.NewString(),
		Type:        domain.QuestionLinear,
		TargetIndex: target,
		TotalItems:  total,
		Direction:   direction,
		Description: fmt.Sprintf("Find item %d from %s", target+1, direction),
	}
}

func (g *QuestionGenerator) grid() domain.Question {
	row := g.rnd.Intn(gridSize)
	col := g.rnd.Intn(gridSize)
	return domain.Question{
		ID:          uuid.NewString(),
		Type:        domain.QuestionGrid,
		TargetIndex: row*gridSize + col,
		TotalItems:  gridSize * gridSize,
		Direction:   domain.DirectionTop,
		Rows:        gridSize,
		Cols:        gridSize,
		TargetRow:   row,
		TargetCol:   col,
		Description: fmt.Sprintf("Find Row %d, Col %d", row+1, col+1),
	}
}

// QuestionText is the short prompt shown above the play area.
func QuestionText(q domain.Question) string {
	switch q.Type {
	case domain.QuestionLinear:
		if q.Direction == domain.DirectionRight {
			return Ordinal(q.TotalItems-q.TargetIndex) + " from the right"
		}
		return Ordinal(q.TargetIndex+1) + " from the left"
	case domain.QuestionGrid:
		return fmt.Sprintf("Row %d, Column %d", q.TargetRow+1, q.TargetCol+1)
	}
	return ""
}

// SpokenText is the sentence handed to the speech cue when a round starts.
func SpokenText(q domain.Question) string {
	switch q.Type {
	case domain.QuestionLinear:
		if q.Direction == domain.DirectionRight {
			return "Find the " + Ordinal(q.TotalItems-q.TargetIndex) + " one, counting from the right"
		}
		return "Find the " + Ordinal(q.TargetIndex+1) + " one, counting from the left"
	case domain.QuestionGrid:
		return fmt.Sprintf("Find row %d, column %d", q.TargetRow+1, q.TargetCol+1)
	}
	return ""
}

// Ordinal renders n with its English suffix: 1st, 2nd, 3rd, 4th, 11th, 22nd.
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
