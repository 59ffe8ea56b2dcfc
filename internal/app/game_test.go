package app

import (
	"testing"
	"time"

	"ordinal-quest-service/internal/domain"
)

type cueLog struct {
	cues []domain.Cue
}

func (l *cueLog) Cue(c domain.Cue) { l.cues = append(l.cues, c) }

func (l *cueLog) kinds() []domain.CueKind {
	out := make([]domain.CueKind, 0, len(l.cues))
	for _, c := range l.cues {
		out = append(out, c.Kind)
	}
	return out
}

func fixedQuestions(targets ...int) []domain.Question {
	questions := make([]domain.Question, 0, len(targets))
	for i, target := range targets {
		questions = append(questions, domain.Question{
			ID:          string(rune('a' + i)),
			Type:        domain.QuestionLinear,
			TargetIndex: target,
			TotalItems:  7,
			Direction:   domain.DirectionLeft,
		})
	}
	return questions
}

func newTestGame(mode domain.Mode, questions []domain.Question) (*Game, *cueLog) {
	cues := &cueLog{}
	return NewGame("game-1", mode, domain.DifficultyWarmup, questions, DefaultGameConfig(), cues), cues
}

func tickUntil(t *testing.T, g *Game, state domain.GameState) int {
	t.Helper()
	for i := 1; i <= 1000; i++ {
		g.Tick()
		if g.State() == state {
			return i
		}
	}
	t.Fatalf("game never reached %s, stuck in %s", state, g.State())
	return 0
}

func TestReadyDelayBeforePlaying(t *testing.T) {
	g, cues := newTestGame(domain.ModeSingle, fixedQuestions(1, 2))
	if g.State() != domain.StateReady {
		t.Fatalf("expected ready, got %s", g.State())
	}
	if n := tickUntil(t, g, domain.StatePlaying); n != 10 {
		t.Fatalf("expected 10 ticks of presentation delay, got %d", n)
	}
	if g.TimeLeft() != 10*time.Second {
		t.Fatalf("expected full budget, got %s", g.TimeLeft())
	}
	if len(cues.cues) != 1 || cues.cues[0].Kind != domain.CueSpeak || cues.cues[0].Text == "" {
		t.Fatalf("expected exactly one speak cue, got %+v", cues.cues)
	}
}

func TestTimerReachesExactlyZero(t *testing.T) {
	g, _ := newTestGame(domain.ModeSingle, fixedQuestions(1, 2))
	tickUntil(t, g, domain.StatePlaying)

	for i := 0; i < 99; i++ {
		g.Tick()
	}
	if g.State() != domain.StatePlaying {
		t.Fatalf("expected still playing after 99 ticks, got %s", g.State())
	}
	if g.TimeLeft() != 100*time.Millisecond {
		t.Fatalf("expected 0.1s left, got %s", g.TimeLeft())
	}

	g.Tick()
	if g.State() != domain.StateRoundEnd {
		t.Fatalf("expected round-end after 100 ticks, got %s", g.State())
	}
	if g.TimeLeft() != 0 || g.Snapshot().TimeLeft != 0.0 {
		t.Fatalf("expected exactly zero, got %s", g.TimeLeft())
	}

	g.Tick()
	if g.TimeLeft() < 0 {
		t.Fatalf("timer went negative: %s", g.TimeLeft())
	}
}

func TestSingleModeEndsRoundOnAnswer(t *testing.T) {
	g, cues := newTestGame(domain.ModeSingle, fixedQuestions(3, 0))
	tickUntil(t, g, domain.StatePlaying)
	g.Tick()

	res := g.Answer(domain.Player1, 3)
	if !res.Accepted || !res.Correct {
		t.Fatalf("expected accepted correct answer, got %+v", res)
	}
	if g.State() != domain.StateRoundEnd {
		t.Fatalf("expected round-end immediately, got %s", g.State())
	}
	if g.TimeLeft() <= 0 {
		t.Fatalf("expected remaining time to be kept, got %s", g.TimeLeft())
	}
	want := []domain.CueKind{domain.CueSpeak, domain.CueCorrect, domain.CueCancel}
	if got := cues.kinds(); !equalKinds(got, want) {
		t.Fatalf("expected cues %v, got %v", want, got)
	}
}

func TestDualModeWaitsForBothPlayers(t *testing.T) {
	g, _ := newTestGame(domain.ModeDual, fixedQuestions(2, 2))
	tickUntil(t, g, domain.StatePlaying)

	g.Answer(domain.Player1, 2)
	for i := 0; i < 50; i++ {
		g.Tick()
	}
	if g.State() != domain.StatePlaying {
		t.Fatalf("expected playing while player 2 has not answered, got %s", g.State())
	}

	res := g.Answer(domain.Player2, 6)
	if !res.Accepted || res.Correct {
		t.Fatalf("expected accepted wrong answer, got %+v", res)
	}
	if g.State() != domain.StateRoundEnd {
		t.Fatalf("expected round-end once both answered, got %s", g.State())
	}
}

func TestDualModeTimesOutWithOneAnswer(t *testing.T) {
	g, _ := newTestGame(domain.ModeDual, fixedQuestions(2, 2))
	tickUntil(t, g, domain.StatePlaying)
	g.Answer(domain.Player2, 2)

	n := tickUntil(t, g, domain.StateRoundEnd)
	if n != 100 {
		t.Fatalf("expected timeout after 100 ticks, got %d", n)
	}
	if g.Player(domain.Player1).HasAnswered {
		t.Fatalf("player 1 should not have answered")
	}
	if g.Player(domain.Player2).Score != 1 {
		t.Fatalf("expected player 2 score 1, got %d", g.Player(domain.Player2).Score)
	}
}

func TestAnswerLatchedPerRound(t *testing.T) {
	g, cues := newTestGame(domain.ModeDual, fixedQuestions(4, 4))
	tickUntil(t, g, domain.StatePlaying)

	if res := g.Answer(domain.Player1, 1); !res.Accepted || res.Correct {
		t.Fatalf("expected wrong answer accepted, got %+v", res)
	}
	if res := g.Answer(domain.Player1, 4); res.Accepted {
		t.Fatalf("expected second answer ignored, got %+v", res)
	}
	if g.Player(domain.Player1).Score != 0 {
		t.Fatalf("score changed after latched answer: %d", g.Player(domain.Player1).Score)
	}
	feedback := 0
	for _, c := range cues.cues {
		if c.Kind == domain.CueCorrect || c.Kind == domain.CueWrong {
			feedback++
		}
	}
	if feedback != 1 {
		t.Fatalf("expected one feedback cue, got %d", feedback)
	}
}

func TestAnswersOutsidePlayingAreIgnored(t *testing.T) {
	g, _ := newTestGame(domain.ModeSingle, fixedQuestions(0, 0))

	if res := g.Answer(domain.Player1, 0); res.Accepted {
		t.Fatalf("expected answer during ready to be ignored")
	}
	tickUntil(t, g, domain.StatePlaying)
	g.Answer(domain.Player1, 0)
	if g.State() != domain.StateRoundEnd {
		t.Fatalf("expected round-end, got %s", g.State())
	}
	if res := g.Answer(domain.Player1, 0); res.Accepted {
		t.Fatalf("expected answer during round-end to be ignored")
	}

	tickUntil(t, g, domain.StatePlaying)
	if res := g.AnswerInRound(0, domain.Player1, 0); res.Accepted {
		t.Fatalf("expected answer for a previous round to be ignored")
	}
	if g.Player(domain.Player1).Score != 1 {
		t.Fatalf("expected score 1, got %d", g.Player(domain.Player1).Score)
	}
}

func TestSingleModeIgnoresSecondSeat(t *testing.T) {
	g, _ := newTestGame(domain.ModeSingle, fixedQuestions(1))
	tickUntil(t, g, domain.StatePlaying)

	if res := g.Answer(domain.Player2, 1); res.Accepted {
		t.Fatalf("expected player 2 to be ignored in single mode")
	}
	if res := g.Answer(domain.Player(7), 1); res.Accepted {
		t.Fatalf("expected unknown seat to be ignored")
	}
	if g.State() != domain.StatePlaying {
		t.Fatalf("expected still playing, got %s", g.State())
	}
}

func TestOutOfRangeAnswerIsIncorrect(t *testing.T) {
	g, _ := newTestGame(domain.ModeSingle, fixedQuestions(2))
	tickUntil(t, g, domain.StatePlaying)

	res := g.Answer(domain.Player1, 99)
	if !res.Accepted || res.Correct {
		t.Fatalf("expected out of range answer to count as wrong, got %+v", res)
	}
}

func TestRoundEndSettlesIntoNextRoundOrFinish(t *testing.T) {
	g, cues := newTestGame(domain.ModeSingle, fixedQuestions(0, 1))
	tickUntil(t, g, domain.StatePlaying)
	g.Answer(domain.Player1, 0)

	if n := tickUntil(t, g, domain.StateReady); n != 15 {
		t.Fatalf("expected 15 ticks of settle delay, got %d", n)
	}
	if g.Round() != 1 {
		t.Fatalf("expected round 1, got %d", g.Round())
	}
	tickUntil(t, g, domain.StatePlaying)
	if p := g.Player(domain.Player1); p.HasAnswered || p.IsCorrect != nil {
		t.Fatalf("expected answered flag cleared, got %+v", p)
	}
	g.Answer(domain.Player1, 1)
	tickUntil(t, g, domain.StateFinished)

	if g.Round() != 1 {
		t.Fatalf("finished game must stay on its last round, got %d", g.Round())
	}
	speaks := 0
	for _, c := range cues.cues {
		if c.Kind == domain.CueSpeak {
			speaks++
		}
	}
	if speaks != 2 {
		t.Fatalf("expected one speak cue per round, got %d", speaks)
	}
	if g.Tick() {
		t.Fatalf("finished game must not change on tick")
	}
}

func TestCancelPrecedesNextSpeak(t *testing.T) {
	g, cues := newTestGame(domain.ModeSingle, fixedQuestions(0, 0, 0))
	for !g.Finished() {
		g.Tick()
	}
	lastSpeak := -1
	for i, c := range cues.cues {
		if c.Kind != domain.CueSpeak {
			continue
		}
		if lastSpeak >= 0 {
			cancelled := false
			for _, between := range cues.cues[lastSpeak+1 : i] {
				if between.Kind == domain.CueCancel {
					cancelled = true
				}
			}
			if !cancelled {
				t.Fatalf("speak cue at %d not preceded by cancel", i)
			}
		}
		lastSpeak = i
	}
}

func TestResultOnlyWhenFinished(t *testing.T) {
	g, _ := newTestGame(domain.ModeDual, fixedQuestions(0))
	if _, _, ok := g.Result(); ok {
		t.Fatalf("expected no result before finished")
	}
	tickUntil(t, g, domain.StatePlaying)
	g.Answer(domain.Player1, 0)
	g.Answer(domain.Player2, 0)
	tickUntil(t, g, domain.StateFinished)

	rec, outcome, ok := g.Result()
	if !ok {
		t.Fatalf("expected result")
	}
	if rec.Player1Score != 1 || rec.Player2Score == nil || *rec.Player2Score != 1 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if outcome.Message != "It's a Draw!" {
		t.Fatalf("expected draw, got %q", outcome.Message)
	}
}

func TestNoQuestionsStartsFinished(t *testing.T) {
	g, _ := newTestGame(domain.ModeSingle, nil)
	if !g.Finished() {
		t.Fatalf("expected empty game to be finished, got %s", g.State())
	}
}

func equalKinds(a, b []domain.CueKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
