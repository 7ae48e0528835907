package session

import (
	"errors"
	"testing"
	"time"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/models"
)

func facilQuestions(n int) []models.Question {
	questions := make([]models.Question, n)
	for i := range questions {
		questions[i] = models.Question{
			ID:            uint(i + 1),
			Text:          "pergunta",
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: 0,
			Category:      models.CategorySelecoes,
			Difficulty:    models.DifficultyFacil,
		}
	}
	return questions
}

func fixedClock() func() time.Time {
	at := time.Date(2026, 6, 11, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestNewRejectsEmptyList(t *testing.T) {
	if _, err := New(nil, models.ModeTreino); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestAllCorrectAccumulatesStreakBonus(t *testing.T) {
	s, err := New(facilQuestions(3), models.ModeTreino, WithClock(fixedClock()))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s.Start()

	for i := 0; i < 3; i++ {
		if err := s.SubmitAnswer(0); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	result := s.Result()
	if result == nil {
		t.Fatalf("expected result after last submission")
	}
	// 100 + 100 + (100 + 25 streak bonus at 3)
	if result.Score != 325 {
		t.Fatalf("expected score 325, got %d", result.Score)
	}
	if result.CorrectAnswers != 3 || result.MaxStreak != 3 || result.TotalQuestions != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if s.Status() != Finished {
		t.Fatalf("expected Finished, got %v", s.Status())
	}
}

func TestIncorrectAnswerResetsStreak(t *testing.T) {
	s, _ := New(facilQuestions(4), models.ModeTreino, WithClock(fixedClock()))
	s.Start()

	var streaks []int
	answers := []int{0, 0, 1, 0} // correct, correct, wrong, correct
	for _, a := range answers {
		if err := s.SubmitAnswer(a); err != nil {
			t.Fatalf("submit: %v", err)
		}
		streaks = append(streaks, s.Streak())
	}

	want := []int{1, 2, 0, 1}
	for i := range want {
		if streaks[i] != want[i] {
			t.Fatalf("streak sequence %v, want %v", streaks, want)
		}
	}
	// never reached 3, so three plain correct answers at 100 each
	if got := s.Result().Score; got != 300 {
		t.Fatalf("expected score 300, got %d", got)
	}
}

func TestDesafioExpiryFinalizesImmediately(t *testing.T) {
	s, _ := New(facilQuestions(5), models.ModeDesafio, WithClock(fixedClock()))
	s.Start()

	if err := s.SubmitAnswer(0); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := s.SubmitAnswer(0); err != nil {
		t.Fatalf("submit: %v", err)
	}

	s.TimeExpired()

	result := s.Result()
	if result == nil {
		t.Fatalf("expected result after expiry")
	}
	if result.TotalQuestions != 5 {
		t.Fatalf("total questions must reflect the full list, got %d", result.TotalQuestions)
	}
	if result.CorrectAnswers != 2 || len(result.Answers) != 2 {
		t.Fatalf("only answered questions count: %+v", result)
	}
	// expiry on a finished session is a no-op
	s.TimeExpired()
	if got := s.Result(); got != result {
		t.Fatalf("second expiry must not replace the result")
	}
}

func TestDesafioSpeedBonus(t *testing.T) {
	s, _ := New(facilQuestions(1), models.ModeDesafio, WithClock(fixedClock()))
	s.Start()
	if err := s.SubmitAnswer(0); err != nil {
		t.Fatalf("submit: %v", err)
	}
	// full clock remaining: 100 base + 50 speed
	if got := s.Result().Score; got != 150 {
		t.Fatalf("expected 150, got %d", got)
	}
}

func TestPerQuestionExpirySubmitsSentinel(t *testing.T) {
	s, _ := New(facilQuestions(2), models.ModeDuelo, WithClock(fixedClock()))
	s.Start()

	s.TimeExpired()

	if s.Status() != InProgress {
		t.Fatalf("expiry on a non-final question must not finish the session")
	}
	if s.QuestionIndex() != 1 {
		t.Fatalf("expected advance to question 1, got %d", s.QuestionIndex())
	}
	if err := s.SubmitAnswer(0); err != nil {
		t.Fatalf("submit: %v", err)
	}
	result := s.Result()
	if len(result.Answers) != 2 {
		t.Fatalf("expected 2 answer records, got %d", len(result.Answers))
	}
	first := result.Answers[0]
	if first.SelectedAnswer != NoAnswer || first.IsCorrect {
		t.Fatalf("expired question must record the sentinel: %+v", first)
	}
}

func TestSkipOnlyInTreino(t *testing.T) {
	s, _ := New(facilQuestions(2), models.ModeDesafio, WithClock(fixedClock()))
	s.Start()
	if err := s.Skip(); !errors.Is(err, ErrSkipNotAllowed) {
		t.Fatalf("expected ErrSkipNotAllowed, got %v", err)
	}
}

func TestSkipAdvancesAndResetsStreak(t *testing.T) {
	s, _ := New(facilQuestions(3), models.ModeTreino, WithClock(fixedClock()))
	s.Start()

	if err := s.SubmitAnswer(0); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := s.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if s.Streak() != 0 {
		t.Fatalf("skip must reset the streak, got %d", s.Streak())
	}
	if err := s.Skip(); err != nil {
		t.Fatalf("skip last: %v", err)
	}
	result := s.Result()
	if result == nil || len(result.Answers) != 1 {
		t.Fatalf("skipped questions must not record answers: %+v", result)
	}
}

func TestInvalidAnswerIndexRejected(t *testing.T) {
	s, _ := New(facilQuestions(1), models.ModeTreino, WithClock(fixedClock()))
	s.Start()
	if err := s.SubmitAnswer(4); !errors.Is(err, ErrInvalidAnswer) {
		t.Fatalf("expected ErrInvalidAnswer, got %v", err)
	}
	if err := s.SubmitAnswer(-2); !errors.Is(err, ErrInvalidAnswer) {
		t.Fatalf("expected ErrInvalidAnswer, got %v", err)
	}
}

func TestSubmitAfterFinishRejected(t *testing.T) {
	s, _ := New(facilQuestions(1), models.ModeTreino, WithClock(fixedClock()))
	s.Start()
	if err := s.SubmitAnswer(0); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := s.SubmitAnswer(0); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("expected ErrNotInProgress, got %v", err)
	}
}

func TestResetReplaysSameQuestions(t *testing.T) {
	s, _ := New(facilQuestions(1), models.ModeTreino, WithClock(fixedClock()))
	s.Start()

	if err := s.Reset(); !errors.Is(err, ErrNotFinished) {
		t.Fatalf("reset mid-play must fail, got %v", err)
	}
	if err := s.SubmitAnswer(0); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if s.Status() != InProgress || s.Score() != 0 || s.QuestionIndex() != 0 {
		t.Fatalf("reset must start fresh: status=%v score=%d", s.Status(), s.Score())
	}
	if s.TotalQuestions() != 1 {
		t.Fatalf("reset must keep the question list")
	}
}
