// Package session implements the single-player quiz state machine. A session
// is owned by exactly one caller; it is not safe for concurrent use and does
// not need to be, no sharing happens by design.
package session

import (
	"errors"
	"time"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/models"
	"github.com/diogo-fc/quiz-copa-do-mundo/internal/scoring"
)

var (
	// ErrNoQuestions is returned when a session is created with an empty list.
	ErrNoQuestions = errors.New("session needs at least one question")
	// ErrInvalidAnswer is returned for an answer index outside the options.
	ErrInvalidAnswer = errors.New("answer index out of range")
	// ErrNotInProgress is returned when an operation needs a running session.
	ErrNotInProgress = errors.New("session is not in progress")
	// ErrSkipNotAllowed is returned when skipping outside practice mode.
	ErrSkipNotAllowed = errors.New("skip is only allowed in treino mode")
	// ErrNotFinished is returned when resetting a session still in play.
	ErrNotFinished = errors.New("session has not finished")
)

const (
	// NoAnswer is the sentinel recorded when the clock ran out on a question.
	NoAnswer = -1

	defaultTimePerQuestion = 20 * time.Second
	desafioBudget          = 5 * time.Minute
)

// Status of a session. Finished is terminal; only Reset leaves it.
type Status int

const (
	NotStarted Status = iota
	InProgress
	Finished
)

// AnswerRecord is one answered question, immutable once appended.
type AnswerRecord struct {
	QuestionID     uint `json:"question_id"`
	SelectedAnswer int  `json:"selected_answer"`
	IsCorrect      bool `json:"is_correct"`
}

// Result is the terminal summary of a finished session.
type Result struct {
	Score          int            `json:"score"`
	CorrectAnswers int            `json:"correct_answers"`
	TotalQuestions int            `json:"total_questions"`
	MaxStreak      int            `json:"max_streak"`
	XPGained       int            `json:"xp_gained"`
	TimeSpent      int            `json:"time_spent"`
	Answers        []AnswerRecord `json:"answers"`
}

// Session sequences a fixed, ordered question list and accumulates score and
// streak through the scoring package.
type Session struct {
	questions       []models.Question
	mode            models.GameMode
	timePerQuestion time.Duration
	now             func() time.Time

	status            Status
	index             int
	score             int
	correctCount      int
	streak            int
	maxStreak         int
	answers           []AnswerRecord
	startedAt         time.Time
	questionStartedAt time.Time
	result            *Result
}

// Option configures a Session.
type Option func(*Session)

// WithTimePerQuestion overrides the per-question countdown for timed modes.
func WithTimePerQuestion(d time.Duration) Option {
	return func(s *Session) { s.timePerQuestion = d }
}

// WithClock injects a clock for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New builds a session over a non-empty, already-shuffled question list.
func New(questions []models.Question, mode models.GameMode, opts ...Option) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	s := &Session{
		questions:       questions,
		mode:            mode,
		timePerQuestion: defaultTimePerQuestion,
		now:             time.Now,
		status:          NotStarted,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start moves the session into play and arms the clocks.
func (s *Session) Start() {
	now := s.now()
	s.status = InProgress
	s.index = 0
	s.score = 0
	s.correctCount = 0
	s.streak = 0
	s.maxStreak = 0
	s.answers = nil
	s.startedAt = now
	s.questionStartedAt = now
	s.result = nil
}

// SubmitAnswer records the answer for the current question, scores it and
// advances. The sentinel NoAnswer marks an expired question. The index
// auto-advance makes double submission for one question impossible.
func (s *Session) SubmitAnswer(selected int) error {
	if s.status != InProgress {
		return ErrNotInProgress
	}
	question := s.questions[s.index]
	if selected != NoAnswer && (selected < 0 || selected >= len(question.Options)) {
		return ErrInvalidAnswer
	}

	isCorrect := selected != NoAnswer && selected == question.CorrectAnswer
	if isCorrect {
		s.streak++
	} else {
		s.streak = 0
	}
	if s.streak > s.maxStreak {
		s.maxStreak = s.streak
	}

	timed, remaining, total := s.timeContext()
	points := scoring.AnswerScore(question.Difficulty, isCorrect, s.streak, timed, remaining, total)
	s.score += points
	if isCorrect {
		s.correctCount++
	}
	s.answers = append(s.answers, AnswerRecord{
		QuestionID:     question.ID,
		SelectedAnswer: selected,
		IsCorrect:      isCorrect,
	})

	if s.index == len(s.questions)-1 {
		s.finalize(s.elapsedSeconds())
		return nil
	}
	s.index++
	s.questionStartedAt = s.now()
	return nil
}

// TimeExpired is the single asynchronous trigger into the machine and is
// idempotent: firing it on a finished session is a no-op. In desafio the
// whole-session clock ran out, so the session finalizes with whatever has
// accumulated; in per-question modes it stands for "no answer" on the
// current question only.
func (s *Session) TimeExpired() {
	if s.status != InProgress {
		return
	}
	switch s.mode {
	case models.ModeDesafio:
		s.finalize(int(desafioBudget.Seconds()))
	case models.ModeTreino:
		// untimed, nothing to expire
	default:
		_ = s.SubmitAnswer(NoAnswer)
	}
}

// Skip advances past the current question without recording an answer and
// resets the streak. Practice mode only.
func (s *Session) Skip() error {
	if s.status != InProgress {
		return ErrNotInProgress
	}
	if s.mode != models.ModeTreino {
		return ErrSkipNotAllowed
	}
	s.streak = 0
	if s.index == len(s.questions)-1 {
		s.finalize(s.elapsedSeconds())
		return nil
	}
	s.index++
	s.questionStartedAt = s.now()
	return nil
}

// Reset replays the same question list from scratch. Only valid once finished.
func (s *Session) Reset() error {
	if s.status != Finished {
		return ErrNotFinished
	}
	s.Start()
	return nil
}

// Status reports the machine state.
func (s *Session) Status() Status { return s.status }

// CurrentQuestion returns the question awaiting an answer, or nil when the
// session is not in progress.
func (s *Session) CurrentQuestion() *models.Question {
	if s.status != InProgress {
		return nil
	}
	return &s.questions[s.index]
}

// QuestionIndex returns the zero-based position of the current question.
func (s *Session) QuestionIndex() int { return s.index }

// TotalQuestions returns the fixed length of the question list.
func (s *Session) TotalQuestions() int { return len(s.questions) }

// Score returns the running score.
func (s *Session) Score() int { return s.score }

// Streak returns the current consecutive-correct count.
func (s *Session) Streak() int { return s.streak }

// MaxStreak returns the highest streak observed so far.
func (s *Session) MaxStreak() int { return s.maxStreak }

// Result returns the terminal summary, or nil before the session finishes.
func (s *Session) Result() *Result { return s.result }

func (s *Session) finalize(timeSpent int) {
	s.status = Finished
	answers := make([]AnswerRecord, len(s.answers))
	copy(answers, s.answers)
	s.result = &Result{
		Score:          s.score,
		CorrectAnswers: s.correctCount,
		TotalQuestions: len(s.questions),
		MaxStreak:      s.maxStreak,
		XPGained:       scoring.XPFromScore(s.score, s.mode),
		TimeSpent:      timeSpent,
		Answers:        answers,
	}
}

// timeContext resolves the remaining/total seconds the scoring bonus sees.
// treino carries no clock; desafio runs one budget for the whole session;
// duelo and diario restart a countdown per question.
func (s *Session) timeContext() (timed bool, remaining, total float64) {
	switch s.mode {
	case models.ModeTreino:
		return false, 0, 0
	case models.ModeDesafio:
		total = desafioBudget.Seconds()
		remaining = total - s.now().Sub(s.startedAt).Seconds()
	default:
		total = s.timePerQuestion.Seconds()
		remaining = total - s.now().Sub(s.questionStartedAt).Seconds()
	}
	if remaining < 0 {
		remaining = 0
	}
	return true, remaining, total
}

func (s *Session) elapsedSeconds() int {
	return int(s.now().Sub(s.startedAt).Seconds())
}
