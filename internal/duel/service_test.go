package duel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/models"
	"github.com/diogo-fc/quiz-copa-do-mundo/internal/session"
)

type fakeQuestions struct {
	pool []models.Question
}

func (f *fakeQuestions) QuestionsByFilter(category *models.Category, difficulty *models.Difficulty) ([]models.Question, error) {
	if category == nil {
		return f.pool, nil
	}
	var filtered []models.Question
	for _, q := range f.pool {
		if q.Category == *category {
			filtered = append(filtered, q)
		}
	}
	return filtered, nil
}

func (f *fakeQuestions) QuestionsByIDs(ids []uint) ([]models.Question, error) {
	byID := make(map[uint]models.Question)
	for _, q := range f.pool {
		byID[q.ID] = q
	}
	var out []models.Question
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

type fakeProfiles struct{}

func (fakeProfiles) GetProfile(id uint) (*models.Profile, error) {
	return &models.Profile{ID: id, Name: "Jogador", Level: 1}, nil
}

func questionPool(n int) []models.Question {
	pool := make([]models.Question, n)
	for i := range pool {
		pool[i] = models.Question{
			ID:            uint(i + 1),
			Text:          "pergunta",
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: 1,
			Category:      models.CategoryFinais,
			Difficulty:    models.DifficultyMedio,
		}
	}
	return pool
}

func newTestService(poolSize int) (*Service, *MemoryStore) {
	store := NewMemoryStore()
	return NewService(store, &fakeQuestions{pool: questionPool(poolSize)}, fakeProfiles{}, nil), store
}

func TestCreateSelectsWithoutReplacement(t *testing.T) {
	service, _ := newTestService(10)

	d, err := service.Create(1, nil, 10)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if d.Status != models.DuelPending || d.OpponentID != nil {
		t.Fatalf("new duel must be pending without opponent: %+v", d)
	}
	if len(d.QuestionIDs) != 10 {
		t.Fatalf("expected 10 question ids, got %d", len(d.QuestionIDs))
	}
	seen := make(map[uint]bool)
	for _, id := range d.QuestionIDs {
		if seen[id] {
			t.Fatalf("question %d selected twice", id)
		}
		seen[id] = true
	}
}

func TestCreateFailsOnSmallPool(t *testing.T) {
	service, _ := newTestService(9)

	if _, err := service.Create(1, nil, 10); !errors.Is(err, ErrInsufficientQuestions) {
		t.Fatalf("expected ErrInsufficientQuestions, got %v", err)
	}
}

func TestJoinSingleWinnerUnderConcurrency(t *testing.T) {
	service, _ := newTestService(10)
	d, err := service.Create(1, nil, 5)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const joiners = 20
	var wg sync.WaitGroup
	errs := make([]error, joiners)
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = service.Join(d.ID, uint(i+2))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrAlreadyJoined):
		default:
			t.Fatalf("unexpected join error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winning join, got %d", winners)
	}

	joined, _ := service.store.Get(d.ID)
	if joined.OpponentID == nil || joined.Status != models.DuelActive {
		t.Fatalf("joined duel must be active with an opponent: %+v", joined)
	}
}

func TestSelfJoinRejected(t *testing.T) {
	service, _ := newTestService(10)
	d, _ := service.Create(1, nil, 5)

	if err := service.Join(d.ID, 1); !errors.Is(err, ErrSelfJoin) {
		t.Fatalf("expected ErrSelfJoin, got %v", err)
	}
}

func TestSubmitScoreCompletionAndDraw(t *testing.T) {
	service, _ := newTestService(10)
	d, _ := service.Create(1, nil, 5)
	if err := service.Join(d.ID, 2); err != nil {
		t.Fatalf("join: %v", err)
	}

	first, err := service.SubmitScore(d.ID, 1, 500, nil)
	if err != nil {
		t.Fatalf("challenger submit: %v", err)
	}
	if first.Status != models.DuelActive || first.CompletedAt != nil {
		t.Fatalf("one score must not complete the duel: %+v", first)
	}
	if Winner(first) != "" {
		t.Fatalf("winner must stay empty while a score is missing")
	}

	second, err := service.SubmitScore(d.ID, 2, 500, nil)
	if err != nil {
		t.Fatalf("opponent submit: %v", err)
	}
	if second.Status != models.DuelCompleted || second.CompletedAt == nil {
		t.Fatalf("second score must complete and stamp the duel: %+v", second)
	}
	if Winner(second) != "draw" {
		t.Fatalf("equal scores must be a draw, got %q", Winner(second))
	}
}

func TestSubmitScoreOnlyOnce(t *testing.T) {
	service, _ := newTestService(10)
	d, _ := service.Create(1, nil, 5)
	_ = service.Join(d.ID, 2)

	if _, err := service.SubmitScore(d.ID, 1, 700, nil); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := service.SubmitScore(d.ID, 1, 900, nil); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}

	current, _ := service.store.Get(d.ID)
	if current.ChallengerScore == nil || *current.ChallengerScore != 700 {
		t.Fatalf("first submission must stand, got %+v", current.ChallengerScore)
	}
}

func TestSubmitScoreByOutsider(t *testing.T) {
	service, _ := newTestService(10)
	d, _ := service.Create(1, nil, 5)
	_ = service.Join(d.ID, 2)

	if _, err := service.SubmitScore(d.ID, 99, 100, nil); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
}

func TestGetDerivesViewerFields(t *testing.T) {
	service, _ := newTestService(10)
	d, _ := service.Create(1, nil, 5)

	// challenger before playing
	view, err := service.Get(d.ID, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !view.IsChallenger || view.IsOpponent || !view.CanPlay {
		t.Fatalf("challenger view wrong: %+v", view)
	}
	if len(view.Questions) != 5 {
		t.Fatalf("view must carry the duel questions, got %d", len(view.Questions))
	}

	// stranger can join while the seat is free
	view, _ = service.Get(d.ID, 42)
	if view.IsChallenger || view.IsOpponent || !view.CanPlay {
		t.Fatalf("stranger must be able to join: %+v", view)
	}

	_ = service.Join(d.ID, 42)

	// another stranger can no longer play
	view, _ = service.Get(d.ID, 43)
	if view.CanPlay {
		t.Fatalf("seat taken, stranger must not play")
	}

	// opponent can play until they submit
	view, _ = service.Get(d.ID, 42)
	if !view.IsOpponent || !view.CanPlay {
		t.Fatalf("opponent should be able to play: %+v", view)
	}
	if _, err := service.SubmitScore(d.ID, 42, 300, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	view, _ = service.Get(d.ID, 42)
	if view.CanPlay {
		t.Fatalf("opponent already submitted, must not play again")
	}
}

type fixedVerifier struct {
	score int
}

func (v fixedVerifier) RecomputeScore(answers []session.AnswerRecord) (int, int, int, error) {
	return v.score, 0, 0, nil
}

func TestStrictScoreVerification(t *testing.T) {
	store := NewMemoryStore()
	questions := &fakeQuestions{pool: questionPool(10)}
	service := NewService(store, questions, fakeProfiles{}, fixedVerifier{score: 300})

	d, _ := service.Create(1, nil, 2)
	_ = service.Join(d.ID, 2)

	answers := []session.AnswerRecord{
		{QuestionID: d.QuestionIDs[0], SelectedAnswer: 1, IsCorrect: true},
		{QuestionID: d.QuestionIDs[1], SelectedAnswer: 1, IsCorrect: true},
	}

	// within [recomputed, recomputed + max speed bonus]
	if _, err := service.SubmitScore(d.ID, 1, 360, answers); err != nil {
		t.Fatalf("plausible score rejected: %v", err)
	}
	// beyond any possible speed bonus
	if _, err := service.SubmitScore(d.ID, 2, 9000, answers); !errors.Is(err, ErrScoreMismatch) {
		t.Fatalf("expected ErrScoreMismatch, got %v", err)
	}
	// answers for questions outside the duel
	foreign := []session.AnswerRecord{{QuestionID: 999, SelectedAnswer: 1}}
	if _, err := service.SubmitScore(d.ID, 2, 300, foreign); !errors.Is(err, ErrScoreMismatch) {
		t.Fatalf("expected ErrScoreMismatch for foreign question, got %v", err)
	}
}

func TestWatcherObservesJoinAndCompletion(t *testing.T) {
	service, store := newTestService(10)
	d, _ := service.Create(1, nil, 3)

	watcher := NewWatcher(store, 5*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	updates, err := watcher.Watch(ctx, d.ID, Completed)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	initial := <-updates
	if initial.Status != models.DuelPending {
		t.Fatalf("expected initial pending snapshot, got %s", initial.Status)
	}

	_ = service.Join(d.ID, 2)
	update := <-updates
	if update.OpponentID == nil || update.Status != models.DuelActive {
		t.Fatalf("watcher must observe the join: %+v", update)
	}

	_, _ = service.SubmitScore(d.ID, 1, 100, nil)
	_, _ = service.SubmitScore(d.ID, 2, 200, nil)

	var last *models.Duel
	for u := range updates {
		last = u
	}
	if last == nil || last.Status != models.DuelCompleted {
		t.Fatalf("watch must end on completion, last=%+v", last)
	}
}

func TestWatcherStopsOnceOpponentObserved(t *testing.T) {
	service, store := newTestService(10)
	d, _ := service.Create(1, nil, 3)

	watcher := NewWatcher(store, 5*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	updates, err := watcher.Watch(ctx, d.ID, OpponentJoined)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	<-updates // initial

	_ = service.Join(d.ID, 7)

	joined, ok := <-updates
	if !ok || joined.OpponentID == nil {
		t.Fatalf("expected join update, got %+v ok=%v", joined, ok)
	}
	if _, open := <-updates; open {
		t.Fatalf("watch must terminate once the opponent is observed")
	}
}
