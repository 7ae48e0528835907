package duel

import (
	"math/rand"
	"time"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/models"
	"github.com/diogo-fc/quiz-copa-do-mundo/internal/session"

	"github.com/google/uuid"
)

// Store persists duels. Implementations must make Join and SubmitScore
// atomic: at most one joiner wins, each score is written exactly once, and
// the completion transition happens together with the second score write.
type Store interface {
	Create(d *models.Duel) error
	Get(id string) (*models.Duel, error)
	Join(id string, userID uint) error
	SubmitScore(id string, asChallenger bool, score int, now time.Time) (*models.Duel, error)
}

// QuestionSource supplies the question pool at creation and the full
// questions for the read model.
type QuestionSource interface {
	QuestionsByFilter(category *models.Category, difficulty *models.Difficulty) ([]models.Question, error)
	QuestionsByIDs(ids []uint) ([]models.Question, error)
}

// ProfileSource resolves participant profiles for the read model.
type ProfileSource interface {
	GetProfile(id uint) (*models.Profile, error)
}

// ScoreVerifier recomputes a score from answer records; nil means the
// client-submitted score is trusted as-is.
type ScoreVerifier interface {
	RecomputeScore(answers []session.AnswerRecord) (score, correct, maxStreak int, err error)
}

// maxSpeedBonusPerQuestion bounds how far a submitted score may exceed the
// recomputed untimed score: speed bonuses are client-side only.
const maxSpeedBonusPerQuestion = 50

type Service struct {
	store     Store
	questions QuestionSource
	profiles  ProfileSource
	verifier  ScoreVerifier
	now       func() time.Time
}

func NewService(store Store, questions QuestionSource, profiles ProfileSource, verifier ScoreVerifier) *Service {
	return &Service{
		store:     store,
		questions: questions,
		profiles:  profiles,
		verifier:  verifier,
		now:       time.Now,
	}
}

// Create selects count random questions (without replacement) from the
// filtered pool and persists a pending duel. Creation aborts entirely when
// the pool is too small.
func (s *Service) Create(challengerID uint, category *models.Category, count int) (*models.Duel, error) {
	pool, err := s.questions.QuestionsByFilter(category, nil)
	if err != nil {
		return nil, err
	}
	if len(pool) < count {
		return nil, ErrInsufficientQuestions
	}

	shuffled := make([]models.Question, len(pool))
	copy(shuffled, pool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	ids := make([]uint, count)
	for i := 0; i < count; i++ {
		ids[i] = shuffled[i].ID
	}

	d := &models.Duel{
		ID:           uuid.NewString(),
		CreatedAt:    s.now(),
		ChallengerID: challengerID,
		QuestionIDs:  ids,
		Status:       models.DuelPending,
	}
	if err := s.store.Create(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Join claims the opponent seat for userID. The store's conditional update
// guarantees a single winner under concurrent joins.
func (s *Service) Join(duelID string, userID uint) error {
	return s.store.Join(duelID, userID)
}

// SubmitScore records the caller's score. With a verifier configured and
// answer records supplied, the score is checked against the recomputed
// value before it is written.
func (s *Service) SubmitScore(duelID string, userID uint, score int, answers []session.AnswerRecord) (*models.Duel, error) {
	d, err := s.store.Get(duelID)
	if err != nil {
		return nil, err
	}

	var asChallenger bool
	switch {
	case d.ChallengerID == userID:
		asChallenger = true
	case d.OpponentID != nil && *d.OpponentID == userID:
		asChallenger = false
	default:
		return nil, ErrNotParticipant
	}

	if s.verifier != nil && len(answers) > 0 {
		if err := s.verifyScore(d, score, answers); err != nil {
			return nil, err
		}
	}

	return s.store.SubmitScore(duelID, asChallenger, score, s.now())
}

// verifyScore checks that every answered question belongs to the duel and
// that the submitted score sits between the recomputed untimed score and
// that score plus the maximum possible speed bonuses.
func (s *Service) verifyScore(d *models.Duel, score int, answers []session.AnswerRecord) error {
	allowed := make(map[uint]bool, len(d.QuestionIDs))
	for _, id := range d.QuestionIDs {
		allowed[id] = true
	}
	for _, a := range answers {
		if !allowed[a.QuestionID] {
			return ErrScoreMismatch
		}
	}

	recomputed, _, _, err := s.verifier.RecomputeScore(answers)
	if err != nil {
		return err
	}
	if score < recomputed || score > recomputed+maxSpeedBonusPerQuestion*len(answers) {
		return ErrScoreMismatch
	}
	return nil
}

// Get returns the duel with participant profiles, the ordered questions and
// the per-viewer derived fields.
func (s *Service) Get(duelID string, requestingUserID uint) (*View, error) {
	d, err := s.store.Get(duelID)
	if err != nil {
		return nil, err
	}

	view := &View{
		Duel:         *d,
		IsChallenger: d.ChallengerID == requestingUserID,
		IsOpponent:   d.OpponentID != nil && *d.OpponentID == requestingUserID,
		Winner:       Winner(d),
	}
	view.CanPlay = (view.IsChallenger && d.ChallengerScore == nil) ||
		(!view.IsChallenger && d.OpponentID == nil) ||
		(view.IsOpponent && d.OpponentScore == nil)

	if challenger, err := s.profiles.GetProfile(d.ChallengerID); err == nil {
		dto := challenger.ToDTO()
		view.Challenger = &dto
	}
	if d.OpponentID != nil {
		if opponent, err := s.profiles.GetProfile(*d.OpponentID); err == nil {
			dto := opponent.ToDTO()
			view.Opponent = &dto
		}
	}

	questions, err := s.questions.QuestionsByIDs(d.QuestionIDs)
	if err != nil {
		return nil, err
	}
	view.Questions = make([]models.QuestionDTO, len(questions))
	for i, q := range questions {
		view.Questions[i] = q.ToDTO(true)
	}

	return view, nil
}

// View is the read model of a duel for one requesting user.
type View struct {
	models.Duel
	Challenger   *models.ProfileDTO   `json:"challenger,omitempty"`
	Opponent     *models.ProfileDTO   `json:"opponent,omitempty"`
	Questions    []models.QuestionDTO `json:"questions"`
	IsChallenger bool                 `json:"isChallenger"`
	IsOpponent   bool                 `json:"isOpponent"`
	CanPlay      bool                 `json:"canPlay"`
	Winner       string               `json:"winner,omitempty"`
}

// Winner names the side with the higher score once the duel completed:
// "challenger", "opponent" or "draw". A missing score means "awaiting that
// player", never a loss, so the result stays empty until both are in.
func Winner(d *models.Duel) string {
	if d.ChallengerScore == nil || d.OpponentScore == nil {
		return ""
	}
	switch {
	case *d.ChallengerScore > *d.OpponentScore:
		return "challenger"
	case *d.OpponentScore > *d.ChallengerScore:
		return "opponent"
	default:
		return "draw"
	}
}
