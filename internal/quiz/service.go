package quiz

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/models"
	"github.com/diogo-fc/quiz-copa-do-mundo/internal/scoring"
	"github.com/diogo-fc/quiz-copa-do-mundo/internal/session"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrNoQuestions means the filtered pool came back empty.
	ErrNoQuestions = errors.New("no questions match the filter")
	// ErrInvalidResult is returned for a malformed result submission.
	ErrInvalidResult = errors.New("invalid quiz result")
)

const dailyQuestionCount = 5

// Store is the persistence surface the service needs. The gorm Repository
// implements it; tests use a memory implementation.
type Store interface {
	QuestionsByFilter(category *models.Category, difficulty *models.Difficulty) ([]models.Question, error)
	QuestionsByIDs(ids []uint) ([]models.Question, error)
	CreateGameSession(gs *models.GameSession) error
	RecentSessions(userID uint, limit int) ([]models.GameSession, error)
}

// DailyCache remembers the question ids picked for a given day.
type DailyCache interface {
	GetDailyQuestionIDs(ctx context.Context, day string) ([]uint, error)
	SetDailyQuestionIDs(ctx context.Context, day string, ids []uint) error
}

// Progression applies the profile-side effects of a finished session.
type Progression interface {
	AwardXP(userID uint, amount int) (*models.Profile, error)
	TouchStreak(userID uint, now time.Time) (int, bool, error)
	EvaluateAchievements(userID uint, mode models.GameMode, correct, total, maxStreak int) ([]string, error)
}

type Service struct {
	store       Store
	cache       DailyCache
	progression Progression
	strictScore bool
	sf          singleflight.Group
	now         func() time.Time
}

func NewService(store Store, cache DailyCache, progression Progression, strictScore bool) *Service {
	return &Service{
		store:       store,
		cache:       cache,
		progression: progression,
		strictScore: strictScore,
		now:         time.Now,
	}
}

// RandomQuestions fetches the filtered pool and returns up to limit questions
// in uniformly random order. The store gives no ordering guarantee, so the
// shuffle happens here.
func (s *Service) RandomQuestions(category *models.Category, difficulty *models.Difficulty, limit int) ([]models.Question, error) {
	pool, err := s.store.QuestionsByFilter(category, difficulty)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, ErrNoQuestions
	}

	shuffled := make([]models.Question, len(pool))
	copy(shuffled, pool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if limit > len(shuffled) {
		limit = len(shuffled)
	}
	return shuffled[:limit], nil
}

// DailyQuestions returns the question set for the given day. The pick is
// deterministic per date so every player gets the same daily quiz, and the
// chosen ids are cached; singleflight keeps concurrent cache fills to one.
func (s *Service) DailyQuestions(ctx context.Context, day time.Time) ([]models.Question, error) {
	key := day.Format("2006-01-02")

	if s.cache != nil {
		if ids, err := s.cache.GetDailyQuestionIDs(ctx, key); err == nil && len(ids) > 0 {
			return s.store.QuestionsByIDs(ids)
		}
	}

	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		pool, err := s.store.QuestionsByFilter(nil, nil)
		if err != nil {
			return nil, err
		}
		if len(pool) == 0 {
			return nil, ErrNoQuestions
		}

		seed := int64(day.Year())*10000 + int64(day.Month())*100 + int64(day.Day())
		rnd := rand.New(rand.NewSource(seed))
		rnd.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})

		count := dailyQuestionCount
		if count > len(pool) {
			count = len(pool)
		}
		picked := pool[:count]

		if s.cache != nil {
			ids := make([]uint, len(picked))
			for i, q := range picked {
				ids[i] = q.ID
			}
			if err := s.cache.SetDailyQuestionIDs(ctx, key, ids); err != nil {
				slog.Warn("caching daily questions failed", "day", key, "err", err)
			}
		}
		return picked, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.Question), nil
}

// RecentResults lists the caller's last sessions, newest first.
func (s *Service) RecentResults(userID uint, limit int) ([]models.GameSession, error) {
	return s.store.RecentSessions(userID, limit)
}

// ResultSubmission is the client-computed summary of a finished session.
type ResultSubmission struct {
	Mode           models.GameMode        `json:"mode"`
	Score          int                    `json:"score"`
	CorrectAnswers int                    `json:"correct_answers"`
	TotalQuestions int                    `json:"total_questions"`
	MaxStreak      int                    `json:"max_streak"`
	TimeSpent      int                    `json:"time_spent"`
	Answers        []session.AnswerRecord `json:"answers"`
}

// ResultResponse is what the client gets back after submitting a result.
type ResultResponse struct {
	Score          int      `json:"score"`
	XPGained       int      `json:"xp_gained"`
	Level          int      `json:"level"`
	LevelProgress  int      `json:"level_progress"`
	LevelTitle     string   `json:"level_title"`
	StreakDays     int      `json:"streak_days"`
	NewAchievements []string `json:"new_achievements"`
}

// SubmitResult persists the session summary and applies XP, streak and
// achievement side effects. Persistence failures are logged and do not keep
// the player from seeing the result they already computed; only a malformed
// submission is rejected.
func (s *Service) SubmitResult(userID uint, sub ResultSubmission) (*ResultResponse, error) {
	if !sub.Mode.Valid() || sub.TotalQuestions <= 0 ||
		sub.CorrectAnswers < 0 || sub.CorrectAnswers > sub.TotalQuestions ||
		len(sub.Answers) > sub.TotalQuestions {
		return nil, ErrInvalidResult
	}

	score := sub.Score
	correct := sub.CorrectAnswers
	maxStreak := sub.MaxStreak
	if s.strictScore {
		var err error
		score, correct, maxStreak, err = s.RecomputeScore(sub.Answers)
		if err != nil {
			return nil, err
		}
	}
	xp := scoring.XPFromScore(score, sub.Mode)

	gs := &models.GameSession{
		UserID:         userID,
		Mode:           sub.Mode,
		Score:          score,
		CorrectAnswers: correct,
		TotalQuestions: sub.TotalQuestions,
		MaxStreak:      maxStreak,
		XPGained:       xp,
		TimeSpent:      sub.TimeSpent,
		CompletedAt:    s.now(),
	}
	if err := s.store.CreateGameSession(gs); err != nil {
		slog.Error("persisting game session failed", "user", userID, "err", err)
	}

	resp := &ResultResponse{Score: score, XPGained: xp, NewAchievements: []string{}}

	profile, err := s.progression.AwardXP(userID, xp)
	if err != nil {
		slog.Error("awarding xp failed", "user", userID, "err", err)
	} else {
		resp.Level = profile.Level
		resp.LevelProgress = scoring.LevelProgressPercent(profile.XP)
		resp.LevelTitle = scoring.LevelTitle(profile.Level)
	}

	streakDays, _, err := s.progression.TouchStreak(userID, s.now())
	if err != nil {
		slog.Error("updating streak failed", "user", userID, "err", err)
	} else {
		resp.StreakDays = streakDays
	}

	unlocked, err := s.progression.EvaluateAchievements(userID, sub.Mode, correct, sub.TotalQuestions, maxStreak)
	if err != nil {
		slog.Error("evaluating achievements failed", "user", userID, "err", err)
	} else {
		resp.NewAchievements = unlocked
	}

	return resp, nil
}

// RecomputeScore rebuilds score, correct count and max streak from the
// submitted answer records, trusting only the stored questions. Speed bonuses
// cannot be reproduced server-side, so the recomputed score is the untimed
// value. Duel score verification uses the same replay.
func (s *Service) RecomputeScore(answers []session.AnswerRecord) (score, correct, maxStreak int, err error) {
	if len(answers) == 0 {
		return 0, 0, 0, nil
	}
	ids := make([]uint, len(answers))
	for i, a := range answers {
		ids[i] = a.QuestionID
	}
	questions, err := s.store.QuestionsByIDs(ids)
	if err != nil {
		return 0, 0, 0, err
	}
	byID := make(map[uint]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	streak := 0
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			return 0, 0, 0, ErrInvalidResult
		}
		isCorrect := a.SelectedAnswer != session.NoAnswer && a.SelectedAnswer == q.CorrectAnswer
		if isCorrect {
			streak++
			correct++
		} else {
			streak = 0
		}
		if streak > maxStreak {
			maxStreak = streak
		}
		score += scoring.AnswerScore(q.Difficulty, isCorrect, streak, false, 0, 0)
	}
	return score, correct, maxStreak, nil
}
