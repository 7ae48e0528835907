package profile

import (
	"time"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/models"
)

// Store is the persistence surface the service needs; the gorm Repository
// implements it and tests use a memory implementation.
type Store interface {
	GetProfile(id uint) (*models.Profile, error)
	UpdateProfile(id uint, fields map[string]interface{}) error
	AddXP(id uint, amount int) (*models.Profile, error)
	SetStreak(id uint, days int, playedAt time.Time) error
	CountSessions(userID uint) (int64, error)
	CountDuelsWon(userID uint) (int64, error)
	ListAchievements(userID uint) ([]models.UserAchievement, error)
	UnlockAchievement(userID uint, achievementType string, at time.Time) (bool, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(userID uint) (*models.Profile, error) {
	return s.store.GetProfile(userID)
}

// Update applies the user-editable profile fields.
func (s *Service) Update(userID uint, name, avatarURL, favoriteTeam *string) error {
	fields := map[string]interface{}{}
	if name != nil {
		fields["name"] = *name
	}
	if avatarURL != nil {
		fields["avatar_url"] = *avatarURL
	}
	if favoriteTeam != nil {
		fields["favorite_team"] = *favoriteTeam
	}
	if len(fields) == 0 {
		return nil
	}
	return s.store.UpdateProfile(userID, fields)
}

// AwardXP adds the amount and returns the updated profile. The store keeps
// the level in step with the XP in the same write.
func (s *Service) AwardXP(userID uint, amount int) (*models.Profile, error) {
	if amount <= 0 {
		return s.store.GetProfile(userID)
	}
	return s.store.AddXP(userID, amount)
}

// NextStreak is the pure date rule behind streak days: playing twice the same
// day changes nothing, playing on consecutive days increments, a gap resets
// to 1.
func NextStreak(current int, lastPlayed *time.Time, now time.Time) (days int, updated bool) {
	today := now.UTC().Format("2006-01-02")
	if lastPlayed == nil {
		return 1, true
	}
	lastDay := lastPlayed.UTC().Format("2006-01-02")
	if lastDay == today {
		return current, false
	}
	yesterday := now.UTC().AddDate(0, 0, -1).Format("2006-01-02")
	if lastDay == yesterday {
		return current + 1, true
	}
	return 1, true
}

// CurrentStreak reports the streak as the player should see it: already 0
// when the last play was before yesterday, even though the row still holds
// the stale count until the next play.
func CurrentStreak(profile *models.Profile, now time.Time) int {
	if profile.LastPlayedAt == nil {
		return 0
	}
	today := now.UTC().Format("2006-01-02")
	yesterday := now.UTC().AddDate(0, 0, -1).Format("2006-01-02")
	lastDay := profile.LastPlayedAt.UTC().Format("2006-01-02")
	if lastDay != today && lastDay != yesterday {
		return 0
	}
	return profile.StreakDays
}

// TouchStreak applies the streak rule for a play happening at now and
// persists the outcome. Returns the resulting streak and whether it changed.
func (s *Service) TouchStreak(userID uint, now time.Time) (int, bool, error) {
	profile, err := s.store.GetProfile(userID)
	if err != nil {
		return 0, false, err
	}

	days, updated := NextStreak(profile.StreakDays, profile.LastPlayedAt, now)
	// stamp the play even when the count is unchanged so CurrentStreak stays fresh
	if err := s.store.SetStreak(userID, days, now); err != nil {
		return 0, false, err
	}
	return days, updated, nil
}

// EvaluateAchievements unlocks everything the finished session now qualifies
// the player for. Unlocks are idempotent; only newly created ones are
// returned. Category-counting badges (brasil_expert, finals_master) and the
// share badge need signals this backend does not record, so they stay
// catalog-only.
func (s *Service) EvaluateAchievements(userID uint, mode models.GameMode, correct, total, maxStreak int) ([]string, error) {
	profile, err := s.store.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	var candidates []string

	sessions, err := s.store.CountSessions(userID)
	if err != nil {
		return nil, err
	}
	if sessions >= 1 {
		candidates = append(candidates, AchievementFirstQuiz)
	}
	if mode == models.ModeDesafio && total >= 15 && correct == total {
		candidates = append(candidates, AchievementPerfectRound)
	}
	if mode == models.ModeDiario && time.Now().Hour() < 8 {
		candidates = append(candidates, AchievementEarlyBird)
	}
	if profile.StreakDays >= 7 {
		candidates = append(candidates, AchievementStreak7)
	}
	if profile.StreakDays >= 30 {
		candidates = append(candidates, AchievementStreak30)
	}
	if profile.Level >= 10 {
		candidates = append(candidates, AchievementLevel10)
	}
	if profile.Level >= 50 {
		candidates = append(candidates, AchievementLevel50)
	}
	if profile.Level >= 100 {
		candidates = append(candidates, AchievementLevel100)
	}
	won, err := s.store.CountDuelsWon(userID)
	if err != nil {
		return nil, err
	}
	if won >= 10 {
		candidates = append(candidates, AchievementChallenger)
	}

	unlocked := []string{}
	now := time.Now()
	for _, id := range candidates {
		created, err := s.store.UnlockAchievement(userID, id, now)
		if err != nil {
			return nil, err
		}
		if created {
			unlocked = append(unlocked, id)
		}
	}
	return unlocked, nil
}

// Achievements returns the full catalog annotated with unlock state.
type AchievementView struct {
	Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

func (s *Service) Achievements(userID uint) ([]AchievementView, error) {
	rows, err := s.store.ListAchievements(userID)
	if err != nil {
		return nil, err
	}
	byType := make(map[string]models.UserAchievement, len(rows))
	for _, row := range rows {
		byType[row.Type] = row
	}

	views := make([]AchievementView, len(Catalog))
	for i, a := range Catalog {
		views[i] = AchievementView{Achievement: a}
		if row, ok := byType[a.ID]; ok {
			at := row.UnlockedAt
			views[i].Unlocked = true
			views[i].UnlockedAt = &at
		}
	}
	return views, nil
}
