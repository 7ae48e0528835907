package profile

import (
	"errors"
	"testing"
	"time"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/models"
	"github.com/diogo-fc/quiz-copa-do-mundo/internal/scoring"
)

// memStore is the in-memory Store used by these tests.
type memStore struct {
	profiles     map[uint]*models.Profile
	achievements map[uint]map[string]time.Time
	sessions     map[uint]int64
	duelsWon     map[uint]int64
}

func newMemStore() *memStore {
	return &memStore{
		profiles:     make(map[uint]*models.Profile),
		achievements: make(map[uint]map[string]time.Time),
		sessions:     make(map[uint]int64),
		duelsWon:     make(map[uint]int64),
	}
}

func (m *memStore) GetProfile(id uint) (*models.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, errors.New("profile not found")
	}
	copied := *p
	return &copied, nil
}

func (m *memStore) UpdateProfile(id uint, fields map[string]interface{}) error {
	p := m.profiles[id]
	if name, ok := fields["name"].(string); ok {
		p.Name = name
	}
	if avatar, ok := fields["avatar_url"].(string); ok {
		p.AvatarURL = avatar
	}
	if team, ok := fields["favorite_team"].(string); ok {
		p.FavoriteTeam = team
	}
	return nil
}

func (m *memStore) AddXP(id uint, amount int) (*models.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, errors.New("profile not found")
	}
	p.XP += amount
	p.Level = scoring.LevelFromXP(p.XP)
	copied := *p
	return &copied, nil
}

func (m *memStore) SetStreak(id uint, days int, playedAt time.Time) error {
	p := m.profiles[id]
	p.StreakDays = days
	at := playedAt
	p.LastPlayedAt = &at
	return nil
}

func (m *memStore) CountSessions(userID uint) (int64, error) { return m.sessions[userID], nil }
func (m *memStore) CountDuelsWon(userID uint) (int64, error) { return m.duelsWon[userID], nil }

func (m *memStore) ListAchievements(userID uint) ([]models.UserAchievement, error) {
	var rows []models.UserAchievement
	for achievementType, at := range m.achievements[userID] {
		rows = append(rows, models.UserAchievement{UserID: userID, Type: achievementType, UnlockedAt: at})
	}
	return rows, nil
}

func (m *memStore) UnlockAchievement(userID uint, achievementType string, at time.Time) (bool, error) {
	if m.achievements[userID] == nil {
		m.achievements[userID] = make(map[string]time.Time)
	}
	if _, exists := m.achievements[userID][achievementType]; exists {
		return false, nil
	}
	m.achievements[userID][achievementType] = at
	return true, nil
}

func TestNextStreak(t *testing.T) {
	now := time.Date(2026, 6, 11, 15, 0, 0, 0, time.UTC)
	sameDay := now.Add(-3 * time.Hour)
	yesterday := now.AddDate(0, 0, -1)
	lastWeek := now.AddDate(0, 0, -7)

	if days, updated := NextStreak(0, nil, now); days != 1 || !updated {
		t.Fatalf("first play: got (%d,%v), want (1,true)", days, updated)
	}
	if days, updated := NextStreak(4, &sameDay, now); days != 4 || updated {
		t.Fatalf("same day: got (%d,%v), want (4,false)", days, updated)
	}
	if days, updated := NextStreak(4, &yesterday, now); days != 5 || !updated {
		t.Fatalf("consecutive day: got (%d,%v), want (5,true)", days, updated)
	}
	if days, updated := NextStreak(4, &lastWeek, now); days != 1 || !updated {
		t.Fatalf("gap: got (%d,%v), want (1,true)", days, updated)
	}
}

func TestCurrentStreakBrokenReadsZero(t *testing.T) {
	now := time.Date(2026, 6, 11, 15, 0, 0, 0, time.UTC)
	stale := now.AddDate(0, 0, -3)
	p := &models.Profile{StreakDays: 9, LastPlayedAt: &stale}
	if got := CurrentStreak(p, now); got != 0 {
		t.Fatalf("broken streak should read 0, got %d", got)
	}

	yesterday := now.AddDate(0, 0, -1)
	p.LastPlayedAt = &yesterday
	if got := CurrentStreak(p, now); got != 9 {
		t.Fatalf("streak kept alive yesterday should read 9, got %d", got)
	}
}

func TestAwardXPKeepsLevelDerived(t *testing.T) {
	store := newMemStore()
	store.profiles[1] = &models.Profile{ID: 1, XP: 0, Level: 1}
	service := NewService(store)

	var profile *models.Profile
	var err error
	for i := 0; i < 25; i++ {
		profile, err = service.AwardXP(1, 37)
		if err != nil {
			t.Fatalf("award xp: %v", err)
		}
		if profile.Level != scoring.LevelFromXP(profile.XP) {
			t.Fatalf("level invariant broken: level=%d xp=%d", profile.Level, profile.XP)
		}
	}
	if profile.XP != 25*37 {
		t.Fatalf("xp must accumulate, got %d", profile.XP)
	}
}

func TestAwardZeroXPIsNoop(t *testing.T) {
	store := newMemStore()
	store.profiles[1] = &models.Profile{ID: 1, XP: 500, Level: scoring.LevelFromXP(500)}
	service := NewService(store)

	profile, err := service.AwardXP(1, 0)
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if profile.XP != 500 {
		t.Fatalf("zero award must not change xp, got %d", profile.XP)
	}
}

func TestTouchStreakPersists(t *testing.T) {
	store := newMemStore()
	store.profiles[1] = &models.Profile{ID: 1}
	service := NewService(store)

	now := time.Date(2026, 6, 11, 15, 0, 0, 0, time.UTC)
	days, updated, err := service.TouchStreak(1, now)
	if err != nil {
		t.Fatalf("touch: %v", err)
	}
	if days != 1 || !updated {
		t.Fatalf("first touch: got (%d,%v), want (1,true)", days, updated)
	}

	// next day
	days, updated, err = service.TouchStreak(1, now.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("touch: %v", err)
	}
	if days != 2 || !updated {
		t.Fatalf("second day: got (%d,%v), want (2,true)", days, updated)
	}

	// same day again
	days, updated, err = service.TouchStreak(1, now.AddDate(0, 0, 1).Add(time.Hour))
	if err != nil {
		t.Fatalf("touch: %v", err)
	}
	if days != 2 || updated {
		t.Fatalf("same day: got (%d,%v), want (2,false)", days, updated)
	}
}

func TestEvaluateAchievementsUnlocksOnce(t *testing.T) {
	store := newMemStore()
	store.profiles[1] = &models.Profile{ID: 1, Level: 12, StreakDays: 8}
	store.sessions[1] = 1
	service := NewService(store)

	unlocked, err := service.EvaluateAchievements(1, models.ModeTreino, 5, 10, 2)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	want := map[string]bool{
		AchievementFirstQuiz: true,
		AchievementStreak7:   true,
		AchievementLevel10:   true,
	}
	if len(unlocked) != len(want) {
		t.Fatalf("unlocked %v, want %v", unlocked, want)
	}
	for _, id := range unlocked {
		if !want[id] {
			t.Fatalf("unexpected unlock %q", id)
		}
	}

	// second evaluation unlocks nothing new
	again, err := service.EvaluateAchievements(1, models.ModeTreino, 5, 10, 2)
	if err != nil {
		t.Fatalf("evaluate again: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected idempotent unlocks, got %v", again)
	}
}

func TestPerfectRoundRequiresFullDesafio(t *testing.T) {
	store := newMemStore()
	store.profiles[1] = &models.Profile{ID: 1, Level: 1}
	store.sessions[1] = 2
	service := NewService(store)

	unlocked, _ := service.EvaluateAchievements(1, models.ModeDesafio, 15, 15, 15)
	found := false
	for _, id := range unlocked {
		if id == AchievementPerfectRound {
			found = true
		}
	}
	if !found {
		t.Fatalf("15/15 desafio should unlock perfect_round, got %v", unlocked)
	}

	store2 := newMemStore()
	store2.profiles[2] = &models.Profile{ID: 2, Level: 1}
	store2.sessions[2] = 2
	service2 := NewService(store2)
	unlocked, _ = service2.EvaluateAchievements(2, models.ModeDesafio, 14, 15, 14)
	for _, id := range unlocked {
		if id == AchievementPerfectRound {
			t.Fatalf("14/15 must not unlock perfect_round")
		}
	}
}
