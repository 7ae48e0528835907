package profile

import (
	"time"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/models"
	"github.com/diogo-fc/quiz-copa-do-mundo/internal/scoring"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetProfile(id uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.First(&profile, id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *Repository) UpdateProfile(id uint, fields map[string]interface{}) error {
	return r.db.Model(&models.Profile{}).Where("id = ?", id).Updates(fields).Error
}

// AddXP adds XP and re-derives the level inside one transaction, so the
// invariant level == LevelFromXP(xp) holds after every XP mutation.
func (r *Repository) AddXP(id uint, amount int) (*models.Profile, error) {
	var updated models.Profile
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&updated, id).Error; err != nil {
			return err
		}
		updated.XP += amount
		updated.Level = scoring.LevelFromXP(updated.XP)
		return tx.Model(&models.Profile{}).Where("id = ?", id).
			Updates(map[string]interface{}{"xp": updated.XP, "level": updated.Level}).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *Repository) SetStreak(id uint, days int, playedAt time.Time) error {
	return r.db.Model(&models.Profile{}).Where("id = ?", id).
		Updates(map[string]interface{}{"streak_days": days, "last_played_at": playedAt}).Error
}

func (r *Repository) CountSessions(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.GameSession{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *Repository) CountDuelsWon(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Duel{}).
		Where("status = ?", models.DuelCompleted).
		Where(`(challenger_id = ? AND challenger_score > opponent_score)
			OR (opponent_id = ? AND opponent_score > challenger_score)`, userID, userID).
		Count(&count).Error
	return count, err
}

func (r *Repository) ListAchievements(userID uint) ([]models.UserAchievement, error) {
	var unlocked []models.UserAchievement
	err := r.db.Where("user_id = ?", userID).Order("unlocked_at ASC").Find(&unlocked).Error
	return unlocked, err
}

// UnlockAchievement inserts the achievement if missing and reports whether
// this call created it. The unique (user, type) index makes it idempotent.
func (r *Repository) UnlockAchievement(userID uint, achievementType string, at time.Time) (bool, error) {
	record := models.UserAchievement{
		UserID:     userID,
		Type:       achievementType,
		UnlockedAt: at,
	}
	result := r.db.Where("user_id = ? AND type = ?", userID, achievementType).
		FirstOrCreate(&record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
