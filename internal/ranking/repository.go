package ranking

import (
	"time"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/models"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// TopSince sums XP gained from sessions completed at or after since.
func (r *Repository) TopSince(since time.Time, limit int) ([]models.RankingEntry, error) {
	var entries []models.RankingEntry
	err := r.db.
		Table("game_sessions").
		Select("game_sessions.user_id, profiles.name, profiles.avatar_url, profiles.level, SUM(game_sessions.xp_gained) AS score").
		Joins("JOIN profiles ON profiles.id = game_sessions.user_id").
		Where("game_sessions.completed_at >= ?", since).
		Group("game_sessions.user_id, profiles.name, profiles.avatar_url, profiles.level").
		Order("score DESC").
		Limit(limit).
		Scan(&entries).Error
	return entries, err
}

// TopAllTime ranks profiles by their accumulated XP.
func (r *Repository) TopAllTime(limit int) ([]models.RankingEntry, error) {
	var entries []models.RankingEntry
	err := r.db.
		Table("profiles").
		Select("id AS user_id, name, avatar_url, level, xp AS score").
		Order("xp DESC").
		Limit(limit).
		Scan(&entries).Error
	return entries, err
}

func (r *Repository) ProfilesByIDs(ids []uint) ([]models.Profile, error) {
	var profiles []models.Profile
	if len(ids) == 0 {
		return profiles, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&profiles).Error
	return profiles, err
}
