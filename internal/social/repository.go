package social

import (
	"errors"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/models"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ProfileByEmail(email string) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.Where("email = ?", email).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) ProfilesByIDs(ids []uint) ([]models.Profile, error) {
	var profiles []models.Profile
	if len(ids) == 0 {
		return profiles, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&profiles).Error
	return profiles, err
}

// FriendshipBetween finds the link in either direction; (nil, nil) when the
// users are not linked.
func (r *Repository) FriendshipBetween(userID, friendID uint) (*models.Friendship, error) {
	var f models.Friendship
	err := r.db.
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
			userID, friendID, friendID, userID).
		First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *Repository) CreateFriendship(f *models.Friendship) error {
	return r.db.Create(f).Error
}

func (r *Repository) AcceptFriendship(id uint) error {
	return r.db.Model(&models.Friendship{}).
		Where("id = ?", id).
		Update("status", models.FriendshipAccepted).Error
}

func (r *Repository) DeleteFriendship(userID, friendID uint) (bool, error) {
	result := r.db.
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
			userID, friendID, friendID, userID).
		Delete(&models.Friendship{})
	return result.RowsAffected > 0, result.Error
}

func (r *Repository) FriendshipsOf(userID uint) ([]models.Friendship, error) {
	var links []models.Friendship
	err := r.db.
		Where("user_id = ? OR friend_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&links).Error
	return links, err
}

func (r *Repository) RecentSessionsByUsers(userIDs []uint, limit int) ([]models.GameSession, error) {
	var sessions []models.GameSession
	err := r.db.
		Where("user_id IN ?", userIDs).
		Order("completed_at DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

func (r *Repository) RecentCompletedDuelsByUsers(userIDs []uint, limit int) ([]models.Duel, error) {
	var duels []models.Duel
	err := r.db.
		Where("status = ?", models.DuelCompleted).
		Where("challenger_id IN ? OR opponent_id IN ?", userIDs, userIDs).
		Order("completed_at DESC").
		Limit(limit).
		Find(&duels).Error
	return duels, err
}

func (r *Repository) RecentAchievementsByUsers(userIDs []uint, limit int) ([]models.UserAchievement, error) {
	var unlocks []models.UserAchievement
	err := r.db.
		Where("user_id IN ?", userIDs).
		Order("unlocked_at DESC").
		Limit(limit).
		Find(&unlocks).Error
	return unlocks, err
}
