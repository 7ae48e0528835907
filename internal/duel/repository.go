package duel

import (
	"errors"
	"time"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/models"

	"gorm.io/gorm"
)

// Repository is the gorm-backed Store. Join and SubmitScore rely on
// conditional UPDATEs so racing requests cannot both win: the database
// serializes writers on the duel row.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(d *models.Duel) error {
	return r.db.Create(d).Error
}

func (r *Repository) Get(id string) (*models.Duel, error) {
	var d models.Duel
	if err := r.db.First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDuelNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Join claims the opponent seat with a single conditional update. When zero
// rows match, the current row is re-read to name the exact conflict.
func (r *Repository) Join(id string, userID uint) error {
	result := r.db.Model(&models.Duel{}).
		Where("id = ? AND opponent_id IS NULL AND challenger_id <> ?", id, userID).
		Updates(map[string]interface{}{
			"opponent_id": userID,
			"status":      models.DuelActive,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	d, err := r.Get(id)
	if err != nil {
		return err
	}
	if d.ChallengerID == userID {
		return ErrSelfJoin
	}
	return ErrAlreadyJoined
}

// SubmitScore writes the caller's score column (null to value, exactly once)
// and, inside the same transaction, flips the duel to completed when both
// scores are present. Both racing submitters update the same row, so the
// second transaction waits on the first and observes its score.
func (r *Repository) SubmitScore(id string, asChallenger bool, score int, now time.Time) (*models.Duel, error) {
	column := "opponent_score"
	if asChallenger {
		column = "challenger_score"
	}

	var updated models.Duel
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Duel{}).
			Where("id = ? AND "+column+" IS NULL", id).
			Update(column, score)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			if err := tx.First(&models.Duel{}, "id = ?", id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrDuelNotFound
				}
				return err
			}
			return ErrAlreadySubmitted
		}

		if err := tx.Model(&models.Duel{}).
			Where("id = ? AND challenger_score IS NOT NULL AND opponent_score IS NOT NULL AND status <> ?",
				id, models.DuelCompleted).
			Updates(map[string]interface{}{
				"status":       models.DuelCompleted,
				"completed_at": now,
			}).Error; err != nil {
			return err
		}

		return tx.First(&updated, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
