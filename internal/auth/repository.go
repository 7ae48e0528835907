package auth

import (
	"github.com/diogo-fc/quiz-copa-do-mundo/internal/models"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetProfileByEmail(email string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.Where("email = ?", email).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *Repository) CreateProfile(profile *models.Profile) error {
	return r.db.Create(profile).Error
}
