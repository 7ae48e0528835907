package quiz

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

func (r *Repository) QuestionsByFilter(category *models.Category, difficulty *models.Difficulty) ([]models.Question, error) {
	query := r.db.Model(&models.Question{})
	if category != nil {
		query = query.Where("category = ?", *category)
	}
	if difficulty != nil {
		query = query.Where("difficulty = ?", *difficulty)
	}

	var questions []models.Question
	if err := query.Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

// QuestionsByIDs returns questions in the order of the given ids.
func (r *Repository) QuestionsByIDs(ids []uint) ([]models.Question, error) {
	var questions []models.Question
	if err := r.db.Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	ordered := make([]models.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

func (r *Repository) CreateGameSession(gs *models.GameSession) error {
	return r.db.Create(gs).Error
}

func (r *Repository) RecentSessions(userID uint, limit int) ([]models.GameSession, error) {
	var sessions []models.GameSession
	err := r.db.Where("user_id = ?", userID).
		Order("completed_at DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}
