package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/models"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when registering an email that exists.
	ErrEmailTaken = errors.New("email already registered")
)

// Store is the persistence surface the service needs.
type Store interface {
	GetProfileByEmail(email string) (*models.Profile, error)
	CreateProfile(profile *models.Profile) error
}

type Service struct {
	repo      Store
	jwtSecret []byte
}

func NewService(repo Store, jwtSecret string) *Service {
	return &Service{
		repo:      repo,
		jwtSecret: []byte(jwtSecret),
	}
}

// Login checks the password against the stored hash and issues a 24h token.
func (s *Service) Login(email, password string) (string, *models.Profile, error) {
	profile, err := s.repo.GetProfileByEmail(strings.ToLower(email))
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": profile.ID,
		"email":   profile.Email,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, err
	}
	return signed, profile, nil
}

// Register creates a fresh profile at level 1 with zero XP.
func (s *Service) Register(email, name, password string) (*models.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if existing, err := s.repo.GetProfileByEmail(email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		Email:        email,
		Name:         name,
		PasswordHash: string(hashed),
		XP:           0,
		Level:        1,
	}
	if err := s.repo.CreateProfile(profile); err != nil {
		return nil, err
	}
	return profile, nil
}
