package auth

import (
	"errors"
	"testing"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/models"

	"github.com/dgrijalva/jwt-go"
)

type memAuthStore struct {
	profiles map[string]*models.Profile
	nextID   uint
}

func newMemAuthStore() *memAuthStore {
	return &memAuthStore{profiles: make(map[string]*models.Profile)}
}

func (m *memAuthStore) GetProfileByEmail(email string) (*models.Profile, error) {
	p, ok := m.profiles[email]
	if !ok {
		return nil, errors.New("record not found")
	}
	copied := *p
	return &copied, nil
}

func (m *memAuthStore) CreateProfile(profile *models.Profile) error {
	if _, ok := m.profiles[profile.Email]; ok {
		return errors.New("duplicate email")
	}
	m.nextID++
	profile.ID = m.nextID
	m.profiles[profile.Email] = profile
	return nil
}

func TestRegisterAndLogin(t *testing.T) {
	service := NewService(newMemAuthStore(), "test-secret")

	profile, err := service.Register("Ana@Example.com", "Ana", "s3cret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if profile.Email != "ana@example.com" {
		t.Fatalf("email must be normalized, got %q", profile.Email)
	}
	if profile.Level != 1 || profile.XP != 0 {
		t.Fatalf("new profile must start at level 1 with 0 xp: %+v", profile)
	}
	if profile.PasswordHash == "s3cret" || profile.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}

	token, logged, err := service.Login("ana@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != profile.ID {
		t.Fatalf("login returned wrong profile: %+v", logged)
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.MapClaims{}, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("issued token must verify: %v", err)
	}
	claims := *parsed.Claims.(*jwt.MapClaims)
	if uint(claims["user_id"].(float64)) != profile.ID {
		t.Fatalf("token must carry the user id, claims=%v", claims)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	service := NewService(newMemAuthStore(), "test-secret")
	if _, err := service.Register("ana@example.com", "Ana", "s3cret"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := service.Login("ana@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := service.Login("nobody@example.com", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email must look like bad credentials, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service := NewService(newMemAuthStore(), "test-secret")
	if _, err := service.Register("ana@example.com", "Ana", "s3cret"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := service.Register("ANA@example.com", "Other", "pw"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}
