package duel

import (
	"sync"
	"time"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/models"
)

// MemoryStore keeps duels in a map behind a mutex. It honors the same
// conditional-update semantics as the gorm Repository and backs the tests,
// including the concurrent-join race.
type MemoryStore struct {
	mu    sync.Mutex
	duels map[string]*models.Duel
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{duels: make(map[string]*models.Duel)}
}

func (m *MemoryStore) Create(d *models.Duel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *d
	m.duels[d.ID] = &copied
	return nil
}

func (m *MemoryStore) Get(id string) (*models.Duel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.duels[id]
	if !ok {
		return nil, ErrDuelNotFound
	}
	copied := *d
	return &copied, nil
}

func (m *MemoryStore) Join(id string, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.duels[id]
	if !ok {
		return ErrDuelNotFound
	}
	if d.ChallengerID == userID {
		return ErrSelfJoin
	}
	if d.OpponentID != nil {
		return ErrAlreadyJoined
	}
	opponent := userID
	d.OpponentID = &opponent
	d.Status = models.DuelActive
	return nil
}

func (m *MemoryStore) SubmitScore(id string, asChallenger bool, score int, now time.Time) (*models.Duel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.duels[id]
	if !ok {
		return nil, ErrDuelNotFound
	}

	if asChallenger {
		if d.ChallengerScore != nil {
			return nil, ErrAlreadySubmitted
		}
		s := score
		d.ChallengerScore = &s
	} else {
		if d.OpponentScore != nil {
			return nil, ErrAlreadySubmitted
		}
		s := score
		d.OpponentScore = &s
	}

	if d.ChallengerScore != nil && d.OpponentScore != nil && d.Status != models.DuelCompleted {
		d.Status = models.DuelCompleted
		at := now
		d.CompletedAt = &at
	}

	copied := *d
	return &copied, nil
}
