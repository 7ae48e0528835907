package social

import (
	"errors"
	"sort"
	"time"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/models"
	"github.com/diogo-fc/quiz-copa-do-mundo/internal/profile"
)

var (
	// ErrUserNotFound means no profile matches the given email.
	ErrUserNotFound = errors.New("user not found")
	// ErrSelfFriend is returned when a user tries to friend themselves.
	ErrSelfFriend = errors.New("cannot add yourself as a friend")
	// ErrAlreadyFriends is returned for a duplicate friend request.
	ErrAlreadyFriends = errors.New("friendship already exists")
	// ErrFriendshipNotFound is returned when removing a link that is not there.
	ErrFriendshipNotFound = errors.New("friendship not found")
)

// Store persists friendships and reads the rows the feed is built from.
type Store interface {
	ProfileByEmail(email string) (*models.Profile, error)
	ProfilesByIDs(ids []uint) ([]models.Profile, error)
	FriendshipBetween(userID, friendID uint) (*models.Friendship, error)
	CreateFriendship(f *models.Friendship) error
	AcceptFriendship(id uint) error
	DeleteFriendship(userID, friendID uint) (bool, error)
	FriendshipsOf(userID uint) ([]models.Friendship, error)
	RecentSessionsByUsers(userIDs []uint, limit int) ([]models.GameSession, error)
	RecentAchievementsByUsers(userIDs []uint, limit int) ([]models.UserAchievement, error)
	RecentCompletedDuelsByUsers(userIDs []uint, limit int) ([]models.Duel, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Friend is one row of a user's friend list.
type Friend struct {
	Profile  models.ProfileDTO       `json:"profile"`
	Status   models.FriendshipStatus `json:"status"`
	Incoming bool                    `json:"incoming"`
	Since    time.Time               `json:"since"`
}

// AddFriend links the caller to the profile behind email. A pending request
// in the opposite direction is accepted instead of duplicated.
func (s *Service) AddFriend(userID uint, email string) (*Friend, error) {
	target, err := s.store.ProfileByEmail(email)
	if err != nil {
		return nil, err
	}
	if target.ID == userID {
		return nil, ErrSelfFriend
	}

	if existing, err := s.store.FriendshipBetween(userID, target.ID); err == nil && existing != nil {
		// reverse pending request: accept it
		if existing.Status == models.FriendshipPending && existing.UserID == target.ID {
			if err := s.store.AcceptFriendship(existing.ID); err != nil {
				return nil, err
			}
			return &Friend{
				Profile: target.ToDTO(),
				Status:  models.FriendshipAccepted,
				Since:   existing.CreatedAt,
			}, nil
		}
		return nil, ErrAlreadyFriends
	}

	f := &models.Friendship{
		UserID:    userID,
		FriendID:  target.ID,
		Status:    models.FriendshipPending,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateFriendship(f); err != nil {
		return nil, err
	}
	return &Friend{
		Profile: target.ToDTO(),
		Status:  models.FriendshipPending,
		Since:   f.CreatedAt,
	}, nil
}

// Friends lists accepted friends and pending requests in both directions.
func (s *Service) Friends(userID uint) ([]Friend, error) {
	links, err := s.store.FriendshipsOf(userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(links))
	for _, l := range links {
		ids = append(ids, otherSide(l, userID))
	}
	profiles, err := s.store.ProfilesByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	friends := make([]Friend, 0, len(links))
	for _, l := range links {
		p, ok := byID[otherSide(l, userID)]
		if !ok {
			continue
		}
		friends = append(friends, Friend{
			Profile:  p.ToDTO(),
			Status:   l.Status,
			Incoming: l.Status == models.FriendshipPending && l.FriendID == userID,
			Since:    l.CreatedAt,
		})
	}
	return friends, nil
}

// RemoveFriend deletes the link between the two users regardless of which
// side created it.
func (s *Service) RemoveFriend(userID, friendID uint) error {
	deleted, err := s.store.DeleteFriendship(userID, friendID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrFriendshipNotFound
	}
	return nil
}

// FeedItem is one activity of a friend, newest first in the feed.
type FeedItem struct {
	UserID     uint      `json:"user_id"`
	Name       string    `json:"name"`
	AvatarURL  string    `json:"avatar_url"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`

	// session fields, set when Type == "quiz_completed"
	Mode           models.GameMode `json:"mode,omitempty"`
	Score          int             `json:"score,omitempty"`
	CorrectAnswers int             `json:"correct_answers,omitempty"`
	TotalQuestions int             `json:"total_questions,omitempty"`

	// achievement fields, set when Type == "achievement_unlocked"
	AchievementID   string `json:"achievement_id,omitempty"`
	AchievementName string `json:"achievement_name,omitempty"`
}

// Feed merges recent sessions, duel wins and achievement unlocks of the user
// and their accepted friends, newest first, capped at limit.
func (s *Service) Feed(userID uint, limit int) ([]FeedItem, error) {
	links, err := s.store.FriendshipsOf(userID)
	if err != nil {
		return nil, err
	}
	watched := []uint{userID}
	for _, l := range links {
		if l.Status == models.FriendshipAccepted {
			watched = append(watched, otherSide(l, userID))
		}
	}

	sessions, err := s.store.RecentSessionsByUsers(watched, limit)
	if err != nil {
		return nil, err
	}
	unlocks, err := s.store.RecentAchievementsByUsers(watched, limit)
	if err != nil {
		return nil, err
	}
	duels, err := s.store.RecentCompletedDuelsByUsers(watched, limit)
	if err != nil {
		return nil, err
	}
	profiles, err := s.store.ProfilesByIDs(watched)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	items := make([]FeedItem, 0, len(sessions)+len(unlocks))
	for _, gs := range sessions {
		p := byID[gs.UserID]
		items = append(items, FeedItem{
			UserID:         gs.UserID,
			Name:           p.Name,
			AvatarURL:      p.AvatarURL,
			Type:           "quiz_completed",
			OccurredAt:     gs.CompletedAt,
			Mode:           gs.Mode,
			Score:          gs.Score,
			CorrectAnswers: gs.CorrectAnswers,
			TotalQuestions: gs.TotalQuestions,
		})
	}
	for _, d := range duels {
		winnerID, ok := duelWinnerID(d)
		if !ok || d.CompletedAt == nil {
			continue
		}
		p, watchedWinner := byID[winnerID]
		if !watchedWinner {
			continue
		}
		items = append(items, FeedItem{
			UserID:     winnerID,
			Name:       p.Name,
			AvatarURL:  p.AvatarURL,
			Type:       "duel_won",
			OccurredAt: *d.CompletedAt,
		})
	}
	for _, ua := range unlocks {
		p := byID[ua.UserID]
		item := FeedItem{
			UserID:        ua.UserID,
			Name:          p.Name,
			AvatarURL:     p.AvatarURL,
			Type:          "achievement_unlocked",
			OccurredAt:    ua.UnlockedAt,
			AchievementID: ua.Type,
		}
		if a, ok := profile.CatalogByID(ua.Type); ok {
			item.AchievementName = a.Name
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].OccurredAt.After(items[j].OccurredAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func otherSide(l models.Friendship, userID uint) uint {
	if l.UserID == userID {
		return l.FriendID
	}
	return l.UserID
}

// duelWinnerID names the winning participant; ok=false for a draw or an
// unfinished duel.
func duelWinnerID(d models.Duel) (uint, bool) {
	if d.ChallengerScore == nil || d.OpponentScore == nil || d.OpponentID == nil {
		return 0, false
	}
	switch {
	case *d.ChallengerScore > *d.OpponentScore:
		return d.ChallengerID, true
	case *d.OpponentScore > *d.ChallengerScore:
		return *d.OpponentID, true
	default:
		return 0, false
	}
}
