package models

import (
	"time"

	"gorm.io/datatypes"
)

// Category is the trivia category a question belongs to.
type Category string

const (
	CategorySelecoes     Category = "selecoes"
	CategoryFinais       Category = "finais"
	CategoryArtilheiros  Category = "artilheiros"
	CategoryCuriosidades Category = "curiosidades"
	CategoryCopa2026     Category = "copa2026"
)

func (c Category) Valid() bool {
	switch c {
	case CategorySelecoes, CategoryFinais, CategoryArtilheiros, CategoryCuriosidades, CategoryCopa2026:
		return true
	}
	return false
}

// Difficulty of a question. Reward ordering is facil < medio < dificil.
type Difficulty string

const (
	DifficultyFacil   Difficulty = "facil"
	DifficultyMedio   Difficulty = "medio"
	DifficultyDificil Difficulty = "dificil"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyFacil, DifficultyMedio, DifficultyDificil:
		return true
	}
	return false
}

// GameMode identifies how a quiz session is played and timed.
type GameMode string

const (
	ModeTreino  GameMode = "treino"
	ModeDesafio GameMode = "desafio"
	ModeDuelo   GameMode = "duelo"
	ModeDiario  GameMode = "diario"
)

func (m GameMode) Valid() bool {
	switch m {
	case ModeTreino, ModeDesafio, ModeDuelo, ModeDiario:
		return true
	}
	return false
}

// Profile is the durable per-user record. Level is always derived from XP;
// both are written together so the invariant level == LevelFromXP(xp) holds.
type Profile struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"not null"`
	Name         string     `json:"name"`
	AvatarURL    string     `json:"avatar_url"`
	FavoriteTeam string     `json:"favorite_team"`
	XP           int        `json:"xp" gorm:"not null;default:0"`
	Level        int        `json:"level" gorm:"not null;default:1"`
	StreakDays   int        `json:"streak_days" gorm:"not null;default:0"`
	LastPlayedAt *time.Time `json:"last_played_at"`
}

// Question is an immutable trivia item with exactly four options.
type Question struct {
	ID            uint                        `json:"id" gorm:"primaryKey"`
	CreatedAt     time.Time                   `json:"created_at"`
	Text          string                      `json:"text" gorm:"not null"`
	Options       datatypes.JSONSlice[string] `json:"options" gorm:"not null"`
	CorrectAnswer int                         `json:"correct_answer" gorm:"not null"`
	Category      Category                    `json:"category" gorm:"index;not null"`
	Difficulty    Difficulty                  `json:"difficulty" gorm:"index;not null"`
	Explanation   string                      `json:"explanation"`
}

// GameSession is the persisted summary of one completed quiz session.
type GameSession struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"user_id" gorm:"index;not null"`
	Mode           GameMode  `json:"mode" gorm:"not null"`
	Score          int       `json:"score" gorm:"not null"`
	CorrectAnswers int       `json:"correct_answers" gorm:"not null"`
	TotalQuestions int       `json:"total_questions" gorm:"not null"`
	MaxStreak      int       `json:"max_streak"`
	XPGained       int       `json:"xp_gained"`
	TimeSpent      int       `json:"time_spent"`
	CompletedAt    time.Time `json:"completed_at" gorm:"index"`
}

// DuelStatus transitions pending -> active -> completed, never backward.
type DuelStatus string

const (
	DuelPending   DuelStatus = "pending"
	DuelActive    DuelStatus = "active"
	DuelCompleted DuelStatus = "completed"
)

// Duel is shared between exactly two participants. Scores transition
// null -> value exactly once; completed_at is set iff status == completed.
type Duel struct {
	ID              string                    `json:"id" gorm:"primaryKey"`
	CreatedAt       time.Time                 `json:"created_at"`
	ChallengerID    uint                      `json:"challenger_id" gorm:"index;not null"`
	OpponentID      *uint                     `json:"opponent_id" gorm:"index"`
	QuestionIDs     datatypes.JSONSlice[uint] `json:"question_ids" gorm:"not null"`
	ChallengerScore *int                      `json:"challenger_score"`
	OpponentScore   *int                      `json:"opponent_score"`
	Status          DuelStatus                `json:"status" gorm:"not null;default:pending"`
	CompletedAt     *time.Time                `json:"completed_at"`
}

// FriendshipStatus of a friendship row.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
)

// Friendship links two profiles in either direction.
type Friendship struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time        `json:"created_at"`
	UserID    uint             `json:"user_id" gorm:"index;not null;uniqueIndex:idx_friend_pair"`
	FriendID  uint             `json:"friend_id" gorm:"index;not null;uniqueIndex:idx_friend_pair"`
	Status    FriendshipStatus `json:"status" gorm:"not null"`
}

// UserAchievement records one unlocked achievement; unlock is idempotent
// thanks to the unique (user, type) index.
type UserAchievement struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_achievement"`
	Type       string    `json:"achievement_type" gorm:"not null;uniqueIndex:idx_user_achievement"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// RankingEntry is one row of a period leaderboard.
type RankingEntry struct {
	UserID    uint   `json:"user_id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	Level     int    `json:"level"`
	Score     int    `json:"score"`
	Position  int    `json:"position"`
}
