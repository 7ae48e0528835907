// Package scoring holds the pure point, XP and level formulas. Every function
// is deterministic and safe to call concurrently; none of them touch storage.
package scoring

import (
	"math"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/models"
)

const basePoints = 100

var difficultyMultiplier = map[models.Difficulty]float64{
	models.DifficultyFacil:   1.0,
	models.DifficultyMedio:   1.5,
	models.DifficultyDificil: 2.0,
}

var modeMultiplier = map[models.GameMode]float64{
	models.ModeTreino:  0.5,
	models.ModeDesafio: 1.0,
	models.ModeDuelo:   1.5,
	models.ModeDiario:  1.2,
}

// streakThresholds is ordered descending; only the highest reached bonus
// applies, the bonuses do not stack.
var streakThresholds = []struct {
	streak int
	bonus  int
}{
	{15, 200},
	{10, 100},
	{5, 50},
	{3, 25},
}

// BaseScore returns the points awarded for a correct answer before bonuses.
func BaseScore(difficulty models.Difficulty) int {
	return int(math.Floor(basePoints * difficultyMultiplier[difficulty]))
}

// SpeedBonus awards up to 50 points proportional to the time left on the
// clock. Out-of-range input is clamped rather than rejected.
func SpeedBonus(timeRemaining, totalTime float64) int {
	if totalTime <= 0 || timeRemaining <= 0 {
		return 0
	}
	if timeRemaining > totalTime {
		timeRemaining = totalTime
	}
	return int(math.Floor(timeRemaining / totalTime * 50))
}

// StreakBonus returns the bonus for the highest threshold the streak reaches,
// or 0 below 3 consecutive correct answers.
func StreakBonus(currentStreak int) int {
	for _, t := range streakThresholds {
		if currentStreak >= t.streak {
			return t.bonus
		}
	}
	return 0
}

// AnswerScore computes the points for one answer. currentStreak must already
// include this answer. Pass timed=false when the mode has no clock; the time
// arguments are ignored in that case.
func AnswerScore(difficulty models.Difficulty, isCorrect bool, currentStreak int, timed bool, timeRemaining, totalTime float64) int {
	if !isCorrect {
		return 0
	}
	score := BaseScore(difficulty)
	if timed {
		score += SpeedBonus(timeRemaining, totalTime)
	}
	score += StreakBonus(currentStreak)
	return score
}

// XPFromScore converts a session score into XP for the given game mode.
func XPFromScore(score int, mode models.GameMode) int {
	return int(math.Floor(float64(score) * modeMultiplier[mode] * 0.1))
}

// XPThresholdForLevel returns the cumulative XP required to hold a level.
// The curve 100 * level^1.5 is strictly increasing for level >= 1.
func XPThresholdForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return int(math.Floor(100 * math.Pow(float64(level), 1.5)))
}

// LevelFromXP returns the highest level whose threshold the XP reaches.
func LevelFromXP(totalXP int) int {
	level := 1
	for XPThresholdForLevel(level+1) <= totalXP {
		level++
	}
	return level
}

// LevelProgressPercent reports progress through the current level, 0 exactly
// at a threshold and approaching 100 just before the next one.
func LevelProgressPercent(totalXP int) int {
	level := LevelFromXP(totalXP)
	current := XPThresholdForLevel(level)
	next := XPThresholdForLevel(level + 1)
	span := next - current
	if span <= 0 {
		return 0
	}
	return int(math.Floor(float64(totalXP-current) / float64(span) * 100))
}

// LevelTitle maps a level to its display title.
func LevelTitle(level int) string {
	switch {
	case level >= 100:
		return "Lenda"
	case level >= 50:
		return "Craque"
	case level >= 25:
		return "Titular"
	case level >= 10:
		return "Reserva"
	default:
		return "Novato"
	}
}
