package ranking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/models"
)

// ErrInvalidPeriod is returned for an unknown leaderboard period.
var ErrInvalidPeriod = errors.New("invalid ranking period")

// Period selects the leaderboard window.
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAllTime Period = "alltime"
)

// ParsePeriod maps the query value to a Period; empty defaults to weekly.
func ParsePeriod(s string) (Period, error) {
	switch s {
	case "", "weekly":
		return PeriodWeekly, nil
	case "monthly":
		return PeriodMonthly, nil
	case "alltime":
		return PeriodAllTime, nil
	default:
		return "", ErrInvalidPeriod
	}
}

// Store aggregates leaderboard rows from persisted sessions and profiles.
type Store interface {
	TopSince(since time.Time, limit int) ([]models.RankingEntry, error)
	TopAllTime(limit int) ([]models.RankingEntry, error)
	ProfilesByIDs(ids []uint) ([]models.Profile, error)
}

// Cache holds a leaderboard sorted set per period key. Entries coming back
// from the cache carry only user id, score and position; profiles are
// hydrated on read.
type Cache interface {
	GetRanking(ctx context.Context, key string, limit int) ([]models.RankingEntry, error)
	SetRanking(ctx context.Context, key string, entries []models.RankingEntry, ttl time.Duration) error
}

const cacheTTL = 5 * time.Minute

type Service struct {
	store Store
	cache Cache
	now   func() time.Time
}

func NewService(store Store, cache Cache) *Service {
	return &Service{store: store, cache: cache, now: time.Now}
}

// Top returns the leaderboard for the period, best score first. Weekly counts
// XP gained since Monday 00:00 UTC, monthly since the first of the month,
// alltime ranks total profile XP. Cache failures fall back to the database.
func (s *Service) Top(ctx context.Context, period Period, limit int) ([]models.RankingEntry, error) {
	key := s.cacheKey(period)

	if s.cache != nil {
		if cached, err := s.cache.GetRanking(ctx, key, limit); err == nil && len(cached) > 0 {
			return s.hydrate(cached)
		}
	}

	var entries []models.RankingEntry
	var err error
	if period == PeriodAllTime {
		entries, err = s.store.TopAllTime(limit)
	} else {
		entries, err = s.store.TopSince(PeriodStart(period, s.now()), limit)
	}
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Position = i + 1
	}

	if s.cache != nil && len(entries) > 0 {
		if err := s.cache.SetRanking(ctx, key, entries, cacheTTL); err != nil {
			slog.Warn("caching ranking failed", "key", key, "err", err)
		}
	}
	return entries, nil
}

// PeriodStart computes the inclusive lower bound of a period window in UTC.
// For alltime it is the zero time.
func PeriodStart(period Period, now time.Time) time.Time {
	now = now.UTC()
	switch period {
	case PeriodWeekly:
		// back to Monday 00:00
		daysBack := (int(now.Weekday()) + 6) % 7
		monday := now.AddDate(0, 0, -daysBack)
		return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
	case PeriodMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Time{}
	}
}

// cacheKey embeds the window start so a new week or month never serves the
// previous window's entries.
func (s *Service) cacheKey(period Period) string {
	switch period {
	case PeriodAllTime:
		return "ranking:alltime"
	default:
		return "ranking:" + string(period) + ":" + PeriodStart(period, s.now()).Format("2006-01-02")
	}
}

// hydrate fills names, avatars and levels for cached entries, dropping users
// that no longer exist.
func (s *Service) hydrate(entries []models.RankingEntry) ([]models.RankingEntry, error) {
	ids := make([]uint, len(entries))
	for i, e := range entries {
		ids[i] = e.UserID
	}
	profiles, err := s.store.ProfilesByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	out := entries[:0]
	for _, e := range entries {
		p, ok := byID[e.UserID]
		if !ok {
			continue
		}
		e.Name = p.Name
		e.AvatarURL = p.AvatarURL
		e.Level = p.Level
		out = append(out, e)
	}
	for i := range out {
		out[i].Position = i + 1
	}
	return out, nil
}
