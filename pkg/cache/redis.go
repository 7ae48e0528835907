package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/models"

	"github.com/go-redis/redis/v8"
)

const dailyTTL = 48 * time.Hour

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr string) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{client: client}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// SetDailyQuestionIDs stores the question selection for one day. The TTL
// outlives the day so late players still get the same set.
func (c *RedisCache) SetDailyQuestionIDs(ctx context.Context, day string, ids []uint) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "daily:"+day, data, dailyTTL).Err()
}

func (c *RedisCache) GetDailyQuestionIDs(ctx context.Context, day string) ([]uint, error) {
	data, err := c.client.Get(ctx, "daily:"+day).Bytes()
	if err != nil {
		return nil, err
	}
	var ids []uint
	err = json.Unmarshal(data, &ids)
	return ids, err
}

// SetRanking replaces the leaderboard sorted set behind key. Members are
// user ids, scores are period XP.
func (c *RedisCache) SetRanking(ctx context.Context, key string, entries []models.RankingEntry, ttl time.Duration) error {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	for _, entry := range entries {
		pipe.ZAdd(ctx, key, &redis.Z{
			Score:  float64(entry.Score),
			Member: strconv.FormatUint(uint64(entry.UserID), 10),
		})
	}
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// GetRanking reads the top limit members, best score first. Entries carry
// user id, score and position only.
func (c *RedisCache) GetRanking(ctx context.Context, key string, limit int) ([]models.RankingEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, key, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]models.RankingEntry, 0, len(results))
	for i, z := range results {
		id, err := strconv.ParseUint(z.Member.(string), 10, 32)
		if err != nil {
			continue
		}
		entries = append(entries, models.RankingEntry{
			UserID:   uint(id),
			Score:    int(z.Score),
			Position: i + 1,
		})
	}
	return entries, nil
}
