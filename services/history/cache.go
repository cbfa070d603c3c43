package history

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// Store persists the per-diner reservation history between polls.
type Store interface {
	Load(ctx context.Context, userID string) ([]Entry, error)
	Save(ctx context.Context, userID string, entries []Entry) error
}

// RedisStore keeps one JSON blob per diner, expiring with the retention
// window so abandoned histories clean themselves up.
type RedisStore struct {
	Client *redis.Client
}

func historyKey(userID string) string {
	return "reservationHistory:" + userID
}

func (s *RedisStore) Load(ctx context.Context, userID string) ([]Entry, error) {
	raw, err := s.Client.Get(ctx, historyKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []Entry{}, nil
		}
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		// A corrupt blob is treated as an empty history rather than a hard
		// failure; the next sync rebuilds it.
		return []Entry{}, nil
	}
	return entries, nil
}

func (s *RedisStore) Save(ctx context.Context, userID string, entries []Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, historyKey(userID), raw, retention+24*time.Hour).Err()
}
