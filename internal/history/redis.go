package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const historyKey = "ytchat:qa_history"

// redisCommands is the slice of the go-redis client the store uses.
type redisCommands interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps the QA log in a Redis list, surviving process restarts.
// Entry ids are list positions: RPUSH returns the list length after the
// push, so concurrent appends can never mint the same id.
type RedisStore struct {
	client redisCommands
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: rdb}
}

func (s *RedisStore) Append(ctx context.Context, question, answer, askedBy string) (Entry, error) {
	entry := Entry{
		Question: question,
		Answer:   answer,
		AskedBy:  askedBy,
		AskedAt:  time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal history entry: %w", err)
	}
	n, err := s.client.RPush(ctx, historyKey, data).Result()
	if err != nil {
		return Entry{}, fmt.Errorf("append history entry: %w", err)
	}
	entry.ID = int(n)
	return entry, nil
}

func (s *RedisStore) List(ctx context.Context) ([]Entry, error) {
	vals, err := s.client.LRange(ctx, historyKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	out := make([]Entry, 0, len(vals))
	for i, val := range vals {
		var entry Entry
		if err := json.Unmarshal([]byte(val), &entry); err != nil {
			return nil, fmt.Errorf("decode history entry: %w", err)
		}
		entry.ID = i + 1
		out = append(out, entry)
	}
	return out, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, historyKey).Err(); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
