package history

import (
	"context"
	"fmt"
	"time"

	"ytchatbot/config"
)

// Entry is one question/answer record. Ids are 1-based and monotonically
// increasing until the log is cleared, which resets the counter.
type Entry struct {
	ID       int       `json:"id"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedBy  string    `json:"asked_by"`
	AskedAt  time.Time `json:"asked_at"`
}

// Store is an append-only question/answer log.
type Store interface {
	Append(ctx context.Context, question, answer, askedBy string) (Entry, error)
	List(ctx context.Context) ([]Entry, error)
	Clear(ctx context.Context) error
}

// NewStore creates the history backend selected by configuration.
func NewStore(cfg config.HistoryConfig) (Store, error) {
	switch cfg.Store {
	case "inmemory":
		return NewInMemoryStore(), nil
	case "redis":
		return NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB), nil
	default:
		return nil, fmt.Errorf("unsupported history store: %s", cfg.Store)
	}
}
