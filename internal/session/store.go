package session

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Store holds per-session UI state and user presence. This replaces the implicit
// server-session flags of the old system with explicit keys the handlers pass around.
type Store interface {
	// ShowModalOnce reports whether the stock-alert modal should be shown for this
	// session, and marks it shown. Only the first call per session returns true.
	ShowModalOnce(ctx context.Context, sessionID string) (bool, error)
	ResetModal(ctx context.Context, sessionID string) error
	Touch(ctx context.Context, username string) error
	OnlineUsers(ctx context.Context) ([]string, error)
	ClearPresence(ctx context.Context, username string) error
}

const (
	modalKeyPrefix    = "glua:session:modal:"
	presenceKeyPrefix = "glua:presence:"
	sessionTTL        = 12 * time.Hour
	presenceTTL       = 5 * time.Minute
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisStore{client: client}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) ShowModalOnce(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return true, nil
	}
	// SetNX wins only for the first call in this session
	set, err := s.client.SetNX(ctx, modalKeyPrefix+sessionID, "1", sessionTTL).Result()
	if err != nil {
		return true, err
	}
	return set, nil
}

func (s *RedisStore) ResetModal(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.client.Del(ctx, modalKeyPrefix+sessionID).Err()
}

func (s *RedisStore) Touch(ctx context.Context, username string) error {
	if username == "" {
		return nil
	}
	return s.client.Set(ctx, presenceKeyPrefix+username, time.Now().Format(time.RFC3339), presenceTTL).Err()
}

func (s *RedisStore) OnlineUsers(ctx context.Context) ([]string, error) {
	var users []string
	iter := s.client.Scan(ctx, 0, presenceKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		users = append(users, iter.Val()[len(presenceKeyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *RedisStore) ClearPresence(ctx context.Context, username string) error {
	if username == "" {
		return nil
	}
	return s.client.Del(ctx, presenceKeyPrefix+username).Err()
}

// NoopStore is used when no Redis address is configured. The modal shows on every
// load, like a fresh session would.
type NoopStore struct{}

func (NoopStore) ShowModalOnce(_ context.Context, _ string) (bool, error) { return true, nil }
func (NoopStore) ResetModal(_ context.Context, _ string) error            { return nil }
func (NoopStore) Touch(_ context.Context, _ string) error                 { return nil }
func (NoopStore) OnlineUsers(_ context.Context) ([]string, error)         { return nil, nil }
func (NoopStore) ClearPresence(_ context.Context, _ string) error         { return nil }
