package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-redis/redis/v8"

	"github.com/poplarplanet/SmileWritingQuiz/internal/models"
)

// ErrUserNotFound is returned when no user document exists under the key.
var ErrUserNotFound = errors.New("user not found")

// RedisStore keeps the current-user document and the session snapshot list as
// whole JSON documents under string keys. Writes replace the document; there
// are no field-level updates. A concurrent writer on the same user can lose
// an update (read-then-replace, no transaction).
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisStore{client: client}
}

func userKey(userID string) string {
	return "user:" + userID
}

func statsKey(userID string) string {
	return "stats:" + userID
}

func (s *RedisStore) SaveUser(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	// Users are never deleted, so no expiration.
	return s.client.Set(ctx, userKey(user.ID), data, 0).Err()
}

func (s *RedisStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	data, err := s.client.Get(ctx, userKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// AppendStats appends one session snapshot to the user's history list. The
// whole list is read, extended and written back.
func (s *RedisStore) AppendStats(ctx context.Context, userID string, stats models.SessionStats) error {
	history, err := s.GetStats(ctx, userID)
	if err != nil {
		return err
	}

	history = append(history, stats)
	data, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, statsKey(userID), data, 0).Err()
}

func (s *RedisStore) GetStats(ctx context.Context, userID string) ([]models.SessionStats, error) {
	data, err := s.client.Get(ctx, statsKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.SessionStats{}, nil
		}
		return nil, err
	}

	var history []models.SessionStats
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}
