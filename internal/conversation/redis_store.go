package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "legalbot:conversation:"

// RedisStore shares conversations between bot replicas.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(userID int64) string {
	return redisKeyPrefix + strconv.FormatInt(userID, 10)
}

func (s *RedisStore) Load(ctx context.Context, userID int64) (*Conversation, error) {
	raw, err := s.client.Get(ctx, redisKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var conv Conversation
	if err := json.Unmarshal(raw, &conv); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}
	return &conv, nil
}

func (s *RedisStore) Save(ctx context.Context, userID int64, conv Conversation, ttl time.Duration) error {
	raw, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}
	return s.client.Set(ctx, redisKey(userID), raw, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, userID int64) error {
	return s.client.Del(ctx, redisKey(userID)).Err()
}
