package conversation

import (
	"context"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps conversations in process. A janitor sweeps expired entries.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{cache: cache.New(ttl, ttl/2)}
}

func (s *MemoryStore) Load(_ context.Context, userID int64) (*Conversation, error) {
	v, found := s.cache.Get(strconv.FormatInt(userID, 10))
	if !found {
		return nil, nil
	}
	conv := v.(Conversation)
	conv.Data = copyData(nil, conv.Data)
	return &conv, nil
}

func (s *MemoryStore) Save(_ context.Context, userID int64, conv Conversation, ttl time.Duration) error {
	conv.Data = copyData(nil, conv.Data)
	s.cache.Set(strconv.FormatInt(userID, 10), conv, ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID int64) error {
	s.cache.Delete(strconv.FormatInt(userID, 10))
	return nil
}
