package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	opts, err := redis.ParseURL("redis://" + mr.Addr())
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func stores(t *testing.T) map[string]Store {
	redisStore, _ := newRedisStore(t)
	return map[string]Store{
		"memory": NewMemoryStore(time.Minute),
		"redis":  redisStore,
	}
}

func TestDocumentFlow(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			m := NewMachine(store, Options{})

			conv, err := m.Begin(ctx, 7, FlowDocument, nil)
			require.NoError(t, err)
			assert.Equal(t, StateAwaitingDocType, conv.State)

			conv, err = m.Advance(ctx, 7, StateAwaitingDocType, StateAwaitingDetails, map[string]string{"kind": "nda"})
			require.NoError(t, err)
			assert.Equal(t, "nda", conv.Data["kind"])

			current, ok, err := m.Current(ctx, 7)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, StateAwaitingDetails, current.State)
			assert.Equal(t, FlowDocument, current.Flow)

			require.NoError(t, m.End(ctx, 7))
			_, ok, err = m.Current(ctx, 7)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestInvalidTransitions(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			m := NewMachine(store, Options{})

			_, err := m.Advance(ctx, 1, StateAwaitingDocType, StateAwaitingDetails, nil)
			assert.True(t, errors.Is(err, ErrInvalidTransition), "no conversation")

			_, err = m.Begin(ctx, 1, FlowBroadcast, map[string]string{"message": "oi"})
			require.NoError(t, err)
			_, err = m.Advance(ctx, 1, StateAwaitingDocType, StateAwaitingDetails, nil)
			assert.True(t, errors.Is(err, ErrInvalidTransition), "wrong source state")

			_, err = m.Advance(ctx, 1, StateAwaitingBroadcastConfirm, StateAwaitingDetails, nil)
			assert.True(t, errors.Is(err, ErrInvalidTransition), "no edge")

			_, err = m.Begin(ctx, 1, Flow("payment"), nil)
			assert.True(t, errors.Is(err, ErrInvalidTransition), "unknown flow")
		})
	}
}

func TestBeginReplacesExistingConversation(t *testing.T) {
	ctx := context.Background()
	m := NewMachine(NewMemoryStore(time.Minute), Options{})
	_, err := m.Begin(ctx, 3, FlowBroadcast, map[string]string{"message": "x"})
	require.NoError(t, err)
	_, err = m.Begin(ctx, 3, FlowDocument, nil)
	require.NoError(t, err)

	conv, ok, err := m.Current(ctx, 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, FlowDocument, conv.Flow)
	assert.Empty(t, conv.Data)
}

func TestRedisConversationExpires(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	m := NewMachine(store, Options{TTL: 30 * time.Minute})

	_, err := m.Begin(ctx, 9, FlowDocument, nil)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, mr.TTL(redisKeyPrefix+"9"))

	mr.FastForward(31 * time.Minute)
	_, ok, err := m.Current(ctx, 9)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryConversationExpires(t *testing.T) {
	ctx := context.Background()
	m := NewMachine(NewMemoryStore(time.Minute), Options{TTL: 20 * time.Millisecond})
	_, err := m.Begin(ctx, 4, FlowDocument, nil)
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)
	_, ok, err := m.Current(ctx, 4)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreIsolatesCallerData(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	data := map[string]string{"kind": "nda"}
	require.NoError(t, store.Save(ctx, 5, Conversation{Flow: FlowDocument, State: StateAwaitingDetails, Data: data}, time.Minute))
	data["kind"] = "peticao"

	conv, err := store.Load(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "nda", conv.Data["kind"])
}
