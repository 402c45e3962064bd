// Package conversation tracks multi-step chat flows per user.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Flow string

const (
	FlowDocument  Flow = "document"
	FlowBroadcast Flow = "broadcast"
)

type State string

const (
	StateAwaitingDocType          State = "awaiting_doc_type"
	StateAwaitingDetails          State = "awaiting_details"
	StateAwaitingBroadcastConfirm State = "awaiting_broadcast_confirm"
)

// DefaultTTL is how long an idle conversation survives.
const DefaultTTL = 30 * time.Minute

var ErrInvalidTransition = errors.New("invalid conversation transition")

var initialState = map[Flow]State{
	FlowDocument:  StateAwaitingDocType,
	FlowBroadcast: StateAwaitingBroadcastConfirm,
}

var transitions = map[State][]State{
	StateAwaitingDocType: {StateAwaitingDetails},
}

// Conversation is the persisted state of one user's flow.
type Conversation struct {
	Flow      Flow              `json:"flow"`
	State     State             `json:"state"`
	Data      map[string]string `json:"data,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Store persists conversations. Entries older than ttl must read as absent.
type Store interface {
	Load(ctx context.Context, userID int64) (*Conversation, error)
	Save(ctx context.Context, userID int64, conv Conversation, ttl time.Duration) error
	Delete(ctx context.Context, userID int64) error
}

type Options struct {
	TTL   time.Duration
	Clock func() time.Time
}

type Machine struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func NewMachine(store Store, opts Options) *Machine {
	m := &Machine{store: store, ttl: opts.TTL, now: time.Now}
	if m.ttl <= 0 {
		m.ttl = DefaultTTL
	}
	if opts.Clock != nil {
		m.now = opts.Clock
	}
	return m
}

// Begin starts flow for the user, replacing any conversation in progress.
func (m *Machine) Begin(ctx context.Context, userID int64, flow Flow, data map[string]string) (Conversation, error) {
	state, ok := initialState[flow]
	if !ok {
		return Conversation{}, fmt.Errorf("%w: unknown flow %q", ErrInvalidTransition, flow)
	}
	conv := Conversation{Flow: flow, State: state, Data: copyData(nil, data), UpdatedAt: m.now().UTC()}
	if err := m.store.Save(ctx, userID, conv, m.ttl); err != nil {
		return Conversation{}, fmt.Errorf("save conversation: %w", err)
	}
	return conv, nil
}

// Advance moves the user's conversation from one state to the next and merges data.
func (m *Machine) Advance(ctx context.Context, userID int64, from, to State, data map[string]string) (Conversation, error) {
	conv, ok, err := m.Current(ctx, userID)
	if err != nil {
		return Conversation{}, err
	}
	if !ok || conv.State != from || !allowed(from, to) {
		return Conversation{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	conv.State = to
	conv.Data = copyData(conv.Data, data)
	conv.UpdatedAt = m.now().UTC()
	if err := m.store.Save(ctx, userID, conv, m.ttl); err != nil {
		return Conversation{}, fmt.Errorf("save conversation: %w", err)
	}
	return conv, nil
}

// Current returns the live conversation, if any.
func (m *Machine) Current(ctx context.Context, userID int64) (Conversation, bool, error) {
	conv, err := m.store.Load(ctx, userID)
	if err != nil {
		return Conversation{}, false, fmt.Errorf("load conversation: %w", err)
	}
	if conv == nil {
		return Conversation{}, false, nil
	}
	return *conv, true, nil
}

// End drops the user's conversation. Ending nothing is not an error.
func (m *Machine) End(ctx context.Context, userID int64) error {
	if err := m.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

func allowed(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func copyData(dst, src map[string]string) map[string]string {
	if len(dst) == 0 && len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		out[k] = v
	}
	return out
}
