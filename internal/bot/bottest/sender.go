// Package bottest provides an in-memory Sender for handler tests.
package bottest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"legalbot/internal/bot"
)

type Sent struct {
	ChatID    int64
	MessageID int
	Reply     bot.Reply
	Edited    bool
}

type Sender struct {
	mu        sync.Mutex
	nextID    int
	Messages  []Sent
	Callbacks map[string]string
	Files     map[string][]byte
	// FailChats makes Send fail for the listed chats.
	FailChats map[int64]bool
}

func NewSender() *Sender {
	return &Sender{Callbacks: map[string]string{}, Files: map[string][]byte{}, FailChats: map[int64]bool{}}
}

func (s *Sender) Send(_ context.Context, chatID int64, reply bot.Reply) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailChats[chatID] {
		return 0, fmt.Errorf("chat %d unreachable", chatID)
	}
	s.nextID++
	s.Messages = append(s.Messages, Sent{ChatID: chatID, MessageID: s.nextID, Reply: reply})
	return s.nextID, nil
}

func (s *Sender) Edit(_ context.Context, chatID int64, messageID int, reply bot.Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, Sent{ChatID: chatID, MessageID: messageID, Reply: reply, Edited: true})
	return nil
}

func (s *Sender) AnswerCallback(_ context.Context, callbackID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Callbacks[callbackID] = text
	return nil
}

func (s *Sender) Download(_ context.Context, fileID string, maxBytes int64) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.Files[fileID]
	if !ok {
		return nil, fmt.Errorf("file %s not found", fileID)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("file %s exceeds %d bytes", fileID, maxBytes)
	}
	return data, nil
}

// To returns what was sent or edited in chatID, in order.
func (s *Sender) To(chatID int64) []Sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Sent
	for _, m := range s.Messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

// Last returns the most recent text delivered to chatID.
func (s *Sender) Last(chatID int64) string {
	msgs := s.To(chatID)
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].Reply.Text
}

// Contains reports whether any message to chatID contains substr.
func (s *Sender) Contains(chatID int64, substr string) bool {
	for _, m := range s.To(chatID) {
		if strings.Contains(m.Reply.Text, substr) {
			return true
		}
	}
	return false
}

func (s *Sender) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Messages)
}

var _ bot.Sender = (*Sender)(nil)
