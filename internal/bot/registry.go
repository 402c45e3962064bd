package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrDuplicateHandler = errors.New("duplicate handler")

type HandlerFunc func(ctx context.Context, ev Event) error

// TextHandlerFunc reports whether it consumed the message.
type TextHandlerFunc func(ctx context.Context, ev Event) (bool, error)

// Module is a named group of handlers.
type Module interface {
	Name() string
	Register(r *Registry) error
}

type prefixHandler struct {
	prefix  string
	handler HandlerFunc
}

type Registry struct {
	commands      map[string]HandlerFunc
	callbacks     []prefixHandler
	document      HandlerFunc
	conversations []TextHandlerFunc
	texts         []TextHandlerFunc
	modules       []string
}

// NewRegistry registers modules in order.
func NewRegistry(modules ...Module) (*Registry, error) {
	r := &Registry{commands: make(map[string]HandlerFunc)}
	for _, m := range modules {
		if err := m.Register(r); err != nil {
			return nil, fmt.Errorf("register module %s: %w", m.Name(), err)
		}
		r.modules = append(r.modules, m.Name())
	}
	return r, nil
}

func (r *Registry) Command(name string, h HandlerFunc) error {
	name = strings.ToLower(strings.TrimPrefix(name, "/"))
	if _, ok := r.commands[name]; ok {
		return fmt.Errorf("%w: command /%s", ErrDuplicateHandler, name)
	}
	r.commands[name] = h
	return nil
}

func (r *Registry) Callback(prefix string, h HandlerFunc) error {
	for _, existing := range r.callbacks {
		if existing.prefix == prefix {
			return fmt.Errorf("%w: callback %q", ErrDuplicateHandler, prefix)
		}
	}
	r.callbacks = append(r.callbacks, prefixHandler{prefix: prefix, handler: h})
	sort.SliceStable(r.callbacks, func(i, j int) bool {
		return len(r.callbacks[i].prefix) > len(r.callbacks[j].prefix)
	})
	return nil
}

func (r *Registry) Document(h HandlerFunc) error {
	if r.document != nil {
		return fmt.Errorf("%w: document", ErrDuplicateHandler)
	}
	r.document = h
	return nil
}

// Conversation handlers see plain text before anything else.
func (r *Registry) Conversation(h TextHandlerFunc) {
	r.conversations = append(r.conversations, h)
}

func (r *Registry) Text(h TextHandlerFunc) {
	r.texts = append(r.texts, h)
}

func (r *Registry) Modules() []string {
	return append([]string(nil), r.modules...)
}

func (r *Registry) Commands() []string {
	out := make([]string, 0, len(r.commands))
	for name := range r.commands {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Route runs the first matching handler. Unmatched events are dropped.
func (r *Registry) Route(ctx context.Context, ev Event) (bool, error) {
	if ev.CallbackID != "" {
		for _, cb := range r.callbacks {
			if strings.HasPrefix(ev.CallbackData, cb.prefix) {
				return true, cb.handler(ctx, ev)
			}
		}
		return false, nil
	}

	if ev.Command == "" && ev.Text != "" {
		for _, h := range r.conversations {
			if handled, err := h(ctx, ev); handled || err != nil {
				return true, err
			}
		}
	}

	if ev.Command != "" {
		if h, ok := r.commands[strings.ToLower(ev.Command)]; ok {
			return true, h(ctx, ev)
		}
		return false, nil
	}

	if ev.Document != nil && r.document != nil {
		return true, r.document(ctx, ev)
	}

	if ev.Text != "" {
		for _, h := range r.texts {
			if handled, err := h(ctx, ev); handled || err != nil {
				return true, err
			}
		}
	}
	return false, nil
}
