package bot_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"legalbot/internal/bot"
	"legalbot/internal/bot/bottest"
)

type funcModule struct {
	name     string
	register func(r *bot.Registry) error
}

func (m funcModule) Name() string                   { return m.name }
func (m funcModule) Register(r *bot.Registry) error { return m.register(r) }

func TestRegistryRejectsDuplicates(t *testing.T) {
	noop := func(context.Context, bot.Event) error { return nil }
	tests := []struct {
		name     string
		register func(r *bot.Registry) error
	}{
		{name: "command", register: func(r *bot.Registry) error {
			_ = r.Command("start", noop)
			return r.Command("/START", noop)
		}},
		{name: "callback", register: func(r *bot.Registry) error {
			_ = r.Callback("doc_", noop)
			return r.Callback("doc_", noop)
		}},
		{name: "document", register: func(r *bot.Registry) error {
			_ = r.Document(noop)
			return r.Document(noop)
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := bot.NewRegistry(funcModule{name: "m", register: tc.register})
			if !errors.Is(err, bot.ErrDuplicateHandler) {
				t.Fatalf("NewRegistry err = %v, want ErrDuplicateHandler", err)
			}
		})
	}
}

func TestRoutingOrder(t *testing.T) {
	var trail []string
	record := func(name string) bot.HandlerFunc {
		return func(context.Context, bot.Event) error {
			trail = append(trail, name)
			return nil
		}
	}
	pending := map[int64]bool{9: true}
	reg, err := bot.NewRegistry(
		funcModule{name: "one", register: func(r *bot.Registry) error {
			r.Conversation(func(_ context.Context, ev bot.Event) (bool, error) {
				if pending[ev.UserID] {
					trail = append(trail, "conversation")
					return true, nil
				}
				return false, nil
			})
			if err := r.Callback("doc_", record("doc")); err != nil {
				return err
			}
			if err := r.Callback("doc_nda", record("doc_nda")); err != nil {
				return err
			}
			return r.Command("help", record("help"))
		}},
		funcModule{name: "two", register: func(r *bot.Registry) error {
			r.Text(func(_ context.Context, ev bot.Event) (bool, error) {
				if strings.Contains(ev.Text, "lei") {
					trail = append(trail, "keyword")
					return true, nil
				}
				return false, nil
			})
			return r.Document(record("document"))
		}},
	)
	if err != nil {
		t.Fatalf("NewRegistry error: %v", err)
	}
	if got := strings.Join(reg.Modules(), ","); got != "one,two" {
		t.Fatalf("modules = %s", got)
	}

	ctx := context.Background()
	events := []bot.Event{
		{UserID: 9, Text: "qualquer lei"},
		{UserID: 1, Command: "HELP", Text: "/HELP"},
		{UserID: 1, CallbackID: "c1", CallbackData: "doc_nda"},
		{UserID: 1, CallbackID: "c2", CallbackData: "doc_peticao"},
		{UserID: 1, Document: &bot.Document{FileName: "a.txt"}},
		{UserID: 1, Text: "sobre a lei"},
		{UserID: 1, Text: "bom dia"},
		{UserID: 1, Command: "unknown"},
	}
	for _, ev := range events {
		if _, err := reg.Route(ctx, ev); err != nil {
			t.Fatalf("Route error: %v", err)
		}
	}
	want := "conversation,help,doc_nda,doc,document,keyword"
	if got := strings.Join(trail, ","); got != want {
		t.Fatalf("trail = %s, want %s", got, want)
	}
}

func newDispatcher(t *testing.T, sender *bottest.Sender, opts bot.Options, h bot.HandlerFunc) *bot.Dispatcher {
	t.Helper()
	reg, err := bot.NewRegistry(funcModule{name: "test", register: func(r *bot.Registry) error {
		return r.Command("go", h)
	}})
	if err != nil {
		t.Fatalf("NewRegistry error: %v", err)
	}
	return bot.NewDispatcher(reg, sender, opts)
}

func TestDispatcherReportsFailures(t *testing.T) {
	sender := bottest.NewSender()
	d := newDispatcher(t, sender, bot.Options{AdminIDs: []int64{100}}, func(context.Context, bot.Event) error {
		return errors.New("boom")
	})

	d.Handle(context.Background(), bot.Event{UserID: 5, ChatID: 5, Command: "go"})
	if !sender.Contains(5, "Ops! Ocorreu um erro inesperado") {
		t.Fatalf("user did not get an apology: %+v", sender.To(5))
	}
	if !sender.Contains(100, "ERRO NO SISTEMA JURÍDICO") || !sender.Contains(100, "boom") {
		t.Fatalf("admin was not notified: %+v", sender.To(100))
	}

	d.Handle(context.Background(), bot.Event{UserID: 5, ChatID: 5, Command: "go"})
	if n := len(sender.To(100)); n != 1 {
		t.Fatalf("admin notifications = %d, want 1 within the notify interval", n)
	}
}

func TestDispatcherRecoversPanics(t *testing.T) {
	sender := bottest.NewSender()
	d := newDispatcher(t, sender, bot.Options{}, func(context.Context, bot.Event) error {
		panic("nil map")
	})
	d.Handle(context.Background(), bot.Event{UserID: 5, ChatID: 5, Command: "go"})
	if !sender.Contains(5, "Ops!") {
		t.Fatal("panic was not turned into an apology")
	}
}

func TestDispatcherThrottlesPerUser(t *testing.T) {
	sender := bottest.NewSender()
	var calls int32
	d := newDispatcher(t, sender, bot.Options{RateLimit: 2, RateWindow: time.Minute}, func(context.Context, bot.Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	for i := 0; i < 4; i++ {
		d.Handle(context.Background(), bot.Event{UserID: 5, ChatID: 5, Command: "go"})
	}
	d.Handle(context.Background(), bot.Event{UserID: 6, ChatID: 6, Command: "go"})

	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("handled = %d, want 3", got)
	}
	if !sender.Contains(5, "muito rápido") {
		t.Fatal("throttled user was not told")
	}
}

func TestDispatcherAppliesTimeout(t *testing.T) {
	sender := bottest.NewSender()
	d := newDispatcher(t, sender, bot.Options{Timeout: 10 * time.Millisecond}, func(ctx context.Context, _ bot.Event) error {
		<-ctx.Done()
		return ctx.Err()
	})
	d.Handle(context.Background(), bot.Event{UserID: 5, ChatID: 5, Command: "go"})
	if !sender.Contains(5, "Ops!") {
		t.Fatal("timed out handler should be reported")
	}
}

func TestUnmatchedCallbackIsAnswered(t *testing.T) {
	sender := bottest.NewSender()
	d := newDispatcher(t, sender, bot.Options{}, func(context.Context, bot.Event) error { return nil })
	d.Handle(context.Background(), bot.Event{UserID: 5, ChatID: 5, CallbackID: "cb", CallbackData: "stale"})
	if _, ok := sender.Callbacks["cb"]; !ok {
		t.Fatal("callback was not answered")
	}
}

func TestShutdownWaitsForInFlight(t *testing.T) {
	sender := bottest.NewSender()
	release := make(chan struct{})
	var finished int32
	d := newDispatcher(t, sender, bot.Options{}, func(context.Context, bot.Event) error {
		<-release
		atomic.AddInt32(&finished, 1)
		return nil
	})

	if !d.HandleAsync(bot.Event{UserID: 5, ChatID: 5, Command: "go"}) {
		t.Fatal("HandleAsync refused before shutdown")
	}
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()
	if err := d.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown error: %v", err)
	}
	if atomic.LoadInt32(&finished) != 1 {
		t.Fatal("Shutdown returned before the handler finished")
	}
	if d.HandleAsync(bot.Event{UserID: 5, ChatID: 5, Command: "go"}) {
		t.Fatal("HandleAsync accepted after shutdown")
	}
}
