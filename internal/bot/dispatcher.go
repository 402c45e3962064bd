package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"legalbot/internal/middleware"
	"legalbot/internal/observability"
)

const (
	apologyText = "❌ Ops! Ocorreu um erro inesperado.\n\n" +
		"Nossa equipe já foi notificada e está trabalhando para resolver o problema.\n" +
		"Por favor, tente novamente em alguns instantes."
	throttledText = "⏳ Você está enviando mensagens muito rápido. Aguarde um instante e tente novamente."
)

var errPanic = errors.New("handler panic")

type Options struct {
	// RateLimit is the number of updates a user may send per RateWindow. Zero disables it.
	RateLimit      int
	RateWindow     time.Duration
	Timeout        time.Duration
	AdminIDs       []int64
	NotifyInterval time.Duration
	Logger         *zerolog.Logger
	Metrics        *observability.Metrics
}

// Dispatcher is the per-update boundary: throttling, timeouts, recovery and error reporting.
type Dispatcher struct {
	registry *Registry
	sender   Sender
	limiter  *middleware.FixedWindow
	timeout  time.Duration
	admins   []int64
	logger   zerolog.Logger
	metrics  *observability.Metrics

	notifyEvery time.Duration
	notifyMu    sync.Mutex
	lastNotify  time.Time

	mu      sync.Mutex
	closed  bool
	wg      sync.WaitGroup
	baseCtx context.Context
	cancel  context.CancelFunc
}

func NewDispatcher(registry *Registry, sender Sender, opts Options) *Dispatcher {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("component", "dispatcher").Logger()
	}
	window := opts.RateWindow
	if window <= 0 {
		window = time.Minute
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	notifyEvery := opts.NotifyInterval
	if notifyEvery <= 0 {
		notifyEvery = time.Minute
	}
	base, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		registry:    registry,
		sender:      sender,
		limiter:     middleware.NewFixedWindow(opts.RateLimit, window),
		timeout:     timeout,
		admins:      append([]int64(nil), opts.AdminIDs...),
		logger:      logger,
		metrics:     opts.Metrics,
		notifyEvery: notifyEvery,
		baseCtx:     base,
		cancel:      cancel,
	}
}

func (d *Dispatcher) Modules() []string { return d.registry.Modules() }

// Handle processes one event synchronously. Handler failures never escape; they are reported to the user and admins.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) {
	d.metrics.Update(ev.Kind())
	log := d.logger.With().Int("update_id", ev.UpdateID).Int64("user_id", ev.UserID).Str("kind", ev.Kind()).Logger()

	if ev.UserID != 0 && !d.limiter.Allow(strconv.FormatInt(ev.UserID, 10)) {
		log.Warn().Msg("update throttled")
		d.metrics.Denied("throttled")
		if ev.CallbackID != "" {
			_ = d.sender.AnswerCallback(ctx, ev.CallbackID, throttledText)
		} else if ev.ChatID != 0 {
			_, _ = d.sender.Send(ctx, ev.ChatID, Text(throttledText))
		}
		return
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := d.route(ctx, ev)
	if err == nil {
		return
	}
	log.Error().Err(err).Str("command", ev.Command).Msg("update failed")
	d.apologize(ctx, ev)
	d.notifyAdmins(ctx, ev, err)
}

func (d *Dispatcher) route(ctx context.Context, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().Str("stack", string(debug.Stack())).Msgf("panic: %v", r)
			err = fmt.Errorf("%w: %v", errPanic, r)
		}
	}()
	handled, err := d.registry.Route(ctx, ev)
	if !handled && ev.CallbackID != "" {
		return d.sender.AnswerCallback(ctx, ev.CallbackID, "")
	}
	return err
}

func (d *Dispatcher) apologize(ctx context.Context, ev Event) {
	if ev.ChatID == 0 {
		return
	}
	if _, err := d.sender.Send(context.WithoutCancel(ctx), ev.ChatID, Text(apologyText)); err != nil {
		d.logger.Warn().Err(err).Msg("apology not delivered")
	}
}

func (d *Dispatcher) notifyAdmins(ctx context.Context, ev Event, cause error) {
	d.notifyMu.Lock()
	now := time.Now()
	if !d.lastNotify.IsZero() && now.Sub(d.lastNotify) < d.notifyEvery {
		d.notifyMu.Unlock()
		return
	}
	d.lastNotify = now
	d.notifyMu.Unlock()

	text := fmt.Sprintf("🚨 ERRO NO SISTEMA JURÍDICO\n\nTipo: %T\nErro: %s\nUsuário: %d\nAtualização: %s",
		rootCause(cause), cause.Error(), ev.UserID, ev.Kind())
	ctx = context.WithoutCancel(ctx)
	for _, admin := range d.admins {
		if _, err := d.sender.Send(ctx, admin, Text(text)); err != nil {
			d.logger.Warn().Err(err).Int64("admin_id", admin).Msg("admin notification failed")
		}
	}
}

// HandleAsync queues the event on a tracked goroutine. It returns false after Shutdown.
func (d *Dispatcher) HandleAsync(ev Event) bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		d.Handle(d.baseCtx, ev)
	}()
	return true
}

// Shutdown stops accepting events and waits for in-flight ones. When ctx expires first the
// remaining handlers are cancelled.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
