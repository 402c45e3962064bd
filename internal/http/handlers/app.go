package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"legalbot/internal/bot"
	"legalbot/internal/observability"
)

// UpdateHandler accepts parsed updates for background processing.
type UpdateHandler interface {
	HandleAsync(ev bot.Event) bool
	Modules() []string
}

// WebhookManager registers the webhook with Telegram.
type WebhookManager interface {
	SetWebhook(ctx context.Context, url, secret string) error
	DeleteWebhook(ctx context.Context) error
}

type App struct {
	Updates         UpdateHandler
	Webhooks        WebhookManager
	BotToken        string
	WebhookSecret   string
	WebhookEndpoint string
	StoreDriver     string
	Metrics         *observability.Metrics
	Logger          zerolog.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
