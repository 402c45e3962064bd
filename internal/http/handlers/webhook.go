package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"legalbot/internal/telegram"
)

const (
	maxUpdateBytes = 1 << 20

	secretHeader = "X-Telegram-Bot-Api-Secret-Token"
)

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Webhook receives Telegram updates. Processing happens after the response.
func (a *App) Webhook(w http.ResponseWriter, r *http.Request) {
	if !equal(chi.URLParam(r, "token"), a.BotToken) {
		http.NotFound(w, r)
		return
	}
	if a.WebhookSecret != "" && !equal(r.Header.Get(secretHeader), a.WebhookSecret) {
		a.Logger.Warn().Msg("webhook call with a bad secret token")
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	ev, err := telegram.ParseUpdate(http.MaxBytesReader(w, r.Body, maxUpdateBytes))
	if err != nil {
		a.Logger.Warn().Err(err).Msg("rejecting webhook payload")
		http.Error(w, "bad update", http.StatusBadRequest)
		return
	}
	if !a.Updates.HandleAsync(ev) {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

type webhookResponse struct {
	OK  bool   `json:"ok"`
	URL string `json:"url,omitempty"`
	Err string `json:"error,omitempty"`
}

func (a *App) SetWebhook(w http.ResponseWriter, r *http.Request) {
	if a.WebhookEndpoint == "" {
		a.json(w, http.StatusConflict, webhookResponse{Err: "WEBHOOK_URL is not configured"})
		return
	}
	if err := a.Webhooks.SetWebhook(r.Context(), a.WebhookEndpoint, a.WebhookSecret); err != nil {
		a.webhookError(w, err)
		return
	}
	a.json(w, http.StatusOK, webhookResponse{OK: true, URL: redact(a.WebhookEndpoint, a.BotToken)})
}

func (a *App) DeleteWebhook(w http.ResponseWriter, r *http.Request) {
	if err := a.Webhooks.DeleteWebhook(r.Context()); err != nil {
		a.webhookError(w, err)
		return
	}
	a.json(w, http.StatusOK, webhookResponse{OK: true})
}

func (a *App) webhookError(w http.ResponseWriter, err error) {
	a.Logger.Error().Err(err).Msg("webhook management failed")
	status := http.StatusBadGateway
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}
	a.json(w, status, webhookResponse{Err: redact(err.Error(), a.BotToken)})
}

// redact hides the bot token, which appears in Bot API URLs.
func redact(s, token string) string {
	if token == "" {
		return s
	}
	return strings.ReplaceAll(s, token, "***")
}
