// Package telegram adapts the Telegram Bot API to the bot package.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"legalbot/internal/bot"
)

var ErrFileTooLarge = errors.New("file too large")

type Options struct {
	Token      string
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Client implements bot.Sender over the Bot API.
type Client struct {
	api    *tgbotapi.BotAPI
	http   *http.Client
	logger zerolog.Logger
}

// NewClient validates the token with getMe.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, errors.New("telegram: bot token is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	api, err := tgbotapi.NewBotAPIWithClient(opts.Token, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("telegram: connect: %w", err)
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("component", "telegram").Logger()
	}
	logger.Info().Str("username", api.Self.UserName).Msg("telegram bot authorized")
	return &Client{api: api, http: httpClient, logger: logger}, nil
}

func (c *Client) Username() string { return c.api.Self.UserName }

func (c *Client) Send(ctx context.Context, chatID int64, reply bot.Reply) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	msg.ParseMode = reply.ParseMode
	if markup := keyboard(reply.Keyboard); markup != nil {
		msg.ReplyMarkup = *markup
	}
	sent, err := c.api.Send(msg)
	if err != nil && reply.ParseMode != "" && isEntityError(err) {
		c.logger.Debug().Err(err).Msg("markdown rejected, resending as plain text")
		msg.ParseMode = ""
		sent, err = c.api.Send(msg)
	}
	if err != nil {
		return 0, fmt.Errorf("telegram: send message: %w", err)
	}
	return sent.MessageID, nil
}

func (c *Client) Edit(ctx context.Context, chatID int64, messageID int, reply bot.Reply) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, reply.Text)
	edit.ParseMode = reply.ParseMode
	edit.ReplyMarkup = keyboard(reply.Keyboard)
	_, err := c.api.Request(edit)
	if err != nil && reply.ParseMode != "" && isEntityError(err) {
		edit.ParseMode = ""
		_, err = c.api.Request(edit)
	}
	if err != nil {
		return fmt.Errorf("telegram: edit message: %w", err)
	}
	return nil
}

func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("telegram: answer callback: %w", err)
	}
	return nil
}

// Download fetches a file. Files larger than maxBytes fail with ErrFileTooLarge.
func (c *Client) Download(ctx context.Context, fileID string, maxBytes int64) ([]byte, error) {
	link, err := c.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("telegram: get file: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram: download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram: download file: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("telegram: read file: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, maxBytes)
	}
	return data, nil
}

// SetWebhook points Telegram at url. secret is echoed back in X-Telegram-Bot-Api-Secret-Token.
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := tgbotapi.Params{
		"url":             url,
		"allowed_updates": `["message","callback_query"]`,
	}
	params.AddNonEmpty("secret_token", secret)
	if _, err := c.api.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("telegram: set webhook: %w", err)
	}
	c.logger.Info().Str("url", redactToken(url)).Msg("webhook registered")
	return nil
}

func (c *Client) DeleteWebhook(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("telegram: delete webhook: %w", err)
	}
	c.logger.Info().Msg("webhook removed")
	return nil
}

func keyboard(rows [][]bot.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		out = append(out, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(out...)
	return &markup
}

func isEntityError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "can't parse entities")
}

// redactToken hides the path segment after /webhook/.
func redactToken(url string) string {
	idx := strings.Index(url, "/webhook/")
	if idx < 0 {
		return url
	}
	return url[:idx] + "/webhook/***"
}

var _ bot.Sender = (*Client)(nil)
