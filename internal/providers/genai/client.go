package genai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	sdk "google.golang.org/genai"

	"legalbot/internal/domain"
	"legalbot/internal/infra"
	"legalbot/internal/observability"
)

// Request is one text generation call.
type Request struct {
	// Operation labels the call in logs and metrics (consult, analyze, draft).
	Operation   string
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int32
}

// Generator turns a prompt into text. Failures wrap domain.ErrProviderFailure.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *infra.Logger
	Metrics    *observability.Metrics
}

// Client calls Gemini through the google.golang.org/genai SDK.
type Client struct {
	models  *sdk.Models
	model   string
	timeout time.Duration
	logger  *infra.Logger
	metrics *observability.Metrics
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("genai: api key is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	cfg := &sdk.ClientConfig{
		APIKey:     apiKey,
		Backend:    sdk.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if base := strings.TrimRight(opts.BaseURL, "/"); base != "" {
		cfg.HTTPOptions = sdk.HTTPOptions{BaseURL: base + "/"}
	}

	client, err := sdk.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("genai: new client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}

	return &Client{
		models:  client.Models,
		model:   model,
		timeout: timeout,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// Model returns the configured Gemini model identifier.
func (c *Client) Model() string {
	return c.model
}

func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cfg := &sdk.GenerateContentConfig{}
	if req.Temperature > 0 {
		cfg.Temperature = sdk.Ptr(req.Temperature)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = req.MaxTokens
	}
	if strings.TrimSpace(req.System) != "" {
		cfg.SystemInstruction = sdk.NewContentFromText(req.System, sdk.RoleUser)
	}

	started := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, sdk.Text(req.Prompt), cfg)
	if err == nil && strings.TrimSpace(resp.Text()) == "" {
		err = errors.New("empty completion")
	}
	c.metrics.ObserveLLM(req.Operation, started, err)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("model", c.model).
			Str("operation", req.Operation).
			Dur("elapsed", time.Since(started)).
			Msg("genai: generate content failed")
		return "", fmt.Errorf("%w: gemini %s: %v", domain.ErrProviderFailure, req.Operation, err)
	}

	text := strings.TrimSpace(resp.Text())
	c.logger.Debug().
		Str("model", c.model).
		Str("operation", req.Operation).
		Int("chars", len(text)).
		Dur("elapsed", time.Since(started)).
		Msg("genai: generated content")
	return text, nil
}

// Disabled is used when no API key is configured. Every call fails as a provider failure.
type Disabled struct{}

func (Disabled) Generate(context.Context, Request) (string, error) {
	return "", fmt.Errorf("%w: gemini api key not configured", domain.ErrProviderFailure)
}

var (
	_ Generator = (*Client)(nil)
	_ Generator = Disabled{}
)
