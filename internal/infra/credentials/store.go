package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"legalbot/internal/infra"
	"legalbot/internal/sqlinline"
)

const ProviderGemini = "gemini"

// Store reads and writes provider API keys kept in integration_tokens.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// GeminiAPIKey returns the stored key, or "" when none was saved.
func (s *Store) GeminiAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderGemini)
}

func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	var token string
	if err := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider).Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

func (s *Store) SetGeminiAPIKey(ctx context.Context, key string, props map[string]any) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("gemini api key is required")
	}
	if props == nil {
		props = map[string]any{}
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, ProviderGemini, key, raw)
	return err
}

// ResolveGeminiKey prefers the configured key and falls back to the stored one.
func ResolveGeminiKey(ctx context.Context, configured string, store *Store) (string, error) {
	if key := strings.TrimSpace(configured); key != "" {
		return key, nil
	}
	if store == nil {
		return "", nil
	}
	return store.GeminiAPIKey(ctx)
}
