package infra

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestResolveLevel(t *testing.T) {
	cases := []struct {
		env, level string
		want       zerolog.Level
	}{
		{"production", "", zerolog.InfoLevel},
		{"development", "", zerolog.DebugLevel},
		{"production", "debug", zerolog.DebugLevel},
		{"development", " WARN ", zerolog.WarnLevel},
		{"production", "verbose", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		if got := resolveLevel(tc.env, tc.level); got != tc.want {
			t.Fatalf("resolveLevel(%q, %q) = %s, want %s", tc.env, tc.level, got, tc.want)
		}
	}
}

func TestLoggerTagsService(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "")
	logger.Debug().Msg("hidden")
	logger.Info().Msg("visible")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected exactly one JSON line, got %q: %v", buf.String(), err)
	}
	if line["service"] != "legalbot" || line["message"] != "visible" {
		t.Fatalf("line = %v", line)
	}
}
