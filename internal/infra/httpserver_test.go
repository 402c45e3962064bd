package infra

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNewHTTPServer(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{Port: "9090", HTTPReadTimeout: time.Second, HTTPWriteTimeout: 2 * time.Second, HTTPIdleTimeout: 3 * time.Second}
	s := NewHTTPServer(cfg, http.NotFoundHandler(), zerolog.New(&buf))

	if s.server.Addr != ":9090" || s.server.WriteTimeout != 2*time.Second || s.server.IdleTimeout != 3*time.Second {
		t.Fatalf("server = %+v", s.server)
	}

	s.server.ErrorLog.Printf("http: TLS handshake error from 10.0.0.1:5555: EOF\n")
	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, `"component":"http"`) || !strings.Contains(out, "TLS handshake error") {
		t.Fatalf("error log = %q", out)
	}
}

func TestHTTPServerShutdownBeforeStart(t *testing.T) {
	s := NewHTTPServer(&Config{Port: "0"}, http.NotFoundHandler(), zerolog.Nop())
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown error: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start after Shutdown = %v, want nil", err)
	}
}
