package modules

import (
	"strings"
	"testing"
)

func TestPlansListing(t *testing.T) {
	h := newHarness(t)
	h.command(7, "planos", "")

	msgs := h.sender.To(7)
	if len(msgs) != 1 {
		t.Fatalf("messages = %d", len(msgs))
	}
	r := msgs[0].Reply
	if len(r.Keyboard) != 3 {
		t.Fatalf("keyboard rows = %d, want 3", len(r.Keyboard))
	}
	if r.Keyboard[0][0].Data != "subscription_free" || !strings.Contains(r.Keyboard[0][0].Text, "10 consultas/mês") {
		t.Fatalf("free button = %+v", r.Keyboard[0][0])
	}
	if !strings.Contains(r.Text, "R$ 29,90/mês") || !strings.Contains(r.Text, "Criação de documentos jurídicos") {
		t.Fatalf("plans text = %s", r.Text)
	}
}

func TestSubscriptionCallbacks(t *testing.T) {
	h := newHarness(t)
	h.callback(7, "subscription_free")
	if !strings.Contains(h.last(7), "já está no plano Free") {
		t.Fatalf("free reply = %q", h.last(7))
	}
	if _, ok := h.sender.Callbacks["cb-subscription_free"]; !ok {
		t.Fatal("callback not answered")
	}

	h.callback(7, "subscription_enterprise")
	got := h.last(7)
	if !strings.Contains(got, "Plano Enterprise") || !strings.Contains(got, contactEmail) {
		t.Fatalf("enterprise reply = %q", got)
	}

	h.callback(7, "subscription_gold")
	if !strings.Contains(h.last(7), "Plano desconhecido") {
		t.Fatalf("unknown reply = %q", h.last(7))
	}
}

func TestMyAccountDefaultsForUnregistered(t *testing.T) {
	h := newHarness(t)
	h.command(8, "minhaconta", "")
	got := h.last(8)
	for _, want := range []string{"🆓 Free", "Restantes:* 10 de 10", "N/A", "/start"} {
		if !strings.Contains(got, want) {
			t.Fatalf("account missing %q:\n%s", want, got)
		}
	}
}
