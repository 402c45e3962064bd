package telegram

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"legalbot/internal/bot"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type call struct {
	method string
	form   map[string]string
}

type fakeAPI struct {
	mu    sync.Mutex
	calls []call
	// replies maps a Bot API method to its JSON result.
	replies map[string]string
	files   map[string]string
}

func (f *fakeAPI) client() *http.Client {
	return &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if strings.Contains(r.URL.Path, "/file/bot") {
			name := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
			body, ok := f.files[name]
			if !ok {
				return respond(http.StatusNotFound, "missing"), nil
			}
			return respond(http.StatusOK, body), nil
		}
		method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		_ = r.ParseForm()
		form := map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		f.mu.Lock()
		f.calls = append(f.calls, call{method: method, form: form})
		f.mu.Unlock()

		result, ok := f.replies[method]
		if !ok {
			result = "true"
		}
		if strings.HasPrefix(result, "ERR:") {
			return respond(http.StatusBadRequest, `{"ok":false,"error_code":400,"description":"`+strings.TrimPrefix(result, "ERR:")+`"}`), nil
		}
		return respond(http.StatusOK, `{"ok":true,"result":`+result+`}`), nil
	})}
}

func (f *fakeAPI) last(method string) (call, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].method == method {
			return f.calls[i], true
		}
	}
	return call{}, false
}

func (f *fakeAPI) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.method == method {
			n++
		}
	}
	return n
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

const sentMessage = `{"message_id":42,"date":0,"chat":{"id":5,"type":"private"}}`

func newFakeClient(t *testing.T, f *fakeAPI) *Client {
	t.Helper()
	if f.replies == nil {
		f.replies = map[string]string{}
	}
	if _, ok := f.replies["getMe"]; !ok {
		f.replies["getMe"] = `{"id":1,"is_bot":true,"first_name":"Jurídico","username":"juridico_bot"}`
	}
	c, err := NewClient(Options{Token: "123:abc", HTTPClient: f.client()})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	return c
}

func TestNewClientRequiresToken(t *testing.T) {
	if _, err := NewClient(Options{}); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestSendWithKeyboard(t *testing.T) {
	f := &fakeAPI{replies: map[string]string{"sendMessage": sentMessage}}
	c := newFakeClient(t, f)
	if c.Username() != "juridico_bot" {
		t.Fatalf("username = %q", c.Username())
	}

	id, err := c.Send(context.Background(), 5, bot.Reply{
		Text:      "*Planos*",
		ParseMode: bot.ParseModeMarkdown,
		Keyboard:  [][]bot.Button{{{Text: "Free", Data: "subscription_free"}}},
	})
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if id != 42 {
		t.Fatalf("message id = %d, want 42", id)
	}
	got, _ := f.last("sendMessage")
	if got.form["chat_id"] != "5" || got.form["parse_mode"] != "Markdown" {
		t.Fatalf("form = %v", got.form)
	}
	if !strings.Contains(got.form["reply_markup"], "subscription_free") {
		t.Fatalf("reply_markup = %q", got.form["reply_markup"])
	}
}

func TestSendFallsBackToPlainText(t *testing.T) {
	f := &fakeAPI{replies: map[string]string{"sendMessage": "ERR:Bad Request: can't parse entities: unclosed"}}
	c := newFakeClient(t, f)

	_, err := c.Send(context.Background(), 5, bot.Markdown("resposta *quebrada"))
	if err == nil {
		t.Fatal("expected error, the fake always rejects")
	}
	if n := f.count("sendMessage"); n != 2 {
		t.Fatalf("sendMessage calls = %d, want a plain-text retry", n)
	}
	got, _ := f.last("sendMessage")
	if got.form["parse_mode"] != "" {
		t.Fatalf("retry should drop parse_mode, got %q", got.form["parse_mode"])
	}
}

func TestEditAndCallback(t *testing.T) {
	f := &fakeAPI{replies: map[string]string{"editMessageText": sentMessage}}
	c := newFakeClient(t, f)
	ctx := context.Background()

	if err := c.Edit(ctx, 5, 42, bot.Text("pronto")); err != nil {
		t.Fatalf("Edit error: %v", err)
	}
	got, _ := f.last("editMessageText")
	if got.form["message_id"] != "42" || got.form["text"] != "pronto" {
		t.Fatalf("form = %v", got.form)
	}

	if err := c.AnswerCallback(ctx, "cb-1", "ok"); err != nil {
		t.Fatalf("AnswerCallback error: %v", err)
	}
	got, _ = f.last("answerCallbackQuery")
	if got.form["callback_query_id"] != "cb-1" {
		t.Fatalf("form = %v", got.form)
	}
}

func TestDownload(t *testing.T) {
	f := &fakeAPI{
		replies: map[string]string{"getFile": `{"file_id":"f1","file_path":"documents/contrato.txt"}`},
		files:   map[string]string{"contrato.txt": "cláusula primeira"},
	}
	c := newFakeClient(t, f)

	data, err := c.Download(context.Background(), "f1", 1024)
	if err != nil {
		t.Fatalf("Download error: %v", err)
	}
	if string(data) != "cláusula primeira" {
		t.Fatalf("data = %q", data)
	}

	_, err = c.Download(context.Background(), "f1", 4)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("Download err = %v, want ErrFileTooLarge", err)
	}
}

func TestWebhookManagement(t *testing.T) {
	f := &fakeAPI{}
	c := newFakeClient(t, f)
	ctx := context.Background()

	if err := c.SetWebhook(ctx, "https://bot.example.com/webhook/123:abc", "s3cret"); err != nil {
		t.Fatalf("SetWebhook error: %v", err)
	}
	got, _ := f.last("setWebhook")
	if got.form["url"] != "https://bot.example.com/webhook/123:abc" || got.form["secret_token"] != "s3cret" {
		t.Fatalf("form = %v", got.form)
	}

	if err := c.DeleteWebhook(ctx); err != nil {
		t.Fatalf("DeleteWebhook error: %v", err)
	}
	if f.count("deleteWebhook") != 1 {
		t.Fatal("deleteWebhook not called")
	}
}

func TestRedactToken(t *testing.T) {
	if got := redactToken("https://x.dev/webhook/123:abc"); got != "https://x.dev/webhook/***" {
		t.Fatalf("redactToken = %q", got)
	}
}
