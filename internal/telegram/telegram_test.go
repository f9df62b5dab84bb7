package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/concordia247/drafts/internal/news"
)

func TestNew_DisabledWithoutCredentials(t *testing.T) {
	if n := New("", "chat", "", nil); n != nil {
		t.Fatalf("expected nil notifier")
	}
	var n *Notifier
	if err := n.NotifyReviews(context.Background(), "x", []news.Review{{Title: "a"}}); err != nil {
		t.Errorf("nil notifier returned %v", err)
	}
}

func TestNotifyReviews(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := New("TOKEN", "42", srv.URL, nil)
	err := n.NotifyReviews(context.Background(), "2025-03-01 10:00", []news.Review{
		{Title: "Denuncia <urgente>", URL: "https://x/1", Reason: "keyword:denuncia"},
	})
	if err != nil {
		t.Fatalf("NotifyReviews: %v", err)
	}
	text, _ := got["text"].(string)
	if !strings.Contains(text, "Denuncia &lt;urgente&gt;") || !strings.Contains(text, "keyword:denuncia") {
		t.Errorf("text = %q", text)
	}
	if got["chat_id"] != "42" {
		t.Errorf("chat_id = %v", got["chat_id"])
	}
}

func TestNotifyReviews_ClientErrorNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	n := New("TOKEN", "42", srv.URL, nil)
	n.retry.Delay = time.Millisecond
	if err := n.NotifyReviews(context.Background(), "s", []news.Review{{Title: "a"}}); err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestFormatReviews_Truncates(t *testing.T) {
	var entries []news.Review
	for i := 0; i < 200; i++ {
		entries = append(entries, news.Review{Title: strings.Repeat("t", 40), URL: "https://example.com/x", Reason: "keyword:abuso"})
	}
	if msg := FormatReviews("s", entries); len(msg) > maxMessage+10 {
		t.Errorf("message length %d exceeds limit", len(msg))
	}
}
