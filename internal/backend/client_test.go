package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iamvkosarev/docs-chat-assistant/config"
)

func TestNewChatRequest(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 30, 15, 250_000_000, time.FixedZone("CST", 8*3600))

	req := NewChatRequest([]ChatMessage{{Role: "user", Content: "hi"}}, "", at)
	raw, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `{"messages":[{"role":"user","content":"hi"}],"pagePath":null,"timestamp":"2024-03-01T04:30:15.250Z"}`
	if string(raw) != want {
		t.Errorf("body = %s, want %s", raw, want)
	}

	req = NewChatRequest(nil, "intro/setup", at)
	if req.PagePath == nil || *req.PagePath != "intro/setup" {
		t.Errorf("PagePath = %v, want intro/setup", req.PagePath)
	}
}

func TestOpenStream(t *testing.T) {
	var got ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: {\"content\":\"hi\"}\n\ndata: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewClient(config.Backend{BaseURL: server.URL + "/", RequestTimeout: 5 * time.Second})
	body, err := client.OpenStream(
		context.Background(),
		NewChatRequest([]ChatMessage{{Role: "user", Content: "hello"}}, "/", time.Now()),
	)
	if err != nil {
		t.Fatalf("OpenStream() error: %v", err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("ReadAll() error: %v", err)
	}
	if string(raw) != "data: {\"content\":\"hi\"}\n\ndata: [DONE]\n\n" {
		t.Errorf("body = %q", raw)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "hello" {
		t.Errorf("request messages = %#v", got.Messages)
	}
	if got.PagePath == nil || *got.PagePath != "/" {
		t.Errorf("request pagePath = %v", got.PagePath)
	}
}

func TestOpenStreamStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(config.Backend{BaseURL: server.URL})
	_, err := client.OpenStream(context.Background(), NewChatRequest(nil, "", time.Now()))

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("OpenStream() error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d", statusErr.StatusCode)
	}
	if statusErr.Body != "rate limited" {
		t.Errorf("Body = %q", statusErr.Body)
	}
}

func TestOpenStreamUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(config.Backend{BaseURL: url, RequestTimeout: time.Second})
	if _, err := client.OpenStream(context.Background(), NewChatRequest(nil, "", time.Now())); err == nil {
		t.Fatal("OpenStream() expected error for closed server")
	}
}

func TestOpenStreamSlowBodyOutlivesTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, _ := w.(http.Flusher)
		_, _ = io.WriteString(w, "data: {\"content\":\"a\"}\n")
		flusher.Flush()
		time.Sleep(400 * time.Millisecond)
		_, _ = io.WriteString(w, "data: {\"content\":\"b\"}\ndata: [DONE]\n")
	}))
	defer server.Close()

	client := NewClient(config.Backend{BaseURL: server.URL, RequestTimeout: 200 * time.Millisecond})
	body, err := client.OpenStream(context.Background(), NewChatRequest(nil, "", time.Now()))
	if err != nil {
		t.Fatalf("OpenStream() error: %v", err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("ReadAll() error: %v", err)
	}
	want := "data: {\"content\":\"a\"}\ndata: {\"content\":\"b\"}\ndata: [DONE]\n"
	if string(raw) != want {
		t.Errorf("body = %q, want %q", raw, want)
	}
}

func TestOpenStreamHeaderTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := NewClient(config.Backend{BaseURL: server.URL, RequestTimeout: 100 * time.Millisecond})
	start := time.Now()
	if _, err := client.OpenStream(context.Background(), NewChatRequest(nil, "", time.Now())); err == nil {
		t.Fatal("OpenStream() expected a timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("OpenStream() took %v, want it bounded by the request timeout", elapsed)
	}
}
