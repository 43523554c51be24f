package summarizer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestClientGenerateSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"}}]
		}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Model:      "claude-sonnet",
		Timeout:    2 * time.Second,
		MaxRetries: 1,
	})
	text, err := client.Generate(context.Background(), GenerateRequest{
		Input:       "prompt",
		Temperature: 0.1,
		MaxTokens:   2500,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != `{"ok":true}` {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestClientRetriesOnRateLimit(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Model:      "claude-sonnet",
		Timeout:    2 * time.Second,
		MaxRetries: 2,
	})
	text, err := client.Generate(context.Background(), GenerateRequest{Input: "prompt"})
	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if text != "ok" {
		t.Fatalf("unexpected text %q", text)
	}
	if atomic.LoadInt32(&calls) < 2 {
		t.Fatalf("expected at least 2 calls, got %d", calls)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Model:      "claude-sonnet",
		Timeout:    2 * time.Second,
		MaxRetries: 3,
	})
	_, err := client.Generate(context.Background(), GenerateRequest{Input: "prompt"})
	if err == nil {
		t.Fatalf("expected error on 400")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected exactly 1 call, got %d", calls)
	}
}

func TestClientUnavailableWithoutConfiguration(t *testing.T) {
	client := NewClient(ClientConfig{})
	if client.Available() {
		t.Fatalf("expected unavailable client")
	}
	_, err := client.Generate(context.Background(), GenerateRequest{Input: "prompt"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
