package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wakalAIagency/tamhid-chat-api/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*OpenAIClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := DefaultClientConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = srv.URL
	return NewOpenAIClientWithConfig(cfg), srv
}

func TestChatRequestShape(t *testing.T) {
	var captured map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("path: got=%q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("authorization: got=%q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "A, B, C."}, "finish_reason": "stop"},
			},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 4, "total_tokens": 14},
		})
	})

	resp, err := client.Chat(context.Background(), "gpt-4o-mini", []core.Message{
		core.NewSystemMessage("system prompt"),
		core.NewUserMessage("question"),
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Content != "A, B, C." {
		t.Fatalf("content: got=%q", resp.Content)
	}
	if captured["model"] != "gpt-4o-mini" {
		t.Fatalf("model: got=%v", captured["model"])
	}
	if captured["temperature"] != 0.2 {
		t.Fatalf("temperature: got=%v", captured["temperature"])
	}
	msgs, ok := captured["messages"].([]any)
	if !ok || len(msgs) != 2 {
		t.Fatalf("messages: got=%v", captured["messages"])
	}
}

func TestEmbedBatchOrderByIndex(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Fatalf("path: got=%q", r.URL.Path)
		}
		// Return vectors out of order; the client must realign by index.
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 1, "embedding": []float64{2, 2}},
				{"index": 0, "embedding": []float64{1, 1}},
			},
		})
	})

	vectors, err := client.EmbedBatch(context.Background(), "text-embedding-3-small", []string{"first", "second"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if vectors[0][0] != 1 || vectors[1][0] != 2 {
		t.Fatalf("vectors misaligned: %v", vectors)
	}
}

func TestEmbedBatchCountMismatch(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 0, "embedding": []float64{1}},
			},
		})
	})

	_, err := client.EmbedBatch(context.Background(), "text-embedding-3-small", []string{"a", "b"})
	if !errors.Is(err, core.ErrEmbedMismatch) {
		t.Fatalf("want ErrEmbedMismatch, got %v", err)
	}
}

func TestChatUpstreamError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	})

	_, err := client.Chat(context.Background(), "gpt-4o-mini", []core.Message{core.NewUserMessage("q")})
	if err == nil {
		t.Fatalf("expected error on non-200 response")
	}
}
