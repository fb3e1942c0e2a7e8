// Package llm provides the OpenAI-compatible chat and embedding clients used
// by the ingestion and answer pipelines.
package llm

import (
	"context"

	"github.com/wakalAIagency/tamhid-chat-api/core"
)

// Client produces a single chat completion for role-tagged messages.
type Client interface {
	Chat(ctx context.Context, model string, msgs []core.Message) (*ChatResponse, error)
}

// EmbeddingClient produces fixed-dimension vectors for input strings. The
// same client and model identifier must be used at ingestion and query time;
// embedding-model skew between the two paths silently breaks retrieval.
type EmbeddingClient interface {
	Embed(ctx context.Context, model, input string) ([]float64, error)
	EmbedBatch(ctx context.Context, model string, inputs []string) ([][]float64, error)
}

type ClientConfig struct {
	APIKey      string
	BaseURL     string
	Timeout     int
	Temperature float64
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:     60,
		Temperature: 0.2,
	}
}
