package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an entity is not found
var ErrNotFound = errors.New("not found")

// SourceRef records one retrieved chunk that backed an answer
type SourceRef struct {
	SourceURL string  `json:"source_url,omitempty"`
	ChunkID   int     `json:"chunk_id"`
	Score     float64 `json:"score"`
}

// ChatLog represents one recorded question/answer exchange
type ChatLog struct {
	ID         string      `json:"id"`
	SessionID  string      `json:"session_id,omitempty"`
	Question   string      `json:"question"`
	Answer     string      `json:"answer"`
	Lang       string      `json:"lang,omitempty"`
	TopK       int         `json:"top_k"`
	Model      string      `json:"model"`
	EmbedModel string      `json:"embed_model"`
	LatencyMs  int64       `json:"latency_ms"`
	Sources    []SourceRef `json:"sources,omitempty"`
	Fallback   bool        `json:"fallback"`
	Error      *string     `json:"error,omitempty"`
	CreatedAt  int64       `json:"created_at"`
}

// Feedback is a reader's verdict on a logged answer
type Feedback struct {
	LogID   string `json:"log_id"`
	Rating  int    `json:"rating"` // 1 or -1
	Comment string `json:"comment,omitempty"`
}

// MetricsSummary contains aggregated answer metrics
type MetricsSummary struct {
	TotalLogs     int     `json:"total_logs"`
	FallbackCount int     `json:"fallback_count"`
	ErrorCount    int     `json:"error_count"`
	AvgLatencyMs  float64 `json:"avg_latency_ms"`
	UpVotes       int     `json:"up_votes"`
	DownVotes     int     `json:"down_votes"`
}

// LogStore defines the interface for chat log persistence
type LogStore interface {
	AddLog(ctx context.Context, l ChatLog) error
	GetLog(ctx context.Context, id string) (ChatLog, error)
	ListLogs(ctx context.Context, limit int) ([]ChatLog, error)
	AddFeedback(ctx context.Context, f Feedback) error
	Summary(ctx context.Context) (MetricsSummary, error)
	Close() error
}
