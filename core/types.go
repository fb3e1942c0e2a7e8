// Package core holds the domain types shared across the ingestion and
// question-answering pipelines.
package core

// ChunkMetadata is stored alongside each chunk and returned with matches.
type ChunkMetadata struct {
	Source    string `json:"source"`
	SourceURL string `json:"source_url,omitempty"`
	Lang      string `json:"lang"`
}

// Chunk is a retrieval-sized slice of a document's normalized text.
// Identity is (DocID, ChunkID); ChunkID is the zero-based packing order.
type Chunk struct {
	DocID    string        `json:"doc_id"`
	ChunkID  int           `json:"chunk_id"`
	Content  string        `json:"content"`
	Hash     string        `json:"hash,omitempty"`
	Metadata ChunkMetadata `json:"metadata"`
}

// Match is a ranked chunk returned by vector search for a query.
type Match struct {
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
	ChunkID  int           `json:"chunk_id"`
	Score    float64       `json:"score"`
}

// Answer is the synthesized reply for a single question.
type Answer struct {
	Text      string   `json:"text"`
	Sources   []string `json:"sources"`
	LatencyMs int64    `json:"latency_ms"`
}
