// Package vector provides chunk-embedding storage and similarity search.
package vector

import (
	"context"

	"github.com/wakalAIagency/tamhid-chat-api/core"
)

// Row is a chunk with its embedding as persisted in the vector store.
// (DocID, ChunkID) is the upsert key: re-ingesting a document replaces rows
// with matching keys instead of duplicating them.
type Row struct {
	DocID     string             `json:"doc_id"`
	ChunkID   int                `json:"chunk_id"`
	Content   string             `json:"content"`
	Metadata  core.ChunkMetadata `json:"metadata"`
	Embedding []float64          `json:"embedding"`
}

// Store provides vector storage and similarity search operations.
type Store interface {
	// Upsert inserts rows, fully replacing existing ones with the same
	// (doc_id, chunk_id) key.
	Upsert(ctx context.Context, rows []Row) error

	// Search returns up to topK matches ranked by descending similarity.
	// A non-empty lang restricts matches to rows with that language tag.
	Search(ctx context.Context, embedding []float64, topK int, lang string) ([]core.Match, error)

	// Count reports the number of stored rows for a document.
	Count(ctx context.Context, docID string) (int, error)

	// Close releases resources.
	Close() error
}
