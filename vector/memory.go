package vector

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/wakalAIagency/tamhid-chat-api/core"
)

// MemoryStore is an in-memory vector store for development and testing.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string]Row
}

// NewMemoryStore creates a new in-memory vector store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows: make(map[string]Row),
	}
}

func rowKey(docID string, chunkID int) string {
	return fmt.Sprintf("%s#%d", docID, chunkID)
}

// Upsert stores rows, replacing existing ones with the same key.
func (s *MemoryStore) Upsert(ctx context.Context, rows []Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rows {
		s.rows[rowKey(r.DocID, r.ChunkID)] = r
	}
	return nil
}

// Search ranks rows by brute-force cosine similarity.
func (s *MemoryStore) Search(ctx context.Context, embedding []float64, topK int, lang string) ([]core.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]core.Match, 0, len(s.rows))
	for _, r := range s.rows {
		if lang != "" && r.Metadata.Lang != lang {
			continue
		}
		if len(r.Embedding) == 0 {
			continue
		}
		matches = append(matches, core.Match{
			Content:  r.Content,
			Metadata: r.Metadata,
			ChunkID:  r.ChunkID,
			Score:    CosineSimilarity(embedding, r.Embedding),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Count reports the number of stored rows for a document.
func (s *MemoryStore) Count(ctx context.Context, docID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, r := range s.rows {
		if r.DocID == docID {
			n++
		}
	}
	return n, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
