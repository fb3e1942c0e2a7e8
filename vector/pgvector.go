package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/wakalAIagency/tamhid-chat-api/core"
)

// PgVectorStore is a PostgreSQL-based vector store using pgvector. Chunk rows
// live in a docs table with a composite (doc_id, chunk_id) primary key so
// re-ingestion replaces rather than duplicates.
type PgVectorStore struct {
	db        *sql.DB
	dimension int
}

// NewPgVectorStore opens the database, ensures the schema, and returns the
// store. The dimension parameter fixes the embedding width (e.g. 1536).
func NewPgVectorStore(dsn string, dimension int) (*PgVectorStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &PgVectorStore{db: db, dimension: dimension}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

func (s *PgVectorStore) migrate() error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS docs (
			doc_id TEXT NOT NULL,
			chunk_id INTEGER NOT NULL,
			content TEXT NOT NULL,
			metadata JSONB DEFAULT '{}',
			embedding vector(%d),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (doc_id, chunk_id)
		)`, s.dimension),
		`CREATE INDEX IF NOT EXISTS idx_docs_embedding ON docs USING hnsw (embedding vector_cosine_ops)`,
		`CREATE INDEX IF NOT EXISTS idx_docs_lang ON docs ((metadata->>'lang'))`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}
	return nil
}

// Upsert stores rows, fully replacing existing ones by (doc_id, chunk_id).
func (s *PgVectorStore) Upsert(ctx context.Context, rows []Row) error {
	for _, r := range rows {
		metadata, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO docs (doc_id, chunk_id, content, metadata, embedding, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			ON CONFLICT (doc_id, chunk_id) DO UPDATE SET
				content = EXCLUDED.content,
				metadata = EXCLUDED.metadata,
				embedding = EXCLUDED.embedding,
				updated_at = EXCLUDED.updated_at
		`, r.DocID, r.ChunkID, r.Content, metadata, formatEmbedding(r.Embedding))
		if err != nil {
			return fmt.Errorf("upsert chunk %s/%d: %w", r.DocID, r.ChunkID, err)
		}
	}
	return nil
}

// Search returns the topK rows nearest to the query embedding, optionally
// restricted to a language tag, ranked by descending cosine similarity.
func (s *PgVectorStore) Search(ctx context.Context, embedding []float64, topK int, lang string) ([]core.Match, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chunk_id, content, metadata, 1 - (embedding <=> $1) AS score
		FROM docs
		WHERE $3 = '' OR metadata->>'lang' = $3
		ORDER BY embedding <=> $1
		LIMIT $2
	`, formatEmbedding(embedding), topK, lang)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var matches []core.Match
	for rows.Next() {
		var m core.Match
		var metadataBytes []byte

		if err := rows.Scan(&m.ChunkID, &m.Content, &metadataBytes, &m.Score); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if len(metadataBytes) > 0 {
			if err := json.Unmarshal(metadataBytes, &m.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata: %w", err)
			}
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// Count reports the number of stored rows for a document.
func (s *PgVectorStore) Count(ctx context.Context, docID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM docs WHERE doc_id = $1`, docID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *PgVectorStore) Close() error {
	return s.db.Close()
}

// formatEmbedding converts a float64 slice to pgvector format: "[0.1,0.2,0.3]"
func formatEmbedding(embedding []float64) string {
	if len(embedding) == 0 {
		return ""
	}

	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
