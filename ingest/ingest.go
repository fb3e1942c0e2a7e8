// Package ingest turns a document's raw text into embedded chunk rows in the
// vector store.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wakalAIagency/tamhid-chat-api/chunk"
	"github.com/wakalAIagency/tamhid-chat-api/core"
	"github.com/wakalAIagency/tamhid-chat-api/llm"
	"github.com/wakalAIagency/tamhid-chat-api/vector"
)

const DefaultBatchSize = 64

// Document is one logical unit of source content to ingest. DocID is the
// caller-supplied stable identifier; re-ingesting the same DocID replaces
// existing chunk rows instead of duplicating them.
type Document struct {
	DocID     string
	Source    string
	SourceURL string
	Text      string
}

// Ingester runs the ingestion pipeline: chunk, embed in fixed-size batches,
// upsert. Batches are processed sequentially, one embedding call and one
// upsert per batch, which bounds load on the embedding capability and keeps
// ordering deterministic for diagnostics.
type Ingester struct {
	chunker   *chunk.Chunker
	embedder  llm.EmbeddingClient
	store     vector.Store
	model     string
	batchSize int
	log       *zap.SugaredLogger
}

func New(chunker *chunk.Chunker, embedder llm.EmbeddingClient, store vector.Store, model string, batchSize int, log *zap.SugaredLogger) *Ingester {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Ingester{
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		model:     model,
		batchSize: batchSize,
		log:       log,
	}
}

// Run ingests one document and returns the number of chunks upserted.
// A batch failure aborts the run; chunks from batches upserted before the
// failure stay committed, and the error names the failed batch's chunk range
// so the operator can re-run ingestion for the document.
func (in *Ingester) Run(ctx context.Context, doc Document) (int, error) {
	chunks := in.chunker.Build(doc.DocID, doc.Source, doc.SourceURL, doc.Text)
	if len(chunks) == 0 {
		return 0, core.NewPipelineError("chunk", doc.DocID, fmt.Errorf("document has no content"))
	}
	in.log.Infow("chunked document", "doc_id", doc.DocID, "chunks", len(chunks))

	inputs := make([]string, len(chunks))
	for i, c := range chunks {
		inputs[i] = chunk.EmbeddingInput(c.DocID, c.ChunkID, c.Content)
	}

	for start := 0; start < len(chunks); start += in.batchSize {
		end := start + in.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		vectors, err := in.embedder.EmbedBatch(ctx, in.model, inputs[start:end])
		if err != nil {
			return start, core.NewPipelineError(fmt.Sprintf("embed batch %d-%d", start, end-1), doc.DocID, err)
		}
		if len(vectors) != end-start {
			return start, core.NewPipelineError(fmt.Sprintf("embed batch %d-%d", start, end-1), doc.DocID,
				fmt.Errorf("%w: inputs=%d vectors=%d", core.ErrEmbedMismatch, end-start, len(vectors)))
		}

		rows := make([]vector.Row, 0, end-start)
		for i := start; i < end; i++ {
			rows = append(rows, vector.Row{
				DocID:     chunks[i].DocID,
				ChunkID:   chunks[i].ChunkID,
				Content:   chunks[i].Content,
				Metadata:  chunks[i].Metadata,
				Embedding: vectors[i-start],
			})
		}

		if err := in.store.Upsert(ctx, rows); err != nil {
			return start, core.NewPipelineError(fmt.Sprintf("upsert batch %d-%d", start, end-1), doc.DocID, err)
		}
		in.log.Infow("upserted rows", "doc_id", doc.DocID, "rows", len(rows), "through_chunk", end-1)
	}

	return len(chunks), nil
}
