package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/wakalAIagency/tamhid-chat-api/chunk"
	"github.com/wakalAIagency/tamhid-chat-api/core"
	"github.com/wakalAIagency/tamhid-chat-api/vector"
)

// fakeEmbedder returns a deterministic vector per input and can be told to
// fail on a specific call number.
type fakeEmbedder struct {
	calls    int
	failCall int // 1-based; 0 means never fail
}

func (f *fakeEmbedder) Embed(ctx context.Context, model, input string) ([]float64, error) {
	vecs, err := f.EmbedBatch(ctx, model, []string{input})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, model string, inputs []string) ([][]float64, error) {
	f.calls++
	if f.failCall != 0 && f.calls == f.failCall {
		return nil, fmt.Errorf("upstream unavailable")
	}
	out := make([][]float64, len(inputs))
	for i, in := range inputs {
		out[i] = []float64{float64(len(in)), 1}
	}
	return out, nil
}

func testDoc() Document {
	var b strings.Builder
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&b, "# Section %d\n\n", i)
		for j := 0; j < 6; j++ {
			fmt.Fprintf(&b, "Paragraph %d of section %d with enough words to take up room. ", j, i)
		}
		b.WriteString("\n\n")
	}
	return Document{DocID: "services", Source: "services.md", Text: b.String()}
}

func TestRunUpsertsAllChunks(t *testing.T) {
	store := vector.NewMemoryStore()
	in := New(chunk.NewChunker(120, 20), &fakeEmbedder{}, store, "test-embed", 4, zap.NewNop().Sugar())

	n, err := in.Run(context.Background(), testDoc())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if n < 2 {
		t.Fatalf("expected multiple chunks, got %d", n)
	}
	count, err := store.Count(context.Background(), "services")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != n {
		t.Fatalf("store has %d rows, Run reported %d", count, n)
	}
}

func TestRunReingestKeepsCountStable(t *testing.T) {
	store := vector.NewMemoryStore()
	in := New(chunk.NewChunker(120, 20), &fakeEmbedder{}, store, "test-embed", 4, zap.NewNop().Sugar())
	doc := testDoc()

	first, err := in.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	second, err := in.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if first != second {
		t.Fatalf("chunk count changed between runs: %d vs %d", first, second)
	}
	count, _ := store.Count(context.Background(), doc.DocID)
	if count != first {
		t.Fatalf("re-ingest grew the store: %d rows for %d chunks", count, first)
	}
}

func TestRunBatchFailureKeepsCommittedBatches(t *testing.T) {
	store := vector.NewMemoryStore()
	emb := &fakeEmbedder{failCall: 2}
	in := New(chunk.NewChunker(120, 20), emb, store, "test-embed", 3, zap.NewNop().Sugar())

	committed, err := in.Run(context.Background(), testDoc())
	if err == nil {
		t.Fatal("expected error from failing batch")
	}
	if committed != 3 {
		t.Fatalf("committed = %d, want 3 (one full batch)", committed)
	}
	if !strings.Contains(err.Error(), "embed batch 3-5") {
		t.Fatalf("error should name the failed chunk range, got %q", err)
	}
	count, _ := store.Count(context.Background(), "services")
	if count != 3 {
		t.Fatalf("store should keep the committed batch, has %d rows", count)
	}
}

func TestRunEmptyDocument(t *testing.T) {
	store := vector.NewMemoryStore()
	in := New(chunk.NewChunker(0, -1), &fakeEmbedder{}, store, "test-embed", 0, zap.NewNop().Sugar())

	_, err := in.Run(context.Background(), Document{DocID: "empty", Text: "   \n  "})
	if err == nil {
		t.Fatal("expected error for empty document")
	}
	var perr *core.PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PipelineError, got %T", err)
	}
	if perr.DocID != "empty" {
		t.Fatalf("DocID = %q, want %q", perr.DocID, "empty")
	}
}
