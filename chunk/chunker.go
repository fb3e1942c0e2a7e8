package chunk

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"regexp"

	"github.com/wakalAIagency/tamhid-chat-api/core"
)

const (
	DefaultMaxTokens     = 500
	DefaultOverlapTokens = 100
)

var arabicRe = regexp.MustCompile(`[\x{0600}-\x{06FF}]`)

// Chunker splits raw document text into token-bounded, overlap-stitched
// chunks and assigns their identity and metadata.
type Chunker struct {
	maxTokens     int
	overlapTokens int
}

func NewChunker(maxTokens, overlapTokens int) *Chunker {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if overlapTokens < 0 {
		overlapTokens = DefaultOverlapTokens
	}
	return &Chunker{maxTokens: maxTokens, overlapTokens: overlapTokens}
}

// Split normalizes raw text and returns the packed chunk contents in packing
// order. Identical input always produces identical output.
func (c *Chunker) Split(raw string) []string {
	normalized := Normalize(raw)
	if normalized == "" {
		return nil
	}
	return Pack(Segment(normalized, c.maxTokens), c.maxTokens, c.overlapTokens)
}

// Build runs Split and attaches chunk identity: the zero-based packing index,
// per-chunk metadata, and an auxiliary content hash. The primary upsert key
// remains (doc_id, chunk_id).
func (c *Chunker) Build(docID, source, sourceURL, raw string) []core.Chunk {
	contents := c.Split(raw)
	chunks := make([]core.Chunk, 0, len(contents))
	for i, content := range contents {
		chunks = append(chunks, core.Chunk{
			DocID:   docID,
			ChunkID: i,
			Content: content,
			Hash:    shortHash(EmbeddingInput(docID, i, content)),
			Metadata: core.ChunkMetadata{
				Source:    source,
				SourceURL: sourceURL,
				Lang:      DetectLang(content),
			},
		})
	}
	return chunks
}

// EmbeddingInput prefixes chunk content with a lightweight header naming its
// document and index, so each embedded unit is self-describing outside its
// storage row.
func EmbeddingInput(docID string, chunkID int, content string) string {
	return fmt.Sprintf("DOC:%s\nCHUNK:%d\n\n%s", docID, chunkID, content)
}

// DetectLang tags content "ar" when it contains any Arabic-range character,
// "en" otherwise.
func DetectLang(content string) string {
	if arabicRe.MatchString(content) {
		return "ar"
	}
	return "en"
}

func shortHash(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:16]
}
