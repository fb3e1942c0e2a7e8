package main

import (
	"context"
	"flag"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wakalAIagency/tamhid-chat-api/chunk"
	"github.com/wakalAIagency/tamhid-chat-api/config"
	"github.com/wakalAIagency/tamhid-chat-api/ingest"
	"github.com/wakalAIagency/tamhid-chat-api/llm"
	"github.com/wakalAIagency/tamhid-chat-api/vector"
)

var sectionRe = regexp.MustCompile(`(?m)^===== (\S+) =====$`)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to config file")
	file := flag.String("file", "", "text file to ingest")
	docID := flag.String("doc", "", "document id (single-document mode)")
	source := flag.String("source", "", "source label stored with each chunk")
	sourceURL := flag.String("source-url", "", "source URL stored with each chunk")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	if *file == "" {
		log.Fatal("-file is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalw("load config", "error", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalw("invalid config", "error", err)
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalw("read input", "file", *file, "error", err)
	}

	client := llm.NewOpenAIClientWithConfig(llm.ClientConfig{
		APIKey:  cfg.APIKey(),
		BaseURL: cfg.OpenAI.BaseURL,
		Timeout: cfg.OpenAI.TimeoutSecs,
	})

	vectors, err := vector.NewPgVectorStore(cfg.VectorDSN, cfg.OpenAI.EmbedDims)
	if err != nil {
		log.Fatalw("open vector store", "error", err)
	}
	defer vectors.Close()

	chunker := chunk.NewChunker(cfg.Chunking.MaxTokens, cfg.Chunking.OverlapTokens)
	ing := ingest.New(chunker, client, vectors, cfg.OpenAI.EmbedModel, cfg.Chunking.BatchSize, log)

	docs := splitDocuments(string(raw), *docID, *source, *sourceURL)
	if len(docs) == 0 {
		log.Fatal("no documents found in input")
	}

	ctx := context.Background()
	total := 0
	for _, doc := range docs {
		n, err := ing.Run(ctx, doc)
		if err != nil {
			log.Fatalw("ingest failed", "doc_id", doc.DocID, "error", err)
		}
		total += n
	}
	log.Infow("ingestion complete", "documents", len(docs), "chunks", total)
}

// splitDocuments turns crawl dumps with "===== url =====" section headers
// into one document per page. Input without headers is a single document and
// requires -doc.
func splitDocuments(text, docID, source, sourceURL string) []ingest.Document {
	headers := sectionRe.FindAllStringSubmatchIndex(text, -1)
	if len(headers) == 0 {
		if docID == "" {
			return nil
		}
		return []ingest.Document{{DocID: docID, Source: source, SourceURL: sourceURL, Text: text}}
	}

	var docs []ingest.Document
	for i, h := range headers {
		pageURL := text[h[2]:h[3]]
		start := h[1]
		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		docs = append(docs, ingest.Document{
			DocID:     docIDFromURL(pageURL),
			Source:    source,
			SourceURL: pageURL,
			Text:      text[start:end],
		})
	}
	return docs
}

func docIDFromURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}
	slug := strings.Trim(u.Path, "/")
	if slug == "" {
		return "home"
	}
	return strings.ReplaceAll(slug, "/", "-")
}
