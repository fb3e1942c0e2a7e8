package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wakalAIagency/tamhid-chat-api/crawler"
)

func main() {
	_ = godotenv.Load()

	startURL := flag.String("url", "https://tamhid.sa/", "seed URL to crawl")
	out := flag.String("out", "tamhid_plaintext.txt", "output file")
	maxPages := flag.Int("max-pages", crawler.DefaultMaxPages, "maximum pages to crawl")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	c := crawler.New(*maxPages, log)
	pages, err := c.Crawl(context.Background(), *startURL)
	if err != nil {
		log.Fatalw("crawl failed", "error", err)
	}

	if err := os.WriteFile(*out, []byte(crawler.Dump(pages)), 0o644); err != nil {
		log.Fatalw("write output", "file", *out, "error", err)
	}
	log.Infow("crawl complete", "pages", len(pages), "file", *out)
}
