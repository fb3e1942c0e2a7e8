package main

import (
	"flag"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wakalAIagency/tamhid-chat-api/answer"
	"github.com/wakalAIagency/tamhid-chat-api/config"
	"github.com/wakalAIagency/tamhid-chat-api/llm"
	"github.com/wakalAIagency/tamhid-chat-api/server"
	"github.com/wakalAIagency/tamhid-chat-api/store"
	"github.com/wakalAIagency/tamhid-chat-api/vector"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalw("load config", "error", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalw("invalid config", "error", err)
	}

	client := llm.NewOpenAIClientWithConfig(llm.ClientConfig{
		APIKey:      cfg.APIKey(),
		BaseURL:     cfg.OpenAI.BaseURL,
		Timeout:     cfg.OpenAI.TimeoutSecs,
		Temperature: cfg.OpenAI.Temperature,
	})

	vectors, err := vector.NewPgVectorStore(cfg.VectorDSN, cfg.OpenAI.EmbedDims)
	if err != nil {
		log.Fatalw("open vector store", "error", err)
	}
	defer vectors.Close()

	logs, err := store.New(cfg.LogDSN)
	if err != nil {
		log.Fatalw("open log store", "error", err)
	}
	defer logs.Close()

	fallback := answer.DefaultFallbackConfig()
	if cfg.Fallback.WhatsAppNumber != "" {
		fallback.ContactURL = answer.WhatsAppURL(cfg.Fallback.WhatsAppNumber, cfg.Fallback.WhatsAppMessage)
	}

	svc := answer.NewService(client, client, vectors, logs, fallback,
		cfg.OpenAI.Model, cfg.OpenAI.EmbedModel, log)

	srv := server.New(server.Config{
		Service:     svc,
		Logs:        logs,
		DefaultLang: cfg.Answer.DefaultLang,
		Log:         log,
	})

	log.Infow("starting server", "addr", cfg.Addr)
	if err := srv.Router().Run(cfg.Addr); err != nil {
		log.Fatalw("server stopped", "error", err)
	}
}
