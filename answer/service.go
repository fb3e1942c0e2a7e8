// Package answer implements the question answering pipeline: embed the
// question, retrieve matching chunks, synthesize a grounded reply, and gate
// non-answers behind a contact fallback.
package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wakalAIagency/tamhid-chat-api/core"
	"github.com/wakalAIagency/tamhid-chat-api/llm"
	"github.com/wakalAIagency/tamhid-chat-api/store"
	"github.com/wakalAIagency/tamhid-chat-api/vector"
)

const systemPrompt = `You are a helpful assistant that answers ONLY from the provided context.
If the answer is not in the context, say "NO_ANSWER". Keep answers concise and in the same language as the user.`

const (
	// MaxMatches caps topK regardless of what the caller requests.
	MaxMatches  = 8
	DefaultTopK = 6
)

// Request is one question put to the pipeline. Lang filters retrieval when
// non-empty; TopK <= 0 uses the default.
type Request struct {
	Question  string
	Lang      string
	TopK      int
	SessionID string
}

// Result carries the final answer plus the raw matches and the chat log id,
// which is empty when best-effort logging did not succeed.
type Result struct {
	Answer   core.Answer
	Matches  []core.Match
	LogID    string
	Fallback bool
}

// Service wires the answer pipeline's capabilities together.
type Service struct {
	embedder   llm.EmbeddingClient
	chat       llm.Client
	vectors    vector.Store
	logs       store.LogStore
	fallback   FallbackConfig
	model      string
	embedModel string
	log        *zap.SugaredLogger
}

func NewService(embedder llm.EmbeddingClient, chat llm.Client, vectors vector.Store, logs store.LogStore, fallback FallbackConfig, model, embedModel string, log *zap.SugaredLogger) *Service {
	return &Service{
		embedder:   embedder,
		chat:       chat,
		vectors:    vectors,
		logs:       logs,
		fallback:   fallback,
		model:      model,
		embedModel: embedModel,
		log:        log,
	}
}

// Ask runs the full pipeline for one question. A blank question fails fast
// with core.ErrEmptyQuestion before any capability is touched. Pipeline
// failures are recorded best-effort and returned; logging failures never
// surface to the caller.
func (s *Service) Ask(ctx context.Context, req Request) (Result, error) {
	start := time.Now()

	q := strings.TrimSpace(req.Question)
	if q == "" {
		return Result{}, core.ErrEmptyQuestion
	}

	topK := req.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxMatches {
		topK = MaxMatches
	}

	res, err := s.run(ctx, q, req.Lang, topK)
	if err != nil {
		s.logError(ctx, req, q, err, time.Since(start).Milliseconds())
		return Result{}, err
	}

	res.Answer.LatencyMs = time.Since(start).Milliseconds()
	res.LogID = s.logAnswer(ctx, req, q, topK, res)
	return res, nil
}

func (s *Service) run(ctx context.Context, q, lang string, topK int) (Result, error) {
	embedding, err := s.embedder.Embed(ctx, s.embedModel, q)
	if err != nil {
		return Result{}, fmt.Errorf("embed question: %w", err)
	}

	matches, err := s.vectors.Search(ctx, embedding, topK, lang)
	if err != nil {
		return Result{}, fmt.Errorf("search: %w", err)
	}

	msgs := []core.Message{
		core.NewSystemMessage(systemPrompt),
		core.NewUserMessage(fmt.Sprintf("Context:\n\n%s\n\nQuestion: %s", BuildContext(matches), q)),
	}
	resp, err := s.chat.Chat(ctx, s.model, msgs)
	if err != nil {
		return Result{}, fmt.Errorf("chat: %w", err)
	}

	text := strings.TrimSpace(resp.Content)
	fellBack := s.fallback.IsNoAnswer(text)
	if fellBack {
		text = s.fallback.Text()
	}

	return Result{
		Answer: core.Answer{
			Text:    text,
			Sources: Sources(matches),
		},
		Matches:  matches,
		Fallback: fellBack,
	}, nil
}

// logAnswer persists the exchange and returns the log id, or "" when the
// store refused it. Logging is best-effort; the answer already reached the
// caller's hands.
func (s *Service) logAnswer(ctx context.Context, req Request, q string, topK int, res Result) string {
	if s.logs == nil {
		return ""
	}

	refs := make([]store.SourceRef, 0, len(res.Matches))
	for _, m := range res.Matches {
		src := m.Metadata.SourceURL
		if src == "" {
			src = m.Metadata.Source
		}
		refs = append(refs, store.SourceRef{SourceURL: src, ChunkID: m.ChunkID, Score: m.Score})
	}

	id := uuid.NewString()
	l := store.ChatLog{
		ID:         id,
		SessionID:  req.SessionID,
		Question:   q,
		Answer:     res.Answer.Text,
		Lang:       req.Lang,
		TopK:       topK,
		Model:      s.model,
		EmbedModel: s.embedModel,
		LatencyMs:  res.Answer.LatencyMs,
		Sources:    refs,
		Fallback:   res.Fallback,
	}
	if err := s.logs.AddLog(ctx, l); err != nil {
		s.log.Warnw("chat log write failed", "log_id", id, "error", err)
		return ""
	}
	return id
}

func (s *Service) logError(ctx context.Context, req Request, q string, pipelineErr error, latencyMs int64) {
	if s.logs == nil {
		return
	}
	msg := pipelineErr.Error()
	l := store.ChatLog{
		ID:         uuid.NewString(),
		SessionID:  req.SessionID,
		Question:   q,
		Lang:       req.Lang,
		Model:      s.model,
		EmbedModel: s.embedModel,
		LatencyMs:  latencyMs,
		Error:      &msg,
	}
	if err := s.logs.AddLog(ctx, l); err != nil {
		s.log.Warnw("error log write failed", "error", err)
	}
}
