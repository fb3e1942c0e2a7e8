package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wakalAIagency/tamhid-chat-api/store/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore implements LogStore using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed log store
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := runPostgresMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runPostgresMigrations(db *sql.DB) error {
	data, err := migrations.Postgres.ReadFile("postgres/001_init.sql")
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	_, err = db.Exec(string(data))
	if err != nil {
		return fmt.Errorf("exec migration: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddLog(ctx context.Context, l ChatLog) error {
	sources, err := json.Marshal(l.Sources)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}
	if l.CreatedAt == 0 {
		l.CreatedAt = time.Now().UnixMilli()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chat_logs (
			id, session_id, question, answer, lang, top_k, model, embed_model,
			latency_ms, sources, fallback, error, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			session_id = EXCLUDED.session_id,
			question = EXCLUDED.question,
			answer = EXCLUDED.answer,
			lang = EXCLUDED.lang,
			top_k = EXCLUDED.top_k,
			model = EXCLUDED.model,
			embed_model = EXCLUDED.embed_model,
			latency_ms = EXCLUDED.latency_ms,
			sources = EXCLUDED.sources,
			fallback = EXCLUDED.fallback,
			error = EXCLUDED.error,
			created_at = EXCLUDED.created_at`,
		l.ID, l.SessionID, l.Question, l.Answer, l.Lang, l.TopK, l.Model, l.EmbedModel,
		l.LatencyMs, sources, l.Fallback, l.Error, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert chat log: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetLog(ctx context.Context, id string) (ChatLog, error) {
	var l ChatLog
	var sourcesJSON []byte

	err := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, question, answer, lang, top_k, model, embed_model,
			   latency_ms, sources, fallback, error, created_at
		FROM chat_logs WHERE id = $1`, id).Scan(
		&l.ID, &l.SessionID, &l.Question, &l.Answer, &l.Lang, &l.TopK, &l.Model, &l.EmbedModel,
		&l.LatencyMs, &sourcesJSON, &l.Fallback, &l.Error, &l.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return l, ErrNotFound
	}
	if err != nil {
		return l, fmt.Errorf("query chat log: %w", err)
	}

	if err := json.Unmarshal(sourcesJSON, &l.Sources); err != nil {
		return l, fmt.Errorf("unmarshal sources: %w", err)
	}
	return l, nil
}

func (s *PostgresStore) ListLogs(ctx context.Context, limit int) ([]ChatLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, question, answer, lang, top_k, model, embed_model,
			   latency_ms, sources, fallback, error, created_at
		FROM chat_logs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query chat logs: %w", err)
	}
	defer rows.Close()

	var logs []ChatLog
	for rows.Next() {
		var l ChatLog
		var sourcesJSON []byte
		if err := rows.Scan(
			&l.ID, &l.SessionID, &l.Question, &l.Answer, &l.Lang, &l.TopK, &l.Model, &l.EmbedModel,
			&l.LatencyMs, &sourcesJSON, &l.Fallback, &l.Error, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan chat log: %w", err)
		}
		if err := json.Unmarshal(sourcesJSON, &l.Sources); err != nil {
			return nil, fmt.Errorf("unmarshal sources: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (s *PostgresStore) AddFeedback(ctx context.Context, f Feedback) error {
	if f.Rating != 1 && f.Rating != -1 {
		return fmt.Errorf("rating must be 1 or -1, got %d", f.Rating)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (log_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (log_id) DO UPDATE SET
			rating = EXCLUDED.rating,
			comment = EXCLUDED.comment,
			created_at = EXCLUDED.created_at`,
		f.LogID, f.Rating, f.Comment, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (s *PostgresStore) Summary(ctx context.Context) (MetricsSummary, error) {
	var m MetricsSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN fallback THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN error IS NOT NULL THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(latency_ms), 0)
		FROM chat_logs`).Scan(
		&m.TotalLogs, &m.FallbackCount, &m.ErrorCount, &m.AvgLatencyMs,
	)
	if err != nil {
		return m, fmt.Errorf("query summary: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN rating = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN rating = -1 THEN 1 ELSE 0 END), 0)
		FROM feedback`).Scan(&m.UpVotes, &m.DownVotes)
	if err != nil {
		return m, fmt.Errorf("query feedback summary: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
