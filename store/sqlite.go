package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wakalAIagency/tamhid-chat-api/store/migrations"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements LogStore using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLite-backed log store
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = "data/tamhid.db"
	}

	dir := filepath.Dir(dsn)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := runSQLiteMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func runSQLiteMigrations(db *sql.DB) error {
	data, err := migrations.SQLite.ReadFile("sqlite/001_init.sql")
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	_, err = db.Exec(string(data))
	if err != nil {
		return fmt.Errorf("exec migration: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AddLog(ctx context.Context, l ChatLog) error {
	sources, err := json.Marshal(l.Sources)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}
	if l.CreatedAt == 0 {
		l.CreatedAt = time.Now().UnixMilli()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO chat_logs (
			id, session_id, question, answer, lang, top_k, model, embed_model,
			latency_ms, sources, fallback, error, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.SessionID, l.Question, l.Answer, l.Lang, l.TopK, l.Model, l.EmbedModel,
		l.LatencyMs, string(sources), l.Fallback, l.Error, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert chat log: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetLog(ctx context.Context, id string) (ChatLog, error) {
	var l ChatLog
	var sourcesJSON string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, question, answer, lang, top_k, model, embed_model,
			   latency_ms, sources, fallback, error, created_at
		FROM chat_logs WHERE id = ?`, id).Scan(
		&l.ID, &l.SessionID, &l.Question, &l.Answer, &l.Lang, &l.TopK, &l.Model, &l.EmbedModel,
		&l.LatencyMs, &sourcesJSON, &l.Fallback, &l.Error, &l.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return l, ErrNotFound
	}
	if err != nil {
		return l, fmt.Errorf("query chat log: %w", err)
	}

	if err := json.Unmarshal([]byte(sourcesJSON), &l.Sources); err != nil {
		return l, fmt.Errorf("unmarshal sources: %w", err)
	}
	return l, nil
}

func (s *SQLiteStore) ListLogs(ctx context.Context, limit int) ([]ChatLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, question, answer, lang, top_k, model, embed_model,
			   latency_ms, sources, fallback, error, created_at
		FROM chat_logs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query chat logs: %w", err)
	}
	defer rows.Close()

	var logs []ChatLog
	for rows.Next() {
		var l ChatLog
		var sourcesJSON string
		if err := rows.Scan(
			&l.ID, &l.SessionID, &l.Question, &l.Answer, &l.Lang, &l.TopK, &l.Model, &l.EmbedModel,
			&l.LatencyMs, &sourcesJSON, &l.Fallback, &l.Error, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan chat log: %w", err)
		}
		if err := json.Unmarshal([]byte(sourcesJSON), &l.Sources); err != nil {
			return nil, fmt.Errorf("unmarshal sources: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (s *SQLiteStore) AddFeedback(ctx context.Context, f Feedback) error {
	if f.Rating != 1 && f.Rating != -1 {
		return fmt.Errorf("rating must be 1 or -1, got %d", f.Rating)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO feedback (log_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?)`,
		f.LogID, f.Rating, f.Comment, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Summary(ctx context.Context) (MetricsSummary, error) {
	var m MetricsSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(fallback), 0),
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

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
