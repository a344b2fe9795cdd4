package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/intelmarket/gestor-pav/internal/config"
	_ "github.com/lib/pq"
)

const insertUsageSQL = `INSERT INTO ia_usage (
	user_id, processo, plataforma, modelo,
	input_tokens, output_tokens, total_tokens,
	custo, duracao_ms, entidade_id, sucesso, erro
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

// UsageRecord is one row of the ia_usage ledger
type UsageRecord struct {
	UserID       string
	Processo     string
	Plataforma   string
	Modelo       string
	InputTokens  int
	OutputTokens int
	Custo        float64
	Duration     time.Duration
	EntidadeID   string
	Sucesso      bool
	Erro         string
}

// UsageStore persists LLM usage to PostgreSQL
type UsageStore struct {
	db *sql.DB
}

// OpenUsageStore connects to the database described by cfg
func OpenUsageStore(cfg config.DatabaseConfig) (*UsageStore, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return NewUsageStore(db), nil
}

// NewUsageStore wraps an open database
func NewUsageStore(db *sql.DB) *UsageStore {
	return &UsageStore{db: db}
}

// Record inserts one usage row
func (s *UsageStore) Record(ctx context.Context, r UsageRecord) error {
	_, err := s.db.ExecContext(ctx, insertUsageSQL,
		nullString(r.UserID),
		r.Processo,
		r.Plataforma,
		r.Modelo,
		r.InputTokens,
		r.OutputTokens,
		r.InputTokens+r.OutputTokens,
		r.Custo,
		r.Duration.Milliseconds(),
		nullString(r.EntidadeID),
		r.Sucesso,
		nullString(r.Erro),
	)
	if err != nil {
		return fmt.Errorf("failed to insert ia_usage: %w", err)
	}
	return nil
}

// Ping tests the database connection
func (s *UsageStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Health returns database health status
func (s *UsageStore) Health() map[string]interface{} {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Ping(ctx); err != nil {
		return map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		}
	}
	return map[string]interface{}{"status": "healthy"}
}

// Close closes the database connection
func (s *UsageStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
