package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const jobStatusProcessing = "processing"

const insertJobSQL = `INSERT INTO ia_jobs (
	id, user_id, entidade_id, tipo, status, progresso, etapa_atual
) VALUES ($1, $2, $3, $4, $5, $6, $7)`

const advanceJobSQL = `UPDATE ia_jobs
SET progresso = $2,
	etapa_atual = $3,
	etapas_completas = $4
WHERE id = $1`

const completeJobSQL = `UPDATE ia_jobs
SET progresso = 100,
	status = 'completed',
	etapa_atual = 'completed',
	etapas_completas = $2,
	tempo_fim = NOW(),
	duracao_ms = $3,
	custo = $4
WHERE id = $1`

const failJobSQL = `UPDATE ia_jobs
SET status = 'failed',
	etapa_atual = 'failed',
	dados_parciais = $2,
	tempo_fim = NOW(),
	duracao_ms = $3
WHERE id = $1`

// JobRecord is the initial ia_jobs row of an enrichment
type JobRecord struct {
	ID         string
	UserID     string
	EntidadeID string
	Tipo       string
	Etapa      string
}

// JobStore tracks enrichment progress in the ia_jobs table
type JobStore struct {
	db *sql.DB
}

// NewJobStore wraps an open database
func NewJobStore(db *sql.DB) *JobStore {
	return &JobStore{db: db}
}

// Start inserts the job row in processing state at 0%
func (s *JobStore) Start(ctx context.Context, job JobRecord) error {
	_, err := s.db.ExecContext(ctx, insertJobSQL,
		job.ID,
		nullString(job.UserID),
		nullString(job.EntidadeID),
		job.Tipo,
		jobStatusProcessing,
		0,
		job.Etapa,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ia_jobs %s: %w", job.ID, err)
	}
	return nil
}

// Advance moves the job to the next stage
func (s *JobStore) Advance(ctx context.Context, id string, progresso int, etapa string, completas []string) error {
	etapas, err := json.Marshal(completas)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, advanceJobSQL, id, progresso, etapa, string(etapas)); err != nil {
		return fmt.Errorf("failed to advance ia_jobs %s: %w", id, err)
	}
	return nil
}

// Complete marks the job completed at 100%
func (s *JobStore) Complete(ctx context.Context, id string, completas []string, duration time.Duration, custo float64) error {
	etapas, err := json.Marshal(completas)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, completeJobSQL, id, string(etapas), duration.Milliseconds(), custo); err != nil {
		return fmt.Errorf("failed to complete ia_jobs %s: %w", id, err)
	}
	return nil
}

// Fail marks the job failed and keeps the error in dados_parciais
func (s *JobStore) Fail(ctx context.Context, id string, failure string, duration time.Duration) error {
	dados, err := json.Marshal(map[string]string{"erro": failure})
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, failJobSQL, id, string(dados), duration.Milliseconds()); err != nil {
		return fmt.Errorf("failed to fail ia_jobs %s: %w", id, err)
	}
	return nil
}
