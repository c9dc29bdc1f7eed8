// Package postgres persists training-run records so retrains can be audited
// and compared over time.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"churnscope/ports"
)

// runRepository implements ports.RunRegistry on PostgreSQL.
type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new training-run repository.
func NewRunRepository(db *sqlx.DB) ports.RunRegistry {
	return &runRepository{db: db}
}

// Record inserts a training run.
func (r *runRepository) Record(ctx context.Context, run *ports.TrainingRun) error {
	query := `INSERT INTO training_runs (
		id, model_id, file_ref, target, task, num_rows, num_features, metrics_json, created_at
	) VALUES (
		:id, :model_id, :file_ref, :target, :task, :num_rows, :num_features, :metrics_json, :created_at
	)`

	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("recording training run: %w", err)
	}
	return nil
}

// GetByModelID returns the most recent run for a model id.
func (r *runRepository) GetByModelID(ctx context.Context, modelID string) (*ports.TrainingRun, error) {
	query := `SELECT id, model_id, file_ref, target, task, num_rows, num_features, metrics_json, created_at
	FROM training_runs WHERE model_id = $1 ORDER BY created_at DESC LIMIT 1`

	var run ports.TrainingRun
	if err := r.db.GetContext(ctx, &run, query, modelID); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no training run for model %s", modelID)
		}
		return nil, fmt.Errorf("getting training run: %w", err)
	}
	return &run, nil
}

// ListRecent returns the latest runs, newest first.
func (r *runRepository) ListRecent(ctx context.Context, limit int) ([]*ports.TrainingRun, error) {
	query := `SELECT id, model_id, file_ref, target, task, num_rows, num_features, metrics_json, created_at
	FROM training_runs ORDER BY created_at DESC LIMIT $1`

	var runs []*ports.TrainingRun
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("listing training runs: %w", err)
	}
	return runs, nil
}

// Schema is the DDL for the training_runs table, applied at startup when a
// database is configured.
const Schema = `
CREATE TABLE IF NOT EXISTS training_runs (
	id TEXT PRIMARY KEY,
	model_id TEXT NOT NULL,
	file_ref TEXT NOT NULL,
	target TEXT NOT NULL,
	task TEXT NOT NULL,
	num_rows INTEGER NOT NULL,
	num_features INTEGER NOT NULL,
	metrics_json TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_training_runs_model_id ON training_runs (model_id);
`

// Migrate applies the training_runs schema.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrating training_runs: %w", err)
	}
	return nil
}
