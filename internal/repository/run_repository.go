package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jengzang/collision-records-go/internal/models"
)

const timeLayout = time.RFC3339Nano

// RunRepository handles database operations for enrichment runs
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create records a new run. The run's ID is set from the inserted row.
func (r *RunRepository) Create(run *models.EnrichmentRun) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = models.RunStatusRunning
	}

	query := `
		INSERT INTO enrichment_runs (
			status, collisions_path, parties_path, victims_path, output_path,
			join_policy, started_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		run.Status,
		run.CollisionsPath,
		run.PartiesPath,
		run.VictimsPath,
		run.OutputPath,
		run.JoinPolicy,
		run.StartedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to create enrichment run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	run.ID = id
	return nil
}

// MarkCompleted stores the row counts of a finished run
func (r *RunRepository) MarkCompleted(run *models.EnrichmentRun) error {
	now := time.Now().UTC()
	query := `
		UPDATE enrichment_runs
		SET status = ?, collision_rows = ?, victim_rows = ?, party_rows = ?,
		    output_rows = ?, completed_at = ?
		WHERE id = ?
	`
	if err := r.exec(query,
		models.RunStatusCompleted,
		run.CollisionRows,
		run.VictimRows,
		run.PartyRows,
		run.OutputRows,
		now.Format(timeLayout),
		run.ID,
	); err != nil {
		return fmt.Errorf("failed to mark run %d completed: %w", run.ID, err)
	}
	run.Status = models.RunStatusCompleted
	run.CompletedAt = &now
	return nil
}

// MarkFailed records the error that stopped a run
func (r *RunRepository) MarkFailed(id int64, errorMessage string) error {
	query := `
		UPDATE enrichment_runs
		SET status = ?, error_message = ?, completed_at = ?
		WHERE id = ?
	`
	if err := r.exec(query, models.RunStatusFailed, errorMessage, time.Now().UTC().Format(timeLayout), id); err != nil {
		return fmt.Errorf("failed to mark run %d failed: %w", id, err)
	}
	return nil
}

// GetByID retrieves a run by ID
func (r *RunRepository) GetByID(id int64) (*models.EnrichmentRun, error) {
	row := r.db.QueryRow(selectRuns+" WHERE id = ?", id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("enrichment run not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get enrichment run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs, newest first. A limit <= 0 returns all runs.
func (r *RunRepository) List(limit int) ([]*models.EnrichmentRun, error) {
	query := selectRuns + " ORDER BY id DESC"
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrichment runs: %w", err)
	}
	defer rows.Close()

	runs := []*models.EnrichmentRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrichment run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *RunRepository) exec(query string, args ...interface{}) error {
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

const selectRuns = `
	SELECT id, status, collisions_path, parties_path, victims_path, output_path,
	       join_policy, collision_rows, victim_rows, party_rows, output_rows,
	       error_message, started_at, completed_at
	FROM enrichment_runs`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (*models.EnrichmentRun, error) {
	run := &models.EnrichmentRun{}
	var startedAt string
	var completedAt sql.NullString
	err := s.Scan(
		&run.ID,
		&run.Status,
		&run.CollisionsPath,
		&run.PartiesPath,
		&run.VictimsPath,
		&run.OutputPath,
		&run.JoinPolicy,
		&run.CollisionRows,
		&run.VictimRows,
		&run.PartyRows,
		&run.OutputRows,
		&run.ErrorMessage,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if run.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if completedAt.Valid {
		t, err := time.Parse(timeLayout, completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse completed_at: %w", err)
		}
		run.CompletedAt = &t
	}
	return run, nil
}
