// Package repository persists web-service classifications and batch jobs.
package repository

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/vik-srinivasan/genie-compliance/internal/models"
)

// ClassificationRepository handles data storage
type ClassificationRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewClassificationRepository opens the database and applies the schema.
func NewClassificationRepository(dbPath string, logger *zap.Logger) (*ClassificationRepository, error) {
	db, err := sqlx.Connect("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &ClassificationRepository{
		db:     db,
		logger: logger,
	}

	if err := repo.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("Classification repository initialized", zap.String("db_path", dbPath))

	return repo, nil
}

// migrate creates tables
func (r *ClassificationRepository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS classifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL,
		status TEXT NOT NULL,
		reasoning TEXT,
		evidence_summary TEXT,
		model_version TEXT,
		classified_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_status ON classifications(status);
	CREATE INDEX IF NOT EXISTS idx_classified_at ON classifications(classified_at);

	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		total_count INTEGER NOT NULL,
		processed_count INTEGER DEFAULT 0,
		failed_count INTEGER DEFAULT 0,
		created_at DATETIME NOT NULL,
		completed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_job_status ON jobs(status);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveClassification saves a single classification and fills in its id.
func (r *ClassificationRepository) SaveClassification(c *models.StoredClassification) error {
	query := `
		INSERT INTO classifications (
			code, status, reasoning, evidence_summary, model_version, classified_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		c.Code,
		c.Status,
		c.Reasoning,
		c.EvidenceSummary,
		c.ModelVersion,
		c.ClassifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save classification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	c.ID = id
	return nil
}

// GetAllClassifications retrieves all stored classifications, newest first.
func (r *ClassificationRepository) GetAllClassifications() ([]*models.StoredClassification, error) {
	query := `
		SELECT id, code, status, reasoning, evidence_summary, model_version, classified_at
		FROM classifications
		ORDER BY classified_at DESC
	`

	var classifications []*models.StoredClassification
	if err := r.db.Select(&classifications, query); err != nil {
		return nil, fmt.Errorf("failed to get classifications: %w", err)
	}
	return classifications, nil
}

// CreateJob inserts a new batch job.
func (r *ClassificationRepository) CreateJob(job *models.Job) error {
	query := `
		INSERT INTO jobs (id, status, total_count, processed_count, failed_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		job.ID,
		job.Status,
		job.TotalCount,
		job.ProcessedCount,
		job.FailedCount,
		job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by id. Returns sql.ErrNoRows when absent.
func (r *ClassificationRepository) GetJob(jobID string) (*models.Job, error) {
	query := `
		SELECT id, status, total_count, processed_count, failed_count, created_at, completed_at
		FROM jobs WHERE id = ?
	`

	job := &models.Job{}
	if err := r.db.Get(job, query, jobID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// UpdateJob writes back job progress.
func (r *ClassificationRepository) UpdateJob(job *models.Job) error {
	query := `
		UPDATE jobs
		SET status = ?, processed_count = ?, failed_count = ?, completed_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		job.Status,
		job.ProcessedCount,
		job.FailedCount,
		job.CompletedAt,
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	return nil
}

// Close closes the database.
func (r *ClassificationRepository) Close() error {
	return r.db.Close()
}
