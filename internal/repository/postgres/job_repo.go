package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"reqsmith/internal/domain"
	"reqsmith/internal/port"
)

type jobRepo struct {
	db *sqlx.DB
}

// NewJobRepo creates a new PostgreSQL-backed JobStore.
func NewJobRepo(db *sqlx.DB) port.JobStore {
	return &jobRepo{db: db}
}

// jobRow mirrors the extraction_jobs table; the batch column holds the JSONB
// encoding of the extraction result.
type jobRow struct {
	ID          uuid.UUID  `db:"id"`
	FileName    string     `db:"file_name"`
	FormatHint  string     `db:"format_hint"`
	StorageKey  string     `db:"storage_key"`
	Status      string     `db:"status"`
	Error       string     `db:"error"`
	Batch       []byte     `db:"batch"`
	Attempts    int        `db:"attempts"`
	SubmittedBy string     `db:"submitted_by"`
	NotifyEmail string     `db:"notify_email"`
	CreatedAt   time.Time  `db:"created_at"`
	CompletedAt *time.Time `db:"completed_at"`
}

func (row *jobRow) toDomain() (*domain.ExtractionJob, error) {
	job := &domain.ExtractionJob{
		ID:          row.ID,
		FileName:    row.FileName,
		FormatHint:  row.FormatHint,
		StorageKey:  row.StorageKey,
		Status:      domain.ExtractionStatus(row.Status),
		Error:       row.Error,
		Attempts:    row.Attempts,
		SubmittedBy: row.SubmittedBy,
		NotifyEmail: row.NotifyEmail,
		CreatedAt:   row.CreatedAt,
		CompletedAt: row.CompletedAt,
	}
	if len(row.Batch) > 0 {
		job.Batch = &domain.ExtractionBatch{}
		if err := json.Unmarshal(row.Batch, job.Batch); err != nil {
			return nil, fmt.Errorf("decoding batch for job %s: %w", row.ID, err)
		}
	}
	return job, nil
}

func encodeBatch(batch *domain.ExtractionBatch) ([]byte, error) {
	if batch == nil {
		return nil, nil
	}
	return json.Marshal(batch)
}

func (r *jobRepo) Create(ctx context.Context, job *domain.ExtractionJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	batch, err := encodeBatch(job.Batch)
	if err != nil {
		return fmt.Errorf("jobRepo.Create: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO extraction_jobs
			(id, file_name, format_hint, storage_key, status, error, batch,
			 attempts, submitted_by, notify_email, created_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		job.ID, job.FileName, job.FormatHint, job.StorageKey,
		string(job.Status), job.Error, batch,
		job.Attempts, job.SubmittedBy, job.NotifyEmail,
		job.CreatedAt, job.CompletedAt)
	if err != nil {
		return fmt.Errorf("jobRepo.Create: %w", err)
	}
	return nil
}

func (r *jobRepo) Get(ctx context.Context, id uuid.UUID) (*domain.ExtractionJob, error) {
	var row jobRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, file_name, format_hint, storage_key, status, error, batch,
			attempts, submitted_by, notify_email, created_at, completed_at
		 FROM extraction_jobs
		 WHERE id = $1`,
		id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("jobRepo.Get: %w", err)
	}
	return row.toDomain()
}

func (r *jobRepo) Update(ctx context.Context, job *domain.ExtractionJob) error {
	batch, err := encodeBatch(job.Batch)
	if err != nil {
		return fmt.Errorf("jobRepo.Update: %w", err)
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE extraction_jobs SET
			status = $1, error = $2, batch = $3, attempts = $4, completed_at = $5
		 WHERE id = $6`,
		string(job.Status), job.Error, batch, job.Attempts, job.CompletedAt,
		job.ID)
	if err != nil {
		return fmt.Errorf("jobRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClaimQueued atomically flips up to limit queued jobs to processing and
// returns them. SKIP LOCKED keeps concurrent workers from claiming the same
// job twice.
func (r *jobRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.ExtractionJob, error) {
	var rows []jobRow
	err := r.db.SelectContext(ctx, &rows,
		`UPDATE extraction_jobs SET status = $1
		 WHERE id IN (
			SELECT id FROM extraction_jobs
			WHERE status = $2
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING id, file_name, format_hint, storage_key, status, error, batch,
			attempts, submitted_by, notify_email, created_at, completed_at`,
		string(domain.ExtractionStatusProcessing), string(domain.ExtractionStatusQueued), limit)
	if err != nil {
		return nil, fmt.Errorf("jobRepo.ClaimQueued: %w", err)
	}

	jobs := make([]domain.ExtractionJob, 0, len(rows))
	for i := range rows {
		job, err := rows[i].toDomain()
		if err != nil {
			return nil, fmt.Errorf("jobRepo.ClaimQueued: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, nil
}
