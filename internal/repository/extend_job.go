package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/syllabus/internal/domain"
)

type ExtendJobRepository struct {
	db dbtx
}

func NewExtendJobRepository(pool *pgxpool.Pool) *ExtendJobRepository {
	return &ExtendJobRepository{db: pool}
}

func NewExtendJobRepositoryWithTx(tx pgx.Tx) *ExtendJobRepository {
	return &ExtendJobRepository{db: tx}
}

func (r *ExtendJobRepository) Create(ctx context.Context, job *domain.ExtendJob) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO extend_jobs (id, faq_id, status, added, error, created_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		job.ID, job.FaqID, job.Status, job.Added, nullableString(job.Error), job.CreatedAt, job.FinishedAt,
	)
	return err
}

func (r *ExtendJobRepository) GetByID(ctx context.Context, id string) (*domain.ExtendJob, error) {
	if !isUUID(id) {
		return nil, domain.ErrExtendJobNotFound
	}
	var (
		job    domain.ExtendJob
		status string
		errMsg pgtype.Text
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, faq_id, status, added, error, created_at, finished_at
		 FROM extend_jobs WHERE id = $1`,
		id,
	).Scan(&job.ID, &job.FaqID, &status, &job.Added, &errMsg, &job.CreatedAt, &job.FinishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExtendJobNotFound
		}
		return nil, err
	}
	job.Status, err = domain.ParseExtendJobStatus(status)
	if err != nil {
		return nil, err
	}
	if errMsg.Valid {
		job.Error = errMsg.String
	}
	return &job, nil
}

func (r *ExtendJobRepository) Update(ctx context.Context, job *domain.ExtendJob) error {
	if !isUUID(job.ID) {
		return domain.ErrExtendJobNotFound
	}
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE extend_jobs SET status = $1, added = $2, error = $3, finished_at = $4 WHERE id = $5`,
		job.Status, job.Added, nullableString(job.Error), job.FinishedAt, job.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrExtendJobNotFound
	}
	return nil
}

// DeleteExpired removes jobs created before the cutoff and reports how many.
func (r *ExtendJobRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM extend_jobs WHERE created_at < $1`,
		before,
	)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}

// FailRunning moves every running job to error and reports how many changed.
func (r *ExtendJobRepository) FailRunning(ctx context.Context, msg string, at time.Time) (int64, error) {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE extend_jobs SET status = $1, error = $2, finished_at = $3 WHERE status = $4`,
		domain.ExtendJobError, msg, at, domain.ExtendJobRunning,
	)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}
