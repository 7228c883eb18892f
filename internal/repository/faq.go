package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/syllabus/internal/domain"
	"github.com/cloo-solutions/syllabus/internal/faq"
)

// ErrItemsShrunk is returned when an update would drop stored FAQ items.
var ErrItemsShrunk = errors.New("faq items cannot shrink")

type FaqRepository struct {
	pool *pgxpool.Pool
}

func NewFaqRepository(pool *pgxpool.Pool) *FaqRepository {
	return &FaqRepository{pool: pool}
}

func (r *FaqRepository) Create(ctx context.Context, f *domain.FaqSet) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO faq_sets (id, document_id, topics, seen_hashes, extend_running, extend_job_id, max_reached, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			f.ID, f.DocumentID, nonNil(f.Topics), f.HashList(), f.ExtendRunning, nullableString(f.ExtendJobID),
			f.MaxReached, f.CreatedAt, f.UpdatedAt,
		)
		if err != nil {
			return err
		}
		return insertItems(ctx, tx, f.ID, f.Items, 0)
	})
}

func (r *FaqRepository) GetByID(ctx context.Context, id string) (*domain.FaqSet, error) {
	if !isUUID(id) {
		return nil, domain.ErrFaqNotFound
	}
	var (
		f      domain.FaqSet
		hashes []string
		jobID  *string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, document_id, topics, seen_hashes, extend_running, extend_job_id, max_reached, created_at, updated_at
		 FROM faq_sets WHERE id = $1`,
		id,
	).Scan(&f.ID, &f.DocumentID, &f.Topics, &hashes, &f.ExtendRunning, &jobID, &f.MaxReached, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFaqNotFound
		}
		return nil, err
	}
	if jobID != nil {
		f.ExtendJobID = *jobID
	}
	f.SeenHashes = make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		f.SeenHashes[h] = struct{}{}
	}

	rows, err := r.pool.Query(ctx,
		`SELECT question, answer FROM faq_items WHERE faq_id = $1 ORDER BY position ASC`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.QAItem
		if err := rows.Scan(&item.Question, &item.Answer); err != nil {
			return nil, err
		}
		f.Items = append(f.Items, item)
	}
	return &f, rows.Err()
}

// Update stores the set's flags and hashes and appends any items beyond those
// already stored, all in one transaction.
func (r *FaqRepository) Update(ctx context.Context, f *domain.FaqSet) error {
	if !isUUID(f.ID) {
		return domain.ErrFaqNotFound
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx,
			`UPDATE faq_sets
			 SET topics = $1, seen_hashes = $2, extend_running = $3, extend_job_id = $4, max_reached = $5, updated_at = $6
			 WHERE id = $7`,
			nonNil(f.Topics), f.HashList(), f.ExtendRunning, nullableString(f.ExtendJobID), f.MaxReached, f.UpdatedAt, f.ID,
		)
		if err != nil {
			return err
		}
		if cmdTag.RowsAffected() == 0 {
			return domain.ErrFaqNotFound
		}

		var stored int
		if err := tx.QueryRow(ctx,
			`SELECT count(*) FROM faq_items WHERE faq_id = $1`, f.ID,
		).Scan(&stored); err != nil {
			return err
		}
		if len(f.Items) < stored {
			return ErrItemsShrunk
		}
		return insertItems(ctx, tx, f.ID, f.Items[stored:], stored)
	})
}

func insertItems(ctx context.Context, tx pgx.Tx, faqID string, items []domain.QAItem, offset int) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, item := range items {
		batch.Queue(
			`INSERT INTO faq_items (faq_id, position, question, answer, question_hash) VALUES ($1, $2, $3, $4, $5)`,
			faqID, offset+i, item.Question, item.Answer, faq.QuestionHash(item.Question),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert faq items: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
