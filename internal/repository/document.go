package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/syllabus/internal/domain"
)

type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO documents (id, filename, content_type, storage_key, raw_text, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.Filename, d.ContentType, d.StorageKey, d.RawText, d.CreatedAt,
	)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	if !isUUID(id) {
		return nil, domain.ErrDocumentNotFound
	}
	var d domain.Document
	err := r.db.QueryRow(ctx,
		`SELECT id, filename, content_type, storage_key, raw_text, created_at
		 FROM documents WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.Filename, &d.ContentType, &d.StorageKey, &d.RawText, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return &d, nil
}
