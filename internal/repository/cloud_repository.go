package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classroom-api/internal/models"
)

// CloudRepository persists mirrored collections in cloud_documents.
type CloudRepository struct {
	db *sqlx.DB
}

// NewCloudRepository constructs a CloudRepository.
func NewCloudRepository(db *sqlx.DB) *CloudRepository {
	return &CloudRepository{db: db}
}

// Get returns the document for owner and collection, or nil when absent.
func (r *CloudRepository) Get(ctx context.Context, owner, collection string) (*models.CloudDocument, error) {
	const query = `SELECT owner_email, collection, payload, payload_hash, updated_at FROM cloud_documents WHERE owner_email = $1 AND collection = $2`
	var doc models.CloudDocument
	if err := r.db.GetContext(ctx, &doc, query, owner, collection); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cloud document: %w", err)
	}
	return &doc, nil
}

// Hash returns the stored payload hash, or "" when absent.
func (r *CloudRepository) Hash(ctx context.Context, owner, collection string) (string, error) {
	var hash string
	err := r.db.GetContext(ctx, &hash, `SELECT payload_hash FROM cloud_documents WHERE owner_email = $1 AND collection = $2`, owner, collection)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get cloud document hash: %w", err)
	}
	return hash, nil
}

// ListByOwner returns every mirrored collection of one teacher.
func (r *CloudRepository) ListByOwner(ctx context.Context, owner string) ([]models.CloudDocument, error) {
	const query = `SELECT owner_email, collection, payload, payload_hash, updated_at FROM cloud_documents WHERE owner_email = $1 ORDER BY collection`
	var docs []models.CloudDocument
	if err := r.db.SelectContext(ctx, &docs, query, owner); err != nil {
		return nil, fmt.Errorf("list cloud documents: %w", err)
	}
	return docs, nil
}

// Upsert replaces the stored document.
func (r *CloudRepository) Upsert(ctx context.Context, doc *models.CloudDocument) error {
	const query = `INSERT INTO cloud_documents (owner_email, collection, payload, payload_hash, updated_at)
VALUES (:owner_email, :collection, :payload, :payload_hash, :updated_at)
ON CONFLICT (owner_email, collection) DO UPDATE SET payload = EXCLUDED.payload, payload_hash = EXCLUDED.payload_hash, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("upsert cloud document: %w", err)
	}
	return nil
}
