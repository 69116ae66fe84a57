package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/savedlinks/thumbnailer/internal/thumbnail"
)

// PostgresStore is a PostgreSQL implementation of thumbnail.MetadataRepository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed metadata store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Save creates a record. Two concurrent first-resolutions of the same
// URL can both reach this point; ON CONFLICT DO NOTHING keeps the first
// writer's record so later reads converge on it.
func (p *PostgresStore) Save(ctx context.Context, record *thumbnail.Record) error {
	query := `
		INSERT INTO thumbnail_records
			(key, original_url, url_hash, blob_ref, blob_path, kind, source,
			 uploaded_by, access_count, last_accessed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (key) DO NOTHING
	`

	_, err := p.pool.Exec(ctx, query,
		record.Key,
		record.OriginalURL,
		string(record.URLHash),
		record.BlobRef,
		nullableString(record.BlobPath),
		string(record.Kind),
		record.Source,
		record.UploadedBy,
		record.AccessCount,
		record.LastAccessedAt,
		record.CreatedAt,
		record.UpdatedAt,
	)

	return err
}

func (p *PostgresStore) GetByKey(ctx context.Context, key string) (*thumbnail.Record, error) {
	return p.getOne(ctx, `WHERE key = $1`, key)
}

func (p *PostgresStore) GetByHash(ctx context.Context, hash thumbnail.URLHash) (*thumbnail.Record, error) {
	// The canonical record is the one whose key is the bare hash;
	// regenerated records carry suffixed keys and are excluded here.
	return p.getOne(ctx, `WHERE key = $1 AND url_hash = $1`, string(hash))
}

func (p *PostgresStore) Touch(ctx context.Context, key string, at time.Time) error {
	query := `
		UPDATE thumbnail_records
		SET access_count = access_count + 1, last_accessed_at = $2, updated_at = $2
		WHERE key = $1
	`

	_, err := p.pool.Exec(ctx, query, key, at)

	return err
}

func (p *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM thumbnail_records WHERE key = $1`, key)

	return err
}

func (p *PostgresStore) getOne(ctx context.Context, where string, arg any) (*thumbnail.Record, error) {
	query := `
		SELECT key, original_url, url_hash, blob_ref, blob_path, kind, source,
		       uploaded_by, access_count, last_accessed_at, created_at, updated_at
		FROM thumbnail_records
	` + where

	var record thumbnail.Record

	var blobPath *string

	var kind, hash string

	err := p.pool.QueryRow(ctx, query, arg).Scan(
		&record.Key,
		&record.OriginalURL,
		&hash,
		&record.BlobRef,
		&blobPath,
		&kind,
		&record.Source,
		&record.UploadedBy,
		&record.AccessCount,
		&record.LastAccessedAt,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, thumbnail.ErrNotFound
		}

		return nil, err
	}

	record.URLHash = thumbnail.URLHash(hash)
	record.Kind = thumbnail.Kind(kind)

	if blobPath != nil {
		record.BlobPath = *blobPath
	}

	return &record, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// Compile-time check.
var _ thumbnail.MetadataRepository = (*PostgresStore)(nil)
