package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/savedlinks/thumbnailer/internal/thumbnail"
)

// PostgresBlobStore stores rendered screenshots in a bytea table. It is
// the shared blob store across all users; only screenshots land here,
// direct links are referenced without re-hosting.
type PostgresBlobStore struct {
	pool *pgxpool.Pool
}

// NewPostgresBlobStore creates a new postgres-backed blob store.
func NewPostgresBlobStore(pool *pgxpool.Pool) *PostgresBlobStore {
	return &PostgresBlobStore{pool: pool}
}

func (p *PostgresBlobStore) Put(ctx context.Context, path string, data []byte, meta thumbnail.BlobMetadata) (string, error) {
	query := `
		INSERT INTO thumbnail_blobs
			(path, data, original_url, kind, source, uploaded_by, url_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (path) DO NOTHING
	`

	_, err := p.pool.Exec(ctx, query,
		path,
		data,
		meta.OriginalURL,
		string(meta.Kind),
		meta.Source,
		meta.UploadedBy,
		string(meta.URLHash),
		meta.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", thumbnail.ErrUploadFailed, err)
	}

	return "blob://" + path, nil
}

func (p *PostgresBlobStore) Get(ctx context.Context, path string) ([]byte, error) {
	var data []byte

	err := p.pool.QueryRow(ctx, `SELECT data FROM thumbnail_blobs WHERE path = $1`, path).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, thumbnail.ErrNotFound
		}

		return nil, err
	}

	return data, nil
}

func (p *PostgresBlobStore) Delete(ctx context.Context, path string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM thumbnail_blobs WHERE path = $1`, path)

	return err
}

// Compile-time check.
var _ thumbnail.BlobStore = (*PostgresBlobStore)(nil)
