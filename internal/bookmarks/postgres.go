package bookmarks

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/savedlinks/thumbnailer/internal/thumbnail"
)

// PostgresStore is a PostgreSQL implementation of Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed bookmark store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Save(ctx context.Context, bookmark *Bookmark) error {
	query := `
		INSERT INTO bookmarks
			(id, owner_id, url, title, description, tags, thumbnail_ref,
			 favicon_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := p.pool.Exec(ctx, query,
		bookmark.ID,
		bookmark.OwnerID,
		bookmark.URL,
		bookmark.Title,
		bookmark.Description,
		bookmark.Tags,
		bookmark.ThumbnailRef,
		bookmark.FaviconRef,
		bookmark.CreatedAt,
		bookmark.UpdatedAt,
	)

	return err
}

func (p *PostgresStore) GetByID(ctx context.Context, id string) (*Bookmark, error) {
	query := `
		SELECT id, owner_id, url, title, description, tags, thumbnail_ref,
		       favicon_ref, created_at, updated_at
		FROM bookmarks
		WHERE id = $1
	`

	var bookmark Bookmark

	err := p.pool.QueryRow(ctx, query, id).Scan(
		&bookmark.ID,
		&bookmark.OwnerID,
		&bookmark.URL,
		&bookmark.Title,
		&bookmark.Description,
		&bookmark.Tags,
		&bookmark.ThumbnailRef,
		&bookmark.FaviconRef,
		&bookmark.CreatedAt,
		&bookmark.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, thumbnail.ErrNotFound
		}

		return nil, err
	}

	return &bookmark, nil
}

func (p *PostgresStore) Update(ctx context.Context, bookmark *Bookmark) error {
	query := `
		UPDATE bookmarks
		SET url = $2, title = $3, description = $4, tags = $5,
		    thumbnail_ref = $6, favicon_ref = $7, updated_at = $8
		WHERE id = $1 AND owner_id = $9
	`

	tag, err := p.pool.Exec(ctx, query,
		bookmark.ID,
		bookmark.URL,
		bookmark.Title,
		bookmark.Description,
		bookmark.Tags,
		bookmark.ThumbnailRef,
		bookmark.FaviconRef,
		bookmark.UpdatedAt,
		bookmark.OwnerID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return thumbnail.ErrNotFound
	}

	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM bookmarks WHERE id = $1`, id)

	return err
}

func (p *PostgresStore) ListURLsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := p.pool.Query(ctx, `SELECT url FROM bookmarks WHERE owner_id = $1`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}

		urls = append(urls, url)
	}

	return urls, rows.Err()
}

func (p *PostgresStore) CountByURL(ctx context.Context, url string) (int64, error) {
	var count int64

	err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bookmarks WHERE url = $1`, url).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Compile-time check.
var _ Store = (*PostgresStore)(nil)
