// Package files caches the last stored-document list received from the
// server.
package files

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/dbx"
)

type Repository interface {
	ReplaceAll(ctx context.Context, files []models.FileRecord) error
	List(ctx context.Context) ([]models.FileRecord, error)
	Clear(ctx context.Context) error
}

type SQLiteRepository struct {
	db dbx.DBTX
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, files []models.FileRecord) error {
	if db, ok := r.db.(*sql.DB); ok {
		return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return replaceAll(ctx, tx, files)
		})
	}
	return replaceAll(ctx, r.db, files)
}

func replaceAll(ctx context.Context, db dbx.DBTX, files []models.FileRecord) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM files`); err != nil {
		return fmt.Errorf("clear file cache: %w", err)
	}
	for i, f := range files {
		_, err := db.ExecContext(ctx,
			`INSERT INTO files (position, filename, size, uploaded_at) VALUES (?, ?, ?, ?)`,
			i, f.Filename, f.Size, f.UploadedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("cache file %s: %w", f.Filename, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.FileRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT filename, size, uploaded_at FROM files ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list cached files: %w", err)
	}
	defer rows.Close()

	var out []models.FileRecord
	for rows.Next() {
		var (
			f        models.FileRecord
			uploaded string
		)
		if err := rows.Scan(&f.Filename, &f.Size, &uploaded); err != nil {
			return nil, fmt.Errorf("scan cached file: %w", err)
		}
		f.UploadedAt, _ = time.Parse(time.RFC3339Nano, uploaded)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cached files: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM files`); err != nil {
		return fmt.Errorf("clear file cache: %w", err)
	}
	return nil
}
