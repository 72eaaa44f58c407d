// Package conversations caches the last conversation list received from the
// server so it can be shown while the server is unreachable.
package conversations

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/dbx"
)

type Repository interface {
	// ReplaceAll swaps the cached list for convs, keeping their order.
	ReplaceAll(ctx context.Context, convs []models.Conversation) error
	List(ctx context.Context) ([]models.Conversation, error)
	Clear(ctx context.Context) error
}

type SQLiteRepository struct {
	db dbx.DBTX
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, convs []models.Conversation) error {
	// already inside a transaction when handed a *sql.Tx
	if db, ok := r.db.(*sql.DB); ok {
		return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return replaceAll(ctx, tx, convs)
		})
	}
	return replaceAll(ctx, r.db, convs)
}

func replaceAll(ctx context.Context, db dbx.DBTX, convs []models.Conversation) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM conversations`); err != nil {
		return fmt.Errorf("clear conversation cache: %w", err)
	}

	for i, c := range convs {
		var last any
		if c.LastMessage != nil {
			last = *c.LastMessage
		}
		_, err := db.ExecContext(ctx, `
			INSERT INTO conversations (id, position, title, created_at, updated_at, message_count, last_message)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, i, c.Title,
			c.CreatedAt.UTC().Format(time.RFC3339Nano),
			c.UpdatedAt.UTC().Format(time.RFC3339Nano),
			c.MessageCount, last,
		)
		if err != nil {
			return fmt.Errorf("cache conversation %s: %w", c.ID, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Conversation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, created_at, updated_at, message_count, last_message
		FROM conversations ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list cached conversations: %w", err)
	}
	defer rows.Close()

	var out []models.Conversation
	for rows.Next() {
		var (
			c                models.Conversation
			created, updated string
			last             sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Title, &created, &updated, &c.MessageCount, &last); err != nil {
			return nil, fmt.Errorf("scan cached conversation: %w", err)
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		c.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		if last.Valid {
			s := last.String
			c.LastMessage = &s
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cached conversations: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM conversations`); err != nil {
		return fmt.Errorf("clear conversation cache: %w", err)
	}
	return nil
}
