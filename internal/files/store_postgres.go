package files

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// PostgresMetaStore persists attachment metadata in PostgreSQL so listings
// and the per-type bookkeeping survive restarts alongside durable blobs. It
// shares the registration store's pool.
type PostgresMetaStore struct {
	pool *pgxpool.Pool
}

func NewPostgresMetaStore(pool *pgxpool.Pool) *PostgresMetaStore {
	return &PostgresMetaStore{pool: pool}
}

// InitSchema applies the idempotent schema. Called once at startup.
func (s *PostgresMetaStore) InitSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schemaSQL)
	return err
}

func (s *PostgresMetaStore) List(ctx context.Context, sessionID string) ([]Attachment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, type, file_name, mime_type, size
		FROM attachments
		WHERE session_id = $1
		ORDER BY created_at`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	var out []Attachment
	for rows.Next() {
		var att Attachment
		if err := rows.Scan(&att.ID, &att.Type, &att.FileName, &att.MimeType, &att.Size); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		out = append(out, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return out, nil
}

func (s *PostgresMetaStore) Save(ctx context.Context, sessionID string, att Attachment) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO attachments (id, session_id, type, file_name, mime_type, size)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		att.ID, sessionID, att.Type, att.FileName, att.MimeType, att.Size,
	)
	if err != nil {
		return fmt.Errorf("save attachment: %w", err)
	}
	return nil
}

func (s *PostgresMetaStore) Delete(ctx context.Context, sessionID, id string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM attachments
		WHERE session_id = $1 AND id = $2`, sessionID, id)
	if err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	return nil
}
