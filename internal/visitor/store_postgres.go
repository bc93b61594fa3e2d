package visitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists visitors in PostgreSQL, sharing the registration
// store's pool. Inserts are first-write-wins so a concurrent create for the
// same session never replaces the stored record.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Find(ctx context.Context, sessionID string) (*Visitor, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT session_id, ip_address, city, user_agent, device,
		       platform, platform_version, browser, browser_version,
		       is_desktop, is_tablet, is_phone, is_robot, created_at
		FROM visitors
		WHERE session_id = $1`, sessionID)

	var v Visitor
	err := row.Scan(
		&v.SessionID, &v.IPAddress, &v.City, &v.UserAgent, &v.Device,
		&v.Platform, &v.PlatformVersion, &v.Browser, &v.BrowserVersion,
		&v.IsDesktop, &v.IsTablet, &v.IsPhone, &v.IsRobot, &v.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find visitor: %w", err)
	}
	return &v, nil
}

func (s *PostgresStore) Create(ctx context.Context, v *Visitor) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO visitors
			(session_id, ip_address, city, user_agent, device,
			 platform, platform_version, browser, browser_version,
			 is_desktop, is_tablet, is_phone, is_robot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (session_id) DO NOTHING`,
		v.SessionID, v.IPAddress, v.City, v.UserAgent, v.Device,
		v.Platform, v.PlatformVersion, v.Browser, v.BrowserVersion,
		v.IsDesktop, v.IsTablet, v.IsPhone, v.IsRobot,
	)
	if err != nil {
		return fmt.Errorf("create visitor: %w", err)
	}
	return nil
}
