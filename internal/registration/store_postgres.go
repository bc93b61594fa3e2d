package registration

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// PostgresStore persists registrations in PostgreSQL. Business fields and
// payment data live in jsonb columns so arbitrary keys survive without
// migrations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// InitSchema applies the idempotent schema. Called once at startup.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schemaSQL)
	return err
}

// Pool exposes the underlying pool so sibling stores (visitors) can share the
// connection.
func (s *PostgresStore) Pool() *pgxpool.Pool { return s.pool }

func (s *PostgresStore) Close() { s.pool.Close() }

func (s *PostgresStore) Find(ctx context.Context, sessionID string) (*Registration, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT session_id, current_step, max_step,
		       COALESCE(product_id, ''), sum, term,
		       COALESCE(order_id, ''), ref_id, autosave,
		       payment_data, fields, created_at, updated_at
		FROM registrations
		WHERE session_id = $1`, sessionID)

	var (
		reg          Registration
		paymentBytes []byte
		fieldsBytes  []byte
	)
	err := row.Scan(
		&reg.SessionID, &reg.CurrentStep, &reg.MaxStep,
		&reg.ProductID, &reg.Sum, &reg.Term,
		&reg.OrderID, &reg.RefID, &reg.Autosave,
		&paymentBytes, &fieldsBytes, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find registration: %w", err)
	}

	if err := json.Unmarshal(paymentBytes, &reg.PaymentData); err != nil {
		return nil, fmt.Errorf("decode payment data: %w", err)
	}
	if err := json.Unmarshal(fieldsBytes, &reg.Fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return &reg, nil
}

func (s *PostgresStore) Create(ctx context.Context, reg *Registration) error {
	paymentBytes, fieldsBytes, err := encodeJSON(reg)
	if err != nil {
		return err
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO registrations
			(session_id, current_step, max_step, product_id, sum, term,
			 order_id, ref_id, autosave, payment_data, fields)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, NULLIF($7, ''), $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		reg.SessionID, reg.CurrentStep, reg.MaxStep, reg.ProductID, reg.Sum, reg.Term,
		reg.OrderID, reg.RefID, reg.Autosave, paymentBytes, fieldsBytes,
	)
	if err := row.Scan(&reg.CreatedAt, &reg.UpdatedAt); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, reg *Registration) error {
	paymentBytes, fieldsBytes, err := encodeJSON(reg)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE registrations
		SET current_step = $2, max_step = $3, product_id = NULLIF($4, ''),
		    sum = $5, term = $6, order_id = NULLIF($7, ''), ref_id = $8,
		    autosave = $9, payment_data = $10, fields = $11, updated_at = now()
		WHERE session_id = $1`,
		reg.SessionID, reg.CurrentStep, reg.MaxStep, reg.ProductID,
		reg.Sum, reg.Term, reg.OrderID, reg.RefID, reg.Autosave,
		paymentBytes, fieldsBytes,
	)
	if err != nil {
		return fmt.Errorf("save registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM registrations WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	return nil
}

func encodeJSON(reg *Registration) (payment, fields []byte, err error) {
	pd := reg.PaymentData
	if pd == nil {
		pd = map[string]any{}
	}
	payment, err = json.Marshal(pd)
	if err != nil {
		return nil, nil, fmt.Errorf("encode payment data: %w", err)
	}
	fs := reg.Fields
	if fs == nil {
		fs = map[string]any{}
	}
	fields, err = json.Marshal(fs)
	if err != nil {
		return nil, nil, fmt.Errorf("encode fields: %w", err)
	}
	return payment, fields, nil
}
