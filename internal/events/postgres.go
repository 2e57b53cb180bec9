package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const schema = `
CREATE TABLE IF NOT EXISTS custody_events (
    id                  UUID PRIMARY KEY,
    kind                TEXT NOT NULL,
    currency_id         TEXT NOT NULL,
    amount              NUMERIC NOT NULL,
    hash                TEXT NOT NULL,
    destination_address TEXT NOT NULL,
    output_index        INTEGER NOT NULL,
    status              TEXT NOT NULL,
    tid                 TEXT NOT NULL,
    received_at         TIMESTAMPTZ NOT NULL,
    UNIQUE (currency_id, hash, destination_address, status, tid)
)`

// PostgresStore keeps events in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a store backed by PostgreSQL.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the events table if needed.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create custody_events: %w", err)
	}
	return nil
}

// Save inserts e unless an event with the same key exists.
func (s *PostgresStore) Save(ctx context.Context, e Event) (bool, error) {
	id := uuid.New()
	if e.ID != "" {
		parsed, err := uuid.Parse(e.ID)
		if err != nil {
			return false, err
		}
		id = parsed
	}
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = time.Now().UTC()
	}
	tag, err := s.db.Exec(ctx, `INSERT INTO custody_events
        (id, kind, currency_id, amount, hash, destination_address, output_index, status, tid, received_at)
        VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (currency_id, hash, destination_address, status, tid) DO NOTHING`,
		id, e.Kind, e.CurrencyID, e.Amount.String(), e.Hash, e.DestinationAddress,
		e.OutputIndex, e.Status, e.TransactionID, e.ReceivedAt.UTC())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Recent returns the latest events, newest first.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `SELECT id, kind, currency_id, amount::text, hash, destination_address,
        output_index, status, tid, received_at
        FROM custody_events ORDER BY received_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var id uuid.UUID
		var amount string
		if err := rows.Scan(&id, &e.Kind, &e.CurrencyID, &amount, &e.Hash, &e.DestinationAddress,
			&e.OutputIndex, &e.Status, &e.TransactionID, &e.ReceivedAt); err != nil {
			return nil, err
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("event %s amount: %w", id, err)
		}
		e.ID = id.String()
		e.ReceivedAt = e.ReceivedAt.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
