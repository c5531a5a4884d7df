package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const (
	_createRecordsTable = `CREATE TABLE IF NOT EXISTS kv_records (
								key        TEXT PRIMARY KEY,
								value      BYTEA NOT NULL,
								updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
							);`
	_queryRecord  = "SELECT value FROM kv_records WHERE key = $1"
	_upsertRecord = `INSERT INTO kv_records (key, value, updated_at)
							VALUES ($1, $2, now())
							ON CONFLICT (key)
							DO UPDATE SET
								value = EXCLUDED.value,
								updated_at = EXCLUDED.updated_at;`
	_deleteRecord = "DELETE FROM kv_records WHERE key = $1"
)

type PostgresStore struct {
	db *sqlx.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the records table when it is missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, _createRecordsTable); err != nil {
		return fmt.Errorf("%w: can't create kv_records", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}

	var value []byte
	if err := s.db.GetContext(ctx, &value, _queryRecord, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NotFoundError
		}
		return nil, fmt.Errorf("%w: can't query record", err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	if err := validKey(key); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, _upsertRecord, key, value); err != nil {
		return fmt.Errorf("%w: can't upsert record", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, _deleteRecord, key); err != nil {
		return fmt.Errorf("%w: can't delete record", err)
	}
	return nil
}
