package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/employee-directory/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// PostgresStorage shares one client_storage table between gateways; rows are
// scoped by namespace so several installations can use the same database.
type PostgresStorage struct {
	db        *database.DB
	namespace string
}

func NewPostgresStorage(ctx context.Context, db *database.DB, namespace string) (*PostgresStorage, error) {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS client_storage (
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (namespace, key)
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create client_storage table: %w", err)
	}

	return &PostgresStorage{db: db, namespace: namespace}, nil
}

func (s *PostgresStorage) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRow(ctx, `
		SELECT value FROM client_storage WHERE namespace = $1 AND key = $2
	`, s.namespace, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (s *PostgresStorage) Set(ctx context.Context, key string, value string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO client_storage (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, s.namespace, key, value)
	return err
}

func (s *PostgresStorage) Remove(ctx context.Context, key string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM client_storage WHERE namespace = $1 AND key = $2`, s.namespace, key)
	return err
}

func (s *PostgresStorage) Close() error {
	s.db.Close()
	return nil
}
