package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type PostgresConfig struct {
	DSN     string        `envconfig:"DSN" split_words:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"5s"`
}

type documentRow struct {
	bun.BaseModel `bun:"table:assistant_documents,alias:d"`

	Key       string    `bun:"key,pk"`
	Body      string    `bun:"body,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// PostgresStore keeps each document as one row keyed by document name.
type PostgresStore struct {
	db  *bun.DB
	now func() time.Time
}

var _ DocumentStore = (*PostgresStore)(nil)

func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	opts := []pgdriver.Option{pgdriver.WithDSN(dsn)}
	if cfg.Timeout > 0 {
		opts = append(opts, pgdriver.WithTimeout(cfg.Timeout))
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(opts...))
	store := newPostgresStore(bun.NewDB(sqldb, pgdialect.New()))
	if err := store.migrate(ctx); err != nil {
		store.db.Close()
		return nil, err
	}
	return store, nil
}

func newPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*documentRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Read(ctx context.Context, key string) ([]byte, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrInvalidKey
	}

	var row documentRow
	if err := s.selectQuery(&row, key).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("select document %s: %w", key, err)
	}
	return []byte(row.Body), nil
}

func (s *PostgresStore) Write(ctx context.Context, key string, body []byte) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}

	row := &documentRow{
		Key:       key,
		Body:      string(body),
		UpdatedAt: s.now().UTC(),
	}
	if _, err := s.upsertQuery(row).Exec(ctx); err != nil {
		return fmt.Errorf("upsert document %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if _, err := s.deleteQuery(key).Exec(ctx); err != nil {
		return fmt.Errorf("delete document %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) selectQuery(row *documentRow, key string) *bun.SelectQuery {
	return s.db.NewSelect().
		Model(row).
		Where("d.key = ?", key).
		Limit(1)
}

// upsertQuery replaces the whole document body on key conflict.
func (s *PostgresStore) upsertQuery(row *documentRow) *bun.InsertQuery {
	return s.db.NewInsert().
		Model(row).
		On("CONFLICT (key) DO UPDATE").
		Set("body = EXCLUDED.body").
		Set("updated_at = EXCLUDED.updated_at")
}

func (s *PostgresStore) deleteQuery(key string) *bun.DeleteQuery {
	return s.db.NewDelete().
		Model((*documentRow)(nil)).
		Where("key = ?", key)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
