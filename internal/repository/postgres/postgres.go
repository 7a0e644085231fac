// Package postgres implements domain.Database on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/msomdec/blog-api/internal/domain"
	"github.com/msomdec/blog-api/internal/repository/postgres/migrations"
)

// DB wraps a pgx connection pool and implements domain.Database.
type DB struct {
	Pool *pgxpool.Pool
}

var _ domain.Database = (*DB)(nil)

// New connects to the database at dsn.
func New(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 20
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
	cfg.ConnConfig.StatementCacheCapacity = 256

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Migrate applies the embedded schema migrations.
func (d *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, d.Pool)
}

func (d *DB) Ping(ctx context.Context) error {
	return d.Pool.Ping(ctx)
}

func (d *DB) Close() error {
	d.Pool.Close()
	return nil
}

func (d *DB) Users() domain.UserRepository {
	return &userRepo{pool: d.Pool}
}

func (d *DB) Posts() domain.PostRepository {
	return &postRepo{pool: d.Pool}
}

func (d *DB) FileStore() domain.FileStore {
	return &fileStore{pool: d.Pool}
}

// now returns the current time at the precision TIMESTAMPTZ preserves.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
