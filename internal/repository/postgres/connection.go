package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skilledge/skilledge-server/database"
)

const connectTimeout = 5 * time.Second

var errNilPool = errors.New("connection pool is nil")

type Connection struct {
	*pgxpool.Pool
}

// NewConection opens a pool, checks the database answers within
// connectTimeout and applies the schema migrations. Any failure closes the
// pool so the caller can fall back to another store.
func NewConection(ctx context.Context, dsn string) (*Connection, error) {
	conf, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}

	if err := database.Migrate(ctx, dsn); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Connection{
		Pool: pool,
	}, nil
}

func (s *Connection) Close() error {
	if s.Pool != nil {
		s.Pool.Close()
	}
	return nil
}

// Ping backs the health endpoint.
func (s *Connection) Ping(ctx context.Context) error {
	if s.Pool == nil {
		return errNilPool
	}
	return s.Pool.Ping(ctx)
}
