package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tordrt/inferschema/internal/errs"
)

// PostgreSQL SQLSTATE for a missing relation
const pgErrUndefinedTable = "42P01"

// PostgresConn manages the connection to PostgreSQL
type PostgresConn struct {
	conn *pgx.Conn
}

// NewPostgresConn connects to PostgreSQL and verifies the connection
func NewPostgresConn(ctx context.Context, connString string) (*PostgresConn, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresConn{conn: conn}, nil
}

func openPostgres(ctx context.Context, connString string) (Connection, error) {
	return NewPostgresConn(ctx, connString)
}

// Backend implements Connection
func (c *PostgresConn) Backend() Backend {
	return BackendPostgres
}

// Close closes the database connection
func (c *PostgresConn) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// pgCatalogError classifies a failed catalog query
func pgCatalogError(op, table string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUndefinedTable {
		return errs.TableVanished(op, table, err)
	}
	return errs.CatalogQueryFailed(op, table, err)
}
