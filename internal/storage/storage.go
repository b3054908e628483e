// Package storage provides database storage interfaces and implementations.
package storage

import (
	"context"
	"fmt"

	"github.com/good-yellow-bee/anfrage/internal/models"
)

// Driver names accepted by New.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Storage is the main interface for database operations.
type Storage interface {
	// Open initializes the database connection.
	Open() error
	// Close closes the database connection.
	Close() error
	// Migrate runs database migrations.
	Migrate() error
	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error

	Requests() RequestRepository
}

// RequestRepository stores project requests. Rows are insert-only.
type RequestRepository interface {
	// Create assigns ID and CreatedAt when unset and inserts the row.
	Create(ctx context.Context, req *models.ProjectRequest) error
	// ListRecent returns up to limit rows, newest first.
	ListRecent(ctx context.Context, limit int) ([]*models.ProjectRequest, error)
	Count(ctx context.Context) (int64, error)
}

// New returns an unopened Storage for driver. dsn is a file path for
// SQLite and a connection URL for Postgres.
func New(driver, dsn string) (Storage, error) {
	switch driver {
	case DriverSQLite, "":
		return NewSQLiteStorage(dsn), nil
	case DriverPostgres:
		return NewPostgresStorage(dsn), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
