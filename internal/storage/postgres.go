package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/good-yellow-bee/anfrage/internal/models"
)

// PostgresStorage implements Storage on a hosted Postgres database.
type PostgresStorage struct {
	dsn string
	db  *sql.DB

	requests *postgresRequestRepo
}

// NewPostgresStorage creates a new Postgres storage for dsn.
func NewPostgresStorage(dsn string) *PostgresStorage {
	return &PostgresStorage{dsn: dsn}
}

// Open initializes the connection pool.
func (s *PostgresStorage) Open() error {
	if s.dsn == "" {
		return fmt.Errorf("database url is required")
	}

	db, err := sql.Open("postgres", s.dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	s.db = db
	s.requests = &postgresRequestRepo{db: db}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying pool for health checks.
func (s *PostgresStorage) DB() *sql.DB {
	return s.db
}

// Ping checks the connection.
func (s *PostgresStorage) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not open")
	}
	return s.db.PingContext(ctx)
}

// Migrate runs database migrations.
func (s *PostgresStorage) Migrate() error {
	return runMigrations(s.db, postgresDialect)
}

// Requests returns the request repository.
func (s *PostgresStorage) Requests() RequestRepository {
	return s.requests
}

type postgresRequestRepo struct {
	db *sql.DB
}

func (r *postgresRequestRepo) Create(ctx context.Context, req *models.ProjectRequest) error {
	prepareInsert(req)

	query := `
		INSERT INTO project_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.CreatedAt, string(req.Flow), req.ProjectType, req.Industry,
		req.HasExistingWebsite, nullString(req.ExistingWebsiteURL),
		req.PrimaryGoal, req.TargetAudience, pq.Array(req.Features), req.Description,
		req.BudgetRange, req.Timeline, req.ContactName, req.ContactEmail,
		nullString(req.ContactPhone), req.PreferredContact, req.Consent,
	)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) {
			return fmt.Errorf("insert request (%s %s): %w", pgErr.Code, pgErr.Code.Name(), err)
		}
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (r *postgresRequestRepo) ListRecent(ctx context.Context, limit int) ([]*models.ProjectRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM project_requests
		ORDER BY created_at DESC, id
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.ProjectRequest
	for rows.Next() {
		req := &models.ProjectRequest{}
		var flow string
		var websiteURL, phone sql.NullString
		features := pq.StringArray{}
		if err := rows.Scan(
			&req.ID, &req.CreatedAt, &flow, &req.ProjectType, &req.Industry,
			&req.HasExistingWebsite, &websiteURL, &req.PrimaryGoal, &req.TargetAudience,
			&features, &req.Description, &req.BudgetRange, &req.Timeline,
			&req.ContactName, &req.ContactEmail, &phone, &req.PreferredContact, &req.Consent,
		); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		req.Flow = models.Flow(flow)
		req.ExistingWebsiteURL = websiteURL.String
		req.ContactPhone = phone.String
		req.Features = []string(features)
		if req.Features == nil {
			req.Features = []string{}
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}
	return requests, nil
}

func (r *postgresRequestRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM project_requests").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count requests: %w", err)
	}
	return count, nil
}
