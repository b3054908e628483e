package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/good-yellow-bee/anfrage/internal/models"
)

const requestColumns = `id, created_at, flow, project_type, industry, has_existing_website,
	existing_website_url, primary_goal, target_audience, features, description,
	budget_range, timeline, contact_name, contact_email, contact_phone,
	preferred_contact, consent`

type sqliteRequestRepo struct {
	db *sql.DB
}

// prepareInsert fills the server-assigned fields.
func prepareInsert(req *models.ProjectRequest) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	if req.Features == nil {
		req.Features = []string{}
	}
	if req.Flow == "" {
		req.Flow = models.FlowFull
	}
}

func (r *sqliteRequestRepo) Create(ctx context.Context, req *models.ProjectRequest) error {
	prepareInsert(req)

	features, err := json.Marshal(req.Features)
	if err != nil {
		return fmt.Errorf("encode features: %w", err)
	}

	query := `
		INSERT INTO project_requests (` + requestColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		req.ID, req.CreatedAt, string(req.Flow), req.ProjectType, req.Industry,
		req.HasExistingWebsite, nullString(req.ExistingWebsiteURL),
		req.PrimaryGoal, req.TargetAudience, string(features), req.Description,
		req.BudgetRange, req.Timeline, req.ContactName, req.ContactEmail,
		nullString(req.ContactPhone), req.PreferredContact, req.Consent,
	)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (r *sqliteRequestRepo) ListRecent(ctx context.Context, limit int) ([]*models.ProjectRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM project_requests
		ORDER BY created_at DESC, id
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.ProjectRequest
	for rows.Next() {
		req := &models.ProjectRequest{}
		var flow, features string
		var websiteURL, phone sql.NullString
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
		if err := json.Unmarshal([]byte(features), &req.Features); err != nil {
			return nil, fmt.Errorf("decode features of %s: %w", req.ID, err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}
	return requests, nil
}

func (r *sqliteRequestRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM project_requests").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count requests: %w", err)
	}
	return count, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
