package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/supply-board/pkg/db"
)

// InsertPlan inserts a new plan record
func (d *DB) InsertPlan(ctx context.Context, plan *db.Plan) error {
	payload, err := plan.MarshalPayload()
	if err != nil {
		return err
	}

	summary := plan.Summary()
	var parentID *string
	if plan.ParentID != "" {
		parentID = &plan.ParentID
	}

	_, err = d.pool.Exec(ctx, `
		INSERT INTO plan (id, parent_id, note, created_at, item_count, unassigned_count, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, plan.ID, parentID, plan.Note, plan.CreatedAt.UTC(), summary.ItemCount, summary.UnassignedCount, payload)
	if err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}
	return nil
}

// GetPlan retrieves a plan by id
func (d *DB) GetPlan(ctx context.Context, id string) (*db.Plan, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT id, parent_id, note, created_at, payload
		FROM plan
		WHERE id = $1
	`, id)
	return scanPlan(row)
}

// GetLatestPlan retrieves the most recently created plan
func (d *DB) GetLatestPlan(ctx context.Context) (*db.Plan, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT id, parent_id, note, created_at, payload
		FROM plan
		ORDER BY created_at DESC
		LIMIT 1
	`)
	return scanPlan(row)
}

func scanPlan(row pgx.Row) (*db.Plan, error) {
	var p db.Plan
	var parentID *string
	var payload []byte
	if err := row.Scan(&p.ID, &parentID, &p.Note, &p.CreatedAt, &payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to scan plan: %w", err)
	}
	if parentID != nil {
		p.ParentID = *parentID
	}
	p.CreatedAt = p.CreatedAt.UTC()
	if err := p.UnmarshalPayload(payload); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPlans retrieves summaries of all plans, newest first
func (d *DB) ListPlans(ctx context.Context) ([]db.PlanSummary, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, parent_id, note, created_at, item_count, unassigned_count
		FROM plan
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	var plans []db.PlanSummary
	for rows.Next() {
		var s db.PlanSummary
		var parentID *string
		if err := rows.Scan(&s.ID, &parentID, &s.Note, &s.CreatedAt, &s.ItemCount, &s.UnassignedCount); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		if parentID != nil {
			s.ParentID = *parentID
		}
		s.CreatedAt = s.CreatedAt.UTC()
		plans = append(plans, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plans: %w", err)
	}

	return plans, nil
}
