package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jakechorley/supply-board/pkg/db"
)

const schema = `
CREATE TABLE IF NOT EXISTS plan (
	id TEXT PRIMARY KEY,
	parent_id TEXT,
	note TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	item_count INTEGER NOT NULL,
	unassigned_count INTEGER NOT NULL,
	payload BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS plan_created_at_idx ON plan (created_at);
`

// created_at is stored as fixed width text so it sorts chronologically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// DB stores plans in a local SQLite file. Used when no PostgreSQL connection is configured.
type DB struct {
	db *sql.DB
}

var _ db.PlanStore = (*DB)(nil)

// NewDB opens or creates the database at path and ensures the schema
func NewDB(ctx context.Context, path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// an in-memory database only lives as long as its connection
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &DB{db: conn}, nil
}

// Close closes the underlying database
func (d *DB) Close() {
	_ = d.db.Close()
}

// InsertPlan inserts a new plan record
func (d *DB) InsertPlan(ctx context.Context, plan *db.Plan) error {
	payload, err := plan.MarshalPayload()
	if err != nil {
		return err
	}

	summary := plan.Summary()
	var parentID sql.NullString
	if plan.ParentID != "" {
		parentID = sql.NullString{String: plan.ParentID, Valid: true}
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO plan (id, parent_id, note, created_at, item_count, unassigned_count, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, plan.ID, parentID, plan.Note, plan.CreatedAt.UTC().Format(timeLayout), summary.ItemCount, summary.UnassignedCount, payload)
	if err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}
	return nil
}

// GetPlan retrieves a plan by id
func (d *DB) GetPlan(ctx context.Context, id string) (*db.Plan, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, parent_id, note, created_at, payload
		FROM plan
		WHERE id = ?
	`, id)
	return scanPlan(row)
}

// GetLatestPlan retrieves the most recently created plan
func (d *DB) GetLatestPlan(ctx context.Context) (*db.Plan, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, parent_id, note, created_at, payload
		FROM plan
		ORDER BY created_at DESC
		LIMIT 1
	`)
	return scanPlan(row)
}

func scanPlan(row *sql.Row) (*db.Plan, error) {
	var p db.Plan
	var parentID sql.NullString
	var createdAt string
	var payload []byte
	if err := row.Scan(&p.ID, &parentID, &p.Note, &createdAt, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, db.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to scan plan: %w", err)
	}
	p.ParentID = parentID.String

	var err error
	if p.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at of plan %s: %w", p.ID, err)
	}
	if err := p.UnmarshalPayload(payload); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPlans retrieves summaries of all plans, newest first
func (d *DB) ListPlans(ctx context.Context) ([]db.PlanSummary, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, parent_id, note, created_at, item_count, unassigned_count
		FROM plan
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var plans []db.PlanSummary
	for rows.Next() {
		var s db.PlanSummary
		var parentID sql.NullString
		var createdAt string
		if err := rows.Scan(&s.ID, &parentID, &s.Note, &createdAt, &s.ItemCount, &s.UnassignedCount); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		s.ParentID = parentID.String
		if s.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at of plan %s: %w", s.ID, err)
		}
		plans = append(plans, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plans: %w", err)
	}

	return plans, nil
}
