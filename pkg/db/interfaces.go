package db

import "context"

// PlanStore defines the interface for plan database operations.
// Both postgres.DB and sqlite.DB implement this interface.
type PlanStore interface {
	InsertPlan(ctx context.Context, plan *Plan) error
	GetPlan(ctx context.Context, id string) (*Plan, error)
	GetLatestPlan(ctx context.Context) (*Plan, error)
	ListPlans(ctx context.Context) ([]PlanSummary, error)
	Close()
}
