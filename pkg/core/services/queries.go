package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jakechorley/supply-board/internal/config"
	"github.com/jakechorley/supply-board/internal/metrics"
	"github.com/jakechorley/supply-board/pkg/core/calendar"
	"github.com/jakechorley/supply-board/pkg/core/report"
	"github.com/jakechorley/supply-board/pkg/core/route"
	"github.com/jakechorley/supply-board/pkg/db"
)

// PlanLister lists stored plans
type PlanLister interface {
	ListPlans(ctx context.Context) ([]db.PlanSummary, error)
}

// GetPlanReport loads a plan (the latest when planID is empty), packs it and evaluates it
func GetPlanReport(ctx context.Context, store PlanReader, cfg *config.Config, logger *zap.Logger, planID string) (*PlanResult, error) {
	plan, err := loadPlan(ctx, store, logger, planID)
	if err != nil {
		return nil, err
	}
	return evaluate(plan, cfg, logger)
}

// ListPlans returns every stored plan, newest first
func ListPlans(ctx context.Context, store PlanLister, logger *zap.Logger) ([]db.PlanSummary, error) {
	plans, err := store.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	logger.Debug("Plans listed", zap.Int("count", len(plans)))
	return plans, nil
}

// RouteRequest names the delivery run to solve. With Start set the stops are the
// producers of every item the supplier starts in that week; otherwise Stops is used.
type RouteRequest struct {
	PlanID     string
	SupplierID string
	Start      calendar.Week
	Stops      []string
}

// RouteResult is a solved delivery run
type RouteResult struct {
	Route route.Route
	Cost  decimal.Decimal
	Took  time.Duration
}

// SolveRoute finds the shortest delivery run from a supplier through a set of
// producers using the distance tables stored with the plan
func SolveRoute(ctx context.Context, store PlanReader, cfg *config.Config, logger *zap.Logger, req RouteRequest) (*RouteResult, error) {
	plan, err := loadPlan(ctx, store, logger, req.PlanID)
	if err != nil {
		return nil, err
	}

	stops := req.Stops
	if !req.Start.IsZero() {
		stops = nil
		for _, item := range plan.Items {
			if item.SupplierID == req.SupplierID && item.IsAssigned() && item.Start == req.Start && !slices.Contains(stops, item.Name) {
				stops = append(stops, item.Name)
			}
		}
		if len(stops) == 0 {
			return nil, fmt.Errorf("supplier %s has no items starting in %s", req.SupplierID, req.Start)
		}
	}

	opts, err := cfg.ReportOptions()
	if err != nil {
		return nil, err
	}
	if opts.MaxStops > 0 && len(stops) > opts.MaxStops {
		return nil, fmt.Errorf("%w: %d stops, configured limit is %d", route.ErrTooManyStops, len(stops), opts.MaxStops)
	}

	started := time.Now()
	best, err := route.FindRoute(req.SupplierID, stops, plan.SupplierEdges, plan.StopEdges)
	took := time.Since(started)
	if err != nil {
		status := "error"
		if errors.Is(err, route.ErrTooManyStops) {
			status = "skipped"
		}
		metrics.RouteSeconds.WithLabelValues(status).Observe(took.Seconds())
		return nil, err
	}

	status := "unroutable"
	if best.Found {
		status = "routed"
	}
	metrics.RouteSeconds.WithLabelValues(status).Observe(took.Seconds())
	metrics.RoutePermutations.Add(float64(best.Evaluated))

	logger.Debug("Route solved",
		zap.String("supplier_id", req.SupplierID),
		zap.Strings("stops", stops),
		zap.Bool("found", best.Found),
		zap.Int("evaluated", best.Evaluated),
		zap.Duration("took", took))

	return &RouteResult{Route: best, Cost: report.Cost(best, opts), Took: took}, nil
}
