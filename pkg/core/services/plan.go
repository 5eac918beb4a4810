package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/supply-board/internal/config"
	"github.com/jakechorley/supply-board/internal/metrics"
	"github.com/jakechorley/supply-board/pkg/core/model"
	"github.com/jakechorley/supply-board/pkg/core/packer"
	"github.com/jakechorley/supply-board/pkg/core/report"
	"github.com/jakechorley/supply-board/pkg/dataio"
	"github.com/jakechorley/supply-board/pkg/db"
)

// Source provides the inputs a board is generated from
type Source interface {
	Load(ctx context.Context, durations dataio.Durations) (*dataio.Inputs, error)
}

// PlanReader loads stored plans
type PlanReader interface {
	GetPlan(ctx context.Context, id string) (*db.Plan, error)
	GetLatestPlan(ctx context.Context) (*db.Plan, error)
}

// PlanWriter stores new plans
type PlanWriter interface {
	InsertPlan(ctx context.Context, plan *db.Plan) error
}

// PlanReadWriter loads a plan and stores the plans derived from it
type PlanReadWriter interface {
	PlanReader
	PlanWriter
}

// PlanResult is a plan with its packed layout and its evaluation
type PlanResult struct {
	Plan   *db.Plan
	Layout *packer.Layout
	Report *report.Report
}

// loadPlan returns the plan with the given id, or the latest plan when id is empty
func loadPlan(ctx context.Context, store PlanReader, logger *zap.Logger, planID string) (*db.Plan, error) {
	if planID == "" {
		logger.Debug("Loading latest plan")
		plan, err := store.GetLatestPlan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load latest plan: %w", err)
		}
		return plan, nil
	}

	logger.Debug("Loading plan", zap.String("plan_id", planID))
	plan, err := store.GetPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", planID, err)
	}
	return plan, nil
}

// evaluate packs the plan's items and builds its report. The plan's items and
// suppliers are replaced by the packed copies.
func evaluate(plan *db.Plan, cfg *config.Config, logger *zap.Logger) (*PlanResult, error) {
	layout, err := packer.Pack(plan.Items, plan.Suppliers, cfg.Geometry(), cfg.PackOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack plan: %w", err)
	}
	plan.Items = layout.Items
	plan.Suppliers = layout.Suppliers

	logger.Debug("Plan packed",
		zap.Int("lanes", len(layout.Lanes)),
		zap.Int("weeks", len(layout.View)),
		zap.Int("passes", layout.Passes))

	opts, err := cfg.ReportOptions()
	if err != nil {
		return nil, err
	}
	rep, err := report.Build(plan.Items, plan.Suppliers, plan.SupplierEdges, plan.StopEdges, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}

	observe(layout, rep)

	for _, supplierID := range rep.Overruns {
		logger.Warn("Supplier over capacity", zap.String("supplier_id", supplierID))
	}

	return &PlanResult{Plan: plan, Layout: layout, Report: rep}, nil
}

// storeChild evaluates the plan derived from parent with the given items and stores it
func storeChild(ctx context.Context, store PlanWriter, cfg *config.Config, logger *zap.Logger, parent *db.Plan, items []model.DemandItem, note, operation string) (*PlanResult, error) {
	child := db.NewPlan(parent.ID, note, items, parent.Suppliers, parent.SupplierEdges, parent.StopEdges)

	result, err := evaluate(child, cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := store.InsertPlan(ctx, child); err != nil {
		return nil, fmt.Errorf("failed to insert plan: %w", err)
	}
	metrics.PlansStored.WithLabelValues(operation).Inc()

	logger.Info("Plan stored",
		zap.String("plan_id", child.ID),
		zap.String("parent_id", parent.ID),
		zap.String("note", note))

	return result, nil
}

func observe(layout *packer.Layout, rep *report.Report) {
	for _, lane := range layout.Lanes {
		metrics.SupplierPeak.WithLabelValues(lane.SupplierID).Set(float64(lane.Peak))
		metrics.SupplierCapacity.WithLabelValues(lane.SupplierID).Set(float64(lane.Capacity))
	}
	for _, group := range rep.Transport {
		metrics.RoutePermutations.Add(float64(group.Route.Evaluated))
	}
}
