package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/supply-board/internal/config"
	"github.com/jakechorley/supply-board/internal/metrics"
	"github.com/jakechorley/supply-board/pkg/core/assigner"
	"github.com/jakechorley/supply-board/pkg/db"
)

// GenerateResult is a freshly generated plan with the assignment outcomes
type GenerateResult struct {
	*PlanResult
	Assignment *assigner.Result
	Stored     bool
}

// GeneratePlan loads the board inputs, assigns every demand item to a supplier,
// packs the lanes, evaluates the result and stores it as a new plan.
// With dryRun the plan is returned without being stored.
func GeneratePlan(ctx context.Context, store PlanWriter, source Source, cfg *config.Config, logger *zap.Logger, dryRun bool) (*GenerateResult, error) {
	logger.Debug("Loading board inputs")
	inputs, err := source.Load(ctx, cfg.Durations())
	if err != nil {
		return nil, fmt.Errorf("failed to load board inputs: %w", err)
	}

	logger.Info("Board inputs loaded",
		zap.Int("suppliers", len(inputs.Suppliers)),
		zap.Int("items", len(inputs.Items)),
		zap.Int("supplier_edges", len(inputs.SupplierEdges)),
		zap.Int("stop_edges", len(inputs.StopEdges)))

	rules, err := cfg.LedgerRules()
	if err != nil {
		return nil, err
	}

	started := time.Now()
	assignment, err := assigner.Assign(inputs.Items, inputs.Suppliers, assigner.WithCapacityRules(rules...))
	if err != nil {
		return nil, fmt.Errorf("failed to assign items: %w", err)
	}
	metrics.AssignSeconds.Observe(time.Since(started).Seconds())
	metrics.ItemsPlaced.WithLabelValues("assigned").Add(float64(assignment.AssignedCount()))
	metrics.ItemsPlaced.WithLabelValues("unassigned").Add(float64(len(assignment.Unassigned)))

	for _, key := range assignment.Unassigned {
		logger.Debug("Item left unassigned", zap.Stringer("item", key))
	}
	logger.Info("Items assigned",
		zap.Int("assigned", assignment.AssignedCount()),
		zap.Int("unassigned", len(assignment.Unassigned)),
		zap.Duration("took", time.Since(started)))

	plan := db.NewPlan("", "generated", assignment.Items, inputs.Suppliers, inputs.SupplierEdges, inputs.StopEdges)
	result, err := evaluate(plan, cfg, logger)
	if err != nil {
		return nil, err
	}

	if dryRun {
		logger.Info("Dry run, plan not stored", zap.String("plan_id", plan.ID))
		return &GenerateResult{PlanResult: result, Assignment: assignment}, nil
	}

	if err := store.InsertPlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to insert plan: %w", err)
	}
	metrics.PlansStored.WithLabelValues("generate").Inc()
	logger.Info("Plan stored", zap.String("plan_id", plan.ID))

	return &GenerateResult{PlanResult: result, Assignment: assignment, Stored: true}, nil
}
