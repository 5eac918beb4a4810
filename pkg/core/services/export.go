package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/jakechorley/supply-board/internal/config"
	"github.com/jakechorley/supply-board/internal/metrics"
	"github.com/jakechorley/supply-board/pkg/core/model"
	"github.com/jakechorley/supply-board/pkg/dataio"
	"github.com/jakechorley/supply-board/pkg/db"
)

// Export formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// PlanPublisher appends a plan's summary rows to a spreadsheet tab
type PlanPublisher interface {
	PublishPlan(ctx context.Context, spreadsheetID, title string, items []model.DemandItem, suppliers []model.Supplier) (int, error)
}

// ExportPlan writes a plan as board JSON or as the per-item CSV summary
func ExportPlan(ctx context.Context, store PlanReader, cfg *config.Config, logger *zap.Logger, planID, format string, w io.Writer) (*PlanResult, error) {
	if format != FormatJSON && format != FormatCSV {
		return nil, fmt.Errorf("unknown export format %q, expected %s or %s", format, FormatJSON, FormatCSV)
	}

	result, err := GetPlanReport(ctx, store, cfg, logger, planID)
	if err != nil {
		return nil, err
	}
	plan := result.Plan

	switch format {
	case FormatJSON:
		err = dataio.EncodeBoard(w, plan.Items, plan.Suppliers)
	case FormatCSV:
		err = dataio.WritePlanCSV(w, plan.Items, plan.Suppliers)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to export plan %s: %w", plan.ID, err)
	}

	logger.Info("Plan exported", zap.String("plan_id", plan.ID), zap.String("format", format))
	return result, nil
}

// PublishPlan appends the summary of a plan to the given tab of the configured spreadsheet
func PublishPlan(ctx context.Context, store PlanReader, publisher PlanPublisher, cfg *config.Config, logger *zap.Logger, planID, tab string) (int, error) {
	if cfg.Sheets == nil {
		return 0, errors.New("publishing needs a sheets section in the config")
	}
	if tab == "" {
		return 0, errors.New("a sheet tab is required")
	}

	result, err := GetPlanReport(ctx, store, cfg, logger, planID)
	if err != nil {
		return 0, err
	}

	rows, err := publisher.PublishPlan(ctx, cfg.Sheets.SpreadsheetID, tab, result.Plan.Items, result.Plan.Suppliers)
	if err != nil {
		return 0, fmt.Errorf("failed to publish plan %s: %w", result.Plan.ID, err)
	}

	logger.Info("Plan published",
		zap.String("plan_id", result.Plan.ID),
		zap.String("tab", tab),
		zap.Int("rows", rows))
	return rows, nil
}

// ImportPlan stores a board edited outside the tool as a new plan. The board
// JSON carries no distance tables, so they are taken from the latest stored plan.
func ImportPlan(ctx context.Context, store PlanReadWriter, cfg *config.Config, logger *zap.Logger, r io.Reader, note string) (*PlanResult, error) {
	board, err := dataio.DecodeBoard(r, cfg.Durations())
	if err != nil {
		return nil, fmt.Errorf("failed to decode board: %w", err)
	}

	parentID := ""
	var supplierEdges, stopEdges []model.DistanceEdge
	latest, err := store.GetLatestPlan(ctx)
	switch {
	case err == nil:
		parentID = latest.ID
		supplierEdges, stopEdges = latest.SupplierEdges, latest.StopEdges
	case errors.Is(err, db.ErrPlanNotFound):
		logger.Warn("No stored plan to take distances from, routes will not be solved")
	default:
		return nil, fmt.Errorf("failed to load latest plan: %w", err)
	}

	if note == "" {
		note = "imported"
	}
	plan := db.NewPlan(parentID, note, board.Items, board.Suppliers, supplierEdges, stopEdges)

	result, err := evaluate(plan, cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := store.InsertPlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to insert plan: %w", err)
	}
	metrics.PlansStored.WithLabelValues("import").Inc()

	logger.Info("Plan imported",
		zap.String("plan_id", plan.ID),
		zap.String("parent_id", parentID),
		zap.Int("items", len(plan.Items)))
	return result, nil
}
