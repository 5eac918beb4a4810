package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/supply-board/internal/config"
	"github.com/jakechorley/supply-board/pkg/core/calendar"
	"github.com/jakechorley/supply-board/pkg/core/edits"
	"github.com/jakechorley/supply-board/pkg/core/model"
)

var ErrUnknownSupplier = errors.New("unknown supplier")

// MoveRequest describes a manual move of one item. Either Start/SupplierID or a
// drag (DX, DY in board units) is given.
type MoveRequest struct {
	PlanID     string // empty for the latest plan
	Key        model.ItemKey
	Start      calendar.Week
	SupplierID string

	Drag   bool
	DX, DY float64
}

// MovePlanItem applies a manual move to a stored plan and stores the result as a
// child plan. Moves never check capacity, so a move can overrun a supplier; the
// overrun shows up in the new plan's report.
func MovePlanItem(ctx context.Context, store PlanReadWriter, cfg *config.Config, logger *zap.Logger, req MoveRequest) (*PlanResult, error) {
	parent, err := loadPlan(ctx, store, logger, req.PlanID)
	if err != nil {
		return nil, err
	}

	start, supplierID := req.Start, req.SupplierID
	if req.Drag {
		current, err := evaluate(parent, cfg, logger)
		if err != nil {
			return nil, err
		}
		drop, err := edits.ResolveDrop(current.Layout, req.Key, req.DX, req.DY)
		if err != nil {
			return nil, err
		}
		if !drop.WeekChanged && !drop.SupplierChanged {
			return nil, fmt.Errorf("drag of %s does not change its week or supplier", req.Key)
		}
		start, supplierID = drop.Start, drop.SupplierID
		logger.Debug("Drop resolved",
			zap.Stringer("item", req.Key),
			zap.Stringer("start", drop.Start),
			zap.String("supplier_id", drop.SupplierID))
	}

	if supplierID != "" {
		if _, ok := model.SupplierIndex(parent.Suppliers)[supplierID]; !ok {
			return nil, fmt.Errorf("cannot move %s to %q: %w in plan %s", req.Key, supplierID, ErrUnknownSupplier, parent.ID)
		}
	}

	items, err := edits.Move(parent.Items, req.Key, start, supplierID)
	if err != nil {
		return nil, err
	}

	moved := items[indexOfKey(items, req.Key)]
	note := fmt.Sprintf("moved %s to %s on %s", req.Key, moved.Start, moved.SupplierID)
	return storeChild(ctx, store, cfg, logger, parent, items, note, "move")
}

// EditPlanItem applies patch to an item of a stored plan and stores the result as a child plan
func EditPlanItem(ctx context.Context, store PlanReadWriter, cfg *config.Config, logger *zap.Logger, planID string, key model.ItemKey, patch edits.Patch) (*PlanResult, error) {
	parent, err := loadPlan(ctx, store, logger, planID)
	if err != nil {
		return nil, err
	}

	items, err := edits.Edit(parent.Items, key, patch)
	if err != nil {
		return nil, err
	}

	return storeChild(ctx, store, cfg, logger, parent, items, fmt.Sprintf("edited %s", key), "edit")
}

func indexOfKey(items []model.DemandItem, key model.ItemKey) int {
	for i, item := range items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}
