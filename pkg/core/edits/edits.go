package edits

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakechorley/supply-board/pkg/core/calendar"
	"github.com/jakechorley/supply-board/pkg/core/model"
	"github.com/jakechorley/supply-board/pkg/core/packer"
)

var ErrItemNotFound = errors.New("item not found")

// Move places the item with the given key at start on supplierID, without checking
// capacity. Correlated siblings follow to the same start week but stay on their own
// supplier. An empty supplierID keeps the current supplier and a zero start keeps
// the current start.
//
// The returned slice is a new collection; items is not modified.
func Move(items []model.DemandItem, key model.ItemKey, start calendar.Week, supplierID string) ([]model.DemandItem, error) {
	target := indexOf(items, key)
	if target < 0 {
		return nil, fmt.Errorf("failed to move %s: %w", key, ErrItemNotFound)
	}

	moved := model.CloneItems(items)
	item := &moved[target]

	if start.IsZero() {
		start = item.Start
	}
	if supplierID == "" {
		supplierID = item.SupplierID
	}
	if start.IsZero() {
		return nil, fmt.Errorf("cannot move %s: no start week given and the item is not placed", key)
	}
	if supplierID == "" {
		return nil, fmt.Errorf("cannot move %s: no supplier given and the item is not placed", key)
	}

	item.SetStart(start)
	item.SupplierID = supplierID

	for i := range moved {
		if i == target || moved[i].ID != key.ID {
			continue
		}
		sibling := &moved[i]
		sibling.SetStart(start)
		if sibling.SupplierID == "" {
			sibling.SupplierID = supplierID
		}
	}

	return moved, nil
}

// Drop is where a dragged item lands
type Drop struct {
	Key        model.ItemKey
	Start      calendar.Week
	SupplierID string

	// WeekChanged and SupplierChanged report whether the drop resolved to a new
	// week or lane; a drop outside the board keeps the current value
	WeekChanged     bool
	SupplierChanged bool
}

// ResolveDrop turns a drag of (dx, dy) board units into a target week and supplier.
//
// The week is the column nearest to the item's left edge after the drag. The
// supplier is the lane containing the item's lane top moved by dy. Drops outside the
// view or below the last lane keep the item's current week or supplier.
func ResolveDrop(layout *packer.Layout, key model.ItemKey, dx, dy float64) (Drop, error) {
	item, ok := layout.Item(key)
	if !ok {
		return Drop{}, fmt.Errorf("failed to resolve drop of %s: %w", key, ErrItemNotFound)
	}
	if math.IsNaN(dx) || math.IsNaN(dy) || math.IsInf(dx, 0) || math.IsInf(dy, 0) {
		return Drop{}, fmt.Errorf("invalid drag delta (%v, %v)", dx, dy)
	}

	drop := Drop{
		Key:        key,
		Start:      item.Start,
		SupplierID: item.SupplierID,
	}

	if week, ok := layout.WeekAt(item.Left + dx); ok {
		drop.WeekChanged = week != item.Start
		drop.Start = week
	}

	baseTop := 0.0
	if lane, ok := layout.Lane(item.SupplierID); ok {
		baseTop = lane.Top
	}
	if lane, ok := layout.LaneAt(baseTop + dy); ok {
		drop.SupplierChanged = lane.SupplierID != item.SupplierID
		drop.SupplierID = lane.SupplierID
	}

	return drop, nil
}

// Apply moves the dropped item and its siblings
func Apply(items []model.DemandItem, drop Drop) ([]model.DemandItem, error) {
	return Move(items, drop.Key, drop.Start, drop.SupplierID)
}

// Patch holds the editable fields of a demand item. Nil fields are left unchanged.
type Patch struct {
	Name          *string
	Amount        *int
	EarlyShiftMax *int
	LateShiftMax  *int
}

func (p Patch) validate() error {
	if p.Name != nil && *p.Name == "" {
		return errors.New("name must not be empty")
	}
	if p.Amount != nil && *p.Amount < 1 {
		return fmt.Errorf("amount must be at least 1, got %d", *p.Amount)
	}
	if p.EarlyShiftMax != nil && (*p.EarlyShiftMax < 0 || *p.EarlyShiftMax > model.MaxShiftWeeks) {
		return fmt.Errorf("early shift must be between 0 and %d, got %d", model.MaxShiftWeeks, *p.EarlyShiftMax)
	}
	if p.LateShiftMax != nil && (*p.LateShiftMax < 0 || *p.LateShiftMax > model.MaxShiftWeeks) {
		return fmt.Errorf("late shift must be between 0 and %d, got %d", model.MaxShiftWeeks, *p.LateShiftMax)
	}
	return nil
}

// Edit applies patch to the item with the given key. The name and the shift limits
// are shared by correlated siblings and are updated on all of them; the amount is
// only changed on the item itself. Placement is never touched.
func Edit(items []model.DemandItem, key model.ItemKey, patch Patch) ([]model.DemandItem, error) {
	if err := patch.validate(); err != nil {
		return nil, fmt.Errorf("invalid edit of %s: %w", key, err)
	}

	target := indexOf(items, key)
	if target < 0 {
		return nil, fmt.Errorf("failed to edit %s: %w", key, ErrItemNotFound)
	}

	edited := model.CloneItems(items)
	if patch.Amount != nil {
		edited[target].Amount = *patch.Amount
	}

	for i := range edited {
		if edited[i].ID != key.ID {
			continue
		}
		if patch.Name != nil {
			edited[i].Name = *patch.Name
		}
		if patch.EarlyShiftMax != nil {
			edited[i].EarlyShiftMax = *patch.EarlyShiftMax
		}
		if patch.LateShiftMax != nil {
			edited[i].LateShiftMax = *patch.LateShiftMax
		}
	}

	return edited, nil
}

func indexOf(items []model.DemandItem, key model.ItemKey) int {
	for i, item := range items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}
