package packer

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/jakechorley/supply-board/pkg/core/calendar"
	"github.com/jakechorley/supply-board/pkg/core/ledger"
	"github.com/jakechorley/supply-board/pkg/core/model"
)

const (
	DefaultPasses = 2
	MaxPasses     = 5
)

// Geometry describes how weeks and amounts map onto board coordinates
type Geometry struct {
	// WeekWidth is the horizontal size of one week
	WeekWidth float64

	// UnitHeight is the vertical size of one unit of amount
	UnitHeight float64

	// ViewStart and ViewEnd bound the visible weeks. When unset the view spans
	// the earliest start to the latest end of the assigned items.
	ViewStart calendar.Week
	ViewEnd   calendar.Week

	// ExtendBefore and ExtendAfter pad the view with extra weeks
	ExtendBefore int
	ExtendAfter  int
}

// DefaultGeometry returns the geometry used by the board when nothing is configured
func DefaultGeometry() Geometry {
	return Geometry{
		WeekWidth:  30,
		UnitHeight: 0.02,
	}
}

func (g Geometry) validate() error {
	if g.WeekWidth <= 0 {
		return fmt.Errorf("week width must be positive, got %v", g.WeekWidth)
	}
	if g.UnitHeight < 0 {
		return fmt.Errorf("unit height must not be negative, got %v", g.UnitHeight)
	}
	if g.ExtendBefore < 0 || g.ExtendAfter < 0 {
		return fmt.Errorf("view extensions must not be negative (%d, %d)", g.ExtendBefore, g.ExtendAfter)
	}
	if !g.ViewStart.IsZero() && !g.ViewEnd.IsZero() && g.ViewStart.After(g.ViewEnd) {
		return fmt.Errorf("view start %s is after view end %s", g.ViewStart, g.ViewEnd)
	}
	return nil
}

// Lane is the horizontal band of the board reserved for one supplier
type Lane struct {
	SupplierID string
	Top        float64
	Height     float64
	Peak       int
	Capacity   int
}

// Bottom returns the lower edge of the lane
func (l Lane) Bottom() float64 {
	return l.Top + l.Height
}

// Layout is the positioned board
type Layout struct {
	Items     []model.DemandItem
	Suppliers []model.Supplier
	Lanes     []Lane
	View      []calendar.Week
	Geometry  Geometry

	// Passes is the number of packing passes that ran
	Passes int
}

type options struct {
	iterate   bool
	maxPasses int
}

// Option configures a packing run
type Option func(*options)

// WithMaxPasses keeps packing until no supplier's peak changes, for at most n
// passes. Without it exactly two passes run.
func WithMaxPasses(n int) Option {
	return func(o *options) {
		o.iterate = true
		o.maxPasses = n
	}
}

// Pack stacks the assigned items of every supplier lane so that no two items in a
// lane overlap, and recomputes each supplier's peak usage.
//
// Lanes follow supplier list order. A lane is as tall as the larger of its
// declared capacity and its peak usage, so a manual overrun makes the lane grow.
// Items without a supplier, or on a supplier that isn't in the list, are returned
// without a position.
func Pack(items []model.DemandItem, suppliers []model.Supplier, geometry Geometry, opts ...Option) (*Layout, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.iterate && (o.maxPasses < 1 || o.maxPasses > MaxPasses) {
		return nil, fmt.Errorf("max passes must be between 1 and %d, got %d", MaxPasses, o.maxPasses)
	}
	if err := geometry.validate(); err != nil {
		return nil, err
	}

	layout := &Layout{
		Items:     model.CloneItems(items),
		Suppliers: model.CloneSuppliers(suppliers),
		Geometry:  geometry,
	}
	layout.View = viewRange(layout.Items, geometry)

	l := ledger.New(layout.Suppliers)
	l.Rebuild(layout.Items)

	if !o.iterate {
		for range DefaultPasses {
			layout.pass()
			layout.recomputePeaks(l)
		}
		return layout, nil
	}

	for range o.maxPasses {
		layout.pass()
		if !layout.recomputePeaks(l) {
			break
		}
	}
	return layout, nil
}

// pass lays out every lane from the current supplier peaks
func (layout *Layout) pass() {
	layout.Passes++
	layout.buildLanes()

	laneIndex := make(map[string]int, len(layout.Lanes))
	for i, lane := range layout.Lanes {
		if _, exists := laneIndex[lane.SupplierID]; !exists {
			laneIndex[lane.SupplierID] = i
		}
	}

	byLane := make(map[int][]int)
	for i := range layout.Items {
		item := &layout.Items[i]
		item.StackOffset, item.Top, item.Left = 0, 0, 0

		if !item.IsAssigned() {
			continue
		}
		lane, ok := laneIndex[item.SupplierID]
		if !ok {
			continue
		}
		byLane[lane] = append(byLane[lane], i)
	}

	for lane, members := range byLane {
		layout.packLane(layout.Lanes[lane], members)
	}
}

type rect struct {
	first, last int
	bottom      float64
}

func (r rect) overlaps(first, last int) bool {
	return first <= r.last && r.first <= last
}

// packLane places the given items of one lane in their stacking order
func (layout *Layout) packLane(lane Lane, members []int) {
	items := layout.Items
	baseTop := lane.Top

	slices.SortStableFunc(members, func(a, b int) int {
		x, y := items[a], items[b]
		if c := calendar.Compare(x.Start, y.Start); c != 0 {
			return c
		}
		// Base top would come next but it is the same for every item in a lane
		if c := cmp.Compare(y.DurationWeeks, x.DurationWeeks); c != 0 {
			return c
		}
		return cmp.Compare(x.ID, y.ID)
	})

	placed := make([]rect, 0, len(members))
	for _, i := range members {
		item := &items[i]
		first := layout.weekIndex(item.Start)
		last := first + item.DurationWeeks - 1

		offset := 0.0
		for _, r := range placed {
			if r.overlaps(first, last) {
				offset = math.Max(offset, r.bottom-baseTop)
			}
		}

		item.StackOffset = offset
		item.Top = baseTop + offset
		item.Left = float64(first) * layout.Geometry.WeekWidth

		placed = append(placed, rect{
			first:  first,
			last:   last,
			bottom: item.Top + layout.itemHeight(*item),
		})
	}
}

// recomputePeaks refreshes every supplier's peak usage from the ledger and
// reports whether any peak changed
func (layout *Layout) recomputePeaks(l *ledger.Ledger) bool {
	changed := false
	for i := range layout.Suppliers {
		peak := l.PeakUsage(layout.Suppliers[i].ID)
		if layout.Suppliers[i].PeakUsage != peak {
			changed = true
		}
		layout.Suppliers[i].PeakUsage = peak
	}
	return changed
}

func (layout *Layout) buildLanes() {
	layout.Lanes = make([]Lane, 0, len(layout.Suppliers))
	top := 0.0
	for _, s := range layout.Suppliers {
		height := float64(max(s.Capacity, s.PeakUsage)) * layout.Geometry.UnitHeight
		layout.Lanes = append(layout.Lanes, Lane{
			SupplierID: s.ID,
			Top:        top,
			Height:     height,
			Peak:       s.PeakUsage,
			Capacity:   s.Capacity,
		})
		top += height
	}
}

// weekIndex returns the column of a week relative to the first week of the view
func (layout *Layout) weekIndex(w calendar.Week) int {
	if len(layout.View) == 0 {
		return 0
	}
	return calendar.Between(layout.View[0], w)
}

func (layout *Layout) itemHeight(item model.DemandItem) float64 {
	return float64(item.Amount) * layout.Geometry.UnitHeight
}

// ItemWidth returns the horizontal size of an item
func (layout *Layout) ItemWidth(item model.DemandItem) float64 {
	return float64(item.DurationWeeks) * layout.Geometry.WeekWidth
}

// ItemHeight returns the vertical size of an item
func (layout *Layout) ItemHeight(item model.DemandItem) float64 {
	return layout.itemHeight(item)
}

// WeekAt returns the week under horizontal position x. The column is the nearest
// whole week; positions outside the view report false.
func (layout *Layout) WeekAt(x float64) (calendar.Week, bool) {
	index := int(math.Round(x / layout.Geometry.WeekWidth))
	if index < 0 || index >= len(layout.View) {
		return calendar.Week{}, false
	}
	return layout.View[index], true
}

// LaneAt returns the lane containing vertical position y
func (layout *Layout) LaneAt(y float64) (Lane, bool) {
	for _, lane := range layout.Lanes {
		if y >= lane.Top && y < lane.Bottom() {
			return lane, true
		}
	}
	return Lane{}, false
}

// Lane returns the lane of a supplier
func (layout *Layout) Lane(supplierID string) (Lane, bool) {
	for _, lane := range layout.Lanes {
		if lane.SupplierID == supplierID {
			return lane, true
		}
	}
	return Lane{}, false
}

// Item returns the positioned item with the given key
func (layout *Layout) Item(key model.ItemKey) (model.DemandItem, bool) {
	for _, item := range layout.Items {
		if item.Key() == key {
			return item, true
		}
	}
	return model.DemandItem{}, false
}

// viewRange returns the visible weeks for the given items
func viewRange(items []model.DemandItem, g Geometry) []calendar.Week {
	start, end := g.ViewStart, g.ViewEnd

	if start.IsZero() || end.IsZero() {
		var first, last calendar.Week
		for _, item := range items {
			if !item.IsAssigned() {
				continue
			}
			if first.IsZero() || item.Start.Before(first) {
				first = item.Start
			}
			if last.IsZero() || item.End.After(last) {
				last = item.End
			}
		}
		if start.IsZero() {
			start = first
		}
		if end.IsZero() {
			end = last
		}
	}

	if start.IsZero() || end.IsZero() || start.After(end) {
		return nil
	}

	start = calendar.AddWeeks(start, -g.ExtendBefore)
	end = calendar.AddWeeks(end, g.ExtendAfter)
	return calendar.RangeInclusive(start, end)
}
