package packer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/supply-board/pkg/core/calendar"
	"github.com/jakechorley/supply-board/pkg/core/model"
)

// unitGeometry maps one week to 10 units wide and one amount unit to one unit high
func unitGeometry() Geometry {
	return Geometry{WeekWidth: 10, UnitHeight: 1}
}

func placed(id string, productType model.ProductType, amount int, start string, duration int, supplierID string) model.DemandItem {
	item := model.DemandItem{
		ID:            id,
		ProductType:   productType,
		Amount:        amount,
		RequestedWeek: calendar.MustParse(start),
		DurationWeeks: duration,
		SupplierID:    supplierID,
	}
	item.SetStart(calendar.MustParse(start))
	return item
}

func findItem(t *testing.T, layout *Layout, id string, productType model.ProductType) model.DemandItem {
	t.Helper()
	item, ok := layout.Item(model.ItemKey{ID: id, ProductType: productType})
	require.True(t, ok, "item %s/%s not in layout", id, productType)
	return item
}

func TestPack_OverlappingItemIsStackedBelow(t *testing.T) {
	suppliers := []model.Supplier{{ID: "A", Capacity: 100}}
	items := []model.DemandItem{
		placed("X", model.ProductFemale, 20, "2024-W01", 3, "A"),
		placed("Y", model.ProductFemale, 15, "2024-W02", 3, "A"),
	}

	layout, err := Pack(items, suppliers, unitGeometry())
	require.NoError(t, err)

	x := findItem(t, layout, "X", model.ProductFemale)
	y := findItem(t, layout, "Y", model.ProductFemale)

	assert.Equal(t, 0.0, x.StackOffset)
	assert.Equal(t, 0.0, x.Top)
	assert.Equal(t, 20.0, y.StackOffset)
	assert.Equal(t, 20.0, y.Top)
	assert.Equal(t, 0.0, x.Left)
	assert.Equal(t, 10.0, y.Left)
	assert.Equal(t, 35, layout.Suppliers[0].PeakUsage)
}

func TestPack_NonOverlappingItemsShareTheBaseLine(t *testing.T) {
	suppliers := []model.Supplier{{ID: "A", Capacity: 100}}
	items := []model.DemandItem{
		placed("X", model.ProductFemale, 20, "2024-W01", 2, "A"),
		placed("Y", model.ProductFemale, 15, "2024-W03", 2, "A"),
	}

	layout, err := Pack(items, suppliers, unitGeometry())
	require.NoError(t, err)

	assert.Equal(t, 0.0, findItem(t, layout, "Y", model.ProductFemale).StackOffset)
	assert.Equal(t, 20, layout.Suppliers[0].PeakUsage)
}

func TestPack_StackOrderPrefersLongerItems(t *testing.T) {
	suppliers := []model.Supplier{{ID: "A", Capacity: 100}}
	items := []model.DemandItem{
		placed("short", model.ProductFemale, 10, "2024-W05", 2, "A"),
		placed("long", model.ProductFemale, 30, "2024-W05", 6, "A"),
	}

	layout, err := Pack(items, suppliers, unitGeometry())
	require.NoError(t, err)

	assert.Equal(t, 0.0, findItem(t, layout, "long", model.ProductFemale).StackOffset)
	assert.Equal(t, 30.0, findItem(t, layout, "short", model.ProductFemale).StackOffset)
}

func TestPack_StackOrderFallsBackToID(t *testing.T) {
	suppliers := []model.Supplier{{ID: "A", Capacity: 100}}
	items := []model.DemandItem{
		placed("b", model.ProductFemale, 10, "2024-W05", 2, "A"),
		placed("a", model.ProductFemale, 20, "2024-W05", 2, "A"),
	}

	layout, err := Pack(items, suppliers, unitGeometry())
	require.NoError(t, err)

	assert.Equal(t, 0.0, findItem(t, layout, "a", model.ProductFemale).StackOffset)
	assert.Equal(t, 20.0, findItem(t, layout, "b", model.ProductFemale).StackOffset)
}

func TestPack_LaneBaseTopIsSumOfLanesAbove(t *testing.T) {
	suppliers := []model.Supplier{
		{ID: "A", Capacity: 100},
		{ID: "B", Capacity: 50},
		{ID: "C", Capacity: 70},
	}
	items := []model.DemandItem{
		placed("p1", model.ProductFemale, 10, "2024-W01", 2, "C"),
		placed("p2", model.ProductFemale, 10, "2024-W01", 2, "B"),
	}

	layout, err := Pack(items, suppliers, unitGeometry())
	require.NoError(t, err)

	require.Len(t, layout.Lanes, 3)
	assert.Equal(t, 0.0, layout.Lanes[0].Top)
	assert.Equal(t, 100.0, layout.Lanes[1].Top)
	assert.Equal(t, 150.0, layout.Lanes[2].Top)
	assert.Equal(t, 220.0, layout.Lanes[2].Bottom())

	assert.Equal(t, 150.0, findItem(t, layout, "p1", model.ProductFemale).Top)
	assert.Equal(t, 100.0, findItem(t, layout, "p2", model.ProductFemale).Top)
}

func TestPack_OverrunGrowsLaneAndShiftsLanesBelow(t *testing.T) {
	suppliers := []model.Supplier{
		{ID: "A", Capacity: 30},
		{ID: "B", Capacity: 50},
	}
	// A manual edit put 50 units on A, which only declares 30
	items := []model.DemandItem{
		placed("p1", model.ProductFemale, 25, "2024-W01", 2, "A"),
		placed("p2", model.ProductFemale, 25, "2024-W02", 2, "A"),
		placed("p3", model.ProductFemale, 10, "2024-W01", 2, "B"),
	}

	layout, err := Pack(items, suppliers, unitGeometry())
	require.NoError(t, err)

	assert.Equal(t, 50, layout.Suppliers[0].PeakUsage)
	assert.True(t, layout.Suppliers[0].IsOverrun())
	assert.False(t, layout.Suppliers[1].IsOverrun())

	assert.Equal(t, 50.0, layout.Lanes[0].Height)
	assert.Equal(t, 50.0, layout.Lanes[1].Top)
	assert.Equal(t, 50.0, findItem(t, layout, "p3", model.ProductFemale).Top)
	assert.Equal(t, 2, layout.Passes)
}

func TestPack_SecondPassCorrectsStalePeaks(t *testing.T) {
	suppliers := []model.Supplier{
		{ID: "A", Capacity: 10, PeakUsage: 0},
		{ID: "B", Capacity: 10, PeakUsage: 999},
	}
	items := []model.DemandItem{
		placed("p1", model.ProductFemale, 40, "2024-W01", 2, "A"),
		placed("p2", model.ProductFemale, 5, "2024-W01", 2, "B"),
	}

	layout, err := Pack(items, suppliers, unitGeometry())
	require.NoError(t, err)

	assert.Equal(t, 40, layout.Suppliers[0].PeakUsage)
	assert.Equal(t, 5, layout.Suppliers[1].PeakUsage)
	assert.Equal(t, 40.0, layout.Lanes[1].Top)
	assert.Equal(t, 40.0, findItem(t, layout, "p2", model.ProductFemale).Top)
}

func TestPack_WithMaxPassesStopsWhenPeaksSettle(t *testing.T) {
	suppliers := []model.Supplier{{ID: "A", Capacity: 10}, {ID: "B", Capacity: 10}}
	items := []model.DemandItem{placed("p1", model.ProductFemale, 40, "2024-W01", 2, "A")}

	layout, err := Pack(items, suppliers, unitGeometry(), WithMaxPasses(MaxPasses))
	require.NoError(t, err)
	assert.Equal(t, 2, layout.Passes, "first pass fixes the stale peak, second confirms it")
	assert.Equal(t, 40.0, layout.Lanes[1].Top)

	settled, err := Pack(layout.Items, layout.Suppliers, unitGeometry(), WithMaxPasses(MaxPasses))
	require.NoError(t, err)
	assert.Equal(t, 1, settled.Passes)
	assert.Equal(t, layout.Items, settled.Items)
}

func TestPack_WithMaxPassesOutOfRange(t *testing.T) {
	_, err := Pack(nil, nil, unitGeometry(), WithMaxPasses(0))
	assert.Error(t, err)

	_, err = Pack(nil, nil, unitGeometry(), WithMaxPasses(MaxPasses+1))
	assert.Error(t, err)
}

func TestPack_UnassignedAndUnknownSupplierItemsAreNotPositioned(t *testing.T) {
	suppliers := []model.Supplier{{ID: "A", Capacity: 100}}

	unassigned := model.DemandItem{ID: "u", ProductType: model.ProductFemale, Amount: 10, DurationWeeks: 2, Top: 55, StackOffset: 3}
	orphan := placed("o", model.ProductFemale, 10, "2024-W01", 2, "ghost")
	orphan.Top = 12

	layout, err := Pack([]model.DemandItem{unassigned, orphan}, suppliers, unitGeometry())
	require.NoError(t, err)

	for _, item := range layout.Items {
		assert.Zero(t, item.Top, item.ID)
		assert.Zero(t, item.Left, item.ID)
		assert.Zero(t, item.StackOffset, item.ID)
	}
	assert.Equal(t, 0, layout.Suppliers[0].PeakUsage)
}

func TestPack_NoOverlapWithinLanes(t *testing.T) {
	suppliers := []model.Supplier{
		{ID: "A", Capacity: 200},
		{ID: "B", Capacity: 120},
	}

	var items []model.DemandItem
	start := calendar.MustParse("2024-W48")
	for i := 0; i < 40; i++ {
		item := model.DemandItem{
			ID:            fmt.Sprintf("p%02d", i),
			ProductType:   model.ProductFemale,
			Amount:        5 + (i*13)%40,
			DurationWeeks: 1 + (i*7)%9,
			SupplierID:    []string{"A", "B"}[i%2],
		}
		item.SetStart(calendar.AddWeeks(start, (i*5)%12))
		items = append(items, item)
	}

	layout, err := Pack(items, suppliers, unitGeometry())
	require.NoError(t, err)

	for i := range layout.Items {
		for j := i + 1; j < len(layout.Items); j++ {
			a, b := layout.Items[i], layout.Items[j]
			if a.SupplierID != b.SupplierID {
				continue
			}

			horizontal := a.Left < b.Left+layout.ItemWidth(b) && b.Left < a.Left+layout.ItemWidth(a)
			vertical := a.Top < b.Top+layout.ItemHeight(b) && b.Top < a.Top+layout.ItemHeight(a)
			assert.False(t, horizontal && vertical, "%s and %s collide", a.ID, b.ID)
		}

		lane, ok := layout.Lane(layout.Items[i].SupplierID)
		require.True(t, ok)
		assert.GreaterOrEqual(t, layout.Items[i].Top, lane.Top)
	}
}

func TestPack_IdempotentAndDoesNotMutateInput(t *testing.T) {
	suppliers := []model.Supplier{{ID: "A", Capacity: 100}, {ID: "B", Capacity: 40}}
	items := []model.DemandItem{
		placed("p1", model.ProductFemale, 20, "2024-W01", 3, "A"),
		placed("p1", model.ProductMale, 10, "2024-W01", 5, "A"),
		placed("p2", model.ProductFemale, 15, "2024-W02", 3, "B"),
	}
	originalItems := model.CloneItems(items)
	originalSuppliers := model.CloneSuppliers(suppliers)

	first, err := Pack(items, suppliers, unitGeometry())
	require.NoError(t, err)
	second, err := Pack(items, suppliers, unitGeometry())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, originalItems, items)
	assert.Equal(t, originalSuppliers, suppliers)
}

func TestPack_DefaultViewSpansAssignedItems(t *testing.T) {
	suppliers := []model.Supplier{{ID: "A", Capacity: 100}}
	items := []model.DemandItem{
		placed("p1", model.ProductFemale, 10, "2024-W51", 2, "A"),
		placed("p2", model.ProductFemale, 10, "2025-W01", 3, "A"),
	}

	layout, err := Pack(items, suppliers, unitGeometry())
	require.NoError(t, err)

	require.Len(t, layout.View, 5)
	assert.Equal(t, calendar.MustParse("2024-W51"), layout.View[0])
	assert.Equal(t, calendar.MustParse("2025-W03"), layout.View[4])
	assert.Equal(t, 20.0, findItem(t, layout, "p2", model.ProductFemale).Left)
}

func TestPack_ViewExtensionsShiftColumns(t *testing.T) {
	suppliers := []model.Supplier{{ID: "A", Capacity: 100}}
	items := []model.DemandItem{placed("p1", model.ProductFemale, 10, "2024-W10", 2, "A")}

	geometry := unitGeometry()
	geometry.ExtendBefore = 3
	geometry.ExtendAfter = 1

	layout, err := Pack(items, suppliers, geometry)
	require.NoError(t, err)

	assert.Equal(t, calendar.MustParse("2024-W07"), layout.View[0])
	assert.Equal(t, calendar.MustParse("2024-W12"), layout.View[len(layout.View)-1])
	assert.Equal(t, 30.0, layout.Items[0].Left)
}

func TestPack_ExplicitView(t *testing.T) {
	suppliers := []model.Supplier{{ID: "A", Capacity: 100}}
	items := []model.DemandItem{placed("p1", model.ProductFemale, 10, "2024-W10", 2, "A")}

	geometry := unitGeometry()
	geometry.ViewStart = calendar.MustParse("2024-W01")
	geometry.ViewEnd = calendar.MustParse("2024-W20")

	layout, err := Pack(items, suppliers, geometry)
	require.NoError(t, err)

	assert.Len(t, layout.View, 20)
	assert.Equal(t, 90.0, layout.Items[0].Left)
}

func TestPack_EmptyBoard(t *testing.T) {
	layout, err := Pack(nil, []model.Supplier{{ID: "A", Capacity: 10}}, DefaultGeometry())
	require.NoError(t, err)

	assert.Empty(t, layout.View)
	require.Len(t, layout.Lanes, 1)
	assert.InDelta(t, 0.2, layout.Lanes[0].Height, 1e-9)
}

func TestPack_InvalidGeometry(t *testing.T) {
	tests := []struct {
		name     string
		geometry Geometry
	}{
		{name: "zero week width", geometry: Geometry{WeekWidth: 0, UnitHeight: 1}},
		{name: "negative unit height", geometry: Geometry{WeekWidth: 10, UnitHeight: -1}},
		{name: "negative extension", geometry: Geometry{WeekWidth: 10, UnitHeight: 1, ExtendBefore: -1}},
		{
			name: "inverted view",
			geometry: Geometry{
				WeekWidth:  10,
				UnitHeight: 1,
				ViewStart:  calendar.MustParse("2024-W10"),
				ViewEnd:    calendar.MustParse("2024-W01"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Pack(nil, nil, tt.geometry)
			assert.Error(t, err)
		})
	}
}

func TestLayout_WeekAtAndLaneAt(t *testing.T) {
	suppliers := []model.Supplier{{ID: "A", Capacity: 100}, {ID: "B", Capacity: 50}}
	items := []model.DemandItem{placed("p1", model.ProductFemale, 10, "2024-W10", 4, "A")}

	layout, err := Pack(items, suppliers, unitGeometry())
	require.NoError(t, err)

	w, ok := layout.WeekAt(14)
	require.True(t, ok)
	assert.Equal(t, calendar.MustParse("2024-W11"), w)

	w, ok = layout.WeekAt(16)
	require.True(t, ok)
	assert.Equal(t, calendar.MustParse("2024-W12"), w)

	_, ok = layout.WeekAt(-6)
	assert.False(t, ok)
	_, ok = layout.WeekAt(40)
	assert.False(t, ok)

	lane, ok := layout.LaneAt(99.5)
	require.True(t, ok)
	assert.Equal(t, "A", lane.SupplierID)

	lane, ok = layout.LaneAt(100)
	require.True(t, ok)
	assert.Equal(t, "B", lane.SupplierID)

	_, ok = layout.LaneAt(150)
	assert.False(t, ok)
	_, ok = layout.LaneAt(-1)
	assert.False(t, ok)
}
