package model

import (
	"fmt"
	"strings"

	"github.com/jakechorley/supply-board/pkg/core/calendar"
)

type ProductType string

const (
	ProductFemale ProductType = "F"
	ProductMale   ProductType = "M"
)

func (p ProductType) IsValid() bool {
	return p == ProductFemale || p == ProductMale
}

// MaxShiftWeeks bounds EarlyShiftMax and LateShiftMax (ten years)
const MaxShiftWeeks = 520

// ItemKey identifies a single demand item. Correlated siblings share an ID
// and differ by product type.
type ItemKey struct {
	ID          string
	ProductType ProductType
}

func (k ItemKey) String() string {
	return fmt.Sprintf("%s/%s", k.ID, k.ProductType)
}

// ParseItemKey parses the "<id>/<product type>" form produced by ItemKey.String
func ParseItemKey(s string) (ItemKey, error) {
	i := strings.LastIndex(s, "/")
	if i <= 0 {
		return ItemKey{}, fmt.Errorf("invalid item key %q, expected <id>/<F|M>", s)
	}
	key := ItemKey{ID: s[:i], ProductType: ProductType(strings.ToUpper(s[i+1:]))}
	if !key.ProductType.IsValid() {
		return ItemKey{}, fmt.Errorf("invalid product type in item key %q", s)
	}
	return key, nil
}

// DemandItem is a production batch that must be placed on a supplier for
// DurationWeeks consecutive weeks
type DemandItem struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"` // producer id, used as a route stop
	ProductType   ProductType   `json:"productType"`
	Amount        int           `json:"amount"`
	RequestedWeek calendar.Week `json:"date"`
	DurationWeeks int           `json:"durationWeeks"`
	EarlyShiftMax int           `json:"maxShiftWeeksEarly"`
	LateShiftMax  int           `json:"maxShiftWeeksLate"`
	Start         calendar.Week `json:"startWeek"`
	End           calendar.Week `json:"endWeek"`
	SupplierID    string        `json:"supplierId"`

	// Visualization only
	StackOffset float64 `json:"stackOffsetPx"`
	Top         float64 `json:"topPosition"`
	Left        float64 `json:"leftPosition"`
}

// Key returns the item's identity
func (d DemandItem) Key() ItemKey {
	return ItemKey{ID: d.ID, ProductType: d.ProductType}
}

// IsAssigned reports whether the item has a supplier and a start week
func (d DemandItem) IsAssigned() bool {
	return d.SupplierID != "" && !d.Start.IsZero()
}

// SetStart places the item at start. End is always derived from the duration.
func (d *DemandItem) SetStart(start calendar.Week) {
	d.Start = start
	d.End = calendar.AddWeeks(start, d.DurationWeeks-1)
}

// ActiveWeeks returns every week the item occupies, or nil if it has no start week
func (d DemandItem) ActiveWeeks() []calendar.Week {
	if d.Start.IsZero() {
		return nil
	}
	return calendar.RangeInclusive(d.Start, d.End)
}

// Unassign clears placement and visual state
func (d *DemandItem) Unassign() {
	d.Start = calendar.Week{}
	d.End = calendar.Week{}
	d.SupplierID = ""
	d.StackOffset = 0
	d.Top = 0
	d.Left = 0
}

// Supplier is a capacity limited producer of demand batches
type Supplier struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Capacity  int    `json:"capacity"`
	PeakUsage int    `json:"calculatedCapacity"` // derived, recomputed by the packer
}

// IsOverrun reports whether the displayed peak exceeds the declared capacity
func (s Supplier) IsOverrun() bool {
	return s.PeakUsage > s.Capacity
}

type EdgeKind string

const (
	EdgeSupplierStop EdgeKind = "supplier-stop"
	EdgeStopStop     EdgeKind = "stop-stop"
)

// DistanceEdge is a directed connection. A missing edge means there is no direct route.
type DistanceEdge struct {
	Kind            EdgeKind `json:"kind"`
	FromID          string   `json:"fromId"`
	ToID            string   `json:"toId"`
	DistanceKm      float64  `json:"distanceKm"`
	DistanceMinutes float64  `json:"distanceMinutes"`
}

// CloneItems returns a copy of items so callers never share backing arrays with results
func CloneItems(items []DemandItem) []DemandItem {
	if items == nil {
		return nil
	}
	out := make([]DemandItem, len(items))
	copy(out, items)
	return out
}

// CloneSuppliers returns a copy of suppliers
func CloneSuppliers(suppliers []Supplier) []Supplier {
	if suppliers == nil {
		return nil
	}
	out := make([]Supplier, len(suppliers))
	copy(out, suppliers)
	return out
}

// SupplierIndex maps supplier ids to their position in list order
func SupplierIndex(suppliers []Supplier) map[string]int {
	index := make(map[string]int, len(suppliers))
	for i, s := range suppliers {
		if _, exists := index[s.ID]; !exists {
			index[s.ID] = i
		}
	}
	return index
}
