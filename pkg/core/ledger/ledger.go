package ledger

import (
	"maps"
	"slices"

	"github.com/jakechorley/supply-board/pkg/core/calendar"
	"github.com/jakechorley/supply-board/pkg/core/model"
)

// Ledger tracks the committed amount per supplier per week.
//
// It is working state derived from the assigned items: it can always be
// rebuilt from them and is never the source of truth by itself. Only
// suppliers known at construction are tracked; reservations against any
// other supplier id are ignored.
type Ledger struct {
	suppliers map[string]model.Supplier
	rules     []CapacityRule
	used      map[string]map[calendar.Week]int

	capacityCache map[string]map[calendar.Week]int
}

// New creates an empty ledger for the given suppliers
func New(suppliers []model.Supplier, rules ...CapacityRule) *Ledger {
	l := &Ledger{
		suppliers:     make(map[string]model.Supplier, len(suppliers)),
		rules:         rules,
		used:          make(map[string]map[calendar.Week]int, len(suppliers)),
		capacityCache: make(map[string]map[calendar.Week]int),
	}
	for _, s := range suppliers {
		if _, exists := l.suppliers[s.ID]; exists {
			continue
		}
		l.suppliers[s.ID] = s
		l.used[s.ID] = make(map[calendar.Week]int)
	}
	return l
}

// Capacity returns the supplier's capacity in a given week. The declared
// capacity applies unless a capacity rule matches the week; the last
// matching rule wins. Unknown suppliers have zero capacity.
func (l *Ledger) Capacity(supplierID string, week calendar.Week) int {
	supplier, ok := l.suppliers[supplierID]
	if !ok {
		return 0
	}
	if len(l.rules) == 0 {
		return supplier.Capacity
	}

	if cached, ok := l.capacityCache[supplierID][week]; ok {
		return cached
	}

	capacity := supplier.Capacity
	for _, rule := range l.rules {
		if rule.Matches(supplierID, week) {
			capacity = rule.Capacity
		}
	}

	if l.capacityCache[supplierID] == nil {
		l.capacityCache[supplierID] = make(map[calendar.Week]int)
	}
	l.capacityCache[supplierID][week] = capacity
	return capacity
}

// Used returns the committed amount for a supplier in a week
func (l *Ledger) Used(supplierID string, week calendar.Week) int {
	return l.used[supplierID][week]
}

// Headroom reports whether amount fits on the supplier in every given week
func (l *Ledger) Headroom(supplierID string, weeks []calendar.Week, amount int) bool {
	if _, ok := l.suppliers[supplierID]; !ok {
		return false
	}
	for _, week := range weeks {
		if l.Used(supplierID, week)+amount > l.Capacity(supplierID, week) {
			return false
		}
	}
	return true
}

// Reserve commits amount on the supplier for every given week.
// It does not check capacity: callers must call Headroom first.
func (l *Ledger) Reserve(supplierID string, weeks []calendar.Week, amount int) {
	usage, ok := l.used[supplierID]
	if !ok {
		return
	}
	for _, week := range weeks {
		usage[week] += amount
	}
}

// Rebuild discards all commitments and recomputes them from the assigned items.
// Capacity is not checked, so manual overruns are reflected as-is.
func (l *Ledger) Rebuild(items []model.DemandItem) {
	for id := range l.used {
		l.used[id] = make(map[calendar.Week]int)
	}
	for _, item := range items {
		if !item.IsAssigned() {
			continue
		}
		l.Reserve(item.SupplierID, item.ActiveWeeks(), item.Amount)
	}
}

// PeakUsage returns the highest committed amount in any single week
func (l *Ledger) PeakUsage(supplierID string) int {
	peak := 0
	for _, amount := range l.used[supplierID] {
		if amount > peak {
			peak = amount
		}
	}
	return peak
}

// Usage returns a copy of the weekly commitments for a supplier
func (l *Ledger) Usage(supplierID string) map[calendar.Week]int {
	return maps.Clone(l.used[supplierID])
}

// OverCapacityWeeks returns the weeks in which a supplier's commitments exceed its capacity
func (l *Ledger) OverCapacityWeeks(supplierID string) []calendar.Week {
	var weeks []calendar.Week
	for week, amount := range l.used[supplierID] {
		if amount > l.Capacity(supplierID, week) {
			weeks = append(weeks, week)
		}
	}
	slices.SortFunc(weeks, calendar.Compare)
	return weeks
}
