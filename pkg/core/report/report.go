package report

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/jakechorley/supply-board/pkg/core/calendar"
	"github.com/jakechorley/supply-board/pkg/core/ledger"
	"github.com/jakechorley/supply-board/pkg/core/model"
	"github.com/jakechorley/supply-board/pkg/core/route"
)

// Options sets the transport cost model and the capacity rules in force
type Options struct {
	CostPerKm     decimal.Decimal
	CostPerMinute decimal.Decimal

	// MaxStops bounds the groups that get routed. Zero means route.MaxStops.
	MaxStops int

	// Rules override declared capacity on specific weeks when checking production
	Rules []ledger.CapacityRule
}

// ShiftViolation is an item placed outside its allowed shift window
type ShiftViolation struct {
	Key       model.ItemKey
	Requested calendar.Week
	Start     calendar.Week

	// Shift is the signed distance from the requested week to the start
	Shift int

	// WeeksOutside is how far the start lies beyond the window
	WeeksOutside int
}

// SupplierProduction compares a supplier's usage with its capacity. Over is the largest
// excess in any week, measured against the capacity in force that week.
type SupplierProduction struct {
	SupplierID        string
	Name              string
	Capacity          int
	Peak              int
	Over              int
	Under             int
	OverCapacityWeeks []calendar.Week
}

type GroupStatus string

const (
	GroupRouted     GroupStatus = "routed"
	GroupUnroutable GroupStatus = "unroutable"
	GroupSkipped    GroupStatus = "skipped"
)

// TransportGroup is one delivery run: every item a supplier starts in the same week
type TransportGroup struct {
	SupplierID string
	Start      calendar.Week
	Stops      []string
	Status     GroupStatus
	Route      route.Route
	Cost       decimal.Decimal
}

// Report summarises the penalties and the transport cost of a plan
type Report struct {
	ShiftViolations   []ShiftViolation
	ShiftPenaltyWeeks int

	UnassignedCount  int
	UnassignedAmount int

	Production      []SupplierProduction
	OverProduction  int
	UnderProduction int
	Overruns        []string

	Transport     []TransportGroup
	TotalKm       float64
	TotalMinutes  float64
	TransportCost decimal.Decimal
	Unroutable    int
	Skipped       int
}

// PenaltyCount returns how many penalty categories are non-zero
func (r *Report) PenaltyCount() int {
	count := 0
	for _, active := range []bool{
		r.ShiftPenaltyWeeks > 0,
		r.UnassignedAmount > 0,
		r.OverProduction > 0,
		r.UnderProduction > 0,
	} {
		if active {
			count++
		}
	}
	return count
}

// Build evaluates a plan. Items are read, never modified.
func Build(items []model.DemandItem, suppliers []model.Supplier, supplierEdges, stopEdges []model.DistanceEdge, opts Options) (*Report, error) {
	maxStops := opts.MaxStops
	if maxStops == 0 {
		maxStops = route.MaxStops
	}
	if maxStops < 0 || maxStops > route.MaxStops {
		return nil, fmt.Errorf("max stops must be between 1 and %d, got %d", route.MaxStops, maxStops)
	}
	if opts.CostPerKm.IsNegative() || opts.CostPerMinute.IsNegative() {
		return nil, errors.New("transport costs must not be negative")
	}

	r := &Report{
		ShiftViolations: []ShiftViolation{},
		Overruns:        []string{},
		TransportCost:   decimal.Zero,
	}

	r.addShiftPenalties(items)
	r.addUnassigned(items, suppliers)
	r.addProduction(items, suppliers, opts.Rules)

	network, err := route.NewNetwork(supplierEdges, stopEdges)
	if err != nil {
		return nil, fmt.Errorf("failed to build distance network: %w", err)
	}
	if err := r.addTransport(items, suppliers, network, opts, maxStops); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Report) addShiftPenalties(items []model.DemandItem) {
	for _, item := range items {
		if !item.IsAssigned() {
			continue
		}
		shift := calendar.Between(item.RequestedWeek, item.Start)

		outside := 0
		switch {
		case shift < -item.EarlyShiftMax:
			outside = -item.EarlyShiftMax - shift
		case shift > item.LateShiftMax:
			outside = shift - item.LateShiftMax
		}
		if outside == 0 {
			continue
		}

		r.ShiftViolations = append(r.ShiftViolations, ShiftViolation{
			Key:          item.Key(),
			Requested:    item.RequestedWeek,
			Start:        item.Start,
			Shift:        shift,
			WeeksOutside: outside,
		})
		r.ShiftPenaltyWeeks += outside
	}
}

// addUnassigned counts items without a known supplier
func (r *Report) addUnassigned(items []model.DemandItem, suppliers []model.Supplier) {
	known := model.SupplierIndex(suppliers)
	for _, item := range items {
		if _, ok := known[item.SupplierID]; item.IsAssigned() && ok {
			continue
		}
		r.UnassignedCount++
		r.UnassignedAmount += item.Amount
	}
}

// addProduction compares usage with the capacity of each week, so a week closed by a
// rule is overrun by any commitment even when the declared capacity is never reached
func (r *Report) addProduction(items []model.DemandItem, suppliers []model.Supplier, rules []ledger.CapacityRule) {
	l := ledger.New(suppliers, rules...)
	l.Rebuild(items)

	seen := make(map[string]bool, len(suppliers))
	for _, s := range suppliers {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true

		peak := l.PeakUsage(s.ID)
		overWeeks := l.OverCapacityWeeks(s.ID)
		over := 0
		for _, week := range overWeeks {
			over = max(over, l.Used(s.ID, week)-l.Capacity(s.ID, week))
		}
		p := SupplierProduction{
			SupplierID:        s.ID,
			Name:              s.Name,
			Capacity:          s.Capacity,
			Peak:              peak,
			Over:              over,
			Under:             max(0, s.Capacity-peak),
			OverCapacityWeeks: overWeeks,
		}
		r.Production = append(r.Production, p)
		r.OverProduction += p.Over
		r.UnderProduction += p.Under
		if p.Over > 0 {
			r.Overruns = append(r.Overruns, s.ID)
		}
	}
}

type groupKey struct {
	supplierID string
	start      calendar.Week
}

func (r *Report) addTransport(items []model.DemandItem, suppliers []model.Supplier, network *route.Network, opts Options, maxStops int) error {
	known := model.SupplierIndex(suppliers)

	stops := make(map[groupKey][]string)
	for _, item := range items {
		if _, ok := known[item.SupplierID]; !ok || !item.IsAssigned() {
			continue
		}
		key := groupKey{supplierID: item.SupplierID, start: item.Start}
		if !slices.Contains(stops[key], item.Name) {
			stops[key] = append(stops[key], item.Name)
		}
	}

	keys := make([]groupKey, 0, len(stops))
	for key := range stops {
		keys = append(keys, key)
	}
	// Supplier list order, then chronological
	slices.SortFunc(keys, func(a, b groupKey) int {
		if c := cmp.Compare(known[a.supplierID], known[b.supplierID]); c != 0 {
			return c
		}
		return calendar.Compare(a.start, b.start)
	})

	for _, key := range keys {
		group := TransportGroup{
			SupplierID: key.supplierID,
			Start:      key.start,
			Stops:      stops[key],
			Cost:       decimal.Zero,
		}

		if len(group.Stops) > maxStops {
			group.Status = GroupSkipped
			r.Skipped++
			r.Transport = append(r.Transport, group)
			continue
		}

		best, err := network.FindRoute(key.supplierID, group.Stops)
		if err != nil {
			return fmt.Errorf("failed to route %s from %s: %w", key.start, key.supplierID, err)
		}
		group.Route = best

		if !best.Found {
			group.Status = GroupUnroutable
			r.Unroutable++
			r.Transport = append(r.Transport, group)
			continue
		}

		group.Status = GroupRouted
		group.Cost = Cost(best, opts)
		r.TotalKm += best.TotalKm
		r.TotalMinutes += best.TotalMinutes
		r.TransportCost = r.TransportCost.Add(group.Cost)
		r.Transport = append(r.Transport, group)
	}

	return nil
}

// Cost prices a route as km × cost per km plus minutes × cost per minute
func Cost(rt route.Route, opts Options) decimal.Decimal {
	km := decimal.NewFromFloat(rt.TotalKm).Mul(opts.CostPerKm)
	minutes := decimal.NewFromFloat(rt.TotalMinutes).Mul(opts.CostPerMinute)
	return km.Add(minutes).Round(2)
}
