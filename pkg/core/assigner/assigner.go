package assigner

import (
	"fmt"

	"github.com/jakechorley/supply-board/pkg/core/calendar"
	"github.com/jakechorley/supply-board/pkg/core/ledger"
	"github.com/jakechorley/supply-board/pkg/core/model"
)

// Outcome records what happened to a single demand item
type Outcome struct {
	Key        model.ItemKey
	Assigned   bool
	Start      calendar.Week
	SupplierID string

	// ShiftWeeks is the distance from the requested week to the chosen start
	ShiftWeeks int

	// SiblingFixed is set when the start week was dictated by an earlier sibling
	SiblingFixed bool

	// CandidatesTried counts the (week, supplier) pairs checked before success or giving up
	CandidatesTried int
}

// Result is the outcome of an assignment run
type Result struct {
	// Items are copies of the input items in input order, placed where possible
	Items []model.DemandItem

	// Ledger holds the reservations made during the run
	Ledger *ledger.Ledger

	// Unassigned lists the keys of items that could not be placed, in input order
	Unassigned []model.ItemKey

	// Outcomes has one entry per input item, in input order
	Outcomes []Outcome
}

// AssignedCount returns the number of items placed on a supplier
func (r *Result) AssignedCount() int {
	return len(r.Items) - len(r.Unassigned)
}

type options struct {
	rules []ledger.CapacityRule
}

// Option configures an assignment run
type Option func(*options)

// WithCapacityRules applies per-week capacity overrides to the run's ledger
func WithCapacityRules(rules ...ledger.CapacityRule) Option {
	return func(o *options) {
		o.rules = append(o.rules, rules...)
	}
}

// Assign places each demand item on a supplier without exceeding any supplier's
// weekly capacity.
//
// Items are processed in input order, which is their priority order. For each item
// the candidate start weeks are requested-early .. requested+late in ascending order,
// unless a sibling with the same ID has already fixed the start week, in which case
// that single week is the only candidate. For each candidate week, suppliers are
// tried in list order and the first one with headroom in every active week wins.
//
// An item that fits nowhere is left unassigned and processing continues with the
// next item. Input slices are never modified, and every call starts from an empty
// ledger, so running Assign twice on the same input gives the same result.
//
// Returns an error only for structurally invalid input.
func Assign(items []model.DemandItem, suppliers []model.Supplier, opts ...Option) (*Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := validateInput(items, suppliers); err != nil {
		return nil, err
	}

	result := &Result{
		Items:      model.CloneItems(items),
		Ledger:     ledger.New(suppliers, o.rules...),
		Unassigned: []model.ItemKey{},
		Outcomes:   make([]Outcome, 0, len(items)),
	}

	// Start weeks fixed by the first resolved sibling of each ID
	fixedStarts := make(map[string]calendar.Week)

	for i := range result.Items {
		item := &result.Items[i]
		item.Unassign()

		outcome := placeItem(item, suppliers, result.Ledger, fixedStarts)
		if outcome.Assigned {
			if _, fixed := fixedStarts[item.ID]; !fixed {
				fixedStarts[item.ID] = item.Start
			}
		} else {
			result.Unassigned = append(result.Unassigned, item.Key())
		}

		result.Outcomes = append(result.Outcomes, outcome)
	}

	return result, nil
}

// placeItem searches the item's candidate weeks and the suppliers in order,
// reserving capacity on the first fit
func placeItem(item *model.DemandItem, suppliers []model.Supplier, l *ledger.Ledger, fixedStarts map[string]calendar.Week) Outcome {
	outcome := Outcome{Key: item.Key()}

	candidates := candidateWeeks(*item, fixedStarts)
	_, outcome.SiblingFixed = fixedStarts[item.ID]

	for _, start := range candidates {
		end := calendar.AddWeeks(start, item.DurationWeeks-1)
		activeWeeks := calendar.RangeInclusive(start, end)

		for _, supplier := range suppliers {
			outcome.CandidatesTried++

			if !l.Headroom(supplier.ID, activeWeeks, item.Amount) {
				continue
			}

			l.Reserve(supplier.ID, activeWeeks, item.Amount)
			item.SetStart(start)
			item.SupplierID = supplier.ID

			outcome.Assigned = true
			outcome.Start = start
			outcome.SupplierID = supplier.ID
			outcome.ShiftWeeks = calendar.Between(item.RequestedWeek, start)
			return outcome
		}
	}

	return outcome
}

// candidateWeeks returns the start weeks to try, in the order they must be tried.
// The traversal runs from the most-early shift through the requested week to the
// latest shift; it is not ordered by distance from the requested week.
func candidateWeeks(item model.DemandItem, fixedStarts map[string]calendar.Week) []calendar.Week {
	if fixed, ok := fixedStarts[item.ID]; ok {
		return []calendar.Week{fixed}
	}

	candidates := make([]calendar.Week, 0, item.EarlyShiftMax+item.LateShiftMax+1)
	for shift := -item.EarlyShiftMax; shift <= item.LateShiftMax; shift++ {
		candidates = append(candidates, calendar.AddWeeks(item.RequestedWeek, shift))
	}
	return candidates
}

func validateInput(items []model.DemandItem, suppliers []model.Supplier) error {
	seen := make(map[string]bool, len(suppliers))
	for i, s := range suppliers {
		if s.ID == "" {
			return fmt.Errorf("supplier %d has an empty id", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate supplier id %q", s.ID)
		}
		if s.Capacity < 0 {
			return fmt.Errorf("supplier %q has negative capacity %d", s.ID, s.Capacity)
		}
		seen[s.ID] = true
	}

	for i, item := range items {
		if item.RequestedWeek.IsZero() {
			return fmt.Errorf("item %d (%s) has no requested week", i, item.Key())
		}
		if item.DurationWeeks < 1 {
			return fmt.Errorf("item %d (%s) has duration %d, must be at least 1", i, item.Key(), item.DurationWeeks)
		}
		if item.EarlyShiftMax < 0 || item.LateShiftMax < 0 {
			return fmt.Errorf("item %d (%s) has negative shift limits (%d, %d)", i, item.Key(), item.EarlyShiftMax, item.LateShiftMax)
		}
		if item.EarlyShiftMax > model.MaxShiftWeeks || item.LateShiftMax > model.MaxShiftWeeks {
			return fmt.Errorf("item %d (%s) has shift limits (%d, %d) above %d weeks", i, item.Key(), item.EarlyShiftMax, item.LateShiftMax, model.MaxShiftWeeks)
		}
		if item.Amount < 0 {
			return fmt.Errorf("item %d (%s) has negative amount %d", i, item.Key(), item.Amount)
		}
	}

	return nil
}
