package ledger

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/jakechorley/supply-board/pkg/core/calendar"
)

// CapacityRule replaces a supplier's declared capacity on the weeks matched by an RRULE,
// e.g. "FREQ=YEARLY;BYWEEKNO=52,1" for a yearly shutdown over the holidays.
//
// A week matches when the rule has an occurrence between its Monday and Sunday.
// The rule's DTSTART is the anchor week's Monday, or the Monday of week 1 of the
// previous year when no anchor is given.
type CapacityRule struct {
	SupplierID string // empty applies to all suppliers
	Capacity   int
	RRule      string

	option rrule.ROption
	anchor calendar.Week
}

// NewCapacityRule parses rule and returns a capacity rule
func NewCapacityRule(supplierID, rule string, capacity int, anchor calendar.Week) (CapacityRule, error) {
	if capacity < 0 {
		return CapacityRule{}, fmt.Errorf("capacity must not be negative, got %d", capacity)
	}

	option, err := rrule.StrToROption(rule)
	if err != nil {
		return CapacityRule{}, fmt.Errorf("failed to parse rrule %q: %w", rule, err)
	}

	// Reject rules that can't be built before they reach the ledger
	if _, err := rrule.NewRRule(*option); err != nil {
		return CapacityRule{}, fmt.Errorf("invalid rrule %q: %w", rule, err)
	}

	return CapacityRule{
		SupplierID: supplierID,
		Capacity:   capacity,
		RRule:      rule,
		option:     *option,
		anchor:     anchor,
	}, nil
}

// Matches reports whether the rule applies to the supplier in the given week
func (r CapacityRule) Matches(supplierID string, week calendar.Week) bool {
	if r.SupplierID != "" && r.SupplierID != supplierID {
		return false
	}

	anchor := r.anchor
	if anchor.IsZero() {
		anchor = calendar.Week{Year: week.Year - 1, Number: 1}
	}
	if anchor.After(week) {
		return false
	}

	option := r.option
	option.Dtstart = anchor.Monday()
	rule, err := rrule.NewRRule(option)
	if err != nil {
		return false
	}

	monday := week.Monday()
	sunday := monday.Add(7*24*time.Hour - time.Second)
	return len(rule.Between(monday, sunday, true)) > 0
}
