package config

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jakechorley/supply-board/pkg/core/calendar"
	"github.com/jakechorley/supply-board/pkg/core/ledger"
	"github.com/jakechorley/supply-board/pkg/core/model"
	"github.com/jakechorley/supply-board/pkg/core/packer"
	"github.com/jakechorley/supply-board/pkg/core/report"
	"github.com/jakechorley/supply-board/pkg/dataio"
)

// Durations returns the configured duration per product type, falling back to the
// standard durations for product types the config doesn't mention
func (c *Config) Durations() dataio.Durations {
	durations := dataio.DefaultDurations()
	for productType, weeks := range c.Variants {
		durations[model.ProductType(productType)] = weeks
	}
	return durations
}

// LedgerRules builds the capacity rules applied during assignment and reporting
func (c *Config) LedgerRules() ([]ledger.CapacityRule, error) {
	rules := make([]ledger.CapacityRule, 0, len(c.CapacityRules))
	for i, r := range c.CapacityRules {
		var anchor calendar.Week
		if r.Anchor != "" {
			var err error
			if anchor, err = calendar.Parse(r.Anchor); err != nil {
				return nil, fmt.Errorf("invalid anchor in capacityRules[%d]: %w", i, err)
			}
		}

		rule, err := ledger.NewCapacityRule(r.Supplier, r.RRule, r.Capacity, anchor)
		if err != nil {
			return nil, fmt.Errorf("invalid capacityRules[%d]: %w", i, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Geometry returns the packing geometry with defaults for unset sizes
func (c *Config) Geometry() packer.Geometry {
	geometry := packer.DefaultGeometry()
	if c.Board.WeekWidth > 0 {
		geometry.WeekWidth = c.Board.WeekWidth
	}
	if c.Board.UnitHeight > 0 {
		geometry.UnitHeight = c.Board.UnitHeight
	}
	geometry.ExtendBefore = c.Board.ExtendBefore
	geometry.ExtendAfter = c.Board.ExtendAfter
	return geometry
}

// PackOptions returns the packer options. Without packPasses the packer runs its default two passes.
func (c *Config) PackOptions() []packer.Option {
	if c.Board.PackPasses == 0 {
		return nil
	}
	return []packer.Option{packer.WithMaxPasses(c.Board.PackPasses)}
}

// ReportOptions returns the transport cost model and the capacity rules. Unset costs are zero.
func (c *Config) ReportOptions() (report.Options, error) {
	rules, err := c.LedgerRules()
	if err != nil {
		return report.Options{}, err
	}

	opts := report.Options{
		CostPerKm:     decimal.Zero,
		CostPerMinute: decimal.Zero,
		MaxStops:      c.Transport.MaxStops,
		Rules:         rules,
	}

	if c.Transport.CostPerKm != "" {
		if opts.CostPerKm, err = decimal.NewFromString(c.Transport.CostPerKm); err != nil {
			return report.Options{}, fmt.Errorf("invalid transport.costPerKm: %w", err)
		}
	}
	if c.Transport.CostPerMinute != "" {
		if opts.CostPerMinute, err = decimal.NewFromString(c.Transport.CostPerMinute); err != nil {
			return report.Options{}, fmt.Errorf("invalid transport.costPerMinute: %w", err)
		}
	}
	return opts, nil
}
