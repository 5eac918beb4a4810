package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the board
	Registry = prometheus.NewRegistry()

	// ItemsPlaced counts demand items by assignment outcome
	ItemsPlaced = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "supply_board_items_total", Help: "Demand items processed by the assigner, by outcome."},
		[]string{"outcome"},
	)
	// AssignSeconds records how long an assignment run takes
	AssignSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "supply_board_assign_duration_seconds", Help: "Assignment run duration in seconds.", Buckets: prometheus.DefBuckets},
	)

	// RoutePermutations counts complete stop orders evaluated by the route solver
	RoutePermutations = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "supply_board_route_permutations_total", Help: "Complete stop orders evaluated by the route solver."},
	)
	// RouteSeconds records route solve durations by outcome
	RouteSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "supply_board_route_duration_seconds", Help: "Route solve duration in seconds.", Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 5}},
		[]string{"status"},
	)

	// SupplierPeak is the latest packed peak usage per supplier
	SupplierPeak = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "supply_board_supplier_peak_usage", Help: "Peak weekly usage of a supplier in the latest packed plan."},
		[]string{"supplier"},
	)
	// SupplierCapacity is the declared capacity per supplier
	SupplierCapacity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "supply_board_supplier_capacity", Help: "Declared weekly capacity of a supplier."},
		[]string{"supplier"},
	)

	// PlansStored counts plans written to the store by operation
	PlansStored = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "supply_board_plans_stored_total", Help: "Plans written to the store, by operation."},
		[]string{"operation"},
	)
)

var regOnce sync.Once

// RegisterDefault registers the board collectors and the Go/process collectors on Registry
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(ItemsPlaced)
		Registry.MustRegister(AssignSeconds)
		Registry.MustRegister(RoutePermutations)
		Registry.MustRegister(RouteSeconds)
		Registry.MustRegister(SupplierPeak)
		Registry.MustRegister(SupplierCapacity)
		Registry.MustRegister(PlansStored)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// WriteToTextfile writes every registered metric to path in the text exposition
// format, for pickup by a node exporter textfile collector
func WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
