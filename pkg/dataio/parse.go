package dataio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jakechorley/supply-board/pkg/core/model"
)

// Expected column names for each table
var (
	SupplierColumns         = []string{"id", "name", "capacity"}
	DemandColumns           = []string{"id", "amount", "date", "max_shift_weeks_early", "max_shift_weeks_late", "product_type"}
	SupplierDistanceColumns = []string{"breeder_id", "producer_id", "distance_km", "distance_minute"}
	StopDistanceColumns     = []string{"producer_id_from", "producer_id_too", "distance_km", "distance_minute"}
)

// table gives header-indexed access to the rows of a sheet or csv file
type table struct {
	name    string
	indexes map[string]int
	rows    [][]string
}

// newTable builds a table from raw rows whose first row is the header.
// Every required column must appear in the header. Optional columns are read when
// present and extra columns are ignored.
func newTable(name string, raw [][]string, required []string, optional ...string) (*table, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("%s: no header row found", name)
	}

	indexes := make(map[string]int, len(required)+len(optional))
	header := raw[0]
	for _, field := range required {
		index := headerIndex(header, field)
		if index == -1 {
			return nil, fmt.Errorf("%s: missing required field in header: %s", name, field)
		}
		indexes[field] = index
	}
	for _, field := range optional {
		if index := headerIndex(header, field); index >= 0 {
			indexes[field] = index
		}
	}

	return &table{name: name, indexes: indexes, rows: raw[1:]}, nil
}

// each calls fn for every non-empty data row. Errors are prefixed with the
// 1-based row number, counting the header.
func (t *table) each(fn func(get func(field string) string) error) error {
	for i, row := range t.rows {
		if isBlank(row) {
			continue
		}
		get := func(field string) string {
			index, ok := t.indexes[field]
			if !ok || index >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[index])
		}
		if err := fn(get); err != nil {
			return fmt.Errorf("%s row %d: %w", t.name, i+2, err)
		}
	}
	return nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseInt(field, value string) (int, error) {
	if value == "" {
		return 0, fmt.Errorf("missing %s", field)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	return n, nil
}

// parseShift reads a shift limit, where an empty cell means no shift
func parseShift(field, value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return parseInt(field, value)
}

func parseFloat(field, value string) (float64, error) {
	if value == "" {
		return 0, fmt.Errorf("missing %s", field)
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	return f, nil
}

// ParseSuppliers converts suppliers rows into suppliers. A missing name falls back to the id.
func ParseSuppliers(raw [][]string) ([]model.Supplier, error) {
	t, err := newTable("suppliers", raw, []string{"id", "capacity"}, "name")
	if err != nil {
		return nil, err
	}

	suppliers := make([]model.Supplier, 0, len(t.rows))
	seen := make(map[string]bool)
	err = t.each(func(get func(string) string) error {
		capacity, err := parseInt("capacity", get("capacity"))
		if err != nil {
			return err
		}
		s, err := SupplierRecord{ID: get("id"), Name: get("name"), Capacity: capacity}.toSupplier()
		if err != nil {
			return err
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate supplier id %q", s.ID)
		}
		seen[s.ID] = true
		suppliers = append(suppliers, s)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return suppliers, nil
}

// ParseDemand converts demand rows into unassigned demand items
func ParseDemand(raw [][]string, durations Durations) ([]model.DemandItem, error) {
	t, err := newTable("demand", raw, DemandColumns)
	if err != nil {
		return nil, err
	}

	items := make([]model.DemandItem, 0, len(t.rows))
	seen := make(map[model.ItemKey]bool)
	err = t.each(func(get func(string) string) error {
		amount, err := parseInt("amount", get("amount"))
		if err != nil {
			return err
		}
		early, err := parseShift("max_shift_weeks_early", get("max_shift_weeks_early"))
		if err != nil {
			return err
		}
		late, err := parseShift("max_shift_weeks_late", get("max_shift_weeks_late"))
		if err != nil {
			return err
		}

		item, err := DemandRecord{
			ID:                 get("id"),
			Amount:             amount,
			Date:               get("date"),
			MaxShiftWeeksEarly: early,
			MaxShiftWeeksLate:  late,
			ProductType:        strings.ToUpper(get("product_type")),
		}.toItem(durations)
		if err != nil {
			return err
		}
		if seen[item.Key()] {
			return fmt.Errorf("duplicate demand %s", item.Key())
		}
		seen[item.Key()] = true
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}

// ParseSupplierDistances converts supplier→producer distance rows into edges
func ParseSupplierDistances(raw [][]string) ([]model.DistanceEdge, error) {
	return parseDistances("supplier distances", raw, SupplierDistanceColumns, model.EdgeSupplierStop)
}

// ParseStopDistances converts producer→producer distance rows into edges
func ParseStopDistances(raw [][]string) ([]model.DistanceEdge, error) {
	return parseDistances("stop distances", raw, StopDistanceColumns, model.EdgeStopStop)
}

func parseDistances(name string, raw [][]string, columns []string, kind model.EdgeKind) ([]model.DistanceEdge, error) {
	t, err := newTable(name, raw, columns)
	if err != nil {
		return nil, err
	}
	from, to, km, minutes := columns[0], columns[1], columns[2], columns[3]

	edges := make([]model.DistanceEdge, 0, len(t.rows))
	err = t.each(func(get func(string) string) error {
		distanceKm, err := parseFloat(km, get(km))
		if err != nil {
			return err
		}
		distanceMinutes, err := parseFloat(minutes, get(minutes))
		if err != nil {
			return err
		}

		edge, err := DistanceRecord{
			FromID:          get(from),
			ToID:            get(to),
			DistanceKm:      distanceKm,
			DistanceMinutes: distanceMinutes,
		}.toEdge(kind)
		if err != nil {
			return err
		}
		edges = append(edges, edge)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return edges, nil
}

func headerIndex(header []string, field string) int {
	for i, cell := range header {
		cell = strings.TrimPrefix(cell, "\ufeff")
		if strings.EqualFold(strings.TrimSpace(cell), field) {
			return i
		}
	}
	return -1
}
