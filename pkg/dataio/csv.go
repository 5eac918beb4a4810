package dataio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/jakechorley/supply-board/pkg/core/calendar"
	"github.com/jakechorley/supply-board/pkg/core/model"
)

// PlanColumns is the header of the exported plan
var PlanColumns = []string{
	"producer_id",
	"einstallung_wish_date",
	"einstallung_real_date",
	"producer_name",
	"demand_female_cap",
	"demand_male_cap",
	"supplier_id",
	"supplier_name",
	"supplier_cap",
}

// ReadCSV reads every record from r. Rows may have differing lengths.
func ReadCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return records, nil
}

// ReadCSVFile reads every record from the file at path
func ReadCSVFile(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	records, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// PlanRows returns one row per female item in PlanColumns order, sorted by requested
// week. The male amount comes from the item's male sibling when there is one.
func PlanRows(items []model.DemandItem, suppliers []model.Supplier) [][]string {
	byID := make(map[string]model.Supplier, len(suppliers))
	for _, s := range suppliers {
		if _, exists := byID[s.ID]; !exists {
			byID[s.ID] = s
		}
	}

	maleAmounts := make(map[string]int)
	var females []model.DemandItem
	for _, item := range items {
		switch item.ProductType {
		case model.ProductMale:
			maleAmounts[item.ID] = item.Amount
		case model.ProductFemale:
			females = append(females, item)
		}
	}
	slices.SortStableFunc(females, func(a, b model.DemandItem) int {
		return calendar.Compare(a.RequestedWeek, b.RequestedWeek)
	})

	rows := make([][]string, 0, len(females))
	for _, item := range females {
		supplier, known := byID[item.SupplierID]

		supplierName, supplierCap := "", ""
		if known {
			supplierName = supplier.Name
			supplierCap = strconv.Itoa(supplier.Capacity)
		}
		male := ""
		if amount, ok := maleAmounts[item.ID]; ok {
			male = strconv.Itoa(amount)
		}

		rows = append(rows, []string{
			item.Name,
			item.RequestedWeek.String(),
			item.Start.String(),
			item.Name,
			strconv.Itoa(item.Amount),
			male,
			item.SupplierID,
			supplierName,
			supplierCap,
		})
	}
	return rows
}

// WritePlanCSV writes the plan header followed by PlanRows
func WritePlanCSV(w io.Writer, items []model.DemandItem, suppliers []model.Supplier) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(PlanColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := writer.WriteAll(PlanRows(items, suppliers)); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}
	return nil
}
