package dataio

import (
	"context"
	"fmt"

	"github.com/jakechorley/supply-board/pkg/core/model"
)

// Inputs is everything a board is generated from
type Inputs struct {
	Suppliers     []model.Supplier
	Items         []model.DemandItem
	SupplierEdges []model.DistanceEdge
	StopEdges     []model.DistanceEdge
}

// ParseInputs parses the four source tables. The distance tables are optional,
// a nil table means no routes are known.
func ParseInputs(suppliers, demand, supplierDistances, stopDistances [][]string, durations Durations) (*Inputs, error) {
	var in Inputs
	var err error

	if in.Suppliers, err = ParseSuppliers(suppliers); err != nil {
		return nil, err
	}
	if in.Items, err = ParseDemand(demand, durations); err != nil {
		return nil, err
	}
	if supplierDistances != nil {
		if in.SupplierEdges, err = ParseSupplierDistances(supplierDistances); err != nil {
			return nil, err
		}
	}
	if stopDistances != nil {
		if in.StopEdges, err = ParseStopDistances(stopDistances); err != nil {
			return nil, err
		}
	}
	return &in, nil
}

// CSVFiles reads inputs from local CSV files. Distance files are optional.
type CSVFiles struct {
	Suppliers         string
	Demand            string
	SupplierDistances string
	StopDistances     string
}

// Load reads and parses every configured file
func (f CSVFiles) Load(ctx context.Context, durations Durations) (*Inputs, error) {
	tables := make([][][]string, 4)
	for i, path := range []string{f.Suppliers, f.Demand, f.SupplierDistances, f.StopDistances} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if path == "" {
			continue
		}
		records, err := ReadCSVFile(path)
		if err != nil {
			return nil, err
		}
		tables[i] = records
	}

	if tables[0] == nil || tables[1] == nil {
		return nil, fmt.Errorf("suppliers and demand files are required")
	}
	return ParseInputs(tables[0], tables[1], tables[2], tables[3], durations)
}
