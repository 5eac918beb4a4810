package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jakechorley/supply-board/pkg/core/model"
)

var ErrPlanNotFound = errors.New("plan not found")

// Plan is an immutable snapshot of the board. Every change to a board is stored as
// a new plan whose ParentID points at the plan it was derived from.
type Plan struct {
	ID        string
	ParentID  string
	Note      string
	CreatedAt time.Time

	Items         []model.DemandItem
	Suppliers     []model.Supplier
	SupplierEdges []model.DistanceEdge
	StopEdges     []model.DistanceEdge
}

// PlanSummary is the listing view of a plan
type PlanSummary struct {
	ID              string
	ParentID        string
	Note            string
	CreatedAt       time.Time
	ItemCount       int
	UnassignedCount int
}

// NewPlan creates a plan with a fresh id. parentID is empty for a generated plan.
func NewPlan(parentID, note string, items []model.DemandItem, suppliers []model.Supplier, supplierEdges, stopEdges []model.DistanceEdge) *Plan {
	return &Plan{
		ID:            uuid.New().String(),
		ParentID:      parentID,
		Note:          note,
		CreatedAt:     time.Now().UTC(),
		Items:         model.CloneItems(items),
		Suppliers:     model.CloneSuppliers(suppliers),
		SupplierEdges: supplierEdges,
		StopEdges:     stopEdges,
	}
}

// Summary returns the listing view of the plan
func (p *Plan) Summary() PlanSummary {
	unassigned := 0
	for _, item := range p.Items {
		if !item.IsAssigned() {
			unassigned++
		}
	}
	return PlanSummary{
		ID:              p.ID,
		ParentID:        p.ParentID,
		Note:            p.Note,
		CreatedAt:       p.CreatedAt,
		ItemCount:       len(p.Items),
		UnassignedCount: unassigned,
	}
}

// payload is the stored form of a plan's board data
type payload struct {
	Items         []model.DemandItem   `json:"items"`
	Suppliers     []model.Supplier     `json:"suppliers"`
	SupplierEdges []model.DistanceEdge `json:"supplierEdges"`
	StopEdges     []model.DistanceEdge `json:"stopEdges"`
}

// MarshalPayload encodes the board data of a plan for storage
func (p *Plan) MarshalPayload() ([]byte, error) {
	data, err := json.Marshal(payload{
		Items:         p.Items,
		Suppliers:     p.Suppliers,
		SupplierEdges: p.SupplierEdges,
		StopEdges:     p.StopEdges,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode plan %s: %w", p.ID, err)
	}
	return data, nil
}

// UnmarshalPayload restores the board data of a plan from storage
func (p *Plan) UnmarshalPayload(data []byte) error {
	var decoded payload
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("failed to decode plan %s: %w", p.ID, err)
	}
	p.Items = decoded.Items
	p.Suppliers = decoded.Suppliers
	p.SupplierEdges = decoded.SupplierEdges
	p.StopEdges = decoded.StopEdges
	return nil
}
