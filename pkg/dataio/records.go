package dataio

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/jakechorley/supply-board/pkg/core/calendar"
	"github.com/jakechorley/supply-board/pkg/core/model"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Durations maps each product type to its fixed duration in weeks
type Durations map[model.ProductType]int

// DefaultDurations returns the standard production durations
func DefaultDurations() Durations {
	return Durations{
		model.ProductFemale: 18,
		model.ProductMale:   10,
	}
}

func (d Durations) lookup(productType model.ProductType) (int, error) {
	weeks, ok := d[productType]
	if !ok || weeks < 1 {
		return 0, fmt.Errorf("no duration configured for product type %q", productType)
	}
	return weeks, nil
}

// SupplierRecord is one row of the suppliers table
type SupplierRecord struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity" validate:"gte=0"`
}

// DemandRecord is one row of the demand table
type DemandRecord struct {
	ID                 string `validate:"required"`
	Amount             int    `validate:"gte=0"`
	Date               string `validate:"required"`
	MaxShiftWeeksEarly int    `validate:"gte=0,lte=520"`
	MaxShiftWeeksLate  int    `validate:"gte=0,lte=520"`
	ProductType        string `validate:"required,oneof=F M"`
}

// DistanceRecord is one row of either distance table
type DistanceRecord struct {
	FromID          string  `validate:"required"`
	ToID            string  `validate:"required"`
	DistanceKm      float64 `validate:"gte=0"`
	DistanceMinutes float64 `validate:"gte=0"`
}

func (r SupplierRecord) toSupplier() (model.Supplier, error) {
	if err := validate.Struct(r); err != nil {
		return model.Supplier{}, err
	}
	name := r.Name
	if name == "" {
		name = r.ID
	}
	return model.Supplier{ID: r.ID, Name: name, Capacity: r.Capacity}, nil
}

// toItem converts a demand row into a demand item. The item id combines the
// producer id and the requested week so repeated orders from one producer stay apart.
func (r DemandRecord) toItem(durations Durations) (model.DemandItem, error) {
	if err := validate.Struct(r); err != nil {
		return model.DemandItem{}, err
	}

	requested, err := calendar.Parse(r.Date)
	if err != nil {
		return model.DemandItem{}, err
	}

	productType := model.ProductType(r.ProductType)
	duration, err := durations.lookup(productType)
	if err != nil {
		return model.DemandItem{}, err
	}

	return model.DemandItem{
		ID:            fmt.Sprintf("%s_%s", r.ID, requested),
		Name:          r.ID,
		ProductType:   productType,
		Amount:        r.Amount,
		RequestedWeek: requested,
		DurationWeeks: duration,
		EarlyShiftMax: r.MaxShiftWeeksEarly,
		LateShiftMax:  r.MaxShiftWeeksLate,
	}, nil
}

func (r DistanceRecord) toEdge(kind model.EdgeKind) (model.DistanceEdge, error) {
	if err := validate.Struct(r); err != nil {
		return model.DistanceEdge{}, err
	}
	return model.DistanceEdge{
		Kind:            kind,
		FromID:          r.FromID,
		ToID:            r.ToID,
		DistanceKm:      r.DistanceKm,
		DistanceMinutes: r.DistanceMinutes,
	}, nil
}
