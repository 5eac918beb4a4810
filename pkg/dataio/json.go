package dataio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jakechorley/supply-board/pkg/core/calendar"
	"github.com/jakechorley/supply-board/pkg/core/model"
)

// unassignedMarker is written by older boards in place of an empty supplier id
const unassignedMarker = "unassigned"

// EventRecord is a demand item as stored in a board export
type EventRecord struct {
	ID                 string  `json:"id" validate:"required"`
	Name               string  `json:"name"`
	StartWeek          string  `json:"startWeek"`
	EndWeek            string  `json:"endWeek"`
	Date               string  `json:"date" validate:"required"`
	Amount             int     `json:"amount" validate:"gte=0"`
	SupplierID         string  `json:"supplierId"`
	LeftPosition       float64 `json:"leftPosition"`
	TopPosition        float64 `json:"topPosition"`
	MaxShiftWeeksEarly int     `json:"maxShiftWeeksEarly" validate:"gte=0,lte=520"`
	MaxShiftWeeksLate  int     `json:"maxShiftWeeksLate" validate:"gte=0,lte=520"`
	ProductType        string  `json:"productType" validate:"omitempty,oneof=F M"`
	StackOffsetPx      float64 `json:"stackOffsetPx"`
	DurationWeeks      int     `json:"durationWeeks,omitempty" validate:"gte=0"`
}

// BoardRecord is the exported board: every event and every supplier
type BoardRecord struct {
	Events    []EventRecord    `json:"events" validate:"dive"`
	Suppliers []SupplierRecord `json:"suppliers" validate:"dive"`
}

// Board is a decoded board
type Board struct {
	Items     []model.DemandItem
	Suppliers []model.Supplier
}

// DecodeBoard reads a board export. End weeks are derived from the start week and
// the duration, never taken from the file. Events without a duration get the
// configured duration of their product type.
func DecodeBoard(r io.Reader, durations Durations) (*Board, error) {
	var record BoardRecord
	if err := json.NewDecoder(r).Decode(&record); err != nil {
		return nil, fmt.Errorf("failed to decode board: %w", err)
	}
	if err := validate.Struct(record); err != nil {
		return nil, fmt.Errorf("board validation failed: %w", err)
	}

	board := &Board{
		Items:     make([]model.DemandItem, 0, len(record.Events)),
		Suppliers: make([]model.Supplier, 0, len(record.Suppliers)),
	}

	for i, s := range record.Suppliers {
		supplier, err := s.toSupplier()
		if err != nil {
			return nil, fmt.Errorf("suppliers[%d]: %w", i, err)
		}
		board.Suppliers = append(board.Suppliers, supplier)
	}

	for i, e := range record.Events {
		item, err := e.toItem(durations)
		if err != nil {
			return nil, fmt.Errorf("events[%d] (%s): %w", i, e.ID, err)
		}
		board.Items = append(board.Items, item)
	}

	return board, nil
}

func (e EventRecord) toItem(durations Durations) (model.DemandItem, error) {
	productType := model.ProductType(e.ProductType)
	if productType == "" {
		productType = model.ProductFemale
	}

	requested, err := calendar.Parse(e.Date)
	if err != nil {
		return model.DemandItem{}, err
	}

	duration := e.DurationWeeks
	if duration == 0 {
		if duration, err = durations.lookup(productType); err != nil {
			return model.DemandItem{}, err
		}
	}

	item := model.DemandItem{
		ID:            e.ID,
		Name:          e.Name,
		ProductType:   productType,
		Amount:        e.Amount,
		RequestedWeek: requested,
		DurationWeeks: duration,
		EarlyShiftMax: e.MaxShiftWeeksEarly,
		LateShiftMax:  e.MaxShiftWeeksLate,
		StackOffset:   e.StackOffsetPx,
		Top:           e.TopPosition,
		Left:          e.LeftPosition,
	}

	if e.SupplierID != unassignedMarker {
		item.SupplierID = e.SupplierID
	}
	if e.StartWeek != "" && item.SupplierID != "" {
		start, err := calendar.Parse(e.StartWeek)
		if err != nil {
			return model.DemandItem{}, err
		}
		item.SetStart(start)
	}
	if item.Start.IsZero() {
		item.Unassign()
	}

	return item, nil
}

// EncodeBoard writes items and suppliers as an indented board export
func EncodeBoard(w io.Writer, items []model.DemandItem, suppliers []model.Supplier) error {
	record := BoardRecord{
		Events:    make([]EventRecord, 0, len(items)),
		Suppliers: make([]SupplierRecord, 0, len(suppliers)),
	}

	for _, item := range items {
		record.Events = append(record.Events, EventRecord{
			ID:                 item.ID,
			Name:               item.Name,
			StartWeek:          item.Start.String(),
			EndWeek:            item.End.String(),
			Date:               item.RequestedWeek.String(),
			Amount:             item.Amount,
			SupplierID:         item.SupplierID,
			LeftPosition:       item.Left,
			TopPosition:        item.Top,
			MaxShiftWeeksEarly: item.EarlyShiftMax,
			MaxShiftWeeksLate:  item.LateShiftMax,
			ProductType:        string(item.ProductType),
			StackOffsetPx:      item.StackOffset,
			DurationWeeks:      item.DurationWeeks,
		})
	}
	for _, s := range suppliers {
		record.Suppliers = append(record.Suppliers, SupplierRecord{ID: s.ID, Name: s.Name, Capacity: s.Capacity})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(record); err != nil {
		return fmt.Errorf("failed to encode board: %w", err)
	}
	return nil
}
