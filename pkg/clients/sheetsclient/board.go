package sheetsclient

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/jakechorley/supply-board/internal/config"
	"github.com/jakechorley/supply-board/pkg/core/model"
	"github.com/jakechorley/supply-board/pkg/dataio"
)

// sheetAPI is the part of Client the board source and publisher need
type sheetAPI interface {
	GetValues(ctx context.Context, spreadsheetID, sheetRange string) ([][]interface{}, error)
	AppendRows(ctx context.Context, spreadsheetID, sheetRange string, values [][]interface{}) error
	SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error)
	CreateSheet(ctx context.Context, spreadsheetID, sheetTitle string) (int64, error)
}

// Source reads board inputs from the configured spreadsheet tabs
type Source struct {
	api sheetAPI
	cfg config.Sheets
}

// NewSource creates a board source reading the tabs named in cfg
func NewSource(client *Client, cfg config.Sheets) *Source {
	return &Source{api: client, cfg: cfg}
}

// Load reads and parses the suppliers, demand and distance tabs. The distance tabs are optional.
func (s *Source) Load(ctx context.Context, durations dataio.Durations) (*dataio.Inputs, error) {
	tabs := []string{s.cfg.SuppliersTab, s.cfg.DemandTab, s.cfg.SupplierDistancesTab, s.cfg.StopDistancesTab}
	tables := make([][][]string, len(tabs))

	for i, tab := range tabs {
		if tab == "" {
			continue
		}
		values, err := s.api.GetValues(ctx, s.cfg.SpreadsheetID, tab)
		if err != nil {
			return nil, fmt.Errorf("failed to read tab %q: %w", tab, err)
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("tab %q is empty", tab)
		}
		tables[i] = toStrings(values)
	}

	return dataio.ParseInputs(tables[0], tables[1], tables[2], tables[3], durations)
}

// toStrings converts sheet cells to strings. Unformatted numbers arrive as float64.
func toStrings(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, cell := range row {
			switch v := cell.(type) {
			case nil:
			case string:
				cells[j] = v
			case float64:
				cells[j] = strconv.FormatFloat(v, 'f', -1, 64)
			default:
				cells[j] = fmt.Sprint(v)
			}
		}
		rows[i] = cells
	}
	return rows
}

// PublishPlan writes the plan into the tab named title, creating the tab with a
// header row when it doesn't exist yet. Rows are appended below existing content.
// Returns the number of plan rows written.
func (c *Client) PublishPlan(ctx context.Context, spreadsheetID, title string, items []model.DemandItem, suppliers []model.Supplier) (int, error) {
	return publishPlan(ctx, c, spreadsheetID, title, items, suppliers)
}

func publishPlan(ctx context.Context, api sheetAPI, spreadsheetID, title string, items []model.DemandItem, suppliers []model.Supplier) (int, error) {
	titles, err := api.SheetTitles(ctx, spreadsheetID)
	if err != nil {
		return 0, err
	}

	var values [][]interface{}
	if !slices.Contains(titles, title) {
		if _, err := api.CreateSheet(ctx, spreadsheetID, title); err != nil {
			return 0, fmt.Errorf("failed to create tab: %w", err)
		}
		values = append(values, toCells(dataio.PlanColumns))
	}

	rows := dataio.PlanRows(items, suppliers)
	for _, row := range rows {
		values = append(values, toCells(row))
	}

	if err := api.AppendRows(ctx, spreadsheetID, title, values); err != nil {
		return 0, fmt.Errorf("failed to write plan: %w", err)
	}
	return len(rows), nil
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}
