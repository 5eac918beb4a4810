package services

import (
	"context"
	"errors"
	"sort"

	"github.com/jakechorley/supply-board/internal/config"
	"github.com/jakechorley/supply-board/pkg/core/calendar"
	"github.com/jakechorley/supply-board/pkg/core/model"
	"github.com/jakechorley/supply-board/pkg/dataio"
	"github.com/jakechorley/supply-board/pkg/db"
)

// mockStore implements a test double for db.PlanStore
type mockStore struct {
	plans     map[string]*db.Plan
	inserted  []*db.Plan
	getErr    error
	insertErr error
	listErr   error
}

func newMockStore(plans ...*db.Plan) *mockStore {
	m := &mockStore{plans: make(map[string]*db.Plan)}
	for _, p := range plans {
		m.plans[p.ID] = p
	}
	return m
}

func (m *mockStore) InsertPlan(ctx context.Context, plan *db.Plan) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.plans[plan.ID] = plan
	m.inserted = append(m.inserted, plan)
	return nil
}

func (m *mockStore) GetPlan(ctx context.Context, id string) (*db.Plan, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	plan, ok := m.plans[id]
	if !ok {
		return nil, db.ErrPlanNotFound
	}
	return plan, nil
}

func (m *mockStore) GetLatestPlan(ctx context.Context) (*db.Plan, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var latest *db.Plan
	for _, p := range m.plans {
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, db.ErrPlanNotFound
	}
	return latest, nil
}

func (m *mockStore) ListPlans(ctx context.Context) ([]db.PlanSummary, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	summaries := make([]db.PlanSummary, 0, len(m.plans))
	for _, p := range m.plans {
		summaries = append(summaries, p.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

func (m *mockStore) Close() {}

// fakeSource returns fixed inputs
type fakeSource struct {
	inputs *dataio.Inputs
	err    error
}

func (f *fakeSource) Load(ctx context.Context, durations dataio.Durations) (*dataio.Inputs, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.inputs, nil
}

var errBoom = errors.New("boom")

func testConfig() *config.Config {
	return &config.Config{
		Sources:  &config.Sources{Suppliers: "suppliers.csv", Demand: "demand.csv"},
		Database: config.Database{Driver: "sqlite", DSN: ":memory:"},
	}
}

func demand(id, name string, productType model.ProductType, amount int, requested string, duration int) model.DemandItem {
	return model.DemandItem{
		ID:            id,
		Name:          name,
		ProductType:   productType,
		Amount:        amount,
		RequestedWeek: calendar.MustParse(requested),
		DurationWeeks: duration,
	}
}

func testInputs() *dataio.Inputs {
	return &dataio.Inputs{
		Suppliers: []model.Supplier{
			{ID: "A", Name: "Alpha", Capacity: 50},
			{ID: "B", Name: "Beta", Capacity: 20},
		},
		Items: []model.DemandItem{
			demand("x", "P1", model.ProductFemale, 30, "2024-W10", 3),
			demand("x", "P1", model.ProductMale, 10, "2024-W10", 3),
			demand("y", "P2", model.ProductFemale, 15, "2024-W10", 2),
			demand("z", "P3", model.ProductFemale, 500, "2024-W10", 2),
		},
		SupplierEdges: []model.DistanceEdge{
			{Kind: model.EdgeSupplierStop, FromID: "A", ToID: "P1", DistanceKm: 8, DistanceMinutes: 10},
			{Kind: model.EdgeSupplierStop, FromID: "A", ToID: "P2", DistanceKm: 9, DistanceMinutes: 15},
		},
		StopEdges: []model.DistanceEdge{
			{Kind: model.EdgeStopStop, FromID: "P1", ToID: "P2", DistanceKm: 4, DistanceMinutes: 5},
			{Kind: model.EdgeStopStop, FromID: "P2", ToID: "P1", DistanceKm: 4, DistanceMinutes: 7},
		},
	}
}

func findItem(items []model.DemandItem, key model.ItemKey) model.DemandItem {
	for _, item := range items {
		if item.Key() == key {
			return item
		}
	}
	return model.DemandItem{}
}
