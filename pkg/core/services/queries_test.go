package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/supply-board/internal/config"
	"github.com/jakechorley/supply-board/pkg/core/calendar"
	"github.com/jakechorley/supply-board/pkg/core/route"
	"github.com/jakechorley/supply-board/pkg/db"
)

func TestGetPlanReport(t *testing.T) {
	store, parent := seedPlan(t)

	result, err := GetPlanReport(context.Background(), store, testConfig(), zap.NewNop(), parent.ID)
	require.NoError(t, err)
	assert.Equal(t, parent.ID, result.Plan.ID)
	assert.Equal(t, 1, result.Report.UnassignedCount)
	assert.NotEmpty(t, result.Layout.Lanes)

	latest, err := GetPlanReport(context.Background(), store, testConfig(), zap.NewNop(), "")
	require.NoError(t, err)
	assert.Equal(t, parent.ID, latest.Plan.ID)
}

func TestGetPlanReport_NoPlans(t *testing.T) {
	_, err := GetPlanReport(context.Background(), newMockStore(), testConfig(), zap.NewNop(), "")
	assert.ErrorIs(t, err, db.ErrPlanNotFound)
}

func TestListPlans(t *testing.T) {
	store, parent := seedPlan(t)

	plans, err := ListPlans(context.Background(), store, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, parent.ID, plans[0].ID)
	assert.Equal(t, 4, plans[0].ItemCount)

	store.listErr = errBoom
	_, err = ListPlans(context.Background(), store, zap.NewNop())
	assert.ErrorIs(t, err, errBoom)
}

func routeConfig() *config.Config {
	cfg := testConfig()
	cfg.Transport = config.Transport{CostPerKm: "1", CostPerMinute: "0.5"}
	return cfg
}

func TestSolveRoute_Stops(t *testing.T) {
	store, parent := seedPlan(t)

	result, err := SolveRoute(context.Background(), store, routeConfig(), zap.NewNop(), RouteRequest{
		PlanID:     parent.ID,
		SupplierID: "A",
		Stops:      []string{"P2", "P1"},
	})
	require.NoError(t, err)

	assert.True(t, result.Route.Found)
	assert.Equal(t, []string{"P1", "P2"}, result.Route.Stops)
	assert.Equal(t, 15.0, result.Route.TotalMinutes)
	assert.Equal(t, 12.0, result.Route.TotalKm)
	assert.True(t, decimal.RequireFromString("19.5").Equal(result.Cost), "got %s", result.Cost)
}

func TestSolveRoute_Week(t *testing.T) {
	store, parent := seedPlan(t)

	result, err := SolveRoute(context.Background(), store, routeConfig(), zap.NewNop(), RouteRequest{
		PlanID:     parent.ID,
		SupplierID: "A",
		Start:      calendar.MustParse("2024-W10"),
	})
	require.NoError(t, err)
	assert.True(t, result.Route.Found)
	assert.Equal(t, []string{"P1"}, result.Route.Stops)
	assert.Equal(t, 10.0, result.Route.TotalMinutes)

	_, err = SolveRoute(context.Background(), store, routeConfig(), zap.NewNop(), RouteRequest{
		PlanID:     parent.ID,
		SupplierID: "A",
		Start:      calendar.MustParse("2024-W30"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no items starting")
}

func TestSolveRoute_Unroutable(t *testing.T) {
	store, parent := seedPlan(t)

	result, err := SolveRoute(context.Background(), store, routeConfig(), zap.NewNop(), RouteRequest{
		PlanID:     parent.ID,
		SupplierID: "B",
		Stops:      []string{"P2"},
	})
	require.NoError(t, err)
	assert.False(t, result.Route.Found)
}

func TestSolveRoute_TooManyStops(t *testing.T) {
	store, parent := seedPlan(t)
	cfg := routeConfig()
	cfg.Transport.MaxStops = 1

	_, err := SolveRoute(context.Background(), store, cfg, zap.NewNop(), RouteRequest{
		PlanID:     parent.ID,
		SupplierID: "A",
		Stops:      []string{"P1", "P2"},
	})
	assert.ErrorIs(t, err, route.ErrTooManyStops)
}
