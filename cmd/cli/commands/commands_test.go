package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/supply-board/internal/config"
	"github.com/jakechorley/supply-board/pkg/sqlite"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestApp(t *testing.T) (*AppContext, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()

	store, err := sqlite.NewDB(context.Background(), filepath.Join(dir, "board.db"))
	require.NoError(t, err)
	t.Cleanup(store.Close)

	cfg := &config.Config{
		Sources: &config.Sources{
			Suppliers: writeFile(t, dir, "suppliers.csv", "id,name,capacity\nA,Alpha,50\nB,Beta,20\n"),
			Demand: writeFile(t, dir, "demand.csv", "id,amount,date,max_shift_weeks_early,max_shift_weeks_late,product_type\n"+
				"p1,30,2024-W10,0,0,F\np1,10,2024-W10,0,0,M\np2,15,2024-W10,0,0,F\n"),
			SupplierDistances: writeFile(t, dir, "supplier_distances.csv", "breeder_id,producer_id,distance_km,distance_minute\nA,p1,8,10\nA,p2,9,15\n"),
			StopDistances:     writeFile(t, dir, "stop_distances.csv", "producer_id_from,producer_id_too,distance_km,distance_minute\np1,p2,4,5\np2,p1,4,7\n"),
		},
		Transport: config.Transport{CostPerKm: "1", CostPerMinute: "0.5"},
		Database:  config.Database{Driver: "sqlite", DSN: filepath.Join(dir, "board.db")},
	}

	out := &bytes.Buffer{}
	return &AppContext{
		Env:      "test",
		Cfg:      cfg,
		Database: store,
		Logger:   zap.NewNop(),
		Ctx:      context.Background(),
		Out:      out,
	}, out
}

func run(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.Execute()
}

func TestGeneratePlanCmd(t *testing.T) {
	app, out := newTestApp(t)

	require.NoError(t, run(t, GeneratePlanCmd(app), "--dry-run"))
	assert.Contains(t, out.String(), "DRY RUN")

	plans, err := app.Database.ListPlans(app.Ctx)
	require.NoError(t, err)
	assert.Empty(t, plans)

	out.Reset()
	require.NoError(t, run(t, GeneratePlanCmd(app)))
	assert.Contains(t, out.String(), "Plan generated and stored")
	assert.Contains(t, out.String(), "Alpha")

	plans, err = app.Database.ListPlans(app.Ctx)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, 3, plans[0].ItemCount)
	assert.Zero(t, plans[0].UnassignedCount)
}

func TestListPlansCmd(t *testing.T) {
	app, out := newTestApp(t)

	require.NoError(t, run(t, ListPlansCmd(app)))
	assert.Contains(t, out.String(), "No plans stored yet")

	require.NoError(t, run(t, GeneratePlanCmd(app)))
	out.Reset()
	require.NoError(t, run(t, ListPlansCmd(app)))
	assert.Contains(t, out.String(), "generated")
}

func TestMoveAndEditPlanCmd(t *testing.T) {
	app, out := newTestApp(t)
	require.NoError(t, run(t, GeneratePlanCmd(app)))

	out.Reset()
	require.NoError(t, run(t, MovePlanCmd(app), "p2/F", "--supplier", "A"))
	assert.Contains(t, out.String(), "over capacity")

	latest, err := app.Database.GetLatestPlan(app.Ctx)
	require.NoError(t, err)
	assert.Equal(t, "moved p2/F to 2024-W10 on A", latest.Note)

	require.NoError(t, run(t, EditPlanCmd(app), "p1/M", "--amount", "12"))
	edited, err := app.Database.GetLatestPlan(app.Ctx)
	require.NoError(t, err)
	assert.Equal(t, latest.ID, edited.ParentID)

	assert.Error(t, run(t, MovePlanCmd(app), "p2/F"))
	assert.Error(t, run(t, MovePlanCmd(app), "p2", "--supplier", "A"))
	assert.Error(t, run(t, MovePlanCmd(app), "p2/F", "--dx", "3", "--supplier", "A"))
	assert.Error(t, run(t, EditPlanCmd(app), "p1/M"))
}

func TestRouteCmd(t *testing.T) {
	app, out := newTestApp(t)
	require.NoError(t, run(t, GeneratePlanCmd(app)))

	out.Reset()
	require.NoError(t, run(t, RouteCmd(app), "A", "p2", "p1"))
	assert.Contains(t, out.String(), "A -> p1 -> p2")
	assert.Contains(t, out.String(), "19.50")

	out.Reset()
	require.NoError(t, run(t, RouteCmd(app), "B", "--week", "2024-W10"))
	assert.Contains(t, out.String(), "No route from B")

	assert.Error(t, run(t, RouteCmd(app), "A"))
}

func TestExportImportPlanCmd(t *testing.T) {
	app, out := newTestApp(t)
	require.NoError(t, run(t, GeneratePlanCmd(app)))

	path := filepath.Join(t.TempDir(), "board.json")
	out.Reset()
	require.NoError(t, run(t, ExportPlanCmd(app), "--out", path))
	assert.Contains(t, out.String(), "written to")

	out.Reset()
	require.NoError(t, run(t, ExportPlanCmd(app), "--format", "csv"))
	assert.Contains(t, out.String(), "p1,2024-W10,2024-W10")

	require.NoError(t, run(t, ImportPlanCmd(app), path, "--note", "round trip"))
	latest, err := app.Database.GetLatestPlan(app.Ctx)
	require.NoError(t, err)
	assert.Equal(t, "round trip", latest.Note)
	assert.NotEmpty(t, latest.StopEdges)

	assert.Error(t, run(t, ExportPlanCmd(app), "--format", "xml"))
}

func TestPublishPlanCmd_NoSheets(t *testing.T) {
	app, _ := newTestApp(t)
	require.NoError(t, run(t, GeneratePlanCmd(app)))

	err := run(t, PublishPlanCmd(app))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sheets section")
}

func TestWeeksCmd(t *testing.T) {
	app, out := newTestApp(t)

	require.NoError(t, run(t, WeeksCmd(app), "2020-W52", "2021-W02"))
	assert.Contains(t, out.String(), "2020: 2 weeks")
	assert.Contains(t, out.String(), "2021: 2 weeks")
	assert.Contains(t, out.String(), "2020-W53  2020-12-28")
	assert.Contains(t, out.String(), "4 weeks")

	assert.Error(t, run(t, WeeksCmd(app), "2021-W02", "2020-W52"))
}
