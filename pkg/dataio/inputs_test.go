package dataio

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCSVFiles_Load(t *testing.T) {
	dir := t.TempDir()
	files := CSVFiles{
		Suppliers:         writeFile(t, dir, "suppliers.csv", "id,name,capacity\nA,Alpha,100\n"),
		Demand:            writeFile(t, dir, "demand.csv", "id,amount,date,max_shift_weeks_early,max_shift_weeks_late,product_type\np1,30,2024-W10,0,1,F\np1,10,2024-W10,0,1,M\n"),
		SupplierDistances: writeFile(t, dir, "supplier_distances.csv", "breeder_id,producer_id,distance_km,distance_minute\nA,p1,4,9\n"),
	}

	in, err := files.Load(context.Background(), DefaultDurations())
	require.NoError(t, err)

	assert.Len(t, in.Suppliers, 1)
	assert.Len(t, in.Items, 2)
	assert.Len(t, in.SupplierEdges, 1)
	assert.Nil(t, in.StopEdges)
}

func TestCSVFiles_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	suppliers := writeFile(t, dir, "suppliers.csv", "id,name,capacity\nA,Alpha,100\n")

	_, err := CSVFiles{Suppliers: suppliers}.Load(context.Background(), DefaultDurations())
	assert.Error(t, err)

	_, err = CSVFiles{Suppliers: suppliers, Demand: filepath.Join(dir, "missing.csv")}.Load(context.Background(), DefaultDurations())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = CSVFiles{Suppliers: suppliers, Demand: suppliers}.Load(ctx, DefaultDurations())
	assert.ErrorIs(t, err, context.Canceled)
}
