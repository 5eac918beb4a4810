package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/supply-board/pkg/core/calendar"
	"github.com/jakechorley/supply-board/pkg/core/model"
)

func TestGeneratePlan(t *testing.T) {
	store := newMockStore()
	source := &fakeSource{inputs: testInputs()}

	result, err := GeneratePlan(context.Background(), store, source, testConfig(), zap.NewNop(), false)
	require.NoError(t, err)

	assert.True(t, result.Stored)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, result.Plan, store.inserted[0])
	assert.Empty(t, result.Plan.ParentID)
	assert.Equal(t, "generated", result.Plan.Note)

	assert.Equal(t, []model.ItemKey{{ID: "z", ProductType: model.ProductFemale}}, result.Assignment.Unassigned)
	assert.Equal(t, 1, result.Report.UnassignedCount)

	female := findItem(result.Plan.Items, model.ItemKey{ID: "x", ProductType: model.ProductFemale})
	male := findItem(result.Plan.Items, model.ItemKey{ID: "x", ProductType: model.ProductMale})
	assert.Equal(t, "A", female.SupplierID)
	assert.Equal(t, female.Start, male.Start, "siblings start together")
	assert.Equal(t, calendar.MustParse("2024-W12"), female.End)

	overflow := findItem(result.Plan.Items, model.ItemKey{ID: "y", ProductType: model.ProductFemale})
	assert.Equal(t, "B", overflow.SupplierID, "A has no headroom left")

	assert.Equal(t, 40, result.Plan.Suppliers[0].PeakUsage)
	assert.Empty(t, result.Report.Overruns)
	assert.Len(t, result.Plan.SupplierEdges, 2)
}

func TestGeneratePlan_DryRun(t *testing.T) {
	store := newMockStore()

	result, err := GeneratePlan(context.Background(), store, &fakeSource{inputs: testInputs()}, testConfig(), zap.NewNop(), true)
	require.NoError(t, err)

	assert.False(t, result.Stored)
	assert.Empty(t, store.inserted)
	assert.NotEmpty(t, result.Plan.ID)
}

func TestGeneratePlan_Errors(t *testing.T) {
	_, err := GeneratePlan(context.Background(), newMockStore(), &fakeSource{err: errBoom}, testConfig(), zap.NewNop(), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)

	store := newMockStore()
	store.insertErr = errBoom
	_, err = GeneratePlan(context.Background(), store, &fakeSource{inputs: testInputs()}, testConfig(), zap.NewNop(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert plan")

	inputs := testInputs()
	inputs.Items[0].DurationWeeks = 0
	_, err = GeneratePlan(context.Background(), newMockStore(), &fakeSource{inputs: inputs}, testConfig(), zap.NewNop(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to assign items")
}
