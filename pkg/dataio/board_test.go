package dataio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/supply-board/pkg/core/calendar"
	"github.com/jakechorley/supply-board/pkg/core/model"
)

const boardJSON = `{
  "events": [
    {
      "id": "p1_2024-W10",
      "name": "p1",
      "startWeek": "2024-W11",
      "endWeek": "2024-W40",
      "date": "2024-W10",
      "amount": 300,
      "supplierId": "A",
      "leftPosition": 30,
      "topPosition": 12.5,
      "maxShiftWeeksEarly": 0,
      "maxShiftWeeksLate": 2,
      "productType": "F",
      "stackOffsetPx": 4
    },
    {
      "id": "p1_2024-W10",
      "name": "p1",
      "startWeek": "",
      "endWeek": "",
      "date": "2024-W10",
      "amount": 100,
      "supplierId": "unassigned",
      "leftPosition": 0,
      "topPosition": 0,
      "maxShiftWeeksEarly": 0,
      "maxShiftWeeksLate": 0,
      "productType": "M"
    }
  ],
  "suppliers": [
    {"id": "A", "name": "Alpha", "capacity": 1000}
  ]
}`

func TestDecodeBoard(t *testing.T) {
	board, err := DecodeBoard(strings.NewReader(boardJSON), DefaultDurations())
	require.NoError(t, err)

	require.Len(t, board.Items, 2)
	female := board.Items[0]
	assert.Equal(t, "A", female.SupplierID)
	assert.Equal(t, calendar.MustParse("2024-W11"), female.Start)
	assert.Equal(t, calendar.MustParse("2024-W28"), female.End, "end is derived from the duration")
	assert.Equal(t, 18, female.DurationWeeks)
	assert.Equal(t, 2, female.LateShiftMax)
	assert.Equal(t, 12.5, female.Top)
	assert.Equal(t, 4.0, female.StackOffset)

	male := board.Items[1]
	assert.False(t, male.IsAssigned())
	assert.Empty(t, male.SupplierID, "the unassigned marker is not a supplier id")
	assert.Equal(t, 10, male.DurationWeeks)

	assert.Equal(t, []model.Supplier{{ID: "A", Name: "Alpha", Capacity: 1000}}, board.Suppliers)
}

func TestDecodeBoard_Invalid(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{name: "not json", json: `events`},
		{name: "missing event id", json: `{"events":[{"date":"2024-W10","amount":1}],"suppliers":[]}`},
		{name: "bad requested week", json: `{"events":[{"id":"x","date":"W10","amount":1}],"suppliers":[]}`},
		{name: "bad start week", json: `{"events":[{"id":"x","date":"2024-W10","startWeek":"soon","supplierId":"A","amount":1}],"suppliers":[]}`},
		{name: "negative amount", json: `{"events":[{"id":"x","date":"2024-W10","amount":-1}],"suppliers":[]}`},
		{name: "supplier without id", json: `{"events":[],"suppliers":[{"name":"nobody","capacity":1}]}`},
		{name: "huge shift", json: `{"events":[{"id":"x","date":"2024-W10","amount":1,"maxShiftWeeksEarly":100000000}],"suppliers":[]}`},
		{name: "unknown product", json: `{"events":[{"id":"x","date":"2024-W10","amount":1,"productType":"Q"}],"suppliers":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBoard(strings.NewReader(tt.json), DefaultDurations())
			assert.Error(t, err)
		})
	}
}

func TestEncodeBoard_RoundTrip(t *testing.T) {
	board, err := DecodeBoard(strings.NewReader(boardJSON), DefaultDurations())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeBoard(&buf, board.Items, board.Suppliers))
	assert.Contains(t, buf.String(), `"endWeek": "2024-W28"`)
	assert.Contains(t, buf.String(), `"startWeek": ""`)

	again, err := DecodeBoard(&buf, DefaultDurations())
	require.NoError(t, err)
	assert.Equal(t, board, again)
}

func TestWritePlanCSV(t *testing.T) {
	suppliers := []model.Supplier{{ID: "A", Name: "Alpha", Capacity: 1000}}

	later := model.DemandItem{ID: "p2_2024-W20", Name: "p2", ProductType: model.ProductFemale, Amount: 50, RequestedWeek: calendar.MustParse("2024-W20"), DurationWeeks: 18}
	female := model.DemandItem{ID: "p1_2024-W10", Name: "p1", ProductType: model.ProductFemale, Amount: 300, RequestedWeek: calendar.MustParse("2024-W10"), DurationWeeks: 18, SupplierID: "A"}
	female.SetStart(calendar.MustParse("2024-W11"))
	male := model.DemandItem{ID: "p1_2024-W10", Name: "p1", ProductType: model.ProductMale, Amount: 100, RequestedWeek: calendar.MustParse("2024-W10"), DurationWeeks: 10, SupplierID: "A"}
	male.SetStart(calendar.MustParse("2024-W11"))

	var buf bytes.Buffer
	require.NoError(t, WritePlanCSV(&buf, []model.DemandItem{later, male, female}, suppliers))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(PlanColumns, ","), lines[0])
	assert.Equal(t, "p1,2024-W10,2024-W11,p1,300,100,A,Alpha,1000", lines[1])
	assert.Equal(t, "p2,2024-W20,,p2,50,,,,", lines[2])
}
