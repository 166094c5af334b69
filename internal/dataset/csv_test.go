package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaflow/internal/domain"
)

const csvHeader = "plant,center,drug,week,base_transport_cost,needs_ultra_cold,holding_cost,shortage_penalty,waste_cost,demand,plant_week_capacity,center_storage_capacity,initial_inventory"

func TestReadTableParsesRows(t *testing.T) {
	in := csvHeader + "\n" +
		"P1,C1,D1,1,2.5,true,0.8,12,10,50,100,200,25\n" +
		"P1,C1,D1,2,2.5,false,0.8,12,10,60,100,200,\n"

	table, err := ReadTable(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, table, 2)

	first := table[0]
	assert.Equal(t, "P1", first.Plant)
	assert.Equal(t, "C1", first.Center)
	assert.Equal(t, "D1", first.Drug)
	assert.Equal(t, 1, first.Week)
	assert.Equal(t, 2.5, first.BaseTransportCost)
	assert.True(t, first.NeedsUltraCold)
	assert.Equal(t, 0.8, first.HoldingCost)
	assert.Equal(t, 12.0, first.ShortagePenalty)
	assert.Equal(t, 10.0, first.WasteCost)
	assert.Equal(t, 50.0, first.Demand)
	assert.Equal(t, 100.0, first.PlantWeekCapacity)
	assert.Equal(t, 200.0, first.CenterStorageCapacity)
	require.NotNil(t, first.InitialInventory)
	assert.Equal(t, 25.0, *first.InitialInventory)

	second := table[1]
	assert.False(t, second.NeedsUltraCold)
	assert.Nil(t, second.InitialInventory, "blank initial_inventory means undeclared")
}

func TestReadTableAcceptsAnyColumnOrderAndExtras(t *testing.T) {
	in := "week,plant,comment,center,drug,base_transport_cost,needs_ultra_cold,holding_cost,shortage_penalty,waste_cost,demand,plant_week_capacity,center_storage_capacity,initial_inventory\n" +
		"1,P1,ignored,C1,D1,2,false,0.5,10,10,40,90,150,0\n"

	table, err := ReadTable(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, "P1", table[0].Plant)
	assert.Equal(t, 1, table[0].Week)
	assert.Equal(t, 40.0, table[0].Demand)
}

func TestReadTableBooleanForms(t *testing.T) {
	for raw, want := range map[string]bool{"1": true, "TRUE": true, "t": true, "0": false, "false": false} {
		in := csvHeader + "\n" +
			fmt.Sprintf("P1,C1,D1,1,2,%s,0.5,10,10,40,90,150,0\n", raw)

		table, err := ReadTable(strings.NewReader(in))
		require.NoError(t, err, "form %q", raw)
		assert.Equal(t, want, table[0].NeedsUltraCold, "form %q", raw)
	}
}

func TestReadTableHeaderValidation(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		_, err := ReadTable(strings.NewReader(""))
		require.Error(t, err)
		assert.True(t, domain.IsSchemaError(err))
		assert.Contains(t, err.Error(), "empty")
	})

	t.Run("missing column", func(t *testing.T) {
		in := strings.Replace(csvHeader, "demand,", "", 1) + "\n"

		_, err := ReadTable(strings.NewReader(in))
		require.Error(t, err)

		var se *domain.SchemaError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, 1, se.Row)
		assert.Equal(t, "demand", se.Field)
	})
}

func TestReadTableRowErrors(t *testing.T) {
	row := func(mutate func([]string)) string {
		fields := strings.Split("P1,C1,D1,1,2,false,0.5,10,10,40,90,150,0", ",")
		mutate(fields)
		return csvHeader + "\n" + strings.Join(fields, ",") + "\n"
	}

	tests := []struct {
		name   string
		input  string
		field  string
		reason string
	}{
		{
			name:   "week not an integer",
			input:  row(func(f []string) { f[3] = "one" }),
			field:  "week",
			reason: "not an integer",
		},
		{
			name:   "week below 1",
			input:  row(func(f []string) { f[3] = "0" }),
			field:  "week",
			reason: "positive",
		},
		{
			name:   "bad boolean",
			input:  row(func(f []string) { f[5] = "maybe" }),
			field:  "needs_ultra_cold",
			reason: "not a boolean",
		},
		{
			name:   "negative demand",
			input:  row(func(f []string) { f[9] = "-5" }),
			field:  "demand",
			reason: "non-negative",
		},
		{
			name:   "holding cost not a number",
			input:  row(func(f []string) { f[6] = "abc" }),
			field:  "holding_cost",
			reason: "not a number",
		},
		{
			name:   "empty plant identifier",
			input:  row(func(f []string) { f[0] = "" }),
			field:  "plant",
			reason: "empty",
		},
		{
			name:   "negative initial inventory",
			input:  row(func(f []string) { f[12] = "-1" }),
			field:  "initial_inventory",
			reason: "non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTable(strings.NewReader(tt.input))
			require.Error(t, err)

			var se *domain.SchemaError
			require.True(t, errors.As(err, &se), "expected a schema error, got %v", err)
			assert.Equal(t, 2, se.Row, "data rows start at file line 2")
			assert.Equal(t, tt.field, se.Field)
			assert.Contains(t, se.Reason, tt.reason)
		})
	}
}

func TestReadTableMalformedRow(t *testing.T) {
	in := csvHeader + "\nP1,C1\n"

	_, err := ReadTable(strings.NewReader(in))
	require.Error(t, err)

	var se *domain.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 2, se.Row)
	assert.Contains(t, se.Reason, "malformed")
}

func TestWriteTableRoundTrip(t *testing.T) {
	table := Generate(GeneratorConfig{Plants: 2, Centers: 2, Drugs: 2, Weeks: 2, Seed: 3})

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, table))

	parsed, err := ReadTable(&buf)
	require.NoError(t, err)
	assert.Equal(t, table, parsed)
}
