package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaflow/internal/domain"
	"pharmaflow/internal/lp"
)

func solve(t *testing.T, m *Model) lp.Outcome {
	t.Helper()
	out, err := lp.NewSimplexSolver(0).Solve(context.Background(), m.Formulation())
	require.NoError(t, err)
	require.Equal(t, lp.StatusOptimal, out.Status)
	return out
}

func TestExtractSingleWeekPlan(t *testing.T) {
	// One lane, one week, zero starting stock: the only optimal plan ships
	// exactly the demand and carries nothing.
	m, err := Build(singleLaneTable(1), DefaultConfig())
	require.NoError(t, err)

	res, err := m.Extract(solve(t, m))
	require.NoError(t, err)

	assert.InDelta(t, 100, res.TotalCost, 1e-9) // 50 units at base cost 2
	assert.Equal(t, []domain.Shipment{
		{Plant: "P1", Center: "C1", Drug: "D1", Week: 1, Quantity: 50},
	}, res.Shipments)
	assert.Equal(t, 50.0, res.TotalShipped)
	assert.Equal(t, []domain.StockLine{
		{Center: "C1", Drug: "D1", Week: 1, Quantity: 0},
	}, res.Inventory)
	assert.Equal(t, []domain.StockLine{
		{Center: "C1", Drug: "D1", Week: 1, Quantity: 0},
	}, res.Shortages)
	assert.Equal(t, []domain.StockLine{
		{Center: "C1", Drug: "D1", Week: 1, Quantity: 0},
	}, res.Waste)
	assert.Zero(t, res.TotalShortage)
	assert.Zero(t, res.TotalWaste)
}

func TestExtractCarriesInventoryAcrossWeeks(t *testing.T) {
	// 30 units of starting stock against 20 of demand per week: week 1 is
	// served from stock, week 2 tops up the remaining 10 by shipping. The
	// balance bookkeeping has to carry the 10 leftover units across the
	// week boundary for this optimum to exist.
	w1 := laneRecord(1)
	w1.Demand = 20
	w1.HoldingCost = 0.1
	w1.InitialInventory = initialInv(30)
	w2 := laneRecord(2)
	w2.Demand = 20
	w2.HoldingCost = 0.1

	m, err := Build(domain.Table{w1, w2}, DefaultConfig())
	require.NoError(t, err)

	res, err := m.Extract(solve(t, m))
	require.NoError(t, err)

	assert.Equal(t, []domain.Shipment{
		{Plant: "P1", Center: "C1", Drug: "D1", Week: 2, Quantity: 10},
	}, res.Shipments, "week 1 must be served from stock alone")
	assert.Equal(t, []domain.StockLine{
		{Center: "C1", Drug: "D1", Week: 1, Quantity: 10},
		{Center: "C1", Drug: "D1", Week: 2, Quantity: 0},
	}, res.Inventory)
	// Holding 0.1 on the 10 carried units, transport 2 on the 10 shipped.
	assert.InDelta(t, 21, res.TotalCost, 1e-9)
	assert.Zero(t, res.TotalShortage)
	assert.Zero(t, res.TotalWaste)
}

func TestExtractClampsSolverNoise(t *testing.T) {
	m, err := Build(singleLaneTable(1), DefaultConfig())
	require.NoError(t, err)

	lane := domain.Lane{Plant: "P1", Center: "C1", Drug: "D1"}
	key := centerDrugWeek{center: "C1", drug: "D1", week: 1}

	// A near-integral shipment, a sub-epsilon inventory residual, and
	// slightly negative waste noise, as a simplex backend may report them.
	values := make([]float64, m.f.NumVars())
	values[m.ship[laneWeek{lane: lane, week: 1}]] = 49.9999999999
	values[m.inv[key]] = 4e-7
	values[m.waste[key]] = -3e-8
	objective := 2*values[m.ship[laneWeek{lane: lane, week: 1}]] +
		0.5*values[m.inv[key]] +
		10*values[m.short[key]] +
		10*values[m.waste[key]]

	res, err := m.Extract(lp.Outcome{Status: lp.StatusOptimal, Objective: objective, Values: values})
	require.NoError(t, err)

	require.Len(t, res.Shipments, 1)
	assert.Equal(t, 50.0, res.Shipments[0].Quantity)
	assert.Equal(t, 0.0, res.Inventory[0].Quantity, "sub-epsilon inventory must read as zero")
	assert.Equal(t, 0.0, res.Waste[0].Quantity, "negative noise must read as zero")
	assert.Zero(t, res.TotalWaste)
}

func TestExtractDetectsInconsistentObjective(t *testing.T) {
	m, err := Build(singleLaneTable(1), DefaultConfig())
	require.NoError(t, err)

	out := solve(t, m)
	out.Objective += 5

	_, err = m.Extract(out)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInternalInconsistency)
}

func TestExtractRequiresOptimalOutcome(t *testing.T) {
	m, err := Build(singleLaneTable(1), DefaultConfig())
	require.NoError(t, err)

	_, err = m.Extract(lp.Outcome{Status: lp.StatusInfeasible})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "optimal")
}

func TestWithinEpsilonScalesWithMagnitude(t *testing.T) {
	assert.True(t, withinEpsilon(1e6, 1e6+0.5, 1e-6))
	assert.True(t, withinEpsilon(0, 5e-7, 1e-6))
	assert.False(t, withinEpsilon(1, 1.1, 1e-6))
	assert.False(t, withinEpsilon(100, 105, 1e-6))
}
