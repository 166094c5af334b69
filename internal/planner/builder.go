// Package planner turns planning tables into linear programs and back:
// building the formulation, extracting a structured plan from an optimal
// solve, and diagnosing root causes when no feasible plan exists.
package planner

import (
	"fmt"

	"pharmaflow/internal/domain"
	"pharmaflow/internal/lp"
)

// Config carries the tunables consumed by the builder, extractor and
// diagnoser. It is always passed explicitly; formulations built under
// different configs never interfere.
type Config struct {
	// UltraColdSurcharge is added to the transport cost of every lane/week
	// flagged needs_ultra_cold.
	UltraColdSurcharge float64
	// ShortageAllowance caps shortage at this fraction of demand, as a hard
	// constraint.
	ShortageAllowance float64
	// Epsilon is the zero threshold for solver noise and the tolerance of
	// the extractor's cost cross-check.
	Epsilon float64
	// Weights scale the four objective terms.
	Weights Weights
}

// Weights scale the transport, holding, shortage and waste cost terms of
// the objective. All default to 1, which is the documented unweighted
// objective.
type Weights struct {
	Transport float64
	Holding   float64
	Shortage  float64
	Waste     float64
}

// DefaultConfig returns the production defaults: surcharge 3.0, shortage
// allowance 5%, epsilon 1e-6, unit weights.
func DefaultConfig() Config {
	return Config{
		UltraColdSurcharge: 3.0,
		ShortageAllowance:  0.05,
		Epsilon:            1e-6,
		Weights:            Weights{Transport: 1, Holding: 1, Shortage: 1, Waste: 1},
	}
}

func (c Config) Validate() error {
	if c.UltraColdSurcharge < 0 {
		return fmt.Errorf("ultra_cold_surcharge must be non-negative, got %v", c.UltraColdSurcharge)
	}
	if c.ShortageAllowance < 0 || c.ShortageAllowance >= 1 {
		return fmt.Errorf("shortage_allowance must be in [0, 1), got %v", c.ShortageAllowance)
	}
	if c.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be positive, got %v", c.Epsilon)
	}
	for _, w := range []struct {
		name string
		v    float64
	}{
		{"transport", c.Weights.Transport},
		{"holding", c.Weights.Holding},
		{"shortage", c.Weights.Shortage},
		{"waste", c.Weights.Waste},
	} {
		if w.v < 0 {
			return fmt.Errorf("objective weight %s must be non-negative, got %v", w.name, w.v)
		}
	}
	return nil
}

// Model couples one LP formulation with the variable handles and table
// index needed to turn its solution back into a plan. Build once, solve
// once, extract once.
type Model struct {
	f   *lp.Formulation
	idx *tableIndex
	cfg Config

	ship  map[laneWeek]lp.Var
	inv   map[centerDrugWeek]lp.Var
	short map[centerDrugWeek]lp.Var
	waste map[centerDrugWeek]lp.Var
}

// Build validates the table and constructs the multi-period distribution
// LP: ship variables per lane/week, inventory/shortage/waste variables per
// center/drug/week, the weighted cost objective, and the balance, storage,
// production and service-level constraint families.
func Build(table domain.Table, cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("planner config: %w", err)
	}
	idx, err := newTableIndex(table)
	if err != nil {
		return nil, err
	}

	m := &Model{
		f:     lp.NewFormulation(),
		idx:   idx,
		cfg:   cfg,
		ship:  make(map[laneWeek]lp.Var),
		inv:   make(map[centerDrugWeek]lp.Var),
		short: make(map[centerDrugWeek]lp.Var),
		waste: make(map[centerDrugWeek]lp.Var),
	}

	m.addShipmentVars()
	m.addStockVars()
	m.addBalanceConstraints()
	m.addStorageConstraints()
	m.addProductionConstraints()
	m.addServiceLevelConstraints()

	return m, nil
}

// Formulation exposes the LP for solving. The solver treats it read-only.
func (m *Model) Formulation() *lp.Formulation { return m.f }

func (m *Model) addShipmentVars() {
	for _, lane := range m.idx.lanes {
		for _, w := range m.idx.weeks {
			key := laneWeek{lane: lane, week: w}
			v := m.f.NewVar(fmt.Sprintf("ship[%s,w%d]", lane, w))
			m.ship[key] = v
			m.f.AddObjectiveTerm(m.cfg.Weights.Transport*m.transportCost(key), v)
		}
	}
}

// transportCost is the per-unit cost of one lane/week: the record's base
// cost plus the ultra-cold surcharge when that record is flagged. The flag
// is read per record, so the same drug through a non-cold lane costs base
// only.
func (m *Model) transportCost(key laneWeek) float64 {
	rec := m.idx.records[key]
	cost := rec.BaseTransportCost
	if rec.NeedsUltraCold {
		cost += m.cfg.UltraColdSurcharge
	}
	return cost
}

func (m *Model) addStockVars() {
	for _, cd := range m.idx.centerDrugs {
		for _, w := range m.idx.weeks {
			key := centerDrugWeek{center: cd.center, drug: cd.drug, week: w}

			inv := m.f.NewVar(fmt.Sprintf("inv[%s,%s,w%d]", cd.center, cd.drug, w))
			m.inv[key] = inv
			m.f.AddObjectiveTerm(m.cfg.Weights.Holding*m.idx.holding[key], inv)

			short := m.f.NewVar(fmt.Sprintf("short[%s,%s,w%d]", cd.center, cd.drug, w))
			m.short[key] = short
			m.f.AddObjectiveTerm(m.cfg.Weights.Shortage*m.idx.penalty[key], short)

			waste := m.f.NewVar(fmt.Sprintf("waste[%s,%s,w%d]", cd.center, cd.drug, w))
			m.waste[key] = waste
			m.f.AddObjectiveTerm(m.cfg.Weights.Waste*m.idx.wasteCost[key], waste)
		}
	}
}

// addBalanceConstraints links inventory week to week:
//
//	inv[w] = inv[w-1] + inflow[w] - demand[w] + short[w] - waste[w]
//
// with the declared initial inventory in place of inv[0]. Shortage is
// demand that was not served, so it is added back to keep the balance
// exact; waste is destroyed inventory and leaves as true outflow. Rearranged
// with variables left and constants right:
//
//	inv[w] - inv[w-1] - inflow[w] - short[w] + waste[w] = -demand[w]
func (m *Model) addBalanceConstraints() {
	for _, cd := range m.idx.centerDrugs {
		for _, w := range m.idx.weeks {
			key := centerDrugWeek{center: cd.center, drug: cd.drug, week: w}

			rhs := -m.idx.demand[key]
			if w == 1 {
				rhs += m.idx.initialInventory(cd)
			}

			con := m.f.NewConstraint(lp.Equal, rhs)
			con.AddTerm(1, m.inv[key])
			if w > 1 {
				prev := centerDrugWeek{center: cd.center, drug: cd.drug, week: w - 1}
				con.AddTerm(-1, m.inv[prev])
			}
			for _, lane := range m.idx.lanesByCD[cd] {
				con.AddTerm(-1, m.ship[laneWeek{lane: lane, week: w}])
			}
			con.AddTerm(-1, m.short[key])
			con.AddTerm(1, m.waste[key])
		}
	}
}

func (m *Model) addStorageConstraints() {
	for _, cd := range m.idx.centerDrugs {
		for _, w := range m.idx.weeks {
			key := centerDrugWeek{center: cd.center, drug: cd.drug, week: w}
			capacity := m.idx.storageCap[centerWeek{center: cd.center, week: w}]
			m.f.NewConstraint(lp.LessEq, capacity).AddTerm(1, m.inv[key])
		}
	}
}

func (m *Model) addProductionConstraints() {
	for _, plant := range m.idx.plants {
		for _, w := range m.idx.weeks {
			capacity := m.idx.prodCap[plantWeek{plant: plant, week: w}]
			con := m.f.NewConstraint(lp.LessEq, capacity)
			for _, lane := range m.idx.lanesByPlant[plant] {
				con.AddTerm(1, m.ship[laneWeek{lane: lane, week: w}])
			}
		}
	}
}

// addServiceLevelConstraints caps shortage at the allowance fraction of
// demand. This is a hard regulatory floor, separate from the cost penalty
// the objective already applies to shortage.
func (m *Model) addServiceLevelConstraints() {
	for _, cd := range m.idx.centerDrugs {
		for _, w := range m.idx.weeks {
			key := centerDrugWeek{center: cd.center, drug: cd.drug, week: w}
			limit := m.cfg.ShortageAllowance * m.idx.demand[key]
			m.f.NewConstraint(lp.LessEq, limit).AddTerm(1, m.short[key])
		}
	}
}
