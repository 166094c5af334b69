package planner

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"pharmaflow/internal/domain"
	"pharmaflow/internal/lp"
)

// Extract converts an optimal outcome into a plan. Shipments are reported
// sparsely (positive quantities only); inventory, shortage and waste levels
// densely, one line per center/drug/week, because zero is a meaningful state
// there. Values below epsilon in magnitude are treated as zero, and
// user-visible quantities are rounded to two decimals.
//
// The total cost is recomputed from the raw variable values and the cost
// table rather than trusted from the solver; a mismatch beyond epsilon
// (scaled by the objective's magnitude) reports ErrInternalInconsistency.
func (m *Model) Extract(outcome lp.Outcome) (*domain.Result, error) {
	if outcome.Status != lp.StatusOptimal {
		return nil, fmt.Errorf("extract requires an optimal outcome, got %s", outcome.Status)
	}

	recomputed := m.recomputeCost(outcome)
	if !withinEpsilon(recomputed, outcome.Objective, m.cfg.Epsilon) {
		return nil, fmt.Errorf("%w: recomputed %v, solver reported %v",
			domain.ErrInternalInconsistency, recomputed, outcome.Objective)
	}

	res := &domain.Result{
		TotalCost: round2(recomputed),
		Shipments: make([]domain.Shipment, 0),
		Inventory: make([]domain.StockLine, 0),
		Shortages: make([]domain.StockLine, 0),
		Waste:     make([]domain.StockLine, 0),
	}

	for _, lane := range m.idx.lanes {
		for _, w := range m.idx.weeks {
			q := m.clamp(outcome.Value(m.ship[laneWeek{lane: lane, week: w}]))
			if q <= 0 {
				continue
			}
			q = round2(q)
			res.Shipments = append(res.Shipments, domain.Shipment{
				Plant:    lane.Plant,
				Center:   lane.Center,
				Drug:     lane.Drug,
				Week:     w,
				Quantity: q,
			})
			res.TotalShipped += q
		}
	}

	for _, cd := range m.idx.centerDrugs {
		for _, w := range m.idx.weeks {
			key := centerDrugWeek{center: cd.center, drug: cd.drug, week: w}

			res.Inventory = append(res.Inventory, m.stockLine(key, outcome.Value(m.inv[key])))

			short := m.stockLine(key, outcome.Value(m.short[key]))
			res.Shortages = append(res.Shortages, short)
			res.TotalShortage += short.Quantity

			waste := m.stockLine(key, outcome.Value(m.waste[key]))
			res.Waste = append(res.Waste, waste)
			res.TotalWaste += waste.Quantity
		}
	}

	res.TotalShipped = round2(res.TotalShipped)
	res.TotalShortage = round2(res.TotalShortage)
	res.TotalWaste = round2(res.TotalWaste)

	return res, nil
}

func (m *Model) stockLine(key centerDrugWeek, raw float64) domain.StockLine {
	return domain.StockLine{
		Center:   key.center,
		Drug:     key.drug,
		Week:     key.week,
		Quantity: round2(m.clamp(raw)),
	}
}

// recomputeCost prices the solution from the table's cost fields, term by
// term, independent of the formulation's objective vector.
func (m *Model) recomputeCost(outcome lp.Outcome) float64 {
	var total float64
	for _, lane := range m.idx.lanes {
		for _, w := range m.idx.weeks {
			key := laneWeek{lane: lane, week: w}
			total += m.cfg.Weights.Transport * m.transportCost(key) * outcome.Value(m.ship[key])
		}
	}
	for _, cd := range m.idx.centerDrugs {
		for _, w := range m.idx.weeks {
			key := centerDrugWeek{center: cd.center, drug: cd.drug, week: w}
			total += m.cfg.Weights.Holding * m.idx.holding[key] * outcome.Value(m.inv[key])
			total += m.cfg.Weights.Shortage * m.idx.penalty[key] * outcome.Value(m.short[key])
			total += m.cfg.Weights.Waste * m.idx.wasteCost[key] * outcome.Value(m.waste[key])
		}
	}
	return total
}

func (m *Model) clamp(v float64) float64 {
	if math.Abs(v) < m.cfg.Epsilon {
		return 0
	}
	return v
}

func withinEpsilon(a, b, eps float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= eps*scale
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
