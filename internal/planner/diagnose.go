package planner

import (
	"fmt"

	"pharmaflow/internal/domain"
)

// Diagnose runs closed-form feasibility checks against the raw table and
// classifies the root causes of infeasibility. It never re-solves the LP:
// each check compares aggregate sums, cheap enough to run on every
// infeasible instance.
//
// All checks are evaluated, never short-circuited, so one instance can
// surface several simultaneous causes, and iteration order is fixed (weeks
// ascending, identifiers lexicographic), so the same table always yields the
// same findings in the same order. Each suggested fix is the minimal change
// to the offending parameter that flips its own check to passing; fixes are
// local and advisory, and applying all of them together is not guaranteed to
// restore joint feasibility.
func Diagnose(table domain.Table, cfg Config) (*domain.Diagnosis, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("planner config: %w", err)
	}
	idx, err := newTableIndex(table)
	if err != nil {
		return nil, err
	}

	floor := 1 - cfg.ShortageAllowance
	findings := make([]domain.Finding, 0)
	findings = append(findings, checkProduction(idx, floor)...)
	findings = append(findings, checkInitialStorage(idx)...)
	findings = append(findings, checkDemandReachability(idx, floor)...)

	return &domain.Diagnosis{Findings: findings}, nil
}

// checkProduction compares, week by week, the total plant capacity against
// the service floor of that week's total demand. Capacity below the floor
// means production alone cannot serve the week.
func checkProduction(idx *tableIndex, floor float64) []domain.Finding {
	findings := make([]domain.Finding, 0)
	for _, w := range idx.weeks {
		var capacity, demand float64
		for _, p := range idx.plants {
			capacity += idx.prodCap[plantWeek{plant: p, week: w}]
		}
		for _, cd := range idx.centerDrugs {
			demand += idx.demand[centerDrugWeek{center: cd.center, drug: cd.drug, week: w}]
		}
		required := floor * demand
		if capacity >= required {
			continue
		}
		deficit := required - capacity
		findings = append(findings, domain.Finding{
			Category: domain.FindingProductionTooLow,
			Explanation: fmt.Sprintf(
				"week %d: total plant capacity %.2f is below the %.0f%% service floor %.2f of demand %.2f; raise weekly capacity by %.2f",
				w, capacity, floor*100, required, demand, deficit),
			SuggestedFix: deficit,
		})
	}
	return findings
}

// checkInitialStorage flags center/drug pairs whose declared initial
// inventory already exceeds the week-1 storage capacity.
func checkInitialStorage(idx *tableIndex) []domain.Finding {
	findings := make([]domain.Finding, 0)
	firstWeek := idx.weeks[0]
	for _, cd := range idx.centerDrugs {
		initial := idx.initialInventory(cd)
		capacity := idx.storageCap[centerWeek{center: cd.center, week: firstWeek}]
		if initial <= capacity {
			continue
		}
		excess := initial - capacity
		findings = append(findings, domain.Finding{
			Category: domain.FindingStorageTooSmall,
			Explanation: fmt.Sprintf(
				"center %s drug %s: initial inventory %.2f exceeds week-%d storage capacity %.2f; raise capacity by %.2f",
				cd.center, cd.drug, initial, firstWeek, capacity, excess),
			SuggestedFix: excess,
		})
	}
	return findings
}

// checkDemandReachability bounds what a center/drug/week can possibly be
// served with: carried stock (at most the storage capacity) plus one week
// of inflow from every plant with a lane for that drug to that center. A
// service floor above that bound is structurally unreachable no matter how
// the plan shifts volume around.
func checkDemandReachability(idx *tableIndex, floor float64) []domain.Finding {
	findings := make([]domain.Finding, 0)
	for _, cd := range idx.centerDrugs {
		for _, w := range idx.weeks {
			key := centerDrugWeek{center: cd.center, drug: cd.drug, week: w}
			required := floor * idx.demand[key]

			var inflow float64
			for _, lane := range idx.lanesByCD[cd] {
				inflow += idx.prodCap[plantWeek{plant: lane.Plant, week: w}]
			}
			reachable := idx.storageCap[centerWeek{center: cd.center, week: w}] + inflow
			if required <= reachable {
				continue
			}
			gap := required - reachable
			findings = append(findings, domain.Finding{
				Category: domain.FindingDemandUnreachable,
				Explanation: fmt.Sprintf(
					"center %s drug %s week %d: the %.0f%% service floor %.2f of demand exceeds storage %.2f plus maximum inflow %.2f; close the gap of %.2f",
					cd.center, cd.drug, w, floor*100, required,
					idx.storageCap[centerWeek{center: cd.center, week: w}], inflow, gap),
				SuggestedFix: gap,
			})
		}
	}
	return findings
}
