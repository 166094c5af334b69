package planner

import (
	"sort"

	"pharmaflow/internal/domain"
)

type laneWeek struct {
	lane domain.Lane
	week int
}

type centerDrug struct {
	center string
	drug   string
}

type centerDrugWeek struct {
	center string
	drug   string
	week   int
}

type plantWeek struct {
	plant string
	week  int
}

type centerWeek struct {
	center string
	week   int
}

// tableIndex is the validated, keyed view of a planning table shared by the
// model builder and the diagnoser. Construction performs the structural
// checks; once an index exists the table is known to be well-formed.
//
// Demand, capacities and unit costs repeat across rows (demand is keyed by
// center/drug/week but appears on every plant's row, and so on). Repeats are
// resolved last-row-wins, matching how the table is produced.
type tableIndex struct {
	weeks   []int
	plants  []string
	centers []string
	drugs   []string
	lanes   []domain.Lane

	centerDrugs  []centerDrug
	lanesByCD    map[centerDrug][]domain.Lane
	lanesByPlant map[string][]domain.Lane

	records    map[laneWeek]domain.Record
	demand     map[centerDrugWeek]float64
	holding    map[centerDrugWeek]float64
	penalty    map[centerDrugWeek]float64
	wasteCost  map[centerDrugWeek]float64
	prodCap    map[plantWeek]float64
	storageCap map[centerWeek]float64
	initial    map[centerDrug]float64
}

func newTableIndex(table domain.Table) (*tableIndex, error) {
	if len(table) == 0 {
		return nil, domain.ErrEmptyInput
	}

	idx := &tableIndex{
		lanesByCD:    make(map[centerDrug][]domain.Lane),
		lanesByPlant: make(map[string][]domain.Lane),
		records:      make(map[laneWeek]domain.Record),
		demand:       make(map[centerDrugWeek]float64),
		holding:      make(map[centerDrugWeek]float64),
		penalty:      make(map[centerDrugWeek]float64),
		wasteCost:    make(map[centerDrugWeek]float64),
		prodCap:      make(map[plantWeek]float64),
		storageCap:   make(map[centerWeek]float64),
		initial:      make(map[centerDrug]float64),
	}

	declared := make(map[centerDrug]bool)
	for _, rec := range table {
		lane := domain.Lane{Plant: rec.Plant, Center: rec.Center, Drug: rec.Drug}
		key := laneWeek{lane: lane, week: rec.Week}
		if _, dup := idx.records[key]; dup {
			return nil, domain.NewSchemaError(0, "",
				"duplicate record for lane %s week %d", lane, rec.Week)
		}
		idx.records[key] = rec

		cd := centerDrug{center: rec.Center, drug: rec.Drug}
		cdw := centerDrugWeek{center: rec.Center, drug: rec.Drug, week: rec.Week}
		idx.demand[cdw] = rec.Demand
		idx.holding[cdw] = rec.HoldingCost
		idx.penalty[cdw] = rec.ShortagePenalty
		idx.wasteCost[cdw] = rec.WasteCost
		idx.prodCap[plantWeek{plant: rec.Plant, week: rec.Week}] = rec.PlantWeekCapacity
		idx.storageCap[centerWeek{center: rec.Center, week: rec.Week}] = rec.CenterStorageCapacity

		switch {
		case rec.Week == 1 && rec.InitialInventory == nil:
			return nil, domain.NewSchemaError(0, "initial_inventory",
				"week-1 record for lane %s does not declare initial_inventory", lane)
		case rec.Week != 1 && rec.InitialInventory != nil:
			return nil, domain.NewSchemaError(0, "initial_inventory",
				"record for lane %s declares initial_inventory on week %d; only week-1 rows may", lane, rec.Week)
		case rec.Week == 1:
			v := *rec.InitialInventory
			if declared[cd] && idx.initial[cd] != v {
				return nil, domain.NewSchemaError(0, "initial_inventory",
					"conflicting values for center %s drug %s: %v and %v", rec.Center, rec.Drug, idx.initial[cd], v)
			}
			idx.initial[cd] = v
			declared[cd] = true
		}
	}

	idx.weeks = table.Weeks()
	if err := checkContiguousWeeks(idx.weeks); err != nil {
		return nil, err
	}

	idx.lanes = table.Lanes()
	plantSet := make(map[string]struct{})
	centerSet := make(map[string]struct{})
	drugSet := make(map[string]struct{})
	cdSeen := make(map[centerDrug]struct{})
	for _, lane := range idx.lanes {
		plantSet[lane.Plant] = struct{}{}
		centerSet[lane.Center] = struct{}{}
		drugSet[lane.Drug] = struct{}{}

		cd := centerDrug{center: lane.Center, drug: lane.Drug}
		if _, ok := cdSeen[cd]; !ok {
			cdSeen[cd] = struct{}{}
			idx.centerDrugs = append(idx.centerDrugs, cd)
		}
		idx.lanesByCD[cd] = append(idx.lanesByCD[cd], lane)
		idx.lanesByPlant[lane.Plant] = append(idx.lanesByPlant[lane.Plant], lane)

		for _, w := range idx.weeks {
			if _, ok := idx.records[laneWeek{lane: lane, week: w}]; !ok {
				return nil, domain.NewSchemaError(0, "week",
					"lane %s has no record for week %d", lane, w)
			}
		}
	}

	idx.plants = sortedKeys(plantSet)
	idx.centers = sortedKeys(centerSet)
	idx.drugs = sortedKeys(drugSet)
	sort.Slice(idx.centerDrugs, func(i, j int) bool {
		if idx.centerDrugs[i].center != idx.centerDrugs[j].center {
			return idx.centerDrugs[i].center < idx.centerDrugs[j].center
		}
		return idx.centerDrugs[i].drug < idx.centerDrugs[j].drug
	})

	return idx, nil
}

func checkContiguousWeeks(weeks []int) error {
	if len(weeks) == 0 {
		return domain.ErrEmptyInput
	}
	if weeks[0] != 1 {
		return domain.NewSchemaError(0, "week", "weeks must start at 1, found %d", weeks[0])
	}
	for i, w := range weeks {
		if w != i+1 {
			return domain.NewSchemaError(0, "week",
				"weeks must be contiguous starting at 1; week %d is missing", i+1)
		}
	}
	return nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// initialInventory returns the declared week-1 inventory for a center/drug,
// zero when the pair never appears on a week-1 row.
func (idx *tableIndex) initialInventory(cd centerDrug) float64 {
	return idx.initial[cd]
}
