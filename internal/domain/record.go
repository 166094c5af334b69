package domain

import (
	"fmt"
	"sort"
)

// Record is one row of the planning table: one lane (plant -> center) for
// one drug in one week, together with the costs, capacities and demand that
// apply to that slice of the network. InitialInventory is declared on week-1
// rows only; nil means the row does not declare it.
type Record struct {
	Plant                 string   `json:"plant"`
	Center                string   `json:"center"`
	Drug                  string   `json:"drug"`
	Week                  int      `json:"week"`
	BaseTransportCost     float64  `json:"base_transport_cost"`
	NeedsUltraCold        bool     `json:"needs_ultra_cold"`
	HoldingCost           float64  `json:"holding_cost"`
	ShortagePenalty       float64  `json:"shortage_penalty"`
	WasteCost             float64  `json:"waste_cost"`
	Demand                float64  `json:"demand"`
	PlantWeekCapacity     float64  `json:"plant_week_capacity"`
	CenterStorageCapacity float64  `json:"center_storage_capacity"`
	InitialInventory      *float64 `json:"initial_inventory,omitempty"`
}

// Lane identifies one potential shipment route for one drug. Lanes are
// discovered from the table, never declared.
type Lane struct {
	Plant  string `json:"plant"`
	Center string `json:"center"`
	Drug   string `json:"drug"`
}

func (l Lane) String() string {
	return fmt.Sprintf("%s->%s/%s", l.Plant, l.Center, l.Drug)
}

// Table is the normalized in-memory input: a flat list of records, one per
// (plant, center, drug, week).
type Table []Record

// Summary describes the table's dimensions; it is echoed back to callers as
// dataset_info.
type Summary struct {
	Rows    int `json:"rows"`
	Plants  int `json:"plants"`
	Centers int `json:"centers"`
	Drugs   int `json:"drugs"`
	Weeks   int `json:"weeks"`
}

// Summarize counts the distinct plants, centers, drugs and weeks in the table.
func (t Table) Summarize() Summary {
	plants := make(map[string]struct{})
	centers := make(map[string]struct{})
	drugs := make(map[string]struct{})
	weeks := make(map[int]struct{})
	for _, r := range t {
		plants[r.Plant] = struct{}{}
		centers[r.Center] = struct{}{}
		drugs[r.Drug] = struct{}{}
		weeks[r.Week] = struct{}{}
	}
	return Summary{
		Rows:    len(t),
		Plants:  len(plants),
		Centers: len(centers),
		Drugs:   len(drugs),
		Weeks:   len(weeks),
	}
}

// Lanes returns the distinct (plant, center, drug) triples in the table,
// sorted lexicographically.
func (t Table) Lanes() []Lane {
	seen := make(map[Lane]struct{})
	lanes := make([]Lane, 0)
	for _, r := range t {
		l := Lane{Plant: r.Plant, Center: r.Center, Drug: r.Drug}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		lanes = append(lanes, l)
	}
	sort.Slice(lanes, func(i, j int) bool {
		if lanes[i].Plant != lanes[j].Plant {
			return lanes[i].Plant < lanes[j].Plant
		}
		if lanes[i].Center != lanes[j].Center {
			return lanes[i].Center < lanes[j].Center
		}
		return lanes[i].Drug < lanes[j].Drug
	})
	return lanes
}

// Weeks returns the distinct week numbers in ascending order.
func (t Table) Weeks() []int {
	seen := make(map[int]struct{})
	weeks := make([]int, 0)
	for _, r := range t {
		if _, ok := seen[r.Week]; ok {
			continue
		}
		seen[r.Week] = struct{}{}
		weeks = append(weeks, r.Week)
	}
	sort.Ints(weeks)
	return weeks
}
