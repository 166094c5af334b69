package dataset

import (
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"

	"pharmaflow/internal/domain"
)

// GeneratorConfig sizes a synthetic dataset. The zero value is not usable;
// start from DefaultGeneratorConfig.
type GeneratorConfig struct {
	Plants  int   `json:"plants" yaml:"plants"`
	Centers int   `json:"centers" yaml:"centers"`
	Drugs   int   `json:"drugs" yaml:"drugs"`
	Weeks   int   `json:"weeks" yaml:"weeks"`
	Seed    int64 `json:"seed" yaml:"seed"`
}

// DefaultGeneratorConfig matches the historical demo dataset: 4 plants, 7
// centers, 3 drugs, 3 weeks.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{Plants: 4, Centers: 7, Drugs: 3, Weeks: 3, Seed: 42}
}

func (c GeneratorConfig) Validate() error {
	for _, dim := range []struct {
		name string
		v    int
		max  int
	}{
		{"plants", c.Plants, 50},
		{"centers", c.Centers, 100},
		{"drugs", c.Drugs, 50},
		{"weeks", c.Weeks, 52},
	} {
		if dim.v <= 0 {
			return fmt.Errorf("%s must be positive", dim.name)
		}
		if dim.v > dim.max {
			return fmt.Errorf("%s exceeds maximum allowed value %d", dim.name, dim.max)
		}
	}
	return nil
}

// Generate builds a synthetic planning table. The same config always yields
// the same table: every random draw comes from one seeded source consumed in
// a fixed order.
//
// Distributions: transport cost U(2,8) per plant/center pair; holding cost
// U(0.5,2.0) per center/drug; shortage penalty U(8,15) per drug; waste cost
// 10; demand U[20,80) per center/drug/week; storage capacity U[300,500) per
// center; plant capacity U[200,400) per plant/week; initial inventory
// U[0,50) per center/drug, attached to week-1 rows only. Every other drug
// (first, third, ...) needs the ultra-cold chain.
func Generate(cfg GeneratorConfig) domain.Table {
	rng := rand.New(rand.NewSource(cfg.Seed))

	plants := sequence("P", cfg.Plants)
	centers := sequence("C", cfg.Centers)
	drugs := sequence("D", cfg.Drugs)

	type pc struct{ p, c string }
	type cd struct{ c, d string }
	type cdw struct {
		c, d string
		w    int
	}
	type pw struct {
		p string
		w int
	}

	transport := make(map[pc]float64)
	for _, p := range plants {
		for _, c := range centers {
			transport[pc{p, c}] = round2(2 + 6*rng.Float64())
		}
	}

	ultraCold := make(map[string]bool)
	for i, d := range drugs {
		ultraCold[d] = i%2 == 0
	}

	holding := make(map[cd]float64)
	for _, c := range centers {
		for _, d := range drugs {
			holding[cd{c, d}] = round2(0.5 + 1.5*rng.Float64())
		}
	}

	penalty := make(map[string]float64)
	for _, d := range drugs {
		penalty[d] = round2(8 + 7*rng.Float64())
	}

	const wasteCost = 10.0

	demand := make(map[cdw]float64)
	for _, c := range centers {
		for _, d := range drugs {
			for w := 1; w <= cfg.Weeks; w++ {
				demand[cdw{c, d, w}] = float64(20 + rng.Intn(60))
			}
		}
	}

	storage := make(map[string]float64)
	for _, c := range centers {
		storage[c] = float64(300 + rng.Intn(200))
	}

	capacity := make(map[pw]float64)
	for _, p := range plants {
		for w := 1; w <= cfg.Weeks; w++ {
			capacity[pw{p, w}] = float64(200 + rng.Intn(200))
		}
	}

	initial := make(map[cd]float64)
	for _, c := range centers {
		for _, d := range drugs {
			initial[cd{c, d}] = float64(rng.Intn(50))
		}
	}

	table := make(domain.Table, 0, cfg.Plants*cfg.Centers*cfg.Drugs*cfg.Weeks)
	for _, p := range plants {
		for _, c := range centers {
			for _, d := range drugs {
				for w := 1; w <= cfg.Weeks; w++ {
					rec := domain.Record{
						Plant:                 p,
						Center:                c,
						Drug:                  d,
						Week:                  w,
						BaseTransportCost:     transport[pc{p, c}],
						NeedsUltraCold:        ultraCold[d],
						HoldingCost:           holding[cd{c, d}],
						ShortagePenalty:       penalty[d],
						WasteCost:             wasteCost,
						Demand:                demand[cdw{c, d, w}],
						PlantWeekCapacity:     capacity[pw{p, w}],
						CenterStorageCapacity: storage[c],
					}
					if w == 1 {
						v := initial[cd{c, d}]
						rec.InitialInventory = &v
					}
					table = append(table, rec)
				}
			}
		}
	}

	return table
}

func sequence(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s%d", prefix, i+1)
	}
	return ids
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
