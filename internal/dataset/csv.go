// Package dataset produces planning tables: parsing user-supplied CSV files
// and generating synthetic datasets in the same schema. Both paths emit the
// identical domain.Table shape; the planner does not care which source
// produced its input.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"pharmaflow/internal/domain"
)

// Columns required in the CSV header, in canonical order. Extra columns are
// ignored; order in the file does not matter.
var requiredColumns = []string{
	"plant",
	"center",
	"drug",
	"week",
	"base_transport_cost",
	"needs_ultra_cold",
	"holding_cost",
	"shortage_penalty",
	"waste_cost",
	"demand",
	"plant_week_capacity",
	"center_storage_capacity",
	"initial_inventory",
}

// ReadTable parses CSV content into a planning table. The first line must
// be a header naming every required column. Parse failures come back as
// SchemaError carrying the 1-based file line and the offending field; the
// header counts as line 1.
func ReadTable(r io.Reader) (domain.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, domain.NewSchemaError(0, "", "file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := colIdx[name]; !ok {
			return nil, domain.NewSchemaError(1, name, "required column missing from header")
		}
	}

	table := make(domain.Table, 0)
	line := 1
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, domain.NewSchemaError(line, "", "malformed CSV row: %v", err)
		}

		rec, err := parseRecord(fields, colIdx, line)
		if err != nil {
			return nil, err
		}
		table = append(table, rec)
	}

	return table, nil
}

func parseRecord(fields []string, colIdx map[string]int, line int) (domain.Record, error) {
	get := func(name string) string { return fields[colIdx[name]] }

	var rec domain.Record
	var err error

	rec.Plant = get("plant")
	rec.Center = get("center")
	rec.Drug = get("drug")
	for _, id := range []struct{ name, value string }{
		{"plant", rec.Plant},
		{"center", rec.Center},
		{"drug", rec.Drug},
	} {
		if id.value == "" {
			return rec, domain.NewSchemaError(line, id.name, "identifier must not be empty")
		}
	}

	rec.Week, err = strconv.Atoi(get("week"))
	if err != nil {
		return rec, domain.NewSchemaError(line, "week", "not an integer: %q", get("week"))
	}
	if rec.Week < 1 {
		return rec, domain.NewSchemaError(line, "week", "must be a positive integer, got %d", rec.Week)
	}

	rec.NeedsUltraCold, err = strconv.ParseBool(get("needs_ultra_cold"))
	if err != nil {
		return rec, domain.NewSchemaError(line, "needs_ultra_cold", "not a boolean: %q", get("needs_ultra_cold"))
	}

	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"base_transport_cost", &rec.BaseTransportCost},
		{"holding_cost", &rec.HoldingCost},
		{"shortage_penalty", &rec.ShortagePenalty},
		{"waste_cost", &rec.WasteCost},
		{"demand", &rec.Demand},
		{"plant_week_capacity", &rec.PlantWeekCapacity},
		{"center_storage_capacity", &rec.CenterStorageCapacity},
	} {
		*f.dst, err = parseNonNegative(get(f.name))
		if err != nil {
			return rec, domain.NewSchemaError(line, f.name, "%v", err)
		}
	}

	// Blank means the row does not declare an initial inventory; only
	// week-1 rows may carry one, which the model builder enforces.
	if raw := get("initial_inventory"); raw != "" {
		v, err := parseNonNegative(raw)
		if err != nil {
			return rec, domain.NewSchemaError(line, "initial_inventory", "%v", err)
		}
		rec.InitialInventory = &v
	}

	return rec, nil
}

func parseNonNegative(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("must be non-negative, got %v", v)
	}
	return v, nil
}

// WriteTable writes a planning table as CSV in the canonical column order.
// Output round-trips through ReadTable.
func WriteTable(w io.Writer, table domain.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(requiredColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for i, rec := range table {
		initial := ""
		if rec.InitialInventory != nil {
			initial = formatFloat(*rec.InitialInventory)
		}
		row := []string{
			rec.Plant,
			rec.Center,
			rec.Drug,
			strconv.Itoa(rec.Week),
			formatFloat(rec.BaseTransportCost),
			strconv.FormatBool(rec.NeedsUltraCold),
			formatFloat(rec.HoldingCost),
			formatFloat(rec.ShortagePenalty),
			formatFloat(rec.WasteCost),
			formatFloat(rec.Demand),
			formatFloat(rec.PlantWeekCapacity),
			formatFloat(rec.CenterStorageCapacity),
			initial,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i+2, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
