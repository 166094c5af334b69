package domain

// Plan statuses reported to callers.
const (
	StatusOptimal    = "optimal"
	StatusInfeasible = "infeasible"
)

// Shipment is one positive shipment line item. Zero shipments are omitted
// from results.
type Shipment struct {
	Plant    string  `json:"plant"`
	Center   string  `json:"center"`
	Drug     string  `json:"drug"`
	Week     int     `json:"week"`
	Quantity float64 `json:"quantity"`
}

// StockLine is one inventory, shortage or waste level for a center/drug/week.
// These are reported densely: zero is a meaningful state.
type StockLine struct {
	Center   string  `json:"center"`
	Drug     string  `json:"drug"`
	Week     int     `json:"week"`
	Quantity float64 `json:"quantity"`
}

// Result is the extracted plan for an optimal solve. Quantities are rounded
// to two decimals; totals are sums over the line items below.
type Result struct {
	TotalCost     float64     `json:"total_cost"`
	TotalShipped  float64     `json:"total_shipped"`
	TotalShortage float64     `json:"total_shortage"`
	TotalWaste    float64     `json:"total_waste"`
	Shipments     []Shipment  `json:"shipments"`
	Inventory     []StockLine `json:"inventory"`
	Shortages     []StockLine `json:"shortages"`
	Waste         []StockLine `json:"waste"`
}

// Finding categories, in the order the checks run.
const (
	FindingProductionTooLow  = "production_too_low"
	FindingStorageTooSmall   = "storage_too_small"
	FindingDemandUnreachable = "demand_unreachable"
)

// Finding is one classified infeasibility root cause. SuggestedFix is the
// minimal numeric change to the offending parameter that flips the check to
// passing; it is advisory and local, not a joint feasibility guarantee.
type Finding struct {
	Category     string  `json:"category"`
	Explanation  string  `json:"explanation"`
	SuggestedFix float64 `json:"suggested_fix"`
}

// Diagnosis is the ordered list of findings for an infeasible table. The
// list is always non-nil, possibly empty: an infeasible instance that trips
// no aggregate check still yields a well-formed diagnosis.
type Diagnosis struct {
	Findings []Finding `json:"findings"`
}

// PlanOutcome is the full response for one planning run: either Result or
// Diagnosis is set, depending on Status.
type PlanOutcome struct {
	RunID       string     `json:"run_id"`
	Status      string     `json:"status"`
	SolveMillis int64      `json:"solve_ms"`
	DatasetInfo Summary    `json:"dataset_info"`
	Result      *Result    `json:"result,omitempty"`
	Diagnosis   *Diagnosis `json:"diagnosis,omitempty"`
}

// ErrorResponse is the JSON error envelope returned by the HTTP boundary.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
