package compliance

import "errors"

// Severity tiers, ordered medium < high < critical.
const (
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Rule names understood by the contract evaluator.
const (
	RuleMaxSpeed           = "max_speed"
	RuleMinDistance        = "min_distance"
	RuleRequiredBrakeTests = "required_brake_tests"
)

// Structured request errors. Malformed data is never an error; only
// unknown channel or contract names are.
var (
	ErrChannelNotFound  = errors.New("channel not found")
	ErrContractNotFound = errors.New("contract not found")
)

// Rules maps rule name to numeric threshold.
type Rules map[string]float64

// merged returns a copy of the base rules with overrides applied. The
// base is never mutated, so a batch run with overrides cannot disturb
// concurrent evaluations against the same contract.
func (r Rules) merged(o *Overrides) Rules {
	out := make(Rules, len(r))
	for k, v := range r {
		out[k] = v
	}
	if o == nil {
		return out
	}
	if o.MaxSpeed != nil {
		out[RuleMaxSpeed] = *o.MaxSpeed
	}
	if o.MinDistance != nil {
		out[RuleMinDistance] = *o.MinDistance
	}
	return out
}

// Overrides transiently replaces matching thresholds for one batch call.
type Overrides struct {
	MaxSpeed    *float64 `json:"max_speed,omitempty"`
	MinDistance *float64 `json:"min_distance,omitempty"`
}

// Sample is the closed evaluation schema. Absent fields are nil and their
// rules are silently skipped.
type Sample struct {
	Speed              *float64 `json:"speed,omitempty"`
	DistanceToAircraft *float64 `json:"distance_to_aircraft,omitempty"`
	BrakeTestCount     *int     `json:"brake_test_count,omitempty"`
}

// asMap renders only the set fields, for ledger payloads and alerts.
func (s Sample) asMap() map[string]any {
	out := map[string]any{}
	if s.Speed != nil {
		out["speed"] = *s.Speed
	}
	if s.DistanceToAircraft != nil {
		out["distance_to_aircraft"] = *s.DistanceToAircraft
	}
	if s.BrakeTestCount != nil {
		out["brake_test_count"] = *s.BrakeTestCount
	}
	return out
}

// Violation is the output of one failed rule check.
type Violation struct {
	Rule      string `json:"rule"`
	Message   string `json:"violation"`
	Severity  string `json:"severity"`
	Timestamp string `json:"timestamp"`
}

// CheckResult is returned by every compliance check, compliant or not.
type CheckResult struct {
	Compliant  bool        `json:"compliant"`
	Violations []Violation `json:"violations"`
	CheckedAt  string      `json:"checked_at"`
}

// ViolationRecord is one entry of a contract's violation history.
type ViolationRecord struct {
	Contract   string         `json:"contract"`
	Violation  Violation      `json:"violation"`
	Sample     map[string]any `json:"sample"`
	RecordedAt string         `json:"recorded_at"`
}

// Node is a platform participant. The regulator node attributes risk
// uploads.
type Node struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Organization string `json:"organization"`
}

// Alert is one row of the in-memory alert log.
type Alert struct {
	ID            string         `json:"id"`
	Contract      string         `json:"contract"`
	VehicleID     string         `json:"vehicle_id,omitempty"`
	Rule          string         `json:"rule"`
	Message       string         `json:"violation"`
	Severity      string         `json:"severity"`
	ViolationTime string         `json:"violation_time"`
	Sample        map[string]any `json:"sample,omitempty"`
	CheckedAt     string         `json:"checked_at"`
}

// AlertTableColumns is the fixed column set of batch-check results.
var AlertTableColumns = []string{
	"vehicle_id", "rule", "violation", "severity", "violation_time", "sample", "checked_at",
}

// AlertTable is the table-shaped result of a batch check. Rows is empty
// but non-nil when no violations were found.
type AlertTable struct {
	Columns []string `json:"columns"`
	Rows    []Alert  `json:"rows"`
}

// Statistics aggregates platform counters for display.
type Statistics struct {
	TotalBlocks           int            `json:"total_blocks"`
	BlocksPerChannel      map[string]int `json:"blocks_per_channel"`
	TotalViolations       int            `json:"total_violations"`
	ViolationsPerContract map[string]int `json:"violations_per_contract"`
	AlertsCached          int            `json:"alerts_cached"`
}
