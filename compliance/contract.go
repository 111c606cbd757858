package compliance

import (
	"fmt"
	"sync"
	"time"
)

// Contract is a named rule set evaluated against operational samples. It
// keeps an append-only history of every violation it has produced, used
// for aggregate statistics.
type Contract struct {
	Name  string
	Rules Rules

	mu         sync.Mutex
	violations []ViolationRecord
}

// NewContract creates a contract over the given base rules.
func NewContract(name string, rules Rules) *Contract {
	return &Contract{Name: name, Rules: rules}
}

// CheckCompliance evaluates the contract's base rules against one sample.
func (c *Contract) CheckCompliance(sample Sample) CheckResult {
	return c.checkWith(c.Rules, sample)
}

// checkWith evaluates an effective rule set against one sample. Rules are
// independent: each applicable rule is evaluated and all violations are
// returned together. A rule whose input field is absent is skipped.
func (c *Contract) checkWith(rules Rules, sample Sample) CheckResult {
	var violations []Violation

	if sample.Speed != nil {
		if max, ok := rules[RuleMaxSpeed]; ok && *sample.Speed > max {
			violations = append(violations, Violation{
				Rule:      RuleMaxSpeed,
				Message:   fmt.Sprintf("speed %.1f km/h exceeds limit %.1f km/h", *sample.Speed, max),
				Severity:  SeverityHigh,
				Timestamp: timestamp(),
			})
		}
	}

	if sample.DistanceToAircraft != nil {
		if min, ok := rules[RuleMinDistance]; ok && *sample.DistanceToAircraft < min {
			violations = append(violations, Violation{
				Rule:      RuleMinDistance,
				Message:   fmt.Sprintf("distance %.1f m below safety minimum %.1f m", *sample.DistanceToAircraft, min),
				Severity:  SeverityCritical,
				Timestamp: timestamp(),
			})
		}
	}

	if sample.BrakeTestCount != nil {
		if required, ok := rules[RuleRequiredBrakeTests]; ok && float64(*sample.BrakeTestCount) < required {
			violations = append(violations, Violation{
				Rule:      RuleRequiredBrakeTests,
				Message:   fmt.Sprintf("%d brake tests performed, fewer than the required %.0f", *sample.BrakeTestCount, required),
				Severity:  SeverityMedium,
				Timestamp: timestamp(),
			})
		}
	}

	result := CheckResult{
		Compliant:  len(violations) == 0,
		Violations: violations,
		CheckedAt:  timestamp(),
	}

	if len(violations) > 0 {
		c.mu.Lock()
		for _, v := range violations {
			c.violations = append(c.violations, ViolationRecord{
				Contract:   c.Name,
				Violation:  v,
				Sample:     sample.asMap(),
				RecordedAt: timestamp(),
			})
		}
		c.mu.Unlock()
	}

	return result
}

// ViolationCount returns the length of the contract's violation history.
func (c *Contract) ViolationCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.violations)
}

// Violations returns a copy of the violation history.
func (c *Contract) Violations() []ViolationRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]ViolationRecord, len(c.violations))
	copy(out, c.violations)
	return out
}

func timestamp() string {
	return time.Now().Format(time.RFC3339Nano)
}
