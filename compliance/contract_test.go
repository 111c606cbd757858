package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(f float64) *float64 { return &f }
func iptr(n int) *int         { return &n }

func defaultRules() Rules {
	return Rules{
		RuleMaxSpeed:           3,
		RuleMinDistance:        5,
		RuleRequiredBrakeTests: 2,
	}
}

func TestCheckComplianceSingleRule(t *testing.T) {
	c := NewContract("towing_safety", defaultRules())

	result := c.CheckCompliance(Sample{Speed: fptr(5)})

	assert.False(t, result.Compliant)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, RuleMaxSpeed, result.Violations[0].Rule)
	assert.Equal(t, SeverityHigh, result.Violations[0].Severity)
	assert.Contains(t, result.Violations[0].Message, "5.0")
	assert.Contains(t, result.Violations[0].Message, "3.0")
}

func TestCheckComplianceAbsentFieldsSkipped(t *testing.T) {
	c := NewContract("towing_safety", defaultRules())

	result := c.CheckCompliance(Sample{})

	assert.True(t, result.Compliant)
	assert.Empty(t, result.Violations)
	assert.Zero(t, c.ViolationCount())
}

func TestCheckComplianceBoundaryValues(t *testing.T) {
	c := NewContract("towing_safety", defaultRules())

	tests := []struct {
		name      string
		sample    Sample
		compliant bool
	}{
		{"speed at limit", Sample{Speed: fptr(3)}, true},
		{"speed just over", Sample{Speed: fptr(3.01)}, false},
		{"distance at minimum", Sample{DistanceToAircraft: fptr(5)}, true},
		{"distance just under", Sample{DistanceToAircraft: fptr(4.99)}, false},
		{"brake tests at requirement", Sample{BrakeTestCount: iptr(2)}, true},
		{"brake tests short", Sample{BrakeTestCount: iptr(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.CheckCompliance(tt.sample)
			assert.Equal(t, tt.compliant, result.Compliant)
		})
	}
}

func TestCheckComplianceAllRulesViolated(t *testing.T) {
	c := NewContract("towing_safety", defaultRules())

	result := c.CheckCompliance(Sample{
		Speed:              fptr(4.2),
		DistanceToAircraft: fptr(3.5),
		BrakeTestCount:     iptr(1),
	})

	assert.False(t, result.Compliant)
	require.Len(t, result.Violations, 3)

	severityByRule := map[string]string{}
	for _, v := range result.Violations {
		severityByRule[v.Rule] = v.Severity
	}
	assert.Equal(t, SeverityHigh, severityByRule[RuleMaxSpeed])
	assert.Equal(t, SeverityCritical, severityByRule[RuleMinDistance])
	assert.Equal(t, SeverityMedium, severityByRule[RuleRequiredBrakeTests])
}

func TestViolationHistoryAppendOnly(t *testing.T) {
	c := NewContract("towing_safety", defaultRules())

	c.CheckCompliance(Sample{Speed: fptr(10)})
	c.CheckCompliance(Sample{Speed: fptr(1)}) // compliant, no record
	c.CheckCompliance(Sample{Speed: fptr(8), DistanceToAircraft: fptr(1)})

	assert.Equal(t, 3, c.ViolationCount())

	history := c.Violations()
	require.Len(t, history, 3)
	assert.Equal(t, "towing_safety", history[0].Contract)
	assert.Equal(t, RuleMaxSpeed, history[0].Violation.Rule)
}

func TestRulesMergedDoesNotMutateBase(t *testing.T) {
	base := defaultRules()

	effective := base.merged(&Overrides{MaxSpeed: fptr(10), MinDistance: fptr(1)})

	assert.Equal(t, 10.0, effective[RuleMaxSpeed])
	assert.Equal(t, 1.0, effective[RuleMinDistance])
	assert.Equal(t, 2.0, effective[RuleRequiredBrakeTests])

	assert.Equal(t, 3.0, base[RuleMaxSpeed])
	assert.Equal(t, 5.0, base[RuleMinDistance])
}

func TestRulesMergedNilOverrides(t *testing.T) {
	base := defaultRules()

	effective := base.merged(nil)

	assert.Equal(t, base, effective)

	// Copy, not alias.
	effective[RuleMaxSpeed] = 99
	assert.Equal(t, 3.0, base[RuleMaxSpeed])
}

func TestHaversine(t *testing.T) {
	assert.Zero(t, Haversine(31.145, 121.805, 31.145, 121.805))

	// One degree of longitude at the equator is about 111.2 km.
	d := Haversine(0, 0, 0, 1)
	assert.InEpsilon(t, 111195.0, d, 0.01)
}
