package records

import (
	"strings"
	"time"
)

// The source tables use slash-separated timestamps without zero padding
// ("2025/9/19 7:05"). Dash-separated variants show up in some exports.
var timeLayouts = []string{
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

var dateLayouts = []string{
	"2006/1/2",
	"2006-01-02",
}

// ParseTime parses a source timestamp string. Empty or malformed input
// returns ok=false; it is never an error.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDate parses a date-only string such as a flight's scheduled date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ScheduledDateTime parses the flight's scheduled calendar date.
func (f *Flight) ScheduledDateTime() (time.Time, bool) {
	return ParseDate(f.ScheduledDate)
}

// ActualBlockTime returns the flight's operational reference time:
// on-block for arrivals, off-block for departures.
func (f *Flight) ActualBlockTime() (time.Time, bool) {
	if f.IsArrival() {
		return ParseTime(f.ActualOnBlock)
	}
	return ParseTime(f.ActualOffBlock)
}

// ActualEndTime parses the task's actual end timestamp.
func (t *Task) ActualEndTime() (time.Time, bool) {
	return ParseTime(t.ActualEnd)
}

// Timestamp parses the fix's location time.
func (v *VehicleFix) Timestamp() (time.Time, bool) {
	return ParseTime(v.Time)
}

// Timestamp parses the report's time field.
func (p *PositionReport) Timestamp() (time.Time, bool) {
	return ParseTime(p.Time)
}

// Date returns the calendar date of the report, parsed from the leading
// date token of its time field.
func (p *PositionReport) Date() (time.Time, bool) {
	fields := strings.Fields(p.Time)
	if len(fields) == 0 {
		return time.Time{}, false
	}
	return ParseDate(fields[0])
}
