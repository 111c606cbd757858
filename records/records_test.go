package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlightDirection(t *testing.T) {
	arr := Flight{Direction: "A"}
	dep := Flight{Direction: "D"}

	assert.True(t, arr.IsArrival())
	assert.False(t, arr.IsDeparture())
	assert.True(t, dep.IsDeparture())
	assert.False(t, dep.IsArrival())
}

func TestTaskIsTowing(t *testing.T) {
	assert.True(t, (&Task{TypeCode: "TRACT"}).IsTowing())
	assert.False(t, (&Task{TypeCode: "FUEL"}).IsTowing())
	assert.False(t, (&Task{}).IsTowing())
}

func TestVehicleIsTowingVehicle(t *testing.T) {
	for _, tc := range []struct {
		name string
		want bool
	}{
		{"飞机牵引车", true},
		{"TRACT-02", true},
		{"tract heavy", true},
		{"加油车", false},
		{"", false},
	} {
		v := VehicleFix{TypeName: tc.name}
		assert.Equal(t, tc.want, v.IsTowingVehicle(), tc.name)
	}
}

func TestVehicleFixPosition(t *testing.T) {
	v := VehicleFix{Latitude: 31.15, Longitude: 121.81}
	lat, lon := v.Position()
	assert.Equal(t, 31.15, lat)
	assert.Equal(t, 121.81, lon)
}

func TestParseTimeLenient(t *testing.T) {
	ts, ok := ParseTime("2025/9/19 7:05")
	assert.True(t, ok)
	assert.Equal(t, 2025, ts.Year())
	assert.Equal(t, 9, int(ts.Month()))
	assert.Equal(t, 19, ts.Day())
	assert.Equal(t, 7, ts.Hour())

	_, ok = ParseTime("")
	assert.False(t, ok)

	_, ok = ParseTime("not a time")
	assert.False(t, ok)

	_, ok = ParseTime("2025-09-19 07:05:00")
	assert.True(t, ok)
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2025/9/19")
	assert.True(t, ok)
	assert.Equal(t, 19, d.Day())

	_, ok = ParseDate("19.09.2025")
	assert.False(t, ok)
}

func TestFlightActualBlockTime(t *testing.T) {
	arr := Flight{Direction: "A", ActualOnBlock: "2025/9/19 8:10", ActualOffBlock: "2025/9/19 9:40"}
	dep := Flight{Direction: "D", ActualOnBlock: "2025/9/19 8:10", ActualOffBlock: "2025/9/19 9:40"}

	at, ok := arr.ActualBlockTime()
	assert.True(t, ok)
	assert.Equal(t, 8, at.Hour())

	dt, ok := dep.ActualBlockTime()
	assert.True(t, ok)
	assert.Equal(t, 9, dt.Hour())

	blank := Flight{Direction: "A"}
	_, ok = blank.ActualBlockTime()
	assert.False(t, ok)
}

func TestPositionReportDate(t *testing.T) {
	p := PositionReport{Time: "2025/9/19 12:34"}
	d, ok := p.Date()
	assert.True(t, ok)
	assert.Equal(t, 19, d.Day())

	empty := PositionReport{}
	_, ok = empty.Date()
	assert.False(t, ok)
}
