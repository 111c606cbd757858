package matcher

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsideops/towing-safety-station/records"
)

// fixedStands resolves every stand to one known coordinate, making
// vehicle matches deterministic for structural assertions.
type fixedStands struct {
	lat, lon float64
}

func (s fixedStands) Resolve(standID string) (float64, float64, bool) {
	if standID == "" {
		return 0, 0, false
	}
	return s.lat, s.lon, true
}

func testFlights() []records.Flight {
	return []records.Flight{
		{FUUID: "F1", FlightNumber: "MU5100", ScheduledDate: "2025/9/19", Direction: "A", StandID: "215"},
		{FUUID: "F2", FlightNumber: "HO1252", ScheduledDate: "2025/9/19", Direction: "D", StandID: "108"},
		{FUUID: "F3", FlightNumber: "CA1832", ScheduledDate: "", Direction: "A", StandID: "301"},
	}
}

func testTasks() []records.Task {
	return []records.Task{
		{FUUID: "F1", TypeCode: "TRACT", TypeName: "牵引", ID: "T1", ActualEnd: "2025/9/19 8:00"},
		{FUUID: "F1", TypeCode: "FUEL", TypeName: "加油", ID: "T2", ActualEnd: "2025/9/19 8:30"},
		{FUUID: "F2", TypeCode: "TRACT", TypeName: "牵引", ID: "T3", ActualEnd: "2025/9/19 9:00"},
		{FUUID: "GHOST", TypeCode: "TRACT", TypeName: "牵引", ID: "T4", ActualEnd: "2025/9/19 9:00"},
	}
}

func TestMatchFlightTasksCompleteness(t *testing.T) {
	tasks := testTasks()
	m := New(testFlights(), tasks, nil, nil, fixedStands{31.145, 121.805})

	groups := m.MatchFlightTasks()

	// Every task appears in exactly one group, keyed by its own FUUID,
	// and group sizes sum to the task count.
	total := 0
	for fuuid, group := range groups {
		for _, task := range group {
			assert.Equal(t, fuuid, task.FUUID)
		}
		total += len(group)
	}
	assert.Equal(t, len(tasks), total)

	require.Len(t, groups["F1"], 2)
	assert.Equal(t, "T1", groups["F1"][0].ID, "group order follows input order")
	assert.Len(t, groups["GHOST"], 1, "dangling FUUIDs are grouped, not dropped")
}

func TestMatchFlightTasksIdempotent(t *testing.T) {
	m := New(testFlights(), testTasks(), nil, nil, fixedStands{31.145, 121.805})

	first := m.MatchFlightTasks()
	second := m.MatchFlightTasks()

	require.Equal(t, len(first), len(second))
	for k, v := range first {
		assert.Len(t, second[k], len(v), k)
	}
}

func TestMatchFlightADSB(t *testing.T) {
	reports := []records.PositionReport{
		{ID: "A1", FlightNumber: "MU5100", Time: "2025/9/19 7:58", Latitude: 31.14, Longitude: 121.80},
		{ID: "A2", FlightNumber2: "MU5100", Time: "2025/9/19 8:02", Latitude: 31.15, Longitude: 121.81},
		{ID: "A3", FlightNumber: "MU5100", Time: "2025/9/20 7:58"}, // different date
		{ID: "A4", FlightNumber: "MU5100", Time: "bogus"},          // unparsable timestamp
		{ID: "A5", FlightNumber: "CA1832", Time: "2025/9/19 7:00"}, // flight has no parsable date
	}
	m := New(testFlights(), nil, reports, nil, fixedStands{31.145, 121.805})

	tracks := m.MatchFlightADSB(120)

	require.Len(t, tracks, 1)
	require.Len(t, tracks["F1"], 2)
	assert.Equal(t, "A1", tracks["F1"][0].ID)
	assert.Equal(t, "A2", tracks["F1"][1].ID, "secondary flight number matches too")
	assert.NotContains(t, tracks, "F3", "flights with unparsable dates are skipped")
}

func TestMatchTaskVehicles(t *testing.T) {
	fixes := []records.VehicleFix{
		// In range of T1 (ends 8:00) in both space and time.
		{RecordID: "V1", VehicleNo: "民航沪2456", TypeName: "飞机牵引车", Time: "2025/9/19 8:10", Latitude: 31.146, Longitude: 121.806},
		// Towing vehicle but 45 minutes late.
		{RecordID: "V2", VehicleNo: "民航沪2456", TypeName: "飞机牵引车", Time: "2025/9/19 8:45", Latitude: 31.146, Longitude: 121.806},
		// In time but 0.1° away.
		{RecordID: "V3", VehicleNo: "民航沪2457", TypeName: "飞机牵引车", Time: "2025/9/19 8:05", Latitude: 31.245, Longitude: 121.806},
		// Right place and time, wrong vehicle type.
		{RecordID: "V4", VehicleNo: "民航沪9001", TypeName: "加油车", Time: "2025/9/19 8:05", Latitude: 31.146, Longitude: 121.806},
		// Unparsable fix timestamp.
		{RecordID: "V5", VehicleNo: "民航沪2456", TypeName: "飞机牵引车", Time: "", Latitude: 31.146, Longitude: 121.806},
	}
	m := New(testFlights(), testTasks(), nil, fixes, fixedStands{31.145, 121.805})

	matches := m.MatchTaskVehicles(DefaultDistanceThreshold)

	require.Contains(t, matches, "T1")
	ids := make([]string, 0, len(matches["T1"]))
	for _, v := range matches["T1"] {
		ids = append(ids, v.RecordID)
	}
	assert.Equal(t, []string{"V1"}, ids)

	assert.NotContains(t, matches, "T2", "non-towing tasks are skipped")
	assert.NotContains(t, matches, "T4", "dangling flight reference means no match")
}

func TestMatchAllPopulatesAllMaps(t *testing.T) {
	reports := []records.PositionReport{
		{ID: "A1", FlightNumber: "MU5100", Time: "2025/9/19 7:58"},
	}
	fixes := []records.VehicleFix{
		{RecordID: "V1", TypeName: "飞机牵引车", Time: "2025/9/19 8:10", Latitude: 31.146, Longitude: 121.806},
	}
	m := New(testFlights(), testTasks(), reports, fixes, fixedStands{31.145, 121.805})

	m.MatchAll()
	s := m.Summarize()

	assert.Equal(t, 3, s.FlightsWithTasks)
	assert.Equal(t, 3, s.TowingTasks)
	assert.Equal(t, 1, s.FlightsWithTracks)
	assert.Equal(t, 1, s.TrackPoints)
	assert.Equal(t, 1, s.TasksWithVehicles)
}

func TestRandomStandResolverBoundsAndCaching(t *testing.T) {
	r := NewRandomStandResolver(42)

	seen := make(map[string][2]float64)
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("stand-%d", i)
		lat, lon, ok := r.Resolve(id)
		require.True(t, ok)
		assert.InDelta(t, standBaseLat, lat, standMaxSpread)
		assert.InDelta(t, standBaseLon, lon, standMaxSpread)
		seen[id] = [2]float64{lat, lon}
	}

	// Same id resolves to the same cached coordinate.
	for id, c := range seen {
		lat, lon, ok := r.Resolve(id)
		require.True(t, ok)
		assert.Equal(t, c[0], lat)
		assert.Equal(t, c[1], lon)
	}

	_, _, ok := r.Resolve("")
	assert.False(t, ok)
}

func TestRandomStandResolverSeedDeterminism(t *testing.T) {
	a := NewRandomStandResolver(7)
	b := NewRandomStandResolver(7)

	for _, id := range []string{"215", "108", "301"} {
		alat, alon, _ := a.Resolve(id)
		blat, blon, _ := b.Resolve(id)
		assert.Equal(t, alat, blat, id)
		assert.Equal(t, alon, blon, id)
	}
}

func TestDuplicateFUUIDFirstWins(t *testing.T) {
	flights := []records.Flight{
		{FUUID: "F1", FlightNumber: "MU5100", ScheduledDate: "2025/9/19", StandID: "215"},
		{FUUID: "F1", FlightNumber: "MU5100", ScheduledDate: "2025/9/19", StandID: ""},
	}
	tasks := []records.Task{
		{FUUID: "F1", TypeCode: "TRACT", ID: "T1", ActualEnd: "2025/9/19 8:00"},
	}
	fixes := []records.VehicleFix{
		{RecordID: "V1", TypeName: "飞机牵引车", Time: "2025/9/19 8:00", Latitude: 31.145, Longitude: 121.805},
	}
	m := New(flights, tasks, nil, fixes, fixedStands{31.145, 121.805})

	// The first flight record carries the stand, so the task matches.
	matches := m.MatchTaskVehicles(DefaultDistanceThreshold)
	assert.Contains(t, matches, "T1")
}
