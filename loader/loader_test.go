package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadFlights(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "flights.csv",
		"FUUID,FLIGHTIDENTITY,FLIGHTSCHEDULEDDATE,FLIGHTDIRECTION,STANDID\n"+
			"F1, MU5100 ,2025/9/19,A,215\n"+
			"F2,HO1252,2025/9/19,D,108\n")

	l := New(dir)
	require.NoError(t, l.LoadFlights("flights.csv"))
	require.Len(t, l.Flights, 2)

	assert.Equal(t, "F1", l.Flights[0].FUUID)
	assert.Equal(t, "MU5100", l.Flights[0].FlightNumber, "flight numbers are trimmed")
	assert.Equal(t, "215", l.Flights[0].StandID)
	assert.True(t, l.Flights[0].IsArrival())
	assert.True(t, l.Flights[1].IsDeparture())
}

func TestLoadVehicleFixesNumericFields(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "gps.csv",
		"VEHICLELOCATION_PK,LOCATIONTIME,VEHICLENO,VEHICLETYPENAME,LONGITUDE,LATITUDE,SPEED,DIRECTION\n"+
			"V1,2025/9/19 8:00,民航沪2456,飞机牵引车,121.805,31.145,4.2,90\n"+
			"V2,2025/9/19 8:01,民航沪2456,飞机牵引车,bogus,31.146,,90\n")

	l := New(dir)
	require.NoError(t, l.LoadVehicleFixes("gps.csv"))
	require.Len(t, l.VehicleFixes, 2)

	assert.InDelta(t, 121.805, l.VehicleFixes[0].Longitude, 1e-9)
	assert.InDelta(t, 4.2, l.VehicleFixes[0].Speed, 1e-9)
	assert.True(t, l.VehicleFixes[0].IsTowingVehicle())

	// Unparsable numeric fields fall back to zero, never an error.
	assert.Equal(t, 0.0, l.VehicleFixes[1].Longitude)
	assert.Equal(t, 0.0, l.VehicleFixes[1].Speed)
}

func TestLoadSkipsShortRows(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tasks.csv",
		"FUUID,TASKTYPECODE,TASKTYPENAME,ID\n"+
			"F1,TRACT,牵引,T1\n"+
			"broken\n"+
			"F2,FUEL,加油,T2\n")

	l := New(dir)
	require.NoError(t, l.LoadTasks("tasks.csv"))
	require.Len(t, l.Tasks, 2)
	assert.True(t, l.Tasks[0].IsTowing())
	assert.False(t, l.Tasks[1].IsTowing())
}

func TestLoadMissingFile(t *testing.T) {
	l := New(t.TempDir())
	err := l.LoadFlights("nope.csv")
	assert.Error(t, err)
	assert.Empty(t, l.Flights)
}

func TestLoadAllToleratesMissingFiles(t *testing.T) {
	l := New(t.TempDir())
	l.LoadAll()
	assert.Empty(t, l.Flights)
	assert.Empty(t, l.Tasks)
	assert.Empty(t, l.PositionReports)
	assert.Empty(t, l.VehicleFixes)
}
