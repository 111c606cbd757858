// Package matcher cross-links the four ground-operations datasets: flights
// to ground tasks by FUUID, flights to ADS-B tracks by flight number and
// date, and towing tasks to tow-vehicle GPS fixes by stand proximity and
// time window.
package matcher

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/airsideops/towing-safety-station/records"
)

// Default match parameters, tuned for the source data volumes.
const (
	DefaultTimeWindowMinutes = 120
	// DefaultDistanceThreshold is in lat/lon degree space, roughly 1 km.
	DefaultDistanceThreshold = 0.01
)

// Vehicle fixes are matched within this window around the task's actual
// end time.
const vehicleTimeWindow = 30 * time.Minute

// Matcher owns the three join maps. Each match pass rebuilds its map from
// the loaded collections; accessors return snapshots.
type Matcher struct {
	mu sync.RWMutex

	flights []records.Flight
	tasks   []records.Task
	reports []records.PositionReport
	fixes   []records.VehicleFix

	stands StandResolver

	// First flight wins when a FUUID appears more than once.
	flightByFUUID map[string]*records.Flight

	flightTasks  map[string][]records.Task
	flightTracks map[string][]records.PositionReport
	taskVehicles map[string][]records.VehicleFix
}

// New creates a Matcher over the loaded collections. The stand resolver is
// injectable so the placeholder coordinate scheme can be swapped for a
// real stand table without touching the matching logic.
func New(flights []records.Flight, tasks []records.Task, reports []records.PositionReport, fixes []records.VehicleFix, stands StandResolver) *Matcher {
	m := &Matcher{
		flights:       flights,
		tasks:         tasks,
		reports:       reports,
		fixes:         fixes,
		stands:        stands,
		flightByFUUID: make(map[string]*records.Flight, len(flights)),
		flightTasks:   map[string][]records.Task{},
		flightTracks:  map[string][]records.PositionReport{},
		taskVehicles:  map[string][]records.VehicleFix{},
	}
	for i := range flights {
		f := &flights[i]
		if _, exists := m.flightByFUUID[f.FUUID]; !exists {
			m.flightByFUUID[f.FUUID] = f
		}
	}
	return m
}

// MatchFlightTasks groups all tasks by FUUID. Task order within a group
// follows input order. Re-running replaces the map with an equivalent
// result for unchanged inputs.
func (m *Matcher) MatchFlightTasks() map[string][]records.Task {
	grouped := make(map[string][]records.Task)
	towing := 0
	for _, t := range m.tasks {
		grouped[t.FUUID] = append(grouped[t.FUUID], t)
		if t.IsTowing() {
			towing++
		}
	}

	m.mu.Lock()
	m.flightTasks = grouped
	m.mu.Unlock()

	log.Printf("Matched %d/%d flights with ground tasks (%d towing tasks)",
		len(grouped), len(m.flights), towing)
	return m.FlightTasks()
}

// MatchFlightADSB associates ADS-B position reports with flights whose
// flight number matches the report's primary or secondary number and whose
// scheduled date equals the report's calendar date.
//
// windowMinutes is accepted as the intended ±minute refinement around the
// flight's block times, but matching is currently date-coarse; the
// parameter does not narrow results.
func (m *Matcher) MatchFlightADSB(windowMinutes int) map[string][]records.PositionReport {
	log.Printf("Matching flights with ADS-B tracks (time window: ±%d min)", windowMinutes)

	// Index reports by flight number first so the per-flight scan is
	// O(candidates) instead of O(all reports).
	byNumber := make(map[string][]int, len(m.reports))
	for i := range m.reports {
		r := &m.reports[i]
		if r.FlightNumber != "" {
			byNumber[r.FlightNumber] = append(byNumber[r.FlightNumber], i)
		}
		if r.FlightNumber2 != "" && r.FlightNumber2 != r.FlightNumber {
			byNumber[r.FlightNumber2] = append(byNumber[r.FlightNumber2], i)
		}
	}

	grouped := make(map[string][]records.PositionReport)
	for i := range m.flights {
		f := &m.flights[i]
		flightDate, ok := f.ScheduledDateTime()
		if !ok {
			continue // Unparsable scheduled date: flight is skipped, not an error
		}

		for _, idx := range byNumber[f.FlightNumber] {
			r := &m.reports[idx]
			reportDate, ok := r.Date()
			if !ok {
				continue
			}
			if sameDay(flightDate, reportDate) {
				grouped[f.FUUID] = append(grouped[f.FUUID], *r)
			}
		}
	}

	m.mu.Lock()
	m.flightTracks = grouped
	m.mu.Unlock()

	total := 0
	for _, pts := range grouped {
		total += len(pts)
	}
	log.Printf("Matched %d flights with ADS-B tracks (%d track points)", len(grouped), total)
	return m.FlightTracks()
}

// MatchTaskVehicles associates tow-vehicle fixes with towing tasks: the
// fix must lie within thresholdDegrees (Euclidean in degree space) of the
// task flight's estimated stand coordinate and within 30 minutes of the
// task's actual end time.
func (m *Matcher) MatchTaskVehicles(thresholdDegrees float64) map[string][]records.VehicleFix {
	log.Printf("Matching towing tasks with vehicle GPS (distance threshold: %.3f°)", thresholdDegrees)

	grouped := make(map[string][]records.VehicleFix)
	for i := range m.tasks {
		t := &m.tasks[i]
		if !t.IsTowing() || t.ID == "" {
			continue
		}

		// Dangling FUUIDs and flights without a stand are no-matches.
		flight := m.flightByFUUID[t.FUUID]
		if flight == nil || flight.StandID == "" {
			continue
		}
		standLat, standLon, ok := m.stands.Resolve(flight.StandID)
		if !ok {
			continue
		}
		taskEnd, ok := t.ActualEndTime()
		if !ok {
			continue
		}

		for j := range m.fixes {
			v := &m.fixes[j]
			if !v.IsTowingVehicle() {
				continue
			}
			fixTime, ok := v.Timestamp()
			if !ok {
				continue
			}
			if absDuration(fixTime.Sub(taskEnd)) > vehicleTimeWindow {
				continue
			}
			fixLat, fixLon := v.Position()
			if degreeDistance(standLat, standLon, fixLat, fixLon) <= thresholdDegrees {
				grouped[t.ID] = append(grouped[t.ID], *v)
			}
		}
	}

	m.mu.Lock()
	m.taskVehicles = grouped
	m.mu.Unlock()

	total := 0
	for _, pts := range grouped {
		total += len(pts)
	}
	log.Printf("Matched %d towing tasks with vehicle GPS (%d fixes)", len(grouped), total)
	return m.TaskVehicles()
}

// MatchAll runs the three match passes in order: tasks, position reports,
// vehicles.
func (m *Matcher) MatchAll() {
	m.MatchFlightTasks()
	m.MatchFlightADSB(DefaultTimeWindowMinutes)
	m.MatchTaskVehicles(DefaultDistanceThreshold)
}

// FlightTasks returns a snapshot of the FUUID→tasks join map.
func (m *Matcher) FlightTasks() map[string][]records.Task {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]records.Task, len(m.flightTasks))
	for k, v := range m.flightTasks {
		out[k] = v
	}
	return out
}

// FlightTracks returns a snapshot of the FUUID→position-reports join map.
func (m *Matcher) FlightTracks() map[string][]records.PositionReport {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]records.PositionReport, len(m.flightTracks))
	for k, v := range m.flightTracks {
		out[k] = v
	}
	return out
}

// TaskVehicles returns a snapshot of the task-id→vehicle-fixes join map.
func (m *Matcher) TaskVehicles() map[string][]records.VehicleFix {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]records.VehicleFix, len(m.taskVehicles))
	for k, v := range m.taskVehicles {
		out[k] = v
	}
	return out
}

// Summarize reports the current join-map sizes.
func (m *Matcher) Summarize() Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Summary{
		FlightsWithTasks:  len(m.flightTasks),
		FlightsWithTracks: len(m.flightTracks),
		TasksWithVehicles: len(m.taskVehicles),
	}
	for _, tasks := range m.flightTasks {
		for i := range tasks {
			if tasks[i].IsTowing() {
				s.TowingTasks++
			}
		}
	}
	for _, pts := range m.flightTracks {
		s.TrackPoints += len(pts)
	}
	for _, pts := range m.taskVehicles {
		s.VehiclePoints += len(pts)
	}
	return s
}

// sameDay reports whether two timestamps fall on the same calendar date.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// degreeDistance is the Euclidean distance in lat/lon degree space. It is
// not geodesic; thresholds are calibrated in degrees.
func degreeDistance(lat1, lon1, lat2, lon2 float64) float64 {
	return math.Hypot(lat1-lat2, lon1-lon2)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
