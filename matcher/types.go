package matcher

import (
	"math/rand"
	"sync"
)

// StandResolver maps a stand identifier to an approximate coordinate.
// Implementations back this with a real stand table where available.
type StandResolver interface {
	Resolve(standID string) (lat, lon float64, ok bool)
}

// Reference point on the apron; stand offsets are generated around it.
const (
	standBaseLat   = 31.145
	standBaseLon   = 121.805
	standMaxSpread = 0.015
)

// RandomStandResolver is a placeholder resolver: each distinct stand id is
// assigned one pseudo-random offset (bounded ±0.015° in both axes) around
// the reference point, generated once and cached. It stands in for a real
// stand-coordinate lookup table; matches produced through it are not
// reproducible across runs unless the resolver is seeded.
type RandomStandResolver struct {
	mu     sync.Mutex
	rng    *rand.Rand
	coords map[string][2]float64
}

// NewRandomStandResolver creates a resolver seeded with the given value.
func NewRandomStandResolver(seed int64) *RandomStandResolver {
	return &RandomStandResolver{
		rng:    rand.New(rand.NewSource(seed)),
		coords: make(map[string][2]float64),
	}
}

// Resolve returns the cached coordinate for standID, generating it on
// first use. Every stand id resolves; ok is false only for empty ids.
func (r *RandomStandResolver) Resolve(standID string) (float64, float64, bool) {
	if standID == "" {
		return 0, 0, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, exists := r.coords[standID]; exists {
		return c[0], c[1], true
	}

	lat := standBaseLat + (r.rng.Float64()*2-1)*standMaxSpread
	lon := standBaseLon + (r.rng.Float64()*2-1)*standMaxSpread
	r.coords[standID] = [2]float64{lat, lon}
	return lat, lon, true
}

// Summary reports match-pass result counts for display and logging.
type Summary struct {
	FlightsWithTasks  int `json:"flights_with_tasks"`
	TowingTasks       int `json:"towing_tasks"`
	FlightsWithTracks int `json:"flights_with_tracks"`
	TrackPoints       int `json:"track_points"`
	TasksWithVehicles int `json:"tasks_with_vehicles"`
	VehiclePoints     int `json:"vehicle_points"`
}
