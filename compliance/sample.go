package compliance

import (
	"strconv"
	"strings"

	"github.com/airsideops/towing-safety-station/records"
)

// sampleFromRecord normalizes one batch input (a typed vehicle fix or a
// key-value mapping) into the closed Sample schema plus the raw record
// map kept as the alert back-reference and the best-effort vehicle id.
// Unconvertible or missing fields are omitted, never defaulted to zero.
func sampleFromRecord(rec any) (Sample, map[string]any, string) {
	switch v := rec.(type) {
	case records.VehicleFix:
		return sampleFromFix(&v)
	case *records.VehicleFix:
		return sampleFromFix(v)
	case map[string]any:
		return sampleFromMap(v)
	default:
		return Sample{}, nil, ""
	}
}

func sampleFromFix(v *records.VehicleFix) (Sample, map[string]any, string) {
	speed := v.Speed
	lat, lon := v.Position()
	raw := map[string]any{
		"VEHICLELOCATION_PK": v.RecordID,
		"VEHICLENO":          v.VehicleNo,
		"VEHICLETYPENAME":    v.TypeName,
		"LOCATIONTIME":       v.Time,
		"LATITUDE":           lat,
		"LONGITUDE":          lon,
		"SPEED":              v.Speed,
	}
	return Sample{Speed: &speed}, raw, v.VehicleNo
}

func sampleFromMap(rec map[string]any) (Sample, map[string]any, string) {
	var s Sample

	if f, ok := firstFloat(rec, "SPEED", "speed"); ok {
		s.Speed = &f
	}

	if f, ok := firstFloat(rec, "distance_to_aircraft"); ok {
		s.DistanceToAircraft = &f
	} else {
		// No explicit distance: estimate from the paired aircraft
		// position if both coordinates are present.
		planeLat, ok1 := firstFloat(rec, "plane_lat")
		planeLon, ok2 := firstFloat(rec, "plane_lon")
		lat, ok3 := firstFloat(rec, "LATITUDE", "latitude")
		lon, ok4 := firstFloat(rec, "LONGITUDE", "longitude")
		if ok1 && ok2 && ok3 && ok4 {
			d := Haversine(lat, lon, planeLat, planeLon)
			s.DistanceToAircraft = &d
		}
	}

	if n, ok := firstInt(rec, "brake_test_count", "BRAKE_TEST_COUNT"); ok {
		s.BrakeTestCount = &n
	}

	return s, rec, vehicleID(rec)
}

// vehicleID looks up the vehicle identifier across the field-name
// spellings seen in the source exports.
func vehicleID(rec map[string]any) string {
	for _, key := range []string{"VEHICLENO", "vehicleno", "vehicle_no"} {
		if v, ok := rec[key]; ok {
			if str, ok := v.(string); ok && str != "" {
				return str
			}
		}
	}
	return ""
}

func firstFloat(rec map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		if v, ok := rec[key]; ok {
			if f, ok := toFloat(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}

func firstInt(rec map[string]any, keys ...string) (int, bool) {
	for _, key := range keys {
		if v, ok := rec[key]; ok {
			if n, ok := toInt(v); ok {
				return n, true
			}
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		val = strings.TrimSpace(val)
		if val == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func toInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
