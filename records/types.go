package records

import "strings"

// TowingTaskCode is the task type code assigned to aircraft tow operations.
const TowingTaskCode = "TRACT"

// Flight represents one row of the flight schedule table.
type Flight struct {
	FUUID             string `json:"fuuid"`
	FlightNumber      string `json:"flight_number"`
	ScheduledDate     string `json:"scheduled_date"` // calendar date, no time component
	Direction         string `json:"direction"`      // "A" arrival, "D" departure
	AirportIATA       string `json:"airport_iata"`
	AirportICAO       string `json:"airport_icao"`
	StandID           string `json:"stand_id,omitempty"`
	ScheduledOnBlock  string `json:"scheduled_on_block,omitempty"`
	ActualOnBlock     string `json:"actual_on_block,omitempty"`
	ScheduledOffBlock string `json:"scheduled_off_block,omitempty"`
	ActualOffBlock    string `json:"actual_off_block,omitempty"`
	ScheduledTakeoff  string `json:"scheduled_takeoff,omitempty"`
	ActualTakeoff     string `json:"actual_takeoff,omitempty"`
}

// Task represents one ground-service task linked to a flight by FUUID.
// The referenced flight is not guaranteed to be present in the loaded set.
type Task struct {
	FUUID          string `json:"fuuid"`
	TypeCode       string `json:"type_code"`
	TypeName       string `json:"type_name"`
	Code           string `json:"code,omitempty"`
	Name           string `json:"name,omitempty"`
	ResourceID     string `json:"resource_id,omitempty"`
	Tasker         string `json:"tasker,omitempty"`
	ScheduledBegin string `json:"scheduled_begin,omitempty"`
	ActualBegin    string `json:"actual_begin,omitempty"`
	ScheduledEnd   string `json:"scheduled_end,omitempty"`
	ActualEnd      string `json:"actual_end,omitempty"`
	ID             string `json:"id,omitempty"`
}

// PositionReport represents a single aircraft ADS-B fix. It carries no
// FUUID; linkage to a flight is inferred from the flight number and date.
type PositionReport struct {
	ID            string  `json:"id"`
	HexCode       string  `json:"hex_code,omitempty"`
	Longitude     float64 `json:"longitude"`
	Latitude      float64 `json:"latitude"`
	Altitude      float64 `json:"altitude"`
	GroundSpeed   float64 `json:"ground_speed"`
	Heading       float64 `json:"heading"`
	FlightNumber  string  `json:"flight_number"`
	FlightNumber2 string  `json:"flight_number2,omitempty"`
	Registration  string  `json:"registration,omitempty"`
	AircraftType  string  `json:"aircraft_type,omitempty"`
	Origin        string  `json:"origin,omitempty"`
	Destination   string  `json:"destination,omitempty"`
	Time          string  `json:"time,omitempty"`
}

// VehicleFix represents a single ground-vehicle GPS fix.
type VehicleFix struct {
	RecordID   string  `json:"record_id"`
	Time       string  `json:"time"`
	VehicleNo  string  `json:"vehicle_no"`
	TypeName   string  `json:"type_name"`
	Department string  `json:"department,omitempty"`
	Telephone  string  `json:"telephone,omitempty"`
	Online     string  `json:"online,omitempty"`
	Longitude  float64 `json:"longitude"`
	Latitude   float64 `json:"latitude"`
	Speed      float64 `json:"speed"`
	Heading    float64 `json:"heading"`
}

// IsArrival reports whether the flight is inbound.
func (f *Flight) IsArrival() bool {
	return f.Direction == "A"
}

// IsDeparture reports whether the flight is outbound.
func (f *Flight) IsDeparture() bool {
	return f.Direction == "D"
}

// IsTowing reports whether the task is an aircraft tow operation.
func (t *Task) IsTowing() bool {
	return t.TypeCode == TowingTaskCode
}

// IsTowingVehicle reports whether the vehicle type marks a tow tractor.
// The fleet table mixes Chinese type names and the TRACT code.
func (v *VehicleFix) IsTowingVehicle() bool {
	return strings.Contains(v.TypeName, "牵引车") ||
		strings.Contains(strings.ToUpper(v.TypeName), TowingTaskCode)
}

// Position returns the fix coordinate as (lat, lon).
func (v *VehicleFix) Position() (float64, float64) {
	return v.Latitude, v.Longitude
}
