// Package loader reads the four airport ground-operations source tables
// (flight schedule, ground-service tasks, aircraft ADS-B fixes, tow-vehicle
// GPS traces) from CSV files into typed records.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/airsideops/towing-safety-station/records"
)

// Default source file names, matching the cleaned export tables.
const (
	FlightsFile    = "clean_main.csv"
	TasksFile      = "clean_task_info.csv"
	ADSBFile       = "ADSB_PVG_merged.csv"
	VehicleGPSFile = "vehicle_gps_towing_merged.csv"
)

// Loader loads and holds the four source collections.
type Loader struct {
	DataDir string

	Flights         []records.Flight
	Tasks           []records.Task
	PositionReports []records.PositionReport
	VehicleFixes    []records.VehicleFix
}

// New creates a Loader rooted at dataDir.
func New(dataDir string) *Loader {
	return &Loader{DataDir: dataDir}
}

// LoadAll loads every source table. Missing files are skipped with a log
// line; the corresponding collection stays empty.
func (l *Loader) LoadAll() {
	if err := l.LoadFlights(FlightsFile); err != nil {
		log.Printf("Skipping flight data: %v", err)
	}
	if err := l.LoadTasks(TasksFile); err != nil {
		log.Printf("Skipping task data: %v", err)
	}
	if err := l.LoadPositionReports(ADSBFile); err != nil {
		log.Printf("Skipping ADS-B data: %v", err)
	}
	if err := l.LoadVehicleFixes(VehicleGPSFile); err != nil {
		log.Printf("Skipping vehicle GPS data: %v", err)
	}
}

// LoadFlights loads the flight schedule table.
func (l *Loader) LoadFlights(filename string) error {
	rows, err := l.readTable(filename)
	if err != nil {
		return err
	}

	l.Flights = l.Flights[:0]
	for _, r := range rows {
		l.Flights = append(l.Flights, records.Flight{
			FUUID:             r.get("FUUID"),
			FlightNumber:      strings.TrimSpace(r.get("FLIGHTIDENTITY")),
			ScheduledDate:     r.get("FLIGHTSCHEDULEDDATE"),
			Direction:         r.get("FLIGHTDIRECTION"),
			AirportIATA:       r.get("BASEAIRPORTIATACODE"),
			AirportICAO:       r.get("BASEAIRPORTICAOCODE"),
			StandID:           r.get("STANDID"),
			ScheduledOnBlock:  r.get("SCHEDULEDONBLOCKDATETIME"),
			ActualOnBlock:     r.get("ACTUALONBLOCKDATETIME"),
			ScheduledOffBlock: r.get("SCHEDULEDOFFBLOCKDATETIME"),
			ActualOffBlock:    r.get("ACTUALOFFBLOCKDATETIME"),
			ScheduledTakeoff:  r.get("SCHEDULEDTAKEOFFDATETIME"),
			ActualTakeoff:     r.get("ACTUALTAKEOFFDATETIME"),
		})
	}

	log.Printf("Loaded %d flight records from %s", len(l.Flights), filename)
	return nil
}

// LoadTasks loads the ground-service task table.
func (l *Loader) LoadTasks(filename string) error {
	rows, err := l.readTable(filename)
	if err != nil {
		return err
	}

	l.Tasks = l.Tasks[:0]
	for _, r := range rows {
		l.Tasks = append(l.Tasks, records.Task{
			FUUID:          r.get("FUUID"),
			TypeCode:       r.get("TASKTYPECODE"),
			TypeName:       r.get("TASKTYPENAME"),
			Code:           r.get("TASKCODE"),
			Name:           r.get("TASKNAME"),
			ResourceID:     r.get("RESOURCEID"),
			Tasker:         r.get("TASKER"),
			ScheduledBegin: r.get("TASKSCHEDULEDBEGINDATETIME"),
			ActualBegin:    r.get("TASKACTUALBEGINDATETIME"),
			ScheduledEnd:   r.get("TASKSCHEDULEDENDDATETIME"),
			ActualEnd:      r.get("TASKACTUALENDDATETIME"),
			ID:             r.get("ID"),
		})
	}

	log.Printf("Loaded %d task records from %s", len(l.Tasks), filename)
	return nil
}

// LoadPositionReports loads the aircraft ADS-B table.
func (l *Loader) LoadPositionReports(filename string) error {
	rows, err := l.readTable(filename)
	if err != nil {
		return err
	}

	l.PositionReports = l.PositionReports[:0]
	for _, r := range rows {
		l.PositionReports = append(l.PositionReports, records.PositionReport{
			ID:            r.get("ID"),
			HexCode:       r.get("HX"),
			Longitude:     r.getFloat("LO"),
			Latitude:      r.getFloat("LA"),
			Altitude:      r.getFloat("HE"),
			GroundSpeed:   r.getFloat("GV"),
			Heading:       r.getFloat("CO"),
			FlightNumber:  r.get("FN"),
			FlightNumber2: r.get("FN2"),
			Registration:  r.get("RE"),
			AircraftType:  r.get("FT"),
			Origin:        r.get("OA"),
			Destination:   r.get("DA"),
			Time:          r.get("TE"),
		})
	}

	log.Printf("Loaded %d ADS-B records from %s", len(l.PositionReports), filename)
	return nil
}

// LoadVehicleFixes loads the tow-vehicle GPS trace table.
func (l *Loader) LoadVehicleFixes(filename string) error {
	rows, err := l.readTable(filename)
	if err != nil {
		return err
	}

	l.VehicleFixes = l.VehicleFixes[:0]
	for _, r := range rows {
		l.VehicleFixes = append(l.VehicleFixes, records.VehicleFix{
			RecordID:   r.get("VEHICLELOCATION_PK"),
			Time:       r.get("LOCATIONTIME"),
			VehicleNo:  r.get("VEHICLENO"),
			TypeName:   r.get("VEHICLETYPENAME"),
			Department: r.get("DEPARTMENTNAME"),
			Telephone:  r.get("TELEPHONE"),
			Online:     r.get("ISONLINE"),
			Longitude:  r.getFloat("LONGITUDE"),
			Latitude:   r.getFloat("LATITUDE"),
			Speed:      r.getFloat("SPEED"),
			Heading:    r.getFloat("DIRECTION"),
		})
	}

	log.Printf("Loaded %d vehicle GPS records from %s", len(l.VehicleFixes), filename)
	return nil
}

// readTable opens a CSV file and returns its data rows keyed by header.
func (l *Loader) readTable(filename string) ([]row, error) {
	f, err := os.Open(filepath.Join(l.DataDir, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer f.Close()
	return parseTable(f)
}

// parseTable reads header-keyed CSV rows. Rows shorter than the header are
// skipped rather than failing the whole load.
func parseTable(r io.Reader) ([]row, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1 // Allow variable number of fields

	all, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(all) < 1 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	index := make(map[string]int, len(all[0]))
	for i, name := range all[0] {
		index[strings.TrimSpace(name)] = i
	}

	rows := make([]row, 0, len(all)-1)
	for _, rec := range all[1:] {
		if len(rec) < len(index) {
			continue // Skip malformed rows
		}
		rows = append(rows, row{index: index, fields: rec})
	}
	return rows, nil
}

// row is one CSV data row with header-name field access.
type row struct {
	index  map[string]int
	fields []string
}

func (r row) get(name string) string {
	i, ok := r.index[name]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func (r row) getFloat(name string) float64 {
	v, err := strconv.ParseFloat(r.get(name), 64)
	if err != nil {
		return 0
	}
	return v
}
