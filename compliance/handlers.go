package compliance

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/airsideops/towing-safety-station/ledger"
)

// GPSRecordSource supplies the vehicle-fix records for batch checks.
// The matcher's loaded fixes are the usual source.
type GPSRecordSource func() []any

// SetupHandlers registers the compliance HTTP endpoints.
func SetupHandlers(p *Platform, gpsRecords GPSRecordSource) {
	http.HandleFunc("/compliance/check", p.handleCheck)
	http.HandleFunc("/compliance/gps-check", p.handleGPSCheck(gpsRecords))
	http.HandleFunc("/compliance/upload", p.handleUpload)
	http.HandleFunc("/compliance/alerts", p.handleAlerts)
	http.HandleFunc("/compliance/alerts/ws", p.handleAlertsWS)
	http.HandleFunc("/compliance/stats", p.handleStats)
	http.HandleFunc("/compliance/verify", p.handleVerify)
	http.HandleFunc("/compliance/channels", p.handleChannels)
	http.HandleFunc("/compliance/channels/blocks", p.handleChannelBlocks)
	http.HandleFunc("/compliance/channels/export", p.handleChannelExport)
	http.HandleFunc("/compliance/alerts/export", p.handleAlertExport)
}

type checkRequest struct {
	Contract string `json:"contract"`
	Sample   Sample `json:"sample"`
}

func (p *Platform) handleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.Contract == "" {
		req.Contract = DefaultContractName
	}

	result, err := p.CheckCompliance(req.Contract, req.Sample)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, result)
}

type gpsCheckRequest struct {
	Contract   string     `json:"contract"`
	Overrides  *Overrides `json:"overrides"`
	MaxRecords int        `json:"max_records"`
}

func (p *Platform) handleGPSCheck(gpsRecords GPSRecordSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req gpsCheckRequest
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
				return
			}
		}
		if req.Contract == "" {
			req.Contract = DefaultContractName
		}

		recs := gpsRecords()
		table, err := p.RunComplianceCheckOnGPS(recs, req.Contract, req.Overrides, req.MaxRecords)
		if err != nil {
			writeLookupError(w, err)
			return
		}

		log.Printf("GPS compliance check: %d records, %d alerts", len(recs), len(table.Rows))
		writeJSON(w, table)
	}
}

type uploadRequest struct {
	Channel string         `json:"channel"`
	Data    map[string]any `json:"data"`
	NodeID  string         `json:"node_id"`
}

func (p *Platform) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	var node *Node
	if req.NodeID != "" {
		for _, n := range p.Nodes() {
			if n.ID == req.NodeID {
				node = &n
				break
			}
		}
		if node == nil {
			http.Error(w, "Unknown node: "+req.NodeID, http.StatusBadRequest)
			return
		}
	}

	block, err := p.UploadData(req.Channel, req.Data, node)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, block)
}

func (p *Platform) handleAlerts(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "Invalid limit: "+s, http.StatusBadRequest)
			return
		}
		limit = n
	}
	writeJSON(w, p.Alerts(limit))
}

func (p *Platform) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, p.Statistics())
}

func (p *Platform) handleVerify(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, p.VerifyAllChannels())
}

func (p *Platform) handleChannels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, p.Channels())
}

// handleChannelBlocks returns the named channel's full chain as JSON.
func (p *Platform) handleChannelBlocks(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "Missing channel name", http.StatusBadRequest)
		return
	}

	ch, err := p.Channel(name)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, ch.Blocks())
}

// handleAlertExport streams the alert log as an xlsx workbook.
func (p *Platform) handleAlertExport(w http.ResponseWriter, r *http.Request) {
	wb, err := AlertWorkbook(p.Alerts(0))
	if err != nil {
		log.Printf("Failed to build alert workbook: %v", err)
		http.Error(w, "Failed to build workbook", http.StatusInternalServerError)
		return
	}
	defer wb.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=alerts.xlsx")
	if err := wb.Write(w); err != nil {
		log.Printf("Failed to write alert workbook: %v", err)
	}
}

// handleChannelExport streams the named channel as an xlsx workbook.
func (p *Platform) handleChannelExport(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "Missing channel name", http.StatusBadRequest)
		return
	}

	ch, err := p.Channel(name)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	wb, err := ledger.ChannelWorkbook(ch)
	if err != nil {
		log.Printf("Failed to build workbook for channel %s: %v", name, err)
		http.Error(w, "Failed to build workbook", http.StatusInternalServerError)
		return
	}
	defer wb.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s_channel.xlsx", name))
	if err := wb.Write(w); err != nil {
		log.Printf("Failed to write workbook for channel %s: %v", name, err)
	}
}

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrChannelNotFound) || errors.Is(err, ErrContractNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
