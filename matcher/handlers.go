package matcher

import (
	"encoding/json"
	"net/http"
)

// SetupHandlers registers the read-only join-map endpoints for the
// presentation layer.
func SetupHandlers(m *Matcher) {
	http.HandleFunc("/matcher/flight-tasks", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, m.FlightTasks())
	})
	http.HandleFunc("/matcher/flight-tracks", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, m.FlightTracks())
	})
	http.HandleFunc("/matcher/task-vehicles", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, m.TaskVehicles())
	})
	http.HandleFunc("/matcher/summary", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, m.Summarize())
	})
	http.HandleFunc("/matcher/rematch", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		m.MatchAll()
		writeJSON(w, m.Summarize())
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
