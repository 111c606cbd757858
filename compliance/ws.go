package compliance

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// alertHub fans alerts out to connected websocket clients. Clients that
// fail a write are closed and dropped.
type alertHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func newAlertHub() *alertHub {
	return &alertHub{clients: make(map[*websocket.Conn]bool)}
}

func (h *alertHub) broadcast(alert Alert) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		err := client.WriteJSON(alert)
		if err != nil {
			log.Printf("Error sending alert to client: %v", err)
			client.Close()
			delete(h.clients, client)
		}
	}
}

func (h *alertHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

func (h *alertHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// handleAlertsWS upgrades the connection and keeps it registered until
// the client disconnects. Alerts are pushed from broadcast; the read
// loop only exists to notice the close.
func (p *Platform) handleAlertsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
		return
	}

	p.hub.add(conn)
	log.Printf("Alert websocket client connected: %s", conn.RemoteAddr())

	go func() {
		defer p.hub.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
