package websocket

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"assethub/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans lifecycle events out to the dashboards of one company,
// keyed by the owning HR's email.
type Hub struct {
	mutex   sync.Mutex
	clients map[string]map[*client]bool
}

func NewHub() *Hub {
	return &Hub{clients: map[string]map[*client]bool{}}
}

// ServeWS upgrades the connection and subscribes it to the company
// feed named by the ?company= query parameter.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	company := utils.NormalizeEmail(r.URL.Query().Get("company"))
	if company == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "company query parameter required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 16)}

	h.mutex.Lock()
	if h.clients[company] == nil {
		h.clients[company] = map[*client]bool{}
	}
	h.clients[company][c] = true
	h.mutex.Unlock()

	log.Printf("websocket client joined feed %s", company)

	go c.writePump()
	go h.readPump(company, c)
}

func (c *client) writePump() {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
	c.conn.Close()
}

// readPump discards inbound frames; it exists to notice disconnects.
func (h *Hub) readPump(company string, c *client) {
	defer h.drop(company, c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(company string, c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if clients, ok := h.clients[company]; ok {
		if clients[c] {
			delete(clients, c)
			close(c.send)
		}
		if len(clients) == 0 {
			delete(h.clients, company)
		}
	}
}
