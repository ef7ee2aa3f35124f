package websocket

import (
	"encoding/json"
	"log"
	"time"
)

// RequestUpdate represents a real-time request-lifecycle update
type RequestUpdate struct {
	Type      string      `json:"type"` // REQUEST_SUBMITTED, REQUEST_APPROVED, REQUEST_REJECTED, ASSET_RETURNED
	RequestID string      `json:"requestId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Actor     string      `json:"actor,omitempty"`
}

// Broadcast sends the update to every client on the company feed.
func (h *Hub) Broadcast(hrEmail string, update RequestUpdate) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if clients, ok := h.clients[hrEmail]; ok {
		data, err := json.Marshal(update)
		if err != nil {
			log.Printf("Failed to marshal request update: %v", err)
			return
		}

		for client := range clients {
			select {
			case client.send <- data:
			default:
				close(client.send)
				delete(clients, client)
			}
		}
	}
}

// SendRequestSubmitted broadcasts a new pending request
func (h *Hub) SendRequestSubmitted(hrEmail string, request interface{}, actor string) {
	h.Broadcast(hrEmail, RequestUpdate{
		Type:      "REQUEST_SUBMITTED",
		Data:      request,
		Timestamp: time.Now(),
		Actor:     actor,
	})
}

// SendRequestProcessed broadcasts an approve/reject decision
func (h *Hub) SendRequestProcessed(hrEmail, requestID, status, actor string) {
	typ := "REQUEST_APPROVED"
	if status == "rejected" {
		typ = "REQUEST_REJECTED"
	}
	h.Broadcast(hrEmail, RequestUpdate{
		Type:      typ,
		RequestID: requestID,
		Timestamp: time.Now(),
		Actor:     actor,
	})
}

// SendAssetReturned broadcasts a closed custody record
func (h *Hub) SendAssetReturned(hrEmail, requestID, actor string) {
	h.Broadcast(hrEmail, RequestUpdate{
		Type:      "ASSET_RETURNED",
		RequestID: requestID,
		Timestamp: time.Now(),
		Actor:     actor,
	})
}
