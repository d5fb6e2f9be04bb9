package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgProgress MessageType = "progress"
	MsgError    MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Stage   string          `json:"stage,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub manages WebSocket subscribers per report
type Hub struct {
	// reportID -> connections
	conns map[string]map[*Connection]bool

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents one WebSocket subscriber
type Connection struct {
	ReportID string
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is a message to fan out to a report's subscribers
type BroadcastMessage struct {
	ReportID   string
	Message    *Message
	Disconnect bool
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.ReportID] == nil {
				h.conns[conn.ReportID] = make(map[*Connection]bool)
			}
			h.conns[conn.ReportID][conn] = true
			log.Printf("[WS] Subscriber connected for report %s", conn.ReportID)
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if subs, ok := h.conns[conn.ReportID]; ok {
				if subs[conn] {
					delete(subs, conn)
					close(conn.Send)
					log.Printf("[WS] Subscriber disconnected for report %s", conn.ReportID)
				}
				if len(subs) == 0 {
					delete(h.conns, conn.ReportID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			subs := h.conns[msg.ReportID]
			if msg.Message != nil {
				data, _ := json.Marshal(msg.Message)
				for conn := range subs {
					select {
					case conn.Send <- data:
					default:
						// Drop message if buffer full
					}
				}
			}
			if msg.Disconnect {
				for conn := range subs {
					close(conn.Send)
				}
				delete(h.conns, msg.ReportID)
			}
			h.mu.Unlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastProgress pushes a lifecycle event to a report's subscribers
// (implements service.ProgressBroadcaster)
func (h *Hub) BroadcastProgress(reportID string, stage string, payload interface{}) {
	var data json.RawMessage
	if payload != nil {
		data, _ = json.Marshal(payload)
	}
	h.broadcast <- &BroadcastMessage{
		ReportID: reportID,
		Message: &Message{
			Type:    MsgProgress,
			Stage:   stage,
			Payload: data,
		},
	}
}

// DisconnectReport drops all subscribers once a report reaches a terminal
// state (implements service.ProgressBroadcaster)
func (h *Hub) DisconnectReport(reportID string) {
	h.broadcast <- &BroadcastMessage{
		ReportID:   reportID,
		Disconnect: true,
	}
}
