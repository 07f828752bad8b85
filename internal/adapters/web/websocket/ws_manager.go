package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/infopercept/rix/internal/core/domain"
	"github.com/infopercept/rix/internal/core/services/match"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// Allow same-origin (no Origin header)
		if origin == "" {
			return true
		}

		allowedOrigins := []string{
			"http://localhost:8080",
			"http://127.0.0.1:8080",
			"http://[::1]:8080",
		}

		for _, allowed := range allowedOrigins {
			if origin == allowed {
				return true
			}
		}

		log.Printf("WebSocket: Rejected origin: %s", origin)
		return false
	},
}

// WSMessage is the envelope for every frame in both directions.
type WSMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type detectPayload struct {
	Text string `json:"text"`
}

// WSManager runs streaming detection sessions: each connected client submits
// text frames and receives ranked results on the same connection.
type WSManager struct {
	Handle  *match.Handle
	Clients map[*websocket.Conn]bool
	mu      sync.Mutex
}

func NewWSManager(handle *match.Handle) *WSManager {
	return &WSManager{
		Handle:  handle,
		Clients: make(map[*websocket.Conn]bool),
	}
}

func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	m.mu.Lock()
	m.Clients[conn] = true
	m.mu.Unlock()

	log.Printf("WebSocket connected: %s", r.RemoteAddr)

	// The request context dies when this handler returns; the session
	// outlives it.
	go m.readLoop(context.Background(), conn)
}

func (m *WSManager) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer func() {
		conn.Close()
		m.mu.Lock()
		delete(m.Clients, conn)
		m.mu.Unlock()
		log.Println("WebSocket disconnected")
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			m.sendError(conn, msg.ID, "invalid message")
			continue
		}

		switch msg.Type {
		case "detect":
			var req detectPayload
			if err := json.Unmarshal(msg.Payload, &req); err != nil || req.Text == "" {
				m.sendError(conn, msg.ID, "detect requires a non-empty 'text' field")
				continue
			}
			m.runDetection(ctx, conn, msg.ID, req.Text)
		case "ping":
			m.send(conn, WSMessage{Type: "pong", ID: msg.ID})
		default:
			m.sendError(conn, msg.ID, "unknown message type: "+msg.Type)
		}
	}
}

func (m *WSManager) runDetection(ctx context.Context, conn *websocket.Conn, id, text string) {
	results := m.Handle.Get().Match(ctx, text)
	if results == nil {
		results = []domain.MatchResult{}
	}

	payload, err := json.Marshal(map[string]interface{}{
		"matches": results,
		"count":   len(results),
	})
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}

	m.send(conn, WSMessage{Type: "result", ID: id, Payload: payload})
}

// BroadcastReload tells every client the corpus was swapped.
func (m *WSManager) BroadcastReload(products, rules int) {
	payload, err := json.Marshal(map[string]int{
		"products": products,
		"rules":    rules,
	})
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}

	data, err := json.Marshal(WSMessage{Type: "corpus.reloaded", Payload: payload})
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.Clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(m.Clients, conn)
		}
	}
}

func (m *WSManager) sendError(conn *websocket.Conn, id, message string) {
	payload, _ := json.Marshal(map[string]string{"error": message})
	m.send(conn, WSMessage{Type: "error", ID: id, Payload: payload})
}

func (m *WSManager) send(conn *websocket.Conn, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		conn.Close()
		delete(m.Clients, conn)
	}
}
