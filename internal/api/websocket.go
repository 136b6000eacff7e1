package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// MaxWSConnectionsTotal is the maximum number of WebSocket connections allowed
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP is the maximum WebSocket connections per IP
	MaxWSConnectionsPerIP = 10

	maxWSMessageBytes = 4 << 10
	wsWriteTimeout    = 2 * time.Second
)

// Events pushed to clients
const (
	EventState         = "game:state"
	EventFragment      = "game:fragment"
	EventVictory       = "game:victory"
	EventZone          = "game:zone"
	EventCommandResult = "command:result"
	EventCommandError  = "command:error"
)

// Message is the envelope for every server-to-client frame.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// ClientMessage is a client-to-server frame. Only "command" is understood.
type ClientMessage struct {
	Type    string `json:"type"`
	Command string `json:"command"`
}

// wsClient tracks a WebSocket connection with its source IP. source
// names the connection for command rate limits and replies.
type wsClient struct {
	conn   *websocket.Conn
	ip     string
	source string
}

type directMessage struct {
	conn *websocket.Conn
	data []byte
}

// WebSocketHub manages all WebSocket connections with DoS protection.
// Every write happens on the Run goroutine.
type WebSocketHub struct {
	clients    map[*websocket.Conn]*wsClient
	bySource   map[string]*websocket.Conn
	nextID     atomic.Uint64
	broadcast  chan []byte
	direct     chan directMessage
	register   chan *wsClient
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	upgrader  websocket.Upgrader
	wsLimiter *WebSocketRateLimiter
	commands  CommandEnqueuer

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewWebSocketHub creates a new hub. commands may be nil, in which case
// client commands are answered with an error.
func NewWebSocketHub(origins *OriginChecker, commands CommandEnqueuer) *WebSocketHub {
	if origins == nil {
		origins = NewOriginChecker(nil)
	}
	h := &WebSocketHub{
		clients:    make(map[*websocket.Conn]*wsClient),
		bySource:   make(map[string]*websocket.Conn),
		broadcast:  make(chan []byte, 256),
		direct:     make(chan directMessage, 64),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		wsLimiter:  NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
		commands:   commands,
		stopChan:   make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origins.Allowed(origin) {
				return true
			}
			log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
			RecordConnectionRejected("origin")
			return false
		},
	}
	return h
}

// Run owns the client set until Stop is called
func (h *WebSocketHub) Run() {
	for {
		select {
		case <-h.stopChan:
			h.mu.Lock()
			for conn, client := range h.clients {
				h.wsLimiter.Release(client.ip)
				conn.Close()
				delete(h.clients, conn)
				delete(h.bySource, client.source)
			}
			h.mu.Unlock()
			UpdateWSConnections(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			h.bySource[client.source] = client.conn
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("🔌 Client connected from %s (%d total)", client.ip, count)
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.removeClient(conn)

		case msg := <-h.direct:
			if err := h.write(msg.conn, msg.data); err != nil {
				h.removeClient(msg.conn)
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			var failed []*websocket.Conn
			for conn := range h.clients {
				if err := h.write(conn, message); err != nil {
					failed = append(failed, conn)
				}
			}
			h.mu.RUnlock()

			for _, conn := range failed {
				h.removeClient(conn)
			}
			IncrementWSMessages()
		}
	}
}

// Stop disconnects every client and ends Run
func (h *WebSocketHub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopChan)
	})
}

func (h *WebSocketHub) write(conn *websocket.Conn, data []byte) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (h *WebSocketHub) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	client, ok := h.clients[conn]
	if ok {
		// Release the connection slot for this IP
		h.wsLimiter.Release(client.ip)
		delete(h.clients, conn)
		delete(h.bySource, client.source)
		conn.Close()
	}
	count := len(h.clients)
	h.mu.Unlock()

	if ok {
		log.Printf("🔌 Client disconnected (%d remaining)", count)
		UpdateWSConnections(count)
	}
}

// Broadcast sends a message to all connected clients
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	jsonBytes, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		log.Printf("⚠️ WebSocket marshal %s failed: %v", event, err)
		return
	}

	select {
	case h.broadcast <- jsonBytes:
	default:
		// Channel full, skip (backpressure)
	}
}

// sendTo queues a message for a single client
func (h *WebSocketHub) sendTo(conn *websocket.Conn, event string, data interface{}) {
	jsonBytes, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		return
	}
	select {
	case h.direct <- directMessage{conn: conn, data: jsonBytes}:
	default:
	}
}

// Reply sends a message to the connection registered under source, if any
func (h *WebSocketHub) Reply(source, event string, data interface{}) {
	h.mu.RLock()
	conn, ok := h.bySource[source]
	h.mu.RUnlock()
	if ok {
		h.sendTo(conn, event, data)
	}
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StartBroadcastLoop pushes the latest snapshot every interval and keeps
// the engine gauges current.
func (h *WebSocketHub) StartBroadcastLoop(engine EngineInterface, interval time.Duration) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-h.stopChan:
				return
			case <-ticker.C:
			}

			snap := engine.GetSnapshot()
			UpdateFragments(snap.State.Fragments)
			UpdateParticleCount(len(snap.Particles))
			UpdateEventLogStats(engine.GetEventLogStats())

			if h.ClientCount() == 0 {
				continue
			}
			h.Broadcast(EventState, snap)
		}
	}()
}

// HandleWebSocket handles incoming WebSocket connections with DoS protection
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if total := h.ClientCount(); total >= MaxWSConnectionsTotal {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached (%d)", total)
		RecordConnectionRejected("ws_total_limit")
		writeError(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	if !h.wsLimiter.Allow(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		writeError(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.wsLimiter.Release(ip)
		return
	}
	conn.SetReadLimit(maxWSMessageBytes)

	client := &wsClient{
		conn:   conn,
		ip:     ip,
		source: fmt.Sprintf("ws:%s#%d", ip, h.nextID.Add(1)),
	}
	select {
	case h.register <- client:
	case <-h.stopChan:
		h.wsLimiter.Release(ip)
		conn.Close()
		return
	}

	go h.readLoop(client)
}

// readLoop turns client frames into queued commands
func (h *WebSocketHub) readLoop(client *wsClient) {
	conn := client.conn
	defer func() {
		select {
		case h.unregister <- conn:
		case <-h.stopChan:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "command" {
			h.sendTo(conn, EventCommandError, map[string]string{"error": "expected {\"type\":\"command\",\"command\":\"...\"}"})
			continue
		}

		if h.commands == nil {
			h.sendTo(conn, EventCommandError, map[string]string{"command": msg.Command, "error": "commands not available"})
			continue
		}
		if err := h.commands.EnqueueLine(client.source, msg.Command); err != nil {
			h.sendTo(conn, EventCommandError, map[string]string{"command": msg.Command, "error": err.Error()})
		}
	}
}
