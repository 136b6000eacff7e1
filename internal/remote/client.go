// Package remote attaches to a running game server over WebSocket. It keeps
// the latest snapshot for rendering and forwards text commands.
package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"lost-algorithm/internal/config"
	"lost-algorithm/internal/game"

	"github.com/gorilla/websocket"
)

// ErrNotConnected is returned by Submit while the connection is down.
var ErrNotConnected = errors.New("not connected to server")

const (
	dialTimeout  = 5 * time.Second
	writeTimeout = 2 * time.Second
)

// envelope mirrors the server's {"event","data"} frames.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type commandReply struct {
	Command string `json:"command"`
	Applied bool   `json:"applied"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Client receives game snapshots from the server and submits commands
type Client struct {
	url            string
	reconnectDelay time.Duration
	dialer         *websocket.Dialer

	conn    *websocket.Conn
	connMu  sync.Mutex
	writeMu sync.Mutex

	// Latest snapshot (lock-free access)
	latest      atomic.Pointer[game.GameSnapshot]
	lastMessage atomic.Pointer[string]

	// Stats
	snapshotsReceived atomic.Int64
	reconnects        atomic.Int64
	errors            atomic.Int64

	// Control
	running atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	// Callbacks, set before Start
	onSnapshot   func(*game.GameSnapshot)
	onEvent      func(event string, data json.RawMessage)
	onConnect    func()
	onDisconnect func()
}

// NewClient creates a client for cfg.ServerURL. http(s) URLs are mapped to
// ws(s) and an empty path becomes /ws.
func NewClient(cfg config.RemoteConfig) (*Client, error) {
	u, err := WebSocketURL(cfg.ServerURL)
	if err != nil {
		return nil, err
	}
	delay := cfg.ReconnectDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Client{
		url:            u,
		reconnectDelay: delay,
		dialer:         &websocket.Dialer{HandshakeTimeout: dialTimeout},
		stopCh:         make(chan struct{}),
	}, nil
}

// WebSocketURL normalizes a server address to its /ws endpoint.
func WebSocketURL(raw string) (string, error) {
	if raw == "" {
		return "", errors.New("server URL is empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "ws://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse server URL: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	return u.String(), nil
}

// URL returns the WebSocket endpoint.
func (c *Client) URL() string {
	return c.url
}

// OnSnapshot sets a callback for each received snapshot
func (c *Client) OnSnapshot(fn func(*game.GameSnapshot)) {
	c.onSnapshot = fn
}

// OnEvent sets a callback for every non-snapshot event
func (c *Client) OnEvent(fn func(event string, data json.RawMessage)) {
	c.onEvent = fn
}

// OnConnect sets a callback for when connection is established
func (c *Client) OnConnect(fn func()) {
	c.onConnect = fn
}

// OnDisconnect sets a callback for when connection is lost
func (c *Client) OnDisconnect(fn func()) {
	c.onDisconnect = fn
}

// Start starts the connection loop
func (c *Client) Start() {
	if !c.running.CompareAndSwap(false, true) {
		return
	}

	c.wg.Add(1)
	go c.connectionLoop()

	log.Printf("📡 Remote client started, connecting to %s", c.url)
}

// Stop closes the connection and waits for the loop to exit
func (c *Client) Stop() {
	if !c.running.CompareAndSwap(true, false) {
		return
	}

	close(c.stopCh)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()
	log.Println("📡 Remote client stopped")
}

// GetSnapshot returns the most recent snapshot, or nil before the first one
func (c *Client) GetSnapshot() *game.GameSnapshot {
	return c.latest.Load()
}

// LastMessage returns the newest command reply.
func (c *Client) LastMessage() string {
	if m := c.lastMessage.Load(); m != nil {
		return *m
	}
	return ""
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.conn != nil
}

// GetStats returns client statistics
func (c *Client) GetStats() (received, reconnects, errors int64) {
	return c.snapshotsReceived.Load(), c.reconnects.Load(), c.errors.Load()
}

// Submit sends a text command. The reply arrives later as a command:result
// or command:error event and is exposed through LastMessage.
func (c *Client) Submit(line string) (string, error) {
	c.connMu.Lock()
	conn := c.conn
	c.connMu.Unlock()
	if conn == nil {
		return "", ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(map[string]string{"type": "command", "command": line}); err != nil {
		return "", fmt.Errorf("send command: %w", err)
	}
	return "", nil
}

// connectionLoop maintains the connection to the server
func (c *Client) connectionLoop() {
	defer c.wg.Done()

	for c.running.Load() {
		conn, _, err := c.dialer.Dial(c.url, nil)
		if err != nil {
			c.errors.Add(1)
			select {
			case <-c.stopCh:
				return
			case <-time.After(c.reconnectDelay):
				continue
			}
		}

		c.connMu.Lock()
		c.conn = conn
		c.connMu.Unlock()
		log.Printf("✅ Connected to server at %s", c.url)

		if c.onConnect != nil {
			c.onConnect()
		}

		c.readLoop(conn)

		c.connMu.Lock()
		c.conn = nil
		c.connMu.Unlock()
		conn.Close()

		if c.onDisconnect != nil {
			c.onDisconnect()
		}
		c.reconnects.Add(1)

		select {
		case <-c.stopCh:
			return
		case <-time.After(c.reconnectDelay):
		}
	}
}

// readLoop reads frames until the connection fails
func (c *Client) readLoop(conn *websocket.Conn) {
	for c.running.Load() {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			if c.running.Load() && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("⚠️ Remote read error: %v", err)
				c.errors.Add(1)
			}
			return
		}
		c.handle(env)
	}
}

func (c *Client) handle(env envelope) {
	switch env.Event {
	case "game:state":
		var snap game.GameSnapshot
		if err := json.Unmarshal(env.Data, &snap); err != nil {
			log.Printf("⚠️ Failed to decode snapshot: %v", err)
			c.errors.Add(1)
			return
		}
		c.latest.Store(&snap)
		c.snapshotsReceived.Add(1)
		if c.onSnapshot != nil {
			c.onSnapshot(&snap)
		}
		return

	case "command:result", "command:error":
		var reply commandReply
		if err := json.Unmarshal(env.Data, &reply); err == nil {
			msg := reply.Message
			if reply.Error != "" {
				msg = reply.Error
			}
			c.lastMessage.Store(&msg)
		}
	}

	if c.onEvent != nil {
		c.onEvent(env.Event, env.Data)
	}
}
