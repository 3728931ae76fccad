package chat

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"glamo-server/modules/common/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameBytes  = 64 << 10
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	// the HTTP surface is CORS-open, the socket follows suit
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client - one connected chat socket
type Client struct {
	id          string
	conn        *websocket.Conn
	send        chan []byte
	connectedAt time.Time
}

// Metrics - hub counters
type Metrics struct {
	TotalConnections  int       `json:"totalConnections"`
	ActiveConnections int       `json:"activeConnections"`
	TotalQuestions    int       `json:"totalQuestions"`
	StartTime         time.Time `json:"startTime"`
}

// Hub - tracks live chat sockets and answers their questions
type Hub struct {
	service  *Service
	readWait time.Duration // idle limit between frames or pongs

	mu      sync.RWMutex
	clients map[string]*Client
	metrics Metrics
}

func NewHub(service *Service) *Hub {
	return &Hub{
		service:  service,
		readWait: pongWait,
		clients:  make(map[string]*Client),
		metrics:  Metrics{StartTime: time.Now()},
	}
}

// HandleWebSocket - GET /ws/chat; each {question} frame yields one {answer} frame
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ [ChatWS] Upgrade failed: %v", err)
		return
	}

	client := &Client{
		id:          uuid.NewString(),
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
	h.addClient(client)

	go client.writePump()
	go h.readPump(client)
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.metrics.TotalConnections++
	h.metrics.ActiveConnections = len(h.clients)
	active := h.metrics.ActiveConnections
	h.mu.Unlock()

	log.Printf("👤 [ChatWS] Client %s connected (active: %d)", c.id, active)
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	h.metrics.ActiveConnections = len(h.clients)
	active := h.metrics.ActiveConnections
	h.mu.Unlock()

	log.Printf("👋 [ChatWS] Client %s left after %s (active: %d)",
		c.id, time.Since(c.connectedAt).Round(time.Second), active)
}

// Metrics - snapshot of the hub counters
func (h *Hub) Metrics() Metrics {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.metrics
}

// HandleMetrics - GET /metrics
func (h *Hub) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	m := h.Metrics()
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"uptime":  time.Since(m.StartTime).Round(time.Second).String(),
		"metrics": m,
	})
}

// CloseAll - close every socket, used on shutdown
func (h *Hub) CloseAll() {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for _, c := range h.clients {
		conns = append(conns, c.conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}
}

// readPump answers questions in arrival order on this connection
func (h *Hub) readPump(c *Client) {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		h.removeClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(h.readWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.readWait))
	})

	for {
		var req ChatRequest
		if err := c.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("⚠️  [ChatWS] Read error for %s: %v", c.id, err)
			}
			return
		}

		var resp ChatResponse
		if strings.TrimSpace(req.Question) == "" {
			resp.Error = emptyQuestion
		} else {
			h.mu.Lock()
			h.metrics.TotalQuestions++
			h.mu.Unlock()
			resp.Answer = h.service.Ask(ctx, req.Question)
		}
		// pongs go unread while Ask runs, so a slow answer would otherwise
		// leave the deadline in the past
		_ = c.conn.SetReadDeadline(time.Now().Add(h.readWait))

		frame, err := json.Marshal(resp)
		if err != nil {
			log.Printf("❌ [ChatWS] Encode frame failed: %v", err)
			continue
		}
		select {
		case c.send <- frame:
		case <-time.After(writeWait):
			log.Printf("⚠️  [ChatWS] Client %s not draining, dropping connection", c.id)
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Printf("⚠️  [ChatWS] Write error for %s: %v", c.id, err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
