package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"vetlab/internal/auth"
	"vetlab/internal/metrics"
	"vetlab/internal/model"
	"vetlab/internal/search"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Event names pushed to clients.
const (
	EventNotification  = "notification"
	EventAlert         = "inventory_alert"
	EventInventory     = "inventory_changed"
	EventSearchResults = "search_results"
	EventError         = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The desktop shell and the dev server connect from different origins.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Envelope is the JSON frame written to clients.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// inbound is a frame sent by a client. Only live search is understood.
type inbound struct {
	Type  string `json:"type"`
	Query string `json:"query"`
}

// SearchFunc runs a live search for the signed-in user.
type SearchFunc func(ctx context.Context, user model.SessionUser, query string) ([]search.Group, error)

// Client represents a single connected WebSocket client
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
	User model.SessionUser

	debounce *search.Debouncer
}

type outbound struct {
	domain  model.Domain // empty: every client
	payload []byte
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex

	logger   *slog.Logger
	search   SearchFunc
	debounce time.Duration
	done     chan struct{}
}

// NewHub initializes a new WS Hub instance. search may be nil, in which case
// live-search frames are answered with an error event.
func NewHub(logger *slog.Logger, searchFn SearchFunc) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		broadcast:  make(chan outbound, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger,
		search:     searchFn,
		done:       make(chan struct{}),
		debounce:   search.DefaultDebounce,
	}
}

// Run starts the core dispatch loop for WebSocket events. It returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.drop(client)
			}
			h.mu.Unlock()
			close(h.done)
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.WSClients.Inc()
			h.logger.Info("websocket client connected", "user", client.User.Username, "domain", client.User.Domain)
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.logger.Info("websocket client disconnected", "user", client.User.Username)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if msg.domain != "" && client.User.Domain != msg.domain {
					continue
				}
				select {
				case client.Send <- msg.payload:
				default:
					h.drop(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop must be called with h.mu held.
func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.Send)
	if client.debounce != nil {
		client.debounce.Stop()
	}
	metrics.WSClients.Dec()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues event for every client signed in to domain. An empty
// domain reaches everyone. It never blocks the caller.
func (h *Hub) Broadcast(domain model.Domain, event string, data any) {
	payload, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		h.logger.Error("encode websocket event", "event", event, "error", err)
		return
	}
	select {
	case h.broadcast <- outbound{domain: domain, payload: payload}:
	default:
		h.logger.Warn("websocket broadcast queue full, event dropped", "event", event)
	}
}

// writePump handles writing messages from the Hub to the WebSocket connection
func (c *Client) writePump() {
	defer func() {
		_ = c.Conn.Close()
	}()
	for message := range c.Send {
		w, err := c.Conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		_, _ = w.Write(message)

		// Fast track writing queued messages
		n := len(c.Send)
		for i := 0; i < n; i++ {
			_, _ = w.Write([]byte{'\n'})
			_, _ = w.Write(<-c.Send)
		}

		if err := w.Close(); err != nil {
			return
		}
	}
	_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump reads live-search frames until the connection closes.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		_ = c.Conn.Close()
	}()
	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("websocket read failed", "user", c.User.Username, "error", err)
			}
			return
		}
		var in inbound
		if err := json.Unmarshal(data, &in); err != nil || in.Type != "search" {
			continue
		}
		query := in.Query
		c.debounce.Do(func() { c.runSearch(ctx, query) })
	}
}

func (c *Client) runSearch(ctx context.Context, query string) {
	var frame Envelope
	if c.Hub.search == nil {
		frame = Envelope{Event: EventError, Data: "search unavailable"}
	} else {
		groups, err := c.Hub.search(ctx, c.User, query)
		if err != nil {
			c.Hub.logger.Warn("live search failed", "user", c.User.Username, "error", err)
			frame = Envelope{Event: EventError, Data: "search failed"}
		} else {
			frame = Envelope{Event: EventSearchResults, Data: gin.H{"query": query, "groups": groups}}
		}
	}
	payload, err := json.Marshal(frame)
	if err != nil {
		return
	}
	c.Hub.mu.Lock()
	defer c.Hub.mu.Unlock()
	if _, ok := c.Hub.clients[c]; !ok {
		return
	}
	select {
	case c.Send <- payload:
	default:
	}
}

// ServeWs handles websocket requests from the peer. The session token comes
// from the token query parameter.
func ServeWs(hub *Hub, c *gin.Context, tokens *auth.TokenManager) {
	tokenString := c.Query("token")
	if tokenString == "" {
		hub.logger.Info("websocket connection rejected: missing token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	claims, err := tokens.Parse(tokenString)
	if err != nil {
		hub.logger.Info("websocket connection rejected: invalid token", "error", err)
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		hub.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	client := &Client{
		Hub:      hub,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		User:     claims.SessionUser(),
		debounce: search.NewDebouncer(hub.debounce),
	}
	select {
	case hub.register <- client:
	case <-hub.done:
		_ = conn.Close()
		return
	}

	// The request context ends with the handler; searches outlive it.
	ctx := context.WithoutCancel(c.Request.Context())
	go client.writePump()
	go client.readPump(ctx)
}
