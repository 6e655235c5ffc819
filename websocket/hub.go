package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/streamcart/streamcart_backend/logger"
	"github.com/streamcart/streamcart_backend/metrics"
	"github.com/streamcart/streamcart_backend/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const writeWait = 10 * time.Second

// ErrNotConnected is returned by Notify when the user has no open socket.
var ErrNotConnected = errors.New("user not connected")

// Message is the envelope written to sockets.
type Message struct {
	Type         string      `json:"type"`
	Message      string      `json:"message"`
	Data         interface{} `json:"data,omitempty"`
	UserID       string      `json:"userID,omitempty"`
	RequiresAuth bool        `json:"requiresAuth,omitempty"`
}

// Conn is the part of a websocket connection the hub uses.
type Conn interface {
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one open socket. A user may hold several, one per device.
type Client struct {
	UserID primitive.ObjectID
	conn   Conn
	mu     sync.Mutex
}

func NewClient(conn Conn) *Client {
	return &Client{conn: conn}
}

// Authenticated reports whether the client has been bound to a user.
func (c *Client) Authenticated() bool {
	return !c.UserID.IsZero()
}

// Write serializes writes; gorilla connections allow one writer at a time.
func (c *Client) Write(msg interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

type authRequest struct {
	client *Client
	userID primitive.ObjectID
	done   chan struct{}
}

// Hub tracks open sockets by user and delivers notifications to them.
type Hub struct {
	clients      map[primitive.ObjectID]map[*Client]bool
	anonymous    map[*Client]bool
	register     chan *Client
	unregister   chan *Client
	authenticate chan authRequest
	done         chan struct{}
	mu           sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:      make(map[primitive.ObjectID]map[*Client]bool),
		anonymous:    make(map[*Client]bool),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		authenticate: make(chan authRequest),
		done:         make(chan struct{}),
	}
}

// Run owns client bookkeeping until ctx is done, then closes every socket.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.add(client)
			h.mu.Unlock()
			metrics.WebsocketClients.Inc()
		case client := <-h.unregister:
			h.mu.Lock()
			removed := h.remove(client)
			h.mu.Unlock()
			if removed {
				_ = client.conn.Close()
				metrics.WebsocketClients.Dec()
			}
		case req := <-h.authenticate:
			h.mu.Lock()
			delete(h.anonymous, req.client)
			req.client.UserID = req.userID
			h.add(req.client)
			h.mu.Unlock()
			close(req.done)
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return
		}
	}
}

func (h *Hub) add(c *Client) {
	if !c.Authenticated() {
		h.anonymous[c] = true
		return
	}
	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]bool)
		h.clients[c.UserID] = set
	}
	set[c] = true
}

func (h *Hub) remove(c *Client) bool {
	if h.anonymous[c] {
		delete(h.anonymous, c)
		return true
	}
	set, ok := h.clients[c.UserID]
	if !ok || !set[c] {
		return false
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	return true
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.anonymous {
		_ = c.conn.Close()
	}
	for _, set := range h.clients {
		for c := range set {
			_ = c.conn.Close()
		}
	}
	h.anonymous = make(map[*Client]bool)
	h.clients = make(map[primitive.ObjectID]map[*Client]bool)
	metrics.WebsocketClients.Set(0)
}

// Register adds c to the hub. Once the hub has stopped the socket is closed
// instead.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		_ = c.conn.Close()
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Authenticate binds an anonymous client to userID.
func (h *Hub) Authenticate(c *Client, userID primitive.ObjectID) {
	req := authRequest{client: c, userID: userID, done: make(chan struct{})}
	select {
	case h.authenticate <- req:
		<-req.done
	case <-h.done:
	}
}

// Connected reports how many sockets userID holds.
func (h *Hub) Connected(userID primitive.ObjectID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) snapshot(userID primitive.ObjectID) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	set := h.clients[userID]
	out := make([]*Client, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// Notify writes n to every socket userID holds. It satisfies
// services.Notifier.
func (h *Hub) Notify(ctx context.Context, userID primitive.ObjectID, n services.Notification) error {
	clients := h.snapshot(userID)
	if len(clients) == 0 {
		return ErrNotConnected
	}
	msg := Message{Type: n.Type, Message: n.Message, Data: n, UserID: userID.Hex()}
	var delivered int
	for _, c := range clients {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := c.Write(msg); err != nil {
			logger.Debug().Err(err).Str("userId", userID.Hex()).Msg("websocket write failed")
			continue
		}
		delivered++
	}
	if delivered == 0 {
		return ErrNotConnected
	}
	return nil
}

var _ services.Notifier = (*Hub)(nil)
var _ Conn = (*websocket.Conn)(nil)
