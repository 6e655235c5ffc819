package websocket

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/streamcart/streamcart_backend/logger"
	"github.com/streamcart/streamcart_backend/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
	authPrefix     = "AUTH:"
)

// TokenVerifier checks a session token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*middleware.JwtCustomClaims, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handler struct {
	hub    *Hub
	tokens TokenVerifier
}

func NewHandler(hub *Hub, tokens TokenVerifier) *Handler {
	return &Handler{hub: hub, tokens: tokens}
}

func requestToken(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	if auth := r.Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func (h *Handler) userID(ctx context.Context, raw string) (primitive.ObjectID, bool) {
	if raw == "" {
		return primitive.NilObjectID, false
	}
	claims, err := h.tokens.Verify(ctx, raw)
	if err != nil {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// Serve upgrades the request and keeps the socket open until the peer goes
// away. Clients authenticate with a token query parameter, a bearer header
// or an "AUTH:<token>" text message after connecting.
func (h *Handler) Serve(c echo.Context) error {
	req := c.Request()
	userID, _ := h.userID(req.Context(), requestToken(req))

	conn, err := upgrader.Upgrade(c.Response(), req, nil)
	if err != nil {
		return err
	}

	client := NewClient(conn)
	client.UserID = userID
	h.hub.Register(client)
	defer h.hub.Unregister(client)

	welcome := Message{Type: "connected", Message: "WebSocket connection established"}
	if client.Authenticated() {
		welcome.UserID = userID.Hex()
	} else {
		welcome.Message += ". Please authenticate to receive notifications."
		welcome.RequiresAuth = true
	}
	if err := client.Write(welcome); err != nil {
		return nil
	}

	stop := make(chan struct{})
	defer close(stop)
	go ping(conn, stop)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug().Err(err).Msg("websocket closed")
			}
			return nil
		}
		if kind != websocket.TextMessage {
			continue
		}
		text := string(payload)
		if !strings.HasPrefix(text, authPrefix) {
			continue
		}
		h.handleAuth(req.Context(), client, strings.TrimSpace(strings.TrimPrefix(text, authPrefix)))
	}
}

func (h *Handler) handleAuth(ctx context.Context, client *Client, raw string) {
	resp := Message{Type: "auth_response"}
	switch id, ok := h.userID(ctx, raw); {
	case !ok:
		resp.Message = "Authentication failed"
		resp.RequiresAuth = true
	case client.Authenticated():
		resp.Message = "Already authenticated"
		resp.UserID = client.UserID.Hex()
	default:
		h.hub.Authenticate(client, id)
		resp.Message = "Authenticated"
		resp.UserID = id.Hex()
	}
	_ = client.Write(resp)
}

func ping(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}
