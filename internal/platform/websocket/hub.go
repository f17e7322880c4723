// Package websocket pushes session events to open browser tabs. Each
// connection is bound to the session id of the cookie it arrived with, so a
// tab only ever hears about its own session.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/myhealth/myhealth/internal/platform/session"
)

const (
	EventSessionExpired = "session.expired"
	EventSessionEnded   = "session.ended"
)

// Event is sent to every tab of one session.
type Event struct {
	Type      string          `json:"type"`
	Redirect  string          `json:"redirect,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// ClientMessage is what a tab sends: {"action":"activity","kind":"click"}
// whenever the user interacts, or {"action":"ping"}.
type ClientMessage struct {
	Action string `json:"action"`
	Kind   string `json:"kind,omitempty"`
}

// ActivityRecorder resets a session's idle timer.
type ActivityRecorder interface {
	Activity(ctx context.Context, id string) error
}

type Client struct {
	ID        string
	SessionID string
	Send      chan []byte
}

// Hub tracks connected tabs per session id.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Client]struct{}
	logger   zerolog.Logger
	now      func() time.Time
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]map[*Client]struct{}),
		logger:   logger,
		now:      time.Now,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[c.SessionID] == nil {
		h.sessions[c.SessionID] = make(map[*Client]struct{})
	}
	h.sessions[c.SessionID][c] = struct{}{}
}

// Unregister removes the client and closes its Send channel. Calling it
// twice is a no-op.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.sessions[c.SessionID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.sessions, c.SessionID)
	}
	close(c.Send)
}

// Publish sends event to every tab of session id. Slow tabs whose buffer
// is full miss the event rather than block the monitor.
func (h *Hub) Publish(_ context.Context, id string, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = h.now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.sessions[id] {
		select {
		case c.Send <- data:
		default:
			h.logger.Warn().Str("client_id", c.ID).Str("event", event.Type).Msg("websocket buffer full, event dropped")
		}
	}
	return nil
}

// NotifyExpired has the session.ExpireFunc signature, so the monitor and the
// session middleware can call it directly.
func (h *Hub) NotifyExpired(ctx context.Context, id string) {
	if err := h.Publish(ctx, id, Event{Type: EventSessionExpired, Reason: "idle", Redirect: "/login"}); err != nil {
		h.logger.Error().Err(err).Str("session_id", id).Msg("failed to publish session expiry")
	}
}

// NotifyEnded tells the other tabs the user logged out.
func (h *Hub) NotifyEnded(ctx context.Context, id string) {
	if err := h.Publish(ctx, id, Event{Type: EventSessionEnded, Reason: "logout", Redirect: "/login"}); err != nil {
		h.logger.Error().Err(err).Str("session_id", id).Msg("failed to publish logout")
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.sessions {
		n += len(clients)
	}
	return n
}

func (h *Hub) SessionCount(id string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[id])
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Handler upgrades /ws requests and routes tab messages.
type Handler struct {
	hub      *Hub
	activity ActivityRecorder
	upgrader gorillawebsocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler accepts connections from the given origins; an empty list
// accepts same-origin requests only.
func NewHandler(hub *Hub, activity ActivityRecorder, allowedOrigins []string, logger zerolog.Logger) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	h := &Handler{hub: hub, activity: activity, logger: logger}
	h.upgrader = gorillawebsocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if len(allowed) > 0 {
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			return allowed[r.Header.Get("Origin")] || r.Header.Get("Origin") == ""
		}
	}
	return h
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.HandleConnect)
}

// HandleConnect needs the session middleware to have run first.
func (h *Handler) HandleConnect(c echo.Context) error {
	sid, _ := c.Get("session_id").(string)
	if sid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "no session")
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return nil
	}

	client := &Client{
		ID:        uuid.NewString(),
		SessionID: sid,
		Send:      make(chan []byte, 16),
	}
	h.hub.Register(client)

	go h.writePump(client, ws)
	go h.readPump(client, ws)
	return nil
}

// handleMessage applies one tab message. It is split out of readPump so it
// can be tested without a connection.
func (h *Handler) handleMessage(ctx context.Context, client *Client, raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	switch msg.Action {
	case "activity":
		if !session.ValidActivity(msg.Kind) || h.activity == nil {
			return
		}
		if err := h.activity.Activity(ctx, client.SessionID); err != nil && err != session.ErrNoSession {
			h.logger.Warn().Err(err).Str("session_id", client.SessionID).Msg("failed to record activity")
		}
	case "ping":
	}
}

func (h *Handler) readPump(client *Client, ws *gorillawebsocket.Conn) {
	defer func() {
		h.hub.Unregister(client)
		ws.Close()
	}()

	ws.SetReadLimit(4096)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := ws.ReadMessage()
		if err != nil {
			return
		}
		h.handleMessage(context.Background(), client, message)
	}
}

func (h *Handler) writePump(client *Client, ws *gorillawebsocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				ws.WriteMessage(gorillawebsocket.CloseMessage, []byte{})
				return
			}
			if err := ws.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(gorillawebsocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
