package ws

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/navguard/internal/domain/events"
	"github.com/GriffinCanCode/navguard/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/navguard/internal/shared/types"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
)

// Message is a server → client frame
type Message struct {
	Type      string        `json:"type"`
	Message   string        `json:"message,omitempty"`
	Kinds     []events.Kind `json:"kinds,omitempty"`
	Event     *events.Event `json:"event,omitempty"`
	Timestamp int64         `json:"timestamp"`
}

// Handler streams bus events to WebSocket clients
type Handler struct {
	bus      *events.Bus
	upgrader websocket.Upgrader
	buffer   int
	ping     time.Duration
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler
func NewHandler(bus *events.Bus, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		bus: bus,
		upgrader: websocket.Upgrader{
			// The control API is bound to loopback by default
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		buffer: events.DefaultBuffer,
		ping:   pingInterval,
		logger: logger,
	}
}

// WithMetrics adds connection tracking to the handler
func (h *Handler) WithMetrics(metrics *monitoring.Metrics) *Handler {
	h.metrics = metrics
	return h
}

// HandleConnection upgrades the request and streams events until the client
// goes away. The optional "kinds" query parameter filters event kinds.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.metrics.AddWSConnections(1)
	defer h.metrics.AddWSConnections(-1)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	subID, stream, unsubscribe := h.bus.Subscribe(h.buffer)
	defer unsubscribe()

	f := newFilter(c.Query("kinds"))
	out := make(chan Message, 16)

	h.logger.Debug("websocket client connected",
		zap.String("subscriber", subID),
		zap.String("remote", c.ClientIP()),
	)

	if err := h.write(conn, Message{Type: "system", Message: "connected", Kinds: f.kinds()}); err != nil {
		return
	}

	go h.readLoop(ctx, cancel, conn, f, out)
	h.writeLoop(ctx, conn, stream, f, out)

	h.logger.Debug("websocket client disconnected", zap.String("subscriber", subID))
}

func (h *Handler) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, f *filter, out chan<- Message) {
	defer cancel()

	for {
		var msg types.WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}

		var reply Message
		switch msg.Type {
		case "ping":
			reply = Message{Type: "pong"}
		case "subscribe":
			f.set(msg.Message)
			reply = Message{Type: "subscribed", Kinds: f.kinds()}
		default:
			reply = Message{Type: "error", Message: "unknown message type"}
		}

		select {
		case out <- reply:
		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, stream <-chan events.Event, f *filter, out <-chan Message) {
	ticker := time.NewTicker(h.ping)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case e, ok := <-stream:
			if !ok {
				return
			}
			if !f.allows(e.Kind) {
				continue
			}
			if err := h.write(conn, Message{Type: "event", Event: &e}); err != nil {
				return
			}
		case msg := <-out:
			if err := h.write(conn, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// write must only be called from the connection's writing goroutine
func (h *Handler) write(conn *websocket.Conn, msg Message) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().Unix()
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Debug("websocket write failed", zap.Error(err))
		return err
	}
	return nil
}

// filter selects the event kinds a client receives. Empty means all.
type filter struct {
	mu       sync.RWMutex
	selected map[events.Kind]bool // Protected by mu
}

func newFilter(spec string) *filter {
	f := &filter{}
	f.set(spec)
	return f
}

// set replaces the filter with a comma-separated list of kinds
func (f *filter) set(spec string) {
	kinds := make(map[events.Kind]bool)
	for _, part := range strings.Split(spec, ",") {
		switch k := events.Kind(strings.TrimSpace(strings.ToLower(part))); k {
		case events.KindURLBlocked, events.KindModeChanged, events.KindRulesReloaded:
			kinds[k] = true
		}
	}

	f.mu.Lock()
	f.selected = kinds
	f.mu.Unlock()
}

func (f *filter) allows(k events.Kind) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.selected) == 0 || f.selected[k]
}

func (f *filter) kinds() []events.Kind {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var out []events.Kind
	for _, k := range []events.Kind{events.KindURLBlocked, events.KindModeChanged, events.KindRulesReloaded} {
		if len(f.selected) == 0 || f.selected[k] {
			out = append(out, k)
		}
	}
	return out
}
