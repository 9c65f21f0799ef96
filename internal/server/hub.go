package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dsouth/femtobook/internal/bus"
	"github.com/dsouth/femtobook/internal/depthview"
)

// upgrader accepts WebSocket upgrades from any origin: the depth stream
// carries no order-entry authority, only read-only book state, so the
// permissive CheckOrigin of bally65-singularity/telemetry/hub.go is
// adopted unchanged.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub serves the /ws endpoint: every connected client receives the
// engine's OutputEvents (via the event bus, SPEC_FULL.md §2.1 component
// 8) plus a periodic depth snapshot rendered by internal/depthview. It
// never calls book.Engine directly, only the read-only Querier it is
// given and the events the bus publishes, keeping the engine's single
// writer goroutine the only caller of any mutating operation.
type Hub struct {
	bus     *bus.Bus
	querier depthview.Querier
	logger  *slog.Logger
	depthN  int
	period  time.Duration

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub returns a Hub that snapshots the top depthN levels of each side
// every period, in addition to forwarding every bus event to every
// connected client.
func NewHub(b *bus.Bus, q depthview.Querier, depthN int, period time.Duration, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if depthN <= 0 {
		depthN = 10
	}
	if period <= 0 {
		period = time.Second
	}
	return &Hub{
		bus:     b,
		querier: q,
		logger:  logger,
		depthN:  depthN,
		period:  period,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades the connection and registers it as a subscriber.
// Each client gets its own goroutine pumping bus events to it; the
// connection is removed and closed the moment that pump exits.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	subID, events := h.bus.Subscribe()
	go h.pump(conn, subID, events)
}

func (h *Hub) pump(conn *websocket.Conn, subID uint64, events <-chan bus.OutputEvent) {
	defer func() {
		h.bus.Unsubscribe(subID)
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	ticker := time.NewTicker(h.period)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := h.writeEvent(conn, ev); err != nil {
				return
			}
		case <-ticker.C:
			frame := depthview.Render(h.querier, h.depthN)
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
	}
}

func (h *Hub) writeEvent(conn *websocket.Conn, ev bus.OutputEvent) error {
	line := fmt.Sprintf("%s order=%d counter=%d side=%s price=%d qty=%d\n",
		ev.Kind, ev.OrderID, ev.CounterOrderID, ev.Side, ev.Price, ev.Qty)
	return conn.WriteMessage(websocket.TextMessage, []byte(line))
}

// ClientCount reports the number of currently connected WebSocket clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close closes every connected client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
	}
	h.clients = make(map[*websocket.Conn]struct{})
}
