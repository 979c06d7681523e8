package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/MVidalUrbina/CiudadGemela/server/internal/engine"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/events"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/platform/logger"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/platform/metrics"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/platform/tuning"
)

// Hub maintains the set of active WebSocket clients and broadcasts
// simulation events to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex

	sim    *engine.Simulator
	tun    *tuning.Config
	logger *logger.Logger

	// onStep is attached to simulation runs launched over WebSocket.
	onStep engine.UpdateFunc
	// ctx is the server lifetime; runs launched by clients inherit it.
	ctx context.Context
}

// NewHub initializes a new WebSocket Hub.
func NewHub(sim *engine.Simulator, tun *tuning.Config, log *logger.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, tun.BroadcastChannelBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		sim:        sim,
		tun:        tun,
		logger:     log,
		ctx:        context.Background(),
	}
}

// SetStepCallback attaches the per-step callback used by runs that
// clients launch over WebSocket. Set once during wiring, before Run.
func (h *Hub) SetStepCallback(fn engine.UpdateFunc) {
	h.onStep = fn
}

// Run starts the Hub's main loop. Call in a goroutine.
func (h *Hub) Run(ctx context.Context) {
	h.ctx = ctx

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket hub shutting down")
			return
		case client := <-h.register:
			h.mu.Lock()
			if len(h.clients) >= h.tun.MaxClients {
				h.mu.Unlock()
				close(client.send)
				h.logger.Warn("client limit reached (%d), rejecting connection", h.tun.MaxClients)
				continue
			}
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(1)
			h.logger.Info("WebSocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.Get().RecordWSConnection(-1)
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					metrics.Get().RecordWSMessage(false)
				default:
					close(client.send)
					delete(h.clients, client)
					metrics.Get().RecordWSError()
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastEvent serializes a SimEvent and sends it to all clients.
func (h *Hub) BroadcastEvent(event events.SimEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to serialize SimEvent for broadcast: %v", err)
		return
	}
	h.broadcast <- payload
}

// StartEventPoller spawns a goroutine that polls the EventLog and
// pushes new events to the Hub. The hub follows the same log the
// persister writes, without coupling to the stepping loop.
func (h *Hub) StartEventPoller(ctx context.Context, eventLog *events.EventLog) {
	go func() {
		pollInterval := time.NewTicker(200 * time.Millisecond)
		defer pollInterval.Stop()

		lastProcessed := 0

		for {
			select {
			case <-ctx.Done():
				return
			case <-pollInterval.C:
				all := eventLog.Replay()
				if len(all) > lastProcessed {
					for _, event := range all[lastProcessed:] {
						h.BroadcastEvent(event)
					}
					lastProcessed = len(all)
				}
			}
		}
	}()
}
