package network

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MVidalUrbina/CiudadGemela/server/internal/platform/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// SimCommand represents an incoming command from a connected client.
type SimCommand struct {
	Type    string          `json:"type"` // "SIMULATE", "STOP", "RESET", ...
	Payload json.RawMessage `json:"payload"`
}

// Client represents an active WebSocket connection.
type Client struct {
	hub             *Hub
	conn            *websocket.Conn
	send            chan []byte
	lastCommandTime time.Time
}

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, hub.tun.ClientSendBuffer),
	}
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// ReadPump pumps messages from the websocket connection to the engine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("websocket read error: %v", err)
				metrics.Get().RecordWSError()
			}
			break
		}
		metrics.Get().RecordWSMessage(true)

		var cmd SimCommand
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.hub.logger.Error("failed to parse SimCommand: %v", err)
			continue
		}

		c.handleCommand(cmd)
	}
}

func (c *Client) handleCommand(cmd SimCommand) {
	// Rate limiting check
	minInterval := time.Second / time.Duration(c.hub.tun.MaxCommandsPerSecond)
	if time.Since(c.lastCommandTime) < minInterval {
		c.hub.logger.Warn("rate limit exceeded for client command %s", cmd.Type)
		return
	}
	c.lastCommandTime = time.Now()

	switch cmd.Type {
	case "SIMULATE":
		c.handleSimulate(cmd.Payload)
	case "STOP":
		c.hub.sim.Stop()
		c.hub.logger.Event("WS_COMMAND", "STOP", "stop requested")
	case "RESET":
		c.hub.sim.Reset()
		c.hub.logger.Event("WS_COMMAND", "RESET", "simulation reset")
	case "APPLY_SCENARIO":
		c.handleApplyScenario(cmd.Payload)
	case "SET_SPEED":
		c.handleSetSpeed(cmd.Payload)
	case "GET_STATE":
		c.sendState()
	default:
		c.hub.logger.Warn("unknown SimCommand type: %s", cmd.Type)
	}
}

func (c *Client) handleSimulate(rawPayload []byte) {
	var parsed struct {
		TargetYear int `json:"targetYear"`
	}
	if err := json.Unmarshal(rawPayload, &parsed); err != nil {
		c.hub.logger.Warn("failed to parse SIMULATE payload: %v", err)
		return
	}

	go c.hub.sim.SimulateTo(c.hub.ctx, parsed.TargetYear, c.hub.onStep)
	c.hub.logger.Event("WS_COMMAND", "SIMULATE", "run requested")
}

func (c *Client) handleApplyScenario(rawPayload []byte) {
	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rawPayload, &parsed); err != nil {
		c.hub.logger.Warn("failed to parse APPLY_SCENARIO payload: %v", err)
		return
	}

	result := c.hub.sim.ApplyScenario(parsed.ID)
	if result == nil {
		c.reply(map[string]string{"error": "unknown scenario: " + parsed.ID})
		return
	}
	c.reply(map[string]interface{}{"type": "SCENARIO_RESULT", "result": result})
}

func (c *Client) handleSetSpeed(rawPayload []byte) {
	var parsed struct {
		Speed float64 `json:"speed"`
	}
	if err := json.Unmarshal(rawPayload, &parsed); err != nil {
		c.hub.logger.Warn("failed to parse SET_SPEED payload: %v", err)
		return
	}
	c.hub.sim.SetSpeed(parsed.Speed)
}

// sendState replies with the full engine state to this client only.
func (c *Client) sendState() {
	c.reply(map[string]interface{}{
		"type":       "STATE",
		"year":       c.hub.sim.CurrentYear(),
		"targetYear": c.hub.sim.TargetYear(),
		"speed":      c.hub.sim.Speed(),
		"running":    c.hub.sim.IsRunning(),
		"stats":      c.hub.sim.Statistics(),
		"zones":      c.hub.sim.Zones(),
		"history":    c.hub.sim.History(),
	})
}

func (c *Client) reply(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.hub.logger.Error("failed to marshal client reply: %v", err)
		return
	}
	select {
	case c.send <- data:
		metrics.Get().RecordWSMessage(false)
	default:
		metrics.Get().RecordWSError()
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
