// Package room carries chat payloads in and out of a realtime room session
// over a websocket data channel.
package room

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/antoniostano/memora/internal/observability"
)

// Handlers receives room events. Data is the single inbound payload callback:
// raw bytes plus the transport-level sender identity.
type Handlers struct {
	Data              func(raw []byte, sender string)
	ParticipantJoined func(identity string)
	ParticipantLeft   func(identity string)
}

// Config identifies the room session to join.
type Config struct {
	URL      string // http(s) or ws(s) endpoint of the room server
	Room     string
	Token    string
	Identity string
}

// Client is a websocket participant in a room. Writes are serialized by a
// mutex; reads happen on the Listen goroutine only.
type Client struct {
	cfg      Config
	metrics  *observability.Metrics
	handlers Handlers

	mu   sync.Mutex
	conn *websocket.Conn
}

// serverFrame is one event relayed by the room server.
type serverFrame struct {
	Event       string `json:"event"`
	Sender      string `json:"sender,omitempty"`
	Payload     string `json:"payload,omitempty"`
	Participant string `json:"participant,omitempty"`
}

// clientFrame is a broadcast request from this participant.
type clientFrame struct {
	Event   string `json:"event"`
	Payload string `json:"payload"`
}

func NewClient(cfg Config, metrics *observability.Metrics) *Client {
	return &Client{cfg: cfg, metrics: metrics}
}

// SetHandlers registers the event callbacks. Must be called before Dial.
func (c *Client) SetHandlers(h Handlers) {
	c.handlers = h
}

// Dial connects and authenticates to the room server.
func (c *Client) Dial(ctx context.Context) error {
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("parse room url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	q := u.Query()
	q.Set("room", c.cfg.Room)
	q.Set("identity", c.cfg.Identity)
	u.RawQuery = q.Encode()

	header := http.Header{}
	if c.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return fmt.Errorf("dial room: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.metrics.RoomConnected.Set(1)
	return nil
}

// Listen reads room events until the context is canceled or the connection
// fails. Each data payload is handed to the registered Data callback.
func (c *Client) Listen(ctx context.Context) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("listen before dial")
	}
	defer c.metrics.RoomConnected.Set(0)

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("room read: %w", err)
		}

		var frame serverFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.metrics.RoomMessages.WithLabelValues("inbound", "malformed").Inc()
			continue
		}

		switch frame.Event {
		case "data":
			if c.handlers.Data != nil {
				c.handlers.Data([]byte(frame.Payload), frame.Sender)
			}
		case "participant_joined":
			if c.handlers.ParticipantJoined != nil {
				c.handlers.ParticipantJoined(frame.Participant)
			}
		case "participant_left":
			if c.handlers.ParticipantLeft != nil {
				c.handlers.ParticipantLeft(frame.Participant)
			}
		default:
			c.metrics.RoomMessages.WithLabelValues("inbound", "ignored").Inc()
		}
	}
}

// Publish broadcasts a payload to all current room participants.
func (c *Client) Publish(_ context.Context, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("publish before dial")
	}
	if err := c.conn.WriteJSON(clientFrame{Event: "publish", Payload: string(payload)}); err != nil {
		return fmt.Errorf("publish to room: %w", err)
	}
	c.metrics.RoomMessages.WithLabelValues("outbound", "published").Inc()
	return nil
}

// Close tears down the connection if one is open.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
