package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"farmgrid.app/internal/protocol"
	"farmgrid.app/internal/transport"
)

const pingInterval = 30 * time.Second

// Client is a transport.Bus over one websocket connection to a roomd relay.
type Client struct {
	conn *websocket.Conn
	log  *log.Logger

	out    chan []byte
	cancel context.CancelFunc

	mu     sync.Mutex
	rooms  map[string]*clientRoom
	closed bool
}

type clientRoom struct {
	c      *Client
	topic  string
	events chan transport.Event
}

func Dial(ctx context.Context, url string, logger *log.Logger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	runCtx, cancel := context.WithCancel(context.Background())
	c := &Client{
		conn:   conn,
		log:    logger,
		out:    make(chan []byte, 256),
		cancel: cancel,
		rooms:  map[string]*clientRoom{},
	}
	go c.writer(runCtx)
	go c.reader()
	return c, nil
}

func (c *Client) writer(ctx context.Context) {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.teardown()
				return
			}
		case b, ok := <-c.out:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				c.teardown()
				return
			}
		}
	}
}

func (c *Client) reader() {
	defer c.teardown()
	for {
		_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg []byte) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return
	}
	switch base.Type {
	case protocol.TypeBroadcast:
		var m protocol.BroadcastMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return
		}
		c.routeEvent(m.Topic, transport.Event{
			Kind:    transport.EventBroadcast,
			Event:   m.Event,
			From:    m.From,
			Payload: m.Payload,
		})
	case protocol.TypePresence:
		var m protocol.PresenceMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return
		}
		c.routeEvent(m.Topic, transport.Event{
			Kind:    transport.EventPresence,
			Members: m.Members,
		})
	case protocol.TypeError:
		var m protocol.ErrorMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return
		}
		c.log.Printf("[ws] server error code=%s message=%q", m.Code, m.Message)
	}
}

func (c *Client) routeEvent(topic string, ev transport.Event) {
	c.mu.Lock()
	r := c.rooms[topic]
	c.mu.Unlock()
	if r == nil {
		return
	}
	select {
	case r.events <- ev:
	default:
		// Drop for a slow consumer; the next snapshot reconciles.
	}
}

func (c *Client) send(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return fmt.Errorf("ws: connection closed")
	}
	select {
	case c.out <- b:
		return nil
	case <-time.After(writeTimeout):
		return fmt.Errorf("ws: send queue full")
	}
}

func (c *Client) Join(topic, key string, self bool) (transport.Room, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, fmt.Errorf("ws: connection closed")
	}
	if _, dup := c.rooms[topic]; dup {
		c.mu.Unlock()
		return nil, fmt.Errorf("ws: already joined %s", topic)
	}
	r := &clientRoom{c: c, topic: topic, events: make(chan transport.Event, 256)}
	c.rooms[topic] = r
	c.mu.Unlock()

	err := c.send(protocol.JoinMsg{
		Type:            protocol.TypeJoin,
		ProtocolVersion: protocol.Version,
		Topic:           topic,
		Key:             key,
		Self:            self,
	})
	if err != nil {
		c.mu.Lock()
		delete(c.rooms, topic)
		c.mu.Unlock()
		return nil, err
	}
	return r, nil
}

func (c *Client) Close() error {
	c.teardown()
	return c.conn.Close()
}

func (c *Client) teardown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	rooms := c.rooms
	c.rooms = map[string]*clientRoom{}
	c.mu.Unlock()

	c.cancel()
	for _, r := range rooms {
		close(r.events)
	}
}

func (r *clientRoom) Events() <-chan transport.Event { return r.events }

func (r *clientRoom) Broadcast(event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.c.send(protocol.BroadcastMsg{
		Type:            protocol.TypeBroadcast,
		ProtocolVersion: protocol.Version,
		Topic:           r.topic,
		Event:           event,
		Payload:         raw,
	})
}

func (r *clientRoom) Track(state any) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return r.c.send(protocol.TrackMsg{
		Type:            protocol.TypeTrack,
		ProtocolVersion: protocol.Version,
		Topic:           r.topic,
		State:           raw,
	})
}

func (r *clientRoom) Leave() error {
	r.c.mu.Lock()
	if r.c.rooms[r.topic] == r {
		delete(r.c.rooms, r.topic)
		close(r.events)
	}
	r.c.mu.Unlock()
	return r.c.send(protocol.LeaveMsg{
		Type:            protocol.TypeLeave,
		ProtocolVersion: protocol.Version,
		Topic:           r.topic,
	})
}