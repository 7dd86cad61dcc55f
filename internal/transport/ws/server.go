// Package ws carries the room protocol over websockets: the relay server
// side used by roomd and the dialing client used by the game.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"farmgrid.app/internal/protocol"
	"farmgrid.app/internal/transport"
	"farmgrid.app/internal/transport/memhub"
)

const (
	writeTimeout = 5 * time.Second
	readTimeout  = 90 * time.Second
)

// Server relays room traffic between websocket clients. Room semantics live
// in the hub; the server only translates wire messages.
type Server struct {
	hub *memhub.Hub
	log *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(hub *memhub.Hub, logger *log.Logger) *Server {
	return &Server{
		hub: hub,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		out := make(chan []byte, 256)

		// Writer goroutine; the reader never touches the conn for writes.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		c := &serverConn{srv: s, ctx: ctx, out: out, rooms: map[string]transport.Room{}}
		defer c.leaveAll()

		conn.SetPingHandler(func(data string) error {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
			_ = conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeTimeout))
			return nil
		})

		for {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				return
			}
			c.handle(msg)
		}
	}
}

type serverConn struct {
	srv *Server
	ctx context.Context
	out chan []byte

	mu    sync.Mutex
	rooms map[string]transport.Room
}

func (c *serverConn) send(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case c.out <- b:
	default:
		// Slow consumer; presence snapshots let it catch up.
	}
}

func (c *serverConn) sendErr(code, message string) {
	c.send(protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         message,
	})
}

func (c *serverConn) handle(msg []byte) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		c.sendErr(protocol.ErrProtoBadRequest, "malformed message")
		return
	}
	if base.ProtocolVersion != protocol.Version {
		c.sendErr(protocol.ErrProtoBadRequest, "unsupported protocol version")
		return
	}

	switch base.Type {
	case protocol.TypeJoin:
		var m protocol.JoinMsg
		if err := json.Unmarshal(msg, &m); err != nil || m.Topic == "" || m.Key == "" {
			c.sendErr(protocol.ErrProtoBadRequest, "bad JOIN")
			return
		}
		c.join(m)
	case protocol.TypeLeave:
		var m protocol.LeaveMsg
		if err := json.Unmarshal(msg, &m); err != nil || m.Topic == "" {
			c.sendErr(protocol.ErrProtoBadRequest, "bad LEAVE")
			return
		}
		c.mu.Lock()
		room := c.rooms[m.Topic]
		delete(c.rooms, m.Topic)
		c.mu.Unlock()
		if room == nil {
			c.sendErr(protocol.ErrNotMember, "not in "+m.Topic)
			return
		}
		_ = room.Leave()
	case protocol.TypeBroadcast:
		var m protocol.BroadcastMsg
		if err := json.Unmarshal(msg, &m); err != nil || m.Topic == "" || m.Event == "" {
			c.sendErr(protocol.ErrProtoBadRequest, "bad BROADCAST")
			return
		}
		c.mu.Lock()
		room := c.rooms[m.Topic]
		c.mu.Unlock()
		if room == nil {
			c.sendErr(protocol.ErrNotMember, "not in "+m.Topic)
			return
		}
		_ = room.Broadcast(m.Event, m.Payload)
	case protocol.TypeTrack:
		var m protocol.TrackMsg
		if err := json.Unmarshal(msg, &m); err != nil || m.Topic == "" {
			c.sendErr(protocol.ErrProtoBadRequest, "bad TRACK")
			return
		}
		c.mu.Lock()
		room := c.rooms[m.Topic]
		c.mu.Unlock()
		if room == nil {
			c.sendErr(protocol.ErrNotMember, "not in "+m.Topic)
			return
		}
		_ = room.Track(json.RawMessage(m.State))
	default:
		c.sendErr(protocol.ErrProtoBadRequest, "unknown type "+base.Type)
	}
}

func (c *serverConn) join(m protocol.JoinMsg) {
	c.mu.Lock()
	if _, dup := c.rooms[m.Topic]; dup {
		c.mu.Unlock()
		c.sendErr(protocol.ErrProtoBadRequest, "already joined "+m.Topic)
		return
	}
	c.mu.Unlock()

	room, err := c.srv.hub.Join(m.Topic, m.Key, m.Self)
	if err != nil {
		c.sendErr(protocol.ErrRoomNotFound, err.Error())
		return
	}
	c.mu.Lock()
	c.rooms[m.Topic] = room
	c.mu.Unlock()

	go c.forward(m.Topic, room)
}

// forward converts hub events for one room back into wire messages.
func (c *serverConn) forward(topic string, room transport.Room) {
	for {
		select {
		case <-c.ctx.Done():
			return
		case ev, ok := <-room.Events():
			if !ok {
				return
			}
			switch ev.Kind {
			case transport.EventBroadcast:
				c.send(protocol.BroadcastMsg{
					Type:            protocol.TypeBroadcast,
					ProtocolVersion: protocol.Version,
					Topic:           topic,
					Event:           ev.Event,
					From:            ev.From,
					Payload:         ev.Payload,
				})
			case transport.EventPresence:
				c.send(protocol.PresenceMsg{
					Type:            protocol.TypePresence,
					ProtocolVersion: protocol.Version,
					Topic:           topic,
					Members:         ev.Members,
				})
			}
		}
	}
}

func (c *serverConn) leaveAll() {
	c.mu.Lock()
	rooms := c.rooms
	c.rooms = map[string]transport.Room{}
	c.mu.Unlock()
	for _, r := range rooms {
		_ = r.Leave()
	}
}
