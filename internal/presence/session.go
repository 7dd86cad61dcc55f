package presence

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"

	"farmgrid.app/internal/protocol"
	"farmgrid.app/internal/transport"
)

// SessionMonitor announces a random per-session token on the account's
// session topic and watches for later announcements. Last writer wins: a
// foreign token arriving after ours means a newer login somewhere else, and
// this session must lock itself down to logout-only.
type SessionMonitor struct {
	token string
	room  transport.Room
	log   *log.Logger

	once     sync.Once
	conflict func()
	stop     chan struct{}
	stopOnce sync.Once
}

func StartSessionMonitor(bus transport.Bus, accountID string, logger *log.Logger, onConflict func()) (*SessionMonitor, error) {
	room, err := bus.Join("session:"+accountID, accountID, false)
	if err != nil {
		return nil, err
	}
	m := &SessionMonitor{
		token:    uuid.NewString(),
		room:     room,
		log:      logger,
		conflict: onConflict,
		stop:     make(chan struct{}),
	}
	err = room.Broadcast(protocol.EventNewLogin, protocol.SessionHello{SessionID: m.token})
	if err != nil {
		_ = room.Leave()
		return nil, err
	}
	go m.watch()
	return m, nil
}

func (m *SessionMonitor) Token() string { return m.token }

func (m *SessionMonitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		_ = m.room.Leave()
	})
}

func (m *SessionMonitor) watch() {
	for {
		select {
		case <-m.stop:
			return
		case ev, ok := <-m.room.Events():
			if !ok {
				return
			}
			if ev.Kind != transport.EventBroadcast || ev.Event != protocol.EventNewLogin {
				continue
			}
			var hello protocol.SessionHello
			if err := json.Unmarshal(ev.Payload, &hello); err != nil {
				continue
			}
			if hello.SessionID == m.token {
				continue
			}
			m.log.Printf("[session] duplicate login detected, locking session")
			m.once.Do(m.conflict)
		}
	}
}
