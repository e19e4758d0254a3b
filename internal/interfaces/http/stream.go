package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/moonscan/tokenrank/internal/persistence"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Consumers are trusted internal dashboards/bots.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub broadcasts stored scores to websocket subscribers. It implements
// scan.Publisher. Slow subscribers are dropped rather than allowed to back
// up the scoring path.
type Hub struct {
	register   chan *subscriber
	unregister chan *subscriber
	events     chan persistence.StoredScore
	done       chan struct{}
}

type subscriber struct {
	conn *websocket.Conn
	send chan persistence.StoredScore
}

// NewHub builds an idle hub; Run starts the fan-out loop.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *subscriber),
		unregister: make(chan *subscriber),
		events:     make(chan persistence.StoredScore, 256),
		done:       make(chan struct{}),
	}
}

// Broadcast queues a record for fan-out. Never blocks: if the hub's buffer
// is full the record is dropped for streaming (it is still archived).
func (h *Hub) Broadcast(score persistence.StoredScore) {
	select {
	case h.events <- score:
	default:
		log.Warn().Str("token", score.Record.TokenID).Msg("stream buffer full, dropping record")
	}
}

// subscribe hands a subscriber to the fan-out loop. Returns false once the
// hub has shut down, so connection goroutines never block on a dead loop.
func (h *Hub) subscribe(sub *subscriber) bool {
	select {
	case h.register <- sub:
		return true
	case <-h.done:
		return false
	}
}

// drop detaches a subscriber; a no-op after shutdown, where Run already
// closed every send channel.
func (h *Hub) drop(sub *subscriber) {
	select {
	case h.unregister <- sub:
	case <-h.done:
	}
}

// Run fans events out to subscribers until the context ends.
func (h *Hub) Run(ctx context.Context) {
	subscribers := make(map[*subscriber]struct{})
	defer func() {
		close(h.done)
		for sub := range subscribers {
			close(sub.send)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case sub := <-h.register:
			subscribers[sub] = struct{}{}
		case sub := <-h.unregister:
			if _, ok := subscribers[sub]; ok {
				delete(subscribers, sub)
				close(sub.send)
			}
		case event := <-h.events:
			for sub := range subscribers {
				select {
				case sub.send <- event:
				default:
					delete(subscribers, sub)
					close(sub.send)
				}
			}
		}
	}
}

// handleStream upgrades the connection and streams score records as they
// are produced.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	sub := &subscriber{conn: conn, send: make(chan persistence.StoredScore, 32)}
	if !s.hub.subscribe(sub) {
		conn.Close()
		return
	}

	go sub.writeLoop()
	go sub.readLoop(s.hub)
}

func (sub *subscriber) writeLoop() {
	ping := time.NewTicker(30 * time.Second)
	defer func() {
		ping.Stop()
		sub.conn.Close()
	}()

	for {
		select {
		case event, ok := <-sub.send:
			if !ok {
				sub.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			sub.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := sub.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ping.C:
			sub.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop drains control frames and unregisters on disconnect.
func (sub *subscriber) readLoop(hub *Hub) {
	defer func() {
		hub.drop(sub)
		sub.conn.Close()
	}()
	sub.conn.SetReadLimit(512)
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}
