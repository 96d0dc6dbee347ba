package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
)

// RelayOptions tunes the relay hub
type RelayOptions struct {
	// MaxMessageSize bounds a single frame; PDF responses travel in one frame
	MaxMessageSize int64
	// Rate limits frames per second per connection; zero disables limiting
	Rate  float64
	Burst int
}

// Client is one websocket connection joined to a relay room
type Client struct {
	ID      string
	Room    string
	conn    *websocket.Conn
	send    chan []byte
	service *WebSocketService
	limiter *rate.Limiter
	logger  *logrus.Entry
}

type relayFrame struct {
	from *Client
	data []byte
}

// WebSocketService relays frames between clients in the same room. A room is
// a broadcast channel name; frames go to every member except the sender.
type WebSocketService struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	relay      chan relayFrame
	stats      chan chan map[string]int
	quit       chan struct{}

	options RelayOptions
	logger  *logrus.Logger
}

// NewWebSocketService creates a new relay hub. Call Run to start it.
func NewWebSocketService(logger *logrus.Logger, options RelayOptions) *WebSocketService {
	return &WebSocketService{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client, 32),
		unregister: make(chan *Client, 32),
		relay:      make(chan relayFrame, 128),
		stats:      make(chan chan map[string]int),
		quit:       make(chan struct{}),
		options:    options,
		logger:     logger,
	}
}

// Run processes joins, leaves and frames until ctx is done
func (s *WebSocketService) Run(ctx context.Context) {
	defer func() {
		close(s.quit)
		for _, room := range s.rooms {
			for c := range room {
				close(c.send)
			}
		}
		s.rooms = nil
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-s.register:
			room, ok := s.rooms[c.Room]
			if !ok {
				room = make(map[*Client]bool)
				s.rooms[c.Room] = room
			}
			room[c] = true
			c.logger.WithField("members", len(room)).Info("Client joined room")

		case c := <-s.unregister:
			s.remove(c)

		case frame := <-s.relay:
			for c := range s.rooms[frame.from.Room] {
				if c == frame.from {
					continue
				}
				select {
				case c.send <- frame.data:
				default:
					c.logger.Warn("Send buffer full, disconnecting slow client")
					s.remove(c)
				}
			}

		case reply := <-s.stats:
			counts := make(map[string]int, len(s.rooms))
			for name, room := range s.rooms {
				counts[name] = len(room)
			}
			reply <- counts
		}
	}
}

func (s *WebSocketService) remove(c *Client) {
	room, ok := s.rooms[c.Room]
	if !ok || !room[c] {
		return
	}
	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(s.rooms, c.Room)
	}
	c.logger.WithField("members", len(room)).Info("Client left room")
}

// RoomSizes reports how many clients are in each room
func (s *WebSocketService) RoomSizes(ctx context.Context) (map[string]int, error) {
	reply := make(chan map[string]int, 1)
	select {
	case s.stats <- reply:
	case <-s.quit:
		return map[string]int{}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case counts := <-reply:
		return counts, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Serve joins conn to room and pumps frames until the connection ends
func (s *WebSocketService) Serve(ctx context.Context, conn *websocket.Conn, room string) {
	id := uuid.NewString()
	c := &Client{
		ID:      id,
		Room:    room,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		service: s,
		logger: s.logger.WithFields(logrus.Fields{
			"client": id,
			"room":   room,
		}),
	}
	if s.options.Rate > 0 {
		burst := s.options.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(s.options.Rate), burst)
	}

	select {
	case s.register <- c:
	case <-s.quit:
		conn.Close()
		return
	}

	go c.writePump()
	c.readPump(ctx)
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		select {
		case c.service.unregister <- c:
		case <-c.service.quit:
		}
		c.conn.Close()
	}()

	if c.service.options.MaxMessageSize > 0 {
		c.conn.SetReadLimit(c.service.options.MaxMessageSize)
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.WithError(err).Warn("Unexpected close")
			}
			return
		}

		// Frames are delayed, never dropped, when a client posts too fast
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return
			}
		}

		select {
		case c.service.relay <- relayFrame{from: c, data: data}:
		case <-c.service.quit:
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.WithError(err).Debug("Write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
