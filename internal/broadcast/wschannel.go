package broadcast

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	defaultRedialMin = 100 * time.Millisecond
	defaultRedialMax = 5 * time.Second
	sendQueueSize    = 64
)

// WSOpener attaches endpoints to channels on a relay server. Each Open
// dials its own connection to /ws/{name}. A lost connection is redialed with
// exponential backoff until the channel is closed; listeners and queued
// posts carry over to the new connection.
type WSOpener struct {
	// BaseURL is the relay server, http(s):// or ws(s)://
	BaseURL string
	// MaxMessageSize bounds frames in both directions and should match the
	// relay's limit; zero means no limit
	MaxMessageSize int64
	// RedialMin and RedialMax bound the delay between reconnect attempts
	RedialMin time.Duration
	RedialMax time.Duration
	Dialer    *websocket.Dialer
	Logger    *logrus.Logger
}

// Open dials the relay room for name
func (o *WSOpener) Open(ctx context.Context, name string) (Channel, error) {
	endpoint, err := relayURL(o.BaseURL, name)
	if err != nil {
		return nil, err
	}

	dialer := o.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	logger := o.Logger
	if logger == nil {
		logger = logrus.New()
	}

	c := &wsChannel{
		name:      name,
		endpoint:  endpoint,
		dialer:    dialer,
		maxFrame:  o.MaxMessageSize,
		redialMin: o.RedialMin,
		redialMax: o.RedialMax,
		send:      make(chan []byte, sendQueueSize),
		logger:    logger.WithField("channel", name),
	}
	if c.redialMin <= 0 {
		c.redialMin = defaultRedialMin
	}
	if c.redialMax < c.redialMin {
		c.redialMax = max(defaultRedialMax, c.redialMin)
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.mailbox = newMailbox()
	go c.run(conn)
	return c, nil
}

func relayURL(base, name string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("parse relay url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported relay scheme %q", u.Scheme)
	}
	return u.String() + "/ws/" + url.PathEscape(name), nil
}

type wsChannel struct {
	name      string
	endpoint  string
	dialer    *websocket.Dialer
	maxFrame  int64
	redialMin time.Duration
	redialMax time.Duration

	send    chan []byte
	ctx     context.Context
	cancel  context.CancelFunc
	once    sync.Once
	mailbox *mailbox
	logger  *logrus.Entry
}

func (c *wsChannel) Name() string { return c.name }

// MaxFrameSize is the largest encoded message Post accepts, zero if unbounded
func (c *wsChannel) MaxFrameSize() int64 { return c.maxFrame }

// Post queues m for the current connection. Posts made while the relay is
// being redialed wait in the queue; a full queue is an error, not a block.
func (c *wsChannel) Post(m Message) error {
	frame, err := Encode(m)
	if err != nil {
		return err
	}
	if c.maxFrame > 0 && int64(len(frame)) > c.maxFrame {
		return &FrameTooLargeError{Command: m.Command(), Size: int64(len(frame)), Limit: c.maxFrame}
	}
	if c.ctx.Err() != nil {
		return ErrChannelClosed
	}
	select {
	case c.send <- frame:
		return nil
	case <-c.ctx.Done():
		return ErrChannelClosed
	default:
		return ErrSendQueueFull
	}
}

func (c *wsChannel) Listen(fn func(Message)) func() {
	return c.mailbox.listen(fn)
}

func (c *wsChannel) Close() error {
	c.shutdown()
	return nil
}

func (c *wsChannel) shutdown() {
	c.once.Do(func() {
		c.cancel()
		c.mailbox.close()
	})
}

func (c *wsChannel) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := c.dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay %s: %w", c.endpoint, err)
	}
	if c.maxFrame > 0 {
		conn.SetReadLimit(c.maxFrame)
	}
	return conn, nil
}

// run serves conn, then keeps redialing after every loss until Close
func (c *wsChannel) run(conn *websocket.Conn) {
	for {
		c.serve(conn)
		if c.ctx.Err() != nil {
			return
		}
		if conn = c.redial(); conn == nil {
			return
		}
	}
}

// redial retries with exponential backoff. It returns nil once the channel
// is closed.
func (c *wsChannel) redial() *websocket.Conn {
	delay := c.redialMin
	for attempt := 1; ; attempt++ {
		timer := time.NewTimer(delay)
		select {
		case <-c.ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		conn, err := c.dial(c.ctx)
		if err == nil {
			c.logger.WithField("attempt", attempt).Info("Rejoined relay")
			return conn
		}
		if c.ctx.Err() != nil {
			return nil
		}
		c.logger.WithError(err).WithFields(logrus.Fields{
			"attempt": attempt,
			"delay":   delay,
		}).Warn("Relay redial failed")
		delay = min(delay*2, c.redialMax)
	}
}

// serve pumps frames over one connection until it fails or the channel
// closes
func (c *wsChannel) serve(conn *websocket.Conn) {
	stop := make(chan struct{})
	written := make(chan struct{})
	go func() {
		defer close(written)
		c.writePump(conn, stop)
	}()

	c.readPump(conn)
	close(stop)
	// Unblocks a writer stuck on a peer that stopped reading
	_ = conn.Close()
	<-written
}

func (c *wsChannel) readPump(conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if c.ctx.Err() == nil {
				c.logger.WithError(err).Warn("Relay connection lost")
			}
			return
		}
		m, err := Decode(frame)
		if err != nil {
			c.logger.WithError(err).Debug("Ignoring frame")
			continue
		}
		c.mailbox.deliver(m)
	}
}

// writePump owns all writes to conn. Closing conn on a write error ends the
// matching readPump.
func (c *wsChannel) writePump(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case frame := <-c.send:
			if err := write(conn, websocket.TextMessage, frame); err != nil {
				c.logger.WithError(err).Warn("Failed to write frame")
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			if err := write(conn, websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				return
			}
		case <-stop:
			return
		case <-c.ctx.Done():
			c.flush(conn)
			_ = write(conn, websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = conn.Close()
			return
		}
	}
}

// flush writes frames posted before Close
func (c *wsChannel) flush(conn *websocket.Conn) {
	for {
		select {
		case frame := <-c.send:
			if err := write(conn, websocket.TextMessage, frame); err != nil {
				return
			}
		default:
			return
		}
	}
}

func write(conn *websocket.Conn, messageType int, data []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(messageType, data)
}
