package broadcast

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Channel is one endpoint attached to a named channel. A posted message
// reaches every other endpoint with the same name, never the poster. Nothing
// tracks peers: a message posted while nobody listens is lost.
type Channel interface {
	Name() string
	Post(m Message) error
	// Listen registers fn for every message delivered to this endpoint.
	// Handlers run one at a time, in delivery order, on the endpoint's own
	// goroutine. The returned func removes the handler.
	Listen(fn func(Message)) (stop func())
	Close() error
}

// FrameLimiter is implemented by channels whose transport caps the size of
// one encoded message
type FrameLimiter interface {
	MaxFrameSize() int64
}

// Opener attaches a new endpoint to a named channel
type Opener interface {
	Open(ctx context.Context, name string) (Channel, error)
}

// ChannelName is the channel a document's presenter and audience share
func ChannelName(fileName string) string {
	return "pdfpw:" + fileName
}

// mailbox queues decoded messages for an endpoint and runs its handlers in
// order on a single goroutine. The queue is unbounded so a handler that posts
// back into the channel never blocks delivery.
type mailbox struct {
	mu       sync.Mutex
	queue    []Message
	handlers map[uint64]func(Message)
	nextID   uint64
	wake     chan struct{}
	done     chan struct{}
	once     sync.Once
}

func newMailbox() *mailbox {
	mb := &mailbox{
		handlers: make(map[uint64]func(Message)),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go mb.run()
	return mb
}

func (mb *mailbox) listen(fn func(Message)) func() {
	mb.mu.Lock()
	id := mb.nextID
	mb.nextID++
	mb.handlers[id] = fn
	mb.mu.Unlock()

	return func() {
		mb.mu.Lock()
		delete(mb.handlers, id)
		mb.mu.Unlock()
	}
}

func (mb *mailbox) deliver(m Message) {
	mb.mu.Lock()
	mb.queue = append(mb.queue, m)
	mb.mu.Unlock()

	select {
	case mb.wake <- struct{}{}:
	default:
	}
}

func (mb *mailbox) run() {
	for {
		select {
		case <-mb.done:
			return
		case <-mb.wake:
		}

		for {
			mb.mu.Lock()
			if len(mb.queue) == 0 {
				mb.mu.Unlock()
				break
			}
			m := mb.queue[0]
			mb.queue[0] = nil
			mb.queue = mb.queue[1:]
			handlers := make([]func(Message), 0, len(mb.handlers))
			for _, fn := range mb.handlers {
				handlers = append(handlers, fn)
			}
			mb.mu.Unlock()

			for _, fn := range handlers {
				fn(m)
			}

			select {
			case <-mb.done:
				return
			default:
			}
		}
	}
}

// close stops dispatch. Messages still queued are dropped.
func (mb *mailbox) close() {
	mb.once.Do(func() { close(mb.done) })
}

// Bus is an in-process channel registry. Endpoints opened with the same name
// see each other's posts.
type Bus struct {
	mu      sync.RWMutex
	members map[string]map[*busChannel]struct{}
	logger  *logrus.Logger
}

// NewBus creates an empty bus
func NewBus(logger *logrus.Logger) *Bus {
	return &Bus{
		members: make(map[string]map[*busChannel]struct{}),
		logger:  logger,
	}
}

// Open attaches a new endpoint to the named channel
func (b *Bus) Open(_ context.Context, name string) (Channel, error) {
	c := &busChannel{bus: b, name: name, mailbox: newMailbox()}

	b.mu.Lock()
	room, ok := b.members[name]
	if !ok {
		room = make(map[*busChannel]struct{})
		b.members[name] = room
	}
	room[c] = struct{}{}
	b.mu.Unlock()

	return c, nil
}

func (b *Bus) post(from *busChannel, m Message) error {
	// Receivers get their own decoded copy, like a structured clone
	frame, err := Encode(m)
	if err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for c := range b.members[from.name] {
		if c == from {
			continue
		}
		copied, err := Decode(frame)
		if err != nil {
			return err
		}
		c.mailbox.deliver(copied)
	}
	if b.logger != nil {
		b.logger.WithFields(logrus.Fields{
			"channel": from.name,
			"command": m.Command(),
		}).Debug("Bus message posted")
	}
	return nil
}

func (b *Bus) leave(c *busChannel) {
	b.mu.Lock()
	defer b.mu.Unlock()
	room := b.members[c.name]
	delete(room, c)
	if len(room) == 0 {
		delete(b.members, c.name)
	}
}

type busChannel struct {
	bus     *Bus
	name    string
	mailbox *mailbox

	mu     sync.Mutex
	closed bool
}

func (c *busChannel) Name() string { return c.name }

func (c *busChannel) Post(m Message) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrChannelClosed
	}
	return c.bus.post(c, m)
}

func (c *busChannel) Listen(fn func(Message)) func() {
	return c.mailbox.listen(fn)
}

func (c *busChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.bus.leave(c)
	c.mailbox.close()
	return nil
}
