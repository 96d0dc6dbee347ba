package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"pdf-presenter/internal/models"
)

// DefaultTimeout is how long a request waits for the presenter to answer
const DefaultTimeout = 5 * time.Second

// Option configures a Session
type Option func(*Session)

// WithTimeout overrides DefaultTimeout
func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

// WithLogger sets the session logger
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// Session is the audience side of one process. It keeps exactly one channel
// open, for the active document, together with the config and PDF fetched
// over it. Switching to another document closes the channel and drops both
// caches.
type Session struct {
	opener  Opener
	timeout time.Duration
	logger  *logrus.Logger

	mu  sync.Mutex
	doc *document
}

type document struct {
	fileName string
	channel  Channel
	ctx      context.Context
	cancel   context.CancelFunc

	config *call[*models.ResolvedConfig]
	pdf    *call[[]byte]
}

// call is one request shared by every caller waiting on it
type call[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// NewSession creates a session that opens channels through opener
func NewSession(opener Opener, opts ...Option) *Session {
	s := &Session{
		opener:  opener,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logrus.New()
	}
	return s
}

// Channel returns the channel for fileName, replacing the current document
// when the name differs.
func (s *Session) Channel(ctx context.Context, fileName string) (Channel, error) {
	doc, err := s.document(ctx, fileName)
	if err != nil {
		return nil, err
	}
	return doc.channel, nil
}

// FetchConfig returns the presenter's resolved config for fileName. The first
// successful answer is cached until the document changes; failures are not.
func (s *Session) FetchConfig(ctx context.Context, fileName string) (*models.ResolvedConfig, error) {
	doc, err := s.document(ctx, fileName)
	if err != nil {
		return nil, err
	}
	return fetch(ctx, s, doc, &doc.config, RequestConfig, GetConfig{}, func(m Message) (*models.ResolvedConfig, bool) {
		resp, ok := m.(ConfigResponse)
		return resp.Config, ok
	})
}

// FetchPDF returns the raw PDF bytes for fileName, cached like FetchConfig
func (s *Session) FetchPDF(ctx context.Context, fileName string) ([]byte, error) {
	doc, err := s.document(ctx, fileName)
	if err != nil {
		return nil, err
	}
	return fetch(ctx, s, doc, &doc.pdf, RequestPDF, GetPDF{}, func(m Message) ([]byte, bool) {
		resp, ok := m.(PDFResponse)
		return resp.Data, ok
	})
}

// OnPageNumber calls fn for every page pushed by the presenter of fileName.
// Pushes are applied as they arrive; the last one seen wins.
func (s *Session) OnPageNumber(ctx context.Context, fileName string, fn func(int)) (func(), error) {
	ch, err := s.Channel(ctx, fileName)
	if err != nil {
		return nil, err
	}
	return ListenPages(ch, fn), nil
}

// Close closes the active document's channel
func (s *Session) Close() error {
	s.mu.Lock()
	doc := s.doc
	s.doc = nil
	s.mu.Unlock()

	if doc == nil {
		return nil
	}
	doc.cancel()
	return doc.channel.Close()
}

func (s *Session) document(ctx context.Context, fileName string) (*document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc != nil && s.doc.fileName == fileName {
		return s.doc, nil
	}

	if old := s.doc; old != nil {
		s.doc = nil
		old.cancel()
		if err := old.channel.Close(); err != nil {
			s.logger.WithError(err).WithField("file", old.fileName).Warn("Failed to close channel")
		}
	}

	ch, err := s.opener.Open(ctx, ChannelName(fileName))
	if err != nil {
		return nil, err
	}
	docCtx, cancel := context.WithCancel(context.Background())
	s.doc = &document{
		fileName: fileName,
		channel:  ch,
		ctx:      docCtx,
		cancel:   cancel,
	}
	s.logger.WithField("channel", ch.Name()).Debug("Opened document channel")
	return s.doc, nil
}

// fetch joins the in-flight or finished call in *slot, starting one if there
// is none. The request itself is bound to the document, not to the caller, so
// a caller giving up does not fail the others.
func fetch[T any](ctx context.Context, s *Session, doc *document, slot **call[T], kind RequestKind, req Message, match func(Message) (T, bool)) (T, error) {
	s.mu.Lock()
	c := *slot
	if c == nil {
		c = &call[T]{done: make(chan struct{})}
		*slot = c
		go func() {
			c.val, c.err = request(doc.ctx, doc.channel, req, s.timeout, kind, match)
			if c.err != nil {
				s.mu.Lock()
				if *slot == c {
					*slot = nil
				}
				s.mu.Unlock()
				s.logger.WithError(c.err).WithField("request", kind).Warn("Request failed")
			}
			close(c.done)
		}()
	}
	s.mu.Unlock()

	select {
	case <-c.done:
		return c.val, c.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// request posts req and waits for the first message match accepts. The
// listener is registered before posting and removed on every exit path.
func request[T any](ctx context.Context, ch Channel, req Message, timeout time.Duration, kind RequestKind, match func(Message) (T, bool)) (T, error) {
	var zero T

	result := make(chan T, 1)
	stop := ch.Listen(func(m Message) {
		if v, ok := match(m); ok {
			select {
			case result <- v:
			default:
			}
		}
	})
	defer stop()

	if err := ch.Post(req); err != nil {
		return zero, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case v := <-result:
		return v, nil
	case <-timer.C:
		return zero, &TimeoutError{Kind: kind, After: timeout}
	case <-ctx.Done():
		return zero, ErrChannelClosed
	}
}

// ListenPages calls fn with every page number pushed on ch
func ListenPages(ch Channel, fn func(int)) func() {
	return ch.Listen(func(m Message) {
		if push, ok := m.(PageNumber); ok {
			fn(push.PageNumber)
		}
	})
}
