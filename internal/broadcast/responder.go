package broadcast

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"pdf-presenter/internal/models"
)

// Responder answers audience requests on behalf of the presenter. Config
// requests are answered from the dispatch goroutine; PDF reads run in their
// own goroutine so page pushes are never held up behind a large file.
type Responder struct {
	ch     Channel
	source PDFSource
	logger *logrus.Entry

	mu     sync.RWMutex
	config *models.ResolvedConfig
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	stop   func()
	wg     sync.WaitGroup
}

// NewResponder starts answering requests on ch
func NewResponder(ch Channel, cfg *models.ResolvedConfig, source PDFSource, logger *logrus.Logger) *Responder {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Responder{
		ch:     ch,
		source: source,
		config: cfg,
		logger: logger.WithField("channel", ch.Name()),
		ctx:    ctx,
		cancel: cancel,
	}
	r.stop = ch.Listen(r.handle)
	return r
}

// SetConfig replaces the config served to later requests
func (r *Responder) SetConfig(cfg *models.ResolvedConfig) {
	r.mu.Lock()
	r.config = cfg
	r.mu.Unlock()
}

// Config returns the config currently served
func (r *Responder) Config() *models.ResolvedConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.config
}

// PushPage tells the audience which page to show
func (r *Responder) PushPage(pageNumber int) error {
	return r.ch.Post(PageNumber{PageNumber: pageNumber})
}

// Close stops answering and waits for in-flight PDF reads to finish
func (r *Responder) Close() {
	r.stop()
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cancel()
	r.wg.Wait()
}

func (r *Responder) handle(m Message) {
	switch m.(type) {
	case GetConfig:
		if err := r.ch.Post(ConfigResponse{Config: r.Config()}); err != nil {
			r.logger.WithError(err).Warn("Failed to send config")
		}
	case GetPDF:
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed {
			return
		}
		r.wg.Add(1)
		go r.sendPDF()
	}
}

func (r *Responder) sendPDF() {
	defer r.wg.Done()

	data, err := r.source.ReadAll(r.ctx)
	if err != nil {
		r.logger.WithError(err).Error("Failed to read PDF for audience")
		return
	}
	if limit := frameLimit(r.ch); limit > 0 {
		if size := int64(base64.StdEncoding.EncodedLen(len(data))); size > limit {
			r.logger.WithFields(logrus.Fields{
				"bytes":   len(data),
				"encoded": size,
				"limit":   limit,
			}).Error("PDF exceeds relay frame limit, not sent")
			return
		}
	}
	if err := r.ch.Post(PDFResponse{Data: data}); err != nil {
		if errors.Is(err, ErrFrameTooLarge) {
			r.logger.WithError(err).Error("PDF exceeds relay frame limit, not sent")
			return
		}
		r.logger.WithError(err).Warn("Failed to send PDF")
		return
	}
	r.logger.WithField("bytes", len(data)).Debug("PDF sent")
}

func frameLimit(ch Channel) int64 {
	if l, ok := ch.(FrameLimiter); ok {
		return l.MaxFrameSize()
	}
	return 0
}
