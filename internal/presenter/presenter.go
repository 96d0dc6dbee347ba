// Package presenter holds the controllers behind the two views: the presenter,
// who navigates, runs the timer and pushes pages, and the audience, which
// loads the document and follows the pushed page.
package presenter

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"pdf-presenter/internal/models"
	"pdf-presenter/internal/pdfpc"
	"pdf-presenter/internal/timer"
)

// Pusher delivers the current page to the audience
type Pusher interface {
	PushPage(pageNumber int) error
}

// Snapshot is everything the presenter view shows at one instant
type Snapshot struct {
	PageNumber int
	// AudiencePage is the last page pushed, which lags PageNumber while frozen
	AudiencePage int
	Frozen       bool
	Label        string
	Slide        int
	TotalSlides  int
	PrevOverlay  int
	NextOverlay  int
	// NextSlidePage is zero on the last slide
	NextSlidePage int
	Note          string
	Timer         timer.View
}

// Option configures a Presenter
type Option func(*Presenter)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(p *Presenter) { p.now = now }
}

// Presenter owns the presenter's page, frozen flag and timer. Every page
// change goes through move, which updates the timer and pushes in one step.
type Presenter struct {
	mu           sync.Mutex
	cfg          *models.ResolvedConfig
	page         int
	audiencePage int
	frozen       bool
	timer        timer.State
	pusher       Pusher
	now          func() time.Time
	logger       *logrus.Logger
}

// New creates a presenter on the first page of cfg. pusher may be nil when no
// audience is attached.
func New(cfg *models.ResolvedConfig, pusher Pusher, logger *logrus.Logger, opts ...Option) *Presenter {
	p := &Presenter{
		cfg:    cfg,
		pusher: pusher,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.page = pdfpc.FirstPage(cfg)
	p.audiencePage = p.page
	p.timer = timer.New(p.now())
	return p
}

// Next advances one overlay
func (p *Presenter) Next() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.move(pdfpc.StepForward(p.cfg, p.page))
}

// Prev goes back one overlay
func (p *Presenter) Prev() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.move(pdfpc.StepBackward(p.cfg, p.page))
}

// NextSlide jumps to the last overlay of the following slide
func (p *Presenter) NextSlide() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if page, ok := pdfpc.NextSlidePage(p.cfg, p.page); ok {
		return p.move(page)
	}
	return p.page
}

// PrevSlide jumps to the last overlay of the previous slide
func (p *Presenter) PrevSlide() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if page, ok := pdfpc.PrevSlidePage(p.cfg, p.page); ok {
		return p.move(page)
	}
	return p.page
}

// GoTo shows a physical page. Hidden or unknown pages are refused.
func (p *Presenter) GoTo(pageNumber int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := pdfpc.FindPage(p.cfg, pageNumber); !ok {
		return false
	}
	p.move(pageNumber)
	return true
}

// ToggleTimer pauses or resumes the talk timer
func (p *Presenter) ToggleTimer() timer.Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timer = p.timer.Toggle(p.now())
	return p.timer.Phase()
}

// ResetTimer zeroes the talk time. Past the first page the timer stays
// started, so the schedule keeps counting against the wall clock.
func (p *Presenter) ResetTimer() timer.Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timer = p.timer.Reset(p.now(), p.page > 1)
	return p.timer.Phase()
}

// SetFrozen stops or resumes page pushes. Unfreezing sends the current page
// so the audience catches up.
func (p *Presenter) SetFrozen(frozen bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.frozen == frozen {
		return
	}
	p.frozen = frozen
	p.logger.WithField("frozen", frozen).Info("Audience view mode changed")
	if !frozen {
		p.push()
	}
}

// Reload replaces the resolved config. A current page that the new config
// hides moves to the nearest following visible page.
func (p *Presenter) Reload(cfg *models.ResolvedConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = cfg
	if _, ok := pdfpc.FindPage(cfg, p.page); !ok {
		p.move(pdfpc.StepForward(cfg, p.page))
	}
}

// Config returns the config currently in use
func (p *Presenter) Config() *models.ResolvedConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

// SavedSlide is the slide index written back to the .pdfpc file on exit
func (p *Presenter) SavedSlide() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	i, _ := pdfpc.SlideIndex(p.cfg, p.page)
	return uint32(i)
}

// Snapshot returns the current view state
func (p *Presenter) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Snapshot{
		PageNumber:   p.page,
		AudiencePage: p.audiencePage,
		Frozen:       p.frozen,
		Note:         pdfpc.NoteText(p.cfg, p.page),
		Timer:        timer.BuildView(p.cfg, p.page, p.now(), p.timer),
	}
	if page, ok := pdfpc.FindPage(p.cfg, p.page); ok {
		s.Label = page.Label
	}
	s.Slide, s.TotalSlides = pdfpc.SlideCounter(p.cfg, p.page)
	s.PrevOverlay, s.NextOverlay = pdfpc.OverlayNeighbours(p.cfg, p.page)
	s.NextSlidePage, _ = pdfpc.NextSlidePage(p.cfg, p.page)
	return s
}

// move must be called with mu held
func (p *Presenter) move(pageNumber int) int {
	if pageNumber == p.page {
		return p.page
	}
	p.page = pageNumber
	p.timer = p.timer.Navigated(p.now(), pageNumber)
	if !p.frozen {
		p.push()
	}
	return p.page
}

func (p *Presenter) push() {
	p.audiencePage = p.page
	if p.pusher == nil {
		return
	}
	if err := p.pusher.PushPage(p.page); err != nil {
		p.logger.WithError(err).WithField("page", p.page).Warn("Failed to push page")
	}
}
