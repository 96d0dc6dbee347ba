package presenter

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"pdf-presenter/internal/broadcast"
	"pdf-presenter/internal/models"
)

// Remote is the requesting side of the broadcast protocol
type Remote interface {
	FetchConfig(ctx context.Context, fileName string) (*models.ResolvedConfig, error)
	FetchPDF(ctx context.Context, fileName string) ([]byte, error)
	OnPageNumber(ctx context.Context, fileName string, fn func(int)) (func(), error)
}

// LocalFiles finds a document opened earlier on this machine
type LocalFiles interface {
	FindByName(ctx context.Context, name string) (*models.RecentFile, error)
}

// Document is what the audience view renders
type Document struct {
	FileName string
	Config   *models.ResolvedConfig
	PDF      []byte
	// Local is true when the PDF was read from disk instead of the channel
	Local bool
}

// Audience loads a document for the audience view and follows page pushes
type Audience struct {
	remote Remote
	local  LocalFiles
	page   atomic.Int64
	logger *logrus.Logger
}

// NewAudience creates an audience controller. local may be nil.
func NewAudience(remote Remote, local LocalFiles, logger *logrus.Logger) *Audience {
	a := &Audience{
		remote: remote,
		local:  local,
		logger: logger,
	}
	a.page.Store(1)
	return a
}

// Load fetches the config from the presenter. The PDF is read from a local
// path known to the recent files store when there is one, otherwise it is
// requested from the presenter as well.
func (a *Audience) Load(ctx context.Context, fileName string) (*Document, error) {
	cfg, err := a.remote.FetchConfig(ctx, fileName)
	if err != nil {
		return nil, err
	}
	doc := &Document{FileName: fileName, Config: cfg}

	if path := a.localPath(ctx, fileName); path != "" {
		data, err := broadcast.FileSource{Path: path}.ReadAll(ctx)
		if err != nil {
			return nil, err
		}
		doc.PDF = data
		doc.Local = true
		return doc, nil
	}

	data, err := a.remote.FetchPDF(ctx, fileName)
	if err != nil {
		return nil, err
	}
	doc.PDF = data
	return doc, nil
}

// Follow tracks page pushes for fileName, calling fn with each new page.
// The returned func stops following.
func (a *Audience) Follow(ctx context.Context, fileName string, fn func(int)) (func(), error) {
	return a.remote.OnPageNumber(ctx, fileName, func(page int) {
		a.page.Store(int64(page))
		if fn != nil {
			fn(page)
		}
	})
}

// Page is the most recently pushed page
func (a *Audience) Page() int {
	return int(a.page.Load())
}

func (a *Audience) localPath(ctx context.Context, fileName string) string {
	if a.local == nil {
		return ""
	}
	recent, err := a.local.FindByName(ctx, fileName)
	if err != nil {
		a.logger.WithError(err).WithField("file", fileName).Debug("No local copy")
		return ""
	}
	return recent.Path
}

// FailureMessage is the user-facing text for a load failure
func FailureMessage(err error) string {
	switch {
	case errors.Is(err, broadcast.ErrConfigTimeout):
		return "Could not load the presentation settings. Check that the presenter view is open for the same file."
	case errors.Is(err, broadcast.ErrPDFTimeout):
		return "Could not load the PDF. Check that the presenter view is open for the same file."
	case errors.Is(err, broadcast.ErrPermission):
		return "Access to the PDF was denied. Grant access to the file and try again."
	default:
		return fmt.Sprintf("An error occurred: %v", err)
	}
}
