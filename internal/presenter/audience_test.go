package presenter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-presenter/internal/broadcast"
	"pdf-presenter/internal/models"
	"pdf-presenter/internal/pdfpc"
	"pdf-presenter/internal/services"
)

type fakeRemote struct {
	cfg       *models.ResolvedConfig
	cfgErr    error
	pdf       []byte
	pdfErr    error
	pdfCalls  int
	pageFuncs []func(int)
}

func (f *fakeRemote) FetchConfig(ctx context.Context, fileName string) (*models.ResolvedConfig, error) {
	return f.cfg, f.cfgErr
}

func (f *fakeRemote) FetchPDF(ctx context.Context, fileName string) ([]byte, error) {
	f.pdfCalls++
	return f.pdf, f.pdfErr
}

func (f *fakeRemote) OnPageNumber(ctx context.Context, fileName string, fn func(int)) (func(), error) {
	f.pageFuncs = append(f.pageFuncs, fn)
	return func() {}, nil
}

type fakeLocal map[string]string

func (f fakeLocal) FindByName(ctx context.Context, name string) (*models.RecentFile, error) {
	path, ok := f[name]
	if !ok {
		return nil, services.ErrRecentNotFound
	}
	return &models.RecentFile{Name: name, Path: path, LastOpened: time.Now()}, nil
}

func TestAudience_LoadsEverythingFromPresenter(t *testing.T) {
	remote := &fakeRemote{cfg: pdfpc.Resolve(nil, []string{"1"}), pdf: []byte("%PDF-remote")}
	a := NewAudience(remote, fakeLocal{}, quietLogger())

	doc, err := a.Load(context.Background(), "talk.pdf")
	require.NoError(t, err)
	assert.False(t, doc.Local)
	assert.Equal(t, []byte("%PDF-remote"), doc.PDF)
	assert.Same(t, remote.cfg, doc.Config)
	assert.Equal(t, 1, remote.pdfCalls)
}

func TestAudience_PrefersLocalCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "talk.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-local"), 0644))

	remote := &fakeRemote{cfg: pdfpc.Resolve(nil, []string{"1"})}
	a := NewAudience(remote, fakeLocal{"talk.pdf": path}, quietLogger())

	doc, err := a.Load(context.Background(), "talk.pdf")
	require.NoError(t, err)
	assert.True(t, doc.Local)
	assert.Equal(t, []byte("%PDF-local"), doc.PDF)
	assert.Zero(t, remote.pdfCalls)
}

func TestAudience_NilLocalFiles(t *testing.T) {
	remote := &fakeRemote{cfg: pdfpc.Resolve(nil, []string{"1"}), pdf: []byte("%PDF")}
	a := NewAudience(remote, nil, quietLogger())

	doc, err := a.Load(context.Background(), "talk.pdf")
	require.NoError(t, err)
	assert.False(t, doc.Local)
}

func TestAudience_ConfigTimeoutStopsLoad(t *testing.T) {
	timeout := &broadcast.TimeoutError{Kind: broadcast.RequestConfig, After: broadcast.DefaultTimeout}
	remote := &fakeRemote{cfgErr: timeout}
	a := NewAudience(remote, nil, quietLogger())

	_, err := a.Load(context.Background(), "talk.pdf")
	assert.ErrorIs(t, err, broadcast.ErrConfigTimeout)
	assert.Zero(t, remote.pdfCalls)
}

func TestAudience_Follow(t *testing.T) {
	remote := &fakeRemote{}
	a := NewAudience(remote, nil, quietLogger())
	assert.Equal(t, 1, a.Page())

	var seen []int
	stop, err := a.Follow(context.Background(), "talk.pdf", func(p int) { seen = append(seen, p) })
	require.NoError(t, err)
	defer stop()

	require.Len(t, remote.pageFuncs, 1)
	remote.pageFuncs[0](4)
	remote.pageFuncs[0](2)
	assert.Equal(t, 2, a.Page(), "latest push wins")
	assert.Equal(t, []int{4, 2}, seen)
}

func TestFailureMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"config timeout", &broadcast.TimeoutError{Kind: broadcast.RequestConfig}, "presentation settings"},
		{"pdf timeout", &broadcast.TimeoutError{Kind: broadcast.RequestPDF}, "Could not load the PDF"},
		{"permission", &broadcast.PermissionError{Path: "/x.pdf", Err: os.ErrPermission}, "Access to the PDF was denied"},
		{"other", errors.New("boom"), "An error occurred: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, FailureMessage(tt.err), tt.want)
		})
	}
}
