package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-presenter/internal/models"
	"pdf-presenter/internal/pdfpc"
	"pdf-presenter/internal/presenter"
)

func newShell(t *testing.T) (*presenterShell, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	note := "**wrap up**"
	cfg := pdfpc.Resolve(&models.PdfpcConfig{
		PdfpcFormat: 2,
		Pages:       []models.PageOverride{{Idx: 3, Note: &note}},
	}, []string{"1", "1", "2", "3"})

	var out bytes.Buffer
	return &presenterShell{
		p:   presenter.New(cfg, nil, logger),
		out: &out,
		now: time.Now,
	}, &out
}

func TestPresenterShell_Navigation(t *testing.T) {
	s, out := newShell(t)

	require.NoError(t, s.run("next"))
	assert.Contains(t, out.String(), "page 2  slide 1/3")

	require.NoError(t, s.run("next-slide"))
	assert.Equal(t, 3, s.p.Snapshot().PageNumber)

	require.NoError(t, s.run("key ' '"))
	assert.Equal(t, 4, s.p.Snapshot().PageNumber)

	require.NoError(t, s.run("key PageUp"))
	assert.Equal(t, 3, s.p.Snapshot().PageNumber)

	require.NoError(t, s.run("goto 1"))
	assert.Equal(t, 1, s.p.Snapshot().PageNumber)
}

func TestPresenterShell_Wheel(t *testing.T) {
	s, _ := newShell(t)

	require.NoError(t, s.run("wheel 0 25"))
	assert.Equal(t, 1, s.p.Snapshot().PageNumber)
	require.NoError(t, s.run("wheel 0 25"))
	assert.Equal(t, 2, s.p.Snapshot().PageNumber)
}

func TestPresenterShell_FreezeAndNote(t *testing.T) {
	s, out := newShell(t)

	require.NoError(t, s.run("freeze"))
	require.NoError(t, s.run("goto 4"))
	assert.Contains(t, out.String(), "FROZEN (audience on page 1)")

	out.Reset()
	require.NoError(t, s.run("note"))
	assert.Equal(t, "**wrap up**\n", out.String())

	out.Reset()
	require.NoError(t, s.run("note html"))
	assert.Contains(t, out.String(), "<strong>wrap up</strong>")
}

func TestPresenterShell_Errors(t *testing.T) {
	s, _ := newShell(t)

	tests := []struct {
		line string
		want string
	}{
		{"goto", "usage: goto N"},
		{"goto x", "invalid page"},
		{"goto 9", "hidden or out of range"},
		{"key F5", "not bound"},
		{"wheel a b", "must be numbers"},
		{"dance", "unknown command"},
		{`next "unterminated`, "parse command"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			err := s.run(tt.line)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	assert.ErrorIs(t, s.run("quit"), errQuit)
	assert.NoError(t, s.run("   "))
}

func TestPresenterShell_LoopStopsOnQuit(t *testing.T) {
	s, out := newShell(t)

	err := s.loop(context.Background(), strings.NewReader("next\nbogus\nquit\nnext\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, s.p.Snapshot().PageNumber, "commands after quit are ignored")
	assert.Contains(t, out.String(), `unknown command "bogus"`)
}
