package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/shlex"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"pdf-presenter/internal/broadcast"
	"pdf-presenter/internal/models"
	"pdf-presenter/internal/pdf"
	"pdf-presenter/internal/pdfpc"
	"pdf-presenter/internal/presenter"
	"pdf-presenter/internal/timer"
)

func presentCommand() *cli.Command {
	return &cli.Command{
		Name:  "present",
		Usage: "run the presenter view and serve the document to audience views",
		Flags: []cli.Flag{
			serverFlag(),
			maxMessageFlag(),
			&cli.StringFlag{Name: "pdf", Usage: "PDF file", Required: true},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: ".pdfpc file, reloaded on change"},
		},
		Action: runPresent,
	}
}

func runPresent(c *cli.Context) error {
	logger := newLogger(c)
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pdfPath := c.String("pdf")
	configPath := c.String("config")

	doc, resolved, err := loadPresentation(ctx, pdf.NewPDFCPU(logger), pdfPath, configPath, logger)
	if err != nil {
		return err
	}

	source := broadcast.FileSource{Path: pdfPath}
	ch, err := relayOpener(c, logger).Open(ctx, broadcast.ChannelName(source.Name()))
	if err != nil {
		return fmt.Errorf("failed to join channel: %w", err)
	}
	defer ch.Close()

	responder := broadcast.NewResponder(ch, resolved, source, logger)
	defer responder.Close()

	p := presenter.New(resolved, responder, logger)
	recordRecent(ctx, c, logger, pdfPath, configPath)

	if configPath != "" {
		go func() {
			err := pdfpc.Watch(ctx, configPath, logger, func(raw *models.PdfpcConfig) {
				next := pdfpc.Resolve(raw, doc.Labels)
				responder.SetConfig(next)
				p.Reload(next)
			})
			if err != nil {
				logger.WithError(err).Warn("Config watch stopped")
			}
		}()
	}

	shell := &presenterShell{p: p, out: c.App.Writer, now: time.Now}
	shell.printStatus()
	err = shell.loop(ctx, os.Stdin)

	// Stop the watcher before writing the file it watches
	stop()
	if configPath != "" {
		if saveErr := pdfpc.SaveSlide(configPath, p.SavedSlide()); saveErr != nil {
			logger.WithError(saveErr).Warn("Failed to save slide")
		}
	}
	return err
}

func recordRecent(ctx context.Context, c *cli.Context, logger *logrus.Logger, pdfPath, configPath string) {
	store, closeStore, err := openStore(c, logger)
	if err != nil {
		logger.WithError(err).Warn("Recent files unavailable")
		return
	}
	defer closeStore()

	entry := models.RecentFile{Name: filepath.Base(pdfPath)}
	if abs, err := filepath.Abs(pdfPath); err == nil {
		entry.Path = abs
	}
	if configPath != "" {
		entry.ConfigName = filepath.Base(configPath)
		if abs, err := filepath.Abs(configPath); err == nil {
			entry.ConfigPath = abs
		}
	}
	if _, _, err := store.Record(ctx, entry); err != nil {
		logger.WithError(err).Warn("Failed to record recent file")
	}
}

var errQuit = errors.New("quit")

const presenterHelp = `commands:
  next | n, prev | p        step one overlay
  next-slide, prev-slide    jump a whole slide
  goto N                    show physical page N
  key NAME                  ArrowRight, ArrowLeft, PageUp, PageDown or " "
  wheel DX DY               scroll wheel deltas
  toggle, reset             pause/resume or reset the timer
  freeze, unfreeze          hold or release the audience view
  note [html]               speaker note of the current page
  status, help, quit`

// presenterShell drives a Presenter from text commands
type presenterShell struct {
	p     *presenter.Presenter
	wheel presenter.WheelAccumulator
	out   io.Writer
	now   func() time.Time
}

func (s *presenterShell) loop(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			err := s.run(line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				fmt.Fprintln(s.out, color.RedString(err.Error()))
			}
		}
	}
}

// run executes one command line
func (s *presenterShell) run(line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parse command: %w", err)
	}
	if len(args) == 0 {
		return nil
	}

	switch args[0] {
	case "next", "n":
		s.p.Next()
	case "prev", "p":
		s.p.Prev()
	case "next-slide":
		s.p.NextSlide()
	case "prev-slide":
		s.p.PrevSlide()
	case "goto":
		if len(args) != 2 {
			return errors.New("usage: goto N")
		}
		page, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid page %q", args[1])
		}
		if !s.p.GoTo(page) {
			return fmt.Errorf("page %d is hidden or out of range", page)
		}
	case "key":
		if len(args) != 2 {
			return errors.New("usage: key NAME")
		}
		if !s.apply(presenter.KeyAction(args[1])) {
			return fmt.Errorf("key %q is not bound", args[1])
		}
	case "wheel":
		if len(args) != 3 {
			return errors.New("usage: wheel DX DY")
		}
		dx, errX := strconv.ParseFloat(args[1], 64)
		dy, errY := strconv.ParseFloat(args[2], 64)
		if errX != nil || errY != nil {
			return errors.New("wheel deltas must be numbers")
		}
		if !s.apply(s.wheel.Add(s.now(), dx, dy)) {
			return nil
		}
	case "toggle":
		s.p.ToggleTimer()
	case "reset":
		s.p.ResetTimer()
	case "freeze":
		s.p.SetFrozen(true)
	case "unfreeze":
		s.p.SetFrozen(false)
	case "note":
		return s.printNote(len(args) > 1 && args[1] == "html")
	case "status":
	case "help":
		fmt.Fprintln(s.out, presenterHelp)
		return nil
	case "quit", "q", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q, try help", args[0])
	}

	s.printStatus()
	return nil
}

func (s *presenterShell) apply(action presenter.Action) bool {
	switch action {
	case presenter.ActionNext:
		s.p.Next()
	case presenter.ActionPrev:
		s.p.Prev()
	default:
		return false
	}
	return true
}

func (s *presenterShell) printNote(asHTML bool) error {
	snap := s.p.Snapshot()
	if !asHTML {
		fmt.Fprintln(s.out, snap.Note)
		return nil
	}
	rendered, err := pdfpc.RenderNote(s.p.Config(), snap.PageNumber)
	if err != nil {
		return err
	}
	fmt.Fprint(s.out, rendered)
	return nil
}

var paceColors = map[timer.Color]*color.Color{
	timer.ColorNormal:   color.New(color.FgGreen),
	timer.ColorPretalk:  color.New(color.FgCyan),
	timer.ColorTooFast:  color.New(color.FgBlue),
	timer.ColorTooSlow:  color.New(color.FgYellow),
	timer.ColorOvertime: color.New(color.FgRed, color.Bold),
}

func (s *presenterShell) printStatus() {
	snap := s.p.Snapshot()

	pace, ok := paceColors[snap.Timer.Color]
	if !ok {
		pace = paceColors[timer.ColorNormal]
	}
	line := fmt.Sprintf("page %d  slide %d/%d  label %q  %s %s  %s",
		snap.PageNumber, snap.Slide, snap.TotalSlides, snap.Label,
		pace.Sprint(snap.Timer.DisplayText), snap.Timer.Phase, snap.Timer.ClockText)
	if snap.NextSlidePage > 0 {
		line += fmt.Sprintf("  next %d", snap.NextSlidePage)
	}
	if snap.Frozen {
		line += color.MagentaString("  FROZEN (audience on page %d)", snap.AudiencePage)
	}
	fmt.Fprintln(s.out, line)
}
