package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"pdf-presenter/internal/broadcast"
	"pdf-presenter/internal/pdf"
	"pdf-presenter/internal/pdfpc"
	"pdf-presenter/internal/presenter"
)

func audienceCommand() *cli.Command {
	return &cli.Command{
		Name:  "audience",
		Usage: "load a document from a running presenter and follow its page",
		Flags: []cli.Flag{
			serverFlag(),
			maxMessageFlag(),
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "document file name the presenter opened", Required: true},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write the received PDF here"},
		},
		Action: runAudience,
	}
}

func runAudience(c *cli.Context) error {
	logger := newLogger(c)
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	name := c.String("name")
	session := broadcast.NewSession(
		relayOpener(c, logger),
		broadcast.WithLogger(logger),
	)
	defer session.Close()

	var local presenter.LocalFiles
	store, closeStore, err := openStore(c, logger)
	if err != nil {
		logger.WithError(err).Warn("Recent files unavailable")
	} else {
		defer closeStore()
		local = store
	}

	audience := presenter.NewAudience(session, local, logger)
	doc, err := audience.Load(ctx, name)
	if err != nil {
		return cli.Exit(color.RedString(presenter.FailureMessage(err)), 1)
	}

	origin := "presenter"
	if doc.Local {
		origin = "local copy"
	}
	info, err := pdf.NewPDFCPU(logger).InspectBytes(ctx, doc.PDF)
	if err != nil {
		return fmt.Errorf("received PDF is unreadable: %w", err)
	}
	out := c.App.Writer
	fmt.Fprintf(out, "%s: %d slides, %d of %d pages shown, PDF from %s\n",
		name, len(doc.Config.Pages), doc.Config.TotalOverlays, info.PageCount, origin)

	if path := c.String("out"); path != "" {
		if err := os.WriteFile(path, doc.PDF, 0644); err != nil {
			return fmt.Errorf("failed to write PDF: %w", err)
		}
	}

	stopFollow, err := audience.Follow(ctx, name, func(page int) {
		label := ""
		if p, ok := pdfpc.FindPage(doc.Config, page); ok {
			label = p.Label
		}
		fmt.Fprintf(out, "page %d (%s)\n", page, label)
	})
	if err != nil {
		return err
	}
	defer stopFollow()

	<-ctx.Done()
	return nil
}
