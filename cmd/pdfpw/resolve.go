package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"pdf-presenter/internal/models"
	"pdf-presenter/internal/pdf"
	"pdf-presenter/internal/pdfpc"
)

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "print the resolved slide model of a PDF and optional .pdfpc file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "pdf", Usage: "PDF file", Required: true},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: ".pdfpc file"},
		},
		Action: func(c *cli.Context) error {
			logger := newLogger(c)
			_, resolved, err := loadPresentation(c.Context, pdf.NewPDFCPU(logger), c.String("pdf"), c.String("config"), nil)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(resolved)
		},
	}
}

// loadPresentation inspects the PDF and resolves it against the config at
// configPath. With a non-nil logger an invalid config is reported and the
// document is resolved without one; otherwise it is an error.
func loadPresentation(ctx context.Context, engine *pdf.PDFCPU, pdfPath, configPath string, lenient *logrus.Logger) (*pdf.Document, *models.ResolvedConfig, error) {
	doc, err := engine.InspectFile(ctx, pdfPath)
	if err != nil {
		return nil, nil, err
	}

	var raw *models.PdfpcConfig
	if configPath != "" {
		raw, err = pdfpc.LoadFile(configPath)
		switch {
		case errors.Is(err, pdfpc.ErrInvalidConfig) && lenient != nil:
			lenient.WithError(err).WithField("path", configPath).Warn("Continuing without config")
			raw = nil
		case err != nil:
			return nil, nil, fmt.Errorf("%s: %w", configPath, err)
		}
	}
	return doc, pdfpc.Resolve(raw, doc.Labels), nil
}
