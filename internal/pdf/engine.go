// Package pdf reads the document facts the presenter needs from a PDF: the
// page count and the page labels that decide how pages group into slides.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/sirupsen/logrus"
)

const maxLabelTreeDepth = 32

// Document is what the engine reports about one PDF
type Document struct {
	PageCount int
	// Labels holds one label per page, decimal page numbers when the PDF
	// defines none
	Labels []string
}

// Engine inspects PDF documents
type Engine interface {
	Inspect(ctx context.Context, r io.ReadSeeker) (*Document, error)
}

// PDFCPU is the Engine backed by pdfcpu
type PDFCPU struct {
	conf   *model.Configuration
	logger *logrus.Logger
}

// NewPDFCPU creates an engine that validates leniently, so slightly broken
// exports from presentation tools still open.
func NewPDFCPU(logger *logrus.Logger) *PDFCPU {
	api.DisableConfigDir()
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFCPU{conf: conf, logger: logger}
}

// Inspect reads the page count and page labels
func (e *PDFCPU) Inspect(ctx context.Context, r io.ReadSeeker) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdfCtx, err := api.ReadContext(r, e.conf)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if err := pdfCtx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("count pages: %w", err)
	}

	ranges, err := pageLabelRanges(pdfCtx)
	if err != nil {
		e.logger.WithError(err).Warn("Ignoring malformed page labels")
		ranges = nil
	}

	e.logger.WithFields(logrus.Fields{
		"pages":       pdfCtx.PageCount,
		"labelRanges": len(ranges),
	}).Debug("PDF inspected")

	return &Document{
		PageCount: pdfCtx.PageCount,
		Labels:    ExpandLabels(ranges, pdfCtx.PageCount),
	}, nil
}

// InspectFile inspects the PDF at path
func (e *PDFCPU) InspectFile(ctx context.Context, path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	return e.Inspect(ctx, f)
}

// InspectBytes inspects a PDF held in memory
func (e *PDFCPU) InspectBytes(ctx context.Context, data []byte) (*Document, error) {
	return e.Inspect(ctx, bytes.NewReader(data))
}

func pageLabelRanges(pdfCtx *model.Context) ([]LabelRange, error) {
	catalog, err := pdfCtx.Catalog()
	if err != nil {
		return nil, err
	}
	obj, found := catalog.Find("PageLabels")
	if !found {
		return nil, nil
	}
	root, err := pdfCtx.DereferenceDict(obj)
	if err != nil || root == nil {
		return nil, err
	}

	var ranges []LabelRange
	if err := walkNumberTree(pdfCtx, root, 0, &ranges); err != nil {
		return nil, err
	}
	return ranges, nil
}

// walkNumberTree collects the Nums of node and its Kids
func walkNumberTree(pdfCtx *model.Context, node types.Dict, depth int, out *[]LabelRange) error {
	if depth > maxLabelTreeDepth {
		return fmt.Errorf("page label tree deeper than %d", maxLabelTreeDepth)
	}

	if obj, found := node.Find("Nums"); found {
		nums, err := pdfCtx.DereferenceArray(obj)
		if err != nil {
			return err
		}
		for i := 0; i+1 < len(nums); i += 2 {
			key, err := pdfCtx.Dereference(nums[i])
			if err != nil {
				return err
			}
			start, ok := key.(types.Integer)
			if !ok {
				continue
			}
			entry, err := pdfCtx.DereferenceDict(nums[i+1])
			if err != nil {
				return err
			}
			if entry == nil {
				continue
			}
			*out = append(*out, labelRange(pdfCtx, start.Value(), entry))
		}
	}

	if obj, found := node.Find("Kids"); found {
		kids, err := pdfCtx.DereferenceArray(obj)
		if err != nil {
			return err
		}
		for _, kid := range kids {
			child, err := pdfCtx.DereferenceDict(kid)
			if err != nil {
				return err
			}
			if child == nil {
				continue
			}
			if err := walkNumberTree(pdfCtx, child, depth+1, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func labelRange(pdfCtx *model.Context, start int, entry types.Dict) LabelRange {
	r := LabelRange{StartIndex: start, First: 1}

	if v := lookup(pdfCtx, entry, "S"); v != nil {
		if name, ok := v.(types.Name); ok {
			r.Style = name.Value()
		}
	}
	if v := lookup(pdfCtx, entry, "P"); v != nil {
		if prefix, err := types.StringOrHexLiteral(v); err == nil && prefix != nil {
			r.Prefix = *prefix
		}
	}
	if v := lookup(pdfCtx, entry, "St"); v != nil {
		if st, ok := v.(types.Integer); ok && st.Value() > 0 {
			r.First = st.Value()
		}
	}
	return r
}

func lookup(pdfCtx *model.Context, d types.Dict, key string) types.Object {
	obj, found := d.Find(key)
	if !found {
		return nil
	}
	v, err := pdfCtx.Dereference(obj)
	if err != nil {
		return nil
	}
	return v
}
