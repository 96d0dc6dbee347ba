package models

import "encoding/json"

// BeamerNotePosition is where LaTeX beamer placed the notes on each page
type BeamerNotePosition string

const (
	BeamerNoteNone   BeamerNotePosition = "none"
	BeamerNoteLeft   BeamerNotePosition = "left"
	BeamerNoteRight  BeamerNotePosition = "right"
	BeamerNoteTop    BeamerNotePosition = "top"
	BeamerNoteBottom BeamerNotePosition = "bottom"
)

// Valid reports whether p is one of the known positions
func (p BeamerNotePosition) Valid() bool {
	switch p {
	case BeamerNoteNone, BeamerNoteLeft, BeamerNoteRight, BeamerNoteTop, BeamerNoteBottom:
		return true
	}
	return false
}

// PageOverride represents one entry of the pages array in a .pdfpc file.
// Only the fields that are set override the defaults computed from the PDF.
type PageOverride struct {
	Idx           uint32  `json:"idx"`
	Label         *string `json:"label,omitempty"`
	Overlay       *uint32 `json:"overlay,omitempty"`
	ForcedOverlay *bool   `json:"forcedOverlay,omitempty"`
	Hidden        *bool   `json:"hidden,omitempty"`
	Note          *string `json:"note,omitempty"`
}

// PdfpcConfig represents the root structure of a .pdfpc file (format 2)
type PdfpcConfig struct {
	PdfpcFormat        int                 `json:"pdfpcFormat"`
	Duration           *uint32             `json:"duration,omitempty"`
	StartTime          *string             `json:"startTime,omitempty"`
	EndTime            *string             `json:"endTime,omitempty"`
	EndSlide           *uint32             `json:"endSlide,omitempty"`
	SavedSlide         *uint32             `json:"savedSlide,omitempty"`
	LastMinutes        *uint32             `json:"lastMinutes,omitempty"`
	DisableMarkdown    *bool               `json:"disableMarkdown,omitempty"`
	NoteFontSize       *uint32             `json:"noteFontSize,omitempty"`
	DefaultTransition  *string             `json:"defaultTransition,omitempty"`
	BeamerNotePosition *BeamerNotePosition `json:"beamerNotePosition,omitempty"`
	Pages              []PageOverride      `json:"pages,omitempty"`

	// Extra keeps top-level fields this package does not know about
	Extra map[string]json.RawMessage `json:"-"`
}

var pdfpcConfigKeys = []string{
	"pdfpcFormat", "duration", "startTime", "endTime", "endSlide", "savedSlide",
	"lastMinutes", "disableMarkdown", "noteFontSize", "defaultTransition",
	"beamerNotePosition", "pages",
}

// MarshalJSON writes the known fields followed by any extra fields
func (c PdfpcConfig) MarshalJSON() ([]byte, error) {
	type plain PdfpcConfig
	return marshalWithExtra(plain(c), c.Extra)
}

// UnmarshalJSON reads the known fields and keeps the rest in Extra
func (c *PdfpcConfig) UnmarshalJSON(data []byte) error {
	type plain PdfpcConfig
	var p plain
	extra, err := unmarshalWithExtra(data, &p, pdfpcConfigKeys)
	if err != nil {
		return err
	}
	*c = PdfpcConfig(p)
	c.Extra = extra
	return nil
}

// ResolvedPage is the presentation metadata of one physical PDF page
type ResolvedPage struct {
	// PageNumber is the 1-based physical page number
	PageNumber int    `json:"pageNumber"`
	Label      string `json:"label"`
	// Overlay is the 0-based position inside the slide
	Overlay int    `json:"overlay"`
	Note    string `json:"note"`
}

// ResolvedConfig is the canonical per-slide model derived from the PDF labels and
// an optional .pdfpc file. Pages holds one group per slide.
type ResolvedConfig struct {
	PdfpcFormat        int                `json:"pdfpcFormat"`
	Duration           *uint32            `json:"duration,omitempty"`
	StartTime          *string            `json:"startTime,omitempty"`
	EndTime            *string            `json:"endTime,omitempty"`
	EndSlide           *uint32            `json:"endSlide,omitempty"`
	SavedSlide         *uint32            `json:"savedSlide,omitempty"`
	LastMinutes        *uint32            `json:"lastMinutes,omitempty"`
	DisableMarkdown    *bool              `json:"disableMarkdown,omitempty"`
	DefaultTransition  string             `json:"defaultTransition"`
	BeamerNotePosition BeamerNotePosition `json:"beamerNotePosition"`
	NoteFontSize       uint32             `json:"noteFontSize"`
	Pages              [][]ResolvedPage   `json:"pages"`
	TotalOverlays      int                `json:"totalOverlays"`

	Extra map[string]json.RawMessage `json:"-"`
}

var resolvedConfigKeys = append(append([]string{}, pdfpcConfigKeys...), "totalOverlays")

// MarshalJSON writes the known fields followed by any extra fields
func (c ResolvedConfig) MarshalJSON() ([]byte, error) {
	type plain ResolvedConfig
	return marshalWithExtra(plain(c), c.Extra)
}

// UnmarshalJSON reads the known fields and keeps the rest in Extra
func (c *ResolvedConfig) UnmarshalJSON(data []byte) error {
	type plain ResolvedConfig
	var p plain
	extra, err := unmarshalWithExtra(data, &p, resolvedConfigKeys)
	if err != nil {
		return err
	}
	*c = ResolvedConfig(p)
	c.Extra = extra
	return nil
}

// MarkdownEnabled reports whether notes should be rendered as markdown
func (c *ResolvedConfig) MarkdownEnabled() bool {
	return c.DisableMarkdown == nil || !*c.DisableMarkdown
}

func marshalWithExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for key, raw := range extra {
		// Known fields always win over passthrough values
		if _, exists := fields[key]; !exists {
			fields[key] = raw
		}
	}
	return json.Marshal(fields)
}

func unmarshalWithExtra(data []byte, v any, known []string) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for _, key := range known {
		delete(fields, key)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return fields, nil
}
