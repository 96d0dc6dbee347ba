package pdfpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"pdf-presenter/internal/models"
)

// FormatVersion is the only .pdfpc format accepted
const FormatVersion = 2

// ErrInvalidConfig is matched by every ValidationError
var ErrInvalidConfig = errors.New("file is not a valid config")

var timeHHMM = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ValidationError describes why a .pdfpc file was rejected
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidConfig, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Parse decodes and validates the contents of a .pdfpc file. Unknown fields are
// kept; anything that does not match the format 2 shape is a ValidationError.
func Parse(data []byte) (*models.PdfpcConfig, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ValidationError{Reason: "empty file"}
	}

	var cfg models.PdfpcConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &ValidationError{Field: typeErr.Field, Reason: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value)}
		}
		return nil, &ValidationError{Reason: err.Error()}
	}
	if err := checkPageEntries(data); err != nil {
		return nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// checkPageEntries rejects page overrides that would silently decode to
// slide 0: entries that are not objects and entries without an idx.
func checkPageEntries(data []byte) error {
	var raw struct {
		Pages []json.RawMessage `json:"pages"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return &ValidationError{Field: "pages", Reason: err.Error()}
	}
	for i, entry := range raw.Pages {
		field := fmt.Sprintf("pages[%d].idx", i)
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(entry, &fields); err != nil || fields == nil {
			return &ValidationError{Field: field, Reason: "page entry must be an object"}
		}
		idx, ok := fields["idx"]
		if !ok || bytes.Equal(bytes.TrimSpace(idx), []byte("null")) {
			return &ValidationError{Field: field, Reason: "is required"}
		}
	}
	return nil
}

// Validate checks the constraints that the JSON types alone do not express
func Validate(cfg *models.PdfpcConfig) error {
	if cfg.PdfpcFormat != FormatVersion {
		return &ValidationError{Field: "pdfpcFormat", Reason: fmt.Sprintf("must be %d", FormatVersion)}
	}

	positive := []struct {
		field string
		value *uint32
	}{
		{"duration", cfg.Duration},
		{"lastMinutes", cfg.LastMinutes},
		{"noteFontSize", cfg.NoteFontSize},
	}
	for _, p := range positive {
		if p.value != nil && *p.value < 1 {
			return &ValidationError{Field: p.field, Reason: "must be at least 1"}
		}
	}

	if cfg.StartTime != nil && !timeHHMM.MatchString(*cfg.StartTime) {
		return &ValidationError{Field: "startTime", Reason: "must be HH:MM"}
	}
	if cfg.EndTime != nil && !timeHHMM.MatchString(*cfg.EndTime) {
		return &ValidationError{Field: "endTime", Reason: "must be HH:MM"}
	}
	if cfg.BeamerNotePosition != nil && !cfg.BeamerNotePosition.Valid() {
		return &ValidationError{Field: "beamerNotePosition", Reason: fmt.Sprintf("unknown position %q", *cfg.BeamerNotePosition)}
	}

	return nil
}
