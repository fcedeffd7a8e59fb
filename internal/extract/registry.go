// Package extract holds the per-format requirement extractors. Dispatch is
// by explicit format tag from the sniffer, never by trying parsers in order.
package extract

import (
	"fmt"

	"reqsmith/internal/domain"
	"reqsmith/internal/port"
)

// Registry maps format tags to their extractor implementations.
type Registry struct {
	extractors map[domain.FormatTag]port.Extractor
}

// NewRegistry creates a registry with all built-in extractors. The recognizer
// backs the image variant; a nil recognizer degrades image extraction to
// empty output.
func NewRegistry(recognizer port.TextRecognizer) *Registry {
	r := &Registry{extractors: make(map[domain.FormatTag]port.Extractor)}
	r.Register(&PDFExtractor{})
	r.Register(&WordExtractor{})
	r.Register(&SpreadsheetExtractor{})
	r.Register(&ImageExtractor{Recognizer: recognizer})
	r.Register(&EmailExtractor{})
	r.Register(&GraphExtractor{})
	return r
}

// Register adds an extractor, replacing any existing one for its format.
func (r *Registry) Register(e port.Extractor) {
	r.extractors[e.Format()] = e
}

// Get returns the extractor for a format tag.
func (r *Registry) Get(tag domain.FormatTag) (port.Extractor, error) {
	e, ok := r.extractors[tag]
	if !ok {
		return nil, fmt.Errorf("%w: no extractor registered for %s", domain.ErrUnsupportedFormat, tag)
	}
	return e, nil
}

// Formats returns the registered format tags.
func (r *Registry) Formats() []domain.FormatTag {
	out := make([]domain.FormatTag, 0, len(r.extractors))
	for tag := range r.extractors {
		out = append(out, tag)
	}
	return out
}
