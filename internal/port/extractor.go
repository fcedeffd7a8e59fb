package port

import (
	"context"

	"reqsmith/internal/domain"
)

// Extractor turns raw document bytes into requirement fragments for a single
// format. Implementations must return domain.ErrEmptyDocument for zero-length
// payloads and domain.ErrCorruptedDocument when the signature matched but the
// internal structure cannot be parsed. A valid document with no
// requirement-like content returns an empty slice and nil error.
type Extractor interface {
	Format() domain.FormatTag
	Extract(ctx context.Context, data []byte) ([]domain.RawFragment, error)
}

// TextRecognizer abstracts the external text-recognition capability used by
// the image extractor. Recognition failure is an expected real-world outcome
// (blank images, unreadable handwriting) and degrades to empty output.
type TextRecognizer interface {
	Recognize(ctx context.Context, image []byte) (RecognizedText, error)
}

// RecognizedText is the output of one recognition call.
type RecognizedText struct {
	Lines      []string
	Confidence float64
}
