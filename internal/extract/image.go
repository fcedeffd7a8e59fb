package extract

import (
	"context"
	"log"
	"strings"

	"reqsmith/internal/domain"
	"reqsmith/internal/port"
)

// ImageExtractor runs text recognition over a rasterized image and filters
// the recognized lines. Recognition failure degrades to an empty result:
// blank images and unreadable handwriting are expected real-world inputs,
// not corruption.
type ImageExtractor struct {
	Recognizer port.TextRecognizer
}

func (e *ImageExtractor) Format() domain.FormatTag {
	return domain.FormatImage
}

func (e *ImageExtractor) Extract(ctx context.Context, data []byte) ([]domain.RawFragment, error) {
	if len(data) == 0 {
		return nil, domain.ErrEmptyDocument
	}
	if e.Recognizer == nil {
		log.Printf("extract.ImageExtractor: no recognizer configured, returning empty result")
		return []domain.RawFragment{}, nil
	}

	recognized, err := e.Recognizer.Recognize(ctx, data)
	if err != nil {
		log.Printf("extract.ImageExtractor: recognition failed, degrading to empty result: %v", err)
		return []domain.RawFragment{}, nil
	}

	out := []domain.RawFragment{}
	for _, line := range recognized.Lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" || !isRequirementLike(line) {
			continue
		}
		out = append(out, domain.RawFragment{
			Text:       line,
			Ordinal:    len(out),
			Confidence: recognized.Confidence,
		})
	}
	return out, nil
}
