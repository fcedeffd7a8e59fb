package extract

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/ledongthuc/pdf"

	"reqsmith/internal/domain"
)

// PDFExtractor extracts requirement fragments from PDF page text.
type PDFExtractor struct{}

func (e *PDFExtractor) Format() domain.FormatTag {
	return domain.FormatPDF
}

func (e *PDFExtractor) Extract(_ context.Context, data []byte) (frags []domain.RawFragment, err error) {
	if len(data) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	// The pdf library panics on some malformed inputs; a panic is a
	// corrupted document, not a crash.
	defer func() {
		if r := recover(); r != nil {
			frags = nil
			err = fmt.Errorf("%w: pdf reader panic: %v", domain.ErrCorruptedDocument, r)
		}
	}()

	reader, rerr := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if rerr != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptedDocument, rerr)
	}

	out := []domain.RawFragment{}
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		// Content().Text yields one item per glyph run; GetPlainText
		// interprets the content stream and keeps words intact.
		text, terr := page.GetPlainText(nil)
		if terr != nil {
			return nil, fmt.Errorf("%w: reading page %d text: %v", domain.ErrCorruptedDocument, i, terr)
		}
		for _, para := range splitParagraphs(text) {
			if !isRequirementLike(para) {
				continue
			}
			out = append(out, domain.RawFragment{
				Text:     para,
				Ordinal:  len(out),
				Metadata: map[string]string{"page": strconv.Itoa(i)},
			})
		}
	}
	return out, nil
}
