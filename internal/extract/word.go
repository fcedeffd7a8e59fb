package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"reqsmith/internal/domain"
)

// WordExtractor extracts requirement fragments from DOCX paragraphs. Each
// fragment carries the index of the paragraph it came from.
type WordExtractor struct{}

func (e *WordExtractor) Format() domain.FormatTag {
	return domain.FormatWord
}

func (e *WordExtractor) Extract(_ context.Context, data []byte) ([]domain.RawFragment, error) {
	if len(data) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: opening docx container: %v", domain.ErrCorruptedDocument, err)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("%w: opening word/document.xml: %v", domain.ErrCorruptedDocument, err)
			}
			docXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return nil, fmt.Errorf("%w: reading word/document.xml: %v", domain.ErrCorruptedDocument, err)
			}
			break
		}
	}
	if docXML == nil {
		return nil, fmt.Errorf("%w: docx has no word/document.xml", domain.ErrCorruptedDocument)
	}

	paragraphs, err := docxParagraphs(docXML)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptedDocument, err)
	}

	out := []domain.RawFragment{}
	for idx, para := range paragraphs {
		text := strings.Join(strings.Fields(para), " ")
		if text == "" || !isRequirementLike(text) {
			continue
		}
		out = append(out, domain.RawFragment{
			Text:     text,
			Ordinal:  len(out),
			Metadata: map[string]string{"paragraph": strconv.Itoa(idx)},
		})
	}
	return out, nil
}

// docxParagraphs walks the WordprocessingML token stream collecting the text
// runs (<w:t>) of each paragraph (<w:p>).
func docxParagraphs(docXML []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(docXML))
	var paragraphs []string
	var current strings.Builder
	inParagraph := false
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing document xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
			case "t":
				inText = inParagraph
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if inParagraph {
					paragraphs = append(paragraphs, current.String())
				}
				inParagraph = false
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}
