// Package sniff determines a document's logical format from its content
// signature. Filename hints are advisory: when signature and hint disagree
// the signature wins and the disagreement is logged as informational.
package sniff

import (
	"bytes"
	"encoding/json"
	"log"
	"path/filepath"
	"strings"

	"reqsmith/internal/domain"
)

var (
	pdfMagic  = []byte("%PDF-")
	zipMagic  = []byte("PK\x03\x04")
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
)

// Sniff returns the format tag for data. The hint is a filename or extension
// and is consulted only when the content signature is inconclusive.
func Sniff(data []byte, hint string) domain.FormatTag {
	detected := fromSignature(data)
	hinted := fromHint(hint)

	if detected != domain.FormatUnknown {
		if hinted != domain.FormatUnknown && hinted != detected {
			log.Printf("sniff.Sniff: hint %q suggests %s but signature says %s, using signature", hint, hinted, detected)
		}
		return detected
	}
	if hinted != domain.FormatUnknown {
		log.Printf("sniff.Sniff: no signature match, falling back to hint %q (%s)", hint, hinted)
		return hinted
	}
	return domain.FormatUnknown
}

func fromSignature(data []byte) domain.FormatTag {
	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return domain.FormatPDF
	case bytes.HasPrefix(data, pngMagic), bytes.HasPrefix(data, jpegMagic):
		return domain.FormatImage
	case bytes.HasPrefix(data, zipMagic):
		return sniffZip(data)
	case bytes.HasPrefix(data, []byte("From ")):
		// mbox separator line
		return domain.FormatEmail
	case looksLikeGraph(data):
		return domain.FormatGraph
	case looksLikeEmail(data):
		return domain.FormatEmail
	}
	return domain.FormatUnknown
}

// sniffZip distinguishes OOXML containers by their well-known entry names.
// Both DOCX and XLSX share the zip magic, so the entry table is the signature.
func sniffZip(data []byte) domain.FormatTag {
	switch {
	case bytes.Contains(data, []byte("word/document.xml")):
		return domain.FormatWord
	case bytes.Contains(data, []byte("xl/workbook.xml")):
		return domain.FormatSpreadsheet
	}
	return domain.FormatUnknown
}

func looksLikeGraph(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("{")) {
		return false
	}
	var probe struct {
		Nodes json.RawMessage `json:"nodes"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		// Leading brace with "nodes" key still counts: the extractor decides
		// whether the body is corrupted.
		return bytes.Contains(trimmed, []byte(`"nodes"`))
	}
	return probe.Nodes != nil
}

// looksLikeEmail checks for RFC 5322 header lines near the start of the
// payload. Two or more recognized headers in the first block is a match.
func looksLikeEmail(data []byte) bool {
	head := data
	if len(head) > 2048 {
		head = head[:2048]
	}
	headers := 0
	for _, line := range strings.Split(string(head), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			break
		}
		lower := strings.ToLower(line)
		for _, h := range []string{"from:", "to:", "subject:", "date:", "received:", "message-id:", "mime-version:"} {
			if strings.HasPrefix(lower, h) {
				headers++
				break
			}
		}
	}
	return headers >= 2
}

func fromHint(hint string) domain.FormatTag {
	if hint == "" {
		return domain.FormatUnknown
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(hint), "."))
	if ext == "" {
		ext = strings.ToLower(hint)
	}
	if tag, ok := domain.HintExtensions[ext]; ok {
		return tag
	}
	return domain.FormatUnknown
}
