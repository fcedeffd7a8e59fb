package sniff_test

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reqsmith/internal/domain"
	"reqsmith/internal/sniff"
)

func zipWithEntry(t *testing.T, name string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create(name)
	require.NoError(t, err)
	_, err = f.Write([]byte("<x/>"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestSniff_Signatures(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want domain.FormatTag
	}{
		{"pdf", []byte("%PDF-1.7 rest"), domain.FormatPDF},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 1, 2}, domain.FormatImage},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, domain.FormatImage},
		{"mbox", []byte("From alice@example.com Thu Jan  1 00:00:00 2026\nSubject: x\n"), domain.FormatEmail},
		{"graph", []byte(`{"nodes": [{"id": "n1"}], "edges": []}`), domain.FormatGraph},
		{"eml", []byte("From: a@example.com\r\nTo: b@example.com\r\nSubject: req\r\n\r\nbody"), domain.FormatEmail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sniff.Sniff(tc.data, ""))
		})
	}
}

func TestSniff_ZipContainers(t *testing.T) {
	assert.Equal(t, domain.FormatWord, sniff.Sniff(zipWithEntry(t, "word/document.xml"), ""))
	assert.Equal(t, domain.FormatSpreadsheet, sniff.Sniff(zipWithEntry(t, "xl/workbook.xml"), ""))
	assert.Equal(t, domain.FormatUnknown, sniff.Sniff(zipWithEntry(t, "other/entry.txt"), ""))
}

func TestSniff_SignatureBeatsHint(t *testing.T) {
	// A PDF payload with a spreadsheet hint is still a PDF.
	assert.Equal(t, domain.FormatPDF, sniff.Sniff([]byte("%PDF-1.4"), "report.xlsx"))
}

func TestSniff_HintFallback(t *testing.T) {
	plain := []byte("just some text without any signature")
	assert.Equal(t, domain.FormatPDF, sniff.Sniff(plain, "doc.pdf"))
	assert.Equal(t, domain.FormatWord, sniff.Sniff(plain, "docx"))
	assert.Equal(t, domain.FormatUnknown, sniff.Sniff(plain, ""))
	assert.Equal(t, domain.FormatUnknown, sniff.Sniff(plain, "notes.txt"))
}

func TestSniff_GraphRequiresNodes(t *testing.T) {
	assert.Equal(t, domain.FormatUnknown, sniff.Sniff([]byte(`{"edges": []}`), ""))
}
