// Package export renders extraction batches as CSV and XLSX for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"reqsmith/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// fixedColumns defines the leading CSV columns; additional field columns are
// appended per batch.
var fixedColumns = []string{
	"ID",
	"Ordinal",
	"Source",
	"Description",
	"Priority",
}

// unresolvedMarker renders the unresolved sentinel in exports, where the
// per-field status envelope is flattened away.
const unresolvedMarker = "(unresolved)"

// Writer wraps csv.Writer for exporting extraction batches as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteBatch writes the header and one row per requirement. Extra field
// columns are the sorted union of additional field keys across the batch, so
// every row has the same width.
func (w *Writer) WriteBatch(batch *domain.ExtractionBatch) error {
	extra := extraFieldKeys(batch)
	if err := w.csv.Write(headerRow(extra)); err != nil {
		return err
	}
	for i := range batch.Requirements {
		if err := w.csv.Write(requirementToRow(&batch.Requirements[i], extra)); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func headerRow(extra []string) []string {
	header := make([]string, 0, len(fixedColumns)+len(extra))
	header = append(header, fixedColumns...)
	for _, key := range extra {
		header = append(header, headerTitle(key))
	}
	return header
}

// extraFieldKeys returns the sorted union of non-canonical field keys across
// the batch.
func extraFieldKeys(batch *domain.ExtractionBatch) []string {
	seen := map[string]struct{}{}
	for i := range batch.Requirements {
		for key := range batch.Requirements[i].Fields {
			seen[key] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func requirementToRow(req *domain.Requirement, extra []string) []string {
	row := make([]string, 0, len(fixedColumns)+len(extra))
	row = append(row,
		req.ID,
		fmt.Sprintf("%d", req.Ordinal),
		string(req.Source),
		renderField(req.Description),
		renderField(req.Priority),
	)
	for _, key := range extra {
		fv, ok := req.Field(key)
		if !ok {
			row = append(row, "")
			continue
		}
		row = append(row, renderField(fv))
	}
	return row
}

func renderField(fv domain.FieldValue) string {
	switch fv.Status {
	case domain.FieldSet:
		return fv.Value
	case domain.FieldUnresolved:
		return unresolvedMarker
	default:
		return ""
	}
}

func headerTitle(key string) string {
	words := strings.Split(key, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a document name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string) string {
	sanitized := SanitizeFilename(name)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
