package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// FieldValue is the per-field envelope distinguishing a concrete value from
// the missing and unresolved sentinels. A set field with an empty Value is a
// legitimately empty value and is never eligible for gap filling.
type FieldValue struct {
	Status FieldStatus `json:"status"`
	Value  string      `json:"value"`
}

// SetValue returns a FieldValue holding a concrete value.
func SetValue(v string) FieldValue {
	return FieldValue{Status: FieldSet, Value: v}
}

// MissingValue returns the missing sentinel.
func MissingValue() FieldValue {
	return FieldValue{Status: FieldMissing}
}

// UnresolvedValue returns the unresolved sentinel.
func UnresolvedValue() FieldValue {
	return FieldValue{Status: FieldUnresolved}
}

// IsConcrete reports whether the field holds a real value (including "").
func (f FieldValue) IsConcrete() bool {
	return f.Status == FieldSet
}

// IsMissing reports whether gap filling may still be attempted for the field.
func (f FieldValue) IsMissing() bool {
	return f.Status == FieldMissing
}

// RawFragment is an unstructured text candidate produced by a format
// extractor before normalization.
type RawFragment struct {
	Text       string            `json:"text"`
	Ordinal    int               `json:"ordinal"`
	Confidence float64           `json:"confidence,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Requirement is the canonical output unit of the pipeline.
type Requirement struct {
	ID          string                `json:"id"`
	Description FieldValue            `json:"description"`
	Priority    FieldValue            `json:"priority"`
	Source      FormatTag             `json:"source"`
	Fields      map[string]FieldValue `json:"fields,omitempty"`
	Ordinal     int                   `json:"ordinal"`
}

// Field returns the value for a canonical or additional field key.
func (r *Requirement) Field(key string) (FieldValue, bool) {
	switch key {
	case FieldKeyDescription:
		return r.Description, true
	case FieldKeyPriority:
		return r.Priority, true
	}
	fv, ok := r.Fields[key]
	return fv, ok
}

// HasField reports whether the key already holds a concrete value.
func (r *Requirement) HasField(key string) bool {
	fv, ok := r.Field(key)
	return ok && fv.IsConcrete()
}

// SetField writes a field value by key. The source tag is not addressable
// through this method; provenance is set once at creation.
func (r *Requirement) SetField(key string, fv FieldValue) {
	switch key {
	case FieldKeyDescription:
		r.Description = fv
	case FieldKeyPriority:
		r.Priority = fv
	default:
		if r.Fields == nil {
			r.Fields = map[string]FieldValue{}
		}
		r.Fields[key] = fv
	}
}

// FieldKeys returns every field key on the requirement in a stable order:
// canonical keys first, then additional keys sorted lexically.
func (r *Requirement) FieldKeys() []string {
	keys := []string{FieldKeyDescription, FieldKeyPriority}
	extra := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		extra = append(extra, k)
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// MissingFieldKeys returns the keys currently holding the missing sentinel.
func (r *Requirement) MissingFieldKeys() []string {
	var out []string
	for _, k := range r.FieldKeys() {
		if fv, ok := r.Field(k); ok && fv.IsMissing() {
			out = append(out, k)
		}
	}
	return out
}

// ExtractionBatch is the ordered result of one document's pipeline run.
// Requirements is never nil: a zero-content document yields an empty slice so
// callers can distinguish "nothing found" from "extraction failed".
type ExtractionBatch struct {
	DocumentID       uuid.UUID     `json:"document_id"`
	Format           FormatTag     `json:"format"`
	Requirements     []Requirement `json:"requirements"`
	GapFillAttempted int           `json:"gap_fill_attempted"`
	GapFillResolved  int           `json:"gap_fill_resolved"`
}

// KnowledgeEntry is a field-key/value association retrieved from a knowledge
// source. Entries are immutable once retrieved within a single run.
type KnowledgeEntry struct {
	FieldKey string  `db:"field_key" json:"field_key"`
	Value    string  `db:"value" json:"value"`
	Source   string  `db:"source" json:"source"`
	Rank     float64 `db:"rank" json:"rank"`
}

// ExtractionJob tracks an asynchronous extraction request through the queue.
type ExtractionJob struct {
	ID           uuid.UUID        `json:"id"`
	FileName     string           `json:"file_name"`
	FormatHint   string           `json:"format_hint,omitempty"`
	StorageKey   string           `json:"storage_key,omitempty"`
	Status       ExtractionStatus `json:"status"`
	Error        string           `json:"error,omitempty"`
	Batch        *ExtractionBatch `json:"batch,omitempty"`
	Attempts     int              `json:"attempts"`
	SubmittedBy  string           `json:"submitted_by,omitempty"`
	NotifyEmail  string           `json:"notify_email,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
}
