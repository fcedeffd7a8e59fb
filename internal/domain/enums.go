package domain

import "strings"

// FormatTag identifies the logical format of an input document.
type FormatTag string

const (
	FormatPDF         FormatTag = "pdf"
	FormatWord        FormatTag = "word"
	FormatSpreadsheet FormatTag = "spreadsheet"
	FormatImage       FormatTag = "image"
	FormatEmail       FormatTag = "email"
	FormatGraph       FormatTag = "graph"
	FormatUnknown     FormatTag = "unknown"
)

// SupportedFormats lists every format an extractor exists for.
var SupportedFormats = []FormatTag{
	FormatPDF,
	FormatWord,
	FormatSpreadsheet,
	FormatImage,
	FormatEmail,
	FormatGraph,
}

// HintExtensions maps filename extensions (without dot) to FormatTag.
// Hints are advisory only; content signatures always win.
var HintExtensions = map[string]FormatTag{
	"pdf":  FormatPDF,
	"docx": FormatWord,
	"xlsx": FormatSpreadsheet,
	"png":  FormatImage,
	"jpg":  FormatImage,
	"jpeg": FormatImage,
	"eml":  FormatEmail,
	"mbox": FormatEmail,
	"json": FormatGraph,
}

// FieldStatus tracks whether a requirement field holds a concrete value.
type FieldStatus string

const (
	// FieldSet means extraction (or gap filling) established a concrete value.
	// The value may legitimately be the empty string.
	FieldSet FieldStatus = "set"
	// FieldMissing means extraction could not determine the field and gap
	// filling has not been attempted yet.
	FieldMissing FieldStatus = "missing"
	// FieldUnresolved means gap filling was attempted but the knowledge
	// source had no supportable answer.
	FieldUnresolved FieldStatus = "unresolved"
)

// Priority is the enumerated priority of a requirement.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// ValidPriority reports whether s is one of the enumerated priority values.
func ValidPriority(s string) bool {
	switch Priority(s) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// priorityAliases maps source vocabularies (including MoSCoW terms) onto the
// enumerated priority set.
var priorityAliases = map[string]Priority{
	"high":         PriorityHigh,
	"must":         PriorityHigh,
	"must have":    PriorityHigh,
	"critical":     PriorityHigh,
	"medium":       PriorityMedium,
	"should":       PriorityMedium,
	"should have":  PriorityMedium,
	"low":          PriorityLow,
	"could":        PriorityLow,
	"could have":   PriorityLow,
	"nice to have": PriorityLow,
}

// CanonicalPriority maps a raw priority string (any case, MoSCoW vocabulary
// included) to the enumerated set.
func CanonicalPriority(raw string) (Priority, bool) {
	key := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	p, ok := priorityAliases[key]
	return p, ok
}

// Canonical field keys used by the normalizer and gap filler.
const (
	FieldKeyDescription = "description"
	FieldKeyPriority    = "priority"
)

// ExtractionStatus represents the lifecycle of an extraction job.
type ExtractionStatus string

const (
	ExtractionStatusQueued     ExtractionStatus = "queued"
	ExtractionStatusProcessing ExtractionStatus = "processing"
	ExtractionStatusCompleted  ExtractionStatus = "completed"
	ExtractionStatusFailed     ExtractionStatus = "failed"
)
