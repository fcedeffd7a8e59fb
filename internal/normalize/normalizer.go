// Package normalize maps raw extractor fragments into canonical Requirement
// records. Fields it cannot derive from a fragment are marked with the
// explicit missing sentinel, never inferred: inference is deferred to gap
// filling so extraction and generation stay separately testable.
package normalize

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"reqsmith/internal/domain"
)

// requirementNamespace seeds UUIDv5 requirement ids so that runs over
// byte-identical input produce byte-identical batches.
var requirementNamespace = uuid.MustParse("9f2c1a40-7c33-45c1-9b5e-2d6a62f70c11")

var (
	markerPattern   = regexp.MustCompile(`(?i)^\s*(requirement|description|priority|feature|rationale|owner|component|status)\s*[:\-]\s*(.+)$`)
	keyValuePattern = regexp.MustCompile(`(?i)^\s*([a-z][a-z0-9 _-]{0,40})\s*:\s*(.+)$`)
	refPattern      = regexp.MustCompile(`\bREQ-\d+\b`)
	sentencePattern = regexp.MustCompile(`(?i)\b(shall|must|should)\b`)
)

// Normalizer maps fragments to Requirements.
type Normalizer struct{}

// New creates a Normalizer.
func New() *Normalizer {
	return &Normalizer{}
}

// Normalize converts fragments from one document into canonical Requirement
// records. The result is never nil; a document with no fragments yields an
// empty slice. Provenance (Source) is set here, once, and is never rewritten
// by later stages.
func (n *Normalizer) Normalize(docID uuid.UUID, format domain.FormatTag, frags []domain.RawFragment) []domain.Requirement {
	out := make([]domain.Requirement, 0, len(frags))
	for i, frag := range frags {
		req := domain.Requirement{
			ID:          requirementID(docID, format, i, frag.Text),
			Description: domain.MissingValue(),
			Priority:    domain.MissingValue(),
			Source:      format,
			Ordinal:     i,
		}
		n.applyText(&req, frag.Text)
		n.applyMetadata(&req, frag.Metadata)
		out = append(out, req)
	}
	return out
}

// applyText matches recognized markers line by line. Text with no explicit
// description marker but a normative sentence becomes the description.
func (n *Normalizer) applyText(req *domain.Requirement, text string) {
	unmatched := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := markerPattern.FindStringSubmatch(line); m != nil {
			n.applyMarker(req, strings.ToLower(m[1]), strings.TrimSpace(m[2]))
			continue
		}
		if m := keyValuePattern.FindStringSubmatch(line); m != nil {
			key := fieldKey(m[1])
			if key != "" && !req.HasField(key) {
				req.SetField(key, domain.SetValue(strings.TrimSpace(m[2])))
			}
			continue
		}
		unmatched = append(unmatched, line)
	}

	if ref := refPattern.FindString(text); ref != "" && !req.HasField("ref") {
		req.SetField("ref", domain.SetValue(ref))
	}

	if req.Description.IsMissing() && len(unmatched) > 0 {
		joined := strings.Join(unmatched, " ")
		if sentencePattern.MatchString(joined) {
			req.Description = domain.SetValue(joined)
		}
	}
}

func (n *Normalizer) applyMarker(req *domain.Requirement, marker, value string) {
	switch marker {
	case "requirement", "description", "feature":
		if req.Description.IsMissing() && value != "" {
			req.Description = domain.SetValue(value)
		}
	case "priority":
		if req.Priority.IsMissing() {
			if p, ok := domain.CanonicalPriority(value); ok {
				req.Priority = domain.SetValue(string(p))
			}
		}
	default:
		if !req.HasField(marker) {
			req.SetField(marker, domain.SetValue(value))
		}
	}
}

// applyMetadata folds structural metadata from the extractor into additional
// fields without overriding anything derived from the text.
func (n *Normalizer) applyMetadata(req *domain.Requirement, meta map[string]string) {
	for _, key := range sortedKeys(meta) {
		value := meta[key]
		if value == "" {
			continue
		}
		switch key {
		case "priority":
			if req.Priority.IsMissing() {
				if p, ok := domain.CanonicalPriority(value); ok {
					req.Priority = domain.SetValue(string(p))
				}
			}
		case "page", "paragraph", "sheet", "row", "node", "part", "subject", "from", "related":
			fk := "source_" + key
			if !req.HasField(fk) {
				req.SetField(fk, domain.SetValue(value))
			}
		default:
			fk := fieldKey(key)
			if fk != "" && !req.HasField(fk) {
				req.SetField(fk, domain.SetValue(value))
			}
		}
	}
}

func requirementID(docID uuid.UUID, format domain.FormatTag, ordinal int, text string) string {
	name := fmt.Sprintf("%s|%s|%d|%s", docID, format, ordinal, text)
	return uuid.NewSHA1(requirementNamespace, []byte(name)).String()
}

// fieldKey normalizes a matched key to snake_case, rejecting keys that would
// collide with reserved record attributes.
func fieldKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	switch key {
	case "", "id", "source", "description", "priority", "requirement":
		return ""
	}
	return key
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
