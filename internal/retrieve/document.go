// Package retrieve implements the KnowledgeRetriever capability: given a
// missing field's key and surrounding context, return ranked candidate
// entries. "No results" is an empty slice, never an error; errors are
// reserved for knowledge-source transport failures.
package retrieve

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"reqsmith/internal/domain"
	"reqsmith/internal/port"
)

// DocumentScanner retrieves candidates from the document under analysis
// itself by scanning for key-value lines and normative sentences.
type DocumentScanner struct{}

// NewDocumentScanner creates a document-local retriever.
func NewDocumentScanner() *DocumentScanner {
	return &DocumentScanner{}
}

var normativeSentence = regexp.MustCompile(`(?i)[^.!?]*\b(shall|must|should)\b[^.!?]*[.!?]?`)

// fieldKeyAliases lists the textual labels that may carry a field's value in
// source documents.
var fieldKeyAliases = map[string][]string{
	domain.FieldKeyDescription: {"description", "requirement", "feature"},
	domain.FieldKeyPriority:    {"priority"},
}

func (s *DocumentScanner) Retrieve(_ context.Context, fieldKey string, qc port.QueryContext) ([]domain.KnowledgeEntry, error) {
	text := qc.DocumentText
	if text == "" {
		return []domain.KnowledgeEntry{}, nil
	}

	labels := fieldKeyAliases[fieldKey]
	if labels == nil {
		labels = []string{strings.ReplaceAll(fieldKey, "_", " "), fieldKey}
	}

	entries := []domain.KnowledgeEntry{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, label := range labels {
			value, ok := labeledValue(line, label)
			if !ok || value == "" {
				continue
			}
			entries = append(entries, domain.KnowledgeEntry{
				FieldKey: fieldKey,
				Value:    value,
				Source:   "document",
				Rank:     1.0,
			})
			break
		}
	}

	// Description gaps can also be answered by normative sentences that
	// never carry an explicit label.
	if fieldKey == domain.FieldKeyDescription && len(entries) == 0 {
		for _, sentence := range normativeSentence.FindAllString(text, 5) {
			sentence = strings.Join(strings.Fields(sentence), " ")
			if sentence == "" {
				continue
			}
			entries = append(entries, domain.KnowledgeEntry{
				FieldKey: fieldKey,
				Value:    sentence,
				Source:   "document",
				Rank:     0.5,
			})
		}
	}

	sortEntries(entries)
	return entries, nil
}

func labeledValue(line, label string) (string, bool) {
	prefixLen := len(label)
	if len(line) <= prefixLen || !strings.EqualFold(line[:prefixLen], label) {
		return "", false
	}
	rest := strings.TrimSpace(line[prefixLen:])
	if !strings.HasPrefix(rest, ":") && !strings.HasPrefix(rest, "-") {
		return "", false
	}
	return strings.TrimSpace(rest[1:]), true
}

// sortEntries orders candidates by rank descending, then value, so retrieval
// output is deterministic for a fixed document.
func sortEntries(entries []domain.KnowledgeEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Rank != entries[j].Rank {
			return entries[i].Rank > entries[j].Rank
		}
		return entries[i].Value < entries[j].Value
	})
}

var _ port.Retriever = (*DocumentScanner)(nil)
