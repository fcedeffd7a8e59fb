package extract

import (
	"regexp"
	"strings"
)

// requirementMarkers are the textual signals that a unit of prose is a
// requirement candidate. Structured formats (spreadsheet data rows, graph
// nodes) skip this filter because their structure already marks intent.
var requirementMarkers = []string{
	"requirement",
	"req-",
	"shall",
	"must",
	"should",
	"feature:",
	"user story",
	"acceptance criteria",
	"priority:",
}

var keyValuePattern = regexp.MustCompile(`(?i)^\s*[a-z][a-z0-9 _-]{0,40}:\s*\S`)

// isRequirementLike reports whether a prose unit looks like a requirement
// candidate worth normalizing.
func isRequirementLike(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range requirementMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return keyValuePattern.MatchString(text)
}

// splitParagraphs breaks prose into blank-line separated units with
// collapsed internal whitespace.
func splitParagraphs(text string) []string {
	var out []string
	for _, block := range regexp.MustCompile(`\n\s*\n`).Split(text, -1) {
		block = strings.Join(strings.Fields(block), " ")
		if block != "" {
			out = append(out, block)
		}
	}
	return out
}
