package normalize_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reqsmith/internal/domain"
	"reqsmith/internal/normalize"
)

var testDocID = uuid.MustParse("6d6f0d21-54d4-4b8a-a2f5-6c1d6a1c9c3e")

func fieldVal(t *testing.T, req domain.Requirement, key string) domain.FieldValue {
	t.Helper()
	fv, ok := req.Field(key)
	require.True(t, ok, "field %s not set", key)
	return fv
}

func TestNormalize_DeterministicIDs(t *testing.T) {
	n := normalize.New()
	frags := []domain.RawFragment{
		{Text: "The system shall rotate logs daily", Ordinal: 0},
		{Text: "The system shall rotate logs daily", Ordinal: 1},
	}

	first := n.Normalize(testDocID, domain.FormatPDF, frags)
	second := n.Normalize(testDocID, domain.FormatPDF, frags)
	require.Len(t, first, 2)

	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[1].ID, second[1].ID)
	assert.NotEqual(t, first[0].ID, first[1].ID)

	otherDoc := n.Normalize(uuid.New(), domain.FormatPDF, frags)
	assert.NotEqual(t, first[0].ID, otherDoc[0].ID)
}

func TestNormalize_Markers(t *testing.T) {
	n := normalize.New()
	frags := []domain.RawFragment{{
		Text: "Requirement: Support bulk import\nPriority: must have\nOwner: data team",
	}}

	reqs := n.Normalize(testDocID, domain.FormatWord, frags)
	require.Len(t, reqs, 1)
	req := reqs[0]

	assert.Equal(t, domain.SetValue("Support bulk import"), req.Description)
	assert.Equal(t, domain.SetValue(string(domain.PriorityHigh)), req.Priority)
	assert.Equal(t, domain.SetValue("data team"), fieldVal(t, req, "owner"))
	assert.Equal(t, domain.FormatWord, req.Source)
	assert.Equal(t, 0, req.Ordinal)
}

func TestNormalize_NonCanonicalPriorityStaysMissing(t *testing.T) {
	n := normalize.New()
	frags := []domain.RawFragment{{Text: "Priority: urgentish\nThe exporter must stream rows"}}

	reqs := n.Normalize(testDocID, domain.FormatPDF, frags)
	require.Len(t, reqs, 1)
	assert.True(t, reqs[0].Priority.IsMissing())
}

func TestNormalize_NormativeSentenceBecomesDescription(t *testing.T) {
	n := normalize.New()
	frags := []domain.RawFragment{{Text: "The gateway must reject unsigned requests"}}

	reqs := n.Normalize(testDocID, domain.FormatEmail, frags)
	require.Len(t, reqs, 1)
	assert.Equal(t, domain.SetValue("The gateway must reject unsigned requests"), reqs[0].Description)
	assert.True(t, reqs[0].Priority.IsMissing())
}

func TestNormalize_NonNormativeTextLeavesDescriptionMissing(t *testing.T) {
	n := normalize.New()
	frags := []domain.RawFragment{{Text: "Owner: platform team"}}

	reqs := n.Normalize(testDocID, domain.FormatWord, frags)
	require.Len(t, reqs, 1)
	assert.True(t, reqs[0].Description.IsMissing())
	assert.Equal(t, domain.SetValue("platform team"), fieldVal(t, reqs[0], "owner"))
}

func TestNormalize_RefFromText(t *testing.T) {
	n := normalize.New()
	frags := []domain.RawFragment{{Text: "REQ-42 the scheduler shall pause on backpressure"}}

	reqs := n.Normalize(testDocID, domain.FormatPDF, frags)
	require.Len(t, reqs, 1)
	assert.Equal(t, domain.SetValue("REQ-42"), fieldVal(t, reqs[0], "ref"))
}

func TestNormalize_MetadataFields(t *testing.T) {
	n := normalize.New()
	frags := []domain.RawFragment{{
		Text: "The importer shall deduplicate rows",
		Metadata: map[string]string{
			"sheet":    "Backlog",
			"row":      "3",
			"priority": "low",
			"owner":    "ops",
		},
	}}

	reqs := n.Normalize(testDocID, domain.FormatSpreadsheet, frags)
	require.Len(t, reqs, 1)
	req := reqs[0]

	assert.Equal(t, domain.SetValue("Backlog"), fieldVal(t, req, "source_sheet"))
	assert.Equal(t, domain.SetValue("3"), fieldVal(t, req, "source_row"))
	assert.Equal(t, domain.SetValue(string(domain.PriorityLow)), req.Priority)
	assert.Equal(t, domain.SetValue("ops"), fieldVal(t, req, "owner"))
}

func TestNormalize_TextWinsOverMetadata(t *testing.T) {
	n := normalize.New()
	frags := []domain.RawFragment{{
		Text:     "Priority: critical\nThe cache must expire entries",
		Metadata: map[string]string{"priority": "low"},
	}}

	reqs := n.Normalize(testDocID, domain.FormatGraph, frags)
	require.Len(t, reqs, 1)
	assert.Equal(t, domain.SetValue(string(domain.PriorityHigh)), reqs[0].Priority)
}

func TestNormalize_EmptyInput(t *testing.T) {
	n := normalize.New()
	reqs := n.Normalize(testDocID, domain.FormatPDF, nil)
	assert.NotNil(t, reqs)
	assert.Empty(t, reqs)
}
