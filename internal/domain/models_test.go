package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"reqsmith/internal/domain"
)

func TestFieldValue_Sentinels(t *testing.T) {
	set := domain.SetValue("x")
	assert.True(t, set.IsConcrete())
	assert.False(t, set.IsMissing())

	// A set field with an empty value is a real value, not a gap.
	empty := domain.SetValue("")
	assert.True(t, empty.IsConcrete())
	assert.False(t, empty.IsMissing())

	missing := domain.MissingValue()
	assert.False(t, missing.IsConcrete())
	assert.True(t, missing.IsMissing())

	unresolved := domain.UnresolvedValue()
	assert.False(t, unresolved.IsConcrete())
	assert.False(t, unresolved.IsMissing())
}

func TestRequirement_FieldAccess(t *testing.T) {
	req := domain.Requirement{
		Description: domain.SetValue("the system shall log in users"),
		Priority:    domain.MissingValue(),
	}
	req.SetField("owner", domain.SetValue("platform team"))

	fv, ok := req.Field(domain.FieldKeyDescription)
	assert.True(t, ok)
	assert.Equal(t, "the system shall log in users", fv.Value)

	fv, ok = req.Field("owner")
	assert.True(t, ok)
	assert.Equal(t, "platform team", fv.Value)

	_, ok = req.Field("absent")
	assert.False(t, ok)

	assert.True(t, req.HasField("owner"))
	assert.False(t, req.HasField(domain.FieldKeyPriority), "missing priority is not a concrete field")
}

func TestRequirement_FieldKeysOrder(t *testing.T) {
	req := domain.Requirement{}
	req.SetField("zeta", domain.SetValue("1"))
	req.SetField("alpha", domain.SetValue("2"))

	keys := req.FieldKeys()
	assert.Equal(t, []string{
		domain.FieldKeyDescription,
		domain.FieldKeyPriority,
		"alpha",
		"zeta",
	}, keys)
}

func TestRequirement_MissingFieldKeys(t *testing.T) {
	req := domain.Requirement{
		Description: domain.MissingValue(),
		Priority:    domain.SetValue("High"),
	}
	req.SetField("owner", domain.MissingValue())
	req.SetField("status", domain.UnresolvedValue())

	assert.Equal(t, []string{domain.FieldKeyDescription, "owner"}, req.MissingFieldKeys())
}

func TestCanonicalPriority(t *testing.T) {
	cases := map[string]domain.Priority{
		"High":         domain.PriorityHigh,
		"must have":    domain.PriorityHigh,
		"MUST  HAVE":   domain.PriorityHigh,
		"Should Have":  domain.PriorityMedium,
		"medium":       domain.PriorityMedium,
		"low":          domain.PriorityLow,
		"nice to have": domain.PriorityLow,
	}
	for raw, want := range cases {
		got, ok := domain.CanonicalPriority(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	_, ok := domain.CanonicalPriority("urgentish")
	assert.False(t, ok)
}
