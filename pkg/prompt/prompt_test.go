package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInput() Input {
	return Input{
		Role:          "You are an expert in Australian privacy law.",
		DocumentTitle: "Cookie Policy",
		CompanyName:   "Acme Pty Ltd",
		Legal:         "APP 5 notification\n\n---\n\nAPP 6 use and disclosure",
		Examples:      "",
		Facts: []FactGroup{{
			Title: "Company Details",
			Facts: []Fact{
				{Label: "Company Name", Value: "Acme Pty Ltd"},
				{Label: "Phone", Value: "  "},
			},
		}},
		Rules: Rules{
			MandatorySections: []string{"What Are Cookies?", "Contact Us"},
			Forbidden:         []string{"[insert", "TBD"},
			ExactlyOnce:       []string{"Nothing in these Terms excludes, restricts or modifies rights under the Australian Consumer Law."},
			Instructions:      []string{"List only the cookie types actually used."},
			MinSections:       8,
		},
		SchemaName: "cookie_policy",
		Date:       "2025-03-01",
	}
}

func TestAssembleRendersAllBlocks(t *testing.T) {
	out, err := New().Assemble(testInput())
	require.NoError(t, err)

	assert.Contains(t, out, "You are an expert in Australian privacy law.")
	assert.Contains(t, out, "APP 5 notification\n\n---\n\nAPP 6 use and disclosure")
	assert.Contains(t, out, "- Company Name: Acme Pty Ltd\n")
	assert.Contains(t, out, "- Phone: Not specified\n")
	assert.Contains(t, out, "Never write any of the following: [insert; TBD.")
	assert.Contains(t, out, `verbatim exactly once: "Nothing in these Terms excludes, restricts or modifies rights under the Australian Consumer Law."`)
	assert.Contains(t, out, "- List only the cookie types actually used.")
	assert.Contains(t, out, "1. What Are Cookies?\n2. Contact Us\n")
	assert.Contains(t, out, "at least 8 sections")
	assert.Contains(t, out, "matching the cookie_policy schema")
	assert.Contains(t, out, "Set last_updated to 2025-03-01.")
}

func TestAssembleUsesSentinelForEmptyContext(t *testing.T) {
	in := testInput()
	in.Legal = ""

	out, err := New().Assemble(in)
	require.NoError(t, err)
	assert.Contains(t, out, "(GUIDANCE ONLY) ===\nUse these excerpts as guidance only. Do not copy licensing notices, attributions or unrelated text.\n\nNot specified\n")
	assert.Contains(t, out, "Never copy another company's facts.\n\nNot specified\n")
}

func TestAssembleIsDeterministic(t *testing.T) {
	a := New()
	first, err := a.Assemble(testInput())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := a.Assemble(testInput())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestAssembleDoesNotMutateInput(t *testing.T) {
	in := testInput()
	_, err := New().Assemble(in)
	require.NoError(t, err)
	assert.Equal(t, "  ", in.Facts[0].Facts[1].Value)
}

func TestAssembleBadTemplate(t *testing.T) {
	_, err := NewWithTemplate("{{.role").Assemble(testInput())
	assert.Error(t, err)
}
