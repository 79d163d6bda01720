package discovery

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCapabilities(t *testing.T) {
	output := `1. User Authentication and Authorization
2. Document Management and Search
3. Reporting and Analytics`

	names := ParseCapabilities(output)
	assert.Equal(t, []string{
		"User Authentication and Authorization",
		"Document Management and Search",
		"Reporting and Analytics",
	}, names)
}

func TestParseCapabilitiesSkipsPreamble(t *testing.T) {
	output := `Here are the capabilities of the system.

1. Billing and Invoicing
2. Account Management

These cover the main domains.`

	names := ParseCapabilities(output)
	// Parsing starts at the first numbered item and stops at the first
	// non-numbered line after it.
	assert.Equal(t, []string{"Billing and Invoicing", "Account Management"}, names)
}

func TestParseCapabilitiesRejectsConversationalFirstLine(t *testing.T) {
	cases := []string{
		"I'm excited to help you analyze this codebase!\n1. Billing",
		"Which output format do you want?\n1. Billing",
		"Please clarify the scope first.\n1. Billing",
		"Could you tell me more?\n1. Billing",
	}
	for _, output := range cases {
		assert.Empty(t, ParseCapabilities(output), "output %q", output)
	}
}

func TestParseCapabilitiesNoNumberedList(t *testing.T) {
	assert.Empty(t, ParseCapabilities("The codebase contains billing and reporting functionality."))
	assert.Empty(t, ParseCapabilities(""))
}

func TestParseCapabilitiesFiltersInvalidNames(t *testing.T) {
	output := `1. Billing and Invoicing
2. "Capability list only"
3. No capabilities found in this area
4. Account Management`

	names := ParseCapabilities(output)
	assert.Equal(t, []string{"Billing and Invoicing", "Account Management"}, names)
}

func TestParseCapabilitiesCap(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 60; i++ {
		fmt.Fprintf(&b, "%d. Capability Area %d\n", i, i)
	}
	names := ParseCapabilities(b.String())
	assert.Len(t, names, maxCapabilities)
}

func TestValidName(t *testing.T) {
	valid := []string{
		"User Authentication and Authorization",
		"Billing and Invoicing",
		"User Management: Admin Panel and Roles",
		"Data Processing",
	}
	for _, name := range valid {
		assert.True(t, ValidName(name), "expected valid: %q", name)
	}

	invalid := []struct {
		name   string
		reason string
	}{
		{"ab", "too short"},
		{"please tell me about the features", "conversational prefix"},
		{"show me the billing module", "conversational prefix"},
		{"no features detected", "status phrase"},
		{"Unable to find capabilities here", "status phrase"},
		{`"Capability list only"`, "fully quoted"},
		{"'Single quoted option'", "fully quoted"},
		{"Use the numbered list below", "instruction phrase"},
		{"Output format: one per line", "instruction phrase"},
		{"A 10-section product analysis format", "section+format combo"},
		{"What does billing do?", "trailing question mark"},
		{"Example: billing", "colon with keyword"},
		{"Tell me:", "short colon-ended prompt"},
		{"1. Capability Name 1", "template placeholder"},
		{"Feature Name goes here", "template placeholder"},
		{"12345", "no letters"},
		{"---", "no letters"},
		{"How billing works", "question-word start"},
		{"Which services exist", "question-word start"},
	}
	for _, tc := range invalid {
		assert.False(t, ValidName(tc.name), "%s: %q", tc.reason, tc.name)
	}
}
