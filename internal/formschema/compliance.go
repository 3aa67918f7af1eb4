package formschema

import "strings"

// complianceSuffix marks the answer fields the completion engine keys off.
const complianceSuffix = "_compliance"

// legacyComplianceAliases are historical single-field answer keys that
// predate the suffix convention. Checked only when no suffixed field is
// present in the response data.
var legacyComplianceAliases = []string{
	"compliance",
	"is_compliant",
	"answer",
	"has_budget_plan",
	"is_compliance",
}

func IsComplianceFieldID(fieldID string) bool {
	return strings.HasSuffix(fieldID, complianceSuffix)
}

func LegacyComplianceAliases() []string {
	out := make([]string, len(legacyComplianceAliases))
	copy(out, legacyComplianceAliases)
	return out
}

// IsComplianceValue reports whether v is a usable compliance answer.
func IsComplianceValue(v string) bool {
	switch v {
	case "yes", "no", "na":
		return true
	}
	return false
}
