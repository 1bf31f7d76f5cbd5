package compliance

// RuleCode is the closed set of compliance rule codes the gate is known to
// emit. The gate service can ship new rules before this backend redeploys, so
// every lookup must go through Describe and fall back explicitly instead of
// assuming membership.
type RuleCode string

const (
	RuleDocsIncomplete          RuleCode = "DOCS_INCOMPLETE"
	RuleDocBlocked              RuleCode = "DOC_BLOCKED"
	RuleDocObserved             RuleCode = "DOC_OBSERVED"
	RuleDocRequiresReplacement  RuleCode = "DOC_REQUIRES_REPLACEMENT"
	RuleTechnicalApprovalNeeded RuleCode = "TECHNICAL_APPROVAL_MISSING"
	RuleFinalApprovalNeeded     RuleCode = "FINAL_DECLARATION_APPROVAL_MISSING"
	RuleGattFormIncomplete      RuleCode = "GATT_FORM_INCOMPLETE"
	RuleCrossingUnresolved      RuleCode = "CROSSING_UNRESOLVED"
)

var ruleDescriptions = map[RuleCode]string{
	RuleDocsIncomplete:          "Documentation checklist is not 100% complete",
	RuleDocBlocked:              "One or more documents are blocked",
	RuleDocObserved:             "One or more documents have open observations",
	RuleDocRequiresReplacement:  "One or more documents require replacement",
	RuleTechnicalApprovalNeeded: "Technical review approval is missing",
	RuleFinalApprovalNeeded:     "Final declaration approval is missing",
	RuleGattFormIncomplete:      "GATT valuation form has not been completed",
	RuleCrossingUnresolved:      "Declaration crossing has unresolved discrepancies",
}

// Describe returns the operator-facing description for a rule code, with an
// explicit fallback for codes this build does not know about yet.
func Describe(code RuleCode) string {
	if desc, ok := ruleDescriptions[code]; ok {
		return desc
	}
	return "Unknown compliance rule: " + string(code)
}

// Known reports whether the rule code is in this build's catalog.
func Known(code RuleCode) bool {
	_, ok := ruleDescriptions[code]
	return ok
}
