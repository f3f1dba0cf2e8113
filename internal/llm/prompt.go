package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mudassirkhan-17/policyqc/internal/cert"
)

// Report keys for the per-kind validations arrays.
const (
	KeyBuildingValidations            = "building_validations"
	KeyBPPValidations                 = "bpp_validations"
	KeyMoneySecuritiesValidations     = "money_securities_validations"
	KeyEquipmentBreakdownValidations  = "equipment_breakdown_validations"
	KeyAdditionalInterestsValidations = "additional_interests_validations"
)

// CoverageKeys are the validations arrays of a property-coverage report.
var CoverageKeys = []string{
	KeyBuildingValidations,
	KeyBPPValidations,
	KeyMoneySecuritiesValidations,
	KeyEquipmentBreakdownValidations,
}

// InterestKeys are the validations arrays of an additional-interests report.
var InterestKeys = []string{KeyAdditionalInterestsValidations}

// CoveragePromptInput feeds BuildCoverageValidationPrompt.
type CoveragePromptInput struct {
	InsuredName        string
	PolicyNumber       string
	LocationAddress    string
	AllCoverages       map[string]any
	Buildings          []cert.CoverageItem
	BPP                []cert.CoverageItem
	MoneySecurities    []cert.CoverageItem
	EquipmentBreakdown []cert.CoverageItem
	PolicyText         string
	SourceALabel       string
	SourceBLabel       string
}

// InterestsPromptInput feeds BuildAdditionalInterestsPrompt.
type InterestsPromptInput struct {
	InsuredName     string
	PolicyNumber    string
	LocationAddress string
	Interests       []cert.AdditionalInterest
	PolicyText      string
	SourceALabel    string
	SourceBLabel    string
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not specified"
	}
	return s
}

func indentJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(b)
}

func writeDualSourceNote(b *strings.Builder, labelA, labelB string) {
	b.WriteString("This policy document contains TWO OCR extraction sources per page:\n")
	fmt.Fprintf(b, "- %s - first OCR source\n", labelA)
	fmt.Fprintf(b, "- %s - second OCR source\n\n", labelB)
	b.WriteString("Use whichever source is clearer. ALWAYS cite which OCR source you used.\n\n")
}

func writeAntiHallucinationRules(b *strings.Builder) {
	b.WriteString("ANTI-HALLUCINATION RULES (READ FIRST):\n")
	b.WriteString("- If you cannot find something after a careful search, return status=\"NOT_FOUND\" with null for every policy_* and evidence field.\n")
	b.WriteString("- Never invent text, values, or page numbers that are not in the policy text below.\n")
	b.WriteString("- Use null, never empty strings, for fields you cannot verify.\n\n")
}

// BuildCoverageValidationPrompt renders the property-coverage validation
// prompt: certificate context, the coverage items to validate per kind, the
// policy text, and the strict JSON output contract.
func BuildCoverageValidationPrompt(in CoveragePromptInput) string {
	var b strings.Builder

	b.WriteString("You are an expert Property Insurance QC Specialist validating coverage limits.\n\n")
	writeAntiHallucinationRules(&b)

	b.WriteString("YOUR TASK:\n")
	b.WriteString("Validate Building, Business Personal Property (BPP), Money & Securities, and Equipment Breakdown coverages from the certificate against the policy document.\n\n")

	b.WriteString("CONTEXT FROM CERTIFICATE:\n")
	fmt.Fprintf(&b, "- Insured Name: %s\n", orNotSpecified(in.InsuredName))
	fmt.Fprintf(&b, "- Policy Number: %s\n", orNotSpecified(in.PolicyNumber))
	fmt.Fprintf(&b, "- Location Address: %s\n\n", orNotSpecified(in.LocationAddress))

	fmt.Fprintf(&b, "ALL CERTIFICATE COVERAGES (for context):\n%s\n\n", indentJSON(in.AllCoverages))
	fmt.Fprintf(&b, "BUILDING COVERAGES TO VALIDATE:\n%s\n\n", indentJSON(in.Buildings))
	fmt.Fprintf(&b, "BPP COVERAGES TO VALIDATE:\n%s\n\n", indentJSON(in.BPP))
	fmt.Fprintf(&b, "MONEY & SECURITIES COVERAGES TO VALIDATE:\n%s\n\n", indentJSON(in.MoneySecurities))
	fmt.Fprintf(&b, "EQUIPMENT BREAKDOWN COVERAGES TO VALIDATE:\n%s\n\n", indentJSON(in.EquipmentBreakdown))

	b.WriteString("POLICY DOCUMENT (DUAL OCR SOURCES):\n\n")
	writeDualSourceNote(&b, in.SourceALabel, in.SourceBLabel)
	b.WriteString(in.PolicyText)
	b.WriteString("\n\nVALIDATION PROCESS:\n")
	b.WriteString("1. Find each coverage's base limit in the DECLARATIONS section, matching the right premises/building by location address, premises number, building number, or description.\n")
	b.WriteString("2. Scan the ENTIRE policy for endorsements that modify the limit (e.g. \"LIMIT OF INSURANCE - BUILDING\", amendment or correction forms) and apply them to get the final effective limit.\n")
	b.WriteString("3. Compare against the certificate value. Dollar formatting differences are not mismatches: \"$1,320,000\" = \"1,320,000\".\n")
	b.WriteString("4. If the certificate has multiple buildings, match and validate EACH one separately.\n\n")

	b.WriteString("MONEY & SECURITIES RULES (STRICT):\n")
	b.WriteString("- Prefer declarations/optional-coverages sections where \"Money and Securities\" is listed with a limit.\n")
	b.WriteString("- If the policy shows an Inside/Outside split and the certificate shows a single number, treat as MATCH when the split limits equal that value; record the split in policy_ms_split.\n")
	b.WriteString("- Do NOT confuse with Forgery/Alteration, Money Orders/Counterfeit Money, Computer Fraud/Funds Transfer, or other crime sublimits.\n")
	b.WriteString("- If the certificate says \"Included\", MATCH only if the policy indicates it is covered/included.\n\n")

	b.WriteString("EQUIPMENT BREAKDOWN RULES (STRICT):\n")
	b.WriteString("- The certificate value may be \"Included\"/\"Yes\" instead of a dollar amount; MATCH if the policy indicates Equipment Breakdown is included or provides a limit.\n")
	b.WriteString("- If the certificate shows a dollar limit, MATCH only on the same limit (ignore formatting).\n")
	b.WriteString("- Do NOT confuse the coverage grant with the Equipment Breakdown deductible or Service Interruption sublimit.\n\n")

	b.WriteString("OUTPUT FORMAT:\nReturn ONLY a valid JSON object with this structure:\n\n")
	b.WriteString(coverageOutputShape)
	b.WriteString("\n\nSTATUS DEFINITIONS:\n")
	b.WriteString("- MATCH: the policy's final effective limit matches the certificate value\n")
	b.WriteString("- MISMATCH: the limits differ\n")
	b.WriteString("- NOT_FOUND: the coverage is not in the policy document\n\n")
	b.WriteString("EVIDENCE FORMAT: always include page number and OCR source, e.g. \"Building: $1,320,000 Special Coverage (" + in.SourceALabel + ", Page 4)\".\n\n")
	b.WriteString("Return ONLY the JSON object. No other text.\n")
	return b.String()
}

const coverageOutputShape = `{
  "building_validations": [
    {
      "cert_building_name": "Name from certificate",
      "cert_building_value": "Value from certificate",
      "status": "MATCH | MISMATCH | NOT_FOUND",
      "policy_building_name": "How it appears in policy or null",
      "policy_building_value": "Final effective limit in policy or null",
      "policy_location": "Location/premises description from policy or null",
      "evidence_declarations": "Quote from declarations page (OCR_SOURCE, Page X) or null",
      "evidence_endorsements": "Quote from any modifying endorsement (OCR_SOURCE, Page X) or null",
      "notes": "How you matched and why MATCH/MISMATCH/NOT_FOUND"
    }
  ],
  "bpp_validations": [ { "cert_bpp_name": "...", "cert_bpp_value": "...", "status": "MATCH | MISMATCH | NOT_FOUND", "policy_bpp_name": null, "policy_bpp_value": null, "policy_location": null, "evidence_declarations": null, "evidence_endorsements": null, "notes": "..." } ],
  "money_securities_validations": [ { "cert_ms_name": "...", "cert_ms_value": "...", "status": "MATCH | MISMATCH | NOT_FOUND", "policy_ms_name": null, "policy_ms_value": null, "policy_ms_split": null, "policy_location": null, "evidence_declarations": null, "evidence_endorsements": null, "notes": "..." } ],
  "equipment_breakdown_validations": [ { "cert_eb_name": "...", "cert_eb_value": "...", "status": "MATCH | MISMATCH | NOT_FOUND", "policy_eb_name": null, "policy_eb_value": null, "policy_location": null, "evidence_declarations": null, "evidence_endorsements": null, "notes": "..." } ],
  "summary": { "total_buildings": 0, "matched": 0, "mismatched": 0, "not_found": 0 },
  "qc_notes": "Overall observations about the validation"
}`

// BuildAdditionalInterestsPrompt renders the additional-interests validation
// prompt over the pre-filtered policy text.
func BuildAdditionalInterestsPrompt(in InterestsPromptInput) string {
	var b strings.Builder

	b.WriteString("You are an expert Property Insurance QC Specialist validating Additional Interests (Mortgagee, Loss Payee, Additional Insured).\n\n")
	writeAntiHallucinationRules(&b)

	b.WriteString("CONTEXT FROM CERTIFICATE:\n")
	fmt.Fprintf(&b, "- Insured Name: %s\n", orNotSpecified(in.InsuredName))
	fmt.Fprintf(&b, "- Policy Number: %s\n", orNotSpecified(in.PolicyNumber))
	fmt.Fprintf(&b, "- Location Address: %s\n\n", orNotSpecified(in.LocationAddress))

	b.WriteString("ADDITIONAL INTERESTS FROM CERTIFICATE (YOU MUST FIND THESE IN POLICY):\n")
	if len(in.Interests) == 0 {
		b.WriteString("[] (No additional interests on certificate)\n\n")
	} else {
		b.WriteString(indentJSON(in.Interests) + "\n\n")
	}

	b.WriteString("POLICY TEXT (FILTERED - ADDITIONAL INTERESTS SECTIONS ONLY):\n\n")
	b.WriteString("This is a FILTERED extract containing only pages with additional-interest keywords, pages with dollar amounts, and their neighbors. The additional interests ARE in here - search it thoroughly.\n\n")
	writeDualSourceNote(&b, in.SourceALabel, in.SourceBLabel)
	b.WriteString(in.PolicyText)

	b.WriteString("\n\nSEARCH LOCATIONS:\n")
	b.WriteString("1. Standalone schedules: \"MORTGAGEE HOLDERS\", \"LOSS PAYEE SCHEDULE\", \"ADDITIONAL INTERESTS SCHEDULE\".\n")
	b.WriteString("2. Endorsement schedules (most common): CG 20 forms and the exact pattern \"Name Of Person(s) Or Organization(s) (Additional Insured):\" followed by the entity name on the next line(s); also \"Mortgagee:\" or \"Loss Payee:\" followed by a name.\n")
	b.WriteString("3. Mortgagee clauses in property forms.\n\n")

	b.WriteString("NAME MATCHING:\n")
	b.WriteString("- Names identical (case-insensitive) -> status \"MATCH\", match_type \"EXACT\".\n")
	b.WriteString("- Names similar but NOT identical (likely OCR error, e.g. \"GOLDING\" vs \"HOLDING\") -> status \"MISMATCH\" with match_type \"NAME_VARIATION\". Names must match exactly to be a MATCH, even when the difference is probably an OCR error.\n")
	b.WriteString("- No plausible policy entry at all -> status \"NOT_FOUND\".\n")
	b.WriteString("- \"TO WHOM IT MAY CONCERN\" is NOT a valid additional interest.\n\n")

	b.WriteString("OUTPUT FORMAT:\nReturn ONLY a valid JSON object with this structure:\n\n")
	b.WriteString(interestsOutputShape)
	b.WriteString("\n\nReturn ONLY the JSON object. No other text.\n")
	return b.String()
}

const interestsOutputShape = `{
  "additional_interests_validations": [
    {
      "cert_interest_name": "Name from certificate",
      "cert_interest_address": "Address from certificate or null",
      "status": "MATCH | MISMATCH | NOT_FOUND",
      "policy_interest_name": "Name from policy or null",
      "policy_interest_address": "Address from policy or null",
      "policy_interest_type": "MORTGAGEE | LOSS_PAYEE | ADDITIONAL_INSURED | LIENHOLDER | OTHER | null",
      "match_type": "EXACT | NAME_VARIATION | null",
      "evidence": "Quote from policy (OCR_SOURCE, Page X) or null",
      "notes": "Explanation of matching logic, OCR variations, or why NOT_FOUND"
    }
  ],
  "summary": { "total_additional_interests": 0, "additional_interests_matched": 0, "additional_interests_mismatched": 0, "additional_interests_not_found": 0 },
  "qc_notes": "Overall observations about the validation"
}`
