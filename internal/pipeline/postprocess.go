package pipeline

import (
	"regexp"
	"strings"

	"github.com/mudassirkhan-17/policyqc/internal/compare"
	"github.com/mudassirkhan-17/policyqc/internal/llm"
	"github.com/mudassirkhan-17/policyqc/internal/normalize"
)

// summaryFields maps a validations key to its summary field names:
// total, matched, mismatched, not_found.
var summaryFields = map[string][4]string{
	llm.KeyBuildingValidations:            {"total_buildings", "matched", "mismatched", "not_found"},
	llm.KeyBPPValidations:                 {"total_bpp_items", "bpp_matched", "bpp_mismatched", "bpp_not_found"},
	llm.KeyMoneySecuritiesValidations:     {"total_ms_items", "ms_matched", "ms_mismatched", "ms_not_found"},
	llm.KeyEquipmentBreakdownValidations:  {"total_eb_items", "eb_matched", "eb_mismatched", "eb_not_found"},
	llm.KeyAdditionalInterestsValidations: {"total_additional_interests", "additional_interests_matched", "additional_interests_mismatched", "additional_interests_not_found"},
}

// entriesAt reads a validations array out of a generic report.
func entriesAt(report map[string]any, key string) []map[string]any {
	list, _ := report[key].([]any)
	entries := make([]map[string]any, 0, len(list))
	for _, e := range list {
		if m, ok := e.(map[string]any); ok {
			entries = append(entries, m)
		}
	}
	return entries
}

// RecomputeSummary rewrites the report's summary counts from the
// validations arrays. Model-reported counts are discarded.
func RecomputeSummary(report map[string]any, keys []string) {
	summary, _ := report["summary"].(map[string]any)
	if summary == nil {
		summary = map[string]any{}
	}
	for _, key := range keys {
		names, known := summaryFields[key]
		if !known {
			continue
		}
		counts := compare.CountStatuses(entriesAt(report, key))
		summary[names[0]] = counts.Total
		summary[names[1]] = counts.Matched
		summary[names[2]] = counts.Mismatched
		summary[names[3]] = counts.NotFound
	}
	report["summary"] = summary
}

// TagNameVariations walks the additional-interests validations and marks
// mismatches whose two names are likely the same entity with an OCR error.
// The status stays MISMATCH; only the tag changes.
func TagNameVariations(report map[string]any) {
	for _, entry := range entriesAt(report, llm.KeyAdditionalInterestsValidations) {
		status, _ := entry["status"].(string)
		if !strings.EqualFold(status, "MISMATCH") {
			continue
		}
		certName, _ := entry["cert_interest_name"].(string)
		policyName, _ := entry["policy_interest_name"].(string)
		if certName == "" || policyName == "" {
			continue
		}
		if compare.IsNameVariation(certName, policyName) {
			entry["match_type"] = "NAME_VARIATION"
		}
	}
}

var classAmountRes = map[int]*regexp.Regexp{
	1: regexp.MustCompile(`(?is)Class\s*1(?:.{0,200}?)\$\s*([0-9,]+)`),
	2: regexp.MustCompile(`(?is)Class\s*2(?:.{0,200}?)\$\s*([0-9,]+)`),
}

// ExtractFirstClassAmount is the regex fallback for declarations that list
// pump/canopy limits as "Class 1"/"Class 2" lines, tolerating OCR line
// breaks between the tokens.
func ExtractFirstClassAmount(policyText string, classNo int) (string, bool) {
	re, ok := classAmountRes[classNo]
	if !ok {
		return "", false
	}
	m := re.FindStringSubmatch(policyText)
	if m == nil {
		return "", false
	}
	return normalize.Value(m[1])
}

var buildingLimitRes = []*regexp.Regexp{
	// table style: "1 1 Building $ 350,000"
	regexp.MustCompile(`(?im)^[ \t]*\d+\s+\d+\s+Building\b((?s:.){0,80}?)\$\s*[0-9,]+`),
	// label style: "Building" with the amount on the next line
	regexp.MustCompile(`(?im)^[ \t]*Building\b(\s+)\$\s*[0-9,]+`),
	// single-line style: "Building  425,000"
	regexp.MustCompile(`(?im)^[ \t]*Building\b([ \t]+)\$?[ \t]*[0-9,]+[ \t]*$`),
}

// "Building and Personal Property Coverage Form" is the form name, not a
// Building limit line.
var andPersonalRe = regexp.MustCompile(`(?i)^\s*and\s+personal`)

// PolicyHasExplicitBuildingLimit reports whether the policy text shows a
// distinct Building coverage line with a dollar limit.
func PolicyHasExplicitBuildingLimit(policyText string) bool {
	for _, re := range buildingLimitRes {
		for _, m := range re.FindAllStringSubmatch(policyText, -1) {
			if !andPersonalRe.MatchString(m[1]) {
				return true
			}
		}
	}
	return false
}

// PatchExtraction fixes common, predictable OCR/LLM mistakes in an
// extraction report's policy.property.locations entries:
//   - a construction type misfiled in "building" moves to "construction"
//   - pumps/canopy limits missing or "Included" are filled from the
//     Class 1/Class 2 regex fallback
//   - when the policy has no explicit Building limit, a building value that
//     merely duplicates the BPP amount is cleared
func PatchExtraction(extracted map[string]any, policyText string) {
	policy, _ := extracted["policy"].(map[string]any)
	prop, _ := policy["property"].(map[string]any)
	locs, _ := prop["locations"].([]any)
	if len(locs) == 0 {
		return
	}

	class1, hasClass1 := ExtractFirstClassAmount(policyText, 1)
	class2, hasClass2 := ExtractFirstClassAmount(policyText, 2)
	hasBuildingLimit := PolicyHasExplicitBuildingLimit(policyText)

	for _, entry := range locs {
		loc, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		if bld, ok := loc["building"].(string); ok && strings.TrimSpace(bld) != "" {
			if _, numeric := normalize.Value(bld); !numeric {
				// likely "Frame"/"Non-Combustible"/etc
				if cur, _ := loc["construction"].(string); cur == "" {
					loc["construction"] = strings.TrimSpace(bld)
				}
				loc["building"] = nil
			}
		}

		if hasClass1 && needsClassFallback(loc["pumps"]) {
			loc["pumps"] = class1
		}
		if hasClass2 && needsClassFallback(loc["canopy"]) {
			loc["canopy"] = class2
		}

		if !hasBuildingLimit {
			bppNorm, bppOK := normalize.Value(loc["business_personal_property"])
			bldNorm, bldOK := normalize.Value(loc["building"])
			if bppOK && bldOK && bppNorm == bldNorm {
				loc["building"] = nil
			}
		}
	}
}

// needsClassFallback is true when a pumps/canopy value carries no usable
// number of its own.
func needsClassFallback(v any) bool {
	n, ok := normalize.Value(v)
	return !ok || n == "Included"
}
