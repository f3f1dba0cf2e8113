// Package compare deterministically checks certificate-stated values
// against policy-extracted values over a table of field paths.
package compare

import (
	"strconv"
	"strings"

	"github.com/mudassirkhan-17/policyqc/constants"
	"github.com/mudassirkhan-17/policyqc/internal/normalize"
)

// FieldPath names one check: a field label plus the path to resolve on each
// side. Path segments are map keys, except all-digit segments which index
// into lists.
type FieldPath struct {
	Name       string
	CertPath   []string
	PolicyPath []string
}

// Record is one checked field pair. Values are normalized; nil marks an
// absent side.
type Record struct {
	Field       string                     `json:"field"`
	Certificate *string                    `json:"certificate"`
	Policy      *string                    `json:"policy"`
	Status      constants.ValidationStatus `json:"status"`
}

// Outcome is the result of one comparison run.
type Outcome struct {
	// Records holds every emitted check. Mismatches are always recorded;
	// matches only when the comparator is configured to keep them.
	Records []Record `json:"records"`
	// NotApplicable lists fields dropped because the certificate lacks the
	// structure they index into (no locations array). Distinct from fields
	// that resolve to nil on both sides, which are skipped silently.
	NotApplicable []string `json:"not_applicable,omitempty"`
	// Status is "pass" when no mismatch was recorded, else "needs_review".
	Status string `json:"status"`
}

// Summary aggregates record statuses. Always derived from the records,
// never kept as separate mutable state.
type Summary struct {
	Total      int `json:"total"`
	Matched    int `json:"matched"`
	Mismatched int `json:"mismatched"`
	NotFound   int `json:"not_found"`
}

// Comparator runs field-path checks.
type Comparator struct {
	// RecordMatches keeps MATCH records in the outcome. Off by default:
	// the deterministic QC pass collects mismatches only.
	RecordMatches bool
}

// Resolve walks a path through nested maps and lists. It never errors: any
// missing key, out-of-range index, or type mismatch resolves to nil, leaving
// significance to the comparison layer.
func Resolve(root any, path []string) any {
	cur := root
	for _, seg := range path {
		if idx, err := strconv.Atoi(seg); err == nil && isAllDigits(seg) {
			list, ok := cur.([]any)
			if !ok || idx >= len(list) {
				return nil
			}
			cur = list[idx]
			continue
		}
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[seg]
	}
	return cur
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Compare resolves every field path on both sides and classifies the pair:
// both absent → no record; one absent → MISMATCH with the asymmetry kept
// visible; both present → MATCH or MISMATCH by normalized equality.
//
// Fields whose certificate path indexes into a list the certificate does
// not have are dropped up front and reported in NotApplicable.
func (c *Comparator) Compare(cert, policy map[string]any, fields []FieldPath) Outcome {
	out := Outcome{Status: "pass"}

	for _, f := range fields {
		if !indexedStructurePresent(cert, f.CertPath) {
			out.NotApplicable = append(out.NotApplicable, f.Name)
			continue
		}

		certVal := Resolve(cert, f.CertPath)
		polVal := Resolve(policy, f.PolicyPath)

		if certVal == nil && polVal == nil {
			continue
		}

		certNorm := normalizePtr(certVal)
		polNorm := normalizePtr(polVal)

		rec := Record{Field: f.Name, Certificate: certNorm, Policy: polNorm}
		switch {
		case certVal == nil || polVal == nil:
			rec.Status = constants.StatusMismatch
		case normalize.Equal(certVal, polVal):
			rec.Status = constants.StatusMatch
		default:
			rec.Status = constants.StatusMismatch
		}

		if rec.Status == constants.StatusMatch && !c.RecordMatches {
			continue
		}
		out.Records = append(out.Records, rec)
		if rec.Status == constants.StatusMismatch {
			out.Status = "needs_review"
		}
	}
	return out
}

// indexedStructurePresent reports whether every list index in the path has
// a list long enough behind it. Paths without index segments always pass.
func indexedStructurePresent(root any, path []string) bool {
	for i, seg := range path {
		if !isAllDigits(seg) {
			continue
		}
		idx, _ := strconv.Atoi(seg)
		list, ok := Resolve(root, path[:i]).([]any)
		if !ok || idx >= len(list) {
			return false
		}
	}
	return true
}

func normalizePtr(v any) *string {
	if v == nil {
		return nil
	}
	n, ok := normalize.Value(v)
	if !ok {
		return nil
	}
	return &n
}

// Summarize recomputes aggregate counts from records.
func Summarize(records []Record) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case constants.StatusMatch:
			s.Matched++
		case constants.StatusMismatch:
			s.Mismatched++
		case constants.StatusNotFound:
			s.NotFound++
		}
	}
	return s
}

// CountStatuses recomputes a Summary from generic validation entries, as
// returned by the model. The model's own counts are never trusted.
func CountStatuses(entries []map[string]any) Summary {
	s := Summary{Total: len(entries)}
	for _, e := range entries {
		status, _ := e["status"].(string)
		switch constants.ValidationStatus(strings.ToUpper(status)) {
		case constants.StatusMatch:
			s.Matched++
		case constants.StatusMismatch:
			s.Mismatched++
		case constants.StatusNotFound:
			s.NotFound++
		}
	}
	return s
}
