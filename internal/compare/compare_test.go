package compare

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mudassirkhan-17/policyqc/constants"
)

func mustJSON(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestResolve(t *testing.T) {
	doc := mustJSON(t, `{
		"property": {
			"locations": [
				{"building": "$1,320,000"},
				{"building": "$90,000"}
			],
			"policy_number": "680-1234"
		}
	}`)

	assert.Equal(t, "680-1234", Resolve(doc, []string{"property", "policy_number"}))
	assert.Equal(t, "$90,000", Resolve(doc, []string{"property", "locations", "1", "building"}))

	// misses and type mismatches resolve to nil, never error
	assert.Nil(t, Resolve(doc, []string{"property", "missing"}))
	assert.Nil(t, Resolve(doc, []string{"property", "locations", "5", "building"}))
	assert.Nil(t, Resolve(doc, []string{"property", "policy_number", "0"}))
	assert.Nil(t, Resolve(doc, []string{"property", "policy_number", "deeper"}))
	assert.Nil(t, Resolve(nil, []string{"anything"}))
}

func TestCompareBothPresentEqual(t *testing.T) {
	cert := mustJSON(t, `{"property": {"policy_number": "680-1234"}}`)
	policy := mustJSON(t, `{"property": {"policy_number": "680-1234"}}`)
	fields := []FieldPath{{
		Name:       "property.policy_number",
		CertPath:   []string{"property", "policy_number"},
		PolicyPath: []string{"property", "policy_number"},
	}}

	// default: matches not recorded
	out := (&Comparator{}).Compare(cert, policy, fields)
	assert.Empty(t, out.Records)
	assert.Equal(t, "pass", out.Status)

	// opt in to match records
	out = (&Comparator{RecordMatches: true}).Compare(cert, policy, fields)
	require.Len(t, out.Records, 1)
	assert.Equal(t, constants.StatusMatch, out.Records[0].Status)
	assert.Equal(t, "pass", out.Status)
}

func TestCompareNormalizedEquality(t *testing.T) {
	cert := mustJSON(t, `{"limits": {"each_occurrence": "$1,000,000"}}`)
	policy := mustJSON(t, `{"limits": {"each_occurrence": 1000000}}`)
	fields := []FieldPath{{
		Name:       "limits.each_occurrence",
		CertPath:   []string{"limits", "each_occurrence"},
		PolicyPath: []string{"limits", "each_occurrence"},
	}}

	out := (&Comparator{}).Compare(cert, policy, fields)
	assert.Empty(t, out.Records)
	assert.Equal(t, "pass", out.Status)
}

func TestCompareAsymmetricPresenceIsMismatch(t *testing.T) {
	cert := mustJSON(t, `{"limits": {"each_occurrence": "1,000,000"}}`)
	policy := mustJSON(t, `{"limits": {}}`)
	fields := []FieldPath{{
		Name:       "limits.each_occurrence",
		CertPath:   []string{"limits", "each_occurrence"},
		PolicyPath: []string{"limits", "each_occurrence"},
	}}

	out := (&Comparator{}).Compare(cert, policy, fields)

	require.Len(t, out.Records, 1)
	rec := out.Records[0]
	assert.Equal(t, constants.StatusMismatch, rec.Status)
	require.NotNil(t, rec.Certificate)
	assert.Equal(t, "1000000", *rec.Certificate)
	assert.Nil(t, rec.Policy)
	assert.Equal(t, "needs_review", out.Status)
}

func TestCompareBothAbsentSkipped(t *testing.T) {
	cert := mustJSON(t, `{"limits": {}}`)
	policy := mustJSON(t, `{"limits": {}}`)
	fields := []FieldPath{{
		Name:       "limits.each_occurrence",
		CertPath:   []string{"limits", "each_occurrence"},
		PolicyPath: []string{"limits", "each_occurrence"},
	}}

	out := (&Comparator{}).Compare(cert, policy, fields)

	assert.Empty(t, out.Records)
	assert.Empty(t, out.NotApplicable)
	assert.Equal(t, "pass", out.Status)
}

func TestCompareDifferingValuesRecorded(t *testing.T) {
	cert := mustJSON(t, `{"b": "$500,000"}`)
	policy := mustJSON(t, `{"b": "$750,000"}`)
	fields := []FieldPath{{Name: "b", CertPath: []string{"b"}, PolicyPath: []string{"b"}}}

	out := (&Comparator{}).Compare(cert, policy, fields)

	require.Len(t, out.Records, 1)
	assert.Equal(t, "500000", *out.Records[0].Certificate)
	assert.Equal(t, "750000", *out.Records[0].Policy)
	assert.Equal(t, constants.StatusMismatch, out.Records[0].Status)
}

func TestCompareMissingLocationsIsNotApplicable(t *testing.T) {
	cert := mustJSON(t, `{"property": {"policy_number": "680-1234"}}`)
	policy := mustJSON(t, `{"property": {"locations": [{"building": "$1,000"}]}}`)
	fields := []FieldPath{
		{
			Name:       "property.locations[0].building",
			CertPath:   []string{"property", "locations", "0", "building"},
			PolicyPath: []string{"property", "locations", "0", "building"},
		},
	}

	out := (&Comparator{}).Compare(cert, policy, fields)

	// Structurally inapplicable, not a both-nil skip and not a mismatch.
	assert.Empty(t, out.Records)
	assert.Equal(t, []string{"property.locations[0].building"}, out.NotApplicable)
	assert.Equal(t, "pass", out.Status)
}

func TestCompareDefaultFieldSet(t *testing.T) {
	cert := mustJSON(t, `{
		"property": {
			"policy_number": "680-1K111111",
			"locations": [{"building": "$1,320,000", "deductible": "$1,000"}]
		},
		"general_liability": {"limits": {"each_occurrence": "$1,000,000"}}
	}`)
	policy := mustJSON(t, `{
		"property": {
			"policy_number": "680-1K111111",
			"locations": [{"building": "$1,320,000", "deductible": "$2,500"}]
		},
		"general_liability": {"limits": {"each_occurrence": "$1,000,000"}}
	}`)

	out := (&Comparator{}).Compare(cert, policy, DefaultFieldSet())

	require.Len(t, out.Records, 1)
	assert.Equal(t, "property.locations[0].deductible", out.Records[0].Field)
	assert.Equal(t, "needs_review", out.Status)
}

func TestSummarize(t *testing.T) {
	records := []Record{
		{Status: constants.StatusMatch},
		{Status: constants.StatusMatch},
		{Status: constants.StatusMismatch},
		{Status: constants.StatusNotFound},
	}

	s := Summarize(records)

	assert.Equal(t, Summary{Total: 4, Matched: 2, Mismatched: 1, NotFound: 1}, s)
}

func TestCountStatusesIgnoresModelCounts(t *testing.T) {
	entries := []map[string]any{
		{"status": "MATCH"},
		{"status": "match"},
		{"status": "MISMATCH"},
		{"status": "NOT_FOUND"},
		{"status": "garbage"},
	}

	s := CountStatuses(entries)

	assert.Equal(t, Summary{Total: 5, Matched: 2, Mismatched: 1, NotFound: 1}, s)
}
