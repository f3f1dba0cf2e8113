package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mudassirkhan-17/policyqc/internal/llm"
)

func TestExtractFirstClassAmount(t *testing.T) {
	policy := "Coverage schedule\nClass 1\nPumps and dispensers\n$ 25,000\nClass 2 canopy $ 40,000\n"

	c1, ok := ExtractFirstClassAmount(policy, 1)
	require.True(t, ok)
	assert.Equal(t, "25000", c1)

	c2, ok := ExtractFirstClassAmount(policy, 2)
	require.True(t, ok)
	assert.Equal(t, "40000", c2)

	_, ok = ExtractFirstClassAmount("no classes here", 1)
	assert.False(t, ok)
}

func TestPolicyHasExplicitBuildingLimit(t *testing.T) {
	assert.True(t, PolicyHasExplicitBuildingLimit("1 1 Building $ 350,000"))
	assert.True(t, PolicyHasExplicitBuildingLimit("Building\n$ 983,892"))
	assert.True(t, PolicyHasExplicitBuildingLimit("Building  425,000"))

	// the form name is not a limit line
	assert.False(t, PolicyHasExplicitBuildingLimit("Building and Personal Property Coverage Form $ 1,000"))
	assert.False(t, PolicyHasExplicitBuildingLimit("All Personal Property $ 500,000"))
}

func TestPatchExtractionConstructionMisfiledAsBuilding(t *testing.T) {
	extracted := map[string]any{
		"policy": map[string]any{
			"property": map[string]any{
				"locations": []any{
					map[string]any{"building": "Frame"},
				},
			},
		},
	}

	PatchExtraction(extracted, "no limits here")

	loc := extracted["policy"].(map[string]any)["property"].(map[string]any)["locations"].([]any)[0].(map[string]any)
	assert.Nil(t, loc["building"])
	assert.Equal(t, "Frame", loc["construction"])
}

func TestPatchExtractionFillsPumpsAndCanopyFromClassLines(t *testing.T) {
	extracted := map[string]any{
		"policy": map[string]any{
			"property": map[string]any{
				"locations": []any{
					map[string]any{"pumps": "Included", "canopy": nil},
				},
			},
		},
	}
	policy := "Class 1 pumps $ 25,000\nClass 2 canopy $ 40,000"

	PatchExtraction(extracted, policy)

	loc := extracted["policy"].(map[string]any)["property"].(map[string]any)["locations"].([]any)[0].(map[string]any)
	assert.Equal(t, "25000", loc["pumps"])
	assert.Equal(t, "40000", loc["canopy"])
}

func TestPatchExtractionClearsBuildingDuplicatedFromBPP(t *testing.T) {
	extracted := map[string]any{
		"policy": map[string]any{
			"property": map[string]any{
				"locations": []any{
					map[string]any{
						"building":                   "$500,000",
						"business_personal_property": "500,000",
					},
				},
			},
		},
	}

	// no explicit Building limit in the policy text
	PatchExtraction(extracted, "All Personal Property $ 500,000")

	loc := extracted["policy"].(map[string]any)["property"].(map[string]any)["locations"].([]any)[0].(map[string]any)
	assert.Nil(t, loc["building"])

	// with an explicit Building line the value stays
	extracted2 := map[string]any{
		"policy": map[string]any{
			"property": map[string]any{
				"locations": []any{
					map[string]any{
						"building":                   "$500,000",
						"business_personal_property": "500,000",
					},
				},
			},
		},
	}
	PatchExtraction(extracted2, "1 1 Building $ 500,000")
	loc2 := extracted2["policy"].(map[string]any)["property"].(map[string]any)["locations"].([]any)[0].(map[string]any)
	assert.Equal(t, "$500,000", loc2["building"])
}

func TestRecomputeSummaryOverwritesModelCounts(t *testing.T) {
	report := map[string]any{
		llm.KeyAdditionalInterestsValidations: []any{
			map[string]any{"status": "MATCH"},
			map[string]any{"status": "NOT_FOUND"},
		},
		"summary": map[string]any{"total_additional_interests": 42},
	}

	RecomputeSummary(report, llm.InterestKeys)

	summary := report["summary"].(map[string]any)
	assert.Equal(t, 2, summary["total_additional_interests"])
	assert.Equal(t, 1, summary["additional_interests_matched"])
	assert.Equal(t, 0, summary["additional_interests_mismatched"])
	assert.Equal(t, 1, summary["additional_interests_not_found"])
}

func TestTagNameVariations(t *testing.T) {
	report := map[string]any{
		llm.KeyAdditionalInterestsValidations: []any{
			map[string]any{
				"cert_interest_name":   "DGR GOLDING LLC",
				"policy_interest_name": "DGR HOLDING LLC",
				"status":               "MISMATCH",
			},
			map[string]any{
				"cert_interest_name": "ABC BANK",
				"status":             "NOT_FOUND",
			},
			map[string]any{
				"cert_interest_name":   "ABC BANK",
				"policy_interest_name": "XYZ CREDIT UNION",
				"status":               "MISMATCH",
			},
		},
	}

	TagNameVariations(report)

	entries := entriesAt(report, llm.KeyAdditionalInterestsValidations)
	assert.Equal(t, "NAME_VARIATION", entries[0]["match_type"])
	assert.NotContains(t, entries[1], "match_type")
	assert.NotContains(t, entries[2], "match_type")
}
