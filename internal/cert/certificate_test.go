package cert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mudassirkhan-17/policyqc/constants"
)

func parseCert(t *testing.T, raw string) *Certificate {
	t.Helper()
	c, err := Parse([]byte(raw))
	require.NoError(t, err)
	return c
}

func TestParseRejectsBadJSON(t *testing.T) {
	_, err := Parse([]byte("not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CERT_PARSE_ERROR")
}

func TestBuildingCoverages(t *testing.T) {
	c := parseCert(t, `{"coverages": {
		"Building": "$1,320,000",
		"Building #2": "$90,000",
		"Business Personal Property": "$250,000"
	}}`)

	items := c.BuildingCoverages()

	require.Len(t, items, 2)
	assert.Equal(t, "Building", items[0].Name)
	assert.Equal(t, "Building #2", items[1].Name)
	assert.Equal(t, constants.CoverageBuilding, items[0].Kind)
}

func TestBPPCoveragesExcludeExtensions(t *testing.T) {
	c := parseCert(t, `{"coverages": {
		"Business Personal Property": "$250,000",
		"Business Personal Property Off Premises": "$15,000",
		"BPP In Transit": "$10,000",
		"Building": "$1,320,000"
	}}`)

	items := c.BPPCoverages()

	require.Len(t, items, 1)
	assert.Equal(t, "Business Personal Property", items[0].Name)
}

func TestMoneySecuritiesCoveragesExcludeCrimeLines(t *testing.T) {
	c := parseCert(t, `{"coverages": {
		"Money & Securities": "Inside $10,000 / Outside $10,000",
		"Money Orders and Counterfeit Money": "$1,000",
		"Forgery or Alteration": "$2,500"
	}}`)

	items := c.MoneySecuritiesCoverages()

	require.Len(t, items, 1)
	assert.Equal(t, "Money & Securities", items[0].Name)
}

func TestEquipmentBreakdownCoveragesExcludeDeductibles(t *testing.T) {
	c := parseCert(t, `{"coverages": {
		"Equipment Breakdown": "Included",
		"Equipment Breakdown Deductible": "$1,000",
		"Boiler & Machinery": "$50,000"
	}}`)

	items := c.EquipmentBreakdownCoverages()

	require.Len(t, items, 2)
	assert.Equal(t, "Boiler & Machinery", items[0].Name)
	assert.Equal(t, "Equipment Breakdown", items[1].Name)
}

func TestAdditionalInterestsArrayForm(t *testing.T) {
	c := parseCert(t, `{"additional_interests": [
		{"name": "ABC BANK", "address": "100 Main St", "type": "Mortgagee"},
		{"name": "XYZ CREDIT UNION"}
	]}`)

	interests := c.AdditionalInterests()

	require.Len(t, interests, 2)
	assert.Equal(t, "ABC BANK", interests[0].Name)
	assert.Equal(t, "100 Main St", interests[0].Address)
	assert.Equal(t, constants.InterestMortgagee, interests[0].Type)
	assert.Equal(t, "XYZ CREDIT UNION", interests[1].Name)
	assert.Equal(t, constants.InterestOther, interests[1].Type)
}

func TestAdditionalInterestsFlatForm(t *testing.T) {
	c := parseCert(t, `{
		"additional_interest_name": "ABC BANK",
		"additional_interest_address": "100 Main St"
	}`)

	interests := c.AdditionalInterests()

	require.Len(t, interests, 1)
	assert.Equal(t, "ABC BANK", interests[0].Name)
	assert.Equal(t, "100 Main St", interests[0].Address)
}

func TestAdditionalInterestsNone(t *testing.T) {
	c := parseCert(t, `{"coverages": {}}`)
	assert.Empty(t, c.AdditionalInterests())
}

func TestClassifyInterest(t *testing.T) {
	tests := []struct {
		in   string
		want constants.InterestType
	}{
		{"Mortgagee", constants.InterestMortgagee},
		{"Mortgage Holder", constants.InterestMortgagee},
		{"Loss Payee", constants.InterestLossPayee},
		{"Lienholder", constants.InterestLienholder},
		{"Secured Party", constants.InterestSecuredParty},
		{"Additional Insured", constants.InterestAdditionalInsured},
		{"", constants.InterestOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyInterest(tt.in), tt.in)
	}
}

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Wind and Hail", []string{"wind", "hail"}},
		{"Barns #1 & 2", []string{"barns"}},
		{"Business Income", []string{"business", "income"}},
		{"Wind & Hail Deductible (3% subject to $25,000 min)", []string{"wind", "hail", "deductible"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractKeywords(tt.in), tt.in)
	}
}

func TestAllKeywordsUniqueSorted(t *testing.T) {
	items := []CoverageItem{
		{Name: "Wind and Hail"},
		{Name: "Hail Deductible"},
	}

	assert.Equal(t, []string{"deductible", "hail", "wind"}, AllKeywords(items))
}
