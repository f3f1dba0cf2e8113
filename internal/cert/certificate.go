// Package cert projects coverage items and additional interests out of a
// certificate JSON. Certificates arrive as generic maps; projections apply
// the domain's name-matching rules, never a fixed schema.
package cert

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/mudassirkhan-17/policyqc/constants"
	"github.com/mudassirkhan-17/policyqc/internal/common"
)

// CoverageItem is one named coverage read off the certificate.
type CoverageItem struct {
	Name  string                 `json:"name"`
	Value any                    `json:"value"`
	Kind  constants.CoverageKind `json:"kind"`
}

// AdditionalInterest is a mortgagee/loss-payee/additional-insured entry.
type AdditionalInterest struct {
	Name    string                 `json:"name"`
	Address string                 `json:"address,omitempty"`
	Type    constants.InterestType `json:"type,omitempty"`
}

// Certificate wraps a decoded certificate document.
type Certificate struct {
	Data map[string]any
}

// Parse decodes certificate JSON.
func Parse(raw []byte) (*Certificate, error) {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, common.NewAppError("CERT_PARSE_ERROR", "certificate is not valid JSON", err)
	}
	return &Certificate{Data: data}, nil
}

// coverages returns the certificate's coverage map, which keys coverage
// names to limit values.
func (c *Certificate) coverages() map[string]any {
	m, _ := c.Data["coverages"].(map[string]any)
	return m
}

// selectCoverages keeps coverage entries that pass include and are not
// caught by exclude, in sorted name order for determinism.
func (c *Certificate) selectCoverages(kind constants.CoverageKind, include func(string) bool, exclude []string) []CoverageItem {
	coverages := c.coverages()
	names := make([]string, 0, len(coverages))
	for name := range coverages {
		names = append(names, name)
	}
	sort.Strings(names)

	var items []CoverageItem
	for _, name := range names {
		n := strings.ToLower(strings.TrimSpace(name))
		if !include(n) {
			continue
		}
		excluded := false
		for _, kw := range exclude {
			if strings.Contains(n, kw) {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		items = append(items, CoverageItem{Name: strings.TrimSpace(name), Value: coverages[name], Kind: kind})
	}
	return items
}

// BuildingCoverages returns every coverage naming a building.
func (c *Certificate) BuildingCoverages() []CoverageItem {
	return c.selectCoverages(constants.CoverageBuilding, func(n string) bool {
		return strings.Contains(n, "building")
	}, nil)
}

// bppExtensions are coverage-extension lines that share BPP's name but are
// not the main limit.
var bppExtensions = []string{
	"off premises", "off-premises", "away from premises",
	"in transit", "transit", "portable storage", "temporarily",
	"newly acquired", "newly constructed", "coverage extension", "extension",
}

// BPPCoverages returns the main Business Personal Property limits,
// excluding off-premises/in-transit style extensions.
func (c *Certificate) BPPCoverages() []CoverageItem {
	return c.selectCoverages(constants.CoverageBPP, func(n string) bool {
		return strings.Contains(n, "business personal property") ||
			n == "bpp" ||
			strings.HasPrefix(n, "bpp ") ||
			strings.HasSuffix(n, " bpp")
	}, bppExtensions)
}

// moneySecuritiesExclusions are crime lines that mention money but are not
// the Money & Securities limit.
var moneySecuritiesExclusions = []string{
	"counterfeit", "money orders", "forgery", "alteration",
	"funds transfer", "computer fraud",
}

// MoneySecuritiesCoverages returns Money & Securities limits. The value may
// be a dollar limit, "Included", or an Inside/Outside split.
func (c *Certificate) MoneySecuritiesCoverages() []CoverageItem {
	return c.selectCoverages(constants.CoverageMoneySecurities, func(n string) bool {
		return (strings.Contains(n, "money") && strings.Contains(n, "secur")) ||
			strings.Contains(n, "money & securities") ||
			strings.Contains(n, "money and securities")
	}, moneySecuritiesExclusions)
}

// equipmentBreakdownExclusions are non-limit fields that appear near EB.
var equipmentBreakdownExclusions = []string{
	"deductible", "ded.", "coinsurance", "waiting period", "waiting",
	"service interruption",
}

// EquipmentBreakdownCoverages returns Equipment Breakdown (boiler &
// machinery) limits, excluding deductibles and similar non-limit fields.
func (c *Certificate) EquipmentBreakdownCoverages() []CoverageItem {
	return c.selectCoverages(constants.CoverageEquipmentBreakdown, func(n string) bool {
		return strings.Contains(n, "equipment breakdown") ||
			(strings.Contains(n, "equip") && strings.Contains(n, "breakdown")) ||
			strings.Contains(n, "boiler and machinery") ||
			strings.Contains(n, "boiler & machinery")
	}, equipmentBreakdownExclusions)
}

// AdditionalInterests returns the certificate's additional interests,
// accepting both the array form and the flat single-entry form. An empty
// result means the certificate names none.
func (c *Certificate) AdditionalInterests() []AdditionalInterest {
	if list, ok := c.Data["additional_interests"].([]any); ok {
		interests := make([]AdditionalInterest, 0, len(list))
		for _, entry := range list {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			name, _ := m["name"].(string)
			addr, _ := m["address"].(string)
			kind, _ := m["type"].(string)
			if name != "" {
				interests = append(interests, AdditionalInterest{Name: name, Address: addr, Type: ClassifyInterest(kind)})
			}
		}
		return interests
	}
	if name, ok := c.Data["additional_interest_name"].(string); ok && name != "" {
		addr, _ := c.Data["additional_interest_address"].(string)
		kind, _ := c.Data["additional_interest_type"].(string)
		return []AdditionalInterest{{Name: name, Address: addr, Type: ClassifyInterest(kind)}}
	}
	return nil
}

// ClassifyInterest maps a free-text interest role to its canonical type.
// Certificates spell these many ways ("Mortgagee/Loss Payee", "Mortgage
// Holder", ...); the first recognized role wins.
func ClassifyInterest(role string) constants.InterestType {
	r := strings.ToLower(role)
	switch {
	case strings.Contains(r, "mortgag"):
		return constants.InterestMortgagee
	case strings.Contains(r, "loss pay"):
		return constants.InterestLossPayee
	case strings.Contains(r, "lien"):
		return constants.InterestLienholder
	case strings.Contains(r, "secured"):
		return constants.InterestSecuredParty
	case strings.Contains(r, "additional insured"):
		return constants.InterestAdditionalInsured
	default:
		return constants.InterestOther
	}
}

var (
	parentheticalRe = regexp.MustCompile(`\([^)]*\)`)
	nonWordRe       = regexp.MustCompile(`[^\w\s]`)
	numericWordRe   = regexp.MustCompile(`^\d+[a-z]*$`)
)

var keywordStopWords = map[string]struct{}{
	"and": {}, "or": {}, "the": {}, "of": {}, "a": {}, "an": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "with": {},
	"by": {}, "from": {}, "as": {}, "is": {}, "was": {}, "are": {}, "be": {},
}

// ExtractKeywords pulls the meaningful words out of a coverage name for the
// page filter: parentheticals, stop words, numerics and short words go.
//
//	"Wind & Hail Deductible (3% subject to $25,000 min)" -> [wind hail deductible]
func ExtractKeywords(coverageName string) []string {
	cleaned := parentheticalRe.ReplaceAllString(coverageName, "")
	cleaned = nonWordRe.ReplaceAllString(strings.ToLower(cleaned), " ")

	var keywords []string
	for _, word := range strings.Fields(cleaned) {
		if _, stop := keywordStopWords[word]; stop {
			continue
		}
		if numericWordRe.MatchString(word) {
			continue
		}
		if len(word) < 3 {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

// AllKeywords collects the unique keywords across a set of coverage items,
// sorted for determinism.
func AllKeywords(items []CoverageItem) []string {
	set := make(map[string]struct{})
	for _, item := range items {
		for _, kw := range ExtractKeywords(item.Name) {
			set[kw] = struct{}{}
		}
	}
	keywords := make([]string, 0, len(set))
	for kw := range set {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)
	return keywords
}
