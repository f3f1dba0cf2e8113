package compare

import (
	"strings"

	"github.com/mudassirkhan-17/policyqc/constants"
)

// InterestRecord is one certificate additional interest checked against the
// policy's entries by name.
type InterestRecord struct {
	CertName   string                     `json:"cert_name"`
	PolicyName *string                    `json:"policy_name"`
	Status     constants.ValidationStatus `json:"status"`
	MatchType  constants.MatchType        `json:"match_type,omitempty"`
}

// CompareInterests checks every certificate interest against the policy's
// names. Named-entity matching is case-insensitive exact; a likely OCR
// variation is still a MISMATCH, tagged NAME_VARIATION; no candidate at all
// is NOT_FOUND.
func CompareInterests(certNames, policyNames []string) []InterestRecord {
	records := make([]InterestRecord, 0, len(certNames))
	for _, cn := range certNames {
		rec := InterestRecord{CertName: cn, Status: constants.StatusNotFound}
		for _, pn := range policyNames {
			if strings.EqualFold(strings.TrimSpace(cn), strings.TrimSpace(pn)) {
				name := pn
				rec.PolicyName = &name
				rec.Status = constants.StatusMatch
				rec.MatchType = constants.MatchExact
				break
			}
		}
		if rec.Status == constants.StatusNotFound {
			for _, pn := range policyNames {
				if IsNameVariation(cn, pn) {
					name := pn
					rec.PolicyName = &name
					rec.Status = constants.StatusMismatch
					rec.MatchType = constants.MatchNameVariation
					break
				}
			}
		}
		records = append(records, rec)
	}
	return records
}
