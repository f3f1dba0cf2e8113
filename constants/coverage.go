package constants

// CoverageKind identifies which certificate coverage family a check belongs to.
type CoverageKind string

const (
	CoverageBuilding           CoverageKind = "BUILDING"
	CoverageBPP                CoverageKind = "BPP" // Business Personal Property
	CoverageMoneySecurities    CoverageKind = "MONEY_SECURITIES"
	CoverageEquipmentBreakdown CoverageKind = "EQUIPMENT_BREAKDOWN"
	CoverageAdditionalInterest CoverageKind = "ADDITIONAL_INTEREST"
)

// InterestType categorizes a policy-side additional interest.
type InterestType string

const (
	InterestMortgagee         InterestType = "MORTGAGEE"
	InterestLossPayee         InterestType = "LOSS_PAYEE"
	InterestLienholder        InterestType = "LIENHOLDER"
	InterestSecuredParty      InterestType = "SECURED_PARTY"
	InterestAdditionalInsured InterestType = "ADDITIONAL_INSURED"
	InterestOther             InterestType = "OTHER"
)
