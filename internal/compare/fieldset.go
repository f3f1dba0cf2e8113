package compare

// DefaultFieldSet is the standard certificate-vs-policy check table:
// identifying data, GL limits, first-location property limits, and
// policy-level property signals. Callers with carrier-specific layouts
// supply their own table.
func DefaultFieldSet() []FieldPath {
	return []FieldPath{
		{
			Name:       "property.policy_number",
			CertPath:   []string{"property", "policy_number"},
			PolicyPath: []string{"property", "policy_number"},
		},
		{
			Name:       "property.effective_date",
			CertPath:   []string{"property", "effective_date"},
			PolicyPath: []string{"property", "policy_period", "effective_date"},
		},
		{
			Name:       "property.expiration_date",
			CertPath:   []string{"property", "expiration_date"},
			PolicyPath: []string{"property", "policy_period", "expiration_date"},
		},
		{
			Name:       "gl.policy_number",
			CertPath:   []string{"general_liability", "policy_number"},
			PolicyPath: []string{"general_liability", "policy_number"},
		},
		{
			Name:       "gl.effective_date",
			CertPath:   []string{"general_liability", "effective_date"},
			PolicyPath: []string{"general_liability", "policy_period", "effective_date"},
		},
		{
			Name:       "gl.expiration_date",
			CertPath:   []string{"general_liability", "expiration_date"},
			PolicyPath: []string{"general_liability", "policy_period", "expiration_date"},
		},
		{
			Name:       "gl.limits.each_occurrence",
			CertPath:   []string{"general_liability", "limits", "each_occurrence"},
			PolicyPath: []string{"general_liability", "limits", "each_occurrence"},
		},
		{
			Name:       "gl.limits.general_aggregate",
			CertPath:   []string{"general_liability", "limits", "general_aggregate"},
			PolicyPath: []string{"general_liability", "limits", "general_aggregate"},
		},
		{
			Name:       "gl.limits.products_completed_operations_aggregate",
			CertPath:   []string{"general_liability", "limits", "products_completed_operations_aggregate"},
			PolicyPath: []string{"general_liability", "limits", "products_completed_operations_aggregate"},
		},
		{
			Name:       "gl.limits.personal_advertising_injury",
			CertPath:   []string{"general_liability", "limits", "personal_advertising_injury"},
			PolicyPath: []string{"general_liability", "limits", "personal_advertising_injury"},
		},
		{
			Name:       "gl.limits.damage_to_rented_premises",
			CertPath:   []string{"general_liability", "limits", "damage_to_rented_premises"},
			PolicyPath: []string{"general_liability", "limits", "damage_to_rented_premises"},
		},
		{
			Name:       "gl.limits.medical_expense",
			CertPath:   []string{"general_liability", "limits", "medical_expense"},
			PolicyPath: []string{"general_liability", "limits", "medical_expense"},
		},
		{
			Name:       "property.locations[0].business_personal_property",
			CertPath:   []string{"property", "locations", "0", "business_personal_property"},
			PolicyPath: []string{"property", "locations", "0", "business_personal_property"},
		},
		{
			Name:       "property.locations[0].building",
			CertPath:   []string{"property", "locations", "0", "building"},
			PolicyPath: []string{"property", "locations", "0", "building"},
		},
		{
			Name:       "property.locations[0].business_income",
			CertPath:   []string{"property", "locations", "0", "business_income"},
			PolicyPath: []string{"property", "locations", "0", "business_income"},
		},
		{
			Name:       "property.locations[0].deductible",
			CertPath:   []string{"property", "locations", "0", "deductible"},
			PolicyPath: []string{"property", "locations", "0", "deductible"},
		},
		{
			Name:       "policy.property.outdoor_signs_limit",
			CertPath:   []string{"property", "locations", "0", "outdoor_signs"},
			PolicyPath: []string{"property", "outdoor_signs_limit"},
		},
		{
			Name:       "policy.property.windstorm_or_hail",
			CertPath:   []string{"property", "locations", "0", "windstorm_or_hail"},
			PolicyPath: []string{"property", "windstorm_or_hail"},
		},
		{
			Name:       "policy.property.theft_sublimit",
			CertPath:   []string{"property", "locations", "0", "theft_sublimit"},
			PolicyPath: []string{"property", "theft_sublimit"},
		},
	}
}
