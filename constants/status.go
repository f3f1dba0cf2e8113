package constants

// ValidationStatus classifies a single certificate-vs-policy check.
type ValidationStatus string

// Stable values (these exact strings appear in reports and in the DB).
const (
	StatusMatch    ValidationStatus = "MATCH"     // policy corroborates the certificate value
	StatusMismatch ValidationStatus = "MISMATCH"  // values differ, or one side is silent
	StatusNotFound ValidationStatus = "NOT_FOUND" // coverage not located in the policy at all
)

// MatchType qualifies how a name comparison was decided.
type MatchType string

const (
	MatchExact         MatchType = "EXACT"
	MatchNameVariation MatchType = "NAME_VARIATION" // likely same entity, OCR-level difference
)

// RunStatus is the canonical status for a validation run.
type RunStatus string

const (
	RunQueued   RunStatus = "QUEUED"
	RunRunning  RunStatus = "RUNNING"
	RunPass     RunStatus = "PASS"         // deterministic QC found no mismatches
	RunReview   RunStatus = "NEEDS_REVIEW" // at least one mismatch surfaced
	RunFailed   RunStatus = "FAILED"       // terminal failure (bad input, LLM error)
	RunNoChecks RunStatus = "NO_CHECKS"    // nothing on the certificate to validate
)
