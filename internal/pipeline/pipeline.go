// Package pipeline orchestrates one validation run: merge the OCR sources,
// project the certificate, filter the policy pages, ask the model, then
// post-process and deterministically re-check the answer.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mudassirkhan-17/policyqc/constants"
	"github.com/mudassirkhan-17/policyqc/internal/cert"
	"github.com/mudassirkhan-17/policyqc/internal/common"
	"github.com/mudassirkhan-17/policyqc/internal/compare"
	"github.com/mudassirkhan-17/policyqc/internal/llm"
	"github.com/mudassirkhan-17/policyqc/internal/ocrtext"
	"github.com/mudassirkhan-17/policyqc/internal/pagefilter"
)

// Task names a validation flow.
type Task string

const (
	TaskCoverage  Task = "coverage"
	TaskInterests Task = "additional_interests"
	TaskExtractQC Task = "extract_qc"
)

// additionalInterestKeywords hit schedules, clauses and column headers
// naming additional interests.
var additionalInterestKeywords = []string{
	"additional interest", "additional interests",
	"additional insured", "additional insureds",
	"mortgagee", "mortgage holder", "mortgage holders", "mortgagees",
	"loss payee", "loss payable",
	"lienholder", "lien holder",
	"secured party", "secured parties",
	"payee",
	"mortgage holder name", "mortgagee address",
	"mortgagee city", "mortgagee city state zipcode",
}

// Input is one document set.
type Input struct {
	RunID           string // generated when empty
	CertificateJSON []byte
	// PolicyA is the first OCR source. When PolicyB is empty, PolicyA is
	// treated as an already-combined document.
	PolicyA string
	PolicyB string
	// PromptText overrides the built-in prompt; required for TaskExtractQC,
	// whose prompts ship as external files.
	PromptText string

	CertificateFile string
	PolicyFiles     []string
}

// Metadata describes how a report was produced.
type Metadata struct {
	CertificateFile string             `json:"certificate_file,omitempty"`
	PolicyFiles     []string           `json:"policy_files,omitempty"`
	Model           string             `json:"model,omitempty"`
	Filter          *pagefilter.Result `json:"page_filter,omitempty"`
	Usage           llm.TokenUsage     `json:"token_usage"`
	Diagnostics     []string           `json:"diagnostics,omitempty"`
	GeneratedAt     time.Time          `json:"generated_at"`
}

// Report is the run's output, suitable for direct serialization. A failed
// model call still yields a Report carrying whatever partial result exists.
type Report struct {
	RunID          string                   `json:"run_id"`
	Task           Task                     `json:"task"`
	Status         constants.RunStatus      `json:"status"`
	Report         map[string]any           `json:"report"`
	QC             *compare.Outcome         `json:"qc,omitempty"`
	InterestChecks []compare.InterestRecord `json:"interest_checks,omitempty"`
	Metadata       Metadata                 `json:"metadata"`
}

// Runner executes validation runs.
type Runner struct {
	validator  llm.Validator
	splitter   *ocrtext.Splitter
	merger     *ocrtext.Merger
	filter     *pagefilter.Filter
	comparator *compare.Comparator
	fieldSet   []compare.FieldPath
	filterCfg  common.FilterConfig
	ocrCfg     common.OCRSourceConfig
	modelName  string
	logger     *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithFilterConfig sets the page-filter defaults.
func WithFilterConfig(cfg common.FilterConfig) RunnerOption {
	return func(r *Runner) { r.filterCfg = cfg }
}

// WithOCRSourceConfig sets the OCR source labels.
func WithOCRSourceConfig(cfg common.OCRSourceConfig) RunnerOption {
	return func(r *Runner) {
		r.ocrCfg = cfg
		r.merger = ocrtext.NewMerger(ocrtext.WithSourceLabels(cfg.SourceALabel, cfg.SourceBLabel))
	}
}

// WithFieldSet replaces the deterministic QC field-path table.
func WithFieldSet(fields []compare.FieldPath) RunnerOption {
	return func(r *Runner) { r.fieldSet = fields }
}

// WithComparator replaces the comparator, e.g. to record matches.
func WithComparator(c *compare.Comparator) RunnerOption {
	return func(r *Runner) {
		if c != nil {
			r.comparator = c
		}
	}
}

// WithModelName records the model in report metadata.
func WithModelName(name string) RunnerOption {
	return func(r *Runner) { r.modelName = name }
}

// NewRunner creates a Runner around a Validator.
func NewRunner(validator llm.Validator, opts ...RunnerOption) *Runner {
	r := &Runner{
		validator:  validator,
		splitter:   ocrtext.NewSplitter(),
		merger:     ocrtext.NewMerger(),
		filter:     pagefilter.New(),
		comparator: &compare.Comparator{},
		fieldSet:   compare.DefaultFieldSet(),
		filterCfg: common.FilterConfig{
			MinDollarAmount: 200,
			NeighborRadius:  1,
			MaxPages:        25,
		},
		ocrCfg: common.OCRSourceConfig{
			SourceALabel: "TESSERACT (Buffer=1)",
			SourceBLabel: "PYMUPDF (Buffer=0)",
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// pages splits or merges the policy inputs into one page map.
func (r *Runner) pages(in Input) (ocrtext.PageMap, []string) {
	if in.PolicyB != "" {
		return r.merger.MergeInterleaved(in.PolicyA, in.PolicyB), nil
	}
	return r.splitter.Split(in.PolicyA)
}

func (r *Runner) newReport(ctx context.Context, in Input, task Task) *Report {
	runID := in.RunID
	if runID == "" {
		runID = common.RunIDFromContext(ctx)
	}
	if runID == "" {
		runID = uuid.New().String()
	}
	return &Report{
		RunID:  runID,
		Task:   task,
		Status: constants.RunRunning,
		Report: map[string]any{},
		Metadata: Metadata{
			CertificateFile: in.CertificateFile,
			PolicyFiles:     in.PolicyFiles,
			Model:           r.modelName,
			GeneratedAt:     time.Now().UTC(),
		},
	}
}

// fail marks the report failed but keeps it writable: partial results are
// always persisted, with the reason in qc_notes.
func (r *Runner) fail(rep *Report, err error) (*Report, error) {
	rep.Status = constants.RunFailed
	rep.Report["qc_notes"] = "run failed: " + err.Error()
	return rep, err
}

// ValidateInterests checks the certificate's additional interests against
// the policy.
func (r *Runner) ValidateInterests(ctx context.Context, in Input) (*Report, error) {
	rep := r.newReport(ctx, in, TaskInterests)
	start := time.Now()
	r.logger.Info("pipeline.interests.start", "run_id", rep.RunID)

	certificate, err := cert.Parse(in.CertificateJSON)
	if err != nil {
		return r.fail(rep, err)
	}
	interests := certificate.AdditionalInterests()

	pages, diags := r.pages(in)
	rep.Metadata.Diagnostics = diags

	res := r.filter.Select(pages, pagefilter.Criteria{
		Keywords:        additionalInterestKeywords,
		MinDollarAmount: r.filterCfg.MinDollarAmount,
		NeighborRadius:  r.filterCfg.NeighborRadius,
		MaxPages:        r.filterCfg.MaxPages,
	})
	rep.Metadata.Filter = &res

	if len(res.Pages) == 0 {
		// Valid negative: nothing qualified, so nothing goes to the model.
		rep.Report[llm.KeyAdditionalInterestsValidations] = []any{}
		RecomputeSummary(rep.Report, llm.InterestKeys)
		if len(interests) == 0 {
			rep.Status = constants.RunNoChecks
			rep.Report["qc_notes"] = "certificate names no additional interests and no policy page matched the criteria"
			return rep, nil
		}
		rep.Report["qc_notes"] = "no policy page matched the criteria; certificate interests could not be located"
		rep.InterestChecks = compare.CompareInterests(interestNames(interests), nil)
		rep.Status = constants.RunReview
		return rep, nil
	}

	prompt := llm.BuildAdditionalInterestsPrompt(llm.InterestsPromptInput{
		InsuredName:     stringField(certificate.Data, "insured_name"),
		PolicyNumber:    stringField(certificate.Data, "policy_number"),
		LocationAddress: stringField(certificate.Data, "location_address"),
		Interests:       interests,
		PolicyText:      pagefilter.JoinPages(pages, res.Pages),
		SourceALabel:    r.ocrCfg.SourceALabel,
		SourceBLabel:    r.ocrCfg.SourceBLabel,
	})

	result, err := r.validator.Validate(common.WithRequestID(ctx, rep.RunID), llm.Request{Prompt: prompt, SchemaKeys: llm.InterestKeys})
	rep.Metadata.Usage = result.Usage
	if err != nil {
		rep.Report[llm.KeyAdditionalInterestsValidations] = []any{}
		RecomputeSummary(rep.Report, llm.InterestKeys)
		return r.fail(rep, err)
	}
	rep.Report = result.Report

	TagNameVariations(rep.Report)
	RecomputeSummary(rep.Report, llm.InterestKeys)

	rep.InterestChecks = compare.CompareInterests(interestNames(interests), policyInterestNames(rep.Report))
	rep.Status = runStatus(rep.InterestChecks)

	r.logger.Info("pipeline.interests.ok",
		"run_id", rep.RunID,
		"status", rep.Status,
		"interests", len(interests),
		"kept_pages", len(res.Pages),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rep, nil
}

// ValidateCoverages checks building, BPP, Money & Securities and Equipment
// Breakdown limits against the policy.
func (r *Runner) ValidateCoverages(ctx context.Context, in Input) (*Report, error) {
	rep := r.newReport(ctx, in, TaskCoverage)
	start := time.Now()
	r.logger.Info("pipeline.coverage.start", "run_id", rep.RunID)

	certificate, err := cert.Parse(in.CertificateJSON)
	if err != nil {
		return r.fail(rep, err)
	}

	buildings := certificate.BuildingCoverages()
	bpp := certificate.BPPCoverages()
	ms := certificate.MoneySecuritiesCoverages()
	eb := certificate.EquipmentBreakdownCoverages()

	if len(buildings)+len(bpp)+len(ms)+len(eb) == 0 {
		rep.Status = constants.RunNoChecks
		rep.Report["qc_notes"] = "certificate carries no coverages this task validates"
		for _, key := range llm.CoverageKeys {
			rep.Report[key] = []any{}
		}
		RecomputeSummary(rep.Report, llm.CoverageKeys)
		return rep, nil
	}

	pages, diags := r.pages(in)
	rep.Metadata.Diagnostics = diags

	keywords := cert.AllKeywords(concatItems(buildings, bpp, ms, eb))
	res := r.filter.Select(pages, pagefilter.Criteria{
		Keywords:        keywords,
		MinDollarAmount: r.filterCfg.MinDollarAmount,
		NeighborRadius:  r.filterCfg.NeighborRadius,
		MaxPages:        r.filterCfg.MaxPages,
	})
	rep.Metadata.Filter = &res

	policyText := pagefilter.JoinPages(pages, res.Pages)
	if len(res.Pages) == 0 {
		// fall back to the whole document rather than sending nothing
		policyText = pagefilter.JoinPages(pages, pages.Numbers())
	}

	coverages, _ := certificate.Data["coverages"].(map[string]any)
	prompt := llm.BuildCoverageValidationPrompt(llm.CoveragePromptInput{
		InsuredName:        stringField(certificate.Data, "insured_name"),
		PolicyNumber:       stringField(certificate.Data, "policy_number"),
		LocationAddress:    stringField(certificate.Data, "location_address"),
		AllCoverages:       coverages,
		Buildings:          buildings,
		BPP:                bpp,
		MoneySecurities:    ms,
		EquipmentBreakdown: eb,
		PolicyText:         policyText,
		SourceALabel:       r.ocrCfg.SourceALabel,
		SourceBLabel:       r.ocrCfg.SourceBLabel,
	})

	result, err := r.validator.Validate(common.WithRequestID(ctx, rep.RunID), llm.Request{Prompt: prompt, SchemaKeys: llm.CoverageKeys})
	rep.Metadata.Usage = result.Usage
	if err != nil {
		for _, key := range llm.CoverageKeys {
			rep.Report[key] = []any{}
		}
		RecomputeSummary(rep.Report, llm.CoverageKeys)
		return r.fail(rep, err)
	}
	rep.Report = result.Report
	RecomputeSummary(rep.Report, llm.CoverageKeys)

	rep.Status = constants.RunPass
	for _, key := range llm.CoverageKeys {
		if compare.CountStatuses(entriesAt(rep.Report, key)).Mismatched > 0 {
			rep.Status = constants.RunReview
			break
		}
	}

	r.logger.Info("pipeline.coverage.ok",
		"run_id", rep.RunID,
		"status", rep.Status,
		"kept_pages", len(res.Pages),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rep, nil
}

// ExtractAndCompare runs a caller-supplied extraction prompt over the whole
// policy, patches the extraction, and re-checks certificate vs policy with
// the deterministic comparator.
func (r *Runner) ExtractAndCompare(ctx context.Context, in Input) (*Report, error) {
	rep := r.newReport(ctx, in, TaskExtractQC)
	start := time.Now()
	r.logger.Info("pipeline.extract.start", "run_id", rep.RunID)

	if in.PromptText == "" {
		return r.fail(rep, common.NewAppError("PIPELINE_ERROR", "extract task requires a prompt", common.ErrInvalidInput))
	}

	result, err := r.validator.Validate(common.WithRequestID(ctx, rep.RunID), llm.Request{
		Prompt:    in.PromptText,
		Documents: []string{in.PolicyA, string(in.CertificateJSON)},
	})
	rep.Metadata.Usage = result.Usage
	if err != nil {
		return r.fail(rep, err)
	}
	rep.Report = result.Report

	PatchExtraction(rep.Report, in.PolicyA)

	certRecord, _ := rep.Report["certificate"].(map[string]any)
	policyRecord, _ := rep.Report["policy"].(map[string]any)
	outcome := r.comparator.Compare(certRecord, policyRecord, r.fieldSet)
	rep.QC = &outcome

	if outcome.Status == "pass" {
		rep.Status = constants.RunPass
	} else {
		rep.Status = constants.RunReview
	}

	r.logger.Info("pipeline.extract.ok",
		"run_id", rep.RunID,
		"status", rep.Status,
		"mismatches", len(outcome.Records),
		"not_applicable", len(outcome.NotApplicable),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rep, nil
}

// policyInterestNames gathers the policy-side entity names the model
// surfaced: a top-level additional_interests list plus the per-validation
// policy_interest_name fields.
func policyInterestNames(report map[string]any) []string {
	var names []string
	if list, ok := report["additional_interests"].([]any); ok {
		for _, e := range list {
			if m, ok := e.(map[string]any); ok {
				if name, _ := m["name"].(string); name != "" {
					names = append(names, name)
				}
			}
		}
	}
	for _, entry := range entriesAt(report, llm.KeyAdditionalInterestsValidations) {
		if name, _ := entry["policy_interest_name"].(string); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func runStatus(records []compare.InterestRecord) constants.RunStatus {
	if len(records) == 0 {
		return constants.RunNoChecks
	}
	for _, rec := range records {
		if rec.Status != constants.StatusMatch {
			return constants.RunReview
		}
	}
	return constants.RunPass
}

func interestNames(interests []cert.AdditionalInterest) []string {
	names := make([]string, 0, len(interests))
	for _, ai := range interests {
		names = append(names, ai.Name)
	}
	return names
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func concatItems(lists ...[]cert.CoverageItem) []cert.CoverageItem {
	var all []cert.CoverageItem
	for _, l := range lists {
		all = append(all, l...)
	}
	return all
}
