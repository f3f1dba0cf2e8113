package export

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mudassirkhan-17/policyqc/internal/common"
	"github.com/mudassirkhan-17/policyqc/internal/llm"
	"github.com/mudassirkhan-17/policyqc/internal/pipeline"
)

// Service produces XLSX bytes for validation reports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// sheet name per validation key, in report order.
var sheetNames = map[string]string{
	llm.KeyBuildingValidations:            "Building",
	llm.KeyBPPValidations:                 "BPP",
	llm.KeyMoneySecuritiesValidations:     "Money & Securities",
	llm.KeyEquipmentBreakdownValidations:  "Equipment Breakdown",
	llm.KeyAdditionalInterestsValidations: "Additional Interests",
}

// validationColumns follow the prompt output contracts: field names carry
// the coverage kind (cert_building_value, policy_ms_value, ...).
var validationColumns = []struct {
	header string
	keys   []string // first present key wins
}{
	{"Item", []string{"cert_building_name", "cert_bpp_name", "cert_ms_name", "cert_eb_name", "cert_interest_name"}},
	{"Certificate Value", []string{"cert_building_value", "cert_bpp_value", "cert_ms_value", "cert_eb_value"}},
	{"Policy Value", []string{"policy_building_value", "policy_bpp_value", "policy_ms_value", "policy_eb_value", "policy_interest_name"}},
	{"Status", []string{"status"}},
	{"Match Type", []string{"match_type"}},
	{"Evidence", []string{"evidence", "evidence_declarations", "evidence_endorsements"}},
	{"Notes", []string{"notes"}},
}

// ReportXLSX renders one run's validation arrays as a workbook, one sheet per
// populated validation key plus a Summary sheet.
func (s *Service) ReportXLSX(rep *pipeline.Report) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const summarySheet = "Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}

	writeCell := func(sheet string, col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	writeCell(summarySheet, 1, 1, "Run ID")
	writeCell(summarySheet, 2, 1, rep.RunID)
	writeCell(summarySheet, 1, 2, "Task")
	writeCell(summarySheet, 2, 2, string(rep.Task))
	writeCell(summarySheet, 1, 3, "Status")
	writeCell(summarySheet, 2, 3, string(rep.Status))
	writeCell(summarySheet, 1, 4, "Model")
	writeCell(summarySheet, 2, 4, rep.Metadata.Model)
	writeCell(summarySheet, 1, 5, "Generated At")
	writeCell(summarySheet, 2, 5, rep.Metadata.GeneratedAt.Format(time.RFC3339))

	row := 7
	if summary, ok := rep.Report["summary"].(map[string]any); ok {
		for _, k := range sortedKeys(summary) {
			writeCell(summarySheet, 1, row, k)
			writeCell(summarySheet, 2, row, fmt.Sprintf("%v", summary[k]))
			row++
		}
	}
	if notes, ok := rep.Report["qc_notes"].(string); ok && notes != "" {
		row++
		writeCell(summarySheet, 1, row, "QC Notes")
		writeCell(summarySheet, 2, row, notes)
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 34)
	_ = f.SetColWidth(summarySheet, "B", "B", 48)

	rows := 0
	keys := append(append([]string{}, llm.CoverageKeys...), llm.InterestKeys...)
	for _, key := range keys {
		entries, ok := rep.Report[key].([]any)
		if !ok || len(entries) == 0 {
			continue
		}
		sheet := sheetNames[key]
		if sheet == "" {
			sheet = key
		}
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}

		for i, col := range validationColumns {
			writeCell(sheet, i+1, 1, col.header)
		}
		for i, e := range entries {
			entry, ok := e.(map[string]any)
			if !ok {
				continue
			}
			for c, col := range validationColumns {
				writeCell(sheet, c+1, i+2, firstField(entry, col.keys))
			}
			rows++
		}
		_ = f.SetColWidth(sheet, "A", "C", 30)
		_ = f.SetColWidth(sheet, "D", "E", 16)
		_ = f.SetColWidth(sheet, "F", "G", 60)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, common.WrapError(err, "xlsx write")
	}

	s.logger.Info("export.xlsx.ok",
		"run_id", rep.RunID,
		"rows", rows,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func firstField(entry map[string]any, keys []string) string {
	for _, k := range keys {
		if v, ok := entry[k]; ok && v != nil {
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}

func sortedKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
