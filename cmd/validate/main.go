package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mudassirkhan-17/policyqc/internal/common"
	"github.com/mudassirkhan-17/policyqc/internal/export"
	"github.com/mudassirkhan-17/policyqc/internal/llm/openai"
	"github.com/mudassirkhan-17/policyqc/internal/pipeline"
	repo "github.com/mudassirkhan-17/policyqc/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		certPath   = flag.String("cert", "", "certificate JSON file (required)")
		policyA    = flag.String("policy", "", "policy OCR text file (required)")
		policyB    = flag.String("policy2", "", "second OCR extraction of the same policy (optional)")
		task       = flag.String("task", "coverage", "validation task: coverage | interests | extract")
		promptPath = flag.String("prompt", "", "extraction prompt file (required for -task=extract)")
		out        = flag.String("o", "report.json", "report output path")
		xlsxPath   = flag.String("xlsx", "", "also write an XLSX rendering of the report (optional)")
	)
	flag.Parse()

	if *certPath == "" || *policyA == "" {
		printError("Error: -cert and -policy are required\n")
		flag.Usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	certJSON, err := os.ReadFile(*certPath)
	if err != nil {
		logger.Error("failed to read certificate", "path", *certPath, "error", err)
		os.Exit(1)
	}
	policyText, err := os.ReadFile(*policyA)
	if err != nil {
		logger.Error("failed to read policy", "path", *policyA, "error", err)
		os.Exit(1)
	}

	input := pipeline.Input{
		CertificateJSON: certJSON,
		PolicyA:         string(policyText),
		CertificateFile: *certPath,
		PolicyFiles:     []string{*policyA},
	}
	if *policyB != "" {
		second, err := os.ReadFile(*policyB)
		if err != nil {
			logger.Error("failed to read policy", "path", *policyB, "error", err)
			os.Exit(1)
		}
		input.PolicyB = string(second)
		input.PolicyFiles = append(input.PolicyFiles, *policyB)
	}
	if *promptPath != "" {
		prompt, err := os.ReadFile(*promptPath)
		if err != nil {
			logger.Error("failed to read prompt", "path", *promptPath, "error", err)
			os.Exit(1)
		}
		input.PromptText = string(prompt)
	}

	client := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	runner := pipeline.NewRunner(client,
		pipeline.WithLogger(logger),
		pipeline.WithFilterConfig(cfg.Filter),
		pipeline.WithOCRSourceConfig(cfg.OCR),
		pipeline.WithModelName(cfg.LLM.Model),
	)

	ctx := context.Background()

	var rep *pipeline.Report
	var runErr error
	switch *task {
	case "interests":
		rep, runErr = runner.ValidateInterests(ctx, input)
	case "extract":
		rep, runErr = runner.ExtractAndCompare(ctx, input)
	case "coverage":
		rep, runErr = runner.ValidateCoverages(ctx, input)
	default:
		printError("Error: unknown task %q\n", *task)
		os.Exit(2)
	}

	// Always write the report, even for a failed run: a partial report with
	// explanatory qc_notes is still the deliverable.
	if rep != nil {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			logger.Error("failed to serialize report", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			logger.Error("failed to write report", "path", *out, "error", err)
			os.Exit(1)
		}
		logger.Info("report written", "path", *out, "run_id", rep.RunID, "status", rep.Status)

		if *xlsxPath != "" {
			xlsx, err := export.NewService(logger).ReportXLSX(rep)
			if err != nil {
				logger.Error("xlsx export failed", "error", err)
			} else if err := os.WriteFile(*xlsxPath, xlsx, 0o644); err != nil {
				logger.Error("failed to write xlsx", "path", *xlsxPath, "error", err)
			}
		}

		if cfg.Database.DSN != "" {
			persistRun(ctx, cfg, rep, logger)
		}
	}

	if runErr != nil {
		logger.Error("validation failed", "error", runErr)
		os.Exit(1)
	}
}

func persistRun(ctx context.Context, cfg *common.Config, rep *pipeline.Report, logger *slog.Logger) {
	pool, err := repo.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("run not persisted", "error", err)
		return
	}
	defer repo.Close(pool, logger)

	if err := repo.EnsureSchema(ctx, pool); err != nil {
		logger.Error("run not persisted", "error", err)
		return
	}
	if err := repo.NewRunRepository(pool, logger).SaveRun(ctx, rep); err != nil {
		logger.Error("run not persisted", "error", err)
	}
}
