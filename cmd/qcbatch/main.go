package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mudassirkhan-17/policyqc/internal/async"
	"github.com/mudassirkhan-17/policyqc/internal/common"
	"github.com/mudassirkhan-17/policyqc/internal/export"
	"github.com/mudassirkhan-17/policyqc/internal/llm/openai"
	"github.com/mudassirkhan-17/policyqc/internal/pipeline"
	repo "github.com/mudassirkhan-17/policyqc/internal/repository"
)

// manifestEntry is one document set in the batch manifest.
type manifestEntry struct {
	RunID       string `json:"run_id,omitempty"`
	Task        string `json:"task"` // coverage | interests | extract
	Certificate string `json:"certificate"`
	Policy      string `json:"policy"`
	Policy2     string `json:"policy2,omitempty"`
	Prompt      string `json:"prompt,omitempty"`
}

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		manifestPath = flag.String("manifest", "", "JSON manifest of document sets (required)")
		outDir       = flag.String("outdir", "reports", "directory for report JSON files")
		workers      = flag.Int("workers", 4, "concurrent validation workers")
		writeXLSX    = flag.Bool("xlsx", false, "also write an XLSX per report")
	)
	flag.Parse()

	if *manifestPath == "" {
		printError("Error: -manifest is required\n")
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

	entries, err := readManifest(*manifestPath)
	if err != nil {
		logger.Error("failed to read manifest", "path", *manifestPath, "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Error("failed to create output directory", "path", *outDir, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	var runs repo.RunRepository
	if cfg.Database.DSN != "" {
		pool, err := repo.Open(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("database unavailable, reports will only be written to disk", "error", err)
		} else {
			defer repo.Close(pool, logger)
			if err := repo.EnsureSchema(ctx, pool); err != nil {
				logger.Error("schema setup failed, reports will only be written to disk", "error", err)
			} else {
				runs = repo.NewRunRepository(pool, logger)
			}
		}
	}

	exporter := export.NewService(logger)
	queue := async.NewValidationQueue(runner, logger,
		async.WithWorkers(*workers),
		async.WithResultFunc(func(job async.Job, rep *pipeline.Report, err error) {
			if rep == nil {
				logger.Error("job produced no report", "job_id", job.ID, "error", err)
				return
			}
			saveReport(rep, *outDir, *writeXLSX, exporter, logger)
			if runs != nil {
				if dbErr := runs.SaveRun(context.Background(), rep); dbErr != nil {
					logger.Error("run not persisted", "run_id", rep.RunID, "error", dbErr)
				}
			}
		}),
	)

	queued := 0
	for i, e := range entries {
		input, task, err := loadEntry(e)
		if err != nil {
			logger.Error("skipping manifest entry", "index", i, "error", err)
			continue
		}
		if err := queue.Enqueue(ctx, async.Job{
			ID:          uuid.New(),
			Task:        task,
			Input:       input,
			SubmittedAt: time.Now(),
		}); err != nil {
			logger.Error("enqueue failed", "index", i, "error", err)
			continue
		}
		queued++
	}
	logger.Info("batch queued", "entries", len(entries), "queued", queued)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	queue.Shutdown(shutdownCtx)
}

func readManifest(path string) ([]manifestEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []manifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func loadEntry(e manifestEntry) (pipeline.Input, pipeline.Task, error) {
	var task pipeline.Task
	switch e.Task {
	case "interests":
		task = pipeline.TaskInterests
	case "extract":
		task = pipeline.TaskExtractQC
	case "coverage", "":
		task = pipeline.TaskCoverage
	default:
		return pipeline.Input{}, "", fmt.Errorf("unknown task %q", e.Task)
	}

	certJSON, err := os.ReadFile(e.Certificate)
	if err != nil {
		return pipeline.Input{}, "", err
	}
	policy, err := os.ReadFile(e.Policy)
	if err != nil {
		return pipeline.Input{}, "", err
	}

	input := pipeline.Input{
		RunID:           e.RunID,
		CertificateJSON: certJSON,
		PolicyA:         string(policy),
		CertificateFile: e.Certificate,
		PolicyFiles:     []string{e.Policy},
	}
	if e.Policy2 != "" {
		second, err := os.ReadFile(e.Policy2)
		if err != nil {
			return pipeline.Input{}, "", err
		}
		input.PolicyB = string(second)
		input.PolicyFiles = append(input.PolicyFiles, e.Policy2)
	}
	if e.Prompt != "" {
		prompt, err := os.ReadFile(e.Prompt)
		if err != nil {
			return pipeline.Input{}, "", err
		}
		input.PromptText = string(prompt)
	}
	return input, task, nil
}

func saveReport(rep *pipeline.Report, outDir string, writeXLSX bool, exporter *export.Service, logger *slog.Logger) {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		logger.Error("failed to serialize report", "run_id", rep.RunID, "error", err)
		return
	}
	path := filepath.Join(outDir, rep.RunID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Error("failed to write report", "path", path, "error", err)
		return
	}
	logger.Info("report written", "path", path, "run_id", rep.RunID, "status", rep.Status)

	if writeXLSX {
		xlsx, err := exporter.ReportXLSX(rep)
		if err != nil {
			logger.Error("xlsx export failed", "run_id", rep.RunID, "error", err)
			return
		}
		xlsxFile := filepath.Join(outDir, rep.RunID+".xlsx")
		if err := os.WriteFile(xlsxFile, xlsx, 0o644); err != nil {
			logger.Error("failed to write xlsx", "path", xlsxFile, "error", err)
		}
	}
}
