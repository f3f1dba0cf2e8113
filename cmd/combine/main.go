package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mudassirkhan-17/policyqc/internal/common"
	"github.com/mudassirkhan-17/policyqc/internal/ocrtext"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		fileA  = flag.String("a", "", "first OCR extraction file (required)")
		fileB  = flag.String("b", "", "second OCR extraction file (required)")
		out    = flag.String("o", "combined.txt", "output file path")
		simple = flag.Bool("simple", false, "sectioned concatenation instead of page interleaving")
	)
	flag.Parse()

	if *fileA == "" || *fileB == "" {
		printError("Error: -a and -b are required\n")
		flag.Usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	textA, err := os.ReadFile(*fileA)
	if err != nil {
		logger.Error("failed to read extraction", "path", *fileA, "error", err)
		os.Exit(1)
	}
	textB, err := os.ReadFile(*fileB)
	if err != nil {
		logger.Error("failed to read extraction", "path", *fileB, "error", err)
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	merger := ocrtext.NewMerger(ocrtext.WithSourceLabels(cfg.OCR.SourceALabel, cfg.OCR.SourceBLabel))

	var combined string
	if *simple {
		combined = merger.CombineSimple(string(textA), string(textB))
	} else {
		combined = merger.Combine(string(textA), string(textB))
	}

	if err := os.WriteFile(*out, []byte(combined), 0o644); err != nil {
		logger.Error("failed to write combined document", "path", *out, "error", err)
		os.Exit(1)
	}

	pages, _ := ocrtext.NewSplitter().Split(combined)
	logger.Info("combined extractions",
		"source_a", *fileA,
		"source_b", *fileB,
		"output", *out,
		"pages", len(pages),
		"bytes", len(combined),
	)
}
