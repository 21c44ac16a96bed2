package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/po-export/internal/domain/export/service"
	"github.com/FACorreiaa/po-export/internal/domain/extract"
	"github.com/FACorreiaa/po-export/internal/domain/parser"
	"github.com/FACorreiaa/po-export/internal/domain/storemap"
	"github.com/FACorreiaa/po-export/internal/domain/vendor"
)

var (
	outputPath     string
	storeMapPath   string
	profilesPath   string
	pdftotextPath  string
	threshold      int
	timeoutSeconds int
	verbose        bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <pdf> [pdf...]",
	Short: "Convert one or more PO PDFs into a single CSV",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output CSV path (default: first input with .csv extension)")
	convertCmd.Flags().StringVar(&storeMapPath, "store-map", "", "name,store_id mapping table (CSV or XLSX)")
	convertCmd.Flags().StringVar(&profilesPath, "profiles", "", "vendor profiles YAML overriding the built-in set")
	convertCmd.Flags().StringVar(&pdftotextPath, "pdftotext", "pdftotext", "path to the pdftotext binary")
	convertCmd.Flags().IntVar(&threshold, "threshold", 75, "minimum store-name similarity score (0-100)")
	convertCmd.Flags().IntVar(&timeoutSeconds, "timeout", 30, "pdftotext timeout in seconds")
	convertCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	logger := newLogger(verbose)

	if threshold < 0 || threshold > 100 {
		return fmt.Errorf("threshold must be between 0 and 100, got %d", threshold)
	}

	extractor := extract.NewPdftotextExtractor(pdftotextPath, time.Duration(timeoutSeconds)*time.Second)
	if !extractor.Available() {
		return fmt.Errorf("pdftotext binary not found: %s", pdftotextPath)
	}

	profiles, err := vendor.Load(profilesPath)
	if err != nil {
		return err
	}

	var table []storemap.Entry
	if storeMapPath != "" {
		data, err := os.ReadFile(storeMapPath)
		if err != nil {
			return fmt.Errorf("failed to read store map: %w", err)
		}
		table, err = storemap.Load(storeMapPath, data)
		if err != nil {
			return err
		}
	}

	docs := make([]service.Document, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		docs = append(docs, service.Document{FileName: filepath.Base(path), Data: data})
	}

	svc := service.NewExportService(extractor, profiles, parser.NewRegistry(), threshold, nil, logger)

	result, err := svc.Export(cmd.Context(), docs, table)
	if err != nil {
		return err
	}

	out := outputPath
	if out == "" {
		out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".csv"
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer f.Close()

	csvData, err := result.CSV()
	if err != nil {
		return err
	}
	if _, err := f.Write(csvData); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	for _, s := range result.Summaries {
		vendorName := s.Vendor
		if vendorName == "" {
			vendorName = "unknown"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: vendor=%s rows=%d dropped=%d unresolved=%d\n",
			s.FileName, vendorName, s.Rows, s.Dropped, s.Unresolved)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(result.Rows), out)

	return nil
}

func newLogger(verbose bool) *slog.Logger {
	lvl := slog.LevelWarn
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
