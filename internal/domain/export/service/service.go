// Package service orchestrates the export pipeline: extract text, detect the
// vendor, parse line items, stamp header fields, resolve store ids and
// assemble CSV rows.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/FACorreiaa/po-export/internal/domain/export"
	"github.com/FACorreiaa/po-export/internal/domain/extract"
	"github.com/FACorreiaa/po-export/internal/domain/parser"
	"github.com/FACorreiaa/po-export/internal/domain/storemap"
	"github.com/FACorreiaa/po-export/internal/domain/vendor"
	"github.com/FACorreiaa/po-export/pkg/metrics"
)

// Document is one uploaded PDF with its original filename.
type Document struct {
	FileName string
	Data     []byte
}

// FileSummary reports what happened to one document.
type FileSummary struct {
	FileName   string
	Vendor     string // empty when no vendor was recognized
	Rows       int
	Dropped    int // line items lost to unparseable numerics
	Unresolved int // rows emitted with an empty store_id
}

// Result is the outcome of one export request. Rows preserve per-file input
// order; documents concatenate in upload order.
type Result struct {
	Rows      []export.Row
	Summaries []FileSummary
}

// CSV serializes the result with the fixed 7-column header.
func (r *Result) CSV() ([]byte, error) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, r.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportService runs the pipeline. A single instance is shared across
// requests; each export is independent and carries no state between runs.
type ExportService struct {
	extractor extract.Extractor
	detector  *vendor.Detector
	registry  *vendor.Registry
	parsers   *parser.Registry
	threshold int
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewExportService wires the pipeline stages together.
func NewExportService(
	extractor extract.Extractor,
	registry *vendor.Registry,
	parsers *parser.Registry,
	threshold int,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ExportService {
	return &ExportService{
		extractor: extractor,
		detector:  vendor.NewDetector(registry),
		registry:  registry,
		parsers:   parsers,
		threshold: threshold,
		metrics:   m,
		logger:    logger,
	}
}

// Export converts the uploaded documents into CSV rows. Only extraction
// failure aborts: everything downstream degrades to best-effort rows. The
// optional store map drives fuzzy store_id resolution; without it every
// store_id stays empty.
func (s *ExportService) Export(ctx context.Context, docs []Document, table []storemap.Entry) (*Result, error) {
	start := time.Now()
	resolver := storemap.NewResolver(table, s.threshold)

	result := &Result{}
	for _, doc := range docs {
		summary, rows, err := s.exportOne(ctx, doc, resolver)
		if err != nil {
			if s.metrics != nil {
				s.metrics.ExportsTotal.WithLabelValues("failed").Inc()
				s.metrics.ExtractionFailures.Inc()
			}
			return nil, fmt.Errorf("%s: %w", doc.FileName, err)
		}
		result.Rows = append(result.Rows, rows...)
		result.Summaries = append(result.Summaries, summary)
	}

	if s.metrics != nil {
		s.metrics.ExportsTotal.WithLabelValues("ok").Inc()
		s.metrics.ExportDuration.Observe(time.Since(start).Seconds())
	}

	return result, nil
}

func (s *ExportService) exportOne(ctx context.Context, doc Document, resolver *storemap.Resolver) (FileSummary, []export.Row, error) {
	summary := FileSummary{FileName: doc.FileName}

	text, err := s.extractor.ExtractText(ctx, doc.Data)
	if err != nil {
		return summary, nil, err
	}

	profile, parsed := s.parse(text)
	if profile != nil {
		summary.Vendor = profile.Name

		header := profile.ExtractHeader(text)
		parsed.ApplyHeader(header.StoreName, header.SalesID, header.OrderDate)
	}

	summary.Dropped = len(parsed.Errors)
	for _, parseErr := range parsed.Errors {
		s.logger.Warn("dropped line item",
			slog.String("file", doc.FileName),
			slog.Int("line", parseErr.Line),
			slog.String("reason", parseErr.Message),
		)
	}
	if s.metrics != nil {
		s.metrics.RowsParsed.Add(float64(parsed.ParsedRows))
		s.metrics.RowsDropped.Add(float64(len(parsed.Errors)))
	}

	if len(parsed.Records) == 0 {
		s.logger.Warn("no line items recognized",
			slog.String("file", doc.FileName),
			slog.Any("keyword_hits", s.detector.KeywordHits(text)),
		)
		return summary, nil, nil
	}

	rows := make([]export.Row, 0, len(parsed.Records))
	for _, rec := range parsed.Records {
		storeID := ""
		if match := resolver.Resolve(rec.Name); match != nil {
			storeID = match.StoreID
			if s.metrics != nil {
				s.metrics.ResolutionHits.Inc()
			}
		} else {
			summary.Unresolved++
			if s.metrics != nil {
				s.metrics.ResolutionMisses.Inc()
			}
		}
		rows = append(rows, export.NewRow(rec, storeID))
	}

	summary.Rows = len(rows)
	return summary, rows, nil
}

// parse picks the vendor parser by keyword detection; when no vendor is
// recognized it runs every parser and keeps whichever yields the most rows.
func (s *ExportService) parse(text string) (*vendor.Profile, *parser.ParseResult) {
	if profile := s.detector.Detect(text); profile != nil {
		if p := s.parsers.ForVendor(profile.Name); p != nil {
			return profile, p.Parse(text)
		}
	}

	var bestProfile *vendor.Profile
	var best *parser.ParseResult
	for _, p := range s.parsers.All() {
		candidate := p.Parse(text)
		if best == nil || candidate.ParsedRows > best.ParsedRows {
			best = candidate
			if candidate.ParsedRows > 0 {
				bestProfile = s.registry.Get(p.Vendor())
			}
		}
	}
	return bestProfile, best
}

// IsExtractionError reports whether err is the fatal extraction class, so
// transports can map it to a client-visible failure.
func IsExtractionError(err error) bool {
	var exErr *extract.ExtractionError
	return errors.As(err, &exErr)
}
