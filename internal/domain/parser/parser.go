// Package parser turns layout-preserved purchase-order text into line-item
// records. Each supplier layout has its own LineParser; all of them share the
// same skip-don't-abort contract: a malformed line drops that record with a
// collected error and the rest of the document keeps parsing.
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// RawRecord is one parsed line-item. Vendor parsers fill the item-level
// fields; the document-level fields are stamped afterwards from the header.
type RawRecord struct {
	Name      string
	SalesID   string
	OrderDate string
	ItemID    string
	Quantity  decimal.Decimal
	Price     decimal.Decimal
}

// ParseError records why a single line was dropped.
type ParseError struct {
	Line    int
	Message string
	RawLine string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ParseResult collects the outcome of one pass over a document.
type ParseResult struct {
	Records     []RawRecord
	Errors      []ParseError
	TotalLines  int
	ParsedRows  int
	SkippedRows int
}

// ApplyHeader stamps document-level fields onto every record that does not
// already carry them.
func (r *ParseResult) ApplyHeader(name, salesID, orderDate string) {
	for i := range r.Records {
		if r.Records[i].Name == "" {
			r.Records[i].Name = name
		}
		if r.Records[i].SalesID == "" {
			r.Records[i].SalesID = salesID
		}
		if r.Records[i].OrderDate == "" {
			r.Records[i].OrderDate = orderDate
		}
	}
}

// LineParser extracts line-item records for one supplier layout.
type LineParser interface {
	Vendor() string
	Parse(text string) *ParseResult
}

// Registry maps vendor names to their line parsers.
type Registry struct {
	parsers []LineParser
}

// NewRegistry returns the built-in parser set. The generic parser stays
// last: it only participates in the parse-all fallback.
func NewRegistry() *Registry {
	return &Registry{parsers: []LineParser{
		NewWoolworthsParser(),
		NewFoodstuffsParser(),
		NewMyFoodBagParser(),
		NewGenericParser(),
	}}
}

// ForVendor returns the parser for a vendor name, or nil.
func (r *Registry) ForVendor(name string) LineParser {
	for _, p := range r.parsers {
		if p.Vendor() == name {
			return p
		}
	}
	return nil
}

// All returns every registered parser in priority order.
func (r *Registry) All() []LineParser {
	return r.parsers
}

func mustCompileLine(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + pattern)
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

func trimLine(line string) string {
	return strings.TrimSpace(line)
}

var amountNoiseRe = regexp.MustCompile(`[\s,$]`)

// parseAmount converts a vendor-printed numeric ("1,234.56", "$3.80") to a
// decimal. Vendor PDFs never print negative quantities or prices, so
// non-positive values are rejected too.
func parseAmount(s string) (decimal.Decimal, error) {
	cleaned := amountNoiseRe.ReplaceAllString(s, "")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number: %s", s)
	}
	if d.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("non-positive amount: %s", s)
	}
	return d, nil
}

// appendItem validates the numeric fields and either appends a record or
// collects a ParseError. Shared by all vendor parsers.
func appendItem(result *ParseResult, lineNum int, rawLine, itemID, qtyStr, priceStr string) {
	if itemID == "" {
		result.SkippedRows++
		return
	}

	qty, err := parseAmount(qtyStr)
	if err != nil {
		result.Errors = append(result.Errors, ParseError{
			Line:    lineNum,
			Message: fmt.Sprintf("quantity: %s", err.Error()),
			RawLine: rawLine,
		})
		return
	}

	price, err := parseAmount(priceStr)
	if err != nil {
		result.Errors = append(result.Errors, ParseError{
			Line:    lineNum,
			Message: fmt.Sprintf("price: %s", err.Error()),
			RawLine: rawLine,
		})
		return
	}

	result.Records = append(result.Records, RawRecord{
		ItemID:   strings.TrimSpace(itemID),
		Quantity: qty,
		Price:    price,
	})
	result.ParsedRows++
}
