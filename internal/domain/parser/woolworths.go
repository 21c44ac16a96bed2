package parser

import "regexp"

// WoolworthsParser handles Woolworths NZ produce orders. The item table is a
// borderless text grid: the data section starts after the column header line
// and ends at the order totals.
type WoolworthsParser struct{}

// NewWoolworthsParser creates a parser for the WWNZ layout.
func NewWoolworthsParser() *WoolworthsParser {
	return &WoolworthsParser{}
}

// Vendor returns the profile name this parser belongs to.
func (p *WoolworthsParser) Vendor() string { return "WWNZ" }

var (
	wwnzHeaderRe = regexp.MustCompile(`(?i)LINE.*ITEM NO.*ORD QTY.*PRICE`)
	wwnzTotalsRe = regexp.MustCompile(`(?i)Order Totals|Total Value`)

	// line no, GTIN, description, item no, TU, SFX, OM, ord qty, price excl
	wwnzLineRe = regexp.MustCompile(`^\s*(\d+)\s+(\d{8,14})\s+(.*?)\s+(\d{5,})\s+([\d.]+)\s+(\S+)\s+(\d+)\s+(\d+)\s+([\d.]+)`)
)

// Parse scans the data section between the column header and the totals.
func (p *WoolworthsParser) Parse(text string) *ParseResult {
	result := &ParseResult{}

	dataStarted := false
	for i, line := range splitLines(text) {
		result.TotalLines++

		if !dataStarted {
			if wwnzHeaderRe.MatchString(line) {
				dataStarted = true
			} else {
				result.SkippedRows++
			}
			continue
		}

		if wwnzTotalsRe.MatchString(line) {
			break
		}

		m := wwnzLineRe.FindStringSubmatch(line)
		if m == nil {
			result.SkippedRows++
			continue
		}

		appendItem(result, i+1, line, m[4], m[8], m[9])
	}

	return result
}
