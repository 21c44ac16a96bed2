package parser

import (
	"regexp"
	"strings"
)

// MyFoodBagParser handles My Food Bag purchase orders. Columns are separated
// by runs of spaces rather than fixed positions, so rows are split on
// two-or-more spaces: item no, qty, description, delivery date, price, total.
type MyFoodBagParser struct{}

// NewMyFoodBagParser creates a parser for the MyFoodBag layout.
func NewMyFoodBagParser() *MyFoodBagParser {
	return &MyFoodBagParser{}
}

// Vendor returns the profile name this parser belongs to.
func (p *MyFoodBagParser) Vendor() string { return "MyFoodBag" }

var (
	mfbHeaderRe = regexp.MustCompile(`(?i)item\s*no.*qty.*description`)
	mfbStopRe   = regexp.MustCompile(`(?i)\btotal\b|balance\s+due|page\s+\d+`)

	// My Food Bag item numbers all start with 10.
	mfbItemRe = regexp.MustCompile(`^\s*10\d{6,}`)

	columnSplitRe = regexp.MustCompile(`\s{2,}`)
)

// Parse scans the rows following the column header line.
func (p *MyFoodBagParser) Parse(text string) *ParseResult {
	result := &ParseResult{}

	headerFound := false
	for i, line := range splitLines(text) {
		result.TotalLines++

		if !headerFound {
			if mfbHeaderRe.MatchString(line) {
				headerFound = true
			} else {
				result.SkippedRows++
			}
			continue
		}

		if mfbStopRe.MatchString(line) {
			break
		}

		if !mfbItemRe.MatchString(line) {
			result.SkippedRows++
			continue
		}

		parts := columnSplitRe.Split(strings.TrimSpace(line), -1)
		if len(parts) < 5 {
			result.SkippedRows++
			continue
		}

		appendItem(result, i+1, line, parts[0], parts[1], parts[4])
	}

	return result
}
