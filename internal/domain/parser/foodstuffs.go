package parser

// FoodstuffsParser handles Foodstuffs North Island order-forecast PDFs.
// Item rows print: line no, article number, item code, description, order
// qty, UoM, units per UoM, unit price, then net/fee/total columns.
type FoodstuffsParser struct{}

// NewFoodstuffsParser creates a parser for the Foodstuffs_NI layout.
func NewFoodstuffsParser() *FoodstuffsParser {
	return &FoodstuffsParser{}
}

// Vendor returns the profile name this parser belongs to.
func (p *FoodstuffsParser) Vendor() string { return "Foodstuffs_NI" }

var foodstuffsLineRe = mustCompileLine(
	`^\s*\d+\s+(?P<article>\d{6,})\s+[A-Z0-9$]+\s+.+?\s+(?P<qty>\d+)\s+[A-Z]{2,4}\s+\d+\s+\$?(?P<price>[\d,]+\.\d{2}).*?\$?[\d,]+\.\d{2}\s*$`,
)

// Parse scans the document for item rows. Lines that don't match the row
// pattern are header/footer noise and skip silently.
func (p *FoodstuffsParser) Parse(text string) *ParseResult {
	result := &ParseResult{}

	for i, line := range splitLines(text) {
		result.TotalLines++

		m := foodstuffsLineRe.FindStringSubmatch(line)
		if m == nil {
			result.SkippedRows++
			continue
		}

		appendItem(result, i+1, line,
			m[foodstuffsLineRe.SubexpIndex("article")],
			m[foodstuffsLineRe.SubexpIndex("qty")],
			m[foodstuffsLineRe.SubexpIndex("price")],
		)
	}

	return result
}
