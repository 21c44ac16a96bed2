package parser

// GenericParser is the last-resort layout: six columns separated by runs of
// spaces, in the order name, sales id, order date, item id, quantity, price.
// Unlike the vendor parsers it produces fully populated records, since such
// documents carry the header fields on every row.
type GenericParser struct{}

// NewGenericParser creates the whitespace-column fallback parser.
func NewGenericParser() *GenericParser {
	return &GenericParser{}
}

// Vendor returns the profile name this parser belongs to.
func (p *GenericParser) Vendor() string { return "Generic" }

// Parse splits each line into six columns. Lines with a different column
// count are noise and skip silently; numeric failures drop the record with a
// collected error.
func (p *GenericParser) Parse(text string) *ParseResult {
	result := &ParseResult{}

	for i, line := range splitLines(text) {
		result.TotalLines++

		trimmed := trimLine(line)
		if trimmed == "" {
			result.SkippedRows++
			continue
		}

		parts := columnSplitRe.Split(trimmed, -1)
		if len(parts) != 6 {
			result.SkippedRows++
			continue
		}

		qty, err := parseAmount(parts[4])
		if err != nil {
			result.Errors = append(result.Errors, ParseError{
				Line:    i + 1,
				Message: "quantity: " + err.Error(),
				RawLine: line,
			})
			continue
		}

		price, err := parseAmount(parts[5])
		if err != nil {
			result.Errors = append(result.Errors, ParseError{
				Line:    i + 1,
				Message: "price: " + err.Error(),
				RawLine: line,
			})
			continue
		}

		result.Records = append(result.Records, RawRecord{
			Name:      parts[0],
			SalesID:   parts[1],
			OrderDate: parts[2],
			ItemID:    parts[3],
			Quantity:  qty,
			Price:     price,
		})
		result.ParsedRows++
	}

	return result
}
