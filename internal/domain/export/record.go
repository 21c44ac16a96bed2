// Package export assembles resolved purchase-order records into the fixed
// 7-column CSV consumed by the downstream order importer.
package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/po-export/internal/domain/parser"
)

// Row is one output line. Column order and names are a fixed contract:
// store_id,name,sales_id,order_date,item_id,quantity,price. store_id may be
// empty but the column is always present.
type Row struct {
	StoreID   string `csv:"store_id"`
	Name      string `csv:"name"`
	SalesID   string `csv:"sales_id"`
	OrderDate string `csv:"order_date"`
	ItemID    string `csv:"item_id"`
	Quantity  string `csv:"quantity"`
	Price     string `csv:"price"`
}

// NewRow builds an output row from a parsed record and its resolved store id.
func NewRow(rec parser.RawRecord, storeID string) Row {
	return Row{
		StoreID:   storeID,
		Name:      rec.Name,
		SalesID:   rec.SalesID,
		OrderDate: rec.OrderDate,
		ItemID:    rec.ItemID,
		Quantity:  formatAmount(rec.Quantity),
		Price:     formatAmount(rec.Price),
	}
}

// formatAmount keeps the scale the vendor printed: "3.80" stays "3.80",
// "3" stays "3". Decimal's String trims trailing zeros, so fixed-point
// values go through StringFixed with their parsed exponent.
func formatAmount(d decimal.Decimal) string {
	if d.Exponent() < 0 {
		return d.StringFixed(-d.Exponent())
	}
	return d.String()
}

// WriteCSV serializes rows in input order with the fixed header. An empty
// row set still writes the header line.
func WriteCSV(w io.Writer, rows []Row) error {
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
