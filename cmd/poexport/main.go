// poexport is the command-line front end for the purchase-order export
// pipeline: convert vendor PO PDFs into the 7-column order CSV without
// running the HTTP service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "poexport",
	Short: "Convert purchase-order PDFs into order import CSVs",
	Long: `poexport converts vendor purchase-order PDFs into the fixed 7-column
CSV consumed by the order importer. Text is extracted with pdftotext, the
vendor layout is auto-detected, and store names are resolved against an
optional name,store_id mapping table.

Examples:
  poexport convert order.pdf
  poexport convert order.pdf --store-map stores.csv -o order.csv
  poexport convert a.pdf b.pdf c.pdf -o merged.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
