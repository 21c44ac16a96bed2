// Package storemap loads the optional name→store_id reference table and
// resolves free-text store names against it with approximate matching.
package storemap

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

var (
	ErrEmptyTable     = errors.New("store map has no entries")
	ErrMissingColumns = errors.New("store map must have name and store_id columns")
)

// Entry is one reference pair from the user-supplied mapping table.
type Entry struct {
	Name    string `csv:"name"`
	StoreID string `csv:"store_id"`
}

// Load reads a mapping table, dispatching on the file extension. CSV is the
// canonical format; XLSX is accepted because ops teams maintain the table in
// spreadsheets.
func Load(filename string, data []byte) ([]Entry, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(bytes.NewReader(data))
	default:
		return LoadCSV(bytes.NewReader(data))
	}
}

// LoadCSV reads a two-column name,store_id CSV.
func LoadCSV(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := gocsv.Unmarshal(r, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse store map CSV: %w", err)
	}
	return validate(entries)
}

// LoadXLSX reads the first sheet of an XLSX workbook; the first row must
// carry the name and store_id headers.
func LoadXLSX(r io.Reader) ([]Entry, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open store map workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyTable
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptyTable
	}

	nameCol, idCol := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name":
			nameCol = i
		case "store_id":
			idCol = i
		}
	}
	if nameCol < 0 || idCol < 0 {
		return nil, ErrMissingColumns
	}

	entries := make([]Entry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		var e Entry
		if nameCol < len(row) {
			e.Name = strings.TrimSpace(row[nameCol])
		}
		if idCol < len(row) {
			e.StoreID = strings.TrimSpace(row[idCol])
		}
		entries = append(entries, e)
	}

	return validate(entries)
}

func validate(entries []Entry) ([]Entry, error) {
	cleaned := entries[:0]
	for _, e := range entries {
		e.Name = strings.TrimSpace(e.Name)
		e.StoreID = strings.TrimSpace(e.StoreID)
		if e.Name == "" {
			continue
		}
		cleaned = append(cleaned, e)
	}
	if len(cleaned) == 0 {
		return nil, ErrEmptyTable
	}
	return cleaned, nil
}
