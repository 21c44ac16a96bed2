package storemap

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLoadCSV(t *testing.T) {
	csv := `name,store_id
Christchurch FDC Produce,S01
PAK N SAVE ALBANY,S03
`

	entries, err := LoadCSV(strings.NewReader(csv))
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Name: "Christchurch FDC Produce", StoreID: "S01"}, entries[0])
	assert.Equal(t, Entry{Name: "PAK N SAVE ALBANY", StoreID: "S03"}, entries[1])
}

func TestLoadCSV_TrimsAndDropsBlankNames(t *testing.T) {
	csv := `name,store_id
  Padded Name  ,  S01
,S02
`

	entries, err := LoadCSV(strings.NewReader(csv))
	require.NoError(t, err)

	require.Len(t, entries, 1, "row with empty name must be dropped")
	assert.Equal(t, "Padded Name", entries[0].Name)
	assert.Equal(t, "S01", entries[0].StoreID)
}

func TestLoadCSV_Empty(t *testing.T) {
	_, err := LoadCSV(strings.NewReader("name,store_id\n"))
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestLoadXLSX(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"name", "store_id"},
		{"Christchurch FDC Produce", "S01"},
		{"Auckland FDC Produce", "S02"},
	})

	entries, err := LoadXLSX(bytes.NewReader(data))
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "S01", entries[0].StoreID)
	assert.Equal(t, "Auckland FDC Produce", entries[1].Name)
}

func TestLoadXLSX_ColumnsInAnyOrder(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"store_id", "comment", "name"},
		{"S09", "ignored", "Wellington Depot"},
	})

	entries, err := LoadXLSX(bytes.NewReader(data))
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, Entry{Name: "Wellington Depot", StoreID: "S09"}, entries[0])
}

func TestLoadXLSX_MissingColumns(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"shop", "code"},
		{"Somewhere", "S01"},
	})

	_, err := LoadXLSX(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestLoad_DispatchesOnExtension(t *testing.T) {
	xlsx := buildWorkbook(t, [][]any{
		{"name", "store_id"},
		{"Wellington Depot", "S09"},
	})

	entries, err := Load("stores.xlsx", xlsx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	entries, err = Load("stores.csv", []byte("name,store_id\nWellington Depot,S09\n"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}
