package run

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const e2eConfig = `
sheets:
  - name: Invoice
    start_row: 3
    data_source: aggregation
    columns:
      - {id: col_po, header: "P.O Nº", source: po}
      - {id: col_desc, header: "Description", source: desc}
      - {id: col_qty_sf, header: "SF", source: sqft, sum_in_footer: true}
    footer:
      total_text: "TOTAL:"
      total_text_column: col_po
      pallet_column: col_desc
    styling:
      header: {bold: true, border: thin}
`

const e2eData = `{
  "standard_aggregation_results": {
    "po": ["PO-1", "PO-2"],
    "desc": ["COW LEATHER", "BUFFALO LEATHER"],
    "sqft": [100.5, 200.0]
  },
  "processed_tables_data": {
    "1": {"po": ["PO-1"], "desc": ["COW"], "sqft": [50], "net": [10], "gross": [12], "pallet_count": [2]},
    "2": {"po": ["PO-2"], "desc": ["BUFFALO"], "sqft": [70], "net": [20], "gross": [22], "pallet_count": [3]}
  }
}`

// writeRunInputs lays down the config, data and template files for a run.
func writeRunInputs(t *testing.T, cfgYAML string) Options {
	t.Helper()
	dir := t.TempDir()

	cfgPath := filepath.Join(dir, "layout.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o644))
	dataPath := filepath.Join(dir, "invoice.json")
	require.NoError(t, os.WriteFile(dataPath, []byte(e2eData), 0o644))

	tmpl := excelize.NewFile()
	_, err := tmpl.NewSheet("Invoice")
	require.NoError(t, err)
	require.NoError(t, tmpl.SetCellValue("Invoice", "A1", "ACME LEATHER CO."))
	require.NoError(t, tmpl.SetCellValue("Invoice", "A8", "Authorized Signature"))
	// Drop the seed sheet so sheets without a name match fall back to the
	// real template sheet.
	require.NoError(t, tmpl.DeleteSheet("Sheet1"))
	tmplPath := filepath.Join(dir, "template.xlsx")
	require.NoError(t, tmpl.SaveAs(tmplPath))
	require.NoError(t, tmpl.Close())

	return Options{
		ConfigPath:   cfgPath,
		DataPath:     dataPath,
		TemplatePath: tmplPath,
		OutputPath:   filepath.Join(dir, "out.xlsx"),
	}
}

func TestRenderSingleTableEndToEnd(t *testing.T) {
	opts := writeRunInputs(t, e2eConfig)

	summary, err := Render(opts)
	require.NoError(t, err)
	require.True(t, summary.OK(), "failed sheets: %v", summary.Failed())
	assert.NotEmpty(t, summary.RunID)
	require.Len(t, summary.Sheets, 1)
	assert.Equal(t, 1, summary.Sheets[0].Tables)
	assert.Equal(t, 2, summary.Sheets[0].Rows)

	out, err := excelize.OpenFile(opts.OutputPath)
	require.NoError(t, err)
	defer out.Close()

	// The default seed sheet is gone; only the configured sheet remains.
	assert.Equal(t, []string{"Invoice"}, out.GetSheetList())

	// Template header at row 1, table header at row 3, data 4..5.
	v, err := out.GetCellValue("Invoice", "A1")
	require.NoError(t, err)
	assert.Equal(t, "ACME LEATHER CO.", v)
	v, err = out.GetCellValue("Invoice", "A3")
	require.NoError(t, err)
	assert.Equal(t, "P.O Nº", v)
	v, err = out.GetCellValue("Invoice", "A4")
	require.NoError(t, err)
	assert.Equal(t, "PO-1", v)
	v, err = out.GetCellValue("Invoice", "A5")
	require.NoError(t, err)
	assert.Equal(t, "PO-2", v)

	// Generated footer at row 6, template footer at row 7.
	v, err = out.GetCellValue("Invoice", "A6")
	require.NoError(t, err)
	assert.Equal(t, "TOTAL:", v)
	formula, err := out.GetCellFormula("Invoice", "C6")
	require.NoError(t, err)
	assert.Equal(t, "SUM(C4:C5)", formula)
	v, err = out.GetCellValue("Invoice", "A7")
	require.NoError(t, err)
	assert.Equal(t, "Authorized Signature", v)
}

const e2eMultiConfig = `
sheets:
  - name: Packing
    start_row: 3
    data_source: processed_tables
    columns:
      - {id: col_po, header: "P.O Nº", source: po}
      - {id: col_desc, header: "Description", source: desc}
      - {id: col_qty_sf, header: "SF", source: sqft, sum_in_footer: true}
    footer:
      total_text: "TOTAL:"
      total_text_column: col_po
      pallet_column: col_desc
`

func TestRenderMultiTableEndToEnd(t *testing.T) {
	opts := writeRunInputs(t, e2eMultiConfig)

	summary, err := Render(opts)
	require.NoError(t, err)
	require.True(t, summary.OK(), "failed sheets: %v", summary.Failed())
	require.Len(t, summary.Sheets, 1)
	assert.Equal(t, 2, summary.Sheets[0].Tables)
	assert.Equal(t, 2, summary.Sheets[0].Rows)

	out, err := excelize.OpenFile(opts.OutputPath)
	require.NoError(t, err)
	defer out.Close()

	// Table 1: header 3, data 4, footer 5, no template footer, spacer 6.
	// Table 2: header 7, data 8, footer 9, template footer 10, grand total 11.
	v, err := out.GetCellValue("Packing", "A3")
	require.NoError(t, err)
	assert.Equal(t, "P.O Nº", v)
	v, err = out.GetCellValue("Packing", "A5")
	require.NoError(t, err)
	assert.Equal(t, "TOTAL:", v)
	v, err = out.GetCellValue("Packing", "A7")
	require.NoError(t, err)
	assert.Equal(t, "P.O Nº", v)
	v, err = out.GetCellValue("Packing", "A9")
	require.NoError(t, err)
	assert.Equal(t, "TOTAL:", v)
	v, err = out.GetCellValue("Packing", "A10")
	require.NoError(t, err)
	assert.Equal(t, "Authorized Signature", v)
	v, err = out.GetCellValue("Packing", "A11")
	require.NoError(t, err)
	assert.Equal(t, "TOTAL: 5 PALLET(S)", v)
}

func TestRenderFailsOnBadInputs(t *testing.T) {
	opts := writeRunInputs(t, e2eConfig)

	bad := opts
	bad.ConfigPath = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := Render(bad)
	assert.Error(t, err)

	bad = opts
	bad.TemplatePath = filepath.Join(t.TempDir(), "missing.xlsx")
	_, err = Render(bad)
	assert.Error(t, err)
}

func TestOptionsMode(t *testing.T) {
	assert.True(t, Options{DAF: true}.Mode().DAF)
	assert.True(t, Options{Custom: true}.Mode().Custom)
	assert.False(t, Options{}.Mode().DAF)
}
