package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetcraft/invoicexl/internal/template"
)

const validYAML = `
sheets:
  - name: Invoice
    start_row: 19
    data_source: aggregation
    columns:
      - id: col_po
        header: "P.O Nº"
        width: 14
      - id: col_desc
        header: "Description"
        merge_data: true
      - id: col_qty
        header: "Quantity"
        children:
          - id: col_qty_pcs
            header: "PCS"
            source: pcs
            sum_in_footer: true
          - id: col_qty_sf
            header: "SF"
            source: sqft
            format: "#,##0.00"
            sum_in_footer: true
      - id: col_unit_price
        header: "Unit Price"
        skip_on_daf: true
        source: unit_price
      - id: col_amount
        header: "Amount"
        format: "#,##0.00"
        sum_in_footer: true
        formula:
          template: "{col_ref_0}{row}*{col_ref_1}{row}"
          inputs: [col_qty_sf, col_unit_price]
    footer:
      total_text: "TOTAL:"
      total_text_column: col_po
      pallet_column: col_desc
      merge_rules:
        - start_column: col_po
          span: 2
      add_ons: [weight_summary]
    styling:
      header:
        bold: true
        border: thin
        horizontal: center
      data:
        border: thin
`

func TestParseValidConfig(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)
	require.Len(t, cfg.Sheets, 1)

	sc, ok := cfg.Sheet("Invoice")
	require.True(t, ok)
	assert.Equal(t, 19, sc.StartRow)
	assert.False(t, sc.MultiTable())
	assert.Equal(t, 6, sc.NumTemplateColumns())

	defs := sc.ColumnDefs()
	require.Len(t, defs, 5)
	assert.Equal(t, 2, defs[2].Span)
	assert.True(t, defs[3].SkipOnDAF)
}

func TestActiveAndLeafColumns(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)
	sc, _ := cfg.Sheet("Invoice")

	all := sc.LeafColumns(template.Mode{})
	require.Len(t, all, 6)
	assert.Equal(t, "col_qty_pcs", all[2].ID)
	assert.Equal(t, "col_qty_sf", all[3].ID)

	daf := sc.LeafColumns(template.Mode{DAF: true})
	require.Len(t, daf, 5)
	for _, col := range daf {
		assert.NotEqual(t, "col_unit_price", col.ID)
	}
}

func TestParseRejectsUnknownSheetLookup(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)
	_, ok := cfg.Sheet("Nope")
	assert.False(t, ok)
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "no sheets",
			yaml: `sheets: []`,
		},
		{
			name: "duplicate column id",
			yaml: `
sheets:
  - name: S
    start_row: 1
    data_source: aggregation
    columns:
      - {id: a, header: A}
      - {id: a, header: B}
`,
		},
		{
			name: "zero span group",
			yaml: `
sheets:
  - name: S
    start_row: 1
    data_source: aggregation
    columns:
      - {id: a, header: A}
      - id: g
        header: G
        children: []
`,
		},
		{
			name: "unknown data source",
			yaml: `
sheets:
  - name: S
    start_row: 1
    data_source: spreadsheet
    columns:
      - {id: a, header: A}
`,
		},
		{
			name: "footer references unknown column",
			yaml: `
sheets:
  - name: S
    start_row: 1
    data_source: aggregation
    columns:
      - {id: a, header: A}
    footer:
      total_text_column: nope
`,
		},
		{
			name: "footer merge rule runs past layout",
			yaml: `
sheets:
  - name: S
    start_row: 1
    data_source: aggregation
    columns:
      - {id: a, header: A}
      - {id: b, header: B}
    footer:
      merge_rules:
        - start_column: b
          span: 3
`,
		},
		{
			name: "unknown add-on",
			yaml: `
sheets:
  - name: S
    start_row: 1
    data_source: aggregation
    columns:
      - {id: a, header: A}
    footer:
      add_ons: [grand_totals]
`,
		},
		{
			name: "formula input unknown",
			yaml: `
sheets:
  - name: S
    start_row: 1
    data_source: aggregation
    columns:
      - {id: a, header: A}
      - id: b
        header: B
        formula:
          template: "{col_ref_0}{row}"
          inputs: [nope]
`,
		},
		{
			name: "source and expr both set",
			yaml: `
sheets:
  - name: S
    start_row: 1
    data_source: aggregation
    columns:
      - {id: a, header: A, source: x, expr: "x * 2"}
`,
		},
		{
			name: "invalid start row",
			yaml: `
sheets:
  - name: S
    start_row: 0
    data_source: aggregation
    columns:
      - {id: a, header: A}
`,
		},
		{
			name: "duplicate sheet name",
			yaml: `
sheets:
  - name: S
    start_row: 1
    data_source: aggregation
    columns:
      - {id: a, header: A}
  - name: S
    start_row: 1
    data_source: aggregation
    columns:
      - {id: b, header: B}
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestColumnSpan(t *testing.T) {
	plain := Column{ID: "a"}
	assert.Equal(t, 1, plain.Span())

	group := Column{ID: "g", Children: []Column{{ID: "x"}, {ID: "y"}, {ID: "z"}}}
	assert.Equal(t, 3, group.Span())
}

func TestStyleSpecIsZero(t *testing.T) {
	assert.True(t, StyleSpec{}.IsZero())
	assert.False(t, StyleSpec{Bold: true}.IsZero())
}
