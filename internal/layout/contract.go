// Package layout orchestrates the phases that render one table onto a
// worksheet: template capture (or reuse), table header, column mapping, data
// rows, deferred template-header restore, generated footer, and template
// footer. Phase collaborators are interfaces so sheets can plug in their own
// builders; contract structs carry the typed results between phases.
package layout

import (
	"github.com/sheetcraft/invoicexl/internal/data"
	"github.com/sheetcraft/invoicexl/internal/template"
	"github.com/sheetcraft/invoicexl/internal/xl"
)

// HeaderInfo describes the table header after it has been written.
type HeaderInfo struct {
	// FirstRowIndex is the row of the top header line; SecondRowIndex is the
	// row data writing starts after. For single-row headers both are equal.
	FirstRowIndex  int
	SecondRowIndex int

	// ColumnMap maps header text to 1-based output column; ColumnIDMap maps
	// the stable column ID to the same. Builders key on IDs, header text is
	// kept for diagnostics.
	ColumnMap   map[string]int
	ColumnIDMap map[string]int

	NumColumns int
}

// Column returns the 1-based output column of a column ID.
func (h HeaderInfo) Column(id string) (int, bool) {
	c, ok := h.ColumnIDMap[id]
	return c, ok
}

// ColumnsFinalized is the proof value that the output column layout is fixed.
// The header phase is the only producer; restoring the template header onto
// the remapped layout requires one, so that restore cannot be sequenced
// before the columns are known.
type ColumnsFinalized struct {
	NumColumns int
}

// TableResult describes the written data region and its calculated summary.
type TableResult struct {
	DataStartRow int
	DataEndRow   int
	// FooterRowStart is the row immediately after the data region.
	FooterRowStart int

	Summary data.TableSummary
}

// HeaderBuilder writes the table header starting at the given row and
// finalizes the output column layout.
type HeaderBuilder interface {
	BuildHeader(dst *xl.Sheet, startRow int, mode template.Mode) (HeaderInfo, ColumnsFinalized, error)
}

// TableBuilder writes the data rows under a built header.
type TableBuilder interface {
	BuildTable(dst *xl.Sheet, info HeaderInfo, mode template.Mode) (TableResult, error)
}

// FooterBuilder writes the generated footer (totals row and add-ons) for a
// written table and returns the first free row after it.
type FooterBuilder interface {
	BuildFooter(dst *xl.Sheet, info HeaderInfo, table TableResult) (nextRowAfterFooter int, err error)
}
