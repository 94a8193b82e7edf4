// Package template implements the capture/replay engine for decorative
// worksheet sections. A source worksheet's header and footer regions are
// snapshotted into a position-independent State, then replayed onto an output
// worksheet at arbitrary row offsets, optionally through a column mapping that
// drops mode-filtered columns while preserving relative column order.
package template

import (
	"github.com/xuri/excelize/v2"

	"github.com/sheetcraft/invoicexl/internal/xl"
)

// CellSnapshot is the value-type capture of one cell: its content and the
// style it carried in the template. It is captured from the merge-origin cell
// when the source position lies inside a merged range, and is immutable once
// captured.
type CellSnapshot struct {
	Value   string
	Formula string
	StyleID int
	// Style is the decoded style record. It allows restoring onto a sheet in
	// a different workbook file, where the numeric StyleID is meaningless.
	Style *excelize.Style
}

// IsEmpty reports whether the snapshot carries neither content nor styling.
func (c CellSnapshot) IsEmpty() bool {
	return c.Value == "" && c.Formula == "" && c.StyleID == 0
}

// HasContent reports whether the snapshot carries a value or formula.
func (c CellSnapshot) HasContent() bool {
	return c.Value != "" || c.Formula != ""
}

// RowSnapshot is one captured template row. Cells is indexed by 1-based
// column; index 0 is unused so indices line up with spreadsheet numbering.
type RowSnapshot struct {
	// Row is the 1-based row index in the original template coordinate space.
	Row   int
	Cells []CellSnapshot
}

// MergeRecord is a merged range in the original template coordinate space,
// before any row offset or column remapping.
type MergeRecord struct {
	MinRow int
	MinCol int
	MaxRow int
	MaxCol int
}

// State is the captured template state for one source worksheet. It is built
// once per sheet-processing pass, is read-only afterwards, and may be shared
// across multiple logical tables on the same sheet without copying.
type State struct {
	HeaderStartRow int
	HeaderEndRow   int
	HeaderRows     []RowSnapshot
	HeaderMerges   []MergeRecord

	FooterStartRow int
	FooterEndRow   int
	FooterRows     []RowSnapshot
	FooterMerges   []MergeRecord

	RowHeights map[int]float64
	ColWidths  map[int]float64
	MaxCol     int

	// source is the worksheet the state was captured from, so the restorer
	// can reuse style IDs when the target lives in the same workbook file.
	source *xl.Sheet
}

// HasFooter reports whether footer capture found any content.
func (s *State) HasFooter() bool {
	return len(s.FooterRows) > 0
}

// FooterRowCount returns the number of captured footer rows.
func (s *State) FooterRowCount() int {
	return len(s.FooterRows)
}

// HeaderRowCount returns the number of captured header rows.
func (s *State) HeaderRowCount() int {
	return len(s.HeaderRows)
}
