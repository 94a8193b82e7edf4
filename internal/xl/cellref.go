// Package xl wraps excelize worksheet access behind an explicit Sheet handle.
// All coordinates in this package are 1-based, matching spreadsheet numbering:
// row 1 is the first row, column 1 is column "A".
package xl

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// CellRef identifies a single cell by 1-based row and column.
type CellRef struct {
	Row int
	Col int
}

// NewCellRef creates a CellRef.
func NewCellRef(row, col int) CellRef {
	return CellRef{Row: row, Col: col}
}

// Name returns the A1-style name of the cell, e.g. {1,1} → "A1".
func (c CellRef) Name() (string, error) {
	name, err := excelize.CoordinatesToCellName(c.Col, c.Row)
	if err != nil {
		return "", fmt.Errorf("cell name for (%d,%d): %w", c.Row, c.Col, err)
	}
	return name, nil
}

// String formats the CellRef as "A1". Invalid coordinates render as "(row,col)".
func (c CellRef) String() string {
	name, err := c.Name()
	if err != nil {
		return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
	}
	return name
}

// InBounds reports whether the cell lies within the worksheet coordinate space.
func (c CellRef) InBounds() bool {
	return c.Row >= 1 && c.Row <= excelize.TotalRows &&
		c.Col >= 1 && c.Col <= excelize.MaxColumns
}

// ColName converts a 1-based column index to a column name: 1→"A", 27→"AA".
func ColName(col int) (string, error) {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return "", fmt.Errorf("column name for %d: %w", col, err)
	}
	return name, nil
}

// ParseCellName parses an A1-style cell name into 1-based row and column.
func ParseCellName(name string) (CellRef, error) {
	col, row, err := excelize.CellNameToCoordinates(name)
	if err != nil {
		return CellRef{}, fmt.Errorf("parse cell name %q: %w", name, err)
	}
	return CellRef{Row: row, Col: col}, nil
}

// MergeRange is a rectangular merged-cell range in 1-based coordinates.
// MinRow/MinCol is the merge origin (the only cell in the range that carries
// authoritative value and style).
type MergeRange struct {
	MinRow int
	MinCol int
	MaxRow int
	MaxCol int
}

// Origin returns the top-left cell of the range.
func (m MergeRange) Origin() CellRef {
	return CellRef{Row: m.MinRow, Col: m.MinCol}
}

// Contains reports whether the given cell lies within the range.
func (m MergeRange) Contains(row, col int) bool {
	return row >= m.MinRow && row <= m.MaxRow && col >= m.MinCol && col <= m.MaxCol
}

// Overlaps reports whether this range intersects the given block.
func (m MergeRange) Overlaps(minRow, minCol, maxRow, maxCol int) bool {
	return m.MinRow <= maxRow && m.MaxRow >= minRow &&
		m.MinCol <= maxCol && m.MaxCol >= minCol
}

// Within reports whether this range lies fully inside the given row band.
func (m MergeRange) Within(startRow, endRow int) bool {
	return m.MinRow >= startRow && m.MaxRow <= endRow
}

// IsSingleCell reports whether the range covers exactly one cell.
func (m MergeRange) IsSingleCell() bool {
	return m.MinRow == m.MaxRow && m.MinCol == m.MaxCol
}

// String formats the range as "A1:D2".
func (m MergeRange) String() string {
	return CellRef{Row: m.MinRow, Col: m.MinCol}.String() + ":" +
		CellRef{Row: m.MaxRow, Col: m.MaxCol}.String()
}
