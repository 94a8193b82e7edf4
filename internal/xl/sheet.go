package xl

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet is an explicit handle to one worksheet of an excelize file. Every
// component that mutates a worksheet receives a *Sheet in its signature; no
// worksheet reference is ever stored implicitly elsewhere.
type Sheet struct {
	file *excelize.File
	name string
}

// Open returns a handle to an existing worksheet.
func Open(f *excelize.File, name string) (*Sheet, error) {
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return nil, fmt.Errorf("open sheet %q: %w", name, err)
	}
	if idx < 0 {
		return nil, fmt.Errorf("open sheet %q: sheet does not exist", name)
	}
	return &Sheet{file: f, name: name}, nil
}

// Create adds a new worksheet to the file and returns its handle.
func Create(f *excelize.File, name string) (*Sheet, error) {
	if _, err := f.NewSheet(name); err != nil {
		return nil, fmt.Errorf("create sheet %q: %w", name, err)
	}
	return &Sheet{file: f, name: name}, nil
}

// Name returns the worksheet name.
func (s *Sheet) Name() string { return s.name }

// File returns the underlying excelize file.
func (s *Sheet) File() *excelize.File { return s.file }

// SameFile reports whether the other sheet belongs to the same workbook file.
func (s *Sheet) SameFile(other *Sheet) bool {
	return other != nil && s.file == other.file
}

// CellValue returns the formatted value of a cell.
func (s *Sheet) CellValue(row, col int) (string, error) {
	name, err := CellRef{Row: row, Col: col}.Name()
	if err != nil {
		return "", err
	}
	v, err := s.file.GetCellValue(s.name, name)
	if err != nil {
		return "", fmt.Errorf("read cell %s!%s: %w", s.name, name, err)
	}
	return v, nil
}

// CellFormula returns the formula of a cell, or "" if the cell holds none.
func (s *Sheet) CellFormula(row, col int) (string, error) {
	name, err := CellRef{Row: row, Col: col}.Name()
	if err != nil {
		return "", err
	}
	f, err := s.file.GetCellFormula(s.name, name)
	if err != nil {
		return "", fmt.Errorf("read formula %s!%s: %w", s.name, name, err)
	}
	return f, nil
}

// StyleID returns the style identifier of a cell (0 = workbook default).
func (s *Sheet) StyleID(row, col int) (int, error) {
	name, err := CellRef{Row: row, Col: col}.Name()
	if err != nil {
		return 0, err
	}
	id, err := s.file.GetCellStyle(s.name, name)
	if err != nil {
		return 0, fmt.Errorf("read style %s!%s: %w", s.name, name, err)
	}
	return id, nil
}

// SetStyleID applies a registered style to a single cell.
func (s *Sheet) SetStyleID(row, col, styleID int) error {
	name, err := CellRef{Row: row, Col: col}.Name()
	if err != nil {
		return err
	}
	if err := s.file.SetCellStyle(s.name, name, name, styleID); err != nil {
		return fmt.Errorf("set style %s!%s: %w", s.name, name, err)
	}
	return nil
}

// SetRangeStyleID applies a registered style to a rectangular range.
func (s *Sheet) SetRangeStyleID(minRow, minCol, maxRow, maxCol, styleID int) error {
	topLeft, err := CellRef{Row: minRow, Col: minCol}.Name()
	if err != nil {
		return err
	}
	bottomRight, err := CellRef{Row: maxRow, Col: maxCol}.Name()
	if err != nil {
		return err
	}
	if err := s.file.SetCellStyle(s.name, topLeft, bottomRight, styleID); err != nil {
		return fmt.Errorf("set style %s!%s:%s: %w", s.name, topLeft, bottomRight, err)
	}
	return nil
}

// CellKind tags a resolved cell as either a merge origin (or plain cell) or a
// non-origin member of a merged range.
type CellKind int

const (
	// KindOrigin is a plain cell or the top-left cell of a merged range.
	KindOrigin CellKind = iota
	// KindMergedChild is a non-origin cell inside a merged range. Writes
	// against it must be redirected to its origin.
	KindMergedChild
)

// ResolvedCell is the result of classifying a coordinate against the sheet's
// merged ranges.
type ResolvedCell struct {
	Kind      CellKind
	Row, Col  int
	OriginRow int // valid when Kind == KindMergedChild
	OriginCol int
}

// Target returns the cell that actually receives writes for this coordinate.
func (r ResolvedCell) Target() CellRef {
	if r.Kind == KindMergedChild {
		return CellRef{Row: r.OriginRow, Col: r.OriginCol}
	}
	return CellRef{Row: r.Row, Col: r.Col}
}

// Resolve classifies a coordinate against the sheet's current merged ranges.
func (s *Sheet) Resolve(row, col int) (ResolvedCell, error) {
	merges, err := s.MergeRanges()
	if err != nil {
		return ResolvedCell{}, err
	}
	return ResolveAgainst(merges, row, col), nil
}

// ResolveAgainst classifies a coordinate against a pre-fetched merge list.
// Callers that resolve many cells should fetch MergeRanges once and use this.
func ResolveAgainst(merges []MergeRange, row, col int) ResolvedCell {
	for _, m := range merges {
		if m.Contains(row, col) {
			if row == m.MinRow && col == m.MinCol {
				return ResolvedCell{Kind: KindOrigin, Row: row, Col: col}
			}
			return ResolvedCell{
				Kind: KindMergedChild, Row: row, Col: col,
				OriginRow: m.MinRow, OriginCol: m.MinCol,
			}
		}
	}
	return ResolvedCell{Kind: KindOrigin, Row: row, Col: col}
}

// SetCellValue writes a value to a cell.
func (s *Sheet) SetCellValue(row, col int, value any) error {
	name, err := CellRef{Row: row, Col: col}.Name()
	if err != nil {
		return err
	}
	if err := s.file.SetCellValue(s.name, name, value); err != nil {
		return fmt.Errorf("write cell %s!%s: %w", s.name, name, err)
	}
	return nil
}

// SetCellFormula writes a formula to a cell. A leading "=" is stripped because
// excelize stores formulas without it.
func (s *Sheet) SetCellFormula(row, col int, formula string) error {
	name, err := CellRef{Row: row, Col: col}.Name()
	if err != nil {
		return err
	}
	if len(formula) > 0 && formula[0] == '=' {
		formula = formula[1:]
	}
	if err := s.file.SetCellFormula(s.name, name, formula); err != nil {
		return fmt.Errorf("write formula %s!%s: %w", s.name, name, err)
	}
	return nil
}

// MergeRanges returns all merged ranges on the sheet. An error here means the
// sheet cannot expose merge metadata; callers that depend on complete merge
// information must treat that as fatal.
func (s *Sheet) MergeRanges() ([]MergeRange, error) {
	cells, err := s.file.GetMergeCells(s.name)
	if err != nil {
		return nil, fmt.Errorf("merge metadata for sheet %q: %w", s.name, err)
	}
	ranges := make([]MergeRange, 0, len(cells))
	for _, mc := range cells {
		startCol, startRow, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			return nil, fmt.Errorf("merge metadata for sheet %q: parse %q: %w", s.name, mc.GetStartAxis(), err)
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			return nil, fmt.Errorf("merge metadata for sheet %q: parse %q: %w", s.name, mc.GetEndAxis(), err)
		}
		ranges = append(ranges, MergeRange{
			MinRow: startRow, MinCol: startCol,
			MaxRow: endRow, MaxCol: endCol,
		})
	}
	return ranges, nil
}

// Merge merges the given range on the sheet.
func (s *Sheet) Merge(m MergeRange) error {
	topLeft, err := CellRef{Row: m.MinRow, Col: m.MinCol}.Name()
	if err != nil {
		return err
	}
	bottomRight, err := CellRef{Row: m.MaxRow, Col: m.MaxCol}.Name()
	if err != nil {
		return err
	}
	if err := s.file.MergeCell(s.name, topLeft, bottomRight); err != nil {
		return fmt.Errorf("merge %s!%s:%s: %w", s.name, topLeft, bottomRight, err)
	}
	return nil
}

// Unmerge removes a merged range from the sheet.
func (s *Sheet) Unmerge(m MergeRange) error {
	topLeft, err := CellRef{Row: m.MinRow, Col: m.MinCol}.Name()
	if err != nil {
		return err
	}
	bottomRight, err := CellRef{Row: m.MaxRow, Col: m.MaxCol}.Name()
	if err != nil {
		return err
	}
	if err := s.file.UnmergeCell(s.name, topLeft, bottomRight); err != nil {
		return fmt.Errorf("unmerge %s!%s:%s: %w", s.name, topLeft, bottomRight, err)
	}
	return nil
}

// UnmergeBlock removes every merged range that overlaps the given block,
// leaving ranges fully outside the block untouched.
func (s *Sheet) UnmergeBlock(startRow, endRow, numCols int) error {
	if startRow < 1 || endRow < startRow {
		return nil
	}
	merges, err := s.MergeRanges()
	if err != nil {
		return err
	}
	for _, m := range merges {
		if m.Overlaps(startRow, 1, endRow, numCols) {
			if err := s.Unmerge(m); err != nil {
				return err
			}
		}
	}
	return nil
}

// RowHeight returns the height of a row.
func (s *Sheet) RowHeight(row int) (float64, error) {
	h, err := s.file.GetRowHeight(s.name, row)
	if err != nil {
		return 0, fmt.Errorf("row height %s!%d: %w", s.name, row, err)
	}
	return h, nil
}

// SetRowHeight sets the height of a row.
func (s *Sheet) SetRowHeight(row int, height float64) error {
	if err := s.file.SetRowHeight(s.name, row, height); err != nil {
		return fmt.Errorf("set row height %s!%d: %w", s.name, row, err)
	}
	return nil
}

// ColWidth returns the width of a column.
func (s *Sheet) ColWidth(col int) (float64, error) {
	name, err := ColName(col)
	if err != nil {
		return 0, err
	}
	w, err := s.file.GetColWidth(s.name, name)
	if err != nil {
		return 0, fmt.Errorf("column width %s!%s: %w", s.name, name, err)
	}
	return w, nil
}

// SetColWidth sets the width of a column.
func (s *Sheet) SetColWidth(col int, width float64) error {
	name, err := ColName(col)
	if err != nil {
		return err
	}
	if err := s.file.SetColWidth(s.name, name, name, width); err != nil {
		return fmt.Errorf("set column width %s!%s: %w", s.name, name, err)
	}
	return nil
}

// Rows returns the sheet's content grid as formatted strings. Rows and cells
// are 0-based slices; callers translate to 1-based coordinates.
func (s *Sheet) Rows() ([][]string, error) {
	rows, err := s.file.GetRows(s.name)
	if err != nil {
		return nil, fmt.Errorf("read rows of sheet %q: %w", s.name, err)
	}
	return rows, nil
}

// Dimension returns the sheet's used range as (lastRow, lastCol). A sheet with
// no content or styling reports (0, 0).
func (s *Sheet) Dimension() (lastRow, lastCol int, err error) {
	dim, err := s.file.GetSheetDimension(s.name)
	if err != nil {
		return 0, 0, fmt.Errorf("dimension of sheet %q: %w", s.name, err)
	}
	if dim == "" {
		return 0, 0, nil
	}
	// Dimension is "A1" or "A1:H30"; the last cell carries the extent.
	last := dim
	for i := len(dim) - 1; i >= 0; i-- {
		if dim[i] == ':' {
			last = dim[i+1:]
			break
		}
	}
	ref, err := ParseCellName(last)
	if err != nil {
		return 0, 0, fmt.Errorf("dimension of sheet %q: %w", s.name, err)
	}
	return ref.Row, ref.Col, nil
}
