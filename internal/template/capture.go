package template

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sheetcraft/invoicexl/internal/xl"
)

// Capture snapshots the header and footer regions of a source worksheet.
//
// The header region spans [headerStartRow, headerEndRow], where headerStartRow
// is found by scanning down from row 1 for the first row carrying content or a
// non-default style (templates may start with blank rows). The footer region
// is found by scanning down from footerStartRowHint for the first row with
// content, then back from the sheet's last used row for the last row with
// content.
//
// Missing merge metadata on the source is a hard precondition failure: restore
// correctness depends on complete merge information, so Capture fails fast
// rather than snapshotting incomplete style.
func Capture(src *xl.Sheet, numHeaderCols, headerEndRow, footerStartRowHint int) (*State, error) {
	merges, err := src.MergeRanges()
	if err != nil {
		return nil, fmt.Errorf("capture template %q: %w", src.Name(), err)
	}

	grid, err := src.Rows()
	if err != nil {
		return nil, fmt.Errorf("capture template %q: %w", src.Name(), err)
	}

	dimRow, dimCol, err := src.Dimension()
	if err != nil {
		return nil, fmt.Errorf("capture template %q: %w", src.Name(), err)
	}

	lastRow := len(grid)
	if dimRow > lastRow {
		lastRow = dimRow
	}

	// maxCol covers both the header's declared width and anything wider found
	// in the sheet (narrow headers above wide footers are common).
	maxCol := numHeaderCols
	if dimCol > maxCol {
		maxCol = dimCol
	}
	for _, row := range grid {
		if len(row) > maxCol {
			maxCol = len(row)
		}
	}
	for _, m := range merges {
		if m.MaxCol > maxCol {
			maxCol = m.MaxCol
		}
	}

	state := &State{
		RowHeights: make(map[int]float64),
		ColWidths:  make(map[int]float64),
		MaxCol:     maxCol,
		source:     src,
	}

	// headerEndRow < 1 means the table header sits at row 1 and the template
	// has no decorative header band above it.
	if headerEndRow >= 1 {
		headerStart, err := findHeaderStart(src, grid, headerEndRow, maxCol)
		if err != nil {
			return nil, fmt.Errorf("capture template %q: %w", src.Name(), err)
		}
		state.HeaderStartRow = headerStart
		state.HeaderEndRow = headerEndRow

		for r := headerStart; r <= headerEndRow; r++ {
			snap, err := snapshotRow(src, merges, r, maxCol)
			if err != nil {
				return nil, fmt.Errorf("capture template %q header row %d: %w", src.Name(), r, err)
			}
			state.HeaderRows = append(state.HeaderRows, snap)
			if err := captureRowHeight(src, state, r); err != nil {
				return nil, err
			}
		}
		for _, m := range merges {
			if m.Within(headerStart, headerEndRow) {
				state.HeaderMerges = append(state.HeaderMerges, MergeRecord(m))
			}
		}
	}

	if err := captureFooter(src, state, grid, merges, headerEndRow, footerStartRowHint, lastRow, maxCol); err != nil {
		return nil, err
	}

	for c := 1; c <= maxCol; c++ {
		w, err := src.ColWidth(c)
		if err != nil {
			return nil, fmt.Errorf("capture template %q: %w", src.Name(), err)
		}
		state.ColWidths[c] = w
	}

	return state, nil
}

// findHeaderStart scans down from row 1 for the first row with content or a
// non-default style. Falls back to row 1 if the whole band is blank.
func findHeaderStart(src *xl.Sheet, grid [][]string, headerEndRow, maxCol int) (int, error) {
	for r := 1; r <= headerEndRow; r++ {
		if rowHasContent(grid, r) {
			return r, nil
		}
		styled, err := rowHasStyle(src, r, maxCol)
		if err != nil {
			return 0, err
		}
		if styled {
			return r, nil
		}
	}
	return 1, nil
}

// captureFooter locates and snapshots the footer region. A hint that lands
// inside the header band is clamped; a hint beyond the sheet yields an empty
// footer capture.
func captureFooter(src *xl.Sheet, state *State, grid [][]string, merges []xl.MergeRange, headerEndRow, hint, lastRow, maxCol int) error {
	if hint <= headerEndRow {
		log.Warn().
			Str("sheet", src.Name()).
			Int("hint", hint).
			Int("header_end", headerEndRow).
			Msg("footer hint inside header band, clamping")
		hint = headerEndRow + 1
	}

	footerStart := 0
	for r := hint; r <= lastRow; r++ {
		if rowHasContent(grid, r) {
			footerStart = r
			break
		}
	}
	if footerStart == 0 {
		// No footer in the template; capture is a no-op.
		return nil
	}

	footerEnd := footerStart
	for r := lastRow; r >= footerStart; r-- {
		if rowHasContent(grid, r) {
			footerEnd = r
			break
		}
	}

	state.FooterStartRow = footerStart
	state.FooterEndRow = footerEnd

	for r := footerStart; r <= footerEnd; r++ {
		snap, err := snapshotRow(src, merges, r, maxCol)
		if err != nil {
			return fmt.Errorf("capture template %q footer row %d: %w", src.Name(), r, err)
		}
		state.FooterRows = append(state.FooterRows, snap)
		if err := captureRowHeight(src, state, r); err != nil {
			return err
		}
	}
	for _, m := range merges {
		if m.Within(footerStart, footerEnd) {
			state.FooterMerges = append(state.FooterMerges, MergeRecord(m))
		}
	}
	return nil
}

// snapshotRow captures one row. Cells covered by a merge are read from the
// merge origin; non-origin cells never carry authoritative value or style.
func snapshotRow(src *xl.Sheet, merges []xl.MergeRange, row, maxCol int) (RowSnapshot, error) {
	snap := RowSnapshot{
		Row:   row,
		Cells: make([]CellSnapshot, maxCol+1), // index 0 unused
	}
	for c := 1; c <= maxCol; c++ {
		readRow, readCol := row, c
		res := xl.ResolveAgainst(merges, row, c)
		if res.Kind == xl.KindMergedChild {
			readRow, readCol = res.OriginRow, res.OriginCol
		}

		value, err := src.CellValue(readRow, readCol)
		if err != nil {
			return RowSnapshot{}, err
		}
		formula, err := src.CellFormula(readRow, readCol)
		if err != nil {
			return RowSnapshot{}, err
		}
		styleID, err := src.StyleID(readRow, readCol)
		if err != nil {
			return RowSnapshot{}, err
		}

		cell := CellSnapshot{Value: value, Formula: formula, StyleID: styleID}
		if styleID > 0 {
			style, err := src.File().GetStyle(styleID)
			if err != nil {
				return RowSnapshot{}, fmt.Errorf("decode style %d: %w", styleID, err)
			}
			cell.Style = style
		}
		snap.Cells[c] = cell
	}
	return snap, nil
}

func captureRowHeight(src *xl.Sheet, state *State, row int) error {
	h, err := src.RowHeight(row)
	if err != nil {
		return fmt.Errorf("capture template %q: %w", src.Name(), err)
	}
	state.RowHeights[row] = h
	return nil
}

// rowHasContent reports whether the 1-based row carries any non-empty cell in
// the content grid.
func rowHasContent(grid [][]string, row int) bool {
	if row < 1 || row > len(grid) {
		return false
	}
	for _, v := range grid[row-1] {
		if v != "" {
			return true
		}
	}
	return false
}

// rowHasStyle reports whether any cell of the row carries a non-default style.
func rowHasStyle(src *xl.Sheet, row, maxCol int) (bool, error) {
	for c := 1; c <= maxCol; c++ {
		id, err := src.StyleID(row, c)
		if err != nil {
			return false, err
		}
		if id > 0 {
			return true, nil
		}
	}
	return false, nil
}
