package template

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/sheetcraft/invoicexl/internal/xl"
)

// Restorer replays a captured State onto an output worksheet. The header
// section always lands at row 1; the footer section lands at a caller-supplied
// start row. Both entry points share the same column-remap and merge-translate
// logic.
//
// The restorer never clears prior cell content on the target; callers are
// responsible for supplying a freshly-prepared target region. Merged ranges
// already overlapping the landing band are removed before the captured merges
// replay, so the replayed section owns the band's merge structure.
type Restorer struct {
	state *State

	// styleIDs caches re-registered styles when restoring across workbook
	// files (source StyleID → target StyleID).
	styleIDs map[int]int

	warnings []string
}

// NewRestorer creates a Restorer for a captured state.
func NewRestorer(state *State) *Restorer {
	return &Restorer{
		state:    state,
		styleIDs: make(map[int]int),
	}
}

// Warnings returns the recoverable anomalies recorded during restore calls:
// narrowed or dropped merges and out-of-bounds cell writes that were skipped.
func (r *Restorer) Warnings() []string {
	return r.warnings
}

func (r *Restorer) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.warnings = append(r.warnings, msg)
	log.Warn().Msg(msg)
}

// RestoreHeader replays the captured header section starting at row 1 of the
// target worksheet, remapping columns when a mapping is supplied.
func (r *Restorer) RestoreHeader(dst *xl.Sheet, mapping *ColumnMapping) error {
	if len(r.state.HeaderRows) == 0 {
		return nil
	}
	if err := r.restoreSection(dst, r.state.HeaderRows, r.state.HeaderMerges, r.state.HeaderStartRow, 1, mapping); err != nil {
		return fmt.Errorf("restore template header onto %q: %w", dst.Name(), err)
	}
	return nil
}

// RestoreFooter replays the captured footer section starting at footerStartRow
// on the target worksheet.
func (r *Restorer) RestoreFooter(dst *xl.Sheet, footerStartRow int, mapping *ColumnMapping) error {
	if !r.state.HasFooter() {
		return nil
	}
	if footerStartRow < 1 {
		return fmt.Errorf("restore template footer onto %q: invalid start row %d", dst.Name(), footerStartRow)
	}
	if err := r.restoreSection(dst, r.state.FooterRows, r.state.FooterMerges, r.state.FooterStartRow, footerStartRow, mapping); err != nil {
		return fmt.Errorf("restore template footer onto %q: %w", dst.Name(), err)
	}
	return nil
}

// restoreSection writes the captured rows, then replays merges, then replays
// row heights and column widths. Heights must come after merges: setting a
// height on a row that is subsequently merged across can be reset to framework
// defaults. The ordering is a correctness requirement.
func (r *Restorer) restoreSection(dst *xl.Sheet, rows []RowSnapshot, merges []MergeRecord, originalStart, targetStart int, mapping *ColumnMapping) error {
	delta := targetStart - originalStart

	// Existing merges on the target: writes landing on a non-origin cell of
	// one of these are redirected to its origin, mirroring the merge-origin
	// read rule applied at capture time.
	dstMerges, err := dst.MergeRanges()
	if err != nil {
		return err
	}

	// Captured merges in source coordinates. Non-origin members carry the
	// origin's snapshot; they receive style only, the content lives at the
	// origin and the replayed merge spans it over the range.
	srcMerges := make([]xl.MergeRange, len(merges))
	for i, m := range merges {
		srcMerges[i] = xl.MergeRange(m)
	}

	for _, row := range rows {
		targetRow := row.Row + delta
		for c := 1; c < len(row.Cells); c++ {
			cell := row.Cells[c]
			if cell.IsEmpty() {
				continue
			}
			outCol, ok := r.outputCol(mapping, c)
			if !ok {
				continue // column removed by filtering
			}
			target := xl.NewCellRef(targetRow, outCol)
			if !target.InBounds() {
				r.warnf("skip write outside sheet bounds at %s on %q", target, dst.Name())
				continue
			}

			isChild := xl.ResolveAgainst(srcMerges, row.Row, c).Kind == xl.KindMergedChild
			if cell.HasContent() && !isChild {
				write := xl.ResolveAgainst(dstMerges, targetRow, outCol).Target()
				if cell.Formula != "" {
					if err := dst.SetCellFormula(write.Row, write.Col, cell.Formula); err != nil {
						return err
					}
				} else {
					if err := dst.SetCellValue(write.Row, write.Col, cell.Value); err != nil {
						return err
					}
				}
			}

			styleID, err := r.targetStyleID(dst, cell)
			if err != nil {
				return err
			}
			if styleID > 0 {
				if err := dst.SetStyleID(targetRow, outCol, styleID); err != nil {
					return err
				}
			}
		}
	}

	// Stale merges overlapping the landing band would combine with replayed
	// ones into larger ranges; clear them before replay.
	if len(rows) > 0 {
		endRow := rows[len(rows)-1].Row + delta
		if err := dst.UnmergeBlock(targetStart, endRow, r.state.MaxCol); err != nil {
			return err
		}
	}

	for _, m := range merges {
		translated, ok := r.translateMerge(m, delta, mapping)
		if !ok {
			continue
		}
		if translated.IsSingleCell() {
			continue
		}
		if err := dst.Merge(translated); err != nil {
			return err
		}
	}

	for _, row := range rows {
		h, ok := r.state.RowHeights[row.Row]
		if !ok || h <= 0 {
			continue
		}
		if err := dst.SetRowHeight(row.Row+delta, h); err != nil {
			return err
		}
	}

	cols := make([]int, 0, len(r.state.ColWidths))
	for c := range r.state.ColWidths {
		cols = append(cols, c)
	}
	sort.Ints(cols)
	for _, c := range cols {
		w := r.state.ColWidths[c]
		if w <= 0 {
			continue
		}
		outCol, ok := r.outputCol(mapping, c)
		if !ok {
			continue
		}
		if err := dst.SetColWidth(outCol, w); err != nil {
			return err
		}
	}

	return nil
}

// outputCol resolves a template column through the active mapping. Columns
// beyond the mapped definition range (a footer wider than the table) keep
// their relative position after the compacted block.
func (r *Restorer) outputCol(mapping *ColumnMapping, c int) (int, bool) {
	if mapping == nil {
		return c, true
	}
	if out, ok := mapping.Resolve(c); ok {
		return out, true
	}
	if c > mapping.MaxTemplateCol() {
		return c - (mapping.MaxTemplateCol() - mapping.NumOutputColumns()), true
	}
	return 0, false
}

// translateMerge shifts a merge record by the section's row delta and maps its
// column endpoints. When filtering removes endpoint columns the merge is
// narrowed to the contiguous surviving sub-range; when no columns survive it
// is dropped. Both cases are recorded as warnings.
func (r *Restorer) translateMerge(m MergeRecord, delta int, mapping *ColumnMapping) (xl.MergeRange, bool) {
	out := xl.MergeRange{
		MinRow: m.MinRow + delta,
		MaxRow: m.MaxRow + delta,
		MinCol: m.MinCol,
		MaxCol: m.MaxCol,
	}
	if mapping != nil {
		minOut, maxOut := 0, 0
		survivors := 0
		for c := m.MinCol; c <= m.MaxCol; c++ {
			oc, ok := r.outputCol(mapping, c)
			if !ok {
				continue
			}
			if survivors == 0 || oc < minOut {
				minOut = oc
			}
			if oc > maxOut {
				maxOut = oc
			}
			survivors++
		}
		if survivors == 0 {
			r.warnf("merge %s dropped: no columns survive filtering",
				xl.MergeRange{MinRow: m.MinRow, MinCol: m.MinCol, MaxRow: m.MaxRow, MaxCol: m.MaxCol})
			return xl.MergeRange{}, false
		}
		if survivors < m.MaxCol-m.MinCol+1 {
			r.warnf("merge %s narrowed to %d column(s) by filtering",
				xl.MergeRange{MinRow: m.MinRow, MinCol: m.MinCol, MaxRow: m.MaxRow, MaxCol: m.MaxCol}, survivors)
		}
		out.MinCol = minOut
		out.MaxCol = maxOut
	}
	if out.MinRow < 1 || out.MaxRow > excelize.TotalRows {
		r.warnf("merge %s dropped: target rows out of bounds", out)
		return xl.MergeRange{}, false
	}
	return out, true
}

// targetStyleID resolves the style to apply on the target sheet. Within the
// source workbook the captured style ID is reused directly; across workbooks
// the decoded style record is registered on the target file once and cached.
func (r *Restorer) targetStyleID(dst *xl.Sheet, cell CellSnapshot) (int, error) {
	if cell.StyleID == 0 {
		return 0, nil
	}
	if dst.SameFile(r.state.source) {
		return cell.StyleID, nil
	}
	if id, ok := r.styleIDs[cell.StyleID]; ok {
		return id, nil
	}
	if cell.Style == nil {
		return 0, nil
	}
	id, err := dst.File().NewStyle(cell.Style)
	if err != nil {
		return 0, fmt.Errorf("register style on %q: %w", dst.Name(), err)
	}
	r.styleIDs[cell.StyleID] = id
	return id, nil
}
