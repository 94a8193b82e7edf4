package build

import (
	"fmt"

	"github.com/sheetcraft/invoicexl/internal/config"
	"github.com/sheetcraft/invoicexl/internal/data"
	"github.com/sheetcraft/invoicexl/internal/layout"
	"github.com/sheetcraft/invoicexl/internal/style"
	"github.com/sheetcraft/invoicexl/internal/template"
	"github.com/sheetcraft/invoicexl/internal/xl"
)

// Table writes resolved data rows under a built header: values and formula
// columns per cell, number formats and data styling per column, and vertical
// merges over contiguous equal values where the column asks for them.
type Table struct {
	cfg    *config.SheetConfig
	styles *style.Set

	rows         []data.Row
	palletCounts []int
}

// NewTable creates the table builder for one sheet over pre-resolved rows.
// palletCounts runs parallel to rows and feeds the table summary.
func NewTable(cfg *config.SheetConfig, styles *style.Set, rows []data.Row, palletCounts []int) *Table {
	return &Table{cfg: cfg, styles: styles, rows: rows, palletCounts: palletCounts}
}

// BuildTable implements layout.TableBuilder.
func (b *Table) BuildTable(dst *xl.Sheet, info layout.HeaderInfo, mode template.Mode) (layout.TableResult, error) {
	leaves := b.cfg.LeafColumns(mode)

	dataStart := info.SecondRowIndex + 1
	dataEnd := dataStart + len(b.rows) - 1 // dataStart-1 for an empty table

	for i, row := range b.rows {
		targetRow := dataStart + i
		for _, col := range leaves {
			outCol, ok := info.Column(col.ID)
			if !ok {
				return layout.TableResult{}, fmt.Errorf("table: column %q not present in header", col.ID)
			}
			if col.Formula != nil {
				formula, err := expandFormula(col.Formula, info, targetRow)
				if err != nil {
					return layout.TableResult{}, fmt.Errorf("table: column %q row %d: %w", col.ID, targetRow, err)
				}
				if err := dst.SetCellFormula(targetRow, outCol, formula); err != nil {
					return layout.TableResult{}, err
				}
				continue
			}
			v, ok := row[col.ID]
			if !ok || v == nil {
				continue
			}
			if err := dst.SetCellValue(targetRow, outCol, v); err != nil {
				return layout.TableResult{}, err
			}
		}
	}

	if len(b.rows) > 0 {
		if err := b.applyStyles(dst, info, leaves, dataStart, dataEnd); err != nil {
			return layout.TableResult{}, err
		}
		if err := b.mergeEqualRuns(dst, info, leaves, dataStart); err != nil {
			return layout.TableResult{}, err
		}
	}

	return layout.TableResult{
		DataStartRow:   dataStart,
		DataEndRow:     dataEnd,
		FooterRowStart: dataEnd + 1,
		Summary:        data.Summarize(b.rows, b.palletCounts),
	}, nil
}

// applyStyles styles every cell of the data region per column, including cells
// that hold no value, so the border grid stays unbroken.
func (b *Table) applyStyles(dst *xl.Sheet, info layout.HeaderInfo, leaves []config.Column, dataStart, dataEnd int) error {
	for _, col := range leaves {
		outCol, ok := info.Column(col.ID)
		if !ok {
			continue
		}
		id, err := b.styles.Data(col.Format)
		if err != nil {
			return fmt.Errorf("table: style for column %q: %w", col.ID, err)
		}
		if id == 0 {
			continue
		}
		if err := dst.SetRangeStyleID(dataStart, outCol, dataEnd, outCol, id); err != nil {
			return err
		}
	}
	return nil
}

// mergeEqualRuns merges vertically contiguous equal values in columns flagged
// MergeData. Runs shorter than two rows stay unmerged.
func (b *Table) mergeEqualRuns(dst *xl.Sheet, info layout.HeaderInfo, leaves []config.Column, dataStart int) error {
	for _, col := range leaves {
		if !col.MergeData {
			continue
		}
		outCol, ok := info.Column(col.ID)
		if !ok {
			continue
		}
		runStart := 0
		for i := 1; i <= len(b.rows); i++ {
			if i < len(b.rows) && b.rows[i][col.ID] == b.rows[runStart][col.ID] {
				continue
			}
			if i-runStart > 1 && b.rows[runStart][col.ID] != nil {
				err := dst.Merge(xl.MergeRange{
					MinRow: dataStart + runStart, MinCol: outCol,
					MaxRow: dataStart + i - 1, MaxCol: outCol,
				})
				if err != nil {
					return err
				}
			}
			runStart = i
		}
	}
	return nil
}
