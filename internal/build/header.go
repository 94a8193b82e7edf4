// Package build implements the phase builders the layout orchestrator drives:
// the table header, the data table and the generated footer, all driven by the
// sheet's layout configuration.
package build

import (
	"fmt"

	"github.com/sheetcraft/invoicexl/internal/config"
	"github.com/sheetcraft/invoicexl/internal/layout"
	"github.com/sheetcraft/invoicexl/internal/style"
	"github.com/sheetcraft/invoicexl/internal/template"
	"github.com/sheetcraft/invoicexl/internal/xl"
)

// Header writes the table header from the sheet's column definitions. Plain
// columns occupy one cell (spanning both header rows when any group forces a
// second row); groups write the parent text merged across their children.
type Header struct {
	cfg    *config.SheetConfig
	styles *style.Set
}

// NewHeader creates the header builder for one sheet.
func NewHeader(cfg *config.SheetConfig, styles *style.Set) *Header {
	return &Header{cfg: cfg, styles: styles}
}

// BuildHeader implements layout.HeaderBuilder.
func (b *Header) BuildHeader(dst *xl.Sheet, startRow int, mode template.Mode) (layout.HeaderInfo, layout.ColumnsFinalized, error) {
	cols := b.cfg.ActiveColumns(mode)
	if len(cols) == 0 {
		return layout.HeaderInfo{}, layout.ColumnsFinalized{}, fmt.Errorf("header: no columns survive mode filtering")
	}

	twoRows := false
	for _, col := range cols {
		if len(col.Children) > 0 {
			twoRows = true
			break
		}
	}
	firstRow := startRow
	secondRow := startRow
	if twoRows {
		secondRow = startRow + 1
	}

	info := layout.HeaderInfo{
		FirstRowIndex:  firstRow,
		SecondRowIndex: secondRow,
		ColumnMap:      make(map[string]int),
		ColumnIDMap:    make(map[string]int),
	}

	cursor := 1
	for _, col := range cols {
		if len(col.Children) == 0 {
			if err := dst.SetCellValue(firstRow, cursor, col.Header); err != nil {
				return info, layout.ColumnsFinalized{}, err
			}
			if twoRows {
				err := dst.Merge(xl.MergeRange{
					MinRow: firstRow, MinCol: cursor,
					MaxRow: secondRow, MaxCol: cursor,
				})
				if err != nil {
					return info, layout.ColumnsFinalized{}, err
				}
			}
			if err := b.recordColumn(dst, &info, col, cursor); err != nil {
				return info, layout.ColumnsFinalized{}, err
			}
			cursor++
			continue
		}

		if err := dst.SetCellValue(firstRow, cursor, col.Header); err != nil {
			return info, layout.ColumnsFinalized{}, err
		}
		if len(col.Children) > 1 {
			err := dst.Merge(xl.MergeRange{
				MinRow: firstRow, MinCol: cursor,
				MaxRow: firstRow, MaxCol: cursor + len(col.Children) - 1,
			})
			if err != nil {
				return info, layout.ColumnsFinalized{}, err
			}
		}
		for _, child := range col.Children {
			if err := dst.SetCellValue(secondRow, cursor, child.Header); err != nil {
				return info, layout.ColumnsFinalized{}, err
			}
			if err := b.recordColumn(dst, &info, child, cursor); err != nil {
				return info, layout.ColumnsFinalized{}, err
			}
			cursor++
		}
	}

	info.NumColumns = cursor - 1
	if id := b.styles.Header(); id > 0 {
		if err := dst.SetRangeStyleID(firstRow, 1, secondRow, info.NumColumns, id); err != nil {
			return info, layout.ColumnsFinalized{}, err
		}
	}
	return info, layout.ColumnsFinalized{NumColumns: info.NumColumns}, nil
}

func (b *Header) recordColumn(dst *xl.Sheet, info *layout.HeaderInfo, col config.Column, outCol int) error {
	info.ColumnMap[col.Header] = outCol
	info.ColumnIDMap[col.ID] = outCol
	if col.Width > 0 {
		if err := dst.SetColWidth(outCol, col.Width); err != nil {
			return err
		}
	}
	return nil
}
