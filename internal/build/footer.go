package build

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sheetcraft/invoicexl/internal/config"
	"github.com/sheetcraft/invoicexl/internal/data"
	"github.com/sheetcraft/invoicexl/internal/layout"
	"github.com/sheetcraft/invoicexl/internal/style"
	"github.com/sheetcraft/invoicexl/internal/template"
	"github.com/sheetcraft/invoicexl/internal/xl"
)

// Footer writes the generated totals row directly under the data region: the
// TOTAL label, the pallet-count text, =SUM formulas over every column flagged
// for summing, the configured horizontal merges, and the optional leather and
// weight add-on blocks beneath.
type Footer struct {
	cfg    *config.SheetConfig
	styles *style.Set
	mode   template.Mode
}

// NewFooter creates the footer builder for one sheet.
func NewFooter(cfg *config.SheetConfig, styles *style.Set, mode template.Mode) *Footer {
	return &Footer{cfg: cfg, styles: styles, mode: mode}
}

// BuildFooter implements layout.FooterBuilder.
func (b *Footer) BuildFooter(dst *xl.Sheet, info layout.HeaderInfo, table layout.TableResult) (int, error) {
	fc := b.cfg.Footer
	footerRow := table.FooterRowStart

	totalText := fc.TotalText
	if totalText == "" {
		totalText = "TOTAL:"
	}
	if col, ok := info.Column(fc.TotalTextColumn); ok {
		if err := dst.SetCellValue(footerRow, col, totalText); err != nil {
			return 0, err
		}
	}
	if col, ok := info.Column(fc.PalletColumn); ok {
		if err := dst.SetCellValue(footerRow, col, palletText(table.Summary.TotalPallets)); err != nil {
			return 0, err
		}
	}

	leaves := b.cfg.LeafColumns(b.mode)
	if table.DataEndRow >= table.DataStartRow {
		for _, col := range leaves {
			if !col.SumInFooter {
				continue
			}
			outCol, ok := info.Column(col.ID)
			if !ok {
				continue
			}
			formula, err := sumFormula(outCol, table.DataStartRow, table.DataEndRow)
			if err != nil {
				return 0, err
			}
			if err := dst.SetCellFormula(footerRow, outCol, formula); err != nil {
				return 0, err
			}
		}
	}

	if err := b.applyFooterStyles(dst, info, leaves, footerRow); err != nil {
		return 0, err
	}

	for _, rule := range fc.MergeRules {
		startCol, ok := info.Column(rule.StartColumn)
		if !ok {
			// The anchor column was filtered out by the active mode.
			log.Warn().Str("sheet", dst.Name()).Str("column", rule.StartColumn).
				Msg("footer merge rule skipped, anchor column filtered out")
			continue
		}
		err := dst.Merge(xl.MergeRange{
			MinRow: footerRow, MinCol: startCol,
			MaxRow: footerRow, MaxCol: startCol + rule.Span - 1,
		})
		if err != nil {
			return 0, err
		}
	}

	next := footerRow + 1
	for _, addOn := range fc.AddOns {
		var err error
		switch addOn {
		case "leather_summary":
			next, err = b.writeLeatherSummary(dst, info, table.Summary.Leather, next)
		case "weight_summary":
			next, err = b.writeWeightSummary(dst, table.Summary.Weights, next)
		default:
			err = fmt.Errorf("footer: unknown add_on %q", addOn)
		}
		if err != nil {
			return 0, err
		}
	}
	return next, nil
}

func (b *Footer) applyFooterStyles(dst *xl.Sheet, info layout.HeaderInfo, leaves []config.Column, footerRow int) error {
	for _, col := range leaves {
		outCol, ok := info.Column(col.ID)
		if !ok {
			continue
		}
		format := ""
		if col.SumInFooter {
			format = col.Format
		}
		id, err := b.styles.Footer(format)
		if err != nil {
			return fmt.Errorf("footer: style for column %q: %w", col.ID, err)
		}
		if id == 0 {
			continue
		}
		if err := dst.SetStyleID(footerRow, outCol, id); err != nil {
			return err
		}
	}
	return nil
}

// writeLeatherSummary writes one row per leather type: the type label, its
// pallet-count text, and its per-column sums in the columns flagged for
// summing.
func (b *Footer) writeLeatherSummary(dst *xl.Sheet, info layout.HeaderInfo, leather data.LeatherSummary, startRow int) (int, error) {
	row := startRow
	for _, leatherType := range leather.Types() {
		totals := leather[leatherType]
		if totals.PalletCount == 0 && len(totals.Columns) == 0 {
			continue
		}
		if err := dst.SetCellValue(row, 1, leatherType+":"); err != nil {
			return 0, err
		}
		if col, ok := info.Column(b.cfg.Footer.PalletColumn); ok {
			if err := dst.SetCellValue(row, col, palletText(totals.PalletCount)); err != nil {
				return 0, err
			}
		}
		for _, col := range b.cfg.LeafColumns(b.mode) {
			if !col.SumInFooter {
				continue
			}
			outCol, ok := info.Column(col.ID)
			if !ok {
				continue
			}
			if v, ok := totals.Columns[col.ID]; ok {
				if err := dst.SetCellValue(row, outCol, v); err != nil {
					return 0, err
				}
			}
		}
		row++
	}
	return row, nil
}

func (b *Footer) writeWeightSummary(dst *xl.Sheet, w data.WeightSummary, startRow int) (int, error) {
	lines := []struct {
		label string
		value float64
	}{
		{"NET WEIGHT:", w.Net},
		{"GROSS WEIGHT:", w.Gross},
	}
	for i, line := range lines {
		if err := dst.SetCellValue(startRow+i, 1, line.label); err != nil {
			return 0, err
		}
		if err := dst.SetCellValue(startRow+i, 2, line.value); err != nil {
			return 0, err
		}
	}
	return startRow + len(lines), nil
}

func palletText(n int) string {
	return fmt.Sprintf("%d PALLET(S)", n)
}
