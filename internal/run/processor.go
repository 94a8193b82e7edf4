package run

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/sheetcraft/invoicexl/internal/build"
	"github.com/sheetcraft/invoicexl/internal/config"
	"github.com/sheetcraft/invoicexl/internal/data"
	"github.com/sheetcraft/invoicexl/internal/layout"
	"github.com/sheetcraft/invoicexl/internal/style"
	"github.com/sheetcraft/invoicexl/internal/template"
	"github.com/sheetcraft/invoicexl/internal/xl"
)

// tableSpacerRows separates consecutive tables on multi-table sheets.
const tableSpacerRows = 1

// renderSheet renders one configured sheet into the output workbook. All
// errors are captured into the result so the caller can isolate failures.
func renderSheet(tmpl, out *excelize.File, sc *config.SheetConfig, inv *data.Invoice, mode template.Mode) SheetResult {
	var result SheetResult

	src, err := templateSheet(tmpl, sc.Name)
	if err != nil {
		result.Err = fmt.Errorf("sheet %q: %w", sc.Name, err)
		return result
	}
	dst, err := xl.Create(out, sc.Name)
	if err != nil {
		result.Err = fmt.Errorf("sheet %q: %w", sc.Name, err)
		return result
	}
	styles, err := style.NewSet(out, sc.Styling)
	if err != nil {
		result.Err = fmt.Errorf("sheet %q: %w", sc.Name, err)
		return result
	}
	resolver, err := data.NewResolver(sc.LeafColumns(mode))
	if err != nil {
		result.Err = fmt.Errorf("sheet %q: %w", sc.Name, err)
		return result
	}

	if sc.MultiTable() {
		result.Err = renderMultiTable(src, dst, sc, styles, resolver, inv, mode, &result)
	} else {
		result.Err = renderSingleTable(src, dst, sc, styles, resolver, inv, mode, &result)
	}
	if result.Err != nil {
		result.Err = fmt.Errorf("sheet %q: %w", sc.Name, result.Err)
	}
	return result
}

// renderSingleTable runs one orchestrator pass over the mode-selected
// aggregation, then the optional cross-table weight block.
func renderSingleTable(src, dst *xl.Sheet, sc *config.SheetConfig, styles *style.Set, resolver *data.Resolver, inv *data.Invoice, mode template.Mode, result *SheetResult) error {
	table := inv.Aggregation(mode)
	rows, err := resolver.ResolveAll(table)
	if err != nil {
		return err
	}

	orch := layout.New(
		build.NewHeader(sc, styles),
		build.NewTable(sc, styles, rows, table.PalletCounts()),
		build.NewFooter(sc, styles, mode),
		sc.ColumnDefs(),
		layout.WithMode(mode),
	)
	res, err := orch.Build(src, dst, sc.StartRow)
	if err != nil {
		return err
	}
	result.Tables = 1
	result.Rows = len(rows)
	result.Warnings = res.Warnings

	if sc.WeightSummary {
		if _, err := build.WriteGlobalWeightSummary(dst, res.NextFreeRow+1, inv.GlobalSummary()); err != nil {
			return err
		}
	}
	return nil
}

// renderMultiTable renders one table per processed input table, threading the
// row pointer through the passes. The template state is captured once and
// shared by every pass; the template header is restored only before the first
// table and the template footer only after the last. A grand-total pallet row
// closes the sheet.
func renderMultiTable(src, dst *xl.Sheet, sc *config.SheetConfig, styles *style.Set, resolver *data.Resolver, inv *data.Invoice, mode template.Mode, result *SheetResult) error {
	tables := inv.Tables()
	if len(tables) == 0 {
		return fmt.Errorf("no processed tables in invoice data")
	}

	state, err := layout.CaptureTemplate(src, sc.ColumnDefs(), sc.StartRow)
	if err != nil {
		return err
	}
	restorer := template.NewRestorer(state)

	grandPallets := 0
	rowPtr := sc.StartRow

	for i, table := range tables {
		rows, err := resolver.ResolveAll(table)
		if err != nil {
			return fmt.Errorf("table %q: %w", table.Name, err)
		}

		orch := layout.New(
			build.NewHeader(sc, styles),
			build.NewTable(sc, styles, rows, table.PalletCounts()),
			build.NewFooter(sc, styles, mode),
			sc.ColumnDefs(),
			layout.WithMode(mode),
			layout.WithPreCapturedState(state),
			layout.WithRestorer(restorer),
			layout.WithTemplateHeader(i == 0),
			layout.WithTemplateFooter(i == len(tables)-1),
		)
		res, err := orch.Build(nil, dst, rowPtr)
		if err != nil {
			return fmt.Errorf("table %q: %w", table.Name, err)
		}

		grandPallets += res.Table.Summary.TotalPallets
		result.Tables++
		result.Rows += len(rows)
		result.Warnings = res.Warnings

		rowPtr = res.NextFreeRow
		if i < len(tables)-1 {
			rowPtr += tableSpacerRows
		}
	}

	next, err := build.WriteGrandTotalPallets(dst, rowPtr, grandPallets)
	if err != nil {
		return err
	}
	if sc.WeightSummary {
		if _, err := build.WriteGlobalWeightSummary(dst, next, inv.GlobalSummary()); err != nil {
			return err
		}
	}
	return nil
}
