package build

import (
	"github.com/sheetcraft/invoicexl/internal/data"
	"github.com/sheetcraft/invoicexl/internal/xl"
)

// WriteGrandTotalPallets writes the cross-table pallet grand total after the
// last table of a multi-table sheet and returns the next free row.
func WriteGrandTotalPallets(dst *xl.Sheet, row, totalPallets int) (int, error) {
	if err := dst.SetCellValue(row, 1, "TOTAL: "+palletText(totalPallets)); err != nil {
		return 0, err
	}
	return row + 1, nil
}

// WriteGlobalWeightSummary writes the cross-table net and gross weight block
// and returns the next free row.
func WriteGlobalWeightSummary(dst *xl.Sheet, row int, g data.GlobalSummary) (int, error) {
	lines := []struct {
		label string
		value float64
	}{
		{"TOTAL NET WEIGHT:", g.TotalNet},
		{"TOTAL GROSS WEIGHT:", g.TotalGross},
	}
	for i, line := range lines {
		if err := dst.SetCellValue(row+i, 1, line.label); err != nil {
			return 0, err
		}
		if err := dst.SetCellValue(row+i, 2, line.value); err != nil {
			return 0, err
		}
	}
	return row + len(lines), nil
}
