package build

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sheetcraft/invoicexl/internal/config"
	"github.com/sheetcraft/invoicexl/internal/layout"
	"github.com/sheetcraft/invoicexl/internal/xl"
)

// expandFormula renders a formula template for one data row. {row} resolves to
// the row number; {col_ref_N} resolves to the column letter of the rule's Nth
// input column ID in the built header.
func expandFormula(rule *config.FormulaRule, info layout.HeaderInfo, row int) (string, error) {
	out := strings.ReplaceAll(rule.Template, "{row}", strconv.Itoa(row))
	for i, id := range rule.Inputs {
		placeholder := fmt.Sprintf("{col_ref_%d}", i)
		if !strings.Contains(out, placeholder) {
			continue
		}
		col, ok := info.Column(id)
		if !ok {
			return "", fmt.Errorf("formula input %q: column not present in header", id)
		}
		letter, err := xl.ColName(col)
		if err != nil {
			return "", err
		}
		out = strings.ReplaceAll(out, placeholder, letter)
	}
	return out, nil
}

// sumFormula builds a =SUM over one column's data range.
func sumFormula(col, startRow, endRow int) (string, error) {
	letter, err := xl.ColName(col)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("=SUM(%s%d:%s%d)", letter, startRow, letter, endRow), nil
}
