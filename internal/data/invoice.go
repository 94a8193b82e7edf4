// Package data models the invoice data file and the calculations derived from
// it. The file is produced upstream as JSON with columnar tables: each table is
// a map from field name to a column of values, all columns sharing row order.
package data

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sheetcraft/invoicexl/internal/template"
)

// Well-known field names of processed tables.
const (
	FieldNet         = "net"
	FieldGross       = "gross"
	FieldPalletCount = "pallet_count"
)

// Well-known column IDs the calculators key on.
const (
	ColDesc        = "col_desc"
	ColNetWeight   = "col_net_weight"
	ColGrossWeight = "col_gross_weight"
)

// Invoice is the decoded invoice data file.
type Invoice struct {
	// StandardAggregation, CustomAggregation and DAFCompounded are the three
	// aggregated views of the invoice line items; the export mode selects one.
	StandardAggregation map[string][]any `json:"standard_aggregation_results"`
	CustomAggregation   map[string][]any `json:"custom_aggregation_results"`
	DAFCompounded       map[string][]any `json:"final_DAF_compounded_result"`

	// ProcessedTables holds the per-pallet-group tables keyed by table number
	// ("1", "2", ...), each columnar like the aggregations.
	ProcessedTables map[string]map[string][]any `json:"processed_tables_data"`
}

// Load reads and decodes an invoice data file.
func Load(path string) (*Invoice, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load invoice data %q: %w", path, err)
	}
	var inv Invoice
	if err := json.Unmarshal(raw, &inv); err != nil {
		return nil, fmt.Errorf("parse invoice data %q: %w", path, err)
	}
	return &inv, nil
}

// Table is one columnar table: field name to a column of values. Columns may
// have unequal lengths in malformed inputs; RowCount takes the longest and
// Value reports missing entries.
type Table struct {
	Name    string
	Columns map[string][]any
}

// RowCount returns the number of rows (the longest column).
func (t Table) RowCount() int {
	n := 0
	for _, col := range t.Columns {
		if len(col) > n {
			n = len(col)
		}
	}
	return n
}

// Value returns the value of a field at a row index.
func (t Table) Value(field string, row int) (any, bool) {
	col, ok := t.Columns[field]
	if !ok || row < 0 || row >= len(col) {
		return nil, false
	}
	return col[row], true
}

// Env builds the expression environment for one row: every field of the table
// mapped to its value at that row, numeric strings coerced to float64 so
// arithmetic expressions work on them.
func (t Table) Env(row int) map[string]any {
	env := make(map[string]any, len(t.Columns))
	for field := range t.Columns {
		v, ok := t.Value(field, row)
		if !ok {
			env[field] = nil
			continue
		}
		if n, isNum := Number(v); isNum {
			env[field] = n
		} else {
			env[field] = v
		}
	}
	return env
}

// PalletCounts returns the table's pallet_count column as integers, padded
// with zeros to the table's row count.
func (t Table) PalletCounts() []int {
	n := t.RowCount()
	counts := make([]int, n)
	for i := 0; i < n; i++ {
		if v, ok := t.Value(FieldPalletCount, i); ok {
			counts[i] = Int(v)
		}
	}
	return counts
}

// Aggregation returns the aggregated view the export mode asks for. Custom
// data wins when both flags are set; DAF compounding is the fallback when no
// custom aggregation is present.
func (inv *Invoice) Aggregation(mode template.Mode) Table {
	switch {
	case mode.Custom && len(inv.CustomAggregation) > 0:
		return Table{Name: "custom", Columns: inv.CustomAggregation}
	case mode.DAF && len(inv.DAFCompounded) > 0:
		return Table{Name: "DAF", Columns: inv.DAFCompounded}
	default:
		return Table{Name: "standard", Columns: inv.StandardAggregation}
	}
}

// Tables returns the processed tables in numeric key order ("1", "2", ... "10"
// sorts numerically, not lexically).
func (inv *Invoice) Tables() []Table {
	keys := make([]string, 0, len(inv.ProcessedTables))
	for k := range inv.ProcessedTables {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, aErr := strconv.Atoi(keys[i])
		b, bErr := strconv.Atoi(keys[j])
		if aErr == nil && bErr == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})
	tables := make([]Table, 0, len(keys))
	for _, k := range keys {
		tables = append(tables, Table{Name: k, Columns: inv.ProcessedTables[k]})
	}
	return tables
}

// Number coerces a value to float64. JSON numbers arrive as float64; numeric
// strings may carry thousands separators.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(n, ",", ""))
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Int coerces a value to int, truncating floats. Non-numeric values yield 0.
func Int(v any) int {
	f, ok := Number(v)
	if !ok {
		return 0
	}
	return int(f)
}
