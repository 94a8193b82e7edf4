package data

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/sheetcraft/invoicexl/internal/config"
)

// Row holds the resolved values of one data row keyed by column ID. Formula
// columns are absent: the table builder writes those from their templates.
type Row map[string]any

// Resolver turns columnar table rows into Row values following the sheet's
// column definitions. Expression columns are compiled once per resolver and
// evaluated against each row's environment.
type Resolver struct {
	cols     []config.Column
	programs map[string]*vm.Program
}

// NewResolver compiles the expression columns of the given definitions.
// Definitions must already be flattened and filtered for the active mode.
func NewResolver(cols []config.Column) (*Resolver, error) {
	r := &Resolver{
		cols:     cols,
		programs: make(map[string]*vm.Program),
	}
	for _, col := range cols {
		if col.Expr == "" {
			continue
		}
		prog, err := expr.Compile(col.Expr, expr.AllowUndefinedVariables())
		if err != nil {
			return nil, fmt.Errorf("column %q: compile expr %q: %w", col.ID, col.Expr, err)
		}
		r.programs[col.ID] = prog
	}
	return r, nil
}

// Resolve produces the Row for one source row.
func (r *Resolver) Resolve(t Table, row int) (Row, error) {
	var env map[string]any
	out := make(Row, len(r.cols))
	for _, col := range r.cols {
		switch {
		case col.Formula != nil:
			// Written by the table builder from the formula template.
		case col.Expr != "":
			if env == nil {
				env = t.Env(row)
			}
			v, err := expr.Run(r.programs[col.ID], env)
			if err != nil {
				return nil, fmt.Errorf("column %q: eval expr on row %d of table %q: %w", col.ID, row, t.Name, err)
			}
			out[col.ID] = v
		case col.Source != "":
			v, ok := t.Value(col.Source, row)
			if !ok {
				continue
			}
			if n, isNum := Number(v); isNum {
				out[col.ID] = n
			} else {
				out[col.ID] = v
			}
		}
	}
	return out, nil
}

// ResolveAll produces the Rows for a whole table.
func (r *Resolver) ResolveAll(t Table) ([]Row, error) {
	n := t.RowCount()
	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		row, err := r.Resolve(t, i)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
