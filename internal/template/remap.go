package template

import (
	"fmt"
	"sort"
)

// ColumnDef describes one template column (or parent/child header group) for
// mapping purposes. Span is 1 for a plain column, or the number of child
// columns for a group.
type ColumnDef struct {
	ID           string
	Span         int
	SkipOnDAF    bool
	SkipOnCustom bool
}

// Mode holds the active export-mode flags that drive column filtering.
type Mode struct {
	DAF    bool
	Custom bool
}

// FiltersAny reports whether the mode removes at least one of the given
// column definitions.
func (m Mode) FiltersAny(defs []ColumnDef) bool {
	for _, d := range defs {
		if m.skips(d) {
			return true
		}
	}
	return false
}

func (m Mode) skips(d ColumnDef) bool {
	return (m.DAF && d.SkipOnDAF) || (m.Custom && d.SkipOnCustom)
}

// ColumnMapping maps 1-based template column indices to 1-based output column
// indices. Filtered columns are absent. The mapping is monotonically
// non-decreasing on output column: relative column order is preserved, removal
// only compacts the sequence.
type ColumnMapping struct {
	out            map[int]int
	maxTemplateCol int
	numOutput      int
}

// Resolve returns the output column for a template column. ok is false when
// the column was removed by filtering or lies outside the mapped range.
func (m *ColumnMapping) Resolve(templateCol int) (outputCol int, ok bool) {
	outputCol, ok = m.out[templateCol]
	return outputCol, ok
}

// MaxTemplateCol returns the highest template column covered by the mapping.
func (m *ColumnMapping) MaxTemplateCol() int { return m.maxTemplateCol }

// NumOutputColumns returns the number of surviving output columns.
func (m *ColumnMapping) NumOutputColumns() int { return m.numOutput }

// OutputColumns returns the surviving output column indices in ascending
// order. For a valid mapping this is the contiguous range [1..k].
func (m *ColumnMapping) OutputColumns() []int {
	cols := make([]int, 0, len(m.out))
	for _, v := range m.out {
		cols = append(cols, v)
	}
	sort.Ints(cols)
	return cols
}

// BuildColumnMapping walks the column definitions in declaration order and
// computes, for every Excel column each definition occupies, its position in
// the filtered output layout. Skipped definitions advance only the template
// cursor; kept definitions advance both cursors by their span.
//
// A zero or negative span is a configuration error and is rejected here as a
// second line of defense; config validation rejects it at load time.
func BuildColumnMapping(defs []ColumnDef, mode Mode) (*ColumnMapping, error) {
	mapping := &ColumnMapping{out: make(map[int]int)}
	templateCursor := 1
	outputCursor := 1

	for _, def := range defs {
		if def.Span < 1 {
			return nil, fmt.Errorf("column %q: invalid span %d", def.ID, def.Span)
		}
		if mode.skips(def) {
			templateCursor += def.Span
			continue
		}
		for i := 0; i < def.Span; i++ {
			mapping.out[templateCursor+i] = outputCursor + i
		}
		templateCursor += def.Span
		outputCursor += def.Span
	}

	mapping.maxTemplateCol = templateCursor - 1
	mapping.numOutput = outputCursor - 1
	return mapping, nil
}
