package layout

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sheetcraft/invoicexl/internal/template"
	"github.com/sheetcraft/invoicexl/internal/xl"
)

// footerHintOffset positions the default footer search hint a few rows below
// the table header row, past the header block of typical stock templates.
const footerHintOffset = 4

// Orchestrator runs the rendering phases for one table in a fixed order:
//
//  1. capture the template state from the source sheet, or borrow a
//     pre-captured one
//  2. build the table header (finalizes the output columns)
//  3. build the column mapping for the active mode
//  4. build the data table
//  5. restore the template header, deferred until after step 2 because it is
//     remapped onto the finalized column layout
//  6. build the generated footer directly under the data region
//  7. restore the template footer under the generated footer
//
// Steps 5 and 7 are skipped when the orchestrator is configured without
// template sections, which multi-table sheets use to restore the header only
// before the first table and the footer only after the last.
type Orchestrator struct {
	header HeaderBuilder
	table  TableBuilder
	footer FooterBuilder

	mode template.Mode
	defs []template.ColumnDef

	state    *template.State
	restorer *template.Restorer

	templateHeader bool
	templateFooter bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMode sets the export mode driving column filtering.
func WithMode(m template.Mode) Option {
	return func(o *Orchestrator) { o.mode = m }
}

// WithPreCapturedState reuses a template state captured earlier instead of
// capturing from the source sheet. Multi-table sheets capture once and share
// the state across every table.
func WithPreCapturedState(state *template.State) Option {
	return func(o *Orchestrator) { o.state = state }
}

// WithRestorer reuses an existing restorer, sharing its cross-file style cache
// and warning list across multiple orchestrator runs on the same target.
func WithRestorer(r *template.Restorer) Option {
	return func(o *Orchestrator) { o.restorer = r }
}

// WithTemplateHeader controls whether step 5 restores the template header.
func WithTemplateHeader(enabled bool) Option {
	return func(o *Orchestrator) { o.templateHeader = enabled }
}

// WithTemplateFooter controls whether step 7 restores the template footer.
func WithTemplateFooter(enabled bool) Option {
	return func(o *Orchestrator) { o.templateFooter = enabled }
}

// New creates an orchestrator over the given phase builders and the unfiltered
// column definitions of the sheet layout. Template header and footer
// restoration are enabled by default.
func New(header HeaderBuilder, table TableBuilder, footer FooterBuilder, defs []template.ColumnDef, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		header:         header,
		table:          table,
		footer:         footer,
		defs:           defs,
		templateHeader: true,
		templateFooter: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Result carries everything a caller needs after a run.
type Result struct {
	HeaderInfo HeaderInfo
	Table      TableResult

	// NextRowAfterFooter is the first row after the generated footer; the
	// template footer lands there when step 7 runs.
	NextRowAfterFooter int
	// NextFreeRow is the first row after everything this run wrote, including
	// restored template footer rows. Chained tables continue from here.
	NextFreeRow int

	// State is the captured or borrowed template state, reusable by later
	// runs on the same template.
	State   *template.State
	Mapping *template.ColumnMapping

	// Warnings lists the recoverable anomalies the restorer recorded.
	Warnings []string
}

// CaptureTemplate captures the template state for a table whose header starts
// at tableHeaderRow: the rows above the header form the template header, and
// the footer search is hinted a few rows below the header row.
func CaptureTemplate(src *xl.Sheet, defs []template.ColumnDef, tableHeaderRow int) (*template.State, error) {
	state, err := template.Capture(src, totalSpan(defs), tableHeaderRow-1, tableHeaderRow+footerHintOffset)
	if err != nil {
		return nil, fmt.Errorf("layout: capture template: %w", err)
	}
	return state, nil
}

// Build renders one table whose header starts at tableHeaderRow on dst. src is
// the template source sheet; it may be nil when a pre-captured state was
// supplied.
func (o *Orchestrator) Build(src, dst *xl.Sheet, tableHeaderRow int) (*Result, error) {
	if tableHeaderRow < 1 {
		return nil, fmt.Errorf("layout: invalid table header row %d", tableHeaderRow)
	}

	// Step 1: capture or borrow.
	state := o.state
	if state == nil {
		if src == nil {
			return nil, fmt.Errorf("layout: no template source sheet and no pre-captured state")
		}
		var err error
		state, err = CaptureTemplate(src, o.defs, tableHeaderRow)
		if err != nil {
			return nil, err
		}
	}
	restorer := o.restorer
	if restorer == nil {
		restorer = template.NewRestorer(state)
	}

	// Step 2: table header. The returned ColumnsFinalized value is the gate
	// for restoring the template header later.
	info, finalized, err := o.header.BuildHeader(dst, tableHeaderRow, o.mode)
	if err != nil {
		return nil, fmt.Errorf("layout: build header at row %d: %w", tableHeaderRow, err)
	}

	// Step 3: column mapping, built only when the mode removes columns. A nil
	// mapping means the template layout passes through unchanged.
	var mapping *template.ColumnMapping
	if o.mode.FiltersAny(o.defs) {
		mapping, err = template.BuildColumnMapping(o.defs, o.mode)
		if err != nil {
			return nil, fmt.Errorf("layout: build column mapping: %w", err)
		}
		if mapping.NumOutputColumns() != finalized.NumColumns {
			return nil, fmt.Errorf("layout: header wrote %d columns but mapping yields %d",
				finalized.NumColumns, mapping.NumOutputColumns())
		}
	} else if total := totalSpan(o.defs); total != finalized.NumColumns {
		return nil, fmt.Errorf("layout: header wrote %d columns but layout declares %d",
			finalized.NumColumns, total)
	}

	// Step 4: data table.
	tableResult, err := o.table.BuildTable(dst, info, o.mode)
	if err != nil {
		return nil, fmt.Errorf("layout: build data table: %w", err)
	}

	// Step 5: deferred template header.
	if o.templateHeader {
		if err := o.restoreTemplateHeader(restorer, dst, mapping, finalized); err != nil {
			return nil, err
		}
	}

	// Step 6: generated footer.
	nextRowAfterFooter, err := o.footer.BuildFooter(dst, info, tableResult)
	if err != nil {
		return nil, fmt.Errorf("layout: build footer at row %d: %w", tableResult.FooterRowStart, err)
	}

	// Step 7: template footer.
	nextFree := nextRowAfterFooter
	if o.templateFooter && state.HasFooter() {
		if err := restorer.RestoreFooter(dst, nextRowAfterFooter, mapping); err != nil {
			return nil, fmt.Errorf("layout: %w", err)
		}
		nextFree = nextRowAfterFooter + state.FooterRowCount()
	}

	log.Debug().
		Str("sheet", dst.Name()).
		Int("header_row", tableHeaderRow).
		Int("data_rows", tableResult.DataEndRow-tableResult.DataStartRow+1).
		Int("next_free_row", nextFree).
		Msg("table rendered")

	return &Result{
		HeaderInfo:         info,
		Table:              tableResult,
		NextRowAfterFooter: nextRowAfterFooter,
		NextFreeRow:        nextFree,
		State:              state,
		Mapping:            mapping,
		Warnings:           restorer.Warnings(),
	}, nil
}

// totalSpan returns the Excel column count of the unfiltered layout.
func totalSpan(defs []template.ColumnDef) int {
	n := 0
	for _, d := range defs {
		n += d.Span
	}
	return n
}

// restoreTemplateHeader requires the ColumnsFinalized proof so the call cannot
// be sequenced before the header phase has fixed the output layout.
func (o *Orchestrator) restoreTemplateHeader(r *template.Restorer, dst *xl.Sheet, mapping *template.ColumnMapping, _ ColumnsFinalized) error {
	if err := r.RestoreHeader(dst, mapping); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	return nil
}
