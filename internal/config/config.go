// Package config defines the typed report layout configuration. The config is
// decoded from YAML once at startup and validated before any worksheet is
// touched; builders receive typed structs instead of probing loose maps.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sheetcraft/invoicexl/internal/template"
)

// Config is the root of the report layout configuration. Sheets render in
// declaration order.
type Config struct {
	Sheets []SheetConfig `yaml:"sheets"`
}

// SheetConfig configures one worksheet of the output workbook.
type SheetConfig struct {
	Name string `yaml:"name"`

	// StartRow is the 1-based row where the table header is written. Rows
	// above it belong to the decorative template header.
	StartRow int `yaml:"start_row"`

	// DataSource selects what fills the table: "aggregation" for the
	// single-table aggregated view, "processed_tables" for the multi-table
	// (packing list) view.
	DataSource string `yaml:"data_source"`

	Columns []Column     `yaml:"columns"`
	Footer  FooterConfig `yaml:"footer"`
	Styling SheetStyling `yaml:"styling"`

	// WeightSummary appends a cross-table net/gross weight block after the
	// footer on single-table sheets.
	WeightSummary bool `yaml:"weight_summary"`
}

// Column defines one table column or a parent/child header group.
type Column struct {
	ID     string `yaml:"id"`
	Header string `yaml:"header"`

	// Children turns this definition into a two-row header group; the parent
	// cell spans the children horizontally.
	Children []Column `yaml:"children"`

	Width  float64 `yaml:"width"`
	Format string  `yaml:"format"` // number format, e.g. "#,##0.00"

	// Source names the field of the data source feeding this column.
	Source string `yaml:"source"`
	// Expr computes the cell value from the row environment instead of a
	// direct source field, e.g. "net * 1.08".
	Expr string `yaml:"expr"`
	// Formula writes an Excel formula instead of a value.
	Formula *FormulaRule `yaml:"formula"`

	SkipOnDAF    bool `yaml:"skip_on_daf"`
	SkipOnCustom bool `yaml:"skip_on_custom"`

	// SumInFooter adds a =SUM(...) over the data rows in the footer.
	SumInFooter bool `yaml:"sum_in_footer"`
	// MergeData merges vertically contiguous equal values in the data region
	// (description, pallet and HS-code columns in the stock templates).
	MergeData bool `yaml:"merge_data"`
}

// Span returns the number of Excel columns this definition occupies. A group
// declared with an empty children list has span 0, which validation rejects.
func (c Column) Span() int {
	if c.Children == nil {
		return 1
	}
	return len(c.Children)
}

// FormulaRule is an Excel formula template. Placeholders {col_ref_N} resolve
// to the column letter of Inputs[N]; {row} resolves to the data row number.
type FormulaRule struct {
	Template string   `yaml:"template"`
	Inputs   []string `yaml:"inputs"`
}

// FooterConfig configures the generated TOTAL row and its add-ons.
type FooterConfig struct {
	TotalText       string        `yaml:"total_text"`
	TotalTextColumn string        `yaml:"total_text_column"` // column ID
	PalletColumn    string        `yaml:"pallet_column"`     // column ID
	MergeRules      []FooterMerge `yaml:"merge_rules"`

	// AddOns lists extra blocks rendered under the TOTAL row. Supported:
	// "leather_summary", "weight_summary".
	AddOns []string `yaml:"add_ons"`
}

// FooterMerge merges footer cells horizontally starting at a column ID.
type FooterMerge struct {
	StartColumn string `yaml:"start_column"` // column ID
	Span        int    `yaml:"span"`
}

// SheetStyling holds the per-sheet style specs. Specs are immutable value
// records; they are registered with the workbook once per sheet.
type SheetStyling struct {
	Header StyleSpec `yaml:"header"`
	Data   StyleSpec `yaml:"data"`
	Footer StyleSpec `yaml:"footer"`
}

// StyleSpec is a declarative cell style.
type StyleSpec struct {
	Bold       bool    `yaml:"bold"`
	Italic     bool    `yaml:"italic"`
	Size       float64 `yaml:"size"`
	FontColor  string  `yaml:"font_color"`
	FillColor  string  `yaml:"fill_color"`
	Border     string  `yaml:"border"`     // "thin" or "" for none
	Horizontal string  `yaml:"horizontal"` // "left", "center", "right"
	Vertical   string  `yaml:"vertical"`   // "top", "center", "bottom"
	WrapText   bool    `yaml:"wrap_text"`
}

// IsZero reports whether the spec carries no styling at all.
func (s StyleSpec) IsZero() bool {
	return s == StyleSpec{}
}

// Load reads and validates a layout configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", path, err)
	}
	cfg, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a layout configuration.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Sheet returns the configuration for a named sheet.
func (c *Config) Sheet(name string) (*SheetConfig, bool) {
	for i := range c.Sheets {
		if c.Sheets[i].Name == name {
			return &c.Sheets[i], true
		}
	}
	return nil, false
}

// ColumnDefs converts the sheet's columns into the remapper's definitions.
func (s *SheetConfig) ColumnDefs() []template.ColumnDef {
	defs := make([]template.ColumnDef, 0, len(s.Columns))
	for _, col := range s.Columns {
		defs = append(defs, template.ColumnDef{
			ID:           col.ID,
			Span:         col.Span(),
			SkipOnDAF:    col.SkipOnDAF,
			SkipOnCustom: col.SkipOnCustom,
		})
	}
	return defs
}

// ActiveColumns returns the columns kept under the given mode, flattened so
// that group children appear as individual columns under their parent.
func (s *SheetConfig) ActiveColumns(mode template.Mode) []Column {
	var kept []Column
	for _, col := range s.Columns {
		if (mode.DAF && col.SkipOnDAF) || (mode.Custom && col.SkipOnCustom) {
			continue
		}
		kept = append(kept, col)
	}
	return kept
}

// LeafColumns returns the mode-filtered columns flattened to leaves: group
// children appear as individual columns in place of their parent. The order
// matches the output column order of the built header.
func (s *SheetConfig) LeafColumns(mode template.Mode) []Column {
	var leaves []Column
	for _, col := range s.ActiveColumns(mode) {
		if len(col.Children) == 0 {
			leaves = append(leaves, col)
			continue
		}
		leaves = append(leaves, col.Children...)
	}
	return leaves
}

// NumTemplateColumns returns the total Excel column count of the unfiltered
// template layout (the sum of spans).
func (s *SheetConfig) NumTemplateColumns() int {
	n := 0
	for _, col := range s.Columns {
		n += col.Span()
	}
	return n
}

// columnPosition returns the 1-based Excel column where the identified column
// starts in the unfiltered template layout.
func (s *SheetConfig) columnPosition(id string) (int, bool) {
	pos := 1
	for _, col := range s.Columns {
		if col.ID == id {
			return pos, true
		}
		for i, child := range col.Children {
			if child.ID == id {
				return pos + i, true
			}
		}
		pos += col.Span()
	}
	return 0, false
}

// MultiTable reports whether the sheet renders one table per processed input
// table rather than a single aggregated table.
func (s *SheetConfig) MultiTable() bool {
	return s.DataSource == "processed_tables"
}
