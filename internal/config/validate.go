package config

import (
	"fmt"
)

// Validate checks the configuration once at load time. Builders may assume a
// validated config: column spans are positive, IDs are unique, and footer
// references resolve.
func (c *Config) Validate() error {
	if len(c.Sheets) == 0 {
		return fmt.Errorf("config: no sheets defined")
	}
	seen := make(map[string]bool, len(c.Sheets))
	for i := range c.Sheets {
		s := &c.Sheets[i]
		if s.Name == "" {
			return fmt.Errorf("config: sheet %d has no name", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("config: duplicate sheet %q", s.Name)
		}
		seen[s.Name] = true
		if err := s.validate(); err != nil {
			return fmt.Errorf("config: sheet %q: %w", s.Name, err)
		}
	}
	return nil
}

func (s *SheetConfig) validate() error {
	if s.StartRow < 1 {
		return fmt.Errorf("start_row %d: must be >= 1", s.StartRow)
	}
	switch s.DataSource {
	case "aggregation", "processed_tables":
	case "":
		return fmt.Errorf("data_source is required")
	default:
		return fmt.Errorf("data_source %q: unknown (want aggregation or processed_tables)", s.DataSource)
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("no columns defined")
	}

	ids := make(map[string]bool)
	for _, col := range s.Columns {
		if err := validateColumn(col, ids); err != nil {
			return err
		}
	}

	if err := s.validateFooter(ids); err != nil {
		return err
	}
	return nil
}

func validateColumn(col Column, ids map[string]bool) error {
	if col.ID == "" {
		return fmt.Errorf("column with header %q has no id", col.Header)
	}
	if ids[col.ID] {
		return fmt.Errorf("duplicate column id %q", col.ID)
	}
	ids[col.ID] = true

	// A group with zero children would be a zero-span column; a declared
	// span can never be rendered or remapped, so reject it here.
	if col.Span() < 1 {
		return fmt.Errorf("column %q: zero span", col.ID)
	}
	if col.Expr != "" && col.Source != "" {
		return fmt.Errorf("column %q: source and expr are mutually exclusive", col.ID)
	}
	if col.Formula != nil {
		if col.Formula.Template == "" {
			return fmt.Errorf("column %q: formula has empty template", col.ID)
		}
		if col.Expr != "" || col.Source != "" {
			return fmt.Errorf("column %q: formula cannot be combined with source or expr", col.ID)
		}
	}
	for _, child := range col.Children {
		if err := validateColumn(child, ids); err != nil {
			return err
		}
		if len(child.Children) > 0 {
			return fmt.Errorf("column %q: nested groups are not supported", col.ID)
		}
	}
	return nil
}

func (s *SheetConfig) validateFooter(ids map[string]bool) error {
	f := s.Footer
	if f.TotalTextColumn != "" && !ids[f.TotalTextColumn] {
		return fmt.Errorf("footer total_text_column %q: unknown column id", f.TotalTextColumn)
	}
	if f.PalletColumn != "" && !ids[f.PalletColumn] {
		return fmt.Errorf("footer pallet_column %q: unknown column id", f.PalletColumn)
	}
	total := s.NumTemplateColumns()
	for _, m := range f.MergeRules {
		if !ids[m.StartColumn] {
			return fmt.Errorf("footer merge rule start_column %q: unknown column id", m.StartColumn)
		}
		if m.Span < 2 {
			return fmt.Errorf("footer merge rule on %q: span %d must be >= 2", m.StartColumn, m.Span)
		}
		if pos, ok := s.columnPosition(m.StartColumn); ok && pos+m.Span-1 > total {
			return fmt.Errorf("footer merge rule on %q: span %d runs past the %d-column layout", m.StartColumn, m.Span, total)
		}
	}
	for _, a := range f.AddOns {
		switch a {
		case "leather_summary", "weight_summary":
		default:
			return fmt.Errorf("footer add_on %q: unknown", a)
		}
	}
	for _, col := range s.Columns {
		if col.Formula == nil {
			continue
		}
		for _, in := range col.Formula.Inputs {
			if !ids[in] {
				return fmt.Errorf("column %q: formula input %q: unknown column id", col.ID, in)
			}
		}
	}
	return nil
}
