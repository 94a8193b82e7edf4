// Package style converts declarative style specs into registered excelize
// styles. Specs are immutable value records; each distinct (spec, number
// format) pair is registered with the workbook once and the resulting style ID
// is cached, so cells share styles by value semantics instead of copying
// mutable style objects around.
package style

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/sheetcraft/invoicexl/internal/config"
)

// Set holds the registered styles for one sheet's styling config.
type Set struct {
	file    *excelize.File
	styling config.SheetStyling

	header int
	footer map[string]int // number format → style ID
	data   map[string]int
}

// NewSet registers the sheet's header style eagerly and prepares caches for
// the per-format data and footer variants.
func NewSet(f *excelize.File, styling config.SheetStyling) (*Set, error) {
	s := &Set{
		file:    f,
		styling: styling,
		footer:  make(map[string]int),
		data:    make(map[string]int),
	}
	if !styling.Header.IsZero() {
		id, err := register(f, styling.Header, "")
		if err != nil {
			return nil, fmt.Errorf("header style: %w", err)
		}
		s.header = id
	}
	return s, nil
}

// Header returns the header style ID (0 when the sheet declares none).
func (s *Set) Header() int { return s.header }

// Data returns the data style ID for a number format, registering it on first
// use.
func (s *Set) Data(numFmt string) (int, error) {
	return s.variant(s.data, s.styling.Data, numFmt)
}

// Footer returns the footer style ID for a number format, registering it on
// first use.
func (s *Set) Footer(numFmt string) (int, error) {
	return s.variant(s.footer, s.styling.Footer, numFmt)
}

func (s *Set) variant(cache map[string]int, spec config.StyleSpec, numFmt string) (int, error) {
	if spec.IsZero() && numFmt == "" {
		return 0, nil
	}
	if id, ok := cache[numFmt]; ok {
		return id, nil
	}
	id, err := register(s.file, spec, numFmt)
	if err != nil {
		return 0, err
	}
	cache[numFmt] = id
	return id, nil
}

// register converts a spec into an excelize style and registers it.
func register(f *excelize.File, spec config.StyleSpec, numFmt string) (int, error) {
	st := &excelize.Style{}

	if spec.Bold || spec.Italic || spec.Size > 0 || spec.FontColor != "" {
		st.Font = &excelize.Font{
			Bold:   spec.Bold,
			Italic: spec.Italic,
			Size:   spec.Size,
			Color:  spec.FontColor,
		}
	}
	if spec.FillColor != "" {
		st.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{spec.FillColor},
		}
	}
	if spec.Border == "thin" {
		st.Border = []excelize.Border{
			{Type: "left", Style: 1, Color: "000000"},
			{Type: "right", Style: 1, Color: "000000"},
			{Type: "top", Style: 1, Color: "000000"},
			{Type: "bottom", Style: 1, Color: "000000"},
		}
	}
	if spec.Horizontal != "" || spec.Vertical != "" || spec.WrapText {
		st.Alignment = &excelize.Alignment{
			Horizontal: spec.Horizontal,
			Vertical:   spec.Vertical,
			WrapText:   spec.WrapText,
		}
	}
	if numFmt != "" {
		st.CustomNumFmt = &numFmt
	}

	id, err := f.NewStyle(st)
	if err != nil {
		return 0, fmt.Errorf("register style: %w", err)
	}
	return id, nil
}
