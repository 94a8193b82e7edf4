// Package run drives a full render: load the layout config and the invoice
// data, open the template workbook, render every configured sheet into a fresh
// output workbook, and save it. Sheet failures are isolated; the workbook is
// saved with whatever succeeded and the summary reports the rest.
package run

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/sheetcraft/invoicexl/internal/config"
	"github.com/sheetcraft/invoicexl/internal/data"
	"github.com/sheetcraft/invoicexl/internal/template"
	"github.com/sheetcraft/invoicexl/internal/xl"
)

// Options configures one render run.
type Options struct {
	ConfigPath   string
	DataPath     string
	TemplatePath string
	OutputPath   string

	// DAF and Custom select the export mode driving column filtering and
	// aggregation choice.
	DAF    bool
	Custom bool
}

// Mode returns the export mode the options describe.
func (o Options) Mode() template.Mode {
	return template.Mode{DAF: o.DAF, Custom: o.Custom}
}

// SheetResult records the outcome of one sheet.
type SheetResult struct {
	Name     string
	Err      error
	Tables   int
	Rows     int
	Warnings []string
}

// Summary is the outcome of a whole run.
type Summary struct {
	RunID      string
	OutputPath string
	Sheets     []SheetResult
}

// Failed returns the names of the sheets that failed.
func (s *Summary) Failed() []string {
	var names []string
	for _, r := range s.Sheets {
		if r.Err != nil {
			names = append(names, r.Name)
		}
	}
	return names
}

// OK reports whether every sheet rendered.
func (s *Summary) OK() bool { return len(s.Failed()) == 0 }

// Render executes a run. The output workbook is saved even when some sheets
// fail; only load and save failures abort the run.
func Render(opts Options) (*Summary, error) {
	summary := &Summary{
		RunID:      uuid.NewString(),
		OutputPath: opts.OutputPath,
	}
	logger := log.With().Str("run_id", summary.RunID).Logger()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	inv, err := data.Load(opts.DataPath)
	if err != nil {
		return nil, err
	}
	tmpl, err := excelize.OpenFile(opts.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("open template %q: %w", opts.TemplatePath, err)
	}
	defer tmpl.Close()

	out := excelize.NewFile()
	defer out.Close()

	for i := range cfg.Sheets {
		sc := &cfg.Sheets[i]
		result := renderSheet(tmpl, out, sc, inv, opts.Mode())
		result.Name = sc.Name
		if result.Err != nil {
			logger.Error().Err(result.Err).Str("sheet", sc.Name).Msg("sheet failed")
		} else {
			logger.Info().Str("sheet", sc.Name).
				Int("tables", result.Tables).Int("rows", result.Rows).
				Msg("sheet rendered")
		}
		summary.Sheets = append(summary.Sheets, result)
	}

	// excelize seeds new workbooks with a default sheet; drop it once real
	// sheets exist.
	if len(cfg.Sheets) > 0 {
		if idx, err := out.GetSheetIndex("Sheet1"); err == nil && idx >= 0 {
			if _, ok := cfg.Sheet("Sheet1"); !ok {
				if err := out.DeleteSheet("Sheet1"); err != nil {
					return nil, fmt.Errorf("drop default sheet: %w", err)
				}
			}
		}
	}

	if err := out.SaveAs(opts.OutputPath); err != nil {
		return nil, fmt.Errorf("save output %q: %w", opts.OutputPath, err)
	}
	logger.Info().Str("output", opts.OutputPath).
		Int("sheets", len(summary.Sheets)).Strs("failed", summary.Failed()).
		Msg("run finished")
	return summary, nil
}

// templateSheet opens the template worksheet feeding an output sheet: the one
// with the matching name, or the template's first sheet when no name matches.
func templateSheet(tmpl *excelize.File, name string) (*xl.Sheet, error) {
	if src, err := xl.Open(tmpl, name); err == nil {
		return src, nil
	}
	first := tmpl.GetSheetName(0)
	if first == "" {
		return nil, fmt.Errorf("template has no sheets")
	}
	return xl.Open(tmpl, first)
}
