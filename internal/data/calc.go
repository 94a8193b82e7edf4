package data

import (
	"sort"
	"strings"
)

// WeightSummary accumulates net and gross weight across rows.
type WeightSummary struct {
	Net   float64
	Gross float64
}

// Add folds another summary into this one.
func (w *WeightSummary) Add(other WeightSummary) {
	w.Net += other.Net
	w.Gross += other.Gross
}

// LeatherTotals accumulates per-leather-type totals: pallet count plus the sum
// of every numeric column.
type LeatherTotals struct {
	PalletCount int
	Columns     map[string]float64
}

// LeatherSummary groups totals by leather type. Rows whose description
// mentions BUFFALO count as buffalo; everything else counts as cow.
type LeatherSummary map[string]*LeatherTotals

// Leather type keys.
const (
	LeatherBuffalo = "BUFFALO"
	LeatherCow     = "COW"
)

// Types returns the leather type keys in stable order.
func (l LeatherSummary) Types() []string {
	types := make([]string, 0, len(l))
	for t := range l {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// TableSummary is the calculated outcome of one rendered table, consumed by
// the footer builder and the cross-table grand totals.
type TableSummary struct {
	TotalPallets int
	Weights      WeightSummary
	Leather      LeatherSummary
}

// Summarize computes the table summary from resolved rows. palletCounts runs
// parallel to rows; a short slice counts missing entries as zero.
func Summarize(rows []Row, palletCounts []int) TableSummary {
	sum := TableSummary{
		Leather: LeatherSummary{
			LeatherBuffalo: {Columns: make(map[string]float64)},
			LeatherCow:     {Columns: make(map[string]float64)},
		},
	}
	for _, p := range palletCounts {
		sum.TotalPallets += p
	}
	for i, row := range rows {
		if n, ok := Number(row[ColNetWeight]); ok {
			sum.Weights.Net += n
		}
		if g, ok := Number(row[ColGrossWeight]); ok {
			sum.Weights.Gross += g
		}

		desc, _ := row[ColDesc].(string)
		leatherType := LeatherCow
		if strings.Contains(strings.ToUpper(desc), LeatherBuffalo) {
			leatherType = LeatherBuffalo
		}
		totals := sum.Leather[leatherType]
		if i < len(palletCounts) {
			totals.PalletCount += palletCounts[i]
		}
		for colID, v := range row {
			if colID == ColDesc {
				continue
			}
			if n, ok := Number(v); ok {
				totals.Columns[colID] += n
			}
		}
	}
	return sum
}

// GlobalSummary holds cross-table grand totals over all processed tables.
type GlobalSummary struct {
	TotalNet     float64
	TotalGross   float64
	TotalPallets int
}

// GlobalSummary sums net weight, gross weight and pallet count across every
// processed table, independent of which columns any sheet renders.
func (inv *Invoice) GlobalSummary() GlobalSummary {
	var g GlobalSummary
	for _, t := range inv.Tables() {
		for _, v := range t.Columns[FieldNet] {
			if n, ok := Number(v); ok {
				g.TotalNet += n
			}
		}
		for _, v := range t.Columns[FieldGross] {
			if n, ok := Number(v); ok {
				g.TotalGross += n
			}
		}
		for _, v := range t.Columns[FieldPalletCount] {
			g.TotalPallets += Int(v)
		}
	}
	return g
}
