package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeWeightsAndPallets(t *testing.T) {
	rows := []Row{
		{ColDesc: "COW LEATHER", ColNetWeight: 100.0, ColGrossWeight: 110.0},
		{ColDesc: "BUFFALO LEATHER", ColNetWeight: "200.5", ColGrossWeight: 220.0},
	}
	sum := Summarize(rows, []int{2, 3})

	assert.Equal(t, 5, sum.TotalPallets)
	assert.InDelta(t, 300.5, sum.Weights.Net, 0.001)
	assert.InDelta(t, 330.0, sum.Weights.Gross, 0.001)
}

func TestSummarizeLeatherClassification(t *testing.T) {
	rows := []Row{
		{ColDesc: "Buffalo crust", "col_qty": 10.0},
		{ColDesc: "WET BLUE COW", "col_qty": 5.0},
		// No BUFFALO keyword defaults to cow.
		{ColDesc: "split leather", "col_qty": 2.0},
	}
	sum := Summarize(rows, []int{1, 2, 4})

	buffalo := sum.Leather[LeatherBuffalo]
	require.NotNil(t, buffalo)
	assert.Equal(t, 1, buffalo.PalletCount)
	assert.InDelta(t, 10.0, buffalo.Columns["col_qty"], 0.001)

	cow := sum.Leather[LeatherCow]
	require.NotNil(t, cow)
	assert.Equal(t, 6, cow.PalletCount)
	assert.InDelta(t, 7.0, cow.Columns["col_qty"], 0.001)

	assert.Equal(t, []string{LeatherBuffalo, LeatherCow}, sum.Leather.Types())
}

func TestSummarizeSkipsNonNumericAndDesc(t *testing.T) {
	rows := []Row{
		{ColDesc: "COW", "col_po": "PO-1", "col_qty": 3.0},
	}
	sum := Summarize(rows, nil)

	cow := sum.Leather[LeatherCow]
	assert.InDelta(t, 3.0, cow.Columns["col_qty"], 0.001)
	_, hasPO := cow.Columns["col_po"]
	assert.False(t, hasPO)
	_, hasDesc := cow.Columns[ColDesc]
	assert.False(t, hasDesc)
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil, nil)
	assert.Equal(t, 0, sum.TotalPallets)
	assert.Zero(t, sum.Weights.Net)
	assert.Zero(t, sum.Weights.Gross)
}

func TestGlobalSummary(t *testing.T) {
	inv := loadSample(t)
	g := inv.GlobalSummary()

	assert.InDelta(t, 315.5, g.TotalNet, 0.001)   // 100+200 + 10.5 + 5
	assert.InDelta(t, 348.0, g.TotalGross, 0.001) // 110+220 + 12 + 6
	assert.Equal(t, 10, g.TotalPallets)           // 2+3 + 1 + 4
}

func TestWeightSummaryAdd(t *testing.T) {
	a := WeightSummary{Net: 1, Gross: 2}
	a.Add(WeightSummary{Net: 3, Gross: 4})
	assert.Equal(t, WeightSummary{Net: 4, Gross: 6}, a)
}
