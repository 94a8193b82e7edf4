package xl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newSheet(t *testing.T) *Sheet {
	t.Helper()
	f := excelize.NewFile()
	s, err := Open(f, "Sheet1")
	require.NoError(t, err)
	return s
}

func TestOpenMissingSheet(t *testing.T) {
	f := excelize.NewFile()
	_, err := Open(f, "NoSuchSheet")
	assert.Error(t, err)
}

func TestCreateSheet(t *testing.T) {
	f := excelize.NewFile()
	s, err := Create(f, "Report")
	require.NoError(t, err)
	assert.Equal(t, "Report", s.Name())

	again, err := Open(f, "Report")
	require.NoError(t, err)
	assert.True(t, s.SameFile(again))
}

func TestResolveAgainstMerges(t *testing.T) {
	merges := []MergeRange{{MinRow: 2, MinCol: 2, MaxRow: 3, MaxCol: 4}}

	origin := ResolveAgainst(merges, 2, 2)
	assert.Equal(t, KindOrigin, origin.Kind)
	assert.Equal(t, CellRef{Row: 2, Col: 2}, origin.Target())

	child := ResolveAgainst(merges, 3, 4)
	assert.Equal(t, KindMergedChild, child.Kind)
	assert.Equal(t, 2, child.OriginRow)
	assert.Equal(t, 2, child.OriginCol)
	assert.Equal(t, CellRef{Row: 2, Col: 2}, child.Target())

	plain := ResolveAgainst(merges, 1, 1)
	assert.Equal(t, KindOrigin, plain.Kind)
	assert.Equal(t, CellRef{Row: 1, Col: 1}, plain.Target())
}

func TestSheetResolve(t *testing.T) {
	s := newSheet(t)
	require.NoError(t, s.Merge(MergeRange{MinRow: 1, MinCol: 1, MaxRow: 1, MaxCol: 3}))

	res, err := s.Resolve(1, 2)
	require.NoError(t, err)
	assert.Equal(t, KindMergedChild, res.Kind)
	assert.Equal(t, CellRef{Row: 1, Col: 1}, res.Target())
}

func TestMergeRangesRoundTrip(t *testing.T) {
	s := newSheet(t)
	want := MergeRange{MinRow: 2, MinCol: 1, MaxRow: 4, MaxCol: 2}
	require.NoError(t, s.Merge(want))

	merges, err := s.MergeRanges()
	require.NoError(t, err)
	require.Len(t, merges, 1)
	assert.Equal(t, want, merges[0])
}

func TestUnmergeBlock(t *testing.T) {
	s := newSheet(t)
	inside := MergeRange{MinRow: 2, MinCol: 1, MaxRow: 2, MaxCol: 3}
	outside := MergeRange{MinRow: 10, MinCol: 1, MaxRow: 10, MaxCol: 3}
	require.NoError(t, s.Merge(inside))
	require.NoError(t, s.Merge(outside))

	require.NoError(t, s.UnmergeBlock(1, 5, 8))

	merges, err := s.MergeRanges()
	require.NoError(t, err)
	require.Len(t, merges, 1)
	assert.Equal(t, outside, merges[0])
}

func TestSetCellFormulaStripsLeadingEquals(t *testing.T) {
	s := newSheet(t)
	require.NoError(t, s.SetCellFormula(1, 1, "=SUM(B1:B3)"))

	formula, err := s.CellFormula(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "SUM(B1:B3)", formula)
}

func TestRowHeightAndColWidth(t *testing.T) {
	s := newSheet(t)
	require.NoError(t, s.SetRowHeight(3, 28.5))
	require.NoError(t, s.SetColWidth(2, 17.25))

	h, err := s.RowHeight(3)
	require.NoError(t, err)
	assert.InDelta(t, 28.5, h, 0.001)

	w, err := s.ColWidth(2)
	require.NoError(t, err)
	assert.InDelta(t, 17.25, w, 0.001)
}

func TestRows(t *testing.T) {
	s := newSheet(t)
	require.NoError(t, s.SetCellValue(1, 1, "a"))
	require.NoError(t, s.SetCellValue(2, 2, "b"))

	rows, err := s.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0][0])
	assert.Equal(t, "b", rows[1][1])
}
