package repeats

import (
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"

	"github.com/acg-team/ConSTRain/interval"
	"github.com/acg-team/ConSTRain/karyotype"
)

func mustLocus(t *testing.T, contig string, start, end, period int, motif string) *Locus {
	t.Helper()
	l, err := NewLocus(contig, start, end, period, motif)
	require.NoError(t, err)
	return l
}

func TestApplyKaryotype(t *testing.T) {
	k, err := karyotype.New(map[string]int{"chr1": 2, "chrY": 1})
	require.NoError(t, err)

	l := mustLocus(t, "chr1", 100, 120, 4, "ACGT")
	ApplyKaryotype(l, k)
	expect.EQ(t, l.CopyNumber, 2)
	expect.EQ(t, l.Filter, FilterPass)

	l = mustLocus(t, "chrM", 100, 120, 4, "ACGT")
	ApplyKaryotype(l, k)
	expect.EQ(t, l.CopyNumber, 0)
	expect.EQ(t, l.Filter, FilterCopyNumberMissing)
}

func TestApplyCNVFullCover(t *testing.T) {
	l := mustLocus(t, "chr1", 100, 120, 4, "ACGT")
	l.CopyNumber = 2
	ApplyCNV(l, []interval.CopyNumberRegion{{Contig: "chr1", Start: 50, End: 500, CN: 3}})
	expect.EQ(t, l.CopyNumber, 3)
	expect.EQ(t, l.Filter, FilterPass)
}

func TestApplyCNVPartialOverlap(t *testing.T) {
	l := mustLocus(t, "chr1", 100, 120, 4, "ACGT")
	l.CopyNumber = 2
	ApplyCNV(l, []interval.CopyNumberRegion{{Contig: "chr1", Start: 110, End: 500, CN: 3}})
	expect.EQ(t, l.CopyNumber, 2)
	expect.EQ(t, l.Filter, FilterCopyNumberMissing)
}

func TestApplyCNVNoOverlap(t *testing.T) {
	l := mustLocus(t, "chr1", 100, 120, 4, "ACGT")
	l.CopyNumber = 2
	ApplyCNV(l, []interval.CopyNumberRegion{
		{Contig: "chr1", Start: 0, End: 50, CN: 1},
		{Contig: "chr1", Start: 200, End: 500, CN: 3},
	})
	expect.EQ(t, l.CopyNumber, 2)
	expect.EQ(t, l.Filter, FilterPass)
}

// A locus entirely beyond the last region: no region intersects it, the
// scan runs out of regions, and the locus is unchanged.
func TestApplyCNVBeyondAllRegions(t *testing.T) {
	l := mustLocus(t, "chr1", 1000, 1020, 4, "ACGT")
	l.CopyNumber = 2
	ApplyCNV(l, []interval.CopyNumberRegion{{Contig: "chr1", Start: 0, End: 50, CN: 1}})
	expect.EQ(t, l.CopyNumber, 2)
	expect.EQ(t, l.Filter, FilterPass)
}
