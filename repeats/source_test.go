package repeats

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"

	"github.com/acg-team/ConSTRain/interval"
	"github.com/acg-team/ConSTRain/karyotype"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, ioutil.WriteFile(path, []byte(body), 0644))
	return path
}

func TestBEDSourceLoad(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := writeFile(t, tempDir, "repeats.bed",
		"chr1\t100\t120\t4\tACGT\nchr1\t300\t315\t5\tAACCT\nchrM\t10\t16\t2\tAT\n")

	k, err := karyotype.New(map[string]int{"chr1": 2})
	require.NoError(t, err)

	var loci []*Locus
	copyNumbers := make(map[int]bool)
	require.NoError(t, BEDSource{Path: path}.Load(k, &loci, copyNumbers))

	require.Len(t, loci, 3)
	expect.EQ(t, loci[0].Name(), "chr1:100-120")
	expect.EQ(t, loci[0].CopyNumber, 2)
	expect.EQ(t, loci[0].Motif, "ACGT")
	expect.EQ(t, loci[1].Period, 5)
	// chrM is not in the karyotype.
	expect.EQ(t, loci[2].CopyNumber, 0)
	expect.EQ(t, loci[2].Filter, FilterCopyNumberMissing)
	expect.EQ(t, copyNumbers, map[int]bool{0: true, 2: true})
}

func TestBEDSourceRejectsPeriodMismatch(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := writeFile(t, tempDir, "repeats.bed", "chr1\t100\t121\t4\tACGT\n")

	k, err := karyotype.New(map[string]int{"chr1": 2})
	require.NoError(t, err)

	var loci []*Locus
	err = BEDSource{Path: path}.Load(k, &loci, make(map[int]bool))
	require.Error(t, err)
}

func TestBEDCNVSourceLoad(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := writeFile(t, tempDir, "cnvs.bed", "chr1\t0\t1000\t3\nchr2\t500\t800\t1\n")

	var regions []interval.CopyNumberRegion
	copyNumbers := make(map[int]bool)
	require.NoError(t, BEDCNVSource{Path: path}.Load(&regions, copyNumbers))

	expect.EQ(t, regions, []interval.CopyNumberRegion{
		{Contig: "chr1", Start: 0, End: 1000, CN: 3},
		{Contig: "chr2", Start: 500, End: 800, CN: 1},
	})
	expect.EQ(t, copyNumbers, map[int]bool{1: true, 3: true})

	_, err := interval.NewOverlay(regions)
	require.NoError(t, err)
}
