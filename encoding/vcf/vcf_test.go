package vcf

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"

	"github.com/acg-team/ConSTRain/karyotype"
	"github.com/acg-team/ConSTRain/repeats"
)

func testHeader(t *testing.T) *sam.Header {
	t.Helper()
	ref, err := sam.NewReference("chr1", "", "", 100000, nil, nil)
	require.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{ref})
	require.NoError(t, err)
	return header
}

func TestWrite(t *testing.T) {
	genotyped, err := repeats.NewLocus("chr1", 1000, 1010, 2, "AT")
	require.NoError(t, err)
	genotyped.CopyNumber = 2
	genotyped.Histogram = map[int]int{5: 44, 7: 41}
	genotyped.Genotype = []repeats.GenotypeAllele{
		{Length: 5, Multiplicity: 1},
		{Length: 7, Multiplicity: 1},
	}

	filtered, err := repeats.NewLocus("chr1", 2000, 2012, 4, "ACGT")
	require.NoError(t, err)
	filtered.CopyNumber = 2
	filtered.Filter = repeats.FilterDepthZero

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testHeader(t), "sample1", repeats.SortByLength, []*repeats.Locus{genotyped, filtered}))
	out := buf.String()

	expect.True(t, strings.HasPrefix(out, "##fileformat=VCFv4.2\n"))
	expect.True(t, strings.Contains(out, "##contig=<ID=chr1,length=100000>\n"))
	expect.True(t, strings.Contains(out, "##FILTER=<ID=AMB_GT"))
	expect.True(t, strings.Contains(out, "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tsample1\n"))

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// The reference allele is 5 units of AT; the second genotyped allele
	// adds a 7-unit ALT.
	expect.EQ(t, lines[len(lines)-2],
		"chr1\t1001\t.\tATATATATAT\tATATATATATATAT\t.\tPASS\tEND=1010;RU=AT;PERIOD=2;REF=5\tGT:FT:CN:DP:FREQS:REPCN\t0/1:PASS:2:85:5,44|7,41:5,7")
	// No genotype for the filtered locus.
	expect.EQ(t, lines[len(lines)-1],
		"chr1\t2001\t.\tACGTACGTACGT\t.\t.\tDP_ZERO\tEND=2012;RU=ACGT;PERIOD=4;REF=3\tGT:FT:CN:DP:FREQS:REPCN\t.:DP_ZERO:2:0:.:.")
}

func TestWriteHomozygousAlt(t *testing.T) {
	l, err := repeats.NewLocus("chr1", 1000, 1010, 2, "AT")
	require.NoError(t, err)
	l.CopyNumber = 2
	l.Histogram = map[int]int{4: 100}
	l.Genotype = []repeats.GenotypeAllele{{Length: 4, Multiplicity: 2}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testHeader(t), "s", repeats.SortByLength, []*repeats.Locus{l}))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	expect.EQ(t, lines[len(lines)-1],
		"chr1\t1001\t.\tATATATATAT\tATATATAT\t.\tPASS\tEND=1010;RU=AT;PERIOD=2;REF=5\tGT:FT:CN:DP:FREQS:REPCN\t1/1:PASS:2:100:4,100:4,4")
}

func TestWriteFreqsByFrequency(t *testing.T) {
	l, err := repeats.NewLocus("chr1", 1000, 1010, 2, "AT")
	require.NoError(t, err)
	l.CopyNumber = 2
	l.Histogram = map[int]int{5: 44, 7: 41}
	l.Genotype = []repeats.GenotypeAllele{
		{Length: 5, Multiplicity: 1},
		{Length: 7, Multiplicity: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testHeader(t), "s", repeats.SortByFreq, []*repeats.Locus{l}))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	expect.True(t, strings.Contains(lines[len(lines)-1], ":5,44|7,41:"))

	// The same locus with the counts swapped reverses the field.
	l.Histogram = map[int]int{5: 41, 7: 44}
	buf.Reset()
	require.NoError(t, Write(&buf, testHeader(t), "s", repeats.SortByFreq, []*repeats.Locus{l}))
	lines = strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	expect.True(t, strings.Contains(lines[len(lines)-1], ":7,44|5,41:"))
}

func TestWriteReferenceCopiesSortFirst(t *testing.T) {
	l, err := repeats.NewLocus("chr1", 1000, 1010, 2, "AT")
	require.NoError(t, err)
	l.CopyNumber = 2
	l.Histogram = map[int]int{4: 50, 5: 50}
	l.Genotype = []repeats.GenotypeAllele{
		{Length: 4, Multiplicity: 1},
		{Length: 5, Multiplicity: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testHeader(t), "s", repeats.SortByLength, []*repeats.Locus{l}))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	// Length 5 is the reference allele and must come first in GT even
	// though the 4-unit allele sorts first by length.
	expect.True(t, strings.Contains(lines[len(lines)-1], "\t0/1:PASS:2:100:"))
}

func TestSourceLoad(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := filepath.Join(tempDir, "repeats.vcf")
	body := strings.Join([]string{
		"##fileformat=VCFv4.2",
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO",
		"chr1\t1001\t.\tATATATATAT\t.\t.\t.\tEND=1010;RU=AT;PERIOD=2",
		"chr2\t501\t.\tAAAAA\t.\t.\t.\tEND=505;RU=A;PERIOD=1",
		"",
	}, "\n")
	require.NoError(t, ioutil.WriteFile(path, []byte(body), 0644))

	k, err := karyotype.New(map[string]int{"chr1": 2})
	require.NoError(t, err)

	var loci []*repeats.Locus
	copyNumbers := make(map[int]bool)
	require.NoError(t, Source{Path: path}.Load(k, &loci, copyNumbers))

	require.Len(t, loci, 2)
	expect.EQ(t, loci[0].Name(), "chr1:1000-1010")
	expect.EQ(t, loci[0].Motif, "AT")
	expect.EQ(t, loci[0].CopyNumber, 2)
	expect.EQ(t, loci[1].Name(), "chr2:500-505")
	expect.EQ(t, loci[1].Filter, repeats.FilterCopyNumberMissing)
	expect.EQ(t, copyNumbers, map[int]bool{0: true, 2: true})
}

func TestSourceRejectsMissingInfo(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := filepath.Join(tempDir, "repeats.vcf")
	require.NoError(t, ioutil.WriteFile(path,
		[]byte("chr1\t1001\t.\tAT\t.\t.\t.\tRU=AT;PERIOD=2\n"), 0644))

	k, err := karyotype.New(map[string]int{"chr1": 2})
	require.NoError(t, err)
	var loci []*repeats.Locus
	err = Source{Path: path}.Load(k, &loci, make(map[int]bool))
	require.Error(t, err)
}
