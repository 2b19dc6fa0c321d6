// Package vcf serializes genotyped repeat loci as VCFv4.2 and loads repeat
// definitions from VCF-formatted locus tables.
package vcf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/hts/sam"

	"github.com/acg-team/ConSTRain/repeats"
)

var infoLines = []string{
	`##INFO=<ID=END,Number=1,Type=Integer,Description="End position of reference allele">`,
	`##INFO=<ID=RU,Number=1,Type=String,Description="Repeat motif">`,
	`##INFO=<ID=PERIOD,Number=1,Type=Integer,Description="Repeat period (length of motif)">`,
	`##INFO=<ID=REF,Number=1,Type=Integer,Description="Repeat allele length in reference">`,
}

var formatLines = []string{
	`##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">`,
	`##FORMAT=<ID=FT,Number=1,Type=String,Description="Filter tag. Contains PASS if all filters passed, otherwise the reason for the filter">`,
	`##FORMAT=<ID=CN,Number=1,Type=Integer,Description="Copy number">`,
	`##FORMAT=<ID=DP,Number=1,Type=Integer,Description="Number of reads spanning the locus">`,
	`##FORMAT=<ID=FREQS,Number=1,Type=String,Description="Observed allele length frequencies. Keys are allele lengths, values are the number of reads supporting them">`,
	`##FORMAT=<ID=REPCN,Number=1,Type=String,Description="Genotype given in number of copies of the repeat motif">`,
}

var filterLines = []string{
	`##FILTER=<ID=PASS,Description="All filters passed">`,
	`##FILTER=<ID=UNDEF,Description="Locus could not be processed">`,
	`##FILTER=<ID=DP_ZERO,Description="No reads span the locus">`,
	`##FILTER=<ID=DP_OOR,Description="Normalized read depth out of range">`,
	`##FILTER=<ID=CN_ZERO,Description="Locus copy number is zero">`,
	`##FILTER=<ID=CN_OOR,Description="Locus copy number exceeds the supported range">`,
	`##FILTER=<ID=CN_MISSING,Description="Locus copy number could not be determined">`,
	`##FILTER=<ID=AMB_GT,Description="Multiple genotypes explain the observations equally well">`,
}

// Write emits loci as uncompressed VCFv4.2.  Contig lines come from the
// alignment header, so coordinates in the output are guaranteed to refer to
// the same reference the reads were aligned to.  sortBy selects the order
// of the FREQS entries.
func Write(w io.Writer, header *sam.Header, sample string, sortBy repeats.SortBy, loci []*repeats.Locus) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "##fileformat=VCFv4.2")
	for _, ref := range header.Refs() {
		fmt.Fprintf(bw, "##contig=<ID=%s,length=%d>\n", ref.Name(), ref.Len())
	}
	for _, line := range infoLines {
		fmt.Fprintln(bw, line)
	}
	for _, line := range filterLines {
		fmt.Fprintln(bw, line)
	}
	for _, line := range formatLines {
		fmt.Fprintln(bw, line)
	}
	fmt.Fprintf(bw, "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\t%s\n", sample)

	for _, l := range loci {
		if err := writeRecord(bw, l, sortBy); err != nil {
			return fmt.Errorf("vcf: %s: %v", l.Name(), err)
		}
	}
	return bw.Flush()
}

func writeRecord(bw *bufio.Writer, l *repeats.Locus, sortBy repeats.SortBy) error {
	refLen := l.ReferenceLength()
	refAllele := strings.Repeat(l.Motif, refLen)

	// The reference allele is index 0; every other genotyped length gets
	// the next index in ascending-length order.  Reference copies sort
	// first in the genotype string.
	altAlleles := []string{}
	var gtIdx []int
	for _, allele := range l.Genotype {
		idx := 0
		if allele.Length != refLen {
			altAlleles = append(altAlleles, strings.Repeat(l.Motif, allele.Length))
			idx = len(altAlleles)
		}
		for i := 0; i < allele.Multiplicity; i++ {
			if idx == 0 {
				gtIdx = append([]int{0}, gtIdx...)
			} else {
				gtIdx = append(gtIdx, idx)
			}
		}
	}
	alt := "."
	if len(altAlleles) > 0 {
		alt = strings.Join(altAlleles, ",")
	}
	gt := "."
	if len(gtIdx) > 0 {
		parts := make([]string, len(gtIdx))
		for i, idx := range gtIdx {
			parts[i] = strconv.Itoa(idx)
		}
		gt = strings.Join(parts, "/")
	}

	freqs := "."
	if counts := l.AlleleCounts(sortBy); len(counts) > 0 {
		parts := make([]string, len(counts))
		for i, ac := range counts {
			parts[i] = fmt.Sprintf("%d,%d", ac.Length, ac.Count)
		}
		freqs = strings.Join(parts, "|")
	}

	repcn := "."
	if lengths := l.GenotypeLengths(); len(lengths) > 0 {
		parts := make([]string, len(lengths))
		for i, n := range lengths {
			parts[i] = strconv.Itoa(n)
		}
		repcn = strings.Join(parts, ",")
	}

	_, err := fmt.Fprintf(bw, "%s\t%d\t.\t%s\t%s\t.\t%s\tEND=%d;RU=%s;PERIOD=%d;REF=%d\tGT:FT:CN:DP:FREQS:REPCN\t%s:%s:%d:%d:%s:%s\n",
		l.Contig, l.Start+1, refAllele, alt, l.Filter, l.End, l.Motif, l.Period, refLen,
		gt, l.Filter, l.CopyNumber, l.Depth(), freqs, repcn)
	return err
}
