// Package repeats defines the representation of short tandem repeat loci:
// where a repeat sits in the reference, the allele lengths observed for it
// in an alignment, and the genotype inferred from those observations.
package repeats

import (
	"fmt"
	"sort"
)

// Filter tags a locus with the reason it was, or was not, genotyped.  The
// identifiers are stable: they are written verbatim into the output.
type Filter uint8

const (
	// FilterPass marks a locus with no disqualifying condition.
	FilterPass Filter = iota
	// FilterUndef marks a locus skipped for an unclassified reason, e.g. a
	// failed read fetch.
	FilterUndef
	// FilterDepthZero marks a locus with no spanning reads.
	FilterDepthZero
	// FilterDepthOutOfRange marks a locus whose normalized depth fell
	// outside the configured bounds.
	FilterDepthOutOfRange
	// FilterCopyNumberZero marks a locus with copy number zero.
	FilterCopyNumberZero
	// FilterCopyNumberOutOfRange marks a locus whose copy number has no
	// partition table entry.
	FilterCopyNumberOutOfRange
	// FilterCopyNumberMissing marks a locus whose copy number could not be
	// determined from the karyotype or copy-number overlay.
	FilterCopyNumberMissing
	// FilterAmbiguousGenotype marks a locus where multiple genotypes explain
	// the observations equally well.
	FilterAmbiguousGenotype
)

var filterNames = [...]string{
	FilterPass:                 "PASS",
	FilterUndef:                "UNDEF",
	FilterDepthZero:            "DP_ZERO",
	FilterDepthOutOfRange:      "DP_OOR",
	FilterCopyNumberZero:       "CN_ZERO",
	FilterCopyNumberOutOfRange: "CN_OOR",
	FilterCopyNumberMissing:    "CN_MISSING",
	FilterAmbiguousGenotype:    "AMB_GT",
}

func (f Filter) String() string {
	if int(f) < len(filterNames) {
		return filterNames[f]
	}
	return fmt.Sprintf("Filter(%d)", int(f))
}

// SortBy selects the iteration order of a locus's allele histogram.
type SortBy uint8

const (
	// SortByFreq orders histogram entries by descending read count, with
	// ties broken by ascending allele length.  This total order is what the
	// estimator builds its observation vector from.
	SortByFreq SortBy = iota
	// SortByLength orders histogram entries by ascending allele length.
	SortByLength
)

// ParseSortBy parses a command-line sort order name.
func ParseSortBy(s string) (SortBy, error) {
	switch s {
	case "freq":
		return SortByFreq, nil
	case "length":
		return SortByLength, nil
	}
	return 0, fmt.Errorf("repeats: unknown sort order %q, want freq or length", s)
}

// AlleleCount is one histogram entry: Count reads supported an allele of
// Length motif units.
type AlleleCount struct {
	Length int
	Count  int
}

// GenotypeAllele is one inferred allele: the locus carries Multiplicity
// copies of an allele Length motif units long.
type GenotypeAllele struct {
	Length       int
	Multiplicity int
}

// Locus is one tandem repeat: its reference coordinates and motif, the copy
// number assigned from the karyotype and copy-number overlay, and the
// observations and inference attached to it during genotyping.
//
// Start and End are zero-based half-open reference coordinates, and
// (End - Start) is always a multiple of Period.
type Locus struct {
	Contig string
	Start  int
	End    int
	Period int
	Motif  string

	// CopyNumber is the number of chromosomal copies of this locus in the
	// sample.  Zero means the locus is not genotyped.
	CopyNumber int
	// Histogram maps allele length (in motif units) to the number of
	// spanning reads supporting it.  nil until extraction finds evidence.
	Histogram map[int]int
	// Genotype is the inferred multiset of allele lengths, sorted ascending
	// by length, with multiplicities summing to CopyNumber.  nil until
	// estimated.
	Genotype []GenotypeAllele
	Filter   Filter
}

// NewLocus validates reference coordinates against the motif and returns a
// locus in its initial state: copy number zero, no observations, PASS.
func NewLocus(contig string, start, end int, period int, motif string) (*Locus, error) {
	if start < 0 || end < start {
		return nil, fmt.Errorf("repeats: malformed interval %s:%d-%d", contig, start, end)
	}
	if len(motif) == 0 {
		return nil, fmt.Errorf("repeats: empty motif for %s:%d-%d", contig, start, end)
	}
	for i := 0; i < len(motif); i++ {
		switch motif[i] {
		case 'A', 'C', 'G', 'T', 'N':
		default:
			return nil, fmt.Errorf("repeats: invalid motif %q for %s:%d-%d", motif, contig, start, end)
		}
	}
	if period != len(motif) {
		return nil, fmt.Errorf("repeats: period %d does not match motif %q for %s:%d-%d", period, motif, contig, start, end)
	}
	if (end-start)%period != 0 {
		return nil, fmt.Errorf("repeats: interval %s:%d-%d is not a multiple of period %d", contig, start, end, period)
	}
	return &Locus{Contig: contig, Start: start, End: end, Period: period, Motif: motif}, nil
}

// Name returns the locus in contig:start-end form, for logging and errors.
func (l *Locus) Name() string {
	return fmt.Sprintf("%s:%d-%d", l.Contig, l.Start, l.End)
}

// ReferenceLength returns the number of motif repetitions in the reference.
func (l *Locus) ReferenceLength() int {
	return (l.End - l.Start) / l.Period
}

// Depth returns the total number of spanning reads observed at the locus.
func (l *Locus) Depth() int {
	n := 0
	for _, count := range l.Histogram {
		n += count
	}
	return n
}

// AlleleCounts returns the histogram as a slice in the given order.  Both
// orders are total, so the result is deterministic.
func (l *Locus) AlleleCounts(by SortBy) []AlleleCount {
	counts := make([]AlleleCount, 0, len(l.Histogram))
	for length, count := range l.Histogram {
		counts = append(counts, AlleleCount{Length: length, Count: count})
	}
	switch by {
	case SortByFreq:
		sort.Slice(counts, func(i, j int) bool {
			if counts[i].Count != counts[j].Count {
				return counts[i].Count > counts[j].Count
			}
			return counts[i].Length < counts[j].Length
		})
	case SortByLength:
		sort.Slice(counts, func(i, j int) bool { return counts[i].Length < counts[j].Length })
	}
	return counts
}

// GenotypeLengths expands the genotype into one allele length per copy,
// e.g. [(10,2) (12,1)] becomes [10 10 12].  nil when no genotype was
// estimated.
func (l *Locus) GenotypeLengths() []int {
	if l.Genotype == nil {
		return nil
	}
	var lengths []int
	for _, allele := range l.Genotype {
		for i := 0; i < allele.Multiplicity; i++ {
			lengths = append(lengths, allele.Length)
		}
	}
	return lengths
}
