package genotyping

import (
	"sort"

	"github.com/acg-team/ConSTRain/partition"
	"github.com/acg-team/ConSTRain/repeats"
)

// epsilon is the float32 machine epsilon.  Two partition scores closer than
// this are indistinguishable.
const epsilon = float32(1.1920929e-07)

// estimateGenotype infers the most likely multiset of allele lengths for a
// locus whose histogram has been extracted, writing the genotype or a
// disqualifying filter tag back onto the locus.
//
// The candidate genotypes for copy number k are the partitions of k.  Each
// partition is scored by the Manhattan distance between the observed
// per-allele counts (sorted most-frequent first) and the counts it would
// produce if every copy contributed depth/k reads.  The minimum wins; any
// tie, at the level of whole partitions or in the assignment of tied counts
// to specific allele lengths, is reported as AMB_GT rather than broken
// arbitrarily.
func estimateGenotype(l *repeats.Locus, table *partition.Table, opts Opts) {
	if l.CopyNumber == 0 {
		l.Filter = repeats.FilterCopyNumberZero
		return
	}
	depth := l.Depth()
	if depth == 0 {
		l.Filter = repeats.FilterDepthZero
		return
	}
	norm := float64(depth) / float64(l.CopyNumber)
	if norm < opts.MinNormDepth {
		l.Filter = repeats.FilterDepthOutOfRange
		return
	}
	if opts.MaxNormDepth > 0 && norm > opts.MaxNormDepth {
		l.Filter = repeats.FilterDepthOutOfRange
		return
	}
	m, ok := table.Get(l.CopyNumber)
	if !ok {
		l.Filter = repeats.FilterCopyNumberOutOfRange
		return
	}

	k := l.CopyNumber
	counts := l.AlleleCounts(repeats.SortByFreq)

	// The observation vector is the top k counts, zero-padded when fewer
	// allele lengths were seen.  When counts are truncated, the first
	// discarded one is kept: a winning partition that needs all k slots
	// while the last kept count equals the discarded one is an arbitrary
	// choice between the two.
	obs := make([]float32, k)
	carry := float32(-1)
	for i, ac := range counts {
		if i == k {
			carry = float32(ac.Count)
			break
		}
		obs[i] = float32(ac.Count)
	}

	expected := float32(depth) / float32(k)
	scores := make([]float32, m.NumRows())
	best := 0
	for r := 0; r < m.NumRows(); r++ {
		row := m.Row(r)
		var sum float32
		for i := 0; i < k; i++ {
			d := row[i]*expected - obs[i]
			if d < 0 {
				d = -d
			}
			sum += d
		}
		scores[r] = sum
		if sum < scores[best] {
			best = r
		}
	}
	nBest := 0
	for _, s := range scores {
		if d := s - scores[best]; d < epsilon && d > -epsilon {
			nBest++
		}
	}
	if nBest > 1 {
		l.Filter = repeats.FilterAmbiguousGenotype
		return
	}

	chosen := m.Row(best)

	// Tied observation counts are interchangeable: a partition that splits
	// a plateau of equal counts unevenly picks winners among equals.
	for i := 0; i < k; {
		j := i + 1
		for j < k && obs[j] == obs[i] {
			j++
		}
		for p := i + 1; p < j; p++ {
			if chosen[p] != chosen[i] {
				l.Filter = repeats.FilterAmbiguousGenotype
				return
			}
		}
		i = j
	}

	if carry >= 0 && obs[k-1] == carry && chosen[k-1] > 0 {
		l.Filter = repeats.FilterAmbiguousGenotype
		return
	}

	genotype := make([]repeats.GenotypeAllele, 0, k)
	for i := 0; i < k; i++ {
		if chosen[i] == 0 {
			continue
		}
		if i >= len(counts) {
			// The winner assigns copies to a padded slot with no observed
			// allele length behind it.
			l.Filter = repeats.FilterAmbiguousGenotype
			return
		}
		genotype = append(genotype, repeats.GenotypeAllele{Length: counts[i].Length, Multiplicity: int(chosen[i])})
	}
	sort.Slice(genotype, func(i, j int) bool { return genotype[i].Length < genotype[j].Length })
	l.Genotype = genotype
}
