package genotyping

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"

	"github.com/acg-team/ConSTRain/interval"
	"github.com/acg-team/ConSTRain/repeats"
)

// discardFlags disqualify a read from contributing spanning evidence.
const discardFlags = sam.Duplicate | sam.Supplementary | sam.QCFail

// extractAlleleLengths builds the allele-length histogram for one locus
// from the reads overlapping it.  Only enclosing reads count: the read's
// alignment must cover the locus plus flank bases on both sides, so that
// the full repeat tract, not a truncation of it, is measured.  Reads whose
// measured tract is not a whole number of motif units are discarded as
// inconsistent with the motif.
//
// The histogram is stored on the locus only when at least one read
// qualified.  A fetch or decode failure is returned to the caller, which
// tags the locus and moves on.
func extractAlleleLengths(l *repeats.Locus, fetcher ReadFetcher, flank int) error {
	iter := fetcher.Fetch(l.Contig, l.Start-flank, l.End+flank)
	hist := make(map[int]int)
	for iter.Scan() {
		rec := iter.Record()
		if rec.Flags&discardFlags != 0 {
			continue
		}
		if rec.Pos >= l.Start-flank || rec.End() <= l.End+flank {
			// Not an enclosing read.
			continue
		}
		tract := alleleLength(rec.Cigar, rec.Pos, l.Start, l.End)
		if tract%l.Period != 0 {
			log.Debug.Printf("genotyping: read %s at %s: tract length %d not a multiple of period %d",
				rec.Name, l.Name(), tract, l.Period)
			continue
		}
		hist[tract/l.Period]++
	}
	if err := iter.Close(); err != nil {
		return err
	}
	if len(hist) > 0 {
		l.Histogram = hist
	}
	return nil
}

// advancesRepeat reports whether a CIGAR operation contributes to the
// length of the repeat tract.  Soft-clipped bases consume the query but are
// not aligned evidence; reference skips consume reference only.
func advancesRepeat(t sam.CigarOpType) bool {
	switch t {
	case sam.CigarMatch, sam.CigarInsertion, sam.CigarEqual, sam.CigarMismatch:
		return true
	}
	return false
}

// alleleLength walks a read's CIGAR and returns the number of read bases
// aligned within the locus [start, end): matched bases overlapping the
// locus plus insertions opened inside it.  pos is the read's zero-based
// aligned start.
func alleleLength(cigar sam.Cigar, pos, start, end int) int {
	cursor := pos
	acc := 0
	for _, op := range cigar {
		t := op.Type()
		consumesRef := t.Consumes().Reference == 1
		advances := advancesRepeat(t)
		n := op.Len()
		switch {
		case consumesRef && !advances:
			cursor += n
		case !consumesRef && advances:
			// An insertion at cursor; the loop breaks at end, so only the
			// lower bound needs testing.
			if cursor >= start {
				acc += n
			}
		case consumesRef && advances:
			// Alignment coordinates are half-open; Overlap takes closed
			// intervals, so both ends are decremented.
			acc += interval.Overlap(cursor, cursor+n-1, start, end-1)
			cursor += n
		}
		if cursor >= end {
			break
		}
	}
	return acc
}
