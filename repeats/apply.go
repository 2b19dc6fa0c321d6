package repeats

import (
	"github.com/grailbio/base/log"

	"github.com/acg-team/ConSTRain/interval"
	"github.com/acg-team/ConSTRain/karyotype"
)

// ApplyKaryotype sets the locus's baseline copy number from the karyotype.
// A contig absent from the karyotype leaves the copy number at zero and
// tags the locus CN_MISSING.
func ApplyKaryotype(l *Locus, k *karyotype.Karyotype) {
	cn, ok := k.Get(l.Contig)
	if !ok {
		log.Debug.Printf("repeats: contig %s not in karyotype, skipping %s", l.Contig, l.Name())
		l.Filter = FilterCopyNumberMissing
		return
	}
	l.CopyNumber = cn
}

// ApplyCNV overrides the locus's copy number from the ordered, disjoint
// copy-number regions for its contig.  A region fully covering the locus
// sets the copy number; a region partially overlapping it makes a single
// copy number meaningless, so the locus is tagged CN_MISSING.  The regions
// are sorted; the scan acts on the first region that intersects the locus
// and stops at the first region starting beyond it.
func ApplyCNV(l *Locus, regions []interval.CopyNumberRegion) {
	locusLen := l.End - l.Start
	for _, r := range regions {
		if r.Start > l.End {
			break
		}
		overlap := interval.Overlap(l.Start, l.End-1, r.Start, r.End-1)
		switch {
		case overlap == locusLen:
			log.Debug.Printf("repeats: overriding copy number %d -> %d for %s", l.CopyNumber, r.CN, l.Name())
			l.CopyNumber = r.CN
			return
		case overlap > 0:
			log.Debug.Printf("repeats: %s partially overlaps copy-number region %s:%d-%d, skipping", l.Name(), r.Contig, r.Start, r.End)
			l.Filter = FilterCopyNumberMissing
			return
		}
	}
}
