package interval

import (
	"fmt"
	"sort"
)

// CopyNumberRegion is one copy-number alteration call: the half-open
// interval [Start, End) on Contig has copy number CN in the sample.
type CopyNumberRegion struct {
	Contig string
	Start  int
	End    int
	CN     int
}

// Overlay holds copy-number alterations grouped by contig.  Within a contig
// the regions are sorted ascending by start, and a region may overlap its
// predecessor by at most one base (it starts no earlier than the
// predecessor's last base); both properties are verified at construction.  An Overlay is immutable after
// NewOverlay and safe for concurrent readers.
type Overlay struct {
	regions map[string][]CopyNumberRegion
	n       int
}

// NewOverlay groups regions by contig and validates the per-contig ordering
// invariant.  Regions listed out of order or overlapping a predecessor on
// the same contig by more than one base are a hard error: a silently misordered overlay would
// assign wrong copy numbers downstream.
func NewOverlay(regions []CopyNumberRegion) (*Overlay, error) {
	o := &Overlay{regions: make(map[string][]CopyNumberRegion), n: len(regions)}
	for _, r := range regions {
		if r.Start < 0 || r.End < r.Start {
			return nil, fmt.Errorf("interval: malformed copy-number region %s:%d-%d", r.Contig, r.Start, r.End)
		}
		if r.CN < 0 {
			return nil, fmt.Errorf("interval: negative copy number %d for region %s:%d-%d", r.CN, r.Contig, r.Start, r.End)
		}
		o.regions[r.Contig] = append(o.regions[r.Contig], r)
	}
	for contig, rs := range o.regions {
		for i := 1; i < len(rs); i++ {
			prev, cur := rs[i-1], rs[i]
			if cur.Start < prev.Start {
				return nil, fmt.Errorf("interval: copy-number regions on %s not sorted: %d-%d after %d-%d",
					contig, cur.Start, cur.End, prev.Start, prev.End)
			}
			if cur.Start < prev.End-1 {
				return nil, fmt.Errorf("interval: copy-number regions on %s overlap: %d-%d and %d-%d",
					contig, prev.Start, prev.End, cur.Start, cur.End)
			}
		}
	}
	return o, nil
}

// ForContig returns the ordered regions for contig, or nil if the overlay
// has none.  The returned slice must not be modified.
func (o *Overlay) ForContig(contig string) []CopyNumberRegion {
	return o.regions[contig]
}

// Len returns the total number of regions in the overlay.
func (o *Overlay) Len() int { return o.n }

// Contigs returns the contig names present in the overlay, sorted.
func (o *Overlay) Contigs() []string {
	names := make([]string, 0, len(o.regions))
	for name := range o.regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
