package repeats

import (
	"fmt"
	"strconv"

	"github.com/acg-team/ConSTRain/encoding/bed"
	"github.com/acg-team/ConSTRain/interval"
	"github.com/acg-team/ConSTRain/karyotype"
)

// Source loads repeat loci from some representation into a locus slice.
// Implementations assign each locus its baseline copy number from the
// karyotype and record every copy number they observe in copyNumbers, so
// the caller can build partition tables for exactly the copy numbers that
// occur.
type Source interface {
	Load(k *karyotype.Karyotype, loci *[]*Locus, copyNumbers map[int]bool) error
}

// CNVSource loads copy-number regions, recording observed copy numbers the
// same way.
type CNVSource interface {
	Load(regions *[]interval.CopyNumberRegion, copyNumbers map[int]bool) error
}

// BEDSource reads loci from a BED3+2 file: contig, start, end, period,
// motif.  Rows whose interval is not a whole number of motif units are a
// hard error.
type BEDSource struct {
	Path string
}

// Load implements Source.
func (s BEDSource) Load(k *karyotype.Karyotype, loci *[]*Locus, copyNumbers map[int]bool) error {
	return bed.ReadPath(s.Path, 2, func(rec bed.Record) error {
		period, err := strconv.Atoi(rec.Extra[0])
		if err != nil {
			return fmt.Errorf("bad period %q: %v", rec.Extra[0], err)
		}
		l, err := NewLocus(rec.Contig, rec.Start, rec.End, period, rec.Extra[1])
		if err != nil {
			return err
		}
		ApplyKaryotype(l, k)
		copyNumbers[l.CopyNumber] = true
		*loci = append(*loci, l)
		return nil
	})
}

// BEDCNVSource reads copy-number regions from a BED3+1 file: contig, start,
// end, copy number.
type BEDCNVSource struct {
	Path string
}

// Load implements CNVSource.
func (s BEDCNVSource) Load(regions *[]interval.CopyNumberRegion, copyNumbers map[int]bool) error {
	return bed.ReadPath(s.Path, 1, func(rec bed.Record) error {
		cn, err := strconv.Atoi(rec.Extra[0])
		if err != nil {
			return fmt.Errorf("bad copy number %q: %v", rec.Extra[0], err)
		}
		if cn < 0 {
			return fmt.Errorf("negative copy number %d", cn)
		}
		copyNumbers[cn] = true
		*regions = append(*regions, interval.CopyNumberRegion{Contig: rec.Contig, Start: rec.Start, End: rec.End, CN: cn})
		return nil
	})
}
