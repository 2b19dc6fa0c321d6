package genotyping

import (
	"context"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"

	"github.com/acg-team/ConSTRain/partition"
	"github.com/acg-team/ConSTRain/repeats"
)

// Genotype processes every locus once: fetch spanning reads, extract the
// allele-length histogram, and estimate the genotype, writing results back
// into the loci in place.
//
// The locus slice is split into opts.Parallelism contiguous chunks (at most
// one per locus), one worker per chunk.  Each worker opens its own fetcher on entry and closes
// it on every exit path.  Workers share only immutable state (the partition
// table and the source), so the result is independent of scheduling.  A
// per-locus failure tags that locus and processing continues; a failure to
// open a fetcher is fatal and aborts the run.
func Genotype(ctx context.Context, loci []*repeats.Locus, table *partition.Table, src ReadSource, opts Opts) error {
	if err := opts.Check(); err != nil {
		return err
	}
	n := len(loci)
	if n == 0 {
		return nil
	}
	workers := opts.Parallelism
	if workers > n {
		workers = n
	}
	log.Debug.Printf("genotyping: %d loci across %d workers", n, workers)
	return traverse.Each(workers, func(jobIdx int) (err error) {
		chunk := loci[jobIdx*n/workers : (jobIdx+1)*n/workers]
		fetcher, err := src.NewFetcher()
		if err != nil {
			return err
		}
		defer func() {
			if cerr := fetcher.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		for _, l := range chunk {
			if l.Filter != repeats.FilterPass {
				continue
			}
			if ferr := extractAlleleLengths(l, fetcher, opts.FlankSize); ferr != nil {
				log.Error.Printf("genotyping: %s: %v", l.Name(), ferr)
				l.Filter = repeats.FilterUndef
				continue
			}
			estimateGenotype(l, table, opts)
		}
		return nil
	})
}
