// Package genotyping turns aligned reads over repeat loci into genotypes:
// it extracts an allele-length histogram from the reads spanning each locus
// and picks the copy-number-sized multiset of allele lengths that best
// explains the histogram.
package genotyping

import (
	"github.com/grailbio/hts/sam"
)

// ReadIterator yields the records produced by one fetch.  The usual loop is
//
//	iter := fetcher.Fetch(contig, start, end)
//	for iter.Scan() {
//		rec := iter.Record()
//		...
//	}
//	err := iter.Close()
//
// Close releases per-fetch state and returns the first error encountered,
// if any; it does not close the fetcher.
type ReadIterator interface {
	// Scan advances to the next record, returning false at the end of the
	// fetch or on error.
	Scan() bool
	// Record returns the current record.  Only valid after a true Scan and
	// until the next Scan or Close: implementations may recycle records.
	Record() *sam.Record
	// Err returns the error that terminated iteration, or nil on normal
	// exhaustion.
	Err() error
	// Close releases iterator state and returns Err().
	Close() error
}

// ReadFetcher fetches reads overlapping an interval on a contig.  A fetcher
// is owned by a single worker and is not safe for concurrent use.
type ReadFetcher interface {
	// Fetch returns an iterator over records overlapping the zero-based
	// half-open interval [start, end) on contig.  Failures are reported
	// through the iterator and are recoverable per locus.
	Fetch(contig string, start, end int) ReadIterator
	// Close releases the fetcher's file handle and index.
	Close() error
}

// ReadSource describes an alignment input that can hand out independent
// per-worker fetchers.  The source itself must be safe to share across
// workers.
type ReadSource interface {
	// Header returns the alignment header.
	Header() (*sam.Header, error)
	// NewFetcher opens a fresh fetcher.  Failures here are fatal: a worker
	// that cannot open the alignment input cannot make progress.
	NewFetcher() (ReadFetcher, error)
	// Close releases resources shared by the source's fetchers.
	Close() error
}
