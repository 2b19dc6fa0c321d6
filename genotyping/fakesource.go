package genotyping

import (
	"github.com/grailbio/hts/sam"
)

// fakeSource is an in-memory ReadSource for unittests.  It yields the given
// records, filtered to the fetch interval the same way the BAM fetcher
// filters.
type fakeSource struct {
	header *sam.Header
	recs   []*sam.Record
	err    error
}

// NewFakeSource creates a source that returns header from Header() and
// serves recs to every fetcher.  Records must be coordinate sorted within
// each contig.  A nonnil err makes every fetch fail with it, for testing
// per-locus error handling.
func NewFakeSource(header *sam.Header, recs []*sam.Record, err error) ReadSource {
	return &fakeSource{header: header, recs: recs, err: err}
}

// Header implements ReadSource.
func (s *fakeSource) Header() (*sam.Header, error) { return s.header, nil }

// NewFetcher implements ReadSource.
func (s *fakeSource) NewFetcher() (ReadFetcher, error) {
	return &fakeFetcher{src: s}, nil
}

// Close implements ReadSource.
func (s *fakeSource) Close() error { return nil }

type fakeFetcher struct {
	src *fakeSource
}

// Fetch implements ReadFetcher.
func (f *fakeFetcher) Fetch(contig string, start, end int) ReadIterator {
	if f.src.err != nil {
		return &fakeIterator{err: f.src.err}
	}
	var recs []*sam.Record
	for _, rec := range f.src.recs {
		if rec.Ref == nil || rec.Ref.Name() != contig {
			continue
		}
		if rec.Pos >= end || rec.End() <= start {
			continue
		}
		recs = append(recs, rec)
	}
	return &fakeIterator{recs: recs}
}

// Close implements ReadFetcher.
func (f *fakeFetcher) Close() error { return nil }

type fakeIterator struct {
	recs []*sam.Record
	rec  *sam.Record
	err  error
}

func (i *fakeIterator) Scan() bool {
	if i.err != nil || len(i.recs) == 0 {
		return false
	}
	i.rec = i.recs[0]
	i.recs = i.recs[1:]
	return true
}

func (i *fakeIterator) Record() *sam.Record { return i.rec }
func (i *fakeIterator) Err() error          { return i.err }
func (i *fakeIterator) Close() error        { return i.err }
